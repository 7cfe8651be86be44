package services_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/magabrotheeeer/marketplace-backend/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/marketplace-backend/internal/models"
	services "github.com/magabrotheeeer/marketplace-backend/internal/services/document"
	"github.com/magabrotheeeer/marketplace-backend/internal/storage/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type DocumentRepoMock struct {
	mock.Mock
}

func (m *DocumentRepoMock) CreateDocument(ctx context.Context, doc models.BusinessDocument) (int, error) {
	args := m.Called(ctx, doc)
	return args.Int(0), args.Error(1)
}

func (m *DocumentRepoMock) ReadDocument(ctx context.Context, id int) (*models.BusinessDocument, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BusinessDocument), args.Error(1)
}

func (m *DocumentRepoMock) ListDocumentsByOwner(ctx context.Context, ownerUID string) ([]*models.BusinessDocument, error) {
	args := m.Called(ctx, ownerUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BusinessDocument), args.Error(1)
}

func (m *DocumentRepoMock) ListPendingDocuments(ctx context.Context, limit, offset int) ([]*models.BusinessDocument, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BusinessDocument), args.Error(1)
}

func (m *DocumentRepoMock) UpdateDocumentDecision(ctx context.Context, id int, status, reason string) (int, error) {
	args := m.Called(ctx, id, status, reason)
	return args.Int(0), args.Error(1)
}

func (m *DocumentRepoMock) RemoveDocument(ctx context.Context, id int, ownerUID string) (int, error) {
	args := m.Called(ctx, id, ownerUID)
	return args.Int(0), args.Error(1)
}

type UserRepoMock struct {
	mock.Mock
}

func (m *UserRepoMock) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type FileStoreMock struct {
	mock.Mock
}

func (m *FileStoreMock) Save(r io.Reader, originalName string) (string, error) {
	args := m.Called(r, originalName)
	return args.String(0), args.Error(1)
}

func (m *FileStoreMock) Remove(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) Publish(routingKey string, message any) error {
	args := m.Called(routingKey, message)
	return args.Error(0)
}

type mocks struct {
	repo      *DocumentRepoMock
	users     *UserRepoMock
	files     *FileStoreMock
	publisher *PublisherMock
}

func newService(t *testing.T) (*services.DocumentService, mocks) {
	t.Helper()
	m := mocks{
		repo:      new(DocumentRepoMock),
		users:     new(UserRepoMock),
		files:     new(FileStoreMock),
		publisher: new(PublisherMock),
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return services.NewDocumentService(m.repo, m.users, m.files, m.publisher, log), m
}

func TestDocumentService_Upload(t *testing.T) {
	t.Run("valid upload creates pending document", func(t *testing.T) {
		svc, m := newService(t)
		m.files.On("Save", mock.Anything, "license.pdf").Return("abc.pdf", nil).Once()
		m.repo.On("CreateDocument", mock.Anything, mock.MatchedBy(func(doc models.BusinessDocument) bool {
			return doc.OwnerUID == "uid-1" &&
				doc.Type == models.DocumentBusinessLicense &&
				doc.FileKey == "abc.pdf" &&
				doc.ApprovalStatus == models.DocumentPending
		})).Return(42, nil).Once()

		doc, err := svc.Upload(context.Background(), "uid-1", models.DocumentBusinessLicense,
			strings.NewReader("body"), "license.pdf", nil, nil)
		require.NoError(t, err)
		assert.Equal(t, 42, doc.ID)
		m.repo.AssertExpectations(t)
		m.files.AssertExpectations(t)
	})

	t.Run("unknown type is rejected before saving", func(t *testing.T) {
		svc, m := newService(t)
		_, err := svc.Upload(context.Background(), "uid-1", "passport",
			strings.NewReader("body"), "passport.jpg", nil, nil)
		require.ErrorIs(t, err, services.ErrInvalidDocumentType)
		m.files.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("storage failure removes orphaned file", func(t *testing.T) {
		svc, m := newService(t)
		m.files.On("Save", mock.Anything, "license.pdf").Return("abc.pdf", nil).Once()
		m.repo.On("CreateDocument", mock.Anything, mock.Anything).Return(0, assert.AnError).Once()
		m.files.On("Remove", "abc.pdf").Return(nil).Once()

		_, err := svc.Upload(context.Background(), "uid-1", models.DocumentBusinessLicense,
			strings.NewReader("body"), "license.pdf", nil, nil)
		require.Error(t, err)
		m.files.AssertExpectations(t)
	})
}

func TestDocumentService_Decisions(t *testing.T) {
	pendingDoc := &models.BusinessDocument{
		ID:             42,
		OwnerUID:       "uid-1",
		Type:           models.DocumentBusinessLicense,
		ApprovalStatus: models.DocumentPending,
	}
	owner := &models.User{UID: "uid-1", Email: "owner@example.com", Username: "owner1"}

	t.Run("approve publishes event", func(t *testing.T) {
		svc, m := newService(t)
		m.repo.On("ReadDocument", mock.Anything, 42).Return(pendingDoc, nil).Once()
		m.repo.On("UpdateDocumentDecision", mock.Anything, 42, models.DocumentApproved, "").Return(1, nil).Once()
		m.users.On("GetUser", mock.Anything, "uid-1").Return(owner, nil).Once()
		m.publisher.On("Publish", rabbitmq.KeyDocumentApproved, mock.MatchedBy(func(msg models.DocumentDecisionInfo) bool {
			return msg.Email == "owner@example.com" && msg.Decision == models.DocumentApproved
		})).Return(nil).Once()

		require.NoError(t, svc.Approve(context.Background(), 42))
		m.publisher.AssertExpectations(t)
	})

	t.Run("reject requires non-empty reason", func(t *testing.T) {
		svc, m := newService(t)
		err := svc.Reject(context.Background(), 42, "")
		require.ErrorIs(t, err, services.ErrEmptyReason)
		m.repo.AssertNotCalled(t, "UpdateDocumentDecision", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("reject publishes event with reason", func(t *testing.T) {
		svc, m := newService(t)
		m.repo.On("ReadDocument", mock.Anything, 42).Return(pendingDoc, nil).Once()
		m.repo.On("UpdateDocumentDecision", mock.Anything, 42, models.DocumentRejected, "unreadable scan").Return(1, nil).Once()
		m.users.On("GetUser", mock.Anything, "uid-1").Return(owner, nil).Once()
		m.publisher.On("Publish", rabbitmq.KeyDocumentRejected, mock.MatchedBy(func(msg models.DocumentDecisionInfo) bool {
			return msg.RejectionReason == "unreadable scan"
		})).Return(nil).Once()

		require.NoError(t, svc.Reject(context.Background(), 42, "unreadable scan"))
		m.publisher.AssertExpectations(t)
	})

	t.Run("second decision returns ErrAlreadyDecided", func(t *testing.T) {
		svc, m := newService(t)
		m.repo.On("ReadDocument", mock.Anything, 42).Return(pendingDoc, nil).Once()
		m.repo.On("UpdateDocumentDecision", mock.Anything, 42, models.DocumentApproved, "").Return(0, nil).Once()

		err := svc.Approve(context.Background(), 42)
		require.ErrorIs(t, err, services.ErrAlreadyDecided)
		m.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("missing document", func(t *testing.T) {
		svc, m := newService(t)
		m.repo.On("ReadDocument", mock.Anything, 42).Return(nil, repository.ErrNotFound).Once()

		err := svc.Approve(context.Background(), 42)
		require.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestDocumentService_Remove(t *testing.T) {
	doc := &models.BusinessDocument{ID: 42, OwnerUID: "uid-1", FileKey: "abc.pdf"}

	t.Run("pending document removed with file", func(t *testing.T) {
		svc, m := newService(t)
		m.repo.On("ReadDocument", mock.Anything, 42).Return(doc, nil).Once()
		m.repo.On("RemoveDocument", mock.Anything, 42, "uid-1").Return(1, nil).Once()
		m.files.On("Remove", "abc.pdf").Return(nil).Once()

		require.NoError(t, svc.Remove(context.Background(), 42, "uid-1"))
		m.files.AssertExpectations(t)
	})

	t.Run("decided document is not removable", func(t *testing.T) {
		svc, m := newService(t)
		m.repo.On("ReadDocument", mock.Anything, 42).Return(doc, nil).Once()
		m.repo.On("RemoveDocument", mock.Anything, 42, "uid-1").Return(0, nil).Once()

		err := svc.Remove(context.Background(), 42, "uid-1")
		require.ErrorIs(t, err, services.ErrNotRemovable)
		m.files.AssertNotCalled(t, "Remove", mock.Anything)
	})
}
