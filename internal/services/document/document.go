// Package services содержит бизнес-логику проверки бизнес-документов:
// загрузку, решения проверяющего и удаление владельцем.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/marketplace-backend/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/marketplace-backend/internal/lib/sl"
	"github.com/magabrotheeeer/marketplace-backend/internal/models"
)

// Ошибки бизнес-уровня документооборота.
var (
	ErrInvalidDocumentType = errors.New("unknown document type")
	ErrEmptyReason         = errors.New("rejection reason must not be empty")
	ErrAlreadyDecided      = errors.New("document already approved or rejected")
	ErrNotRemovable        = errors.New("document is not pending or belongs to another owner")
)

// DocumentRepository определяет методы для работы с документами в хранилище.
type DocumentRepository interface {
	CreateDocument(ctx context.Context, doc models.BusinessDocument) (int, error)
	ReadDocument(ctx context.Context, id int) (*models.BusinessDocument, error)
	ListDocumentsByOwner(ctx context.Context, ownerUID string) ([]*models.BusinessDocument, error)
	ListPendingDocuments(ctx context.Context, limit, offset int) ([]*models.BusinessDocument, error)
	UpdateDocumentDecision(ctx context.Context, id int, status, reason string) (int, error)
	RemoveDocument(ctx context.Context, id int, ownerUID string) (int, error)
}

// UserRepository возвращает владельца документа для уведомления о решении.
type UserRepository interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
}

// FileStore сохраняет и удаляет файлы документов.
type FileStore interface {
	Save(r io.Reader, originalName string) (string, error)
	Remove(key string) error
}

// EventPublisher публикует события о решениях в брокер сообщений.
type EventPublisher interface {
	Publish(routingKey string, message any) error
}

// DocumentService реализует документооборот проверки магазина.
type DocumentService struct {
	repo      DocumentRepository
	users     UserRepository
	files     FileStore
	publisher EventPublisher
	log       *slog.Logger
}

// NewDocumentService создает новый экземпляр DocumentService.
func NewDocumentService(repo DocumentRepository, users UserRepository, files FileStore,
	publisher EventPublisher, log *slog.Logger) *DocumentService {
	return &DocumentService{
		repo:      repo,
		users:     users,
		files:     files,
		publisher: publisher,
		log:       log,
	}
}

// Upload сохраняет файл и создает документ в статусе pending.
func (s *DocumentService) Upload(ctx context.Context, ownerUID, docType string,
	file io.Reader, filename string, productID *int, expiresAt *time.Time) (*models.BusinessDocument, error) {
	if !models.ValidDocumentType(docType) {
		return nil, ErrInvalidDocumentType
	}

	key, err := s.files.Save(file, filename)
	if err != nil {
		return nil, fmt.Errorf("save document file: %w", err)
	}

	doc := models.BusinessDocument{
		OwnerUID:       ownerUID,
		Type:           docType,
		FileKey:        key,
		ApprovalStatus: models.DocumentPending,
		ProductID:      productID,
		ExpiresAt:      expiresAt,
	}
	id, err := s.repo.CreateDocument(ctx, doc)
	if err != nil {
		if rmErr := s.files.Remove(key); rmErr != nil {
			s.log.Warn("failed to remove orphaned file", slog.String("key", key), sl.Err(rmErr))
		}
		return nil, err
	}
	doc.ID = id

	s.log.Info("document uploaded",
		slog.Int("id", id), slog.String("owner_uid", ownerUID), slog.String("type", docType))
	return &doc, nil
}

// ListMy возвращает документы владельца.
func (s *DocumentService) ListMy(ctx context.Context, ownerUID string) ([]*models.BusinessDocument, error) {
	return s.repo.ListDocumentsByOwner(ctx, ownerUID)
}

// ListPending возвращает очередь документов на проверку.
func (s *DocumentService) ListPending(ctx context.Context, limit, offset int) ([]*models.BusinessDocument, error) {
	return s.repo.ListPendingDocuments(ctx, limit, offset)
}

// Approve утверждает документ. Решение терминально: повторное решение
// по тому же документу возвращает ErrAlreadyDecided.
func (s *DocumentService) Approve(ctx context.Context, id int) error {
	return s.decide(ctx, id, models.DocumentApproved, "")
}

// Reject отклоняет документ с обязательной непустой причиной.
func (s *DocumentService) Reject(ctx context.Context, id int, reason string) error {
	if reason == "" {
		return ErrEmptyReason
	}
	return s.decide(ctx, id, models.DocumentRejected, reason)
}

func (s *DocumentService) decide(ctx context.Context, id int, status, reason string) error {
	doc, err := s.repo.ReadDocument(ctx, id)
	if err != nil {
		return err
	}

	count, err := s.repo.UpdateDocumentDecision(ctx, id, status, reason)
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrAlreadyDecided
	}

	s.log.Info("document decision recorded",
		slog.Int("id", id), slog.String("status", status))

	s.notifyOwner(ctx, doc, status, reason)
	return nil
}

// notifyOwner публикует событие решения. Сбой публикации не откатывает
// решение, письмо в этом случае просто не уйдет.
func (s *DocumentService) notifyOwner(ctx context.Context, doc *models.BusinessDocument, status, reason string) {
	owner, err := s.users.GetUser(ctx, doc.OwnerUID)
	if err != nil {
		s.log.Warn("failed to load document owner", slog.Int("id", doc.ID), sl.Err(err))
		return
	}

	routingKey := rabbitmq.KeyDocumentApproved
	if status == models.DocumentRejected {
		routingKey = rabbitmq.KeyDocumentRejected
	}
	msg := models.DocumentDecisionInfo{
		Email:           owner.Email,
		Username:        owner.Username,
		DocumentID:      doc.ID,
		DocumentType:    doc.Type,
		Decision:        status,
		RejectionReason: reason,
	}
	if err := s.publisher.Publish(routingKey, msg); err != nil {
		s.log.Warn("failed to publish document decision", slog.Int("id", doc.ID), sl.Err(err))
	}
}

// Remove удаляет документ владельца в статусе pending вместе с файлом.
// Любое другое состояние возвращает ErrNotRemovable.
func (s *DocumentService) Remove(ctx context.Context, id int, ownerUID string) error {
	doc, err := s.repo.ReadDocument(ctx, id)
	if err != nil {
		return err
	}

	count, err := s.repo.RemoveDocument(ctx, id, ownerUID)
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNotRemovable
	}

	if err := s.files.Remove(doc.FileKey); err != nil {
		s.log.Warn("failed to remove document file", slog.String("key", doc.FileKey), sl.Err(err))
	}
	return nil
}
