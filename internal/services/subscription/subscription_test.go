package services_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/magabrotheeeer/marketplace-backend/internal/models"
	services "github.com/magabrotheeeer/marketplace-backend/internal/services/subscription"
	"github.com/magabrotheeeer/marketplace-backend/internal/storage/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type SubscriptionRepoMock struct {
	mock.Mock
}

func (m *SubscriptionRepoMock) GetSubscriptionByUserUID(ctx context.Context, userUID string) (*models.Subscription, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *SubscriptionRepoMock) CreateSubscription(ctx context.Context, sub models.Subscription) (int, error) {
	args := m.Called(ctx, sub)
	return args.Int(0), args.Error(1)
}

func (m *SubscriptionRepoMock) UpdateSubscriptionStatus(ctx context.Context, sub models.Subscription) (int, error) {
	args := m.Called(ctx, sub)
	return args.Int(0), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSubscriptionService_Status(t *testing.T) {
	tests := []struct {
		name       string
		setupMocks func(r *SubscriptionRepoMock)
		wantStatus string
		wantErr    error
	}{
		{
			name: "active subscription",
			setupMocks: func(r *SubscriptionRepoMock) {
				r.On("GetSubscriptionByUserUID", mock.Anything, "uid-1").
					Return(&models.Subscription{UserUID: "uid-1", Status: models.SubscriptionActive}, nil).Once()
			},
			wantStatus: models.SubscriptionActive,
		},
		{
			name: "no record maps to ErrNoSubscription",
			setupMocks: func(r *SubscriptionRepoMock) {
				r.On("GetSubscriptionByUserUID", mock.Anything, "uid-1").
					Return(nil, repository.ErrNotFound).Once()
			},
			wantErr: services.ErrNoSubscription,
		},
		{
			name: "storage failure passes through",
			setupMocks: func(r *SubscriptionRepoMock) {
				r.On("GetSubscriptionByUserUID", mock.Anything, "uid-1").
					Return(nil, errors.New("connection refused")).Once()
			},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(SubscriptionRepoMock)
			tt.setupMocks(repo)
			svc := services.NewSubscriptionService(repo, testLogger())

			got, err := svc.Status(context.Background(), "uid-1")
			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
			case tt.wantStatus != "":
				require.NoError(t, err)
				assert.Equal(t, tt.wantStatus, got.Status)
			default:
				require.Error(t, err)
				assert.NotErrorIs(t, err, services.ErrNoSubscription)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestSubscriptionService_Activate(t *testing.T) {
	t.Run("updates existing record", func(t *testing.T) {
		repo := new(SubscriptionRepoMock)
		repo.On("UpdateSubscriptionStatus", mock.Anything, mock.MatchedBy(func(sub models.Subscription) bool {
			return sub.UserUID == "uid-1" &&
				sub.Status == models.SubscriptionActive &&
				sub.PlanName == "growth" &&
				sub.PlanPrice == 9900 &&
				sub.PaymentProofKey == "proofs/receipt.pdf"
		})).Return(1, nil).Once()

		svc := services.NewSubscriptionService(repo, testLogger())
		got, err := svc.Activate(context.Background(), "uid-1", "growth", "proofs/receipt.pdf")
		require.NoError(t, err)
		assert.Equal(t, models.SubscriptionActive, got.Status)
		repo.AssertExpectations(t)
	})

	t.Run("creates record when none exists", func(t *testing.T) {
		repo := new(SubscriptionRepoMock)
		repo.On("UpdateSubscriptionStatus", mock.Anything, mock.Anything).Return(0, nil).Once()
		repo.On("CreateSubscription", mock.Anything, mock.Anything).Return(7, nil).Once()

		svc := services.NewSubscriptionService(repo, testLogger())
		_, err := svc.Activate(context.Background(), "uid-1", "starter", "proofs/receipt.pdf")
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("unknown plan", func(t *testing.T) {
		repo := new(SubscriptionRepoMock)
		svc := services.NewSubscriptionService(repo, testLogger())
		_, err := svc.Activate(context.Background(), "uid-1", "platinum", "proofs/receipt.pdf")
		require.ErrorIs(t, err, services.ErrUnknownPlan)
		repo.AssertNotCalled(t, "UpdateSubscriptionStatus", mock.Anything, mock.Anything)
	})
}

func TestSubscriptionService_Plans(t *testing.T) {
	svc := services.NewSubscriptionService(new(SubscriptionRepoMock), testLogger())
	plans := svc.Plans()
	require.Len(t, plans, 3)
	assert.Equal(t, "starter", plans[0].Name)
}
