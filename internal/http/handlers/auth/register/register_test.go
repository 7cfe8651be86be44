package register

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/marketplace-backend/internal/models"
	services "github.com/magabrotheeeer/marketplace-backend/internal/services/auth"
)

// MockService реализует интерфейс register.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Register(ctx context.Context, req services.RegisterRequest) (*services.AuthResult, error) {
	args := m.Called(ctx, req)
	if res := args.Get(0); res != nil {
		return res.(*services.AuthResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestRegisterHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		role           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "регистрация клиента: роль берется из конечной точки",
			role: models.RoleClient,
			body: `{"email":"user@example.com","username":"newuser","password":"secret12"}`,
			setupMock: func(m *MockService) {
				result := &services.AuthResult{
					User: &models.User{
						UID:      "uid-1",
						Email:    "user@example.com",
						Username: "newuser",
						Role:     models.RoleClient,
					},
					Token: "client.jwt",
				}
				m.On("Register", mock.Anything, mock.MatchedBy(func(req services.RegisterRequest) bool {
					return req.Role == models.RoleClient && req.Email == "user@example.com"
				})).Return(result, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"role":"client"`,
		},
		{
			name: "регистрация агента с комиссией и реквизитами",
			role: models.RoleAgent,
			body: `{"email":"agent@example.com","username":"agent1","password":"secret12","phone":"+70000000001","commissionRate":0.15,"payoutMethod":"card","payoutNumber":"4111"}`,
			setupMock: func(m *MockService) {
				result := &services.AuthResult{
					User: &models.User{
						UID:      "uid-2",
						Email:    "agent@example.com",
						Username: "agent1",
						Phone:    "+70000000001",
						Role:     models.RoleAgent,
					},
					Token: "agent.jwt",
				}
				m.On("Register", mock.Anything, mock.MatchedBy(func(req services.RegisterRequest) bool {
					return req.Role == models.RoleAgent &&
						req.CommissionRate != nil && *req.CommissionRate == 0.15 &&
						req.PayoutMethod == "card"
				})).Return(result, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"role":"agent"`,
		},
		{
			name: "регистрация администратора магазина передает геолокацию в сервис",
			role: models.RoleClientAdmin,
			body: `{"email":"shop@example.com","username":"shopadmin","password":"secret12","latitude":55.751244,"longitude":37.618423}`,
			setupMock: func(m *MockService) {
				result := &services.AuthResult{
					User: &models.User{
						UID:      "uid-3",
						Email:    "shop@example.com",
						Username: "shopadmin",
						Role:     models.RoleClientAdmin,
					},
					Token: "admin.jwt",
				}
				m.On("Register", mock.Anything, mock.MatchedBy(func(req services.RegisterRequest) bool {
					return req.Role == models.RoleClientAdmin &&
						req.Latitude != nil && *req.Latitude == 55.751244 &&
						req.Longitude != nil && *req.Longitude == 37.618423
				})).Return(result, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"role":"client_admin"`,
		},
		{
			name:           "агент без телефона отклоняется",
			role:           models.RoleAgent,
			body:           `{"email":"agent@example.com","username":"agent1","password":"secret12"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `Phone`,
		},
		{
			name:           "некорректный email",
			role:           models.RoleClient,
			body:           `{"email":"not-an-email","username":"newuser","password":"secret12"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `Email`,
		},
		{
			name: "регистрация недоступной роли",
			role: models.RoleSuperAdmin,
			body: `{"email":"root@example.com","username":"rootuser","password":"secret12"}`,
			setupMock: func(m *MockService) {
				m.On("Register", mock.Anything, mock.Anything).
					Return(nil, services.ErrRoleNotAllowed)
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `"role is not available for registration"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService, tt.role, 360*time.Hour)

			req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
