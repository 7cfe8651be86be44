// Package marketplace предоставляет маршруты для основного приложения.
package marketplace

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	agentstats "github.com/magabrotheeeer/marketplace-backend/internal/http/handlers/agent/stats"
	"github.com/magabrotheeeer/marketplace-backend/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/marketplace-backend/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/marketplace-backend/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/marketplace-backend/internal/http/handlers/document/approve"
	"github.com/magabrotheeeer/marketplace-backend/internal/http/handlers/document/listmy"
	"github.com/magabrotheeeer/marketplace-backend/internal/http/handlers/document/pending"
	"github.com/magabrotheeeer/marketplace-backend/internal/http/handlers/document/reject"
	docremove "github.com/magabrotheeeer/marketplace-backend/internal/http/handlers/document/remove"
	"github.com/magabrotheeeer/marketplace-backend/internal/http/handlers/document/upload"
	"github.com/magabrotheeeer/marketplace-backend/internal/http/handlers/health"
	"github.com/magabrotheeeer/marketplace-backend/internal/http/handlers/product/create"
	productlist "github.com/magabrotheeeer/marketplace-backend/internal/http/handlers/product/list"
	productread "github.com/magabrotheeeer/marketplace-backend/internal/http/handlers/product/read"
	productremove "github.com/magabrotheeeer/marketplace-backend/internal/http/handlers/product/remove"
	productupdate "github.com/magabrotheeeer/marketplace-backend/internal/http/handlers/product/update"
	"github.com/magabrotheeeer/marketplace-backend/internal/http/handlers/subscription/activate"
	"github.com/magabrotheeeer/marketplace-backend/internal/http/handlers/subscription/plans"
	"github.com/magabrotheeeer/marketplace-backend/internal/http/handlers/subscription/status"
	"github.com/magabrotheeeer/marketplace-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/marketplace-backend/internal/models"
	agentservice "github.com/magabrotheeeer/marketplace-backend/internal/services/agent"
	authservice "github.com/magabrotheeeer/marketplace-backend/internal/services/auth"
	documentservice "github.com/magabrotheeeer/marketplace-backend/internal/services/document"
	productservice "github.com/magabrotheeeer/marketplace-backend/internal/services/product"
	subservice "github.com/magabrotheeeer/marketplace-backend/internal/services/subscription"
	"github.com/magabrotheeeer/marketplace-backend/internal/storage/files"
)

// Services объединяет бизнес-сервисы, которые обслуживают маршруты.
type Services struct {
	Auth         *authservice.AuthService
	Subscription *subservice.SubscriptionService
	Document     *documentservice.DocumentService
	Agent        *agentservice.AgentService
	Product      *productservice.ProductService
	Files        *files.Store
	TokenTTL     time.Duration
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, s *Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		middlewarectx.MetricsMiddleware,
	)

	r.Route("/api", func(r chi.Router) {
		// Открытые конечные точки: вход и три ветки регистрации.
		// Роль фиксируется конечной точкой, а не телом запроса.
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Post("/auth/login", login.New(logger, s.Auth, s.TokenTTL).ServeHTTP)
			r.Post("/auth/register/client", register.New(logger, s.Auth, models.RoleClient, s.TokenTTL).ServeHTTP)
			r.Post("/auth/register/client-admin", register.New(logger, s.Auth, models.RoleClientAdmin, s.TokenTTL).ServeHTTP)
			r.Post("/agents/register-new", register.New(logger, s.Auth, models.RoleAgent, s.TokenTTL).ServeHTTP)
		})

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(s.Auth, logger))

			r.Post("/auth/logout", logout.New(logger, s.Auth).ServeHTTP)

			// Подписка доступна без подписочного гейта, иначе
			// активация была бы недостижима.
			r.Get("/subscriptions/status", status.New(logger, s.Subscription).ServeHTTP)
			r.Get("/subscriptions/plans", plans.New(logger, s.Subscription).ServeHTTP)
			r.Post("/subscriptions/activate", activate.New(logger, s.Subscription, s.Files).ServeHTTP)

			// Каталог открыт всем аутентифицированным ролям.
			r.Get("/products", productlist.New(logger, s.Product).ServeCatalog)
			r.Get("/products/{id}", productread.New(logger, s.Product).ServeHTTP)

			// Кабинет агента
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireRole(logger, models.RoleAgent))
				r.Get("/agents/my-stats", agentstats.New(logger, s.Agent).ServeHTTP)
			})

			// Управление магазином: только client_admin с действующей подпиской
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireRole(logger, models.RoleClientAdmin))
				r.Use(middlewarectx.SubscriptionGuard(logger, s.Subscription, "products"))
				r.Post("/products", create.New(logger, s.Product).ServeHTTP)
				r.Get("/products/my", productlist.New(logger, s.Product).ServeHTTP)
				r.Put("/products/{id}", productupdate.New(logger, s.Product).ServeHTTP)
				r.Delete("/products/{id}", productremove.New(logger, s.Product).ServeHTTP)
			})

			// Документы магазина: загрузка и свои документы
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireRole(logger, models.RoleClientAdmin))
				r.Use(middlewarectx.SubscriptionGuard(logger, s.Subscription, "documents"))
				r.Post("/business-documents/upload", upload.New(logger, s.Document).ServeHTTP)
				r.Get("/business-documents/my-documents", listmy.New(logger, s.Document).ServeHTTP)
				r.Delete("/business-documents/{id}", docremove.New(logger, s.Document).ServeHTTP)
			})

			// Проверка документов: только супер-администратор
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireRole(logger, models.RoleSuperAdmin))
				r.Get("/business-documents/pending", pending.New(logger, s.Document).ServeHTTP)
				r.Post("/business-documents/{id}/approve", approve.New(logger, s.Document).ServeHTTP)
				r.Post("/business-documents/{id}/reject", reject.New(logger, s.Document).ServeHTTP)
			})
		})
	})

	r.Get("/health", health.New(logger).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
