// Package expensetracker предоставляет маршруты для основного приложения.
package expensetracker

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/expense-tracker/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/expense-tracker/internal/http/handlers/auth/refresh"
	"github.com/magabrotheeeer/expense-tracker/internal/http/handlers/auth/register"
	expensecreate "github.com/magabrotheeeer/expense-tracker/internal/http/handlers/expense/create"
	expenselist "github.com/magabrotheeeer/expense-tracker/internal/http/handlers/expense/list"
	expenseread "github.com/magabrotheeeer/expense-tracker/internal/http/handlers/expense/read"
	expenseremove "github.com/magabrotheeeer/expense-tracker/internal/http/handlers/expense/remove"
	expenseupdate "github.com/magabrotheeeer/expense-tracker/internal/http/handlers/expense/update"
	"github.com/magabrotheeeer/expense-tracker/internal/http/handlers/health"
	"github.com/magabrotheeeer/expense-tracker/internal/http/handlers/subscription/create"
	"github.com/magabrotheeeer/expense-tracker/internal/http/handlers/subscription/list"
	"github.com/magabrotheeeer/expense-tracker/internal/http/handlers/subscription/read"
	"github.com/magabrotheeeer/expense-tracker/internal/http/handlers/subscription/remove"
	"github.com/magabrotheeeer/expense-tracker/internal/http/handlers/subscription/update"
	"github.com/magabrotheeeer/expense-tracker/internal/http/middlewarectx"
	authservice "github.com/magabrotheeeer/expense-tracker/internal/services/auth"
	expenseservice "github.com/magabrotheeeer/expense-tracker/internal/services/expense"
	subservice "github.com/magabrotheeeer/expense-tracker/internal/services/subscription"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger,
	authService *authservice.AuthService,
	subscriptionService *subservice.SubscriptionService,
	expenseService *expenseservice.ExpenseService,
	checker health.Checker,
) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/sign_up", register.New(logger, authService).ServeHTTP)
		r.Post("/log_in", login.New(logger, authService).ServeHTTP)
		r.Post("/token/refresh", refresh.New(logger, authService).ServeHTTP)
		r.Get("/health", health.New(logger, checker).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(authService, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Post("/subscription", create.New(logger, subscriptionService).ServeHTTP)
			r.Get("/subscription", list.New(logger, subscriptionService).ServeHTTP)
			r.Get("/subscription/{id}", read.New(logger, subscriptionService).ServeHTTP)
			r.Put("/subscription/{id}", update.New(logger, subscriptionService).ServeHTTP)
			r.Delete("/subscription/{id}", remove.New(logger, subscriptionService).ServeHTTP)

			r.Post("/expense", expensecreate.New(logger, expenseService).ServeHTTP)
			r.Get("/expense", expenselist.New(logger, expenseService).ServeHTTP)
			r.Get("/expense/{id}", expenseread.New(logger, expenseService).ServeHTTP)
			r.Put("/expense/{id}", expenseupdate.New(logger, expenseService).ServeHTTP)
			r.Delete("/expense/{id}", expenseremove.New(logger, expenseService).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
