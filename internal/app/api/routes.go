// Package api собирает HTTP-приложение: сервисы, маршруты и сервер.
package api

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/restaurant-radio/internal/http/handlers/account/bootstrap"
	accountentitlement "github.com/magabrotheeeer/restaurant-radio/internal/http/handlers/account/entitlement"
	"github.com/magabrotheeeer/restaurant-radio/internal/http/handlers/account/profile"
	"github.com/magabrotheeeer/restaurant-radio/internal/http/handlers/account/updateprofile"
	"github.com/magabrotheeeer/restaurant-radio/internal/http/handlers/billing/checkout"
	"github.com/magabrotheeeer/restaurant-radio/internal/http/handlers/billing/portal"
	"github.com/magabrotheeeer/restaurant-radio/internal/http/handlers/billing/webhook"
	favoriteslist "github.com/magabrotheeeer/restaurant-radio/internal/http/handlers/favorites/list"
	"github.com/magabrotheeeer/restaurant-radio/internal/http/handlers/favorites/toggle"
	"github.com/magabrotheeeer/restaurant-radio/internal/http/handlers/health"
	historylist "github.com/magabrotheeeer/restaurant-radio/internal/http/handlers/history/list"
	"github.com/magabrotheeeer/restaurant-radio/internal/http/handlers/history/record"
	"github.com/magabrotheeeer/restaurant-radio/internal/http/handlers/stations/countries"
	"github.com/magabrotheeeer/restaurant-radio/internal/http/handlers/stations/daily"
	"github.com/magabrotheeeer/restaurant-radio/internal/http/handlers/stations/search"
	"github.com/magabrotheeeer/restaurant-radio/internal/http/middlewarectx"
	"github.com/magabrotheeeer/restaurant-radio/internal/services/account"
	"github.com/magabrotheeeer/restaurant-radio/internal/services/billing"
	"github.com/magabrotheeeer/restaurant-radio/internal/services/favorites"
	"github.com/magabrotheeeer/restaurant-radio/internal/services/stations"
)

// Deps зависимости маршрутов.
type Deps struct {
	Account   *account.Service
	Billing   *billing.Service
	Stations  *stations.Service
	Favorites *favorites.Service
	Verifier  webhook.Verifier
	Tokens    middlewarectx.TokenParser
	Limiter   *rate.Limiter
	Checks    map[string]health.Checker
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, d Deps) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
	)

	r.Get("/health", health.New(logger, d.Checks).ServeHTTP)

	r.Route("/api/v1", func(r chi.Router) {
		// Вебхук провайдера платежей (без аутентификации, проверяется подпись)
		r.Post("/billing/webhook", webhook.New(logger, d.Verifier, d.Billing).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(d.Tokens, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger, d.Limiter))

			r.Post("/account/bootstrap", bootstrap.New(logger, d.Account).ServeHTTP)
			r.Get("/account/entitlement", accountentitlement.New(logger, d.Account).ServeHTTP)
			r.Get("/account/profile", profile.New(logger, d.Account).ServeHTTP)
			r.Patch("/account/profile", updateprofile.New(logger, d.Account).ServeHTTP)
			r.Post("/billing/checkout", checkout.New(logger, d.Billing).ServeHTTP)
			r.Post("/billing/portal", portal.New(logger, d.Billing).ServeHTTP)
			r.Get("/favorites", favoriteslist.New(logger, d.Favorites).ServeHTTP)
			r.Post("/favorites/toggle", toggle.New(logger, d.Favorites).ServeHTTP)
			r.Get("/history", historylist.New(logger, d.Favorites).ServeHTTP)
			r.Post("/history", record.New(logger, d.Favorites).ServeHTTP)

			// Каталог станций доступен только при действующем доступе
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.EntitlementMiddleware(logger, d.Account))
				r.Get("/stations/countries", countries.New(logger, d.Stations).ServeHTTP)
				r.Get("/stations/search", search.New(logger, d.Stations).ServeHTTP)
				r.Get("/stations/daily", daily.New(logger, d.Stations, d.Account).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
