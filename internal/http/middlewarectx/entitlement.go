package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/restaurant-radio/internal/entitlement"
	"github.com/magabrotheeeer/restaurant-radio/internal/http/response"
	"github.com/magabrotheeeer/restaurant-radio/internal/lib/sl"
)

// EntitlementService вычисляет доступ пользователя.
type EntitlementService interface {
	Entitlement(ctx context.Context, uid string) (entitlement.Status, error)
}

// EntitlementMiddleware пропускает запрос, только если у пользователя есть
// оплаченный доступ или не истёк пробный период.
func EntitlementMiddleware(log *slog.Logger, svc EntitlementService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.EntitlementMiddleware"
			log := log.With(slog.String("op", op))

			userUID, ok := r.Context().Value(UserUID).(string)
			if !ok || userUID == "" {
				log.Error("user identification missing")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("user identification missing"))
				return
			}

			status, err := svc.Entitlement(r.Context(), userUID)
			if err != nil {
				log.Error("failed to evaluate entitlement", slog.String("uid", userUID), sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal service error"))
				return
			}

			if !status.HasAccess {
				log.Info("trial expired, access denied", slog.String("uid", userUID))
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("trial expired, access denied"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
