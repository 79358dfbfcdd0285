package updateprofile

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/restaurant-radio/internal/cache"
	"github.com/magabrotheeeer/restaurant-radio/internal/http/middlewarectx"
	"github.com/magabrotheeeer/restaurant-radio/internal/models"
	"github.com/magabrotheeeer/restaurant-radio/internal/services/account"
	"github.com/magabrotheeeer/restaurant-radio/internal/storage/memory"
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func request(uid, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/account/profile", strings.NewReader(body))
	return req.WithContext(context.WithValue(req.Context(), middlewarectx.UserUID, uid))
}

func TestUpdateProfileHandler(t *testing.T) {
	tests := []struct {
		name       string
		uid        string
		body       string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "partial update",
			uid:        "U1",
			body:       `{"restaurant_name":"Chez Nous","cuisine_type":"Fine Dining"}`,
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"OK","data":{"restaurant_name":"Chez Nous","cuisine_type":"Fine Dining","country":"","city":"","show_live_pill":true}}`,
		},
		{
			name:       "live pill off",
			uid:        "U1",
			body:       `{"show_live_pill":false}`,
			wantStatus: http.StatusOK,
			wantBody:   `"show_live_pill":false`,
		},
		{
			name:       "invalid json",
			uid:        "U1",
			body:       `{"city":`,
			wantStatus: http.StatusBadRequest,
			wantBody:   "invalid request body",
		},
		{
			name:       "name too long",
			uid:        "U1",
			body:       `{"restaurant_name":"` + strings.Repeat("x", 121) + `"}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   "RestaurantName must be at most 120 characters",
		},
		{
			name:       "account not bootstrapped",
			uid:        "U2",
			body:       `{"city":"Lyon"}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `"code":"invalid-argument"`,
		},
		{
			name:       "unauthenticated",
			uid:        "",
			body:       `{"city":"Lyon"}`,
			wantStatus: http.StatusUnauthorized,
			wantBody:   `"code":"unauthenticated"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.New()
			_, err := store.CreateUserIfAbsent(context.Background(), models.User{UID: "U1", ReferralCode: "U1"})
			require.NoError(t, err)
			h := New(newNoopLogger(), account.New(store, cache.Nop{}, newNoopLogger()))
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, request(tt.uid, tt.body))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}
