package profile

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/restaurant-radio/internal/http/middlewarectx"
	"github.com/magabrotheeeer/restaurant-radio/internal/lib/callerr"
	"github.com/magabrotheeeer/restaurant-radio/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Profile(ctx context.Context, uid string) (models.Profile, error) {
	args := m.Called(ctx, uid)
	return args.Get(0).(models.Profile), args.Error(1)
}

func TestProfileHandler(t *testing.T) {
	off := false

	tests := []struct {
		name       string
		profile    models.Profile
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "empty profile shows live pill",
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"OK","data":{"restaurant_name":"","cuisine_type":"","country":"","city":"","show_live_pill":true}}`,
		},
		{
			name:       "live pill turned off",
			profile:    models.Profile{RestaurantName: "Chez Nous", CuisineType: "Bar", ShowLivePill: &off},
			wantStatus: http.StatusOK,
			wantBody:   `"cuisine_type":"Bar","country":"","city":"","show_live_pill":false`,
		},
		{
			name:       "store failure",
			err:        callerr.Wrap(callerr.Internal, "Unable to load profile", errors.New("db down")),
			wantStatus: http.StatusInternalServerError,
			wantBody:   "Unable to load profile",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			svc.On("Profile", mock.Anything, "U1").Return(tt.profile, tt.err).Once()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/account/profile", nil)
			req = req.WithContext(context.WithValue(req.Context(), middlewarectx.UserUID, "U1"))
			rec := httptest.NewRecorder()

			New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
			svc.AssertExpectations(t)
		})
	}
}
