package list

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

func (m *MockService) List(ctx context.Context, uid string) ([]models.Station, error) {
	args := m.Called(ctx, uid)
	if s, ok := args.Get(0).([]models.Station); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func TestListHandler(t *testing.T) {
	tests := []struct {
		name       string
		list       []models.Station
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "favorites",
			list:       []models.Station{{StationUUID: "s1", Name: "Jazz FM", Color: "from-gray-700 to-gray-900", Atmosphere: "Favorites"}},
			wantStatus: http.StatusOK,
			wantBody:   `"atmosphere":"Favorites"`,
		},
		{
			name:       "empty",
			list:       []models.Station{},
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"OK","data":[]}`,
		},
		{
			name:       "store failure",
			err:        callerr.Wrap(callerr.Internal, "Unable to load favorites", errors.New("db down")),
			wantStatus: http.StatusInternalServerError,
			wantBody:   "Unable to load favorites",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			svc.On("List", mock.Anything, "U1").Return(tt.list, tt.err).Once()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/favorites", nil)
			req = req.WithContext(context.WithValue(req.Context(), middlewarectx.UserUID, "U1"))
			rec := httptest.NewRecorder()

			New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
			svc.AssertExpectations(t)
		})
	}
}
