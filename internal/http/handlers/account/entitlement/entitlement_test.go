package entitlement

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

	"github.com/magabrotheeeer/restaurant-radio/internal/entitlement"
	"github.com/magabrotheeeer/restaurant-radio/internal/http/middlewarectx"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Entitlement(ctx context.Context, uid string) (entitlement.Status, error) {
	args := m.Called(ctx, uid)
	return args.Get(0).(entitlement.Status), args.Error(1)
}

func TestEntitlementHandler(t *testing.T) {
	four := 4
	zero := 0

	tests := []struct {
		name       string
		status     entitlement.Status
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "trial",
			status:     entitlement.Status{HasAccess: true, Plan: entitlement.PlanTrial, DaysRemaining: &four},
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"OK","data":{"has_access":true,"plan":"trial","days_remaining":4}}`,
		},
		{
			name:       "paid",
			status:     entitlement.Status{HasAccess: true, Plan: entitlement.PlanPaid},
			wantStatus: http.StatusOK,
			wantBody:   `"plan":"paid","days_remaining":null`,
		},
		{
			name:       "expired",
			status:     entitlement.Status{Plan: entitlement.PlanExpired, DaysRemaining: &zero},
			wantStatus: http.StatusOK,
			wantBody:   `"has_access":false`,
		},
		{
			name:       "store failure",
			err:        errors.New("db down"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `"code":"internal"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			svc.On("Entitlement", mock.Anything, "U1").Return(tt.status, tt.err).Once()

			req := httptest.NewRequest(http.MethodGet, "/api/v1/account/entitlement", nil)
			req = req.WithContext(context.WithValue(req.Context(), middlewarectx.UserUID, "U1"))
			rec := httptest.NewRecorder()

			New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
			svc.AssertExpectations(t)
		})
	}
}
