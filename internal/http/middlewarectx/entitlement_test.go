package middlewarectx_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/restaurant-radio/internal/entitlement"
	"github.com/magabrotheeeer/restaurant-radio/internal/http/middlewarectx"
)

type EntitlementMock struct {
	mock.Mock
}

func (m *EntitlementMock) Entitlement(ctx context.Context, uid string) (entitlement.Status, error) {
	args := m.Called(ctx, uid)
	return args.Get(0).(entitlement.Status), args.Error(1)
}

func TestEntitlementMiddleware(t *testing.T) {
	zero := 0
	three := 3

	tests := []struct {
		name       string
		uid        string
		status     entitlement.Status
		err        error
		wantStatus int
	}{
		{name: "no identity", wantStatus: http.StatusUnauthorized},
		{
			name:       "paid",
			uid:        "U1",
			status:     entitlement.Status{HasAccess: true, Plan: entitlement.PlanPaid},
			wantStatus: http.StatusOK,
		},
		{
			name:       "trial running",
			uid:        "U1",
			status:     entitlement.Status{HasAccess: true, Plan: entitlement.PlanTrial, DaysRemaining: &three},
			wantStatus: http.StatusOK,
		},
		{
			name:       "trial expired",
			uid:        "U1",
			status:     entitlement.Status{Plan: entitlement.PlanExpired, DaysRemaining: &zero},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "store failure",
			uid:        "U1",
			err:        errors.New("db down"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(EntitlementMock)
			if tt.uid != "" {
				svc.On("Entitlement", mock.Anything, tt.uid).Return(tt.status, tt.err).Once()
			}
			next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/stations/search", nil)
			if tt.uid != "" {
				req = req.WithContext(context.WithValue(req.Context(), middlewarectx.UserUID, tt.uid))
			}
			rec := httptest.NewRecorder()
			middlewarectx.EntitlementMiddleware(newNoopLogger(), svc)(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			svc.AssertExpectations(t)
		})
	}
}
