package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/restaurant-radio/internal/cache"
	"github.com/magabrotheeeer/restaurant-radio/internal/http/middlewarectx"
	"github.com/magabrotheeeer/restaurant-radio/internal/lib/callerr"
	"github.com/magabrotheeeer/restaurant-radio/internal/models"
	"github.com/magabrotheeeer/restaurant-radio/internal/services/account"
	"github.com/magabrotheeeer/restaurant-radio/internal/storage/memory"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) EnsureAccount(ctx context.Context, identity models.Identity, referralCode string) (bool, error) {
	args := m.Called(ctx, identity, referralCode)
	return args.Bool(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func withIdentity(r *http.Request, uid, email string) *http.Request {
	ctx := context.WithValue(r.Context(), middlewarectx.UserUID, uid)
	ctx = context.WithValue(ctx, middlewarectx.Email, email)
	return r.WithContext(ctx)
}

func TestBootstrapHandler(t *testing.T) {
	identity := models.Identity{UID: "U1", Email: "chef@bistro.fr"}

	tests := []struct {
		name       string
		body       string
		setupMock  func(*MockService)
		wantStatus int
		wantBody   string
	}{
		{
			name: "with referral code",
			body: `{"referral_code":"R9"}`,
			setupMock: func(m *MockService) {
				m.On("EnsureAccount", mock.Anything, identity, "R9").Return(true, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"OK","data":{"created":true}}`,
		},
		{
			name: "empty body",
			body: ``,
			setupMock: func(m *MockService) {
				m.On("EnsureAccount", mock.Anything, identity, "").Return(false, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `"created":false`,
		},
		{
			name:       "invalid json",
			body:       `{"referral_code":`,
			wantStatus: http.StatusBadRequest,
			wantBody:   "invalid request body",
		},
		{
			name:       "code too long",
			body:       `{"referral_code":"` + strings.Repeat("a", 129) + `"}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   "at most 128",
		},
		{
			name: "store failure",
			body: `{}`,
			setupMock: func(m *MockService) {
				m.On("EnsureAccount", mock.Anything, identity, "").
					Return(false, callerr.New(callerr.Internal, "Unable to create account"))
			},
			wantStatus: http.StatusInternalServerError,
			wantBody:   "Unable to create account",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			if tt.setupMock != nil {
				tt.setupMock(svc)
			}
			req := withIdentity(httptest.NewRequest(http.MethodPost, "/api/v1/account/bootstrap", strings.NewReader(tt.body)), identity.UID, identity.Email)
			rec := httptest.NewRecorder()

			New(newNoopLogger(), svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
			svc.AssertExpectations(t)
		})
	}
}

func TestBootstrapHandler_CreatesRecordOnce(t *testing.T) {
	store := memory.New()
	h := New(newNoopLogger(), account.New(store, cache.Nop{}, newNoopLogger()))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, withIdentity(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"referral_code":"R9"}`)), "U2", "u2@cafe.it"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"created":true`)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, withIdentity(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"referral_code":"OTHER"}`)), "U2", "u2@cafe.it"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"created":false`)

	u, err := store.GetUser(context.Background(), "U2")
	require.NoError(t, err)
	assert.Equal(t, "R9", u.ReferredBy())
	assert.Equal(t, "u2@cafe.it", u.Email)
}

func TestBootstrapHandler_NoIdentity(t *testing.T) {
	h := New(newNoopLogger(), account.New(memory.New(), cache.Nop{}, newNoopLogger()))
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"unauthenticated"`)
}
