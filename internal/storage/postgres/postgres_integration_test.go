//go:build integration

package postgres

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/restaurant-radio/internal/migrations"
	"github.com/magabrotheeeer/restaurant-radio/internal/models"
	"github.com/magabrotheeeer/restaurant-radio/internal/storage"
)

func setupTestDatabase(t *testing.T) *Storage {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(t, err, "failed to start container")
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := New(ctx, dsn, 50)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, migrations.Run(s.DB, "../../../migrations"))
	require.NoError(t, s.CheckDatabaseReady(ctx))
	return s
}

func TestStorage_Integration(t *testing.T) {
	s := setupTestDatabase(t)
	ctx := context.Background()

	t.Run("create if absent keeps the first record", func(t *testing.T) {
		ok, err := s.CreateUserIfAbsent(ctx, models.User{UID: "u1", Email: "a@b.c", ReferralCode: "u1"})
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = s.CreateUserIfAbsent(ctx, models.User{UID: "u1", Email: "x@y.z", IsPaid: true})
		require.NoError(t, err)
		assert.False(t, ok)

		u, err := s.GetUser(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "a@b.c", u.Email)
		assert.False(t, u.IsPaid)
		assert.False(t, u.CreatedAt.IsZero())
	})

	t.Run("concurrent referral credits are not lost", func(t *testing.T) {
		_, err := s.CreateUserIfAbsent(ctx, models.User{UID: "ref", ReferralCode: "ref"})
		require.NoError(t, err)

		var wg sync.WaitGroup
		for range 5 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _, err := s.UpdateUserInTx(ctx, "ref", creditReferral)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		u, err := s.GetUser(ctx, "ref")
		require.NoError(t, err)
		assert.Equal(t, 5, u.ReferralCount)
		assert.True(t, u.EarnedFreeAccess)
		assert.True(t, u.IsPaid)
	})

	t.Run("missing referrer", func(t *testing.T) {
		_, _, err := s.UpdateUserInTx(ctx, "ghost", creditReferral)
		assert.ErrorIs(t, err, storage.ErrUserNotFound)
	})

	t.Run("favorites toggle", func(t *testing.T) {
		st := models.Station{StationUUID: "s1", Name: "Jazz FM", Bitrate: 128}

		added, err := s.ToggleFavorite(ctx, "u1", st)
		require.NoError(t, err)
		assert.True(t, added)

		list, err := s.ListFavorites(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, st, list[0])

		added, err = s.ToggleFavorite(ctx, "u1", st)
		require.NoError(t, err)
		assert.False(t, added)

		list, err = s.ListFavorites(ctx, "u1")
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("play history keeps six newest without repeats", func(t *testing.T) {
		for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "c"} {
			_, err := s.RecordPlay(ctx, "u1", models.Station{StationUUID: id})
			require.NoError(t, err)
		}

		list, err := s.ListHistory(ctx, "u1")
		require.NoError(t, err)
		got := make([]string, 0, len(list))
		for _, st := range list {
			got = append(got, st.StationUUID)
		}
		assert.Equal(t, []string{"c", "g", "f", "e", "d", "b"}, got)
	})

	t.Run("profile and credited referees round trip", func(t *testing.T) {
		off := false
		_, _, err := s.UpdateUserInTx(ctx, "u1", func(u *models.User) error {
			u.CreditedReferees = append(u.CreditedReferees, "u9")
			u.Profile = models.Profile{RestaurantName: "Chez Nous", CuisineType: "Bar", City: "Lyon", ShowLivePill: &off}
			return nil
		})
		require.NoError(t, err)

		u, err := s.GetUser(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, []string{"u9"}, u.CreditedReferees)
		assert.Equal(t, "Lyon", u.Profile.City)
		assert.False(t, u.Profile.LivePillVisible())
	})
}
