package entitlement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/restaurant-radio/internal/models"
)

func intPtr(v int) *int { return &v }

func TestEvaluate(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		user *models.User
		want Status
	}{
		{
			name: "paid user has access regardless of age",
			user: &models.User{IsPaid: true, CreatedAt: now.AddDate(-1, 0, 0)},
			want: Status{HasAccess: true, Plan: PlanPaid},
		},
		{
			name: "earned free access counts as paid",
			user: &models.User{EarnedFreeAccess: true, CreatedAt: now.AddDate(0, 0, -30)},
			want: Status{HasAccess: true, Plan: PlanPaid},
		},
		{
			name: "nil record gets grace trial",
			user: nil,
			want: Status{HasAccess: true, Plan: PlanTrial, DaysRemaining: intPtr(7)},
		},
		{
			name: "record without created_at gets grace trial",
			user: &models.User{UID: "u1"},
			want: Status{HasAccess: true, Plan: PlanTrial, DaysRemaining: intPtr(7)},
		},
		{
			name: "created now",
			user: &models.User{CreatedAt: now},
			want: Status{HasAccess: true, Plan: PlanTrial, DaysRemaining: intPtr(7)},
		},
		{
			name: "created 23 hours ago",
			user: &models.User{CreatedAt: now.Add(-23 * time.Hour)},
			want: Status{HasAccess: true, Plan: PlanTrial, DaysRemaining: intPtr(7)},
		},
		{
			name: "created 3 days ago",
			user: &models.User{CreatedAt: now.AddDate(0, 0, -3)},
			want: Status{HasAccess: true, Plan: PlanTrial, DaysRemaining: intPtr(4)},
		},
		{
			name: "last trial day",
			user: &models.User{CreatedAt: now.Add(-6*24*time.Hour - time.Hour)},
			want: Status{HasAccess: true, Plan: PlanTrial, DaysRemaining: intPtr(1)},
		},
		{
			name: "seven days and one second",
			user: &models.User{CreatedAt: now.Add(-7*24*time.Hour - time.Second)},
			want: Status{HasAccess: false, Plan: PlanExpired, DaysRemaining: intPtr(0)},
		},
		{
			name: "eight days ago",
			user: &models.User{CreatedAt: now.AddDate(0, 0, -8)},
			want: Status{HasAccess: false, Plan: PlanExpired, DaysRemaining: intPtr(0)},
		},
		{
			name: "created slightly in the future",
			user: &models.User{CreatedAt: now.Add(500 * time.Millisecond)},
			want: Status{HasAccess: true, Plan: PlanTrial, DaysRemaining: intPtr(7)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.user, now)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluate_DaysRemainingNonIncreasing(t *testing.T) {
	createdAt := time.Date(2025, 1, 1, 8, 30, 0, 0, time.UTC)
	user := &models.User{CreatedAt: createdAt}

	prev := TrialDays
	for step := time.Duration(0); step <= 10*24*time.Hour; step += 37 * time.Minute {
		got := Evaluate(user, createdAt.Add(step))
		require.NotNil(t, got.DaysRemaining)
		assert.GreaterOrEqual(t, *got.DaysRemaining, 0)
		assert.LessOrEqual(t, *got.DaysRemaining, prev)
		assert.Equal(t, *got.DaysRemaining > 0, got.HasAccess)
		prev = *got.DaysRemaining
	}
	assert.Equal(t, 0, prev)
}

func TestEvaluate_DoesNotMutateRecord(t *testing.T) {
	now := time.Now()
	user := &models.User{UID: "u1", CreatedAt: now.AddDate(0, 0, -2)}
	snapshot := *user

	_ = Evaluate(user, now)
	_ = Evaluate(user, now)

	assert.Equal(t, snapshot, *user)
}
