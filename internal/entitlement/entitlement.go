// Package entitlement вычисляет право доступа пользователя к сервису
// по снимку учётной записи и текущему времени.
package entitlement

import (
	"time"

	"github.com/magabrotheeeer/restaurant-radio/internal/models"
)

const (
	// TrialDays длительность пробного периода в днях.
	TrialDays = 7
	// ReferralRewardThreshold число оплативших приглашённых, после которого
	// пригласивший получает бессрочный доступ.
	ReferralRewardThreshold = 2
)

// Plan итоговый статус доступа.
type Plan string

const (
	PlanPaid    Plan = "paid"
	PlanTrial   Plan = "trial"
	PlanExpired Plan = "expired"
)

// Status результат вычисления доступа. DaysRemaining равен nil для оплаченного доступа.
type Status struct {
	HasAccess     bool `json:"has_access"`
	Plan          Plan `json:"plan"`
	DaysRemaining *int `json:"days_remaining"`
}

// Evaluate вычисляет доступ. Запись без CreatedAt считается только что
// созданной и получает полный пробный период.
func Evaluate(user *models.User, now time.Time) Status {
	if user != nil && (user.IsPaid || user.EarnedFreeAccess) {
		return Status{HasAccess: true, Plan: PlanPaid}
	}
	if user == nil || user.CreatedAt.IsZero() {
		return trial(TrialDays)
	}

	elapsed := now.Sub(user.CreatedAt)
	elapsedDays := int(elapsed / (24 * time.Hour))
	if elapsed < 0 {
		// Часы клиента и сервера могут расходиться на доли секунды.
		elapsedDays = 0
	}

	remaining := max(0, TrialDays-elapsedDays)
	if remaining == 0 {
		return Status{HasAccess: false, Plan: PlanExpired, DaysRemaining: &remaining}
	}
	return trial(remaining)
}

func trial(days int) Status {
	return Status{HasAccess: true, Plan: PlanTrial, DaysRemaining: &days}
}
