// Package models содержит доменные модели сервиса: учётную запись пользователя
// с полями пробного периода, оплаты и реферальной программы, события изменения
// учётной записи и описания радиостанций.
package models

import (
	"slices"
	"time"
)

// PlanType тег тарифа, который провайдер платежей возвращает в метаданных сессии.
type PlanType string

const (
	// PlanMonthly ежемесячная подписка.
	PlanMonthly PlanType = "monthly"
	// PlanAnnual годовая подписка.
	PlanAnnual PlanType = "annual"
	// PlanLifetime разовая оплата бессрочного доступа.
	PlanLifetime PlanType = "lifetime"
)

// User представляет учётную запись пользователя, ключ UID выдаёт провайдер идентификации.
type User struct {
	UID                string     `json:"uid"`
	Email              string     `json:"email"`
	CreatedAt          time.Time  `json:"created_at"` // Начало пробного периода, задаётся один раз хранилищем
	UpdatedAt          *time.Time `json:"updated_at,omitempty"`
	IsPaid             bool       `json:"is_paid"`
	PaymentCustomerRef *string    `json:"payment_customer_ref,omitempty"` // Идентификатор покупателя у провайдера платежей
	PlanType           *PlanType  `json:"plan_type,omitempty"`
	ReferralCode       string     `json:"referral_code"`              // Совпадает с UID
	ReferredByCode     *string    `json:"referred_by_code,omitempty"` // Кто пригласил, задаётся при создании
	ReferralCount      int        `json:"referral_count"`
	EarnedFreeAccess   bool       `json:"earned_free_access"`
	CreditedReferees   []string   `json:"credited_referees,omitempty"` // UID приглашённых, за которых уже начислен кредит
	Profile            Profile    `json:"profile"`
}

// Profile данные заведения, которые пользователь заполняет в настройках.
type Profile struct {
	RestaurantName string `json:"restaurant_name"`
	CuisineType    string `json:"cuisine_type"`
	Country        string `json:"country"`
	City           string `json:"city"`
	ShowLivePill   *bool  `json:"show_live_pill,omitempty"`
}

// LivePillVisible показывает индикатор эфира, пока пользователь его не отключил.
func (p Profile) LivePillVisible() bool {
	return p.ShowLivePill == nil || *p.ShowLivePill
}

// Identity данные, которые провайдер идентификации передаёт после входа.
type Identity struct {
	UID   string
	Email string
}

// Clone возвращает глубокую копию записи.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.UpdatedAt != nil {
		t := *u.UpdatedAt
		c.UpdatedAt = &t
	}
	if u.PaymentCustomerRef != nil {
		s := *u.PaymentCustomerRef
		c.PaymentCustomerRef = &s
	}
	if u.PlanType != nil {
		p := *u.PlanType
		c.PlanType = &p
	}
	if u.ReferredByCode != nil {
		s := *u.ReferredByCode
		c.ReferredByCode = &s
	}
	c.CreditedReferees = slices.Clone(u.CreditedReferees)
	if u.Profile.ShowLivePill != nil {
		b := *u.Profile.ShowLivePill
		c.Profile.ShowLivePill = &b
	}
	return &c
}

// ReferredBy возвращает код пригласившего или пустую строку.
func (u *User) ReferredBy() string {
	if u == nil || u.ReferredByCode == nil {
		return ""
	}
	return *u.ReferredByCode
}

// CustomerRef возвращает идентификатор покупателя или пустую строку.
func (u *User) CustomerRef() string {
	if u == nil || u.PaymentCustomerRef == nil {
		return ""
	}
	return *u.PaymentCustomerRef
}

// HasCredited сообщает, начислен ли уже кредит за приглашённого referee.
func (u *User) HasCredited(referee string) bool {
	return u != nil && slices.Contains(u.CreditedReferees, referee)
}
