package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/restaurant-radio/internal/models"
	"github.com/magabrotheeeer/restaurant-radio/internal/storage"
)

const userColumns = `uid, email, created_at, updated_at, is_paid, payment_customer_ref,
	plan_type, referral_code, referred_by_code, referral_count, earned_free_access,
	credited_referees, profile`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u           models.User
		updatedAt   sql.NullTime
		customerRef sql.NullString
		planType    sql.NullString
		referredBy  sql.NullString
		credited    []byte
		profile     []byte
	)
	if err := row.Scan(&u.UID, &u.Email, &u.CreatedAt, &updatedAt, &u.IsPaid, &customerRef,
		&planType, &u.ReferralCode, &referredBy, &u.ReferralCount, &u.EarnedFreeAccess,
		&credited, &profile); err != nil {
		return nil, err
	}
	if len(credited) > 0 {
		if err := json.Unmarshal(credited, &u.CreditedReferees); err != nil {
			return nil, fmt.Errorf("decode credited_referees: %w", err)
		}
	}
	if len(profile) > 0 {
		if err := json.Unmarshal(profile, &u.Profile); err != nil {
			return nil, fmt.Errorf("decode profile: %w", err)
		}
	}
	if updatedAt.Valid {
		t := updatedAt.Time
		u.UpdatedAt = &t
	}
	if customerRef.Valid {
		u.PaymentCustomerRef = &customerRef.String
	}
	if planType.Valid {
		p := models.PlanType(planType.String)
		u.PlanType = &p
	}
	if referredBy.Valid {
		u.ReferredByCode = &referredBy.String
	}
	return &u, nil
}

// documentFields кодирует JSONB-поля учётной записи. Пустой список
// сохраняется как [], а не null.
func documentFields(u *models.User) (credited, profile string, err error) {
	referees := u.CreditedReferees
	if referees == nil {
		referees = []string{}
	}
	rawCredited, err := json.Marshal(referees)
	if err != nil {
		return "", "", err
	}
	rawProfile, err := json.Marshal(u.Profile)
	if err != nil {
		return "", "", err
	}
	return string(rawCredited), string(rawProfile), nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullPlan(p *models.PlanType) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*p), Valid: true}
}

// GetUser возвращает учётную запись по UID.
func (s *Storage) GetUser(ctx context.Context, uid string) (*models.User, error) {
	const op = "storage.postgres.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE uid = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, uid))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// CreateUserIfAbsent вставляет запись одной условной командой. created_at
// проставляет сервер базы данных.
func (s *Storage) CreateUserIfAbsent(ctx context.Context, user models.User) (bool, error) {
	const op = "storage.postgres.CreateUserIfAbsent"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	credited, profile, err := documentFields(&user)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	query := `INSERT INTO users (uid, email, is_paid, payment_customer_ref, plan_type,
				referral_code, referred_by_code, referral_count, earned_free_access,
				credited_referees, profile)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			  ON CONFLICT (uid) DO NOTHING`
	result, err := s.DB.ExecContext(ctx, query,
		user.UID, user.Email, user.IsPaid, nullString(user.PaymentCustomerRef), nullPlan(user.PlanType),
		user.ReferralCode, nullString(user.ReferredByCode), user.ReferralCount, user.EarnedFreeAccess,
		credited, profile)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected == 1, nil
}

// UpdateUserInTx выполняет чтение, изменение и запись строки в
// сериализуемой транзакции. При конфликте сериализации транзакция
// повторяется целиком, fn получает заново прочитанную строку.
func (s *Storage) UpdateUserInTx(ctx context.Context, uid string, fn storage.UpdateFunc) (*models.User, *models.User, error) {
	const op = "storage.postgres.UpdateUserInTx"

	var lastErr error
	for range s.txMaxRetries {
		select {
		case <-ctx.Done():
			return nil, nil, fmt.Errorf("%s: %w", op, ctx.Err())
		default:
		}

		before, after, err := s.updateOnce(ctx, uid, fn)
		if err == nil {
			return before, after, nil
		}
		if !isRetryable(err) {
			return nil, nil, fmt.Errorf("%s: %w", op, err)
		}
		lastErr = err
	}
	return nil, nil, fmt.Errorf("%s: %w: %w", op, storage.ErrTxRetriesExhausted, lastErr)
}

func (s *Storage) updateOnce(ctx context.Context, uid string, fn storage.UpdateFunc) (*models.User, *models.User, error) {
	tx, err := s.DB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = tx.Rollback() }()

	query := `SELECT ` + userColumns + ` FROM users WHERE uid = $1 FOR UPDATE`
	before, err := scanUser(tx.QueryRowContext(ctx, query, uid))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, storage.ErrUserNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	after := before.Clone()
	if err := fn(after); err != nil {
		return nil, nil, err
	}

	credited, profile, err := documentFields(after)
	if err != nil {
		return nil, nil, err
	}

	update := `UPDATE users
			   SET email = $1, updated_at = $2, is_paid = $3, payment_customer_ref = $4, plan_type = $5,
			       referral_code = $6, referred_by_code = $7, referral_count = $8, earned_free_access = $9,
			       credited_referees = $10, profile = $11
			   WHERE uid = $12`
	var updatedAt sql.NullTime
	if after.UpdatedAt != nil {
		updatedAt = sql.NullTime{Time: *after.UpdatedAt, Valid: true}
	}
	if _, err := tx.ExecContext(ctx, update,
		after.Email, updatedAt, after.IsPaid, nullString(after.PaymentCustomerRef), nullPlan(after.PlanType),
		after.ReferralCode, nullString(after.ReferredByCode), after.ReferralCount, after.EarnedFreeAccess,
		credited, profile, uid); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}

	after.UID = before.UID
	after.CreatedAt = before.CreatedAt
	return before, after, nil
}
