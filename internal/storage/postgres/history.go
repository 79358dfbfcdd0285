package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/restaurant-radio/internal/models"
)

// ListHistory возвращает историю прослушивания, новые станции первыми.
func (s *Storage) ListHistory(ctx context.Context, uid string) ([]models.Station, error) {
	const op = "storage.postgres.ListHistory"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var raw []byte
	err := s.DB.QueryRowContext(ctx, `SELECT stations FROM play_history WHERE user_uid = $1`, uid).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return []models.Station{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	result, err := decodeStations(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// RecordPlay ставит станцию в начало истории. Строка истории блокируется
// на время пересчёта, поэтому параллельные записи не теряются.
func (s *Storage) RecordPlay(ctx context.Context, uid string, station models.Station) ([]models.Station, error) {
	const op = "storage.postgres.RecordPlay"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO play_history (user_uid) VALUES ($1) ON CONFLICT (user_uid) DO NOTHING`, uid); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var raw []byte
	if err := tx.QueryRowContext(ctx,
		`SELECT stations FROM play_history WHERE user_uid = $1 FOR UPDATE`, uid).Scan(&raw); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	history, err := decodeStations(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	history = models.PushRecent(history, station, models.HistoryLimit)
	payload, err := json.Marshal(history)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE play_history SET stations = $1, updated_at = now() WHERE user_uid = $2`,
		string(payload), uid); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return history, nil
}

func decodeStations(raw []byte) ([]models.Station, error) {
	result := make([]models.Station, 0)
	if len(raw) == 0 {
		return result, nil
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, err
	}
	return result, nil
}
