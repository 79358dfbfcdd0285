package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/magabrotheeeer/restaurant-radio/internal/models"
)

// ListFavorites возвращает избранные станции в порядке добавления.
func (s *Storage) ListFavorites(ctx context.Context, uid string) ([]models.Station, error) {
	const op = "storage.postgres.ListFavorites"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT station FROM favorites WHERE user_uid = $1 ORDER BY created_at, station_uuid`
	rows, err := s.DB.QueryContext(ctx, query, uid)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	result := make([]models.Station, 0)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		var st models.Station
		if err := json.Unmarshal(raw, &st); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ToggleFavorite удаляет станцию из избранного, а если её там не было, добавляет.
func (s *Storage) ToggleFavorite(ctx context.Context, uid string, station models.Station) (bool, error) {
	const op = "storage.postgres.ToggleFavorite"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_uid = $1 AND station_uuid = $2`, uid, station.StationUUID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	added := removed == 0
	if added {
		payload, err := json.Marshal(station)
		if err != nil {
			return false, fmt.Errorf("%s: %w", op, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO favorites (user_uid, station_uuid, station) VALUES ($1, $2, $3)
			 ON CONFLICT (user_uid, station_uuid) DO NOTHING`,
			uid, station.StationUUID, string(payload)); err != nil {
			return false, fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return added, nil
}
