package models

import "time"

// UserChanged событие изменения учётной записи, публикуется после каждого
// успешного обновления документа пользователя.
type UserChanged struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Before     *User     `json:"before"`
	After      *User     `json:"after"`
	OccurredAt time.Time `json:"occurred_at"`
}
