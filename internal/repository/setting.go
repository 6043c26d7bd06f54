package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

var ErrSettingNotFound = errors.New("setting not found")

// SettingRepository is a per-user key-value store.
type SettingRepository interface {
	Get(ctx context.Context, userID, name string) (string, error)
	Set(ctx context.Context, userID, name, value string) error
}

type settingRepository struct {
	db *sqlx.DB
}

func NewSettingRepository(db *sqlx.DB) SettingRepository {
	return &settingRepository{db: db}
}

func (r *settingRepository) Get(ctx context.Context, userID, name string) (string, error) {
	var value string
	err := r.db.GetContext(ctx, &value, `SELECT value FROM settings WHERE user_id = $1 AND name = $2`, userID, name)
	if err == sql.ErrNoRows {
		return "", ErrSettingNotFound
	}
	return value, err
}

func (r *settingRepository) Set(ctx context.Context, userID, name, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (user_id, name, value, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, userID, name, value, time.Now().UTC())
	return err
}
