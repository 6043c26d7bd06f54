package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/templui/heartroom/internal/apperr"
	"github.com/templui/heartroom/internal/model"
	"github.com/templui/heartroom/internal/repository"
)

// KVStore persists small per-user values.
type KVStore interface {
	Get(ctx context.Context, userID, key string) (string, error)
	Set(ctx context.Context, userID, key, value string) error
}

type SettingsService struct {
	store KVStore
}

func NewSettingsService(store KVStore) *SettingsService {
	return &SettingsService{store: store}
}

// NotificationSettings returns the stored settings, or both options off when
// nothing usable is stored.
func (s *SettingsService) NotificationSettings(ctx context.Context, userID string) (model.NotificationSettings, error) {
	var settings model.NotificationSettings

	raw, err := s.store.Get(ctx, userID, model.NotificationSettingsKey)
	if errors.Is(err, repository.ErrSettingNotFound) {
		return settings, nil
	}
	if err != nil {
		return settings, apperr.Backend("failed to load settings", err)
	}

	err = json.Unmarshal([]byte(raw), &settings)
	if err != nil {
		slog.Warn("ignoring malformed notification settings", "error", err, "user_id", userID)
		return model.NotificationSettings{}, nil
	}
	return settings, nil
}

func (s *SettingsService) SaveNotificationSettings(ctx context.Context, userID string, settings model.NotificationSettings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return apperr.Backend("failed to encode settings", err)
	}

	err = s.store.Set(ctx, userID, model.NotificationSettingsKey, string(raw))
	if err != nil {
		return apperr.Backend("failed to save settings", err)
	}
	return nil
}
