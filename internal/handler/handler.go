// Package handler exposes the services over JSON and the chat over a
// websocket.
package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/templui/heartroom/internal/banner"
	"github.com/templui/heartroom/internal/model"
	"github.com/templui/heartroom/internal/service"
)

type AuthAPI interface {
	Register(ctx context.Context, in service.RegisterInput) (*model.User, error)
	Login(ctx context.Context, email, password string) (*model.User, error)
	Me(ctx context.Context, userID string) (*model.Profile, error)
	GenerateJWT(user *model.User) (string, time.Time, error)
	SetJWTCookie(w http.ResponseWriter, token string, expiry time.Time)
	ClearJWTCookie(w http.ResponseWriter)
}

type MessageAPI interface {
	FetchMessages(ctx context.Context) ([]*model.ChatMessage, error)
	FetchMessageByID(ctx context.Context, id string) (*model.ChatMessage, error)
	CreateMessage(ctx context.Context, content, authorID string) error
	DeleteMessage(ctx context.Context, id, userID string) (bool, error)
	ClearAll(ctx context.Context) (int64, error)
}

type HeartAPI interface {
	GiveHeart(ctx context.Context, in service.HeartInput) error
}

type BannerAPI interface {
	Collection(ctx context.Context, userID string) (banner.Collection, error)
	Equipped(ctx context.Context, userID string) ([]model.EquippedBannerView, error)
	ToggleEquip(ctx context.Context, userID, bannerID string) (banner.Plan, error)
}

type ProfileAPI interface {
	View(ctx context.Context, viewerID, userID string) (*model.ProfileView, error)
	UpdateDescription(ctx context.Context, userID, description string) (*string, error)
	UploadAvatar(ctx context.Context, userID string, r io.ReadSeeker, size int64) (string, error)
}

type RankingAPI interface {
	Rankings(ctx context.Context) (*model.Rankings, error)
}

type SettingsAPI interface {
	NotificationSettings(ctx context.Context, userID string) (model.NotificationSettings, error)
	SaveNotificationSettings(ctx context.Context, userID string, settings model.NotificationSettings) error
}

type RewardAPI interface {
	service.RewardClaimer
	Today(ctx context.Context, userID string) ([]*model.RewardClaim, error)
}

// claimQuietly rewards a side activity without affecting the response.
func claimQuietly(ctx context.Context, rewards service.RewardClaimer, userID string, activity model.Activity) {
	if rewards == nil {
		return
	}
	_, err := rewards.Claim(ctx, userID, activity)
	if err != nil {
		slog.Warn("failed to claim activity reward", "error", err, "user_id", userID, "activity", activity)
	}
}
