package model

import (
	"time"
)

const (
	MaxMessageLength = 2000
	// DefaultMessageTTL is how long a message lives after it is posted.
	DefaultMessageTTL = 30 * time.Minute
)

type Message struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
}

// ChatMessage is a message enriched with its author's profile and banners.
// Profile is nil when the author's profile could not be loaded.
type ChatMessage struct {
	Message
	Profile         *ProfileSnapshot     `json:"profile"`
	EquippedBanners []EquippedBannerView `json:"equipped_banners"`
}
