package model

import "time"

const MaxDescriptionLength = 200

type Profile struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	Username    string    `db:"username" json:"username"`
	AvatarURL   *string   `db:"avatar_url" json:"avatar_url"`
	HeartsCount int       `db:"hearts_count" json:"hearts_count"`
	Description *string   `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Snapshot is the slice of a profile embedded into enriched chat messages.
func (p *Profile) Snapshot() *ProfileSnapshot {
	return &ProfileSnapshot{
		Username:    p.Username,
		AvatarURL:   p.AvatarURL,
		HeartsCount: p.HeartsCount,
	}
}

type ProfileSnapshot struct {
	Username    string  `json:"username"`
	AvatarURL   *string `json:"avatar_url"`
	HeartsCount int     `json:"hearts_count"`
}

// ProfileView is a profile page: the profile, its banners and activity.
type ProfileView struct {
	Profile
	EquippedBanners []EquippedBannerView `json:"equipped_banners"`
	UserBanners     []UnlockedBannerView `json:"user_banners"`
	MessageCount    int                  `json:"message_count"`
	IsOwnProfile    bool                 `json:"is_own_profile"`
}
