package model

import (
	"time"
)

type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// Rarities lists every tier from lowest to highest.
var Rarities = []Rarity{RarityCommon, RarityRare, RarityEpic, RarityLegendary}

// Rank orders rarities: common < rare < epic < legendary. Unknown values rank lowest.
func (r Rarity) Rank() int {
	for i, v := range Rarities {
		if v == r {
			return i
		}
	}
	return -1
}

const MaxEquippedBanners = 2

type Banner struct {
	ID             string    `db:"id" json:"id"`
	Emoji          string    `db:"emoji" json:"emoji"`
	Name           string    `db:"name" json:"name"`
	Description    *string   `db:"description" json:"description,omitempty"`
	Rarity         Rarity    `db:"rarity" json:"rarity"`
	HeartsRequired int       `db:"hearts_required" json:"hearts_required"`
	CreatedAt      time.Time `db:"created_at" json:"-"`
}

type UserBanner struct {
	ID         string    `db:"id" json:"id"`
	UserID     string    `db:"user_id" json:"user_id"`
	BannerID   string    `db:"banner_id" json:"banner_id"`
	UnlockedAt time.Time `db:"unlocked_at" json:"unlocked_at"`
}

type EquippedBanner struct {
	ID         string    `db:"id" json:"id"`
	UserID     string    `db:"user_id" json:"user_id"`
	BannerID   string    `db:"banner_id" json:"banner_id"`
	Position   int       `db:"position" json:"position"`
	EquippedAt time.Time `db:"equipped_at" json:"equipped_at"`
}

// BannerSummary is the banner shape shown next to usernames.
type BannerSummary struct {
	ID             string `db:"id" json:"id"`
	Name           string `db:"name" json:"name"`
	Emoji          string `db:"emoji" json:"emoji"`
	Rarity         Rarity `db:"rarity" json:"rarity"`
	HeartsRequired int    `db:"hearts_required" json:"hearts_required"`
}

type EquippedBannerView struct {
	UserID   string        `db:"user_id" json:"-"`
	BannerID string        `db:"banner_id" json:"banner_id"`
	Position int           `db:"position" json:"position"`
	Banner   BannerSummary `db:"banner" json:"banner"`
}

type UnlockedBannerView struct {
	BannerID   string        `db:"banner_id" json:"banner_id"`
	UnlockedAt time.Time     `db:"unlocked_at" json:"unlocked_at"`
	Banner     BannerSummary `db:"banner" json:"banner"`
}
