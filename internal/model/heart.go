package model

import "time"

type Heart struct {
	ID         string    `db:"id" json:"id"`
	GiverID    string    `db:"giver_id" json:"giver_id"`
	ReceiverID string    `db:"receiver_id" json:"receiver_id"`
	MessageID  *string   `db:"message_id" json:"message_id,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Grant is the outcome of adding hearts to a profile.
type Grant struct {
	UserID            string   `json:"user_id"`
	HeartsCount       int      `json:"hearts_count"`
	UnlockedBannerIDs []string `json:"unlocked_banner_ids"`
}
