package model

import "time"

type Activity string

const (
	ActivityDailyLogin   Activity = "daily_login"
	ActivityFirstMessage Activity = "first_message"
	ActivityProfileVisit Activity = "profile_visit"
	ActivityBannerEquip  Activity = "banner_equip"
)

type ActivityReward struct {
	Activity    Activity `json:"type"`
	Hearts      int      `json:"hearts"`
	Description string   `json:"description"`
}

var ActivityRewards = map[Activity]ActivityReward{
	ActivityDailyLogin:   {Activity: ActivityDailyLogin, Hearts: 10, Description: "daily login"},
	ActivityFirstMessage: {Activity: ActivityFirstMessage, Hearts: 5, Description: "first message of the day"},
	ActivityProfileVisit: {Activity: ActivityProfileVisit, Hearts: 2, Description: "visiting a profile"},
	ActivityBannerEquip:  {Activity: ActivityBannerEquip, Hearts: 3, Description: "equipping a banner"},
}

type RewardClaim struct {
	UserID    string    `db:"user_id" json:"user_id"`
	Activity  Activity  `db:"activity" json:"activity"`
	Day       string    `db:"day" json:"day"`
	Hearts    int       `db:"hearts" json:"hearts"`
	ClaimedAt time.Time `db:"claimed_at" json:"claimed_at"`
}
