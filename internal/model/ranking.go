package model

type RankingUser struct {
	ID              string               `json:"id"`
	Username        string               `json:"username"`
	AvatarURL       *string              `json:"avatar_url,omitempty"`
	HeartsCount     int                  `json:"hearts_count"`
	Rank            int                  `json:"rank"`
	EquippedBanners []EquippedBannerView `json:"equipped_banners"`
}

type RankingStats struct {
	TotalHearts  int `json:"totalHearts"`
	TotalUsers   int `json:"totalUsers"`
	TotalBanners int `json:"totalBanners"`
}

type Rankings struct {
	Users []RankingUser `json:"rankings"`
	Stats RankingStats  `json:"stats"`
}
