package service

import (
	"context"
	"log/slog"

	"github.com/templui/heartroom/internal/apperr"
	"github.com/templui/heartroom/internal/model"
	"github.com/templui/heartroom/internal/repository"
)

const (
	fallbackUsername    = "Usuario"
	fallbackBannerEmoji = "🏆"
	fallbackBannerName  = "Banner"
)

type RankingService struct {
	profileRepo  repository.ProfileRepository
	equippedRepo repository.EquippedBannerRepository
	bannerRepo   repository.BannerRepository
	limit        int
}

func NewRankingService(
	profileRepo repository.ProfileRepository,
	equippedRepo repository.EquippedBannerRepository,
	bannerRepo repository.BannerRepository,
	limit int,
) *RankingService {
	return &RankingService{
		profileRepo:  profileRepo,
		equippedRepo: equippedRepo,
		bannerRepo:   bannerRepo,
		limit:        limit,
	}
}

// Rankings returns the top profiles by hearts with room-wide stats.
func (s *RankingService) Rankings(ctx context.Context) (*model.Rankings, error) {
	profiles, err := s.profileRepo.Top(ctx, s.limit)
	if err != nil {
		return nil, apperr.Backend("failed to load rankings", err)
	}

	userIDs := make([]string, len(profiles))
	for i, p := range profiles {
		userIDs[i] = p.UserID
	}

	equipped, err := s.equippedRepo.ByUsers(ctx, userIDs)
	if err != nil {
		slog.Warn("failed to load ranking banners", "error", err)
		equipped = nil
	}

	users := make([]model.RankingUser, len(profiles))
	for i, p := range profiles {
		username := p.Username
		if username == "" {
			username = fallbackUsername
		}
		users[i] = model.RankingUser{
			ID:              p.UserID,
			Username:        username,
			AvatarURL:       p.AvatarURL,
			HeartsCount:     p.HeartsCount,
			Rank:            i + 1,
			EquippedBanners: withFallbacks(equipped[p.UserID]),
		}
	}

	stats, err := s.stats(ctx)
	if err != nil {
		return nil, err
	}

	return &model.Rankings{Users: users, Stats: stats}, nil
}

func (s *RankingService) stats(ctx context.Context) (model.RankingStats, error) {
	var stats model.RankingStats
	var err error

	stats.TotalHearts, err = s.profileRepo.TotalHearts(ctx)
	if err != nil {
		return stats, apperr.Backend("failed to count hearts", err)
	}
	stats.TotalUsers, err = s.profileRepo.Count(ctx)
	if err != nil {
		return stats, apperr.Backend("failed to count users", err)
	}
	stats.TotalBanners, err = s.bannerRepo.Count(ctx)
	if err != nil {
		return stats, apperr.Backend("failed to count banners", err)
	}
	return stats, nil
}

// withFallbacks keeps at most two banners and fills in missing catalog fields.
func withFallbacks(views []model.EquippedBannerView) []model.EquippedBannerView {
	if len(views) > model.MaxEquippedBanners {
		views = views[:model.MaxEquippedBanners]
	}

	out := make([]model.EquippedBannerView, len(views))
	for i, v := range views {
		if v.Banner.Emoji == "" {
			v.Banner.Emoji = fallbackBannerEmoji
		}
		if v.Banner.Name == "" {
			v.Banner.Name = fallbackBannerName
		}
		if v.Banner.Rarity == "" {
			v.Banner.Rarity = model.RarityCommon
		}
		out[i] = v
	}
	return out
}
