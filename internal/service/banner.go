package service

import (
	"context"
	"errors"

	"github.com/templui/heartroom/internal/apperr"
	"github.com/templui/heartroom/internal/banner"
	"github.com/templui/heartroom/internal/model"
	"github.com/templui/heartroom/internal/repository"
	"github.com/templui/heartroom/internal/validation"
)

type BannerService struct {
	bannerRepo     repository.BannerRepository
	userBannerRepo repository.UserBannerRepository
	equippedRepo   repository.EquippedBannerRepository
	profileRepo    repository.ProfileRepository
	rewards        RewardClaimer
}

func NewBannerService(
	bannerRepo repository.BannerRepository,
	userBannerRepo repository.UserBannerRepository,
	equippedRepo repository.EquippedBannerRepository,
	profileRepo repository.ProfileRepository,
	rewards RewardClaimer,
) *BannerService {
	return &BannerService{
		bannerRepo:     bannerRepo,
		userBannerRepo: userBannerRepo,
		equippedRepo:   equippedRepo,
		profileRepo:    profileRepo,
		rewards:        rewards,
	}
}

// Collection derives the catalog as seen by userID.
func (s *BannerService) Collection(ctx context.Context, userID string) (banner.Collection, error) {
	profile, err := s.profileRepo.ByUserID(ctx, userID)
	if errors.Is(err, repository.ErrProfileNotFound) {
		return banner.Collection{}, apperr.NotFound("profile not found")
	}
	if err != nil {
		return banner.Collection{}, apperr.Backend("failed to load profile", err)
	}

	catalog, err := s.bannerRepo.All(ctx)
	if err != nil {
		return banner.Collection{}, apperr.Backend("failed to load banners", err)
	}

	records, err := s.userBannerRepo.ByUser(ctx, userID)
	if err != nil {
		return banner.Collection{}, apperr.Backend("failed to load unlocked banners", err)
	}

	return banner.Derive(profile.HeartsCount, catalog, records), nil
}

func (s *BannerService) Equipped(ctx context.Context, userID string) ([]model.EquippedBannerView, error) {
	views, err := s.equippedRepo.ByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Backend("failed to load equipped banners", err)
	}
	return views, nil
}

// ToggleEquip equips or unequips a banner. Equipping requires the banner to
// be unlocked and a free slot; a full loadout is refused before any write.
func (s *BannerService) ToggleEquip(ctx context.Context, userID, bannerID string) (banner.Plan, error) {
	err := validation.RequireID(userID, "user")
	if err != nil {
		return banner.Plan{}, apperr.New(apperr.KindUnauthenticated, err.Error())
	}
	err = validation.RequireID(bannerID, "banner id")
	if err != nil {
		return banner.Plan{}, apperr.Validation(err.Error())
	}

	equipped, err := s.Equipped(ctx, userID)
	if err != nil {
		return banner.Plan{}, err
	}

	plan, err := banner.Loadout{Equipped: equipped}.Toggle(bannerID)
	if errors.Is(err, banner.ErrLoadoutFull) {
		return banner.Plan{}, apperr.Wrap(apperr.KindEquipLimit, "you can only equip two banners", err)
	}
	if err != nil {
		return banner.Plan{}, apperr.Backend("failed to plan equip", err)
	}

	if plan.Action == banner.Unequip {
		_, err = s.equippedRepo.Unequip(ctx, userID, bannerID)
		if err != nil {
			return banner.Plan{}, apperr.Backend("failed to unequip banner", err)
		}
		return plan, nil
	}

	err = s.ensureUnlocked(ctx, userID, bannerID)
	if err != nil {
		return banner.Plan{}, err
	}

	err = s.equippedRepo.Equip(ctx, &model.EquippedBanner{UserID: userID, BannerID: bannerID, Position: plan.Position})
	if errors.Is(err, repository.ErrAlreadyEquipped) {
		return banner.Plan{}, apperr.Wrap(apperr.KindConflict, "banner is already equipped", err)
	}
	if errors.Is(err, repository.ErrSlotTaken) {
		return banner.Plan{}, apperr.Wrap(apperr.KindEquipLimit, "you can only equip two banners", err)
	}
	if err != nil {
		return banner.Plan{}, apperr.Backend("failed to equip banner", err)
	}

	claimQuietly(ctx, s.rewards, userID, model.ActivityBannerEquip)
	return plan, nil
}

// ensureUnlocked checks the banner is owned and persists threshold unlocks
// that have no record yet so they survive later heart changes.
func (s *BannerService) ensureUnlocked(ctx context.Context, userID, bannerID string) error {
	collection, err := s.Collection(ctx, userID)
	if err != nil {
		return err
	}

	for _, item := range collection.Items {
		if item.ID != bannerID {
			continue
		}
		if !item.Unlocked {
			return apperr.New(apperr.KindLocked, "this banner is still locked")
		}
		if item.UnlockedAt == nil {
			err = s.userBannerRepo.Grant(ctx, userID, bannerID)
			if err != nil {
				return apperr.Backend("failed to record unlock", err)
			}
		}
		return nil
	}

	return apperr.NotFound("banner not found")
}
