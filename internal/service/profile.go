package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/templui/heartroom/internal/apperr"
	"github.com/templui/heartroom/internal/model"
	"github.com/templui/heartroom/internal/repository"
	"github.com/templui/heartroom/internal/storage"
	"github.com/templui/heartroom/internal/validation"
)

type ProfileService struct {
	profileRepo    repository.ProfileRepository
	equippedRepo   repository.EquippedBannerRepository
	userBannerRepo repository.UserBannerRepository
	messageRepo    repository.MessageRepository
	storage        storage.Storage
	rewards        RewardClaimer
	avatarMaxBytes int64
	avatarSize     int
	now            func() time.Time
}

func NewProfileService(
	profileRepo repository.ProfileRepository,
	equippedRepo repository.EquippedBannerRepository,
	userBannerRepo repository.UserBannerRepository,
	messageRepo repository.MessageRepository,
	storage storage.Storage,
	rewards RewardClaimer,
	avatarMaxBytes int64,
	avatarSize int,
) *ProfileService {
	return &ProfileService{
		profileRepo:    profileRepo,
		equippedRepo:   equippedRepo,
		userBannerRepo: userBannerRepo,
		messageRepo:    messageRepo,
		storage:        storage,
		rewards:        rewards,
		avatarMaxBytes: avatarMaxBytes,
		avatarSize:     avatarSize,
		now:            time.Now,
	}
}

func (s *ProfileService) ByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	profile, err := s.profileRepo.ByUserID(ctx, userID)
	if errors.Is(err, repository.ErrProfileNotFound) {
		return nil, apperr.NotFound("profile not found")
	}
	if err != nil {
		return nil, apperr.Backend("failed to load profile", err)
	}
	return profile, nil
}

// View assembles a profile page. Visiting someone else's profile earns the
// viewer a profile_visit reward.
func (s *ProfileService) View(ctx context.Context, viewerID, userID string) (*model.ProfileView, error) {
	err := validation.RequireID(userID, "user id")
	if err != nil {
		return nil, apperr.Validation(err.Error())
	}

	profile, err := s.ByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	view := &model.ProfileView{
		Profile:         *profile,
		EquippedBanners: []model.EquippedBannerView{},
		UserBanners:     []model.UnlockedBannerView{},
		IsOwnProfile:    viewerID == userID,
	}

	equipped, err := s.equippedRepo.ByUser(ctx, userID)
	if err != nil {
		slog.Warn("failed to load equipped banners", "error", err, "user_id", userID)
	} else {
		view.EquippedBanners = equipped
	}

	unlocked, err := s.userBannerRepo.Views(ctx, userID)
	if err != nil {
		slog.Warn("failed to load unlocked banners", "error", err, "user_id", userID)
	} else if unlocked != nil {
		view.UserBanners = unlocked
	}

	view.MessageCount, err = s.messageRepo.CountByUser(ctx, userID)
	if err != nil {
		slog.Warn("failed to count messages", "error", err, "user_id", userID)
	}

	if viewerID != "" && !view.IsOwnProfile {
		claimQuietly(ctx, s.rewards, viewerID, model.ActivityProfileVisit)
	}

	return view, nil
}

// UpdateDescription stores the trimmed description; an empty one clears it.
func (s *ProfileService) UpdateDescription(ctx context.Context, userID, description string) (*string, error) {
	description = strings.TrimSpace(description)

	err := validation.ValidateDescription(description)
	if err != nil {
		return nil, apperr.Validation(err.Error())
	}

	var value *string
	if description != "" {
		value = &description
	}

	err = s.profileRepo.UpdateDescription(ctx, userID, value)
	if errors.Is(err, repository.ErrProfileNotFound) {
		return nil, apperr.NotFound("profile not found")
	}
	if err != nil {
		return nil, apperr.Backend("failed to update description", err)
	}
	return value, nil
}

// UploadAvatar stores a square avatar at avatars/<userID>/<unixMillis>.<ext>
// and points the profile at it. Decodable images are cropped and re-encoded
// as JPEG; WebP is stored as uploaded.
func (s *ProfileService) UploadAvatar(ctx context.Context, userID string, r io.ReadSeeker, size int64) (string, error) {
	imgType, err := validation.ValidateImage(r, size, s.avatarMaxBytes)
	if err != nil {
		return "", apperr.Validation(err.Error())
	}

	body, contentType, ext, err := s.prepareAvatar(r, imgType)
	if err != nil {
		return "", apperr.Validation(err.Error())
	}

	path := fmt.Sprintf("avatars/%s/%d.%s", userID, s.now().UnixMilli(), ext)
	err = s.storage.Save(ctx, path, bytes.NewReader(body), contentType)
	if err != nil {
		return "", apperr.Backend("failed to upload avatar", err)
	}

	url := s.storage.PublicURL(ctx, path)
	err = s.profileRepo.UpdateAvatarURL(ctx, userID, url)
	if err != nil {
		// profile update failed, the blob is orphaned
		if delErr := s.storage.Delete(ctx, path); delErr != nil {
			slog.Warn("failed to remove orphaned avatar", "error", delErr, "path", path)
		}
		if errors.Is(err, repository.ErrProfileNotFound) {
			return "", apperr.NotFound("profile not found")
		}
		return "", apperr.Backend("failed to save avatar", err)
	}

	slog.Info("avatar updated", "user_id", userID, "path", path)
	return url, nil
}

func (s *ProfileService) prepareAvatar(r io.Reader, imgType validation.ImageType) ([]byte, string, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to read image: %w", err)
	}

	if imgType.Ext == "webp" {
		return data, imgType.ContentType, imgType.Ext, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to decode image: %w", err)
	}

	resized := imaging.Fill(img, s.avatarSize, s.avatarSize, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	err = imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(85))
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to encode image: %w", err)
	}

	return buf.Bytes(), "image/jpeg", "jpg", nil
}
