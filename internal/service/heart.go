package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/templui/heartroom/internal/apperr"
	"github.com/templui/heartroom/internal/metrics"
	"github.com/templui/heartroom/internal/model"
	"github.com/templui/heartroom/internal/repository"
	"github.com/templui/heartroom/internal/validation"
)

type HeartInput struct {
	GiverID    string
	ReceiverID string
	MessageID  *string
}

type HeartService struct {
	heartRepo repository.HeartRepository
}

func NewHeartService(heartRepo repository.HeartRepository) *HeartService {
	return &HeartService{heartRepo: heartRepo}
}

// GiveHeart records a heart from giver to receiver. Each pair may only
// exchange one heart; a repeat fails with a duplicate_heart error.
func (s *HeartService) GiveHeart(ctx context.Context, in HeartInput) error {
	if validation.RequireID(in.GiverID, "giver") != nil || validation.RequireID(in.ReceiverID, "receiver") != nil {
		metrics.HeartsTotal.WithLabelValues("invalid").Inc()
		return apperr.Validation("giver and receiver are required")
	}

	if in.GiverID == in.ReceiverID {
		metrics.HeartsTotal.WithLabelValues("self").Inc()
		return apperr.New(apperr.KindSelfHeart, "you cannot give yourself a heart")
	}

	grant, err := s.heartRepo.Create(ctx, &model.Heart{
		GiverID:    in.GiverID,
		ReceiverID: in.ReceiverID,
		MessageID:  in.MessageID,
	})
	if errors.Is(err, repository.ErrDuplicateHeart) {
		metrics.HeartsTotal.WithLabelValues("duplicate").Inc()
		return apperr.Wrap(apperr.KindDuplicateHeart, "you already gave this user a heart", err)
	}
	if err != nil {
		metrics.HeartsTotal.WithLabelValues("error").Inc()
		slog.Error("failed to give heart", "error", err, "giver_id", in.GiverID, "receiver_id", in.ReceiverID)
		return apperr.Backend("failed to give heart", err)
	}

	metrics.HeartsTotal.WithLabelValues("ok").Inc()
	if grant != nil && len(grant.UnlockedBannerIDs) > 0 {
		slog.Info("banners unlocked", "user_id", grant.UserID, "banners", grant.UnlockedBannerIDs, "hearts", grant.HeartsCount)
	}
	return nil
}
