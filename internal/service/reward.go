package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/templui/heartroom/internal/apperr"
	"github.com/templui/heartroom/internal/model"
	"github.com/templui/heartroom/internal/repository"
)

// RewardResult describes a claim attempt. Grant is nil when the activity was
// already rewarded today.
type RewardResult struct {
	Reward  model.ActivityReward `json:"reward"`
	Claimed bool                 `json:"claimed"`
	Grant   *model.Grant         `json:"grant,omitempty"`
}

type RewardClaimer interface {
	Claim(ctx context.Context, userID string, activity model.Activity) (*RewardResult, error)
}

type RewardService struct {
	rewardRepo repository.RewardRepository
	now        func() time.Time
}

func NewRewardService(rewardRepo repository.RewardRepository) *RewardService {
	return &RewardService{rewardRepo: rewardRepo, now: time.Now}
}

// Claim credits the hearts for an activity at most once per user and UTC day.
func (s *RewardService) Claim(ctx context.Context, userID string, activity model.Activity) (*RewardResult, error) {
	reward, ok := model.ActivityRewards[activity]
	if !ok {
		return nil, apperr.Validation("unknown activity: " + string(activity))
	}
	if userID == "" {
		return nil, apperr.New(apperr.KindUnauthenticated, "sign in to earn rewards")
	}

	grant, err := s.rewardRepo.Claim(ctx, &model.RewardClaim{
		UserID:   userID,
		Activity: activity,
		Day:      day(s.now()),
		Hearts:   reward.Hearts,
	})
	if err != nil {
		return nil, apperr.Backend("failed to claim reward", err)
	}

	result := &RewardResult{Reward: reward, Claimed: grant != nil, Grant: grant}
	if result.Claimed {
		slog.Info("activity rewarded", "user_id", userID, "activity", activity, "hearts", reward.Hearts)
	}
	return result, nil
}

// Today lists the activities already rewarded today.
func (s *RewardService) Today(ctx context.Context, userID string) ([]*model.RewardClaim, error) {
	claims, err := s.rewardRepo.ClaimsOn(ctx, userID, day(s.now()))
	if err != nil {
		return nil, apperr.Backend("failed to load rewards", err)
	}
	return claims, nil
}

func day(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}

// claimQuietly rewards a side activity; failures are logged and never
// affect the action that triggered them.
func claimQuietly(ctx context.Context, rewards RewardClaimer, userID string, activity model.Activity) {
	if rewards == nil {
		return
	}
	_, err := rewards.Claim(ctx, userID, activity)
	if err != nil {
		slog.Warn("failed to claim activity reward", "error", err, "user_id", userID, "activity", activity)
	}
}
