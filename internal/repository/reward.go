package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/templui/heartroom/internal/model"
)

type RewardRepository interface {
	// Claim records the activity for the day and credits the hearts.
	// It returns a nil grant when the activity was already claimed that day.
	Claim(ctx context.Context, claim *model.RewardClaim) (*model.Grant, error)
	ClaimsOn(ctx context.Context, userID, day string) ([]*model.RewardClaim, error)
}

type rewardRepository struct {
	db *sqlx.DB
}

func NewRewardRepository(db *sqlx.DB) RewardRepository {
	return &rewardRepository{db: db}
}

func (r *rewardRepository) Claim(ctx context.Context, claim *model.RewardClaim) (*model.Grant, error) {
	if claim.ClaimedAt.IsZero() {
		claim.ClaimedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO reward_claims (user_id, activity, day, hearts, claimed_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, activity, day) DO NOTHING
	`, claim.UserID, claim.Activity, claim.Day, claim.Hearts, claim.ClaimedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to record claim: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, nil
	}

	grant, err := grantHearts(ctx, tx, claim.UserID, claim.Hearts)
	if err != nil {
		return nil, err
	}

	err = tx.Commit()
	if err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return grant, nil
}

func (r *rewardRepository) ClaimsOn(ctx context.Context, userID, day string) ([]*model.RewardClaim, error) {
	claims := []*model.RewardClaim{}
	err := r.db.SelectContext(ctx, &claims,
		`SELECT * FROM reward_claims WHERE user_id = $1 AND day = $2 ORDER BY claimed_at`, userID, day)
	if err != nil {
		return nil, err
	}
	return claims, nil
}
