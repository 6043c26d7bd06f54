package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/templui/heartroom/internal/model"
)

type UserBannerRepository interface {
	ByUser(ctx context.Context, userID string) ([]*model.UserBanner, error)
	// Views joins each unlock record with its banner, newest first.
	Views(ctx context.Context, userID string) ([]model.UnlockedBannerView, error)
	// Grant records unlocks; existing records are kept unchanged.
	Grant(ctx context.Context, userID string, bannerIDs ...string) error
}

type userBannerRepository struct {
	db *sqlx.DB
}

func NewUserBannerRepository(db *sqlx.DB) UserBannerRepository {
	return &userBannerRepository{db: db}
}

func (r *userBannerRepository) ByUser(ctx context.Context, userID string) ([]*model.UserBanner, error) {
	var records []*model.UserBanner
	err := r.db.SelectContext(ctx, &records, `SELECT * FROM user_banners WHERE user_id = $1 ORDER BY unlocked_at ASC`, userID)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *userBannerRepository) Views(ctx context.Context, userID string) ([]model.UnlockedBannerView, error) {
	var views []model.UnlockedBannerView
	err := r.db.SelectContext(ctx, &views, `
		SELECT ub.banner_id, ub.unlocked_at,
			b.id AS "banner.id", b.name AS "banner.name", b.emoji AS "banner.emoji",
			b.rarity AS "banner.rarity", b.hearts_required AS "banner.hearts_required"
		FROM user_banners ub
		JOIN banners b ON b.id = ub.banner_id
		WHERE ub.user_id = $1
		ORDER BY ub.unlocked_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	return views, nil
}

func (r *userBannerRepository) Grant(ctx context.Context, userID string, bannerIDs ...string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, bannerID := range bannerIDs {
		err = insertUserBanner(ctx, tx, userID, bannerID)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func insertUserBanner(ctx context.Context, tx *sqlx.Tx, userID, bannerID string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO user_banners (id, user_id, banner_id, unlocked_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, banner_id) DO NOTHING
	`, uuid.New().String(), userID, bannerID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to record unlock of %s: %w", bannerID, err)
	}
	return nil
}
