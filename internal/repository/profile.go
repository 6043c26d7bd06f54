package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/templui/heartroom/internal/model"
)

var ErrProfileNotFound = errors.New("profile not found")

type ProfileRepository interface {
	ByUserID(ctx context.Context, userID string) (*model.Profile, error)
	ByUserIDs(ctx context.Context, userIDs []string) (map[string]*model.Profile, error)
	UpdateDescription(ctx context.Context, userID string, description *string) error
	UpdateAvatarURL(ctx context.Context, userID, avatarURL string) error
	// Top returns profiles ordered by hearts, highest first.
	Top(ctx context.Context, limit int) ([]*model.Profile, error)
	Count(ctx context.Context) (int, error)
	TotalHearts(ctx context.Context) (int, error)
}

type profileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) ByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	var profile model.Profile
	err := r.db.GetContext(ctx, &profile, `SELECT * FROM profiles WHERE user_id = $1`, userID)
	if err == sql.ErrNoRows {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) ByUserIDs(ctx context.Context, userIDs []string) (map[string]*model.Profile, error) {
	result := make(map[string]*model.Profile, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}

	query, args, err := sqlx.In(`SELECT * FROM profiles WHERE user_id IN (?)`, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build profiles query: %w", err)
	}

	var profiles []*model.Profile
	err = r.db.SelectContext(ctx, &profiles, r.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}

	for _, p := range profiles {
		result[p.UserID] = p
	}
	return result, nil
}

func (r *profileRepository) UpdateDescription(ctx context.Context, userID string, description *string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE profiles
		SET description = $1, updated_at = $2
		WHERE user_id = $3
	`, description, time.Now().UTC(), userID)
	if err != nil {
		return err
	}
	return requireRow(result, ErrProfileNotFound)
}

func (r *profileRepository) UpdateAvatarURL(ctx context.Context, userID, avatarURL string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE profiles
		SET avatar_url = $1, updated_at = $2
		WHERE user_id = $3
	`, avatarURL, time.Now().UTC(), userID)
	if err != nil {
		return err
	}
	return requireRow(result, ErrProfileNotFound)
}

func (r *profileRepository) Top(ctx context.Context, limit int) ([]*model.Profile, error) {
	var profiles []*model.Profile
	err := r.db.SelectContext(ctx, &profiles, `
		SELECT * FROM profiles
		ORDER BY hearts_count DESC, created_at ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *profileRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM profiles`)
	return n, err
}

func (r *profileRepository) TotalHearts(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COALESCE(SUM(hearts_count), 0) FROM profiles`)
	return n, err
}

// grantHearts raises a profile's heart count inside tx and records every
// banner unlocked by the new total. Unlock records are never removed.
func grantHearts(ctx context.Context, tx *sqlx.Tx, userID string, hearts int) (*model.Grant, error) {
	grant := &model.Grant{UserID: userID}

	err := tx.GetContext(ctx, &grant.HeartsCount, `
		UPDATE profiles
		SET hearts_count = hearts_count + $1, updated_at = $2
		WHERE user_id = $3
		RETURNING hearts_count
	`, hearts, time.Now().UTC(), userID)
	if err == sql.ErrNoRows {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to add hearts: %w", err)
	}

	err = tx.SelectContext(ctx, &grant.UnlockedBannerIDs, `
		SELECT id FROM banners
		WHERE hearts_required <= $1
		AND id NOT IN (SELECT banner_id FROM user_banners WHERE user_id = $2)
		ORDER BY hearts_required
	`, grant.HeartsCount, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find crossed banners: %w", err)
	}

	for _, bannerID := range grant.UnlockedBannerIDs {
		err = insertUserBanner(ctx, tx, userID, bannerID)
		if err != nil {
			return nil, err
		}
	}

	return grant, nil
}

func requireRow(result sql.Result, notFound error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return notFound
	}
	return nil
}
