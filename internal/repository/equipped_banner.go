package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/templui/heartroom/internal/model"
)

var (
	ErrAlreadyEquipped = errors.New("banner already equipped")
	ErrSlotTaken       = errors.New("banner slot already taken")
)

const equippedViewColumns = `
	eb.user_id, eb.banner_id, eb.position,
	COALESCE(b.id, eb.banner_id) AS "banner.id",
	COALESCE(b.name, '') AS "banner.name",
	COALESCE(b.emoji, '') AS "banner.emoji",
	COALESCE(b.rarity, '') AS "banner.rarity",
	COALESCE(b.hearts_required, 0) AS "banner.hearts_required"
`

type EquippedBannerRepository interface {
	// ByUser returns a user's equipped banners ordered by position.
	ByUser(ctx context.Context, userID string) ([]model.EquippedBannerView, error)
	ByUsers(ctx context.Context, userIDs []string) (map[string][]model.EquippedBannerView, error)
	Equip(ctx context.Context, equipped *model.EquippedBanner) error
	Unequip(ctx context.Context, userID, bannerID string) (bool, error)
}

type equippedBannerRepository struct {
	db *sqlx.DB
}

func NewEquippedBannerRepository(db *sqlx.DB) EquippedBannerRepository {
	return &equippedBannerRepository{db: db}
}

func (r *equippedBannerRepository) ByUser(ctx context.Context, userID string) ([]model.EquippedBannerView, error) {
	views := []model.EquippedBannerView{}
	err := r.db.SelectContext(ctx, &views, `
		SELECT `+equippedViewColumns+`
		FROM equipped_banners eb
		LEFT JOIN banners b ON b.id = eb.banner_id
		WHERE eb.user_id = $1
		ORDER BY eb.position ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	return views, nil
}

func (r *equippedBannerRepository) ByUsers(ctx context.Context, userIDs []string) (map[string][]model.EquippedBannerView, error) {
	result := make(map[string][]model.EquippedBannerView, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}

	query, args, err := sqlx.In(`
		SELECT `+equippedViewColumns+`
		FROM equipped_banners eb
		LEFT JOIN banners b ON b.id = eb.banner_id
		WHERE eb.user_id IN (?)
		ORDER BY eb.user_id, eb.position ASC
	`, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build equipped banners query: %w", err)
	}

	var views []model.EquippedBannerView
	err = r.db.SelectContext(ctx, &views, r.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}

	for _, v := range views {
		result[v.UserID] = append(result[v.UserID], v)
	}
	return result, nil
}

func (r *equippedBannerRepository) Equip(ctx context.Context, equipped *model.EquippedBanner) error {
	if equipped.ID == "" {
		equipped.ID = uuid.New().String()
	}
	if equipped.EquippedAt.IsZero() {
		equipped.EquippedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO equipped_banners (id, user_id, banner_id, position, equipped_at)
		VALUES ($1, $2, $3, $4, $5)
	`, equipped.ID, equipped.UserID, equipped.BannerID, equipped.Position, equipped.EquippedAt)
	if isUniqueViolation(err) {
		return r.equipConflict(ctx, equipped.UserID, equipped.BannerID)
	}
	return err
}

// equipConflict tells a banner that is already worn from a slot another
// equip filled first.
func (r *equippedBannerRepository) equipConflict(ctx context.Context, userID, bannerID string) error {
	var n int
	err := r.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM equipped_banners WHERE user_id = $1 AND banner_id = $2`, userID, bannerID)
	if err != nil {
		return fmt.Errorf("failed to inspect equip conflict: %w", err)
	}
	if n > 0 {
		return ErrAlreadyEquipped
	}
	return ErrSlotTaken
}

func (r *equippedBannerRepository) Unequip(ctx context.Context, userID, bannerID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM equipped_banners WHERE user_id = $1 AND banner_id = $2`, userID, bannerID)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}
