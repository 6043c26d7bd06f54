package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/templui/heartroom/internal/model"
)

var ErrBannerNotFound = errors.New("banner not found")

type BannerRepository interface {
	// All returns the catalog ordered by threshold.
	All(ctx context.Context) ([]*model.Banner, error)
	ByID(ctx context.Context, id string) (*model.Banner, error)
	Count(ctx context.Context) (int, error)
}

type bannerRepository struct {
	db *sqlx.DB
}

func NewBannerRepository(db *sqlx.DB) BannerRepository {
	return &bannerRepository{db: db}
}

func (r *bannerRepository) All(ctx context.Context) ([]*model.Banner, error) {
	var banners []*model.Banner
	err := r.db.SelectContext(ctx, &banners, `SELECT * FROM banners ORDER BY hearts_required ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	return banners, nil
}

func (r *bannerRepository) ByID(ctx context.Context, id string) (*model.Banner, error) {
	var banner model.Banner
	err := r.db.GetContext(ctx, &banner, `SELECT * FROM banners WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, ErrBannerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &banner, nil
}

func (r *bannerRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM banners`)
	return n, err
}
