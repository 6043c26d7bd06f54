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

var ErrDuplicateHeart = errors.New("heart already given")

type HeartRepository interface {
	// Create stores the heart and credits the receiver in one transaction.
	Create(ctx context.Context, heart *model.Heart) (*model.Grant, error)
	CountReceived(ctx context.Context, receiverID string) (int, error)
}

type heartRepository struct {
	db *sqlx.DB
}

func NewHeartRepository(db *sqlx.DB) HeartRepository {
	return &heartRepository{db: db}
}

func (r *heartRepository) Create(ctx context.Context, heart *model.Heart) (*model.Grant, error) {
	if heart.ID == "" {
		heart.ID = uuid.New().String()
	}
	if heart.CreatedAt.IsZero() {
		heart.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO hearts (id, giver_id, receiver_id, message_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, heart.ID, heart.GiverID, heart.ReceiverID, heart.MessageID, heart.CreatedAt)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("%w: %w", ErrDuplicateHeart, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to insert heart: %w", err)
	}

	grant, err := grantHearts(ctx, tx, heart.ReceiverID, 1)
	if err != nil {
		return nil, err
	}

	err = tx.Commit()
	if err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return grant, nil
}

func (r *heartRepository) CountReceived(ctx context.Context, receiverID string) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM hearts WHERE receiver_id = $1`, receiverID)
	return n, err
}
