package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/templui/heartroom/internal/model"
	"github.com/templui/heartroom/internal/realtime"
)

const MessagesTable = "messages"

var ErrMessageNotFound = errors.New("message not found")

type MessageRepository interface {
	Create(ctx context.Context, message *model.Message) error
	// All returns every message, oldest first.
	All(ctx context.Context) ([]*model.Message, error)
	ByID(ctx context.Context, id string) (*model.Message, error)
	// Delete removes a message only when it belongs to userID.
	Delete(ctx context.Context, id, userID string) (bool, error)
	DeleteAll(ctx context.Context) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	CountByUser(ctx context.Context, userID string) (int, error)
}

// messageRepository announces every committed insert and delete on the change feed.
type messageRepository struct {
	db   *sqlx.DB
	feed realtime.Publisher
}

func NewMessageRepository(db *sqlx.DB, feed realtime.Publisher) MessageRepository {
	return &messageRepository{db: db, feed: feed}
}

func (r *messageRepository) Create(ctx context.Context, message *model.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}
	if message.ExpiresAt.IsZero() {
		message.ExpiresAt = message.CreatedAt.Add(model.DefaultMessageTTL)
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO messages (id, user_id, content, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`, message.ID, message.UserID, message.Content, message.CreatedAt, message.ExpiresAt)
	if err != nil {
		return err
	}

	r.publish(ctx, realtime.Insert, message.ID, message.UserID)
	return nil
}

func (r *messageRepository) All(ctx context.Context) ([]*model.Message, error) {
	messages := []*model.Message{}
	err := r.db.SelectContext(ctx, &messages, `SELECT * FROM messages ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *messageRepository) ByID(ctx context.Context, id string) (*model.Message, error) {
	var message model.Message
	err := r.db.GetContext(ctx, &message, `SELECT * FROM messages WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, ErrMessageNotFound
	}
	if err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *messageRepository) Delete(ctx context.Context, id, userID string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if rows == 0 {
		return false, nil
	}

	r.publish(ctx, realtime.Delete, id, userID)
	return true, nil
}

func (r *messageRepository) DeleteAll(ctx context.Context) (int64, error) {
	return r.deleteReturning(ctx, `DELETE FROM messages RETURNING id, user_id`)
}

func (r *messageRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return r.deleteReturning(ctx, `DELETE FROM messages WHERE expires_at <= $1 RETURNING id, user_id`, now.UTC())
}

func (r *messageRepository) deleteReturning(ctx context.Context, query string, args ...any) (int64, error) {
	var deleted []struct {
		ID     string `db:"id"`
		UserID string `db:"user_id"`
	}
	err := r.db.SelectContext(ctx, &deleted, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete messages: %w", err)
	}

	if len(deleted) == 0 {
		return 0, nil
	}

	// one event for the whole batch keeps subscriber buffers from overflowing
	ids := make([]string, len(deleted))
	for i, d := range deleted {
		ids[i] = d.ID
	}
	r.publishEvent(ctx, realtime.Event{Table: MessagesTable, Type: realtime.Delete, IDs: ids})
	return int64(len(deleted)), nil
}

func (r *messageRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM messages WHERE user_id = $1`, userID)
	return n, err
}

func (r *messageRepository) publish(ctx context.Context, typ realtime.EventType, id, userID string) {
	r.publishEvent(ctx, realtime.Event{Table: MessagesTable, Type: typ, ID: id, UserID: userID})
}

// publishEvent never fails the write. A session that misses events is
// closed by the feed and its client reconnects with a fresh snapshot.
func (r *messageRepository) publishEvent(ctx context.Context, event realtime.Event) {
	if r.feed == nil {
		return
	}
	event.At = time.Now().UTC()
	err := r.feed.Publish(ctx, event)
	if err != nil {
		slog.Error("failed to publish message event", "error", err, "message_id", event.ID, "count", len(event.RowIDs()), "type", event.Type)
	}
}
