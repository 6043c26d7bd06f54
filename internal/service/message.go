package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/templui/heartroom/internal/apperr"
	"github.com/templui/heartroom/internal/metrics"
	"github.com/templui/heartroom/internal/model"
	"github.com/templui/heartroom/internal/repository"
	"github.com/templui/heartroom/internal/validation"
)

type MessageService struct {
	messageRepo  repository.MessageRepository
	profileRepo  repository.ProfileRepository
	equippedRepo repository.EquippedBannerRepository
	ttl          time.Duration
	now          func() time.Time
}

func NewMessageService(
	messageRepo repository.MessageRepository,
	profileRepo repository.ProfileRepository,
	equippedRepo repository.EquippedBannerRepository,
	ttl time.Duration,
) *MessageService {
	return &MessageService{
		messageRepo:  messageRepo,
		profileRepo:  profileRepo,
		equippedRepo: equippedRepo,
		ttl:          ttl,
		now:          time.Now,
	}
}

// CreateMessage validates and stores a message. The stored content is trimmed.
func (s *MessageService) CreateMessage(ctx context.Context, content, authorID string) error {
	err := validation.ValidateContent(content)
	if err != nil {
		return apperr.Validation(err.Error())
	}

	err = validation.RequireID(authorID, "user")
	if err != nil {
		return apperr.Validation(err.Error())
	}

	now := s.now().UTC()
	message := &model.Message{
		UserID:    authorID,
		Content:   strings.TrimSpace(content),
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	err = s.messageRepo.Create(ctx, message)
	if err != nil {
		slog.Error("failed to create message", "error", err, "user_id", authorID)
		return apperr.Backend("failed to send message", err)
	}

	metrics.MessagesCreated.Inc()
	return nil
}

// FetchMessages returns every message oldest first, enriched with author data.
func (s *MessageService) FetchMessages(ctx context.Context) ([]*model.ChatMessage, error) {
	messages, err := s.messageRepo.All(ctx)
	if err != nil {
		return nil, apperr.Backend("failed to load messages", err)
	}

	return s.enrich(ctx, messages), nil
}

func (s *MessageService) FetchMessageByID(ctx context.Context, id string) (*model.ChatMessage, error) {
	err := validation.RequireID(id, "message id")
	if err != nil {
		return nil, apperr.Validation(err.Error())
	}

	message, err := s.messageRepo.ByID(ctx, id)
	if errors.Is(err, repository.ErrMessageNotFound) {
		return nil, apperr.NotFound("message not found")
	}
	if err != nil {
		return nil, apperr.Backend("failed to load message", err)
	}

	return s.enrich(ctx, []*model.Message{message})[0], nil
}

// DeleteMessage removes a message owned by userID. It reports false when
// nothing matched, which includes messages of other users.
func (s *MessageService) DeleteMessage(ctx context.Context, id, userID string) (bool, error) {
	err := validation.RequireID(id, "message id")
	if err != nil {
		return false, apperr.Validation(err.Error())
	}
	err = validation.RequireID(userID, "user")
	if err != nil {
		return false, apperr.Validation(err.Error())
	}

	deleted, err := s.messageRepo.Delete(ctx, id, userID)
	if err != nil {
		return false, apperr.Backend("failed to delete message", err)
	}
	return deleted, nil
}

// ClearAll deletes every message in the room.
func (s *MessageService) ClearAll(ctx context.Context) (int64, error) {
	n, err := s.messageRepo.DeleteAll(ctx)
	if err != nil {
		return 0, apperr.Backend("failed to clear messages", err)
	}
	return n, nil
}

// SweepExpired deletes messages whose expiry has passed.
func (s *MessageService) SweepExpired(ctx context.Context) (int64, error) {
	n, err := s.messageRepo.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, apperr.Backend("failed to sweep expired messages", err)
	}
	if n > 0 {
		slog.Info("swept expired messages", "count", n)
	}
	return n, nil
}

func (s *MessageService) MessageCount(ctx context.Context, userID string) (int, error) {
	n, err := s.messageRepo.CountByUser(ctx, userID)
	if err != nil {
		return 0, apperr.Backend("failed to count messages", err)
	}
	return n, nil
}

// enrich attaches author profiles and banners. Lookup failures degrade to a
// nil profile or no banners instead of failing the whole result.
func (s *MessageService) enrich(ctx context.Context, messages []*model.Message) []*model.ChatMessage {
	userIDs := uniqueAuthors(messages)

	profiles, err := s.profileRepo.ByUserIDs(ctx, userIDs)
	if err != nil {
		slog.Warn("failed to load message authors", "error", err)
		profiles = nil
	}

	banners, err := s.equippedRepo.ByUsers(ctx, userIDs)
	if err != nil {
		slog.Warn("failed to load equipped banners", "error", err)
		banners = nil
	}

	result := make([]*model.ChatMessage, 0, len(messages))
	for _, m := range messages {
		cm := &model.ChatMessage{Message: *m, EquippedBanners: []model.EquippedBannerView{}}
		if p, ok := profiles[m.UserID]; ok {
			cm.Profile = p.Snapshot()
		}
		if b, ok := banners[m.UserID]; ok {
			cm.EquippedBanners = b
		}
		result = append(result, cm)
	}
	return result
}

func uniqueAuthors(messages []*model.Message) []string {
	seen := make(map[string]bool, len(messages))
	ids := make([]string, 0, len(messages))
	for _, m := range messages {
		if seen[m.UserID] {
			continue
		}
		seen[m.UserID] = true
		ids = append(ids, m.UserID)
	}
	return ids
}
