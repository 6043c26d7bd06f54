package service

import (
	"context"
	"io"
	"time"

	"github.com/templui/heartroom/internal/model"
	"github.com/templui/heartroom/internal/repository"
)

type mockMessageRepository struct {
	createFn        func(ctx context.Context, m *model.Message) error
	allFn           func(ctx context.Context) ([]*model.Message, error)
	byIDFn          func(ctx context.Context, id string) (*model.Message, error)
	deleteFn        func(ctx context.Context, id, userID string) (bool, error)
	deleteAllFn     func(ctx context.Context) (int64, error)
	deleteExpiredFn func(ctx context.Context, now time.Time) (int64, error)
	countByUserFn   func(ctx context.Context, userID string) (int, error)

	created []*model.Message
	byIDs   []string
}

func (m *mockMessageRepository) Create(ctx context.Context, msg *model.Message) error {
	m.created = append(m.created, msg)
	if m.createFn != nil {
		return m.createFn(ctx, msg)
	}
	return nil
}

func (m *mockMessageRepository) All(ctx context.Context) ([]*model.Message, error) {
	if m.allFn != nil {
		return m.allFn(ctx)
	}
	return []*model.Message{}, nil
}

func (m *mockMessageRepository) ByID(ctx context.Context, id string) (*model.Message, error) {
	m.byIDs = append(m.byIDs, id)
	if m.byIDFn != nil {
		return m.byIDFn(ctx, id)
	}
	return nil, repository.ErrMessageNotFound
}

func (m *mockMessageRepository) Delete(ctx context.Context, id, userID string) (bool, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id, userID)
	}
	return false, nil
}

func (m *mockMessageRepository) DeleteAll(ctx context.Context) (int64, error) {
	if m.deleteAllFn != nil {
		return m.deleteAllFn(ctx)
	}
	return 0, nil
}

func (m *mockMessageRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	if m.deleteExpiredFn != nil {
		return m.deleteExpiredFn(ctx, now)
	}
	return 0, nil
}

func (m *mockMessageRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	if m.countByUserFn != nil {
		return m.countByUserFn(ctx, userID)
	}
	return 0, nil
}

type mockProfileRepository struct {
	byUserIDFn          func(ctx context.Context, userID string) (*model.Profile, error)
	byUserIDsFn         func(ctx context.Context, userIDs []string) (map[string]*model.Profile, error)
	updateDescriptionFn func(ctx context.Context, userID string, description *string) error
	updateAvatarURLFn   func(ctx context.Context, userID, avatarURL string) error
	topFn               func(ctx context.Context, limit int) ([]*model.Profile, error)
	countFn             func(ctx context.Context) (int, error)
	totalHeartsFn       func(ctx context.Context) (int, error)
}

func (m *mockProfileRepository) ByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	if m.byUserIDFn != nil {
		return m.byUserIDFn(ctx, userID)
	}
	return nil, repository.ErrProfileNotFound
}

func (m *mockProfileRepository) ByUserIDs(ctx context.Context, userIDs []string) (map[string]*model.Profile, error) {
	if m.byUserIDsFn != nil {
		return m.byUserIDsFn(ctx, userIDs)
	}
	return map[string]*model.Profile{}, nil
}

func (m *mockProfileRepository) UpdateDescription(ctx context.Context, userID string, description *string) error {
	if m.updateDescriptionFn != nil {
		return m.updateDescriptionFn(ctx, userID, description)
	}
	return nil
}

func (m *mockProfileRepository) UpdateAvatarURL(ctx context.Context, userID, avatarURL string) error {
	if m.updateAvatarURLFn != nil {
		return m.updateAvatarURLFn(ctx, userID, avatarURL)
	}
	return nil
}

func (m *mockProfileRepository) Top(ctx context.Context, limit int) ([]*model.Profile, error) {
	if m.topFn != nil {
		return m.topFn(ctx, limit)
	}
	return nil, nil
}

func (m *mockProfileRepository) Count(ctx context.Context) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

func (m *mockProfileRepository) TotalHearts(ctx context.Context) (int, error) {
	if m.totalHeartsFn != nil {
		return m.totalHeartsFn(ctx)
	}
	return 0, nil
}

type mockEquippedBannerRepository struct {
	byUserFn  func(ctx context.Context, userID string) ([]model.EquippedBannerView, error)
	byUsersFn func(ctx context.Context, userIDs []string) (map[string][]model.EquippedBannerView, error)
	equipFn   func(ctx context.Context, e *model.EquippedBanner) error
	unequipFn func(ctx context.Context, userID, bannerID string) (bool, error)

	equipped   []*model.EquippedBanner
	unequipped []string
}

func (m *mockEquippedBannerRepository) ByUser(ctx context.Context, userID string) ([]model.EquippedBannerView, error) {
	if m.byUserFn != nil {
		return m.byUserFn(ctx, userID)
	}
	return []model.EquippedBannerView{}, nil
}

func (m *mockEquippedBannerRepository) ByUsers(ctx context.Context, userIDs []string) (map[string][]model.EquippedBannerView, error) {
	if m.byUsersFn != nil {
		return m.byUsersFn(ctx, userIDs)
	}
	return map[string][]model.EquippedBannerView{}, nil
}

func (m *mockEquippedBannerRepository) Equip(ctx context.Context, e *model.EquippedBanner) error {
	m.equipped = append(m.equipped, e)
	if m.equipFn != nil {
		return m.equipFn(ctx, e)
	}
	return nil
}

func (m *mockEquippedBannerRepository) Unequip(ctx context.Context, userID, bannerID string) (bool, error) {
	m.unequipped = append(m.unequipped, bannerID)
	if m.unequipFn != nil {
		return m.unequipFn(ctx, userID, bannerID)
	}
	return true, nil
}

type mockHeartRepository struct {
	createFn func(ctx context.Context, h *model.Heart) (*model.Grant, error)
	calls    []*model.Heart
}

func (m *mockHeartRepository) Create(ctx context.Context, h *model.Heart) (*model.Grant, error) {
	m.calls = append(m.calls, h)
	if m.createFn != nil {
		return m.createFn(ctx, h)
	}
	return &model.Grant{UserID: h.ReceiverID, HeartsCount: 1}, nil
}

func (m *mockHeartRepository) CountReceived(ctx context.Context, receiverID string) (int, error) {
	return len(m.calls), nil
}

type mockBannerRepository struct {
	banners []*model.Banner
	allErr  error
}

func (m *mockBannerRepository) All(ctx context.Context) ([]*model.Banner, error) {
	return m.banners, m.allErr
}

func (m *mockBannerRepository) ByID(ctx context.Context, id string) (*model.Banner, error) {
	for _, b := range m.banners {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, repository.ErrBannerNotFound
}

func (m *mockBannerRepository) Count(ctx context.Context) (int, error) {
	return len(m.banners), nil
}

type mockUserBannerRepository struct {
	records []*model.UserBanner
	granted []string
}

func (m *mockUserBannerRepository) ByUser(ctx context.Context, userID string) ([]*model.UserBanner, error) {
	return m.records, nil
}

func (m *mockUserBannerRepository) Views(ctx context.Context, userID string) ([]model.UnlockedBannerView, error) {
	views := make([]model.UnlockedBannerView, len(m.records))
	for i, r := range m.records {
		views[i] = model.UnlockedBannerView{BannerID: r.BannerID, UnlockedAt: r.UnlockedAt}
	}
	return views, nil
}

func (m *mockUserBannerRepository) Grant(ctx context.Context, userID string, bannerIDs ...string) error {
	m.granted = append(m.granted, bannerIDs...)
	return nil
}

type mockRewardClaimer struct {
	claims []model.Activity
}

func (m *mockRewardClaimer) Claim(ctx context.Context, userID string, activity model.Activity) (*RewardResult, error) {
	m.claims = append(m.claims, activity)
	return &RewardResult{Reward: model.ActivityRewards[activity], Claimed: true}, nil
}

type mockStorage struct {
	saved   map[string][]byte
	types   map[string]string
	deleted []string
}

func newMockStorage() *mockStorage {
	return &mockStorage{saved: map[string][]byte{}, types: map[string]string{}}
}

func (m *mockStorage) Save(ctx context.Context, path string, r io.Reader, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.saved[path] = data
	m.types[path] = contentType
	return nil
}

func (m *mockStorage) Delete(ctx context.Context, path string) error {
	m.deleted = append(m.deleted, path)
	delete(m.saved, path)
	return nil
}

func (m *mockStorage) PublicURL(ctx context.Context, path string) string {
	return "https://cdn.test/" + path
}

type mockKVStore struct {
	values map[string]string
	getErr error
}

func (m *mockKVStore) Get(ctx context.Context, userID, key string) (string, error) {
	if m.getErr != nil {
		return "", m.getErr
	}
	v, ok := m.values[userID+"/"+key]
	if !ok {
		return "", repository.ErrSettingNotFound
	}
	return v, nil
}

func (m *mockKVStore) Set(ctx context.Context, userID, key, value string) error {
	if m.values == nil {
		m.values = map[string]string{}
	}
	m.values[userID+"/"+key] = value
	return nil
}
