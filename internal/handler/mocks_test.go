package handler

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/templui/heartroom/internal/apperr"
	"github.com/templui/heartroom/internal/banner"
	"github.com/templui/heartroom/internal/model"
	"github.com/templui/heartroom/internal/service"
)

type mockAuth struct {
	registerFn func(ctx context.Context, in service.RegisterInput) (*model.User, error)
	loginFn    func(ctx context.Context, email, password string) (*model.User, error)
	meFn       func(ctx context.Context, userID string) (*model.Profile, error)

	cookieSet     string
	cookieCleared bool
}

func (m *mockAuth) Register(ctx context.Context, in service.RegisterInput) (*model.User, error) {
	return m.registerFn(ctx, in)
}

func (m *mockAuth) Login(ctx context.Context, email, password string) (*model.User, error) {
	return m.loginFn(ctx, email, password)
}

func (m *mockAuth) Me(ctx context.Context, userID string) (*model.Profile, error) {
	return m.meFn(ctx, userID)
}

func (m *mockAuth) GenerateJWT(user *model.User) (string, time.Time, error) {
	return "token-" + user.ID, time.Unix(1700000000, 0), nil
}

func (m *mockAuth) SetJWTCookie(w http.ResponseWriter, token string, expiry time.Time) {
	m.cookieSet = token
}

func (m *mockAuth) ClearJWTCookie(w http.ResponseWriter) {
	m.cookieCleared = true
}

type mockMessages struct {
	mu       sync.Mutex
	created  []string
	createFn func(ctx context.Context, content, authorID string) error
	deleteFn func(ctx context.Context, id, userID string) (bool, error)
	rows     []*model.ChatMessage
}

func (m *mockMessages) FetchMessages(ctx context.Context) ([]*model.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.ChatMessage, len(m.rows))
	copy(out, m.rows)
	return out, nil
}

func (m *mockMessages) FetchMessageByID(ctx context.Context, id string) (*model.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.ID == id {
			return row, nil
		}
	}
	return nil, apperr.NotFound("message not found")
}

func (m *mockMessages) CreateMessage(ctx context.Context, content, authorID string) error {
	m.mu.Lock()
	m.created = append(m.created, content)
	m.mu.Unlock()
	if m.createFn != nil {
		return m.createFn(ctx, content, authorID)
	}
	return nil
}

func (m *mockMessages) DeleteMessage(ctx context.Context, id, userID string) (bool, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id, userID)
	}
	return false, nil
}

func (m *mockMessages) ClearAll(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := int64(len(m.rows))
	m.rows = nil
	return n, nil
}

type mockHearts struct {
	err   error
	calls []service.HeartInput
}

func (m *mockHearts) GiveHeart(ctx context.Context, in service.HeartInput) error {
	m.calls = append(m.calls, in)
	return m.err
}

type mockBanners struct {
	plan banner.Plan
	err  error
}

func (m *mockBanners) Collection(ctx context.Context, userID string) (banner.Collection, error) {
	return banner.Collection{Stats: banner.Stats{UserHearts: 7}}, m.err
}

func (m *mockBanners) Equipped(ctx context.Context, userID string) ([]model.EquippedBannerView, error) {
	return []model.EquippedBannerView{}, m.err
}

func (m *mockBanners) ToggleEquip(ctx context.Context, userID, bannerID string) (banner.Plan, error) {
	return m.plan, m.err
}

type mockProfiles struct {
	viewFn     func(ctx context.Context, viewerID, userID string) (*model.ProfileView, error)
	uploadSize int64
	uploaded   []byte
}

func (m *mockProfiles) View(ctx context.Context, viewerID, userID string) (*model.ProfileView, error) {
	return m.viewFn(ctx, viewerID, userID)
}

func (m *mockProfiles) UpdateDescription(ctx context.Context, userID, description string) (*string, error) {
	if len([]rune(description)) > model.MaxDescriptionLength {
		return nil, apperr.Validation("description too long")
	}
	return &description, nil
}

func (m *mockProfiles) UploadAvatar(ctx context.Context, userID string, r io.ReadSeeker, size int64) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.uploaded = data
	m.uploadSize = size
	return "https://cdn.example.com/avatars/" + userID + "/1.jpg", nil
}

type mockSettings struct {
	settings model.NotificationSettings
	saved    *model.NotificationSettings
}

func (m *mockSettings) NotificationSettings(ctx context.Context, userID string) (model.NotificationSettings, error) {
	return m.settings, nil
}

func (m *mockSettings) SaveNotificationSettings(ctx context.Context, userID string, settings model.NotificationSettings) error {
	m.saved = &settings
	return nil
}

type mockRewards struct {
	mu     sync.Mutex
	claims []model.Activity
}

func (m *mockRewards) Claim(ctx context.Context, userID string, activity model.Activity) (*service.RewardResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	reward, ok := model.ActivityRewards[activity]
	if !ok {
		return nil, apperr.Validation("unknown activity: " + string(activity))
	}
	m.claims = append(m.claims, activity)
	return &service.RewardResult{Reward: reward, Claimed: true}, nil
}

func (m *mockRewards) Today(ctx context.Context, userID string) ([]*model.RewardClaim, error) {
	return []*model.RewardClaim{}, nil
}

func (m *mockRewards) activities() []model.Activity {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Activity(nil), m.claims...)
}
