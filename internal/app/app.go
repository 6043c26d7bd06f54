package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/templui/heartroom/internal/config"
	"github.com/templui/heartroom/internal/db"
	"github.com/templui/heartroom/internal/realtime"
	"github.com/templui/heartroom/internal/repository"
	"github.com/templui/heartroom/internal/service"
	"github.com/templui/heartroom/internal/storage"
)

type App struct {
	Cfg   *config.Config
	DB    *sqlx.DB
	Feed  realtime.Feed
	Redis *redis.Client

	AuthService     *service.AuthService
	MessageService  *service.MessageService
	HeartService    *service.HeartService
	BannerService   *service.BannerService
	ProfileService  *service.ProfileService
	RankingService  *service.RankingService
	SettingsService *service.SettingsService
	RewardService   *service.RewardService
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	a := &App{Cfg: cfg, DB: database}

	// Change feed: Redis when configured, otherwise in-process
	err = a.initFeed(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	// Storage
	avatarStorage, err := storage.New(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// Repositories
	userRepository := repository.NewUserRepository(database)
	profileRepository := repository.NewProfileRepository(database)
	messageRepository := repository.NewMessageRepository(database, a.Feed)
	heartRepository := repository.NewHeartRepository(database)
	bannerRepository := repository.NewBannerRepository(database)
	userBannerRepository := repository.NewUserBannerRepository(database)
	equippedRepository := repository.NewEquippedBannerRepository(database)
	settingRepository := repository.NewSettingRepository(database)
	rewardRepository := repository.NewRewardRepository(database)

	// Services
	a.RewardService = service.NewRewardService(rewardRepository)
	a.AuthService = service.NewAuthService(
		userRepository,
		profileRepository,
		cfg.JWTSecret,
		cfg.JWTExpiry,
		cfg.SecureCookies(),
	)
	a.MessageService = service.NewMessageService(messageRepository, profileRepository, equippedRepository, cfg.ChatExpiry)
	a.HeartService = service.NewHeartService(heartRepository)
	a.BannerService = service.NewBannerService(
		bannerRepository,
		userBannerRepository,
		equippedRepository,
		profileRepository,
		a.RewardService,
	)
	a.ProfileService = service.NewProfileService(
		profileRepository,
		equippedRepository,
		userBannerRepository,
		messageRepository,
		avatarStorage,
		a.RewardService,
		cfg.AvatarMaxBytes,
		cfg.AvatarSize,
	)
	a.RankingService = service.NewRankingService(profileRepository, equippedRepository, bannerRepository, cfg.RankingsLimit)
	a.SettingsService = service.NewSettingsService(settingRepository)

	return a, nil
}

func (a *App) initFeed(ctx context.Context) error {
	if a.Cfg.RedisURL == "" {
		slog.Info("using in-process change feed")
		a.Feed = realtime.NewLocalFeed()
		return nil
	}

	opts, err := redis.ParseURL(a.Cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("invalid REDIS_URL: %w", err)
	}

	client := redis.NewClient(opts)
	err = client.Ping(ctx).Err()
	if err != nil {
		client.Close()
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	slog.Info("using redis change feed", "addr", opts.Addr)
	a.Redis = client
	a.Feed = realtime.NewRedisFeed(client)
	return nil
}

func (a *App) Close() error {
	var errs []error
	if a.Feed != nil {
		errs = append(errs, a.Feed.Close())
	}
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}
