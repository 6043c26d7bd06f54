package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/templui/heartroom/internal/app"
	"github.com/templui/heartroom/internal/handler"
	"github.com/templui/heartroom/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	health := handler.NewHealthHandler(app.DB)
	auth := handler.NewAuthHandler(app.AuthService, app.RewardService)
	messages := handler.NewMessageHandler(app.MessageService, app.RewardService)
	hearts := handler.NewHeartHandler(app.HeartService)
	banners := handler.NewBannerHandler(app.BannerService)
	profiles := handler.NewProfileHandler(app.ProfileService, app.Cfg.AvatarMaxBytes)
	rankings := handler.NewRankingHandler(app.RankingService)
	settings := handler.NewSettingsHandler(app.SettingsService)
	rewards := handler.NewRewardHandler(app.RewardService)
	chatWS := handler.NewChatHandler(
		app.MessageService,
		app.HeartService,
		app.Feed,
		app.RewardService,
		app.SettingsService,
		handler.ChatOptions{
			Expiry:   app.Cfg.ChatExpiry,
			Tick:     app.Cfg.ChatTick,
			SendRate: app.Cfg.ChatSendRate,
		},
	)

	r := chi.NewRouter()

	// Global middleware - executed in order (top to bottom)
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogging)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(middleware.CSRFProtection(app.Cfg.SecureCookies()))
	r.Use(middleware.AuthMiddleware(app.AuthService))

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	r.Get("/health", health.Health)
	r.Handle("/metrics", promhttp.Handler())

	// Auth (rate limited)
	rateLimiter := middleware.RateLimitAuth()
	r.Route("/auth", func(r chi.Router) {
		r.With(rateLimiter).Post("/register", auth.Register)
		r.With(rateLimiter).Post("/login", auth.Login)
		r.Post("/logout", auth.Logout)
	})

	r.Get("/rankings", rankings.List)
	r.Get("/messages", messages.List)
	r.Get("/messages/{id}", messages.Get)

	// ============================================================================
	// PROTECTED ROUTES
	// ============================================================================

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Get("/me", auth.Me)
		r.Patch("/me/description", profiles.UpdateDescription)
		r.Post("/me/avatar", profiles.UploadAvatar)

		r.Post("/messages", messages.Create)
		r.Delete("/messages/{id}", messages.Delete)
		r.Delete("/messages", messages.Clear)

		r.Post("/hearts", hearts.Give)

		r.Get("/banners", banners.Collection)
		r.Get("/banners/equipped", banners.Equipped)
		r.Post("/banners/{id}/toggle", banners.Toggle)

		r.Get("/profiles/{userID}", profiles.Show)

		r.Get("/settings/notifications", settings.Notifications)
		r.Put("/settings/notifications", settings.SaveNotifications)

		r.Get("/rewards/today", rewards.Today)
		r.Post("/rewards/{activity}", rewards.Claim)

		r.Get("/ws/chat", chatWS.Serve)
	})

	return r
}
