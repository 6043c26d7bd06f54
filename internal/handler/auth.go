package handler

import (
	"log/slog"
	"net/http"

	"github.com/templui/heartroom/internal/ctxkeys"
	"github.com/templui/heartroom/internal/httputil"
	"github.com/templui/heartroom/internal/model"
	"github.com/templui/heartroom/internal/service"
)

type AuthHandler struct {
	authService AuthAPI
	rewards     service.RewardClaimer
}

func NewAuthHandler(authService AuthAPI, rewards service.RewardClaimer) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		rewards:     rewards,
	}
}

type sessionResponse struct {
	Token     string      `json:"token"`
	ExpiresAt int64       `json:"expires_at"`
	User      *model.User `json:"user"`
}

// Register handles POST /auth/register and signs the new user in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	err := httputil.DecodeJSON(r, &in)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	user, err := h.authService.Register(r.Context(), in)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.startSession(w, r, user, http.StatusCreated)
}

// Login handles POST /auth/login. The first login of the day is rewarded.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	err := httputil.DecodeJSON(r, &in)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	user, err := h.authService.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	claimQuietly(r.Context(), h.rewards, user.ID, model.ActivityDailyLogin)
	h.startSession(w, r, user, http.StatusOK)
}

func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, user *model.User, status int) {
	token, expiry, err := h.authService.GenerateJWT(user)
	if err != nil {
		slog.Error("failed to generate token", "error", err, "user_id", user.ID)
		httputil.WriteError(w, err)
		return
	}

	h.authService.SetJWTCookie(w, token, expiry)
	httputil.WriteData(w, status, sessionResponse{Token: token, ExpiresAt: expiry.Unix(), User: user})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authService.ClearJWTCookie(w)
	httputil.WriteOK(w)
}

// Me handles GET /me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	profile, err := h.authService.Me(r.Context(), ctxkeys.UserID(r.Context()))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, profile)
}
