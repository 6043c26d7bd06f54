package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/templui/heartroom/internal/apperr"
	"github.com/templui/heartroom/internal/ctxkeys"
	"github.com/templui/heartroom/internal/httputil"
)

// multipart overhead allowed on top of the avatar itself
const avatarFormSlack = 64 << 10

type ProfileHandler struct {
	profileService ProfileAPI
	avatarMaxBytes int64
}

func NewProfileHandler(profileService ProfileAPI, avatarMaxBytes int64) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		avatarMaxBytes: avatarMaxBytes,
	}
}

// Show handles GET /profiles/{userID}. Visiting someone else's profile is
// rewarded once a day.
func (h *ProfileHandler) Show(w http.ResponseWriter, r *http.Request) {
	view, err := h.profileService.View(r.Context(), ctxkeys.UserID(r.Context()), chi.URLParam(r, "userID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, view)
}

func (h *ProfileHandler) UpdateDescription(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Description string `json:"description"`
	}
	err := httputil.DecodeJSON(r, &in)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	description, err := h.profileService.UpdateDescription(r.Context(), ctxkeys.UserID(r.Context()), in.Description)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, map[string]*string{"description": description})
}

// UploadAvatar handles POST /me/avatar with the image in the "avatar" field.
func (h *ProfileHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, h.avatarMaxBytes+avatarFormSlack)

	file, header, err := r.FormFile("avatar")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.WriteError(w, apperr.Validation("file too large"))
			return
		}
		slog.Warn("avatar upload without file", "error", err, "user_id", userID)
		httputil.WriteBadRequest(w, "avatar file is required")
		return
	}
	defer file.Close()

	url, err := h.profileService.UploadAvatar(r.Context(), userID, file, header.Size)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, map[string]string{"avatar_url": url})
}
