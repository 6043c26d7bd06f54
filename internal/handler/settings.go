package handler

import (
	"net/http"

	"github.com/templui/heartroom/internal/ctxkeys"
	"github.com/templui/heartroom/internal/httputil"
	"github.com/templui/heartroom/internal/model"
)

type SettingsHandler struct {
	settingsService SettingsAPI
}

func NewSettingsHandler(settingsService SettingsAPI) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

func (h *SettingsHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsService.NotificationSettings(r.Context(), ctxkeys.UserID(r.Context()))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, settings)
}

func (h *SettingsHandler) SaveNotifications(w http.ResponseWriter, r *http.Request) {
	var settings model.NotificationSettings
	err := httputil.DecodeJSON(r, &settings)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	err = h.settingsService.SaveNotificationSettings(r.Context(), ctxkeys.UserID(r.Context()), settings)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, settings)
}
