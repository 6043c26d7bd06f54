package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/templui/heartroom/internal/ctxkeys"
	"github.com/templui/heartroom/internal/httputil"
)

type BannerHandler struct {
	bannerService BannerAPI
}

func NewBannerHandler(bannerService BannerAPI) *BannerHandler {
	return &BannerHandler{bannerService: bannerService}
}

// Collection handles GET /banners: the catalog with unlock state and stats.
func (h *BannerHandler) Collection(w http.ResponseWriter, r *http.Request) {
	collection, err := h.bannerService.Collection(r.Context(), ctxkeys.UserID(r.Context()))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, collection)
}

func (h *BannerHandler) Equipped(w http.ResponseWriter, r *http.Request) {
	equipped, err := h.bannerService.Equipped(r.Context(), ctxkeys.UserID(r.Context()))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, equipped)
}

// Toggle handles POST /banners/{id}/toggle.
func (h *BannerHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	plan, err := h.bannerService.ToggleEquip(r.Context(), ctxkeys.UserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, map[string]any{
		"action":    plan.Action.String(),
		"banner_id": plan.BannerID,
		"position":  plan.Position,
	})
}
