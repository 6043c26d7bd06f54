package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/templui/heartroom/internal/ctxkeys"
	"github.com/templui/heartroom/internal/httputil"
	"github.com/templui/heartroom/internal/model"
)

type RewardHandler struct {
	rewardService RewardAPI
}

func NewRewardHandler(rewardService RewardAPI) *RewardHandler {
	return &RewardHandler{rewardService: rewardService}
}

// Claim handles POST /rewards/{activity}. Claiming twice in a day succeeds
// with claimed=false.
func (h *RewardHandler) Claim(w http.ResponseWriter, r *http.Request) {
	activity := model.Activity(chi.URLParam(r, "activity"))

	result, err := h.rewardService.Claim(r.Context(), ctxkeys.UserID(r.Context()), activity)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, result)
}

func (h *RewardHandler) Today(w http.ResponseWriter, r *http.Request) {
	claims, err := h.rewardService.Today(r.Context(), ctxkeys.UserID(r.Context()))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, map[string]any{
		"claims":  claims,
		"rewards": model.ActivityRewards,
	})
}
