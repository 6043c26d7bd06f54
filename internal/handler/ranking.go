package handler

import (
	"net/http"

	"github.com/templui/heartroom/internal/httputil"
)

type RankingHandler struct {
	rankingService RankingAPI
}

func NewRankingHandler(rankingService RankingAPI) *RankingHandler {
	return &RankingHandler{rankingService: rankingService}
}

func (h *RankingHandler) List(w http.ResponseWriter, r *http.Request) {
	rankings, err := h.rankingService.Rankings(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, rankings)
}
