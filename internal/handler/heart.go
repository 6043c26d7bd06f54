package handler

import (
	"net/http"

	"github.com/templui/heartroom/internal/ctxkeys"
	"github.com/templui/heartroom/internal/httputil"
	"github.com/templui/heartroom/internal/service"
)

type HeartHandler struct {
	heartService HeartAPI
}

func NewHeartHandler(heartService HeartAPI) *HeartHandler {
	return &HeartHandler{heartService: heartService}
}

// Give handles POST /hearts. A repeat heart answers 409 with isDuplicate set.
func (h *HeartHandler) Give(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ReceiverID string  `json:"receiver_id"`
		MessageID  *string `json:"message_id"`
	}
	err := httputil.DecodeJSON(r, &in)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	err = h.heartService.GiveHeart(r.Context(), service.HeartInput{
		GiverID:    ctxkeys.UserID(r.Context()),
		ReceiverID: in.ReceiverID,
		MessageID:  in.MessageID,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, httputil.Envelope{Success: true})
}
