package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/templui/heartroom/internal/ctxkeys"
	"github.com/templui/heartroom/internal/httputil"
	"github.com/templui/heartroom/internal/model"
	"github.com/templui/heartroom/internal/service"
)

type MessageHandler struct {
	messageService MessageAPI
	rewards        service.RewardClaimer
}

func NewMessageHandler(messageService MessageAPI, rewards service.RewardClaimer) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
		rewards:        rewards,
	}
}

func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	messages, err := h.messageService.FetchMessages(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, messages)
}

func (h *MessageHandler) Get(w http.ResponseWriter, r *http.Request) {
	message, err := h.messageService.FetchMessageByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, message)
}

// Create handles POST /messages. The message reaches readers through the
// change feed, so the response carries no body.
func (h *MessageHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Content string `json:"content"`
	}
	err := httputil.DecodeJSON(r, &in)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	userID := ctxkeys.UserID(r.Context())
	err = h.messageService.CreateMessage(r.Context(), in.Content, userID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	claimQuietly(r.Context(), h.rewards, userID, model.ActivityFirstMessage)
	httputil.WriteJSON(w, http.StatusCreated, httputil.Envelope{Success: true})
}

// Delete handles DELETE /messages/{id}. Messages of other users match
// nothing and report deleted=false.
func (h *MessageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.messageService.DeleteMessage(r.Context(), chi.URLParam(r, "id"), ctxkeys.UserID(r.Context()))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

func (h *MessageHandler) Clear(w http.ResponseWriter, r *http.Request) {
	n, err := h.messageService.ClearAll(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, map[string]int64{"deleted": n})
}
