package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/templui/heartroom/internal/chat"
	"github.com/templui/heartroom/internal/ctxkeys"
	"github.com/templui/heartroom/internal/logger"
	"github.com/templui/heartroom/internal/metrics"
	"github.com/templui/heartroom/internal/realtime"
	"github.com/templui/heartroom/internal/service"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxClientFrame = 16 << 10
	sendBurst      = 5
)

// ClientFrame is an action sent by the websocket client.
type ClientFrame struct {
	Type       string `json:"type"`
	Content    string `json:"content,omitempty"`
	ReceiverID string `json:"receiver_id,omitempty"`
	MessageID  string `json:"message_id,omitempty"`
}

type ChatOptions struct {
	Expiry   time.Duration
	Tick     time.Duration
	SendRate float64
}

type ChatHandler struct {
	messages chat.MessageAPI
	hearts   chat.HeartGiver
	feed     realtime.Subscriber
	rewards  service.RewardClaimer
	settings SettingsAPI
	opts     ChatOptions
	upgrader websocket.Upgrader
}

func NewChatHandler(
	messages chat.MessageAPI,
	hearts chat.HeartGiver,
	feed realtime.Subscriber,
	rewards service.RewardClaimer,
	settings SettingsAPI,
	opts ChatOptions,
) *ChatHandler {
	return &ChatHandler{
		messages: messages,
		hearts:   hearts,
		feed:     feed,
		rewards:  rewards,
		settings: settings,
		opts:     opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
}

// Serve handles GET /ws/chat. Each connection owns one chat session: frames
// from the session are written to the socket and client actions are applied
// to the session until either side goes away.
func (h *ChatHandler) Serve(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	log := logger.Component("ws").With("user_id", userID)

	settings, err := h.settings.NotificationSettings(r.Context(), userID)
	if err != nil {
		log.Warn("using default notification settings", "error", err)
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	metrics.WsConnections.Inc()
	defer metrics.WsConnections.Dec()

	cfg := chat.Config{
		UserID:   userID,
		Messages: h.messages,
		Hearts:   h.hearts,
		Feed:     h.feed,
		Rewards:  h.rewards,
		Settings: settings,
		Expiry:   h.opts.Expiry,
		Tick:     h.opts.Tick,

		SettingsSource: h.settings,
	}

	err = chat.Run(r.Context(), cfg, func(ctx context.Context, s *chat.Session) error {
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			writePump(conn, s, log)
		}()

		readPump(ctx, conn, s, rate.NewLimiter(rate.Limit(h.opts.SendRate), sendBurst))

		// the reader stops on any socket error, including a failed write
		s.Close()
		wg.Wait()
		return nil
	})
	if err != nil {
		log.Error("failed to open chat session", "error", err)
		deadline := time.Now().Add(writeWait)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "chat unavailable"), deadline)
	}
}

func readPump(ctx context.Context, conn *websocket.Conn, s *chat.Session, limiter *rate.Limiter) {
	conn.SetReadLimit(maxClientFrame)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var frame ClientFrame
		err = json.Unmarshal(data, &frame)
		if err != nil {
			s.Notice(chat.ToastError, "Invalid request")
			continue
		}

		dispatch(ctx, s, frame, limiter)
	}
}

func dispatch(ctx context.Context, s *chat.Session, frame ClientFrame, limiter *rate.Limiter) {
	switch frame.Type {
	case "send", "heart":
		if !limiter.Allow() {
			s.Notice(chat.ToastWarning, "You are going too fast. Slow down a little.")
			return
		}
		if frame.Type == "send" {
			s.SendMessage(ctx, frame.Content)
		} else {
			s.GiveHeart(ctx, frame.ReceiverID, frame.MessageID)
		}
	case "delete":
		s.DeleteMessage(ctx, frame.MessageID)
	case "clear":
		s.ClearAllMessages(ctx)
	default:
		s.Notice(chat.ToastError, "Unknown action")
	}
}

func writePump(conn *websocket.Conn, s *chat.Session, log *slog.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-s.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			// unblocks the reader when the session ended on its own
			conn.Close()
			return
		case frame := <-s.Updates():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := conn.WriteJSON(frame)
			if err != nil {
				log.Debug("websocket write failed", "error", err)
				conn.Close()
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := conn.WriteMessage(websocket.PingMessage, nil)
			if err != nil {
				conn.Close()
				return
			}
		}
	}
}
