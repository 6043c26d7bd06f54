package chat

import (
	"github.com/templui/heartroom/internal/model"
)

type FrameType string

const (
	FrameSnapshot  FrameType = "snapshot"
	FrameAppend    FrameType = "append"
	FrameRemove    FrameType = "remove"
	FrameToast     FrameType = "toast"
	FrameNotify    FrameType = "notify"
	FrameSound     FrameType = "sound"
	FrameCountdown FrameType = "countdown"
)

type ToastLevel string

const (
	ToastSuccess ToastLevel = "success"
	ToastInfo    ToastLevel = "info"
	ToastWarning ToastLevel = "warning"
	ToastError   ToastLevel = "error"
)

type Toast struct {
	Level      ToastLevel `json:"level"`
	Message    string     `json:"message"`
	DurationMs int64      `json:"duration_ms,omitempty"`
}

type Notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Icon  string `json:"icon,omitempty"`
	Tag   string `json:"tag,omitempty"`
}

// Frame is one update pushed to the client of a session.
type Frame struct {
	Type         FrameType            `json:"type"`
	Messages     []*model.ChatMessage `json:"messages,omitempty"`
	Message      *model.ChatMessage   `json:"message,omitempty"`
	ID           string               `json:"id,omitempty"`
	Toast        *Toast               `json:"toast,omitempty"`
	Notification *Notification        `json:"notification,omitempty"`
	Countdown    *Tick                `json:"countdown,omitempty"`
}
