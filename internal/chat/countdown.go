package chat

import (
	"fmt"
	"time"
)

const (
	warningAt   = 5 * time.Minute
	warningSpan = 5 * time.Second
	finalAt     = 30 * time.Second
)

// Tick is the countdown state for one evaluation.
type Tick struct {
	ResetAt   time.Time     `json:"reset_at"`
	Remaining time.Duration `json:"-"`
	Label     string        `json:"label"`
	// Seconds counts down during the final 30 seconds and is 0 otherwise.
	Seconds int `json:"seconds,omitempty"`

	Warn   bool `json:"-"`
	Urgent bool `json:"-"`
	Clear  bool `json:"-"`
}

// Countdown tracks the room reset computed from the oldest visible message.
// Each reset window warns once, announces the final 30 seconds once and
// asks for the clear once.
type Countdown struct {
	expiry time.Duration

	window  time.Time
	warned  bool
	urgent  bool
	cleared bool
}

func NewCountdown(expiry time.Duration) *Countdown {
	return &Countdown{expiry: expiry}
}

func (c *Countdown) Evaluate(oldest, now time.Time) Tick {
	resetAt := oldest.Add(c.expiry)
	if !resetAt.Equal(c.window) {
		c.window = resetAt
		c.warned, c.urgent, c.cleared = false, false, false
	}

	remaining := resetAt.Sub(now)
	tick := Tick{ResetAt: resetAt, Remaining: remaining}

	if remaining <= 0 {
		tick.Remaining = 0
		tick.Label = "Chat reset"
		if !c.cleared {
			c.cleared = true
			tick.Clear = true
		}
		return tick
	}

	tick.Label = formatRemaining(remaining)

	if remaining <= warningAt && remaining > warningAt-warningSpan && !c.warned {
		c.warned = true
		tick.Warn = true
	}

	if remaining <= finalAt {
		tick.Seconds = int((remaining + time.Second - 1) / time.Second)
		if tick.Seconds == int(finalAt/time.Second) && !c.urgent {
			c.urgent = true
			tick.Urgent = true
		}
	}

	return tick
}

// formatRemaining renders m:ss.
func formatRemaining(d time.Duration) string {
	total := int(d / time.Second)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
