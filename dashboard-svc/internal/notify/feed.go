// Package notify keeps the transient notifications ("toasts") the dashboard
// shows after user actions and incoming orders.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelError   Level = "error"
)

type Notification struct {
	ID      string    `json:"id"`
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// Feed is a bounded ring of the latest notifications.
type Feed struct {
	mu    sync.RWMutex
	items []Notification
	limit int
	log   *zap.Logger
	now   func() time.Time
}

func NewFeed(limit int, log *zap.Logger) *Feed {
	if limit < 1 {
		limit = 50
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Feed{limit: limit, log: log.Named("notify"), now: time.Now}
}

func (f *Feed) Success(msg string) { f.push(LevelSuccess, msg) }
func (f *Feed) Info(msg string)    { f.push(LevelInfo, msg) }
func (f *Feed) Error(msg string)   { f.push(LevelError, msg) }

func (f *Feed) push(level Level, msg string) {
	n := Notification{
		ID:      uuid.NewString(),
		Level:   level,
		Message: msg,
		Time:    f.now(),
	}

	f.mu.Lock()
	f.items = append(f.items, n)
	if over := len(f.items) - f.limit; over > 0 {
		f.items = append([]Notification(nil), f.items[over:]...)
	}
	f.mu.Unlock()

	if level == LevelError {
		f.log.Warn(msg, zap.String("id", n.ID))
	} else {
		f.log.Info(msg, zap.String("level", string(level)), zap.String("id", n.ID))
	}
}

// Since lists notifications newer than t, oldest first. A zero t lists all.
func (f *Feed) Since(t time.Time) []Notification {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := []Notification{}
	for _, n := range f.items {
		if t.IsZero() || n.Time.After(t) {
			out = append(out, n)
		}
	}
	return out
}
