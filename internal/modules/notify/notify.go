package notify

import (
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/reusedev/autowriter-client/internal/modules/logs"
)

type Type string

const (
	TypeError Type = "error"
)

const DefaultDuration = 5 * time.Second

// Notification is the user facing message emitted once per failed request.
type Notification struct {
	Message  string
	Type     Type
	Duration time.Duration
}

type notificationJSON struct {
	Message    string `json:"message"`
	Type       Type   `json:"type"`
	DurationMs int64  `json:"duration"`
}

// MarshalJSON writes the display duration in milliseconds.
func (n Notification) MarshalJSON() ([]byte, error) {
	return jsoniter.Marshal(notificationJSON{Message: n.Message, Type: n.Type, DurationMs: n.Duration.Milliseconds()})
}

func (n *Notification) UnmarshalJSON(data []byte) error {
	var v notificationJSON
	if err := jsoniter.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = Notification{Message: v.Message, Type: v.Type, Duration: time.Duration(v.DurationMs) * time.Millisecond}
	return nil
}

func Error(message string, duration time.Duration) Notification {
	return Notification{Message: message, Type: TypeError, Duration: duration}
}

type Notifier interface {
	Notify(n Notification)
}

type NotifierFunc func(n Notification)

func (f NotifierFunc) Notify(n Notification) {
	f(n)
}

// LogNotifier shows notifications as log lines, the terminal stand-in for a toast.
type LogNotifier struct{}

func (LogNotifier) Notify(n Notification) {
	logs.Logger.Warn().
		Str("type", string(n.Type)).
		Dur("duration", n.Duration).
		Msg(n.Message)
}

type Multi []Notifier

func (m Multi) Notify(n Notification) {
	for _, notifier := range m {
		if notifier != nil {
			notifier.Notify(n)
		}
	}
}

// Recorder keeps every notification it receives. Safe for concurrent use.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

func (r *Recorder) Notifications() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	ret := make([]Notification, len(r.items))
	copy(ret, r.items)
	return ret
}

func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}
