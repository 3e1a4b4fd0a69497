// ABOUTME: Tracks active countdown timers with cancellation and completion signals.
// ABOUTME: Bounds concurrent timers and announces expiry through an optional callback.

package timers

import (
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrTooManyTimers is returned by Set when the active-timer bound is reached.
	ErrTooManyTimers = errors.New("too many active timers")
	// ErrInvalidDuration is returned by Set for zero or negative durations.
	ErrInvalidDuration = errors.New("timer duration must be positive")
)

// DefaultMaxActive bounds concurrent timers when no limit is configured.
const DefaultMaxActive = 32

// Timer is one running countdown.
type Timer struct {
	ID        string
	Duration  time.Duration
	ExpiresAt time.Time

	done  chan struct{}
	timer *time.Timer
}

// Done returns a channel closed when the timer fires. Cancelled timers never
// close it.
func (t *Timer) Done() <-chan struct{} { return t.done }

// Remaining reports the time left before expiry, clamped at zero.
func (t *Timer) Remaining() time.Duration {
	r := time.Until(t.ExpiresAt)
	if r < 0 {
		return 0
	}
	return r
}

// ExpireFunc is invoked on the timer's own goroutine when it fires.
type ExpireFunc func(*Timer)

// Manager owns the set of active timers.
type Manager struct {
	logger    *slog.Logger
	maxActive int

	mu       sync.Mutex
	active   map[string]*Timer
	onExpire ExpireFunc
}

// NewManager returns a Manager allowing at most maxActive concurrent timers.
// maxActive <= 0 selects DefaultMaxActive.
func NewManager(maxActive int, logger *slog.Logger) *Manager {
	if maxActive <= 0 {
		maxActive = DefaultMaxActive
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		logger:    logger.With("component", "timers"),
		maxActive: maxActive,
		active:    make(map[string]*Timer),
	}
}

// OnExpire registers a callback fired whenever any timer expires. Cancelled
// timers do not trigger it.
func (m *Manager) OnExpire(fn ExpireFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onExpire = fn
}

// Set starts a new timer.
func (m *Manager) Set(d time.Duration) (*Timer, error) {
	if d <= 0 {
		return nil, ErrInvalidDuration
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.active) >= m.maxActive {
		return nil, ErrTooManyTimers
	}
	t := &Timer{
		ID:        uuid.NewString()[:8],
		Duration:  d,
		ExpiresAt: time.Now().Add(d),
		done:      make(chan struct{}),
	}
	t.timer = time.AfterFunc(d, func() { m.expire(t) })
	m.active[t.ID] = t
	m.logger.Info("timer set", "id", t.ID, "duration", d)
	return t, nil
}

func (m *Manager) expire(t *Timer) {
	m.mu.Lock()
	_, running := m.active[t.ID]
	delete(m.active, t.ID)
	fn := m.onExpire
	m.mu.Unlock()
	if !running {
		// Cancelled while the expiry callback was already in flight.
		return
	}
	close(t.done)
	m.logger.Info("timer is up", "id", t.ID, "duration", t.Duration)
	if fn != nil {
		fn(t)
	}
}

// Cancel stops a running timer. It reports whether the ID named an active one.
func (m *Manager) Cancel(id string) bool {
	m.mu.Lock()
	t, ok := m.active[id]
	if ok {
		delete(m.active, id)
	}
	m.mu.Unlock()
	if !ok {
		return false
	}
	t.timer.Stop()
	m.logger.Info("timer cancelled", "id", id, "remaining", t.Remaining())
	return true
}

// Active returns the running timers ordered by expiry, soonest first.
func (m *Manager) Active() []*Timer {
	m.mu.Lock()
	out := make([]*Timer, 0, len(m.active))
	for _, t := range m.active {
		out = append(out, t)
	}
	m.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiresAt.Before(out[j].ExpiresAt) })
	return out
}

// Stop cancels every active timer. Used on shutdown.
func (m *Manager) Stop() {
	m.mu.Lock()
	stopped := make([]*Timer, 0, len(m.active))
	for _, t := range m.active {
		stopped = append(stopped, t)
	}
	m.active = make(map[string]*Timer)
	m.mu.Unlock()
	for _, t := range stopped {
		t.timer.Stop()
	}
}
