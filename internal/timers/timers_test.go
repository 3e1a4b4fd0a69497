// ABOUTME: Tests for the timer manager lifecycle.
// ABOUTME: Covers expiry signaling, cancellation, the active bound, and callbacks.

package timers

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

func newTestManager(maxActive int) *Manager {
	return NewManager(maxActive, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSetAndExpire(t *testing.T) {
	m := newTestManager(0)
	tm, err := m.Set(20 * time.Millisecond)
	if err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if tm.ID == "" {
		t.Fatal("expected a non-empty timer ID")
	}
	select {
	case <-tm.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("timer did not fire")
	}
	if got := len(m.Active()); got != 0 {
		t.Errorf("expected no active timers after expiry, got %d", got)
	}
}

func TestCancel(t *testing.T) {
	m := newTestManager(0)
	tm, err := m.Set(time.Hour)
	if err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if !m.Cancel(tm.ID) {
		t.Fatal("Cancel returned false for an active timer")
	}
	if m.Cancel(tm.ID) {
		t.Error("Cancel returned true for an already-cancelled timer")
	}
	if got := len(m.Active()); got != 0 {
		t.Errorf("expected no active timers after cancel, got %d", got)
	}
	select {
	case <-tm.Done():
		t.Error("Done closed for a cancelled timer")
	default:
	}
}

func TestCancelUnknownID(t *testing.T) {
	m := newTestManager(0)
	if m.Cancel("nope") {
		t.Error("Cancel returned true for an unknown ID")
	}
}

func TestMaxActiveBound(t *testing.T) {
	m := newTestManager(2)
	first, err := m.Set(time.Hour)
	if err != nil {
		t.Fatalf("first Set returned error: %v", err)
	}
	if _, err := m.Set(time.Hour); err != nil {
		t.Fatalf("second Set returned error: %v", err)
	}
	if _, err := m.Set(time.Hour); !errors.Is(err, ErrTooManyTimers) {
		t.Fatalf("expected ErrTooManyTimers, got %v", err)
	}
	m.Cancel(first.ID)
	if _, err := m.Set(time.Hour); err != nil {
		t.Errorf("Set after cancel returned error: %v", err)
	}
}

func TestInvalidDuration(t *testing.T) {
	m := newTestManager(0)
	if _, err := m.Set(0); !errors.Is(err, ErrInvalidDuration) {
		t.Errorf("Set(0) error = %v, want ErrInvalidDuration", err)
	}
	if _, err := m.Set(-time.Second); !errors.Is(err, ErrInvalidDuration) {
		t.Errorf("Set(-1s) error = %v, want ErrInvalidDuration", err)
	}
}

func TestActiveOrderedByExpiry(t *testing.T) {
	m := newTestManager(0)
	late, _ := m.Set(2 * time.Hour)
	soon, _ := m.Set(time.Minute)
	mid, _ := m.Set(time.Hour)

	active := m.Active()
	if len(active) != 3 {
		t.Fatalf("expected 3 active timers, got %d", len(active))
	}
	want := []string{soon.ID, mid.ID, late.ID}
	for i, tm := range active {
		if tm.ID != want[i] {
			t.Errorf("active[%d] = %s, want %s", i, tm.ID, want[i])
		}
	}
}

func TestOnExpireCallback(t *testing.T) {
	m := newTestManager(0)
	fired := make(chan *Timer, 1)
	m.OnExpire(func(tm *Timer) { fired <- tm })

	tm, err := m.Set(20 * time.Millisecond)
	if err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	select {
	case got := <-fired:
		if got.ID != tm.ID {
			t.Errorf("callback got timer %s, want %s", got.ID, tm.ID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expiry callback never fired")
	}
}

func TestRemaining(t *testing.T) {
	m := newTestManager(0)
	tm, err := m.Set(time.Hour)
	if err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	r := tm.Remaining()
	if r <= 0 || r > time.Hour {
		t.Errorf("Remaining = %v, want within (0, 1h]", r)
	}
}

func TestStopCancelsAll(t *testing.T) {
	m := newTestManager(0)
	m.Set(time.Hour)
	m.Set(time.Hour)
	m.Stop()
	if got := len(m.Active()); got != 0 {
		t.Errorf("expected no active timers after Stop, got %d", got)
	}
}
