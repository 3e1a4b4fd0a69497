// ABOUTME: Tests for assistant wiring: pack registration, tool declarations, dispatch.
// ABOUTME: Uses real stores on temp paths and an in-memory SQLite audit log.

package agent

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cbbisht2004/Yogi/internal/calendar"
	"github.com/cbbisht2004/Yogi/internal/config"
	"github.com/cbbisht2004/Yogi/internal/pathname"
	"github.com/cbbisht2004/Yogi/internal/store"
	"github.com/cbbisht2004/Yogi/internal/timers"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() *config.Config {
	return &config.Config{
		Realtime: config.RealtimeConfig{
			APIKey:      "sk-test",
			APIBase:     "https://api.openai.com",
			Model:       "gpt-4o-realtime-preview-2024-12-17",
			Voice:       "alloy",
			Temperature: 0.8,
		},
		Calendar: config.CalendarConfig{CalendarID: "primary"},
		Tools: config.ToolsConfig{
			DedupeWindow:    time.Minute,
			DispatchTimeout: 5 * time.Second,
		},
	}
}

func newTestAssistant(t *testing.T) *Assistant {
	t.Helper()
	dir := t.TempDir()

	tasks, err := store.NewTaskStore(filepath.Join(dir, "todo.json"))
	if err != nil {
		t.Fatalf("task store: %v", err)
	}
	notes, err := store.NewNoteStore(filepath.Join(dir, "notes.json"))
	if err != nil {
		t.Fatalf("note store: %v", err)
	}
	audit, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = audit.Close() })

	mgr := timers.NewManager(0, testLogger())
	t.Cleanup(mgr.Stop)

	provider := calendar.NewCredentialProvider(
		filepath.Join(dir, "credentials.json"),
		filepath.Join(dir, "token.json"),
		testLogger(),
	)

	a, err := NewAssistant(Deps{
		Config:   testConfig(),
		Tasks:    tasks,
		Notes:    notes,
		Audit:    audit,
		Resolver: pathname.NewResolver(),
		Timers:   mgr,
		Calendar: provider,
		Logger:   testLogger(),
	})
	if err != nil {
		t.Fatalf("NewAssistant: %v", err)
	}
	t.Cleanup(a.Close)
	return a
}

func TestNewAssistantRequiresConfig(t *testing.T) {
	if _, err := NewAssistant(Deps{}); err == nil {
		t.Fatal("expected error for missing config")
	}
}

func TestNewAssistantRegistersAllPacks(t *testing.T) {
	a := newTestAssistant(t)

	want := []string{
		"core.calendar",
		"core.comms",
		"core.files",
		"core.notes",
		"core.tasks",
		"core.timers",
		"core.utils",
		"core.web",
	}
	packs := a.Registry().ListPacks()
	if len(packs) != len(want) {
		t.Fatalf("got %d packs, want %d", len(packs), len(want))
	}
	for i, p := range packs {
		if p.ID != want[i] {
			t.Errorf("pack[%d] = %s, want %s", i, p.ID, want[i])
		}
	}

	if got := len(a.Registry().All()); got != 22 {
		t.Errorf("got %d tools, want 22", got)
	}
}

func TestAssistantToolDeclarations(t *testing.T) {
	a := newTestAssistant(t)

	decls := a.Tools()
	if len(decls) != len(a.Registry().All()) {
		t.Fatalf("got %d declarations, want %d", len(decls), len(a.Registry().All()))
	}

	var found bool
	for _, d := range decls {
		if d.Name != "add_task" {
			continue
		}
		found = true
		if d.Description == "" {
			t.Error("add_task has no description")
		}
		if len(d.Parameters) == 0 {
			t.Error("add_task has no parameter schema")
		}
		var schema struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(d.Parameters, &schema); err != nil {
			t.Errorf("add_task parameters are not valid JSON: %v", err)
		} else if schema.Type != "object" {
			t.Errorf("add_task schema type = %q, want object", schema.Type)
		}
	}
	if !found {
		t.Fatal("add_task missing from declarations")
	}
}

func TestAssistantDispatch(t *testing.T) {
	a := newTestAssistant(t)
	ctx := context.Background()

	got := a.Dispatcher().Dispatch(ctx, "call_1", "add_task", json.RawMessage(`{"task": "buy milk"}`))
	if got != "Task added: buy milk" {
		t.Fatalf("add_task = %q", got)
	}

	got = a.Dispatcher().Dispatch(ctx, "call_2", "list_tasks", json.RawMessage(`{}`))
	if !strings.Contains(got, "1. buy milk") {
		t.Fatalf("list_tasks = %q, want task listed", got)
	}
}

func TestAssistantDispatchReplaysDuplicateCallID(t *testing.T) {
	a := newTestAssistant(t)
	ctx := context.Background()

	first := a.Dispatcher().Dispatch(ctx, "call_dup", "add_task", json.RawMessage(`{"task": "water plants"}`))
	second := a.Dispatcher().Dispatch(ctx, "call_dup", "add_task", json.RawMessage(`{"task": "water plants"}`))
	if first != second {
		t.Fatalf("replay mismatch: %q vs %q", first, second)
	}

	got := a.Dispatcher().Dispatch(ctx, "call_list", "list_tasks", json.RawMessage(`{}`))
	if strings.Contains(got, "2. water plants") {
		t.Fatalf("duplicate call ran twice: %q", got)
	}
}

func TestAssistantDispatchAudited(t *testing.T) {
	dir := t.TempDir()
	tasks, err := store.NewTaskStore(filepath.Join(dir, "todo.json"))
	if err != nil {
		t.Fatalf("task store: %v", err)
	}
	notes, err := store.NewNoteStore(filepath.Join(dir, "notes.json"))
	if err != nil {
		t.Fatalf("note store: %v", err)
	}
	audit, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = audit.Close() })
	mgr := timers.NewManager(0, testLogger())
	t.Cleanup(mgr.Stop)

	a, err := NewAssistant(Deps{
		Config:   testConfig(),
		Tasks:    tasks,
		Notes:    notes,
		Audit:    audit,
		Resolver: pathname.NewResolver(),
		Timers:   mgr,
		Calendar: calendar.NewCredentialProvider(filepath.Join(dir, "c.json"), filepath.Join(dir, "t.json"), testLogger()),
		Logger:   testLogger(),
	})
	if err != nil {
		t.Fatalf("NewAssistant: %v", err)
	}
	t.Cleanup(a.Close)

	a.Dispatcher().Dispatch(context.Background(), "call_a", "add_task", json.RawMessage(`{"task": "x"}`))

	stats, err := audit.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	var calls int64
	for _, s := range stats {
		if s.Tool == "add_task" {
			calls = s.Calls
		}
	}
	if calls != 1 {
		t.Fatalf("add_task audit calls = %d, want 1", calls)
	}
}

func TestNewSessionUnconnected(t *testing.T) {
	a := newTestAssistant(t)

	sess, err := a.NewSession()
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	_ = sess.Close()
}
