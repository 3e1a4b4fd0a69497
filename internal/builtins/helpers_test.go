// ABOUTME: Shared test helpers for the builtins package.
// ABOUTME: Locates handlers inside packs and builds throwaway stores.

package builtins

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/cbbisht2004/Yogi/internal/store"
	"github.com/cbbisht2004/Yogi/internal/tools"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// findHandler returns the named tool's handler, failing the test if the pack
// does not carry it.
func findHandler(t *testing.T, pack *tools.Pack, name string) tools.Handler {
	t.Helper()
	for _, tool := range pack.Tools {
		if tool.Name == name {
			return tool.Handler
		}
	}
	t.Fatalf("tool %q not found in pack %q", name, pack.ID)
	return nil
}

// call runs a handler with raw JSON input and fails the test on error.
func call(t *testing.T, h tools.Handler, input string) string {
	t.Helper()
	out, err := h(context.Background(), json.RawMessage(input))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return out
}

func newTaskStore(t *testing.T) *store.TaskStore {
	t.Helper()
	s, err := store.NewTaskStore(filepath.Join(t.TempDir(), "todo.json"))
	if err != nil {
		t.Fatalf("NewTaskStore: %v", err)
	}
	return s
}

func newNoteStore(t *testing.T) *store.NoteStore {
	t.Helper()
	s, err := store.NewNoteStore(filepath.Join(t.TempDir(), "notes.json"))
	if err != nil {
		t.Fatalf("NewNoteStore: %v", err)
	}
	return s
}
