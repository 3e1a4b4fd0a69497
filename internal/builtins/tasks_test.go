// ABOUTME: Tests for the tasks pack.
// ABOUTME: Covers add, numbered listing, clearing, and input validation.

package builtins

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestTasksPackAddAndList(t *testing.T) {
	pack := TasksPack(newTaskStore(t))
	add := findHandler(t, pack, "add_task")
	list := findHandler(t, pack, "list_tasks")

	if got := call(t, list, `{}`); got != "No tasks in the list." {
		t.Errorf("empty list = %q", got)
	}

	if got := call(t, add, `{"task":"buy milk"}`); got != "Task added: buy milk" {
		t.Errorf("add = %q", got)
	}
	call(t, add, `{"task":"call the dentist"}`)

	got := call(t, list, `{}`)
	want := "1. buy milk\n2. call the dentist"
	if got != want {
		t.Errorf("list = %q, want %q", got, want)
	}
}

func TestTasksPackClear(t *testing.T) {
	pack := TasksPack(newTaskStore(t))
	add := findHandler(t, pack, "add_task")
	list := findHandler(t, pack, "list_tasks")
	clear := findHandler(t, pack, "clear_tasks")

	call(t, add, `{"task":"one"}`)
	call(t, add, `{"task":"two"}`)

	if got := call(t, clear, `{}`); got != "All tasks cleared." {
		t.Errorf("clear = %q", got)
	}
	if got := call(t, list, `{}`); got != "No tasks in the list." {
		t.Errorf("list after clear = %q", got)
	}
}

func TestTasksPackAddValidation(t *testing.T) {
	pack := TasksPack(newTaskStore(t))
	add := findHandler(t, pack, "add_task")

	if _, err := add(context.Background(), json.RawMessage(`{}`)); err == nil {
		t.Fatal("expected error for missing task")
	} else if !strings.Contains(err.Error(), "task is required") {
		t.Errorf("error = %v", err)
	}

	if _, err := add(context.Background(), json.RawMessage(`{"task":`)); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}
