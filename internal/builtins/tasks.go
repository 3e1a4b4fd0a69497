// ABOUTME: Tasks pack maintains the user's to-do list.
// ABOUTME: Backed by the todo.json list store.

package builtins

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cbbisht2004/Yogi/internal/store"
	"github.com/cbbisht2004/Yogi/internal/tools"
)

// TasksPack creates the to-do list pack.
func TasksPack(s *store.TaskStore) *tools.Pack {
	h := &taskHandlers{store: s}
	return &tools.Pack{
		ID: "core.tasks",
		Tools: []*tools.Tool{
			{
				Name:        "add_task",
				Description: "Add a task to the to-do list.",
				Parameters:  json.RawMessage(`{"type":"object","properties":{"task":{"type":"string","description":"The task to add"}},"required":["task"]}`),
				Handler:     h.Add,
			},
			{
				Name:        "list_tasks",
				Description: "List all to-do tasks.",
				Parameters:  json.RawMessage(`{"type":"object","properties":{}}`),
				Handler:     h.List,
			},
			{
				Name:        "clear_tasks",
				Description: "Clear all to-do tasks.",
				Parameters:  json.RawMessage(`{"type":"object","properties":{}}`),
				Handler:     h.Clear,
			},
		},
	}
}

type taskHandlers struct {
	store *store.TaskStore
}

type addTaskInput struct {
	Task string `json:"task"`
}

func (h *taskHandlers) Add(ctx context.Context, input json.RawMessage) (string, error) {
	var in addTaskInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", fmt.Errorf("invalid input: %w", err)
	}
	if in.Task == "" {
		return "", fmt.Errorf("task is required")
	}

	if err := h.store.Add(in.Task); err != nil {
		return "", err
	}
	return fmt.Sprintf("Task added: %s", in.Task), nil
}

func (h *taskHandlers) List(ctx context.Context, input json.RawMessage) (string, error) {
	tasks := h.store.All()
	if len(tasks) == 0 {
		return "No tasks in the list.", nil
	}

	lines := make([]string, len(tasks))
	for i, task := range tasks {
		lines[i] = fmt.Sprintf("%d. %s", i+1, task)
	}
	return strings.Join(lines, "\n"), nil
}

func (h *taskHandlers) Clear(ctx context.Context, input json.RawMessage) (string, error) {
	if err := h.store.Clear(); err != nil {
		return "", err
	}
	return "All tasks cleared.", nil
}
