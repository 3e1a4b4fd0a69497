// ABOUTME: Notes pack keeps the user's running notes.
// ABOUTME: New text merges into the last note; only an empty store gains an entry.

package builtins

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cbbisht2004/Yogi/internal/store"
	"github.com/cbbisht2004/Yogi/internal/tools"
)

// NotesPack creates the notes pack.
func NotesPack(s *store.NoteStore) *tools.Pack {
	h := &noteHandlers{store: s}
	return &tools.Pack{
		ID: "core.notes",
		Tools: []*tools.Tool{
			{
				Name:        "write_note",
				Description: "Append new info to the last note, or create a new note if none exist.",
				Parameters:  json.RawMessage(`{"type":"object","properties":{"note":{"type":"string","description":"The text to note down"}},"required":["note"]}`),
				Handler:     h.Write,
			},
			{
				Name:        "show_notes",
				Description: "Show all notes.",
				Parameters:  json.RawMessage(`{"type":"object","properties":{}}`),
				Handler:     h.Show,
			},
		},
	}
}

type noteHandlers struct {
	store *store.NoteStore
}

type writeNoteInput struct {
	Note string `json:"note"`
}

func (h *noteHandlers) Write(ctx context.Context, input json.RawMessage) (string, error) {
	var in writeNoteInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", fmt.Errorf("invalid input: %w", err)
	}
	if in.Note == "" {
		return "", fmt.Errorf("note is required")
	}

	created, err := h.store.Write(in.Note)
	if err != nil {
		return "", err
	}
	if created {
		return "Note added.", nil
	}
	return "Note updated.", nil
}

func (h *noteHandlers) Show(ctx context.Context, input json.RawMessage) (string, error) {
	notes := h.store.All()
	if len(notes) == 0 {
		return "No notes saved.", nil
	}

	lines := make([]string, len(notes))
	for i, note := range notes {
		lines[i] = fmt.Sprintf("%d. %s", i+1, note)
	}
	return strings.Join(lines, "\n"), nil
}
