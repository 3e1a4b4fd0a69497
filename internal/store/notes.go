// ABOUTME: Note list persistence backed by notes.json
// ABOUTME: Implements the merge-on-write policy where new text joins the last note

package store

import (
	"strings"
	"unicode"
)

// NoteStore holds the user's notes in a single JSON file.
//
// Writing does not create independent entries: when a note already exists,
// new text is joined onto the last entry with a newline. Only an empty
// store gains a new entry.
type NoteStore struct {
	list *ListStore
}

// NewNoteStore creates a note store backed by the file at path.
func NewNoteStore(path string) (*NoteStore, error) {
	list, err := NewListStore(path)
	if err != nil {
		return nil, err
	}
	return &NoteStore{list: list}, nil
}

// Write merges note into the last entry, or creates the first entry when
// the store is empty. It reports whether a new entry was created.
func (n *NoteStore) Write(note string) (created bool, err error) {
	err = n.list.Update(func(notes []string) []string {
		if len(notes) == 0 {
			created = true
			return append(notes, note)
		}
		last := len(notes) - 1
		notes[last] = strings.TrimRightFunc(notes[last], unicode.IsSpace) +
			"\n" + strings.TrimLeftFunc(note, unicode.IsSpace)
		return notes
	})
	return created, err
}

// All returns the notes in insertion order.
func (n *NoteStore) All() []string {
	return n.list.Items()
}
