// ABOUTME: Task list persistence backed by todo.json
// ABOUTME: Append, list, and clear over a ListStore

package store

// TaskStore holds the user's task list in a single JSON file.
type TaskStore struct {
	list *ListStore
}

// NewTaskStore creates a task store backed by the file at path.
func NewTaskStore(path string) (*TaskStore, error) {
	list, err := NewListStore(path)
	if err != nil {
		return nil, err
	}
	return &TaskStore{list: list}, nil
}

// Add appends a task and persists the list.
func (t *TaskStore) Add(task string) error {
	return t.list.Append(task)
}

// All returns the tasks in insertion order.
func (t *TaskStore) All() []string {
	return t.list.Items()
}

// Clear removes every task.
func (t *TaskStore) Clear() error {
	return t.list.Replace([]string{})
}
