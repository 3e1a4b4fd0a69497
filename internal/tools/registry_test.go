// ABOUTME: Tests for the tool pack registry including collision detection.
// ABOUTME: Validates registration, lookup, listing, and thread safety.

package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
)

func newTestRegistry() *Registry {
	return NewRegistry(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// testTool creates a Tool with a handler that echoes its own name.
func testTool(name string) *Tool {
	return &Tool{
		Name:        name,
		Description: name + " description",
		Parameters:  json.RawMessage(`{"type": "object"}`),
		Handler: func(ctx context.Context, input json.RawMessage) (string, error) {
			return name, nil
		},
	}
}

func TestRegistryRegisterPack(t *testing.T) {
	t.Run("registers pack successfully", func(t *testing.T) {
		registry := newTestRegistry()
		pack := &Pack{ID: "pack-1", Tools: []*Tool{testTool("tool-a"), testTool("tool-b")}}

		if err := registry.RegisterPack(pack); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		tool, ok := registry.Get("tool-a")
		if !ok {
			t.Fatal("expected tool-a to be registered")
		}
		if tool.Name != "tool-a" {
			t.Errorf("expected name 'tool-a', got '%s'", tool.Name)
		}
		if len(registry.All()) != 2 {
			t.Errorf("expected 2 tools, got %d", len(registry.All()))
		}
	})

	t.Run("returns error for duplicate pack ID", func(t *testing.T) {
		registry := newTestRegistry()
		if err := registry.RegisterPack(&Pack{ID: "pack-1", Tools: []*Tool{testTool("tool-a")}}); err != nil {
			t.Fatalf("unexpected error on first register: %v", err)
		}

		err := registry.RegisterPack(&Pack{ID: "pack-1", Tools: []*Tool{testTool("tool-c")}})
		if !errors.Is(err, ErrPackAlreadyRegistered) {
			t.Errorf("expected ErrPackAlreadyRegistered, got %v", err)
		}
	})

	t.Run("returns error for tool collision across packs", func(t *testing.T) {
		registry := newTestRegistry()
		if err := registry.RegisterPack(&Pack{ID: "pack-1", Tools: []*Tool{testTool("shared")}}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		err := registry.RegisterPack(&Pack{ID: "pack-2", Tools: []*Tool{testTool("shared")}})
		if !errors.Is(err, ErrToolCollision) {
			t.Errorf("expected ErrToolCollision, got %v", err)
		}
	})

	t.Run("returns error for nil handler", func(t *testing.T) {
		registry := newTestRegistry()
		broken := testTool("broken")
		broken.Handler = nil

		err := registry.RegisterPack(&Pack{ID: "pack-1", Tools: []*Tool{broken}})
		if !errors.Is(err, ErrNilHandler) {
			t.Errorf("expected ErrNilHandler, got %v", err)
		}
	})

	t.Run("failed registration leaves no partial state", func(t *testing.T) {
		registry := newTestRegistry()
		if err := registry.RegisterPack(&Pack{ID: "pack-1", Tools: []*Tool{testTool("taken")}}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		err := registry.RegisterPack(&Pack{ID: "pack-2", Tools: []*Tool{testTool("fresh"), testTool("taken")}})
		if !errors.Is(err, ErrToolCollision) {
			t.Fatalf("expected ErrToolCollision, got %v", err)
		}
		if _, ok := registry.Get("fresh"); ok {
			t.Error("expected 'fresh' to not be registered after failed pack registration")
		}
		if _, ok := registry.Get("taken"); !ok {
			t.Error("expected original 'taken' to survive")
		}
	})
}

func TestRegistryUnregisterPack(t *testing.T) {
	registry := newTestRegistry()
	registry.RegisterPack(&Pack{ID: "pack-1", Tools: []*Tool{testTool("tool-a"), testTool("tool-b")}})
	registry.RegisterPack(&Pack{ID: "pack-2", Tools: []*Tool{testTool("tool-c")}})

	registry.UnregisterPack("pack-1")

	if _, ok := registry.Get("tool-a"); ok {
		t.Error("expected tool-a to be removed")
	}
	if _, ok := registry.Get("tool-c"); !ok {
		t.Error("expected tool-c to survive")
	}

	// Unregistering an unknown pack is a no-op.
	registry.UnregisterPack("nope")
}

func TestRegistryAllSorted(t *testing.T) {
	registry := newTestRegistry()
	registry.RegisterPack(&Pack{ID: "pack-1", Tools: []*Tool{testTool("zebra"), testTool("apple"), testTool("mango")}})

	all := registry.All()
	want := []string{"apple", "mango", "zebra"}
	if len(all) != len(want) {
		t.Fatalf("expected %d tools, got %d", len(want), len(all))
	}
	for i, tool := range all {
		if tool.Name != want[i] {
			t.Errorf("all[%d] = %s, want %s", i, tool.Name, want[i])
		}
	}
}

func TestRegistryListPacks(t *testing.T) {
	registry := newTestRegistry()
	registry.RegisterPack(&Pack{ID: "pack-b", Tools: []*Tool{testTool("tool-2"), testTool("tool-1")}})
	registry.RegisterPack(&Pack{ID: "pack-a", Tools: []*Tool{testTool("tool-3")}})

	packs := registry.ListPacks()
	if len(packs) != 2 {
		t.Fatalf("expected 2 packs, got %d", len(packs))
	}
	if packs[0].ID != "pack-a" || packs[1].ID != "pack-b" {
		t.Errorf("expected packs sorted by ID, got %s, %s", packs[0].ID, packs[1].ID)
	}
	if packs[1].ToolNames[0] != "tool-1" {
		t.Errorf("expected tool names sorted, got %v", packs[1].ToolNames)
	}
}

func TestRegistryConcurrentAccess(t *testing.T) {
	registry := newTestRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("pack-%d", n)
			registry.RegisterPack(&Pack{ID: id, Tools: []*Tool{testTool(fmt.Sprintf("tool-%d", n))}})
			registry.All()
			registry.ListPacks()
			registry.Get(fmt.Sprintf("tool-%d", n))
		}(i)
	}
	wg.Wait()

	if got := len(registry.All()); got != 10 {
		t.Errorf("expected 10 tools after concurrent registration, got %d", got)
	}
}
