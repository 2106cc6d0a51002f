package blackboard_test

import (
	"sync"
	"testing"

	"github.com/Arbazxkr/SwarmX-sub000/blackboard"
)

func TestBoard_SetGet(t *testing.T) {
	board := blackboard.NewBoard(nil)

	board.Set("x", "v")
	val, exists := board.Get("x")
	if !exists {
		t.Fatal("Get() exists = false, want true")
	}
	if val != "v" {
		t.Errorf("Get() = %v, want %q", val, "v")
	}

	if _, exists := board.Get("missing"); exists {
		t.Error("Get() exists = true for missing key")
	}
}

func TestBoard_SeededFromInitial(t *testing.T) {
	board := blackboard.NewBoard(map[string]any{"topic": "mars"})

	if got := board.GetString("topic"); got != "mars" {
		t.Errorf("GetString() = %q, want %q", got, "mars")
	}
	if board.Len() != 1 {
		t.Errorf("Len() = %d, want 1", board.Len())
	}
}

func TestBoard_Resolve(t *testing.T) {
	board := blackboard.NewBoard(nil)
	board.Set("x", "v")
	board.Set("count", 42)
	board.Set("tags", []string{"a", "b"})

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "string round-trip", input: "{{blackboard.x}}", want: "v"},
		{name: "embedded placeholder", input: "value is {{blackboard.x}}!", want: "value is v!"},
		{name: "missing key unchanged", input: "{{blackboard.nope}}", want: "{{blackboard.nope}}"},
		{name: "number stringified", input: "{{blackboard.count}}", want: "42"},
		{name: "slice rendered as JSON", input: "{{blackboard.tags}}", want: `["a","b"]`},
		{name: "multiple placeholders", input: "{{blackboard.x}}-{{blackboard.count}}", want: "v-42"},
		{name: "no placeholders", input: "plain input", want: "plain input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := board.Resolve(tt.input); got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestBoard_SnapshotIsIndependent(t *testing.T) {
	board := blackboard.NewBoard(nil)
	board.Set("a", 1)

	snapshot := board.Snapshot()
	snapshot["a"] = 99
	snapshot["b"] = 2

	if val, _ := board.Get("a"); val != 1 {
		t.Errorf("board value mutated through snapshot: %v", val)
	}
	if _, exists := board.Get("b"); exists {
		t.Error("snapshot write leaked into board")
	}
}

func TestBoard_Keys(t *testing.T) {
	board := blackboard.NewBoard(nil)
	board.Set("b", 1)
	board.Set("a", 2)
	board.Set("c", 3)
	board.Delete("c")

	keys := board.Keys()
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Errorf("Keys() = %v, want [a b]", keys)
	}
}

func TestBoard_ConcurrentAccess(t *testing.T) {
	board := blackboard.NewBoard(nil)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := string(rune('a' + n%8))
			board.Set(key, n)
			board.Get(key)
			board.Resolve("{{blackboard." + key + "}}")
		}(i)
	}
	wg.Wait()

	if board.Len() != 8 {
		t.Errorf("Len() = %d, want 8", board.Len())
	}
}
