package blackboard

import (
	"encoding/json"
	"fmt"
	"maps"
	"regexp"
	"sort"
	"sync"
)

var placeholderPattern = regexp.MustCompile(`\{\{blackboard\.([^}]+)\}\}`)

// Board is a run-scoped key/value scratchpad. All methods are safe for
// concurrent use.
type Board struct {
	mu   sync.RWMutex
	data map[string]any
}

// NewBoard creates a Board seeded from initial (which may be nil).
func NewBoard(initial map[string]any) *Board {
	data := make(map[string]any, len(initial))
	maps.Copy(data, initial)
	return &Board{data: data}
}

// Set stores a value under key, replacing any previous value.
func (b *Board) Set(key string, value any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data[key] = value
}

// Get retrieves a value by key. The second return reports whether the key
// exists.
func (b *Board) Get(key string) (any, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	val, exists := b.data[key]
	return val, exists
}

// GetString retrieves a value by key stringified the same way template
// resolution stringifies it. Missing keys return "".
func (b *Board) GetString(key string) string {
	val, exists := b.Get(key)
	if !exists {
		return ""
	}
	return stringify(val)
}

// Delete removes a key.
func (b *Board) Delete(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.data, key)
}

// Keys returns all keys in sorted order.
func (b *Board) Keys() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	keys := make([]string, 0, len(b.data))
	for key := range b.data {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of stored keys.
func (b *Board) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.data)
}

// Snapshot returns an independent copy of the board's contents.
func (b *Board) Snapshot() map[string]any {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return maps.Clone(b.data)
}

// Resolve replaces every {{blackboard.key}} placeholder in input with the
// stringified current value of key. Placeholders for absent keys are left
// unchanged.
func (b *Board) Resolve(input string) string {
	return placeholderPattern.ReplaceAllStringFunc(input, func(match string) string {
		key := placeholderPattern.FindStringSubmatch(match)[1]
		val, exists := b.Get(key)
		if !exists {
			return match
		}
		return stringify(val)
	})
}

// stringify renders a board value for template substitution: strings pass
// through, structured values render as JSON.
func stringify(val any) string {
	switch v := val.(type) {
	case string:
		return v
	default:
		if data, err := json.Marshal(v); err == nil {
			return string(data)
		}
		return fmt.Sprint(v)
	}
}
