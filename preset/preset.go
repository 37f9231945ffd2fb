// Package preset keeps named voice parameter bundles and applies them
// to a pool. The library is purely in-memory; callers that want presets
// on disk hand in their own readers and writers.
package preset

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/shaban/polyvoice"
)

// Target is anything that can receive a bulk parameter update — a
// polyvoice.Pool or a polyvoice.Dispatcher.
type Target interface {
	Set(params polyvoice.Params) error
}

// Library is a thread-safe registry of named parameter bundles.
type Library struct {
	mu      sync.RWMutex
	presets map[string]polyvoice.Params
}

// NewLibrary creates an empty preset library.
func NewLibrary() *Library {
	return &Library{presets: make(map[string]polyvoice.Params)}
}

// Add registers a bundle under the given name, replacing any previous
// bundle with that name.
func (l *Library) Add(name string, params polyvoice.Params) error {
	if name == "" {
		return fmt.Errorf("preset name must not be empty")
	}
	if params == nil {
		return fmt.Errorf("preset %q has no parameters", name)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.presets[name] = params
	return nil
}

// Get returns the bundle registered under name.
func (l *Library) Get(name string) (polyvoice.Params, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	params, ok := l.presets[name]
	return params, ok
}

// Remove deletes a preset. Removing an unknown name is a no-op.
func (l *Library) Remove(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.presets, name)
}

// Names returns all registered preset names, sorted.
func (l *Library) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.presets))
	for name := range l.presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply looks up a preset and forwards its bundle to the target, which
// spreads it across every voice of the pool, free and active alike.
func (l *Library) Apply(target Target, name string) error {
	params, ok := l.Get(name)
	if !ok {
		return fmt.Errorf("unknown preset %q", name)
	}
	return target.Set(params)
}

// Encode writes the library as JSON.
func (l *Library) Encode(w io.Writer) error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(l.presets); err != nil {
		return fmt.Errorf("failed to encode preset library: %w", err)
	}
	return nil
}

// Decode reads JSON presets from r and merges them into the library,
// replacing bundles whose names collide.
func (l *Library) Decode(r io.Reader) error {
	var presets map[string]polyvoice.Params
	if err := json.NewDecoder(r).Decode(&presets); err != nil {
		return fmt.Errorf("failed to decode preset library: %w", err)
	}

	for name, params := range presets {
		if err := l.Add(name, params); err != nil {
			return fmt.Errorf("invalid preset in stream: %w", err)
		}
	}
	return nil
}
