package hook

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrInterrupt signals that a Hook handler wants to stop further processing.
var ErrInterrupt = errors.New("hook interrupted")

// HookFn is a hook handler function.
// Returns (modified data, nil) to continue, or (data, ErrInterrupt) to stop.
type HookFn func(ctx context.Context, event string, data interface{}) (interface{}, error)

type hookEntry struct {
	priority int
	fn       HookFn
	name     string
}

// HookCenter manages event hook registrations.
type HookCenter struct {
	mu    sync.RWMutex
	hooks map[string][]*hookEntry
}

// NewHookCenter creates a new HookCenter.
func NewHookCenter() *HookCenter {
	return &HookCenter{hooks: make(map[string][]*hookEntry)}
}

// Register adds a HookFn for the given event with the given priority (lower runs first).
// name is used for Unregister.
func (hc *HookCenter) Register(event string, priority int, name string, fn HookFn) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	entries := hc.hooks[event]
	entries = append(entries, &hookEntry{priority: priority, fn: fn, name: name})
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].priority < entries[j].priority
	})
	hc.hooks[event] = entries
}

// Unregister removes all hooks with the given name for the given event.
func (hc *HookCenter) Unregister(event, name string) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	entries := hc.hooks[event]
	n := 0
	for _, e := range entries {
		if e.name != name {
			entries[n] = e
			n++
		}
	}
	hc.hooks[event] = entries[:n]
}

// UnregisterAll removes all hooks registered with the given name across all events.
func (hc *HookCenter) UnregisterAll(name string) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	for event, entries := range hc.hooks {
		n := 0
		for _, e := range entries {
			if e.name != name {
				entries[n] = e
				n++
			}
		}
		hc.hooks[event] = entries[:n]
	}
}

// Has reports whether any handler is registered for event.
func (hc *HookCenter) Has(event string) bool {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	return len(hc.hooks[event]) > 0
}

// Trigger executes all registered hooks for event in priority order.
// Data flows through each handler, allowing modification.
// ErrInterrupt stops the chain and is returned as-is; any other error also
// stops the chain and is returned wrapped with the handler name.
func (hc *HookCenter) Trigger(ctx context.Context, event string, data interface{}) (interface{}, error) {
	hc.mu.RLock()
	entries := make([]*hookEntry, len(hc.hooks[event]))
	copy(entries, hc.hooks[event])
	hc.mu.RUnlock()

	var err error
	for _, e := range entries {
		data, err = e.fn(ctx, event, data)
		if errors.Is(err, ErrInterrupt) {
			return data, err
		}
		if err != nil {
			return data, fmt.Errorf("hook %s/%s: %w", event, e.name, err)
		}
	}
	return data, nil
}

// ---- Plugin command events ----

const (
	pluginCommandPrefix  = "plugin_command:"
	pluginPrefetchPrefix = "plugin_prefetch:"
)

// PluginCommandEvent is the hook event fired by event command 356 for name.
func PluginCommandEvent(name string) string { return pluginCommandPrefix + name }

// PluginPrefetchEvent is the hook event fired while prefetching assets for
// a plugin command.
func PluginPrefetchEvent(name string) string { return pluginPrefetchPrefix + name }

// PluginCommand is the payload of a plugin command event.
type PluginCommand struct {
	Name    string
	Args    []string
	MapID   int
	EventID int
}

// PrefetchRequest is the payload of a plugin prefetch event. Request asks
// the asset cache to start loading img/<folder>/<name>.png.
type PrefetchRequest struct {
	Name    string
	Args    []string
	Request func(folder, name string, hue int)
}
