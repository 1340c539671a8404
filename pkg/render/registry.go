package render

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// ErrUnknownFormat is returned when a format names no registered renderer.
var ErrUnknownFormat = errors.New("render: unknown format")

// Registry maps output formats ("html", "tui") to renderers. The CLI --format
// flag and the HTTP server both resolve through it.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]Renderer
	order  []string
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Renderer)}
}

// Register adds renderer under its Name(). Names are unique.
func (r *Registry) Register(renderer Renderer) error {
	if renderer == nil {
		return errors.New("render: renderer is required")
	}
	name := strings.TrimSpace(renderer.Name())
	if name == "" {
		return errors.New("render: renderer name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("render: format %q registered twice", name)
	}
	r.byName[name] = renderer
	r.order = append(r.order, name)
	return nil
}

// Resolve picks the renderer for format. An empty format falls back to
// fallback and then to the first registered renderer; an explicit format that
// is not registered fails with ErrUnknownFormat.
func (r *Registry) Resolve(format, fallback string) (Renderer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if format = strings.TrimSpace(format); format != "" {
		if renderer, ok := r.byName[format]; ok {
			return renderer, nil
		}
		return nil, fmt.Errorf("%w %q (available: %s)", ErrUnknownFormat, format, strings.Join(r.sortedLocked(), ", "))
	}
	if renderer, ok := r.byName[strings.TrimSpace(fallback)]; ok {
		return renderer, nil
	}
	if len(r.order) == 0 {
		return nil, errors.New("render: no renderers registered")
	}
	return r.byName[r.order[0]], nil
}

// Formats returns the registered format names, sorted.
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedLocked()
}

func (r *Registry) sortedLocked() []string {
	names := slices.Clone(r.order)
	slices.Sort(names)
	return names
}
