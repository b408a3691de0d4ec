package op

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/devicelab-dev/sirius/pkg/core"
)

// Constructor builds a predicate from step arguments.
type Constructor[T any] func(args ...string) (Predicate[T], error)

// Registry maps canonical predicate names to constructors, so a step layer
// can verify "enabled" or "has text" without reflection.
type Registry[T any] struct {
	mu    sync.RWMutex
	ctors map[string]Constructor[T]
	names map[string]string // canonical -> registered spelling
}

// NewRegistry creates an empty registry.
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{
		ctors: make(map[string]Constructor[T]),
		names: make(map[string]string),
	}
}

// Canonical normalizes a predicate name: case, spaces, dashes and
// underscores are ignored, so "Has Text", "has_text" and "hasText" match.
func Canonical(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch r {
		case ' ', '-', '_', '\t':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Register adds a constructor under name, replacing any previous one.
func (r *Registry[T]) Register(name string, ctor Constructor[T]) {
	key := Canonical(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ctors[key] = ctor
	r.names[key] = name
}

// Lookup builds the predicate registered under name.
func (r *Registry[T]) Lookup(name string, args ...string) (Predicate[T], error) {
	r.mu.RLock()
	ctor, ok := r.ctors[Canonical(name)]
	r.mu.RUnlock()
	if !ok {
		return nil, core.ErrUnknownPredicate.WithMessage(fmt.Sprintf("no predicate registered for %q", name))
	}
	return ctor(args...)
}

// Names returns the registered names, sorted.
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.names))
	for _, n := range r.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// ExpectArgs returns a configuration error unless exactly n args were given.
func ExpectArgs(name string, args []string, n int) error {
	if len(args) != n {
		return core.ErrInvalidSchema.WithMessage(fmt.Sprintf("%s expects %d argument(s), got %d", name, n, len(args)))
	}
	return nil
}
