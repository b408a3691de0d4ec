// Package session tracks the execution scopes alive in the process.
package session

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/devicelab-dev/sirius/pkg/core"
	"github.com/devicelab-dev/sirius/pkg/logger"
	"github.com/devicelab-dev/sirius/pkg/ui"
)

// Registry maps scope IDs to scopes. Safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	scopes map[string]*ui.Scope
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{scopes: make(map[string]*ui.Scope)}
}

// Default is the process-wide registry.
var Default = NewRegistry()

// Put registers s under its ID, replacing any previous entry.
func (r *Registry) Put(s *ui.Scope) {
	r.mu.Lock()
	r.scopes[s.ID()] = s
	r.mu.Unlock()
	logger.Debug("session: registered scope %s", s.ID())
}

// Get returns the scope registered under id.
func (r *Registry) Get(id string) (*ui.Scope, error) {
	r.mu.RLock()
	s, ok := r.scopes[id]
	r.mu.RUnlock()
	if !ok {
		return nil, core.ErrSessionLost.WithMessage(fmt.Sprintf("no scope registered for id %q", id))
	}
	return s, nil
}

// Delete forgets the scope registered under id.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	delete(r.scopes, id)
	r.mu.Unlock()
}

// Clear forgets every scope.
func (r *Registry) Clear() {
	r.mu.Lock()
	r.scopes = make(map[string]*ui.Scope)
	r.mu.Unlock()
}

// Len returns the number of registered scopes.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.scopes)
}

// IDs returns the registered scope IDs, sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.scopes))
	for id := range r.scopes {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

type scopeKey struct{}

// WithScope returns a context carrying s.
func WithScope(ctx context.Context, s *ui.Scope) context.Context {
	return context.WithValue(ctx, scopeKey{}, s)
}

// FromContext returns the scope carried by ctx.
func FromContext(ctx context.Context) (*ui.Scope, bool) {
	s, ok := ctx.Value(scopeKey{}).(*ui.Scope)
	return s, ok && s != nil
}

// Current returns the current page of the scope carried by ctx.
func Current(ctx context.Context) (*ui.Page, error) {
	s, ok := FromContext(ctx)
	if !ok {
		return nil, core.ErrNoCurrentPage.WithMessage("no scope in context")
	}
	return s.Current()
}
