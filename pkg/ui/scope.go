package ui

import (
	"fmt"
	"sort"
	"time"

	"github.com/devicelab-dev/sirius/pkg/core"
	"github.com/devicelab-dev/sirius/pkg/logger"
	"github.com/google/uuid"
)

// Timeouts used by state queries and scroll-search.
type Timeouts struct {
	Default time.Duration // state queries called with DefaultTimeout, interaction preconditions
	Short   time.Duration
	Tiny    time.Duration // presence checks during scroll-search
	Poll    time.Duration // pause between rounds of candidate races
}

// DefaultTimeouts returns 60s / 5s / 1s with a 200ms poll.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Default: 60 * time.Second,
		Short:   5 * time.Second,
		Tiny:    time.Second,
		Poll:    core.DefaultPollInterval,
	}
}

// Scope is the execution context of one test: its driver session,
// platform, timeouts, current page and variables. A scope and the pages
// built for it belong to one goroutine.
type Scope struct {
	id       string
	driver   core.Driver
	platform core.Platform
	timeouts Timeouts
	catalog  *Catalog
	current  *Page
	vars     map[string]string

	// aliases whose navigation is in progress
	navigating map[string]bool
}

// Option configures a Scope.
type Option func(*Scope)

// WithTimeouts overrides the default timeouts.
func WithTimeouts(t Timeouts) Option {
	return func(s *Scope) { s.timeouts = t }
}

// WithCatalog sets the catalogue used for alias lookups.
func WithCatalog(c *Catalog) Option {
	return func(s *Scope) { s.catalog = c }
}

// WithID sets the scope ID instead of a random one.
func WithID(id string) Option {
	return func(s *Scope) { s.id = id }
}

// NewScope creates a scope for driver d on platform p.
func NewScope(d core.Driver, p core.Platform, opts ...Option) *Scope {
	s := &Scope{
		id:       uuid.NewString(),
		driver:   d,
		platform: p,
		timeouts: DefaultTimeouts(),
		catalog:  NewCatalog(),
		vars:     make(map[string]string),

		navigating: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the scope ID.
func (s *Scope) ID() string { return s.id }

// Driver returns the driver session.
func (s *Scope) Driver() core.Driver { return s.driver }

// Platform returns the active platform.
func (s *Scope) Platform() core.Platform { return s.platform }

// Timeouts returns the scope timeouts.
func (s *Scope) Timeouts() Timeouts { return s.timeouts }

// Catalog returns the alias catalogue.
func (s *Scope) Catalog() *Catalog { return s.catalog }

// Init builds the page of schema for this scope.
func (s *Scope) Init(schema *Schema) (*Page, error) {
	return Init(s, schema)
}

// Current returns the page recorded by the last navigation.
func (s *Scope) Current() (*Page, error) {
	if s.current == nil {
		return nil, core.ErrNoCurrentPage
	}
	return s.current, nil
}

// SetCurrent records p as the current page.
func (s *Scope) SetCurrent(p *Page) {
	s.current = p
	if p != nil {
		logger.WithFields(map[string]interface{}{"scope": s.id}).Debugf("current page: %s", p.Path())
	}
}

// Var returns a context variable.
func (s *Scope) Var(name string) (string, bool) {
	v, ok := s.vars[name]
	return v, ok
}

// SetVar sets a context variable.
func (s *Scope) SetVar(name, value string) {
	s.vars[name] = value
}

// VarNames returns the variable names, sorted.
func (s *Scope) VarNames() []string {
	out := make([]string, 0, len(s.vars))
	for k := range s.vars {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Reset forgets the current page and all variables.
func (s *Scope) Reset() {
	s.current = nil
	s.vars = make(map[string]string)
}

// ForName builds the page registered under alias without navigating to it.
func (s *Scope) ForName(alias string) (*Page, error) {
	schema, err := s.catalog.Lookup(alias)
	if err != nil {
		return nil, err
	}
	return s.Init(schema)
}

// Navigate builds the page registered under alias, focuses its frame,
// runs its navigate hook and waits for it to become current. A hook that
// leads back to a page still being navigated fails with ErrCyclicPage.
func (s *Scope) Navigate(alias string) (*Page, error) {
	key := catalogKey(alias)
	if s.navigating[key] {
		return nil, core.ErrCyclicPage.WithMessage(
			fmt.Sprintf("navigation to page %q leads back to itself", alias))
	}
	s.navigating[key] = true
	defer delete(s.navigating, key)

	page, err := s.ForName(alias)
	if err != nil {
		return nil, err
	}
	if err := page.Navigate(); err != nil {
		return nil, fmt.Errorf("navigate to %q: %w", alias, err)
	}
	if err := page.Focus(); err != nil {
		return nil, fmt.Errorf("focus %q: %w", alias, err)
	}
	if !page.IsCurrent(DefaultTimeout) {
		return nil, core.ErrPageNotCurrent.WithMessage(
			fmt.Sprintf("The page '%s' didn't appear during specified timeout", alias))
	}
	s.SetCurrent(page)
	return page, nil
}
