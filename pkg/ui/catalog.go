package ui

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/devicelab-dev/sirius/pkg/core"
)

// Catalog maps page aliases to schemas. Lookups ignore case.
type Catalog struct {
	mu    sync.RWMutex
	pages map[string]*Schema
}

// NewCatalog creates a catalogue holding schemas. It panics on duplicate
// aliases; use Register to handle them.
func NewCatalog(schemas ...*Schema) *Catalog {
	c := &Catalog{pages: make(map[string]*Schema)}
	for _, s := range schemas {
		if err := c.Register(s); err != nil {
			panic(err)
		}
	}
	return c
}

func catalogKey(alias string) string {
	return strings.ToLower(strings.TrimSpace(alias))
}

// Register adds schema under its alias.
func (c *Catalog) Register(schema *Schema) error {
	return c.RegisterAll(schema)
}

// RegisterAll adds every schema, or none when one of them is invalid or
// its alias is already taken.
func (c *Catalog) RegisterAll(schemas ...*Schema) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	staged := make(map[string]*Schema, len(schemas))
	for _, schema := range schemas {
		if schema == nil || catalogKey(schema.alias) == "" {
			return core.ErrInvalidSchema.WithMessage("page schema needs an alias to be registered")
		}
		key := catalogKey(schema.alias)
		prev, ok := c.pages[key]
		if !ok {
			prev, ok = staged[key]
		}
		if ok && prev != schema {
			return core.ErrInvalidSchema.WithMessage(fmt.Sprintf("page alias %q registered twice", schema.alias))
		}
		staged[key] = schema
	}
	for key, schema := range staged {
		c.pages[key] = schema
	}
	return nil
}

// Lookup returns the schema registered under alias.
func (c *Catalog) Lookup(alias string) (*Schema, error) {
	c.mu.RLock()
	s, ok := c.pages[catalogKey(alias)]
	c.mu.RUnlock()
	if !ok {
		return nil, core.ErrUnknownAlias.WithMessage(fmt.Sprintf("no page registered for alias %q", alias))
	}
	return s, nil
}

// Schemas returns the registered schemas sorted by alias.
func (c *Catalog) Schemas() []*Schema {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Schema, 0, len(c.pages))
	for _, s := range c.pages {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].alias < out[j].alias })
	return out
}

// Len returns the number of registered pages.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.pages)
}
