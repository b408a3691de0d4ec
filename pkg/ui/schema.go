package ui

import (
	"fmt"

	"github.com/devicelab-dev/sirius/pkg/core"
	"github.com/devicelab-dev/sirius/pkg/locator"
)

// Schema is the registered structure of a page type: its element fields in
// declaration order, its nested sections and an optional parent schema
// whose fields come first.
type Schema struct {
	alias    string
	extends  *Schema
	frame    string
	fields   []*FieldDef
	sections []SectionDef
	navigate func(*Page) error
}

// Member is a part of a schema definition.
type Member interface {
	applyTo(s *Schema)
}

// FieldDef declares one element field.
type FieldDef struct {
	Name        string
	Alias       string
	Kind        Kind
	Descriptors []locator.Descriptor
	SubItems    []locator.SubItem
}

// Field declares an element field of the given kind with one descriptor
// per platform.
func Field(name string, kind Kind, descriptors ...locator.Descriptor) *FieldDef {
	return &FieldDef{Name: name, Kind: kind, Descriptors: descriptors}
}

// WithSubItems attaches sub-item descriptors to a list field.
func (f *FieldDef) WithSubItems(items ...locator.SubItem) *FieldDef {
	f.SubItems = append(f.SubItems, items...)
	return f
}

// WithAlias sets a second name the field can be looked up by.
func (f *FieldDef) WithAlias(alias string) *FieldDef {
	f.Alias = alias
	return f
}

func (f *FieldDef) applyTo(s *Schema) {
	s.fields = append(s.fields, f)
}

// SectionDef declares a nested page.
type SectionDef struct {
	Name   string
	Schema *Schema
}

// Section declares a nested page built with the enclosing page as parent.
func Section(name string, schema *Schema) SectionDef {
	return SectionDef{Name: name, Schema: schema}
}

func (d SectionDef) applyTo(s *Schema) {
	s.sections = append(s.sections, d)
}

type memberFunc func(s *Schema)

func (f memberFunc) applyTo(s *Schema) { f(s) }

// Extends makes the schema inherit the fields and sections of parent.
func Extends(parent *Schema) Member {
	return memberFunc(func(s *Schema) { s.extends = parent })
}

// InFrame places the page inside the frame matched by loc.
func InFrame(loc string) Member {
	return memberFunc(func(s *Schema) { s.frame = loc })
}

// OnNavigate sets the hook run by Scope.Navigate to open the page.
func OnNavigate(fn func(*Page) error) Member {
	return memberFunc(func(s *Schema) { s.navigate = fn })
}

// Define creates a page schema. alias is the name the page is looked up by.
func Define(alias string, members ...Member) *Schema {
	s := &Schema{alias: alias}
	for _, m := range members {
		m.applyTo(s)
	}
	return s
}

// Alias returns the page alias.
func (s *Schema) Alias() string { return s.alias }

// Extended returns the parent schema, or nil.
func (s *Schema) Extended() *Schema { return s.extends }

// Frame returns the frame locator, or "".
func (s *Schema) Frame() string { return s.frame }

// Fields returns the fields declared directly on s.
func (s *Schema) Fields() []*FieldDef { return s.fields }

// Sections returns the sections declared directly on s.
func (s *Schema) Sections() []SectionDef { return s.sections }

// chain returns s and its ancestors, root first.
func (s *Schema) chain() ([]*Schema, error) {
	var out []*Schema
	seen := make(map[*Schema]bool)
	for cur := s; cur != nil; cur = cur.extends {
		if seen[cur] {
			return nil, core.ErrCyclicPage.WithMessage(fmt.Sprintf("page %q extends itself", s.alias))
		}
		seen[cur] = true
		out = append([]*Schema{cur}, out...)
	}
	return out, nil
}

// AllFields returns inherited fields first, in declaration order.
// A field redeclared by a descendant replaces the inherited one in place.
func (s *Schema) AllFields() ([]*FieldDef, error) {
	chain, err := s.chain()
	if err != nil {
		return nil, err
	}
	var out []*FieldDef
	index := make(map[string]int)
	for _, sc := range chain {
		for _, f := range sc.fields {
			if i, ok := index[f.Name]; ok {
				out[i] = f
				continue
			}
			index[f.Name] = len(out)
			out = append(out, f)
		}
	}
	return out, nil
}

// AllSections returns inherited sections first; redeclared names replace
// inherited ones in place.
func (s *Schema) AllSections() ([]SectionDef, error) {
	chain, err := s.chain()
	if err != nil {
		return nil, err
	}
	var out []SectionDef
	index := make(map[string]int)
	for _, sc := range chain {
		for _, d := range sc.sections {
			if i, ok := index[d.Name]; ok {
				out[i] = d
				continue
			}
			index[d.Name] = len(out)
			out = append(out, d)
		}
	}
	return out, nil
}

// navigateHook returns the nearest navigate hook in the extends chain.
func (s *Schema) navigateHook() func(*Page) error {
	for cur := s; cur != nil; cur = cur.extends {
		if cur.navigate != nil {
			return cur.navigate
		}
	}
	return nil
}

// Validate checks the schema's own declarations: names are set and
// unique per schema, kinds are registered and descriptor sets are
// well formed. Field aliases are checked against every field, inherited
// ones included.
func (s *Schema) Validate() error {
	if s == nil {
		return core.ErrInvalidSchema.WithMessage("nil page schema")
	}
	names := make(map[string]bool)
	for _, f := range s.fields {
		if f == nil || f.Name == "" {
			return core.ErrInvalidSchema.WithMessage(fmt.Sprintf("page %q has a field without a name", s.alias))
		}
		if names[f.Name] {
			return core.ErrInvalidSchema.WithMessage(fmt.Sprintf("page %q declares field %q twice", s.alias, f.Name))
		}
		names[f.Name] = true
		if f.Kind != "" {
			kindsMu.RLock()
			_, ok := kinds[f.Kind]
			kindsMu.RUnlock()
			if !ok {
				return core.ErrUnknownKind.WithMessage(fmt.Sprintf("no constructor registered for kind %q (field %q)", f.Kind, f.Name))
			}
		}
		if err := locator.Validate(f.Descriptors); err != nil {
			return fmt.Errorf("page %q field %q: %w", s.alias, f.Name, err)
		}
		if err := locator.ValidateSubItems(f.SubItems); err != nil {
			return fmt.Errorf("page %q field %q: %w", s.alias, f.Name, err)
		}
	}
	for _, d := range s.sections {
		if d.Name == "" || d.Schema == nil {
			return core.ErrInvalidSchema.WithMessage(fmt.Sprintf("page %q has an incomplete section", s.alias))
		}
		if names[d.Name] {
			return core.ErrInvalidSchema.WithMessage(fmt.Sprintf("page %q declares %q twice", s.alias, d.Name))
		}
		names[d.Name] = true
	}
	fields, err := s.AllFields()
	if err != nil {
		return err
	}
	return checkAliases(s.alias, fields)
}

// checkAliases rejects an alias naming another field or repeating
// another field's alias. Names and aliases share one lookup index.
func checkAliases(page string, fields []*FieldDef) error {
	owner := make(map[string]string, len(fields))
	for _, f := range fields {
		owner[f.Name] = f.Name
	}
	for _, f := range fields {
		if f.Alias == "" || f.Alias == f.Name {
			continue
		}
		if other, ok := owner[f.Alias]; ok {
			return core.ErrInvalidSchema.WithMessage(
				fmt.Sprintf("page %q: alias %q of field %q is already used by field %q", page, f.Alias, f.Name, other))
		}
		owner[f.Alias] = f.Name
	}
	return nil
}
