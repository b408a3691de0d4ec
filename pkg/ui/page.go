package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/devicelab-dev/sirius/pkg/core"
	"github.com/devicelab-dev/sirius/pkg/op"
)

// Page is a built page: the bound fields of its schema and its nested
// sections. Sections are owned by the page; Parent is a back-reference.
type Page struct {
	scope  *Scope
	schema *Schema
	parent *Page

	fields       []Control
	fieldIndex   map[string]Control // by name and alias
	sectionNames []string
	sections     map[string]*Page
}

func newPage(scope *Scope, schema *Schema, parent *Page) *Page {
	return &Page{
		scope:      scope,
		schema:     schema,
		parent:     parent,
		fieldIndex: make(map[string]Control),
		sections:   make(map[string]*Page),
	}
}

func (p *Page) addField(f *FieldDef, c Control) {
	p.fields = append(p.fields, c)
	p.fieldIndex[f.Name] = c
	if f.Alias != "" {
		p.fieldIndex[f.Alias] = c
	}
}

func (p *Page) addSection(name string, child *Page) {
	p.sectionNames = append(p.sectionNames, name)
	p.sections[name] = child
}

// Scope returns the execution scope the page was built for.
func (p *Page) Scope() *Scope { return p.scope }

// Schema returns the page schema.
func (p *Page) Schema() *Schema { return p.schema }

// Alias returns the schema alias.
func (p *Page) Alias() string { return p.schema.alias }

// Parent returns the enclosing page of a section, or nil.
func (p *Page) Parent() *Page { return p.parent }

// Root returns the top-level page.
func (p *Page) Root() *Page {
	cur := p
	for cur.parent != nil {
		cur = cur.parent
	}
	return cur
}

// Path returns the aliases from the root page down to p, joined by "/".
func (p *Page) Path() string {
	var parts []string
	for cur := p; cur != nil; cur = cur.parent {
		parts = append([]string{cur.Alias()}, parts...)
	}
	return strings.Join(parts, "/")
}

// Driver returns the scope's driver.
func (p *Page) Driver() core.Driver { return p.scope.driver }

// Fields returns the bound fields in declaration order, inherited first.
func (p *Page) Fields() []Control {
	out := make([]Control, len(p.fields))
	copy(out, p.fields)
	return out
}

// Field looks a bound field up by name or alias.
func (p *Page) Field(name string) (Control, error) {
	c, ok := p.fieldIndex[name]
	if !ok {
		return nil, core.ErrUnknownField.WithMessage(fmt.Sprintf("page %q has no field %q", p.Alias(), name))
	}
	return c, nil
}

// FieldAs looks a field up and checks it has capability T,
// e.g. FieldAs[Editable](page, "Username").
func FieldAs[T any](p *Page, name string) (T, error) {
	var zero T
	c, err := p.Field(name)
	if err != nil {
		return zero, err
	}
	v, ok := c.(T)
	if !ok {
		return zero, core.ErrCapabilityMismatch.WithMessage(
			fmt.Sprintf("field %q of page %q is a %s", name, p.Alias(), c.Kind()))
	}
	return v, nil
}

// SectionNames returns the section names in declaration order.
func (p *Page) SectionNames() []string {
	out := make([]string, len(p.sectionNames))
	copy(out, p.sectionNames)
	return out
}

// Section returns the nested page declared under name.
func (p *Page) Section(name string) (*Page, error) {
	s, ok := p.sections[name]
	if !ok {
		return nil, core.ErrUnknownSection.WithMessage(fmt.Sprintf("page %q has no section %q", p.Alias(), name))
	}
	return s, nil
}

// IsCurrent reports whether every field not excluded from search exists
// within timeout. A page without such fields is always current.
func (p *Page) IsCurrent(timeout time.Duration) bool {
	for _, f := range p.fields {
		if f.Descriptor().ExcludeFromSearch {
			continue
		}
		if !f.Exists(timeout) {
			return false
		}
	}
	return true
}

// MissingFields returns the names of searchable fields that do not exist
// within timeout.
func (p *Page) MissingFields(timeout time.Duration) []string {
	var missing []string
	for _, f := range p.fields {
		if f.Descriptor().ExcludeFromSearch {
			continue
		}
		if !f.Exists(timeout) {
			missing = append(missing, f.Name())
		}
	}
	return missing
}

// IsTextPresent reports whether text appears on screen within timeout.
func (p *Page) IsTextPresent(text string, timeout time.Duration) bool {
	return p.TextControl(text).Exists(timeout)
}

// Verify applies pred to the page and fails with its description.
func (p *Page) Verify(pred op.Predicate[*Page]) error {
	return op.Verify(p, pred)
}

// Focus switches the driver into the page's frame chain, outermost first.
// Pages outside frames switch back to the top document.
func (p *Page) Focus() error {
	d := p.Driver()
	if err := d.SwitchToFrame(nil); err != nil {
		return err
	}
	var frames []string
	for cur := p; cur != nil; cur = cur.parent {
		if f := cur.schema.frame; f != "" {
			frames = append([]string{f}, frames...)
		}
	}
	for _, raw := range frames {
		loc, err := core.ParseLocator(raw)
		if err != nil {
			return err
		}
		ref, err := d.FindOne(loc)
		if err != nil {
			return fmt.Errorf("frame %s: %w", loc, err)
		}
		if err := d.SwitchToFrame(ref); err != nil {
			return err
		}
	}
	return nil
}

// Navigate runs the schema's navigate hook, if any.
func (p *Page) Navigate() error {
	if hook := p.schema.navigateHook(); hook != nil {
		return hook(p)
	}
	return nil
}
