package catalog

import (
	"fmt"
	"strings"

	"github.com/devicelab-dev/sirius/pkg/core"
	"github.com/devicelab-dev/sirius/pkg/logger"
	"github.com/devicelab-dev/sirius/pkg/ui"
)

type builder struct {
	docs     map[string]*PageDoc
	built    map[string]*ui.Schema
	visiting map[string]bool
}

func key(alias string) string {
	return strings.ToLower(strings.TrimSpace(alias))
}

// Build turns parsed pages into schemas in document order. Extends,
// section and navigate.from references may point at pages declared later
// or in other files.
func Build(docs []*PageDoc) ([]*ui.Schema, error) {
	b := &builder{
		docs:     make(map[string]*PageDoc),
		built:    make(map[string]*ui.Schema),
		visiting: make(map[string]bool),
	}
	for _, d := range docs {
		k := key(d.Alias)
		if prev, ok := b.docs[k]; ok {
			return nil, d.errorf(d.Line, fmt.Sprintf("page %q already defined at %s:%d", d.Alias, prev.SourcePath, prev.Line))
		}
		b.docs[k] = d
	}

	out := make([]*ui.Schema, 0, len(docs))
	for _, d := range docs {
		s, err := b.schema(d.Alias, d, d.Line)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := b.checkNavigation(docs); err != nil {
		return nil, err
	}
	return out, nil
}

// navigation returns the navigate steps of d, inherited through extends.
// Extends chains are acyclic once every schema is built.
func (b *builder) navigation(d *PageDoc) *NavigateDoc {
	for d != nil {
		if d.Navigate != nil {
			return d.Navigate
		}
		if d.Extends == "" {
			return nil
		}
		d = b.docs[key(d.Extends)]
	}
	return nil
}

// checkNavigation follows every navigate.from chain. Each page on a chain
// must be defined and no chain may come back to a page it passed.
func (b *builder) checkNavigation(docs []*PageDoc) error {
	for _, d := range docs {
		seen := map[string]bool{key(d.Alias): true}
		cur := d
		for {
			nav := b.navigation(cur)
			if nav == nil || nav.From == "" {
				break
			}
			k := key(nav.From)
			next, ok := b.docs[k]
			if !ok {
				return core.ErrUnknownAlias.WithMessage(
					fmt.Sprintf("%s:%d: page %q is not defined", cur.SourcePath, cur.Line, nav.From))
			}
			if seen[k] {
				return core.ErrCyclicPage.WithMessage(
					fmt.Sprintf("%s:%d: navigating to page %q leads back to %q", d.SourcePath, d.Line, d.Alias, nav.From))
			}
			seen[k] = true
			cur = next
		}
	}
	return nil
}

func (b *builder) schema(alias string, from *PageDoc, line int) (*ui.Schema, error) {
	k := key(alias)
	if s, ok := b.built[k]; ok {
		return s, nil
	}
	doc, ok := b.docs[k]
	if !ok {
		return nil, core.ErrUnknownAlias.WithMessage(
			fmt.Sprintf("%s:%d: page %q is not defined", from.SourcePath, line, alias))
	}
	if b.visiting[k] {
		return nil, core.ErrCyclicPage.WithMessage(
			fmt.Sprintf("%s:%d: page %q refers back to itself", from.SourcePath, line, alias))
	}
	b.visiting[k] = true
	defer delete(b.visiting, k)

	var members []ui.Member
	if doc.Extends != "" {
		parent, err := b.schema(doc.Extends, doc, doc.Line)
		if err != nil {
			return nil, err
		}
		members = append(members, ui.Extends(parent))
	}
	if doc.Frame != "" {
		members = append(members, ui.InFrame(doc.Frame))
	}
	for _, f := range doc.Fields {
		def := ui.Field(f.Name, ui.Kind(f.Kind), f.Descriptors()...).WithSubItems(f.SubItems...)
		if f.Alias != "" {
			def = def.WithAlias(f.Alias)
		}
		members = append(members, def)
	}
	for _, sd := range doc.Sections {
		child, err := b.schema(sd.Page, doc, sd.Line)
		if err != nil {
			return nil, err
		}
		members = append(members, ui.Section(sd.Name, child))
	}
	if doc.Navigate != nil {
		members = append(members, ui.OnNavigate(navigateHook(*doc.Navigate)))
	}

	s := ui.Define(doc.Alias, members...)
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%s:%d: %w", doc.SourcePath, doc.Line, err)
	}
	b.built[k] = s
	logger.Debug("catalog: page %q from %s", doc.Alias, doc.SourcePath)
	return s, nil
}

// navigateHook clicks nav.Click on nav.From, or on the current page.
func navigateHook(nav NavigateDoc) func(*ui.Page) error {
	return func(p *ui.Page) error {
		var (
			src *ui.Page
			err error
		)
		if nav.From != "" {
			src, err = p.Scope().Navigate(nav.From)
		} else {
			src, err = p.Scope().Current()
		}
		if err != nil {
			return err
		}
		field, err := src.Field(nav.Click)
		if err != nil {
			return err
		}
		return field.Click()
	}
}
