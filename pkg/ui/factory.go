package ui

import (
	"fmt"

	"github.com/devicelab-dev/sirius/pkg/core"
	"github.com/devicelab-dev/sirius/pkg/locator"
	"github.com/devicelab-dev/sirius/pkg/logger"
)

// Init builds the page of schema for scope, binding every field that has
// a descriptor for the scope's platform and building every section with
// the page as parent. It makes no driver calls; whether elements are on
// screen is only checked by later queries.
func Init(scope *Scope, schema *Schema) (*Page, error) {
	if scope == nil {
		return nil, core.ErrInvalidSchema.WithMessage("nil scope")
	}
	return build(scope, schema, nil, nil)
}

func build(scope *Scope, schema *Schema, parent *Page, ancestors []*Schema) (*Page, error) {
	if schema == nil {
		return nil, core.ErrInvalidSchema.WithMessage("nil page schema")
	}
	for _, a := range ancestors {
		if a == schema {
			return nil, core.ErrCyclicPage.WithMessage(
				fmt.Sprintf("page %q nests its ancestor %q", ancestors[len(ancestors)-1].alias, schema.alias))
		}
	}

	chain, err := schema.chain()
	if err != nil {
		return nil, err
	}
	for _, sc := range chain {
		if err := sc.Validate(); err != nil {
			return nil, err
		}
	}
	fields, err := schema.AllFields()
	if err != nil {
		return nil, err
	}
	sections, err := schema.AllSections()
	if err != nil {
		return nil, err
	}

	page := newPage(scope, schema, parent)
	platform := scope.platform

	for _, f := range fields {
		desc, ok := locator.Resolve(f.Descriptors, platform)
		if !ok {
			logger.Debug("page %s: field %s has no locator for %s, left unbound", schema.alias, f.Name, platform)
			continue
		}
		base, err := newElement(page, f.Name, desc, locator.ResolveSubItems(f.SubItems, platform))
		if err != nil {
			return nil, fmt.Errorf("page %q: %w", schema.alias, err)
		}
		ctl, err := construct(f.Kind, base)
		if err != nil {
			return nil, err
		}
		if t, ok := ctl.(*Table); ok {
			if err := t.validate(); err != nil {
				return nil, err
			}
		}
		page.addField(f, ctl)
	}

	nested := make([]*Schema, len(ancestors), len(ancestors)+1)
	copy(nested, ancestors)
	nested = append(nested, schema)
	for _, s := range sections {
		child, err := build(scope, s.Schema, page, nested)
		if err != nil {
			return nil, err
		}
		page.addSection(s.Name, child)
	}

	logger.Debug("page %s built for %s: %d fields, %d sections", schema.alias, platform, len(page.fields), len(page.sectionNames))
	return page, nil
}
