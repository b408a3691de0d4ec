// Package locator holds the per-platform locator metadata attached to page
// fields and selects the one active for a platform.
package locator

import (
	"fmt"

	"github.com/devicelab-dev/sirius/pkg/core"
	"gopkg.in/yaml.v3"
)

// Descriptor is the locator metadata of one field for one platform.
type Descriptor struct {
	Locator           string               `yaml:"locator"`
	ItemLocator       string               `yaml:"itemLocator,omitempty"`
	ScrollTo          string               `yaml:"scrollTo,omitempty"`
	ScrollDirection   core.ScrollDirection `yaml:"scrollDirection,omitempty"`
	Format            string               `yaml:"format,omitempty"`
	ExcludeFromSearch bool                 `yaml:"excludeFromSearch,omitempty"`
	Platform          core.Platform        `yaml:"platform,omitempty"`
}

// On returns a descriptor for platform p.
func On(p core.Platform, loc string) Descriptor {
	return Descriptor{Locator: loc, Platform: p}
}

// Any returns a descriptor valid on every platform.
func Any(loc string) Descriptor {
	return Descriptor{Locator: loc, Platform: core.PlatformAny}
}

// WithItem sets the row locator of a list container.
func (d Descriptor) WithItem(item string) Descriptor {
	d.ItemLocator = item
	return d
}

// WithScroll sets the text to scroll to before state queries.
func (d Descriptor) WithScroll(text string, dir core.ScrollDirection) Descriptor {
	d.ScrollTo = text
	d.ScrollDirection = dir
	return d
}

// WithFormat sets the format used to build parameterized locators.
func (d Descriptor) WithFormat(format string) Descriptor {
	d.Format = format
	return d
}

// Excluded marks the field as not taking part in the "page is current" check.
func (d Descriptor) Excluded() Descriptor {
	d.ExcludeFromSearch = true
	return d
}

// EffectivePlatform returns the descriptor platform; empty means any.
func (d Descriptor) EffectivePlatform() core.Platform {
	if d.Platform == "" {
		return core.PlatformAny
	}
	return d.Platform
}

// Parse parses the locator string.
func (d Descriptor) Parse() (core.Locator, error) {
	return core.ParseLocator(d.Locator)
}

// HasScroll reports whether the field must be scrolled into view first.
func (d Descriptor) HasScroll() bool {
	return d.ScrollTo != ""
}

// Describe returns a human-readable summary.
func (d Descriptor) Describe() string {
	s := fmt.Sprintf("%s [%s]", d.Locator, d.EffectivePlatform())
	if d.ItemLocator != "" {
		s += " item " + d.ItemLocator
	}
	if d.ScrollTo != "" {
		s += fmt.Sprintf(" scroll to %q %s", d.ScrollTo, d.ScrollDirection)
	}
	if d.ExcludeFromSearch {
		s += " (excluded)"
	}
	return s
}

// UnmarshalYAML accepts either a bare locator string (platform any) or a mapping.
func (d *Descriptor) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*d = Any(node.Value)
		return nil
	}

	type rawDescriptor Descriptor
	var raw rawDescriptor
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*d = Descriptor(raw)
	if d.Locator == "" {
		return &core.YAMLError{Line: node.Line, Err: core.ErrInvalidLocator.WithMessage("descriptor requires a locator")}
	}
	if d.Platform == "" {
		d.Platform = core.PlatformAny
	}
	return nil
}

// SubItem is a named child locator, relative to a row of a list container.
type SubItem struct {
	Name     string        `yaml:"name"`
	Locator  string        `yaml:"locator"`
	Platform core.Platform `yaml:"platform,omitempty"`
	Kind     string        `yaml:"kind,omitempty"`
}

// DefaultSubItemKind is the capability built for sub-items without a kind.
const DefaultSubItemKind = "control"

// Sub returns a sub-item valid on every platform.
func Sub(name, loc string) SubItem {
	return SubItem{Name: name, Locator: loc, Platform: core.PlatformAny}
}

// As sets the capability kind built for the sub-item.
func (s SubItem) As(kind string) SubItem {
	s.Kind = kind
	return s
}

// OnPlatform restricts the sub-item to platform p.
func (s SubItem) OnPlatform(p core.Platform) SubItem {
	s.Platform = p
	return s
}

// EffectivePlatform returns the sub-item platform; empty means any.
func (s SubItem) EffectivePlatform() core.Platform {
	if s.Platform == "" {
		return core.PlatformAny
	}
	return s.Platform
}

// EffectiveKind returns the sub-item kind; empty means DefaultSubItemKind.
func (s SubItem) EffectiveKind() string {
	if s.Kind == "" {
		return DefaultSubItemKind
	}
	return s.Kind
}
