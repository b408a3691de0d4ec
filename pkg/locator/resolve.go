package locator

import (
	"fmt"

	"github.com/devicelab-dev/sirius/pkg/core"
)

// Resolve picks the descriptor active on platform p: the one declared for p,
// else the one declared for any platform. ok is false when neither exists,
// which leaves the field unbound.
//
// The result does not depend on declaration order as long as the set
// passes Validate.
func Resolve(set []Descriptor, p core.Platform) (Descriptor, bool) {
	var fallback *Descriptor
	for i := range set {
		dp := set[i].EffectivePlatform()
		if dp == p {
			return set[i], true
		}
		if dp == core.PlatformAny && fallback == nil {
			fallback = &set[i]
		}
	}
	if fallback != nil {
		return *fallback, true
	}
	return Descriptor{}, false
}

// ResolveSubItems keeps the sub-items valid on platform p, keyed by name.
// A p-specific item wins over an any item with the same name.
func ResolveSubItems(items []SubItem, p core.Platform) map[string]SubItem {
	out := make(map[string]SubItem)
	for _, it := range items {
		ip := it.EffectivePlatform()
		if ip != p && ip != core.PlatformAny {
			continue
		}
		if prev, ok := out[it.Name]; ok && prev.EffectivePlatform() == p && p != core.PlatformAny {
			continue
		}
		out[it.Name] = it
	}
	return out
}

// Validate checks that a descriptor set has at most one descriptor per
// platform and that every locator parses.
func Validate(set []Descriptor) error {
	seen := make(map[core.Platform]bool)
	for _, d := range set {
		p := d.EffectivePlatform()
		if seen[p] {
			return core.ErrInvalidSchema.WithMessage(fmt.Sprintf("more than one locator for platform %s", p))
		}
		seen[p] = true
		if _, err := d.Parse(); err != nil {
			return err
		}
	}
	return nil
}

// ValidateSubItems checks that sub-item names are unique per platform.
func ValidateSubItems(items []SubItem) error {
	seen := make(map[string]bool)
	for _, it := range items {
		if it.Name == "" {
			return core.ErrInvalidSchema.WithMessage("sub-item without a name")
		}
		if it.Locator == "" {
			return core.ErrInvalidSchema.WithMessage(fmt.Sprintf("sub-item %q has no locator", it.Name))
		}
		key := it.Name + "@" + string(it.EffectivePlatform())
		if seen[key] {
			return core.ErrInvalidSchema.WithMessage(fmt.Sprintf("duplicate sub-item %q for platform %s", it.Name, it.EffectivePlatform()))
		}
		seen[key] = true
	}
	return nil
}
