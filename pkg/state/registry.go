package state

import (
	"time"

	"github.com/devicelab-dev/sirius/pkg/op"
	"github.com/devicelab-dev/sirius/pkg/ui"
)

// Register adds the control predicates to r under their step names.
// State predicates take no arguments and wait the scope default timeout;
// "has text" and "value is" take the expected string, "satisfies" a
// JavaScript formula.
func Register(r *op.Registry[ui.Control]) {
	timed := map[string]func(time.Duration) op.Predicate[ui.Control]{
		"exists":     Exists,
		"disappears": Disappears,
		"visible":    Visible,
		"invisible":  Invisible,
		"enabled":    Enabled,
		"disabled":   Disabled,
	}
	for name, ctor := range timed {
		name, ctor := name, ctor
		r.Register(name, func(args ...string) (op.Predicate[ui.Control], error) {
			if err := op.ExpectArgs(name, args, 0); err != nil {
				return nil, err
			}
			return ctor(ui.DefaultTimeout), nil
		})
	}
	r.Register("checked", func(args ...string) (op.Predicate[ui.Control], error) {
		if err := op.ExpectArgs("checked", args, 0); err != nil {
			return nil, err
		}
		return Checked(), nil
	})
	r.Register("has text", func(args ...string) (op.Predicate[ui.Control], error) {
		if err := op.ExpectArgs("has text", args, 1); err != nil {
			return nil, err
		}
		return HasText(args[0]), nil
	})
	r.Register("value is", func(args ...string) (op.Predicate[ui.Control], error) {
		if err := op.ExpectArgs("value is", args, 1); err != nil {
			return nil, err
		}
		return ValueIs(args[0]), nil
	})
	r.Register("satisfies", func(args ...string) (op.Predicate[ui.Control], error) {
		if err := op.ExpectArgs("satisfies", args, 1); err != nil {
			return nil, err
		}
		return Satisfies(args[0]), nil
	})
}

// NewRegistry returns a registry holding the standard predicates.
func NewRegistry() *op.Registry[ui.Control] {
	r := op.NewRegistry[ui.Control]()
	Register(r)
	return r
}
