package state

import (
	"fmt"

	"github.com/devicelab-dev/sirius/pkg/expr"
	"github.com/devicelab-dev/sirius/pkg/op"
	"github.com/devicelab-dev/sirius/pkg/ui"
)

// Satisfies holds when the JavaScript formula is truthy. The formula sees
// the control's text as text, its value as value, the scope variables in
// the vars object and the platform as sirius.platform.
func Satisfies(formula string) op.Predicate[ui.Control] {
	return op.New(
		func(c ui.Control) string { return ui.DescribeState(c, fmt.Sprintf("satisfies '%s'", formula)) },
		func(c ui.Control) (bool, error) {
			text, err := c.Text()
			if err != nil {
				return false, err
			}
			e := expr.New()
			e.SetVariable("text", text)
			// value is optional; plain controls may not carry one
			if value, err := c.Value(); err == nil {
				e.SetVariable("value", value)
			} else {
				e.SetVariable("value", nil)
			}

			scope := c.Page().Scope()
			vars := make(map[string]interface{})
			for _, name := range scope.VarNames() {
				v, _ := scope.Var(name)
				vars[name] = v
			}
			e.SetVariable("vars", vars)
			e.SetPlatform(scope.Platform().String())

			return e.EvalBool(formula)
		},
	)
}
