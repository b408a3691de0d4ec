// Package action provides the action and getter operations applied to
// controls by step layers.
package action

import (
	"fmt"
	"time"

	"github.com/devicelab-dev/sirius/pkg/core"
	"github.com/devicelab-dev/sirius/pkg/op"
	"github.com/devicelab-dev/sirius/pkg/ui"
)

func describe(verb string) func(ui.Control) string {
	return func(c ui.Control) string {
		return fmt.Sprintf("%s element with locator '%s'", verb, c.LocatorText())
	}
}

// Click clicks the control.
func Click() op.Action[ui.Control] {
	return op.Do(describe("Click"), func(c ui.Control) error { return c.Click() })
}

// SendKeys types text into the control.
func SendKeys(text string) op.Action[ui.Control] {
	return op.Do(describe(fmt.Sprintf("Type '%s' into", text)), func(c ui.Control) error { return c.SendKeys(text) })
}

// Clear clears the control.
func Clear() op.Action[ui.Control] {
	return op.Do(describe("Clear"), func(c ui.Control) error { return c.Clear() })
}

// SetValue sets value on an editable control.
func SetValue(value string) op.Action[ui.Control] {
	return op.Do(describe(fmt.Sprintf("Set '%s' on", value)), func(c ui.Control) error {
		e, ok := c.(ui.Editable)
		if !ok {
			return core.ErrCapabilityMismatch.WithMessage(fmt.Sprintf("%s is a %s and cannot take a value", c.Name(), c.Kind()))
		}
		return e.SetValue(value)
	})
}

// WaitFor polls pred until it holds or timeout elapses. It fails with a
// timeout error carrying the predicate's description.
func WaitFor(pred op.Predicate[ui.Control], timeout time.Duration) op.Action[ui.Control] {
	return op.Do(
		func(c ui.Control) string { return "Wait until " + pred.Describe(c) },
		func(c ui.Control) error {
			poll := c.Page().Scope().Timeouts().Poll
			ok := core.Poll(timeout, poll, func() bool {
				held, err := pred.Apply(c)
				return err == nil && held
			})
			if !ok {
				return core.ErrWaitTimeout.WithMessage(pred.Describe(c))
			}
			return nil
		},
	)
}

// Text reads the control's text.
func Text() op.Operation[ui.Control, string] {
	return op.New(describe("Get text of"), func(c ui.Control) (string, error) { return c.Text() })
}

// Value reads the control's value.
func Value() op.Operation[ui.Control, string] {
	return op.New(describe("Get value of"), func(c ui.Control) (string, error) { return c.Value() })
}

// Attribute reads a named attribute.
func Attribute(name string) op.Operation[ui.Control, string] {
	return op.New(describe(fmt.Sprintf("Get '%s' attribute of", name)), func(c ui.Control) (string, error) {
		return c.Base().Attribute(name)
	})
}

// Parent returns the page owning the control.
func Parent() op.Operation[ui.Control, *ui.Page] {
	return op.New(describe("Get page of"), func(c ui.Control) (*ui.Page, error) { return c.Page(), nil })
}
