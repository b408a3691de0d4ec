// Package state provides the standard state predicates of controls and
// pages, and their registration by name for step layers.
package state

import (
	"fmt"
	"time"

	"github.com/devicelab-dev/sirius/pkg/op"
	"github.com/devicelab-dev/sirius/pkg/ui"
)

func waiting(state string, query func(c ui.Control) bool) op.Predicate[ui.Control] {
	return op.Check(
		func(c ui.Control) string { return ui.DescribeState(c, state) },
		query,
	)
}

// Exists holds when the control is present within timeout.
func Exists(timeout time.Duration) op.Predicate[ui.Control] {
	return waiting("exists", func(c ui.Control) bool { return c.Exists(timeout) })
}

// Disappears holds when the control is gone within timeout.
func Disappears(timeout time.Duration) op.Predicate[ui.Control] {
	return waiting("disappears", func(c ui.Control) bool { return c.Disappears(timeout) })
}

// Visible holds when the control is displayed within timeout.
func Visible(timeout time.Duration) op.Predicate[ui.Control] {
	return waiting("is visible", func(c ui.Control) bool { return c.Visible(timeout) })
}

// Invisible holds when the control is hidden or gone within timeout.
func Invisible(timeout time.Duration) op.Predicate[ui.Control] {
	return waiting("is invisible", func(c ui.Control) bool { return c.Invisible(timeout) })
}

// Enabled holds when the control is displayed and enabled within timeout.
func Enabled(timeout time.Duration) op.Predicate[ui.Control] {
	return waiting("is enabled", func(c ui.Control) bool { return c.Enabled(timeout) })
}

// Disabled holds when the control is not clickable within timeout.
func Disabled(timeout time.Duration) op.Predicate[ui.Control] {
	return waiting("is disabled", func(c ui.Control) bool { return c.Disabled(timeout) })
}

// Checked holds when the control reports a checked state.
func Checked() op.Predicate[ui.Control] {
	return op.New(
		func(c ui.Control) string { return ui.DescribeState(c, "is checked") },
		func(c ui.Control) (bool, error) { return c.Base().IsChecked() },
	)
}

// HasText holds when the control's text equals text.
func HasText(text string) op.Predicate[ui.Control] {
	return op.New(
		func(c ui.Control) string { return ui.DescribeState(c, fmt.Sprintf("has '%s' text", text)) },
		func(c ui.Control) (bool, error) {
			got, err := c.Text()
			return got == text, err
		},
	)
}

// ValueIs holds when the control's value equals value.
func ValueIs(value string) op.Predicate[ui.Control] {
	return op.New(
		func(c ui.Control) string { return ui.DescribeState(c, fmt.Sprintf("has '%s' value", value)) },
		func(c ui.Control) (bool, error) {
			got, err := c.Value()
			return got == value, err
		},
	)
}

// Current holds when the page is current within timeout.
func Current(timeout time.Duration) op.Predicate[*ui.Page] {
	return op.Check(
		func(p *ui.Page) string { return fmt.Sprintf("Page '%s' is current.", p.Alias()) },
		func(p *ui.Page) bool { return p.IsCurrent(timeout) },
	)
}

// TextPresent holds when text appears on the page within timeout.
func TextPresent(text string, timeout time.Duration) op.Predicate[*ui.Page] {
	return op.Check(
		func(p *ui.Page) string { return fmt.Sprintf("Text '%s' is present on page '%s'.", text, p.Alias()) },
		func(p *ui.Page) bool { return p.IsTextPresent(text, timeout) },
	)
}
