package ui

import (
	"strings"

	"github.com/devicelab-dev/sirius/pkg/logger"
)

// Edit is a text input.
type Edit struct {
	*Element
}

// SetValue replaces the content: click, clear, then type. On Android the
// soft keyboard is hidden before and after typing.
func (e *Edit) SetValue(value string) error {
	android := e.scope().platform.IsAndroidNative()
	if android {
		e.hideKeyboard()
	}
	if err := e.Click(); err != nil {
		return err
	}
	if err := e.Clear(); err != nil {
		return err
	}
	if err := e.SendKeys(value); err != nil {
		return err
	}
	if android {
		e.hideKeyboard()
	}
	return nil
}

// Text returns the typed content: the value attribute on web platforms,
// the element text on native ones.
func (e *Edit) Text() (string, error) {
	if e.scope().platform.IsWeb() {
		return e.Attribute("value")
	}
	return e.Element.Text()
}

// Value is the typed content, as Text.
func (e *Edit) Value() (string, error) {
	return e.Text()
}

func (e *Edit) hideKeyboard() {
	if err := e.driver().HideKeyboard(); err != nil {
		logger.Debug("hide keyboard: %v", err)
	}
}

// CheckBox toggles on click.
type CheckBox struct {
	*Element
}

// SetValue checks the box for "y", "yes" or "true" and unchecks it otherwise.
func (c *CheckBox) SetValue(value string) error {
	want := truthy(value)
	checked, err := c.IsChecked()
	if err != nil {
		return err
	}
	if checked == want {
		return nil
	}
	return c.Click()
}

// Value returns "true" or "false".
func (c *CheckBox) Value() (string, error) {
	checked, err := c.IsChecked()
	if err != nil {
		return "", err
	}
	if checked {
		return "true", nil
	}
	return "false", nil
}

// RadioButton is selected by clicking and cannot be cleared directly.
type RadioButton struct {
	*Element
}

// SetValue selects the button for "y", "yes" or "true"; other values are no-ops.
func (r *RadioButton) SetValue(value string) error {
	if !truthy(value) {
		return nil
	}
	checked, err := r.IsChecked()
	if err != nil || checked {
		return err
	}
	return r.Click()
}

// Value returns "true" or "false".
func (r *RadioButton) Value() (string, error) {
	checked, err := r.IsChecked()
	if err != nil {
		return "", err
	}
	if checked {
		return "true", nil
	}
	return "false", nil
}

// SelectList picks one option by its visible text.
type SelectList struct {
	*Element
}

// SetValue selects the option whose visible text is value.
func (s *SelectList) SetValue(value string) error {
	ref, err := s.find()
	if err != nil {
		return err
	}
	return s.driver().SelectOption(ref, value)
}

func truthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "y", "yes", "true":
		return true
	}
	return false
}

var (
	_ Editable = (*Edit)(nil)
	_ Editable = (*CheckBox)(nil)
	_ Editable = (*RadioButton)(nil)
	_ Editable = (*SelectList)(nil)
	_ Listable = (*Table)(nil)
	_ Control  = (*Element)(nil)
)
