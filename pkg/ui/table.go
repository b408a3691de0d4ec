package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/devicelab-dev/sirius/pkg/core"
	"github.com/devicelab-dev/sirius/pkg/locator"
)

// Table is a list container whose rows are addressed by position.
// The container locator must be an xpath and the descriptor must carry an
// item locator; the factory rejects tables that do not.
type Table struct {
	*Element
}

// itemText returns the item locator value without an "xpath=" prefix.
func (t *Table) itemText() string {
	return strings.TrimPrefix(t.desc.ItemLocator, "xpath=")
}

// FullItemLocator matches every row: container locator followed by item locator.
func (t *Table) FullItemLocator() core.Locator {
	return core.XPath(t.loc.Value + t.itemText())
}

// ItemsCount returns the number of rows currently present.
func (t *Table) ItemsCount() (int, error) {
	refs, err := t.driver().FindAll(t.FullItemLocator())
	if err != nil {
		return 0, err
	}
	return len(refs), nil
}

// Item returns a fresh handle for row index (0-based).
func (t *Table) Item(index int) *Element {
	row := fmt.Sprintf("(%s)[%d]", t.FullItemLocator().Value, index+1)
	e := &Element{
		page:     t.page,
		name:     fmt.Sprintf("%s[%d]", t.name, index),
		kind:     KindControl,
		desc:     locator.Descriptor{Locator: core.XPath(row).String(), Platform: t.desc.Platform},
		loc:      core.XPath(row),
		subItems: t.subItems,
	}
	e.self = e
	return e
}

// Last returns the handle of the last row present.
func (t *Table) Last() (*Element, error) {
	n, err := t.ItemsCount()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, core.ErrElementNotFound.WithMessage(fmt.Sprintf("table %s has no rows", t.name))
	}
	return t.Item(n - 1), nil
}

// IsEmpty waits until the first row is gone.
func (t *Table) IsEmpty(timeout time.Duration) bool {
	return t.Item(0).Disappears(timeout)
}

// IsNotEmpty waits until the first row exists.
func (t *Table) IsNotEmpty(timeout time.Duration) bool {
	return t.Item(0).Exists(timeout)
}

// SubItemLocator returns the locator of sub-item name in row index.
func (t *Table) SubItemLocator(name string, index int) (core.Locator, error) {
	return t.Item(index).SubItemLocator(name)
}

// SubItem builds the handle of sub-item name in row index, of the
// sub-item's declared kind.
func (t *Table) SubItem(name string, index int) (Control, error) {
	return t.Item(index).SubItem(name)
}

// SubItemAs is SubItem with the expected capability.
func SubItemAs[T any](t *Table, name string, index int) (T, error) {
	var zero T
	c, err := t.SubItem(name, index)
	if err != nil {
		return zero, err
	}
	v, ok := c.(T)
	if !ok {
		return zero, core.ErrCapabilityMismatch.WithMessage(
			fmt.Sprintf("sub-item %q of %s is a %s", name, t.name, c.Kind()))
	}
	return v, nil
}

func (t *Table) validate() error {
	if !t.loc.IsXPath() {
		return core.ErrInvalidSchema.WithMessage(fmt.Sprintf("table %q needs an xpath locator, got %s", t.name, t.loc))
	}
	if t.itemText() == "" {
		return core.ErrInvalidSchema.WithMessage(fmt.Sprintf("table %q has no item locator", t.name))
	}
	return nil
}
