// Package mock provides an in-memory driver for testing without a real device.
//
// Elements are registered under the textual form of their locator
// (core.Locator.String()). A single vertical scroll offset simulates a
// scrollable screen: elements with a Range are only findable while the
// offset lies inside it, and the page source changes with the offset so
// swipe-until-stable terminates at either edge.
package mock

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/devicelab-dev/sirius/pkg/core"
)

// Element is a fake UI element.
type Element struct {
	Text      string
	Attrs     map[string]string
	Hidden    bool
	Disabled  bool
	Bounds    core.Bounds
	Options   []string // selectable option texts
	Checkable bool     // a click toggles the "checked" attribute
	Range     *Range   // scroll offsets at which the element is on screen
	OnClick   func()

	Clicks int
}

// Alert is a fake browser dialog.
type Alert struct {
	Text  string
	Input string // text typed into a prompt

	// OnClose is called after the dialog is accepted or dismissed.
	OnClose func(accepted bool, input string)
}

// Range is an inclusive span of scroll offsets.
type Range struct {
	From int
	To   int
}

func (r *Range) contains(offset int) bool {
	return r == nil || (offset >= r.From && offset <= r.To)
}

// Config configures mock driver behavior.
type Config struct {
	// Screen size reported by WindowSize
	Width  int
	Height int
	// Initial and maximum scroll offset. Offsets run from 0 (top) to MaxOffset.
	Offset    int
	MaxOffset int
	// Offset change per swipe
	ScrollStep int
	// PollInterval for WaitUntil
	PollInterval time.Duration
}

// Driver is a mock implementation of core.Driver for testing.
type Driver struct {
	Config Config

	// OnFind is called with every locator looked up, before the lookup.
	// It may call Add/Remove to simulate UI changes.
	OnFind func(loc core.Locator)

	mu       sync.Mutex
	elements map[string][]*Element
	failures map[string]error
	offset   int
	frame    *Element
	alert    *Alert
	calls    []string
	gestures []core.Gesture
	finds    map[string]int
}

// New creates a new mock driver.
func New(cfg Config) *Driver {
	if cfg.Width == 0 {
		cfg.Width = 1080
	}
	if cfg.Height == 0 {
		cfg.Height = 2400
	}
	if cfg.ScrollStep == 0 {
		cfg.ScrollStep = 1
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = time.Millisecond
	}
	return &Driver{
		Config:   cfg,
		elements: make(map[string][]*Element),
		failures: make(map[string]error),
		offset:   cfg.Offset,
		finds:    make(map[string]int),
	}
}

// Add registers elements under a locator expression and returns the first.
// With no elements given a default visible, enabled element is created.
func (d *Driver) Add(locator string, els ...*Element) *Element {
	if len(els) == 0 {
		els = []*Element{{}}
	}
	key := keyOf(locator)
	d.mu.Lock()
	d.elements[key] = append(d.elements[key], els...)
	d.mu.Unlock()
	return els[0]
}

// AddList registers n elements under locator, plus each one under the
// positional form "(locator)[i]" with i starting at 1.
func (d *Driver) AddList(locator string, n int) []*Element {
	key := keyOf(locator)
	loc := core.MustParseLocator(key)
	out := make([]*Element, n)
	for i := range out {
		out[i] = &Element{Text: fmt.Sprintf("row %d", i+1)}
		d.Add(fmt.Sprintf("(%s)[%d]", loc.Value, i+1), out[i])
	}
	d.Add(key, out...)
	return out
}

// Remove unregisters all elements under a locator expression.
func (d *Driver) Remove(locator string) {
	d.mu.Lock()
	delete(d.elements, keyOf(locator))
	d.mu.Unlock()
}

// Fail makes every lookup of locator return err.
func (d *Driver) Fail(locator string, err error) {
	d.mu.Lock()
	d.failures[keyOf(locator)] = err
	d.mu.Unlock()
}

// Offset returns the current scroll offset.
func (d *Driver) Offset() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.offset
}

// Calls returns the recorded interactions, e.g. "click id=submit".
func (d *Driver) Calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.calls))
	copy(out, d.calls)
	return out
}

// Gestures returns the performed gestures.
func (d *Driver) Gestures() []core.Gesture {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]core.Gesture, len(d.gestures))
	copy(out, d.gestures)
	return out
}

// FindCount returns how many times locator was looked up.
func (d *Driver) FindCount(locator string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.finds[keyOf(locator)]
}

// keyOf normalizes a raw locator to its prefixed form.
func keyOf(locator string) string {
	loc, err := core.ParseLocator(locator)
	if err != nil {
		return locator
	}
	return loc.String()
}

func (d *Driver) lookup(loc core.Locator) ([]*Element, error) {
	if d.OnFind != nil {
		d.OnFind(loc)
	}
	key := loc.String()

	d.mu.Lock()
	defer d.mu.Unlock()
	d.finds[key]++
	if err := d.failures[key]; err != nil {
		return nil, err
	}
	var out []*Element
	for _, el := range d.elements[key] {
		if el.Range.contains(d.offset) {
			out = append(out, el)
		}
	}
	return out, nil
}

func (d *Driver) record(format string, args ...interface{}) {
	d.mu.Lock()
	d.calls = append(d.calls, fmt.Sprintf(format, args...))
	d.mu.Unlock()
}

func element(ref core.ElementRef) (*Element, error) {
	el, ok := ref.(*Element)
	if !ok || el == nil {
		return nil, fmt.Errorf("mock: foreign element reference %T", ref)
	}
	return el, nil
}

// FindOne implements core.Driver.
func (d *Driver) FindOne(loc core.Locator) (core.ElementRef, error) {
	els, err := d.lookup(loc)
	if err != nil {
		return nil, err
	}
	if len(els) == 0 {
		return nil, core.ErrElementNotFound.WithMessage(fmt.Sprintf("no element for %s", loc))
	}
	return els[0], nil
}

// FindAll implements core.Driver.
func (d *Driver) FindAll(loc core.Locator) ([]core.ElementRef, error) {
	els, err := d.lookup(loc)
	if err != nil {
		return nil, err
	}
	refs := make([]core.ElementRef, len(els))
	for i, el := range els {
		refs[i] = el
	}
	return refs, nil
}

// Click implements core.Driver.
func (d *Driver) Click(ref core.ElementRef) error {
	el, err := element(ref)
	if err != nil {
		return err
	}
	d.mu.Lock()
	el.Clicks++
	if el.Checkable {
		if el.Attrs == nil {
			el.Attrs = make(map[string]string)
		}
		if el.Attrs["checked"] == "true" {
			el.Attrs["checked"] = "false"
		} else {
			el.Attrs["checked"] = "true"
		}
	}
	d.calls = append(d.calls, "click "+el.Text)
	d.mu.Unlock()
	if el.OnClick != nil {
		el.OnClick()
	}
	return nil
}

// SendKeys implements core.Driver.
func (d *Driver) SendKeys(ref core.ElementRef, text string) error {
	el, err := element(ref)
	if err != nil {
		return err
	}
	d.mu.Lock()
	if el.Attrs == nil {
		el.Attrs = make(map[string]string)
	}
	el.Attrs["value"] += text
	el.Text += text
	d.calls = append(d.calls, "keys "+text)
	d.mu.Unlock()
	return nil
}

// Clear implements core.Driver.
func (d *Driver) Clear(ref core.ElementRef) error {
	el, err := element(ref)
	if err != nil {
		return err
	}
	d.mu.Lock()
	if el.Attrs != nil {
		el.Attrs["value"] = ""
	}
	el.Text = ""
	d.calls = append(d.calls, "clear")
	d.mu.Unlock()
	return nil
}

// SelectOption implements core.Driver.
func (d *Driver) SelectOption(ref core.ElementRef, text string) error {
	el, err := element(ref)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, opt := range el.Options {
		if opt == text {
			if el.Attrs == nil {
				el.Attrs = make(map[string]string)
			}
			el.Attrs["value"] = text
			d.calls = append(d.calls, "select "+text)
			return nil
		}
	}
	return core.ErrElementNotFound.WithMessage(fmt.Sprintf("no option %q", text))
}

// Attribute implements core.Driver.
func (d *Driver) Attribute(ref core.ElementRef, name string) (string, error) {
	el, err := element(ref)
	if err != nil {
		return "", err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return el.Attrs[name], nil
}

// Text implements core.Driver.
func (d *Driver) Text(ref core.ElementRef) (string, error) {
	el, err := element(ref)
	if err != nil {
		return "", err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return el.Text, nil
}

// Rect implements core.Driver.
func (d *Driver) Rect(ref core.ElementRef) (core.Bounds, error) {
	el, err := element(ref)
	if err != nil {
		return core.Bounds{}, err
	}
	return el.Bounds, nil
}

// Displayed implements core.Driver.
func (d *Driver) Displayed(ref core.ElementRef) (bool, error) {
	el, err := element(ref)
	if err != nil {
		return false, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return !el.Hidden, nil
}

// Enabled implements core.Driver.
func (d *Driver) Enabled(ref core.ElementRef) (bool, error) {
	el, err := element(ref)
	if err != nil {
		return false, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return !el.Disabled, nil
}

// WaitUntil implements core.Driver.
func (d *Driver) WaitUntil(cond core.Condition, timeout time.Duration) bool {
	return core.WaitFor(d, cond, timeout, d.Config.PollInterval)
}

// PerformGesture implements core.Driver.
// A downward drag scrolls toward the top (offset decreases), an upward drag toward the bottom.
func (d *Driver) PerformGesture(g core.Gesture) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gestures = append(d.gestures, g)
	_, dy := g.Vector()
	switch {
	case dy > 0:
		d.offset = max(0, d.offset-d.Config.ScrollStep)
	case dy < 0:
		d.offset = min(d.Config.MaxOffset, d.offset+d.Config.ScrollStep)
	}
	d.calls = append(d.calls, fmt.Sprintf("swipe %d,%d -> %d,%d", g.From.X, g.From.Y, g.To.X, g.To.Y))
	return nil
}

// WindowSize implements core.Driver.
func (d *Driver) WindowSize() (int, int, error) {
	return d.Config.Width, d.Config.Height, nil
}

// PageSource implements core.Driver.
// The source lists the locators of on-screen elements and the offset.
func (d *Driver) PageSource() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var present []string
	for key, els := range d.elements {
		for _, el := range els {
			if el.Range.contains(d.offset) {
				present = append(present, key)
				break
			}
		}
	}
	sort.Strings(present)
	return fmt.Sprintf("<screen offset=%d>%s</screen>", d.offset, strings.Join(present, ";")), nil
}

// SwitchToFrame implements core.Driver.
func (d *Driver) SwitchToFrame(ref core.ElementRef) error {
	if ref == nil {
		d.mu.Lock()
		d.frame = nil
		d.mu.Unlock()
		d.record("frame top")
		return nil
	}
	el, err := element(ref)
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.frame = el
	d.mu.Unlock()
	d.record("frame %s", el.Text)
	return nil
}

// HideKeyboard implements core.Driver.
func (d *Driver) HideKeyboard() error {
	d.record("hide keyboard")
	return nil
}

// ShowAlert opens a dialog with the given message, replacing any open one.
func (d *Driver) ShowAlert(text string) *Alert {
	a := &Alert{Text: text}
	d.mu.Lock()
	d.alert = a
	d.mu.Unlock()
	return a
}

// AlertOpen reports whether a dialog is shown.
func (d *Driver) AlertOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.alert != nil
}

func (d *Driver) closeAlert(accepted bool) error {
	d.mu.Lock()
	a := d.alert
	if a == nil {
		d.mu.Unlock()
		return core.ErrNoAlert
	}
	d.alert = nil
	if accepted {
		d.calls = append(d.calls, "alert accept")
	} else {
		d.calls = append(d.calls, "alert dismiss")
	}
	d.mu.Unlock()
	if a.OnClose != nil {
		a.OnClose(accepted, a.Input)
	}
	return nil
}

// AcceptAlert implements core.Driver.
func (d *Driver) AcceptAlert() error {
	return d.closeAlert(true)
}

// DismissAlert implements core.Driver.
func (d *Driver) DismissAlert() error {
	return d.closeAlert(false)
}

// AlertText implements core.Driver.
func (d *Driver) AlertText() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.alert == nil {
		return "", core.ErrNoAlert
	}
	return d.alert.Text, nil
}

// SendAlertText implements core.Driver.
func (d *Driver) SendAlertText(text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.alert == nil {
		return core.ErrNoAlert
	}
	d.alert.Input = text
	d.calls = append(d.calls, "alert keys "+text)
	return nil
}

var _ core.Driver = (*Driver)(nil)
