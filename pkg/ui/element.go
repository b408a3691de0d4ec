package ui

import (
	"fmt"
	"time"

	"github.com/devicelab-dev/sirius/pkg/core"
	"github.com/devicelab-dev/sirius/pkg/locator"
	"github.com/devicelab-dev/sirius/pkg/logger"
	"github.com/devicelab-dev/sirius/pkg/op"
)

// DefaultTimeout selects the scope's default timeout in state queries.
const DefaultTimeout time.Duration = -1

// Element is a lazy handle on a UI element: an owner page plus the
// descriptor active on the scope's platform. It never holds a driver
// reference; every call looks the element up again.
type Element struct {
	page     *Page
	name     string
	kind     Kind
	desc     locator.Descriptor
	loc      core.Locator
	subItems map[string]locator.SubItem
	self     Control // concrete control wrapping this element
}

func newElement(page *Page, name string, desc locator.Descriptor, subItems map[string]locator.SubItem) (*Element, error) {
	loc, err := desc.Parse()
	if err != nil {
		return nil, fmt.Errorf("field %q: %w", name, err)
	}
	if subItems == nil {
		subItems = map[string]locator.SubItem{}
	}
	e := &Element{
		page:     page,
		name:     name,
		kind:     KindControl,
		desc:     desc,
		loc:      loc,
		subItems: subItems,
	}
	e.self = e
	return e, nil
}

// NewElement builds a plain control on page for a raw locator.
// Use it for handles that are not declared in a schema.
func NewElement(page *Page, raw string) (*Element, error) {
	return newElement(page, raw, locator.Any(raw), nil)
}

// Base returns the element itself.
func (e *Element) Base() *Element { return e }

// Name returns the field name.
func (e *Element) Name() string { return e.name }

// Kind returns the capability kind the element was built as.
func (e *Element) Kind() Kind { return e.kind }

// Page returns the owner page.
func (e *Element) Page() *Page { return e.page }

// Locator returns the parsed locator.
func (e *Element) Locator() core.Locator { return e.loc }

// LocatorText returns the locator value without its strategy prefix.
func (e *Element) LocatorText() string { return e.loc.Text() }

// Descriptor returns the active descriptor.
func (e *Element) Descriptor() locator.Descriptor { return e.desc }

// SubItems returns the sub-items valid on the scope's platform.
func (e *Element) SubItems() map[string]locator.SubItem {
	out := make(map[string]locator.SubItem, len(e.subItems))
	for k, v := range e.subItems {
		out[k] = v
	}
	return out
}

func (e *Element) String() string {
	return fmt.Sprintf("%s (%s)", e.name, e.loc)
}

func (e *Element) scope() *Scope {
	return e.page.scope
}

func (e *Element) driver() core.Driver {
	return e.page.scope.driver
}

func (e *Element) timeout(t time.Duration) time.Duration {
	if t < 0 {
		return e.scope().timeouts.Default
	}
	return t
}

func (e *Element) wait(cond core.Condition, timeout time.Duration) bool {
	return e.driver().WaitUntil(cond, e.timeout(timeout))
}

// ScrollIntoView runs scroll-search for the descriptor's scroll hint.
// Elements without a hint are left alone and report true.
func (e *Element) ScrollIntoView() bool {
	if !e.desc.HasScroll() {
		return true
	}
	found := e.page.ScrollToText(e.desc.ScrollTo, e.desc.ScrollDirection)
	if !found {
		logger.Debug("scroll to %q for %s found nothing", e.desc.ScrollTo, e)
	}
	return found
}

// Exists waits until at least one element matches.
func (e *Element) Exists(timeout time.Duration) bool {
	e.ScrollIntoView()
	return e.wait(core.PresenceOf(e.loc), timeout)
}

// Disappears waits until nothing matches. It does not scroll.
func (e *Element) Disappears(timeout time.Duration) bool {
	return e.wait(core.AbsenceOf(e.loc), timeout)
}

// Visible waits until the element is displayed.
func (e *Element) Visible(timeout time.Duration) bool {
	e.ScrollIntoView()
	return e.wait(core.VisibilityOf(e.loc), timeout)
}

// Invisible waits until the element is hidden or gone. It does not scroll.
func (e *Element) Invisible(timeout time.Duration) bool {
	return e.wait(core.InvisibilityOf(e.loc), timeout)
}

// Enabled waits until the element is displayed and enabled.
func (e *Element) Enabled(timeout time.Duration) bool {
	e.ScrollIntoView()
	return e.wait(core.Clickable(e.loc), timeout)
}

// Disabled waits until the element is not clickable. A missing element
// counts as disabled.
func (e *Element) Disabled(timeout time.Duration) bool {
	e.ScrollIntoView()
	return e.wait(core.Not(core.Clickable(e.loc)), timeout)
}

// Verify applies pred to the concrete control and fails with the
// predicate's description when it does not hold.
func (e *Element) Verify(pred op.Predicate[Control]) error {
	err := op.Verify(e.self, pred)
	if err != nil {
		logger.Warn("verification failed: %v", err)
	}
	return err
}

// require is the precondition of every interaction: the element must
// exist within the default timeout.
func (e *Element) require() error {
	return e.Verify(existence{})
}

// find requires the element and returns a fresh driver reference.
func (e *Element) find() (core.ElementRef, error) {
	if err := e.require(); err != nil {
		return nil, err
	}
	return e.driver().FindOne(e.loc)
}

// Click clicks the element.
func (e *Element) Click() error {
	ref, err := e.find()
	if err != nil {
		return err
	}
	return e.driver().Click(ref)
}

// SendKeys types text into the element.
func (e *Element) SendKeys(text string) error {
	ref, err := e.find()
	if err != nil {
		return err
	}
	return e.driver().SendKeys(ref, text)
}

// Clear clears the element's content.
func (e *Element) Clear() error {
	ref, err := e.find()
	if err != nil {
		return err
	}
	return e.driver().Clear(ref)
}

// Text returns the element's visible text.
func (e *Element) Text() (string, error) {
	ref, err := e.find()
	if err != nil {
		return "", err
	}
	return e.driver().Text(ref)
}

// Value returns the element's text. Controls holding typed or checked
// state override it.
func (e *Element) Value() (string, error) {
	return e.Text()
}

// Attribute returns the named attribute.
func (e *Element) Attribute(name string) (string, error) {
	ref, err := e.find()
	if err != nil {
		return "", err
	}
	return e.driver().Attribute(ref, name)
}

// Rect returns the element's on-screen bounds.
func (e *Element) Rect() (core.Bounds, error) {
	ref, err := e.find()
	if err != nil {
		return core.Bounds{}, err
	}
	return e.driver().Rect(ref)
}

// IsChecked reports the check state: the value attribute "1" on iOS,
// otherwise a "checked" or "selected" attribute of "true".
func (e *Element) IsChecked() (bool, error) {
	ref, err := e.find()
	if err != nil {
		return false, err
	}
	d := e.driver()
	if e.scope().platform.IsIOSNative() {
		v, err := d.Attribute(ref, "value")
		return v == "1", err
	}
	checked, err := d.Attribute(ref, "checked")
	if err != nil {
		return false, err
	}
	if checked == "true" {
		return true, nil
	}
	selected, err := d.Attribute(ref, "selected")
	return selected == "true", err
}

// ClickAndWait clicks the element, builds the page of schema and waits
// for it to become current. The page is recorded as the scope's current page.
func (e *Element) ClickAndWait(schema *Schema) (*Page, error) {
	if err := e.Click(); err != nil {
		return nil, err
	}
	s := e.scope()
	page, err := s.Init(schema)
	if err != nil {
		return nil, err
	}
	if !page.IsCurrent(DefaultTimeout) {
		return nil, core.ErrPageNotCurrent.WithMessage(
			fmt.Sprintf("The page '%s' didn't appear during specified timeout", page.Alias()))
	}
	s.SetCurrent(page)
	return page, nil
}

// SubItemLocator returns the locator of a named sub-item below this element.
func (e *Element) SubItemLocator(name string) (core.Locator, error) {
	sub, ok := e.subItems[name]
	if !ok {
		return core.Locator{}, core.ErrUnknownSubItem.WithMessage(
			fmt.Sprintf("no sub-item %q on %s", name, e))
	}
	if !e.loc.IsXPath() {
		return core.Locator{}, core.ErrInvalidLocator.WithMessage(
			fmt.Sprintf("sub-items need an xpath container, %s is %s", e.name, e.loc.Strategy))
	}
	return core.XPath(e.loc.Value + sub.Locator), nil
}

// SubItem builds a handle of the sub-item's declared kind below this element.
func (e *Element) SubItem(name string) (Control, error) {
	loc, err := e.SubItemLocator(name)
	if err != nil {
		return nil, err
	}
	sub := e.subItems[name]
	base, err := newElement(e.page, e.name+"."+name, locator.Any(loc.String()), nil)
	if err != nil {
		return nil, err
	}
	return construct(Kind(sub.EffectiveKind()), base)
}

// Formatted builds a handle of the same kind whose locator is the
// descriptor's format applied to args.
func (e *Element) Formatted(args ...interface{}) (Control, error) {
	if e.desc.Format == "" {
		return nil, core.ErrInvalidSchema.WithMessage(fmt.Sprintf("field %q has no locator format", e.name))
	}
	desc := e.desc
	desc.Locator = fmt.Sprintf(desc.Format, args...)
	desc.Format = ""
	base, err := newElement(e.page, e.name, desc, e.subItems)
	if err != nil {
		return nil, err
	}
	return construct(e.kind, base)
}

// existence is the interaction precondition.
type existence struct{}

func (existence) Apply(c Control) (bool, error) {
	return c.Exists(DefaultTimeout), nil
}

func (existence) Describe(c Control) string {
	return DescribeState(c, "exists")
}

// DescribeState formats the standard description of an element state,
// e.g. "Element with locator 'submit' is visible."
func DescribeState(c Control, state string) string {
	return fmt.Sprintf("Element with locator '%s' %s.", c.LocatorText(), state)
}
