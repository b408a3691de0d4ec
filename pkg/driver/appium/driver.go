package appium

import (
	"fmt"
	"strings"
	"time"

	"github.com/devicelab-dev/sirius/pkg/core"
	"github.com/devicelab-dev/sirius/pkg/logger"
)

// DefaultPollInterval is the WaitUntil re-evaluation interval.
const DefaultPollInterval = 200 * time.Millisecond

// elementRef is the W3C element ID returned by this driver.
type elementRef string

// Driver implements core.Driver using Appium server.
type Driver struct {
	client       *Client
	platform     core.Platform
	web          bool // lookups run in a browser context
	pollInterval time.Duration
}

// NewDriver connects to serverURL and creates a session for platform.
func NewDriver(serverURL string, capabilities map[string]interface{}, platform core.Platform) (*Driver, error) {
	client := NewClient(serverURL)

	if err := client.Connect(capabilities); err != nil {
		return nil, err
	}
	logger.Info("appium: session %s on %s (%s)", client.SessionID(), serverURL, platform)

	d := New(client, platform)
	d.web = isWebContext(platform, capabilities)
	return d, nil
}

// New wraps a connected client. With PlatformAny the session is taken to
// be a native app; see isWebContext.
func New(client *Client, platform core.Platform) *Driver {
	return &Driver{
		client:       client,
		platform:     platform,
		web:          isWebContext(platform, nil),
		pollInterval: DefaultPollInterval,
	}
}

// isWebContext reports whether the session drives a browser. A concrete
// platform decides by itself; "any" is a browser only when the
// capabilities ask for one.
func isWebContext(p core.Platform, capabilities map[string]interface{}) bool {
	if p != core.PlatformAny {
		return p.IsWeb()
	}
	for _, key := range []string{"browserName", "appium:browserName"} {
		if name, _ := capabilities[key].(string); name != "" {
			return true
		}
	}
	return false
}

// SetPollInterval changes the WaitUntil interval.
func (d *Driver) SetPollInterval(interval time.Duration) {
	if interval > 0 {
		d.pollInterval = interval
	}
}

// Client returns the underlying protocol client.
func (d *Driver) Client() *Client {
	return d.client
}

// Close disconnects from Appium server.
func (d *Driver) Close() error {
	return d.client.Disconnect()
}

// using translates loc into a W3C strategy. Web contexts only know css
// and xpath, so the native-only strategies are rewritten as css.
func (d *Driver) using(loc core.Locator) (string, string, error) {
	if d.web {
		switch loc.Strategy {
		case core.ByID:
			return string(core.ByCSS), cssAttr("id", loc.Value), nil
		case core.ByName:
			return string(core.ByCSS), cssAttr("name", loc.Value), nil
		case core.ByClassName:
			return string(core.ByCSS), cssAttr("class~", loc.Value), nil
		case core.ByAccessibilityID:
			return string(core.ByCSS), cssAttr("aria-label", loc.Value), nil
		case core.ByUIAutomator, core.ByIOSPredicate:
			return "", "", core.ErrNotSupported.WithMessage(
				fmt.Sprintf("locator %s is not available on %s", loc, d.platform))
		}
	}
	return string(loc.Strategy), loc.Value, nil
}

// cssAttr builds [name="value"] with value escaped for a CSS string.
func cssAttr(name, value string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return fmt.Sprintf(`[%s="%s"]`, name, r.Replace(value))
}

func id(ref core.ElementRef) (string, error) {
	e, ok := ref.(elementRef)
	if !ok || e == "" {
		return "", fmt.Errorf("appium: foreign element reference %T", ref)
	}
	return string(e), nil
}

// FindOne implements core.Driver.
func (d *Driver) FindOne(loc core.Locator) (core.ElementRef, error) {
	strategy, value, err := d.using(loc)
	if err != nil {
		return nil, err
	}
	elementID, err := d.client.FindElement(strategy, value)
	if err != nil {
		return nil, err
	}
	return elementRef(elementID), nil
}

// FindAll implements core.Driver.
func (d *Driver) FindAll(loc core.Locator) ([]core.ElementRef, error) {
	strategy, value, err := d.using(loc)
	if err != nil {
		return nil, err
	}
	ids, err := d.client.FindElements(strategy, value)
	if err != nil {
		return nil, err
	}
	refs := make([]core.ElementRef, len(ids))
	for i, elementID := range ids {
		refs[i] = elementRef(elementID)
	}
	return refs, nil
}

// Click implements core.Driver.
func (d *Driver) Click(ref core.ElementRef) error {
	elementID, err := id(ref)
	if err != nil {
		return err
	}
	return d.client.ClickElement(elementID)
}

// SendKeys implements core.Driver.
func (d *Driver) SendKeys(ref core.ElementRef, text string) error {
	elementID, err := id(ref)
	if err != nil {
		return err
	}
	return d.client.SendElementKeys(elementID, text)
}

// Clear implements core.Driver.
func (d *Driver) Clear(ref core.ElementRef) error {
	elementID, err := id(ref)
	if err != nil {
		return err
	}
	return d.client.ClearElement(elementID)
}

// SelectOption implements core.Driver. On the web the option is a child
// <option>; native pickers are opened and the option is tapped by text.
func (d *Driver) SelectOption(ref core.ElementRef, text string) error {
	elementID, err := id(ref)
	if err != nil {
		return err
	}
	lit := core.QuoteXPath(text)

	var optionID string
	if d.web {
		optionID, err = d.client.FindChildElement(elementID, string(core.ByXPath),
			fmt.Sprintf(".//option[normalize-space(.)=%s]", lit))
	} else {
		if err := d.client.ClickElement(elementID); err != nil {
			return err
		}
		optionID, err = d.client.FindElement(string(core.ByXPath),
			fmt.Sprintf("//*[@text=%[1]s or @label=%[1]s or @name=%[1]s]", lit))
	}
	if err != nil {
		return fmt.Errorf("option %q: %w", text, err)
	}
	return d.client.ClickElement(optionID)
}

// Attribute implements core.Driver.
func (d *Driver) Attribute(ref core.ElementRef, name string) (string, error) {
	elementID, err := id(ref)
	if err != nil {
		return "", err
	}
	return d.client.GetElementAttribute(elementID, name)
}

// Text implements core.Driver.
func (d *Driver) Text(ref core.ElementRef) (string, error) {
	elementID, err := id(ref)
	if err != nil {
		return "", err
	}
	return d.client.GetElementText(elementID)
}

// Rect implements core.Driver.
func (d *Driver) Rect(ref core.ElementRef) (core.Bounds, error) {
	elementID, err := id(ref)
	if err != nil {
		return core.Bounds{}, err
	}
	return d.client.GetElementRect(elementID)
}

// Displayed implements core.Driver.
func (d *Driver) Displayed(ref core.ElementRef) (bool, error) {
	elementID, err := id(ref)
	if err != nil {
		return false, err
	}
	return d.client.IsElementDisplayed(elementID)
}

// Enabled implements core.Driver.
func (d *Driver) Enabled(ref core.ElementRef) (bool, error) {
	elementID, err := id(ref)
	if err != nil {
		return false, err
	}
	return d.client.IsElementEnabled(elementID)
}

// WaitUntil implements core.Driver.
func (d *Driver) WaitUntil(cond core.Condition, timeout time.Duration) bool {
	return core.WaitFor(d, cond, timeout, d.pollInterval)
}

// PerformGesture implements core.Driver.
func (d *Driver) PerformGesture(g core.Gesture) error {
	return d.client.Swipe(g.From.X, g.From.Y, g.To.X, g.To.Y, g.Duration, g.Pause)
}

// WindowSize implements core.Driver.
func (d *Driver) WindowSize() (int, int, error) {
	w, h := d.client.ScreenSize()
	if w == 0 || h == 0 {
		d.client.fetchScreenSize()
		w, h = d.client.ScreenSize()
	}
	if w == 0 || h == 0 {
		return 0, 0, fmt.Errorf("appium: window size unavailable")
	}
	return w, h, nil
}

// PageSource implements core.Driver.
func (d *Driver) PageSource() (string, error) {
	return d.client.Source()
}

// SwitchToFrame implements core.Driver.
func (d *Driver) SwitchToFrame(ref core.ElementRef) error {
	if ref == nil {
		return d.client.SwitchToFrame("")
	}
	elementID, err := id(ref)
	if err != nil {
		return err
	}
	return d.client.SwitchToFrame(elementID)
}

// HideKeyboard implements core.Driver.
func (d *Driver) HideKeyboard() error {
	return d.client.HideKeyboard()
}

// AcceptAlert implements core.Driver.
func (d *Driver) AcceptAlert() error {
	return d.client.AcceptAlert()
}

// DismissAlert implements core.Driver.
func (d *Driver) DismissAlert() error {
	return d.client.DismissAlert()
}

// AlertText implements core.Driver.
func (d *Driver) AlertText() (string, error) {
	return d.client.GetAlertText()
}

// SendAlertText implements core.Driver.
func (d *Driver) SendAlertText(text string) error {
	return d.client.SendAlertText(text)
}

var _ core.Driver = (*Driver)(nil)
