// Package rod implements core.Driver for desktop browsers over the Chrome
// DevTools protocol using go-rod.
package rod

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	gorod "github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/devicelab-dev/sirius/pkg/core"
	"github.com/devicelab-dev/sirius/pkg/logger"
)

// DefaultPollInterval is the WaitUntil re-evaluation interval.
const DefaultPollInterval = 200 * time.Millisecond

// Options configures the browser.
type Options struct {
	Headless bool
	Bin      string // browser binary; empty finds or downloads one
	Remote   string // DevTools websocket URL of a running browser; skips launching
	URL      string // page opened after connecting
}

// Driver implements core.Driver using a go-rod page.
type Driver struct {
	browser      *gorod.Browser
	launcher     *launcher.Launcher
	root         *gorod.Page
	page         *gorod.Page // root or the current frame
	pollInterval time.Duration
	dialog       dialog
}

// dialog tracks the JavaScript dialog open on the root page.
type dialog struct {
	mu     sync.Mutex
	open   *proto.PageJavascriptDialogOpening
	prompt string
}

func (s *dialog) opened(e *proto.PageJavascriptDialogOpening) {
	s.mu.Lock()
	s.open = e
	s.prompt = e.DefaultPrompt
	s.mu.Unlock()
}

func (s *dialog) closed() {
	s.mu.Lock()
	s.open = nil
	s.prompt = ""
	s.mu.Unlock()
}

func (s *dialog) message() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.open == nil {
		return "", core.ErrNoAlert
	}
	return s.open.Message, nil
}

func (s *dialog) setPrompt(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.open == nil {
		return core.ErrNoAlert
	}
	s.prompt = text
	return nil
}

// pending returns the prompt text to submit with the open dialog.
func (s *dialog) pending() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.open == nil {
		return "", core.ErrNoAlert
	}
	return s.prompt, nil
}

// Launch starts (or connects to) a browser and opens a page.
func Launch(opts Options) (*Driver, error) {
	controlURL := opts.Remote
	var l *launcher.Launcher
	if controlURL == "" {
		l = launcher.New().Headless(opts.Headless)
		if opts.Bin != "" {
			l = l.Bin(opts.Bin)
		}
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("failed to launch browser: %w", err)
		}
		controlURL = u
	}

	browser := gorod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		if l != nil {
			l.Kill()
		}
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = browser.Close()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	d := New(page)
	d.browser = browser
	d.launcher = l

	if opts.URL != "" {
		if err := d.Open(opts.URL); err != nil {
			_ = d.Close()
			return nil, err
		}
	}
	logger.Info("rod: browser ready (%s)", controlURL)
	return d, nil
}

// New wraps an existing page. Close does not close its browser.
func New(page *gorod.Page) *Driver {
	d := &Driver{
		root:         page,
		page:         page,
		pollInterval: DefaultPollInterval,
	}
	go page.EachEvent(d.dialog.opened, func(*proto.PageJavascriptDialogClosed) {
		d.dialog.closed()
	})()
	return d
}

// SetPollInterval changes the WaitUntil interval.
func (d *Driver) SetPollInterval(interval time.Duration) {
	if interval > 0 {
		d.pollInterval = interval
	}
}

// Page returns the page or frame lookups currently run in.
func (d *Driver) Page() *gorod.Page {
	return d.page
}

// Open navigates the top page to url and waits for it to load.
func (d *Driver) Open(url string) error {
	d.page = d.root
	if err := d.root.Navigate(url); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return d.root.WaitLoad()
}

// Close closes the browser and stops it if it was launched here.
func (d *Driver) Close() error {
	var err error
	if d.browser != nil {
		err = d.browser.Close()
	}
	if d.launcher != nil {
		d.launcher.Kill()
		d.launcher.Cleanup()
	}
	return err
}

// selector translates loc into a CSS or XPath selector.
func selector(loc core.Locator) (sel string, xpath bool, err error) {
	switch loc.Strategy {
	case core.ByXPath:
		return loc.Value, true, nil
	case core.ByCSS:
		return loc.Value, false, nil
	case core.ByID:
		return cssAttr("id", loc.Value), false, nil
	case core.ByName:
		return cssAttr("name", loc.Value), false, nil
	case core.ByClassName:
		return cssAttr("class~", loc.Value), false, nil
	case core.ByAccessibilityID:
		return cssAttr("aria-label", loc.Value), false, nil
	}
	return "", false, core.ErrNotSupported.WithMessage(
		fmt.Sprintf("locator %s is not available in a desktop browser", loc))
}

// cssAttr builds [name="value"] with value escaped for a CSS string.
func cssAttr(name, value string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return fmt.Sprintf(`[%s="%s"]`, name, r.Replace(value))
}

func element(ref core.ElementRef) (*gorod.Element, error) {
	el, ok := ref.(*gorod.Element)
	if !ok || el == nil {
		return nil, fmt.Errorf("rod: foreign element reference %T", ref)
	}
	return el, nil
}

// FindAll implements core.Driver. It does not wait for elements.
func (d *Driver) FindAll(loc core.Locator) ([]core.ElementRef, error) {
	sel, xpath, err := selector(loc)
	if err != nil {
		return nil, err
	}
	var els gorod.Elements
	if xpath {
		els, err = d.page.ElementsX(sel)
	} else {
		els, err = d.page.Elements(sel)
	}
	if err != nil {
		return nil, err
	}
	refs := make([]core.ElementRef, len(els))
	for i, el := range els {
		refs[i] = el
	}
	return refs, nil
}

// FindOne implements core.Driver.
func (d *Driver) FindOne(loc core.Locator) (core.ElementRef, error) {
	refs, err := d.FindAll(loc)
	if err != nil {
		return nil, err
	}
	if len(refs) == 0 {
		return nil, core.ErrElementNotFound.WithMessage(fmt.Sprintf("no element for %s", loc))
	}
	return refs[0], nil
}

// Click implements core.Driver.
func (d *Driver) Click(ref core.ElementRef) error {
	el, err := element(ref)
	if err != nil {
		return err
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}

// SendKeys implements core.Driver.
func (d *Driver) SendKeys(ref core.ElementRef, text string) error {
	el, err := element(ref)
	if err != nil {
		return err
	}
	return el.Input(text)
}

// Clear implements core.Driver.
func (d *Driver) Clear(ref core.ElementRef) error {
	el, err := element(ref)
	if err != nil {
		return err
	}
	if err := el.SelectAllText(); err != nil {
		return err
	}
	return el.Input("")
}

// SelectOption implements core.Driver.
func (d *Driver) SelectOption(ref core.ElementRef, text string) error {
	el, err := element(ref)
	if err != nil {
		return err
	}
	if err := el.Select([]string{text}, true, gorod.SelectorTypeText); err != nil {
		return core.ErrElementNotFound.WithMessage(fmt.Sprintf("option %q", text)).WithCause(err)
	}
	return nil
}

// Attribute implements core.Driver. value, checked and selected are read
// from the live DOM property, the way WebDriver reports them.
func (d *Driver) Attribute(ref core.ElementRef, name string) (string, error) {
	el, err := element(ref)
	if err != nil {
		return "", err
	}
	switch name {
	case "value", "checked", "selected":
		prop, err := el.Property(name)
		if err != nil {
			return "", err
		}
		switch v := prop.Val().(type) {
		case bool:
			return strconv.FormatBool(v), nil
		case string:
			return v, nil
		}
		return "", nil
	}
	attr, err := el.Attribute(name)
	if err != nil || attr == nil {
		return "", err
	}
	return *attr, nil
}

// Text implements core.Driver.
func (d *Driver) Text(ref core.ElementRef) (string, error) {
	el, err := element(ref)
	if err != nil {
		return "", err
	}
	return el.Text()
}

// Rect implements core.Driver.
func (d *Driver) Rect(ref core.ElementRef) (core.Bounds, error) {
	el, err := element(ref)
	if err != nil {
		return core.Bounds{}, err
	}
	shape, err := el.Shape()
	if err != nil {
		return core.Bounds{}, err
	}
	box := shape.Box()
	if box == nil {
		return core.Bounds{}, nil
	}
	return core.Bounds{X: int(box.X), Y: int(box.Y), Width: int(box.Width), Height: int(box.Height)}, nil
}

// Displayed implements core.Driver.
func (d *Driver) Displayed(ref core.ElementRef) (bool, error) {
	el, err := element(ref)
	if err != nil {
		return false, err
	}
	return el.Visible()
}

// Enabled implements core.Driver.
func (d *Driver) Enabled(ref core.ElementRef) (bool, error) {
	el, err := element(ref)
	if err != nil {
		return false, err
	}
	disabled, err := el.Property("disabled")
	if err != nil {
		return false, err
	}
	return !disabled.Bool(), nil
}

// WaitUntil implements core.Driver.
func (d *Driver) WaitUntil(cond core.Condition, timeout time.Duration) bool {
	return core.WaitFor(d, cond, timeout, d.pollInterval)
}

// PerformGesture implements core.Driver. Desktop pages do not scroll on
// drag, so the gesture becomes a wheel scroll at its start point that
// moves the content the same way a touch drag would.
func (d *Driver) PerformGesture(g core.Gesture) error {
	mouse := d.page.Mouse
	if err := mouse.MoveTo(proto.Point{X: float64(g.From.X), Y: float64(g.From.Y)}); err != nil {
		return err
	}
	dx, dy := g.Vector()
	steps := int(g.Duration / (16 * time.Millisecond))
	if steps < 1 {
		steps = 1
	}
	if err := mouse.Scroll(float64(-dx), float64(-dy), steps); err != nil {
		return err
	}
	if g.Pause > 0 {
		time.Sleep(g.Pause)
	}
	return nil
}

// WindowSize implements core.Driver.
func (d *Driver) WindowSize() (int, int, error) {
	res, err := d.root.Eval(`() => ({w: window.innerWidth, h: window.innerHeight})`)
	if err != nil {
		return 0, 0, err
	}
	return res.Value.Get("w").Int(), res.Value.Get("h").Int(), nil
}

// PageSource implements core.Driver.
func (d *Driver) PageSource() (string, error) {
	return d.page.HTML()
}

// SwitchToFrame implements core.Driver.
func (d *Driver) SwitchToFrame(ref core.ElementRef) error {
	if ref == nil {
		d.page = d.root
		return nil
	}
	el, err := element(ref)
	if err != nil {
		return err
	}
	frame, err := el.Frame()
	if err != nil {
		return fmt.Errorf("switch to frame: %w", err)
	}
	d.page = frame
	return nil
}

// HideKeyboard implements core.Driver. Desktop browsers have no
// on-screen keyboard.
func (d *Driver) HideKeyboard() error {
	return nil
}

func (d *Driver) handleDialog(accept bool) error {
	prompt, err := d.dialog.pending()
	if err != nil {
		return err
	}
	req := proto.PageHandleJavaScriptDialog{Accept: accept}
	if accept {
		req.PromptText = prompt
	}
	if err := req.Call(d.root); err != nil {
		return fmt.Errorf("handle dialog: %w", err)
	}
	d.dialog.closed()
	return nil
}

// AcceptAlert implements core.Driver.
func (d *Driver) AcceptAlert() error {
	return d.handleDialog(true)
}

// DismissAlert implements core.Driver.
func (d *Driver) DismissAlert() error {
	return d.handleDialog(false)
}

// AlertText implements core.Driver.
func (d *Driver) AlertText() (string, error) {
	return d.dialog.message()
}

// SendAlertText implements core.Driver.
func (d *Driver) SendAlertText(text string) error {
	return d.dialog.setPrompt(text)
}

var _ core.Driver = (*Driver)(nil)
