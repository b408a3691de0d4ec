package rod

import (
	"errors"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/go-rod/rod/lib/proto"

	"github.com/devicelab-dev/sirius/pkg/core"
)

func TestSelector(t *testing.T) {
	tests := []struct {
		locator   string
		wantSel   string
		wantXPath bool
	}{
		{"//button[@type='submit']", "//button[@type='submit']", true},
		{"(//li)[2]", "(//li)[2]", true},
		{"css=#login > a", "#login > a", false},
		{"id=login", `[id="login"]`, false},
		{`id=a"b\c`, `[id="a\"b\\c"]`, false},
		{"name=q", `[name="q"]`, false},
		{"class=btn", `[class~="btn"]`, false},
		{"accessibility=Close", `[aria-label="Close"]`, false},
		{"plain", `[id="plain"]`, false},
	}

	for _, tt := range tests {
		t.Run(tt.locator, func(t *testing.T) {
			sel, xpath, err := selector(core.MustParseLocator(tt.locator))
			if err != nil {
				t.Fatalf("selector failed: %v", err)
			}
			if sel != tt.wantSel || xpath != tt.wantXPath {
				t.Errorf("selector() = %q, %v; want %q, %v", sel, xpath, tt.wantSel, tt.wantXPath)
			}
		})
	}
}

func TestSelector_NativeStrategies(t *testing.T) {
	for _, raw := range []string{"uiautomator=new UiSelector()", "predicate=label == 'x'"} {
		_, _, err := selector(core.MustParseLocator(raw))
		if !errors.Is(err, core.ErrNotSupported) {
			t.Errorf("selector(%q): expected ErrNotSupported, got %v", raw, err)
		}
	}
}

func TestElement_ForeignReference(t *testing.T) {
	if _, err := element("elem-1"); err == nil {
		t.Error("Expected error for a reference from another driver")
	}
	if _, err := element(nil); err == nil {
		t.Error("Expected error for nil reference")
	}
}

func TestDialog_State(t *testing.T) {
	var s dialog
	if _, err := s.message(); !errors.Is(err, core.ErrNoAlert) {
		t.Errorf("Expected ErrNoAlert, got %v", err)
	}
	if err := s.setPrompt("x"); !errors.Is(err, core.ErrNoAlert) {
		t.Errorf("Expected ErrNoAlert, got %v", err)
	}

	s.opened(&proto.PageJavascriptDialogOpening{
		Message:       "Your name?",
		Type:          proto.PageDialogTypePrompt,
		DefaultPrompt: "guest",
	})
	if msg, err := s.message(); err != nil || msg != "Your name?" {
		t.Errorf("message() = %q, %v", msg, err)
	}
	if p, _ := s.pending(); p != "guest" {
		t.Errorf("Expected default prompt 'guest', got %q", p)
	}
	if err := s.setPrompt("Sample"); err != nil {
		t.Fatalf("setPrompt failed: %v", err)
	}
	if p, _ := s.pending(); p != "Sample" {
		t.Errorf("Expected prompt 'Sample', got %q", p)
	}

	s.closed()
	if _, err := s.pending(); !errors.Is(err, core.ErrNoAlert) {
		t.Errorf("Expected ErrNoAlert after close, got %v", err)
	}
}

const fixtureHTML = `<!doctype html>
<html><body>
<input id="user" name="user">
<button id="go" disabled>Go</button>
<select id="color"><option>Red</option><option>Blue</option></select>
<ul><li>one</li><li>two</li><li>three</li></ul>
</body></html>`

// Browser tests need a local Chrome; enable with SIRIUS_BROWSER_TESTS=1.
func launchForTest(t *testing.T) *Driver {
	t.Helper()
	if os.Getenv("SIRIUS_BROWSER_TESTS") == "" {
		t.Skip("set SIRIUS_BROWSER_TESTS=1 to run browser tests")
	}
	d, err := Launch(Options{Headless: true, URL: "data:text/html," + url.PathEscape(fixtureHTML)})
	if err != nil {
		t.Fatalf("Launch failed: %v", err)
	}
	d.SetPollInterval(10 * time.Millisecond)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func TestDriver_Browser(t *testing.T) {
	d := launchForTest(t)

	rows, err := d.FindAll(core.XPath("//li"))
	if err != nil || len(rows) != 3 {
		t.Fatalf("FindAll = %d rows, %v", len(rows), err)
	}

	if _, err := d.FindOne(core.MustParseLocator("id=missing")); !core.IsNotFound(err) {
		t.Errorf("Expected not found, got %v", err)
	}

	user, err := d.FindOne(core.MustParseLocator("id=user"))
	if err != nil {
		t.Fatalf("FindOne failed: %v", err)
	}
	if err := d.SendKeys(user, "alice"); err != nil {
		t.Fatalf("SendKeys failed: %v", err)
	}
	if v, _ := d.Attribute(user, "value"); v != "alice" {
		t.Errorf("Expected value 'alice', got %q", v)
	}
	if err := d.Clear(user); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if v, _ := d.Attribute(user, "value"); v != "" {
		t.Errorf("Expected empty value, got %q", v)
	}

	goLoc := core.MustParseLocator("id=go")
	if d.WaitUntil(core.Clickable(goLoc), 0) {
		t.Error("Disabled button must not be clickable")
	}
	if !d.WaitUntil(core.VisibilityOf(goLoc), time.Second) {
		t.Error("Expected button to be visible")
	}

	sel, err := d.FindOne(core.MustParseLocator("id=color"))
	if err != nil {
		t.Fatalf("FindOne failed: %v", err)
	}
	if err := d.SelectOption(sel, "Blue"); err != nil {
		t.Fatalf("SelectOption failed: %v", err)
	}
	if v, _ := d.Attribute(sel, "value"); v != "Blue" {
		t.Errorf("Expected 'Blue' selected, got %q", v)
	}

	w, h, err := d.WindowSize()
	if err != nil || w == 0 || h == 0 {
		t.Errorf("WindowSize() = %d, %d, %v", w, h, err)
	}
}

func TestDriver_BrowserAlerts(t *testing.T) {
	d := launchForTest(t)

	if err := d.AcceptAlert(); !errors.Is(err, core.ErrNoAlert) {
		t.Errorf("Expected ErrNoAlert, got %v", err)
	}

	_, err := d.Page().Eval(`() => setTimeout(() => { document.title = prompt("Your name?") }, 0)`)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, err := d.AlertText(); err == nil || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if text, err := d.AlertText(); err != nil || text != "Your name?" {
		t.Fatalf("AlertText() = %q, %v", text, err)
	}
	if err := d.SendAlertText("Sample"); err != nil {
		t.Fatalf("SendAlertText failed: %v", err)
	}
	if err := d.AcceptAlert(); err != nil {
		t.Fatalf("AcceptAlert failed: %v", err)
	}
	res, err := d.Page().Eval(`() => document.title`)
	if err != nil || res.Value.Str() != "Sample" {
		t.Errorf("Expected title 'Sample', got %v, %v", res, err)
	}
}
