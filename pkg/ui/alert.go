package ui

import (
	"fmt"
	"time"

	"github.com/devicelab-dev/sirius/pkg/core"
	"github.com/devicelab-dev/sirius/pkg/logger"
)

// Alert is the browser dialog raised from a page. Closing it hands
// control back to that page.
type Alert struct {
	parent *Page
}

// Alert returns the dialog bound to p.
func (p *Page) Alert() *Alert {
	return &Alert{parent: p}
}

// Parent returns the page the dialog was raised from.
func (a *Alert) Parent() *Page { return a.parent }

// IsPresent waits up to timeout for a dialog to open.
func (a *Alert) IsPresent(timeout time.Duration) bool {
	if timeout < 0 {
		timeout = a.parent.scope.timeouts.Default
	}
	return a.parent.Driver().WaitUntil(core.AlertPresent(), timeout)
}

func (a *Alert) await() error {
	if !a.IsPresent(DefaultTimeout) {
		return core.ErrNoAlert.WithMessage(
			fmt.Sprintf("no alert appeared over page '%s'", a.parent.Alias()))
	}
	return nil
}

// Text returns the dialog message.
func (a *Alert) Text() (string, error) {
	if err := a.await(); err != nil {
		return "", err
	}
	return a.parent.Driver().AlertText()
}

// Accept presses OK and returns the parent page.
func (a *Alert) Accept() (*Page, error) {
	if err := a.await(); err != nil {
		return nil, err
	}
	logger.Debug("accept alert over %s", a.parent.Path())
	if err := a.parent.Driver().AcceptAlert(); err != nil {
		return nil, err
	}
	return a.parent, nil
}

// Dismiss presses Cancel and returns the parent page.
func (a *Alert) Dismiss() (*Page, error) {
	if err := a.await(); err != nil {
		return nil, err
	}
	logger.Debug("dismiss alert over %s", a.parent.Path())
	if err := a.parent.Driver().DismissAlert(); err != nil {
		return nil, err
	}
	return a.parent, nil
}

// Prompt enters text into a prompt dialog and accepts it.
func (a *Alert) Prompt(text string) (*Page, error) {
	if err := a.await(); err != nil {
		return nil, err
	}
	if err := a.parent.Driver().SendAlertText(text); err != nil {
		return nil, err
	}
	return a.Accept()
}
