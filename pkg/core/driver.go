package core

import "time"

// ElementRef is an opaque reference to a live UI element.
// It is only valid for the Driver that returned it and only until the
// next change of the screen; callers must not keep it across operations.
type ElementRef interface{}

// Driver is the browser/device automation collaborator.
// Implementations: appium (W3C WebDriver over HTTP), rod (Chrome DevTools), mock.
// All calls are synchronous.
type Driver interface {
	// FindOne returns the first element matching loc or an error
	// matching ErrElementNotFound.
	FindOne(loc Locator) (ElementRef, error)
	// FindAll returns all elements matching loc; no match is not an error.
	FindAll(loc Locator) ([]ElementRef, error)

	Click(ref ElementRef) error
	SendKeys(ref ElementRef, text string) error
	Clear(ref ElementRef) error
	SelectOption(ref ElementRef, text string) error

	Attribute(ref ElementRef, name string) (string, error)
	Text(ref ElementRef) (string, error)
	Rect(ref ElementRef) (Bounds, error)
	Displayed(ref ElementRef) (bool, error)
	Enabled(ref ElementRef) (bool, error)

	// WaitUntil evaluates cond until it holds or timeout elapses.
	// Errors from cond count as "not yet".
	WaitUntil(cond Condition, timeout time.Duration) bool

	PerformGesture(g Gesture) error
	WindowSize() (width, height int, err error)
	PageSource() (string, error)

	// SwitchToFrame switches into the frame element; nil returns to the top document.
	SwitchToFrame(ref ElementRef) error
	HideKeyboard() error

	// Alert calls act on the open browser dialog and fail with an error
	// matching ErrNoAlert when none is shown.
	AcceptAlert() error
	DismissAlert() error
	AlertText() (string, error)
	// SendAlertText types into a prompt dialog; the text is submitted by AcceptAlert.
	SendAlertText(text string) error
}

// Bounds represents element position and size
type Bounds struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Center returns the center point of the bounds
func (b Bounds) Center() (int, int) {
	return b.X + b.Width/2, b.Y + b.Height/2
}

// Contains checks if a point is within the bounds
func (b Bounds) Contains(x, y int) bool {
	return x >= b.X && x < b.X+b.Width && y >= b.Y && y < b.Y+b.Height
}

// ClipTo returns the intersection of b and screen. Bounds that do not
// overlap the screen clip to zero width or height.
func (b Bounds) ClipTo(screen Bounds) Bounds {
	var out Bounds
	out.X = max(b.X, screen.X)
	out.Y = max(b.Y, screen.Y)
	out.Width = max(0, min(b.X+b.Width, screen.X+screen.Width)-out.X)
	out.Height = max(0, min(b.Y+b.Height, screen.Y+screen.Height)-out.Y)
	return out
}

// Point is a screen coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Gesture is a single-finger drag from From to To, followed by a pause.
type Gesture struct {
	From     Point
	To       Point
	Duration time.Duration // time spent moving
	Pause    time.Duration // hold after moving, before release
}

// Vector returns the displacement of the gesture.
func (g Gesture) Vector() (dx, dy int) {
	return g.To.X - g.From.X, g.To.Y - g.From.Y
}
