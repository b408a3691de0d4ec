package ui

import (
	"fmt"
	"time"

	"github.com/devicelab-dev/sirius/pkg/core"
	"github.com/devicelab-dev/sirius/pkg/locator"
	"github.com/devicelab-dev/sirius/pkg/logger"
)

// Scroll-search tuning.
const (
	// ScrollableXPath matches the first scrollable container on native screens.
	ScrollableXPath = "(//*[@scrollable='true'])[1]"
	// MaxSwipes bounds every swipe loop.
	MaxSwipes = 50

	scrollParts   = 10
	scrollEndPart = 9
)

var (
	// SwipeDuration is the time spent moving in one swipe.
	SwipeDuration = 300 * time.Millisecond
	// SwipePause is the hold after moving, before release.
	SwipePause = time.Second
)

// TextLocator matches an element by exact or partial text, inner text or
// content description.
func TextLocator(text string) core.Locator {
	lit := core.QuoteXPath(text)
	return core.XPath(fmt.Sprintf(
		"//*[@text=%[1]s or contains(@text,%[1]s) or contains(text(),%[1]s) or text()=%[1]s or contains(@content-desc,%[1]s)]",
		lit))
}

// TextControl returns a handle on the element showing text.
func (p *Page) TextControl(text string) *Element {
	return p.handle(fmt.Sprintf("text %q", text), TextLocator(text))
}

// Scrollable returns a handle on the first scrollable container.
func (p *Page) Scrollable() *Element {
	return p.handle("scrollable", core.XPath(ScrollableXPath))
}

func (p *Page) handle(name string, loc core.Locator) *Element {
	e := &Element{
		page:     p,
		name:     name,
		kind:     KindControl,
		desc:     locator.Any(loc.String()),
		loc:      loc,
		subItems: map[string]locator.SubItem{},
	}
	e.self = e
	return e
}

// swipeArea returns the scrollable container's bounds clipped to the
// window, or the whole window when there is no container on screen.
func (p *Page) swipeArea() (core.Bounds, error) {
	d := p.Driver()
	w, h, err := d.WindowSize()
	if err != nil {
		return core.Bounds{}, err
	}
	screen := core.Bounds{Width: w, Height: h}
	ref, err := d.FindOne(core.XPath(ScrollableXPath))
	if err != nil {
		if core.IsNotFound(err) {
			return screen, nil
		}
		return core.Bounds{}, err
	}
	area, err := d.Rect(ref)
	if err != nil {
		return core.Bounds{}, err
	}
	visible := area.ClipTo(screen)
	if visible.Width == 0 || visible.Height == 0 {
		return screen, nil
	}
	return visible, nil
}

// swipeGesture computes the drag over area. towardStart reveals content
// above (vertical) or to the left (horizontal): the finger moves from the
// 1/10 line to the 9/10 line.
func swipeGesture(area core.Bounds, vertical, towardStart bool) core.Gesture {
	cx, cy := area.Center()
	near := func(origin, size int) int { return origin + size/scrollParts }
	far := func(origin, size int) int { return origin + scrollEndPart*size/scrollParts }

	var from, to core.Point
	if vertical {
		from = core.Point{X: cx, Y: far(area.Y, area.Height)}
		to = core.Point{X: cx, Y: near(area.Y, area.Height)}
	} else {
		from = core.Point{X: far(area.X, area.Width), Y: cy}
		to = core.Point{X: near(area.X, area.Width), Y: cy}
	}
	if towardStart {
		from, to = to, from
	}
	return core.Gesture{From: from, To: to, Duration: SwipeDuration, Pause: SwipePause}
}

// SwipeOnce performs one swipe over the scrollable area.
func (p *Page) SwipeOnce(vertical, towardStart bool) error {
	area, err := p.swipeArea()
	if err != nil {
		return err
	}
	g := swipeGesture(area, vertical, towardStart)
	logger.Debug("swipe %d,%d -> %d,%d", g.From.X, g.From.Y, g.To.X, g.To.Y)
	return p.Driver().PerformGesture(g)
}

// SwipeUntilStable swipes until the page source stops changing, which is
// taken as reaching the edge, or MaxSwipes is reached. It returns the
// number of swipes performed.
func (p *Page) SwipeUntilStable(vertical, towardStart bool) (int, error) {
	d := p.Driver()
	prev := ""
	cur, err := d.PageSource()
	if err != nil {
		return 0, err
	}
	n := 0
	for cur != prev && n < MaxSwipes {
		if err := p.SwipeOnce(vertical, towardStart); err != nil {
			return n, err
		}
		n++
		prev = cur
		if cur, err = d.PageSource(); err != nil {
			return n, err
		}
	}
	return n, nil
}

// ScrollTo brings target on screen, searching edges in the order given by
// dir. It succeeds at once when target is already present.
func (p *Page) ScrollTo(target Control, dir core.ScrollDirection) bool {
	for _, towardTop := range dir.Legs() {
		if p.scrollLeg(target.Locator(), towardTop) {
			return true
		}
	}
	return false
}

// ScrollToText brings text on screen.
func (p *Page) ScrollToText(text string, dir core.ScrollDirection) bool {
	return p.ScrollTo(p.TextControl(text), dir)
}

// scrollLeg swipes toward one edge until target appears or the content
// stops changing. Presence is checked directly so the target's own scroll
// hint is not re-entered.
func (p *Page) scrollLeg(target core.Locator, towardTop bool) bool {
	d := p.Driver()
	tiny := p.scope.timeouts.Tiny
	if d.WaitUntil(core.PresenceOf(target), tiny) {
		return true
	}
	if !d.WaitUntil(core.PresenceOf(core.XPath(ScrollableXPath)), tiny) {
		logger.Debug("no scrollable container, cannot search for %s", target)
		return false
	}
	prev := ""
	cur, err := d.PageSource()
	if err != nil {
		logger.Debug("page source: %v", err)
		return false
	}
	for i := 0; cur != prev && i < MaxSwipes; i++ {
		if err := p.SwipeOnce(true, towardTop); err != nil {
			logger.Debug("swipe: %v", err)
			return false
		}
		if d.WaitUntil(core.PresenceOf(target), tiny) {
			logger.Debug("found %s after %d swipe(s)", target, i+1)
			return true
		}
		prev = cur
		if cur, err = d.PageSource(); err != nil {
			logger.Debug("page source: %v", err)
			return false
		}
	}
	return false
}
