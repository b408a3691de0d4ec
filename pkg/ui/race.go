package ui

import (
	"time"

	"github.com/devicelab-dev/sirius/pkg/logger"
	"github.com/devicelab-dev/sirius/pkg/op"
)

// CurrentFrom returns the first of pages that is current, checking each
// once per round for up to tries rounds with a pause of one poll interval
// between rounds. It returns nil when none appeared.
func CurrentFrom(pages []*Page, tries int) *Page {
	if len(pages) == 0 {
		return nil
	}
	poll := pages[0].scope.timeouts.Poll
	for round := 0; round < tries; round++ {
		if round > 0 {
			time.Sleep(poll)
		}
		for _, p := range pages {
			if p.IsCurrent(0) {
				logger.Debug("page %s is current (round %d)", p.Alias(), round+1)
				return p
			}
		}
	}
	return nil
}

// CurrentFromList builds a page for every schema and races them as
// CurrentFrom does. Build errors are returned before any driver call.
func (s *Scope) CurrentFromList(schemas []*Schema, tries int) (*Page, error) {
	pages := make([]*Page, 0, len(schemas))
	for _, sc := range schemas {
		p, err := s.Init(sc)
		if err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return CurrentFrom(pages, tries), nil
}

// FirstAvailable returns the first control that exists, checking each once
// per round for up to tries rounds. It returns nil when none appeared.
func FirstAvailable(controls []Control, tries int) Control {
	if len(controls) == 0 {
		return nil
	}
	poll := controls[0].Page().scope.timeouts.Poll
	for round := 0; round < tries; round++ {
		if round > 0 {
			time.Sleep(poll)
		}
		for _, c := range controls {
			if c.Exists(0) {
				return c
			}
		}
	}
	return nil
}

// AllAre reports whether pred holds for every control.
func AllAre(controls []Control, pred op.Predicate[Control]) bool {
	return op.AllOf(controls, pred)
}

// AnyIs reports whether pred holds for at least one control.
func AnyIs(controls []Control, pred op.Predicate[Control]) bool {
	return op.AnyOf(controls, pred)
}
