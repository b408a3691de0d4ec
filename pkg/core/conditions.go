package core

import "time"

// DefaultPollInterval is the delay between two evaluations of a wait condition.
const DefaultPollInterval = 200 * time.Millisecond

// Condition is a state check evaluated against a driver.
type Condition func(d Driver) (bool, error)

// Poll evaluates fn immediately and then every interval until it returns
// true or timeout elapses. A non-positive timeout means exactly one evaluation.
func Poll(timeout, interval time.Duration, fn func() bool) bool {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	deadline := time.Now().Add(timeout)
	for {
		if fn() {
			return true
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false
		}
		time.Sleep(min(interval, remaining))
	}
}

// WaitFor runs cond through Poll, treating errors as "not yet".
// Driver implementations use it to satisfy WaitUntil.
func WaitFor(d Driver, cond Condition, timeout, interval time.Duration) bool {
	return Poll(timeout, interval, func() bool {
		ok, err := cond(d)
		return err == nil && ok
	})
}

// PresenceOf holds when at least one element matches loc.
func PresenceOf(loc Locator) Condition {
	return func(d Driver) (bool, error) {
		refs, err := d.FindAll(loc)
		if err != nil {
			return false, err
		}
		return len(refs) > 0, nil
	}
}

// AbsenceOf holds when no element matches loc.
func AbsenceOf(loc Locator) Condition {
	return Not(PresenceOf(loc))
}

// VisibilityOf holds when the first element matching loc is displayed.
func VisibilityOf(loc Locator) Condition {
	return func(d Driver) (bool, error) {
		ref, err := d.FindOne(loc)
		if err != nil {
			return false, err
		}
		return d.Displayed(ref)
	}
}

// InvisibilityOf holds when no element matches loc or the first match is hidden.
func InvisibilityOf(loc Locator) Condition {
	return func(d Driver) (bool, error) {
		refs, err := d.FindAll(loc)
		if err != nil {
			return false, err
		}
		if len(refs) == 0 {
			return true, nil
		}
		shown, err := d.Displayed(refs[0])
		if err != nil {
			return false, err
		}
		return !shown, nil
	}
}

// Clickable holds when the first element matching loc is displayed and enabled.
func Clickable(loc Locator) Condition {
	return func(d Driver) (bool, error) {
		ref, err := d.FindOne(loc)
		if err != nil {
			return false, err
		}
		shown, err := d.Displayed(ref)
		if err != nil || !shown {
			return false, err
		}
		return d.Enabled(ref)
	}
}

// AlertPresent holds while a browser dialog is open.
func AlertPresent() Condition {
	return func(d Driver) (bool, error) {
		if _, err := d.AlertText(); err != nil {
			return false, err
		}
		return true, nil
	}
}

// Not inverts cond. A missing element counts as false for cond,
// so Not(Clickable(loc)) holds for absent elements too.
func Not(cond Condition) Condition {
	return func(d Driver) (bool, error) {
		ok, err := cond(d)
		if err != nil {
			if IsNotFound(err) {
				return true, nil
			}
			return false, err
		}
		return !ok, nil
	}
}
