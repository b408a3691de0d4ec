package ui

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/devicelab-dev/sirius/pkg/core"
	"github.com/devicelab-dev/sirius/pkg/locator"
)

// Kind names the capability set of a field: which concrete control the
// factory builds for it.
type Kind string

// Built-in kinds.
const (
	KindControl  Kind = "control"
	KindEdit     Kind = "edit"
	KindCheckBox Kind = "checkbox"
	KindRadio    Kind = "radio"
	KindSelect   Kind = "select"
	KindTable    Kind = "table"
)

// Existence is the wait-based state protocol. Every query waits up to
// timeout (DefaultTimeout for the scope default) and never fails.
type Existence interface {
	Exists(timeout time.Duration) bool
	Disappears(timeout time.Duration) bool
	Visible(timeout time.Duration) bool
	Invisible(timeout time.Duration) bool
	Enabled(timeout time.Duration) bool
	Disabled(timeout time.Duration) bool
}

// Interactive controls accept input and expose their content.
// Each call first requires the element to exist within the default timeout.
type Interactive interface {
	Click() error
	SendKeys(text string) error
	Clear() error
	Text() (string, error)
	Value() (string, error)
}

// Control is the common capability of every field.
type Control interface {
	Existence
	Interactive

	Base() *Element
	Name() string
	Kind() Kind
	Page() *Page
	Locator() core.Locator
	LocatorText() string
	Descriptor() locator.Descriptor
}

// Editable controls take a value from a step: typed text, a check state
// or an option, depending on the control.
type Editable interface {
	Control
	SetValue(value string) error
}

// Listable controls address their rows by position.
type Listable interface {
	Control
	FullItemLocator() core.Locator
	ItemsCount() (int, error)
	Item(index int) *Element
	IsEmpty(timeout time.Duration) bool
	IsNotEmpty(timeout time.Duration) bool
}

// Constructor wraps a resolved element in a concrete control.
type Constructor func(base *Element) Control

var (
	kindsMu sync.RWMutex
	kinds   = map[Kind]Constructor{
		KindControl:  func(base *Element) Control { return base },
		KindEdit:     func(base *Element) Control { return &Edit{Element: base} },
		KindCheckBox: func(base *Element) Control { return &CheckBox{Element: base} },
		KindRadio:    func(base *Element) Control { return &RadioButton{Element: base} },
		KindSelect:   func(base *Element) Control { return &SelectList{Element: base} },
		KindTable:    func(base *Element) Control { return &Table{Element: base} },
	}
)

// RegisterKind adds or replaces the constructor of a kind.
func RegisterKind(kind Kind, ctor Constructor) {
	kindsMu.Lock()
	defer kindsMu.Unlock()
	kinds[kind] = ctor
}

// Kinds returns the registered kinds, sorted.
func Kinds() []Kind {
	kindsMu.RLock()
	defer kindsMu.RUnlock()
	out := make([]Kind, 0, len(kinds))
	for k := range kinds {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// construct builds the control of kind around base.
func construct(kind Kind, base *Element) (Control, error) {
	if kind == "" {
		kind = KindControl
	}
	kindsMu.RLock()
	ctor, ok := kinds[kind]
	kindsMu.RUnlock()
	if !ok {
		return nil, core.ErrUnknownKind.WithMessage(fmt.Sprintf("no constructor registered for kind %q (field %q)", kind, base.name))
	}
	base.kind = kind
	ctl := ctor(base)
	base.self = ctl
	return ctl, nil
}
