package core

import (
	"fmt"
	"strings"
)

// Strategy names a locator strategy understood by the driver.
// Values follow the W3C WebDriver / Appium "using" field.
type Strategy string

// Locator strategies.
const (
	ByXPath           Strategy = "xpath"
	ByID              Strategy = "id"
	ByName            Strategy = "name"
	ByCSS             Strategy = "css selector"
	ByClassName       Strategy = "class name"
	ByAccessibilityID Strategy = "accessibility id"
	ByUIAutomator     Strategy = "-android uiautomator"
	ByIOSPredicate    Strategy = "-ios predicate string"
)

// prefixes maps the textual locator prefix to its strategy.
// Order matters only for documentation; prefixes are disjoint.
var prefixes = []struct {
	prefix   string
	strategy Strategy
}{
	{"xpath=", ByXPath},
	{"id=", ByID},
	{"name=", ByName},
	{"css=", ByCSS},
	{"class=", ByClassName},
	{"accessibility=", ByAccessibilityID},
	{"uiautomator=", ByUIAutomator},
	{"predicate=", ByIOSPredicate},
}

// Locator is a parsed locator expression.
type Locator struct {
	Strategy Strategy
	Value    string
}

// ParseLocator turns a raw locator string into a Locator.
//
// Recognized forms:
//
//	xpath=//a, //a, (//a)[1]   -> xpath
//	id=x, name=x, css=x, class=x
//	accessibility=x, uiautomator=x, predicate=x
//	anything else              -> id
func ParseLocator(raw string) (Locator, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Locator{}, ErrInvalidLocator.WithMessage("empty locator")
	}
	if strings.HasPrefix(s, "/") || strings.HasPrefix(s, "(") {
		return Locator{Strategy: ByXPath, Value: s}, nil
	}
	for _, p := range prefixes {
		if strings.HasPrefix(s, p.prefix) {
			value := strings.TrimSpace(s[len(p.prefix):])
			if value == "" {
				return Locator{}, ErrInvalidLocator.WithMessage(fmt.Sprintf("empty value in locator %q", raw))
			}
			return Locator{Strategy: p.strategy, Value: value}, nil
		}
	}
	return Locator{Strategy: ByID, Value: s}, nil
}

// MustParseLocator is ParseLocator for static expressions; it panics on error.
func MustParseLocator(raw string) Locator {
	loc, err := ParseLocator(raw)
	if err != nil {
		panic(err)
	}
	return loc
}

// XPath builds an xpath locator.
func XPath(expr string) Locator {
	return Locator{Strategy: ByXPath, Value: expr}
}

// Text returns the locator value without its strategy prefix.
func (l Locator) Text() string {
	return l.Value
}

// IsXPath reports whether l uses the xpath strategy.
func (l Locator) IsXPath() bool {
	return l.Strategy == ByXPath
}

// IsZero reports whether l is the empty locator.
func (l Locator) IsZero() bool {
	return l.Strategy == "" && l.Value == ""
}

// String renders l in prefixed form, e.g. "css=#a".
func (l Locator) String() string {
	for _, p := range prefixes {
		if p.strategy == l.Strategy {
			return p.prefix + l.Value
		}
	}
	return string(l.Strategy) + "=" + l.Value
}

// QuoteXPath quotes s as an xpath string literal, using concat() when
// s holds both quote kinds.
func QuoteXPath(s string) string {
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	parts := strings.Split(s, `"`)
	quoted := make([]string, 0, 2*len(parts))
	for i, part := range parts {
		if i > 0 {
			quoted = append(quoted, `'"'`)
		}
		if part != "" {
			quoted = append(quoted, `"`+part+`"`)
		}
	}
	return "concat(" + strings.Join(quoted, ",") + ")"
}
