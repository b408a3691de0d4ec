package core

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Platform identifies the browser or device family a test runs against.
type Platform string

// Supported platforms.
const (
	PlatformChrome        Platform = "chrome"
	PlatformFirefox       Platform = "firefox"
	PlatformIE            Platform = "ie"
	PlatformSafari        Platform = "safari"
	PlatformOpera         Platform = "opera"
	PlatformAndroidNative Platform = "android_native"
	PlatformAndroidWeb    Platform = "android_web"
	PlatformIOSNative     Platform = "ios_native"
	PlatformAny           Platform = "any"
)

var allPlatforms = []Platform{
	PlatformChrome,
	PlatformFirefox,
	PlatformIE,
	PlatformSafari,
	PlatformOpera,
	PlatformAndroidNative,
	PlatformAndroidWeb,
	PlatformIOSNative,
	PlatformAny,
}

// Platforms returns every known platform, PlatformAny last.
func Platforms() []Platform {
	out := make([]Platform, len(allPlatforms))
	copy(out, allPlatforms)
	return out
}

// ParsePlatform maps a platform name to its constant.
// Unknown or empty names resolve to PlatformAny.
func ParsePlatform(name string) Platform {
	p, _ := LookupPlatform(name)
	return p
}

// LookupPlatform is ParsePlatform that also reports whether name is
// known. The empty name is known and means PlatformAny.
func LookupPlatform(name string) (Platform, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return PlatformAny, true
	}
	for _, p := range allPlatforms {
		if string(p) == name {
			return p, true
		}
	}
	return PlatformAny, false
}

// String returns the platform name.
func (p Platform) String() string {
	if p == "" {
		return string(PlatformAny)
	}
	return string(p)
}

// IsAndroidNative reports whether p is the native Android platform.
func (p Platform) IsAndroidNative() bool {
	return p == PlatformAndroidNative
}

// IsIOSNative reports whether p is the native iOS platform.
func (p Platform) IsIOSNative() bool {
	return p == PlatformIOSNative
}

// IsMobile reports whether p runs on a phone or tablet, native or web.
func (p Platform) IsMobile() bool {
	switch p {
	case PlatformAndroidNative, PlatformAndroidWeb, PlatformIOSNative:
		return true
	}
	return false
}

// IsWeb reports whether p renders HTML. Mobile web and "any" qualify.
func (p Platform) IsWeb() bool {
	switch p {
	case PlatformChrome, PlatformFirefox, PlatformIE, PlatformSafari, PlatformOpera,
		PlatformAndroidWeb, PlatformAny:
		return true
	}
	return false
}

// UnmarshalYAML accepts a known platform name as a scalar.
func (p *Platform) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return &YAMLError{Line: node.Line, Err: ErrUnknownPlatform.WithMessage("platform must be a string")}
	}
	parsed, ok := LookupPlatform(node.Value)
	if !ok {
		return &YAMLError{Line: node.Line, Err: ErrUnknownPlatform.WithMessage(
			fmt.Sprintf("unknown platform %q", node.Value))}
	}
	*p = parsed
	return nil
}

// YAMLError is a decoding error tied to a line of the YAML source.
type YAMLError struct {
	Line int
	Err  error
}

func (e *YAMLError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *YAMLError) Unwrap() error { return e.Err }

// ScrollDirection defines the order in which edges are searched during scroll-search.
type ScrollDirection int

const (
	ScrollTopBottom  ScrollDirection = iota // Top first, then bottom (default)
	ScrollTopOnly                           // Only toward the top
	ScrollBottomOnly                        // Only toward the bottom
	ScrollBottomTop                         // Bottom first, then top
)

// String returns the canonical name of the direction.
func (d ScrollDirection) String() string {
	switch d {
	case ScrollTopOnly:
		return "TOP_ONLY"
	case ScrollBottomOnly:
		return "BOTTOM_ONLY"
	case ScrollTopBottom:
		return "TOP_BOTTOM"
	case ScrollBottomTop:
		return "BOTTOM_TOP"
	default:
		return "unknown"
	}
}

// Legs returns the sequence of edges to search: true means toward the top.
func (d ScrollDirection) Legs() []bool {
	switch d {
	case ScrollTopOnly:
		return []bool{true}
	case ScrollBottomOnly:
		return []bool{false}
	case ScrollBottomTop:
		return []bool{false, true}
	default:
		return []bool{true, false}
	}
}

// ParseScrollDirection parses TOP_ONLY, BOTTOM_ONLY, TOP_BOTTOM or BOTTOM_TOP
// (case-insensitive, '-' and '_' interchangeable). Empty input yields TOP_BOTTOM.
func ParseScrollDirection(s string) (ScrollDirection, error) {
	norm := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	switch norm {
	case "", "TOP_BOTTOM":
		return ScrollTopBottom, nil
	case "TOP_ONLY":
		return ScrollTopOnly, nil
	case "BOTTOM_ONLY":
		return ScrollBottomOnly, nil
	case "BOTTOM_TOP":
		return ScrollBottomTop, nil
	}
	return ScrollTopBottom, fmt.Errorf("invalid scroll direction: %q", s)
}

// UnmarshalYAML accepts the direction name as a scalar.
func (d *ScrollDirection) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := ParseScrollDirection(node.Value)
	if err != nil {
		return &YAMLError{Line: node.Line, Err: err}
	}
	*d = parsed
	return nil
}
