package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/devicelab-dev/sirius/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const loginYAML = `
alias: Login
extends: Base
frame: "#app"
fields:
  - name: user
    alias: User name
    kind: edit
    locators:
      - "#user"
      - platform: android_native
        locator: id=com.app:id/user
        scrollTo: User name
        scrollDirection: BOTTOM_ONLY
  - name: submit
    locator: "css=button[type=submit]"
sections:
  - name: header
    page: Header
navigate:
  from: Home
  click: signIn
`

func TestParse_Page(t *testing.T) {
	pages, err := Parse([]byte(loginYAML), "login.yaml")
	require.NoError(t, err)
	require.Len(t, pages, 1)

	p := pages[0]
	assert.Equal(t, "Login", p.Alias)
	assert.Equal(t, "Base", p.Extends)
	assert.Equal(t, "#app", p.Frame)
	assert.Equal(t, "login.yaml", p.SourcePath)
	assert.Equal(t, 2, p.Line)

	require.Len(t, p.Fields, 2)
	user := p.Fields[0]
	assert.Equal(t, "User name", user.Alias)
	assert.Equal(t, "edit", user.Kind)
	descs := user.Descriptors()
	require.Len(t, descs, 2)
	assert.Equal(t, core.PlatformAny, descs[0].Platform)
	assert.Equal(t, core.PlatformAndroidNative, descs[1].Platform)
	assert.Equal(t, "User name", descs[1].ScrollTo)
	assert.Equal(t, core.ScrollBottomOnly, descs[1].ScrollDirection)

	submit := p.Fields[1]
	require.Len(t, submit.Descriptors(), 1)
	assert.Equal(t, "css=button[type=submit]", submit.Descriptors()[0].Locator)

	require.Len(t, p.Sections, 1)
	assert.Equal(t, SectionDoc{Name: "header", Page: "Header", Line: 18}, p.Sections[0])
	require.NotNil(t, p.Navigate)
	assert.Equal(t, NavigateDoc{From: "Home", Click: "signIn"}, *p.Navigate)
}

func TestParse_MultipleDocuments(t *testing.T) {
	content := `
alias: One
---
# blank
---
alias: Two
fields:
  - name: a
    locator: id=a
`
	pages, err := Parse([]byte(content), "pages.yaml")
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, "One", pages[0].Alias)
	assert.Equal(t, "Two", pages[1].Alias)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		line    int
		message string
	}{
		{"empty", "", 1, "empty catalogue file"},
		{"not a mapping", "- a\n- b\n", 1, "page must be a mapping"},
		{"no alias", "fields: []\n", 1, "page requires an alias"},
		{"field without name", "alias: P\nfields:\n  - locator: id=x\n", 3, "field requires a name"},
		{"field without locator", "alias: P\nfields:\n  - name: x\n", 3, `field "x" requires a locator`},
		{"section without page", "alias: P\nsections:\n  - name: s\n", 3, "section requires a name and a page"},
		{"navigate without click", "alias: P\nnavigate:\n  from: Home\n", 1, "navigate requires a field to click"},
		{"unknown platform", "alias: P\nfields:\n  - name: x\n    locators:\n      - platform: windows_phone\n        locator: id=x\n", 5, `unknown platform "windows_phone"`},
		{"unknown scroll direction", "alias: P\nfields:\n  - name: x\n    locators:\n      - locator: id=x\n        scrollTo: More\n        scrollDirection: sideways\n", 7, `invalid scroll direction: "sideways"`},
		{"descriptor without locator", "alias: P\nfields:\n  - name: x\n    locators:\n      - platform: chrome\n", 5, "descriptor requires a locator"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.content), "p.yaml")
			var pe *ParseError
			require.True(t, errors.As(err, &pe), "expected ParseError, got %v", err)
			assert.Equal(t, "p.yaml", pe.Path)
			assert.Equal(t, tt.line, pe.Line)
			assert.Equal(t, tt.message, pe.Message)
		})
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("alias: [unclosed"), "bad.yaml")
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Contains(t, pe.Message, "invalid YAML")
}

func TestParse_DescriptorWithoutLocator(t *testing.T) {
	content := "alias: P\nfields:\n  - name: x\n    locators:\n      - platform: chrome\n"
	_, err := Parse([]byte(content), "p.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "descriptor requires a locator")
}

func TestParseError_Error(t *testing.T) {
	assert.Equal(t, "a.yaml:3: boom", (&ParseError{Path: "a.yaml", Line: 3, Message: "boom"}).Error())
	assert.Equal(t, "a.yaml: boom", (&ParseError{Path: "a.yaml", Message: "boom"}).Error())
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "login.yaml")
	require.NoError(t, os.WriteFile(path, []byte(loginYAML), 0644))

	pages, err := ParseFile(path)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, path, pages[0].SourcePath)

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
