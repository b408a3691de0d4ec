package catalog_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/devicelab-dev/sirius/pkg/catalog"
	"github.com/devicelab-dev/sirius/pkg/core"
	"github.com/devicelab-dev/sirius/pkg/driver/mock"
	"github.com/devicelab-dev/sirius/pkg/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, content string) []*catalog.PageDoc {
	t.Helper()
	docs, err := catalog.Parse([]byte(content), "pages.yaml")
	require.NoError(t, err)
	return docs
}

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestBuild_ForwardReferences(t *testing.T) {
	docs := parse(t, `
alias: Login
extends: Base
fields:
  - name: user
    kind: edit
    locator: id=user
sections:
  - name: header
    page: Header
---
alias: Base
fields:
  - name: logo
    locator: id=logo
---
alias: Header
fields:
  - name: title
    locator: id=title
`)

	schemas, err := catalog.Build(docs)
	require.NoError(t, err)
	require.Len(t, schemas, 3)

	login := schemas[0]
	assert.Equal(t, "Login", login.Alias())
	require.NotNil(t, login.Extended())
	assert.Same(t, schemas[1], login.Extended())

	fields, err := login.AllFields()
	require.NoError(t, err)
	require.Len(t, fields, 2)
	assert.Equal(t, "logo", fields[0].Name)
	assert.Equal(t, "user", fields[1].Name)
	assert.Equal(t, ui.KindEdit, fields[1].Kind)

	require.Len(t, login.Sections(), 1)
	assert.Same(t, schemas[2], login.Sections()[0].Schema)
}

func TestBuild_UnknownReference(t *testing.T) {
	docs := parse(t, "alias: Login\nextends: Missing\n")

	_, err := catalog.Build(docs)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrUnknownAlias))
	assert.Contains(t, err.Error(), `pages.yaml:1: page "Missing" is not defined`)
}

func TestBuild_UnknownNavigateSource(t *testing.T) {
	docs := parse(t, "alias: Login\nnavigate:\n  from: Home\n  click: signIn\n")

	_, err := catalog.Build(docs)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrUnknownAlias), "got %v", err)
	assert.Contains(t, err.Error(), `page "Home" is not defined`)
}

func TestBuild_NavigateChain(t *testing.T) {
	docs := parse(t, `
alias: Home
fields:
  - name: menu
    locator: id=menu
---
alias: Menu
navigate:
  from: Home
  click: menu
---
alias: Settings
navigate:
  from: Menu
  click: settings
`)
	_, err := catalog.Build(docs)
	assert.NoError(t, err)
}

func TestBuild_Cycles(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"extends", "alias: A\nextends: B\n---\nalias: B\nextends: A\n"},
		{"self", "alias: A\nextends: A\n"},
		{"sections", "alias: A\nsections:\n  - name: b\n    page: B\n---\nalias: B\nsections:\n  - name: a\n    page: A\n"},
		{"navigate", "alias: A\nnavigate:\n  from: B\n  click: go\n---\nalias: B\nnavigate:\n  from: a\n  click: go\n"},
		{"navigate self", "alias: A\nnavigate:\n  from: A\n  click: go\n"},
		{"navigate inherited", "alias: Base\nnavigate:\n  from: Child\n  click: go\n---\nalias: Child\nextends: Base\n"},
		{"navigate chain", "alias: A\nnavigate:\n  from: B\n  click: go\n---\nalias: B\nnavigate:\n  from: C\n  click: go\n---\nalias: C\nnavigate:\n  from: B\n  click: go\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := catalog.Build(parse(t, tt.content))
			require.Error(t, err)
			assert.True(t, errors.Is(err, core.ErrCyclicPage), "got %v", err)
		})
	}
}

func TestBuild_DuplicateAlias(t *testing.T) {
	_, err := catalog.Build(parse(t, "alias: Home\n---\nalias: home\n"))

	var pe *catalog.ParseError
	require.True(t, errors.As(err, &pe), "got %v", err)
	assert.Equal(t, 3, pe.Line)
	assert.Contains(t, pe.Message, "already defined at pages.yaml:1")
}

func TestBuild_ValidationError(t *testing.T) {
	tests := []struct {
		name    string
		content string
		target  error
	}{
		{"unknown kind", "alias: P\nfields:\n  - name: x\n    kind: slider\n    locator: id=x\n", core.ErrUnknownKind},
		{"bad locator", "alias: P\nfields:\n  - name: x\n    locator: \"id=\"\n", core.ErrInvalidLocator},
		{"duplicate field", "alias: P\nfields:\n  - name: x\n    locator: id=x\n  - name: x\n    locator: id=y\n", core.ErrInvalidSchema},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := catalog.Build(parse(t, tt.content))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.target), "got %v", err)
			assert.True(t, core.IsConfigError(err))
		})
	}
}

func TestLoadFiles_AcrossFiles(t *testing.T) {
	dir := t.TempDir()
	a := write(t, dir, "a.yaml", "alias: Login\nextends: Base\nfields:\n  - name: user\n    locator: id=user\n")
	b := write(t, dir, "b.yaml", "alias: Base\nfields:\n  - name: logo\n    locator: id=logo\n")

	c, err := catalog.LoadFiles(a, b)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	s, err := c.Lookup("login")
	require.NoError(t, err)
	assert.Equal(t, "Login", s.Alias())
}

func TestLoadInto_ParseErrorRegistersNothing(t *testing.T) {
	dir := t.TempDir()
	good := write(t, dir, "good.yaml", "alias: Home\n")
	bad := write(t, dir, "bad.yaml", "fields: []\n")

	c := ui.NewCatalog()
	err := catalog.LoadInto(c, good, bad)
	require.Error(t, err)
	assert.Equal(t, 0, c.Len())
}

func TestLoadInto_DuplicateRegistersNothing(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "pages.yaml", "alias: A\n---\nalias: B\n")

	c := ui.NewCatalog(ui.Define("B"))
	err := catalog.LoadInto(c, path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrInvalidSchema), "got %v", err)
	assert.Equal(t, 1, c.Len())
	_, err = c.Lookup("A")
	assert.True(t, errors.Is(err, core.ErrUnknownAlias), "A must not be registered, got %v", err)
}

func TestNavigate_ClicksThroughSourcePage(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "pages.yaml", `
alias: Home
fields:
  - name: signIn
    locator: id=signin
---
alias: Login
fields:
  - name: user
    kind: edit
    locator: id=user
navigate:
  from: Home
  click: signIn
`)
	c, err := catalog.LoadFiles(path)
	require.NoError(t, err)

	d := mock.New(mock.Config{})
	signIn := d.Add("id=signin")
	signIn.OnClick = func() { d.Add("id=user") }

	scope := ui.NewScope(d, core.PlatformChrome,
		ui.WithCatalog(c), ui.WithTimeouts(ui.Timeouts{Poll: time.Millisecond}))

	page, err := scope.Navigate("Login")
	require.NoError(t, err)
	assert.Equal(t, "Login", page.Alias())
	assert.Equal(t, 1, signIn.Clicks)

	current, err := scope.Current()
	require.NoError(t, err)
	assert.Same(t, page, current)
}

func TestNavigate_FromCurrentPage(t *testing.T) {
	docs := parse(t, `
alias: Home
fields:
  - name: next
    locator: id=next
---
alias: Details
fields:
  - name: body
    locator: id=body
navigate:
  click: next
`)
	schemas, err := catalog.Build(docs)
	require.NoError(t, err)

	d := mock.New(mock.Config{})
	next := d.Add("id=next")
	next.OnClick = func() { d.Add("id=body") }
	scope := ui.NewScope(d, core.PlatformChrome,
		ui.WithCatalog(ui.NewCatalog(schemas...)), ui.WithTimeouts(ui.Timeouts{Poll: time.Millisecond}))

	// No current page yet
	_, err = scope.Navigate("Details")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrNoCurrentPage))

	home, err := scope.ForName("Home")
	require.NoError(t, err)
	scope.SetCurrent(home)

	page, err := scope.Navigate("Details")
	require.NoError(t, err)
	assert.Equal(t, "Details", page.Alias())
	assert.Equal(t, 1, next.Clicks)
}
