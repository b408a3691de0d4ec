// Package catalog loads declarative page schemas from YAML files.
//
// A catalogue file holds one or more pages separated by "---":
//
//	alias: Login
//	extends: Base
//	frame: "css=#app"
//	fields:
//	  - name: user
//	    kind: edit
//	    locators:
//	      - "css=#user"
//	      - platform: android_native
//	        locator: id=com.app:id/user
//	        scrollTo: User name
//	sections:
//	  - name: header
//	    page: Header
//	navigate:
//	  from: Home
//	  click: signIn
package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/devicelab-dev/sirius/pkg/core"
	"github.com/devicelab-dev/sirius/pkg/locator"
	"gopkg.in/yaml.v3"
)

// ParseError represents a parsing error with location info.
type ParseError struct {
	Path    string
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// PageDoc is one page as written in a catalogue file.
type PageDoc struct {
	Alias    string       `yaml:"alias"`
	Extends  string       `yaml:"extends"`
	Frame    string       `yaml:"frame"`
	Fields   []FieldDoc   `yaml:"fields"`
	Sections []SectionDoc `yaml:"sections"`
	Navigate *NavigateDoc `yaml:"navigate"`

	SourcePath string `yaml:"-"`
	Line       int    `yaml:"-"`
}

// FieldDoc is one element field. Locator is shorthand for a single
// descriptor valid on every platform.
type FieldDoc struct {
	Name     string               `yaml:"name"`
	Alias    string               `yaml:"alias"`
	Kind     string               `yaml:"kind"`
	Locator  string               `yaml:"locator"`
	Locators []locator.Descriptor `yaml:"locators"`
	SubItems []locator.SubItem    `yaml:"subItems"`

	Line int `yaml:"-"`
}

// SectionDoc nests the page registered as Page under Name.
type SectionDoc struct {
	Name string `yaml:"name"`
	Page string `yaml:"page"`

	Line int `yaml:"-"`
}

// NavigateDoc opens a page by clicking a field of another page. With an
// empty From the field is looked up on the scope's current page.
type NavigateDoc struct {
	From  string `yaml:"from"`
	Click string `yaml:"click"`
}

// UnmarshalYAML records the line of the field.
func (f *FieldDoc) UnmarshalYAML(node *yaml.Node) error {
	type rawField FieldDoc
	var raw rawField
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*f = FieldDoc(raw)
	f.Line = node.Line
	return nil
}

// UnmarshalYAML records the line of the section.
func (s *SectionDoc) UnmarshalYAML(node *yaml.Node) error {
	type rawSection SectionDoc
	var raw rawSection
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*s = SectionDoc(raw)
	s.Line = node.Line
	return nil
}

// Descriptors returns the declared descriptors, with the Locator
// shorthand first.
func (f FieldDoc) Descriptors() []locator.Descriptor {
	var out []locator.Descriptor
	if f.Locator != "" {
		out = append(out, locator.Any(f.Locator))
	}
	return append(out, f.Locators...)
}

// ParseFile parses a single catalogue file.
func ParseFile(path string) ([]*PageDoc, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- path is user-provided catalogue file
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return Parse(data, path)
}

// Parse parses catalogue content. Empty documents are skipped.
func Parse(data []byte, sourcePath string) ([]*PageDoc, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))

	var pages []*PageDoc
	for {
		var node yaml.Node
		err := dec.Decode(&node)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &ParseError{
				Path:    sourcePath,
				Message: fmt.Sprintf("invalid YAML: %v", err),
			}
		}
		if len(node.Content) == 0 || isNull(node.Content[0]) {
			continue
		}

		root := node.Content[0]
		if root.Kind != yaml.MappingNode {
			return nil, &ParseError{
				Path:    sourcePath,
				Line:    root.Line,
				Message: "page must be a mapping",
			}
		}

		page := &PageDoc{SourcePath: sourcePath, Line: root.Line}
		if err := root.Decode(page); err != nil {
			pe := &ParseError{
				Path:    sourcePath,
				Line:    root.Line,
				Message: err.Error(),
			}
			var ye *core.YAMLError
			if errors.As(err, &ye) {
				pe.Line = ye.Line
				pe.Message = ye.Err.Error()
			}
			return nil, pe
		}
		if err := page.check(); err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}

	if len(pages) == 0 {
		return nil, &ParseError{
			Path:    sourcePath,
			Line:    1,
			Message: "empty catalogue file",
		}
	}
	return pages, nil
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null"
}

// check validates what can be checked without the rest of the catalogue.
func (p *PageDoc) check() error {
	if p.Alias == "" {
		return p.errorf(p.Line, "page requires an alias")
	}
	for _, f := range p.Fields {
		if f.Name == "" {
			return p.errorf(f.Line, "field requires a name")
		}
		if len(f.Descriptors()) == 0 {
			return p.errorf(f.Line, fmt.Sprintf("field %q requires a locator", f.Name))
		}
	}
	for _, s := range p.Sections {
		if s.Name == "" || s.Page == "" {
			return p.errorf(s.Line, "section requires a name and a page")
		}
	}
	if p.Navigate != nil && p.Navigate.Click == "" {
		return p.errorf(p.Line, "navigate requires a field to click")
	}
	return nil
}

func (p *PageDoc) errorf(line int, msg string) *ParseError {
	return &ParseError{Path: p.SourcePath, Line: line, Message: msg}
}
