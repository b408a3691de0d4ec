package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/sirius/pkg/core"
	"github.com/devicelab-dev/sirius/pkg/locator"
	"github.com/devicelab-dev/sirius/pkg/ui"
)

var resolveCommand = &cli.Command{
	Name:      "resolve",
	Usage:     "Print the locators each page resolves to on a platform",
	ArgsUsage: "[catalogue-file]...",
	Description: `Load page catalogues and print, for every page, the locator each field
resolves to on --platform. Fields with no locator for the platform are
marked as unbound. No driver is needed.

Examples:
  sirius --platform ios_native resolve pages/*.yaml
  sirius resolve --page Login pages/login.yaml`,
	Flags: []cli.Flag{
		&cli.StringSliceFlag{
			Name:  "page",
			Usage: "Only print these page aliases",
		},
	},
	Action: runResolve,
}

func runResolve(c *cli.Context) error {
	ws, err := prepare(c)
	if err != nil {
		return err
	}

	schemas, err := selectSchemas(ws.catalog, c.StringSlice("page"))
	if err != nil {
		return err
	}

	out := c.App.Writer
	fmt.Fprintf(out, "Platform: %s\n", ws.cfg.Platform)
	for _, s := range schemas {
		fmt.Fprintln(out)
		if err := printSchema(out, s, ws.cfg.Platform, ""); err != nil {
			return err
		}
	}
	return nil
}

// selectSchemas returns the named schemas, or all of them sorted by alias.
func selectSchemas(c *ui.Catalog, aliases []string) ([]*ui.Schema, error) {
	if len(aliases) == 0 {
		return c.Schemas(), nil
	}
	out := make([]*ui.Schema, 0, len(aliases))
	for _, alias := range aliases {
		s, err := c.Lookup(alias)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func printSchema(w io.Writer, s *ui.Schema, p core.Platform, indent string) error {
	header := s.Alias()
	if parent := s.Extended(); parent != nil {
		header += " (extends " + parent.Alias() + ")"
	}
	if s.Frame() != "" {
		header += " in frame " + s.Frame()
	}
	fmt.Fprintf(w, "%s%s\n", indent, header)

	fields, err := s.AllFields()
	if err != nil {
		return err
	}
	for _, f := range fields {
		kind := f.Kind
		if kind == "" {
			kind = ui.KindControl
		}
		d, ok := locator.Resolve(f.Descriptors, p)
		if !ok {
			fmt.Fprintf(w, "%s  %s [%s]: unbound on %s\n", indent, f.Name, kind, p)
			continue
		}
		fmt.Fprintf(w, "%s  %s [%s]: %s\n", indent, f.Name, kind, d.Describe())
		if subs := locator.ResolveSubItems(f.SubItems, p); len(subs) > 0 {
			names := make([]string, 0, len(subs))
			for name := range subs {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(w, "%s    .%s [%s]: %s\n", indent, name, subs[name].EffectiveKind(), subs[name].Locator)
			}
		}
	}

	sections, err := s.AllSections()
	if err != nil {
		return err
	}
	for _, sec := range sections {
		fmt.Fprintf(w, "%s  %s:\n", indent, sec.Name)
		if err := printSchema(w, sec.Schema, p, indent+strings.Repeat(" ", 4)); err != nil {
			return err
		}
	}
	return nil
}
