package cli

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/sirius/pkg/action"
	"github.com/devicelab-dev/sirius/pkg/core"
	"github.com/devicelab-dev/sirius/pkg/op"
	"github.com/devicelab-dev/sirius/pkg/state"
	"github.com/devicelab-dev/sirius/pkg/ui"
)

var currentCommand = &cli.Command{
	Name:      "current",
	Usage:     "Connect to the driver and print which page is on screen",
	ArgsUsage: "[catalogue-file]...",
	Description: `Check every page of the catalogue (or the --page subset) against the
live screen, --tries rounds at most, and print the first one that is
current. Exits with status 1 when none is.

Examples:
  sirius --driver rod --url https://example.com current pages/*.yaml
  sirius current --page Login --page Home --tries 10`,
	Flags: []cli.Flag{
		&cli.StringSliceFlag{
			Name:  "page",
			Usage: "Candidate page aliases (default: all pages)",
		},
		&cli.IntFlag{
			Name:  "tries",
			Usage: "Rounds over the candidates before giving up",
			Value: 3,
		},
		&cli.StringSliceFlag{
			Name:    "env",
			Aliases: []string{"e"},
			Usage:   "Scope variables (KEY=VALUE)",
		},
	},
	Action: runCurrent,
}

var checkCommand = &cli.Command{
	Name:      "check",
	Usage:     "Check that one page is current and list its missing fields",
	ArgsUsage: "[catalogue-file]...",
	Description: `Build the page --page, focus its frame and wait up to --timeout (default:
the configured default timeout) for it to become current. Missing fields
are listed on failure and the command exits with status 1.

Each --expect FIELD=PREDICATE[:ARG] is then verified against the page, e.g.
  --expect "user=visible" --expect "total=satisfies:Number(text) > 3"
and each --print FIELD prints the field's text.

Examples:
  sirius --platform chrome --driver rod check --page Login pages/*.yaml`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "page",
			Usage:    "Page alias to check",
			Required: true,
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "How long to wait for the page",
			Value: ui.DefaultTimeout,
		},
		&cli.StringSliceFlag{
			Name:  "expect",
			Usage: "Field predicate to verify (FIELD=PREDICATE[:ARG])",
		},
		&cli.StringSliceFlag{
			Name:  "print",
			Usage: "Print the text of these fields",
		},
		&cli.BoolFlag{
			Name:  "navigate",
			Usage: "Run the page's navigate steps first",
		},
		&cli.StringSliceFlag{
			Name:    "env",
			Aliases: []string{"e"},
			Usage:   "Scope variables (KEY=VALUE)",
		},
	},
	Action: runCheck,
}

func runCurrent(c *cli.Context) error {
	ws, err := prepare(c)
	if err != nil {
		return err
	}
	schemas, err := selectSchemas(ws.catalog, c.StringSlice("page"))
	if err != nil {
		return err
	}

	scope, cleanup, err := ws.newScope(parseEnvVars(c.StringSlice("env")))
	if err != nil {
		return err
	}
	defer cleanup()

	page, err := scope.CurrentFromList(schemas, c.Int("tries"))
	if err != nil {
		return err
	}
	if page == nil {
		return cli.Exit("no page of the catalogue is current", 1)
	}
	fmt.Fprintln(c.App.Writer, page.Alias())
	return nil
}

func runCheck(c *cli.Context) error {
	ws, err := prepare(c)
	if err != nil {
		return err
	}
	expects, err := parseExpectations(c.StringSlice("expect"))
	if err != nil {
		return err
	}

	scope, cleanup, err := ws.newScope(parseEnvVars(c.StringSlice("env")))
	if err != nil {
		return err
	}
	defer cleanup()

	alias := c.String("page")
	var page *ui.Page
	if c.Bool("navigate") {
		page, err = scope.Navigate(alias)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}
	} else {
		page, err = scope.ForName(alias)
		if err != nil {
			return err
		}
		if err := page.Focus(); err != nil {
			return err
		}
		if err := op.Verify(page, state.Current(c.Duration("timeout"))); err != nil {
			missing := page.MissingFields(0)
			return cli.Exit(fmt.Sprintf("Page '%s' is not current; missing: %s", page.Alias(), strings.Join(missing, ", ")), 1)
		}
		scope.SetCurrent(page)
	}
	fmt.Fprintf(c.App.Writer, "Page '%s' is current.\n", page.Alias())

	for _, name := range c.StringSlice("print") {
		ctl, err := page.Field(name)
		if err != nil {
			return err
		}
		text, err := op.Get(ctl, action.Text())
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "%s: %s\n", name, text)
	}

	if len(expects) == 0 {
		return nil
	}
	preds := state.NewRegistry()
	var failed []string
	for _, e := range expects {
		ctl, err := page.Field(e.field)
		if err != nil {
			return err
		}
		pred, err := preds.Lookup(e.predicate, e.args...)
		if err != nil {
			return err
		}
		if err := op.Verify(ctl, pred); err != nil {
			if !core.IsAssertionError(err) {
				return err
			}
			failed = append(failed, err.Error())
			continue
		}
		fmt.Fprintf(c.App.Writer, "ok: %s\n", pred.Describe(ctl))
	}
	if len(failed) > 0 {
		return cli.Exit("failed: "+strings.Join(failed, "\nfailed: "), 1)
	}
	return nil
}

type expectation struct {
	field     string
	predicate string
	args      []string
}

// parseExpectations splits FIELD=PREDICATE[:ARG] entries. Only the first
// ':' separates the argument, so formulas may contain colons.
func parseExpectations(entries []string) ([]expectation, error) {
	out := make([]expectation, 0, len(entries))
	for _, entry := range entries {
		field, rest, ok := strings.Cut(entry, "=")
		field, rest = strings.TrimSpace(field), strings.TrimSpace(rest)
		if !ok || field == "" || rest == "" {
			return nil, fmt.Errorf("invalid --expect %q: want FIELD=PREDICATE[:ARG]", entry)
		}
		e := expectation{field: field, predicate: rest}
		if name, arg, ok := strings.Cut(rest, ":"); ok {
			e.predicate = strings.TrimSpace(name)
			e.args = []string{arg}
		}
		out = append(out, e)
	}
	return out, nil
}
