package action

import (
	"testing"
	"time"

	"github.com/devicelab-dev/sirius/pkg/core"
	"github.com/devicelab-dev/sirius/pkg/driver/mock"
	"github.com/devicelab-dev/sirius/pkg/locator"
	"github.com/devicelab-dev/sirius/pkg/op"
	"github.com/devicelab-dev/sirius/pkg/state"
	"github.com/devicelab-dev/sirius/pkg/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*ui.Page, *mock.Driver) {
	t.Helper()
	d := mock.New(mock.Config{})
	scope := ui.NewScope(d, core.PlatformChrome, ui.WithTimeouts(ui.Timeouts{Poll: time.Millisecond}))
	page, err := scope.Init(ui.Define("Search",
		ui.Field("Query", ui.KindEdit, locator.Any("id=q")),
		ui.Field("Go", ui.KindControl, locator.Any("id=go")),
	))
	require.NoError(t, err)
	return page, d
}

func field(t *testing.T, p *ui.Page, name string) ui.Control {
	t.Helper()
	c, err := p.Field(name)
	require.NoError(t, err)
	return c
}

func TestActions(t *testing.T) {
	page, d := setup(t)
	q := d.Add("id=q", &mock.Element{Attrs: map[string]string{"value": ""}})
	goBtn := d.Add("id=go", &mock.Element{Text: "Go"})

	require.NoError(t, op.Run(field(t, page, "Query"), SetValue("golang"), Clear(), SendKeys("rod")))
	assert.Equal(t, "rod", q.Attrs["value"])

	require.NoError(t, op.Run(field(t, page, "Go"), Click()))
	assert.Equal(t, 1, goBtn.Clicks)
}

func TestActions_Failures(t *testing.T) {
	page, d := setup(t)
	d.Add("id=go")

	err := op.Run(field(t, page, "Go"), SetValue("x"))
	assert.ErrorIs(t, err, core.ErrCapabilityMismatch)
	assert.Contains(t, err.Error(), "Set 'x' on element with locator 'go'")

	err = op.Run(field(t, page, "Query"), Click())
	assert.ErrorIs(t, err, core.ErrVerificationFailed)
	assert.Contains(t, err.Error(), "Click element with locator 'q'")
}

func TestGetters(t *testing.T) {
	page, d := setup(t)
	d.Add("id=q", &mock.Element{Text: "shown", Attrs: map[string]string{"value": "typed", "maxlength": "10"}})
	q := field(t, page, "Query")

	text, err := op.Get(q, Text())
	require.NoError(t, err)
	assert.Equal(t, "typed", text, "edit text reads the value attribute on web")

	value, err := op.Get(q, Value())
	require.NoError(t, err)
	assert.Equal(t, "typed", value)

	maxLen, err := op.Get(q, Attribute("maxlength"))
	require.NoError(t, err)
	assert.Equal(t, "10", maxLen)

	parent, err := op.Get(q, Parent())
	require.NoError(t, err)
	assert.Same(t, page, parent)

	_, err = op.Get(field(t, page, "Go"), Text())
	assert.ErrorIs(t, err, core.ErrVerificationFailed)
}

func TestWaitFor(t *testing.T) {
	page, d := setup(t)
	goBtn := field(t, page, "Go")

	polls := 0
	d.OnFind = func(loc core.Locator) {
		polls++
		if polls == 3 {
			d.Add("id=go")
		}
	}
	require.NoError(t, op.Run(goBtn, WaitFor(state.Exists(0), time.Second)))

	err := op.Run(field(t, page, "Query"), WaitFor(state.Visible(0), 5*time.Millisecond))
	assert.ErrorIs(t, err, core.ErrWaitTimeout)
	assert.Contains(t, err.Error(), "Wait until Element with locator 'q' is visible.")
}
