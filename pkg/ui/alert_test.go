package ui_test

import (
	"errors"
	"testing"

	"github.com/devicelab-dev/sirius/pkg/core"
	"github.com/devicelab-dev/sirius/pkg/driver/mock"
	"github.com/devicelab-dev/sirius/pkg/locator"
	"github.com/devicelab-dev/sirius/pkg/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func alertHostSchema() *ui.Schema {
	return ui.Define("Alert Host",
		ui.Field("Alert", ui.KindControl, locator.Any("//button[text()='Alert']")),
		ui.Field("Confirmation", ui.KindControl, locator.Any("//button[text()='Confirmation']")),
		ui.Field("Prompt", ui.KindControl, locator.Any("id=sample_prompt")),
	)
}

func TestAlert_AcceptDismissPrompt(t *testing.T) {
	scope, d := newScope(core.PlatformChrome)
	host, err := scope.Init(alertHostSchema())
	require.NoError(t, err)

	var confirmed []bool
	d.Add("//button[text()='Alert']", &mock.Element{Text: "Alert", OnClick: func() {
		d.ShowAlert("Hello")
	}})
	d.Add("//button[text()='Confirmation']", &mock.Element{Text: "Confirmation", OnClick: func() {
		d.ShowAlert("Sure?").OnClose = func(accepted bool, _ string) {
			confirmed = append(confirmed, accepted)
		}
	}})
	prompt := d.Add("id=sample_prompt", &mock.Element{Text: "Prompt"})
	prompt.OnClick = func() {
		d.ShowAlert("Your name?").OnClose = func(accepted bool, input string) {
			if accepted {
				prompt.Text = input
			}
		}
	}

	require.NoError(t, field(t, host, "Alert").Click())
	alert := host.Alert()
	assert.Same(t, host, alert.Parent())
	text, err := alert.Text()
	require.NoError(t, err)
	assert.Equal(t, "Hello", text)
	back, err := alert.Accept()
	require.NoError(t, err)
	assert.Same(t, host, back)
	assert.False(t, d.AlertOpen())

	require.NoError(t, field(t, host, "Confirmation").Click())
	_, err = host.Alert().Accept()
	require.NoError(t, err)
	require.NoError(t, field(t, host, "Confirmation").Click())
	_, err = host.Alert().Dismiss()
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false}, confirmed)

	require.NoError(t, field(t, host, "Prompt").Click())
	back, err = host.Alert().Prompt("Sample")
	require.NoError(t, err)
	assert.Same(t, host, back)
	value, err := field(t, host, "Prompt").Base().Text()
	require.NoError(t, err)
	assert.Equal(t, "Sample", value)

	assert.Contains(t, d.Calls(), "alert keys Sample")
}

func TestAlert_Absent(t *testing.T) {
	scope, d := newScope(core.PlatformChrome)
	host, err := scope.Init(alertHostSchema())
	require.NoError(t, err)

	alert := host.Alert()
	assert.False(t, alert.IsPresent(0))

	_, err = alert.Text()
	assert.True(t, errors.Is(err, core.ErrNoAlert))
	_, err = alert.Accept()
	assert.True(t, errors.Is(err, core.ErrNoAlert))
	assert.Contains(t, err.Error(), "Alert Host")
	_, err = alert.Dismiss()
	assert.True(t, errors.Is(err, core.ErrNoAlert))
	_, err = alert.Prompt("x")
	assert.True(t, errors.Is(err, core.ErrNoAlert))

	assert.Empty(t, d.Calls())
}

func TestAlert_SectionReturnsToSection(t *testing.T) {
	scope, d := newScope(core.PlatformChrome)
	schema := ui.Define("Shell",
		ui.Section("Toolbar", alertHostSchema()),
	)
	shell, err := scope.Init(schema)
	require.NoError(t, err)
	toolbar, err := shell.Section("Toolbar")
	require.NoError(t, err)

	d.ShowAlert("Saved")
	back, err := toolbar.Alert().Dismiss()
	require.NoError(t, err)
	assert.Same(t, toolbar, back)
	assert.Equal(t, []string{"alert dismiss"}, d.Calls())
}
