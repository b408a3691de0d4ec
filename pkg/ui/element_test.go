package ui_test

import (
	"strings"
	"testing"

	"github.com/devicelab-dev/sirius/pkg/core"
	"github.com/devicelab-dev/sirius/pkg/driver/mock"
	"github.com/devicelab-dev/sirius/pkg/locator"
	"github.com/devicelab-dev/sirius/pkg/op"
	"github.com/devicelab-dev/sirius/pkg/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func formSchema() *ui.Schema {
	return ui.Define("Form",
		ui.Field("Name", ui.KindEdit, locator.Any("id=name")),
		ui.Field("Agree", ui.KindCheckBox, locator.Any("id=agree")),
		ui.Field("Express", ui.KindRadio, locator.Any("id=express")),
		ui.Field("Country", ui.KindSelect, locator.Any("id=country")),
		ui.Field("Submit", ui.KindControl, locator.Any("id=submit")),
		ui.Field("Spinner", ui.KindControl, locator.Any("id=spinner")),
		ui.Field("Row", ui.KindControl, locator.Any("//li").WithFormat("//li[%d]")),
	)
}

func initForm(t *testing.T, p core.Platform) (*ui.Page, *mock.Driver) {
	t.Helper()
	scope, d := newScope(p)
	page, err := scope.Init(formSchema())
	require.NoError(t, err)
	return page, d
}

func field(t *testing.T, page *ui.Page, name string) ui.Control {
	t.Helper()
	c, err := page.Field(name)
	require.NoError(t, err)
	return c
}

func TestElement_StateQueries(t *testing.T) {
	page, d := initForm(t, core.PlatformChrome)
	d.Add("id=submit", &mock.Element{Text: "Submit"})
	d.Add("id=spinner", &mock.Element{Hidden: true, Disabled: true})

	submit := field(t, page, "Submit")
	spinner := field(t, page, "Spinner")
	name := field(t, page, "Name") // not on screen

	tests := []struct {
		name string
		got  bool
		want bool
	}{
		{"submit exists", submit.Exists(0), true},
		{"submit visible", submit.Visible(0), true},
		{"submit enabled", submit.Enabled(0), true},
		{"submit disabled", submit.Disabled(0), false},
		{"submit disappears", submit.Disappears(0), false},
		{"submit invisible", submit.Invisible(0), false},
		{"spinner exists", spinner.Exists(0), true},
		{"spinner visible", spinner.Visible(0), false},
		{"spinner invisible", spinner.Invisible(0), true},
		{"spinner disabled", spinner.Disabled(0), true},
		{"missing exists", name.Exists(0), false},
		{"missing disappears", name.Disappears(0), true},
		{"missing invisible", name.Invisible(0), true},
		{"missing enabled", name.Enabled(0), false},
		{"missing disabled", name.Disabled(0), true},
		{"default timeout", submit.Exists(ui.DefaultTimeout), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestElement_StateQueriesSwallowDriverErrors(t *testing.T) {
	page, d := initForm(t, core.PlatformChrome)
	d.Fail("id=submit", assert.AnError)

	submit := field(t, page, "Submit")
	assert.False(t, submit.Exists(0))
	assert.False(t, submit.Disappears(0))
}

func TestElement_ReResolvesEveryCall(t *testing.T) {
	page, d := initForm(t, core.PlatformChrome)
	submit := field(t, page, "Submit")

	assert.False(t, submit.Exists(0))
	d.Add("id=submit")
	assert.True(t, submit.Exists(0))
	d.Remove("id=submit")
	assert.False(t, submit.Exists(0))
}

func TestElement_InteractionRequiresExistence(t *testing.T) {
	page, d := initForm(t, core.PlatformChrome)
	submit := field(t, page, "Submit")

	err := submit.Click()
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrVerificationFailed)
	assert.Equal(t, "Element with locator 'submit' exists.", err.Error())
	assert.Empty(t, d.Calls())

	_, err = submit.Text()
	assert.ErrorIs(t, err, core.ErrVerificationFailed)
	assert.ErrorIs(t, submit.SendKeys("x"), core.ErrVerificationFailed)
	assert.ErrorIs(t, submit.Clear(), core.ErrVerificationFailed)
}

func TestElement_Interactions(t *testing.T) {
	page, d := initForm(t, core.PlatformChrome)
	el := d.Add("id=submit", &mock.Element{
		Text:   "OK",
		Attrs:  map[string]string{"value": "ok", "role": "button"},
		Bounds: core.Bounds{X: 1, Y: 2, Width: 3, Height: 4},
	})
	submit := field(t, page, "Submit").Base()

	require.NoError(t, submit.Click())
	assert.Equal(t, 1, el.Clicks)

	text, err := submit.Text()
	require.NoError(t, err)
	assert.Equal(t, "OK", text)

	value, err := submit.Value()
	require.NoError(t, err)
	assert.Equal(t, "OK", value, "a plain control's value is its text")

	role, err := submit.Attribute("role")
	require.NoError(t, err)
	assert.Equal(t, "button", role)

	rect, err := submit.Rect()
	require.NoError(t, err)
	assert.Equal(t, core.Bounds{X: 1, Y: 2, Width: 3, Height: 4}, rect)
}

func TestElement_VerifyDescribesFailure(t *testing.T) {
	page, d := initForm(t, core.PlatformChrome)
	d.Add("id=submit", &mock.Element{Text: "Cancel"})
	submit := field(t, page, "Submit").Base()

	hasText := func(want string) op.Predicate[ui.Control] {
		return op.New(
			func(c ui.Control) string { return ui.DescribeState(c, "has '"+want+"' text") },
			func(c ui.Control) (bool, error) {
				got, err := c.Text()
				return got == want, err
			},
		)
	}

	assert.NoError(t, submit.Verify(hasText("Cancel")))

	err := submit.Verify(hasText("OK"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "submit")
	assert.Contains(t, err.Error(), "OK")
	assert.Equal(t, core.ErrCategoryAssertion, core.CategoryOf(err))

	d.Remove("id=submit")
	err = submit.Verify(hasText("OK"))
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "Element with locator 'submit' has 'OK' text."), "got %q", err.Error())
	assert.Equal(t, core.ErrCategoryAssertion, core.CategoryOf(err))
}

func TestEdit_SetValue(t *testing.T) {
	page, d := initForm(t, core.PlatformAndroidNative)
	el := d.Add("id=name", &mock.Element{Text: "old", Attrs: map[string]string{"value": "old"}})

	name, err := ui.FieldAs[ui.Editable](page, "Name")
	require.NoError(t, err)
	require.NoError(t, name.SetValue("Jane"))

	assert.Equal(t, "Jane", el.Text)
	assert.Equal(t, []string{"hide keyboard", "click old", "clear", "keys Jane", "hide keyboard"}, d.Calls())

	text, err := name.Text()
	require.NoError(t, err)
	assert.Equal(t, "Jane", text)
}

func TestElement_ValueIsText(t *testing.T) {
	page, d := initForm(t, core.PlatformAndroidNative)
	d.Add("id=submit", &mock.Element{Text: "Submit"})
	d.Add("id=name", &mock.Element{Text: "alice", Attrs: map[string]string{"value": "ignored"}})

	value, err := field(t, page, "Submit").Value()
	require.NoError(t, err)
	assert.Equal(t, "Submit", value)

	value, err = field(t, page, "Name").Value()
	require.NoError(t, err)
	assert.Equal(t, "alice", value, "native edit value is its text")
}

func TestEdit_TextReadsValueOnWeb(t *testing.T) {
	page, d := initForm(t, core.PlatformChrome)
	d.Add("id=name", &mock.Element{Text: "", Attrs: map[string]string{"value": "typed"}})

	name := field(t, page, "Name")
	text, err := name.Text()
	require.NoError(t, err)
	assert.Equal(t, "typed", text)
	value, err := name.Value()
	require.NoError(t, err)
	assert.Equal(t, "typed", value)

	require.NoError(t, name.(ui.Editable).SetValue("new"))
	for _, c := range d.Calls() {
		assert.NotEqual(t, "hide keyboard", c)
	}
}

func TestCheckBox_SetValue(t *testing.T) {
	page, d := initForm(t, core.PlatformChrome)
	el := d.Add("id=agree", &mock.Element{Checkable: true})

	agree, err := ui.FieldAs[*ui.CheckBox](page, "Agree")
	require.NoError(t, err)

	require.NoError(t, agree.SetValue("Y"))
	assert.Equal(t, "true", el.Attrs["checked"])
	require.NoError(t, agree.SetValue("true"))
	assert.Equal(t, 1, el.Clicks, "already checked box must not be clicked again")

	v, err := agree.Value()
	require.NoError(t, err)
	assert.Equal(t, "true", v)

	require.NoError(t, agree.SetValue("no"))
	assert.Equal(t, "false", el.Attrs["checked"])
	assert.Equal(t, 2, el.Clicks)
}

func TestRadioButton_SetValue(t *testing.T) {
	page, d := initForm(t, core.PlatformChrome)
	el := d.Add("id=express", &mock.Element{Attrs: map[string]string{"selected": "false"}})
	el.OnClick = func() { el.Attrs["selected"] = "true" }

	radio, err := ui.FieldAs[ui.Editable](page, "Express")
	require.NoError(t, err)

	require.NoError(t, radio.SetValue("n"))
	assert.Zero(t, el.Clicks)
	require.NoError(t, radio.SetValue("true"))
	assert.Equal(t, 1, el.Clicks)
	require.NoError(t, radio.SetValue("true"))
	assert.Equal(t, 1, el.Clicks)
}

func TestSelectList_SetValue(t *testing.T) {
	page, d := initForm(t, core.PlatformChrome)
	el := d.Add("id=country", &mock.Element{Options: []string{"France", "Spain"}})

	country, err := ui.FieldAs[ui.Editable](page, "Country")
	require.NoError(t, err)

	require.NoError(t, country.SetValue("Spain"))
	assert.Equal(t, "Spain", el.Attrs["value"])
	assert.Error(t, country.SetValue("Mars"))
}

func TestElement_IsChecked(t *testing.T) {
	tests := []struct {
		name     string
		platform core.Platform
		attrs    map[string]string
		want     bool
	}{
		{"ios value 1", core.PlatformIOSNative, map[string]string{"value": "1"}, true},
		{"ios value 0", core.PlatformIOSNative, map[string]string{"value": "0", "checked": "true"}, false},
		{"android checked", core.PlatformAndroidNative, map[string]string{"checked": "true"}, true},
		{"web selected", core.PlatformChrome, map[string]string{"selected": "true"}, true},
		{"web neither", core.PlatformChrome, map[string]string{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, d := initForm(t, tt.platform)
			d.Add("id=agree", &mock.Element{Attrs: tt.attrs})
			got, err := field(t, page, "Agree").Base().IsChecked()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestElement_ClickAndWait(t *testing.T) {
	page, d := initForm(t, core.PlatformChrome)
	done := ui.Define("Done", ui.Field("Thanks", ui.KindControl, locator.Any("id=thanks")))

	el := d.Add("id=submit")
	el.OnClick = func() { d.Add("id=thanks") }

	next, err := field(t, page, "Submit").Base().ClickAndWait(done)
	require.NoError(t, err)
	assert.Equal(t, "Done", next.Alias())

	cur, err := page.Scope().Current()
	require.NoError(t, err)
	assert.Same(t, next, cur)
}

func TestElement_ClickAndWaitPageMissing(t *testing.T) {
	page, d := initForm(t, core.PlatformChrome)
	d.Add("id=submit")
	done := ui.Define("Done", ui.Field("Thanks", ui.KindControl, locator.Any("id=thanks")))

	_, err := field(t, page, "Submit").Base().ClickAndWait(done)
	assert.ErrorIs(t, err, core.ErrPageNotCurrent)
	assert.True(t, strings.Contains(err.Error(), "'Done'"))
}

func TestElement_Formatted(t *testing.T) {
	page, d := initForm(t, core.PlatformChrome)
	d.Add("//li[2]", &mock.Element{Text: "second"})

	row, err := field(t, page, "Row").Base().Formatted(2)
	require.NoError(t, err)
	assert.Equal(t, "xpath=//li[2]", row.Locator().String())
	text, err := row.Text()
	require.NoError(t, err)
	assert.Equal(t, "second", text)

	_, err = field(t, page, "Submit").Base().Formatted(1)
	assert.ErrorIs(t, err, core.ErrInvalidSchema)
}

func TestNewElement(t *testing.T) {
	page, d := initForm(t, core.PlatformChrome)
	d.Add("css=.toast")

	toast, err := ui.NewElement(page, "css=.toast")
	require.NoError(t, err)
	assert.True(t, toast.Exists(0))

	_, err = ui.NewElement(page, "")
	assert.ErrorIs(t, err, core.ErrInvalidLocator)
}
