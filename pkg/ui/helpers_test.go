package ui_test

import (
	"time"

	"github.com/devicelab-dev/sirius/pkg/core"
	"github.com/devicelab-dev/sirius/pkg/driver/mock"
	"github.com/devicelab-dev/sirius/pkg/ui"
)

// fastTimeouts make every state query a single evaluation.
var fastTimeouts = ui.Timeouts{Poll: time.Millisecond}

func newScope(p core.Platform, opts ...ui.Option) (*ui.Scope, *mock.Driver) {
	d := mock.New(mock.Config{})
	opts = append([]ui.Option{ui.WithTimeouts(fastTimeouts)}, opts...)
	return ui.NewScope(d, p, opts...), d
}

func mockOf(p *ui.Page) *mock.Driver {
	return p.Driver().(*mock.Driver)
}
