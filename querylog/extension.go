package querylog

import (
	"context"

	"github.com/blogem/inkwell/debugbar"
)

// Extension attaches a fresh Panel to every request handled by a
// debugbar.Debugger.
type Extension struct {
	Filter  SourceFilter
	Editor  string
	Options []Option
}

// Attach implements debugbar.Extension.
func (e Extension) Attach(ctx context.Context, bar *debugbar.Bar, screen *debugbar.BlueScreen) context.Context {
	opts := append([]Option{WithEditor(e.Editor)}, e.Options...)
	p := New(e.Filter, opts...)
	bar.AddPanel(p)
	screen.AddPanel(p.RenderError)
	return WithPanel(ctx, p)
}
