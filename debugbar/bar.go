// Package debugbar renders a developer toolbar into HTML responses and a
// diagnostics page for requests that fail. Panels are contributed per request
// by extensions registered on an explicitly constructed Debugger.
package debugbar

import (
	"bytes"
	"html/template"
	"sync"
)

// Panel is a fragment shown in the toolbar: a short tab label and a detail
// view rendered on demand.
type Panel interface {
	Tab() template.HTML
	Panel() template.HTML
}

// Bar holds the panels of a single request.
type Bar struct {
	mu     sync.Mutex
	panels []Panel
}

// NewBar returns an empty bar.
func NewBar() *Bar {
	return &Bar{}
}

// AddPanel appends p. Panels render in the order they were added.
func (b *Bar) AddPanel(p Panel) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.panels = append(b.panels, p)
}

// Panels returns a copy of the registered panels.
func (b *Bar) Panels() []Panel {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Panel(nil), b.panels...)
}

type renderedPanel struct {
	ID    int
	Tab   template.HTML
	Panel template.HTML
}

// Render produces the toolbar markup. Panels with an empty detail view only
// contribute their tab.
func (b *Bar) Render() (template.HTML, error) {
	panels := b.Panels()
	rendered := make([]renderedPanel, 0, len(panels))
	for i, p := range panels {
		rendered = append(rendered, renderedPanel{ID: i, Tab: p.Tab(), Panel: p.Panel()})
	}

	var buf bytes.Buffer
	if err := barTemplate.Execute(&buf, rendered); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

var barTemplate = template.Must(template.New("bar").Parse(`
<div id="debugbar">
<style>
#debugbar { position: fixed; right: 0; bottom: 0; z-index: 9999; font: 12px/1.5 sans-serif; }
#debugbar .debugbar-tabs { background: #f4f4f4; border: 1px solid #ccc; padding: 2px 6px; }
#debugbar .debugbar-tabs li { display: inline; margin-right: 8px; }
#debugbar .debugbar-panel { display: none; max-height: 60vh; overflow: auto; background: #fff; border: 1px solid #ccc; padding: 8px; }
#debugbar .debugbar-panel:target { display: block; }
#debugbar table { border-collapse: collapse; }
#debugbar td, #debugbar th { border: 1px solid #e6e6e6; padding: 2px 4px; vertical-align: top; text-align: left; }
</style>
{{range .}}{{if .Panel}}<div class="debugbar-panel" id="debugbar-panel-{{.ID}}">{{.Panel}}</div>
{{end}}{{end}}<ul class="debugbar-tabs">
{{range .}}<li>{{if .Panel}}<a href="#debugbar-panel-{{.ID}}">{{.Tab}}</a>{{else}}{{.Tab}}{{end}}</li>
{{end}}</ul>
</div>
`))
