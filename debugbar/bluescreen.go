package debugbar

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"sync"
)

// ErrorPanel is a supplementary section of the blue screen.
type ErrorPanel struct {
	Tab   string
	Panel template.HTML
}

// ErrorRenderer inspects a failure and optionally describes it. It returns
// false when it has nothing to add.
type ErrorRenderer func(err error) (ErrorPanel, bool)

// BlueScreen renders the diagnostics page for a failed request.
type BlueScreen struct {
	mu        sync.Mutex
	renderers []ErrorRenderer
}

// NewBlueScreen returns a blue screen with no error renderers.
func NewBlueScreen() *BlueScreen {
	return &BlueScreen{}
}

// AddPanel registers fn. Renderers run in registration order.
func (s *BlueScreen) AddPanel(fn ErrorRenderer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.renderers = append(s.renderers, fn)
}

// Panels collects every supplementary panel contributed for err.
func (s *BlueScreen) Panels(err error) []ErrorPanel {
	s.mu.Lock()
	renderers := append([]ErrorRenderer(nil), s.renderers...)
	s.mu.Unlock()

	var panels []ErrorPanel
	for _, fn := range renderers {
		if p, ok := fn(err); ok {
			panels = append(panels, p)
		}
	}
	return panels
}

// Render writes the full diagnostics page for err.
func (s *BlueScreen) Render(w io.Writer, err error) error {
	data := struct {
		Type    string
		Message string
		Chain   []string
		Panels  []ErrorPanel
	}{
		Type:    fmt.Sprintf("%T", err),
		Message: err.Error(),
		Panels:  s.Panels(err),
	}
	for e := errors.Unwrap(err); e != nil; e = errors.Unwrap(e) {
		data.Chain = append(data.Chain, fmt.Sprintf("%T: %v", e, e))
	}
	return blueScreenTemplate.Execute(w, data)
}

var blueScreenTemplate = template.Must(template.New("bluescreen").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Message}}</title>
<style>
body { margin: 0; font: 13px/1.5 sans-serif; background: #fff; color: #333; }
#bluescreen-error { background: #cd1818; color: #fff; padding: 16px 24px; }
#bluescreen-error h1 { margin: 0; font-size: 20px; }
.bluescreen-section { padding: 8px 24px; border-bottom: 1px solid #e6e6e6; }
.bluescreen-section h2 { font-size: 15px; }
table { border-collapse: collapse; }
td, th { border: 1px solid #e6e6e6; padding: 2px 4px; vertical-align: top; text-align: left; }
</style>
</head>
<body>
<div id="bluescreen-error">
<p>{{.Type}}</p>
<h1>{{.Message}}</h1>
</div>
{{if .Chain}}<div class="bluescreen-section">
<h2>Caused by</h2>
<ul>{{range .Chain}}<li>{{.}}</li>{{end}}</ul>
</div>
{{end}}{{range .Panels}}<div class="bluescreen-section">
<h2>{{.Tab}}</h2>
{{.Panel}}
</div>
{{end}}</body>
</html>
`))
