package debugbar

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticPanel struct {
	tab   string
	panel string
}

func (p staticPanel) Tab() template.HTML   { return template.HTML(p.tab) }
func (p staticPanel) Panel() template.HTML { return template.HTML(p.panel) }

type ctxKey struct{}

func panelExtension(tab, panel string) Extension {
	return ExtensionFunc(func(ctx context.Context, bar *Bar, screen *BlueScreen) context.Context {
		bar.AddPanel(staticPanel{tab: tab, panel: panel})
		screen.AddPanel(func(err error) (ErrorPanel, bool) {
			if !strings.Contains(err.Error(), "database") {
				return ErrorPanel{}, false
			}
			return ErrorPanel{Tab: "Database", Panel: "<p>details</p>"}, true
		})
		return context.WithValue(ctx, ctxKey{}, "attached")
	})
}

func serve(d *Debugger, h http.HandlerFunc) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	d.Middleware(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	return rec
}

func TestMiddlewareInjectsBarIntoHTML(t *testing.T) {
	d := New(Config{Enabled: true}, zap.NewNop(), panelExtension("3 queries", "<table>rows</table>"))

	rec := serve(d, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "attached", r.Context().Value(ctxKey{}))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, "<html><body><h1>Hello</h1></body></html>")
	})

	body := rec.Body.String()
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, body, `<div id="debugbar">`)
	assert.Contains(t, body, "3 queries")
	assert.Contains(t, body, "<table>rows</table>")
	assert.True(t, strings.Index(body, "debugbar") < strings.Index(body, "</body>"))
	assert.True(t, strings.HasSuffix(body, "</body></html>"))
}

func TestMiddlewareLeavesNonHTMLAlone(t *testing.T) {
	d := New(Config{Enabled: true}, nil, panelExtension("tab", "panel"))

	rec := serve(d, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"status":"ok","html":"</body>"}`)
	})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, `{"status":"ok","html":"</body>"}`, rec.Body.String())
}

func TestMiddlewareDisabledPassesThrough(t *testing.T) {
	d := New(Config{Enabled: false}, nil, panelExtension("tab", "panel"))

	rec := serve(d, func(w http.ResponseWriter, r *http.Request) {
		assert.Nil(t, r.Context().Value(ctxKey{}))
		fmt.Fprint(w, "<html><body></body></html>")
	})

	assert.Equal(t, "<html><body></body></html>", rec.Body.String())
	assert.False(t, d.Enabled())
}

func TestPanelWithoutDetailOnlyShowsTab(t *testing.T) {
	bar := NewBar()
	bar.AddPanel(staticPanel{tab: "0 queries"})

	html, err := bar.Render()
	require.NoError(t, err)
	assert.Contains(t, string(html), "0 queries")
	assert.NotContains(t, string(html), "debugbar-panel-0\"")
}

func TestFailRendersBlueScreen(t *testing.T) {
	d := New(Config{Enabled: true}, zap.NewNop(), panelExtension("tab", "panel"))

	rec := serve(d, func(w http.ResponseWriter, r *http.Request) {
		Fail(w, r, fmt.Errorf("loading pages: %w", errors.New("database is locked")))
	})

	body := rec.Body.String()
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, body, "loading pages: database is locked")
	assert.Contains(t, body, "Caused by")
	assert.Contains(t, body, "<h2>Database</h2>")
	assert.NotContains(t, body, `<div id="debugbar">`)
}

func TestFailWithoutDebugger(t *testing.T) {
	rec := httptest.NewRecorder()
	Fail(rec, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("boom"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "boom\n", rec.Body.String())
}

func TestPanicIsRecoveredIntoBlueScreen(t *testing.T) {
	d := New(Config{Enabled: true}, zap.NewNop(), panelExtension("tab", "panel"))

	rec := serve(d, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "partial output")
		panic("database gone")
	})

	body := rec.Body.String()
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, body, "partial output")
	assert.Contains(t, body, "panic: database gone")
	assert.Contains(t, body, "<h2>Database</h2>")
}

func TestBlueScreenSkipsRenderersWithNothingToSay(t *testing.T) {
	screen := NewBlueScreen()
	screen.AddPanel(func(error) (ErrorPanel, bool) { return ErrorPanel{}, false })
	screen.AddPanel(func(err error) (ErrorPanel, bool) { return ErrorPanel{Tab: "Second"}, true })

	panels := screen.Panels(errors.New("x"))
	require.Len(t, panels, 1)
	assert.Equal(t, "Second", panels[0].Tab)

	require.NoError(t, screen.Render(io.Discard, errors.New("x")))
}

func TestEditorLink(t *testing.T) {
	link := string(EditorLink(DefaultEditor, "/src/app/controllers/page_controller.go", 42))
	assert.Contains(t, link, `href="editor://open/?file=%2Fsrc%2Fapp%2Fcontrollers%2Fpage_controller.go&amp;line=42"`)
	assert.Contains(t, link, ">controllers/page_controller.go:42</a>")

	plain := string(EditorLink("", "main.go", 7))
	assert.Equal(t, `<span class="debugbar-source">main.go:7</span>`, plain)
}
