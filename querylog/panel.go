// Package querylog records the SQL statements executed while serving a
// request and presents them as a debug bar panel.
//
// A Panel is created per request and travels in the request context. The
// database/sql driver registered with Register calls Start before every
// statement it executes with such a context, and Finish once the statement
// has completed. Queries complete when their rows are exhausted or closed.
package querylog

import (
	"errors"
	"fmt"
	"html/template"
	"sync"
	"time"

	"github.com/blogem/inkwell/database/query"
	"github.com/blogem/inkwell/debugbar"
	"github.com/mattn/go-sqlite3"
)

// Param is one bound statement parameter. Positional parameters have an
// empty Name.
type Param struct {
	Name    string
	Ordinal int
	Value   any
}

// Key returns the name of the parameter, or its 1-based position.
func (p Param) Key() string {
	if p.Name != "" {
		return p.Name
	}
	return fmt.Sprintf("%d", p.Ordinal)
}

// Source is the code location a statement was issued from.
type Source struct {
	File     string
	Line     int
	Function string
}

// Record is one logged statement.
type Record struct {
	SQL     string
	Params  []Param
	Elapsed time.Duration
	Rows    int64
	Source  *Source

	started time.Time
	stopped bool
}

// Option configures a Panel.
type Option func(*Panel)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(p *Panel) {
		p.now = now
	}
}

// WithEditor sets the editor URL template used for source links.
func WithEditor(editor string) Option {
	return func(p *Panel) {
		p.editor = editor
	}
}

// Panel accumulates the statements of one request.
type Panel struct {
	mu      sync.Mutex
	records []*Record
	total   time.Duration

	filter SourceFilter
	editor string
	now    func() time.Time
}

// New returns an empty panel attributing statements with filter.
func New(filter SourceFilter, opts ...Option) *Panel {
	p := &Panel{
		filter: filter,
		editor: debugbar.DefaultEditor,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start records the beginning of a statement and returns its record, which
// Finish completes. Callers that run statements one at a time may use Stop
// instead.
func (p *Panel) Start(sql string, params []Param) *Record {
	source := p.filter.locate(3)

	p.mu.Lock()
	defer p.mu.Unlock()
	r := &Record{
		SQL:     sql,
		Params:  params,
		Source:  source,
		started: p.now(),
	}
	p.records = append(p.records, r)
	return r
}

// Stop completes the most recently started statement. It does nothing when
// no statement is pending.
func (p *Panel) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.records) == 0 {
		return
	}
	p.complete(p.records[len(p.records)-1], 0)
}

// Finish completes r with the number of rows it affected or returned.
// Finishing a record twice keeps the first result.
func (p *Panel) Finish(r *Record, rows int64) {
	if r == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.complete(r, rows)
}

func (p *Panel) complete(r *Record, rows int64) {
	if r.stopped {
		return
	}
	r.Elapsed = p.now().Sub(r.started)
	r.Rows = rows
	r.stopped = true
	p.total += r.Elapsed
}

// Len returns the number of logged statements.
func (p *Panel) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.records)
}

// Total returns the summed duration of all completed statements.
func (p *Panel) Total() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.total
}

// Records returns copies of the logged statements in execution order.
func (p *Panel) Records() []Record {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]Record, len(p.records))
	for i, r := range p.records {
		out[i] = *r
	}
	return out
}

// Summary is the plain text shown on the tab, e.g. "2 queries / 15.0ms".
func (p *Panel) Summary() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := fmt.Sprintf("%d queries", len(p.records))
	if p.total > 0 {
		s += fmt.Sprintf(" / %0.1fms", milliseconds(p.total))
	}
	return s
}

// Tab implements debugbar.Panel.
func (p *Panel) Tab() template.HTML {
	return template.HTML(`<span title="SQL queries">` + template.HTMLEscapeString(p.Summary()) + `</span>`)
}

// Panel implements debugbar.Panel. It is empty when nothing was logged.
func (p *Panel) Panel() template.HTML {
	records := p.Records()
	if len(records) == 0 {
		return ""
	}
	html, err := renderDetail(records, p.Total(), p.editor)
	if err != nil {
		return template.HTML(`<p>` + template.HTMLEscapeString(err.Error()) + `</p>`)
	}
	return html
}

// RenderError describes the statement behind a data access failure for the
// blue screen. Driver errors point at the last logged statement, query
// builder errors carry their own statement. Other errors are not described.
func (p *Panel) RenderError(err error) (debugbar.ErrorPanel, bool) {
	var driverErr sqlite3.Error
	if errors.As(err, &driverErr) {
		records := p.Records()
		if len(records) > 0 {
			last := records[len(records)-1]
			return p.errorPanel("SQL", last.SQL, last.Params)
		}
	}

	var queryErr *query.Error
	if errors.As(err, &queryErr) && queryErr.SQL != "" {
		return p.errorPanel("Query", queryErr.SQL, positional(queryErr.Args))
	}

	return debugbar.ErrorPanel{}, false
}

func (p *Panel) errorPanel(tab, sql string, params []Param) (debugbar.ErrorPanel, bool) {
	html, err := renderStatement(sql, params)
	if err != nil {
		return debugbar.ErrorPanel{}, false
	}
	return debugbar.ErrorPanel{Tab: tab, Panel: html}, true
}

func positional(args []any) []Param {
	if len(args) == 0 {
		return nil
	}
	params := make([]Param, len(args))
	for i, a := range args {
		params[i] = Param{Ordinal: i + 1, Value: a}
	}
	return params
}

func milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
