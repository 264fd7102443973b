package querylog

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/blogem/inkwell/database/query"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeClock advances only when told to.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

const pkg = "github.com/blogem/inkwell/querylog"

// testFilter skips the panel internals but accepts the test functions of
// this package.
var testFilter = SourceFilter{
	Skip: []string{"runtime.", pkg + ".(*Panel).", pkg + ".SourceFilter."},
}

func newTestPanel() (*Panel, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	return New(testFilter, WithClock(clock.Now), WithEditor("")), clock
}

func TestTwoQueriesScenario(t *testing.T) {
	p, clock := newTestPanel()

	p.Start("SELECT 1", nil)
	clock.Advance(5 * time.Millisecond)
	p.Stop()
	p.Start("SELECT 2", nil)
	clock.Advance(10 * time.Millisecond)
	p.Stop()

	assert.Equal(t, "2 queries / 15.0ms", p.Summary())
	assert.Contains(t, string(p.Tab()), "2 queries / 15.0ms")

	records := p.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "SELECT 1", records[0].SQL)
	assert.Equal(t, 5*time.Millisecond, records[0].Elapsed)
	assert.Equal(t, "SELECT 2", records[1].SQL)
	assert.Equal(t, 10*time.Millisecond, records[1].Elapsed)

	detail := string(p.Panel())
	assert.Contains(t, detail, "Queries: 2, time: 15.000 ms")
	first := strings.Index(detail, "<td>5.000</td>")
	second := strings.Index(detail, "<td>10.000</td>")
	assert.True(t, first >= 0 && second > first, "rows should appear in execution order")
}

func TestRecordsFollowCallOrderAndTotalsAddUp(t *testing.T) {
	p, clock := newTestPanel()

	var want time.Duration
	for i := 1; i <= 7; i++ {
		p.Start(fmt.Sprintf("SELECT %d", i), []Param{{Ordinal: 1, Value: i}})
		d := time.Duration(i) * time.Millisecond
		clock.Advance(d)
		want += d
		p.Stop()
	}

	records := p.Records()
	require.Len(t, records, 7)
	var sum time.Duration
	for i, r := range records {
		assert.Equal(t, fmt.Sprintf("SELECT %d", i+1), r.SQL)
		sum += r.Elapsed
	}
	assert.Equal(t, want, p.Total())
	assert.Equal(t, sum, p.Total())
	assert.True(t, strings.HasPrefix(p.Summary(), "7 queries"))
	assert.Equal(t, 7, p.Len())
}

func TestEmptyPanel(t *testing.T) {
	p, _ := newTestPanel()

	assert.Equal(t, "0 queries", p.Summary())
	assert.Empty(t, p.Panel())
}

func TestZeroDurationOmitsTime(t *testing.T) {
	p, _ := newTestPanel()
	p.Start("SELECT 1", nil)
	p.Stop()

	assert.Equal(t, "1 queries", p.Summary())
	assert.Contains(t, string(p.Panel()), "<h1>Queries: 1</h1>")
}

func TestStopWithoutStartIsNoop(t *testing.T) {
	p, clock := newTestPanel()
	p.Stop()
	assert.Zero(t, p.Len())
	assert.Zero(t, p.Total())

	p.Start("SELECT 1", nil)
	clock.Advance(time.Millisecond)
	p.Stop()
	clock.Advance(time.Hour)
	p.Stop()

	assert.Equal(t, time.Millisecond, p.Total())
	assert.Equal(t, time.Millisecond, p.Records()[0].Elapsed)
}

func TestFinishCompletesTheGivenRecord(t *testing.T) {
	p, clock := newTestPanel()

	slow := p.Start("SELECT slow", nil)
	clock.Advance(2 * time.Millisecond)
	fast := p.Start("SELECT fast", nil)
	clock.Advance(time.Millisecond)
	p.Finish(fast, 1)
	clock.Advance(5 * time.Millisecond)
	p.Finish(slow, 4)
	p.Finish(slow, 9)
	p.Finish(nil, 0)

	records := p.Records()
	require.Len(t, records, 2)
	assert.Equal(t, 8*time.Millisecond, records[0].Elapsed)
	assert.EqualValues(t, 4, records[0].Rows)
	assert.Equal(t, time.Millisecond, records[1].Elapsed)
	assert.EqualValues(t, 1, records[1].Rows)
	assert.Equal(t, 9*time.Millisecond, p.Total())
}

func TestStartAttributesCaller(t *testing.T) {
	p, _ := newTestPanel()
	p.Start("SELECT 1", nil)
	p.Stop()

	src := p.Records()[0].Source
	require.NotNil(t, src)
	assert.Equal(t, pkg+".TestStartAttributesCaller", src.Function)
	assert.True(t, strings.HasSuffix(src.File, "panel_test.go"))
	assert.Positive(t, src.Line)
}

func TestSourceFilterAllowOverridesSkip(t *testing.T) {
	p := New(SourceFilter{Skip: []string{""}, Allow: nil})
	p.Start("SELECT 1", nil)
	require.NotNil(t, p.Records()[0].Source, "empty prefixes never match")

	p = New(SourceFilter{
		Skip:  append(DefaultSkip(), "testing."),
		Allow: []string{pkg + ".TestSourceFilterAllowOverridesSkip"},
	})
	p.Start("SELECT 1", nil)
	src := p.Records()[0].Source
	require.NotNil(t, src)
	assert.Equal(t, pkg+".TestSourceFilterAllowOverridesSkip", src.Function)

	p = New(SourceFilter{Skip: append(DefaultSkip(), "testing.")})
	p.Start("SELECT 1", nil)
	assert.Nil(t, p.Records()[0].Source, "every frame is skipped")
}

func TestDetailRendersParamsAndSource(t *testing.T) {
	clock := &fakeClock{}
	p := New(testFilter, WithClock(clock.Now), WithEditor("editor://open/?file=%file&line=%line"))

	p.Start("SELECT * FROM pages WHERE slug = ?", []Param{{Ordinal: 1, Value: "<home>"}})
	clock.Advance(1500 * time.Microsecond)
	p.Stop()

	detail := string(p.Panel())
	assert.Contains(t, detail, "<td>1.500</td>")
	assert.Contains(t, detail, "<strong>WHERE</strong>")
	assert.Contains(t, detail, `&#34;&lt;home&gt;&#34;`)
	assert.Contains(t, detail, "querylog/panel_test.go:")
	assert.Contains(t, detail, `href="editor://open/?file=`)
}

func TestRenderErrorDriverFailure(t *testing.T) {
	p, _ := newTestPanel()
	p.Start("INSERT INTO tags (name) VALUES (?)", []Param{{Ordinal: 1, Value: "go"}})
	p.Stop()

	err := fmt.Errorf("failed to create tag: %w", sqlite3.Error{Code: sqlite3.ErrConstraint})
	panel, ok := p.RenderError(err)

	require.True(t, ok)
	assert.Equal(t, "SQL", panel.Tab)
	assert.Contains(t, string(panel.Panel), "<strong>INSERT INTO</strong> tags")
	assert.Contains(t, string(panel.Panel), `<td width="200">1</td><td><pre>(string) (len=2) &#34;go&#34;</pre></td>`)
}

func TestRenderErrorDriverFailureWithoutQueries(t *testing.T) {
	p, _ := newTestPanel()

	_, ok := p.RenderError(sqlite3.Error{Code: sqlite3.ErrBusy})
	assert.False(t, ok)
}

func TestRenderErrorQueryBuilderFailure(t *testing.T) {
	p, _ := newTestPanel()

	_, _, err := query.Update("pages").Set("title", "x").Build()
	panel, ok := p.RenderError(fmt.Errorf("saving page: %w", err))

	require.True(t, ok)
	assert.Equal(t, "Query", panel.Tab)
	assert.Contains(t, string(panel.Panel), "<strong>UPDATE</strong> pages")
	assert.Contains(t, string(panel.Panel), "<b>Parameters</b>")

	_, ok = p.RenderError(&query.Error{Err: query.ErrNoTable})
	assert.False(t, ok, "builder errors without a statement have nothing to show")
}

func TestRenderErrorUnrecognized(t *testing.T) {
	p, _ := newTestPanel()
	p.Start("SELECT 1", nil)
	p.Stop()

	_, ok := p.RenderError(errors.New("template: no such file"))
	assert.False(t, ok)
}

func TestFormatSQL(t *testing.T) {
	got := string(FormatSQL("select id,\n   title from pages where published = 1 and slug like '%a%' order by title"))
	want := `<code class="querylog-sql"><strong>select</strong> id, title <br>
<strong>from</strong> pages <br>
<strong>where</strong> published = 1 <strong>and</strong> slug <strong>like</strong> &#39;%a%&#39; <br>
<strong>order by</strong> title</code>`
	assert.Equal(t, want, got)
}

func TestParamKey(t *testing.T) {
	assert.Equal(t, "2", Param{Ordinal: 2}.Key())
	assert.Equal(t, "slug", Param{Name: "slug", Ordinal: 1}.Key())
}
