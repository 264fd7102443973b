package querylog

import (
	"bytes"
	"fmt"
	"html/template"
	"regexp"
	"strings"
	"time"

	"github.com/blogem/inkwell/debugbar"
	"github.com/davecgh/go-spew/spew"
)

var (
	clauseKeywords = regexp.MustCompile(`(?i)\b(SELECT|UPDATE|INSERT\s+INTO|REPLACE\s+INTO|DELETE|UNION(?:\s+ALL)?|FROM|WHERE|HAVING|GROUP\s+BY|ORDER\s+BY|LIMIT|OFFSET|SET|VALUES|(?:LEFT\s+|RIGHT\s+|INNER\s+|CROSS\s+)?JOIN)\b`)
	wordKeywords   = regexp.MustCompile(`(?i)\b(ALL|DISTINCT|AS|USING|ON|AND|OR|IN|IS|NOT|NULL|LIKE|BETWEEN|ASC|DESC|TRUE|FALSE)\b`)
)

var dumper = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// FormatSQL renders a statement for display: whitespace collapsed, each
// clause on its own line and keywords emphasised.
func FormatSQL(sql string) template.HTML {
	s := template.HTMLEscapeString(strings.Join(strings.Fields(sql), " "))
	s = wordKeywords.ReplaceAllString(s, "<strong>$1</strong>")
	s = clauseKeywords.ReplaceAllString(s, "<br>\n<strong>$1</strong>")
	s = strings.TrimPrefix(s, "<br>\n")
	return template.HTML(`<code class="querylog-sql">` + s + `</code>`)
}

func dumpValue(v any) string {
	return strings.TrimSpace(dumper.Sdump(v))
}

type paramView struct {
	Key   string
	Value string
}

type rowView struct {
	Time   string
	SQL    template.HTML
	Source template.HTML
	Params []paramView
	Rows   int64
}

func renderDetail(records []Record, total time.Duration, editor string) (template.HTML, error) {
	data := struct {
		Count int
		Total string
		Rows  []rowView
	}{Count: len(records)}
	if total > 0 {
		data.Total = fmt.Sprintf("%0.3f", milliseconds(total))
	}

	for _, r := range records {
		row := rowView{
			Time: fmt.Sprintf("%0.3f", milliseconds(r.Elapsed)),
			SQL:  FormatSQL(r.SQL),
			Rows: r.Rows,
		}
		if r.Source != nil {
			row.Source = debugbar.EditorLink(editor, r.Source.File, r.Source.Line)
		}
		for _, param := range r.Params {
			row.Params = append(row.Params, paramView{Key: param.Key(), Value: dumpValue(param.Value)})
		}
		data.Rows = append(data.Rows, row)
	}

	var buf bytes.Buffer
	if err := detailTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

func renderStatement(sql string, params []Param) (template.HTML, error) {
	data := struct {
		SQL    template.HTML
		Params []paramView
	}{SQL: FormatSQL(sql)}
	for _, param := range params {
		data.Params = append(data.Params, paramView{Key: param.Key(), Value: dumpValue(param.Value)})
	}

	var buf bytes.Buffer
	if err := statementTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

const styles = `<style>
.querylog td.querylog-sql { background: #fff; }
.querylog .debugbar-source { color: #bbb; }
.querylog pre { margin: 0; max-height: 150px; overflow: auto; }
</style>`

var detailTemplate = template.Must(template.New("detail").Parse(styles + `
<h1>Queries: {{.Count}}{{if .Total}}, time: {{.Total}} ms{{end}}</h1>
<div class="querylog">
<table>
<tr><th>Time&nbsp;ms</th><th>SQL Statement</th><th>Params</th><th>Rows</th></tr>
{{range .Rows}}<tr><td>{{.Time}}</td><td class="querylog-sql">{{.SQL}}{{with .Source}}<br>{{.}}{{end}}</td><td>{{if .Params}}<table>{{range .Params}}<tr><th>{{.Key}}</th><td><pre>{{.Value}}</pre></td></tr>{{end}}</table>{{end}}</td><td>{{.Rows}}</td></tr>
{{end}}</table>
</div>`))

var statementTemplate = template.Must(template.New("statement").Parse(styles + `
<div class="querylog">
<p><b>Query</b></p>
<table><tr><td class="querylog-sql">{{.SQL}}</td></tr></table>
{{if .Params}}<p><b>Parameters</b></p>
<table>{{range .Params}}<tr><td width="200">{{.Key}}</td><td><pre>{{.Value}}</pre></td></tr>{{end}}</table>
{{end}}</div>`))
