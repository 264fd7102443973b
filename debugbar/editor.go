package debugbar

import (
	"fmt"
	"html/template"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultEditor opens a file in the local editor through a URL handler.
const DefaultEditor = "editor://open/?file=%file&line=%line"

// EditorLink returns a link opening file at line. The visible text keeps the
// last directory and the file name. An empty editor renders plain text.
func EditorLink(editor, file string, line int) template.HTML {
	dir, base := filepath.Split(file)
	display := base
	if parent := filepath.Base(dir); dir != "" && parent != "." && parent != string(filepath.Separator) {
		display = parent + "/" + base
	}
	text := template.HTMLEscapeString(display) + ":" + strconv.Itoa(line)

	if editor == "" {
		return template.HTML(`<span class="debugbar-source">` + text + `</span>`)
	}
	href := strings.NewReplacer(
		"%file", url.QueryEscape(file),
		"%line", strconv.Itoa(line),
	).Replace(editor)

	return template.HTML(fmt.Sprintf(`<a href="%s" class="debugbar-source" title="%s">%s</a>`,
		template.HTMLEscapeString(href),
		template.HTMLEscapeString(file+":"+strconv.Itoa(line)),
		text,
	))
}
