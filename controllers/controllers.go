package controllers

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/blogem/inkwell/debugbar"
	"github.com/blogem/inkwell/models"
	"github.com/blogem/inkwell/repositories"
	"github.com/blogem/inkwell/services"
	"github.com/blogem/inkwell/userctx"
)

//go:embed templates/*.html
var templatesFS embed.FS

var templateFuncs = template.FuncMap{
	"formatDate":     models.FormatDate,
	"formatDateTime": models.FormatDateTime,
	"paragraphs":     paragraphs,
}

// layoutData is the data every page passes to the layout
type layoutData struct {
	Title       string
	CurrentPage string
	Error       string
	Success     string
	User        string
}

func newLayout(r *http.Request, title, currentPage string) layoutData {
	return layoutData{
		Title:       title,
		CurrentPage: currentPage,
		User:        userctx.GetUserID(r.Context()),
	}
}

// renderTemplate creates a template set and renders it with the provided data
func renderTemplate(w http.ResponseWriter, r *http.Request, pageTemplate string, data any) {
	renderTemplateWithStatus(w, r, http.StatusOK, pageTemplate, data)
}

// renderTemplateWithStatus creates a template set and renders it with the provided data and status code
func renderTemplateWithStatus(w http.ResponseWriter, r *http.Request, statusCode int, pageTemplate string, data any) {
	// Create a new template set with only the templates we need
	tmpl, err := template.New("layout.html").
		Funcs(templateFuncs).
		ParseFS(templatesFS, "templates/layout.html", "templates/"+pageTemplate)
	if err != nil {
		debugbar.Fail(w, r, err)
		return
	}

	// Render into a buffer so a failing template never sends half a page
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		debugbar.Fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	buf.WriteTo(w)
}

// handleError maps service errors onto responses
func handleError(w http.ResponseWriter, r *http.Request, err error, what string) {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		http.Error(w, what+" not found", http.StatusNotFound)
	case errors.Is(err, services.ErrInvalid):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		debugbar.Fail(w, r, err)
	}
}

// paragraphs splits text on blank lines
func paragraphs(text string) []string {
	var out []string
	for _, p := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Controllers holds all controller instances
type Controllers struct {
	Auth      *AuthController
	Dashboard *DashboardController
	Pages     *PageController
	Tags      *TagController
}

// NewControllers creates and initializes all controller instances
func NewControllers(services *services.Services) *Controllers {
	return &Controllers{
		Auth:      NewAuthController(),
		Dashboard: NewDashboardController(services),
		Pages:     NewPageController(services),
		Tags:      NewTagController(services),
	}
}
