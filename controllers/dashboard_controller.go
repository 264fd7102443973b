package controllers

import (
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/blogem/inkwell/models"
	"github.com/blogem/inkwell/services"
)

// DashboardController handles dashboard-related requests
type DashboardController struct {
	services *services.Services
}

// NewDashboardController creates a new dashboard controller
func NewDashboardController(services *services.Services) *DashboardController {
	return &DashboardController{
		services: services,
	}
}

// Home handles GET /
func (c *DashboardController) Home(w http.ResponseWriter, r *http.Request) {
	pages, err := c.services.Pages.RecentPublished(r.Context(), 10)
	if err != nil {
		handleError(w, r, err, "Pages")
		return
	}

	templateData := struct {
		layoutData
		Pages []models.Page
	}{
		layoutData: newLayout(r, "Home", "home"),
		Pages:      pages,
	}

	renderTemplate(w, r, "home.html", templateData)
}

// Index handles GET /dashboard
func (c *DashboardController) Index(w http.ResponseWriter, r *http.Request) {
	var (
		pageCount int
		tags      []models.Tag
		activity  []models.AuditLogEntry
	)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		pageCount, err = c.services.Pages.CountPages(ctx)
		return err
	})
	g.Go(func() (err error) {
		tags, err = c.services.Tags.ListTags(ctx)
		return err
	})
	g.Go(func() (err error) {
		activity, err = c.services.Audit.RecentActivity(ctx, 10)
		return err
	})
	if err := g.Wait(); err != nil {
		handleError(w, r, err, "Dashboard")
		return
	}

	templateData := struct {
		layoutData
		PageCount int
		TagCount  int
		Activity  []models.AuditLogEntry
	}{
		layoutData: newLayout(r, "Dashboard", "dashboard"),
		PageCount:  pageCount,
		TagCount:   len(tags),
		Activity:   activity,
	}

	renderTemplate(w, r, "dashboard.html", templateData)
}
