package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/blogem/inkwell/models"
	"github.com/blogem/inkwell/services"
)

// TagController handles tag management requests
type TagController struct {
	services *services.Services
}

// NewTagController creates a new tag controller
func NewTagController(services *services.Services) *TagController {
	return &TagController{
		services: services,
	}
}

// RequiredRoles lists the roles that may manage tags
func (c *TagController) RequiredRoles() []string {
	return []string{"admin", "editor"}
}

// Index handles GET /tags
func (c *TagController) Index(w http.ResponseWriter, r *http.Request) {
	c.render(w, r, http.StatusOK, &models.TagForm{}, "")
}

// Create handles POST /tags
func (c *TagController) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	form := &models.TagForm{Name: r.PostFormValue("name")}

	_, err := c.services.Tags.CreateTag(r.Context(), form)
	if errors.Is(err, services.ErrInvalid) {
		c.render(w, r, http.StatusBadRequest, form, err.Error())
		return
	}
	if err != nil {
		handleError(w, r, err, "Tag")
		return
	}

	http.Redirect(w, r, "/tags", http.StatusSeeOther)
}

// Delete handles POST /tags/{id}/delete
func (c *TagController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid tag ID", http.StatusBadRequest)
		return
	}

	if err := c.services.Tags.DeleteTag(r.Context(), id); err != nil {
		handleError(w, r, err, "Tag")
		return
	}

	http.Redirect(w, r, "/tags", http.StatusSeeOther)
}

func (c *TagController) render(w http.ResponseWriter, r *http.Request, status int, form *models.TagForm, errMsg string) {
	tags, err := c.services.Tags.ListTags(r.Context())
	if err != nil {
		handleError(w, r, err, "Tags")
		return
	}

	templateData := struct {
		layoutData
		Tags []models.Tag
		Form *models.TagForm
	}{
		layoutData: newLayout(r, "Tags", "tags"),
		Tags:       tags,
		Form:       form,
	}
	templateData.Error = errMsg

	renderTemplateWithStatus(w, r, status, "tags.html", templateData)
}
