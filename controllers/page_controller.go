package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/blogem/inkwell/forms"
	"github.com/blogem/inkwell/models"
	"github.com/blogem/inkwell/services"
)

// PageController handles page management requests
type PageController struct {
	services *services.Services
}

// NewPageController creates a new page controller
func NewPageController(services *services.Services) *PageController {
	return &PageController{
		services: services,
	}
}

// RequiredRoles lists the roles that may manage pages
func (c *PageController) RequiredRoles() []string {
	return []string{"editor", "admin"}
}

type pageFormData struct {
	layoutData
	Action string
	Form   *models.PageForm
	Tags   *forms.CheckboxList
}

// Index handles GET /pages
func (c *PageController) Index(w http.ResponseWriter, r *http.Request) {
	pages, err := c.services.Pages.ListPages(r.Context())
	if err != nil {
		handleError(w, r, err, "Pages")
		return
	}

	templateData := struct {
		layoutData
		Pages []models.Page
	}{
		layoutData: newLayout(r, "Pages", "pages"),
		Pages:      pages,
	}

	renderTemplate(w, r, "pages.html", templateData)
}

// Show handles GET /p/{slug}
func (c *PageController) Show(w http.ResponseWriter, r *http.Request) {
	page, err := c.services.Pages.ViewPage(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		handleError(w, r, err, "Page")
		return
	}

	templateData := struct {
		layoutData
		Page *models.Page
	}{
		layoutData: newLayout(r, page.Title, "page"),
		Page:       page,
	}

	renderTemplate(w, r, "page_show.html", templateData)
}

// New handles GET /pages/new
func (c *PageController) New(w http.ResponseWriter, r *http.Request) {
	tags, err := c.tagList(r, nil)
	if err != nil {
		handleError(w, r, err, "Tags")
		return
	}

	renderTemplate(w, r, "page_form.html", pageFormData{
		layoutData: newLayout(r, "New page", "pages"),
		Action:     "/pages",
		Form:       &models.PageForm{},
		Tags:       tags,
	})
}

// Create handles POST /pages
func (c *PageController) Create(w http.ResponseWriter, r *http.Request) {
	form, tags, err := c.parseForm(r)
	if err != nil {
		handleError(w, r, err, "Tags")
		return
	}

	_, err = c.services.Pages.CreatePage(r.Context(), form)
	if errors.Is(err, services.ErrInvalid) {
		// Reload page with form data and error
		data := pageFormData{
			layoutData: newLayout(r, "New page", "pages"),
			Action:     "/pages",
			Form:       form,
			Tags:       tags,
		}
		data.Error = err.Error()
		renderTemplateWithStatus(w, r, http.StatusBadRequest, "page_form.html", data)
		return
	}
	if err != nil {
		handleError(w, r, err, "Page")
		return
	}

	// Redirect to pages after successful creation
	http.Redirect(w, r, "/pages", http.StatusSeeOther)
}

// Edit handles GET /pages/{id}/edit
func (c *PageController) Edit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	page, err := c.services.Pages.GetPage(r.Context(), id)
	if err != nil {
		handleError(w, r, err, "Page")
		return
	}

	tags, err := c.tagList(r, page.TagIDs())
	if err != nil {
		handleError(w, r, err, "Tags")
		return
	}

	renderTemplate(w, r, "page_form.html", pageFormData{
		layoutData: newLayout(r, "Edit page", "pages"),
		Action:     "/pages/" + id,
		Form: &models.PageForm{
			Title:     page.Title,
			Slug:      page.Slug,
			Body:      page.Body,
			Published: page.Published,
		},
		Tags: tags,
	})
}

// Update handles POST /pages/{id}
func (c *PageController) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	form, tags, err := c.parseForm(r)
	if err != nil {
		handleError(w, r, err, "Tags")
		return
	}

	_, err = c.services.Pages.UpdatePage(r.Context(), id, form)
	if errors.Is(err, services.ErrInvalid) {
		data := pageFormData{
			layoutData: newLayout(r, "Edit page", "pages"),
			Action:     "/pages/" + id,
			Form:       form,
			Tags:       tags,
		}
		data.Error = err.Error()
		renderTemplateWithStatus(w, r, http.StatusBadRequest, "page_form.html", data)
		return
	}
	if err != nil {
		handleError(w, r, err, "Page")
		return
	}

	http.Redirect(w, r, "/pages", http.StatusSeeOther)
}

// Delete handles POST /pages/{id}/delete
func (c *PageController) Delete(w http.ResponseWriter, r *http.Request) {
	if err := c.services.Pages.DeletePage(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleError(w, r, err, "Page")
		return
	}

	http.Redirect(w, r, "/pages", http.StatusSeeOther)
}

// tagList builds the tag checkbox list with the given tags checked
func (c *PageController) tagList(r *http.Request, checked []int64) (*forms.CheckboxList, error) {
	tags, err := c.services.Tags.ListTags(r.Context())
	if err != nil {
		return nil, err
	}

	items := make([]forms.Item, len(tags))
	for i, tag := range tags {
		items[i] = forms.Item{Value: strconv.FormatInt(tag.ID, 10), Caption: tag.Name}
	}

	values := make([]string, len(checked))
	for i, id := range checked {
		values[i] = strconv.FormatInt(id, 10)
	}

	return forms.NewCheckboxList("tags", "Tags", items...).SetValue(values), nil
}

// parseForm reads the page form and the checked tags
func (c *PageController) parseForm(r *http.Request) (*models.PageForm, *forms.CheckboxList, error) {
	if err := r.ParseForm(); err != nil {
		return nil, nil, errors.Join(services.ErrInvalid, err)
	}

	tags, err := c.tagList(r, nil)
	if err != nil {
		return nil, nil, err
	}
	tags.LoadHTTPData(r.PostForm)

	form := &models.PageForm{
		Title:     r.PostFormValue("title"),
		Slug:      r.PostFormValue("slug"),
		Body:      r.PostFormValue("body"),
		Published: r.PostFormValue("published") == "on",
	}
	for _, v := range tags.Value() {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, nil, errors.Join(services.ErrInvalid, err)
		}
		form.TagIDs = append(form.TagIDs, id)
	}

	return form, tags, nil
}
