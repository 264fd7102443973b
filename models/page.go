package models

import (
	"strings"
	"time"
)

// Page represents a content page
type Page struct {
	ID          string    `json:"id" db:"id"`
	Slug        string    `json:"slug" db:"slug"`
	Title       string    `json:"title" db:"title"`
	Body        string    `json:"body" db:"body"`
	Published   bool      `json:"published" db:"published"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	Tags        []Tag     `json:"tags,omitempty"`
	AuditFields           // Embedded audit fields
}

// TagIDs returns the IDs of the page's tags
func (p *Page) TagIDs() []int64 {
	ids := make([]int64, len(p.Tags))
	for i, tag := range p.Tags {
		ids[i] = tag.ID
	}
	return ids
}

// PageForm represents form data for creating/updating pages
type PageForm struct {
	Title     string  `json:"title"`
	Slug      string  `json:"slug"` // derived from the title when empty
	Body      string  `json:"body"`
	Published bool    `json:"published"`
	TagIDs    []int64 `json:"tag_ids"`
}

// Validate validates the page form data
func (f *PageForm) Validate() []string {
	var errors []string

	title := strings.TrimSpace(f.Title)
	if title == "" {
		errors = append(errors, "Title is required")
	}

	if len(title) > 200 {
		errors = append(errors, "Title must be less than 200 characters")
	}

	if f.Slug != "" && !isValidSlug(f.Slug) {
		errors = append(errors, "Slug may only contain lowercase letters, digits and single hyphens")
	}

	return errors
}

// Slugify turns a title into a URL slug ("Hello, World!" becomes "hello-world")
func Slugify(title string) string {
	var b strings.Builder
	pendingHyphen := false

	for _, char := range strings.ToLower(title) {
		if (char >= 'a' && char <= 'z') || (char >= '0' && char <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(char)
			pendingHyphen = false
			continue
		}
		pendingHyphen = true
	}

	return b.String()
}

// isValidSlug checks that a slug is already in Slugify's canonical form
func isValidSlug(slug string) bool {
	return slug == Slugify(slug)
}
