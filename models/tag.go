package models

import "strings"

// Tag labels pages
type Tag struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// TagForm represents form data for creating tags
type TagForm struct {
	Name string `json:"name"`
}

// Validate validates the tag form data
func (f *TagForm) Validate() []string {
	var errors []string

	name := strings.TrimSpace(f.Name)
	if name == "" {
		errors = append(errors, "Name is required")
	}

	if len(name) > 50 {
		errors = append(errors, "Name must be less than 50 characters")
	}

	return errors
}
