package models

import (
	"testing"
	"time"
)

// Test PageForm validation
func TestPageFormValidation(t *testing.T) {
	// Test valid form
	validForm := PageForm{
		Title: "Getting started",
		Slug:  "getting-started",
	}
	errors := validForm.Validate()
	if len(errors) != 0 {
		t.Errorf("Expected no errors for valid form, got: %v", errors)
	}

	// Test invalid form
	invalidForm := PageForm{
		Title: "   ",           // Blank title
		Slug:  "Not A -- Slug", // Not canonical
	}
	errors = invalidForm.Validate()
	if len(errors) != 2 {
		t.Errorf("Expected 2 errors for invalid form, got: %v", errors)
	}
}

// Test TagForm validation
func TestTagFormValidation(t *testing.T) {
	if errors := (&TagForm{Name: "go"}).Validate(); len(errors) != 0 {
		t.Errorf("Expected no errors for valid form, got: %v", errors)
	}

	if errors := (&TagForm{Name: ""}).Validate(); len(errors) != 1 {
		t.Errorf("Expected 1 error for empty name, got: %v", errors)
	}
}

// Test slug generation
func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Hello, World!":         "hello-world",
		"  leading spaces":      "leading-spaces",
		"Go 1.24 release":       "go-1-24-release",
		"already-a-slug":        "already-a-slug",
		"trailing punctuation?": "trailing-punctuation",
		"!!!":                   "",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

// Test page helpers
func TestPageTagIDs(t *testing.T) {
	page := Page{Tags: []Tag{{ID: 3, Name: "go"}, {ID: 7, Name: "sql"}}}
	ids := page.TagIDs()
	if len(ids) != 2 || ids[0] != 3 || ids[1] != 7 {
		t.Errorf("Expected tag IDs [3 7], got %v", ids)
	}
}

// Test date formatting
func TestDateFormatting(t *testing.T) {
	ts := time.Date(2025, 10, 6, 14, 30, 0, 0, time.UTC)
	if FormatDate(ts) != "2025-10-06" {
		t.Errorf("Unexpected date format: %s", FormatDate(ts))
	}
	if FormatDateTime(ts) != "2025-10-06 14:30" {
		t.Errorf("Unexpected date time format: %s", FormatDateTime(ts))
	}
}
