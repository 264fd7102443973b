package models

import (
	"time"
)

// AuditFields contains common audit tracking fields
type AuditFields struct {
	CreatedBy  string     `json:"created_by,omitempty"`
	ModifiedBy string     `json:"modified_by,omitempty"`
	ModifiedAt *time.Time `json:"modified_at,omitempty"`
}

// FormatDate formats a time as YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// FormatDateTime formats a time as YYYY-MM-DD HH:MM
func FormatDateTime(t time.Time) string {
	return t.Format("2006-01-02 15:04")
}
