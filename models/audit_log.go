package models

import "time"

// AuditLogEntry represents a single HTTP mutation event
type AuditLogEntry struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	UserEmail string    `json:"user_email"`
	Method    string    `json:"method"`
	Path      string    `json:"path"`
	FormData  string    `json:"form_data,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	IPAddress string    `json:"ip_address,omitempty"`
}
