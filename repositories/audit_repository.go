package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/blogem/inkwell/database/query"
	"github.com/blogem/inkwell/models"
)

// AuditRepository handles audit log persistence
type AuditRepository interface {
	Create(ctx context.Context, entry *models.AuditLogEntry) error
	Recent(ctx context.Context, limit int) ([]models.AuditLogEntry, error)
}

type sqliteAuditRepository struct {
	db *sql.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *sql.DB) AuditRepository {
	return &sqliteAuditRepository{db: db}
}

// Create inserts a new audit log entry
func (r *sqliteAuditRepository) Create(ctx context.Context, entry *models.AuditLogEntry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	res, err := query.Exec(ctx, r.db, query.Insert("audit_log").
		Set("timestamp", entry.Timestamp).
		Set("user_email", entry.UserEmail).
		Set("method", entry.Method).
		Set("path", entry.Path).
		Set("form_data", entry.FormData).
		Set("user_agent", entry.UserAgent).
		Set("ip_address", entry.IPAddress))
	if err != nil {
		return fmt.Errorf("failed to create audit log entry: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get audit log entry ID: %w", err)
	}
	entry.ID = id

	return nil
}

// Recent returns the newest audit log entries first
func (r *sqliteAuditRepository) Recent(ctx context.Context, limit int) ([]models.AuditLogEntry, error) {
	rows, err := query.Query(ctx, r.db, query.Select("audit_log",
		"id", "timestamp", "user_email", "method", "path", "form_data", "user_agent", "ip_address").
		OrderBy("timestamp DESC", "id DESC").
		Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer rows.Close()

	var entries []models.AuditLogEntry
	for rows.Next() {
		var entry models.AuditLogEntry
		var formData, userAgent, ipAddress sql.NullString

		err := rows.Scan(
			&entry.ID,
			&entry.Timestamp,
			&entry.UserEmail,
			&entry.Method,
			&entry.Path,
			&formData,
			&userAgent,
			&ipAddress,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit log entry: %w", err)
		}

		entry.FormData = formData.String
		entry.UserAgent = userAgent.String
		entry.IPAddress = ipAddress.String
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit log: %w", err)
	}

	return entries, nil
}
