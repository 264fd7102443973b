package repositories

import (
	"database/sql"
	"errors"
)

// ErrNotFound is returned when a requested row does not exist
var ErrNotFound = errors.New("not found")

// Repositories struct holds all repository interfaces
type Repositories struct {
	Pages PageRepository
	Tags  TagRepository
	Audit AuditRepository
}

// NewRepositories creates and initializes all repositories
func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		Pages: NewPageRepository(db),
		Tags:  NewTagRepository(db),
		Audit: NewAuditRepository(db),
	}
}
