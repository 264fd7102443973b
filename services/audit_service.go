package services

import (
	"context"

	"github.com/blogem/inkwell/models"
	"github.com/blogem/inkwell/repositories"
)

// AuditService exposes the audit trail
type AuditService interface {
	RecentActivity(ctx context.Context, limit int) ([]models.AuditLogEntry, error)
}

type auditService struct {
	auditRepo repositories.AuditRepository
}

// NewAuditService creates a new audit service
func NewAuditService(auditRepo repositories.AuditRepository) AuditService {
	return &auditService{auditRepo: auditRepo}
}

// RecentActivity returns the newest audit entries, newest first
func (s *auditService) RecentActivity(ctx context.Context, limit int) ([]models.AuditLogEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.auditRepo.Recent(ctx, limit)
}
