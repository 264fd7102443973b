package services

import (
	"errors"

	"github.com/blogem/inkwell/content"
	"github.com/blogem/inkwell/repositories"
)

// ErrInvalid marks errors caused by invalid user input
var ErrInvalid = errors.New("invalid input")

// Services holds all service instances
type Services struct {
	Pages PageService
	Tags  TagService
	Audit AuditService
}

// NewServices creates and initializes all service instances
func NewServices(repos *repositories.Repositories, events *content.Dispatcher) *Services {
	return &Services{
		Pages: NewPageService(repos.Pages, repos.Tags, events),
		Tags:  NewTagService(repos.Tags),
		Audit: NewAuditService(repos.Audit),
	}
}
