package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/blogem/inkwell/models"
	"github.com/blogem/inkwell/repositories"
)

// TagService interface defines tag management business logic
type TagService interface {
	ListTags(ctx context.Context) ([]models.Tag, error)
	CreateTag(ctx context.Context, form *models.TagForm) (*models.Tag, error)
	DeleteTag(ctx context.Context, id int64) error
}

// tagService implements TagService interface
type tagService struct {
	tagRepo repositories.TagRepository
}

// NewTagService creates a new tag service
func NewTagService(tagRepo repositories.TagRepository) TagService {
	return &tagService{tagRepo: tagRepo}
}

// ListTags retrieves all tags
func (s *tagService) ListTags(ctx context.Context) ([]models.Tag, error) {
	return s.tagRepo.GetAll(ctx)
}

// CreateTag creates a new tag with validation
func (s *tagService) CreateTag(ctx context.Context, form *models.TagForm) (*models.Tag, error) {
	if errors := form.Validate(); len(errors) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalid, strings.Join(errors, ", "))
	}

	name := strings.ToLower(strings.TrimSpace(form.Name))

	existing, err := s.tagRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing tags: %w", err)
	}
	for _, tag := range existing {
		if tag.Name == name {
			return nil, fmt.Errorf("%w: tag %q already exists", ErrInvalid, name)
		}
	}

	tag := &models.Tag{Name: name}
	if err := s.tagRepo.Create(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

// DeleteTag removes a tag
func (s *tagService) DeleteTag(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: tag ID %d", ErrInvalid, id)
	}
	return s.tagRepo.Delete(ctx, id)
}
