package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/blogem/inkwell/content"
	"github.com/blogem/inkwell/models"
	"github.com/blogem/inkwell/repositories"
)

// PageService interface defines page management business logic.
// Every operation fires the matching content.Event on the dispatcher.
type PageService interface {
	ListPages(ctx context.Context) ([]models.Page, error)
	RecentPublished(ctx context.Context, limit int) ([]models.Page, error)
	CountPages(ctx context.Context) (int, error)
	GetPage(ctx context.Context, id string) (*models.Page, error)
	ViewPage(ctx context.Context, slug string) (*models.Page, error)
	CreatePage(ctx context.Context, form *models.PageForm) (*models.Page, error)
	UpdatePage(ctx context.Context, id string, form *models.PageForm) (*models.Page, error)
	DeletePage(ctx context.Context, id string) error
}

// pageService implements PageService interface
type pageService struct {
	pageRepo repositories.PageRepository
	tagRepo  repositories.TagRepository
	events   *content.Dispatcher
}

// NewPageService creates a new page service
func NewPageService(pageRepo repositories.PageRepository, tagRepo repositories.TagRepository, events *content.Dispatcher) PageService {
	return &pageService{
		pageRepo: pageRepo,
		tagRepo:  tagRepo,
		events:   events,
	}
}

// ListPages retrieves all pages, drafts included
func (s *pageService) ListPages(ctx context.Context) ([]models.Page, error) {
	return s.pageRepo.GetAll(ctx)
}

// RecentPublished retrieves the newest published pages
func (s *pageService) RecentPublished(ctx context.Context, limit int) ([]models.Page, error) {
	if limit <= 0 {
		limit = 5
	}
	return s.pageRepo.GetPublished(ctx, limit)
}

// CountPages returns the number of pages
func (s *pageService) CountPages(ctx context.Context) (int, error) {
	return s.pageRepo.Count(ctx)
}

// GetPage loads a page for editing
func (s *pageService) GetPage(ctx context.Context, id string) (*models.Page, error) {
	page, err := s.pageRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.events.Fire(ctx, content.OnLoad, page); err != nil {
		return nil, err
	}
	return page, nil
}

// ViewPage loads a published page for display
func (s *pageService) ViewPage(ctx context.Context, slug string) (*models.Page, error) {
	page, err := s.pageRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !page.Published {
		return nil, fmt.Errorf("page %s: %w", slug, repositories.ErrNotFound)
	}

	for _, event := range []content.Event{content.OnLoad, content.OnRender} {
		if err := s.events.Fire(ctx, event, page); err != nil {
			return nil, err
		}
	}
	return page, nil
}

// CreatePage validates the form and stores a new page
func (s *pageService) CreatePage(ctx context.Context, form *models.PageForm) (*models.Page, error) {
	page := &models.Page{}
	if err := s.apply(ctx, page, form); err != nil {
		return nil, err
	}

	if err := s.events.Fire(ctx, content.OnCreate, page); err != nil {
		return nil, err
	}
	if err := s.events.Fire(ctx, content.OnSave, page); err != nil {
		return nil, err
	}

	if err := s.pageRepo.Create(ctx, page); err != nil {
		return nil, err
	}
	return page, nil
}

// UpdatePage validates the form and updates an existing page
func (s *pageService) UpdatePage(ctx context.Context, id string, form *models.PageForm) (*models.Page, error) {
	page, err := s.pageRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.apply(ctx, page, form); err != nil {
		return nil, err
	}

	if err := s.events.Fire(ctx, content.OnSave, page); err != nil {
		return nil, err
	}

	if err := s.pageRepo.Update(ctx, page); err != nil {
		return nil, err
	}
	return page, nil
}

// DeletePage removes a page
func (s *pageService) DeletePage(ctx context.Context, id string) error {
	page, err := s.pageRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.events.Fire(ctx, content.OnRemove, page); err != nil {
		return err
	}

	return s.pageRepo.Delete(ctx, id)
}

// apply validates form and copies it onto page
func (s *pageService) apply(ctx context.Context, page *models.Page, form *models.PageForm) error {
	if errs := form.Validate(); len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(errs, ", "))
	}

	slug := form.Slug
	if slug == "" {
		slug = models.Slugify(form.Title)
	}
	if slug == "" {
		return fmt.Errorf("%w: title %q does not yield a slug", ErrInvalid, form.Title)
	}

	existing, err := s.pageRepo.GetBySlug(ctx, slug)
	switch {
	case err == nil && existing.ID != page.ID:
		return fmt.Errorf("%w: slug %q is already in use", ErrInvalid, slug)
	case err != nil && !errors.Is(err, repositories.ErrNotFound):
		return fmt.Errorf("failed to check slug: %w", err)
	}

	tags, err := s.resolveTags(ctx, form.TagIDs)
	if err != nil {
		return err
	}

	page.Title = strings.TrimSpace(form.Title)
	page.Slug = slug
	page.Body = form.Body
	page.Published = form.Published
	page.Tags = tags
	return nil
}

// resolveTags maps tag IDs to known tags, rejecting unknown IDs
func (s *pageService) resolveTags(ctx context.Context, ids []int64) ([]models.Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	all, err := s.tagRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load tags: %w", err)
	}

	known := make(map[int64]models.Tag, len(all))
	for _, tag := range all {
		known[tag.ID] = tag
	}

	tags := make([]models.Tag, 0, len(ids))
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		tag, ok := known[id]
		if !ok {
			return nil, fmt.Errorf("%w: unknown tag %d", ErrInvalid, id)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		tags = append(tags, tag)
	}
	return tags, nil
}
