package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/blogem/inkwell/database/query"
	"github.com/blogem/inkwell/models"
	"github.com/blogem/inkwell/userctx"
)

// PageRepository interface defines page database operations
type PageRepository interface {
	GetAll(ctx context.Context) ([]models.Page, error)
	GetPublished(ctx context.Context, limit int) ([]models.Page, error)
	GetByID(ctx context.Context, id string) (*models.Page, error)
	GetBySlug(ctx context.Context, slug string) (*models.Page, error)
	Create(ctx context.Context, page *models.Page) error
	Update(ctx context.Context, page *models.Page) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// pageRepository implements PageRepository interface
type pageRepository struct {
	db *sql.DB
}

// NewPageRepository creates a new page repository
func NewPageRepository(db *sql.DB) PageRepository {
	return &pageRepository{db: db}
}

var pageColumns = []string{
	"id", "slug", "title", "body", "published", "created_at",
	"created_by", "modified_by", "modified_at",
}

// GetAll retrieves all pages with their tags
func (r *pageRepository) GetAll(ctx context.Context) ([]models.Page, error) {
	return r.list(ctx, query.Select("pages", pageColumns...).OrderBy("title ASC"))
}

// GetPublished retrieves the newest published pages
func (r *pageRepository) GetPublished(ctx context.Context, limit int) ([]models.Page, error) {
	return r.list(ctx, query.Select("pages", pageColumns...).
		Where("published = ?", true).
		OrderBy("created_at DESC").
		Limit(limit))
}

// GetByID retrieves a page by ID
func (r *pageRepository) GetByID(ctx context.Context, id string) (*models.Page, error) {
	return r.get(ctx, query.Select("pages", pageColumns...).Where("id = ?", id), id)
}

// GetBySlug retrieves a page by slug
func (r *pageRepository) GetBySlug(ctx context.Context, slug string) (*models.Page, error) {
	return r.get(ctx, query.Select("pages", pageColumns...).Where("slug = ?", slug), slug)
}

// Create inserts a new page and its tag assignments
func (r *pageRepository) Create(ctx context.Context, page *models.Page) error {
	if page.ID == "" {
		page.ID = uuid.NewString()
	}
	page.CreatedAt = time.Now()
	page.CreatedBy = userctx.GetUserEmail(ctx)

	return r.inTx(ctx, func(tx *sql.Tx) error {
		_, err := query.Exec(ctx, tx, query.Insert("pages").
			Set("id", page.ID).
			Set("slug", page.Slug).
			Set("title", page.Title).
			Set("body", page.Body).
			Set("published", page.Published).
			Set("created_at", page.CreatedAt).
			Set("created_by", page.CreatedBy))
		if err != nil {
			return fmt.Errorf("failed to create page: %w", err)
		}
		return r.assignTags(ctx, tx, page)
	})
}

// Update updates an existing page and replaces its tag assignments
func (r *pageRepository) Update(ctx context.Context, page *models.Page) error {
	now := time.Now()
	page.ModifiedBy = userctx.GetUserEmail(ctx)
	page.ModifiedAt = &now

	return r.inTx(ctx, func(tx *sql.Tx) error {
		res, err := query.Exec(ctx, tx, query.Update("pages").
			Set("slug", page.Slug).
			Set("title", page.Title).
			Set("body", page.Body).
			Set("published", page.Published).
			Set("modified_by", page.ModifiedBy).
			Set("modified_at", now).
			Where("id = ?", page.ID))
		if err != nil {
			return fmt.Errorf("failed to update page: %w", err)
		}

		rowsAffected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return fmt.Errorf("page %s: %w", page.ID, ErrNotFound)
		}

		if _, err := query.Exec(ctx, tx, query.Delete("page_tags").Where("page_id = ?", page.ID)); err != nil {
			return fmt.Errorf("failed to clear page tags: %w", err)
		}
		return r.assignTags(ctx, tx, page)
	})
}

// Delete removes a page; tag assignments cascade
func (r *pageRepository) Delete(ctx context.Context, id string) error {
	res, err := query.Exec(ctx, r.db, query.Delete("pages").Where("id = ?", id))
	if err != nil {
		return fmt.Errorf("failed to delete page: %w", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("page %s: %w", id, ErrNotFound)
	}

	return nil
}

// Count returns the total number of pages
func (r *pageRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := query.QueryRow(ctx, r.db, query.Select("pages", "COUNT(*)"), &count); err != nil {
		return 0, fmt.Errorf("failed to count pages: %w", err)
	}
	return count, nil
}

func (r *pageRepository) get(ctx context.Context, b query.Builder, key string) (*models.Page, error) {
	pages, err := r.list(ctx, b)
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("page %s: %w", key, ErrNotFound)
	}
	return &pages[0], nil
}

func (r *pageRepository) list(ctx context.Context, b query.Builder) ([]models.Page, error) {
	rows, err := query.Query(ctx, r.db, b)
	if err != nil {
		return nil, fmt.Errorf("failed to query pages: %w", err)
	}
	defer rows.Close()

	var pages []models.Page
	for rows.Next() {
		var page models.Page
		var modifiedBy sql.NullString
		var modifiedAt sql.NullTime

		err := rows.Scan(
			&page.ID,
			&page.Slug,
			&page.Title,
			&page.Body,
			&page.Published,
			&page.CreatedAt,
			&page.CreatedBy,
			&modifiedBy,
			&modifiedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}

		// Convert NULL values to empty string/nil
		if modifiedBy.Valid {
			page.ModifiedBy = modifiedBy.String
		}
		if modifiedAt.Valid {
			page.ModifiedAt = &modifiedAt.Time
		}

		pages = append(pages, page)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pages: %w", err)
	}
	rows.Close()

	if len(pages) == 0 {
		return pages, nil
	}
	if err := r.loadTags(ctx, pages); err != nil {
		return nil, err
	}
	return pages, nil
}

// loadTags fills the tags of all pages with a single query
func (r *pageRepository) loadTags(ctx context.Context, pages []models.Page) error {
	b := query.Select("page_tags pt", "pt.page_id", "t.id", "t.name").
		Join("JOIN tags t ON t.id = pt.tag_id").
		OrderBy("t.name ASC")
	if len(pages) == 1 {
		b.Where("pt.page_id = ?", pages[0].ID)
	}

	rows, err := query.Query(ctx, r.db, b)
	if err != nil {
		return fmt.Errorf("failed to query page tags: %w", err)
	}
	defer rows.Close()

	index := make(map[string]int, len(pages))
	for i, page := range pages {
		index[page.ID] = i
	}

	for rows.Next() {
		var pageID string
		var tag models.Tag
		if err := rows.Scan(&pageID, &tag.ID, &tag.Name); err != nil {
			return fmt.Errorf("failed to scan page tag: %w", err)
		}
		if i, ok := index[pageID]; ok {
			pages[i].Tags = append(pages[i].Tags, tag)
		}
	}

	return rows.Err()
}

func (r *pageRepository) assignTags(ctx context.Context, tx *sql.Tx, page *models.Page) error {
	for _, tag := range page.Tags {
		_, err := query.Exec(ctx, tx, query.Insert("page_tags").
			Set("page_id", page.ID).
			Set("tag_id", tag.ID))
		if err != nil {
			return fmt.Errorf("failed to assign tag %d: %w", tag.ID, err)
		}
	}
	return nil
}

func (r *pageRepository) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
