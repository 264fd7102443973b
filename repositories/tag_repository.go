package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/blogem/inkwell/database/query"
	"github.com/blogem/inkwell/models"
)

// TagRepository interface defines tag database operations
type TagRepository interface {
	GetAll(ctx context.Context) ([]models.Tag, error)
	Create(ctx context.Context, tag *models.Tag) error
	Delete(ctx context.Context, id int64) error
}

// tagRepository implements TagRepository interface
type tagRepository struct {
	db *sql.DB
}

// NewTagRepository creates a new tag repository
func NewTagRepository(db *sql.DB) TagRepository {
	return &tagRepository{db: db}
}

// GetAll retrieves all tags ordered by name
func (r *tagRepository) GetAll(ctx context.Context) ([]models.Tag, error) {
	rows, err := query.Query(ctx, r.db, query.Select("tags", "id", "name").OrderBy("name ASC"))
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		var tag models.Tag
		if err := rows.Scan(&tag.ID, &tag.Name); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, tag)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tags: %w", err)
	}

	return tags, nil
}

// Create inserts a new tag
func (r *tagRepository) Create(ctx context.Context, tag *models.Tag) error {
	res, err := query.Exec(ctx, r.db, query.Insert("tags").Set("name", tag.Name))
	if err != nil {
		return fmt.Errorf("failed to create tag: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get tag ID: %w", err)
	}
	tag.ID = id

	return nil
}

// Delete removes a tag; page assignments cascade
func (r *tagRepository) Delete(ctx context.Context, id int64) error {
	res, err := query.Exec(ctx, r.db, query.Delete("tags").Where("id = ?", id))
	if err != nil {
		return fmt.Errorf("failed to delete tag: %w", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("tag %d: %w", id, ErrNotFound)
	}

	return nil
}
