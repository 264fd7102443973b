package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/blogem/inkwell/models"
	"github.com/blogem/inkwell/repositories/mocks"
)

func TestCreateTag(t *testing.T) {
	ctx := context.Background()

	t.Run("normalizes name", func(t *testing.T) {
		repo := mocks.NewMockTagRepository(t)
		repo.On("GetAll", ctx).Return([]models.Tag{{ID: 1, Name: "go"}}, nil)
		repo.On("Create", ctx, mock.MatchedBy(func(tag *models.Tag) bool { return tag.Name == "sql" })).Return(nil)

		tag, err := NewTagService(repo).CreateTag(ctx, &models.TagForm{Name: " SQL "})
		require.NoError(t, err)
		assert.Equal(t, "sql", tag.Name)
	})

	t.Run("rejects duplicates", func(t *testing.T) {
		repo := mocks.NewMockTagRepository(t)
		repo.On("GetAll", ctx).Return([]models.Tag{{ID: 1, Name: "go"}}, nil)

		_, err := NewTagService(repo).CreateTag(ctx, &models.TagForm{Name: "Go"})
		assert.ErrorIs(t, err, ErrInvalid)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		repo := mocks.NewMockTagRepository(t)

		_, err := NewTagService(repo).CreateTag(ctx, &models.TagForm{Name: "  "})
		assert.ErrorIs(t, err, ErrInvalid)
	})
}

func TestDeleteTag(t *testing.T) {
	ctx := context.Background()
	repo := mocks.NewMockTagRepository(t)
	repo.On("Delete", ctx, int64(3)).Return(nil)

	svc := NewTagService(repo)
	assert.NoError(t, svc.DeleteTag(ctx, 3))
	assert.ErrorIs(t, svc.DeleteTag(ctx, 0), ErrInvalid)
}

func TestRecentActivity(t *testing.T) {
	ctx := context.Background()
	repo := mocks.NewMockAuditRepository(t)
	repo.On("Recent", ctx, 10).Return([]models.AuditLogEntry{{Path: "/pages"}}, nil)

	entries, err := NewAuditService(repo).RecentActivity(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
