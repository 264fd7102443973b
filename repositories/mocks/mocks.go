// Package mocks provides testify mocks of the repository interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/blogem/inkwell/models"
)

// cleanupT is the subset of testing.TB the constructors need
type cleanupT interface {
	mock.TestingT
	Cleanup(func())
}

// MockPageRepository is a mock of repositories.PageRepository
type MockPageRepository struct {
	mock.Mock
}

// NewMockPageRepository creates a mock that asserts its expectations on cleanup
func NewMockPageRepository(t cleanupT) *MockPageRepository {
	m := &MockPageRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockPageRepository) GetAll(ctx context.Context) ([]models.Page, error) {
	args := m.Called(ctx)
	pages, _ := args.Get(0).([]models.Page)
	return pages, args.Error(1)
}

func (m *MockPageRepository) GetPublished(ctx context.Context, limit int) ([]models.Page, error) {
	args := m.Called(ctx, limit)
	pages, _ := args.Get(0).([]models.Page)
	return pages, args.Error(1)
}

func (m *MockPageRepository) GetByID(ctx context.Context, id string) (*models.Page, error) {
	args := m.Called(ctx, id)
	page, _ := args.Get(0).(*models.Page)
	return page, args.Error(1)
}

func (m *MockPageRepository) GetBySlug(ctx context.Context, slug string) (*models.Page, error) {
	args := m.Called(ctx, slug)
	page, _ := args.Get(0).(*models.Page)
	return page, args.Error(1)
}

func (m *MockPageRepository) Create(ctx context.Context, page *models.Page) error {
	return m.Called(ctx, page).Error(0)
}

func (m *MockPageRepository) Update(ctx context.Context, page *models.Page) error {
	return m.Called(ctx, page).Error(0)
}

func (m *MockPageRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockPageRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockTagRepository is a mock of repositories.TagRepository
type MockTagRepository struct {
	mock.Mock
}

// NewMockTagRepository creates a mock that asserts its expectations on cleanup
func NewMockTagRepository(t cleanupT) *MockTagRepository {
	m := &MockTagRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockTagRepository) GetAll(ctx context.Context) ([]models.Tag, error) {
	args := m.Called(ctx)
	tags, _ := args.Get(0).([]models.Tag)
	return tags, args.Error(1)
}

func (m *MockTagRepository) Create(ctx context.Context, tag *models.Tag) error {
	return m.Called(ctx, tag).Error(0)
}

func (m *MockTagRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

// MockAuditRepository is a mock of repositories.AuditRepository
type MockAuditRepository struct {
	mock.Mock
}

// NewMockAuditRepository creates a mock that asserts its expectations on cleanup
func NewMockAuditRepository(t cleanupT) *MockAuditRepository {
	m := &MockAuditRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockAuditRepository) Create(ctx context.Context, entry *models.AuditLogEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockAuditRepository) Recent(ctx context.Context, limit int) ([]models.AuditLogEntry, error) {
	args := m.Called(ctx, limit)
	entries, _ := args.Get(0).([]models.AuditLogEntry)
	return entries, args.Error(1)
}
