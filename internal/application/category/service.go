package category

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/event-locator/internal/domain"
	"github.com/event-locator/internal/pkg/id"
)

const (
	fieldName        = "name"
	fieldDescription = "description"
	fieldIcon        = "icon"
)

type Service interface {
	List(ctx context.Context) ([]domain.Category, error)
	Get(ctx context.Context, categoryID string) (*domain.Category, error)
	Create(ctx context.Context, in domain.CategoryInput) (*domain.Category, error)
	Update(ctx context.Context, categoryID string, in domain.CategoryInput) (*domain.Category, error)
	Delete(ctx context.Context, categoryID string) error
}

type categoryStore interface {
	Put(ctx context.Context, c *domain.Category) error
	Get(ctx context.Context, categoryID string) (*domain.Category, error)
	GetByName(ctx context.Context, name string) (*domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
	Update(ctx context.Context, categoryID string, updates map[string]interface{}) error
	Delete(ctx context.Context, categoryID string) error
}

type ServiceDeps struct {
	CategoryRepo categoryStore
}

type service struct {
	repo categoryStore
}

func NewService(deps ServiceDeps) Service {
	return &service{repo: deps.CategoryRepo}
}

func (s *service) List(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(categories, func(i, j int) bool {
		return strings.ToLower(categories[i].Name) < strings.ToLower(categories[j].Name)
	})
	return categories, nil
}

func (s *service) Get(ctx context.Context, categoryID string) (*domain.Category, error) {
	return s.repo.Get(ctx, categoryID)
}

func (s *service) Create(ctx context.Context, in domain.CategoryInput) (*domain.Category, error) {
	if err := s.ensureNameFree(ctx, in.Name, ""); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	c := &domain.Category{
		CategoryID:  id.New(),
		Name:        in.Name,
		Description: in.Description,
		Icon:        in.Icon,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Put(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) Update(ctx context.Context, categoryID string, in domain.CategoryInput) (*domain.Category, error) {
	if err := s.ensureNameFree(ctx, in.Name, categoryID); err != nil {
		return nil, err
	}
	err := s.repo.Update(ctx, categoryID, map[string]interface{}{
		fieldName:        in.Name,
		fieldDescription: in.Description,
		fieldIcon:        in.Icon,
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, categoryID)
}

func (s *service) Delete(ctx context.Context, categoryID string) error {
	return s.repo.Delete(ctx, categoryID)
}

// ensureNameFree fails with ErrConflict when another category already uses name.
func (s *service) ensureNameFree(ctx context.Context, name, selfID string) error {
	existing, err := s.repo.GetByName(ctx, name)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.CategoryID != selfID {
		return fmt.Errorf("category %q already exists: %w", name, domain.ErrConflict)
	}
	return nil
}
