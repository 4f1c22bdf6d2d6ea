package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/example/goshop/internal/datamodels/category"
)

type CategoryService struct {
	repo category.Repository
}

func NewCategoryService(repo category.Repository) *CategoryService {
	return &CategoryService{repo: repo}
}

func (s *CategoryService) ListAll(ctx context.Context) ([]*category.Category, error) {
	return s.repo.ListAll(ctx)
}

// Names category names for form choices
func (s *CategoryService) Names(ctx context.Context) ([]string, error) {
	list, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(list))
	for _, c := range list {
		names = append(names, c.Name)
	}
	return names, nil
}

// Ensure creates the category unless one with the same name exists.
// It reports whether a row was inserted.
func (s *CategoryService) Ensure(ctx context.Context, name string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, nil
	}
	_, err := s.repo.GetByName(ctx, name)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	if err := s.repo.Create(ctx, &category.Category{Name: name}); err != nil {
		return false, err
	}
	return true, nil
}
