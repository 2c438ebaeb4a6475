package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "expensetracker/internal/errors"
	"expensetracker/internal/model"
	"expensetracker/internal/repository"
)

const maxCategoryNameLength = 100

// CategoryService handles category operations.
type CategoryService interface {
	List(ctx context.Context, userID uuid.UUID) ([]model.Category, error)
	Create(ctx context.Context, userID uuid.UUID, name string) (*model.Category, error)
	Rename(ctx context.Context, userID, id uuid.UUID, name string) (*model.Category, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type categoryService struct {
	repo  repository.CategoryRepository
	locks keyedMutex
}

// NewCategoryService creates a new category service.
func NewCategoryService(repo repository.CategoryRepository) CategoryService {
	return &categoryService{repo: repo}
}

func (s *categoryService) List(ctx context.Context, userID uuid.UUID) ([]model.Category, error) {
	categories, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// Create adds a category. The name check and the insert run under the user's
// lock; the unique index catches writers outside this process.
func (s *categoryService) Create(ctx context.Context, userID uuid.UUID, name string) (*model.Category, error) {
	name, err := normalizeCategoryName(name)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(userID)
	defer unlock()

	if err := s.ensureNameFree(ctx, userID, name, uuid.Nil); err != nil {
		return nil, err
	}

	category := &model.Category{UserID: userID, Name: name}
	if err := s.repo.Create(ctx, category); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrCategoryExists
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	return category, nil
}

func (s *categoryService) Rename(ctx context.Context, userID, id uuid.UUID, name string) (*model.Category, error) {
	name, err := normalizeCategoryName(name)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(userID)
	defer unlock()

	category, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("find category: %w", err)
	}
	if category.Name == name {
		return category, nil
	}

	if err := s.ensureNameFree(ctx, userID, name, id); err != nil {
		return nil, err
	}

	category.Name = name
	if err := s.repo.Update(ctx, category); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrCategoryExists
		}
		return nil, fmt.Errorf("rename category: %w", err)
	}
	return category, nil
}

// Delete removes the category only; its expenses keep pointing at the old id.
func (s *categoryService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrCategoryNotFound
		}
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

func (s *categoryService) ensureNameFree(ctx context.Context, userID uuid.UUID, name string, self uuid.UUID) error {
	existing, err := s.repo.FindByName(ctx, userID, name)
	switch {
	case err == nil && existing.ID != self:
		return apperrors.ErrCategoryExists
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("check category name: %w", err)
	}
	return nil
}

func normalizeCategoryName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxCategoryNameLength {
		return "", apperrors.ErrInvalidCategoryName
	}
	return name, nil
}
