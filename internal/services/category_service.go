package services

import (
	"context"
	"log"

	"gudangmitra/internal/common"
	"gudangmitra/internal/models"
	"gudangmitra/internal/repositories"

	"github.com/google/uuid"
)

type CategoryService interface {
	CreateCategory(ctx context.Context, category *models.Category) (*models.Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error)
	UpdateCategory(ctx context.Context, category *models.Category) (*models.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	ListCategories(ctx context.Context, limit, offset int) ([]*models.Category, error)
}

type categoryService struct {
	categoryRepo repositories.CategoryRepository
	itemRepo     repositories.ItemRepository
}

func NewCategoryService(categoryRepo repositories.CategoryRepository, itemRepo repositories.ItemRepository) CategoryService {
	return &categoryService{categoryRepo: categoryRepo, itemRepo: itemRepo}
}

func (s *categoryService) CreateCategory(ctx context.Context, category *models.Category) (*models.Category, error) {
	if category.Name == "" {
		return nil, common.NewValidationError("name", "category name is required")
	}
	if existing, err := s.categoryRepo.GetByName(ctx, category.Name); err == nil && existing != nil {
		return nil, common.NewConflictError("category " + category.Name + " already exists")
	}
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}
	return s.categoryRepo.GetByID(ctx, category.ID)
}

func (s *categoryService) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return s.categoryRepo.GetByID(ctx, id)
}

func (s *categoryService) UpdateCategory(ctx context.Context, category *models.Category) (*models.Category, error) {
	if category.Name == "" {
		return nil, common.NewValidationError("name", "category name is required")
	}

	existing, err := s.categoryRepo.GetByID(ctx, category.ID)
	if err != nil {
		return nil, err
	}

	// Renaming a category relabels every item that carries the old name.
	if existing.Name != category.Name {
		if clash, err := s.categoryRepo.GetByName(ctx, category.Name); err == nil && clash != nil {
			return nil, common.NewConflictError("category " + category.Name + " already exists")
		}
		if err := s.itemRepo.ReassignCategory(ctx, existing.Name, category.Name); err != nil {
			return nil, err
		}
	}

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}
	return s.categoryRepo.GetByID(ctx, category.ID)
}

// DeleteCategory removes the category and moves its items to the default
// bucket so no item is ever left with a dangling label.
func (s *categoryService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if category.Name == models.DefaultCategory {
		return common.NewValidationError("name", "the default category cannot be deleted")
	}

	if err := s.itemRepo.ReassignCategory(ctx, category.Name, models.DefaultCategory); err != nil {
		return err
	}
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return err
	}
	log.Printf("category %s deleted, items moved to %s", category.Name, models.DefaultCategory)
	return nil
}

func (s *categoryService) ListCategories(ctx context.Context, limit, offset int) ([]*models.Category, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.categoryRepo.List(ctx, limit, offset)
}
