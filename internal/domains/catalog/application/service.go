package application

import (
	"context"
	"fmt"

	"github.com/jakubzimnol/internet-shop/internal/domains/catalog/domain"
	"github.com/jakubzimnol/internet-shop/internal/domains/catalog/ports"
)

// Service manages items and categories.
type Service struct {
	items      ports.ItemRepository
	categories ports.CategoryRepository
}

func NewService(items ports.ItemRepository, categories ports.CategoryRepository) *Service {
	return &Service{items: items, categories: categories}
}

func (s *Service) CreateItem(ctx context.Context, input CreateItemInput) (*ports.ItemProjection, error) {
	item, err := domain.NewItem(input.Name, input.Price, input.Amount)
	if err != nil {
		return nil, mapError(err)
	}
	item.Description = input.Description
	item.SellerID = input.SellerID
	item.ImageURLs = append([]string(nil), input.ImageURLs...)
	if err := s.assignCategories(ctx, item, input.CategoryID, input.SubcategoryID); err != nil {
		return nil, err
	}
	return s.items.Create(ctx, item)
}

func (s *Service) UpdateItem(ctx context.Context, input UpdateItemInput) (*ports.ItemProjection, error) {
	current, err := s.items.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	item := current.Entity
	if input.Name != nil {
		if err := item.Rename(*input.Name); err != nil {
			return nil, mapError(err)
		}
	}
	if input.Description != nil {
		item.Description = *input.Description
	}
	if input.Price != nil {
		if err := item.Reprice(*input.Price); err != nil {
			return nil, mapError(err)
		}
	}
	if input.Amount != nil && *input.Amount < 0 {
		return nil, mapError(domain.ErrNegativeAmount)
	}
	if input.ImageURLs != nil {
		item.ImageURLs = append([]string(nil), (*input.ImageURLs)...)
	}
	categoryID, subcategoryID := item.CategoryID, item.SubcategoryID
	if input.CategoryID != nil {
		categoryID = input.CategoryID
	}
	if input.SubcategoryID != nil {
		subcategoryID = input.SubcategoryID
	}
	if err := s.assignCategories(ctx, item, categoryID, subcategoryID); err != nil {
		return nil, err
	}
	updated, err := s.items.Update(ctx, item)
	if err != nil || input.Amount == nil {
		return updated, err
	}
	updated, err = s.items.SetAmount(ctx, item.ID, *input.Amount)
	return updated, mapError(err)
}

func (s *Service) GetItem(ctx context.Context, id int64) (*ports.ItemProjection, error) {
	return s.items.GetByID(ctx, id)
}

func (s *Service) ListItems(ctx context.Context) ([]*ports.ItemProjection, error) {
	return s.items.List(ctx)
}

func (s *Service) DeleteItem(ctx context.Context, id int64) error {
	return s.items.Delete(ctx, id)
}

// AdjustAmount changes available stock by delta without going negative.
func (s *Service) AdjustAmount(ctx context.Context, id int64, delta int32) (*ports.ItemProjection, error) {
	updated, err := s.items.AdjustAmount(ctx, id, delta)
	return updated, mapError(err)
}

func (s *Service) assignCategories(ctx context.Context, item *domain.Item, categoryID, subcategoryID *int64) error {
	if categoryID != nil {
		category, err := s.categories.GetByID(ctx, *categoryID)
		if err != nil {
			return fmt.Errorf("%w: category %d: %w", ErrInvalidInput, *categoryID, err)
		}
		if category.IsSubcategory() {
			return fmt.Errorf("%w: %d is a subcategory", ErrInvalidInput, *categoryID)
		}
	}
	if subcategoryID != nil {
		sub, err := s.categories.GetByID(ctx, *subcategoryID)
		if err != nil {
			return fmt.Errorf("%w: subcategory %d: %w", ErrInvalidInput, *subcategoryID, err)
		}
		if !sub.IsSubcategory() {
			return fmt.Errorf("%w: %d is not a subcategory", ErrInvalidInput, *subcategoryID)
		}
		if categoryID != nil && *sub.ParentID != *categoryID {
			return fmt.Errorf("%w: subcategory %d does not belong to category %d", ErrInvalidInput, *subcategoryID, *categoryID)
		}
	}
	item.CategoryID, item.SubcategoryID = categoryID, subcategoryID
	return nil
}

func (s *Service) CreateCategory(ctx context.Context, input CategoryInput) (*domain.Category, error) {
	category, err := domain.NewCategory(input.Name, input.ParentID)
	if err != nil {
		return nil, mapError(err)
	}
	if err := s.checkParent(ctx, category); err != nil {
		return nil, err
	}
	return s.categories.Create(ctx, category)
}

func (s *Service) UpdateCategory(ctx context.Context, input CategoryInput) (*domain.Category, error) {
	category, err := s.categories.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if err := category.Rename(input.Name); err != nil {
		return nil, mapError(err)
	}
	category.ParentID = input.ParentID
	if err := category.Validate(); err != nil {
		return nil, mapError(err)
	}
	if err := s.checkParent(ctx, category); err != nil {
		return nil, err
	}
	return s.categories.Update(ctx, category)
}

// checkParent allows a single level of nesting.
func (s *Service) checkParent(ctx context.Context, category *domain.Category) error {
	if category.ParentID == nil {
		return nil
	}
	parent, err := s.categories.GetByID(ctx, *category.ParentID)
	if err != nil {
		return fmt.Errorf("%w: parent %d: %w", ErrInvalidInput, *category.ParentID, err)
	}
	if parent.IsSubcategory() {
		return fmt.Errorf("%w: parent %d is itself a subcategory", ErrInvalidInput, parent.ID)
	}
	return nil
}

func (s *Service) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	return s.categories.GetByID(ctx, id)
}

func (s *Service) ListCategories(ctx context.Context, subcategories bool) ([]*domain.Category, error) {
	return s.categories.List(ctx, subcategories)
}

func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	return s.categories.Delete(ctx, id)
}
