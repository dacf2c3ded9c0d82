package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spendlog/spendlog/internal/apperrors"
	"github.com/spendlog/spendlog/internal/core/domain"
	portsrepo "github.com/spendlog/spendlog/internal/core/ports/repositories"
	portssvc "github.com/spendlog/spendlog/internal/core/ports/services"
	"github.com/spendlog/spendlog/internal/dto"
)

// categoryService manages transaction categories. A user's first list call
// seeds the default set.
type categoryService struct {
	BaseService
	categoryRepo portsrepo.CategoryRepository
}

// NewCategoryService creates a new category service.
func NewCategoryService(categoryRepo portsrepo.CategoryRepository) portssvc.CategorySvcFacade {
	return &categoryService{categoryRepo: categoryRepo}
}

var _ portssvc.CategorySvcFacade = (*categoryService)(nil)

// defaultCategories are seeded for a user whose category list is empty.
var defaultCategories = []struct {
	Name          string
	Type          domain.FlowType
	Subcategories []string
}{
	{Name: "Salary", Type: domain.FlowIncome},
	{Name: "Investment Return", Type: domain.FlowIncome},
	{Name: "Other Income", Type: domain.FlowIncome},
	{Name: "Food & Dining", Type: domain.FlowExpense, Subcategories: []string{"Groceries", "Restaurants"}},
	{Name: "Transport", Type: domain.FlowExpense, Subcategories: []string{"Fuel", "Public Transport"}},
	{Name: "Bills & Utilities", Type: domain.FlowExpense},
	{Name: "Shopping", Type: domain.FlowExpense},
	{Name: "Entertainment", Type: domain.FlowExpense},
	{Name: "Health", Type: domain.FlowExpense},
	{Name: "Investment", Type: domain.FlowExpense},
}

// normalizeSubcategories trims blanks and drops duplicate labels, keeping
// first occurrence order. Matching is case-insensitive, same as category
// name lookups.
func normalizeSubcategories(subcategories []string) []string {
	if len(subcategories) == 0 {
		return subcategories
	}
	seen := make(map[string]struct{}, len(subcategories))
	out := make([]string, 0, len(subcategories))
	for _, sub := range subcategories {
		sub = strings.TrimSpace(sub)
		if sub == "" {
			continue
		}
		key := strings.ToLower(sub)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, sub)
	}
	return out
}

// CreateCategory validates and persists a new category.
func (s *categoryService) CreateCategory(ctx context.Context, userID string, req dto.CreateCategoryRequest) (*domain.Category, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: category name is required", apperrors.ErrValidation)
	}

	existing, err := s.categoryRepo.ListCategories(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, c := range existing {
		if strings.EqualFold(c.Name, req.Name) {
			return nil, fmt.Errorf("%w: category %q already exists", apperrors.ErrDuplicate, req.Name)
		}
	}

	now := time.Now()
	category := domain.Category{
		CategoryID:    uuid.NewString(),
		UserID:        userID,
		Name:          req.Name,
		Type:          req.Type,
		Subcategories: normalizeSubcategories(req.Subcategories),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.categoryRepo.SaveCategory(ctx, category); err != nil {
		s.LogError(ctx, err, "failed to create category", "category_name", req.Name)
		return nil, err
	}
	return &category, nil
}

// GetCategoryByID fetches one category, enforcing ownership.
func (s *categoryService) GetCategoryByID(ctx context.Context, userID string, categoryID string) (*domain.Category, error) {
	category, err := s.categoryRepo.FindCategoryByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if category.UserID != userID {
		return nil, apperrors.ErrForbidden
	}
	return category, nil
}

// ListCategories returns the user's categories, seeding the default set on
// first use.
func (s *categoryService) ListCategories(ctx context.Context, userID string) ([]domain.Category, error) {
	count, err := s.categoryRepo.CountCategories(ctx, userID)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		if err := s.seedDefaults(ctx, userID); err != nil {
			return nil, err
		}
	}
	return s.categoryRepo.ListCategories(ctx, userID)
}

func (s *categoryService) seedDefaults(ctx context.Context, userID string) error {
	now := time.Now()
	for _, def := range defaultCategories {
		category := domain.Category{
			CategoryID:    uuid.NewString(),
			UserID:        userID,
			Name:          def.Name,
			Type:          def.Type,
			Subcategories: def.Subcategories,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		}
		if err := s.categoryRepo.SaveCategory(ctx, category); err != nil {
			return fmt.Errorf("failed to seed default category %q: %w", def.Name, err)
		}
	}
	s.LogInfo(ctx, "default categories seeded", "user_id", userID)
	return nil
}

// UpdateCategory applies the provided fields to an existing category.
func (s *categoryService) UpdateCategory(ctx context.Context, userID string, categoryID string, req dto.UpdateCategoryRequest) (*domain.Category, error) {
	category, err := s.GetCategoryByID(ctx, userID, categoryID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, fmt.Errorf("%w: category name cannot be empty", apperrors.ErrValidation)
		}
		category.Name = *req.Name
	}
	if req.Subcategories != nil {
		category.Subcategories = normalizeSubcategories(*req.Subcategories)
	}
	category.LastUpdatedAt = time.Now()
	category.LastUpdatedBy = userID

	if err := s.categoryRepo.UpdateCategory(ctx, *category); err != nil {
		s.LogError(ctx, err, "failed to update category", "category_id", categoryID)
		return nil, err
	}
	return category, nil
}

// DeleteCategory removes a category. Transactions keep their label as free text.
func (s *categoryService) DeleteCategory(ctx context.Context, userID string, categoryID string) error {
	if _, err := s.GetCategoryByID(ctx, userID, categoryID); err != nil {
		return err
	}
	return s.categoryRepo.DeleteCategory(ctx, categoryID)
}
