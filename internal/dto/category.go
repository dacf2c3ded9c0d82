package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/spendlog/spendlog/internal/core/domain"
)

// CreateCategoryRequest defines the data needed to create a category.
type CreateCategoryRequest struct {
	Name          string          `json:"name" binding:"required"`
	Type          domain.FlowType `json:"type" binding:"required,oneof=income expense"`
	Subcategories []string        `json:"subcategories"`
}

// UpdateCategoryRequest defines the editable category fields.
type UpdateCategoryRequest struct {
	Name          *string   `json:"name"`
	Subcategories *[]string `json:"subcategories"`
}

// CategoryResponse defines the data returned for a category.
type CategoryResponse struct {
	CategoryID    string          `json:"categoryID"`
	Name          string          `json:"name"`
	Type          domain.FlowType `json:"type"`
	Subcategories []string        `json:"subcategories"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// ToCategoryResponse converts a domain.Category to its response DTO.
func ToCategoryResponse(c *domain.Category) CategoryResponse {
	return CategoryResponse{
		CategoryID:    c.CategoryID,
		Name:          c.Name,
		Type:          c.Type,
		Subcategories: c.Subcategories,
		CreatedAt:     c.CreatedAt,
	}
}

// ToCategoryResponses converts a slice of categories to response DTOs.
func ToCategoryResponses(cs []domain.Category) []CategoryResponse {
	res := make([]CategoryResponse, len(cs))
	for i := range cs {
		res[i] = ToCategoryResponse(&cs[i])
	}
	return res
}

// CreateBudgetRequest defines the data needed to create a budget allocation.
type CreateBudgetRequest struct {
	Category string              `json:"category" binding:"required"`
	Amount   decimal.Decimal     `json:"amount" binding:"required,gt=0"`
	Period   domain.BudgetPeriod `json:"period" binding:"required,oneof=MONTHLY YEARLY"`
}

// UpdateBudgetRequest defines the editable budget fields.
type UpdateBudgetRequest struct {
	Category *string              `json:"category"`
	Amount   *decimal.Decimal     `json:"amount"`
	Period   *domain.BudgetPeriod `json:"period"`
}

// BudgetResponse defines the data returned for a budget.
type BudgetResponse struct {
	BudgetID  string              `json:"budgetID"`
	Category  string              `json:"category"`
	Amount    decimal.Decimal     `json:"amount"`
	Period    domain.BudgetPeriod `json:"period"`
	CreatedAt time.Time           `json:"createdAt"`
}

// ToBudgetResponse converts a domain.Budget to its response DTO.
func ToBudgetResponse(b *domain.Budget) BudgetResponse {
	return BudgetResponse{
		BudgetID:  b.BudgetID,
		Category:  b.Category,
		Amount:    b.Amount,
		Period:    b.Period,
		CreatedAt: b.CreatedAt,
	}
}

// ToBudgetResponses converts a slice of budgets to response DTOs.
func ToBudgetResponses(bs []domain.Budget) []BudgetResponse {
	res := make([]BudgetResponse, len(bs))
	for i := range bs {
		res[i] = ToBudgetResponse(&bs[i])
	}
	return res
}
