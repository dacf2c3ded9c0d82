package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/spendlog/spendlog/internal/apperrors"
	"github.com/spendlog/spendlog/internal/core/domain"
	portssvc "github.com/spendlog/spendlog/internal/core/ports/services"
	"github.com/spendlog/spendlog/internal/core/services"
	"github.com/spendlog/spendlog/internal/dto"
)

type CategoryServiceTestSuite struct {
	suite.Suite
	mockCatRepo *MockCategoryRepository
	service     portssvc.CategorySvcFacade
	userID      string
}

func (suite *CategoryServiceTestSuite) SetupTest() {
	suite.mockCatRepo = new(MockCategoryRepository)
	suite.service = services.NewCategoryService(suite.mockCatRepo)
	suite.userID = uuid.NewString()
}

func (suite *CategoryServiceTestSuite) TestCreateCategory_DeduplicatesSubcategories() {
	ctx := context.Background()
	suite.mockCatRepo.On("ListCategories", ctx, suite.userID).Return([]domain.Category{}, nil).Once()
	suite.mockCatRepo.On("SaveCategory", ctx, mock.MatchedBy(func(cat domain.Category) bool {
		return len(cat.Subcategories) == 2 &&
			cat.Subcategories[0] == "Groceries" &&
			cat.Subcategories[1] == "Restaurants"
	})).Return(nil).Once()

	category, err := suite.service.CreateCategory(ctx, suite.userID, dto.CreateCategoryRequest{
		Name: "Food & Dining",
		Type: domain.FlowExpense,
		// Duplicates differ only in case and padding; first occurrence wins.
		Subcategories: []string{"Groceries", "groceries", " Restaurants ", "Restaurants", ""},
	})

	suite.Require().NoError(err)
	suite.Equal([]string{"Groceries", "Restaurants"}, category.Subcategories)
	suite.mockCatRepo.AssertExpectations(suite.T())
}

func (suite *CategoryServiceTestSuite) TestCreateCategory_DuplicateNameRejected() {
	ctx := context.Background()
	existing := domain.Category{
		CategoryID: uuid.NewString(),
		UserID:     suite.userID,
		Name:       "Transport",
		Type:       domain.FlowExpense,
	}
	suite.mockCatRepo.On("ListCategories", ctx, suite.userID).Return([]domain.Category{existing}, nil).Once()

	_, err := suite.service.CreateCategory(ctx, suite.userID, dto.CreateCategoryRequest{
		Name: "transport",
		Type: domain.FlowExpense,
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.mockCatRepo.AssertNotCalled(suite.T(), "SaveCategory", mock.Anything, mock.Anything)
}

func (suite *CategoryServiceTestSuite) TestUpdateCategory_DeduplicatesSubcategories() {
	ctx := context.Background()
	category := domain.Category{
		CategoryID:    uuid.NewString(),
		UserID:        suite.userID,
		Name:          "Transport",
		Type:          domain.FlowExpense,
		Subcategories: []string{"Fuel"},
	}
	suite.mockCatRepo.On("FindCategoryByID", ctx, category.CategoryID).Return(&category, nil).Once()
	suite.mockCatRepo.On("UpdateCategory", ctx, mock.MatchedBy(func(cat domain.Category) bool {
		return len(cat.Subcategories) == 2 &&
			cat.Subcategories[0] == "Fuel" &&
			cat.Subcategories[1] == "Parking"
	})).Return(nil).Once()

	subs := []string{"Fuel", "Parking", "fuel"}
	updated, err := suite.service.UpdateCategory(ctx, suite.userID, category.CategoryID, dto.UpdateCategoryRequest{
		Subcategories: &subs,
	})

	suite.Require().NoError(err)
	suite.Equal([]string{"Fuel", "Parking"}, updated.Subcategories)
	suite.mockCatRepo.AssertExpectations(suite.T())
}

func (suite *CategoryServiceTestSuite) TestListCategories_SeedsDefaultsOnFirstUse() {
	ctx := context.Background()
	suite.mockCatRepo.On("CountCategories", ctx, suite.userID).Return(0, nil).Once()
	suite.mockCatRepo.On("SaveCategory", ctx, mock.AnythingOfType("domain.Category")).Return(nil).Times(10)
	suite.mockCatRepo.On("ListCategories", ctx, suite.userID).Return([]domain.Category{}, nil).Once()

	_, err := suite.service.ListCategories(ctx, suite.userID)

	suite.Require().NoError(err)
	suite.mockCatRepo.AssertExpectations(suite.T())
}

func TestCategoryService(t *testing.T) {
	suite.Run(t, new(CategoryServiceTestSuite))
}
