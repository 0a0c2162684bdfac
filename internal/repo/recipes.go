// Package repo maps backend DTOs to domain models. Repositories are
// stateless beyond wrapping a transport client: no caching, no retries, and
// failures propagate untouched to the store layer.
package repo

import (
	"context"

	"github.com/platewise/platewise/client/internal/transport"
	"github.com/platewise/platewise/client/internal/types"
)

// mapRecipe translates the backend recipe record into the domain model.
func mapRecipe(dto types.RecipeDTO) types.Recipe {
	r := types.Recipe{
		ID:              dto.ID,
		Name:            dto.Name,
		Description:     dto.Description,
		IsFavorite:      dto.Favourite,
		Category:        dto.Category,
		Servings:        dto.Servings,
		PrepTimeMinutes: dto.PrepTimeMinutes,
		Difficulty:      dto.Difficulty,
		Steps:           dto.Steps,
	}
	for _, ing := range dto.Ingredients {
		r.Ingredients = append(r.Ingredients, types.Ingredient{
			Name:       ing.Name,
			Amount:     ing.Amount,
			Unit:       ing.Unit,
			ProductKey: ing.ProductKey,
		})
	}
	if dto.Nutrition != nil {
		r.Nutrition = &types.Nutrition{
			Calories: dto.Nutrition.Calories,
			Protein:  dto.Nutrition.Protein,
			Carbs:    dto.Nutrition.Carbs,
			Fat:      dto.Nutrition.Fat,
		}
	}
	return r
}

// RecipeRepository serves the recipe catalog.
type RecipeRepository struct {
	client *transport.Recipes
}

// NewRecipeRepository wraps the recipe transport client.
func NewRecipeRepository(c *transport.Recipes) *RecipeRepository {
	return &RecipeRepository{client: c}
}

// FetchAll returns the household's recipe catalog.
func (r *RecipeRepository) FetchAll(ctx context.Context) ([]types.Recipe, error) {
	dtos, err := r.client.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	recipes := make([]types.Recipe, 0, len(dtos))
	for _, dto := range dtos {
		recipes = append(recipes, mapRecipe(dto))
	}
	return recipes, nil
}

// SetFavorite persists a recipe's favourite flag.
func (r *RecipeRepository) SetFavorite(ctx context.Context, recipeID string, favorite bool) error {
	return r.client.SetFavourite(ctx, recipeID, favorite)
}
