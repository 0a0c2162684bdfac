package transport

import (
	"context"

	"github.com/platewise/platewise/client/internal/types"
)

// Recipes is the recipe-catalog resource client. The catalog is read-only
// apart from the favourite flag.
type Recipes struct {
	emitter  Emitter
	userID   string
	resolver *Resolver
}

// NewRecipes builds the recipe transport client.
func NewRecipes(e Emitter, userID string, r *Resolver) *Recipes {
	return &Recipes{emitter: e, userID: userID, resolver: r}
}

// FindAll fetches the household's recipe catalog.
func (r *Recipes) FindAll(ctx context.Context) ([]types.RecipeDTO, error) {
	householdID, err := r.resolver.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	env, err := emit(ctx, r.emitter, "recipes:findAll", payload{
		UserID:      r.userID,
		HouseholdID: householdID,
	})
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return decode[[]types.RecipeDTO](env)
}

// SetFavourite toggles a recipe's favourite flag.
func (r *Recipes) SetFavourite(ctx context.Context, recipeID string, favourite bool) error {
	householdID, err := r.resolver.Resolve(ctx)
	if err != nil {
		return err
	}
	_, err = emit(ctx, r.emitter, "recipes:setFavourite", payload{
		UserID:      r.userID,
		HouseholdID: householdID,
		Data: map[string]any{
			"recipeId":  recipeID,
			"favourite": favourite,
		},
	})
	return err
}
