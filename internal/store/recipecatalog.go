package store

import (
	"context"
	"fmt"
	"sync"

	errs "github.com/platewise/platewise/client/internal/errors"
	"github.com/platewise/platewise/client/internal/repo"
	"github.com/platewise/platewise/client/internal/types"
)

// RecipeCatalogStore holds the household's recipe catalog. Only the
// favourite flag is mutable, optimistically.
type RecipeCatalogStore struct {
	observable
	repo *repo.RecipeRepository

	mu      sync.Mutex
	recipes []types.Recipe
	didLoad bool
	lastErr string
}

// NewRecipeCatalogStore builds the store.
func NewRecipeCatalogStore(r *repo.RecipeRepository) *RecipeCatalogStore {
	return &RecipeCatalogStore{repo: r}
}

// LoadIfNeeded fetches the catalog once per store lifetime. Subsequent
// calls are no-ops; use Reload to force a refresh.
func (s *RecipeCatalogStore) LoadIfNeeded(ctx context.Context) error {
	s.mu.Lock()
	if s.didLoad {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()
	return s.Reload(ctx)
}

// Reload always re-fetches and replaces the catalog.
func (s *RecipeCatalogStore) Reload(ctx context.Context) error {
	recipes, err := s.repo.FetchAll(ctx)
	if err != nil {
		if errs.IsCancellation(err) {
			return nil
		}
		s.setError(err)
		return err
	}
	reloadsTotal.WithLabelValues("recipe_catalog").Inc()

	s.mu.Lock()
	s.recipes = recipes
	s.didLoad = true
	s.lastErr = ""
	s.mu.Unlock()
	s.notify()
	return nil
}

// Recipes returns a copy of the catalog.
func (s *RecipeCatalogStore) Recipes() []types.Recipe {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.Recipe, len(s.recipes))
	copy(out, s.recipes)
	return out
}

// LastError returns the user-facing message of the most recent failure, or "".
func (s *RecipeCatalogStore) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// ToggleFavorite flips a recipe's favourite flag optimistically, reverting
// on remote failure.
func (s *RecipeCatalogStore) ToggleFavorite(ctx context.Context, recipeID string) error {
	s.mu.Lock()
	var prev bool
	found := false
	for i := range s.recipes {
		if s.recipes[i].ID == recipeID {
			prev = s.recipes[i].IsFavorite
			found = true
			break
		}
	}
	s.mu.Unlock()
	if !found {
		return fmt.Errorf("unknown recipe %q", recipeID)
	}

	err := mutate(ctx, prev, !prev, func(v bool) {
		s.setFavorite(recipeID, v)
	}, func(ctx context.Context) error {
		return s.repo.SetFavorite(ctx, recipeID, !prev)
	})
	if err != nil {
		s.setError(err)
	}
	return err
}

func (s *RecipeCatalogStore) setFavorite(recipeID string, v bool) {
	s.mu.Lock()
	for i := range s.recipes {
		if s.recipes[i].ID == recipeID {
			s.recipes[i].IsFavorite = v
			break
		}
	}
	s.mu.Unlock()
	s.notify()
}

func (s *RecipeCatalogStore) setError(err error) {
	msg := errs.UserMessage(err)
	s.mu.Lock()
	s.lastErr = msg
	s.mu.Unlock()
	s.notify()
}
