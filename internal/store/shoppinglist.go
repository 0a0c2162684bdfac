package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	errs "github.com/platewise/platewise/client/internal/errors"
	"github.com/platewise/platewise/client/internal/repo"
	"github.com/platewise/platewise/client/internal/types"
)

// ShoppingListStore holds the read replica of one week's shopping list.
// The checked flag is the single field mutated optimistically; everything
// else is replaced wholesale by reloads (last-write-wins from the server's
// perspective).
type ShoppingListStore struct {
	observable
	repo        *repo.ShoppingRepository
	householdID string

	mu        sync.Mutex
	weekStart string
	items     []types.ShoppingItem
	loaded    bool
	lastErr   string

	guard reloadGuard
}

// NewShoppingListStore builds the store for one household binding.
func NewShoppingListStore(r *repo.ShoppingRepository, householdID string) *ShoppingListStore {
	return &ShoppingListStore{repo: r, householdID: householdID}
}

// Load fetches the list for weekStart. Without force, a list already loaded
// for the same week is kept.
func (s *ShoppingListStore) Load(ctx context.Context, weekStart string, force bool) error {
	s.mu.Lock()
	if !force && s.loaded && s.weekStart == weekStart {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	items, err := s.repo.FetchWeek(ctx, weekStart)
	if err != nil {
		if errs.IsCancellation(err) {
			return nil
		}
		s.setError(err)
		return err
	}
	reloadsTotal.WithLabelValues("shopping_list").Inc()

	s.mu.Lock()
	s.weekStart = weekStart
	s.items = items
	s.loaded = true
	s.lastErr = ""
	s.mu.Unlock()
	s.notify()
	return nil
}

// WeekStart returns the currently loaded week, or "".
func (s *ShoppingListStore) WeekStart() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.weekStart
}

// Items returns a copy of the current list.
func (s *ShoppingListStore) Items() []types.ShoppingItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.ShoppingItem, len(s.items))
	copy(out, s.items)
	return out
}

// LastError returns the user-facing message of the most recent failure, or "".
func (s *ShoppingListStore) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// ToggleChecked flips an item's checked flag optimistically: the local flag
// changes immediately, and is reverted if the remote update fails. No retry.
func (s *ShoppingListStore) ToggleChecked(ctx context.Context, productKey string) error {
	s.mu.Lock()
	weekStart := s.weekStart
	var prev bool
	found := false
	for i := range s.items {
		if s.items[i].ProductKey == productKey {
			prev = s.items[i].Checked
			found = true
			break
		}
	}
	s.mu.Unlock()
	if !found {
		return fmt.Errorf("unknown product %q", productKey)
	}

	err := mutate(ctx, prev, !prev, func(v bool) {
		s.setChecked(productKey, v)
	}, func(ctx context.Context) error {
		return s.repo.SetChecked(ctx, weekStart, productKey, !prev)
	})
	if err != nil {
		s.setError(err)
	}
	return err
}

// HandleChanged is the push-invalidation entry point. Events for other
// weeks are ignored; a matching week triggers a forced reload, coalesced if
// one is already in flight.
func (s *ShoppingListStore) HandleChanged(ev types.ShoppingListChangedEvent) {
	s.mu.Lock()
	current := s.weekStart
	s.mu.Unlock()
	if ev.HouseholdID != s.householdID || ev.WeekStart != current || current == "" {
		return
	}
	s.guard.trigger(func() {
		if err := s.Load(context.Background(), current, true); err != nil {
			log.Debug().Err(err).Msg("shopping list reload after push failed")
		}
	})
}

func (s *ShoppingListStore) setChecked(productKey string, v bool) {
	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ProductKey == productKey {
			s.items[i].Checked = v
			break
		}
	}
	s.mu.Unlock()
	s.notify()
}

func (s *ShoppingListStore) setError(err error) {
	msg := errs.UserMessage(err)
	s.mu.Lock()
	s.lastErr = msg
	s.mu.Unlock()
	s.notify()
}
