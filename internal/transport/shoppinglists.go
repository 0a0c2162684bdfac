package transport

import (
	"context"

	"github.com/platewise/platewise/client/internal/types"
)

// ShoppingLists is the shopping-list resource client. The list itself is
// aggregated server-side; the only writable field is an item's checked flag.
type ShoppingLists struct {
	emitter  Emitter
	userID   string
	resolver *Resolver
}

// NewShoppingLists builds the shopping-list transport client.
func NewShoppingLists(e Emitter, userID string, r *Resolver) *ShoppingLists {
	return &ShoppingLists{emitter: e, userID: userID, resolver: r}
}

// GetForWeek fetches the aggregated shopping list for weekStart. A week
// without planned meals yields an empty list.
func (s *ShoppingLists) GetForWeek(ctx context.Context, weekStart string) (*types.ShoppingListDTO, error) {
	householdID, err := s.resolver.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	env, err := emit(ctx, s.emitter, "weeklyPlans:getShoppingList", payload{
		UserID:      s.userID,
		HouseholdID: householdID,
		WeekStart:   weekStart,
	})
	if err != nil {
		if isNotFound(err) {
			return &types.ShoppingListDTO{WeekStart: weekStart}, nil
		}
		return nil, err
	}
	list, err := decode[types.ShoppingListDTO](env)
	if err != nil {
		return nil, err
	}
	return &list, nil
}

// SetItemChecked updates the checked flag of one product for weekStart.
func (s *ShoppingLists) SetItemChecked(ctx context.Context, weekStart, productKey string, checked bool) error {
	householdID, err := s.resolver.Resolve(ctx)
	if err != nil {
		return err
	}
	_, err = emit(ctx, s.emitter, "weeklyPlans:setShoppingItemChecked", payload{
		UserID:      s.userID,
		HouseholdID: householdID,
		Data: map[string]any{
			"weekStart":  weekStart,
			"productKey": productKey,
			"isChecked":  checked,
		},
	})
	return err
}
