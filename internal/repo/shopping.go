package repo

import (
	"context"

	"github.com/platewise/platewise/client/internal/transport"
	"github.com/platewise/platewise/client/internal/types"
)

// ShoppingRepository maps the backend's shopping rows (totalAmount,
// isChecked) onto the domain ShoppingItem.
type ShoppingRepository struct {
	client *transport.ShoppingLists
}

// NewShoppingRepository wraps the shopping-list transport client.
func NewShoppingRepository(c *transport.ShoppingLists) *ShoppingRepository {
	return &ShoppingRepository{client: c}
}

// FetchWeek returns the aggregated shopping list for weekStart.
func (r *ShoppingRepository) FetchWeek(ctx context.Context, weekStart string) ([]types.ShoppingItem, error) {
	list, err := r.client.GetForWeek(ctx, weekStart)
	if err != nil {
		return nil, err
	}
	items := make([]types.ShoppingItem, 0, len(list.Items))
	for _, dto := range list.Items {
		items = append(items, types.ShoppingItem{
			ProductKey: dto.ProductKey,
			Name:       dto.Name,
			Amount:     dto.TotalAmount,
			Unit:       dto.Unit,
			Department: dto.Department,
			Checked:    dto.IsChecked,
		})
	}
	return items, nil
}

// SetChecked persists one item's checked flag.
func (r *ShoppingRepository) SetChecked(ctx context.Context, weekStart, productKey string, checked bool) error {
	return r.client.SetItemChecked(ctx, weekStart, productKey, checked)
}
