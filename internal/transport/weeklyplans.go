package transport

import (
	"context"

	"github.com/platewise/platewise/client/internal/types"
)

// WeeklyPlans is the weekly-plan resource client. All operations are
// household-scoped and address slots by (weekStart, day code, slot).
type WeeklyPlans struct {
	emitter  Emitter
	userID   string
	resolver *Resolver
}

// NewWeeklyPlans builds the weekly-plan transport client.
func NewWeeklyPlans(e Emitter, userID string, r *Resolver) *WeeklyPlans {
	return &WeeklyPlans{emitter: e, userID: userID, resolver: r}
}

// GetByWeek fetches the plan for weekStart. A week with no plan yet comes
// back empty, not as an error.
func (w *WeeklyPlans) GetByWeek(ctx context.Context, weekStart string) (*types.WeekPlanDTO, error) {
	householdID, err := w.resolver.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	env, err := emit(ctx, w.emitter, "weeklyPlans:getByWeek", payload{
		UserID:      w.userID,
		HouseholdID: householdID,
		WeekStart:   weekStart,
	})
	if err != nil {
		if isNotFound(err) {
			return &types.WeekPlanDTO{WeekStart: weekStart}, nil
		}
		return nil, err
	}
	plan, err := decode[types.WeekPlanDTO](env)
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// UpsertSlot assigns recipeID to the (day, slot) cell of weekStart,
// overwriting any previous assignment.
func (w *WeeklyPlans) UpsertSlot(ctx context.Context, weekStart, day, slot, recipeID string) error {
	householdID, err := w.resolver.Resolve(ctx)
	if err != nil {
		return err
	}
	_, err = emit(ctx, w.emitter, "weeklyPlans:upsertWeekSlot", payload{
		UserID:      w.userID,
		HouseholdID: householdID,
		Data: map[string]string{
			"weekStart": weekStart,
			"day":       day,
			"slot":      slot,
			"recipeId":  recipeID,
		},
	})
	return err
}

// RemoveSlot clears the (day, slot) cell of weekStart.
func (w *WeeklyPlans) RemoveSlot(ctx context.Context, weekStart, day, slot string) error {
	householdID, err := w.resolver.Resolve(ctx)
	if err != nil {
		return err
	}
	_, err = emit(ctx, w.emitter, "weeklyPlans:removeWeekSlot", payload{
		UserID:      w.userID,
		HouseholdID: householdID,
		Data: map[string]string{
			"weekStart": weekStart,
			"day":       day,
			"slot":      slot,
		},
	})
	return err
}
