package repo

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/platewise/platewise/client/internal/transport"
	"github.com/platewise/platewise/client/internal/types"
	"github.com/platewise/platewise/client/internal/weekdate"
)

// WeekPlanRepository translates between calendar dates and the transport's
// (weekStart, day code) addressing.
type WeekPlanRepository struct {
	client *transport.WeeklyPlans
}

// NewWeekPlanRepository wraps the weekly-plan transport client.
func NewWeekPlanRepository(c *transport.WeeklyPlans) *WeekPlanRepository {
	return &WeekPlanRepository{client: c}
}

// FetchWeek returns all planned slots of the week containing weekStart.
// Records with an unrecognised day code or malformed week start are dropped
// individually; one bad record never fails the whole fetch.
func (r *WeekPlanRepository) FetchWeek(ctx context.Context, weekStart string) ([]types.WeekPlanSlot, error) {
	plan, err := r.client.GetByWeek(ctx, weekStart)
	if err != nil {
		return nil, err
	}
	slots := make([]types.WeekPlanSlot, 0, len(plan.Slots))
	for _, dto := range plan.Slots {
		date, err := weekdate.SlotDate(dto.WeekStart, dto.Day)
		if err != nil {
			log.Debug().Err(err).Str("day", dto.Day).Str("weekStart", dto.WeekStart).
				Msg("dropping week plan record with bad addressing")
			continue
		}
		slot := types.MealSlot(dto.Slot)
		if !types.ValidMealSlot(slot) {
			log.Debug().Str("slot", dto.Slot).Msg("dropping week plan record with unknown slot")
			continue
		}
		slots = append(slots, types.WeekPlanSlot{
			Date:   date,
			Slot:   slot,
			Recipe: mapRecipe(dto.Recipe),
		})
	}
	return slots, nil
}

// UpsertSlot assigns recipeID to (date, slot), overwriting any previous
// assignment for that cell.
func (r *WeekPlanRepository) UpsertSlot(ctx context.Context, date string, slot types.MealSlot, recipeID string) error {
	if err := types.RequireMealSlot(slot); err != nil {
		return err
	}
	weekStart, err := weekdate.WeekStart(date)
	if err != nil {
		return err
	}
	day, err := weekdate.DayCode(date)
	if err != nil {
		return err
	}
	return r.client.UpsertSlot(ctx, weekStart, day, string(slot), recipeID)
}

// RemoveSlot clears the (date, slot) cell.
func (r *WeekPlanRepository) RemoveSlot(ctx context.Context, date string, slot types.MealSlot) error {
	if err := types.RequireMealSlot(slot); err != nil {
		return err
	}
	weekStart, err := weekdate.WeekStart(date)
	if err != nil {
		return err
	}
	day, err := weekdate.DayCode(date)
	if err != nil {
		return err
	}
	return r.client.RemoveSlot(ctx, weekStart, day, string(slot))
}
