package store

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	errs "github.com/platewise/platewise/client/internal/errors"
	"github.com/platewise/platewise/client/internal/repo"
	"github.com/platewise/platewise/client/internal/types"
)

// WeeklyMealStore holds one week's calendar (concrete date/slot
// assignments) plus the saved meal plan (the list of planned servings and
// their "already placed" bookkeeping).
type WeeklyMealStore struct {
	observable
	repo *repo.WeekPlanRepository

	mu        sync.Mutex
	weekStart string
	calendar  map[string]map[types.MealSlot]types.Recipe // date -> slot -> recipe
	saved     types.SavedMealPlan
	loaded    bool
	lastErr   string
}

// NewWeeklyMealStore builds the store.
func NewWeeklyMealStore(r *repo.WeekPlanRepository) *WeeklyMealStore {
	return &WeeklyMealStore{repo: r, calendar: make(map[string]map[types.MealSlot]types.Recipe)}
}

// LoadWeek fetches the calendar for weekStart, replacing local state.
// Without force, a week already loaded is kept.
func (s *WeeklyMealStore) LoadWeek(ctx context.Context, weekStart string, force bool) error {
	s.mu.Lock()
	if !force && s.loaded && s.weekStart == weekStart {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	slots, err := s.repo.FetchWeek(ctx, weekStart)
	if err != nil {
		if errs.IsCancellation(err) {
			return nil
		}
		s.setError(err)
		return err
	}
	reloadsTotal.WithLabelValues("weekly_meal").Inc()

	calendar := make(map[string]map[types.MealSlot]types.Recipe)
	for _, sl := range slots {
		if calendar[sl.Date] == nil {
			calendar[sl.Date] = make(map[types.MealSlot]types.Recipe)
		}
		calendar[sl.Date][sl.Slot] = sl.Recipe
	}

	s.mu.Lock()
	s.weekStart = weekStart
	s.calendar = calendar
	s.loaded = true
	s.lastErr = ""
	s.mu.Unlock()
	s.notify()
	return nil
}

// WeekStart returns the currently loaded week, or "".
func (s *WeeklyMealStore) WeekStart() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.weekStart
}

// Slot returns the recipe planned at (date, slot), if any.
func (s *WeeklyMealStore) Slot(date string, slot types.MealSlot) (types.Recipe, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.calendar[date][slot]
	return rec, ok
}

// Slots returns the calendar as a slice ordered by date, then slot.
func (s *WeeklyMealStore) Slots() []types.WeekPlanSlot {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []types.WeekPlanSlot
	for date, slots := range s.calendar {
		for slot, rec := range slots {
			out = append(out, types.WeekPlanSlot{Date: date, Slot: slot, Recipe: rec})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return slotOrder(out[i].Slot) < slotOrder(out[j].Slot)
	})
	return out
}

// SavedPlan returns a copy of the saved meal plan.
func (s *WeeklyMealStore) SavedPlan() types.SavedMealPlan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clonePlan(s.saved)
}

// LastError returns the user-facing message of the most recent failure, or "".
func (s *WeeklyMealStore) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// UpsertSlot assigns recipe to (date, slot) optimistically, reverting to
// the previous assignment (or absence) on remote failure.
func (s *WeeklyMealStore) UpsertSlot(ctx context.Context, date string, slot types.MealSlot, recipe types.Recipe) error {
	s.mu.Lock()
	prev, had := s.calendar[date][slot]
	s.mu.Unlock()

	err := mutate(ctx, cell{recipe: prev, present: had}, cell{recipe: recipe, present: true},
		func(c cell) { s.setCell(date, slot, c) },
		func(ctx context.Context) error {
			return s.repo.UpsertSlot(ctx, date, slot, recipe.ID)
		})
	if err != nil {
		s.setError(err)
	}
	return err
}

// RemoveSlot clears (date, slot) optimistically. Removing an empty cell is
// a local no-op.
func (s *WeeklyMealStore) RemoveSlot(ctx context.Context, date string, slot types.MealSlot) error {
	s.mu.Lock()
	prev, had := s.calendar[date][slot]
	s.mu.Unlock()
	if !had {
		return nil
	}

	err := mutate(ctx, cell{recipe: prev, present: true}, cell{},
		func(c cell) { s.setCell(date, slot, c) },
		func(ctx context.Context) error {
			return s.repo.RemoveSlot(ctx, date, slot)
		})
	if err != nil {
		s.setError(err)
	}
	return err
}

// SaveMealPlan replaces the saved plan and reconciles its placement flags
// against the calendar.
func (s *WeeklyMealStore) SaveMealPlan(ctx context.Context, plan types.SavedMealPlan) {
	s.CleanupCalendarAndSync(ctx, plan)
}

// CleanupCalendarAndSync reconciles the calendar and the saved plan:
//
//  1. Calendar cells holding a recipe absent from the new plan's slot list
//     are dropped, leaving gaps. Dropped cells are also removed remotely,
//     best effort.
//  2. Actual per-recipe-per-slot usage is counted across the calendar.
//  3. Placement flags are recomputed: all cleared first, then exactly as
//     many set per recipe as its usage count, in stored entry order.
//
// Entries are never invented or deleted; only flags change.
func (s *WeeklyMealStore) CleanupCalendarAndSync(ctx context.Context, newPlan types.SavedMealPlan) {
	plan := clonePlan(newPlan)

	type removal struct {
		date string
		slot types.MealSlot
	}
	var removed []removal

	s.mu.Lock()
	allowed := make(map[types.MealSlot]map[string]bool)
	for _, slot := range types.MealSlots {
		ids := make(map[string]bool)
		for _, e := range plan.Entries(slot) {
			ids[e.Recipe.ID] = true
		}
		allowed[slot] = ids
	}

	for date, slots := range s.calendar {
		for slot, rec := range slots {
			if !allowed[slot][rec.ID] {
				delete(slots, slot)
				removed = append(removed, removal{date: date, slot: slot})
			}
		}
		if len(slots) == 0 {
			delete(s.calendar, date)
		}
	}

	usage := make(map[types.MealSlot]map[string]int)
	for _, slots := range s.calendar {
		for slot, rec := range slots {
			if usage[slot] == nil {
				usage[slot] = make(map[string]int)
			}
			usage[slot][rec.ID]++
		}
	}

	for _, slot := range types.MealSlots {
		entries := plan.Entries(slot)
		remaining := make(map[string]int, len(usage[slot]))
		for id, n := range usage[slot] {
			remaining[id] = n
		}
		for i := range entries {
			entries[i].Placed = false
		}
		for i := range entries {
			if remaining[entries[i].Recipe.ID] > 0 {
				entries[i].Placed = true
				remaining[entries[i].Recipe.ID]--
			}
		}
	}

	s.saved = plan
	s.mu.Unlock()
	s.notify()

	// Cleanup removals are bookkeeping, not a user action: failures are
	// logged and the next reload converges.
	for _, rm := range removed {
		if err := s.repo.RemoveSlot(ctx, rm.date, rm.slot); err != nil && !errs.IsCancellation(err) {
			log.Debug().Err(err).Str("date", rm.date).Str("slot", string(rm.slot)).
				Msg("calendar cleanup removal failed")
		}
	}
}

// cell is one calendar position, possibly empty.
type cell struct {
	recipe  types.Recipe
	present bool
}

func (s *WeeklyMealStore) setCell(date string, slot types.MealSlot, c cell) {
	s.mu.Lock()
	if c.present {
		if s.calendar[date] == nil {
			s.calendar[date] = make(map[types.MealSlot]types.Recipe)
		}
		s.calendar[date][slot] = c.recipe
	} else {
		delete(s.calendar[date], slot)
		if len(s.calendar[date]) == 0 {
			delete(s.calendar, date)
		}
	}
	s.mu.Unlock()
	s.notify()
}

func (s *WeeklyMealStore) setError(err error) {
	msg := errs.UserMessage(err)
	s.mu.Lock()
	s.lastErr = msg
	s.mu.Unlock()
	s.notify()
}

func slotOrder(s types.MealSlot) int {
	switch s {
	case types.SlotBreakfast:
		return 0
	case types.SlotLunch:
		return 1
	case types.SlotDinner:
		return 2
	}
	return 3
}

func clonePlan(p types.SavedMealPlan) types.SavedMealPlan {
	out := types.SavedMealPlan{
		Breakfast: make([]types.PlanEntry, len(p.Breakfast)),
		Lunch:     make([]types.PlanEntry, len(p.Lunch)),
		Dinner:    make([]types.PlanEntry, len(p.Dinner)),
	}
	copy(out.Breakfast, p.Breakfast)
	copy(out.Lunch, p.Lunch)
	copy(out.Dinner, p.Dinner)
	return out
}
