package repo

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/platewise/platewise/client/internal/socket"
	"github.com/platewise/platewise/client/internal/transport"
	"github.com/platewise/platewise/client/internal/types"
)

type fakeEmitter struct {
	mu      sync.Mutex
	calls   []recordedCall
	respond func(event string, p map[string]any) (socket.Envelope, error)
}

type recordedCall struct {
	event   string
	payload map[string]any
}

func (f *fakeEmitter) EmitWithAck(ctx context.Context, event string, payload any) (socket.Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return socket.Envelope{}, err
	}
	var p map[string]any
	_ = json.Unmarshal(raw, &p)
	f.mu.Lock()
	f.calls = append(f.calls, recordedCall{event: event, payload: p})
	f.mu.Unlock()
	return f.respond(event, p)
}

func (f *fakeEmitter) last() recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func okEnv(t *testing.T, data any) socket.Envelope {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatal(err)
	}
	return socket.Envelope{OK: true, Data: raw}
}

func TestWeekPlanRepository_FetchWeek_DropsBadRecords(t *testing.T) {
	t.Parallel()
	plan := types.WeekPlanDTO{
		WeekStart: "2024-03-04",
		Slots: []types.WeekSlotDTO{
			{WeekStart: "2024-03-04", Day: "MON", Slot: "breakfast", Recipe: types.RecipeDTO{ID: "r1", Favourite: true}},
			{WeekStart: "2024-03-04", Day: "FUN", Slot: "lunch", Recipe: types.RecipeDTO{ID: "r2"}},     // bad day code
			{WeekStart: "garbage", Day: "TUE", Slot: "dinner", Recipe: types.RecipeDTO{ID: "r3"}},       // bad week start
			{WeekStart: "2024-03-04", Day: "WED", Slot: "brunch", Recipe: types.RecipeDTO{ID: "r4"}},    // bad slot
			{WeekStart: "2024-03-04", Day: "SUN", Slot: "dinner", Recipe: types.RecipeDTO{ID: "r5"}},
		},
	}
	fe := &fakeEmitter{respond: func(event string, p map[string]any) (socket.Envelope, error) {
		if event == "households:findAll" {
			return okEnv(t, []types.HouseholdDTO{{ID: "h1"}}), nil
		}
		return okEnv(t, plan), nil
	}}
	r := NewWeekPlanRepository(transport.NewWeeklyPlans(fe, "u1", transport.NewResolver(fe, "u1", "")))

	slots, err := r.FetchWeek(context.Background(), "2024-03-04")
	if err != nil {
		t.Fatal(err)
	}
	if len(slots) != 2 {
		t.Fatalf("expected 2 surviving slots, got %d: %+v", len(slots), slots)
	}
	if slots[0].Date != "2024-03-04" || slots[0].Slot != types.SlotBreakfast || slots[0].Recipe.ID != "r1" {
		t.Fatalf("bad first slot %+v", slots[0])
	}
	if !slots[0].Recipe.IsFavorite {
		t.Fatal("favourite flag lost in mapping")
	}
	if slots[1].Date != "2024-03-10" || slots[1].Recipe.ID != "r5" {
		t.Fatalf("bad second slot %+v", slots[1])
	}
}

func TestWeekPlanRepository_UpsertSlot_TranslatesDate(t *testing.T) {
	t.Parallel()
	fe := &fakeEmitter{respond: func(event string, p map[string]any) (socket.Envelope, error) {
		if event == "households:findAll" {
			return okEnv(t, []types.HouseholdDTO{{ID: "h1"}}), nil
		}
		return okEnv(t, types.SuccessDTO{Success: true}), nil
	}}
	r := NewWeekPlanRepository(transport.NewWeeklyPlans(fe, "u1", transport.NewResolver(fe, "u1", "")))

	// 2024-03-06 is a Wednesday of the week starting 2024-03-04.
	if err := r.UpsertSlot(context.Background(), "2024-03-06", types.SlotDinner, "r1"); err != nil {
		t.Fatal(err)
	}
	data := fe.last().payload["data"].(map[string]any)
	if data["weekStart"] != "2024-03-04" || data["day"] != "WED" || data["slot"] != "dinner" {
		t.Fatalf("bad addressing %v", data)
	}
}

func TestWeekPlanRepository_RejectsUnknownSlot(t *testing.T) {
	t.Parallel()
	fe := &fakeEmitter{respond: func(event string, p map[string]any) (socket.Envelope, error) {
		return okEnv(t, nil), nil
	}}
	r := NewWeekPlanRepository(transport.NewWeeklyPlans(fe, "u1", transport.NewKnownResolver("h1")))
	if err := r.UpsertSlot(context.Background(), "2024-03-06", "brunch", "r1"); err == nil {
		t.Fatal("expected error for unknown slot")
	}
	if len(fe.calls) != 0 {
		t.Fatal("invalid slot must not reach the wire")
	}
}

func TestShoppingRepository_FetchWeek_FieldMapping(t *testing.T) {
	t.Parallel()
	list := types.ShoppingListDTO{
		WeekStart: "2024-03-04",
		Items: []types.ShoppingItemDTO{
			{ProductKey: "milk", Name: "Milk", TotalAmount: 1.5, Unit: "l", Department: "dairy", IsChecked: true},
		},
	}
	fe := &fakeEmitter{respond: func(event string, p map[string]any) (socket.Envelope, error) {
		return okEnv(t, list), nil
	}}
	r := NewShoppingRepository(transport.NewShoppingLists(fe, "u1", transport.NewKnownResolver("h1")))

	items, err := r.FetchWeek(context.Background(), "2024-03-04")
	if err != nil {
		t.Fatal(err)
	}
	want := types.ShoppingItem{ProductKey: "milk", Name: "Milk", Amount: 1.5, Unit: "l", Department: "dairy", Checked: true}
	if len(items) != 1 || items[0] != want {
		t.Fatalf("mapping wrong: %+v", items)
	}
}

func TestRecipeRepository_FetchAll(t *testing.T) {
	t.Parallel()
	dtos := []types.RecipeDTO{
		{ID: "r1", Name: "Pancakes", Favourite: true, Ingredients: []types.IngredientDTO{{Name: "Flour", Amount: 200, Unit: "g"}}},
		{ID: "r2", Name: "Soup", Nutrition: &types.NutritionDTO{Calories: 120}},
	}
	fe := &fakeEmitter{respond: func(event string, p map[string]any) (socket.Envelope, error) {
		return okEnv(t, dtos), nil
	}}
	r := NewRecipeRepository(transport.NewRecipes(fe, "u1", transport.NewKnownResolver("h1")))

	recipes, err := r.FetchAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(recipes) != 2 || !recipes[0].IsFavorite || recipes[0].Ingredients[0].Name != "Flour" {
		t.Fatalf("mapping wrong: %+v", recipes)
	}
	if recipes[1].Nutrition == nil || recipes[1].Nutrition.Calories != 120 {
		t.Fatalf("nutrition lost: %+v", recipes[1])
	}
}
