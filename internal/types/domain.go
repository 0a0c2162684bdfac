package types

import "time"

// ------------------------------
// Core Domain Entities
// ------------------------------

// Session holds the authenticated user's identity and household binding.
// An empty HouseholdID is a valid state: the user is signed in but has not
// created or joined a household yet.
type Session struct {
	UserID        string `json:"userId"`
	DisplayName   string `json:"displayName"`
	Email         string `json:"email,omitempty"`
	HouseholdID   string `json:"householdId,omitempty"`
	HouseholdName string `json:"householdName,omitempty"`
	AccessToken   string `json:"accessToken"`
	RefreshToken  string `json:"refreshToken"`
}

// HasHousehold reports whether the session is bound to a household.
func (s Session) HasHousehold() bool { return s.HouseholdID != "" }

// Household is a group of users sharing one meal plan, shopping list and
// recipe catalog.
type Household struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// InvitationStatus is the backend's verdict on an invitation token.
type InvitationStatus string

const (
	InvitationPending       InvitationStatus = "PENDING"
	InvitationAlreadyMember InvitationStatus = "ALREADY_MEMBER"
	InvitationExpired       InvitationStatus = "EXPIRED"
	InvitationRedeemed      InvitationStatus = "REDEEMED"
	InvitationNotFound      InvitationStatus = "NOT_FOUND"
)

// InvitationPreview is the read-only resolution of an invitation token.
// Only InvitationPending should lead to a join prompt.
type InvitationPreview struct {
	Token       string           `json:"token"`
	Status      InvitationStatus `json:"status"`
	Household   Household        `json:"household"`
	InviterName string           `json:"inviterName,omitempty"`
	ExpiresAt   *time.Time       `json:"expiresAt,omitempty"`
}

// Invitation is a freshly created invite for the active household.
type Invitation struct {
	ID          string `json:"id"`
	Token       string `json:"token"`
	HouseholdID string `json:"householdId"`
}

// MealSlot is the unit of meal assignment per day.
type MealSlot string

const (
	SlotBreakfast MealSlot = "breakfast"
	SlotLunch     MealSlot = "lunch"
	SlotDinner    MealSlot = "dinner"
)

// MealSlots lists all slots in day order.
var MealSlots = []MealSlot{SlotBreakfast, SlotLunch, SlotDinner}

// Ingredient is one line of a recipe's ingredient list.
type Ingredient struct {
	Name       string  `json:"name"`
	Amount     float64 `json:"amount"`
	Unit       string  `json:"unit"`
	ProductKey string  `json:"productKey,omitempty"`
}

// Nutrition summarises a recipe per serving.
type Nutrition struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// Recipe is a catalog entry. IsFavorite is the only field the client may
// mutate; everything else is read-only reference data.
type Recipe struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	Description     string       `json:"description,omitempty"`
	IsFavorite      bool         `json:"isFavorite"`
	Category        string       `json:"category,omitempty"`
	Servings        int          `json:"servings,omitempty"`
	PrepTimeMinutes int          `json:"prepTimeMinutes,omitempty"`
	Difficulty      string       `json:"difficulty,omitempty"`
	Ingredients     []Ingredient `json:"ingredients,omitempty"`
	Steps           []string     `json:"steps,omitempty"`
	Nutrition       *Nutrition   `json:"nutrition,omitempty"`
}

// WeekPlanSlot is one planned meal on a concrete calendar date.
// At most one slot exists per (Date, Slot); assigning again overwrites.
type WeekPlanSlot struct {
	Date   string   `json:"date"` // ISO date, e.g. 2024-03-04
	Slot   MealSlot `json:"slot"`
	Recipe Recipe   `json:"recipe"`
}

// PlanEntry is one planned serving of a recipe inside a SavedMealPlan.
// Placed records whether this serving has been put on a concrete calendar
// day. The same recipe may appear in several entries (several servings).
type PlanEntry struct {
	Recipe Recipe `json:"recipe"`
	Placed bool   `json:"placed"`
}

// SavedMealPlan holds the week's planned servings, one ordered list per slot.
type SavedMealPlan struct {
	Breakfast []PlanEntry `json:"breakfast"`
	Lunch     []PlanEntry `json:"lunch"`
	Dinner    []PlanEntry `json:"dinner"`
}

// Entries returns the entry list for slot. The returned slice aliases the
// plan's backing array so callers may mutate entries in place.
func (p *SavedMealPlan) Entries(slot MealSlot) []PlanEntry {
	switch slot {
	case SlotBreakfast:
		return p.Breakfast
	case SlotLunch:
		return p.Lunch
	case SlotDinner:
		return p.Dinner
	}
	return nil
}

// ShoppingItem is one aggregated product on the week's shopping list.
// Checked is the only field mutable from the client.
type ShoppingItem struct {
	ProductKey string  `json:"productKey"`
	Name       string  `json:"name"`
	Amount     float64 `json:"amount"`
	Unit       string  `json:"unit"`
	Department string  `json:"department"`
	Checked    bool    `json:"checked"`
}
