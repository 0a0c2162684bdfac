package types

import "time"

// Wire shapes exchanged with the backend over the event channel. These are
// kept separate from the domain entities so repositories own the mapping and
// the rest of the client never sees backend field names.

// HouseholdDTO mirrors the backend household record.
type HouseholdDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// WeekSlotDTO is one planned meal addressed by week start + day code.
// Day is one of MON..SUN; anything else marks a mapping failure and the
// record is dropped during translation.
type WeekSlotDTO struct {
	WeekStart string    `json:"weekStart"`
	Day       string    `json:"day"`
	Slot      string    `json:"slot"`
	Recipe    RecipeDTO `json:"recipe"`
}

// WeekPlanDTO is the backend response for weeklyPlans:getByWeek.
type WeekPlanDTO struct {
	WeekStart string        `json:"weekStart"`
	Slots     []WeekSlotDTO `json:"slots"`
}

// RecipeDTO mirrors the backend recipe record.
type RecipeDTO struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	Favourite       bool            `json:"favourite"`
	Category        string          `json:"category,omitempty"`
	Servings        int             `json:"servings,omitempty"`
	PrepTimeMinutes int             `json:"prepTimeMinutes,omitempty"`
	Difficulty      string          `json:"difficulty,omitempty"`
	Ingredients     []IngredientDTO `json:"ingredients,omitempty"`
	Steps           []string        `json:"steps,omitempty"`
	Nutrition       *NutritionDTO   `json:"nutrition,omitempty"`
}

// IngredientDTO mirrors the backend ingredient record.
type IngredientDTO struct {
	Name       string  `json:"name"`
	Amount     float64 `json:"amount"`
	Unit       string  `json:"unit"`
	ProductKey string  `json:"productKey,omitempty"`
}

// NutritionDTO mirrors the backend nutrition record.
type NutritionDTO struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// ShoppingItemDTO mirrors the backend shopping list row.
type ShoppingItemDTO struct {
	ProductKey  string  `json:"productKey"`
	Name        string  `json:"name"`
	TotalAmount float64 `json:"totalAmount"`
	Unit        string  `json:"unit"`
	Department  string  `json:"department"`
	IsChecked   bool    `json:"isChecked"`
}

// ShoppingListDTO is the backend response for weeklyPlans:getShoppingList.
type ShoppingListDTO struct {
	WeekStart string            `json:"weekStart"`
	Items     []ShoppingItemDTO `json:"items"`
}

// InvitationDTO mirrors households:createInvitation.
type InvitationDTO struct {
	ID          string `json:"id"`
	Token       string `json:"token"`
	HouseholdID string `json:"householdId"`
}

// InvitationPreviewDTO mirrors households:previewInvitation.
type InvitationPreviewDTO struct {
	Token       string       `json:"token"`
	Status      string       `json:"status"`
	Household   HouseholdDTO `json:"household"`
	InviterName string       `json:"inviterName,omitempty"`
	ExpiresAt   *time.Time   `json:"expiresAt,omitempty"`
}

// MembershipDTO mirrors households:acceptInvitation.
type MembershipDTO struct {
	HouseholdID string `json:"householdId"`
	UserID      string `json:"userId"`
}

// SuccessDTO wraps boolean-result operations such as households:leave.
type SuccessDTO struct {
	Success bool `json:"success"`
}

// ------------------------------
// Push event payloads
// ------------------------------

// MembersChangedEvent is pushed on households:membersChanged when another
// member joins or leaves.
type MembersChangedEvent struct {
	HouseholdID          string `json:"householdId"`
	Action               string `json:"action"`
	ChangedByUserID      string `json:"changedByUserId"`
	ChangedByDisplayName string `json:"changedByDisplayName"`
}

// ShoppingListChangedEvent is pushed on weeklyPlans:shoppingListChanged when
// another member checks or unchecks an item.
type ShoppingListChangedEvent struct {
	HouseholdID string `json:"householdId"`
	WeekStart   string `json:"weekStart"`
	ProductKey  string `json:"productKey"`
	IsChecked   bool   `json:"isChecked"`
}
