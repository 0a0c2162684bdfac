package client

import "github.com/platewise/platewise/client/internal/types"

// Public type aliases so SDK consumers can import only the client package.
type (
	// Session and household
	Session           = types.Session
	Household         = types.Household
	Invitation        = types.Invitation
	InvitationPreview = types.InvitationPreview
	InvitationStatus  = types.InvitationStatus

	// Meal planning
	MealSlot      = types.MealSlot
	WeekPlanSlot  = types.WeekPlanSlot
	PlanEntry     = types.PlanEntry
	SavedMealPlan = types.SavedMealPlan

	// Catalog and shopping
	Recipe       = types.Recipe
	Ingredient   = types.Ingredient
	Nutrition    = types.Nutrition
	ShoppingItem = types.ShoppingItem
)

// Meal slot values.
const (
	SlotBreakfast = types.SlotBreakfast
	SlotLunch     = types.SlotLunch
	SlotDinner    = types.SlotDinner
)

// Invitation statuses. Only InvitationPending should lead to a join prompt.
const (
	InvitationPending       = types.InvitationPending
	InvitationAlreadyMember = types.InvitationAlreadyMember
	InvitationExpired       = types.InvitationExpired
	InvitationRedeemed      = types.InvitationRedeemed
	InvitationNotFound      = types.InvitationNotFound
)

// Errors re-exported in errors.go
