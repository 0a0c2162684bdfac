package types

import "fmt"

// ------------------------------
// Shared Errors
// ------------------------------

// ErrNotFound marks a read whose subject does not exist on the backend.
// Transport clients translate the NOT_FOUND envelope code into typed empty
// results, so most callers never see this error directly.
var ErrNotFound = fmt.Errorf("not found")

// ErrNoHousehold is returned when an operation requires a household binding
// and the user belongs to none.
var ErrNoHousehold = fmt.Errorf("user has no household")

// ------------------------------
// Input validation
// ------------------------------

// RequireUserID rejects empty user ids before they reach the wire.
func RequireUserID(userID string) error {
	if userID == "" {
		return fmt.Errorf("userId must not be empty")
	}
	return nil
}

// RequireToken rejects empty invitation tokens.
func RequireToken(token string) error {
	if token == "" {
		return fmt.Errorf("invitation token must not be empty")
	}
	return nil
}

// ValidMealSlot reports whether s is one of the three known slots.
func ValidMealSlot(s MealSlot) bool {
	switch s {
	case SlotBreakfast, SlotLunch, SlotDinner:
		return true
	}
	return false
}

// RequireMealSlot rejects unknown meal slots.
func RequireMealSlot(s MealSlot) error {
	if !ValidMealSlot(s) {
		return fmt.Errorf("unknown meal slot %q", s)
	}
	return nil
}
