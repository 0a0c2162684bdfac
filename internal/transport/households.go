package transport

import (
	"context"

	"github.com/platewise/platewise/client/internal/types"
)

// Households carries the session-level household operations: creation,
// membership and invitations. Unlike the resource clients it takes explicit
// household ids, because it is what the session manager uses *before* a
// household binding exists.
type Households struct {
	emitter Emitter
	userID  string
}

// NewHouseholds builds the household transport client for userID.
func NewHouseholds(e Emitter, userID string) *Households {
	return &Households{emitter: e, userID: userID}
}

// Create creates a new household and makes the user a member.
func (h *Households) Create(ctx context.Context, name string) (*types.HouseholdDTO, error) {
	env, err := emit(ctx, h.emitter, "households:create", payload{
		UserID: h.userID,
		Data:   map[string]string{"name": name},
	})
	if err != nil {
		return nil, err
	}
	hh, err := decode[types.HouseholdDTO](env)
	if err != nil {
		return nil, err
	}
	return &hh, nil
}

// Leave removes the user from householdID.
func (h *Households) Leave(ctx context.Context, householdID string) error {
	env, err := emit(ctx, h.emitter, "households:leave", payload{
		UserID:      h.userID,
		HouseholdID: householdID,
	})
	if err != nil {
		return err
	}
	if _, err := decode[types.SuccessDTO](env); err != nil {
		return err
	}
	return nil
}

// CreateInvitation creates an invitation token for householdID.
func (h *Households) CreateInvitation(ctx context.Context, householdID string) (*types.InvitationDTO, error) {
	env, err := emit(ctx, h.emitter, "households:createInvitation", payload{
		UserID:      h.userID,
		HouseholdID: householdID,
		Data:        map[string]any{},
	})
	if err != nil {
		return nil, err
	}
	inv, err := decode[types.InvitationDTO](env)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// PreviewInvitation resolves an invitation token read-only.
func (h *Households) PreviewInvitation(ctx context.Context, token string) (*types.InvitationPreviewDTO, error) {
	if err := types.RequireToken(token); err != nil {
		return nil, err
	}
	env, err := emit(ctx, h.emitter, "households:previewInvitation", payload{
		UserID: h.userID,
		Data:   map[string]string{"token": token},
	})
	if err != nil {
		return nil, err
	}
	prev, err := decode[types.InvitationPreviewDTO](env)
	if err != nil {
		return nil, err
	}
	return &prev, nil
}

// AcceptInvitation consumes an invitation token and returns the membership.
func (h *Households) AcceptInvitation(ctx context.Context, token string) (*types.MembershipDTO, error) {
	if err := types.RequireToken(token); err != nil {
		return nil, err
	}
	env, err := emit(ctx, h.emitter, "households:acceptInvitation", payload{
		UserID: h.userID,
		Data:   map[string]string{"token": token},
	})
	if err != nil {
		return nil, err
	}
	m, err := decode[types.MembershipDTO](env)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// FindByID fetches one household record.
func (h *Households) FindByID(ctx context.Context, householdID string) (*types.HouseholdDTO, error) {
	env, err := emit(ctx, h.emitter, "households:findById", payload{
		UserID:      h.userID,
		HouseholdID: householdID,
	})
	if err != nil {
		return nil, err
	}
	hh, err := decode[types.HouseholdDTO](env)
	if err != nil {
		return nil, err
	}
	return &hh, nil
}

// FindAll lists the user's households.
func (h *Households) FindAll(ctx context.Context) ([]types.HouseholdDTO, error) {
	env, err := emit(ctx, h.emitter, "households:findAll", payload{UserID: h.userID})
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return decode[[]types.HouseholdDTO](env)
}
