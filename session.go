package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	errs "github.com/platewise/platewise/client/internal/errors"
	"github.com/platewise/platewise/client/internal/repo"
	"github.com/platewise/platewise/client/internal/socket"
	"github.com/platewise/platewise/client/internal/store"
	"github.com/platewise/platewise/client/internal/transport"
	"github.com/platewise/platewise/client/internal/types"
)

// Session manager. Three macro-states:
//
//	Unauthenticated -> Authenticated-NoHousehold -> Authenticated-WithHousehold
//
// Login and Restore enter an authenticated state. CreateHousehold and
// AcceptInvitation bind a household and wire the resource clients, stores
// and push subscriptions. LeaveHousehold unbinds; Logout clears everything
// unconditionally.

// Login exchanges displayName (and optional email, householdName) for a
// session via POST /auth/dev, persists the credentials and wires the
// runtime. If the backend created or matched a household during login the
// session lands directly in the with-household state.
func (c *Client) Login(ctx context.Context, displayName, email, householdName string) (*Session, error) {
	if displayName == "" {
		return nil, fmt.Errorf("displayName must not be empty")
	}
	resp, err := c.exchangeCredentials(ctx, loginRequest{
		DisplayName:   displayName,
		Email:         email,
		HouseholdName: householdName,
	})
	if err != nil {
		return nil, err
	}

	sess := types.Session{
		UserID:       resp.User.ID,
		DisplayName:  resp.User.DisplayName,
		Email:        resp.User.Email,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	}
	if resp.Household != nil {
		sess.HouseholdID = resp.Household.ID
		sess.HouseholdName = resp.Household.Name
	}
	if err := c.creds.Save(sess); err != nil {
		return nil, fmt.Errorf("persist credentials: %w", err)
	}

	c.mu.Lock()
	c.startSessionLocked(sess)
	c.mu.Unlock()
	loginsTotal.Inc()
	log.Debug().Str("userId", sess.UserID).Bool("hasHousehold", sess.HasHousehold()).Msg("logged in")
	out := sess
	return &out, nil
}

// Restore loads persisted credentials and wires the runtime without any
// network round-trip; the stored session is trusted and re-validated
// lazily by the first real operation. Returns (nil, nil) when nothing is
// persisted.
func (c *Client) Restore() (*Session, error) {
	sess, err := c.creds.Load()
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}
	if sess == nil {
		return nil, nil
	}

	c.mu.Lock()
	c.startSessionLocked(*sess)
	c.mu.Unlock()
	sessionsRestoredTotal.Inc()
	log.Debug().Str("userId", sess.UserID).Bool("hasHousehold", sess.HasHousehold()).Msg("session restored")
	out := *sess
	return &out, nil
}

// Logout clears persisted credentials and tears down the runtime, from any
// state.
func (c *Client) Logout() error {
	if err := c.creds.Clear(); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	c.mu.Lock()
	sock := c.sock
	c.teardownHouseholdLocked()
	c.sess = nil
	c.sock = nil
	c.households = nil
	c.mu.Unlock()
	if sock != nil {
		_ = sock.Close()
	}
	return nil
}

// Session returns a copy of the active session, or nil.
func (c *Client) Session() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess == nil {
		return nil
	}
	out := *c.sess
	return &out
}

// MembershipVersion is a counter incremented on every membership change
// push accepted for the active household. Dependent state can watch it to
// re-derive membership-sensitive views.
func (c *Client) MembershipVersion() uint64 { return c.membershipVersion.Load() }

// Meals returns the weekly meal store, or nil while no household is bound.
func (c *Client) Meals() *store.WeeklyMealStore {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.meals
}

// ShoppingList returns the shopping list store, or nil while no household
// is bound.
func (c *Client) ShoppingList() *store.ShoppingListStore {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shopping
}

// RecipeCatalog returns the recipe catalog store, or nil while no
// household is bound.
func (c *Client) RecipeCatalog() *store.RecipeCatalogStore {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recipes
}

// --------------------------------------------------------------------
// Household operations
// --------------------------------------------------------------------

// CreateHousehold creates a household, binds the session to it and wires
// the stores and push subscriptions.
func (c *Client) CreateHousehold(ctx context.Context, name string) (*Household, error) {
	c.mu.Lock()
	hc := c.households
	c.mu.Unlock()
	if hc == nil {
		return nil, ErrNotAuthenticated
	}

	dto, err := hc.Create(ctx, name)
	if err != nil {
		return nil, err
	}
	hh := Household{ID: dto.ID, Name: dto.Name}
	if err := c.bindHousehold(hh); err != nil {
		return nil, err
	}
	return &hh, nil
}

// LeaveHousehold leaves the active household, tears down its stores and
// unsubscribes the push handlers. The session stays authenticated.
func (c *Client) LeaveHousehold(ctx context.Context) error {
	c.mu.Lock()
	hc := c.households
	var householdID string
	if c.sess != nil {
		householdID = c.sess.HouseholdID
	}
	c.mu.Unlock()
	if hc == nil {
		return ErrNotAuthenticated
	}
	if householdID == "" {
		return ErrNoHousehold
	}

	if err := hc.Leave(ctx, householdID); err != nil {
		return err
	}

	c.mu.Lock()
	c.teardownHouseholdLocked()
	sess := *c.sess
	sess.HouseholdID = ""
	sess.HouseholdName = ""
	c.sess = &sess
	c.mu.Unlock()
	if err := c.creds.Save(sess); err != nil {
		return fmt.Errorf("persist credentials: %w", err)
	}
	return nil
}

// CreateInvitation creates an invitation token for the active household.
func (c *Client) CreateInvitation(ctx context.Context) (*Invitation, error) {
	c.mu.Lock()
	hc := c.households
	var householdID string
	if c.sess != nil {
		householdID = c.sess.HouseholdID
	}
	c.mu.Unlock()
	if hc == nil {
		return nil, ErrNotAuthenticated
	}
	if householdID == "" {
		return nil, ErrNoHousehold
	}

	dto, err := hc.CreateInvitation(ctx, householdID)
	if err != nil {
		return nil, err
	}
	return &Invitation{ID: dto.ID, Token: dto.Token, HouseholdID: dto.HouseholdID}, nil
}

// PreviewInvitation resolves an invitation token read-only. Only a
// PENDING status should lead to a join prompt; every other status maps to
// a user-facing line via InvitationStatusMessage and changes nothing.
func (c *Client) PreviewInvitation(ctx context.Context, token string) (*InvitationPreview, error) {
	c.mu.Lock()
	hc := c.households
	c.mu.Unlock()
	if hc == nil {
		return nil, ErrNotAuthenticated
	}

	dto, err := hc.PreviewInvitation(ctx, token)
	if err != nil {
		return nil, err
	}
	return &InvitationPreview{
		Token:       dto.Token,
		Status:      InvitationStatus(dto.Status),
		Household:   Household{ID: dto.Household.ID, Name: dto.Household.Name},
		InviterName: dto.InviterName,
		ExpiresAt:   dto.ExpiresAt,
	}, nil
}

// AcceptInvitation consumes an invitation token, fetches the household and
// performs the same wiring as CreateHousehold. A cancellation anywhere in
// the flow is swallowed: the caller navigated away, nothing is reported.
func (c *Client) AcceptInvitation(ctx context.Context, token string) (*Household, error) {
	c.mu.Lock()
	hc := c.households
	c.mu.Unlock()
	if hc == nil {
		return nil, ErrNotAuthenticated
	}

	m, err := hc.AcceptInvitation(ctx, token)
	if err != nil {
		if errs.IsCancellation(err) {
			return nil, nil
		}
		return nil, err
	}
	dto, err := hc.FindByID(ctx, m.HouseholdID)
	if err != nil {
		if errs.IsCancellation(err) {
			return nil, nil
		}
		return nil, err
	}
	hh := Household{ID: dto.ID, Name: dto.Name}
	if err := c.bindHousehold(hh); err != nil {
		return nil, err
	}
	return &hh, nil
}

// ResolveHousehold binds an authenticated session that carries no
// household to one resolved on demand: a household whose name matches the
// preferred name (WithPreferredHousehold) case-insensitively wins,
// otherwise the first household the backend returns. Returns
// ErrNoHousehold when the user belongs to none, and the existing binding
// unchanged when one is already active.
func (c *Client) ResolveHousehold(ctx context.Context) (*Household, error) {
	c.mu.Lock()
	hc := c.households
	sock := c.sock
	var userID string
	if c.sess != nil {
		if c.sess.HasHousehold() {
			hh := Household{ID: c.sess.HouseholdID, Name: c.sess.HouseholdName}
			c.mu.Unlock()
			return &hh, nil
		}
		userID = c.sess.UserID
	}
	c.mu.Unlock()
	if hc == nil {
		return nil, ErrNotAuthenticated
	}

	id, err := transport.NewResolver(sock, userID, c.preferredHousehold).Resolve(ctx)
	if err != nil {
		return nil, err
	}
	dto, err := hc.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	hh := Household{ID: dto.ID, Name: dto.Name}
	if err := c.bindHousehold(hh); err != nil {
		return nil, err
	}
	return &hh, nil
}

// Households lists the households the user belongs to.
func (c *Client) Households(ctx context.Context) ([]Household, error) {
	c.mu.Lock()
	hc := c.households
	c.mu.Unlock()
	if hc == nil {
		return nil, ErrNotAuthenticated
	}

	dtos, err := hc.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Household, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, Household{ID: d.ID, Name: d.Name})
	}
	return out, nil
}

// --------------------------------------------------------------------
// Wiring
// --------------------------------------------------------------------

// startSessionLocked builds the socket and session-level transport for
// sess and, when a household is already bound, the full store wiring.
// c.mu held.
func (c *Client) startSessionLocked(sess types.Session) {
	if c.sock != nil {
		_ = c.sock.Close()
	}
	header := http.Header{}
	header.Set("Authorization", "Bearer "+sess.AccessToken)
	c.sock = socket.New(socketURL(c.baseURL), header, c.socketCfg)
	c.households = transport.NewHouseholds(c.sock, sess.UserID)
	c.sess = &sess
	c.meals, c.shopping, c.recipes = nil, nil, nil
	if sess.HasHousehold() {
		c.wireHouseholdLocked(sess.HouseholdID)
	}
}

// bindHousehold persists the new binding and wires stores and push
// subscriptions. Entry point for create-household and accept-invitation.
func (c *Client) bindHousehold(hh Household) error {
	c.mu.Lock()
	if c.sess == nil {
		c.mu.Unlock()
		return ErrNotAuthenticated
	}
	sess := *c.sess
	sess.HouseholdID = hh.ID
	sess.HouseholdName = hh.Name
	c.sess = &sess
	c.wireHouseholdLocked(hh.ID)
	c.mu.Unlock()

	if err := c.creds.Save(sess); err != nil {
		return fmt.Errorf("persist credentials: %w", err)
	}
	return nil
}

// wireHouseholdLocked constructs the resource clients, repositories and
// stores bound to householdID and (re)installs the push subscriptions.
// c.mu held.
func (c *Client) wireHouseholdLocked(householdID string) {
	userID := c.sess.UserID
	resolver := transport.NewKnownResolver(householdID)

	c.meals = store.NewWeeklyMealStore(
		repo.NewWeekPlanRepository(transport.NewWeeklyPlans(c.sock, userID, resolver)))
	c.shopping = store.NewShoppingListStore(
		repo.NewShoppingRepository(transport.NewShoppingLists(c.sock, userID, resolver)), householdID)
	c.recipes = store.NewRecipeCatalogStore(
		repo.NewRecipeRepository(transport.NewRecipes(c.sock, userID, resolver)))

	shopping := c.shopping
	c.sock.On("households:membersChanged", func(data json.RawMessage) {
		var ev types.MembersChangedEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			log.Debug().Err(err).Msg("malformed membersChanged push")
			return
		}
		if ev.HouseholdID != householdID {
			return
		}
		c.membershipVersion.Add(1)
		membersChangedTotal.Inc()
		log.Debug().Str("action", ev.Action).Str("by", ev.ChangedByDisplayName).Msg("household membership changed")
	})
	c.sock.On("weeklyPlans:shoppingListChanged", func(data json.RawMessage) {
		var ev types.ShoppingListChangedEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			log.Debug().Err(err).Msg("malformed shoppingListChanged push")
			return
		}
		shopping.HandleChanged(ev)
	})
}

// teardownHouseholdLocked drops the stores and push subscriptions. c.mu
// held.
func (c *Client) teardownHouseholdLocked() {
	if c.sock != nil {
		c.sock.Off("households:membersChanged")
		c.sock.Off("weeklyPlans:shoppingListChanged")
	}
	c.meals, c.shopping, c.recipes = nil, nil, nil
}
