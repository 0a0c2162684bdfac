package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/platewise/platewise/client/internal/types"
)

var upgrader = websocket.Upgrader{}

// wsFrame mirrors the event channel wire format for the fake backend.
type wsFrame struct {
	ID      string          `json:"id,omitempty"`
	Event   string          `json:"event,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
	OK      *bool           `json:"ok,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
	Code    string          `json:"code,omitempty"`
}

type wsPayload struct {
	UserID      string            `json:"userId"`
	HouseholdID string            `json:"householdId"`
	WeekStart   string            `json:"weekStart"`
	Data        map[string]string `json:"data"`
}

func okFrame(t *testing.T, id string, data any) wsFrame {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatal(err)
	}
	ok := true
	return wsFrame{ID: id, OK: &ok, Data: raw}
}

// fakeBackend serves POST /auth/dev plus the event channel, with an
// in-memory week plan per (weekStart, day, slot) cell.
type fakeBackend struct {
	t *testing.T

	mu         sync.Mutex
	slots      map[[3]string]string // (weekStart, day, slot) -> recipeId
	households []types.HouseholdDTO
}

func newFakeBackend(t *testing.T) (*fakeBackend, *httptest.Server) {
	t.Helper()
	b := &fakeBackend{
		t:          t,
		slots:      make(map[[3]string]string),
		households: []types.HouseholdDTO{{ID: "hh-dom", Name: "Dom"}},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/dev", b.handleLogin)
	mux.HandleFunc("/ws", b.handleSocket)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return b, srv
}

func (b *fakeBackend) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	resp := loginResponse{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		User:         loginUser{ID: "u-anna", DisplayName: req.DisplayName, Email: req.Email},
	}
	if req.HouseholdName != "" {
		resp.Household = &types.HouseholdDTO{ID: "hh-login", Name: req.HouseholdName}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (b *fakeBackend) handleSocket(w http.ResponseWriter, r *http.Request) {
	if got := r.Header.Get("Authorization"); got != "Bearer access-1" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	for {
		var f wsFrame
		if err := conn.ReadJSON(&f); err != nil {
			return
		}
		if f.Event == "test:push" {
			// Test hook: relay the embedded frame as a server push, then ack.
			var tp struct {
				Push struct {
					Event string          `json:"event"`
					Data  json.RawMessage `json:"data"`
				} `json:"push"`
			}
			_ = json.Unmarshal(f.Payload, &tp)
			if err := conn.WriteJSON(wsFrame{Event: tp.Push.Event, Data: tp.Push.Data}); err != nil {
				return
			}
			if err := conn.WriteJSON(okFrame(b.t, f.ID, types.SuccessDTO{Success: true})); err != nil {
				return
			}
			continue
		}
		var p wsPayload
		_ = json.Unmarshal(f.Payload, &p)
		if err := conn.WriteJSON(b.answer(f, p)); err != nil {
			return
		}
	}
}

func (b *fakeBackend) answer(f wsFrame, p wsPayload) wsFrame {
	switch f.Event {
	case "households:create":
		return okFrame(b.t, f.ID, types.HouseholdDTO{ID: "hh-dom", Name: p.Data["name"]})
	case "households:findAll":
		b.mu.Lock()
		hhs := append([]types.HouseholdDTO(nil), b.households...)
		b.mu.Unlock()
		return okFrame(b.t, f.ID, hhs)
	case "households:findById":
		b.mu.Lock()
		name := "Dom"
		for _, hh := range b.households {
			if hh.ID == p.HouseholdID {
				name = hh.Name
			}
		}
		b.mu.Unlock()
		return okFrame(b.t, f.ID, types.HouseholdDTO{ID: p.HouseholdID, Name: name})
	case "households:leave":
		return okFrame(b.t, f.ID, types.SuccessDTO{Success: true})
	case "households:createInvitation":
		return okFrame(b.t, f.ID, types.InvitationDTO{ID: "inv-1", Token: "tok-1", HouseholdID: p.HouseholdID})
	case "households:previewInvitation":
		status := "PENDING"
		if p.Data["token"] == "expired-token" {
			status = "EXPIRED"
		}
		return okFrame(b.t, f.ID, types.InvitationPreviewDTO{
			Token:     p.Data["token"],
			Status:    status,
			Household: types.HouseholdDTO{ID: "hh-dom", Name: "Dom"},
		})
	case "households:acceptInvitation":
		return okFrame(b.t, f.ID, types.MembershipDTO{HouseholdID: "hh-dom", UserID: p.UserID})
	case "weeklyPlans:upsertWeekSlot":
		b.mu.Lock()
		b.slots[[3]string{p.Data["weekStart"], p.Data["day"], p.Data["slot"]}] = p.Data["recipeId"]
		b.mu.Unlock()
		return okFrame(b.t, f.ID, types.SuccessDTO{Success: true})
	case "weeklyPlans:removeWeekSlot":
		b.mu.Lock()
		delete(b.slots, [3]string{p.Data["weekStart"], p.Data["day"], p.Data["slot"]})
		b.mu.Unlock()
		return okFrame(b.t, f.ID, types.SuccessDTO{Success: true})
	case "weeklyPlans:getByWeek":
		b.mu.Lock()
		plan := types.WeekPlanDTO{WeekStart: p.WeekStart}
		for key, recipeID := range b.slots {
			if key[0] != p.WeekStart {
				continue
			}
			plan.Slots = append(plan.Slots, types.WeekSlotDTO{
				WeekStart: key[0], Day: key[1], Slot: key[2],
				Recipe: types.RecipeDTO{ID: recipeID, Name: recipeID},
			})
		}
		b.mu.Unlock()
		return okFrame(b.t, f.ID, plan)
	case "weeklyPlans:getShoppingList":
		ok := false
		return wsFrame{ID: f.ID, OK: &ok, Error: "no list", Code: "NOT_FOUND"}
	default:
		ok := false
		return wsFrame{ID: f.ID, OK: &ok, Error: "unknown event " + f.Event}
	}
}

func newTestClient(t *testing.T, srv *httptest.Server, dir string) *Client {
	t.Helper()
	c, err := New(srv.URL, WithCredentialsDir(dir))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestLoginCreateHouseholdPlanWeek(t *testing.T) {
	t.Parallel()
	_, srv := newFakeBackend(t)
	c := newTestClient(t, srv, t.TempDir())
	ctx := context.Background()

	sess, err := c.Login(ctx, "Anna", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if sess.UserID != "u-anna" || sess.HasHousehold() {
		t.Fatalf("unexpected session %+v", sess)
	}
	if c.Meals() != nil {
		t.Fatal("stores must not exist before a household is bound")
	}

	hh, err := c.CreateHousehold(ctx, "Dom")
	if err != nil {
		t.Fatal(err)
	}
	if hh.Name != "Dom" {
		t.Fatalf("household = %+v", hh)
	}
	if got := c.Session(); !got.HasHousehold() || got.HouseholdName != "Dom" {
		t.Fatalf("session not bound: %+v", got)
	}

	meals := c.Meals()
	if meals == nil {
		t.Fatal("expected meal store after binding")
	}
	// 2024-03-04 is a Monday, so it is its own week start.
	if err := meals.UpsertSlot(ctx, "2024-03-04", SlotBreakfast, Recipe{ID: "X"}); err != nil {
		t.Fatal(err)
	}
	if err := meals.LoadWeek(ctx, "2024-03-04", true); err != nil {
		t.Fatal(err)
	}
	slots := meals.Slots()
	if len(slots) != 1 {
		t.Fatalf("slots = %+v, want exactly one", slots)
	}
	got := slots[0]
	if got.Date != "2024-03-04" || got.Slot != SlotBreakfast || got.Recipe.ID != "X" {
		t.Fatalf("slot = %+v", got)
	}
}

func TestRestoreWiresWithoutNetwork(t *testing.T) {
	t.Parallel()
	_, srv := newFakeBackend(t)
	dir := t.TempDir()

	c1 := newTestClient(t, srv, dir)
	if _, err := c1.Login(context.Background(), "Anna", "", "Dom"); err != nil {
		t.Fatal(err)
	}
	if err := c1.Close(); err != nil {
		t.Fatal(err)
	}

	// Second client restores from the same credentials dir. The backend
	// is shut down first to prove no network round-trip happens.
	srv.Close()
	c2 := newTestClient(t, srv, dir)
	sess, err := c2.Restore()
	if err != nil {
		t.Fatal(err)
	}
	if sess == nil || sess.UserID != "u-anna" || !sess.HasHousehold() {
		t.Fatalf("restored session = %+v", sess)
	}
	if c2.Meals() == nil || c2.ShoppingList() == nil || c2.RecipeCatalog() == nil {
		t.Fatal("expected stores wired from restored household binding")
	}
}

func TestRestore_NothingPersisted(t *testing.T) {
	t.Parallel()
	_, srv := newFakeBackend(t)
	c := newTestClient(t, srv, t.TempDir())
	sess, err := c.Restore()
	if err != nil {
		t.Fatal(err)
	}
	if sess != nil {
		t.Fatalf("expected no session, got %+v", sess)
	}
	if _, err := c.CreateHousehold(context.Background(), "Dom"); err != ErrNotAuthenticated {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestLogoutClearsEverything(t *testing.T) {
	t.Parallel()
	_, srv := newFakeBackend(t)
	dir := t.TempDir()
	c := newTestClient(t, srv, dir)
	if _, err := c.Login(context.Background(), "Anna", "", "Dom"); err != nil {
		t.Fatal(err)
	}
	if err := c.Logout(); err != nil {
		t.Fatal(err)
	}
	if c.Session() != nil || c.Meals() != nil {
		t.Fatal("expected session and stores gone after logout")
	}

	c2 := newTestClient(t, srv, dir)
	sess, err := c2.Restore()
	if err != nil {
		t.Fatal(err)
	}
	if sess != nil {
		t.Fatalf("credentials should be cleared, restored %+v", sess)
	}
}

func TestLeaveHousehold(t *testing.T) {
	t.Parallel()
	_, srv := newFakeBackend(t)
	c := newTestClient(t, srv, t.TempDir())
	ctx := context.Background()
	if _, err := c.Login(ctx, "Anna", "", "Dom"); err != nil {
		t.Fatal(err)
	}
	if err := c.LeaveHousehold(ctx); err != nil {
		t.Fatal(err)
	}
	sess := c.Session()
	if sess == nil || sess.HasHousehold() {
		t.Fatalf("expected authenticated no-household state, got %+v", sess)
	}
	if c.Meals() != nil {
		t.Fatal("expected stores torn down")
	}
	if err := c.LeaveHousehold(ctx); err != ErrNoHousehold {
		t.Fatalf("expected ErrNoHousehold, got %v", err)
	}
}

func TestResolveHousehold_PreferredName(t *testing.T) {
	t.Parallel()
	b, srv := newFakeBackend(t)
	b.households = []types.HouseholdDTO{
		{ID: "hh-groc", Name: "Groceries"},
		{ID: "hh-dom", Name: "Dom"},
	}
	c, err := New(srv.URL, WithCredentialsDir(t.TempDir()), WithPreferredHousehold("dom"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = c.Close() })
	ctx := context.Background()

	// Login without a household name lands in the no-household state.
	if _, err := c.Login(ctx, "Anna", "", ""); err != nil {
		t.Fatal(err)
	}
	if c.Meals() != nil {
		t.Fatal("no stores expected before a household is bound")
	}

	hh, err := c.ResolveHousehold(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if hh.ID != "hh-dom" {
		t.Fatalf("preferred name should win case-insensitively, got %+v", hh)
	}
	sess := c.Session()
	if sess == nil || sess.HouseholdID != "hh-dom" {
		t.Fatalf("binding not persisted on the session: %+v", sess)
	}
	if c.Meals() == nil || c.ShoppingList() == nil || c.RecipeCatalog() == nil {
		t.Fatal("expected stores wired after resolution")
	}

	// A second call is a no-op and keeps the existing binding.
	again, err := c.ResolveHousehold(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if again.ID != "hh-dom" {
		t.Fatalf("existing binding replaced: %+v", again)
	}
}

func TestResolveHousehold_FirstFallback(t *testing.T) {
	t.Parallel()
	b, srv := newFakeBackend(t)
	b.households = []types.HouseholdDTO{
		{ID: "hh-groc", Name: "Groceries"},
		{ID: "hh-dom", Name: "Dom"},
	}
	c := newTestClient(t, srv, t.TempDir())
	ctx := context.Background()
	if _, err := c.Login(ctx, "Anna", "", ""); err != nil {
		t.Fatal(err)
	}

	hh, err := c.ResolveHousehold(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if hh.ID != "hh-groc" {
		t.Fatalf("expected first household without a preferred name, got %+v", hh)
	}
}

func TestResolveHousehold_NoHouseholds(t *testing.T) {
	t.Parallel()
	b, srv := newFakeBackend(t)
	b.households = nil
	c := newTestClient(t, srv, t.TempDir())
	ctx := context.Background()
	if _, err := c.Login(ctx, "Anna", "", ""); err != nil {
		t.Fatal(err)
	}

	if _, err := c.ResolveHousehold(ctx); !errors.Is(err, ErrNoHousehold) {
		t.Fatalf("expected ErrNoHousehold, got %v", err)
	}
	if c.Meals() != nil {
		t.Fatal("no stores must be wired after a failed resolution")
	}
}

func TestInvitationFlow(t *testing.T) {
	t.Parallel()
	_, srv := newFakeBackend(t)
	c := newTestClient(t, srv, t.TempDir())
	ctx := context.Background()
	if _, err := c.Login(ctx, "Bea", "", ""); err != nil {
		t.Fatal(err)
	}

	expired, err := c.PreviewInvitation(ctx, "expired-token")
	if err != nil {
		t.Fatal(err)
	}
	if expired.Status != InvitationExpired {
		t.Fatalf("status = %q", expired.Status)
	}
	// A non-pending status never produces a join prompt, only its message.
	if msg := InvitationStatusMessage(expired.Status); msg == "" || msg == InvitationStatusMessage(InvitationPending) {
		t.Fatalf("expected a specific expired message, got %q", msg)
	}

	pending, err := c.PreviewInvitation(ctx, "tok-1")
	if err != nil {
		t.Fatal(err)
	}
	if pending.Status != InvitationPending || pending.Household.Name != "Dom" {
		t.Fatalf("preview = %+v", pending)
	}

	hh, err := c.AcceptInvitation(ctx, "tok-1")
	if err != nil {
		t.Fatal(err)
	}
	if hh == nil || hh.ID != "hh-dom" {
		t.Fatalf("accepted household = %+v", hh)
	}
	if got := c.Session(); got.HouseholdID != "hh-dom" {
		t.Fatalf("session not bound: %+v", got)
	}
}

func TestAcceptInvitation_CancellationSwallowed(t *testing.T) {
	t.Parallel()
	_, srv := newFakeBackend(t)
	c := newTestClient(t, srv, t.TempDir())
	if _, err := c.Login(context.Background(), "Bea", "", ""); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	hh, err := c.AcceptInvitation(ctx, "tok-1")
	if err != nil {
		t.Fatalf("cancellation must be swallowed, got %v", err)
	}
	if hh != nil {
		t.Fatalf("expected no household, got %+v", hh)
	}
	if c.Session().HasHousehold() {
		t.Fatal("cancelled accept must not change state")
	}
}

func TestMembershipVersion_FilteredByHousehold(t *testing.T) {
	t.Parallel()
	_, srv := newFakeBackend(t)
	c := newTestClient(t, srv, t.TempDir())
	ctx := context.Background()
	if _, err := c.Login(ctx, "Anna", "", "Dom"); err != nil {
		t.Fatal(err)
	}

	push := func(ev types.MembersChangedEvent) {
		raw, err := json.Marshal(ev)
		if err != nil {
			t.Fatal(err)
		}
		c.mu.Lock()
		sock := c.sock
		c.mu.Unlock()
		_, err = sock.EmitWithAck(ctx, "test:push", map[string]any{
			"push": map[string]any{"event": "households:membersChanged", "data": json.RawMessage(raw)},
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	before := c.MembershipVersion()
	// Pushes for the same event name are dispatched in order, so after the
	// matching event lands the foreign one has already been (not) counted.
	push(types.MembersChangedEvent{HouseholdID: "hh-other", Action: "joined"})
	push(types.MembersChangedEvent{HouseholdID: "hh-login", Action: "joined"})

	deadline := time.After(2 * time.Second)
	for c.MembershipVersion() != before+1 {
		select {
		case <-deadline:
			t.Fatalf("version = %d, want %d", c.MembershipVersion(), before+1)
		case <-time.After(5 * time.Millisecond):
		}
	}
}
