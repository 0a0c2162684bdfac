package creds

import (
	"testing"

	"github.com/platewise/platewise/client/internal/types"
)

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	t.Parallel()
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	want := types.Session{
		UserID:        "u1",
		DisplayName:   "Anna",
		HouseholdID:   "h1",
		HouseholdName: "Dom",
		AccessToken:   "at",
		RefreshToken:  "rt",
	}
	if err := s.Save(want); err != nil {
		t.Fatal(err)
	}
	got, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || *got != want {
		t.Fatalf("loaded session %+v, want %+v", got, want)
	}
}

func TestStore_LoadMissing(t *testing.T) {
	t.Parallel()
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	got, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Fatalf("expected nil session, got %+v", got)
	}
}

func TestStore_ClearIdempotent(t *testing.T) {
	t.Parallel()
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("clearing absent session: %v", err)
	}
	if err := s.Save(types.Session{UserID: "u1"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Clear(); err != nil {
		t.Fatal(err)
	}
	got, err := s.Load()
	if err != nil || got != nil {
		t.Fatalf("session survived Clear: %+v err=%v", got, err)
	}
}

func TestStore_SaveOverwrites(t *testing.T) {
	t.Parallel()
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Save(types.Session{UserID: "u1", HouseholdID: "h1"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(types.Session{UserID: "u1"}); err != nil {
		t.Fatal(err)
	}
	got, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if got.HouseholdID != "" {
		t.Fatalf("stale household id survived overwrite: %+v", got)
	}
}
