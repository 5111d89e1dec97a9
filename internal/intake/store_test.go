package intake

import (
	"context"
	"errors"
	"testing"
	"time"
)

func seedSession(id, owner string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:           id,
		OwnerID:      owner,
		Status:       StatusActive,
		CurrentField: FieldCustomerName,
		Draft:        NewDraft(nil),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestMemoryStore_CreateAndGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Create(ctx, seedSession("s1", "owner-1")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := store.GetByID(ctx, "s1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.OwnerID != "owner-1" || got.Status != StatusActive {
		t.Fatalf("unexpected session: %+v", got)
	}

	if _, err := store.GetByID(ctx, "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestMemoryStore_GetActiveByOwner(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if _, err := store.GetActiveByOwner(ctx, "owner-1"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound for empty store, got %v", err)
	}

	if err := store.Create(ctx, seedSession("s1", "owner-1")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := store.GetActiveByOwner(ctx, "owner-1")
	if err != nil {
		t.Fatalf("GetActiveByOwner: %v", err)
	}
	if got.ID != "s1" {
		t.Fatalf("expected s1, got %s", got.ID)
	}

	// Terminal sessions no longer count as the owner's active session.
	if err := store.Abandon(ctx, "s1"); err != nil {
		t.Fatalf("Abandon: %v", err)
	}
	if _, err := store.GetActiveByOwner(ctx, "owner-1"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after abandon, got %v", err)
	}
}

func TestMemoryStore_Transitions(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Create(ctx, seedSession("s1", "owner-1")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.Complete(ctx, "s1"); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	got, _ := store.GetByID(ctx, "s1")
	if got.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s", got.Status)
	}

	// Terminal states stick.
	if err := store.Abandon(ctx, "s1"); !errors.Is(err, ErrSessionInactive) {
		t.Fatalf("expected ErrSessionInactive, got %v", err)
	}
	if err := store.Complete(ctx, "s1"); !errors.Is(err, ErrSessionInactive) {
		t.Fatalf("expected ErrSessionInactive, got %v", err)
	}
	if err := store.Complete(ctx, "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestMemoryStore_UpdateUnknownSession(t *testing.T) {
	store := NewMemoryStore()
	if err := store.Update(context.Background(), seedSession("ghost", "owner-1")); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	session := seedSession("s1", "owner-1")
	session.Draft.Set(FieldCustomerName, "Jane Doe")
	if err := store.Create(ctx, session); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Mutating the original after Create must not leak into the store.
	session.Draft.Set(FieldCustomerName, "Mallory")
	session.Transcript = append(session.Transcript, TranscriptEntry{Role: RoleUser, Content: "x"})

	got, _ := store.GetByID(ctx, "s1")
	if got.Draft.Value(FieldCustomerName) != "Jane Doe" {
		t.Fatalf("stored draft aliased caller memory: %q", got.Draft.Value(FieldCustomerName))
	}
	if len(got.Transcript) != 0 {
		t.Fatalf("stored transcript aliased caller memory: %d entries", len(got.Transcript))
	}

	// Mutating a fetched copy must not write back either.
	got.Draft.Set(FieldCustomerEmail, "evil@example.com")
	again, _ := store.GetByID(ctx, "s1")
	if again.Draft.Has(FieldCustomerEmail) {
		t.Fatal("fetched session aliased store memory")
	}
}
