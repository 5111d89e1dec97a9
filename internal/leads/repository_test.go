package leads

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestCreateLeadRequest_Validate(t *testing.T) {
	tests := []struct {
		name string
		req  CreateLeadRequest
		want error
	}{
		{"valid with email", CreateLeadRequest{Name: "Jane Doe", Email: "jane@example.com"}, nil},
		{"valid with phone", CreateLeadRequest{Name: "Jane Doe", Phone: "206-555-0100"}, nil},
		{"blank name", CreateLeadRequest{Name: "   ", Email: "jane@example.com"}, ErrInvalidName},
		{"no contact", CreateLeadRequest{Name: "Jane Doe"}, ErrMissingContact},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.req.Validate(); !errors.Is(err, tt.want) {
				t.Fatalf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLead_Seed(t *testing.T) {
	lead := &Lead{
		Name:        "Jane Doe",
		Email:       "jane@example.com",
		ProjectType: "deck construction",
	}

	seed := lead.Seed()
	if seed["customerName"] != "Jane Doe" || seed["customerEmail"] != "jane@example.com" {
		t.Fatalf("contact not seeded: %v", seed)
	}
	if seed["projectType"] != "deck construction" {
		t.Fatalf("project type not seeded: %v", seed)
	}
	if _, ok := seed["customerPhone"]; ok {
		t.Fatal("empty phone must not be seeded")
	}
}

func TestInMemoryRepository_CreateAndGet(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	lead, err := repo.Create(ctx, &CreateLeadRequest{
		Name:  "Jane Doe",
		Email: "jane@example.com",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if lead.ID == "" {
		t.Fatal("expected generated ID")
	}

	got, err := repo.GetByID(ctx, lead.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != "Jane Doe" {
		t.Fatalf("unexpected lead: %+v", got)
	}

	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, ErrLeadNotFound) {
		t.Fatalf("expected ErrLeadNotFound, got %v", err)
	}
}

func TestInMemoryRepository_CreateRejectsInvalid(t *testing.T) {
	repo := NewInMemoryRepository()

	if _, err := repo.Create(context.Background(), &CreateLeadRequest{Name: "Jane Doe"}); !errors.Is(err, ErrMissingContact) {
		t.Fatalf("expected ErrMissingContact, got %v", err)
	}
}

func TestInMemoryRepository_ListNewestFirst(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		source := "web"
		if i == 1 {
			source = "referral"
		}
		if _, err := repo.Create(ctx, &CreateLeadRequest{
			Name:   fmt.Sprintf("Lead %d", i),
			Email:  fmt.Sprintf("lead%d@example.com", i),
			Source: source,
		}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	all, err := repo.List(ctx, ListFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 leads, got %d", len(all))
	}
	if all[0].Name != "Lead 2" || all[2].Name != "Lead 0" {
		t.Fatalf("wrong order: %s, %s", all[0].Name, all[2].Name)
	}

	web, err := repo.List(ctx, ListFilter{Source: "web"})
	if err != nil {
		t.Fatalf("List filtered: %v", err)
	}
	if len(web) != 2 {
		t.Fatalf("expected 2 web leads, got %d", len(web))
	}

	limited, err := repo.List(ctx, ListFilter{Limit: 1})
	if err != nil {
		t.Fatalf("List limited: %v", err)
	}
	if len(limited) != 1 || limited[0].Name != "Lead 2" {
		t.Fatalf("limit not honored: %+v", limited)
	}
}

func TestInMemoryRepository_AttachSession(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	lead, err := repo.Create(ctx, &CreateLeadRequest{Name: "Jane Doe", Email: "jane@example.com"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := repo.AttachSession(ctx, lead.ID, "session-1"); err != nil {
		t.Fatalf("AttachSession: %v", err)
	}
	got, _ := repo.GetByID(ctx, lead.ID)
	if got.SessionID != "session-1" {
		t.Fatalf("session not attached: %+v", got)
	}

	if err := repo.AttachSession(ctx, "missing", "session-1"); !errors.Is(err, ErrLeadNotFound) {
		t.Fatalf("expected ErrLeadNotFound, got %v", err)
	}
}
