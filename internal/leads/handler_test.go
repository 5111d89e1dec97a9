package leads

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func newLeadsRouter(repo Repository) *chi.Mux {
	h := NewHandler(repo, nil)
	r := chi.NewRouter()
	r.Post("/leads/web", h.CreateWebLead)
	r.Get("/leads", h.ListLeads)
	r.Get("/leads/{leadID}", h.GetLead)
	return r
}

func TestHandler_CreateWebLead(t *testing.T) {
	repo := NewInMemoryRepository()
	router := newLeadsRouter(repo)

	rec := httptest.NewRecorder()
	body := `{"name":"Jane Doe","email":"jane@example.com","project_type":"deck construction"}`
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/leads/web", strings.NewReader(body)))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var lead Lead
	if err := json.Unmarshal(rec.Body.Bytes(), &lead); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if lead.ID == "" || lead.Name != "Jane Doe" {
		t.Fatalf("unexpected lead: %+v", lead)
	}
	if lead.Source != "web" {
		t.Fatalf("source should default to web, got %q", lead.Source)
	}

	stored, err := repo.GetByID(context.Background(), lead.ID)
	if err != nil {
		t.Fatalf("lead not persisted: %v", err)
	}
	if stored.Email != "jane@example.com" {
		t.Fatalf("unexpected stored lead: %+v", stored)
	}
}

func TestHandler_CreateWebLeadRejectsInvalid(t *testing.T) {
	router := newLeadsRouter(NewInMemoryRepository())

	tests := []struct {
		name string
		body string
	}{
		{"bad json", `{broken`},
		{"no contact", `{"name":"Jane Doe"}`},
		{"no name", `{"email":"jane@example.com"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/leads/web", strings.NewReader(tt.body)))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestHandler_GetLead(t *testing.T) {
	repo := NewInMemoryRepository()
	lead, err := repo.Create(context.Background(), &CreateLeadRequest{Name: "Jane Doe", Email: "jane@example.com"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	router := newLeadsRouter(repo)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/leads/"+lead.ID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/leads/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestHandler_ListLeads(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()
	for _, req := range []*CreateLeadRequest{
		{Name: "A", Email: "a@example.com", Source: "web"},
		{Name: "B", Email: "b@example.com", Source: "referral"},
	} {
		if _, err := repo.Create(ctx, req); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	router := newLeadsRouter(repo)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/leads?source=web&limit=10", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp ListLeadsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 1 || resp.Leads[0].Name != "A" {
		t.Fatalf("unexpected listing: %+v", resp)
	}
	if resp.Limit != 10 {
		t.Fatalf("limit not echoed: %d", resp.Limit)
	}
}
