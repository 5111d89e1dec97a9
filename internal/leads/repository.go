package leads

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for lead storage
type Repository interface {
	Create(ctx context.Context, req *CreateLeadRequest) (*Lead, error)
	GetByID(ctx context.Context, id string) (*Lead, error)
	List(ctx context.Context, filter ListFilter) ([]*Lead, error)
	AttachSession(ctx context.Context, id, sessionID string) error
}

// ListFilter narrows a lead listing.
type ListFilter struct {
	Source string
	Limit  int
	Offset int
}

// InMemoryRepository is an in-memory Repository used in development and
// tests.
type InMemoryRepository struct {
	mu    sync.RWMutex
	order []string
	leads map[string]*Lead
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		leads: make(map[string]*Lead),
	}
}

// Create creates a new lead in memory
func (r *InMemoryRepository) Create(ctx context.Context, req *CreateLeadRequest) (*Lead, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	lead := &Lead{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		ProjectType: req.ProjectType,
		Message:     req.Message,
		Source:      req.Source,
		CreatedAt:   time.Now().UTC(),
	}

	r.mu.Lock()
	r.leads[lead.ID] = lead
	r.order = append(r.order, lead.ID)
	r.mu.Unlock()

	return lead, nil
}

// GetByID retrieves a lead by ID
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lead, ok := r.leads[id]
	if !ok {
		return nil, ErrLeadNotFound
	}

	out := *lead
	return &out, nil
}

// List returns leads newest first, honoring the filter.
func (r *InMemoryRepository) List(ctx context.Context, filter ListFilter) ([]*Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if filter.Limit <= 0 {
		filter.Limit = 50
	}

	var out []*Lead
	skipped := 0
	for i := len(r.order) - 1; i >= 0 && len(out) < filter.Limit; i-- {
		lead := r.leads[r.order[i]]
		if filter.Source != "" && lead.Source != filter.Source {
			continue
		}
		if skipped < filter.Offset {
			skipped++
			continue
		}
		copied := *lead
		out = append(out, &copied)
	}
	return out, nil
}

// AttachSession links an intake session to the lead.
func (r *InMemoryRepository) AttachSession(ctx context.Context, id, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	lead, ok := r.leads[id]
	if !ok {
		return ErrLeadNotFound
	}
	lead.SessionID = sessionID
	return nil
}
