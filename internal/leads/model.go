package leads

import (
	"strings"
	"time"
)

// Lead represents a quote request submitted through the web form. A lead
// becomes the owner of an intake session once the conversation starts.
type Lead struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	ProjectType string    `json:"project_type"`
	Message     string    `json:"message"`
	Source      string    `json:"source"`
	SessionID   string    `json:"session_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateLeadRequest represents the request body for creating a lead
type CreateLeadRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	ProjectType string `json:"project_type"`
	Message     string `json:"message"`
	Source      string `json:"source"`
}

// Validate validates the create lead request
func (r *CreateLeadRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrInvalidName
	}
	if r.Email == "" && r.Phone == "" {
		return ErrMissingContact
	}
	return nil
}

// Seed returns the intake seed values a lead already supplies, so the
// conversation never re-asks what the web form collected.
func (l *Lead) Seed() map[string]string {
	seed := make(map[string]string, 4)
	if l.Name != "" {
		seed["customerName"] = l.Name
	}
	if l.Email != "" {
		seed["customerEmail"] = l.Email
	}
	if l.Phone != "" {
		seed["customerPhone"] = l.Phone
	}
	if l.ProjectType != "" {
		seed["projectType"] = l.ProjectType
	}
	return seed
}
