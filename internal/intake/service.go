package intake

import (
	"context"
	"time"
)

// StartRequest opens (or resumes) a collection session for an owner.
type StartRequest struct {
	OwnerID string            `json:"ownerId"`
	LeadID  string            `json:"leadId,omitempty"`
	Seed    map[string]string `json:"seed,omitempty"`
}

// TurnRequest carries one customer turn into a session.
type TurnRequest struct {
	SessionID    string `json:"sessionId"`
	Input        string `json:"input"`
	AttachmentID string `json:"attachmentId,omitempty"`
}

// Response is what every session operation hands back: the assistant's next
// message plus enough state for the caller to render progress.
type Response struct {
	SessionID    string            `json:"sessionId"`
	Message      string            `json:"message"`
	CurrentField string            `json:"currentField,omitempty"`
	Status       Status            `json:"status"`
	Progress     Progress          `json:"progress"`
	Extracted    map[string]string `json:"extracted,omitempty"`
	Timestamp    time.Time         `json:"timestamp"`
}

// Service is the session-facing surface of the collection engine.
type Service interface {
	// StartSession opens a session for the owner, or resumes the owner's
	// existing active session instead of creating a second one.
	StartSession(ctx context.Context, req StartRequest) (Response, error)

	// ProcessTurn runs one customer turn through the engine. Turns on the
	// same session are processed one at a time.
	ProcessTurn(ctx context.Context, req TurnRequest) (Response, error)

	// GetSession returns the session's current state.
	GetSession(ctx context.Context, sessionID string) (*Session, error)

	// AbandonSession marks the session abandoned. Abandoning a completed or
	// already abandoned session returns ErrSessionInactive.
	AbandonSession(ctx context.Context, sessionID string) error
}
