package intake

import (
	"time"
)

// Status tracks where a session is in its lifecycle. Completed and abandoned
// are terminal.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusAbandoned Status = "abandoned"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// FieldLineItems is the reserved pseudo-field marking the iterative
// line-item collection phase.
const FieldLineItems = "lineItems"

// sessionIdleTimeout is how long a session may sit untouched before the next
// turn auto-abandons it.
const sessionIdleTimeout = 24 * time.Hour

// ItemCategory classifies a quote line item.
type ItemCategory string

const (
	CategoryLabor         ItemCategory = "labor"
	CategoryMaterials     ItemCategory = "materials"
	CategoryEquipment     ItemCategory = "equipment"
	CategorySubcontractor ItemCategory = "subcontractor"
	CategoryOther         ItemCategory = "other"
)

// LineItem is one itemized entry collected during the line-item phase.
type LineItem struct {
	Description string       `json:"description"`
	Category    ItemCategory `json:"category"`
	Quantity    float64      `json:"quantity"`
	Unit        string       `json:"unit"`
	UnitPrice   float64      `json:"unit_price"`
}

// TranscriptEntry is one message in a session's append-only transcript.
type TranscriptEntry struct {
	Role         string            `json:"role"`
	Content      string            `json:"content"`
	At           time.Time         `json:"at"`
	Extracted    map[string]string `json:"extracted,omitempty"`
	AttachmentID string            `json:"attachment_id,omitempty"`
}

// Draft is the partially filled quote record assembled from conversation.
// Scalar fields live in Fields; collected line items in Items. Keys are added
// or overwritten but never deleted; overwriting an existing key is reserved
// for turns classified as corrections.
type Draft struct {
	Fields map[string]string `json:"fields"`
	Items  []LineItem        `json:"line_items,omitempty"`
}

// NewDraft returns an empty draft, optionally seeded with initial values.
func NewDraft(seed map[string]string) Draft {
	d := Draft{Fields: make(map[string]string, len(seed))}
	for k, v := range seed {
		if v != "" {
			d.Fields[k] = v
		}
	}
	return d
}

// Value returns the stored value for a scalar field, or "" when unset.
func (d Draft) Value(field string) string {
	return d.Fields[field]
}

// Has reports whether a field holds a truthy value. The line-item
// pseudo-field is truthy once at least one item has been collected, or once
// the customer has explicitly closed the phase with nothing to add.
func (d Draft) Has(field string) bool {
	if field == FieldLineItems && len(d.Items) > 0 {
		return true
	}
	return d.Fields[field] != ""
}

// Set stores a scalar field value. Empty values are ignored so a botched
// extraction can never blank out known data.
func (d *Draft) Set(field, value string) {
	if value == "" {
		return
	}
	if d.Fields == nil {
		d.Fields = make(map[string]string)
	}
	d.Fields[field] = value
}

// AppendItem adds a collected line item.
func (d *Draft) AppendItem(item LineItem) {
	d.Items = append(d.Items, item)
}

// Clone returns a deep copy so a turn can work on a snapshot.
func (d Draft) Clone() Draft {
	out := Draft{Fields: make(map[string]string, len(d.Fields))}
	for k, v := range d.Fields {
		out.Fields[k] = v
	}
	if len(d.Items) > 0 {
		out.Items = append([]LineItem(nil), d.Items...)
	}
	return out
}

// Session is one intake conversation and the draft it is filling in.
type Session struct {
	ID           string            `json:"id"`
	OwnerID      string            `json:"owner_id"`
	LeadID       string            `json:"lead_id,omitempty"`
	Status       Status            `json:"status"`
	CurrentField string            `json:"current_field,omitempty"`
	Draft        Draft             `json:"draft"`
	Transcript   []TranscriptEntry `json:"transcript"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// LastAssistantMessage returns the content of the most recent assistant turn,
// or "" when none exists yet.
func (s *Session) LastAssistantMessage() string {
	for i := len(s.Transcript) - 1; i >= 0; i-- {
		if s.Transcript[i].Role == RoleAssistant {
			return s.Transcript[i].Content
		}
	}
	return ""
}
