package intake

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Kolmo-Construction/Kolmo-Design-Portal-sub001/internal/observability/metrics"
	"github.com/Kolmo-Construction/Kolmo-Design-Portal-sub001/pkg/logging"
)

const greeting = "Hi! I'll help you put together a quote. A few quick questions and we'll have everything we need."

// Engine drives the collect loop: each customer turn is classified,
// mined for field values, merged into the session draft, and answered with
// exactly one assistant message. Turns on the same session run one at a time.
type Engine struct {
	store       SessionStore
	catalog     *Catalog
	pipeline    *Pipeline
	annotations AnnotationStore
	metrics     *metrics.IntakeMetrics
	logger      *logging.Logger
	idleTimeout time.Duration

	now   func() time.Time
	newID func() string
	locks sync.Map
}

var _ Service = (*Engine)(nil)

type EngineOption func(*Engine)

func WithCatalog(c *Catalog) EngineOption {
	return func(e *Engine) { e.catalog = c }
}

func WithAnnotations(s AnnotationStore) EngineOption {
	return func(e *Engine) { e.annotations = s }
}

func WithEngineMetrics(m *metrics.IntakeMetrics) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

// WithClock overrides the engine's time source. Tests use this to simulate
// idle sessions.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

func WithIDGenerator(gen func() string) EngineOption {
	return func(e *Engine) { e.newID = gen }
}

// WithIdleTimeout overrides how long a session may sit untouched before the
// next turn auto-abandons it.
func WithIdleTimeout(d time.Duration) EngineOption {
	return func(e *Engine) {
		if d > 0 {
			e.idleTimeout = d
		}
	}
}

func NewEngine(store SessionStore, pipeline *Pipeline, logger *logging.Logger, opts ...EngineOption) *Engine {
	if logger == nil {
		logger = logging.Default()
	}
	e := &Engine{
		store:       store,
		catalog:     DefaultCatalog(),
		pipeline:    pipeline,
		logger:      logger.Component("engine"),
		idleTimeout: sessionIdleTimeout,
		now:         func() time.Time { return time.Now().UTC() },
		newID:       func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// StartSession opens a session for the owner. A second start for the same
// owner resumes the existing active session instead of creating another.
func (e *Engine) StartSession(ctx context.Context, req StartRequest) (Response, error) {
	if strings.TrimSpace(req.OwnerID) == "" {
		return Response{}, ErrOwnerRequired
	}

	existing, err := e.store.GetActiveByOwner(ctx, req.OwnerID)
	switch {
	case err == nil:
		e.metrics.ObserveSession("resumed")
		message := existing.LastAssistantMessage()
		if message == "" {
			message = e.catalog.PromptFor(existing.CurrentField)
		}
		return e.respond(existing, message, nil), nil
	case !errors.Is(err, ErrSessionNotFound):
		// A store failure is not "no active session". Creating here could
		// leave the owner with two active sessions.
		return Response{}, fmt.Errorf("intake: lookup active session: %w", err)
	}

	now := e.now()
	session := &Session{
		ID:        e.newID(),
		OwnerID:   req.OwnerID,
		LeadID:    req.LeadID,
		Status:    StatusActive,
		Draft:     NewDraft(req.Seed),
		CreatedAt: now,
		UpdatedAt: now,
	}

	next := e.catalog.NextMissingField(session.Draft)
	var message string
	if next == "" {
		session.Status = StatusCompleted
		message = e.completionMessage(session.Draft)
	} else {
		session.CurrentField = next
		summary := e.pipeline.Summarize(session.Draft, e.catalog, nil)
		message = greeting + " " + e.pipeline.NextQuestion(ctx, summary, next, e.catalog)
	}
	session.Transcript = append(session.Transcript, TranscriptEntry{
		Role: RoleAssistant, Content: message, At: now,
	})

	if err := e.store.Create(ctx, session); err != nil {
		return Response{}, fmt.Errorf("intake: create session: %w", err)
	}
	e.metrics.ObserveSession("started")
	e.logger.Info("session started", "session_id", session.ID, "owner_id", req.OwnerID, "first_field", next)
	return e.respond(session, message, nil), nil
}

// ProcessTurn runs one customer turn end to end. Exactly one user entry and
// one assistant entry are appended per processed turn; a turn that fails
// before the transcript write mutates nothing.
func (e *Engine) ProcessTurn(ctx context.Context, req TurnRequest) (Response, error) {
	unlock := e.lock(req.SessionID)
	defer unlock()

	session, err := e.store.GetByID(ctx, req.SessionID)
	if err != nil {
		return Response{}, err
	}
	if session.Status != StatusActive {
		return Response{}, ErrSessionInactive
	}

	now := e.now()
	if now.Sub(session.UpdatedAt) > e.idleTimeout {
		if err := e.store.Abandon(ctx, req.SessionID); err != nil {
			return Response{}, fmt.Errorf("intake: abandon expired session: %w", err)
		}
		e.metrics.ObserveSession("expired")
		e.logger.Info("session expired", "session_id", session.ID, "idle", now.Sub(session.UpdatedAt).String())
		return Response{}, ErrSessionExpired
	}

	input := strings.TrimSpace(req.Input)
	inItemPhase := session.CurrentField == FieldLineItems
	lastQuestion := session.LastAssistantMessage()
	cls := e.pipeline.Classify(ctx, input, lastQuestion)

	hints, annotated := e.annotationContext(ctx, req.AttachmentID)

	var (
		message   string
		accepted  map[string]string
		outcome   = "no_extraction"
		completed bool
	)

	switch {
	case cls.Repeat:
		message = lastQuestion
		if message == "" {
			message = e.catalog.PromptFor(session.CurrentField)
		}
		outcome = "repeat"

	case cls.Meta:
		message = e.metaAnswer(session.Draft) + " " + e.catalog.PromptFor(session.CurrentField)
		outcome = "meta"

	case inItemPhase:
		message, accepted, outcome = e.lineItemTurn(session, cls, input)

	case cls.Intent == IntentIgnore:
		message = lastQuestion
		if message == "" {
			message = e.catalog.PromptFor(session.CurrentField)
		}

	case cls.Intent == IntentAsk:
		message = "Good question — our estimator will go over that with you once the quote is together. " +
			e.catalog.PromptFor(session.CurrentField)
		outcome = "deferred"

	default:
		extracted, strategy := e.pipeline.Extract(ctx, cls, input, session.Draft, session.CurrentField, lastQuestion)
		for name, value := range annotated {
			if _, dup := extracted[name]; !dup {
				if extracted == nil {
					extracted = make(map[string]string)
				}
				extracted[name] = value
			}
		}

		var feedback string
		accepted, feedback = e.acceptFields(session, cls, extracted)
		if len(accepted) > 0 {
			outcome = "extracted"
			e.logger.Info("fields accepted", "session_id", session.ID, "strategy", strategy, "fields", fieldNames(accepted))
		}

		switch {
		case feedback != "":
			message = feedback + " " + e.catalog.PromptFor(session.CurrentField)
			outcome = "rejected"
		case len(accepted) == 0:
			message = "Sorry, I didn't quite catch that. " + e.catalog.PromptFor(session.CurrentField)
		}
	}

	// Advance only when this turn produced no higher-precedence reply. The
	// line-item phase is sticky: only the done signal leaves it.
	next := e.catalog.NextMissingField(session.Draft)
	if inItemPhase && outcome != "items_done" {
		next = FieldLineItems
	}
	if message == "" {
		switch {
		case next == "":
			completed = true
			message = e.completionMessage(session.Draft)
		case next == FieldLineItems && !inItemPhase:
			message = e.ack(accepted) + e.catalog.PromptFor(FieldLineItems)
		default:
			summary := e.pipeline.Summarize(session.Draft, e.catalog, hints)
			message = e.ack(accepted) + e.pipeline.NextQuestion(ctx, summary, next, e.catalog)
		}
	}
	session.CurrentField = next

	session.Transcript = append(session.Transcript,
		TranscriptEntry{Role: RoleUser, Content: input, At: now, Extracted: accepted, AttachmentID: req.AttachmentID},
		TranscriptEntry{Role: RoleAssistant, Content: message, At: now},
	)
	session.UpdatedAt = now
	if completed {
		session.Status = StatusCompleted
	}

	if err := e.store.Update(ctx, session); err != nil {
		return Response{}, fmt.Errorf("intake: update session: %w", err)
	}
	if completed {
		e.metrics.ObserveSession("completed")
		e.logger.Info("session completed", "session_id", session.ID, "turns", len(session.Transcript)/2)
	}
	e.metrics.ObserveTurn(string(cls.Intent), outcome)

	return e.respond(session, message, accepted), nil
}

func (e *Engine) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	return e.store.GetByID(ctx, sessionID)
}

func (e *Engine) AbandonSession(ctx context.Context, sessionID string) error {
	unlock := e.lock(sessionID)
	defer unlock()
	if err := e.store.Abandon(ctx, sessionID); err != nil {
		return err
	}
	e.metrics.ObserveSession("abandoned")
	return nil
}

func (e *Engine) lock(sessionID string) func() {
	v, _ := e.locks.LoadOrStore(sessionID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// acceptFields validates extracted values and merges the survivors into the
// draft. Known fields are only overwritten on an explicit correction. The
// returned feedback is non-empty when the currently asked field failed
// validation.
func (e *Engine) acceptFields(session *Session, cls Classification, extracted map[string]string) (map[string]string, string) {
	if len(extracted) == 0 {
		return nil, ""
	}
	accepted := make(map[string]string)
	var feedback string
	for name, value := range extracted {
		field, known := e.catalog.Field(name)
		if !known || name == FieldLineItems {
			continue
		}
		if field.Validate != nil && !field.Validate(value) {
			if name == session.CurrentField {
				feedback = validationFeedback(name, value)
			}
			continue
		}
		if session.Draft.Has(name) && cls.Intent != IntentModify {
			continue
		}
		session.Draft.Set(name, value)
		accepted[name] = value
	}
	if len(accepted) == 0 {
		return nil, feedback
	}
	return accepted, feedback
}

// lineItemTurn handles one turn inside the line-item phase. Chatter,
// confirmations, and unparseable turns are discarded without leaving the
// phase; only the done signal exits it.
func (e *Engine) lineItemTurn(session *Session, cls Classification, input string) (message string, accepted map[string]string, outcome string) {
	if isLineItemDone(input) {
		session.Draft.Set(FieldLineItems, "done")
		return "", map[string]string{FieldLineItems: "done"}, "items_done"
	}
	if cls.Intent == IntentIgnore || cls.Confirmation {
		return "Anything else for the list? Say \"done\" when it's complete.", nil, "item_discarded"
	}
	item, ok := parseLineItem(input)
	if !ok {
		return "I couldn't read that as a line item. Try something like \"200 sq ft composite decking at $12\" — or say \"done\" if the list is complete.", nil, "item_discarded"
	}
	session.Draft.AppendItem(item)
	return fmt.Sprintf("Got it — %s (%g %s, %s) added. Anything else? Say \"done\" when the list is complete.",
		item.Description, item.Quantity, item.Unit, item.Category), nil, "item_added"
}

func (e *Engine) annotationContext(ctx context.Context, attachmentID string) ([]string, map[string]string) {
	if attachmentID == "" || e.annotations == nil {
		return nil, nil
	}
	ann, err := e.annotations.Get(ctx, attachmentID)
	if err != nil {
		e.logger.Warn("annotation lookup failed", "attachment_id", attachmentID, "error", err)
		return nil, nil
	}
	if ann == nil {
		return nil, nil
	}
	var hints []string
	if ann.Caption != "" {
		hints = append(hints, ann.Caption)
	}
	hints = append(hints, ann.DetectedElements...)
	return hints, ann.ExtractedInfo
}

func (e *Engine) metaAnswer(d Draft) string {
	missing := e.catalog.MissingFields(d)
	if len(missing) == 0 {
		return "We actually have everything we need."
	}
	labels := make([]string, len(missing))
	for i, name := range missing {
		labels[i] = fieldLabel(name)
	}
	return fmt.Sprintf("Still to go: %s.", strings.Join(labels, ", "))
}

func (e *Engine) completionMessage(d Draft) string {
	var parts []string
	if name := d.Value(FieldCustomerName); name != "" {
		parts = append(parts, "Thanks, "+firstWord(name)+"!")
	} else {
		parts = append(parts, "Thanks!")
	}
	parts = append(parts, "That's everything we need. Our estimator will put your quote together and send it over shortly.")
	return strings.Join(parts, " ")
}

func (e *Engine) ack(accepted map[string]string) string {
	if len(accepted) == 0 {
		return ""
	}
	names := fieldNames(accepted)
	labels := make([]string, len(names))
	for i, name := range names {
		labels[i] = fieldLabel(name)
	}
	return fmt.Sprintf("Got it, noted %s. ", strings.Join(labels, " and "))
}

func (e *Engine) respond(session *Session, message string, accepted map[string]string) Response {
	return Response{
		SessionID:    session.ID,
		Message:      message,
		CurrentField: session.CurrentField,
		Status:       session.Status,
		Progress:     e.catalog.Progress(session.Draft),
		Extracted:    accepted,
		Timestamp:    session.UpdatedAt,
	}
}

func validationFeedback(field, value string) string {
	switch field {
	case FieldCustomerEmail:
		return fmt.Sprintf("Hmm, %q doesn't look like a valid email address.", value)
	case FieldCustomerPhone:
		return fmt.Sprintf("Hmm, %q doesn't look like a phone number I can use.", value)
	default:
		return fmt.Sprintf("That doesn't look right for %s.", fieldLabel(field))
	}
}

var fieldLabels = map[string]string{
	FieldCustomerName:     "your name",
	FieldCustomerEmail:    "your email",
	FieldCustomerPhone:    "your phone number",
	FieldProjectType:      "the project type",
	FieldLocation:         "the project location",
	FieldScopeDescription: "the project scope",
	FieldBudget:           "your budget",
	FieldTimeline:         "your timeline",
	FieldLineItems:        "the itemized work list",
}

func fieldLabel(name string) string {
	if label, ok := fieldLabels[name]; ok {
		return label
	}
	return name
}

func fieldNames(m map[string]string) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func firstWord(s string) string {
	if i := strings.IndexByte(s, ' '); i > 0 {
		return s[:i]
	}
	return s
}
