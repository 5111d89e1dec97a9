package intake

import "errors"

var (
	// ErrSessionNotFound is returned when no session exists for the given id.
	ErrSessionNotFound = errors.New("intake: session not found")

	// ErrOwnerRequired is returned when a start request carries no owner.
	ErrOwnerRequired = errors.New("intake: owner id is required")

	// ErrSessionInactive is returned when a turn targets a completed or
	// abandoned session.
	ErrSessionInactive = errors.New("intake: session is not active")

	// ErrSessionExpired is returned when a session sat idle past the
	// staleness threshold; the session is abandoned before the error is
	// surfaced and the draft is left untouched.
	ErrSessionExpired = errors.New("intake: session expired")

	// ErrPipelineUnavailable indicates no text-completion client is
	// configured; the engine recovers by running heuristics only.
	ErrPipelineUnavailable = errors.New("intake: completion pipeline unavailable")

	// errMalformedPayload marks completion output that failed the strict
	// schema decode. Always recovered via the fallback strategy chain.
	errMalformedPayload = errors.New("intake: malformed completion payload")

	// errNoExtraction signals a strategy found nothing; the next strategy
	// in the chain runs.
	errNoExtraction = errors.New("intake: no extraction produced")
)
