package intake

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// PostgresStore persists intake sessions to PostgreSQL. The draft and the
// transcript are stored as JSONB alongside the lifecycle columns, with each
// turn also appended to intake_session_turns for reporting.
type PostgresStore struct {
	db *sql.DB
}

var _ SessionStore = (*PostgresStore)(nil)

func NewPostgresStore(db *sql.DB) *PostgresStore {
	if db == nil {
		return nil
	}
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, session *Session) error {
	draft, transcript, err := marshalSession(session)
	if err != nil {
		return err
	}

	const q = `
		INSERT INTO intake_sessions (id, owner_id, lead_id, status, current_field, draft, transcript, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9)`
	if _, err := s.db.ExecContext(ctx, q,
		session.ID, session.OwnerID, session.LeadID, string(session.Status),
		session.CurrentField, draft, transcript, session.CreatedAt, session.UpdatedAt,
	); err != nil {
		return fmt.Errorf("intake: insert session: %w", err)
	}
	return s.appendTurns(ctx, session, 0)
}

func (s *PostgresStore) GetByID(ctx context.Context, id string) (*Session, error) {
	const q = `
		SELECT id, owner_id, COALESCE(lead_id::text, ''), status, current_field, draft, transcript, created_at, updated_at
		FROM intake_sessions
		WHERE id = $1`
	return s.scanSession(s.db.QueryRowContext(ctx, q, id))
}

func (s *PostgresStore) GetActiveByOwner(ctx context.Context, ownerID string) (*Session, error) {
	const q = `
		SELECT id, owner_id, COALESCE(lead_id::text, ''), status, current_field, draft, transcript, created_at, updated_at
		FROM intake_sessions
		WHERE owner_id = $1 AND status = 'active'
		ORDER BY created_at DESC
		LIMIT 1`
	return s.scanSession(s.db.QueryRowContext(ctx, q, ownerID))
}

func (s *PostgresStore) Update(ctx context.Context, session *Session) error {
	draft, transcript, err := marshalSession(session)
	if err != nil {
		return err
	}

	const countQ = `SELECT COALESCE(jsonb_array_length(transcript), 0) FROM intake_sessions WHERE id = $1`
	var before int
	if err := s.db.QueryRowContext(ctx, countQ, session.ID).Scan(&before); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("intake: read session transcript length: %w", err)
	}

	const q = `
		UPDATE intake_sessions
		SET status = $2, current_field = $3, draft = $4, transcript = $5, updated_at = $6
		WHERE id = $1`
	res, err := s.db.ExecContext(ctx, q,
		session.ID, string(session.Status), session.CurrentField, draft, transcript, session.UpdatedAt)
	if err != nil {
		return fmt.Errorf("intake: update session: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return ErrSessionNotFound
	}
	return s.appendTurns(ctx, session, before)
}

func (s *PostgresStore) Complete(ctx context.Context, id string) error {
	return s.transition(ctx, id, StatusCompleted)
}

func (s *PostgresStore) Abandon(ctx context.Context, id string) error {
	return s.transition(ctx, id, StatusAbandoned)
}

func (s *PostgresStore) transition(ctx context.Context, id string, to Status) error {
	const q = `
		UPDATE intake_sessions
		SET status = $2, updated_at = $3
		WHERE id = $1 AND status = 'active'`
	res, err := s.db.ExecContext(ctx, q, id, string(to), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("intake: transition session: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("intake: transition session: %w", err)
	}
	if rows == 0 {
		// Disambiguate a missing session from a terminal one.
		var status string
		err := s.db.QueryRowContext(ctx, `SELECT status FROM intake_sessions WHERE id = $1`, id).Scan(&status)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrSessionNotFound
		}
		if err != nil {
			return fmt.Errorf("intake: transition session: %w", err)
		}
		return ErrSessionInactive
	}
	return nil
}

// appendTurns writes transcript entries past the given index to the
// append-only turns table.
func (s *PostgresStore) appendTurns(ctx context.Context, session *Session, from int) error {
	for i := from; i < len(session.Transcript); i++ {
		entry := session.Transcript[i]
		extracted, err := json.Marshal(entry.Extracted)
		if err != nil {
			return fmt.Errorf("intake: marshal turn extraction: %w", err)
		}
		const q = `
			INSERT INTO intake_session_turns (session_id, seq, role, content, extracted, attachment_id, created_at)
			VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7)
			ON CONFLICT (session_id, seq) DO NOTHING`
		if _, err := s.db.ExecContext(ctx, q,
			session.ID, i, entry.Role, entry.Content, extracted, entry.AttachmentID, entry.At,
		); err != nil {
			return fmt.Errorf("intake: insert session turn: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) scanSession(row *sql.Row) (*Session, error) {
	var (
		session    Session
		status     string
		draft      []byte
		transcript []byte
	)
	err := row.Scan(&session.ID, &session.OwnerID, &session.LeadID, &status,
		&session.CurrentField, &draft, &transcript, &session.CreatedAt, &session.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("intake: scan session: %w", err)
	}
	session.Status = Status(status)

	if err := json.Unmarshal(draft, &session.Draft); err != nil {
		return nil, fmt.Errorf("intake: decode draft: %w", err)
	}
	if len(transcript) > 0 {
		if err := json.Unmarshal(transcript, &session.Transcript); err != nil {
			return nil, fmt.Errorf("intake: decode transcript: %w", err)
		}
	}
	return &session, nil
}

func marshalSession(session *Session) (draft, transcript []byte, err error) {
	draft, err = json.Marshal(session.Draft)
	if err != nil {
		return nil, nil, fmt.Errorf("intake: encode draft: %w", err)
	}
	transcript, err = json.Marshal(session.Transcript)
	if err != nil {
		return nil, nil, fmt.Errorf("intake: encode transcript: %w", err)
	}
	return draft, transcript, nil
}
