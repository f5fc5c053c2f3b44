package db

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// Session modes recorded in the ledger.
const (
	ModeInteractive = "interactive"
	ModeOneShot     = "oneshot"
	ModeTUI         = "tui"
)

// ErrSessionNotFound is returned when a session id has no ledger row.
var ErrSessionNotFound = errors.New("session not found")

// ChatSession is one ledger row: the usage totals for a single run of the
// agent. Timestamps are RFC 3339 UTC strings as stored.
type ChatSession struct {
	ID           string
	Model        string
	Mode         string
	Turns        int
	InputTokens  int
	OutputTokens int
	CostUSD      float64
	StartedAt    string
	EndedAt      string
}

// CreateSession inserts a new ledger row and returns its id.
func (s *Store) CreateSession(ctx context.Context, model, mode string) (string, error) {
	id, err := newSessionID()
	if err != nil {
		return "", err
	}
	const q = `INSERT INTO chat_sessions(id, model, mode) VALUES(?,?,?)`
	if _, err := s.Writer.ExecContext(ctx, q, id, model, mode); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return id, nil
}

// RecordTurn adds one completed exchange to a session's running totals.
func (s *Store) RecordTurn(ctx context.Context, id string, inputTokens, outputTokens int, costUSD float64) error {
	const q = `
UPDATE chat_sessions
SET turns = turns + 1,
    input_tokens = input_tokens + ?,
    output_tokens = output_tokens + ?,
    cost_usd = cost_usd + ?
WHERE id = ?`
	res, err := s.Writer.ExecContext(ctx, q, inputTokens, outputTokens, costUSD, id)
	if err != nil {
		return fmt.Errorf("record turn: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("record turn: %w", err)
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// EndSession stamps a session's end time. Idempotent: a second call keeps
// the original timestamp.
func (s *Store) EndSession(ctx context.Context, id string) error {
	const q = `
UPDATE chat_sessions
SET ended_at = COALESCE(ended_at, strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
WHERE id = ?`
	res, err := s.Writer.ExecContext(ctx, q, id)
	if err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// GetSession loads one session by id.
func (s *Store) GetSession(ctx context.Context, id string) (*ChatSession, error) {
	const q = `
SELECT id, model, mode, turns, input_tokens, output_tokens, cost_usd,
       started_at, COALESCE(ended_at, '')
FROM chat_sessions WHERE id = ?`
	var cs ChatSession
	err := s.Reader.QueryRowContext(ctx, q, id).Scan(
		&cs.ID, &cs.Model, &cs.Mode, &cs.Turns,
		&cs.InputTokens, &cs.OutputTokens, &cs.CostUSD,
		&cs.StartedAt, &cs.EndedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	return &cs, nil
}

// ListRecentSessions returns up to limit sessions, newest first.
func (s *Store) ListRecentSessions(ctx context.Context, limit int) ([]ChatSession, error) {
	const q = `
SELECT id, model, mode, turns, input_tokens, output_tokens, cost_usd,
       started_at, COALESCE(ended_at, '')
FROM chat_sessions
ORDER BY started_at DESC, id DESC
LIMIT ?`
	rows, err := s.Reader.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []ChatSession
	for rows.Next() {
		var cs ChatSession
		if err := rows.Scan(
			&cs.ID, &cs.Model, &cs.Mode, &cs.Turns,
			&cs.InputTokens, &cs.OutputTokens, &cs.CostUSD,
			&cs.StartedAt, &cs.EndedAt,
		); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, cs)
	}
	return out, rows.Err()
}

// UsageSummary holds ledger-wide aggregates.
type UsageSummary struct {
	Sessions     int
	Turns        int
	InputTokens  int
	OutputTokens int
	CostUSD      float64
}

// Summarize aggregates usage across every recorded session.
func (s *Store) Summarize(ctx context.Context) (UsageSummary, error) {
	const q = `
SELECT COUNT(*), COALESCE(SUM(turns),0), COALESCE(SUM(input_tokens),0),
       COALESCE(SUM(output_tokens),0), COALESCE(SUM(cost_usd),0)
FROM chat_sessions`
	var us UsageSummary
	err := s.Reader.QueryRowContext(ctx, q).Scan(
		&us.Sessions, &us.Turns, &us.InputTokens, &us.OutputTokens, &us.CostUSD,
	)
	if err != nil {
		return UsageSummary{}, fmt.Errorf("summarize sessions: %w", err)
	}
	return us, nil
}

func newSessionID() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	return "chat-" + strings.ToLower(hex.EncodeToString(buf)), nil
}

// ShortID returns the first hex chunk of a session id for display.
func ShortID(id string) string {
	// chat-2dad8b6b5f96e0df → 2dad8b6b
	if strings.HasPrefix(id, "chat-") {
		hex := id[5:]
		if len(hex) >= 8 {
			return hex[:8]
		}
		return hex
	}
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
