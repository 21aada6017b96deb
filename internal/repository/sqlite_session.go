package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/alexanderramin/ideaforge/internal/db"
	"github.com/alexanderramin/ideaforge/internal/domain"
)

const activeSessionKey = "active_session_id"

const sessionColumns = `id, name, name_is_auto, mode, turn_count, facts_json,
	summary_finalized, show_summary, profile_json, founder_background,
	clarity_score, favorite, archived, origin, created_at, updated_at`

// SQLiteSessionRepo implements SessionRepo using a SQLite database.
type SQLiteSessionRepo struct {
	db db.DBTX
}

// NewSQLiteSessionRepo creates a new SQLiteSessionRepo.
func NewSQLiteSessionRepo(conn db.DBTX) *SQLiteSessionRepo {
	return &SQLiteSessionRepo{db: conn}
}

// Upsert writes the session row and replaces its transcript.
func (r *SQLiteSessionRepo) Upsert(ctx context.Context, s *domain.SessionState) error {
	facts := s.Facts
	if facts == nil {
		facts = []string{}
	}
	factsJSON, err := marshalJSONColumn(facts)
	if err != nil {
		return err
	}
	var profileJSON interface{}
	if s.Profile != nil {
		if profileJSON, err = marshalJSONColumn(s.Profile); err != nil {
			return err
		}
	}

	query := `INSERT INTO chat_sessions (` + sessionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			name_is_auto = excluded.name_is_auto,
			mode = excluded.mode,
			turn_count = excluded.turn_count,
			facts_json = excluded.facts_json,
			summary_finalized = excluded.summary_finalized,
			show_summary = excluded.show_summary,
			profile_json = excluded.profile_json,
			founder_background = excluded.founder_background,
			clarity_score = excluded.clarity_score,
			favorite = excluded.favorite,
			archived = excluded.archived,
			origin = excluded.origin,
			updated_at = excluded.updated_at`
	_, err = r.db.ExecContext(ctx, query,
		s.ID,
		s.Name,
		boolToInt(s.NameIsAuto),
		string(s.Mode),
		s.TurnCount,
		factsJSON,
		boolToInt(s.SummaryFinalized),
		boolToInt(s.ShowSummary),
		profileJSON,
		nullableString(s.FounderBackground),
		s.ClarityScore,
		boolToInt(s.Favorite),
		boolToInt(s.Archived),
		string(s.Origin),
		s.CreatedAt.UTC().Format(timeLayout),
		s.UpdatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("upserting chat session: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM chat_messages WHERE session_id = ?`, s.ID); err != nil {
		return fmt.Errorf("clearing chat messages: %w", err)
	}
	for i, m := range s.Messages {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO chat_messages (id, session_id, seq, sender, kind, text, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			m.ID, s.ID, i, string(m.Sender), string(m.Kind), m.Text, m.CreatedAt.UTC().Format(timeLayout),
		)
		if err != nil {
			return fmt.Errorf("inserting chat message %d: %w", i, err)
		}
	}
	return nil
}

func (r *SQLiteSessionRepo) GetByID(ctx context.Context, id string) (*domain.SessionState, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM chat_sessions WHERE id = ?`, id)
	s, err := r.scanSession(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("chat session %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	if s.Messages, err = r.listMessages(ctx, s.ID); err != nil {
		return nil, err
	}
	return s, nil
}

// List returns every session with its transcript, most recently updated first.
func (r *SQLiteSessionRepo) List(ctx context.Context) ([]*domain.SessionState, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+sessionColumns+` FROM chat_sessions ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing chat sessions: %w", err)
	}
	var sessions []*domain.SessionState
	for rows.Next() {
		s, err := r.scanSession(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterating chat sessions: %w", err)
	}
	rows.Close()

	// Messages are loaded after the session cursor is closed; an in-memory
	// database has a single connection.
	for _, s := range sessions {
		if s.Messages, err = r.listMessages(ctx, s.ID); err != nil {
			return nil, err
		}
	}
	return sessions, nil
}

// Delete removes a session; its messages cascade. The active pointer is
// cleared when it referenced the deleted session.
func (r *SQLiteSessionRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM chat_sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting chat session: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM app_state WHERE key = ? AND value = ?`, activeSessionKey, id); err != nil {
		return fmt.Errorf("clearing active session pointer: %w", err)
	}
	return nil
}

func (r *SQLiteSessionRepo) GetActiveID(ctx context.Context) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM app_state WHERE key = ?`, activeSessionKey).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("active session: %w", ErrNotFound)
		}
		return "", fmt.Errorf("reading active session: %w", err)
	}
	return id, nil
}

// SetActiveID points the active session at id. The session must exist.
func (r *SQLiteSessionRepo) SetActiveID(ctx context.Context, id string) error {
	var exists int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chat_sessions WHERE id = ?`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking chat session: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("chat session %s: %w", id, ErrNotFound)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO app_state (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		activeSessionKey, id)
	if err != nil {
		return fmt.Errorf("setting active session: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanSession scans one chat_sessions row. sql.ErrNoRows is returned as is.
func (r *SQLiteSessionRepo) scanSession(row rowScanner) (*domain.SessionState, error) {
	var s domain.SessionState
	var mode, origin, factsJSON, createdAt, updatedAt string
	var nameIsAuto, finalized, showSummary, favorite, archived int
	var profileJSON, founder sql.NullString

	err := row.Scan(
		&s.ID, &s.Name, &nameIsAuto, &mode, &s.TurnCount, &factsJSON,
		&finalized, &showSummary, &profileJSON, &founder,
		&s.ClarityScore, &favorite, &archived, &origin, &createdAt, &updatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scanning chat session: %w", err)
	}

	s.NameIsAuto = intToBool(nameIsAuto)
	s.Mode = domain.Mode(mode)
	s.Origin = domain.Origin(origin)
	s.SummaryFinalized = intToBool(finalized)
	s.ShowSummary = intToBool(showSummary)
	s.Favorite = intToBool(favorite)
	s.Archived = intToBool(archived)
	if founder.Valid {
		bg := founder.String
		s.FounderBackground = &bg
	}
	if err := json.Unmarshal([]byte(factsJSON), &s.Facts); err != nil {
		return nil, fmt.Errorf("decoding facts of session %s: %w", s.ID, err)
	}
	if len(s.Facts) == 0 {
		s.Facts = nil
	}
	if profileJSON.Valid {
		var p domain.VentureProfile
		if err := json.Unmarshal([]byte(profileJSON.String), &p); err != nil {
			return nil, fmt.Errorf("decoding profile of session %s: %w", s.ID, err)
		}
		s.Profile = &p
	}
	if s.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if s.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SQLiteSessionRepo) listMessages(ctx context.Context, sessionID string) ([]domain.Message, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, sender, kind, text, created_at FROM chat_messages WHERE session_id = ? ORDER BY seq`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("listing chat messages: %w", err)
	}
	defer rows.Close()

	var msgs []domain.Message
	for rows.Next() {
		var m domain.Message
		var sender, kind, createdAt string
		if err := rows.Scan(&m.ID, &sender, &kind, &m.Text, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning chat message: %w", err)
		}
		m.Sender = domain.Sender(sender)
		m.Kind = domain.MessageKind(kind)
		if m.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chat messages: %w", err)
	}
	return msgs, nil
}
