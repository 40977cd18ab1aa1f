package chat

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS messages (
	id TEXT PRIMARY KEY,
	session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	role TEXT NOT NULL,
	content TEXT NOT NULL,
	timestamp TIMESTAMP NOT NULL,
	sources TEXT
);
CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id);
`

// SQLiteStore persists chat sessions so history survives restarts.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open chat database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize chat schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveSession(session *Session) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query, args, err := sq.Insert("sessions").
		Columns("id", "title", "created_at", "updated_at").
		Values(session.ID, session.Title, session.CreatedAt, session.UpdatedAt).
		Suffix("ON CONFLICT(id) DO UPDATE SET title = excluded.title, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to save chat session: %w", err)
	}

	// Messages are append-only; rewriting the session's rows keeps the
	// statement simple.
	query, args, err = sq.Delete("messages").Where(sq.Eq{"session_id": session.ID}).ToSql()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(query, args...); err != nil {
		return err
	}

	for _, message := range session.Messages {
		sources, err := marshalSources(message.Sources)
		if err != nil {
			return err
		}
		query, args, err := sq.Insert("messages").
			Columns("id", "session_id", "role", "content", "timestamp", "sources").
			Values(message.ID, session.ID, string(message.Role), message.Content, message.Timestamp, sources).
			ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(query, args...); err != nil {
			return fmt.Errorf("failed to save chat message: %w", err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) DeleteSession(id string) error {
	for _, table := range []string{"messages", "sessions"} {
		column := "id"
		if table == "messages" {
			column = "session_id"
		}
		query, args, err := sq.Delete(table).Where(sq.Eq{column: id}).ToSql()
		if err != nil {
			return err
		}
		if _, err := s.db.Exec(query, args...); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) Clear() error {
	for _, table := range []string{"messages", "sessions"} {
		if _, err := s.db.Exec("DELETE FROM " + table); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) LoadAll() ([]*Session, error) {
	query, args, err := sq.Select("id", "title", "created_at", "updated_at").
		From("sessions").
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load chat sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*Session
	byID := make(map[string]*Session)
	for rows.Next() {
		session := &Session{Messages: []Message{}}
		if err := rows.Scan(&session.ID, &session.Title, &session.CreatedAt, &session.UpdatedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
		byID[session.ID] = session
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.loadMessages(byID); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (s *SQLiteStore) loadMessages(byID map[string]*Session) error {
	query, args, err := sq.Select("id", "session_id", "role", "content", "timestamp", "sources").
		From("messages").
		OrderBy("timestamp ASC", "rowid ASC").
		ToSql()
	if err != nil {
		return err
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return fmt.Errorf("failed to load chat messages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			message   Message
			sessionID string
			role      string
			timestamp time.Time
			sources   sql.NullString
		)
		if err := rows.Scan(&message.ID, &sessionID, &role, &message.Content, &timestamp, &sources); err != nil {
			return err
		}
		message.Role = Role(role)
		message.Timestamp = timestamp
		if sources.Valid && sources.String != "" {
			if err := json.Unmarshal([]byte(sources.String), &message.Sources); err != nil {
				return fmt.Errorf("failed to parse message sources: %w", err)
			}
		}
		if session, ok := byID[sessionID]; ok {
			session.Messages = append(session.Messages, message)
		}
	}
	return rows.Err()
}

func marshalSources(sources []Source) (string, error) {
	if len(sources) == 0 {
		return "", nil
	}
	raw, err := json.Marshal(sources)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

var _ Persister = (*SQLiteStore)(nil)
