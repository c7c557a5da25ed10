package repository

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/exportmate/exportmate/internal/domain"
)

// SessionRepository persists archived sessions so chat history survives a
// restart. It implements store.ArchiveSink.
type SessionRepository struct {
	db *DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Save upserts a session and replaces its message rows.
func (r *SessionRepository) Save(session *domain.ChatSession) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	session.UpdatedAt = time.Now()

	_, err = tx.Exec(`
		INSERT INTO sessions (id, title, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET title = excluded.title, updated_at = excluded.updated_at
	`, session.ID, session.Title, session.CreatedAt, session.UpdatedAt)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM messages WHERE session_id = ?`, session.ID); err != nil {
		return err
	}

	for _, msg := range session.Messages {
		if msg.ID == "" {
			msg.ID = uuid.New().String()
		}
		payload, err := msg.Payload.Encode()
		if err != nil {
			return err
		}
		_, err = tx.Exec(`
			INSERT INTO messages (id, session_id, sender, payload, created_at)
			VALUES (?, ?, ?, ?, ?)
		`, msg.ID, session.ID, string(msg.Sender), string(payload), msg.CreatedAt)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Delete removes a session and, via cascade, its messages.
func (r *SessionRepository) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	return err
}

// Get retrieves a session with its messages, or nil when absent.
func (r *SessionRepository) Get(id string) (*domain.ChatSession, error) {
	session := &domain.ChatSession{}
	err := r.db.QueryRow(`
		SELECT id, title, created_at, updated_at
		FROM sessions WHERE id = ?
	`, id).Scan(&session.ID, &session.Title, &session.CreatedAt, &session.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	session.Messages, err = r.messages(id)
	if err != nil {
		return nil, err
	}
	return session, nil
}

// List retrieves all archived sessions with their messages, most recently
// updated first.
func (r *SessionRepository) List() ([]*domain.ChatSession, error) {
	rows, err := r.db.Query(`
		SELECT id, title, created_at, updated_at
		FROM sessions ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*domain.ChatSession
	for rows.Next() {
		session := &domain.ChatSession{}
		if err := rows.Scan(&session.ID, &session.Title, &session.CreatedAt, &session.UpdatedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, session := range sessions {
		if session.Messages, err = r.messages(session.ID); err != nil {
			return nil, err
		}
	}
	return sessions, nil
}

func (r *SessionRepository) messages(sessionID string) ([]domain.Message, error) {
	rows, err := r.db.Query(`
		SELECT id, sender, payload, created_at
		FROM messages WHERE session_id = ?
		ORDER BY created_at ASC
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var (
			msg         domain.Message
			sender      string
			payloadJSON string
		)
		if err := rows.Scan(&msg.ID, &sender, &payloadJSON, &msg.CreatedAt); err != nil {
			return nil, err
		}
		msg.Sender = domain.Sender(sender)
		if msg.Payload, err = domain.DecodePayload([]byte(payloadJSON)); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}

	return messages, rows.Err()
}
