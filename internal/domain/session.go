package domain

import "time"

// ChatSession is one independent conversation thread with its own message
// history and title. Exactly one session is active (working) at any time;
// all others live in the archive.
type ChatSession struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Seeded reports whether the session still holds only its seed greeting.
// Such a session is considered empty and is discarded instead of archived.
func (s *ChatSession) Seeded() bool {
	return len(s.Messages) <= 1
}

// Clone returns a deep copy so archived sessions cannot be mutated through
// shared slices.
func (s *ChatSession) Clone() *ChatSession {
	cp := *s
	cp.Messages = make([]Message, len(s.Messages))
	copy(cp.Messages, s.Messages)
	return &cp
}

// SessionSummary is the list view of a session.
type SessionSummary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	MessageCount int       `json:"message_count"`
	Active       bool      `json:"active"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RenameRequest is the request to rename a session
type RenameRequest struct {
	Title string `json:"title" binding:"required"`
}
