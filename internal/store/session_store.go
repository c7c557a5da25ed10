// Package store owns the set of chat sessions and their lifecycle. Exactly
// one session is working (mutable) at any time; every other session is
// archived. A session is never in both states at once.
package store

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/exportmate/exportmate/internal/domain"
)

// ArchiveSink receives archived sessions for persistence. The working
// session is memory-only; only archive transitions reach the sink.
type ArchiveSink interface {
	Save(session *domain.ChatSession) error
	Delete(id string) error
}

// Options configures a session store.
type Options struct {
	Greeting     string
	DefaultTitle string
	Sink         ArchiveSink // optional
	Logger       *zap.Logger // optional
}

// SessionStore holds the working session and the archive. All methods are
// safe for concurrent use; state transitions stay the discrete-event model
// of the conversation flow.
type SessionStore struct {
	mu      sync.Mutex
	opts    Options
	logger  *zap.Logger
	counter int
	working *domain.ChatSession
	history []*domain.ChatSession // most recently archived first
}

// NewSessionStore creates a store with a fresh working session.
func NewSessionStore(opts Options) *SessionStore {
	if opts.DefaultTitle == "" {
		opts.DefaultTitle = "New Chat"
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	s := &SessionStore{opts: opts, logger: opts.Logger}
	s.working = s.newSession()
	return s
}

// Restore installs previously archived sessions, typically loaded from the
// repository at startup. The id counter is advanced past every restored id
// so ids are never reused. The seeded working session was allocated before
// the history was read; when its id collides with a restored session it is
// re-allocated past the restored range so the persisted session is kept.
func (s *SessionStore) Restore(sessions []*domain.ChatSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range sessions {
		if n, ok := sessionNumber(sess.ID); ok && n >= s.counter {
			s.counter = n
		}
	}
	for _, sess := range sessions {
		if sess.ID == s.working.ID {
			s.working.ID = s.allocateID()
		}
		s.history = append(s.history, sess.Clone())
	}
}

func sessionNumber(id string) (int, bool) {
	rest, ok := strings.CutPrefix(id, "chat-")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	return n, err == nil
}

// allocateID hands out the next session id from a strictly increasing
// counter. Ids are never reused after deletion.
func (s *SessionStore) allocateID() string {
	s.counter++
	return fmt.Sprintf("chat-%d", s.counter)
}

func (s *SessionStore) newSession() *domain.ChatSession {
	now := time.Now()
	return &domain.ChatSession{
		ID:    s.allocateID(),
		Title: s.opts.DefaultTitle,
		Messages: []domain.Message{{
			ID:        uuid.New().String(),
			Sender:    domain.SenderAssistant,
			Payload:   domain.NewPlainTextPayload(s.opts.Greeting),
			CreatedAt: now,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// archiveWorking moves the working session into the archive. A session
// still holding only its seed greeting is discarded instead. Any stale
// archive copy with the same id is replaced.
func (s *SessionStore) archiveWorking() {
	if s.working.Seeded() {
		return
	}
	s.removeFromHistory(s.working.ID)
	archived := s.working.Clone()
	s.history = append([]*domain.ChatSession{archived}, s.history...)
	s.sinkSave(archived)
}

// sinkSave and sinkDelete push archive transitions to the sink. A failing
// sink only costs durability, never in-memory state, so failures are
// logged and the transition proceeds.
func (s *SessionStore) sinkSave(sess *domain.ChatSession) {
	if s.opts.Sink == nil {
		return
	}
	if err := s.opts.Sink.Save(sess); err != nil {
		s.logger.Warn("failed to persist archived session",
			zap.String("session_id", sess.ID), zap.Error(err))
	}
}

func (s *SessionStore) sinkDelete(id string) {
	if s.opts.Sink == nil {
		return
	}
	if err := s.opts.Sink.Delete(id); err != nil {
		s.logger.Warn("failed to delete archived session",
			zap.String("session_id", id), zap.Error(err))
	}
}

func (s *SessionStore) removeFromHistory(id string) *domain.ChatSession {
	for i, sess := range s.history {
		if sess.ID == id {
			s.history = append(s.history[:i], s.history[i+1:]...)
			return sess
		}
	}
	return nil
}

// CreateSession archives the working session and installs a fresh one.
func (s *SessionStore) CreateSession() *domain.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.archiveWorking()
	s.working = s.newSession()
	return s.working.Clone()
}

// SwitchTo archives the working session and moves the named archived
// session into the working slot. Unknown ids are a silent no-op; the
// return value reports whether the switch happened.
func (s *SessionStore) SwitchTo(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == s.working.ID {
		return true
	}
	target := s.removeFromHistory(id)
	if target == nil {
		return false
	}
	s.archiveWorking()
	s.working = target
	s.sinkDelete(id)
	return true
}

// RenameActive overwrites the working session's title.
func (s *SessionStore) RenameActive(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.working.Title = title
	s.working.UpdatedAt = time.Now()
}

// RenameInHistory overwrites the title of an archived session. Renaming
// the active id renames the working session instead; the active title is
// never touched by renames of other ids.
func (s *SessionStore) RenameInHistory(id, title string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == s.working.ID {
		s.working.Title = title
		s.working.UpdatedAt = time.Now()
		return true
	}
	for _, sess := range s.history {
		if sess.ID == id {
			sess.Title = title
			sess.UpdatedAt = time.Now()
			s.sinkSave(sess)
			return true
		}
	}
	return false
}

// DeleteFromHistory removes a session permanently. Deleting the active
// session's id discards the current conversation and starts a fresh one;
// no other archive entry is touched.
func (s *SessionStore) DeleteFromHistory(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := s.removeFromHistory(id) != nil
	if removed {
		s.sinkDelete(id)
	}
	if id == s.working.ID {
		s.working = s.newSession()
		return true
	}
	return removed
}

// AppendMessage appends to the session the message was addressed to: the
// working session when the id still matches, otherwise the archived
// session the request originated from. A message for a session deleted in
// the meantime is dropped.
func (s *SessionStore) AppendMessage(sessionID string, msg domain.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sessionID == s.working.ID {
		s.working.Messages = append(s.working.Messages, msg)
		s.working.UpdatedAt = time.Now()
		return true
	}
	for _, sess := range s.history {
		if sess.ID == sessionID {
			sess.Messages = append(sess.Messages, msg)
			sess.UpdatedAt = time.Now()
			s.sinkSave(sess)
			return true
		}
	}
	return false
}

// Active returns a copy of the working session.
func (s *SessionStore) Active() *domain.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.working.Clone()
}

// Get returns a copy of the named session, working or archived.
func (s *SessionStore) Get(id string) *domain.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == s.working.ID {
		return s.working.Clone()
	}
	for _, sess := range s.history {
		if sess.ID == id {
			return sess.Clone()
		}
	}
	return nil
}

// List returns summaries of every session, the working session first.
func (s *SessionStore) List() []domain.SessionSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.SessionSummary, 0, len(s.history)+1)
	out = append(out, summarize(s.working, true))
	for _, sess := range s.history {
		out = append(out, summarize(sess, false))
	}
	return out
}

func summarize(sess *domain.ChatSession, active bool) domain.SessionSummary {
	return domain.SessionSummary{
		ID:           sess.ID,
		Title:        sess.Title,
		MessageCount: len(sess.Messages),
		Active:       active,
		UpdatedAt:    sess.UpdatedAt,
	}
}

// Stats counts sessions, messages and prediction results across the store.
func (s *SessionStore) Stats() domain.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := domain.Stats{TotalSessions: len(s.history) + 1}
	count := func(sess *domain.ChatSession) {
		stats.TotalMessages += len(sess.Messages)
		for _, m := range sess.Messages {
			if m.Payload.Kind == domain.KindPricePrediction {
				stats.TotalPredictions++
			}
		}
	}
	count(s.working)
	for _, sess := range s.history {
		count(sess)
	}
	return stats
}
