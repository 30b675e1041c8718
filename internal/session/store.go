// Package session keeps the per-session conversation log consumed by the
// prompt assembler. Sessions are created implicitly on first append and
// bounded by an LRU policy on session count.
package session

import (
	"container/list"
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Roles for conversation turns.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one message in a conversation. Ordering is insertion order and
// is semantically significant: the assembler weights recent turns.
type Turn struct {
	Role         string
	Content      string
	Timestamp    time.Time
	Grounded     *bool
	SourceLabels []string
}

// Profile carries user-stated hints rendered into the prompt.
type Profile struct {
	Name   string
	Role   string
	Traits []string
	Notes  string
}

// Journal receives turns for durable storage. Appends are best-effort;
// the in-memory log stays authoritative.
type Journal interface {
	AppendTurn(ctx context.Context, sessionID string, turn Turn) error
}

type entry struct {
	turns   []Turn
	profile *Profile
	lruElem *list.Element
}

// Store holds conversation sessions. Safe for concurrent use across
// sessions; a single mutex suffices since appends are cheap.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*entry
	lru      *list.List // front = most recently touched, values are session IDs
	capacity int
	journal  Journal
	logger   *slog.Logger
}

// NewStore creates a session store bounded to capacity sessions.
// journal may be nil.
func NewStore(capacity int, journal Journal) *Store {
	if capacity <= 0 {
		capacity = 1000
	}
	return &Store{
		sessions: make(map[string]*entry),
		lru:      list.New(),
		capacity: capacity,
		journal:  journal,
		logger:   slog.Default(),
	}
}

// Append adds a turn to the session, creating the session if needed.
func (s *Store) Append(ctx context.Context, sessionID string, turn Turn) {
	if turn.Timestamp.IsZero() {
		turn.Timestamp = time.Now()
	}

	s.mu.Lock()
	e := s.touch(sessionID)
	e.turns = append(e.turns, turn)
	s.mu.Unlock()

	if s.journal != nil {
		if err := s.journal.AppendTurn(ctx, sessionID, turn); err != nil {
			s.logger.WarnContext(ctx, "failed to journal turn", "session_id", sessionID, "error", err)
		}
	}
}

// Recent returns up to maxTurns most recent turns, oldest first.
func (s *Store) Recent(sessionID string, maxTurns int) []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[sessionID]
	if !ok {
		return nil
	}
	start := len(e.turns) - maxTurns
	if start < 0 {
		start = 0
	}
	out := make([]Turn, len(e.turns)-start)
	copy(out, e.turns[start:])
	return out
}

// History returns all turns of the session, oldest first.
func (s *Store) History(sessionID string) []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[sessionID]
	if !ok {
		return nil
	}
	out := make([]Turn, len(e.turns))
	copy(out, e.turns)
	return out
}

// Reset drops the session's in-memory state and hands the caller a fresh
// identity. Journaled turns are unaffected.
func (s *Store) Reset(sessionID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.sessions[sessionID]; ok {
		s.lru.Remove(e.lruElem)
		delete(s.sessions, sessionID)
	}
	return uuid.NewString()
}

// SetProfile stores the user profile for the session, creating it if needed.
func (s *Store) SetProfile(sessionID string, p Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.touch(sessionID)
	e.profile = &p
}

// Profile returns the session's profile, or nil.
func (s *Store) Profile(sessionID string) *Profile {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[sessionID]
	if !ok || e.profile == nil {
		return nil
	}
	p := *e.profile
	return &p
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// touch returns the session entry, creating it and evicting the
// oldest-touched session when over capacity. Caller holds the lock.
func (s *Store) touch(sessionID string) *entry {
	if e, ok := s.sessions[sessionID]; ok {
		s.lru.MoveToFront(e.lruElem)
		return e
	}

	e := &entry{}
	e.lruElem = s.lru.PushFront(sessionID)
	s.sessions[sessionID] = e

	for len(s.sessions) > s.capacity {
		oldest := s.lru.Back()
		if oldest == nil {
			break
		}
		id := oldest.Value.(string)
		s.lru.Remove(oldest)
		delete(s.sessions, id)
	}
	return e
}
