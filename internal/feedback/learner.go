// Package feedback records user ratings on answers and promotes
// positively-rated ones for reuse on recurring question patterns. The
// learned index is LRU-bounded: "reuse recently-approved answers", not
// "retain forever".
package feedback

import (
	"container/list"
	"context"
	"log/slog"
	"sync"
	"time"
)

// Rating is a user's verdict on an answer.
type Rating string

const (
	RatingPositive Rating = "positive"
	RatingNegative Rating = "negative"
	RatingNeutral  Rating = "neutral"
)

// Valid reports whether r is a known rating value.
func (r Rating) Valid() bool {
	switch r {
	case RatingPositive, RatingNegative, RatingNeutral:
		return true
	}
	return false
}

// Record is one immutable feedback event.
type Record struct {
	Pattern       string
	Question      string
	Answer        string
	Rating        Rating
	GroundingUsed bool
	Timestamp     time.Time
}

// Stats are running feedback counters, exposed read-only.
type Stats struct {
	Total    int
	Positive int
	Negative int
	Neutral  int
	Grounded int
	General  int
	Patterns int
}

// Journal receives feedback records for durable storage. Appends are
// best-effort; the in-memory index stays authoritative.
type Journal interface {
	AppendFeedback(ctx context.Context, rec Record) error
}

type patternEntry struct {
	answers []string
	lruElem *list.Element
}

// Learner maintains the learned-answer index and feedback statistics.
// Safe for concurrent use.
type Learner struct {
	mu       sync.Mutex
	patterns map[string]*patternEntry
	lru      *list.List // front = most recently touched, values are patterns
	capacity int
	stats    Stats
	journal  Journal
	logger   *slog.Logger
}

// NewLearner creates a Learner bounded to capacity learned patterns.
// journal may be nil.
func NewLearner(capacity int, journal Journal) *Learner {
	if capacity <= 0 {
		capacity = 5000
	}
	return &Learner{
		patterns: make(map[string]*patternEntry),
		lru:      list.New(),
		capacity: capacity,
		journal:  journal,
		logger:   slog.Default(),
	}
}

// Record stores a feedback event. Positive ratings add the answer to the
// learned index under the normalized question pattern.
func (l *Learner) Record(ctx context.Context, question, answer string, rating Rating, grounded bool) {
	rec := Record{
		Pattern:       Normalize(question),
		Question:      question,
		Answer:        answer,
		Rating:        rating,
		GroundingUsed: grounded,
		Timestamp:     time.Now(),
	}

	l.mu.Lock()
	l.stats.Total++
	switch rating {
	case RatingPositive:
		l.stats.Positive++
	case RatingNegative:
		l.stats.Negative++
	default:
		l.stats.Neutral++
	}
	if grounded {
		l.stats.Grounded++
	} else {
		l.stats.General++
	}

	if rating == RatingPositive && answer != "" {
		l.promote(rec.Pattern, answer)
	}
	l.stats.Patterns = len(l.patterns)
	l.mu.Unlock()

	if l.journal != nil {
		if err := l.journal.AppendFeedback(ctx, rec); err != nil {
			l.logger.WarnContext(ctx, "failed to journal feedback", "pattern", rec.Pattern, "error", err)
		}
	}
}

// Lookup returns the previously positively-rated answers for the question's
// normalized pattern. The returned slice is a copy; repeated calls without
// intervening Record yield the same candidate set.
func (l *Learner) Lookup(question string) []string {
	pattern := Normalize(question)

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.patterns[pattern]
	if !ok {
		return nil
	}
	l.lru.MoveToFront(e.lruElem)

	out := make([]string, len(e.answers))
	copy(out, e.answers)
	return out
}

// Warm seeds the learned index from persisted positive records, oldest
// first so the LRU order matches the journal order.
func (l *Learner) Warm(records []Record) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, rec := range records {
		if rec.Rating != RatingPositive || rec.Answer == "" {
			continue
		}
		pattern := rec.Pattern
		if pattern == "" {
			pattern = Normalize(rec.Question)
		}
		l.promote(pattern, rec.Answer)
	}
	l.stats.Patterns = len(l.patterns)
}

// Stats returns a snapshot of the running counters.
func (l *Learner) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := l.stats
	s.Patterns = len(l.patterns)
	return s
}

// promote adds answer under pattern, deduplicating and evicting the
// oldest-touched pattern when over capacity. Caller holds the lock.
func (l *Learner) promote(pattern, answer string) {
	e, ok := l.patterns[pattern]
	if !ok {
		e = &patternEntry{}
		e.lruElem = l.lru.PushFront(pattern)
		l.patterns[pattern] = e
	} else {
		l.lru.MoveToFront(e.lruElem)
	}

	for _, a := range e.answers {
		if a == answer {
			return
		}
	}
	e.answers = append(e.answers, answer)

	for len(l.patterns) > l.capacity {
		oldest := l.lru.Back()
		if oldest == nil {
			break
		}
		p := oldest.Value.(string)
		l.lru.Remove(oldest)
		delete(l.patterns, p)
	}
}
