package feedback

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordPositivePromotesAnswer(t *testing.T) {
	l := NewLearner(10, nil)
	ctx := context.Background()

	l.Record(ctx, "Tôi cần 3 năm kinh nghiệm không?", "Không bắt buộc.", RatingPositive, true)

	// A structurally identical question hits the same pattern.
	got := l.Lookup("Anh cần 10 năm kinh nghiệm không?")
	require.Len(t, got, 1)
	assert.Equal(t, "Không bắt buộc.", got[0])
}

func TestRecordNegativeNotPromoted(t *testing.T) {
	l := NewLearner(10, nil)
	ctx := context.Background()

	l.Record(ctx, "Học phí bao nhiêu?", "Sai thông tin.", RatingNegative, true)
	l.Record(ctx, "Học phí bao nhiêu?", "Tạm được.", RatingNeutral, true)

	assert.Empty(t, l.Lookup("Học phí bao nhiêu?"))
}

func TestLookupIdempotent(t *testing.T) {
	l := NewLearner(10, nil)
	ctx := context.Background()

	l.Record(ctx, "Học phí bao nhiêu?", "25 triệu một năm.", RatingPositive, true)

	first := l.Lookup("Học phí bao nhiêu?")
	second := l.Lookup("Học phí bao nhiêu?")
	assert.Equal(t, first, second)

	// Mutating the returned slice must not affect the index.
	first[0] = "tampered"
	assert.Equal(t, second, l.Lookup("Học phí bao nhiêu?"))
}

func TestRecordDeduplicatesAnswers(t *testing.T) {
	l := NewLearner(10, nil)
	ctx := context.Background()

	l.Record(ctx, "Học phí bao nhiêu?", "25 triệu.", RatingPositive, true)
	l.Record(ctx, "Học phí bao nhiêu?", "25 triệu.", RatingPositive, true)
	l.Record(ctx, "Học phí bao nhiêu?", "Khoảng 25 triệu.", RatingPositive, true)

	assert.Len(t, l.Lookup("Học phí bao nhiêu?"), 2)
}

func TestStats(t *testing.T) {
	l := NewLearner(10, nil)
	ctx := context.Background()

	l.Record(ctx, "q1", "a1", RatingPositive, true)
	l.Record(ctx, "q2", "a2", RatingNegative, false)
	l.Record(ctx, "q3", "a3", RatingNeutral, true)

	s := l.Stats()
	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 1, s.Positive)
	assert.Equal(t, 1, s.Negative)
	assert.Equal(t, 1, s.Neutral)
	assert.Equal(t, 2, s.Grounded)
	assert.Equal(t, 1, s.General)
	assert.Equal(t, 1, s.Patterns)
}

func TestLRUEvictsOldestPattern(t *testing.T) {
	l := NewLearner(2, nil)
	ctx := context.Background()

	l.Record(ctx, "pattern one", "a", RatingPositive, true)
	l.Record(ctx, "pattern two", "b", RatingPositive, true)
	// Touch pattern one so pattern two becomes the eviction candidate.
	_ = l.Lookup("pattern one")
	l.Record(ctx, "pattern three", "c", RatingPositive, true)

	assert.NotEmpty(t, l.Lookup("pattern one"))
	assert.Empty(t, l.Lookup("pattern two"))
	assert.NotEmpty(t, l.Lookup("pattern three"))
}

func TestWarm(t *testing.T) {
	l := NewLearner(10, nil)

	l.Warm([]Record{
		{Question: "Học phí bao nhiêu?", Answer: "25 triệu.", Rating: RatingPositive},
		{Question: "Học phí bao nhiêu?", Answer: "Sai.", Rating: RatingNegative},
	})

	got := l.Lookup("Học phí bao nhiêu?")
	require.Len(t, got, 1)
	assert.Equal(t, "25 triệu.", got[0])
}

type countingJournal struct {
	appends int
}

func (c *countingJournal) AppendFeedback(ctx context.Context, rec Record) error {
	c.appends++
	return nil
}

func TestJournalReceivesAllRatings(t *testing.T) {
	j := &countingJournal{}
	l := NewLearner(10, j)
	ctx := context.Background()

	for i, r := range []Rating{RatingPositive, RatingNegative, RatingNeutral} {
		l.Record(ctx, fmt.Sprintf("q%d", i), "a", r, true)
	}
	assert.Equal(t, 3, j.appends)
}
