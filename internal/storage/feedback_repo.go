package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"advisor-ai/internal/feedback"
)

// FeedbackRepo persists feedback records. It implements feedback.Journal.
type FeedbackRepo struct {
	db *sql.DB
}

// NewFeedbackRepo creates a new FeedbackRepo.
func NewFeedbackRepo(db *sql.DB) *FeedbackRepo {
	return &FeedbackRepo{db: db}
}

// AppendFeedback inserts one feedback record.
func (r *FeedbackRepo) AppendFeedback(ctx context.Context, rec feedback.Record) error {
	ts := rec.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO feedback (id, pattern, question, answer, rating, grounding_used, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), rec.Pattern, rec.Question, rec.Answer,
		string(rec.Rating), boolToInt(rec.GroundingUsed), ts.UTC().Format("2006-01-02 15:04:05"),
	)
	if err != nil {
		return fmt.Errorf("failed to insert feedback: %w", err)
	}
	return nil
}

// ListPositive returns all positively rated records, oldest first. Used to
// warm the learned-answer index at startup.
func (r *FeedbackRepo) ListPositive(ctx context.Context) ([]feedback.Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT pattern, question, answer, rating, grounding_used, created_at
		 FROM feedback WHERE rating = ? ORDER BY rowid ASC`,
		string(feedback.RatingPositive),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}
	defer rows.Close()

	var records []feedback.Record
	for rows.Next() {
		var rec feedback.Record
		var rating string
		var grounding int
		var createdAt string
		if err := rows.Scan(&rec.Pattern, &rec.Question, &rec.Answer, &rating, &grounding, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan feedback row: %w", err)
		}
		rec.Rating = feedback.Rating(rating)
		rec.GroundingUsed = grounding != 0
		rec.Timestamp = parseSQLiteTime(createdAt)
		records = append(records, rec)
	}
	return records, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func parseSQLiteTime(s string) time.Time {
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}
