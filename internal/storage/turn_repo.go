package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"advisor-ai/internal/session"
)

// TurnRepo persists conversation turns. It implements session.Journal.
type TurnRepo struct {
	db *sql.DB
}

// NewTurnRepo creates a new TurnRepo.
func NewTurnRepo(db *sql.DB) *TurnRepo {
	return &TurnRepo{db: db}
}

// AppendTurn inserts one conversation turn.
func (r *TurnRepo) AppendTurn(ctx context.Context, sessionID string, turn session.Turn) error {
	ts := turn.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	var grounded sql.NullInt64
	if turn.Grounded != nil {
		grounded = sql.NullInt64{Int64: int64(boolToInt(*turn.Grounded)), Valid: true}
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO turns (id, session_id, role, content, grounded, source_labels, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), sessionID, turn.Role, turn.Content,
		grounded, strings.Join(turn.SourceLabels, ","), ts.UTC().Format("2006-01-02 15:04:05"),
	)
	if err != nil {
		return fmt.Errorf("failed to insert turn: %w", err)
	}
	return nil
}

// ListBySession returns a session's persisted turns, oldest first.
func (r *TurnRepo) ListBySession(ctx context.Context, sessionID string) ([]session.Turn, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT role, content, grounded, source_labels, created_at
		 FROM turns WHERE session_id = ? ORDER BY rowid ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query turns: %w", err)
	}
	defer rows.Close()

	var turns []session.Turn
	for rows.Next() {
		var turn session.Turn
		var grounded sql.NullInt64
		var labels, createdAt string
		if err := rows.Scan(&turn.Role, &turn.Content, &grounded, &labels, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan turn row: %w", err)
		}
		if grounded.Valid {
			g := grounded.Int64 != 0
			turn.Grounded = &g
		}
		if labels != "" {
			turn.SourceLabels = strings.Split(labels, ",")
		}
		turn.Timestamp = parseSQLiteTime(createdAt)
		turns = append(turns, turn)
	}
	return turns, rows.Err()
}
