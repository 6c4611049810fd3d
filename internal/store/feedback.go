package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/campushare/campushare/internal/model"
)

// CreateFeedback records a user's report, suggestion, or question.
func CreateFeedback(ctx context.Context, db *sql.DB, userID, ftype, message string) (*model.Feedback, error) {
	id := newID()
	_, err := db.ExecContext(ctx,
		`INSERT INTO feedback (id, user_id, type, message) VALUES (?, ?, ?, ?)`,
		id, userID, ftype, message,
	)
	if err != nil {
		return nil, fmt.Errorf("creating feedback: %w", err)
	}

	f := &model.Feedback{}
	err = db.QueryRowContext(ctx,
		`SELECT f.id, f.user_id, f.type, f.message, f.created_at, u.name, u.email
		 FROM feedback f JOIN users u ON u.id = f.user_id
		 WHERE f.id = ?`, id,
	).Scan(&f.ID, &f.UserID, &f.Type, &f.Message, &f.CreatedAt, &f.UserName, &f.UserEmail)
	if err != nil {
		return nil, fmt.Errorf("getting feedback: %w", err)
	}
	return f, nil
}

// ListFeedback returns all feedback entries, newest first.
func ListFeedback(ctx context.Context, db *sql.DB) ([]model.Feedback, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT f.id, f.user_id, f.type, f.message, f.created_at, u.name, u.email
		 FROM feedback f JOIN users u ON u.id = f.user_id
		 ORDER BY f.created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing feedback: %w", err)
	}
	defer rows.Close()

	var entries []model.Feedback
	for rows.Next() {
		var f model.Feedback
		if err := rows.Scan(&f.ID, &f.UserID, &f.Type, &f.Message, &f.CreatedAt, &f.UserName, &f.UserEmail); err != nil {
			return nil, fmt.Errorf("scanning feedback: %w", err)
		}
		entries = append(entries, f)
	}
	return entries, rows.Err()
}
