package model

import "time"

// Feedback is a user-submitted report, suggestion, or question.
type Feedback struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`

	UserName  string `json:"user_name,omitempty"`
	UserEmail string `json:"user_email,omitempty"`
}

// Feedback types.
const (
	FeedbackReport   = "Report"
	FeedbackGeneral  = "Feedback"
	FeedbackQuestion = "Query"
)

// ValidFeedbackType reports whether t is a known feedback type.
func ValidFeedbackType(t string) bool {
	return t == FeedbackReport || t == FeedbackGeneral || t == FeedbackQuestion
}
