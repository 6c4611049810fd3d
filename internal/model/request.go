package model

import "time"

// Request represents one user's interest in one item. Many requests may
// exist per item, but at most one may be Approved at any time.
type Request struct {
	ID        string    `json:"id"`
	ItemID    string    `json:"item_id"`
	UserID    string    `json:"user_id"`
	Message   string    `json:"message,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`

	// Joined display fields.
	UserName   string `json:"user_name,omitempty"`
	UserEmail  string `json:"user_email,omitempty"`
	ItemName   string `json:"item_name,omitempty"`
	ItemStatus string `json:"item_status,omitempty"`
	ItemKind   string `json:"item_kind,omitempty"`
	OwnerID    string `json:"item_owner_id,omitempty"`
}

// Request statuses.
const (
	RequestPending  = "Pending"
	RequestApproved = "Approved"
	RequestRejected = "Rejected"
)
