package model

import "time"

// Item represents a shareable object posted by a student. Exactly one row
// per physical object; availability is tracked by the status field alone.
type Item struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Condition   string    `json:"condition"`
	Kind        string    `json:"kind"`
	Description string    `json:"description,omitempty"`
	ImageMime   string    `json:"image_mime,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	Contact     string    `json:"contact"`
	OwnerID     string    `json:"owner_id"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Joined display fields.
	OwnerName    string `json:"owner_name,omitempty"`
	OwnerEmail   string `json:"owner_email,omitempty"`
	RequestCount int    `json:"request_count"`
}

// Item kinds.
const (
	KindDonate = "Donate"
	KindLend   = "Lend"
)

// Item statuses. Donate items move AVAILABLE → CLAIMED → COMPLETED,
// Lend items move AVAILABLE → CLAIMED → IN_USE → RETURNED.
const (
	StatusAvailable = "AVAILABLE"
	StatusClaimed   = "CLAIMED"
	StatusInUse     = "IN_USE"
	StatusCompleted = "COMPLETED"
	StatusReturned  = "RETURNED"
)

// ValidKind reports whether kind is a known item kind.
func ValidKind(kind string) bool {
	return kind == KindDonate || kind == KindLend
}
