package model

import "time"

// User represents a student account, created on first campus login.
// Local accounts (admin bootstrap) carry a password hash; Google-backed
// accounts never do.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Picture      string    `json:"picture,omitempty"`
	Department   string    `json:"department,omitempty"`
	Semester     string    `json:"semester,omitempty"`
	WhatsApp     string    `json:"whatsapp,omitempty"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`

	// Counts joined in by profile and admin queries.
	ItemCount    int `json:"item_count,omitempty"`
	RequestCount int `json:"request_count,omitempty"`
}

// Roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// ValidRole reports whether role is a known role name.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}
