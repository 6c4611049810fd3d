package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/campushare/campushare/internal/model"
)

const userColumns = `id, email, name, picture_url, picture_mime, department, semester, whatsapp, role, password_hash, created_at`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	u := &model.User{}
	var pictureURL, pictureMime, department, semester, whatsapp, passwordHash sql.NullString
	err := row.Scan(&u.ID, &u.Email, &u.Name, &pictureURL, &pictureMime, &department, &semester, &whatsapp, &u.Role, &passwordHash, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning user: %w", err)
	}
	u.Department = department.String
	u.Semester = semester.String
	u.WhatsApp = whatsapp.String
	u.PasswordHash = passwordHash.String
	// An uploaded picture wins over the identity provider's URL.
	if pictureMime.Valid {
		u.Picture = "/api/users/" + u.ID + "/picture"
	} else {
		u.Picture = pictureURL.String
	}
	return u, nil
}

// CreateUser creates a new user. passwordHash may be empty for
// identity-provider accounts; pictureURL is the provider's avatar URL.
func CreateUser(ctx context.Context, db *sql.DB, email, name, pictureURL, role, passwordHash string) (*model.User, error) {
	id := newID()
	_, err := db.ExecContext(ctx,
		`INSERT INTO users (id, email, name, picture_url, role, password_hash)
		 VALUES (?, ?, ?, NULLIF(?, ''), ?, NULLIF(?, ''))`,
		id, email, name, pictureURL, role, passwordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return GetUser(ctx, db, id)
}

// GetUser returns a user by ID, or nil if unknown.
func GetUser(ctx context.Context, db *sql.DB, id string) (*model.User, error) {
	u, err := scanUser(db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id,
	))
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

// GetUserByEmail returns a user by email, or nil if unknown.
func GetUserByEmail(ctx context.Context, db *sql.DB, email string) (*model.User, error) {
	u, err := scanUser(db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email,
	))
	if err != nil {
		return nil, fmt.Errorf("getting user by email: %w", err)
	}
	return u, nil
}

// UpsertIdentityUser finds a user by email, creating one on first login.
// The display name follows the identity provider; an uploaded profile
// picture is never overwritten by the provider's URL.
func UpsertIdentityUser(ctx context.Context, db *sql.DB, email, name, pictureURL string) (*model.User, error) {
	u, err := GetUserByEmail(ctx, db, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return CreateUser(ctx, db, email, name, pictureURL, model.RoleUser, "")
	}

	_, err = db.ExecContext(ctx,
		`UPDATE users SET name = ?, picture_url = NULLIF(?, '') WHERE id = ?`,
		name, pictureURL, u.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating user identity: %w", err)
	}
	return GetUser(ctx, db, u.ID)
}

// ProfileEdit holds the caller-editable profile fields. Nil fields are
// left unchanged.
type ProfileEdit struct {
	Name       *string
	Department *string
	Semester   *string
	WhatsApp   *string
}

// UpdateUserProfile applies a partial profile edit and returns the
// updated user.
func UpdateUserProfile(ctx context.Context, db *sql.DB, id string, edit ProfileEdit) (*model.User, error) {
	sets := []string{}
	args := []any{}
	if edit.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *edit.Name)
	}
	if edit.Department != nil {
		sets = append(sets, "department = NULLIF(?, '')")
		args = append(args, *edit.Department)
	}
	if edit.Semester != nil {
		sets = append(sets, "semester = NULLIF(?, '')")
		args = append(args, *edit.Semester)
	}
	if edit.WhatsApp != nil {
		sets = append(sets, "whatsapp = NULLIF(?, '')")
		args = append(args, *edit.WhatsApp)
	}
	if len(sets) > 0 {
		args = append(args, id)
		query := "UPDATE users SET " + strings.Join(sets, ", ") + " WHERE id = ?"
		if _, err := db.ExecContext(ctx, query, args...); err != nil {
			return nil, fmt.Errorf("updating user profile: %w", err)
		}
	}
	return GetUser(ctx, db, id)
}

// UpdateUserRole changes a user's role.
func UpdateUserRole(ctx context.Context, db *sql.DB, id, role string) error {
	_, err := db.ExecContext(ctx, `UPDATE users SET role = ? WHERE id = ?`, role, id)
	if err != nil {
		return fmt.Errorf("updating user role: %w", err)
	}
	return nil
}

// SetUserPicture stores an uploaded profile picture.
func SetUserPicture(ctx context.Context, db *sql.DB, id string, image []byte, mime string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET picture = ?, picture_mime = ? WHERE id = ?`,
		image, mime, id,
	)
	if err != nil {
		return fmt.Errorf("setting user picture: %w", err)
	}
	return nil
}

// GetUserPicture returns a user's uploaded picture data and MIME type.
func GetUserPicture(ctx context.Context, db *sql.DB, id string) ([]byte, string, error) {
	var image []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT picture, picture_mime FROM users WHERE id = ?`, id,
	).Scan(&image, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting user picture: %w", err)
	}
	return image, mime.String, nil
}

// GetUserWithCounts returns a user along with their item and request counts.
func GetUserWithCounts(ctx context.Context, db *sql.DB, id string) (*model.User, error) {
	u, err := GetUser(ctx, db, id)
	if err != nil || u == nil {
		return u, err
	}
	err = db.QueryRowContext(ctx,
		`SELECT
		   (SELECT COUNT(*) FROM items WHERE owner_id = ?),
		   (SELECT COUNT(*) FROM requests WHERE user_id = ?)`,
		id, id,
	).Scan(&u.ItemCount, &u.RequestCount)
	if err != nil {
		return nil, fmt.Errorf("counting user activity: %w", err)
	}
	return u, nil
}

// ListUsers returns users ordered by signup time descending, optionally
// filtered by a case-insensitive name/email search, with paging.
func ListUsers(ctx context.Context, db *sql.DB, search string, limit, offset int) ([]model.User, int, error) {
	where := ""
	var args []any
	if search != "" {
		where = ` WHERE name LIKE ? COLLATE NOCASE OR email LIKE ? COLLATE NOCASE`
		pattern := "%" + search + "%"
		args = append(args, pattern, pattern)
	}

	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting users: %w", err)
	}

	query := `SELECT ` + userColumns + `,
	                 (SELECT COUNT(*) FROM items WHERE owner_id = users.id),
	                 (SELECT COUNT(*) FROM requests WHERE user_id = users.id)
	          FROM users` + where + ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	rows, err := db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		var pictureURL, pictureMime, department, semester, whatsapp, passwordHash sql.NullString
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &pictureURL, &pictureMime, &department, &semester, &whatsapp,
			&u.Role, &passwordHash, &u.CreatedAt, &u.ItemCount, &u.RequestCount); err != nil {
			return nil, 0, fmt.Errorf("scanning user: %w", err)
		}
		u.Department = department.String
		u.Semester = semester.String
		u.WhatsApp = whatsapp.String
		if pictureMime.Valid {
			u.Picture = "/api/users/" + u.ID + "/picture"
		} else {
			u.Picture = pictureURL.String
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}
