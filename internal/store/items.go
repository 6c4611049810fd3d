package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/campushare/campushare/internal/lifecycle"
	"github.com/campushare/campushare/internal/model"
)

const itemColumns = `i.id, i.name, i.category, i.condition, i.kind, i.description, i.image_mime,
	i.contact, i.owner_id, i.status, i.created_at, i.updated_at,
	u.name, u.email,
	(SELECT COUNT(*) FROM requests r WHERE r.item_id = i.id)`

func scanItem(row interface{ Scan(...any) error }) (*model.Item, error) {
	item := &model.Item{}
	var description, imageMime sql.NullString
	err := row.Scan(&item.ID, &item.Name, &item.Category, &item.Condition, &item.Kind,
		&description, &imageMime, &item.Contact, &item.OwnerID, &item.Status,
		&item.CreatedAt, &item.UpdatedAt, &item.OwnerName, &item.OwnerEmail, &item.RequestCount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning item: %w", err)
	}
	item.Description = description.String
	item.ImageMime = imageMime.String
	if imageMime.Valid {
		item.ImageURL = "/api/items/" + item.ID + "/image"
	}
	return item, nil
}

// NewItem holds the fields required to post an item.
type NewItem struct {
	Name        string
	Category    string
	Condition   string
	Kind        string
	Description string
	Contact     string
	OwnerID     string
}

// CreateItem creates a new item in AVAILABLE status.
func CreateItem(ctx context.Context, db *sql.DB, in NewItem) (*model.Item, error) {
	id := newID()
	_, err := db.ExecContext(ctx,
		`INSERT INTO items (id, name, category, condition, kind, description, contact, owner_id)
		 VALUES (?, ?, ?, ?, ?, NULLIF(?, ''), ?, ?)`,
		id, in.Name, in.Category, in.Condition, in.Kind, in.Description, in.Contact, in.OwnerID,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}
	return GetItem(ctx, db, id)
}

// GetItem returns an item with owner info and request count, or nil.
func GetItem(ctx context.Context, db *sql.DB, id string) (*model.Item, error) {
	item, err := scanItem(db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items i JOIN users u ON u.id = i.owner_id WHERE i.id = ?`, id,
	))
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ItemFilter narrows an item listing. Zero values mean "no filter".
type ItemFilter struct {
	Category string
	Kind     string
	Query    string // matches name, description, or category
	OwnerID  string
	Status   string
	Limit    int
	Offset   int
}

// ListItems returns items newest first, with the total count for paging.
func ListItems(ctx context.Context, db *sql.DB, f ItemFilter) ([]model.Item, int, error) {
	where := ` WHERE 1=1`
	var args []any
	if f.Category != "" {
		where += ` AND i.category = ?`
		args = append(args, f.Category)
	}
	if f.Kind != "" {
		where += ` AND i.kind = ?`
		args = append(args, f.Kind)
	}
	if f.OwnerID != "" {
		where += ` AND i.owner_id = ?`
		args = append(args, f.OwnerID)
	}
	if f.Status != "" {
		where += ` AND i.status = ?`
		args = append(args, f.Status)
	}
	if f.Query != "" {
		where += ` AND (i.name LIKE ? COLLATE NOCASE OR i.description LIKE ? COLLATE NOCASE OR i.category LIKE ? COLLATE NOCASE)`
		pattern := "%" + f.Query + "%"
		args = append(args, pattern, pattern, pattern)
	}

	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items i`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting items: %w", err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT ` + itemColumns + ` FROM items i JOIN users u ON u.id = i.owner_id` +
		where + ` ORDER BY i.created_at DESC LIMIT ? OFFSET ?`
	rows, err := db.QueryContext(ctx, query, append(args, limit, f.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *item)
	}
	return items, total, rows.Err()
}

// ItemEdit holds the owner-editable fields. Nil pointers leave the current
// value in place; status and kind are deliberately absent.
type ItemEdit struct {
	Name        *string
	Category    *string
	Condition   *string
	Description *string
	Contact     *string
}

// UpdateItemFields applies an edit, enforcing the lifecycle rule that only
// the owner may edit and only while the item is AVAILABLE. The item is
// re-read inside the transaction so the check never acts on a stale status.
func UpdateItemFields(ctx context.Context, db *sql.DB, id string, actor lifecycle.Actor, edit ItemEdit) (*model.Item, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	item, err := getItemTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.CanEdit(item, actor); err != nil {
		return nil, err
	}

	apply := func(field *string, current string) string {
		if field != nil {
			return *field
		}
		return current
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE items SET name = ?, category = ?, condition = ?, description = NULLIF(?, ''), contact = ?,
		        updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		apply(edit.Name, item.Name), apply(edit.Category, item.Category),
		apply(edit.Condition, item.Condition), apply(edit.Description, item.Description),
		apply(edit.Contact, item.Contact), id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing item update: %w", err)
	}
	return GetItem(ctx, db, id)
}

// AdvanceItemStatus moves an item one step forward along its kind's chain.
func AdvanceItemStatus(ctx context.Context, db *sql.DB, id string, actor lifecycle.Actor, target string) (*model.Item, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	item, err := getItemTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.CanAdvance(item, actor, target); err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE items SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		target, id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating item status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing status change: %w", err)
	}
	return GetItem(ctx, db, id)
}

// DeleteItem removes an item and, via the cascade, all of its requests.
// Legal only for the owner or an admin, and only while AVAILABLE.
func DeleteItem(ctx context.Context, db *sql.DB, id string, actor lifecycle.Actor) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	item, err := getItemTx(ctx, tx, id)
	if err != nil {
		return err
	}
	if err := lifecycle.CanDelete(item, actor); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing item delete: %w", err)
	}
	return nil
}

// SetItemImage stores an item's photo. Only the owner may attach one.
func SetItemImage(ctx context.Context, db *sql.DB, id string, actor lifecycle.Actor, image []byte, mime string) error {
	item, err := GetItem(ctx, db, id)
	if err != nil {
		return err
	}
	if item == nil {
		return lifecycle.NotFound("item not found")
	}
	if item.OwnerID != actor.ID {
		return lifecycle.Forbidden("only the item owner can change the photo")
	}

	_, err = db.ExecContext(ctx,
		`UPDATE items SET image = ?, image_mime = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		image, mime, id,
	)
	if err != nil {
		return fmt.Errorf("setting item image: %w", err)
	}
	return nil
}

// GetItemImage returns an item's photo data and MIME type.
func GetItemImage(ctx context.Context, db *sql.DB, id string) ([]byte, string, error) {
	var image []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT image, image_mime FROM items WHERE id = ?`, id,
	).Scan(&image, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting item image: %w", err)
	}
	return image, mime.String, nil
}

// getItemTx re-reads an item inside a transaction. Joined display fields
// are skipped; lifecycle checks only need owner, kind, and status.
func getItemTx(ctx context.Context, tx *sql.Tx, id string) (*model.Item, error) {
	item := &model.Item{}
	var description sql.NullString
	err := tx.QueryRowContext(ctx,
		`SELECT id, name, category, condition, kind, description, contact, owner_id, status
		 FROM items WHERE id = ?`, id,
	).Scan(&item.ID, &item.Name, &item.Category, &item.Condition, &item.Kind,
		&description, &item.Contact, &item.OwnerID, &item.Status)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	item.Description = description.String
	return item, nil
}
