package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/campushare/campushare/internal/lifecycle"
	"github.com/campushare/campushare/internal/model"
)

const requestColumns = `r.id, r.item_id, r.user_id, r.message, r.status, r.created_at,
	u.name, u.email, i.name, i.status, i.kind, i.owner_id`

func scanRequest(row interface{ Scan(...any) error }) (*model.Request, error) {
	req := &model.Request{}
	var message sql.NullString
	err := row.Scan(&req.ID, &req.ItemID, &req.UserID, &message, &req.Status, &req.CreatedAt,
		&req.UserName, &req.UserEmail, &req.ItemName, &req.ItemStatus, &req.ItemKind, &req.OwnerID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning request: %w", err)
	}
	req.Message = message.String
	return req, nil
}

// CreateRequest creates a Pending request for an item. Self-requests are
// refused; any number of pending requests may coexist on one item.
func CreateRequest(ctx context.Context, db *sql.DB, itemID, userID, message string) (*model.Request, error) {
	item, err := GetItem(ctx, db, itemID)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.CanCreateRequest(item, lifecycle.Actor{ID: userID}); err != nil {
		return nil, err
	}

	id := newID()
	_, err = db.ExecContext(ctx,
		`INSERT INTO requests (id, item_id, user_id, message) VALUES (?, ?, ?, NULLIF(?, ''))`,
		id, itemID, userID, message,
	)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	return GetRequest(ctx, db, id)
}

// GetRequest returns a request with requester and item info, or nil.
func GetRequest(ctx context.Context, db *sql.DB, id string) (*model.Request, error) {
	req, err := scanRequest(db.QueryRowContext(ctx,
		`SELECT `+requestColumns+`
		 FROM requests r
		 JOIN users u ON u.id = r.user_id
		 JOIN items i ON i.id = r.item_id
		 WHERE r.id = ?`, id,
	))
	if err != nil {
		return nil, fmt.Errorf("getting request: %w", err)
	}
	return req, nil
}

// ApproveRequest approves a request and claims its item in one atomic
// transaction. Current state is re-read inside the transaction, and the
// "no other approved request" rule is checked there; the partial unique
// index on requests backstops the check, so of two racing approvals
// exactly one commits and the other reports a conflict.
func ApproveRequest(ctx context.Context, db *sql.DB, id string, actor lifecycle.Actor) (*model.Request, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	req, item, err := getRequestWithItemTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	otherApproved := false
	if req != nil {
		err = tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM requests WHERE item_id = ? AND status = 'Approved' AND id <> ?)`,
			req.ItemID, id,
		).Scan(&otherApproved)
		if err != nil {
			return nil, fmt.Errorf("checking for approved request: %w", err)
		}
	}

	if err := lifecycle.CanApprove(item, req, actor, otherApproved); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE requests SET status = 'Approved' WHERE id = ?`, id,
	); err != nil {
		if isUniqueViolation(err) {
			return nil, lifecycle.Conflict("item already has an approved request")
		}
		return nil, fmt.Errorf("approving request: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE items SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		model.StatusClaimed, req.ItemID,
	); err != nil {
		return nil, fmt.Errorf("claiming item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return nil, lifecycle.Conflict("item already has an approved request")
		}
		return nil, fmt.Errorf("committing approval: %w", err)
	}
	return GetRequest(ctx, db, id)
}

// RejectRequest marks a request Rejected. Sibling pending requests and the
// item status are untouched.
func RejectRequest(ctx context.Context, db *sql.DB, id string, actor lifecycle.Actor) (*model.Request, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	req, item, err := getRequestWithItemTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.CanReject(item, req, actor); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE requests SET status = 'Rejected' WHERE id = ?`, id,
	); err != nil {
		return nil, fmt.Errorf("rejecting request: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing rejection: %w", err)
	}
	return GetRequest(ctx, db, id)
}

// CancelRequest deletes the requester's own request, unless it has been
// approved.
func CancelRequest(ctx context.Context, db *sql.DB, id string, actor lifecycle.Actor) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	req, _, err := getRequestWithItemTx(ctx, tx, id)
	if err != nil {
		return err
	}
	if err := lifecycle.CanCancel(req, actor); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM requests WHERE id = ?`, id); err != nil {
		return fmt.Errorf("cancelling request: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing cancellation: %w", err)
	}
	return nil
}

// DeleteRequest removes a request regardless of status. Admin only; the
// moderation escape hatch for stuck or abusive requests.
func DeleteRequest(ctx context.Context, db *sql.DB, id string, actor lifecycle.Actor) error {
	if !actor.IsAdmin() {
		return lifecycle.Forbidden("only an admin can delete requests")
	}

	res, err := db.ExecContext(ctx, `DELETE FROM requests WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting request: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting request: %w", err)
	}
	if n == 0 {
		return lifecycle.NotFound("request not found")
	}
	return nil
}

// ListRequestsByUser returns a user's own requests, newest first.
func ListRequestsByUser(ctx context.Context, db *sql.DB, userID string) ([]model.Request, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+requestColumns+`
		 FROM requests r
		 JOIN users u ON u.id = r.user_id
		 JOIN items i ON i.id = r.item_id
		 WHERE r.user_id = ?
		 ORDER BY r.created_at DESC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing requests: %w", err)
	}
	defer rows.Close()
	return collectRequests(rows)
}

// ListRequestsForItem returns all requests on an item, newest first.
// Visible to the item owner and admins only; enforced here so every
// caller gets the same rule.
func ListRequestsForItem(ctx context.Context, db *sql.DB, itemID string, actor lifecycle.Actor) ([]model.Request, error) {
	item, err := GetItem(ctx, db, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, lifecycle.NotFound("item not found")
	}
	if item.OwnerID != actor.ID && !actor.IsAdmin() {
		return nil, lifecycle.Forbidden("only the item owner or an admin can view an item's requests")
	}

	rows, err := db.QueryContext(ctx,
		`SELECT `+requestColumns+`
		 FROM requests r
		 JOIN users u ON u.id = r.user_id
		 JOIN items i ON i.id = r.item_id
		 WHERE r.item_id = ?
		 ORDER BY r.created_at DESC`, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing item requests: %w", err)
	}
	defer rows.Close()
	return collectRequests(rows)
}

// ListRequests returns all requests, optionally filtered by status, newest
// first with paging. Used by admin moderation.
func ListRequests(ctx context.Context, db *sql.DB, status string, limit, offset int) ([]model.Request, int, error) {
	where := ""
	var args []any
	if status != "" {
		where = ` WHERE r.status = ?`
		args = append(args, status)
	}

	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM requests r`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting requests: %w", err)
	}

	if limit <= 0 {
		limit = 50
	}
	rows, err := db.QueryContext(ctx,
		`SELECT `+requestColumns+`
		 FROM requests r
		 JOIN users u ON u.id = r.user_id
		 JOIN items i ON i.id = r.item_id`+where+`
		 ORDER BY r.created_at DESC LIMIT ? OFFSET ?`,
		append(args, limit, offset)...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("listing requests: %w", err)
	}
	defer rows.Close()

	reqs, err := collectRequests(rows)
	return reqs, total, err
}

// CountApprovedForItem returns the number of Approved requests on an item.
func CountApprovedForItem(ctx context.Context, db *sql.DB, itemID string) (int, error) {
	var n int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM requests WHERE item_id = ? AND status = 'Approved'`, itemID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting approved requests: %w", err)
	}
	return n, nil
}

func collectRequests(rows *sql.Rows) ([]model.Request, error) {
	var reqs []model.Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, *req)
	}
	return reqs, rows.Err()
}

// getRequestWithItemTx re-reads a request and its item inside a
// transaction. Either may be nil if missing.
func getRequestWithItemTx(ctx context.Context, tx *sql.Tx, id string) (*model.Request, *model.Item, error) {
	req := &model.Request{}
	var message sql.NullString
	err := tx.QueryRowContext(ctx,
		`SELECT id, item_id, user_id, message, status, created_at FROM requests WHERE id = ?`, id,
	).Scan(&req.ID, &req.ItemID, &req.UserID, &message, &req.Status, &req.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("getting request: %w", err)
	}
	req.Message = message.String

	item := &model.Item{}
	var description sql.NullString
	err = tx.QueryRowContext(ctx,
		`SELECT id, name, category, condition, kind, description, contact, owner_id, status
		 FROM items WHERE id = ?`, req.ItemID,
	).Scan(&item.ID, &item.Name, &item.Category, &item.Condition, &item.Kind,
		&description, &item.Contact, &item.OwnerID, &item.Status)
	if err == sql.ErrNoRows {
		return req, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("getting request item: %w", err)
	}
	item.Description = description.String
	return req, item, nil
}

// isUniqueViolation reports whether err is a SQLite unique-constraint
// failure (the approved-request index firing under a race).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
