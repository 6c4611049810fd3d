package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/campushare/campushare/internal/model"
)

// GetStats returns the admin dashboard aggregates. All values read the
// authoritative stored columns; nothing is derived by scanning request
// lists.
func GetStats(ctx context.Context, db *sql.DB) (*model.Stats, error) {
	s := &model.Stats{}

	err := db.QueryRowContext(ctx,
		`SELECT
		   (SELECT COUNT(*) FROM users),
		   (SELECT COUNT(*) FROM items),
		   (SELECT COUNT(*) FROM requests),
		   (SELECT COUNT(*) FROM requests WHERE status = 'Pending')`,
	).Scan(&s.TotalUsers, &s.TotalItems, &s.TotalRequests, &s.PendingRequests)
	if err != nil {
		return nil, fmt.Errorf("counting totals: %w", err)
	}

	s.ItemsByCategory, err = groupCounts(ctx, db,
		`SELECT category, COUNT(*) FROM items GROUP BY category ORDER BY COUNT(*) DESC`)
	if err != nil {
		return nil, err
	}
	s.ItemsByKind, err = groupCounts(ctx, db,
		`SELECT kind, COUNT(*) FROM items GROUP BY kind ORDER BY kind`)
	if err != nil {
		return nil, err
	}
	s.RequestsByStatus, err = groupCounts(ctx, db,
		`SELECT status, COUNT(*) FROM requests GROUP BY status ORDER BY status`)
	if err != nil {
		return nil, err
	}

	return s, nil
}

func groupCounts(ctx context.Context, db *sql.DB, query string) ([]model.GroupCount, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("grouping counts: %w", err)
	}
	defer rows.Close()

	var counts []model.GroupCount
	for rows.Next() {
		var gc model.GroupCount
		if err := rows.Scan(&gc.Label, &gc.Count); err != nil {
			return nil, fmt.Errorf("scanning group count: %w", err)
		}
		counts = append(counts, gc)
	}
	return counts, rows.Err()
}
