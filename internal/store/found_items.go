package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/erazemk/najdeno/internal/model"
)

const foundItemColumns = `id, category, name, description, color, date_found, location, status,
	registered_by, hand_in_id, created_at, updated_at`

// CreateFoundItem inserts a found item. An empty status defaults to AVAILABLE.
func CreateFoundItem(ctx context.Context, db DBTX, item model.FoundItem) (*model.FoundItem, error) {
	if item.Status == "" {
		item.Status = model.ItemStatusAvailable
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO found_items (category, name, description, color, date_found, location, status,
		                          registered_by, hand_in_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.Category, item.Name, item.Description, item.Color, item.DateFound, item.Location,
		item.Status, nullInt64(item.RegisteredBy), nullInt64(item.HandInID),
	)
	if err != nil {
		return nil, fmt.Errorf("creating found item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting found item id: %w", err)
	}

	return GetFoundItem(ctx, db, id)
}

// GetFoundItem returns a found item by ID.
func GetFoundItem(ctx context.Context, db DBTX, id int64) (*model.FoundItem, error) {
	item, err := scanFoundItem(db.QueryRowContext(ctx,
		`SELECT `+foundItemColumns+` FROM found_items WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting found item: %w", err)
	}
	return item, nil
}

// ListFoundItems returns found items, newest find first, optionally filtered by status.
func ListFoundItems(ctx context.Context, db DBTX, status model.ItemStatus) ([]model.FoundItem, error) {
	query := `SELECT ` + foundItemColumns + ` FROM found_items`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY date_found DESC, id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing found items: %w", err)
	}
	defer rows.Close()

	return scanFoundItems(rows)
}

// ListFallbackCandidates returns AVAILABLE items whose category equals category
// or whose name contains keyword (case-insensitive), skipping the ids in exclude.
// An empty keyword disables the name condition. Results are ordered by most
// recently found first and capped at limit.
//
// SQLite only folds ASCII case, so the name condition is evaluated in Go.
func ListFallbackCandidates(ctx context.Context, db DBTX, category model.Category, keyword string, exclude []int64, limit int) ([]model.FoundItem, error) {
	query := `SELECT ` + foundItemColumns + ` FROM found_items WHERE status = ?`
	args := []any{model.ItemStatusAvailable}

	if len(exclude) > 0 {
		query += ` AND id NOT IN (` + placeholders(len(exclude)) + `)`
		for _, id := range exclude {
			args = append(args, id)
		}
	}

	keyword = strings.ToLower(keyword)
	if keyword == "" {
		query += ` AND category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY date_found DESC, id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing fallback candidates: %w", err)
	}
	defer rows.Close()

	var items []model.FoundItem
	for len(items) < limit && rows.Next() {
		item, err := scanFoundItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning found item: %w", err)
		}
		if keyword != "" && item.Category != category && !strings.Contains(strings.ToLower(item.Name), keyword) {
			continue
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// UpdateFoundItem updates a found item's descriptive fields and status.
func UpdateFoundItem(ctx context.Context, db DBTX, item model.FoundItem) error {
	_, err := db.ExecContext(ctx,
		`UPDATE found_items
		 SET category = ?, name = ?, description = ?, color = ?, date_found = ?, location = ?,
		     status = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		item.Category, item.Name, item.Description, item.Color, item.DateFound, item.Location,
		item.Status, item.ID,
	)
	if err != nil {
		return fmt.Errorf("updating found item: %w", err)
	}
	return nil
}

// SetFoundItemStatus changes only the status of a found item.
func SetFoundItemStatus(ctx context.Context, db DBTX, id int64, status model.ItemStatus) error {
	_, err := db.ExecContext(ctx,
		`UPDATE found_items SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("setting found item status: %w", err)
	}
	return nil
}

// CountFoundItems counts found items with the given status.
func CountFoundItems(ctx context.Context, db DBTX, status model.ItemStatus) (int, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM found_items WHERE status = ?`, status,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting found items: %w", err)
	}
	return count, nil
}

func scanFoundItem(row rowScanner) (*model.FoundItem, error) {
	item := &model.FoundItem{}
	var description, color sql.NullString
	err := row.Scan(&item.ID, &item.Category, &item.Name, &description, &color, &item.DateFound,
		&item.Location, &item.Status, &item.RegisteredBy, &item.HandInID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	item.Description = description.String
	item.Color = color.String
	return item, nil
}

func scanFoundItems(rows *sql.Rows) ([]model.FoundItem, error) {
	var items []model.FoundItem
	for rows.Next() {
		item, err := scanFoundItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning found item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}
