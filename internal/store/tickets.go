package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/najdeno/internal/model"
)

const ticketColumns = `id, owner_id, category, name, description, color, date_lost, location, status,
	matched_item_id, created_at, updated_at`

// CreateTicket inserts a lost ticket in the SEARCHING state.
func CreateTicket(ctx context.Context, db DBTX, t model.LostTicket) (*model.LostTicket, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO lost_tickets (owner_id, category, name, description, color, date_lost, location)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.OwnerID, t.Category, t.Name, t.Description, t.Color, t.DateLost, t.Location,
	)
	if err != nil {
		return nil, fmt.Errorf("creating ticket: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting ticket id: %w", err)
	}

	return GetTicket(ctx, db, id)
}

// GetTicket returns a lost ticket by ID.
func GetTicket(ctx context.Context, db DBTX, id int64) (*model.LostTicket, error) {
	t, err := scanTicket(db.QueryRowContext(ctx,
		`SELECT `+ticketColumns+` FROM lost_tickets WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting ticket: %w", err)
	}
	return t, nil
}

// ListTickets returns tickets newest first, optionally filtered by owner and status.
func ListTickets(ctx context.Context, db DBTX, ownerID int64, status model.TicketStatus) ([]model.LostTicket, error) {
	query := `SELECT ` + ticketColumns + ` FROM lost_tickets WHERE 1=1`
	var args []any

	if ownerID > 0 {
		query += ` AND owner_id = ?`
		args = append(args, ownerID)
	}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}

	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing tickets: %w", err)
	}
	defer rows.Close()

	var tickets []model.LostTicket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning ticket: %w", err)
		}
		tickets = append(tickets, *t)
	}
	return tickets, rows.Err()
}

// FindOpenTicket returns the owner's oldest ticket in the given category that is
// still SEARCHING or MATCH_FOUND, or nil if there is none.
func FindOpenTicket(ctx context.Context, db DBTX, ownerID int64, category model.Category) (*model.LostTicket, error) {
	t, err := scanTicket(db.QueryRowContext(ctx,
		`SELECT `+ticketColumns+` FROM lost_tickets
		 WHERE owner_id = ? AND category = ? AND status IN (?, ?)
		 ORDER BY id LIMIT 1`,
		ownerID, category, model.TicketStatusSearching, model.TicketStatusMatchFound,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding open ticket: %w", err)
	}
	return t, nil
}

// LinkTicket points a ticket at a found item and moves it into a linked status.
func LinkTicket(ctx context.Context, db DBTX, id int64, status model.TicketStatus, itemID int64) error {
	if !status.Linked() {
		return fmt.Errorf("linking ticket: status %s cannot carry a matched item", status)
	}
	_, err := db.ExecContext(ctx,
		`UPDATE lost_tickets SET status = ?, matched_item_id = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		status, itemID, id,
	)
	if err != nil {
		return fmt.Errorf("linking ticket: %w", err)
	}
	return nil
}

// SetTicketStatus changes a ticket's status, leaving the matched item untouched.
// Only linked statuses are accepted; a ticket never returns to SEARCHING.
func SetTicketStatus(ctx context.Context, db DBTX, id int64, status model.TicketStatus) error {
	if !status.Linked() {
		return fmt.Errorf("setting ticket status: %s is not a linked status", status)
	}
	_, err := db.ExecContext(ctx,
		`UPDATE lost_tickets SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("setting ticket status: %w", err)
	}
	return nil
}

// CountTickets counts tickets with the given status.
func CountTickets(ctx context.Context, db DBTX, status model.TicketStatus) (int, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM lost_tickets WHERE status = ?`, status,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting tickets: %w", err)
	}
	return count, nil
}

func scanTicket(row rowScanner) (*model.LostTicket, error) {
	t := &model.LostTicket{}
	var description, color sql.NullString
	err := row.Scan(&t.ID, &t.OwnerID, &t.Category, &t.Name, &description, &color, &t.DateLost,
		&t.Location, &t.Status, &t.MatchedItemID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.Description = description.String
	t.Color = color.String
	return t, nil
}
