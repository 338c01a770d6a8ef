package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/najdeno/internal/model"
)

const claimColumns = `c.id, c.ticket_id, c.found_item_id, c.claimant_id, c.proof, c.status,
	c.reviewed_by, c.rejection_reason, c.created_at, c.updated_at, f.name AS item_name`

// CreateClaim inserts a PENDING claim.
func CreateClaim(ctx context.Context, db DBTX, c model.Claim) (*model.Claim, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO claims (ticket_id, found_item_id, claimant_id, proof, status)
		 VALUES (?, ?, ?, ?, ?)`,
		nullInt64(c.TicketID), c.FoundItemID, c.ClaimantID, c.Proof, model.ClaimStatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("creating claim: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting claim id: %w", err)
	}

	return GetClaim(ctx, db, id)
}

// GetClaim returns a claim by ID.
func GetClaim(ctx context.Context, db DBTX, id int64) (*model.Claim, error) {
	c, err := scanClaim(db.QueryRowContext(ctx,
		`SELECT `+claimColumns+`
		 FROM claims c
		 JOIN found_items f ON f.id = c.found_item_id
		 WHERE c.id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting claim: %w", err)
	}
	return c, nil
}

// ListClaims returns claims newest first, optionally filtered by claimant, item and status.
func ListClaims(ctx context.Context, db DBTX, claimantID, itemID int64, status model.ClaimStatus) ([]model.Claim, error) {
	query := `SELECT ` + claimColumns + `
	          FROM claims c
	          JOIN found_items f ON f.id = c.found_item_id
	          WHERE 1=1`
	var args []any

	if claimantID > 0 {
		query += ` AND c.claimant_id = ?`
		args = append(args, claimantID)
	}
	if itemID > 0 {
		query += ` AND c.found_item_id = ?`
		args = append(args, itemID)
	}
	if status != "" {
		query += ` AND c.status = ?`
		args = append(args, status)
	}

	query += ` ORDER BY c.created_at DESC, c.id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing claims: %w", err)
	}
	defer rows.Close()

	var claims []model.Claim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning claim: %w", err)
		}
		claims = append(claims, *c)
	}
	return claims, rows.Err()
}

// HasPendingClaim reports whether the claimant already has a PENDING claim on the item.
func HasPendingClaim(ctx context.Context, db DBTX, claimantID, itemID int64) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM claims WHERE claimant_id = ? AND found_item_id = ? AND status = ?`,
		claimantID, itemID, model.ClaimStatusPending,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking pending claims: %w", err)
	}
	return count > 0, nil
}

// ReviewClaim records a staff decision on a claim. An empty reason leaves any
// previous rejection reason in place.
func ReviewClaim(ctx context.Context, db DBTX, id int64, status model.ClaimStatus, reviewerID *int64, reason string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE claims
		 SET status = ?, reviewed_by = ?, rejection_reason = COALESCE(NULLIF(?, ''), rejection_reason),
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		status, nullInt64(reviewerID), reason, id,
	)
	if err != nil {
		return fmt.Errorf("reviewing claim: %w", err)
	}
	return nil
}

// RejectPendingSiblings rejects every PENDING claim on the item except exceptID,
// without stamping a reviewer or reason, and returns the affected claim ids.
func RejectPendingSiblings(ctx context.Context, db DBTX, itemID, exceptID int64) ([]int64, error) {
	rows, err := db.QueryContext(ctx,
		`UPDATE claims SET status = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE found_item_id = ? AND status = ? AND id <> ?
		 RETURNING id`,
		model.ClaimStatusRejected, itemID, model.ClaimStatusPending, exceptID,
	)
	if err != nil {
		return nil, fmt.Errorf("rejecting sibling claims: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning rejected claim id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CountClaims counts claims with the given status.
func CountClaims(ctx context.Context, db DBTX, status model.ClaimStatus) (int, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM claims WHERE status = ?`, status,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting claims: %w", err)
	}
	return count, nil
}

func scanClaim(row rowScanner) (*model.Claim, error) {
	c := &model.Claim{}
	var reason sql.NullString
	err := row.Scan(&c.ID, &c.TicketID, &c.FoundItemID, &c.ClaimantID, &c.Proof, &c.Status,
		&c.ReviewedBy, &reason, &c.CreatedAt, &c.UpdatedAt, &c.ItemName)
	if err != nil {
		return nil, err
	}
	c.RejectionReason = reason.String
	return c, nil
}
