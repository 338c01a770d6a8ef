package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/erazemk/najdeno/internal/model"
)

const handInColumns = `id, reference_code, finder_name, finder_contact, category, name, description,
	color, location, reported_at, received, received_at`

// NewReferenceCode returns a short public code for a hand-in report, e.g. HND-1A2B3C4D.
func NewReferenceCode() string {
	return "HND-" + strings.ToUpper(uuid.NewString()[:8])
}

// CreateHandIn stores a hand-in report under a freshly generated reference code.
// An empty category defaults to OTHERS.
func CreateHandIn(ctx context.Context, db DBTX, r model.HandInReport) (*model.HandInReport, error) {
	if r.Category == "" {
		r.Category = model.CategoryOthers
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO hand_in_reports (reference_code, finder_name, finder_contact, category, name,
		                              description, color, location)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		NewReferenceCode(), r.FinderName, r.FinderContact, r.Category, r.Name,
		r.Description, r.Color, r.Location,
	)
	if err != nil {
		return nil, fmt.Errorf("creating hand-in report: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting hand-in report id: %w", err)
	}

	return GetHandIn(ctx, db, id)
}

// GetHandIn returns a hand-in report by ID.
func GetHandIn(ctx context.Context, db DBTX, id int64) (*model.HandInReport, error) {
	r, err := scanHandIn(db.QueryRowContext(ctx,
		`SELECT `+handInColumns+` FROM hand_in_reports WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting hand-in report: %w", err)
	}
	return r, nil
}

// ListHandIns returns hand-in reports newest first. If pendingOnly is set,
// reports already received into inventory are skipped.
func ListHandIns(ctx context.Context, db DBTX, pendingOnly bool) ([]model.HandInReport, error) {
	query := `SELECT ` + handInColumns + ` FROM hand_in_reports`
	if pendingOnly {
		query += ` WHERE received = 0`
	}
	query += ` ORDER BY reported_at DESC, id DESC`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing hand-in reports: %w", err)
	}
	defer rows.Close()

	var reports []model.HandInReport
	for rows.Next() {
		r, err := scanHandIn(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning hand-in report: %w", err)
		}
		reports = append(reports, *r)
	}
	return reports, rows.Err()
}

// MarkHandInReceived flags a report as converted into a found item.
func MarkHandInReceived(ctx context.Context, db DBTX, id int64) error {
	_, err := db.ExecContext(ctx,
		`UPDATE hand_in_reports SET received = 1, received_at = CURRENT_TIMESTAMP WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("marking hand-in report received: %w", err)
	}
	return nil
}

// CountPendingHandIns counts reports not yet received into inventory.
func CountPendingHandIns(ctx context.Context, db DBTX) (int, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM hand_in_reports WHERE received = 0`,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting hand-in reports: %w", err)
	}
	return count, nil
}

func scanHandIn(row rowScanner) (*model.HandInReport, error) {
	r := &model.HandInReport{}
	var finderName, finderContact sql.NullString
	err := row.Scan(&r.ID, &r.ReferenceCode, &finderName, &finderContact, &r.Category, &r.Name,
		&r.Description, &r.Color, &r.Location, &r.ReportedAt, &r.Received, &r.ReceivedAt)
	if err != nil {
		return nil, err
	}
	r.FinderName = finderName.String
	r.FinderContact = finderContact.String
	return r, nil
}
