package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/erazemk/najdeno/internal/model"
)

// AuditFilter narrows an audit listing. Zero values mean no filter.
type AuditFilter struct {
	TargetModel string
	TargetID    string
	Limit       int
}

// AppendAudit appends one audit entry. Audit entries are never updated or deleted.
func AppendAudit(ctx context.Context, db DBTX, e model.AuditEntry) (int64, error) {
	changes := e.Changes
	if changes == nil {
		changes = map[string]any{}
	}
	data, err := json.Marshal(changes)
	if err != nil {
		return 0, fmt.Errorf("encoding audit changes: %w", err)
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO audit_log (actor_id, action, target_model, target_id, changes)
		 VALUES (?, ?, ?, ?, ?)`,
		nullInt64(e.ActorID), e.Action, e.TargetModel, e.TargetID, string(data),
	)
	if err != nil {
		return 0, fmt.Errorf("appending audit entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting audit entry id: %w", err)
	}
	return id, nil
}

// ListAudit returns audit entries, newest first.
func ListAudit(ctx context.Context, db DBTX, filter AuditFilter) ([]model.AuditEntry, error) {
	query := `SELECT a.id, a.actor_id, a.action, a.target_model, a.target_id, a.timestamp, a.changes,
	                 COALESCE(u.username, '') AS actor_name
	          FROM audit_log a
	          LEFT JOIN users u ON u.id = a.actor_id
	          WHERE 1=1`
	var args []any

	if filter.TargetModel != "" {
		query += ` AND a.target_model = ?`
		args = append(args, filter.TargetModel)
	}
	if filter.TargetID != "" {
		query += ` AND a.target_id = ?`
		args = append(args, filter.TargetID)
	}

	query += ` ORDER BY a.id DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing audit entries: %w", err)
	}
	defer rows.Close()

	var entries []model.AuditEntry
	for rows.Next() {
		var e model.AuditEntry
		var changes string
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.TargetModel, &e.TargetID, &e.Timestamp,
			&changes, &e.ActorName); err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", err)
		}
		if err := json.Unmarshal([]byte(changes), &e.Changes); err != nil {
			return nil, fmt.Errorf("decoding audit changes for entry %d: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CountAudit returns the number of audit entries.
func CountAudit(ctx context.Context, db DBTX) (int, error) {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_log`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting audit entries: %w", err)
	}
	return count, nil
}
