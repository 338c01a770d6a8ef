package audit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/erazemk/najdeno/internal/metrics"
	"github.com/erazemk/najdeno/internal/store"
)

// Recorder appends events to the audit log.
type Recorder struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewRecorder returns a Recorder. A nil logger falls back to slog.Default.
func NewRecorder(logger *slog.Logger, m *metrics.Metrics) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{logger: logger, metrics: m}
}

// Record appends every event using db, normally the transaction that applied
// the transitions. The first failure is returned and the caller must roll back.
func (r *Recorder) Record(ctx context.Context, db store.DBTX, events ...Event) error {
	for _, e := range events {
		id, err := store.AppendAudit(ctx, db, e.Entry())
		if err != nil {
			return fmt.Errorf("recording %s for %s %d: %w", e.Action, e.TargetModel, e.TargetID, err)
		}
		r.metrics.AuditEntry(e.Action)
		r.logger.Debug("audit entry recorded", "entry", id, "action", e.Action,
			"target", e.TargetModel, "target_id", e.TargetID)
	}
	return nil
}
