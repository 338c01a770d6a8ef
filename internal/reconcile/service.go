// Package reconcile implements the lost-and-found workflows: matching lost
// tickets to found items, linking claims to tickets and adjudicating claims.
//
// Every mutating operation runs in a single transaction together with the
// audit entries it produces.
package reconcile

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/erazemk/najdeno/internal/audit"
	"github.com/erazemk/najdeno/internal/metrics"
	"github.com/erazemk/najdeno/internal/scorer"
)

// DefaultScorerTimeout bounds a single scorer call.
const DefaultScorerTimeout = 3 * time.Second

// Options configures a Service. Zero values select defaults.
type Options struct {
	Scorer        scorer.Scorer
	Logger        *slog.Logger
	Metrics       *metrics.Metrics
	ScorerTimeout time.Duration
}

// Service runs reconciliation operations against the database.
type Service struct {
	db            *sql.DB
	scorer        scorer.Scorer
	recorder      *audit.Recorder
	logger        *slog.Logger
	metrics       *metrics.Metrics
	scorerTimeout time.Duration
}

func New(db *sql.DB, opts Options) *Service {
	s := &Service{
		db:            db,
		scorer:        opts.Scorer,
		logger:        opts.Logger,
		metrics:       opts.Metrics,
		scorerTimeout: opts.ScorerTimeout,
	}
	if s.scorer == nil {
		s.scorer = scorer.Nop{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.scorerTimeout <= 0 {
		s.scorerTimeout = DefaultScorerTimeout
	}
	s.recorder = audit.NewRecorder(s.logger, s.metrics)
	return s
}

// inTx runs fn in a transaction and commits when it returns nil.
func (s *Service) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
