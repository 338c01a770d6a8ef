package reconcile

import (
	"context"

	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// AuditLimit is how many entries the audit listing returns.
const AuditLimit = 100

// Stats are the staff dashboard counters.
type Stats struct {
	PendingClaims     int `json:"pending_claims"`
	AvailableItems    int `json:"available_items"`
	SearchingTickets  int `json:"searching_tickets"`
	UnreceivedHandIns int `json:"unreceived_hand_ins"`
}

func (s *Service) Stats(ctx context.Context, actor Actor) (*Stats, error) {
	if err := RequireRole(actor, staffRoles...); err != nil {
		return nil, err
	}

	var st Stats
	var err error
	if st.PendingClaims, err = store.CountClaims(ctx, s.db, model.ClaimStatusPending); err != nil {
		return nil, err
	}
	if st.AvailableItems, err = store.CountFoundItems(ctx, s.db, model.ItemStatusAvailable); err != nil {
		return nil, err
	}
	if st.SearchingTickets, err = store.CountTickets(ctx, s.db, model.TicketStatusSearching); err != nil {
		return nil, err
	}
	if st.UnreceivedHandIns, err = store.CountPendingHandIns(ctx, s.db); err != nil {
		return nil, err
	}
	return &st, nil
}

// AuditLog returns the most recent audit entries, optionally for one target.
func (s *Service) AuditLog(ctx context.Context, actor Actor, targetModel, targetID string) ([]model.AuditEntry, error) {
	if err := RequireRole(actor, model.RoleAdmin); err != nil {
		return nil, err
	}
	return store.ListAudit(ctx, s.db, store.AuditFilter{
		TargetModel: targetModel,
		TargetID:    targetID,
		Limit:       AuditLimit,
	})
}
