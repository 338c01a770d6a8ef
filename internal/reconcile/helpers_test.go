package reconcile

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/metrics"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/scorer"
	"github.com/erazemk/najdeno/internal/store"
)

type fixture struct {
	ctx   context.Context
	db    *sql.DB
	svc   *Service
	admin Actor
	staff Actor
	alice Actor
	bob   Actor
}

func newFixture(t *testing.T, sc scorer.Scorer) *fixture {
	t.Helper()
	database := db.NewTestDB(t)
	f := &fixture{
		ctx: context.Background(),
		db:  database,
		svc: New(database, Options{
			Scorer:        sc,
			Metrics:       metrics.New(prometheus.NewRegistry()),
			ScorerTimeout: 200 * time.Millisecond,
		}),
	}
	f.admin = f.user(t, "admin", model.RoleAdmin)
	f.staff = f.user(t, "staff", model.RoleStaff)
	f.alice = f.user(t, "alice", model.RoleStudent)
	f.bob = f.user(t, "bob", model.RoleStudent)
	return f
}

func (f *fixture) user(t *testing.T, name string, role model.Role) Actor {
	t.Helper()
	u, err := store.CreateUser(f.ctx, f.db, name, "hash", role, "")
	require.NoError(t, err)
	return Actor{UserID: u.ID, Role: u.Role}
}

func day(daysAgo int) time.Time {
	return time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -daysAgo)
}

func (f *fixture) item(t *testing.T, category model.Category, name string, daysAgo int) *model.FoundItem {
	t.Helper()
	item, err := store.CreateFoundItem(f.ctx, f.db, model.FoundItem{
		Category:     category,
		Name:         name,
		DateFound:    day(daysAgo),
		Location:     "Library",
		RegisteredBy: &f.staff.UserID,
	})
	require.NoError(t, err)
	return item
}

func (f *fixture) ticket(t *testing.T, owner Actor, category model.Category, name string) *model.LostTicket {
	t.Helper()
	ticket, err := store.CreateTicket(f.ctx, f.db, model.LostTicket{
		OwnerID:  owner.UserID,
		Category: category,
		Name:     name,
		DateLost: day(3),
		Location: "Cafeteria",
	})
	require.NoError(t, err)
	return ticket
}

func (f *fixture) auditEntries(t *testing.T) []model.AuditEntry {
	t.Helper()
	entries, err := store.ListAudit(f.ctx, f.db, store.AuditFilter{})
	require.NoError(t, err)
	return entries
}

func (f *fixture) getTicket(t *testing.T, id int64) *model.LostTicket {
	t.Helper()
	ticket, err := store.GetTicket(f.ctx, f.db, id)
	require.NoError(t, err)
	require.NotNil(t, ticket)
	return ticket
}

func (f *fixture) getItem(t *testing.T, id int64) *model.FoundItem {
	t.Helper()
	item, err := store.GetFoundItem(f.ctx, f.db, id)
	require.NoError(t, err)
	require.NotNil(t, item)
	return item
}

func (f *fixture) getClaim(t *testing.T, id int64) *model.Claim {
	t.Helper()
	c, err := store.GetClaim(f.ctx, f.db, id)
	require.NoError(t, err)
	require.NotNil(t, c)
	return c
}

// failAudit makes every audit append abort.
func (f *fixture) failAudit(t *testing.T) {
	t.Helper()
	_, err := f.db.Exec(`CREATE TRIGGER fail_audit BEFORE INSERT ON audit_log
		BEGIN SELECT RAISE(ABORT, 'audit log unavailable'); END`)
	require.NoError(t, err)
}

func fixedScores(matches ...scorer.Match) scorer.Scorer {
	return scorer.Func(func(context.Context, int64) ([]scorer.Match, error) {
		return matches, nil
	})
}
