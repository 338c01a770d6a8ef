package reconcile

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/erazemk/najdeno/internal/audit"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// FallbackLimit caps the rule-based candidate list.
const FallbackLimit = 10

// Candidate is a found item suggested by the scorer, with its score as a
// percentage rounded to one decimal.
type Candidate struct {
	Item  model.FoundItem `json:"item"`
	Score float64         `json:"score"`
}

// Matches holds the candidates for one lost ticket. Ranked and Fallback are disjoint.
type Matches struct {
	Ticket   *model.LostTicket `json:"ticket"`
	Ranked   []Candidate       `json:"ranked"`
	Fallback []model.FoundItem `json:"fallback"`
}

// DisplayScore converts a raw score into a percentage with one decimal.
// NaN counts as no similarity.
func DisplayScore(score float64) float64 {
	if math.IsNaN(score) {
		return 0
	}
	score = math.Max(0, math.Min(1, score))
	return math.Round(score*1000) / 10
}

// keyword returns the first whitespace-separated token of a ticket name.
func keyword(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// FindMatches returns scorer-ranked and rule-based candidates for a ticket.
// A failing scorer leaves Ranked empty and is never reported to the caller.
func (s *Service) FindMatches(ctx context.Context, actor Actor, ticketID int64) (*Matches, error) {
	if err := RequireRole(actor, staffRoles...); err != nil {
		return nil, err
	}

	ticket, err := store.GetTicket(ctx, s.db, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return nil, notFound("ticket", ticketID)
	}

	ranked, err := s.rankedCandidates(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	exclude := make([]int64, len(ranked))
	for i, c := range ranked {
		exclude[i] = c.Item.ID
	}

	fallback, err := store.ListFallbackCandidates(ctx, s.db, ticket.Category, keyword(ticket.Name), exclude, FallbackLimit)
	if err != nil {
		return nil, err
	}

	s.metrics.Candidates(len(ranked), len(fallback))

	return &Matches{Ticket: ticket, Ranked: ranked, Fallback: fallback}, nil
}

// rankedCandidates asks the scorer for candidates and resolves them to
// available items, highest score first.
func (s *Service) rankedCandidates(ctx context.Context, ticketID int64) ([]Candidate, error) {
	scoreCtx, cancel := context.WithTimeout(ctx, s.scorerTimeout)
	start := time.Now()
	matches, err := s.scorer.Score(scoreCtx, ticketID)
	cancel()
	s.metrics.ScorerCall(time.Since(start), err)
	if err != nil {
		s.logger.Warn("match scorer failed, using fallback only",
			"ticket", ticketID, "error", fmt.Errorf("%w: %w", ErrExternalService, err))
		return nil, nil
	}

	ranked := make([]Candidate, 0, len(matches))
	seen := make(map[int64]bool, len(matches))
	for _, m := range matches {
		if seen[m.ItemID] {
			continue
		}
		seen[m.ItemID] = true

		item, err := store.GetFoundItem(ctx, s.db, m.ItemID)
		if err != nil {
			return nil, err
		}
		if item == nil {
			s.logger.Warn("scorer returned unknown item", "ticket", ticketID, "item", m.ItemID)
			continue
		}
		if item.Status != model.ItemStatusAvailable {
			s.logger.Warn("scorer returned unavailable item", "ticket", ticketID, "item", m.ItemID, "status", item.Status)
			continue
		}
		ranked = append(ranked, Candidate{Item: *item, Score: DisplayScore(m.Score)})
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	return ranked, nil
}

// ConfirmMatch links a ticket to a found item chosen by staff. The item is
// left untouched and no claim is created.
func (s *Service) ConfirmMatch(ctx context.Context, actor Actor, ticketID, itemID int64) (*model.LostTicket, error) {
	if err := RequireRole(actor, staffRoles...); err != nil {
		return nil, err
	}

	var ticket *model.LostTicket
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		current, err := store.GetTicket(ctx, tx, ticketID)
		if err != nil {
			return err
		}
		if current == nil {
			return notFound("ticket", ticketID)
		}

		item, err := store.GetFoundItem(ctx, tx, itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return notFound("found item", itemID)
		}

		if err := store.LinkTicket(ctx, tx, ticketID, model.TicketStatusMatchFound, itemID); err != nil {
			return err
		}

		ticket, err = store.GetTicket(ctx, tx, ticketID)
		if err != nil {
			return err
		}
		return s.recorder.Record(ctx, tx, audit.TicketUpdated(ticket)...)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("match confirmed", "user", actor.UserID, "ticket", ticketID, "item", itemID)
	return ticket, nil
}
