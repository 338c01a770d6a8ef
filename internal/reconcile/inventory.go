package reconcile

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/erazemk/najdeno/internal/audit"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// FoundItemInput carries the staff-editable fields of a found item.
type FoundItemInput struct {
	Category    model.Category
	Name        string
	Description string
	Color       string
	DateFound   time.Time
	Location    string
	// Status is only honoured by UpdateFoundItem; empty keeps the current status.
	Status model.ItemStatus
}

func (in *FoundItemInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Location = strings.TrimSpace(in.Location)
	if !in.Category.Valid() {
		return invalid("category", "unknown category %q", in.Category)
	}
	if in.Name == "" {
		return invalid("name", "is required")
	}
	if in.Location == "" {
		return invalid("location", "is required")
	}
	if in.DateFound.IsZero() {
		return invalid("date_found", "is required")
	}
	if in.Status != "" && !in.Status.Valid() {
		return invalid("status", "unknown item status %q", in.Status)
	}
	return nil
}

// RegisterFoundItem adds an AVAILABLE item to inventory on behalf of staff.
func (s *Service) RegisterFoundItem(ctx context.Context, actor Actor, in FoundItemInput) (*model.FoundItem, error) {
	if err := RequireRole(actor, staffRoles...); err != nil {
		return nil, err
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}

	registeredBy := actor.UserID
	var item *model.FoundItem
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		item, err = store.CreateFoundItem(ctx, tx, model.FoundItem{
			Category:     in.Category,
			Name:         in.Name,
			Description:  in.Description,
			Color:        in.Color,
			DateFound:    in.DateFound,
			Location:     in.Location,
			Status:       model.ItemStatusAvailable,
			RegisteredBy: &registeredBy,
		})
		if err != nil {
			return err
		}
		return s.recorder.Record(ctx, tx, audit.FoundItemSaved(item, true))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("found item registered", "user", actor.UserID, "item", item.ID, "name", item.Name)
	return item, nil
}

// UpdateFoundItem edits an item. A CLAIMED or DONATED item cannot go back to AVAILABLE.
func (s *Service) UpdateFoundItem(ctx context.Context, actor Actor, id int64, in FoundItemInput) (*model.FoundItem, error) {
	if err := RequireRole(actor, staffRoles...); err != nil {
		return nil, err
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}

	var item *model.FoundItem
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		current, err := store.GetFoundItem(ctx, tx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return notFound("found item", id)
		}

		status := in.Status
		if status == "" {
			status = current.Status
		}
		if current.Status != model.ItemStatusAvailable && status == model.ItemStatusAvailable {
			return invalid("status", "a %s item cannot become available again", current.Status)
		}

		updated := *current
		updated.Category = in.Category
		updated.Name = in.Name
		updated.Description = in.Description
		updated.Color = in.Color
		updated.DateFound = in.DateFound
		updated.Location = in.Location
		updated.Status = status
		if err := store.UpdateFoundItem(ctx, tx, updated); err != nil {
			return err
		}

		item, err = store.GetFoundItem(ctx, tx, id)
		if err != nil {
			return err
		}
		return s.recorder.Record(ctx, tx, audit.FoundItemSaved(item, false))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("found item updated", "user", actor.UserID, "item", id, "status", item.Status)
	return item, nil
}

// SubmitHandIn records a finder's report. No account is needed.
func (s *Service) SubmitHandIn(ctx context.Context, r model.HandInReport) (*model.HandInReport, error) {
	r.FinderName = strings.TrimSpace(r.FinderName)
	r.Name = strings.TrimSpace(r.Name)
	r.Location = strings.TrimSpace(r.Location)
	if r.Category == "" {
		r.Category = model.CategoryOthers
	}
	switch {
	case r.FinderName == "":
		return nil, invalid("finder_name", "is required")
	case r.Name == "":
		return nil, invalid("name", "is required")
	case r.Location == "":
		return nil, invalid("location", "is required")
	case !r.Category.Valid():
		return nil, invalid("category", "unknown category %q", r.Category)
	}

	report, err := store.CreateHandIn(ctx, s.db, r)
	if err != nil {
		return nil, err
	}

	s.logger.Info("hand-in reported", "reference", report.ReferenceCode, "name", report.Name)
	return report, nil
}

// ReceiveHandIn converts a hand-in report into an AVAILABLE found item
// registered by the receiving staff member.
func (s *Service) ReceiveHandIn(ctx context.Context, actor Actor, reportID int64) (*model.FoundItem, error) {
	if err := RequireRole(actor, staffRoles...); err != nil {
		return nil, err
	}

	registeredBy := actor.UserID
	var item *model.FoundItem
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		report, err := store.GetHandIn(ctx, tx, reportID)
		if err != nil {
			return err
		}
		if report == nil {
			return notFound("hand-in report", reportID)
		}
		if report.Received {
			return invalid("report", "%s was already received", report.ReferenceCode)
		}

		reported := report.ReportedAt
		handInID := report.ID
		item, err = store.CreateFoundItem(ctx, tx, model.FoundItem{
			Category:     report.Category,
			Name:         report.Name,
			Description:  report.Description,
			Color:        report.Color,
			DateFound:    time.Date(reported.Year(), reported.Month(), reported.Day(), 0, 0, 0, 0, time.UTC),
			Location:     report.Location,
			Status:       model.ItemStatusAvailable,
			RegisteredBy: &registeredBy,
			HandInID:     &handInID,
		})
		if err != nil {
			return err
		}
		if err := store.MarkHandInReceived(ctx, tx, report.ID); err != nil {
			return err
		}
		return s.recorder.Record(ctx, tx, audit.FoundItemSaved(item, true))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("hand-in received", "user", actor.UserID, "report", reportID, "item", item.ID)
	return item, nil
}
