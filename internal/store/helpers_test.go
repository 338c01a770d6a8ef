package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/erazemk/najdeno/internal/model"
)

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func mustUser(t *testing.T, database *sql.DB, username string, role model.Role) *model.User {
	t.Helper()
	u, err := CreateUser(context.Background(), database, username, "hash", role, "")
	if err != nil {
		t.Fatalf("CreateUser(%s): %v", username, err)
	}
	return u
}

func mustItem(t *testing.T, database *sql.DB, category model.Category, name, found string) *model.FoundItem {
	t.Helper()
	item, err := CreateFoundItem(context.Background(), database, model.FoundItem{
		Category:  category,
		Name:      name,
		DateFound: day(found),
		Location:  "Library",
	})
	if err != nil {
		t.Fatalf("CreateFoundItem(%s): %v", name, err)
	}
	return item
}

func mustTicket(t *testing.T, database *sql.DB, ownerID int64, category model.Category, name string) *model.LostTicket {
	t.Helper()
	ticket, err := CreateTicket(context.Background(), database, model.LostTicket{
		OwnerID:  ownerID,
		Category: category,
		Name:     name,
		DateLost: day("2026-09-01"),
		Location: "Cafeteria",
	})
	if err != nil {
		t.Fatalf("CreateTicket(%s): %v", name, err)
	}
	return ticket
}
