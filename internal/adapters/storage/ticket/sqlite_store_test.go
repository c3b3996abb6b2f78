package ticket

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "modernc.org/sqlite"

	"ticketdesk/internal/adapters/storage"
	domain "ticketdesk/internal/domain/ticket"
)

func newSQLiteTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	created, err := storage.InitDB(db)
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	if !created {
		t.Fatal("InitDB on a fresh database did not report schema creation")
	}
	return NewSQLiteStore(db)
}

// TestInitDB_SecondRunReportsExistingSchema verifies the seeding
// trigger: only the call that creates the ticket table reports a fresh
// schema.
func TestInitDB_SecondRunReportsExistingSchema(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	created, err := storage.InitDB(db)
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	if !created {
		t.Error("first InitDB did not report schema creation")
	}

	created, err = storage.InitDB(db)
	if err != nil {
		t.Fatalf("second InitDB: %v", err)
	}
	if created {
		t.Error("second InitDB reported schema creation on an existing schema")
	}
}

// TestSQLiteStore_CreatePrepends verifies the position ordering keeps
// the document contract: newest first, id = count+1.
func TestSQLiteStore_CreatePrepends(t *testing.T) {
	s := newSQLiteTestStore(t)
	ctx := context.Background()

	first, err := s.Create(ctx, domain.Fields{Title: "first", Status: domain.StatusOpen, Priority: domain.PriorityLow})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	second, err := s.Create(ctx, domain.Fields{Title: "second", Status: domain.StatusInProgress, Priority: domain.PriorityHigh})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if first.ID != "1" || second.ID != "2" {
		t.Errorf("ids = %q, %q, want 1, 2", first.ID, second.ID)
	}

	tickets, err := s.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(tickets) != 2 || tickets[0].Title != "second" || tickets[1].Title != "first" {
		t.Errorf("order wrong: %+v", tickets)
	}
}

// TestSQLiteStore_UpdateAndDelete covers the mutation paths.
func TestSQLiteStore_UpdateAndDelete(t *testing.T) {
	s := newSQLiteTestStore(t)
	ctx := context.Background()
	created, _ := s.Create(ctx, domain.Fields{Title: "a", Status: domain.StatusOpen, Priority: domain.PriorityLow})

	updated, err := s.Update(ctx, created.ID, domain.Fields{
		Title: "a2", Status: domain.StatusClosed, Priority: domain.PriorityMedium, Assignee: "Bob",
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Status != domain.StatusClosed || !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("update result: %+v", updated)
	}

	if _, err := s.Update(ctx, "999", domain.Fields{Title: "x", Status: domain.StatusOpen, Priority: domain.PriorityLow}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update(999) = %v, want ErrNotFound", err)
	}

	if err := s.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.GetByID(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID after delete = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, "999"); err != nil {
		t.Errorf("Delete(999) = %v, want nil", err)
	}
}

// TestSQLiteStore_Stats verifies aggregate counting in SQL.
func TestSQLiteStore_Stats(t *testing.T) {
	s := newSQLiteTestStore(t)
	ctx := context.Background()
	s.Create(ctx, domain.Fields{Title: "a", Status: domain.StatusOpen, Priority: domain.PriorityLow})
	s.Create(ctx, domain.Fields{Title: "b", Status: domain.StatusOpen, Priority: domain.PriorityLow})
	s.Create(ctx, domain.Fields{Title: "c", Status: domain.StatusClosed, Priority: domain.PriorityLow})

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.Total != 3 || st.Open != 2 || st.InProgress != 0 || st.Closed != 1 {
		t.Errorf("stats = %+v", st)
	}
}
