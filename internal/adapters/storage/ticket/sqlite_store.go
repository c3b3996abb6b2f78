package ticket

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"ticketdesk/internal/adapters/storage"
	domain "ticketdesk/internal/domain/ticket"
)

const timeLayout = "2006-01-02T15:04:05Z07:00"

// SQLiteStore implements Store using SQLite. It keeps the document
// contract of the JSON backend: newest-first order via a decreasing
// position column, and ids assigned as stringified count+1.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const ticketColumns = `id, title, description, status, priority, assignee, created_at`

// GetAll returns all tickets ordered newest-first.
// POST: Returns the collection in position order
func (s *SQLiteStore) GetAll(ctx context.Context) ([]domain.Ticket, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+ticketColumns+` FROM ticket ORDER BY position ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := []domain.Ticket{}
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

// GetByID retrieves a ticket by id.
// PRE: id is non-empty
// POST: Returns the ticket or ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Ticket, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+ticketColumns+` FROM ticket WHERE id = ?`, id)
	t, err := scanTicket(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Ticket{}, ErrNotFound
	}
	return t, err
}

// Create assigns id and createdAt and inserts at the head of the order.
// PRE: fields have been validated
// POST: New ticket carries the smallest position (returned first by GetAll)
func (s *SQLiteStore) Create(ctx context.Context, fields domain.Fields) (domain.Ticket, error) {
	count, err := s.Count(ctx)
	if err != nil {
		return domain.Ticket{}, err
	}

	t := fields.Apply(domain.Ticket{
		ID:        strconv.Itoa(count + 1),
		CreatedAt: timeNow().UTC(),
	})

	// COALESCE covers the empty table; new rows go in front.
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO ticket (id, title, description, status, priority, assignee, created_at, position)
		 VALUES (?, ?, ?, ?, ?, ?, ?, COALESCE((SELECT MIN(position) FROM ticket), 1) - 1)
		 ON CONFLICT(id) DO UPDATE SET
		   title=excluded.title, description=excluded.description, status=excluded.status,
		   priority=excluded.priority, assignee=excluded.assignee,
		   created_at=excluded.created_at, position=excluded.position`,
		t.ID, t.Title, t.Description, t.Status, t.Priority, t.Assignee,
		t.CreatedAt.Format(timeLayout))
	if err != nil {
		return domain.Ticket{}, err
	}
	return t, nil
}

// Update merges fields over the matching ticket.
// PRE: fields have been validated
// POST: Returns the updated ticket, or ErrNotFound with the row untouched
func (s *SQLiteStore) Update(ctx context.Context, id string, fields domain.Fields) (domain.Ticket, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return domain.Ticket{}, err
	}

	updated := fields.Apply(existing)
	_, err = s.db.ExecContext(ctx,
		`UPDATE ticket SET title = ?, description = ?, status = ?, priority = ?, assignee = ?
		 WHERE id = ?`,
		updated.Title, updated.Description, updated.Status, updated.Priority, updated.Assignee, id)
	if err != nil {
		return domain.Ticket{}, err
	}
	return updated, nil
}

// Delete removes the ticket with the given id.
// POST: No ticket with the given id remains; unknown ids are a no-op
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM ticket WHERE id = ?`, id)
	return err
}

// Stats counts tickets by status.
func (s *SQLiteStore) Stats(ctx context.Context) (domain.Stats, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM ticket GROUP BY status`)
	if err != nil {
		return domain.Stats{}, err
	}
	defer rows.Close()

	var st domain.Stats
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return domain.Stats{}, err
		}
		st.Total += n
		switch status {
		case domain.StatusOpen:
			st.Open = n
		case domain.StatusInProgress:
			st.InProgress = n
		case domain.StatusClosed:
			st.Closed = n
		}
	}
	return st, rows.Err()
}

// Count returns the collection size.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ticket`).Scan(&n)
	return n, err
}

// ReplaceAll overwrites the collection wholesale; positions follow the
// given order so GetAll returns it unchanged.
// POST: GetAll returns exactly the given tickets in order
func (s *SQLiteStore) ReplaceAll(ctx context.Context, tickets []domain.Ticket) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM ticket`); err != nil {
		return err
	}
	for i, t := range tickets {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO ticket (id, title, description, status, priority, assignee, created_at, position)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.Title, t.Description, t.Status, t.Priority, t.Assignee,
			t.CreatedAt.Format(timeLayout), i)
		if err != nil {
			return err
		}
	}
	return nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicket(row rowScanner) (domain.Ticket, error) {
	var t domain.Ticket
	var createdAt string
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.Assignee, &createdAt); err != nil {
		return domain.Ticket{}, err
	}
	parsed, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("%w: bad created_at %q", ErrCorrupt, createdAt)
	}
	t.CreatedAt = parsed
	return t, nil
}

// Compile-time checks that both backends satisfy Store.
var (
	_ Store = (*JSONFileStore)(nil)
	_ Store = (*SQLiteStore)(nil)
)
