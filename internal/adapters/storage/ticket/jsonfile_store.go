package ticket

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/natefinch/atomic"

	domain "ticketdesk/internal/domain/ticket"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// JSONFileStore implements Store over a single JSON document holding the
// full ticket array. Every mutation is a whole-file read-modify-write;
// a mutex enforces the single-writer discipline so concurrent mutations
// cannot lose updates. Writes are atomic (write-to-temp then rename).
type JSONFileStore struct {
	mu      sync.Mutex
	path    string
	existed bool
}

// NewJSONFileStore creates a store backed by the document at path.
// The parent directory is created if missing; a missing file reads as
// an empty collection.
func NewJSONFileStore(path string) (*JSONFileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	_, err := os.Stat(path)
	return &JSONFileStore{path: path, existed: err == nil}, nil
}

// DocumentExisted reports whether the backing document was already on
// disk when the store was opened. Seeding keys off presence, not
// emptiness: a document holding [] counts as existing.
func (s *JSONFileStore) DocumentExisted() bool {
	return s.existed
}

// load reads and parses the full collection. Callers must hold mu when
// the result feeds a mutation.
func (s *JSONFileStore) load() ([]domain.Ticket, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return []domain.Ticket{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read ticket document: %w", err)
	}
	var tickets []domain.Ticket
	if err := json.Unmarshal(data, &tickets); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return tickets, nil
}

// save persists the full collection atomically. Callers must hold mu.
func (s *JSONFileStore) save(tickets []domain.Ticket) error {
	data, err := json.MarshalIndent(tickets, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode ticket document: %w", err)
	}
	if err := atomic.WriteFile(s.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write ticket document: %w", err)
	}
	return nil
}

// GetAll returns the full collection in stored order (newest first).
// PRE: none
// POST: Returns the collection, or ErrCorrupt if the document is unparseable
func (s *JSONFileStore) GetAll(ctx context.Context) ([]domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// GetByID scans the collection for an exact id match.
// PRE: id is non-empty
// POST: Returns the ticket or ErrNotFound
func (s *JSONFileStore) GetByID(ctx context.Context, id string) (domain.Ticket, error) {
	tickets, err := s.GetAll(ctx)
	if err != nil {
		return domain.Ticket{}, err
	}
	for _, t := range tickets {
		if t.ID == id {
			return t, nil
		}
	}
	return domain.Ticket{}, ErrNotFound
}

// Create assigns id and createdAt, prepends, and persists.
// The id is the stringified collection count plus one. After deletions
// the count can land on an id still in use, so two tickets may share an
// id; the adjacent test pins that behavior.
// PRE: fields have been validated
// POST: Collection size increases by one; new ticket is first
func (s *JSONFileStore) Create(ctx context.Context, fields domain.Fields) (domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tickets, err := s.load()
	if err != nil {
		return domain.Ticket{}, err
	}

	t := fields.Apply(domain.Ticket{
		ID:        strconv.Itoa(len(tickets) + 1),
		CreatedAt: timeNow().UTC(),
	})
	tickets = append([]domain.Ticket{t}, tickets...)

	if err := s.save(tickets); err != nil {
		return domain.Ticket{}, err
	}
	return t, nil
}

// Update merges fields over the matching ticket and persists.
// PRE: fields have been validated
// POST: Returns the updated ticket, or ErrNotFound with the document untouched
func (s *JSONFileStore) Update(ctx context.Context, id string, fields domain.Fields) (domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tickets, err := s.load()
	if err != nil {
		return domain.Ticket{}, err
	}

	for i, t := range tickets {
		if t.ID == id {
			tickets[i] = fields.Apply(t)
			if err := s.save(tickets); err != nil {
				return domain.Ticket{}, err
			}
			return tickets[i], nil
		}
	}
	return domain.Ticket{}, ErrNotFound
}

// Delete removes all tickets with the given id, preserving order.
// POST: No ticket with the given id remains; unknown ids are a no-op
func (s *JSONFileStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tickets, err := s.load()
	if err != nil {
		return err
	}

	kept := tickets[:0]
	for _, t := range tickets {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	return s.save(kept)
}

// Stats counts tickets by status over the current collection.
func (s *JSONFileStore) Stats(ctx context.Context) (domain.Stats, error) {
	tickets, err := s.GetAll(ctx)
	if err != nil {
		return domain.Stats{}, err
	}
	return domain.CountStats(tickets), nil
}

// Count returns the collection size.
func (s *JSONFileStore) Count(ctx context.Context) (int, error) {
	tickets, err := s.GetAll(ctx)
	if err != nil {
		return 0, err
	}
	return len(tickets), nil
}

// ReplaceAll overwrites the document with the given collection.
// POST: GetAll returns exactly the given tickets in order
func (s *JSONFileStore) ReplaceAll(ctx context.Context, tickets []domain.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(tickets)
}
