package ticket

import (
	"context"
	"errors"

	domain "ticketdesk/internal/domain/ticket"
)

// Store errors
var (
	// ErrNotFound is returned when no ticket matches the given id.
	ErrNotFound = errors.New("ticket not found")
	// ErrCorrupt is returned when the backing document cannot be parsed.
	// The collection is never silently treated as empty on corruption.
	ErrCorrupt = errors.New("ticket document is corrupt")
)

// Store persists the ticket collection. The collection is ordered
// newest-first: Create prepends, and GetAll returns the stored order.
//
// Mutations are whole-collection read-modify-write; implementations
// serialize writers so concurrent mutations cannot clobber each other.
type Store interface {
	// GetAll returns the full collection in stored order.
	GetAll(ctx context.Context) ([]domain.Ticket, error)
	// GetByID returns the ticket with the given id, or ErrNotFound.
	GetByID(ctx context.Context, id string) (domain.Ticket, error)
	// Create assigns id (stringified count+1) and createdAt, prepends the
	// ticket, and persists the collection.
	Create(ctx context.Context, fields domain.Fields) (domain.Ticket, error)
	// Update merges fields over the matching ticket and persists.
	// Returns ErrNotFound if no ticket matches.
	Update(ctx context.Context, id string, fields domain.Fields) (domain.Ticket, error)
	// Delete removes all tickets with the given id, preserving order.
	// Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error
	// Stats counts tickets by status.
	Stats(ctx context.Context) (domain.Stats, error)
	// Count returns the collection size.
	Count(ctx context.Context) (int, error)
	// ReplaceAll overwrites the collection wholesale. Used by seeding.
	ReplaceAll(ctx context.Context, tickets []domain.Ticket) error
}
