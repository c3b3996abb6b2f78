package orchestrators

import (
	"context"
	"log/slog"
	"time"

	domain "ticketdesk/internal/domain/ticket"
)

// TicketStoreForSeed defines the store interface needed by SeedTickets.
type TicketStoreForSeed interface {
	ReplaceAll(ctx context.Context, tickets []domain.Ticket) error
}

// SeedTicketsDeps holds dependencies for SeedTickets.
type SeedTicketsDeps struct {
	TicketStore TicketStoreForSeed

	// DocumentExisted reports whether the backing document (file, or
	// sqlite schema) was already present at startup. An existing
	// document is never reseeded, even when the collection it holds is
	// empty: a user who deleted every ticket keeps an empty tracker.
	DocumentExisted bool
}

// sampleTickets is the fixed seed collection written on first run.
func sampleTickets() []domain.Ticket {
	return []domain.Ticket{
		{
			ID:          "1",
			Title:       "Fix login authentication bug",
			Status:      domain.StatusOpen,
			Description: "Users are experiencing issues logging in with valid credentials. Need to investigate the authentication flow and session management.",
			Priority:    domain.PriorityHigh,
			Assignee:    "Sarah Johnson",
			CreatedAt:   time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC),
		},
		{
			ID:          "2",
			Title:       "Update dashboard UI components",
			Status:      domain.StatusInProgress,
			Description: "Modernize the dashboard interface with the new design system. Update colors, spacing, and component styles.",
			Priority:    domain.PriorityMedium,
			Assignee:    "Michael Chen",
			CreatedAt:   time.Date(2025, 1, 14, 14, 20, 0, 0, time.UTC),
		},
		{
			ID:          "3",
			Title:       "Add export functionality for reports",
			Status:      domain.StatusClosed,
			Description: "Allow users to export ticket data to CSV and PDF formats. Include filters for date range and status.",
			Priority:    domain.PriorityLow,
			Assignee:    "Emma Williams",
			CreatedAt:   time.Date(2025, 1, 10, 9, 15, 0, 0, time.UTC),
		},
		{
			ID:          "4",
			Title:       "Implement real-time notifications",
			Status:      domain.StatusInProgress,
			Description: "Add WebSocket support for real-time ticket updates and notifications. Show toast messages for new tickets.",
			Priority:    domain.PriorityHigh,
			Assignee:    "David Martinez",
			CreatedAt:   time.Date(2025, 1, 16, 11, 45, 0, 0, time.UTC),
		},
		{
			ID:          "5",
			Title:       "Optimize database queries",
			Status:      domain.StatusOpen,
			Description: "Improve performance of ticket listing and search queries. Add proper indexing and caching.",
			Priority:    domain.PriorityMedium,
			Assignee:    "Lisa Anderson",
			CreatedAt:   time.Date(2025, 1, 17, 8, 0, 0, 0, time.UTC),
		},
	}
}

// ExecuteSeedTickets writes the sample collection on first run.
// PRE: DocumentExisted reflects whether the backing document predates
// this process
// POST: A fresh document holds the five sample tickets; an existing one
// is left untouched regardless of its contents
func ExecuteSeedTickets(ctx context.Context, deps SeedTicketsDeps) error {
	if deps.DocumentExisted {
		return nil
	}
	if err := deps.TicketStore.ReplaceAll(ctx, sampleTickets()); err != nil {
		return err
	}
	slog.Info("ticket_event", "event", "seeded", "count", len(sampleTickets()))
	return nil
}
