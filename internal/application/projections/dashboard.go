package projections

import (
	"context"

	domain "ticketdesk/internal/domain/ticket"
)

// TicketStoreForDashboard defines the store interface needed by GetDashboard.
type TicketStoreForDashboard interface {
	GetAll(ctx context.Context) ([]domain.Ticket, error)
	Stats(ctx context.Context) (domain.Stats, error)
}

// GetDashboardDeps holds dependencies for GetDashboard.
type GetDashboardDeps struct {
	TicketStore TicketStoreForDashboard
}

// GetDashboardResult carries the dashboard page data.
type GetDashboardResult struct {
	Tickets []domain.Ticket `json:"tickets"`
	Stats   domain.Stats    `json:"stats"`
}

// QueryGetDashboard loads the full collection and its aggregate stats.
// POST: Stats.Total equals len(Tickets)
func QueryGetDashboard(ctx context.Context, deps GetDashboardDeps) (GetDashboardResult, error) {
	tickets, err := deps.TicketStore.GetAll(ctx)
	if err != nil {
		return GetDashboardResult{}, err
	}
	stats, err := deps.TicketStore.Stats(ctx)
	if err != nil {
		return GetDashboardResult{}, err
	}
	return GetDashboardResult{Tickets: tickets, Stats: stats}, nil
}
