package ticket_test

import (
	"errors"
	"testing"
	"time"

	"ticketdesk/internal/domain/ticket"
)

// TestFields_Validate tests validation of ticket fields.
func TestFields_Validate(t *testing.T) {
	tests := []struct {
		name    string
		fields  ticket.Fields
		wantErr error
	}{
		{
			name:    "valid open low",
			fields:  ticket.Fields{Title: "Fix login bug", Status: ticket.StatusOpen, Priority: ticket.PriorityLow},
			wantErr: nil,
		},
		{
			name:    "valid in_progress high with assignee",
			fields:  ticket.Fields{Title: "Update dashboard", Description: "New design system", Status: ticket.StatusInProgress, Priority: ticket.PriorityHigh, Assignee: "Sarah Johnson"},
			wantErr: nil,
		},
		{
			name:    "valid closed medium",
			fields:  ticket.Fields{Title: "Export reports", Status: ticket.StatusClosed, Priority: ticket.PriorityMedium},
			wantErr: nil,
		},
		{
			name:    "empty title",
			fields:  ticket.Fields{Status: ticket.StatusOpen, Priority: ticket.PriorityLow},
			wantErr: ticket.ErrEmptyTitle,
		},
		{
			name:    "unknown status",
			fields:  ticket.Fields{Title: "t", Status: "resolved", Priority: ticket.PriorityLow},
			wantErr: ticket.ErrInvalidStatus,
		},
		{
			name:    "empty status",
			fields:  ticket.Fields{Title: "t", Status: "", Priority: ticket.PriorityLow},
			wantErr: ticket.ErrInvalidStatus,
		},
		{
			name:    "unknown priority",
			fields:  ticket.Fields{Title: "t", Status: ticket.StatusOpen, Priority: "urgent"},
			wantErr: ticket.ErrInvalidPriority,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fields.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestFields_Apply verifies the merge preserves identity fields.
func TestFields_Apply(t *testing.T) {
	created := time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)
	existing := ticket.Ticket{
		ID: "3", Title: "old", Description: "old desc",
		Status: ticket.StatusOpen, Priority: ticket.PriorityLow,
		Assignee: "Emma Williams", CreatedAt: created,
	}
	f := ticket.Fields{
		Title: "new", Description: "new desc",
		Status: ticket.StatusClosed, Priority: ticket.PriorityHigh, Assignee: "Michael Chen",
	}

	got := f.Apply(existing)

	if got.ID != "3" {
		t.Errorf("ID changed: got %q", got.ID)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt changed: got %v", got.CreatedAt)
	}
	if got.Title != "new" || got.Status != ticket.StatusClosed || got.Priority != ticket.PriorityHigh || got.Assignee != "Michael Chen" {
		t.Errorf("mutable fields not applied: %+v", got)
	}
}

// TestCountStats verifies stats invariants over a mixed collection.
func TestCountStats(t *testing.T) {
	tickets := []ticket.Ticket{
		{ID: "1", Status: ticket.StatusOpen},
		{ID: "2", Status: ticket.StatusInProgress},
		{ID: "3", Status: ticket.StatusClosed},
		{ID: "4", Status: ticket.StatusInProgress},
		{ID: "5", Status: ticket.StatusOpen},
	}

	s := ticket.CountStats(tickets)

	if s.Total != len(tickets) {
		t.Errorf("Total = %d, want %d", s.Total, len(tickets))
	}
	if s.Open != 2 || s.InProgress != 2 || s.Closed != 1 {
		t.Errorf("counts = %+v", s)
	}
	if s.Open+s.InProgress+s.Closed != s.Total {
		t.Errorf("status counts do not sum to total: %+v", s)
	}
}

// TestCountStats_Empty verifies the zero collection.
func TestCountStats_Empty(t *testing.T) {
	s := ticket.CountStats(nil)
	if s != (ticket.Stats{}) {
		t.Errorf("got %+v, want zero stats", s)
	}
}
