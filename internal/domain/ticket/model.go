package ticket

import (
	"errors"
	"time"
)

// Ticket statuses
const (
	StatusOpen       = "open"
	StatusInProgress = "in_progress"
	StatusClosed     = "closed"
)

// Ticket priorities
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// ValidStatuses contains all valid ticket statuses.
var ValidStatuses = []string{StatusOpen, StatusInProgress, StatusClosed}

// ValidPriorities contains all valid ticket priorities.
var ValidPriorities = []string{PriorityLow, PriorityMedium, PriorityHigh}

// Domain errors
var (
	ErrEmptyTitle      = errors.New("ticket title cannot be empty")
	ErrInvalidStatus   = errors.New("ticket status must be one of: open, in_progress, closed")
	ErrInvalidPriority = errors.New("ticket priority must be one of: low, medium, high")
)

// Ticket represents a support/work item with status and priority
// classification. JSON tags match the on-disk document format.
type Ticket struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"` // open, in_progress, closed
	Priority    string    `json:"priority"` // low, medium, high
	Assignee    string    `json:"assignee"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Fields carries the mutable ticket fields supplied on create and update.
// ID and CreatedAt are assigned by the store and never client-supplied.
type Fields struct {
	Title       string
	Description string
	Status      string
	Priority    string
	Assignee    string
}

// Validate checks the supplied fields. Unknown status or priority values
// are rejected rather than stored as arbitrary strings.
// PRE: Fields struct is populated
// POST: Returns nil if valid, error otherwise
func (f Fields) Validate() error {
	if f.Title == "" {
		return ErrEmptyTitle
	}
	if !isValidStatus(f.Status) {
		return ErrInvalidStatus
	}
	if !isValidPriority(f.Priority) {
		return ErrInvalidPriority
	}
	return nil
}

// Apply merges the mutable fields over an existing ticket.
// INVARIANT: ID and CreatedAt are preserved
func (f Fields) Apply(t Ticket) Ticket {
	t.Title = f.Title
	t.Description = f.Description
	t.Status = f.Status
	t.Priority = f.Priority
	t.Assignee = f.Assignee
	return t
}

// Stats holds status counts over a ticket collection.
type Stats struct {
	Total      int `json:"total"`
	Open       int `json:"open"`
	InProgress int `json:"in_progress"`
	Closed     int `json:"closed"`
}

// CountStats counts tickets by status.
// POST: Total equals len(tickets); Open+InProgress+Closed <= Total
func CountStats(tickets []Ticket) Stats {
	s := Stats{Total: len(tickets)}
	for _, t := range tickets {
		switch t.Status {
		case StatusOpen:
			s.Open++
		case StatusInProgress:
			s.InProgress++
		case StatusClosed:
			s.Closed++
		}
	}
	return s
}

func isValidStatus(s string) bool {
	for _, v := range ValidStatuses {
		if v == s {
			return true
		}
	}
	return false
}

func isValidPriority(p string) bool {
	for _, v := range ValidPriorities {
		if v == p {
			return true
		}
	}
	return false
}
