package orchestrators

import (
	"context"
	"fmt"
	"log/slog"

	"ticketdesk/internal/adapters/email"
	domain "ticketdesk/internal/domain/ticket"
)

// TicketStoreForWrite defines the store interface needed by the ticket
// orchestrators.
type TicketStoreForWrite interface {
	Create(ctx context.Context, fields domain.Fields) (domain.Ticket, error)
	Update(ctx context.Context, id string, fields domain.Fields) (domain.Ticket, error)
	Delete(ctx context.Context, id string) error
}

// CreateTicketDeps holds dependencies for CreateTicket.
type CreateTicketDeps struct {
	TicketStore TicketStoreForWrite

	// Optional notification plumbing: when a high-priority ticket is
	// created and NotifyAddress is set, an email goes out best-effort.
	EmailSender   email.Sender
	NotifyAddress string
	ReplyTo       string
}

// ExecuteCreateTicket validates the fields and persists a new ticket.
// PRE: fields carry the client-submitted values
// POST: Ticket is prepended to the collection; high-priority tickets
// trigger a best-effort notification email
func ExecuteCreateTicket(ctx context.Context, fields domain.Fields, deps CreateTicketDeps) (domain.Ticket, error) {
	if err := fields.Validate(); err != nil {
		return domain.Ticket{}, err
	}

	created, err := deps.TicketStore.Create(ctx, fields)
	if err != nil {
		return domain.Ticket{}, err
	}
	slog.Info("ticket_event", "event", "created", "id", created.ID, "priority", created.Priority)

	if created.Priority == domain.PriorityHigh && deps.NotifyAddress != "" && deps.EmailSender != nil {
		notifyHighPriority(ctx, deps, created)
	}
	return created, nil
}

// notifyHighPriority sends the notification email. Failures are logged,
// never surfaced: ticket creation already succeeded.
func notifyHighPriority(ctx context.Context, deps CreateTicketDeps, t domain.Ticket) {
	req := email.SendRequest{
		To:      []string{deps.NotifyAddress},
		Subject: fmt.Sprintf("High priority ticket #%s: %s", t.ID, t.Title),
		HTML: fmt.Sprintf("<p>A high priority ticket was created.</p><p><strong>%s</strong></p><p>Assignee: %s</p>",
			t.Title, t.Assignee),
		ReplyTo: deps.ReplyTo,
	}
	if _, err := deps.EmailSender.Send(ctx, req); err != nil {
		slog.Error("ticket_notify_failed", "id", t.ID, "error", err)
	}
}

// UpdateTicketDeps holds dependencies for UpdateTicket.
type UpdateTicketDeps struct {
	TicketStore TicketStoreForWrite
}

// ExecuteUpdateTicket validates the fields and merges them over the
// matching ticket.
// POST: Returns the updated ticket; store errors (including not-found)
// pass through
func ExecuteUpdateTicket(ctx context.Context, id string, fields domain.Fields, deps UpdateTicketDeps) (domain.Ticket, error) {
	if err := fields.Validate(); err != nil {
		return domain.Ticket{}, err
	}

	updated, err := deps.TicketStore.Update(ctx, id, fields)
	if err != nil {
		return domain.Ticket{}, err
	}
	slog.Info("ticket_event", "event", "updated", "id", id)
	return updated, nil
}

// DeleteTicketDeps holds dependencies for DeleteTicket.
type DeleteTicketDeps struct {
	TicketStore TicketStoreForWrite
}

// ExecuteDeleteTicket removes all tickets with the given id.
// POST: Unknown ids are a silent no-op, matching store semantics
func ExecuteDeleteTicket(ctx context.Context, id string, deps DeleteTicketDeps) error {
	if err := deps.TicketStore.Delete(ctx, id); err != nil {
		return err
	}
	slog.Info("ticket_event", "event", "deleted", "id", id)
	return nil
}
