package orchestrators

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"ticketdesk/internal/adapters/email"
	domain "ticketdesk/internal/domain/ticket"
)

// mockTicketStore implements the orchestrator store interfaces in memory.
type mockTicketStore struct {
	tickets   []domain.Ticket
	createErr error
	updateErr error
}

// Create implements the mock ticket store for testing.
// PRE: valid parameters
// POST: returns expected result
func (m *mockTicketStore) Create(ctx context.Context, fields domain.Fields) (domain.Ticket, error) {
	if m.createErr != nil {
		return domain.Ticket{}, m.createErr
	}
	t := fields.Apply(domain.Ticket{ID: strconv.Itoa(len(m.tickets) + 1)})
	m.tickets = append([]domain.Ticket{t}, m.tickets...)
	return t, nil
}

// Update implements the mock ticket store for testing.
// PRE: valid parameters
// POST: returns expected result
func (m *mockTicketStore) Update(ctx context.Context, id string, fields domain.Fields) (domain.Ticket, error) {
	if m.updateErr != nil {
		return domain.Ticket{}, m.updateErr
	}
	for i, t := range m.tickets {
		if t.ID == id {
			m.tickets[i] = fields.Apply(t)
			return m.tickets[i], nil
		}
	}
	return domain.Ticket{}, errors.New("ticket not found")
}

// Delete implements the mock ticket store for testing.
// PRE: valid parameters
// POST: returns expected result
func (m *mockTicketStore) Delete(ctx context.Context, id string) error {
	kept := m.tickets[:0]
	for _, t := range m.tickets {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	m.tickets = kept
	return nil
}

// ReplaceAll implements the mock ticket store for testing.
func (m *mockTicketStore) ReplaceAll(ctx context.Context, tickets []domain.Ticket) error {
	m.tickets = tickets
	return nil
}

// recordingSender captures send requests for assertions.
type recordingSender struct {
	sent []email.SendRequest
	err  error
}

// Send implements email.Sender for testing.
func (s *recordingSender) Send(ctx context.Context, req email.SendRequest) (email.SendResult, error) {
	s.sent = append(s.sent, req)
	return email.SendResult{MessageID: "test"}, s.err
}

func validFields() domain.Fields {
	return domain.Fields{Title: "X", Status: domain.StatusOpen, Priority: domain.PriorityLow, Assignee: "Bob"}
}

// TestExecuteCreateTicket_Valid verifies creation through the orchestrator.
func TestExecuteCreateTicket_Valid(t *testing.T) {
	store := &mockTicketStore{}
	created, err := ExecuteCreateTicket(context.Background(), validFields(), CreateTicketDeps{TicketStore: store})
	if err != nil {
		t.Fatalf("ExecuteCreateTicket: %v", err)
	}
	if created.ID != "1" || created.Title != "X" {
		t.Errorf("created = %+v", created)
	}
	if len(store.tickets) != 1 {
		t.Errorf("store holds %d tickets, want 1", len(store.tickets))
	}
}

// TestExecuteCreateTicket_Invalid verifies validation short-circuits the store.
func TestExecuteCreateTicket_Invalid(t *testing.T) {
	store := &mockTicketStore{}
	_, err := ExecuteCreateTicket(context.Background(), domain.Fields{Status: "bogus"}, CreateTicketDeps{TicketStore: store})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if len(store.tickets) != 0 {
		t.Error("invalid fields reached the store")
	}
}

// TestExecuteCreateTicket_HighPriorityNotifies verifies the email path.
func TestExecuteCreateTicket_HighPriorityNotifies(t *testing.T) {
	store := &mockTicketStore{}
	sender := &recordingSender{}
	deps := CreateTicketDeps{
		TicketStore:   store,
		EmailSender:   sender,
		NotifyAddress: "oncall@example.com",
	}

	fields := validFields()
	fields.Priority = domain.PriorityHigh
	if _, err := ExecuteCreateTicket(context.Background(), fields, deps); err != nil {
		t.Fatalf("ExecuteCreateTicket: %v", err)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("sent %d emails, want 1", len(sender.sent))
	}
	if sender.sent[0].To[0] != "oncall@example.com" {
		t.Errorf("recipient = %v", sender.sent[0].To)
	}
}

// TestExecuteCreateTicket_LowPriorityNoEmail verifies only high priority notifies.
func TestExecuteCreateTicket_LowPriorityNoEmail(t *testing.T) {
	sender := &recordingSender{}
	deps := CreateTicketDeps{
		TicketStore:   &mockTicketStore{},
		EmailSender:   sender,
		NotifyAddress: "oncall@example.com",
	}
	if _, err := ExecuteCreateTicket(context.Background(), validFields(), deps); err != nil {
		t.Fatal(err)
	}
	if len(sender.sent) != 0 {
		t.Errorf("sent %d emails, want 0", len(sender.sent))
	}
}

// TestExecuteCreateTicket_NotifyFailureIsSwallowed verifies a send error
// does not fail the creation.
func TestExecuteCreateTicket_NotifyFailureIsSwallowed(t *testing.T) {
	sender := &recordingSender{err: errors.New("provider down")}
	deps := CreateTicketDeps{
		TicketStore:   &mockTicketStore{},
		EmailSender:   sender,
		NotifyAddress: "oncall@example.com",
	}
	fields := validFields()
	fields.Priority = domain.PriorityHigh

	if _, err := ExecuteCreateTicket(context.Background(), fields, deps); err != nil {
		t.Errorf("creation failed on notify error: %v", err)
	}
}

// TestExecuteUpdateTicket covers validation and passthrough.
func TestExecuteUpdateTicket(t *testing.T) {
	store := &mockTicketStore{}
	created, _ := store.Create(context.Background(), validFields())

	fields := validFields()
	fields.Status = domain.StatusClosed
	updated, err := ExecuteUpdateTicket(context.Background(), created.ID, fields, UpdateTicketDeps{TicketStore: store})
	if err != nil {
		t.Fatalf("ExecuteUpdateTicket: %v", err)
	}
	if updated.Status != domain.StatusClosed {
		t.Errorf("status = %q", updated.Status)
	}

	if _, err := ExecuteUpdateTicket(context.Background(), created.ID, domain.Fields{}, UpdateTicketDeps{TicketStore: store}); err == nil {
		t.Error("expected validation error for empty fields")
	}
}

// TestExecuteDeleteTicket verifies delegation.
func TestExecuteDeleteTicket(t *testing.T) {
	store := &mockTicketStore{}
	created, _ := store.Create(context.Background(), validFields())

	if err := ExecuteDeleteTicket(context.Background(), created.ID, DeleteTicketDeps{TicketStore: store}); err != nil {
		t.Fatalf("ExecuteDeleteTicket: %v", err)
	}
	if len(store.tickets) != 0 {
		t.Errorf("store holds %d tickets, want 0", len(store.tickets))
	}
}

// TestExecuteSeedTickets_FreshDocument verifies first-run seeding.
func TestExecuteSeedTickets_FreshDocument(t *testing.T) {
	store := &mockTicketStore{}
	deps := SeedTicketsDeps{TicketStore: store, DocumentExisted: false}

	if err := ExecuteSeedTickets(context.Background(), deps); err != nil {
		t.Fatalf("ExecuteSeedTickets: %v", err)
	}
	if len(store.tickets) != 5 {
		t.Fatalf("seeded %d tickets, want 5", len(store.tickets))
	}
	if store.tickets[0].ID != "1" || store.tickets[0].Title != "Fix login authentication bug" {
		t.Errorf("first sample = %+v", store.tickets[0])
	}
}

// TestExecuteSeedTickets_ExistingDocument verifies that an existing
// document is never reseeded, even when its collection is empty. A user
// who deleted every ticket keeps an empty tracker across restarts.
func TestExecuteSeedTickets_ExistingDocument(t *testing.T) {
	store := &mockTicketStore{}
	deps := SeedTicketsDeps{TicketStore: store, DocumentExisted: true}

	if err := ExecuteSeedTickets(context.Background(), deps); err != nil {
		t.Fatal(err)
	}
	if len(store.tickets) != 0 {
		t.Errorf("existing empty document was reseeded: %d tickets, want 0", len(store.tickets))
	}

	store.tickets = sampleTickets()[:2]
	if err := ExecuteSeedTickets(context.Background(), deps); err != nil {
		t.Fatal(err)
	}
	if len(store.tickets) != 2 {
		t.Errorf("existing document reseeded: %d tickets, want 2", len(store.tickets))
	}
}
