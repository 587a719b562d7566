package service

import (
	"context"
	"sync"

	"github.com/navidmash/support-ticket-api/internal/domain"
	"github.com/navidmash/support-ticket-api/internal/events"
	"github.com/navidmash/support-ticket-api/internal/repository"
)

// Fakes back the service tests with function fields so each test
// supplies only the behavior it needs. Unset functions panic, which
// surfaces unexpected repository calls immediately.

type fakeTicketRepo struct {
	CreateFn           func(ctx context.Context, ticket *domain.Ticket) error
	GetByIDFn          func(ctx context.Context, id int64) (*domain.Ticket, error)
	ListFn             func(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error)
	UpdateAssigneeFn   func(ctx context.Context, ticketID, assigneeID int64) error
	TransitionStatusFn func(ctx context.Context, log *domain.TicketStatusLog) (bool, error)
	DeleteFn           func(ctx context.Context, id int64) error
}

func (f *fakeTicketRepo) Create(ctx context.Context, ticket *domain.Ticket) error {
	return f.CreateFn(ctx, ticket)
}

func (f *fakeTicketRepo) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	return f.GetByIDFn(ctx, id)
}

func (f *fakeTicketRepo) List(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	return f.ListFn(ctx, filter)
}

func (f *fakeTicketRepo) UpdateAssignee(ctx context.Context, ticketID, assigneeID int64) error {
	return f.UpdateAssigneeFn(ctx, ticketID, assigneeID)
}

func (f *fakeTicketRepo) TransitionStatus(ctx context.Context, log *domain.TicketStatusLog) (bool, error) {
	return f.TransitionStatusFn(ctx, log)
}

func (f *fakeTicketRepo) Delete(ctx context.Context, id int64) error {
	return f.DeleteFn(ctx, id)
}

type fakeUserRepo struct {
	CreateFn     func(ctx context.Context, user *domain.User) error
	GetByIDFn    func(ctx context.Context, id int64) (*domain.User, error)
	GetByEmailFn func(ctx context.Context, email string) (*domain.User, error)
	ListFn       func(ctx context.Context, filter repository.UserFilter) ([]domain.User, error)
	CountFn      func(ctx context.Context, filter repository.UserFilter) (int, error)
}

func (f *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	return f.CreateFn(ctx, user)
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return f.GetByIDFn(ctx, id)
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return f.GetByEmailFn(ctx, email)
}

func (f *fakeUserRepo) List(ctx context.Context, filter repository.UserFilter) ([]domain.User, error) {
	return f.ListFn(ctx, filter)
}

func (f *fakeUserRepo) Count(ctx context.Context, filter repository.UserFilter) (int, error) {
	return f.CountFn(ctx, filter)
}

type fakeCommentRepo struct {
	CreateFn        func(ctx context.Context, comment *domain.TicketComment) error
	GetByIDFn       func(ctx context.Context, id int64) (*domain.TicketComment, error)
	UpdateFn        func(ctx context.Context, comment *domain.TicketComment) error
	DeleteFn        func(ctx context.Context, id int64) error
	ListByTicketFn  func(ctx context.Context, ticketID int64, limit, offset int) ([]domain.TicketComment, error)
	CountByTicketFn func(ctx context.Context, ticketID int64) (int, error)
}

func (f *fakeCommentRepo) Create(ctx context.Context, comment *domain.TicketComment) error {
	return f.CreateFn(ctx, comment)
}

func (f *fakeCommentRepo) GetByID(ctx context.Context, id int64) (*domain.TicketComment, error) {
	return f.GetByIDFn(ctx, id)
}

func (f *fakeCommentRepo) Update(ctx context.Context, comment *domain.TicketComment) error {
	return f.UpdateFn(ctx, comment)
}

func (f *fakeCommentRepo) Delete(ctx context.Context, id int64) error {
	return f.DeleteFn(ctx, id)
}

func (f *fakeCommentRepo) ListByTicket(ctx context.Context, ticketID int64, limit, offset int) ([]domain.TicketComment, error) {
	return f.ListByTicketFn(ctx, ticketID, limit, offset)
}

func (f *fakeCommentRepo) CountByTicket(ctx context.Context, ticketID int64) (int, error) {
	return f.CountByTicketFn(ctx, ticketID)
}

// recordingDispatcher captures published events for assertions.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) published() []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]events.Event, len(d.events))
	copy(out, d.events)
	return out
}

func int64Ptr(v int64) *int64 { return &v }
