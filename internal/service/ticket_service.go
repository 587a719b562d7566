package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/navidmash/support-ticket-api/internal/domain"
	"github.com/navidmash/support-ticket-api/internal/events"
	"github.com/navidmash/support-ticket-api/internal/lifecycle"
	"github.com/navidmash/support-ticket-api/internal/policy"
	"github.com/navidmash/support-ticket-api/internal/repository"
	apperrors "github.com/navidmash/support-ticket-api/pkg/util/errorutil"
)

const (
	minTitleLen       = 5
	minDescriptionLen = 10
)

// transitionRetries bounds the re-read loop when the conditional
// status update loses a race. Each retry re-runs policy and lifecycle
// checks against the fresh status.
const transitionRetries = 3

// TicketService coordinates ticket workflows: creation, role-scoped
// listing, assignment, lifecycle transitions, deletion.
type TicketService struct {
	tickets    repository.TicketRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	now        func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
	// Now overrides the clock, test use only.
	Now func() time.Time
}

// TicketCreateInput describes ticket creation payload. Priority is
// the raw literal; empty defaults to MEDIUM.
type TicketCreateInput struct {
	Title       string
	Description string
	Priority    string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		now:        now,
	}
}

// Create opens a new ticket in status OPEN owned by the caller.
// SUPPORT may not create tickets.
func (s *TicketService) Create(ctx context.Context, actor domain.Identity, input TicketCreateInput) (*domain.Ticket, error) {
	if !policy.CanCreateTicket(actor.Role) {
		return nil, apperrors.NewForbidden("SUPPORT role cannot create tickets")
	}

	priority := domain.TicketPriorityMedium
	if raw := strings.ToUpper(strings.TrimSpace(input.Priority)); raw != "" {
		parsed, ok := domain.ParseTicketPriority(raw)
		if !ok {
			return nil, apperrors.NewValidationError("priority must be one of: LOW, MEDIUM, HIGH", nil)
		}
		priority = parsed
	}

	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if utf8.RuneCountInString(title) < minTitleLen {
		return nil, apperrors.NewValidationError("title must be at least 5 characters", nil)
	}
	if utf8.RuneCountInString(description) < minDescriptionLen {
		return nil, apperrors.NewValidationError("description must be at least 10 characters", nil)
	}

	ticket := &domain.Ticket{
		Title:       title,
		Description: description,
		Status:      domain.TicketStatusOpen,
		Priority:    priority,
		CreatedBy:   actor.UserID,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    eventActor(actor),
		Payload: events.TicketCreatedPayload{
			Title:    ticket.Title,
			Priority: ticket.Priority,
		},
	})
	return s.getTicket(ctx, ticket.ID)
}

// List returns tickets visible to the caller: all for MANAGER,
// assigned for SUPPORT, own for USER. Ordered ascending by id.
func (s *TicketService) List(ctx context.Context, actor domain.Identity) ([]domain.Ticket, error) {
	filter := repository.TicketFilter{}
	switch actor.Role {
	case domain.RoleManager:
	case domain.RoleSupport:
		id := actor.UserID
		filter.AssignedTo = &id
	default:
		id := actor.UserID
		filter.CreatedBy = &id
	}

	tickets, err := s.tickets.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// Get returns a single ticket after the visibility check.
func (s *TicketService) Get(ctx context.Context, actor domain.Identity, ticketID int64) (*domain.Ticket, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !policy.CanViewTicket(actor, ticket) {
		return nil, apperrors.NewForbidden("you do not have permission to view this ticket")
	}
	return ticket, nil
}

// Assign sets or replaces the ticket assignee. The target must exist
// and must not hold role USER. Assignment is repeatable and produces
// no audit log entry; only status transitions are logged.
func (s *TicketService) Assign(ctx context.Context, actor domain.Identity, ticketID, assigneeID int64) (*domain.Ticket, error) {
	if !policy.CanAssignTicket(actor.Role) {
		return nil, apperrors.NewForbidden("USER role cannot assign tickets")
	}

	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	assignee, err := s.users.GetByID(ctx, assigneeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": assigneeID})
		}
		return nil, apperrors.MapError(err)
	}
	if assignee.Role == domain.RoleUser {
		return nil, apperrors.NewInvalidAssignee(assignee.ID)
	}

	prev := ticket.AssignedTo
	if err := s.tickets.UpdateAssignee(ctx, ticket.ID, assignee.ID); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticket.ID,
		Actor:    eventActor(actor),
		Payload: events.TicketAssignedPayload{
			AssigneeID:   assignee.ID,
			PrevAssignee: prev,
		},
	})
	return s.getTicket(ctx, ticket.ID)
}

// UpdateStatus advances the ticket along the linear lifecycle and
// writes the audit log entry in the same transaction. SUPPORT may
// only transition tickets assigned to them.
func (s *TicketService) UpdateStatus(ctx context.Context, actor domain.Identity, ticketID int64, rawStatus string) (*domain.Ticket, error) {
	if actor.Role == domain.RoleUser {
		return nil, apperrors.NewForbidden("USER role cannot update ticket status")
	}

	requested, ok := domain.ParseTicketStatus(rawStatus)
	if !ok {
		return nil, apperrors.NewValidationError("status must be one of: OPEN, IN_PROGRESS, RESOLVED, CLOSED", nil)
	}

	for attempt := 0; attempt < transitionRetries; attempt++ {
		ticket, err := s.getTicket(ctx, ticketID)
		if err != nil {
			return nil, err
		}
		if !policy.CanUpdateStatus(actor, ticket) {
			return nil, apperrors.NewForbidden("you can only update tickets assigned to you")
		}
		if err := lifecycle.ValidateTransition(ticket.Status, requested); err != nil {
			return nil, mapLifecycleError(err)
		}

		log := lifecycle.NewStatusLog(ticket.ID, ticket.Status, requested, actor.UserID, s.now())
		committed, err := s.tickets.TransitionStatus(ctx, &log)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		if !committed {
			// Lost the conditional update; loop re-reads and validates
			// against the fresh status.
			continue
		}

		s.publish(ctx, events.Event{
			Type:     events.EventTicketStatusChanged,
			TicketID: ticket.ID,
			Actor:    eventActor(actor),
			Payload: events.TicketStatusChangedPayload{
				OldStatus: log.OldStatus,
				NewStatus: log.NewStatus,
			},
		})
		return s.getTicket(ctx, ticket.ID)
	}
	return nil, apperrors.NewInternalError(errors.New("status transition contention"))
}

// Delete removes a ticket along with its comments and status logs.
// MANAGER only.
func (s *TicketService) Delete(ctx context.Context, actor domain.Identity, ticketID int64) error {
	if !policy.CanDeleteTicket(actor.Role) {
		return apperrors.NewForbidden("only MANAGER can delete tickets")
	}

	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return err
	}
	if err := s.tickets.Delete(ctx, ticket.ID); err != nil {
		return apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketDeleted,
		TicketID: ticket.ID,
		Actor:    eventActor(actor),
		Payload:  events.TicketDeletedPayload{Title: ticket.Title},
	})
	return nil
}

func (s *TicketService) getTicket(ctx context.Context, ticketID int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func mapLifecycleError(err error) error {
	var noOp *lifecycle.NoOpTransitionError
	if errors.As(err, &noOp) {
		return apperrors.NewNoOpTransition(noOp.Status)
	}
	var invalid *lifecycle.InvalidTransitionError
	if errors.As(err, &invalid) {
		return apperrors.NewInvalidTransition(invalid.Current, invalid.Requested, invalid.Allowed)
	}
	return apperrors.MapError(err)
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func eventActor(actor domain.Identity) events.Actor {
	return events.Actor{UserID: actor.UserID, Role: actor.Role}
}
