package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/navidmash/support-ticket-api/internal/domain"
	"github.com/navidmash/support-ticket-api/internal/events"
	"github.com/navidmash/support-ticket-api/internal/pagination"
	"github.com/navidmash/support-ticket-api/internal/policy"
	"github.com/navidmash/support-ticket-api/internal/repository"
	apperrors "github.com/navidmash/support-ticket-api/pkg/util/errorutil"
)

// CommentService handles the ticket comment thread and its
// moderation rules.
type CommentService struct {
	comments   repository.CommentRepository
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
}

// CommentDependencies bundles collaborators for the comment service.
type CommentDependencies struct {
	CommentRepo repository.CommentRepository
	TicketRepo  repository.TicketRepository
	Dispatcher  events.Dispatcher
}

// NewCommentService constructs the service.
func NewCommentService(deps CommentDependencies) *CommentService {
	return &CommentService{
		comments:   deps.CommentRepo,
		tickets:    deps.TicketRepo,
		dispatcher: deps.Dispatcher,
	}
}

// Add appends a comment to a ticket the caller can view. Input
// validation runs before the ticket lookup.
func (s *CommentService) Add(ctx context.Context, actor domain.Identity, ticketID int64, text string) (*domain.TicketComment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.NewValidationError("comment is required", nil)
	}

	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !policy.CanCommentOnTicket(actor, ticket) {
		return nil, apperrors.NewForbidden("you do not have permission to comment on this ticket")
	}

	comment := &domain.TicketComment{
		TicketID: ticket.ID,
		UserID:   actor.UserID,
		Comment:  text,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventCommentAdded,
			TicketID:  ticket.ID,
			Actor:     eventActor(actor),
			Timestamp: time.Now(),
			Payload: events.CommentAddedPayload{
				CommentID: comment.ID,
				Preview:   preview(comment.Comment, 120),
			},
		})
	}
	return s.comments.GetByID(ctx, comment.ID)
}

// List returns one page of a ticket's comment thread with pagination
// metadata, in creation order.
func (s *CommentService) List(ctx context.Context, actor domain.Identity, ticketID int64, params pagination.Params) ([]domain.TicketComment, pagination.Meta, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	if !policy.CanCommentOnTicket(actor, ticket) {
		return nil, pagination.Meta{}, apperrors.NewForbidden("you do not have permission to view comments on this ticket")
	}
	if err := params.Validate(); err != nil {
		return nil, pagination.Meta{}, apperrors.NewValidationError(err.Error(), nil)
	}

	total, err := s.comments.CountByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, pagination.Meta{}, apperrors.MapError(err)
	}
	comments, err := s.comments.ListByTicket(ctx, ticket.ID, params.PageSize, params.Offset())
	if err != nil {
		return nil, pagination.Meta{}, apperrors.MapError(err)
	}
	return comments, pagination.NewMeta(params, total), nil
}

// Edit replaces the comment text. Author or MANAGER only; after the
// input check, existence runs before permission so a missing comment
// reads as not-found even to callers who would be denied.
func (s *CommentService) Edit(ctx context.Context, actor domain.Identity, commentID int64, text string) (*domain.TicketComment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.NewValidationError("comment is required", nil)
	}

	comment, err := s.getComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if !policy.CanModerateComment(actor, comment) {
		return nil, apperrors.NewForbidden("you do not have permission to edit this comment")
	}

	comment.Comment = text
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}
	return comment, nil
}

// Delete removes a comment. Author or MANAGER only.
func (s *CommentService) Delete(ctx context.Context, actor domain.Identity, commentID int64) error {
	comment, err := s.getComment(ctx, commentID)
	if err != nil {
		return err
	}
	if !policy.CanModerateComment(actor, comment) {
		return apperrors.NewForbidden("you do not have permission to delete this comment")
	}
	if err := s.comments.Delete(ctx, comment.ID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

func (s *CommentService) getTicket(ctx context.Context, ticketID int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (s *CommentService) getComment(ctx context.Context, commentID int64) (*domain.TicketComment, error) {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("comment", map[string]any{"comment_id": commentID})
		}
		return nil, apperrors.MapError(err)
	}
	return comment, nil
}

func preview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}
