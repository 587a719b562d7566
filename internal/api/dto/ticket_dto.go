package dto

import (
	"time"

	"github.com/navidmash/support-ticket-api/internal/domain"
)

// CreateTicketRequest payload. Priority is optional and defaults to
// MEDIUM.
type CreateTicketRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority,omitempty"`
}

// AssignTicketRequest payload.
type AssignTicketRequest struct {
	UserID int64 `json:"user_id"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// TicketResponse embeds the creator and the optional assignee.
type TicketResponse struct {
	ID          int64                 `json:"id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Status      domain.TicketStatus   `json:"status"`
	Priority    domain.TicketPriority `json:"priority"`
	CreatedBy   *UserResponse         `json:"created_by"`
	AssignedTo  *UserResponse         `json:"assigned_to"`
	CreatedAt   time.Time             `json:"created_at"`
}

// NewTicketResponse maps a hydrated domain ticket.
func NewTicketResponse(ticket *domain.Ticket) TicketResponse {
	resp := TicketResponse{
		ID:          ticket.ID,
		Title:       ticket.Title,
		Description: ticket.Description,
		Status:      ticket.Status,
		Priority:    ticket.Priority,
		CreatedAt:   ticket.CreatedAt,
	}
	if ticket.Creator != nil {
		creator := NewUserResponse(ticket.Creator)
		resp.CreatedBy = &creator
	}
	if ticket.Assignee != nil {
		assignee := NewUserResponse(ticket.Assignee)
		resp.AssignedTo = &assignee
	}
	return resp
}
