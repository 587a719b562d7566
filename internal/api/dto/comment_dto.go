package dto

import (
	"time"

	"github.com/navidmash/support-ticket-api/internal/domain"
	"github.com/navidmash/support-ticket-api/internal/pagination"
)

// CommentRequest payload, shared by add and edit.
type CommentRequest struct {
	Comment string `json:"comment"`
}

// CommentResponse embeds the author.
type CommentResponse struct {
	ID        int64         `json:"id"`
	Comment   string        `json:"comment"`
	User      *UserResponse `json:"user"`
	CreatedAt time.Time     `json:"created_at"`
}

// CommentListResponse pairs one page of comments with pagination
// metadata.
type CommentListResponse struct {
	Data       []CommentResponse `json:"data"`
	Pagination pagination.Meta   `json:"pagination"`
}

// NewCommentResponse maps a hydrated domain comment.
func NewCommentResponse(comment *domain.TicketComment) CommentResponse {
	resp := CommentResponse{
		ID:        comment.ID,
		Comment:   comment.Comment,
		CreatedAt: comment.CreatedAt,
	}
	if comment.Author != nil {
		author := NewUserResponse(comment.Author)
		resp.User = &author
	}
	return resp
}
