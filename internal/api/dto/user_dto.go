package dto

import (
	"time"

	"github.com/navidmash/support-ticket-api/internal/domain"
	"github.com/navidmash/support-ticket-api/internal/pagination"
)

// CreateUserRequest payload.
type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// UserResponse is the public shape of an account; the password hash
// never leaves the service.
type UserResponse struct {
	ID        int64       `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
}

// UserListResponse pairs one page of users with pagination metadata.
type UserListResponse struct {
	Data       []UserResponse  `json:"data"`
	Pagination pagination.Meta `json:"pagination"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}
