package service

import (
	"context"
	"strings"

	"github.com/navidmash/support-ticket-api/internal/auth"
	"github.com/navidmash/support-ticket-api/internal/domain"
	"github.com/navidmash/support-ticket-api/internal/pagination"
	"github.com/navidmash/support-ticket-api/internal/policy"
	"github.com/navidmash/support-ticket-api/internal/repository"
	apperrors "github.com/navidmash/support-ticket-api/pkg/util/errorutil"
)

// UserService handles MANAGER-only account administration.
type UserService struct {
	users      repository.UserRepository
	bcryptCost int
}

// UserDependencies bundles collaborators for the user service.
type UserDependencies struct {
	UserRepo   repository.UserRepository
	BcryptCost int
}

// UserCreateInput describes account creation payload. Role is the raw
// literal and must name one of the three fixed roles.
type UserCreateInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// UserListInput describes listing filters; Role and Search are
// optional.
type UserListInput struct {
	Role   string
	Search string
	Params pagination.Params
}

// NewUserService constructs the service.
func NewUserService(deps UserDependencies) *UserService {
	return &UserService{users: deps.UserRepo, bcryptCost: deps.BcryptCost}
}

// Create registers a new account. MANAGER only; email uniqueness is
// the database's unique index, never a check-then-insert.
func (s *UserService) Create(ctx context.Context, actor domain.Identity, input UserCreateInput) (*domain.User, error) {
	if !policy.CanManageUsers(actor.Role) {
		return nil, apperrors.NewForbidden("only MANAGER can create users")
	}

	role, ok := domain.ParseRole(strings.ToUpper(strings.TrimSpace(input.Role)))
	if !ok {
		return nil, apperrors.NewValidationError("role must be one of: MANAGER, SUPPORT, USER", nil)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	user := &domain.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, apperrors.NewDuplicateEmail(user.Email)
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// List returns one page of accounts with pagination metadata,
// optionally filtered by role and a name/email search term. MANAGER
// only; the role gate runs before any lookup since no specific
// resource id is involved.
func (s *UserService) List(ctx context.Context, actor domain.Identity, input UserListInput) ([]domain.User, pagination.Meta, error) {
	if !policy.CanManageUsers(actor.Role) {
		return nil, pagination.Meta{}, apperrors.NewForbidden("only MANAGER can list users")
	}

	if err := input.Params.Validate(); err != nil {
		return nil, pagination.Meta{}, apperrors.NewValidationError(err.Error(), nil)
	}

	filter := repository.UserFilter{
		Limit:  input.Params.PageSize,
		Offset: input.Params.Offset(),
	}
	if raw := strings.ToUpper(strings.TrimSpace(input.Role)); raw != "" {
		role, ok := domain.ParseRole(raw)
		if !ok {
			return nil, pagination.Meta{}, apperrors.NewValidationError("invalid role, must be one of: MANAGER, SUPPORT, USER", nil)
		}
		filter.Role = &role
	}
	if search := strings.TrimSpace(input.Search); search != "" {
		filter.Search = &search
	}

	total, err := s.users.Count(ctx, filter)
	if err != nil {
		return nil, pagination.Meta{}, apperrors.MapError(err)
	}
	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, pagination.Meta{}, apperrors.MapError(err)
	}
	return users, pagination.NewMeta(input.Params, total), nil
}
