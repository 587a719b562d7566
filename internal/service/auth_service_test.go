package service

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/navidmash/support-ticket-api/internal/auth"
	"github.com/navidmash/support-ticket-api/internal/domain"
)

func TestAuthLogin(t *testing.T) {
	hash, err := auth.HashPassword("correct-horse", testBcryptCost)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	account := &domain.User{
		ID:           6,
		Email:        "agent@example.com",
		PasswordHash: hash,
		Role:         domain.RoleSupport,
	}

	repo := &fakeUserRepo{
		GetByEmailFn: func(_ context.Context, email string) (*domain.User, error) {
			if email != account.Email {
				return nil, pgx.ErrNoRows
			}
			return account, nil
		},
	}
	svc := NewAuthService(repo, auth.NewTokenManager("test-secret", 60))

	t.Run("unknown email is unauthorized", func(t *testing.T) {
		_, _, _, err := svc.Login(context.Background(), "nobody@example.com", "correct-horse")
		domainErr := assertErrorCode(t, err, "UNAUTHORIZED")
		if domainErr.Message != "invalid email or password" {
			t.Errorf("message = %q, must not leak whether the account exists", domainErr.Message)
		}
	})

	t.Run("wrong password is unauthorized with same message", func(t *testing.T) {
		_, _, _, err := svc.Login(context.Background(), "agent@example.com", "wrong")
		domainErr := assertErrorCode(t, err, "UNAUTHORIZED")
		if domainErr.Message != "invalid email or password" {
			t.Errorf("message = %q, must not leak whether the account exists", domainErr.Message)
		}
	})

	t.Run("valid credentials issue parseable token", func(t *testing.T) {
		user, token, expiresAt, err := svc.Login(context.Background(), "  Agent@Example.com ", "correct-horse")
		if err != nil {
			t.Fatalf("Login() error = %v", err)
		}
		if user.ID != account.ID {
			t.Errorf("user.ID = %d, want %d", user.ID, account.ID)
		}
		if expiresAt.IsZero() {
			t.Error("expiresAt is zero")
		}

		claims, err := svc.TokenManager().ParseToken(token)
		if err != nil {
			t.Fatalf("ParseToken: %v", err)
		}
		identity, err := claims.Identity()
		if err != nil {
			t.Fatalf("Identity: %v", err)
		}
		if identity.UserID != account.ID || identity.Role != domain.RoleSupport {
			t.Errorf("identity = %+v", identity)
		}
	})
}
