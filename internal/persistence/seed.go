package persistence

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/navidmash/support-ticket-api/internal/auth"
	"github.com/navidmash/support-ticket-api/internal/config"
	"github.com/navidmash/support-ticket-api/internal/domain"
)

// EnsureManager creates the bootstrap MANAGER account when the
// configured email is not yet registered. Every other account is
// created through the API by a MANAGER.
func EnsureManager(ctx context.Context, pool *pgxpool.Pool, cfg config.SeedConfig, bcryptCost int, logger *zap.Logger) error {
	if pool == nil || cfg.ManagerEmail == "" || cfg.ManagerPassword == "" {
		return nil
	}

	var id int64
	err := pool.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, cfg.ManagerEmail).Scan(&id)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := auth.HashPassword(cfg.ManagerPassword, bcryptCost)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO users (name, email, password_hash, role) VALUES ($1, $2, $3, $4)`,
		cfg.ManagerName, cfg.ManagerEmail, hash, domain.RoleManager,
	)
	if err != nil {
		return err
	}

	logger.Info("seeded manager account", zap.String("email", cfg.ManagerEmail))
	return nil
}
