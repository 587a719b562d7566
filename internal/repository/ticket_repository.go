package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/navidmash/support-ticket-api/internal/domain"
)

// TicketFilter restricts ticket listings to a creator or assignee.
// Both nil means an unrestricted listing (MANAGER scope).
type TicketFilter struct {
	CreatedBy  *int64
	AssignedTo *int64
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	UpdateAssignee(ctx context.Context, ticketID, assigneeID int64) error
	// TransitionStatus commits the status update and its audit log as
	// one transaction. The UPDATE is conditioned on the previously
	// read status, so a concurrent writer makes it report false
	// instead of silently losing the linear invariant.
	TransitionStatus(ctx context.Context, log *domain.TicketStatusLog) (bool, error)
	Delete(ctx context.Context, id int64) error
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

// ticketColumns joins tickets with the creator and optional assignee
// so responses can embed both without follow-up lookups.
const ticketColumns = `
        t.id, t.title, t.description, t.status, t.priority, t.created_by, t.assigned_to, t.created_at,
        c.id, c.name, c.email, c.role, c.created_at,
        a.id, a.name, a.email, a.role, a.created_at`

const ticketJoins = `
        FROM tickets t
        JOIN users c ON c.id = t.created_by
        LEFT JOIN users a ON a.id = t.assigned_to`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (title, description, status, priority, created_by)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.CreatedBy,
	).Scan(&ticket.ID, &ticket.CreatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	query := `SELECT` + ticketColumns + ticketJoins + ` WHERE t.id=$1`

	row := r.pool.QueryRow(ctx, query, id)
	ticket, err := scanTicket(row)
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.CreatedBy != nil {
		args = append(args, *filter.CreatedBy)
		clauses = append(clauses, fmt.Sprintf("t.created_by=$%d", len(args)))
	}
	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		clauses = append(clauses, fmt.Sprintf("t.assigned_to=$%d", len(args)))
	}

	query := `SELECT` + ticketColumns + ticketJoins +
		` WHERE ` + strings.Join(clauses, " AND ") + ` ORDER BY t.id ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

func (r *ticketRepository) UpdateAssignee(ctx context.Context, ticketID, assigneeID int64) error {
	const query = `UPDATE tickets SET assigned_to=$1 WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, assigneeID, ticketID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) TransitionStatus(ctx context.Context, log *domain.TicketStatusLog) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	cmd, err := tx.Exec(ctx,
		`UPDATE tickets SET status=$1 WHERE id=$2 AND status=$3`,
		log.NewStatus, log.TicketID, log.OldStatus,
	)
	if err != nil {
		return false, err
	}
	if cmd.RowsAffected() == 0 {
		// The status moved underneath us (or the ticket vanished);
		// the caller re-reads and re-validates.
		return false, nil
	}

	if err := tx.QueryRow(ctx,
		`INSERT INTO ticket_status_logs (ticket_id, old_status, new_status, changed_by, changed_at)
         VALUES ($1, $2, $3, $4, $5)
         RETURNING id`,
		log.TicketID, log.OldStatus, log.NewStatus, log.ChangedBy, log.ChangedAt,
	).Scan(&log.ID); err != nil {
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (r *ticketRepository) Delete(ctx context.Context, id int64) error {
	// Comments and status logs go with the ticket via ON DELETE CASCADE.
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var (
		ticket            domain.Ticket
		creator           domain.User
		assigneeID        *int64
		assigneeName      *string
		assigneeEmail     *string
		assigneeRole      *domain.Role
		assigneeCreatedAt *time.Time
	)
	if err := row.Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.CreatedBy,
		&ticket.AssignedTo,
		&ticket.CreatedAt,
		&creator.ID,
		&creator.Name,
		&creator.Email,
		&creator.Role,
		&creator.CreatedAt,
		&assigneeID,
		&assigneeName,
		&assigneeEmail,
		&assigneeRole,
		&assigneeCreatedAt,
	); err != nil {
		return nil, err
	}

	ticket.Creator = &creator
	if assigneeID != nil {
		ticket.Assignee = &domain.User{
			ID:        *assigneeID,
			Name:      *assigneeName,
			Email:     *assigneeEmail,
			Role:      *assigneeRole,
			CreatedAt: *assigneeCreatedAt,
		}
	}
	return &ticket, nil
}
