package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/navidmash/support-ticket-api/internal/domain"
)

// CommentRepository manages ticket comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.TicketComment) error
	GetByID(ctx context.Context, id int64) (*domain.TicketComment, error)
	Update(ctx context.Context, comment *domain.TicketComment) error
	Delete(ctx context.Context, id int64) error
	ListByTicket(ctx context.Context, ticketID int64, limit, offset int) ([]domain.TicketComment, error)
	CountByTicket(ctx context.Context, ticketID int64) (int, error)
}

type commentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository builds repository.
func NewCommentRepository(pool *pgxpool.Pool) CommentRepository {
	return &commentRepository{pool: pool}
}

const commentColumns = `
        c.id, c.ticket_id, c.user_id, c.comment, c.created_at,
        u.id, u.name, u.email, u.role, u.created_at`

const commentJoins = `
        FROM ticket_comments c
        JOIN users u ON u.id = c.user_id`

func (r *commentRepository) Create(ctx context.Context, comment *domain.TicketComment) error {
	const query = `
        INSERT INTO ticket_comments (ticket_id, user_id, comment)
        VALUES ($1, $2, $3)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		comment.TicketID,
		comment.UserID,
		comment.Comment,
	).Scan(&comment.ID, &comment.CreatedAt)
}

func (r *commentRepository) GetByID(ctx context.Context, id int64) (*domain.TicketComment, error) {
	query := `SELECT` + commentColumns + commentJoins + ` WHERE c.id=$1`
	return scanComment(r.pool.QueryRow(ctx, query, id))
}

func (r *commentRepository) Update(ctx context.Context, comment *domain.TicketComment) error {
	const query = `UPDATE ticket_comments SET comment=$1 WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, comment.Comment, comment.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *commentRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM ticket_comments WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ListByTicket returns comments in creation order, ties broken by id
// so repeated calls against unchanged data return identical pages.
func (r *commentRepository) ListByTicket(ctx context.Context, ticketID int64, limit, offset int) ([]domain.TicketComment, error) {
	query := `SELECT` + commentColumns + commentJoins +
		` WHERE c.ticket_id=$1 ORDER BY c.created_at ASC, c.id ASC LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, ticketID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketComment
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *comment)
	}
	return result, rows.Err()
}

func (r *commentRepository) CountByTicket(ctx context.Context, ticketID int64) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM ticket_comments WHERE ticket_id=$1`, ticketID,
	).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func scanComment(row pgx.Row) (*domain.TicketComment, error) {
	var (
		comment domain.TicketComment
		author  domain.User
	)
	if err := row.Scan(
		&comment.ID,
		&comment.TicketID,
		&comment.UserID,
		&comment.Comment,
		&comment.CreatedAt,
		&author.ID,
		&author.Name,
		&author.Email,
		&author.Role,
		&author.CreatedAt,
	); err != nil {
		return nil, err
	}
	comment.Author = &author
	return &comment, nil
}
