package errorutil

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/navidmash/support-ticket-api/internal/domain"
)

// DomainError standardizes application errors across services and the
// HTTP layer. Code is stable and machine-readable; HTTPStatus drives
// the response mapping in the error middleware.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError("FORBIDDEN", message, http.StatusForbidden, nil)
}

// NewNoOpTransition reports a status update that requests the status
// the ticket already holds. Kept distinct from INVALID_TRANSITION so
// clients can render "already in status X".
func NewNoOpTransition(status domain.TicketStatus) error {
	return NewDomainError(
		"NO_OP_TRANSITION",
		fmt.Sprintf("ticket is already in status %q", status),
		http.StatusBadRequest,
		map[string]any{"status": status},
	)
}

// NewInvalidTransition reports a lifecycle violation. allowed is nil
// when the current status is terminal.
func NewInvalidTransition(current, requested domain.TicketStatus, allowed *domain.TicketStatus) error {
	next := "none"
	if allowed != nil {
		next = string(*allowed)
	}
	return NewDomainError(
		"INVALID_TRANSITION",
		fmt.Sprintf("invalid status transition: %s -> %s, allowed: %s -> %s", current, requested, current, next),
		http.StatusBadRequest,
		map[string]any{
			"current_status":   current,
			"requested_status": requested,
			"allowed_next":     next,
		},
	)
}

// NewInvalidAssignee reports an assignment target holding role USER.
func NewInvalidAssignee(userID int64) error {
	return NewDomainError(
		"INVALID_ASSIGNEE",
		"cannot assign ticket to a user with role USER",
		http.StatusBadRequest,
		map[string]any{"user_id": userID},
	)
}

// NewDuplicateEmail reports a unique-email constraint violation.
func NewDuplicateEmail(email string) error {
	return NewDomainError(
		"DUPLICATE_EMAIL",
		"email is already in use",
		http.StatusBadRequest,
		map[string]any{"email": email},
	)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

const pgUniqueViolation = "23505"

// IsUniqueViolation reports whether err is a Postgres unique
// constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// ToDomainError converts generic errors to DomainError, mapping
// pgx.ErrNoRows to NOT_FOUND and anything unrecognized to a generic
// internal error.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, pgx.ErrNoRows) {
		if de, ok := NewNotFound("resource", nil).(*DomainError); ok {
			return de
		}
	}
	if de, ok := NewInternalError(err).(*DomainError); ok {
		return de
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}
