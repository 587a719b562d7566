package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/navidmash/support-ticket-api/internal/api/http/handlers"
	"github.com/navidmash/support-ticket-api/internal/auth"
	"github.com/navidmash/support-ticket-api/internal/domain"
	"github.com/navidmash/support-ticket-api/internal/observability"
	"github.com/navidmash/support-ticket-api/internal/repository"
	"github.com/navidmash/support-ticket-api/internal/service"
)

// In-memory repositories backing a full HTTP round trip through
// middleware, auth, routing, services and response mapping.

type memTicketRepo struct {
	tickets map[int64]*domain.Ticket
	nextID  int64
}

func (r *memTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.nextID++
	ticket.ID = r.nextID
	copied := *ticket
	r.tickets[ticket.ID] = &copied
	return nil
}

func (r *memTicketRepo) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *ticket
	return &copied, nil
}

func (r *memTicketRepo) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for id := int64(1); id <= r.nextID; id++ {
		ticket, ok := r.tickets[id]
		if !ok {
			continue
		}
		if filter.CreatedBy != nil && ticket.CreatedBy != *filter.CreatedBy {
			continue
		}
		if filter.AssignedTo != nil && (ticket.AssignedTo == nil || *ticket.AssignedTo != *filter.AssignedTo) {
			continue
		}
		out = append(out, *ticket)
	}
	return out, nil
}

func (r *memTicketRepo) UpdateAssignee(_ context.Context, ticketID, assigneeID int64) error {
	ticket, ok := r.tickets[ticketID]
	if !ok {
		return pgx.ErrNoRows
	}
	ticket.AssignedTo = &assigneeID
	return nil
}

func (r *memTicketRepo) TransitionStatus(_ context.Context, log *domain.TicketStatusLog) (bool, error) {
	ticket, ok := r.tickets[log.TicketID]
	if !ok || ticket.Status != log.OldStatus {
		return false, nil
	}
	ticket.Status = log.NewStatus
	return true, nil
}

func (r *memTicketRepo) Delete(_ context.Context, id int64) error {
	delete(r.tickets, id)
	return nil
}

type memCommentRepo struct {
	comments map[int64]*domain.TicketComment
	nextID   int64
}

func (r *memCommentRepo) Create(_ context.Context, comment *domain.TicketComment) error {
	r.nextID++
	comment.ID = r.nextID
	comment.CreatedAt = time.Now()
	copied := *comment
	r.comments[comment.ID] = &copied
	return nil
}

func (r *memCommentRepo) GetByID(_ context.Context, id int64) (*domain.TicketComment, error) {
	comment, ok := r.comments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *comment
	return &copied, nil
}

func (r *memCommentRepo) Update(_ context.Context, comment *domain.TicketComment) error {
	stored, ok := r.comments[comment.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.Comment = comment.Comment
	return nil
}

func (r *memCommentRepo) Delete(_ context.Context, id int64) error {
	delete(r.comments, id)
	return nil
}

func (r *memCommentRepo) ListByTicket(_ context.Context, ticketID int64, limit, offset int) ([]domain.TicketComment, error) {
	var all []domain.TicketComment
	for id := int64(1); id <= r.nextID; id++ {
		comment, ok := r.comments[id]
		if !ok || comment.TicketID != ticketID {
			continue
		}
		all = append(all, *comment)
	}
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *memCommentRepo) CountByTicket(_ context.Context, ticketID int64) (int, error) {
	count := 0
	for _, comment := range r.comments {
		if comment.TicketID == ticketID {
			count++
		}
	}
	return count, nil
}

type memUserRepo struct {
	users map[int64]*domain.User
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	user.ID = int64(len(r.users) + 1)
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memUserRepo) List(context.Context, repository.UserFilter) ([]domain.User, error) {
	return nil, nil
}

func (r *memUserRepo) Count(context.Context, repository.UserFilter) (int, error) {
	return 0, nil
}

type testEnv struct {
	app     *fiber.App
	tokens  *auth.TokenManager
	tickets *memTicketRepo
	users   *memUserRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	ticketRepo := &memTicketRepo{tickets: map[int64]*domain.Ticket{}}
	commentRepo := &memCommentRepo{comments: map[int64]*domain.TicketComment{}}
	userRepo := &memUserRepo{users: map[int64]*domain.User{
		1: {ID: 1, Name: "Morgan", Email: "manager@example.com", Role: domain.RoleManager},
		2: {ID: 2, Name: "Sam", Email: "support@example.com", Role: domain.RoleSupport},
		3: {ID: 3, Name: "Uma", Email: "user@example.com", Role: domain.RoleUser},
	}}

	tokens := auth.NewTokenManager("router-test-secret", 60)
	logger := zap.NewNop()

	app := fiber.New()
	RegisterMiddlewares(app, logger, observability.NewMetrics(), 5*time.Second)
	RegisterRoutes(app, RouteConfig{
		Health: handlers.NewHealthHandler("test", "dev", nil, nil),
		Auth:   handlers.NewAuthHandler(service.NewAuthService(userRepo, tokens)),
		Tickets: handlers.NewTicketsHandler(service.NewTicketService(service.TicketDependencies{
			TicketRepo: ticketRepo,
			UserRepo:   userRepo,
		})),
		Comments: handlers.NewCommentsHandler(service.NewCommentService(service.CommentDependencies{
			CommentRepo: commentRepo,
			TicketRepo:  ticketRepo,
		})),
		Users: handlers.NewUsersHandler(service.NewUserService(service.UserDependencies{
			UserRepo:   userRepo,
			BcryptCost: 4,
		})),
		AuthMiddleware: auth.NewMiddleware(tokens),
	})

	return &testEnv{app: app, tokens: tokens, tickets: ticketRepo, users: userRepo}
}

func (e *testEnv) tokenFor(t *testing.T, userID int64) string {
	t.Helper()
	user, ok := e.users.users[userID]
	if !ok {
		t.Fatalf("no seeded user %d", userID)
	}
	token, _, err := e.tokens.GenerateToken(user)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return out
}

func errorCode(t *testing.T, body map[string]any) string {
	t.Helper()
	errObj, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("body has no error envelope: %v", body)
	}
	code, _ := errObj["code"].(string)
	return code
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, "GET", "/tickets", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
	if code := errorCode(t, decodeBody(t, resp)); code != "UNAUTHORIZED" {
		t.Errorf("code = %s, want UNAUTHORIZED", code)
	}

	resp = env.do(t, "GET", "/tickets", "not-a-jwt", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("garbage token: status = %d, want 401", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestLoginFlow(t *testing.T) {
	env := newTestEnv(t)
	hash, err := auth.HashPassword("hunter22", 4)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	env.users.users[3].PasswordHash = hash

	resp := env.do(t, "POST", "/auth/login", "", map[string]string{
		"email":    "user@example.com",
		"password": "wrong",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad password: status = %d, want 401", resp.StatusCode)
	}
	resp.Body.Close()

	resp = env.do(t, "POST", "/auth/login", "", map[string]string{
		"email":    "user@example.com",
		"password": "hunter22",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: status = %d, want 200", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	data, _ := body["data"].(map[string]any)
	authData, _ := data["auth"].(map[string]any)
	if token, _ := authData["token"].(string); token == "" {
		t.Fatalf("login response missing token: %v", body)
	}
}

func TestTicketEndpoints(t *testing.T) {
	env := newTestEnv(t)
	userToken := env.tokenFor(t, 3)
	supportToken := env.tokenFor(t, 2)
	managerToken := env.tokenFor(t, 1)

	// USER opens a ticket.
	resp := env.do(t, "POST", "/tickets", userToken, map[string]string{
		"title":       "cannot log in",
		"description": "login fails with a blank page",
		"priority":    "HIGH",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: status = %d, want 201", resp.StatusCode)
	}
	resp.Body.Close()

	// SUPPORT cannot open tickets.
	resp = env.do(t, "POST", "/tickets", supportToken, map[string]string{
		"title":       "support ticket",
		"description": "should not be allowed at all",
	})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("support create: status = %d, want 403", resp.StatusCode)
	}
	resp.Body.Close()

	// Non-integer id is a validation failure.
	resp = env.do(t, "GET", "/tickets/abc", managerToken, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad id: status = %d, want 400", resp.StatusCode)
	}
	if code := errorCode(t, decodeBody(t, resp)); code != "VALIDATION_FAILED" {
		t.Errorf("bad id code = %s, want VALIDATION_FAILED", code)
	}

	// Unassigned SUPPORT cannot see it; it is not in their listing either.
	resp = env.do(t, "GET", "/tickets/1", supportToken, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("support get: status = %d, want 403", resp.StatusCode)
	}
	resp.Body.Close()

	// MANAGER assigns the support agent.
	resp = env.do(t, "PATCH", "/tickets/1/assign", managerToken, map[string]int64{"user_id": 2})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("assign: status = %d, want 200", resp.StatusCode)
	}
	resp.Body.Close()

	// Assigning the end-user is rejected.
	resp = env.do(t, "PATCH", "/tickets/1/assign", managerToken, map[string]int64{"user_id": 3})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("assign USER: status = %d, want 400", resp.StatusCode)
	}
	if code := errorCode(t, decodeBody(t, resp)); code != "INVALID_ASSIGNEE" {
		t.Errorf("assign USER code = %s, want INVALID_ASSIGNEE", code)
	}

	// Skipping a lifecycle step fails with the transition taxonomy.
	resp = env.do(t, "PATCH", "/tickets/1/status", supportToken, map[string]string{"status": "CLOSED"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("skip transition: status = %d, want 400", resp.StatusCode)
	}
	if code := errorCode(t, decodeBody(t, resp)); code != "INVALID_TRANSITION" {
		t.Errorf("skip transition code = %s, want INVALID_TRANSITION", code)
	}

	// The single legal step succeeds.
	resp = env.do(t, "PATCH", "/tickets/1/status", supportToken, map[string]string{"status": "IN_PROGRESS"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("transition: status = %d, want 200", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	data, _ := body["data"].(map[string]any)
	if status, _ := data["status"].(string); status != "IN_PROGRESS" {
		t.Errorf("status = %q, want IN_PROGRESS", status)
	}

	// Repeating it is a distinct no-op failure.
	resp = env.do(t, "PATCH", "/tickets/1/status", supportToken, map[string]string{"status": "IN_PROGRESS"})
	if code := errorCode(t, decodeBody(t, resp)); code != "NO_OP_TRANSITION" {
		t.Errorf("repeat transition code = %s, want NO_OP_TRANSITION", code)
	}

	// Only MANAGER deletes.
	resp = env.do(t, "DELETE", "/tickets/1", supportToken, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("support delete: status = %d, want 403", resp.StatusCode)
	}
	resp.Body.Close()

	resp = env.do(t, "DELETE", "/tickets/1", managerToken, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("manager delete: status = %d, want 204", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestCommentEndpointsPagination(t *testing.T) {
	env := newTestEnv(t)
	userToken := env.tokenFor(t, 3)

	resp := env.do(t, "POST", "/tickets", userToken, map[string]string{
		"title":       "slow reports",
		"description": "monthly reports take forever to render",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create ticket: status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	for i := 0; i < 5; i++ {
		resp = env.do(t, "POST", "/tickets/1/comments", userToken, map[string]string{
			"comment": fmt.Sprintf("update number %d", i+1),
		})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("add comment %d: status = %d", i, resp.StatusCode)
		}
		resp.Body.Close()
	}

	// Non-integer page is rejected before any query.
	resp = env.do(t, "GET", "/tickets/1/comments?page=abc", userToken, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad page: status = %d, want 400", resp.StatusCode)
	}
	if code := errorCode(t, decodeBody(t, resp)); code != "VALIDATION_FAILED" {
		t.Errorf("bad page code = %s", code)
	}

	// Out-of-range page size is rejected.
	resp = env.do(t, "GET", "/tickets/1/comments?page=1&pageSize=101", userToken, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("oversize page: status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()

	// Second page of two.
	resp = env.do(t, "GET", "/tickets/1/comments?page=2&pageSize=2", userToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list comments: status = %d, want 200", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	items, _ := body["data"].([]any)
	if len(items) != 2 {
		t.Errorf("page items = %d, want 2", len(items))
	}
	meta, _ := body["pagination"].(map[string]any)
	checks := map[string]float64{
		"page":       2,
		"pageSize":   2,
		"totalCount": 5,
		"totalPages": 3,
	}
	for key, want := range checks {
		if got, _ := meta[key].(float64); got != want {
			t.Errorf("pagination.%s = %v, want %v", key, meta[key], want)
		}
	}
	if hasNext, _ := meta["hasNextPage"].(bool); !hasNext {
		t.Error("hasNextPage = false, want true")
	}
	if hasPrev, _ := meta["hasPreviousPage"].(bool); !hasPrev {
		t.Error("hasPreviousPage = false, want true")
	}
}

func TestUserEndpoints(t *testing.T) {
	env := newTestEnv(t)
	managerToken := env.tokenFor(t, 1)
	supportToken := env.tokenFor(t, 2)

	resp := env.do(t, "POST", "/users", supportToken, map[string]string{
		"name": "Eve", "email": "eve@example.com", "password": "pass-word", "role": "SUPPORT",
	})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("support create user: status = %d, want 403", resp.StatusCode)
	}
	resp.Body.Close()

	resp = env.do(t, "POST", "/users", managerToken, map[string]string{
		"name": "Eve", "email": "not-an-email", "password": "pass-word", "role": "SUPPORT",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad email: status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()

	resp = env.do(t, "POST", "/users", managerToken, map[string]string{
		"name": "Eve", "email": "eve@example.com", "password": "pass-word", "role": "ADMIN",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad role: status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()

	resp = env.do(t, "POST", "/users", managerToken, map[string]string{
		"name": "Eve", "email": "eve@example.com", "password": "pass-word", "role": "SUPPORT",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create user: status = %d, want 201", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	data, _ := body["data"].(map[string]any)
	if _, leaked := data["password_hash"]; leaked {
		t.Error("response leaked the password hash")
	}
	if role, _ := data["role"].(string); role != "SUPPORT" {
		t.Errorf("role = %q, want SUPPORT", role)
	}
}

func TestHealthLive(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, "GET", "/health/live", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("live: status = %d, want 200", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if status, _ := body["status"].(string); status != "alive" {
		t.Errorf("status = %q, want alive", status)
	}
}
