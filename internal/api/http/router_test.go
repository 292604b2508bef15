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

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

type memUserRepo struct {
	users  map[string]*domain.User
	nextID int
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	r.nextID++
	user.ID = fmt.Sprintf("user-%d", r.nextID)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *memUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *memUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.users, id)
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
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

func (r *memUserRepo) List(_ context.Context) ([]domain.User, error) {
	result := make([]domain.User, 0, len(r.users))
	for _, user := range r.users {
		result = append(result, *user)
	}
	return result, nil
}

type memTicketRepo struct {
	tickets map[string]*domain.Ticket
	nextID  int
}

func (r *memTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.nextID++
	ticket.ID = fmt.Sprintf("ticket-%d", r.nextID)
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	stored := *ticket
	r.tickets[ticket.ID] = &stored
	return nil
}

func (r *memTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	if _, ok := r.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	stored := *ticket
	r.tickets[ticket.ID] = &stored
	return nil
}

func (r *memTicketRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.tickets, id)
	return nil
}

func (r *memTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *ticket
	return &copied, nil
}

func (r *memTicketRepo) ListAll(_ context.Context) ([]domain.Ticket, error) {
	result := make([]domain.Ticket, 0, len(r.tickets))
	for _, ticket := range r.tickets {
		result = append(result, *ticket)
	}
	return result, nil
}

func (r *memTicketRepo) ListByRequester(_ context.Context, requesterID string) ([]domain.Ticket, error) {
	result := []domain.Ticket{}
	for _, ticket := range r.tickets {
		if ticket.RequesterID == requesterID {
			result = append(result, *ticket)
		}
	}
	return result, nil
}

type passthroughTx struct{}

func (passthroughTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	userRepo := &memUserRepo{users: make(map[string]*domain.User)}
	ticketRepo := &memTicketRepo{tickets: make(map[string]*domain.Ticket)}

	authCfg := config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 60,
		BcryptCost:            4,
	}
	authService := service.NewAuthService(authCfg, userRepo, nil)
	userService := service.NewUserService(userRepo, authCfg.BcryptCost, nil)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: ticketRepo,
		UserRepo:   userRepo,
		TxRunner:   passthroughTx{},
	})

	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 0)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler(okPinger{}, okPinger{}),
		Auth:           handlers.NewAuthHandler(authService),
		Users:          handlers.NewUsersHandler(userService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		AuthMiddleware: auth.NewMiddleware(authService.TokenManager()),
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var envelope map[string]any
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &envelope); err != nil {
			t.Fatalf("%s %s: invalid JSON response %q: %v", method, path, raw, err)
		}
	}
	return resp.StatusCode, envelope
}

func register(t *testing.T, app *fiber.App, name, email string, role domain.Role) {
	t.Helper()
	status, _ := doJSON(t, app, fiber.MethodPost, "/api/users", "", map[string]any{
		"name":     name,
		"email":    email,
		"password": "password123",
		"role":     role,
	})
	if status != http.StatusCreated {
		t.Fatalf("register %s: status = %d, want 201", email, status)
	}
}

func login(t *testing.T, app *fiber.App, email string) string {
	t.Helper()
	status, envelope := doJSON(t, app, fiber.MethodPost, "/auth/login", "", map[string]any{
		"email":    email,
		"password": "password123",
	})
	if status != http.StatusOK {
		t.Fatalf("login %s: status = %d, want 200", email, status)
	}
	data := envelope["data"].(map[string]any)
	return data["token"].(string)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	app := newTestApp(t)
	register(t, app, "Alice", "alice@example.com", domain.RoleUser)

	status, _ := doJSON(t, app, fiber.MethodPost, "/auth/login", "", map[string]any{
		"email":    "alice@example.com",
		"password": "wrong",
	})
	if status != http.StatusUnauthorized {
		t.Errorf("login with wrong password: status = %d, want 401", status)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app := newTestApp(t)

	status, _ := doJSON(t, app, fiber.MethodGet, "/api/tickets", "", nil)
	if status != http.StatusUnauthorized {
		t.Errorf("GET /api/tickets without token: status = %d, want 401", status)
	}

	status, _ = doJSON(t, app, fiber.MethodGet, "/api/tickets", "garbage-token", nil)
	if status != http.StatusUnauthorized {
		t.Errorf("GET /api/tickets with invalid token: status = %d, want 401", status)
	}
}

func TestTicketLifecycleScenario(t *testing.T) {
	app := newTestApp(t)
	register(t, app, "Alice", "alice@example.com", domain.RoleUser)
	register(t, app, "Bob", "bob@example.com", domain.RoleUser)
	register(t, app, "Tina", "tina@example.com", domain.RoleTech)
	register(t, app, "Tom", "tom@example.com", domain.RoleTech)

	aliceToken := login(t, app, "alice@example.com")
	bobToken := login(t, app, "bob@example.com")
	tinaToken := login(t, app, "tina@example.com")

	// Alice opens a ticket; the payload's requester_email is ignored.
	status, envelope := doJSON(t, app, fiber.MethodPost, "/api/tickets", aliceToken, map[string]any{
		"requester_email":  "bob@example.com",
		"technician_email": "tina@example.com",
		"title":            "printer on fire",
		"description":      "third floor",
	})
	if status != http.StatusCreated {
		t.Fatalf("create ticket: status = %d, body = %v", status, envelope)
	}
	ticket := envelope["data"].(map[string]any)
	if ticket["requester_email"] != "alice@example.com" {
		t.Errorf("requester_email = %v, want alice@example.com", ticket["requester_email"])
	}
	if ticket["technician_email"] != "tina@example.com" {
		t.Errorf("technician_email = %v, want tina@example.com", ticket["technician_email"])
	}
	ticketID := ticket["id"].(string)

	// A TECH cannot create tickets.
	status, _ = doJSON(t, app, fiber.MethodPost, "/api/tickets", tinaToken, map[string]any{
		"technician_email": "tina@example.com",
		"title":            "self-assigned",
	})
	if status != http.StatusForbidden {
		t.Errorf("create ticket as TECH: status = %d, want 403", status)
	}

	// A USER cannot update; the role check fires before business logic.
	status, _ = doJSON(t, app, fiber.MethodPut, "/api/tickets/"+ticketID, aliceToken, map[string]any{
		"technician_email": "tom@example.com",
	})
	if status != http.StatusForbidden {
		t.Errorf("update ticket as USER: status = %d, want 403", status)
	}

	// Tina reassigns to Tom.
	status, envelope = doJSON(t, app, fiber.MethodPut, "/api/tickets/"+ticketID, tinaToken, map[string]any{
		"id":               "ticket-bogus",
		"technician_email": "tom@example.com",
		"status":           "IN_PROGRESS",
	})
	if status != http.StatusOK {
		t.Fatalf("update ticket: status = %d, body = %v", status, envelope)
	}
	updated := envelope["data"].(map[string]any)
	if updated["id"] != ticketID {
		t.Errorf("update applied to %v, want path id %v", updated["id"], ticketID)
	}

	// Alice still reads her own ticket and sees the new technician.
	status, envelope = doJSON(t, app, fiber.MethodGet, "/api/tickets/"+ticketID, aliceToken, nil)
	if status != http.StatusOK {
		t.Fatalf("get own ticket: status = %d", status)
	}
	if got := envelope["data"].(map[string]any)["technician_email"]; got != "tom@example.com" {
		t.Errorf("technician_email after reassignment = %v, want tom@example.com", got)
	}

	// Bob is not the requester: forbidden, not 404.
	status, _ = doJSON(t, app, fiber.MethodGet, "/api/tickets/"+ticketID, bobToken, nil)
	if status != http.StatusForbidden {
		t.Errorf("get foreign ticket as USER: status = %d, want 403", status)
	}

	// Tina sees every ticket, Bob only his own (none).
	status, envelope = doJSON(t, app, fiber.MethodGet, "/api/tickets", tinaToken, nil)
	if status != http.StatusOK {
		t.Fatalf("list tickets as TECH: status = %d", status)
	}
	if got := len(envelope["data"].([]any)); got != 1 {
		t.Errorf("TECH list returned %d tickets, want 1", got)
	}
	status, envelope = doJSON(t, app, fiber.MethodGet, "/api/tickets", bobToken, nil)
	if status != http.StatusOK {
		t.Fatalf("list tickets as USER: status = %d, want 200 even when empty", status)
	}
	if got := len(envelope["data"].([]any)); got != 0 {
		t.Errorf("USER list returned %d tickets, want 0", got)
	}

	// Deletion is TECH-only.
	status, _ = doJSON(t, app, fiber.MethodDelete, "/api/tickets/"+ticketID, aliceToken, nil)
	if status != http.StatusForbidden {
		t.Errorf("delete ticket as USER: status = %d, want 403", status)
	}
	status, _ = doJSON(t, app, fiber.MethodDelete, "/api/tickets/"+ticketID, tinaToken, nil)
	if status != http.StatusOK {
		t.Errorf("delete ticket as TECH: status = %d, want 200", status)
	}
	status, _ = doJSON(t, app, fiber.MethodDelete, "/api/tickets/"+ticketID, tinaToken, nil)
	if status != http.StatusNotFound {
		t.Errorf("delete missing ticket: status = %d, want 404", status)
	}
}

func TestAssignNonTechnicianRejected(t *testing.T) {
	app := newTestApp(t)
	register(t, app, "Alice", "alice@example.com", domain.RoleUser)
	register(t, app, "Bob", "bob@example.com", domain.RoleUser)
	aliceToken := login(t, app, "alice@example.com")

	status, envelope := doJSON(t, app, fiber.MethodPost, "/api/tickets", aliceToken, map[string]any{
		"technician_email": "bob@example.com",
		"title":            "help",
	})
	if status != http.StatusBadRequest {
		t.Errorf("assign USER as technician: status = %d, want 400", status)
	}
	if envelope["message"] != "assigned user is not a support technician" {
		t.Errorf("message = %v, want technician validation message", envelope["message"])
	}
}

func TestUserEndpointsRoleGates(t *testing.T) {
	app := newTestApp(t)
	register(t, app, "Alice", "alice@example.com", domain.RoleUser)
	register(t, app, "Tina", "tina@example.com", domain.RoleTech)
	aliceToken := login(t, app, "alice@example.com")
	tinaToken := login(t, app, "tina@example.com")

	status, _ := doJSON(t, app, fiber.MethodGet, "/api/users", aliceToken, nil)
	if status != http.StatusForbidden {
		t.Errorf("list users as USER: status = %d, want 403", status)
	}
	status, envelope := doJSON(t, app, fiber.MethodGet, "/api/users", tinaToken, nil)
	if status != http.StatusOK {
		t.Fatalf("list users as TECH: status = %d, want 200", status)
	}
	if got := len(envelope["data"].([]any)); got != 2 {
		t.Errorf("user list has %d entries, want 2", got)
	}

	status, envelope = doJSON(t, app, fiber.MethodGet, "/api/users/me", aliceToken, nil)
	if status != http.StatusOK {
		t.Fatalf("get profile: status = %d, want 200", status)
	}
	if got := envelope["data"].(map[string]any)["email"]; got != "alice@example.com" {
		t.Errorf("profile email = %v, want alice@example.com", got)
	}
}

func TestHealthProbes(t *testing.T) {
	app := newTestApp(t)

	status, _ := doJSON(t, app, fiber.MethodGet, "/health/live", "", nil)
	if status != http.StatusOK {
		t.Errorf("live probe: status = %d, want 200", status)
	}
	status, _ = doJSON(t, app, fiber.MethodGet, "/health/ready", "", nil)
	if status != http.StatusOK {
		t.Errorf("ready probe: status = %d, want 200", status)
	}
}
