package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// TicketService enforces the ticket business rules: technician-role
// validation on assignment and email-joined views. Role and ownership
// gating of the operations themselves lives in the HTTP layer.
type TicketService struct {
	tickets    repository.TicketRepository
	users      repository.UserRepository
	tx         repository.TxRunner
	dispatcher events.Dispatcher
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	UserRepo   repository.UserRepository
	TxRunner   repository.TxRunner
	Dispatcher events.Dispatcher
}

// TicketCreateInput describes ticket creation payload. RequesterEmail is
// ignored on the create-for-self path.
type TicketCreateInput struct {
	RequesterEmail  string
	TechnicianEmail string
	Title           string
	Description     string
}

// TicketUpdateInput describes mutable ticket fields. The ticket id always
// comes from the caller-supplied path, never from the payload.
type TicketUpdateInput struct {
	TechnicianEmail string
	Title           *string
	Description     *string
	Status          *domain.TicketStatus
}

// TicketView joins a ticket with both account emails. Responses identify
// the participants by email, never by raw store ids.
type TicketView struct {
	ID              string
	Code            string
	Title           string
	Description     string
	Status          domain.TicketStatus
	RequesterEmail  string
	TechnicianEmail string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		users:      deps.UserRepo,
		tx:         deps.TxRunner,
		dispatcher: deps.Dispatcher,
	}
}

// Create opens a ticket: resolves requester and technician by email,
// validates the technician's role and persists the new record. The lookups
// and the insert run in one unit of work.
func (s *TicketService) Create(ctx context.Context, input TicketCreateInput) (*TicketView, error) {
	var view *TicketView
	err := s.runInTx(ctx, func(ctx context.Context) error {
		requester, err := s.resolveByEmail(ctx, input.RequesterEmail)
		if err != nil {
			return err
		}
		technician, err := s.resolveTechnician(ctx, input.TechnicianEmail)
		if err != nil {
			return err
		}

		ticket := &domain.Ticket{
			Code:         generateTicketCode(),
			RequesterID:  requester.ID,
			TechnicianID: technician.ID,
			Title:        strings.TrimSpace(input.Title),
			Description:  strings.TrimSpace(input.Description),
			Status:       domain.TicketStatusOpen,
		}
		if ticket.Title == "" {
			return apperrors.NewValidationError("title is required", nil)
		}
		if err := s.tickets.Create(ctx, ticket); err != nil {
			return apperrors.MapError(err)
		}
		view = newTicketView(ticket, requester.Email, technician.Email)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventTicketCreated, view)
	return view, nil
}

// CreateForRequester opens a ticket on behalf of the authenticated caller.
// The requester email is always the caller's identity; any client-supplied
// value is discarded so a USER cannot open a ticket in someone else's name.
func (s *TicketService) CreateForRequester(ctx context.Context, callerEmail string, input TicketCreateInput) (*TicketView, error) {
	input.RequesterEmail = callerEmail
	return s.Create(ctx, input)
}

// Update reassigns and mutates a ticket identified by path id. The stored
// requester is re-resolved by id as a guard against orphaned references;
// the new technician goes through the same role validation as on create.
func (s *TicketService) Update(ctx context.Context, id string, input TicketUpdateInput) (*TicketView, error) {
	var view *TicketView
	err := s.runInTx(ctx, func(ctx context.Context) error {
		ticket, err := s.fetchTicket(ctx, id)
		if err != nil {
			return err
		}
		requester, err := s.resolveByID(ctx, ticket.RequesterID)
		if err != nil {
			return err
		}
		technician, err := s.resolveTechnician(ctx, input.TechnicianEmail)
		if err != nil {
			return err
		}

		ticket.TechnicianID = technician.ID
		if input.Title != nil && strings.TrimSpace(*input.Title) != "" {
			ticket.Title = strings.TrimSpace(*input.Title)
		}
		if input.Description != nil {
			ticket.Description = strings.TrimSpace(*input.Description)
		}
		if input.Status != nil {
			if !input.Status.Valid() {
				return apperrors.NewValidationError("unknown ticket status", map[string]any{"status": string(*input.Status)})
			}
			ticket.Status = *input.Status
		}

		if err := s.tickets.Update(ctx, ticket); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewTicketNotFound(id)
			}
			return apperrors.MapError(err)
		}
		view = newTicketView(ticket, requester.Email, technician.Email)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventTicketUpdated, view)
	return view, nil
}

// GetByID builds the email-joined view for one ticket. A referenced account
// that vanished surfaces as UserNotFound, a data-integrity fault.
func (s *TicketService) GetByID(ctx context.Context, id string) (*TicketView, error) {
	ticket, err := s.fetchTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	requester, err := s.resolveByID(ctx, ticket.RequesterID)
	if err != nil {
		return nil, err
	}
	technician, err := s.resolveByID(ctx, ticket.TechnicianID)
	if err != nil {
		return nil, err
	}
	return newTicketView(ticket, requester.Email, technician.Email), nil
}

// GetAll returns every ticket joined with both emails. The access control
// layer restricts this to TECH callers.
func (s *TicketService) GetAll(ctx context.Context) ([]TicketView, error) {
	tickets, err := s.tickets.ListAll(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return s.buildViews(ctx, tickets)
}

// GetByRequester lists the tickets opened by one account.
func (s *TicketService) GetByRequester(ctx context.Context, email string) ([]TicketView, error) {
	requester, err := s.resolveByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	tickets, err := s.tickets.ListByRequester(ctx, requester.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	views := make([]TicketView, 0, len(tickets))
	for i := range tickets {
		technician, err := s.resolveByID(ctx, tickets[i].TechnicianID)
		if err != nil {
			return nil, err
		}
		views = append(views, *newTicketView(&tickets[i], requester.Email, technician.Email))
	}
	return views, nil
}

// Delete removes a ticket after confirming it exists.
func (s *TicketService) Delete(ctx context.Context, id string) error {
	var view *TicketView
	err := s.runInTx(ctx, func(ctx context.Context) error {
		ticket, err := s.fetchTicket(ctx, id)
		if err != nil {
			return err
		}
		if err := s.tickets.Delete(ctx, ticket.ID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewTicketNotFound(id)
			}
			return apperrors.MapError(err)
		}
		view = &TicketView{ID: ticket.ID, Code: ticket.Code, Status: ticket.Status}
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(ctx, events.EventTicketDeleted, view)
	return nil
}

func (s *TicketService) fetchTicket(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewTicketNotFound(id)
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (s *TicketService) resolveByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUserNotFound(email)
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

func (s *TicketService) resolveByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// resolveTechnician enforces the assignment invariant: the assignee must
// hold role TECH at this moment. Later role changes do not revalidate
// existing assignments.
func (s *TicketService) resolveTechnician(ctx context.Context, email string) (*domain.User, error) {
	technician, err := s.resolveByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if technician.Role != domain.RoleTech {
		return nil, apperrors.NewBadTicketRequest("assigned user is not a support technician")
	}
	return technician, nil
}

func (s *TicketService) buildViews(ctx context.Context, tickets []domain.Ticket) ([]TicketView, error) {
	views := make([]TicketView, 0, len(tickets))
	for i := range tickets {
		requester, err := s.resolveByID(ctx, tickets[i].RequesterID)
		if err != nil {
			return nil, err
		}
		technician, err := s.resolveByID(ctx, tickets[i].TechnicianID)
		if err != nil {
			return nil, err
		}
		views = append(views, *newTicketView(&tickets[i], requester.Email, technician.Email))
	}
	return views, nil
}

func (s *TicketService) runInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.tx == nil {
		return fn(ctx)
	}
	return s.tx.RunInTx(ctx, fn)
}

func (s *TicketService) publish(ctx context.Context, eventType events.EventType, view *TicketView) {
	if s.dispatcher == nil || view == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Payload: events.TicketEventPayload{
			TicketID:        view.ID,
			Code:            view.Code,
			Status:          view.Status,
			RequesterEmail:  view.RequesterEmail,
			TechnicianEmail: view.TechnicianEmail,
		},
	})
}

func newTicketView(ticket *domain.Ticket, requesterEmail, technicianEmail string) *TicketView {
	return &TicketView{
		ID:              ticket.ID,
		Code:            ticket.Code,
		Title:           ticket.Title,
		Description:     ticket.Description,
		Status:          ticket.Status,
		RequesterEmail:  requesterEmail,
		TechnicianEmail: technicianEmail,
		CreatedAt:       ticket.CreatedAt,
		UpdatedAt:       ticket.UpdatedAt,
	}
}

func generateTicketCode() string {
	return "TCK-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
