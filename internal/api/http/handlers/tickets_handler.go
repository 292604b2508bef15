package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// TicketsHandler manages ticket endpoints. Role checks run in the policy
// middleware before these handlers; ownership checks that depend on fetched
// data happen here.
type TicketsHandler struct {
	tickets *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{tickets: ticketService}
}

// List handles GET /api/tickets. TECH sees every ticket, USER only their
// own. An empty result is a normal 200 with empty data.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var (
		views []service.TicketView
		err   error
	)
	if principal.IsTech() {
		views, err = h.tickets.GetAll(c.Context())
	} else {
		views, err = h.tickets.GetByRequester(c.Context(), principal.Email)
	}
	if err != nil {
		return err
	}
	return c.JSON(dto.NewEnvelope("tickets retrieved", dto.FromTicketViews(views)))
}

// Get handles GET /api/tickets/:id. The ownership check runs after the
// fetch so a foreign ticket yields 403, while a missing one stays 404.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	view, err := h.tickets.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	if !principal.IsTech() && view.RequesterEmail != principal.Email {
		return apperrors.NewForbidden("not your ticket")
	}
	return c.JSON(dto.NewEnvelope("ticket retrieved", dto.FromTicketView(view)))
}

// Create handles POST /api/tickets (USER). The requester is always the
// caller; the payload's requester_email is ignored.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.TechnicianEmail == "" || req.Title == "" {
		return apperrors.NewValidationError("technician_email and title required", nil)
	}

	view, err := h.tickets.CreateForRequester(c.Context(), principal.Email, service.TicketCreateInput{
		TechnicianEmail: req.TechnicianEmail,
		Title:           req.Title,
		Description:     req.Description,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).
		JSON(dto.NewEnvelope("ticket created", dto.FromTicketView(view)))
}

// Update handles PUT /api/tickets/:id (TECH). The path id overrides any id
// in the body.
func (h *TicketsHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.TechnicianEmail == "" {
		return apperrors.NewValidationError("technician_email required", nil)
	}

	view, err := h.tickets.Update(c.Context(), c.Params("id"), service.TicketUpdateInput{
		TechnicianEmail: req.TechnicianEmail,
		Title:           req.Title,
		Description:     req.Description,
		Status:          req.Status,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.NewEnvelope("ticket updated", dto.FromTicketView(view)))
}

// Delete handles DELETE /api/tickets/:id (TECH).
func (h *TicketsHandler) Delete(c *fiber.Ctx) error {
	if err := h.tickets.Delete(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(dto.NewEnvelope("ticket deleted", nil))
}
