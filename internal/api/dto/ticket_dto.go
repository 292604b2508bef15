package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// CreateTicketRequest payload. RequesterEmail is ignored on the
// create-for-self path; the authenticated identity wins.
type CreateTicketRequest struct {
	RequesterEmail  string `json:"requester_email"`
	TechnicianEmail string `json:"technician_email"`
	Title           string `json:"title"`
	Description     string `json:"description"`
}

// UpdateTicketRequest payload. Any id embedded here is discarded; the path
// id is authoritative.
type UpdateTicketRequest struct {
	ID              string               `json:"id"`
	TechnicianEmail string               `json:"technician_email"`
	Title           *string              `json:"title"`
	Description     *string              `json:"description"`
	Status          *domain.TicketStatus `json:"status"`
}

// TicketResponse identifies participants by email, never by store id.
type TicketResponse struct {
	ID              string              `json:"id"`
	Code            string              `json:"code"`
	Title           string              `json:"title"`
	Description     string              `json:"description"`
	Status          domain.TicketStatus `json:"status"`
	RequesterEmail  string              `json:"requester_email"`
	TechnicianEmail string              `json:"technician_email"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// FromTicketView maps a service view to the response shape.
func FromTicketView(view *service.TicketView) TicketResponse {
	return TicketResponse{
		ID:              view.ID,
		Code:            view.Code,
		Title:           view.Title,
		Description:     view.Description,
		Status:          view.Status,
		RequesterEmail:  view.RequesterEmail,
		TechnicianEmail: view.TechnicianEmail,
		CreatedAt:       view.CreatedAt,
		UpdatedAt:       view.UpdatedAt,
	}
}

// FromTicketViews maps a slice of views.
func FromTicketViews(views []service.TicketView) []TicketResponse {
	items := make([]TicketResponse, 0, len(views))
	for i := range views {
		items = append(items, FromTicketView(&views[i]))
	}
	return items
}
