package events

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated  EventType = "ticket_created"
	EventTicketUpdated  EventType = "ticket_updated"
	EventTicketDeleted  EventType = "ticket_deleted"
	EventUserRegistered EventType = "user_registered"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID         string      `json:"id"`
	Type       EventType   `json:"type"`
	ActorEmail string      `json:"actor_email"`
	Timestamp  time.Time   `json:"timestamp"`
	Payload    interface{} `json:"payload"`
}

// TicketEventPayload describes the ticket a lifecycle event refers to.
type TicketEventPayload struct {
	TicketID        string              `json:"ticket_id"`
	Code            string              `json:"code"`
	Status          domain.TicketStatus `json:"status"`
	RequesterEmail  string              `json:"requester_email"`
	TechnicianEmail string              `json:"technician_email"`
}

// UserRegisteredPayload carries new-account metadata.
type UserRegisteredPayload struct {
	UserID string      `json:"user_id"`
	Email  string      `json:"email"`
	Role   domain.Role `json:"role"`
}
