package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// Valid reports whether the status is a known lifecycle state.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// Ticket is the aggregate for support requests. RequesterID references the
// USER who opened it, TechnicianID the TECH assigned to resolve it.
type Ticket struct {
	ID           string
	Code         string
	RequesterID  string
	TechnicianID string
	Title        string
	Description  string
	Status       TicketStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
