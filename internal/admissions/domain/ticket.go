package domain

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// TicketStatus tracks a support ticket's lifecycle.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// SupportTicket is a student question or problem report, optionally tied to
// an application.
type SupportTicket struct {
	ID            string       `json:"id" db:"id"`
	TicketID      string       `json:"ticket_id" db:"ticket_id"`
	UserID        string       `json:"user_id" db:"user_id"`
	ApplicationID *string      `json:"application_id,omitempty" db:"application_id"`
	Subject       string       `json:"subject" db:"subject"`
	Category      string       `json:"category" db:"category"`
	Description   string       `json:"description" db:"description"`
	Status        TicketStatus `json:"status" db:"status"`
	Priority      string       `json:"priority" db:"priority"`
	AdminResponse *string      `json:"admin_response,omitempty" db:"admin_response"`
	CreatedAt     time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at" db:"updated_at"`
}

// NewTicketID generates a ticket identifier in the form
// TKT-<epoch-ms>-<4-digit-random>.
func NewTicketID(now time.Time) string {
	return fmt.Sprintf("TKT-%d-%04d", now.UnixMilli(), rand.IntN(10000))
}
