package service

import (
	"context"
	"time"

	"github.com/admitflow/admitflow-backend/internal/admissions/domain"
	"github.com/admitflow/admitflow-backend/internal/admissions/repository"
	"github.com/admitflow/admitflow-backend/pkg/auth"
	"github.com/admitflow/admitflow-backend/pkg/errors"
	"github.com/admitflow/admitflow-backend/pkg/logger"
)

var validTicketStatuses = map[domain.TicketStatus]bool{
	domain.TicketStatusOpen:       true,
	domain.TicketStatusInProgress: true,
	domain.TicketStatusResolved:   true,
	domain.TicketStatusClosed:     true,
}

// TicketService handles student support tickets and their admin follow-up.
type TicketService struct {
	tickets repository.TicketStore
	apps    repository.ApplicationStore
	log     *logger.Logger
}

// NewTicketService creates a new ticket service.
func NewTicketService(tickets repository.TicketStore, apps repository.ApplicationStore, log *logger.Logger) *TicketService {
	return &TicketService{
		tickets: tickets,
		apps:    apps,
		log:     log.WithComponent("ticket-service"),
	}
}

// TicketInput carries the student-provided fields of a new ticket.
type TicketInput struct {
	ApplicationID *string
	Subject       string
	Category      string
	Description   string
	Priority      string
}

// Create opens a new support ticket. A referenced application must exist
// and belong to the caller.
func (s *TicketService) Create(ctx context.Context, userID string, input TicketInput) (*domain.SupportTicket, error) {
	if input.ApplicationID != nil {
		app, err := s.apps.GetByID(ctx, *input.ApplicationID)
		if err != nil {
			return nil, err
		}
		if app.UserID != userID {
			return nil, errors.NotFound("application")
		}
	}

	priority := input.Priority
	if priority == "" {
		priority = "medium"
	}

	ticket := &domain.SupportTicket{
		TicketID:      domain.NewTicketID(time.Now()),
		UserID:        userID,
		ApplicationID: input.ApplicationID,
		Subject:       input.Subject,
		Category:      input.Category,
		Description:   input.Description,
		Status:        domain.TicketStatusOpen,
		Priority:      priority,
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("ticket_id", ticket.TicketID).
		Str("user_id", userID).
		Msg("support ticket created")

	return ticket, nil
}

// Get returns one ticket, scoped to its owner unless the caller is an admin.
func (s *TicketService) Get(ctx context.Context, userID, role, id string) (*domain.SupportTicket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if role != auth.RoleAdmin && ticket.UserID != userID {
		return nil, errors.NotFound("ticket")
	}

	return ticket, nil
}

// ListMine lists the caller's tickets.
func (s *TicketService) ListMine(ctx context.Context, userID string) ([]*domain.SupportTicket, error) {
	return s.tickets.ListByUser(ctx, userID)
}

// AdminList lists all tickets.
func (s *TicketService) AdminList(ctx context.Context) ([]*domain.SupportTicket, error) {
	return s.tickets.List(ctx)
}

// AdminUpdateInput carries the admin-managed ticket fields. Nil fields are
// left untouched.
type AdminUpdateInput struct {
	Status   *domain.TicketStatus
	Priority *string
	Response *string
}

// AdminUpdate updates a ticket's status, priority or response.
func (s *TicketService) AdminUpdate(ctx context.Context, id string, input AdminUpdateInput) (*domain.SupportTicket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Status != nil {
		if !validTicketStatuses[*input.Status] {
			return nil, errors.Validation(map[string]string{
				"status": "status must be open, in_progress, resolved or closed",
			})
		}
		ticket.Status = *input.Status
	}
	if input.Priority != nil {
		ticket.Priority = *input.Priority
	}
	if input.Response != nil {
		ticket.AdminResponse = input.Response
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	return ticket, nil
}
