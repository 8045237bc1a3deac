package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/admitflow/admitflow-backend/internal/admissions/domain"
	"github.com/admitflow/admitflow-backend/pkg/database"
	"github.com/admitflow/admitflow-backend/pkg/errors"
)

const ticketColumns = `
	id, ticket_id, user_id, application_id, subject, category, description,
	status, priority, admin_response, created_at, updated_at`

// TicketRepository handles support ticket persistence.
type TicketRepository struct {
	db *database.DB
}

// NewTicketRepository creates a new ticket repository.
func NewTicketRepository(db *database.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

// Create inserts a new ticket.
func (r *TicketRepository) Create(ctx context.Context, t *domain.SupportTicket) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}

	query := `
		INSERT INTO support_tickets (
			id, ticket_id, user_id, application_id, subject, category,
			description, status, priority
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		t.ID, t.TicketID, t.UserID, t.ApplicationID, t.Subject,
		t.Category, t.Description, t.Status, t.Priority,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return database.MapPQError(err)
	}

	return nil
}

// GetByID gets a ticket by ID.
func (r *TicketRepository) GetByID(ctx context.Context, id string) (*domain.SupportTicket, error) {
	query := `SELECT` + ticketColumns + ` FROM support_tickets WHERE id = $1`

	var t domain.SupportTicket
	err := r.db.GetContext(ctx, &t, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("ticket")
	}
	if err != nil {
		return nil, err
	}

	return &t, nil
}

// Update writes the admin-managed columns of a ticket.
func (r *TicketRepository) Update(ctx context.Context, t *domain.SupportTicket) error {
	query := `
		UPDATE support_tickets SET
			status = $2, priority = $3, admin_response = $4,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		t.ID, t.Status, t.Priority, t.AdminResponse,
	).Scan(&t.UpdatedAt)
	if err == sql.ErrNoRows {
		return errors.NotFound("ticket")
	}
	if err != nil {
		return database.MapPQError(err)
	}

	return nil
}

// ListByUser lists a user's tickets, newest first.
func (r *TicketRepository) ListByUser(ctx context.Context, userID string) ([]*domain.SupportTicket, error) {
	query := `SELECT` + ticketColumns + `
		FROM support_tickets WHERE user_id = $1 ORDER BY created_at DESC`

	tickets := []*domain.SupportTicket{}
	if err := r.db.SelectContext(ctx, &tickets, query, userID); err != nil {
		return nil, err
	}

	return tickets, nil
}

// List lists all tickets, newest first.
func (r *TicketRepository) List(ctx context.Context) ([]*domain.SupportTicket, error) {
	query := `SELECT` + ticketColumns + ` FROM support_tickets ORDER BY created_at DESC`

	tickets := []*domain.SupportTicket{}
	if err := r.db.SelectContext(ctx, &tickets, query); err != nil {
		return nil, err
	}

	return tickets, nil
}

// CountOpen counts tickets still awaiting resolution.
func (r *TicketRepository) CountOpen(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM support_tickets WHERE status IN ($1, $2)`

	var count int
	err := r.db.GetContext(ctx, &count, query,
		domain.TicketStatusOpen, domain.TicketStatusInProgress)
	if err != nil {
		return 0, err
	}

	return count, nil
}
