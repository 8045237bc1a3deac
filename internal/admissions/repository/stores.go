package repository

import (
	"context"

	"github.com/admitflow/admitflow-backend/internal/admissions/domain"
)

// ApplicationFilter is a structured query spec for application listings.
// Zero-valued fields are not applied. Limit zero means no limit.
type ApplicationFilter struct {
	Status    domain.Status
	AIStatus  domain.AIStatus
	UserID    string
	ProgramID string
	Limit     int
	Offset    int
}

// ApplicationStore persists applications.
type ApplicationStore interface {
	Create(ctx context.Context, app *domain.Application) error
	GetByID(ctx context.Context, id string) (*domain.Application, error)
	Update(ctx context.Context, app *domain.Application) error
	ListByUser(ctx context.Context, userID string) ([]*domain.Application, error)
	List(ctx context.Context, filter ApplicationFilter) ([]*domain.Application, int, error)
	CountByStatus(ctx context.Context) (map[domain.Status]int, error)
	CountByAIStatus(ctx context.Context) (map[domain.AIStatus]int, error)
}

// DocumentStore persists uploaded documents.
type DocumentStore interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	Update(ctx context.Context, doc *domain.Document) error
	ListByApplication(ctx context.Context, applicationID string) ([]*domain.Document, error)
}

// ProgramStore reads programs and their required-document catalog.
type ProgramStore interface {
	GetByID(ctx context.Context, id string) (*domain.Program, error)
	List(ctx context.Context) ([]*domain.Program, error)
	RequiredDocuments(ctx context.Context, programID string) ([]*domain.RequiredDocument, error)
	UpsertRequiredDocument(ctx context.Context, entry *domain.RequiredDocument) error
}

// PaymentStore persists payments.
type PaymentStore interface {
	Create(ctx context.Context, p *domain.Payment) error
	GetByPaymentID(ctx context.Context, paymentID string) (*domain.Payment, error)
	Update(ctx context.Context, p *domain.Payment) error
	ListByUser(ctx context.Context, userID string) ([]*domain.Payment, error)
	ListByApplication(ctx context.Context, applicationID string) ([]*domain.Payment, error)
	HasCompletedApplicationFee(ctx context.Context, applicationID string) (bool, error)
	TotalCompletedAmount(ctx context.Context) (float64, error)
}

// TicketStore persists support tickets.
type TicketStore interface {
	Create(ctx context.Context, t *domain.SupportTicket) error
	GetByID(ctx context.Context, id string) (*domain.SupportTicket, error)
	Update(ctx context.Context, t *domain.SupportTicket) error
	ListByUser(ctx context.Context, userID string) ([]*domain.SupportTicket, error)
	List(ctx context.Context) ([]*domain.SupportTicket, error)
	CountOpen(ctx context.Context) (int, error)
}

// StudentStore reads the identity slice the admissions core needs for
// document cross-checks.
type StudentStore interface {
	GetByID(ctx context.Context, id string) (*domain.Student, error)
}
