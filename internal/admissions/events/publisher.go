package events

import (
	"context"

	"github.com/admitflow/admitflow-backend/internal/admissions/domain"
	"github.com/admitflow/admitflow-backend/pkg/logger"
	"github.com/admitflow/admitflow-backend/pkg/messaging"
)

// Publisher emits admissions lifecycle events. Publishing is fire-and-forget:
// a broker failure is logged, never propagated, so event delivery can not
// fail a request that already committed its write.
type Publisher interface {
	ApplicationCreated(ctx context.Context, app *domain.Application)
	ApplicationSubmitted(ctx context.Context, app *domain.Application)
	ApplicationVerified(ctx context.Context, app *domain.Application)
	ApplicationIssueRaised(ctx context.Context, app *domain.Application, details string)
	DocumentUploaded(ctx context.Context, doc *domain.Document)
	DocumentReviewed(ctx context.Context, doc *domain.Document)
	PaymentSettled(ctx context.Context, p *domain.Payment)
}

// AdmissionsEventPublisher publishes admissions events to the broker.
type AdmissionsEventPublisher struct {
	publisher *messaging.Publisher
	logger    *logger.Logger
}

// NewAdmissionsEventPublisher creates a publisher on the application events exchange.
func NewAdmissionsEventPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*AdmissionsEventPublisher, error) {
	publisher, err := messaging.NewPublisher(rmq, messaging.ExchangeApplicationEvents, "admissions-service", log)
	if err != nil {
		return nil, err
	}

	return &AdmissionsEventPublisher{
		publisher: publisher,
		logger:    log,
	}, nil
}

func (p *AdmissionsEventPublisher) ApplicationCreated(ctx context.Context, app *domain.Application) {
	p.publishStatus(ctx, messaging.EventApplicationCreated, app, "")
}

func (p *AdmissionsEventPublisher) ApplicationSubmitted(ctx context.Context, app *domain.Application) {
	p.publishStatus(ctx, messaging.EventApplicationSubmitted, app, "")
}

func (p *AdmissionsEventPublisher) ApplicationVerified(ctx context.Context, app *domain.Application) {
	p.publishStatus(ctx, messaging.EventApplicationVerified, app, "")
}

func (p *AdmissionsEventPublisher) ApplicationIssueRaised(ctx context.Context, app *domain.Application, details string) {
	p.publishStatus(ctx, messaging.EventApplicationIssueRaised, app, details)
}

func (p *AdmissionsEventPublisher) publishStatus(ctx context.Context, eventType string, app *domain.Application, details string) {
	data := messaging.ApplicationStatusEvent{
		ApplicationID: app.ID,
		UserID:        app.UserID,
		ProgramID:     app.ProgramID,
		Status:        string(app.Status),
		IssueDetails:  details,
	}

	if err := p.publisher.Publish(ctx, eventType, data); err != nil {
		p.logger.Error().Err(err).
			Str("application_id", app.ID).
			Str("event_type", eventType).
			Msg("failed to publish application event")
	}
}

func (p *AdmissionsEventPublisher) DocumentUploaded(ctx context.Context, doc *domain.Document) {
	p.publishDocument(ctx, messaging.EventDocumentUploaded, doc)
}

func (p *AdmissionsEventPublisher) DocumentReviewed(ctx context.Context, doc *domain.Document) {
	eventType := messaging.EventDocumentVerified
	if doc.IsRejected {
		eventType = messaging.EventDocumentRejected
	}
	p.publishDocument(ctx, eventType, doc)
}

func (p *AdmissionsEventPublisher) publishDocument(ctx context.Context, eventType string, doc *domain.Document) {
	data := messaging.DocumentEvent{
		DocumentID:    doc.ID,
		ApplicationID: doc.ApplicationID,
		DocumentType:  doc.DocumentType,
		AIStatus:      string(doc.AIVerificationState),
		AdminStatus:   string(doc.AdminVerification),
	}

	if err := p.publisher.Publish(ctx, eventType, data); err != nil {
		p.logger.Error().Err(err).
			Str("document_id", doc.ID).
			Str("event_type", eventType).
			Msg("failed to publish document event")
	}
}

func (p *AdmissionsEventPublisher) PaymentSettled(ctx context.Context, payment *domain.Payment) {
	eventType := messaging.EventPaymentCompleted
	if payment.Status == domain.PaymentStatusFailed {
		eventType = messaging.EventPaymentFailed
	}

	data := messaging.PaymentEvent{
		PaymentID:     payment.PaymentID,
		ApplicationID: payment.ApplicationID,
		PaymentType:   string(payment.PaymentType),
		Amount:        payment.Amount,
		Status:        string(payment.Status),
	}

	if err := p.publisher.Publish(ctx, eventType, data); err != nil {
		p.logger.Error().Err(err).
			Str("payment_id", payment.PaymentID).
			Str("event_type", eventType).
			Msg("failed to publish payment event")
	}
}

// NoopPublisher drops all events. Used when no broker is configured and in tests.
type NoopPublisher struct{}

func (NoopPublisher) ApplicationCreated(context.Context, *domain.Application)             {}
func (NoopPublisher) ApplicationSubmitted(context.Context, *domain.Application)           {}
func (NoopPublisher) ApplicationVerified(context.Context, *domain.Application)            {}
func (NoopPublisher) ApplicationIssueRaised(context.Context, *domain.Application, string) {}
func (NoopPublisher) DocumentUploaded(context.Context, *domain.Document)                  {}
func (NoopPublisher) DocumentReviewed(context.Context, *domain.Document)                  {}
func (NoopPublisher) PaymentSettled(context.Context, *domain.Payment)                     {}
