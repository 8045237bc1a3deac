package service

import (
	"context"
	"time"

	"github.com/admitflow/admitflow-backend/internal/admissions/domain"
	"github.com/admitflow/admitflow-backend/internal/admissions/events"
	"github.com/admitflow/admitflow-backend/internal/admissions/repository"
	"github.com/admitflow/admitflow-backend/pkg/auth"
	"github.com/admitflow/admitflow-backend/pkg/config"
	"github.com/admitflow/admitflow-backend/pkg/errors"
	"github.com/admitflow/admitflow-backend/pkg/logger"
)

// PaymentService creates fee payments and applies gateway callbacks to the
// application state machine. It hands amounts off to the external gateway;
// it never talks to the gateway itself.
type PaymentService struct {
	payments  repository.PaymentStore
	apps      repository.ApplicationStore
	programs  repository.ProgramStore
	publisher events.Publisher
	cfg       *config.PaymentsConfig
	log       *logger.Logger
}

// NewPaymentService creates a new payment service.
func NewPaymentService(
	payments repository.PaymentStore,
	apps repository.ApplicationStore,
	programs repository.ProgramStore,
	publisher events.Publisher,
	cfg *config.PaymentsConfig,
	log *logger.Logger,
) *PaymentService {
	return &PaymentService{
		payments:  payments,
		apps:      apps,
		programs:  programs,
		publisher: publisher,
		cfg:       cfg,
		log:       log.WithComponent("payment-service"),
	}
}

// ownedApplication loads an application and checks it belongs to userID;
// one owned by someone else is indistinguishable from a missing one.
func (s *PaymentService) ownedApplication(ctx context.Context, userID, applicationID string) (*domain.Application, error) {
	app, err := s.apps.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.UserID != userID {
		return nil, errors.NotFound("application")
	}
	return app, nil
}

// CreateApplicationFee creates a pending application-fee payment. The
// amount is the program's fee at creation time and never changes after.
func (s *PaymentService) CreateApplicationFee(ctx context.Context, userID, applicationID string) (*domain.Payment, *domain.GatewayOrder, error) {
	app, err := s.ownedApplication(ctx, userID, applicationID)
	if err != nil {
		return nil, nil, err
	}

	if app.Status != domain.StatusVerified {
		return nil, nil, errors.BadRequest("application must be verified before paying the application fee")
	}

	completed, err := s.payments.HasCompletedApplicationFee(ctx, app.ID)
	if err != nil {
		return nil, nil, err
	}
	if completed {
		return nil, nil, errors.Conflict("payment already completed")
	}

	program, err := s.programs.GetByID(ctx, app.ProgramID)
	if err != nil {
		return nil, nil, err
	}

	return s.create(ctx, app, userID, domain.PaymentTypeApplicationFee, program.ApplicationFee)
}

// CreateIssueResolution creates a pending issue-resolution payment for an
// application with a raised issue. The amount is a fixed configured fee.
func (s *PaymentService) CreateIssueResolution(ctx context.Context, userID, applicationID string) (*domain.Payment, *domain.GatewayOrder, error) {
	app, err := s.ownedApplication(ctx, userID, applicationID)
	if err != nil {
		return nil, nil, err
	}

	if !app.IssueRaised {
		return nil, nil, errors.BadRequest("application has no raised issue to resolve")
	}

	return s.create(ctx, app, userID, domain.PaymentTypeIssueResolution, s.cfg.IssueResolutionFee)
}

func (s *PaymentService) create(ctx context.Context, app *domain.Application, userID string, paymentType domain.PaymentType, amount float64) (*domain.Payment, *domain.GatewayOrder, error) {
	payment := &domain.Payment{
		PaymentID:     domain.NewPaymentID(time.Now()),
		ApplicationID: app.ID,
		UserID:        userID,
		PaymentType:   paymentType,
		Amount:        amount,
		Status:        domain.PaymentStatusPending,
	}

	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, nil, err
	}

	order := domain.NewGatewayOrder(s.cfg.GatewayKey, s.cfg.Currency, payment)

	s.log.Info().
		Str("payment_id", payment.PaymentID).
		Str("application_id", app.ID).
		Str("payment_type", string(paymentType)).
		Float64("amount", amount).
		Msg("payment created")

	return payment, &order, nil
}

// RecordResult applies a gateway callback. A completed application fee
// advances a verified application to payment_received; a completed issue
// resolution clears the raised issue and moves the application to
// under_review.
func (s *PaymentService) RecordResult(ctx context.Context, paymentID string, status domain.PaymentStatus, transactionID string, gatewayResponse domain.JSONMap) (*domain.Payment, error) {
	if !domain.ValidPaymentStatus(status) {
		return nil, errors.Validation(map[string]string{
			"status": "status must be pending, completed or failed",
		})
	}

	payment, err := s.payments.GetByPaymentID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	payment.Status = status
	if transactionID != "" {
		payment.TransactionID = &transactionID
	}
	payment.PaymentData = gatewayResponse

	if err := s.payments.Update(ctx, payment); err != nil {
		return nil, err
	}

	if status == domain.PaymentStatusCompleted {
		if err := s.applyCompletedPayment(ctx, payment); err != nil {
			return nil, err
		}
	}

	s.log.Info().
		Str("payment_id", payment.PaymentID).
		Str("status", string(status)).
		Msg("payment result recorded")
	if status != domain.PaymentStatusPending {
		s.publisher.PaymentSettled(ctx, payment)
	}

	return payment, nil
}

func (s *PaymentService) applyCompletedPayment(ctx context.Context, payment *domain.Payment) error {
	app, err := s.apps.GetByID(ctx, payment.ApplicationID)
	if err != nil {
		return err
	}

	switch payment.PaymentType {
	case domain.PaymentTypeApplicationFee:
		// Only meaningful once the application is verified; anything else
		// leaves the application untouched.
		if app.Status != domain.StatusVerified {
			return nil
		}
		app.Status = domain.StatusPaymentReceived

	case domain.PaymentTypeIssueResolution:
		if !app.IssueRaised {
			return nil
		}
		app.IssueRaised = false
		app.IssueDetails = nil
		app.Status = domain.StatusUnderReview

	default:
		return nil
	}

	return s.apps.Update(ctx, app)
}

// ListMine lists the caller's payments.
func (s *PaymentService) ListMine(ctx context.Context, userID string) ([]*domain.Payment, error) {
	return s.payments.ListByUser(ctx, userID)
}

// ListByApplication lists an application's payments, scoped to the owning
// student unless the caller is an admin.
func (s *PaymentService) ListByApplication(ctx context.Context, userID, role, applicationID string) ([]*domain.Payment, error) {
	app, err := s.apps.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if role != auth.RoleAdmin && app.UserID != userID {
		return nil, errors.NotFound("application")
	}

	return s.payments.ListByApplication(ctx, applicationID)
}
