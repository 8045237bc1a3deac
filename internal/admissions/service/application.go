package service

import (
	"context"
	"time"

	"github.com/admitflow/admitflow-backend/internal/admissions/domain"
	"github.com/admitflow/admitflow-backend/internal/admissions/events"
	"github.com/admitflow/admitflow-backend/internal/admissions/repository"
	"github.com/admitflow/admitflow-backend/pkg/auth"
	"github.com/admitflow/admitflow-backend/pkg/errors"
	"github.com/admitflow/admitflow-backend/pkg/logger"
)

// ApplicationService owns the application lifecycle: creation, draft
// updates, submission and the admin review actions.
type ApplicationService struct {
	apps      repository.ApplicationStore
	documents repository.DocumentStore
	programs  repository.ProgramStore
	payments  repository.PaymentStore
	tickets   repository.TicketStore
	publisher events.Publisher
	log       *logger.Logger
}

// NewApplicationService creates a new application service.
func NewApplicationService(
	apps repository.ApplicationStore,
	documents repository.DocumentStore,
	programs repository.ProgramStore,
	payments repository.PaymentStore,
	tickets repository.TicketStore,
	publisher events.Publisher,
	log *logger.Logger,
) *ApplicationService {
	return &ApplicationService{
		apps:      apps,
		documents: documents,
		programs:  programs,
		payments:  payments,
		tickets:   tickets,
		publisher: publisher,
		log:       log.WithComponent("application-service"),
	}
}

// Create starts a new draft application for the given program.
func (s *ApplicationService) Create(ctx context.Context, userID, programID string, personalInfo, academicHistory domain.JSONMap) (*domain.Application, error) {
	if _, err := s.programs.GetByID(ctx, programID); err != nil {
		return nil, err
	}

	if personalInfo == nil {
		personalInfo = domain.JSONMap{}
	}
	if academicHistory == nil {
		academicHistory = domain.JSONMap{}
	}

	app := &domain.Application{
		ApplicationID:       domain.NewApplicationID(time.Now()),
		UserID:              userID,
		ProgramID:           programID,
		PersonalInfo:        personalInfo,
		AcademicHistory:     academicHistory,
		Status:              domain.StatusDraft,
		AIVerificationState: domain.AIStatusPending,
		AdminVerification:   domain.AdminStatusPending,
	}

	if err := s.apps.Create(ctx, app); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("application_id", app.ID).
		Str("user_id", userID).
		Str("program_id", programID).
		Msg("application created")
	s.publisher.ApplicationCreated(ctx, app)

	return app, nil
}

// Get returns one application. Students only see their own; an application
// owned by someone else is indistinguishable from a missing one.
func (s *ApplicationService) Get(ctx context.Context, userID, role, id string) (*domain.Application, error) {
	app, err := s.apps.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if role != auth.RoleAdmin && app.UserID != userID {
		return nil, errors.NotFound("application")
	}

	return app, nil
}

// ListMine lists the caller's applications.
func (s *ApplicationService) ListMine(ctx context.Context, userID string) ([]*domain.Application, error) {
	return s.apps.ListByUser(ctx, userID)
}

// UpdateInput carries the draft fields a student may overwrite. Nil maps
// leave the stored value untouched. Status may only move draft to submitted.
type UpdateInput struct {
	PersonalInfo    domain.JSONMap
	AcademicHistory domain.JSONMap
	Status          *domain.Status
}

// Update amends a draft application.
func (s *ApplicationService) Update(ctx context.Context, userID, id string, input UpdateInput) (*domain.Application, error) {
	app, err := s.apps.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.UserID != userID {
		return nil, errors.NotFound("application")
	}

	if app.Status != domain.StatusDraft {
		return nil, errors.BadRequest("only draft applications can be updated")
	}

	if input.PersonalInfo != nil {
		app.PersonalInfo = input.PersonalInfo
	}
	if input.AcademicHistory != nil {
		app.AcademicHistory = input.AcademicHistory
	}
	if input.Status != nil && *input.Status != app.Status {
		if !domain.CanStudentTransition(app.Status, *input.Status) {
			return nil, errors.BadRequest("applications can only be moved from draft to submitted")
		}
		app.Status = *input.Status
	}

	if err := s.apps.Update(ctx, app); err != nil {
		return nil, err
	}

	if app.Status == domain.StatusSubmitted {
		s.publisher.ApplicationSubmitted(ctx, app)
	}

	return app, nil
}

// Submit moves a draft application to submitted, provided every required
// document type has been uploaded. A blocked submit reports the exact
// missing types and leaves the application untouched.
func (s *ApplicationService) Submit(ctx context.Context, userID, id string) (*domain.Application, error) {
	app, err := s.apps.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.UserID != userID {
		return nil, errors.NotFound("application")
	}

	if app.Status != domain.StatusDraft {
		return nil, errors.BadRequest("only draft applications can be submitted")
	}

	missing, err := s.missingRequiredTypes(ctx, app)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		return nil, &domain.MissingDocumentsError{MissingTypes: missing}
	}

	app.Status = domain.StatusSubmitted
	if err := s.apps.Update(ctx, app); err != nil {
		return nil, err
	}

	s.log.Info().Str("application_id", app.ID).Msg("application submitted")
	s.publisher.ApplicationSubmitted(ctx, app)

	return app, nil
}

// missingRequiredTypes computes (required types) - (uploaded types) for an
// application's program.
func (s *ApplicationService) missingRequiredTypes(ctx context.Context, app *domain.Application) ([]string, error) {
	catalog, err := s.programs.RequiredDocuments(ctx, app.ProgramID)
	if err != nil {
		return nil, err
	}

	documents, err := s.documents.ListByApplication(ctx, app.ID)
	if err != nil {
		return nil, err
	}

	uploaded := make(map[string]bool, len(documents))
	for _, doc := range documents {
		uploaded[doc.DocumentType] = true
	}

	missing := []string{}
	for _, entry := range catalog {
		if entry.IsRequired && !uploaded[entry.DocumentType] {
			missing = append(missing, entry.DocumentType)
		}
	}

	return missing, nil
}

// AdminApprove forces an application to verified, bypassing the document
// completeness guard, and clears any raised issue. Idempotent.
func (s *ApplicationService) AdminApprove(ctx context.Context, id string) (*domain.Application, error) {
	app, err := s.apps.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	alreadyVerified := app.Status == domain.StatusVerified &&
		app.AdminVerification == domain.AdminStatusVerified &&
		!app.IssueRaised

	app.Status = domain.StatusVerified
	app.AdminVerification = domain.AdminStatusVerified
	app.IssueRaised = false
	app.IssueDetails = nil

	if err := s.apps.Update(ctx, app); err != nil {
		return nil, err
	}

	if !alreadyVerified {
		s.log.Info().Str("application_id", app.ID).Msg("application approved by admin")
		s.publisher.ApplicationVerified(ctx, app)
	}

	return app, nil
}

// AdminRaiseIssue flags an application with a described issue. Allowed from
// any status; cleared by a successful issue-resolution payment.
func (s *ApplicationService) AdminRaiseIssue(ctx context.Context, id, details string) (*domain.Application, error) {
	if details == "" {
		return nil, errors.Validation(map[string]string{"issue_details": "issue details are required"})
	}

	app, err := s.apps.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	app.IssueRaised = true
	app.IssueDetails = &details
	app.Status = domain.StatusIssueRaised

	if err := s.apps.Update(ctx, app); err != nil {
		return nil, err
	}

	s.log.Info().Str("application_id", app.ID).Msg("issue raised on application")
	s.publisher.ApplicationIssueRaised(ctx, app, details)

	return app, nil
}

// AdminList lists applications matching the filter, with the total match count.
func (s *ApplicationService) AdminList(ctx context.Context, filter repository.ApplicationFilter) ([]*domain.Application, int, error) {
	return s.apps.List(ctx, filter)
}

// Analytics is the admin dashboard summary.
type Analytics struct {
	Total         int                     `json:"total"`
	ByStatus      map[domain.Status]int   `json:"by_status"`
	ByAIStatus    map[domain.AIStatus]int `json:"by_ai_status"`
	PendingReview int                     `json:"pending_review"`
	Revenue       float64                 `json:"revenue"`
	OpenTickets   int                     `json:"open_tickets"`
}

// AdminAnalytics aggregates application, payment and ticket counts for the
// admin dashboard.
func (s *ApplicationService) AdminAnalytics(ctx context.Context) (*Analytics, error) {
	byStatus, err := s.apps.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	byAIStatus, err := s.apps.CountByAIStatus(ctx)
	if err != nil {
		return nil, err
	}
	revenue, err := s.payments.TotalCompletedAmount(ctx)
	if err != nil {
		return nil, err
	}
	openTickets, err := s.tickets.CountOpen(ctx)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, n := range byStatus {
		total += n
	}

	return &Analytics{
		Total:         total,
		ByStatus:      byStatus,
		ByAIStatus:    byAIStatus,
		PendingReview: byStatus[domain.StatusSubmitted] + byStatus[domain.StatusUnderReview],
		Revenue:       revenue,
		OpenTickets:   openTickets,
	}, nil
}
