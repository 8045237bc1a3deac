package service

import (
	"context"

	"github.com/admitflow/admitflow-backend/internal/admissions/domain"
	"github.com/admitflow/admitflow-backend/internal/admissions/events"
	"github.com/admitflow/admitflow-backend/internal/admissions/extraction"
	"github.com/admitflow/admitflow-backend/internal/admissions/repository"
	"github.com/admitflow/admitflow-backend/internal/admissions/storage"
	"github.com/admitflow/admitflow-backend/internal/admissions/verification"
	"github.com/admitflow/admitflow-backend/pkg/auth"
	"github.com/admitflow/admitflow-backend/pkg/errors"
	"github.com/admitflow/admitflow-backend/pkg/logger"
)

// DocumentService runs the document pipeline: store the file, extract
// fields, verify them against the application, persist the verdict and keep
// the application's aggregate AI state current. It also handles the manual
// admin review that gates automatic promotion.
type DocumentService struct {
	documents repository.DocumentStore
	apps      repository.ApplicationStore
	programs  repository.ProgramStore
	students  repository.StudentStore
	uploads   *storage.UploadStore
	pipeline  *extraction.Pipeline
	publisher events.Publisher
	log       *logger.Logger
}

// NewDocumentService creates a new document service.
func NewDocumentService(
	documents repository.DocumentStore,
	apps repository.ApplicationStore,
	programs repository.ProgramStore,
	students repository.StudentStore,
	uploads *storage.UploadStore,
	pipeline *extraction.Pipeline,
	publisher events.Publisher,
	log *logger.Logger,
) *DocumentService {
	return &DocumentService{
		documents: documents,
		apps:      apps,
		programs:  programs,
		students:  students,
		uploads:   uploads,
		pipeline:  pipeline,
		publisher: publisher,
		log:       log.WithComponent("document-service"),
	}
}

// Upload stores a document, runs extraction and verification, and persists
// the outcome. The application's aggregate AI verdict is recomputed from
// the full document set afterwards.
func (s *DocumentService) Upload(ctx context.Context, userID, applicationID, documentType, fileName, mimeType string, data []byte) (*domain.Document, *domain.VerificationResult, error) {
	app, err := s.apps.GetByID(ctx, applicationID)
	if err != nil {
		return nil, nil, err
	}
	if app.UserID != userID {
		return nil, nil, errors.NotFound("application")
	}

	applicant, err := s.applicantContext(ctx, app)
	if err != nil {
		return nil, nil, err
	}

	saved, err := s.uploads.Save(userID, fileName, mimeType, data)
	if err != nil {
		return nil, nil, err
	}

	text := extraction.TextFromUpload(data, mimeType)
	fields := s.pipeline.Extract(ctx, documentType, text, applicant)
	verdict := verification.Verify(fields, applicant, documentType)

	aiStatus := domain.DocumentAIVerified
	if !verdict.IsValid {
		aiStatus = domain.DocumentAIFlagged
	}

	doc := &domain.Document{
		ApplicationID:       app.ID,
		DocumentType:        documentType,
		FileName:            saved.Name,
		FilePath:            saved.Path,
		FileSize:            saved.Size,
		MimeType:            mimeType,
		ExtractedData:       fields,
		AIVerificationState: aiStatus,
		AdminVerification:   domain.AdminStatusPending,
	}

	if err := s.documents.Create(ctx, doc); err != nil {
		if rmErr := s.uploads.Remove(saved.Path); rmErr != nil {
			s.log.Warn().Err(rmErr).Str("path", saved.Path).Msg("orphaned upload left on disk")
		}
		return nil, nil, err
	}

	if err := s.recomputeAIVerdict(ctx, app); err != nil {
		return nil, nil, err
	}

	s.log.Info().
		Str("document_id", doc.ID).
		Str("application_id", app.ID).
		Str("document_type", documentType).
		Str("ai_status", string(aiStatus)).
		Msg("document uploaded")
	s.publisher.DocumentUploaded(ctx, doc)

	return doc, &verdict, nil
}

// applicantContext assembles the declared data a document is checked
// against: the application's personal info, falling back to the identity
// record, plus the program's eligibility threshold.
func (s *DocumentService) applicantContext(ctx context.Context, app *domain.Application) (domain.ApplicantContext, error) {
	applicant := domain.ApplicantContext{}

	if v, ok := app.PersonalInfo.String("firstName"); ok {
		applicant.FirstName = v
	}
	if v, ok := app.PersonalInfo.String("lastName"); ok {
		applicant.LastName = v
	}
	if v, ok := app.PersonalInfo.String("dateOfBirth"); ok {
		applicant.DateOfBirth = v
	}

	if applicant.FirstName == "" {
		student, err := s.students.GetByID(ctx, app.UserID)
		if err != nil {
			return applicant, err
		}
		applicant.FirstName = student.FirstName
		applicant.LastName = student.LastName
	}

	program, err := s.programs.GetByID(ctx, app.ProgramID)
	if err != nil {
		return applicant, err
	}
	applicant.MinPercentage = program.MinPercentage()

	return applicant, nil
}

// recomputeAIVerdict rereads the application's full document set and writes
// the aggregate verdict. Rerunning it with a fuller set is always safe.
func (s *DocumentService) recomputeAIVerdict(ctx context.Context, app *domain.Application) error {
	documents, err := s.documents.ListByApplication(ctx, app.ID)
	if err != nil {
		return err
	}

	status, result := domain.AggregateAIVerification(documents)
	app.AIVerificationState = status
	app.AIVerification = result

	return s.apps.Update(ctx, app)
}

// Get returns one document, scoped to the owning student unless the caller
// is an admin.
func (s *DocumentService) Get(ctx context.Context, userID, role, id string) (*domain.Document, error) {
	doc, err := s.documents.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if role != auth.RoleAdmin {
		app, err := s.apps.GetByID(ctx, doc.ApplicationID)
		if err != nil {
			return nil, err
		}
		if app.UserID != userID {
			return nil, errors.NotFound("document")
		}
	}

	return doc, nil
}

// ListByApplication lists an application's documents, with the same
// ownership scoping as Get.
func (s *DocumentService) ListByApplication(ctx context.Context, userID, role, applicationID string) ([]*domain.Document, error) {
	app, err := s.apps.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if role != auth.RoleAdmin && app.UserID != userID {
		return nil, errors.NotFound("application")
	}

	return s.documents.ListByApplication(ctx, applicationID)
}

// AdminVerify records the manual judgment for a document. Verification and
// rejection are terminal: a closed review cannot be reopened or flipped.
// When the write leaves every document of the application verified, the
// application is promoted to verified.
func (s *DocumentService) AdminVerify(ctx context.Context, documentID, status string, notes *string) (*domain.Document, error) {
	if status != "verified" && status != "rejected" {
		return nil, errors.Validation(map[string]string{
			"status": "status must be verified or rejected",
		})
	}

	doc, err := s.documents.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}

	if doc.ReviewClosed() {
		return nil, errors.Conflict("document has already been reviewed")
	}

	if status == "verified" {
		doc.AdminVerification = domain.AdminStatusVerified
		doc.IsRejected = false
	} else {
		doc.IsRejected = true
	}
	doc.AdminNotes = notes

	if err := s.documents.Update(ctx, doc); err != nil {
		return nil, err
	}

	if err := s.promoteIfComplete(ctx, doc.ApplicationID); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("document_id", doc.ID).
		Str("application_id", doc.ApplicationID).
		Str("status", status).
		Msg("document reviewed by admin")
	s.publisher.DocumentReviewed(ctx, doc)

	return doc, nil
}

// promoteIfComplete promotes the application to verified once every one of
// its documents is admin-verified. Idempotent: re-running against an
// already verified application changes nothing.
func (s *DocumentService) promoteIfComplete(ctx context.Context, applicationID string) error {
	documents, err := s.documents.ListByApplication(ctx, applicationID)
	if err != nil {
		return err
	}

	verified := 0
	for _, d := range documents {
		if d.AdminVerification == domain.AdminStatusVerified {
			verified++
		}
	}
	if len(documents) == 0 || verified != len(documents) {
		return nil
	}

	app, err := s.apps.GetByID(ctx, applicationID)
	if err != nil {
		return err
	}

	if app.Status == domain.StatusVerified && app.AdminVerification == domain.AdminStatusVerified {
		return nil
	}

	app.Status = domain.StatusVerified
	app.AdminVerification = domain.AdminStatusVerified

	if err := s.apps.Update(ctx, app); err != nil {
		return err
	}

	s.log.Info().Str("application_id", app.ID).Msg("all documents verified, application promoted")
	s.publisher.ApplicationVerified(ctx, app)

	return nil
}
