package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/admitflow/admitflow-backend/internal/admissions/domain"
	"github.com/admitflow/admitflow-backend/pkg/database"
	"github.com/admitflow/admitflow-backend/pkg/errors"
)

const documentColumns = `
	id, application_id, document_type, file_name, file_path, file_size,
	mime_type, extracted_data, ai_verification_status,
	admin_verification_status, is_rejected, admin_notes, created_at, updated_at`

// DocumentRepository handles document persistence.
type DocumentRepository struct {
	db *database.DB
}

// NewDocumentRepository creates a new document repository.
func NewDocumentRepository(db *database.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create inserts a new document.
func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}

	query := `
		INSERT INTO documents (
			id, application_id, document_type, file_name, file_path,
			file_size, mime_type, extracted_data, ai_verification_status,
			admin_verification_status, is_rejected
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		doc.ID, doc.ApplicationID, doc.DocumentType, doc.FileName,
		doc.FilePath, doc.FileSize, doc.MimeType, doc.ExtractedData,
		doc.AIVerificationState, doc.AdminVerification, doc.IsRejected,
	).Scan(&doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return database.MapPQError(err)
	}

	return nil
}

// GetByID gets a document by ID.
func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	query := `SELECT` + documentColumns + ` FROM documents WHERE id = $1`

	var doc domain.Document
	err := r.db.GetContext(ctx, &doc, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("document")
	}
	if err != nil {
		return nil, err
	}

	return &doc, nil
}

// Update writes the admin review columns of a document.
func (r *DocumentRepository) Update(ctx context.Context, doc *domain.Document) error {
	query := `
		UPDATE documents SET
			admin_verification_status = $2, is_rejected = $3,
			admin_notes = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		doc.ID, doc.AdminVerification, doc.IsRejected, doc.AdminNotes,
	).Scan(&doc.UpdatedAt)
	if err == sql.ErrNoRows {
		return errors.NotFound("document")
	}
	if err != nil {
		return database.MapPQError(err)
	}

	return nil
}

// ListByApplication lists an application's documents, oldest first.
func (r *DocumentRepository) ListByApplication(ctx context.Context, applicationID string) ([]*domain.Document, error) {
	query := `SELECT` + documentColumns + `
		FROM documents WHERE application_id = $1 ORDER BY created_at ASC`

	documents := []*domain.Document{}
	if err := r.db.SelectContext(ctx, &documents, query, applicationID); err != nil {
		return nil, err
	}

	return documents, nil
}
