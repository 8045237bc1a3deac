package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/admitflow/admitflow-backend/internal/admissions/domain"
	"github.com/admitflow/admitflow-backend/pkg/database"
	"github.com/admitflow/admitflow-backend/pkg/errors"
)

// ProgramRepository handles program and required-document catalog reads.
type ProgramRepository struct {
	db *database.DB
}

// NewProgramRepository creates a new program repository.
func NewProgramRepository(db *database.DB) *ProgramRepository {
	return &ProgramRepository{db: db}
}

// GetByID gets a program by ID.
func (r *ProgramRepository) GetByID(ctx context.Context, id string) (*domain.Program, error) {
	query := `
		SELECT p.id, p.university_id, p.name, p.code, p.application_fee,
		       p.eligibility_criteria, p.created_at,
		       un.name AS university_name
		FROM programs p
		JOIN universities un ON un.id = p.university_id
		WHERE p.id = $1
	`

	var program domain.Program
	err := r.db.GetContext(ctx, &program, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("program")
	}
	if err != nil {
		return nil, err
	}

	return &program, nil
}

// List lists all programs.
func (r *ProgramRepository) List(ctx context.Context) ([]*domain.Program, error) {
	query := `
		SELECT p.id, p.university_id, p.name, p.code, p.application_fee,
		       p.eligibility_criteria, p.created_at,
		       un.name AS university_name
		FROM programs p
		JOIN universities un ON un.id = p.university_id
		ORDER BY un.name, p.name
	`

	programs := []*domain.Program{}
	if err := r.db.SelectContext(ctx, &programs, query); err != nil {
		return nil, err
	}

	return programs, nil
}

// RequiredDocuments lists the document catalog for a program.
func (r *ProgramRepository) RequiredDocuments(ctx context.Context, programID string) ([]*domain.RequiredDocument, error) {
	query := `
		SELECT id, program_id, document_type, is_required, is_optional,
		       description, created_at, updated_at
		FROM required_documents
		WHERE program_id = $1
		ORDER BY document_type
	`

	entries := []*domain.RequiredDocument{}
	if err := r.db.SelectContext(ctx, &entries, query, programID); err != nil {
		return nil, err
	}

	return entries, nil
}

// UpsertRequiredDocument inserts or updates one catalog entry, keyed by
// (program_id, document_type).
func (r *ProgramRepository) UpsertRequiredDocument(ctx context.Context, entry *domain.RequiredDocument) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}

	query := `
		INSERT INTO required_documents (
			id, program_id, document_type, is_required, is_optional, description
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (program_id, document_type) DO UPDATE SET
			is_required = EXCLUDED.is_required,
			is_optional = EXCLUDED.is_optional,
			description = EXCLUDED.description,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		entry.ID, entry.ProgramID, entry.DocumentType,
		entry.IsRequired, entry.IsOptional, entry.Description,
	).Scan(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		return database.MapPQError(err)
	}

	return nil
}
