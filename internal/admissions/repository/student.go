package repository

import (
	"context"
	"database/sql"

	"github.com/admitflow/admitflow-backend/internal/admissions/domain"
	"github.com/admitflow/admitflow-backend/pkg/database"
	"github.com/admitflow/admitflow-backend/pkg/errors"
)

// StudentRepository reads student identity records. The identity service
// owns the users table; this repository only consumes the columns needed
// for document cross-checks.
type StudentRepository struct {
	db *database.DB
}

// NewStudentRepository creates a new student repository.
func NewStudentRepository(db *database.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// GetByID gets a student by user ID.
func (r *StudentRepository) GetByID(ctx context.Context, id string) (*domain.Student, error) {
	query := `SELECT id, first_name, last_name, email FROM users WHERE id = $1`

	var s domain.Student
	err := r.db.GetContext(ctx, &s, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("user")
	}
	if err != nil {
		return nil, err
	}

	return &s, nil
}
