package database

import (
	"strings"

	"github.com/lib/pq"

	"github.com/admitflow/admitflow-backend/pkg/errors"
)

// MapPQError converts a PostgreSQL error to an AppError with meaningful messages.
// Returns nil if the error is not a pq.Error.
func MapPQError(err error) *errors.AppError {
	pqErr, ok := err.(*pq.Error)
	if !ok {
		return nil
	}

	switch pqErr.Code {
	// Check constraint violation (23514)
	case "23514":
		return mapCheckConstraint(pqErr)

	// Unique constraint violation (23505)
	case "23505":
		return errors.Conflict(formatConstraintMessage(pqErr))

	// Foreign key violation (23503)
	case "23503":
		return errors.BadRequest("referenced record does not exist")

	// Not null violation (23502)
	case "23502":
		col := pqErr.Column
		if col == "" {
			col = "required field"
		}
		return errors.Validation(map[string]string{
			col: "must not be empty",
		})

	default:
		return nil
	}
}

// mapCheckConstraint maps specific CHECK constraint names to user-friendly messages.
func mapCheckConstraint(pqErr *pq.Error) *errors.AppError {
	constraint := pqErr.Constraint

	switch {
	case strings.Contains(constraint, "status_valid"):
		return errors.Validation(map[string]string{
			"status": "must be one of: draft, submitted, payment_received, under_review, verified, issue_raised",
		})

	case strings.Contains(constraint, "payment_type_valid"):
		return errors.Validation(map[string]string{
			"payment_type": "must be one of: application_fee, issue_resolution",
		})

	case strings.Contains(constraint, "ai_status_valid"):
		return errors.Validation(map[string]string{
			"ai_verification_status": "must be one of: pending, verified, flagged",
		})

	default:
		return errors.BadRequest("data validation failed: " + constraint)
	}
}

// formatConstraintMessage creates a user-friendly message for unique constraint violations.
func formatConstraintMessage(pqErr *pq.Error) string {
	constraint := pqErr.Constraint

	switch {
	case strings.Contains(constraint, "application_id"):
		return "an application with this id already exists"
	case strings.Contains(constraint, "required_documents_program"):
		return "this document type is already configured for the program"
	case strings.Contains(constraint, "payment_id"):
		return "a payment with this id already exists"
	default:
		return "a record with these values already exists"
	}
}
