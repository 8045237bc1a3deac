package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/admitflow/admitflow-backend/internal/admissions/domain"
	"github.com/admitflow/admitflow-backend/pkg/database"
	"github.com/admitflow/admitflow-backend/pkg/errors"
)

const paymentColumns = `
	id, payment_id, application_id, user_id, payment_type, amount, status,
	transaction_id, payment_data, created_at, updated_at`

// PaymentRepository handles payment persistence.
type PaymentRepository struct {
	db *database.DB
}

// NewPaymentRepository creates a new payment repository.
func NewPaymentRepository(db *database.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create inserts a new payment.
func (r *PaymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}

	query := `
		INSERT INTO payments (
			id, payment_id, application_id, user_id, payment_type,
			amount, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		p.ID, p.PaymentID, p.ApplicationID, p.UserID,
		p.PaymentType, p.Amount, p.Status,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return database.MapPQError(err)
	}

	return nil
}

// GetByPaymentID gets a payment by its public PAY- identifier.
func (r *PaymentRepository) GetByPaymentID(ctx context.Context, paymentID string) (*domain.Payment, error) {
	query := `SELECT` + paymentColumns + ` FROM payments WHERE payment_id = $1`

	var p domain.Payment
	err := r.db.GetContext(ctx, &p, query, paymentID)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("payment")
	}
	if err != nil {
		return nil, err
	}

	return &p, nil
}

// Update writes the gateway outcome columns of a payment.
func (r *PaymentRepository) Update(ctx context.Context, p *domain.Payment) error {
	query := `
		UPDATE payments SET
			status = $2, transaction_id = $3, payment_data = $4,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		p.ID, p.Status, p.TransactionID, p.PaymentData,
	).Scan(&p.UpdatedAt)
	if err == sql.ErrNoRows {
		return errors.NotFound("payment")
	}
	if err != nil {
		return database.MapPQError(err)
	}

	return nil
}

// ListByUser lists a user's payments, newest first.
func (r *PaymentRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Payment, error) {
	query := `SELECT` + paymentColumns + `
		FROM payments WHERE user_id = $1 ORDER BY created_at DESC`

	payments := []*domain.Payment{}
	if err := r.db.SelectContext(ctx, &payments, query, userID); err != nil {
		return nil, err
	}

	return payments, nil
}

// ListByApplication lists an application's payments, newest first.
func (r *PaymentRepository) ListByApplication(ctx context.Context, applicationID string) ([]*domain.Payment, error) {
	query := `SELECT` + paymentColumns + `
		FROM payments WHERE application_id = $1 ORDER BY created_at DESC`

	payments := []*domain.Payment{}
	if err := r.db.SelectContext(ctx, &payments, query, applicationID); err != nil {
		return nil, err
	}

	return payments, nil
}

// HasCompletedApplicationFee reports whether a completed application-fee
// payment already exists for the application. Called before creating a new
// fee payment; best-effort, not a uniqueness constraint.
func (r *PaymentRepository) HasCompletedApplicationFee(ctx context.Context, applicationID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM payments
			WHERE application_id = $1
			  AND payment_type = $2
			  AND status = $3
		)
	`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query,
		applicationID, domain.PaymentTypeApplicationFee, domain.PaymentStatusCompleted)
	if err != nil {
		return false, err
	}

	return exists, nil
}

// TotalCompletedAmount sums all completed payments.
func (r *PaymentRepository) TotalCompletedAmount(ctx context.Context) (float64, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM payments WHERE status = $1`

	var total float64
	if err := r.db.GetContext(ctx, &total, query, domain.PaymentStatusCompleted); err != nil {
		return 0, err
	}

	return total, nil
}
