package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/admitflow/admitflow-backend/internal/admissions/domain"
	"github.com/admitflow/admitflow-backend/pkg/auth"
	"github.com/admitflow/admitflow-backend/pkg/errors"
)

func TestPaymentService_CreateApplicationFee(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("requires a verified application", func(t *testing.T) {
		app := f.createApplication(t)

		_, _, err := f.payments.CreateApplicationFee(ctx, testStudentID, app.ID)
		assert.True(t, errors.Is(err, errors.ErrBadRequest))
	})

	t.Run("amount comes from the program fee", func(t *testing.T) {
		app := f.createApplication(t)
		_, err := f.apps.AdminApprove(ctx, app.ID)
		require.NoError(t, err)

		payment, order, err := f.payments.CreateApplicationFee(ctx, testStudentID, app.ID)
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(payment.PaymentID, "PAY-"))
		assert.Equal(t, domain.PaymentStatusPending, payment.Status)
		assert.Equal(t, 1000.0, payment.Amount)

		assert.Equal(t, int64(100000), order.Amount, "gateway amount is in paise")
		assert.Equal(t, "INR", order.Currency)
		assert.Equal(t, payment.PaymentID, order.OrderID)
	})

	t.Run("duplicate completed fee is rejected without a new row", func(t *testing.T) {
		app := f.createApplication(t)
		_, err := f.apps.AdminApprove(ctx, app.ID)
		require.NoError(t, err)

		payment, _, err := f.payments.CreateApplicationFee(ctx, testStudentID, app.ID)
		require.NoError(t, err)
		_, err = f.payments.RecordResult(ctx, payment.PaymentID, domain.PaymentStatusCompleted, "txn-1", nil)
		require.NoError(t, err)

		_, _, err = f.payments.CreateApplicationFee(ctx, testStudentID, app.ID)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrConflict))
		assert.Contains(t, err.Error(), "payment already completed")

		rows, err := f.payments.ListByApplication(ctx, testStudentID, auth.RoleStudent, app.ID)
		require.NoError(t, err)
		assert.Len(t, rows, 1)
	})

	t.Run("a failed fee does not block a retry", func(t *testing.T) {
		app := f.createApplication(t)
		_, err := f.apps.AdminApprove(ctx, app.ID)
		require.NoError(t, err)

		payment, _, err := f.payments.CreateApplicationFee(ctx, testStudentID, app.ID)
		require.NoError(t, err)
		_, err = f.payments.RecordResult(ctx, payment.PaymentID, domain.PaymentStatusFailed, "", nil)
		require.NoError(t, err)

		_, _, err = f.payments.CreateApplicationFee(ctx, testStudentID, app.ID)
		assert.NoError(t, err)
	})
}

func TestPaymentService_CreateIssueResolution(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("requires a raised issue", func(t *testing.T) {
		app := f.createApplication(t)

		_, _, err := f.payments.CreateIssueResolution(ctx, testStudentID, app.ID)
		assert.True(t, errors.Is(err, errors.ErrBadRequest))
	})

	t.Run("amount is the configured fixed fee", func(t *testing.T) {
		app := f.createApplication(t)
		_, err := f.apps.AdminRaiseIssue(ctx, app.ID, "signature missing")
		require.NoError(t, err)

		payment, order, err := f.payments.CreateIssueResolution(ctx, testStudentID, app.ID)
		require.NoError(t, err)

		assert.Equal(t, 500.0, payment.Amount)
		assert.Equal(t, domain.PaymentTypeIssueResolution, payment.PaymentType)
		assert.Equal(t, int64(50000), order.Amount)
	})
}

func TestPaymentService_RecordResult(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("unknown status is rejected", func(t *testing.T) {
		_, err := f.payments.RecordResult(ctx, "PAY-x", "settled", "", nil)
		assert.True(t, errors.Is(err, errors.ErrValidation))
	})

	t.Run("unknown payment is not found", func(t *testing.T) {
		_, err := f.payments.RecordResult(ctx, "PAY-missing", domain.PaymentStatusCompleted, "", nil)
		assert.True(t, errors.Is(err, errors.ErrNotFound))
	})

	t.Run("completed issue resolution clears the issue", func(t *testing.T) {
		app := f.createApplication(t)
		_, err := f.apps.AdminRaiseIssue(ctx, app.ID, "signature missing")
		require.NoError(t, err)

		payment, _, err := f.payments.CreateIssueResolution(ctx, testStudentID, app.ID)
		require.NoError(t, err)

		settled, err := f.payments.RecordResult(ctx, payment.PaymentID, domain.PaymentStatusCompleted,
			"txn-9", domain.JSONMap{"gateway": "razorpay"})
		require.NoError(t, err)
		require.NotNil(t, settled.TransactionID)
		assert.Equal(t, "txn-9", *settled.TransactionID)

		stored, err := f.apps.Get(ctx, testStudentID, auth.RoleStudent, app.ID)
		require.NoError(t, err)
		assert.False(t, stored.IssueRaised)
		assert.Nil(t, stored.IssueDetails)
		assert.Equal(t, domain.StatusUnderReview, stored.Status)
	})

	t.Run("failed payment leaves the application untouched", func(t *testing.T) {
		app := f.createApplication(t)
		_, err := f.apps.AdminRaiseIssue(ctx, app.ID, "signature missing")
		require.NoError(t, err)

		payment, _, err := f.payments.CreateIssueResolution(ctx, testStudentID, app.ID)
		require.NoError(t, err)

		_, err = f.payments.RecordResult(ctx, payment.PaymentID, domain.PaymentStatusFailed, "", nil)
		require.NoError(t, err)

		stored, err := f.apps.Get(ctx, testStudentID, auth.RoleStudent, app.ID)
		require.NoError(t, err)
		assert.True(t, stored.IssueRaised)
		assert.Equal(t, domain.StatusIssueRaised, stored.Status)
	})
}

func TestPaymentService_ListScoping(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	app := f.createApplication(t)
	_, err := f.apps.AdminApprove(ctx, app.ID)
	require.NoError(t, err)
	_, _, err = f.payments.CreateApplicationFee(ctx, testStudentID, app.ID)
	require.NoError(t, err)

	mine, err := f.payments.ListMine(ctx, testStudentID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	_, err = f.payments.ListByApplication(ctx, "user-other", auth.RoleStudent, app.ID)
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	rows, err := f.payments.ListByApplication(ctx, "admin-1", auth.RoleAdmin, app.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
