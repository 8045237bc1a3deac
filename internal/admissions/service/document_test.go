package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/admitflow/admitflow-backend/internal/admissions/domain"
	"github.com/admitflow/admitflow-backend/pkg/auth"
	"github.com/admitflow/admitflow-backend/pkg/errors"
)

func TestDocumentService_Upload(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("clean document is auto-verified", func(t *testing.T) {
		app := f.createApplication(t)

		doc, verdict, err := f.documents.Upload(ctx, testStudentID, app.ID,
			"10th Marksheet", "marksheet.txt", "text/plain",
			[]byte("Name: Amit Kumar\nDOB: 15/08/2005\nTotal: 82.5%"))
		require.NoError(t, err)

		assert.Equal(t, domain.DocumentAIVerified, doc.AIVerificationState)
		assert.Equal(t, domain.AdminStatusPending, doc.AdminVerification)
		assert.True(t, verdict.IsValid)

		name, ok := doc.ExtractedData.String("name")
		require.True(t, ok)
		assert.Equal(t, "Amit Kumar", name)

		stored, err := f.apps.Get(ctx, testStudentID, auth.RoleStudent, app.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.AIStatusVerified, stored.AIVerificationState)
	})

	t.Run("failing check flags document and application", func(t *testing.T) {
		app := f.createApplication(t)

		doc, verdict, err := f.documents.Upload(ctx, testStudentID, app.ID,
			"10th Marksheet", "marksheet.txt", "text/plain",
			[]byte("Name: Amit Kumar\nTotal: 62%"))
		require.NoError(t, err)

		assert.Equal(t, domain.DocumentAIFlagged, doc.AIVerificationState)
		assert.False(t, verdict.IsValid)
		assert.Contains(t, verdict.Issues, "Percentage 62% is below required 70%")

		stored, err := f.apps.Get(ctx, testStudentID, auth.RoleStudent, app.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.AIStatusFlagged, stored.AIVerificationState)
	})

	t.Run("aggregate verdict is order-independent across documents", func(t *testing.T) {
		// One flagged and one clean document must leave the application
		// flagged regardless of which arrives last.
		app := f.createApplication(t)
		f.uploadCleanDocument(t, app.ID, "Aadhar Card")

		_, _, err := f.documents.Upload(ctx, testStudentID, app.ID,
			"10th Marksheet", "marksheet.txt", "text/plain",
			[]byte("Total: 62%"))
		require.NoError(t, err)

		f.uploadCleanDocument(t, app.ID, "Graduation Certificate")

		stored, err := f.apps.Get(ctx, testStudentID, auth.RoleStudent, app.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.AIStatusFlagged, stored.AIVerificationState,
			"a clean document after a flagged one must not overwrite the verdict")
		require.NotNil(t, stored.AIVerification)
		assert.Contains(t, stored.AIVerification.Issues, "10th Marksheet flagged by automated verification")
	})

	t.Run("empty extraction is not flagged", func(t *testing.T) {
		app := f.createApplication(t)

		doc, verdict, err := f.documents.Upload(ctx, testStudentID, app.ID,
			"Aadhar Card", "scan.txt", "text/plain",
			[]byte("no recognizable labels in this scan"))
		require.NoError(t, err)

		assert.Equal(t, domain.DocumentAIVerified, doc.AIVerificationState,
			"extraction gaps defer to manual review, they are not issues")
		assert.True(t, verdict.IsValid)
	})

	t.Run("upload to a foreign application is not found", func(t *testing.T) {
		app := f.createApplication(t)

		_, _, err := f.documents.Upload(ctx, "user-other", app.ID,
			"Aadhar Card", "scan.txt", "text/plain", []byte("x"))
		assert.True(t, errors.Is(err, errors.ErrNotFound))
	})
}

func TestDocumentService_AdminVerify(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("invalid status is rejected before any write", func(t *testing.T) {
		app := f.createApplication(t)
		doc := f.uploadCleanDocument(t, app.ID, "10th Marksheet")

		_, err := f.documents.AdminVerify(ctx, doc.ID, "approved", nil)
		assert.True(t, errors.Is(err, errors.ErrValidation))

		stored, err := f.documents.Get(ctx, "", auth.RoleAdmin, doc.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.AdminStatusPending, stored.AdminVerification)
		assert.False(t, stored.IsRejected)
	})

	t.Run("unknown document is not found", func(t *testing.T) {
		_, err := f.documents.AdminVerify(ctx, "missing", "verified", nil)
		assert.True(t, errors.Is(err, errors.ErrNotFound))
	})

	t.Run("verified and rejected are mutually exclusive", func(t *testing.T) {
		app := f.createApplication(t)

		verifiedDoc := f.uploadCleanDocument(t, app.ID, "10th Marksheet")
		got, err := f.documents.AdminVerify(ctx, verifiedDoc.ID, "verified", nil)
		require.NoError(t, err)
		assert.Equal(t, domain.AdminStatusVerified, got.AdminVerification)
		assert.False(t, got.IsRejected)

		notes := "photocopy, original required"
		rejectedDoc := f.uploadCleanDocument(t, app.ID, "Aadhar Card")
		got, err = f.documents.AdminVerify(ctx, rejectedDoc.ID, "rejected", &notes)
		require.NoError(t, err)
		assert.Equal(t, domain.AdminStatusPending, got.AdminVerification)
		assert.True(t, got.IsRejected)
		require.NotNil(t, got.AdminNotes)
		assert.Equal(t, notes, *got.AdminNotes)
	})

	t.Run("a closed review cannot be reopened", func(t *testing.T) {
		app := f.createApplication(t)

		doc := f.uploadCleanDocument(t, app.ID, "10th Marksheet")
		_, err := f.documents.AdminVerify(ctx, doc.ID, "verified", nil)
		require.NoError(t, err)

		_, err = f.documents.AdminVerify(ctx, doc.ID, "rejected", nil)
		assert.True(t, errors.Is(err, errors.ErrConflict))

		rejected := f.uploadCleanDocument(t, app.ID, "Aadhar Card")
		_, err = f.documents.AdminVerify(ctx, rejected.ID, "rejected", nil)
		require.NoError(t, err)

		_, err = f.documents.AdminVerify(ctx, rejected.ID, "verified", nil)
		assert.True(t, errors.Is(err, errors.ErrConflict))
	})
}

func TestDocumentService_PromotionOnFullVerification(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	app := f.createApplication(t)
	first := f.uploadCleanDocument(t, app.ID, "10th Marksheet")
	second := f.uploadCleanDocument(t, app.ID, "Aadhar Card")

	_, err := f.documents.AdminVerify(ctx, first.ID, "verified", nil)
	require.NoError(t, err)

	stored, err := f.apps.Get(ctx, testStudentID, auth.RoleStudent, app.ID)
	require.NoError(t, err)
	assert.NotEqual(t, domain.StatusVerified, stored.Status,
		"one of two documents verified must not promote")

	_, err = f.documents.AdminVerify(ctx, second.ID, "verified", nil)
	require.NoError(t, err)

	stored, err = f.apps.Get(ctx, testStudentID, auth.RoleStudent, app.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusVerified, stored.Status)
	assert.Equal(t, domain.AdminStatusVerified, stored.AdminVerification)
}

func TestDocumentService_RejectedDocumentBlocksPromotion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	app := f.createApplication(t)
	first := f.uploadCleanDocument(t, app.ID, "10th Marksheet")
	second := f.uploadCleanDocument(t, app.ID, "Aadhar Card")

	_, err := f.documents.AdminVerify(ctx, first.ID, "verified", nil)
	require.NoError(t, err)
	_, err = f.documents.AdminVerify(ctx, second.ID, "rejected", nil)
	require.NoError(t, err)

	stored, err := f.apps.Get(ctx, testStudentID, auth.RoleStudent, app.ID)
	require.NoError(t, err)
	assert.NotEqual(t, domain.StatusVerified, stored.Status)
}

func TestAdmissions_EndToEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Draft with all required documents uploaded cleanly.
	app := f.createApplication(t)
	first := f.uploadCleanDocument(t, app.ID, "10th Marksheet")
	second := f.uploadCleanDocument(t, app.ID, "Aadhar Card")

	submitted, err := f.apps.Submit(ctx, testStudentID, app.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSubmitted, submitted.Status)
	assert.Equal(t, domain.AIStatusVerified, submitted.AIVerificationState)

	// Admin verifies each document; the second write promotes.
	_, err = f.documents.AdminVerify(ctx, first.ID, "verified", nil)
	require.NoError(t, err)
	_, err = f.documents.AdminVerify(ctx, second.ID, "verified", nil)
	require.NoError(t, err)

	verified, err := f.apps.Get(ctx, testStudentID, auth.RoleStudent, app.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusVerified, verified.Status)
	assert.Equal(t, domain.AdminStatusVerified, verified.AdminVerification)

	// Explicit approval of an already verified application is a no-op.
	approved, err := f.apps.AdminApprove(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, verified.Status, approved.Status)
	assert.Equal(t, verified.AdminVerification, approved.AdminVerification)
	assert.Equal(t, verified.IssueRaised, approved.IssueRaised)

	// Application fee settles and advances the status.
	payment, order, err := f.payments.CreateApplicationFee(ctx, testStudentID, app.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100000), order.Amount)

	_, err = f.payments.RecordResult(ctx, payment.PaymentID, domain.PaymentStatusCompleted, "txn-1", nil)
	require.NoError(t, err)

	final, err := f.apps.Get(ctx, testStudentID, auth.RoleStudent, app.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaymentReceived, final.Status)
}
