package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/admitflow/admitflow-backend/internal/admissions/domain"
	"github.com/admitflow/admitflow-backend/internal/admissions/repository"
	"github.com/admitflow/admitflow-backend/internal/admissions/service"
	"github.com/admitflow/admitflow-backend/pkg/auth"
	"github.com/admitflow/admitflow-backend/pkg/errors"
)

func TestApplicationService_Create(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("creates a draft application", func(t *testing.T) {
		app := f.createApplication(t)

		assert.True(t, strings.HasPrefix(app.ApplicationID, "APP-"))
		assert.Equal(t, domain.StatusDraft, app.Status)
		assert.Equal(t, domain.AIStatusPending, app.AIVerificationState)
		assert.Equal(t, domain.AdminStatusPending, app.AdminVerification)
		assert.False(t, app.IssueRaised)
	})

	t.Run("unknown program is rejected", func(t *testing.T) {
		_, err := f.apps.Create(ctx, testStudentID, "prog-missing", nil, nil)
		assert.True(t, errors.Is(err, errors.ErrNotFound))
	})
}

func TestApplicationService_Get_Ownership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.createApplication(t)

	t.Run("owner can read", func(t *testing.T) {
		got, err := f.apps.Get(ctx, testStudentID, auth.RoleStudent, app.ID)
		require.NoError(t, err)
		assert.Equal(t, app.ID, got.ID)
	})

	t.Run("another student sees not found", func(t *testing.T) {
		_, err := f.apps.Get(ctx, "user-other", auth.RoleStudent, app.ID)
		assert.True(t, errors.Is(err, errors.ErrNotFound))
	})

	t.Run("admin can read any application", func(t *testing.T) {
		got, err := f.apps.Get(ctx, "admin-1", auth.RoleAdmin, app.ID)
		require.NoError(t, err)
		assert.Equal(t, app.ID, got.ID)
	})
}

func TestApplicationService_Update(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("draft fields can be overwritten", func(t *testing.T) {
		app := f.createApplication(t)

		updated, err := f.apps.Update(ctx, testStudentID, app.ID, service.UpdateInput{
			PersonalInfo: domain.JSONMap{"firstName": "Amit", "phone": "9999999999"},
		})
		require.NoError(t, err)

		phone, ok := updated.PersonalInfo.String("phone")
		require.True(t, ok)
		assert.Equal(t, "9999999999", phone)
	})

	t.Run("draft can self-transition to submitted only", func(t *testing.T) {
		app := f.createApplication(t)

		submitted := domain.StatusSubmitted
		updated, err := f.apps.Update(ctx, testStudentID, app.ID, service.UpdateInput{Status: &submitted})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusSubmitted, updated.Status)

		app = f.createApplication(t)
		verified := domain.StatusVerified
		_, err = f.apps.Update(ctx, testStudentID, app.ID, service.UpdateInput{Status: &verified})
		assert.True(t, errors.Is(err, errors.ErrBadRequest))
	})

	t.Run("non-draft applications are immutable to students", func(t *testing.T) {
		app := f.createApplication(t)
		submitted := domain.StatusSubmitted
		_, err := f.apps.Update(ctx, testStudentID, app.ID, service.UpdateInput{Status: &submitted})
		require.NoError(t, err)

		_, err = f.apps.Update(ctx, testStudentID, app.ID, service.UpdateInput{
			PersonalInfo: domain.JSONMap{"firstName": "Changed"},
		})
		assert.True(t, errors.Is(err, errors.ErrBadRequest))
	})
}

func TestApplicationService_Submit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("missing required documents block submission without mutation", func(t *testing.T) {
		app := f.createApplication(t)
		f.uploadCleanDocument(t, app.ID, "10th Marksheet")

		_, err := f.apps.Submit(ctx, testStudentID, app.ID)
		require.Error(t, err)

		var missingErr *domain.MissingDocumentsError
		require.ErrorAs(t, err, &missingErr)
		assert.ElementsMatch(t, []string{"Aadhar Card"}, missingErr.MissingTypes)

		stored, getErr := f.apps.Get(ctx, testStudentID, auth.RoleStudent, app.ID)
		require.NoError(t, getErr)
		assert.Equal(t, domain.StatusDraft, stored.Status, "a blocked submit must not change status")
	})

	t.Run("missing list is the full set difference", func(t *testing.T) {
		app := f.createApplication(t)

		_, err := f.apps.Submit(ctx, testStudentID, app.ID)
		var missingErr *domain.MissingDocumentsError
		require.ErrorAs(t, err, &missingErr)
		assert.ElementsMatch(t, []string{"10th Marksheet", "Aadhar Card"}, missingErr.MissingTypes)
	})

	t.Run("optional catalog entries do not block submission", func(t *testing.T) {
		app := f.createApplication(t)
		f.uploadCleanDocument(t, app.ID, "10th Marksheet")
		f.uploadCleanDocument(t, app.ID, "Aadhar Card")

		submitted, err := f.apps.Submit(ctx, testStudentID, app.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusSubmitted, submitted.Status)
	})

	t.Run("submit is draft-only", func(t *testing.T) {
		app := f.createApplication(t)
		f.uploadCleanDocument(t, app.ID, "10th Marksheet")
		f.uploadCleanDocument(t, app.ID, "Aadhar Card")

		_, err := f.apps.Submit(ctx, testStudentID, app.ID)
		require.NoError(t, err)

		_, err = f.apps.Submit(ctx, testStudentID, app.ID)
		assert.True(t, errors.Is(err, errors.ErrBadRequest))
	})
}

func TestApplicationService_AdminApprove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("override bypasses document completeness", func(t *testing.T) {
		app := f.createApplication(t)

		approved, err := f.apps.AdminApprove(ctx, app.ID)
		require.NoError(t, err)

		assert.Equal(t, domain.StatusVerified, approved.Status)
		assert.Equal(t, domain.AdminStatusVerified, approved.AdminVerification)
	})

	t.Run("approval clears a raised issue", func(t *testing.T) {
		app := f.createApplication(t)
		_, err := f.apps.AdminRaiseIssue(ctx, app.ID, "document looks tampered")
		require.NoError(t, err)

		approved, err := f.apps.AdminApprove(ctx, app.ID)
		require.NoError(t, err)

		assert.False(t, approved.IssueRaised)
		assert.Nil(t, approved.IssueDetails)
		assert.Equal(t, domain.StatusVerified, approved.Status)
	})

	t.Run("approving an already verified application is a no-op", func(t *testing.T) {
		app := f.createApplication(t)
		first, err := f.apps.AdminApprove(ctx, app.ID)
		require.NoError(t, err)

		second, err := f.apps.AdminApprove(ctx, app.ID)
		require.NoError(t, err)

		assert.Equal(t, first.Status, second.Status)
		assert.Equal(t, first.AdminVerification, second.AdminVerification)
	})
}

func TestApplicationService_AdminRaiseIssue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("requires non-empty details", func(t *testing.T) {
		app := f.createApplication(t)
		_, err := f.apps.AdminRaiseIssue(ctx, app.ID, "")
		assert.True(t, errors.Is(err, errors.ErrValidation))
	})

	t.Run("allowed from any status", func(t *testing.T) {
		app := f.createApplication(t)
		_, err := f.apps.AdminApprove(ctx, app.ID)
		require.NoError(t, err)

		flagged, err := f.apps.AdminRaiseIssue(ctx, app.ID, "fee discrepancy")
		require.NoError(t, err)

		assert.Equal(t, domain.StatusIssueRaised, flagged.Status)
		assert.True(t, flagged.IssueRaised)
		require.NotNil(t, flagged.IssueDetails)
		assert.Equal(t, "fee discrepancy", *flagged.IssueDetails)
	})
}

func TestApplicationService_AdminListAndAnalytics(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.createApplication(t)
	f.createApplication(t)
	_, err := f.apps.AdminApprove(ctx, first.ID)
	require.NoError(t, err)

	apps, total, err := f.apps.AdminList(ctx, repository.ApplicationFilter{
		Status: domain.StatusVerified,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, apps, 1)
	assert.Equal(t, first.ID, apps[0].ID)

	_, err = f.tickets.Create(ctx, testStudentID, service.TicketInput{
		Subject:     "Question about my application",
		Category:    "general",
		Description: "When will my documents be reviewed?",
	})
	require.NoError(t, err)

	analytics, err := f.apps.AdminAnalytics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, analytics.Total)
	assert.Equal(t, 1, analytics.ByStatus[domain.StatusVerified])
	assert.Equal(t, 1, analytics.ByStatus[domain.StatusDraft])
	assert.Equal(t, 2, analytics.ByAIStatus[domain.AIStatusPending])
	assert.Equal(t, 0, analytics.PendingReview)
	assert.Equal(t, 0.0, analytics.Revenue)
	assert.Equal(t, 1, analytics.OpenTickets)
}
