package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/admitflow/admitflow-backend/internal/admissions/domain"
	"github.com/admitflow/admitflow-backend/internal/admissions/repository"
	"github.com/admitflow/admitflow-backend/pkg/errors"
)

// Compile-time interface conformance for the in-memory adapters.
var (
	_ repository.ApplicationStore = (*repository.MemoryApplicationStore)(nil)
	_ repository.DocumentStore    = (*repository.MemoryDocumentStore)(nil)
	_ repository.ProgramStore     = (*repository.MemoryProgramStore)(nil)
	_ repository.PaymentStore     = (*repository.MemoryPaymentStore)(nil)
	_ repository.TicketStore      = (*repository.MemoryTicketStore)(nil)
	_ repository.StudentStore     = (*repository.MemoryStudentStore)(nil)
)

func TestMemoryApplicationStore_FilterAndPagination(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryApplicationStore()

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Create(ctx, &domain.Application{
			UserID:    "user-1",
			ProgramID: "prog-1",
			Status:    domain.StatusSubmitted,
		}))
	}
	require.NoError(t, store.Create(ctx, &domain.Application{
		UserID:    "user-2",
		ProgramID: "prog-1",
		Status:    domain.StatusDraft,
	}))

	apps, total, err := store.List(ctx, repository.ApplicationFilter{
		Status: domain.StatusSubmitted,
		Limit:  2,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, total, "total counts all matches before pagination")
	assert.Len(t, apps, 2)

	apps, _, err = store.List(ctx, repository.ApplicationFilter{
		Status: domain.StatusSubmitted,
		Limit:  2,
		Offset: 2,
	})
	require.NoError(t, err)
	assert.Len(t, apps, 1)

	byUser, err := store.ListByUser(ctx, "user-2")
	require.NoError(t, err)
	require.Len(t, byUser, 1)
	assert.Equal(t, domain.StatusDraft, byUser[0].Status)
}

func TestMemoryApplicationStore_UpdateIsolation(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryApplicationStore()

	app := &domain.Application{UserID: "user-1", ProgramID: "prog-1", Status: domain.StatusDraft}
	require.NoError(t, store.Create(ctx, app))

	// Mutating the caller's copy after a write must not leak into the store.
	app.Status = domain.StatusVerified

	stored, err := store.GetByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDraft, stored.Status)

	err = store.Update(ctx, &domain.Application{ID: "missing"})
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestMemoryDocumentStore_ListOrdering(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryDocumentStore()

	for _, docType := range []string{"10th Marksheet", "12th Marksheet", "Aadhar Card"} {
		require.NoError(t, store.Create(ctx, &domain.Document{
			ApplicationID: "app-1",
			DocumentType:  docType,
		}))
	}
	require.NoError(t, store.Create(ctx, &domain.Document{
		ApplicationID: "app-2",
		DocumentType:  "Aadhar Card",
	}))

	docs, err := store.ListByApplication(ctx, "app-1")
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "10th Marksheet", docs[0].DocumentType)
	assert.Equal(t, "Aadhar Card", docs[2].DocumentType)
}

func TestMemoryProgramStore_UpsertRequiredDocument(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryProgramStore()

	entry := &domain.RequiredDocument{
		ProgramID:    "prog-1",
		DocumentType: "10th Marksheet",
		IsRequired:   true,
	}
	require.NoError(t, store.UpsertRequiredDocument(ctx, entry))
	firstID := entry.ID

	update := &domain.RequiredDocument{
		ProgramID:    "prog-1",
		DocumentType: "10th Marksheet",
		IsRequired:   false,
		IsOptional:   true,
	}
	require.NoError(t, store.UpsertRequiredDocument(ctx, update))
	assert.Equal(t, firstID, update.ID, "upsert keys on (program, document type)")

	entries, err := store.RequiredDocuments(ctx, "prog-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.False(t, entries[0].IsRequired)
	assert.True(t, entries[0].IsOptional)
}

func TestMemoryPaymentStore_HasCompletedApplicationFee(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryPaymentStore()

	payment := &domain.Payment{
		PaymentID:     "PAY-1-000001",
		ApplicationID: "app-1",
		UserID:        "user-1",
		PaymentType:   domain.PaymentTypeApplicationFee,
		Status:        domain.PaymentStatusPending,
	}
	require.NoError(t, store.Create(ctx, payment))

	exists, err := store.HasCompletedApplicationFee(ctx, "app-1")
	require.NoError(t, err)
	assert.False(t, exists, "pending payments do not count")

	payment.Status = domain.PaymentStatusCompleted
	require.NoError(t, store.Update(ctx, payment))

	exists, err = store.HasCompletedApplicationFee(ctx, "app-1")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.HasCompletedApplicationFee(ctx, "app-2")
	require.NoError(t, err)
	assert.False(t, exists)
}
