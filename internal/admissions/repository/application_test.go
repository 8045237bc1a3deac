package repository_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/admitflow/admitflow-backend/internal/admissions/domain"
	"github.com/admitflow/admitflow-backend/internal/admissions/repository"
	"github.com/admitflow/admitflow-backend/pkg/database"
	"github.com/admitflow/admitflow-backend/pkg/errors"
	"github.com/admitflow/admitflow-backend/pkg/logger"
	"github.com/admitflow/admitflow-backend/pkg/testutil"
)

func newMockRepo(t *testing.T) (*repository.ApplicationRepository, *testutil.MockDB) {
	t.Helper()
	mockDB := testutil.NewMockDB(t)
	t.Cleanup(func() { mockDB.Close() })

	db := database.NewFromSqlx(mockDB.DB, logger.New("test", "test"))
	return repository.NewApplicationRepository(db), mockDB
}

func TestApplicationRepository_Create(t *testing.T) {
	repo, mockDB := newMockRepo(t)

	now := time.Now()
	mockDB.ExpectQuery("INSERT INTO applications").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	app := &domain.Application{
		ApplicationID:       "APP-202608-123456",
		UserID:              "user-1",
		ProgramID:           "prog-1",
		PersonalInfo:        domain.JSONMap{"firstName": "Amit"},
		AcademicHistory:     domain.JSONMap{},
		Status:              domain.StatusDraft,
		AIVerificationState: domain.AIStatusPending,
		AdminVerification:   domain.AdminStatusPending,
	}
	err := repo.Create(context.Background(), app)
	require.NoError(t, err)

	assert.NotEmpty(t, app.ID)
	assert.Equal(t, now, app.CreatedAt)
	mockDB.ExpectationsWereMet(t)
}

func TestApplicationRepository_GetByID_NotFound(t *testing.T) {
	repo, mockDB := newMockRepo(t)

	mockDB.Mock.ExpectQuery("SELECT").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestApplicationRepository_Update_NotFound(t *testing.T) {
	repo, mockDB := newMockRepo(t)

	mockDB.ExpectQuery("UPDATE applications").WillReturnError(sql.ErrNoRows)

	err := repo.Update(context.Background(), &domain.Application{ID: "missing"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestApplicationRepository_List_Filtered(t *testing.T) {
	repo, mockDB := newMockRepo(t)

	mockDB.Mock.ExpectQuery("SELECT COUNT").
		WithArgs(string(domain.StatusSubmitted), "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	now := time.Now()
	columns := []string{
		"id", "application_id", "user_id", "program_id", "personal_info",
		"academic_history", "status", "ai_verification_status",
		"ai_verification_result", "admin_verification_status", "issue_raised",
		"issue_details", "created_at", "updated_at",
		"program_name", "university_name", "student_name", "student_email",
	}
	mockDB.Mock.ExpectQuery("SELECT").
		WithArgs(string(domain.StatusSubmitted), "user-1").
		WillReturnRows(sqlmock.NewRows(columns).AddRow(
			"app-1", "APP-202608-123456", "user-1", "prog-1",
			[]byte(`{"firstName":"Amit"}`), []byte(`{}`),
			"submitted", "pending", nil, "pending", false, nil, now, now,
			"B.Tech CSE", "Test University", "Amit Kumar", "amit@example.com",
		))

	apps, total, err := repo.List(context.Background(), repository.ApplicationFilter{
		Status: domain.StatusSubmitted,
		UserID: "user-1",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, total)
	require.Len(t, apps, 1)
	assert.Equal(t, domain.StatusSubmitted, apps[0].Status)
	require.NotNil(t, apps[0].ProgramName)
	assert.Equal(t, "B.Tech CSE", *apps[0].ProgramName)
	mockDB.ExpectationsWereMet(t)
}

func TestApplicationRepository_CountByStatus(t *testing.T) {
	repo, mockDB := newMockRepo(t)

	mockDB.Mock.ExpectQuery("SELECT status").
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("draft", 3).
			AddRow("verified", 2))

	counts, err := repo.CountByStatus(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, counts[domain.StatusDraft])
	assert.Equal(t, 2, counts[domain.StatusVerified])
}
