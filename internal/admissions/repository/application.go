package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/admitflow/admitflow-backend/internal/admissions/domain"
	"github.com/admitflow/admitflow-backend/pkg/database"
	"github.com/admitflow/admitflow-backend/pkg/errors"
)

const applicationColumns = `
	a.id, a.application_id, a.user_id, a.program_id, a.personal_info,
	a.academic_history, a.status, a.ai_verification_status,
	a.ai_verification_result, a.admin_verification_status, a.issue_raised,
	a.issue_details, a.created_at, a.updated_at`

const applicationJoins = `
	p.name AS program_name,
	un.name AS university_name,
	u.first_name || ' ' || u.last_name AS student_name,
	u.email AS student_email`

// ApplicationRepository handles application persistence.
type ApplicationRepository struct {
	db *database.DB
}

// NewApplicationRepository creates a new application repository.
func NewApplicationRepository(db *database.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// Create inserts a new application.
func (r *ApplicationRepository) Create(ctx context.Context, app *domain.Application) error {
	if app.ID == "" {
		app.ID = uuid.New().String()
	}

	query := `
		INSERT INTO applications (
			id, application_id, user_id, program_id, personal_info,
			academic_history, status, ai_verification_status,
			admin_verification_status, issue_raised
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		app.ID, app.ApplicationID, app.UserID, app.ProgramID,
		app.PersonalInfo, app.AcademicHistory, app.Status,
		app.AIVerificationState, app.AdminVerification, app.IssueRaised,
	).Scan(&app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		return database.MapPQError(err)
	}

	return nil
}

// GetByID gets an application by ID, with program and student details joined.
func (r *ApplicationRepository) GetByID(ctx context.Context, id string) (*domain.Application, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s
		FROM applications a
		JOIN programs p ON p.id = a.program_id
		JOIN universities un ON un.id = p.university_id
		JOIN users u ON u.id = a.user_id
		WHERE a.id = $1
	`, applicationColumns, applicationJoins)

	var app domain.Application
	err := r.db.GetContext(ctx, &app, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("application")
	}
	if err != nil {
		return nil, err
	}

	return &app, nil
}

// Update writes the mutable columns of an application.
func (r *ApplicationRepository) Update(ctx context.Context, app *domain.Application) error {
	query := `
		UPDATE applications SET
			personal_info = $2, academic_history = $3, status = $4,
			ai_verification_status = $5, ai_verification_result = $6,
			admin_verification_status = $7, issue_raised = $8,
			issue_details = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		app.ID, app.PersonalInfo, app.AcademicHistory, app.Status,
		app.AIVerificationState, app.AIVerification, app.AdminVerification,
		app.IssueRaised, app.IssueDetails,
	).Scan(&app.UpdatedAt)
	if err == sql.ErrNoRows {
		return errors.NotFound("application")
	}
	if err != nil {
		return database.MapPQError(err)
	}

	return nil
}

// ListByUser lists a student's applications, newest first.
func (r *ApplicationRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Application, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s
		FROM applications a
		JOIN programs p ON p.id = a.program_id
		JOIN universities un ON un.id = p.university_id
		JOIN users u ON u.id = a.user_id
		WHERE a.user_id = $1
		ORDER BY a.created_at DESC
	`, applicationColumns, applicationJoins)

	applications := []*domain.Application{}
	if err := r.db.SelectContext(ctx, &applications, query, userID); err != nil {
		return nil, err
	}

	return applications, nil
}

// List returns applications matching the filter plus the total match count
// before limit/offset.
func (r *ApplicationRepository) List(ctx context.Context, filter ApplicationFilter) ([]*domain.Application, int, error) {
	where, args := buildApplicationWhere(filter)

	countQuery := "SELECT COUNT(*) FROM applications a" + where
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT %s, %s
		FROM applications a
		JOIN programs p ON p.id = a.program_id
		JOIN universities un ON un.id = p.university_id
		JOIN users u ON u.id = a.user_id
		%s
		ORDER BY a.created_at DESC
	`, applicationColumns, applicationJoins, where)

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, filter.Offset)
	}

	applications := []*domain.Application{}
	if err := r.db.SelectContext(ctx, &applications, query, args...); err != nil {
		return nil, 0, err
	}

	return applications, total, nil
}

// buildApplicationWhere translates the structured filter into a WHERE
// clause with numbered placeholders. Values never reach the query text.
func buildApplicationWhere(filter ApplicationFilter) (string, []any) {
	var clauses []string
	var args []any

	add := func(column string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if filter.Status != "" {
		add("a.status", filter.Status)
	}
	if filter.AIStatus != "" {
		add("a.ai_verification_status", filter.AIStatus)
	}
	if filter.UserID != "" {
		add("a.user_id", filter.UserID)
	}
	if filter.ProgramID != "" {
		add("a.program_id", filter.ProgramID)
	}

	if len(clauses) == 0 {
		return "", nil
	}

	return " WHERE " + strings.Join(clauses, " AND "), args
}

// CountByStatus returns application counts grouped by status.
func (r *ApplicationRepository) CountByStatus(ctx context.Context) (map[domain.Status]int, error) {
	query := `SELECT status, COUNT(*) AS count FROM applications GROUP BY status`

	rows := []struct {
		Status domain.Status `db:"status"`
		Count  int           `db:"count"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}

	counts := make(map[domain.Status]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}

	return counts, nil
}

// CountByAIStatus returns application counts grouped by the automated
// verification state.
func (r *ApplicationRepository) CountByAIStatus(ctx context.Context) (map[domain.AIStatus]int, error) {
	query := `SELECT ai_verification_status, COUNT(*) AS count FROM applications GROUP BY ai_verification_status`

	rows := []struct {
		Status domain.AIStatus `db:"ai_verification_status"`
		Count  int             `db:"count"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}

	counts := make(map[domain.AIStatus]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}

	return counts, nil
}
