package domain

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// Status is the human-facing lifecycle status of an application.
type Status string

const (
	StatusDraft           Status = "draft"
	StatusSubmitted       Status = "submitted"
	StatusPaymentReceived Status = "payment_received"
	StatusUnderReview     Status = "under_review"
	StatusVerified        Status = "verified"
	StatusIssueRaised     Status = "issue_raised"
)

// AIStatus is the automated verification outcome, independent of admin review.
type AIStatus string

const (
	AIStatusPending  AIStatus = "pending"
	AIStatusVerified AIStatus = "verified"
	AIStatusFlagged  AIStatus = "flagged"
)

// AdminStatus is the manual verification outcome.
type AdminStatus string

const (
	AdminStatusPending  AdminStatus = "pending"
	AdminStatusVerified AdminStatus = "verified"
)

// Application represents a student's submission to one program.
type Application struct {
	ID                  string              `json:"id" db:"id"`
	ApplicationID       string              `json:"application_id" db:"application_id"`
	UserID              string              `json:"user_id" db:"user_id"`
	ProgramID           string              `json:"program_id" db:"program_id"`
	PersonalInfo        JSONMap             `json:"personal_info" db:"personal_info"`
	AcademicHistory     JSONMap             `json:"academic_history" db:"academic_history"`
	Status              Status              `json:"status" db:"status"`
	AIVerificationState AIStatus            `json:"ai_verification_status" db:"ai_verification_status"`
	AIVerification      *VerificationResult `json:"ai_verification_result,omitempty" db:"ai_verification_result"`
	AdminVerification   AdminStatus         `json:"admin_verification_status" db:"admin_verification_status"`
	IssueRaised         bool                `json:"issue_raised" db:"issue_raised"`
	IssueDetails        *string             `json:"issue_details,omitempty" db:"issue_details"`
	CreatedAt           time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at" db:"updated_at"`

	// Joined fields, populated by list/detail queries only
	ProgramName    *string `json:"program_name,omitempty" db:"program_name"`
	UniversityName *string `json:"university_name,omitempty" db:"university_name"`
	StudentName    *string `json:"student_name,omitempty" db:"student_name"`
	StudentEmail   *string `json:"student_email,omitempty" db:"student_email"`
}

// studentTransitions are the status changes a student may trigger directly.
// Everything else goes through a guarded service action (submit, admin
// approve/raise-issue, document recompute, payment callback).
var studentTransitions = map[Status][]Status{
	StatusDraft: {StatusSubmitted},
}

// CanStudentTransition reports whether a student may move an application
// from one status to another via a plain update.
func CanStudentTransition(from, to Status) bool {
	for _, next := range studentTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NewApplicationID generates an application identifier in the form
// APP-<yyyymm>-<6-digit-random>.
func NewApplicationID(now time.Time) string {
	return fmt.Sprintf("APP-%s-%06d", now.Format("200601"), rand.IntN(1000000))
}

// Program is an academic program offered by a university.
type Program struct {
	ID                  string    `json:"id" db:"id"`
	UniversityID        string    `json:"university_id" db:"university_id"`
	Name                string    `json:"name" db:"name"`
	Code                string    `json:"code" db:"code"`
	ApplicationFee      float64   `json:"application_fee" db:"application_fee"`
	EligibilityCriteria JSONMap   `json:"eligibility_criteria" db:"eligibility_criteria"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`

	UniversityName *string `json:"university_name,omitempty" db:"university_name"`
}

// MinPercentage reads the minimum percentage threshold from the program's
// eligibility criteria. Zero means no threshold is configured.
func (p *Program) MinPercentage() float64 {
	if p == nil || p.EligibilityCriteria == nil {
		return 0
	}
	v, ok := p.EligibilityCriteria.Float("minPercentage")
	if !ok {
		return 0
	}
	return v
}

// RequiredDocument is one entry of the per-program required-document catalog.
type RequiredDocument struct {
	ID           string    `json:"id" db:"id"`
	ProgramID    string    `json:"program_id" db:"program_id"`
	DocumentType string    `json:"document_type" db:"document_type"`
	IsRequired   bool      `json:"is_required" db:"is_required"`
	IsOptional   bool      `json:"is_optional" db:"is_optional"`
	Description  *string   `json:"description,omitempty" db:"description"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Student is the slice of the external identity record the admissions core
// reads: the declared name used for document cross-checks.
type Student struct {
	ID        string `json:"id" db:"id"`
	FirstName string `json:"first_name" db:"first_name"`
	LastName  string `json:"last_name" db:"last_name"`
	Email     string `json:"email" db:"email"`
}

// MissingDocumentsError blocks submission until every required document
// type has been uploaded. MissingTypes is the exact set difference
// (required types) - (uploaded types).
type MissingDocumentsError struct {
	MissingTypes []string
}

func (e *MissingDocumentsError) Error() string {
	return fmt.Sprintf("missing required documents: %v", e.MissingTypes)
}
