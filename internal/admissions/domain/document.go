package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// DocumentAIStatus is the automated per-document outcome set right after
// extraction. Unlike the application-level AIStatus there is no pending
// state: a document always gets a verdict on upload.
type DocumentAIStatus string

const (
	DocumentAIVerified DocumentAIStatus = "verified"
	DocumentAIFlagged  DocumentAIStatus = "flagged"
)

// Document is one uploaded file tied to an application and a document type.
type Document struct {
	ID                  string           `json:"id" db:"id"`
	ApplicationID       string           `json:"application_id" db:"application_id"`
	DocumentType        string           `json:"document_type" db:"document_type"`
	FileName            string           `json:"file_name" db:"file_name"`
	FilePath            string           `json:"file_path" db:"file_path"`
	FileSize            int64            `json:"file_size" db:"file_size"`
	MimeType            string           `json:"mime_type" db:"mime_type"`
	ExtractedData       FieldMap         `json:"extracted_data" db:"extracted_data"`
	AIVerificationState DocumentAIStatus `json:"ai_verification_status" db:"ai_verification_status"`
	AdminVerification   AdminStatus      `json:"admin_verification_status" db:"admin_verification_status"`
	IsRejected          bool             `json:"is_rejected" db:"is_rejected"`
	AdminNotes          *string          `json:"admin_notes,omitempty" db:"admin_notes"`
	CreatedAt           time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at" db:"updated_at"`
}

// ReviewClosed reports whether an admin has already given this document a
// terminal judgment. Verification and rejection are mutually exclusive and
// final.
func (d *Document) ReviewClosed() bool {
	return d.AdminVerification == AdminStatusVerified || d.IsRejected
}

// FieldMap is the structured output of document extraction. Keys follow the
// per-document-type schemas; missing fields are simply absent.
type FieldMap map[string]any

// Value implements driver.Valuer for JSONB columns.
func (m FieldMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner for JSONB columns.
func (m *FieldMap) Scan(src any) error {
	if src == nil {
		*m = FieldMap{}
		return nil
	}

	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into FieldMap", src)
	}

	return json.Unmarshal(data, m)
}

// String reads a string-valued field.
func (m FieldMap) String(key string) (string, bool) {
	return JSONMap(m).String(key)
}

// Float reads a numeric field.
func (m FieldMap) Float(key string) (float64, bool) {
	return JSONMap(m).Float(key)
}

// ApplicantContext is the declared identity and eligibility data a document
// is checked against.
type ApplicantContext struct {
	FirstName     string
	LastName      string
	DateOfBirth   string
	MinPercentage float64 // zero means no threshold configured
}

// VerificationResult is the verdict for one document: per-field matches,
// itemized issues and the overall pass/fail.
type VerificationResult struct {
	Verified map[string]bool `json:"verified"`
	Issues   []string        `json:"issues"`
	IsValid  bool            `json:"isValid"`
}

// Value implements driver.Valuer for JSONB columns.
func (r VerificationResult) Value() (driver.Value, error) {
	return json.Marshal(r)
}

// Scan implements sql.Scanner for JSONB columns.
func (r *VerificationResult) Scan(src any) error {
	if src == nil {
		*r = VerificationResult{}
		return nil
	}

	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into VerificationResult", src)
	}

	return json.Unmarshal(data, r)
}

// AggregateAIVerification derives the application-level AI verdict from the
// full set of its documents: flagged if any document is flagged, verified
// only when every document passed, pending when no documents exist yet. The
// merged result carries the issues of all flagged documents in a stable
// order, so the outcome is independent of upload order.
func AggregateAIVerification(docs []*Document) (AIStatus, *VerificationResult) {
	if len(docs) == 0 {
		return AIStatusPending, nil
	}

	sorted := make([]*Document, len(docs))
	copy(sorted, docs)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
		}
		return sorted[i].ID < sorted[j].ID
	})

	status := AIStatusVerified
	result := &VerificationResult{Verified: map[string]bool{}, Issues: []string{}}

	for _, d := range sorted {
		if d.AIVerificationState == DocumentAIFlagged {
			status = AIStatusFlagged
			result.Issues = append(result.Issues,
				fmt.Sprintf("%s flagged by automated verification", d.DocumentType))
		} else {
			result.Verified[d.DocumentType] = true
		}
	}

	result.IsValid = len(result.Issues) == 0
	return status, result
}
