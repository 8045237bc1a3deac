package verification

import (
	"fmt"
	"strings"
	"time"

	"github.com/admitflow/admitflow-backend/internal/admissions/domain"
)

// Accepted date layouts, tried in order. Day-first is the convention on
// the documents this system sees.
var dateLayouts = []string{
	"2006-01-02",
	"2/1/2006",
	"2-1-2006",
	"2/1/06",
	"2-1-06",
}

// Verify cross-checks extracted document fields against the applicant's
// declared data. All applicable rules run; none short-circuits. A field
// absent from the extraction skips its check rather than raising an
// issue, so a thin extraction defers to manual review instead of
// auto-flagging the document.
func Verify(extracted domain.FieldMap, applicant domain.ApplicantContext, documentType string) domain.VerificationResult {
	result := domain.VerificationResult{
		Verified: map[string]bool{},
		Issues:   []string{},
	}

	if name, ok := extracted.String("name"); ok && applicant.FirstName != "" {
		if nameMatches(name, applicant) {
			result.Verified["name"] = true
		} else {
			result.Verified["name"] = false
			result.Issues = append(result.Issues, "Name mismatch between document and application")
		}
	}

	if dob, ok := extracted.String("dateOfBirth"); ok && applicant.DateOfBirth != "" {
		if datesEqual(dob, applicant.DateOfBirth) {
			result.Verified["dateOfBirth"] = true
		} else {
			result.Verified["dateOfBirth"] = false
			result.Issues = append(result.Issues, "Date of birth mismatch")
		}
	}

	if strings.Contains(strings.ToLower(documentType), "marksheet") && applicant.MinPercentage > 0 {
		if pct, ok := extracted.Float("percentage"); ok {
			if pct < applicant.MinPercentage {
				result.Verified["percentage"] = false
				result.Issues = append(result.Issues,
					fmt.Sprintf("Percentage %v%% is below required %v%%", pct, applicant.MinPercentage))
			} else {
				result.Verified["percentage"] = true
			}
		}
	}

	result.IsValid = len(result.Issues) == 0
	return result
}

// nameMatches compares the extracted name's first token against the
// applicant's full name, in both directions. Document names routinely
// carry honorifics or extra middle names, so token containment is the
// strongest check that holds up in practice.
func nameMatches(extracted string, applicant domain.ApplicantContext) bool {
	extractedLower := strings.ToLower(strings.TrimSpace(extracted))
	fullName := strings.ToLower(strings.TrimSpace(applicant.FirstName + " " + applicant.LastName))

	extractedFirst := firstToken(extractedLower)
	applicantFirst := firstToken(fullName)
	if extractedFirst == "" || applicantFirst == "" {
		return false
	}

	return strings.Contains(fullName, extractedFirst) || strings.Contains(extractedLower, applicantFirst)
}

func firstToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// datesEqual compares two date strings after normalizing each to
// YYYY-MM-DD. Strings that fail to parse under every known layout are
// compared literally.
func datesEqual(a, b string) bool {
	na, okA := normalizeDate(a)
	nb, okB := normalizeDate(b)
	if okA && okB {
		return na == nb
	}
	return strings.TrimSpace(a) == strings.TrimSpace(b)
}

func normalizeDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}
