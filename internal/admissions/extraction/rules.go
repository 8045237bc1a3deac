package extraction

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/admitflow/admitflow-backend/internal/admissions/domain"
)

// Ordered candidate patterns per field; the first match wins. A field with
// no match is simply left unset.
var (
	// The capture group only crosses horizontal whitespace, so a name never
	// swallows a capitalized label on the following line.
	namePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i:name)[: \t]+([A-Z][a-z]+(?:[ \t]+[A-Z][a-z]+)+)`),
		regexp.MustCompile(`(?i:name of candidate)[: \t]+([A-Z][a-z]+(?:[ \t]+[A-Z][a-z]+)+)`),
		regexp.MustCompile(`(?i:candidate name)[: \t]+([A-Z][a-z]+(?:[ \t]+[A-Z][a-z]+)+)`),
	}

	dobPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)date of birth[:\s]+(\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4})`),
		regexp.MustCompile(`(?i)dob[:\s]+(\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4})`),
		regexp.MustCompile(`(?i)born[:\s]+(\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4})`),
	}

	percentagePattern = regexp.MustCompile(`(\d+\.?\d*)\s*%`)
	boardPattern      = regexp.MustCompile(`(?i)board[:\s]+([A-Za-z]+)`)
	aadharPattern     = regexp.MustCompile(`\d{4}\s*\d{4}\s*\d{4}`)
	whitespacePattern = regexp.MustCompile(`\s`)
)

// RuleBasedExtractor pattern-matches known field shapes out of raw text.
// It is deterministic, always available, and serves as the fallback when
// the remote extractor is unconfigured or failing.
type RuleBasedExtractor struct{}

// NewRuleBasedExtractor creates the rule-based extractor.
func NewRuleBasedExtractor() *RuleBasedExtractor {
	return &RuleBasedExtractor{}
}

func (e *RuleBasedExtractor) Name() string { return "rules" }

// Extract never fails; text with no recognizable fields yields an empty map.
func (e *RuleBasedExtractor) Extract(_ context.Context, documentType, text string, _ domain.ApplicantContext) (domain.FieldMap, error) {
	fields := domain.FieldMap{}

	if name, ok := firstMatch(namePatterns, text); ok {
		fields["name"] = strings.TrimSpace(name)
	}

	if dob, ok := firstMatch(dobPatterns, text); ok {
		fields["dateOfBirth"] = strings.TrimSpace(dob)
	}

	lowerType := strings.ToLower(documentType)

	if strings.Contains(lowerType, "marksheet") {
		if m := percentagePattern.FindStringSubmatch(text); m != nil {
			if pct, err := strconv.ParseFloat(m[1], 64); err == nil {
				fields["percentage"] = pct
			}
		}
		if m := boardPattern.FindStringSubmatch(text); m != nil {
			fields["board"] = strings.TrimSpace(m[1])
		}
	}

	if strings.Contains(lowerType, "aadhar") {
		if m := aadharPattern.FindString(text); m != "" {
			fields["aadharNumber"] = whitespacePattern.ReplaceAllString(m, "")
		}
	}

	return fields, nil
}

func firstMatch(patterns []*regexp.Regexp, text string) (string, bool) {
	for _, p := range patterns {
		if m := p.FindStringSubmatch(text); m != nil {
			return m[1], true
		}
	}
	return "", false
}
