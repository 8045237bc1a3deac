package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/admitflow/admitflow-backend/internal/admissions/domain"
	"github.com/admitflow/admitflow-backend/pkg/config"
)

// Fixed per-document-type response schemas. The remote model is asked for
// exactly these fields and anything outside the schema is discarded.
// Unknown document types get an unconstrained free-form map.
var llmSchemas = map[string][]string{
	"10th Marksheet":         {"name", "dateOfBirth", "percentage", "board", "rollNumber", "year"},
	"12th Marksheet":         {"name", "dateOfBirth", "percentage", "board", "rollNumber", "year"},
	"Aadhar Card":            {"name", "dateOfBirth", "aadharLast4", "address"},
	"Graduation Certificate": {"name", "degree", "university", "year", "cgpa"},
}

const maxPromptTextLen = 2000

// LLMExtractor delegates field extraction to a remote chat-completions
// endpoint. Any failure - missing credential, network error, timeout,
// malformed response - is returned as an error so the pipeline can fall
// back to rule-based extraction. It is never surfaced to callers.
type LLMExtractor struct {
	apiURL     string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewLLMExtractor creates a remote extractor from AI configuration.
func NewLLMExtractor(cfg *config.AIConfig) *LLMExtractor {
	return &LLMExtractor{
		apiURL: strings.TrimSuffix(cfg.APIURL, "/"),
		apiKey: cfg.APIKey,
		model:  cfg.Model,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

func (e *LLMExtractor) Name() string { return "llm" }

func (e *LLMExtractor) Extract(ctx context.Context, documentType, text string, _ domain.ApplicantContext) (domain.FieldMap, error) {
	if e.apiKey == "" {
		return nil, fmt.Errorf("llm: no API key configured")
	}

	reqBody, err := json.Marshal(chatRequest{
		Model: e.model,
		Messages: []chatMessage{
			{
				Role:    "system",
				Content: "You are an expert at extracting structured data from documents. Return only valid JSON.",
			},
			{
				Role:    "user",
				Content: buildPrompt(documentType, text),
			},
		},
		Temperature: 0.1,
	})
	if err != nil {
		return nil, fmt.Errorf("llm: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.apiURL+"/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("llm: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+e.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("llm: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("llm: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("llm: service returned %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("llm: parse response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("llm: response contained no choices")
	}

	var fields domain.FieldMap
	if err := json.Unmarshal([]byte(parsed.Choices[0].Message.Content), &fields); err != nil {
		return nil, fmt.Errorf("llm: model did not return valid JSON: %w", err)
	}

	return constrainToSchema(documentType, fields), nil
}

// constrainToSchema drops fields outside the fixed schema for known
// document types.
func constrainToSchema(documentType string, fields domain.FieldMap) domain.FieldMap {
	allowed, ok := llmSchemas[documentType]
	if !ok {
		return fields
	}

	out := domain.FieldMap{}
	for _, key := range allowed {
		if v, present := fields[key]; present {
			out[key] = v
		}
	}
	return out
}

// buildPrompt seeds the model with a document-type-specific template.
func buildPrompt(documentType, text string) string {
	if len(text) > maxPromptTextLen {
		text = text[:maxPromptTextLen]
	}

	switch documentType {
	case "10th Marksheet", "12th Marksheet":
		return fmt.Sprintf(`Extract the following information from this %s text:
- Student Name
- Date of Birth
- Percentage/CGPA
- Board Name
- Roll Number
- Year of Passing

Text: %s

Return JSON format: {"name": "...", "dateOfBirth": "...", "percentage": ..., "board": "...", "rollNumber": "...", "year": "..."}`, documentType, text)

	case "Aadhar Card":
		return fmt.Sprintf(`Extract the following information from this Aadhar card text:
- Name
- Date of Birth
- Aadhar Number (last 4 digits only)
- Address

Text: %s

Return JSON format: {"name": "...", "dateOfBirth": "...", "aadharLast4": "...", "address": "..."}`, text)

	case "Graduation Certificate":
		return fmt.Sprintf(`Extract the following information from this graduation certificate:
- Student Name
- Degree Name
- University Name
- Year of Graduation
- CGPA/Percentage

Text: %s

Return JSON format: {"name": "...", "degree": "...", "university": "...", "year": "...", "cgpa": "..."}`, text)

	default:
		return fmt.Sprintf("Extract key information from this %s document. Text: %s", documentType, text)
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}
