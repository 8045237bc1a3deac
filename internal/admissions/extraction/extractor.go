package extraction

import (
	"context"

	"github.com/admitflow/admitflow-backend/internal/admissions/domain"
	"github.com/admitflow/admitflow-backend/pkg/logger"
)

// Extractor turns raw document text into a structured field map.
// Implementations can be swapped in to add remote AI capabilities without
// changing the service layer.
type Extractor interface {
	// Extract produces a field map for the given document type. A non-nil
	// error means this extractor could not produce a result and the next
	// one in the pipeline should try.
	Extract(ctx context.Context, documentType, text string, applicant domain.ApplicantContext) (domain.FieldMap, error)

	// Name returns the extractor name for logging
	Name() string
}

// Pipeline runs extractors in order and falls back on failure. Extraction
// as a whole never fails: a remote extractor erroring out is absorbed here
// and the caller cannot tell a remote result from a fallback result.
type Pipeline struct {
	extractors []Extractor
	log        *logger.Logger
}

// NewPipeline creates an extraction pipeline trying extractors in the given order.
func NewPipeline(log *logger.Logger, extractors ...Extractor) *Pipeline {
	return &Pipeline{
		extractors: extractors,
		log:        log.WithComponent("extraction"),
	}
}

// Extract runs the pipeline. Failed extractors are logged and skipped; if
// every extractor fails the result is an empty field map, never an error.
func (p *Pipeline) Extract(ctx context.Context, documentType, text string, applicant domain.ApplicantContext) domain.FieldMap {
	for _, ex := range p.extractors {
		fields, err := ex.Extract(ctx, documentType, text, applicant)
		if err != nil {
			p.log.Warn().Err(err).
				Str("extractor", ex.Name()).
				Str("document_type", documentType).
				Msg("extractor failed, trying next")
			continue
		}

		p.log.Debug().
			Str("extractor", ex.Name()).
			Str("document_type", documentType).
			Int("fields", len(fields)).
			Msg("extraction completed")
		return fields
	}

	return domain.FieldMap{}
}
