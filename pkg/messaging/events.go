package messaging

import (
	"encoding/json"
	"time"
)

// Event types
const (
	// Application lifecycle events
	EventApplicationCreated     = "application.created"
	EventApplicationSubmitted   = "application.submitted"
	EventApplicationVerified    = "application.verified"
	EventApplicationIssueRaised = "application.issue.raised"

	// Document events
	EventDocumentUploaded = "document.uploaded"
	EventDocumentVerified = "document.verified"
	EventDocumentRejected = "document.rejected"

	// Payment events
	EventPaymentCompleted = "payment.completed"
	EventPaymentFailed    = "payment.failed"
)

// Exchange names
const (
	ExchangeApplicationEvents = "application.events"
)

// Event is the base event structure
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            GenerateEventID(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// UnmarshalData unmarshals the event data into the provided struct
func (e *Event) UnmarshalData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// ApplicationStatusEvent is published on application lifecycle transitions
type ApplicationStatusEvent struct {
	ApplicationID string `json:"application_id"`
	UserID        string `json:"user_id"`
	ProgramID     string `json:"program_id"`
	Status        string `json:"status"`
	IssueDetails  string `json:"issue_details,omitempty"`
}

// DocumentEvent is published when a document is uploaded or reviewed
type DocumentEvent struct {
	DocumentID    string `json:"document_id"`
	ApplicationID string `json:"application_id"`
	DocumentType  string `json:"document_type"`
	AIStatus      string `json:"ai_status,omitempty"`
	AdminStatus   string `json:"admin_status,omitempty"`
}

// PaymentEvent is published when a gateway callback settles a payment
type PaymentEvent struct {
	PaymentID     string  `json:"payment_id"`
	ApplicationID string  `json:"application_id"`
	PaymentType   string  `json:"payment_type"`
	Amount        float64 `json:"amount"`
	Status        string  `json:"status"`
}
