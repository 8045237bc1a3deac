package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/admitflow/admitflow-backend/internal/admissions/domain"
	"github.com/admitflow/admitflow-backend/internal/admissions/events"
	"github.com/admitflow/admitflow-backend/internal/admissions/extraction"
	"github.com/admitflow/admitflow-backend/internal/admissions/repository"
	"github.com/admitflow/admitflow-backend/internal/admissions/service"
	"github.com/admitflow/admitflow-backend/internal/admissions/storage"
	"github.com/admitflow/admitflow-backend/pkg/config"
	"github.com/admitflow/admitflow-backend/pkg/logger"
)

const (
	testStudentID = "user-student"
	testProgramID = "prog-btech"
)

// fixture wires the services against in-memory stores with one seeded
// program (fee 1000, minimum 70%) requiring a 10th Marksheet and an
// Aadhar Card.
type fixture struct {
	apps      *service.ApplicationService
	documents *service.DocumentService
	payments  *service.PaymentService
	tickets   *service.TicketService

	appStore     *repository.MemoryApplicationStore
	docStore     *repository.MemoryDocumentStore
	paymentStore *repository.MemoryPaymentStore
	programStore *repository.MemoryProgramStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	log := logger.New("test", "test")

	appStore := repository.NewMemoryApplicationStore()
	docStore := repository.NewMemoryDocumentStore()
	paymentStore := repository.NewMemoryPaymentStore()
	ticketStore := repository.NewMemoryTicketStore()
	programStore := repository.NewMemoryProgramStore()
	studentStore := repository.NewMemoryStudentStore()

	programStore.AddProgram(&domain.Program{
		ID:             testProgramID,
		UniversityID:   "uni-1",
		Name:           "B.Tech Computer Science",
		Code:           "BTECH-CSE",
		ApplicationFee: 1000,
		EligibilityCriteria: domain.JSONMap{
			"minPercentage": 70.0,
		},
	})
	for _, docType := range []string{"10th Marksheet", "Aadhar Card"} {
		require.NoError(t, programStore.UpsertRequiredDocument(ctx, &domain.RequiredDocument{
			ProgramID:    testProgramID,
			DocumentType: docType,
			IsRequired:   true,
		}))
	}
	require.NoError(t, programStore.UpsertRequiredDocument(ctx, &domain.RequiredDocument{
		ProgramID:    testProgramID,
		DocumentType: "Graduation Certificate",
		IsOptional:   true,
	}))

	studentStore.AddStudent(&domain.Student{
		ID:        testStudentID,
		FirstName: "Amit",
		LastName:  "Kumar",
		Email:     "amit@example.com",
	})

	uploads, err := storage.NewUploadStore(&config.UploadsConfig{
		Dir:         t.TempDir(),
		MaxFileSize: 1 << 20,
	})
	require.NoError(t, err)

	pipeline := extraction.NewPipeline(log, extraction.NewRuleBasedExtractor())
	publisher := events.NoopPublisher{}

	return &fixture{
		apps: service.NewApplicationService(appStore, docStore, programStore, paymentStore, ticketStore, publisher, log),
		documents: service.NewDocumentService(
			docStore, appStore, programStore, studentStore, uploads, pipeline, publisher, log),
		payments: service.NewPaymentService(paymentStore, appStore, programStore, publisher, &config.PaymentsConfig{
			GatewayKey:         "test_key",
			Currency:           "INR",
			IssueResolutionFee: 500,
		}, log),
		tickets: service.NewTicketService(ticketStore, appStore, log),

		appStore:     appStore,
		docStore:     docStore,
		paymentStore: paymentStore,
		programStore: programStore,
	}
}

// createApplication creates a draft application with matching personal info.
func (f *fixture) createApplication(t *testing.T) *domain.Application {
	t.Helper()
	app, err := f.apps.Create(context.Background(), testStudentID, testProgramID, domain.JSONMap{
		"firstName":   "Amit",
		"lastName":    "Kumar",
		"dateOfBirth": "2005-08-15",
	}, domain.JSONMap{"board": "CBSE"})
	require.NoError(t, err)
	return app
}

// uploadCleanDocument uploads a document whose extracted fields all match
// the application, so its automated verdict is verified.
func (f *fixture) uploadCleanDocument(t *testing.T, applicationID, docType string) *domain.Document {
	t.Helper()
	text := "Name: Amit Kumar\nDOB: 15/08/2005\nTotal: 82.5%"
	doc, _, err := f.documents.Upload(context.Background(),
		testStudentID, applicationID, docType, "scan.txt", "text/plain", []byte(text))
	require.NoError(t, err)
	return doc
}
