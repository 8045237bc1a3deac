package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/admitflow/admitflow-backend/internal/admissions/domain"
	"github.com/admitflow/admitflow-backend/pkg/errors"
)

// In-memory adapters behind the same store interfaces as the Postgres
// repositories. Used by tests and demos; not a parallel code path in the
// services, which only see the interfaces.

// MemoryApplicationStore is an in-memory ApplicationStore.
type MemoryApplicationStore struct {
	mu   sync.Mutex
	rows map[string]*domain.Application
}

// NewMemoryApplicationStore creates an empty in-memory application store.
func NewMemoryApplicationStore() *MemoryApplicationStore {
	return &MemoryApplicationStore{rows: map[string]*domain.Application{}}
}

func (s *MemoryApplicationStore) Create(_ context.Context, app *domain.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if app.ID == "" {
		app.ID = uuid.New().String()
	}
	app.CreatedAt = time.Now()
	app.UpdatedAt = app.CreatedAt

	cp := *app
	s.rows[app.ID] = &cp
	return nil
}

func (s *MemoryApplicationStore) GetByID(_ context.Context, id string) (*domain.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	app, ok := s.rows[id]
	if !ok {
		return nil, errors.NotFound("application")
	}
	cp := *app
	return &cp, nil
}

func (s *MemoryApplicationStore) Update(_ context.Context, app *domain.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rows[app.ID]; !ok {
		return errors.NotFound("application")
	}
	app.UpdatedAt = time.Now()

	cp := *app
	s.rows[app.ID] = &cp
	return nil
}

func (s *MemoryApplicationStore) ListByUser(ctx context.Context, userID string) ([]*domain.Application, error) {
	apps, _, err := s.List(ctx, ApplicationFilter{UserID: userID})
	return apps, err
}

func (s *MemoryApplicationStore) List(_ context.Context, filter ApplicationFilter) ([]*domain.Application, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := []*domain.Application{}
	for _, app := range s.rows {
		if filter.Status != "" && app.Status != filter.Status {
			continue
		}
		if filter.AIStatus != "" && app.AIVerificationState != filter.AIStatus {
			continue
		}
		if filter.UserID != "" && app.UserID != filter.UserID {
			continue
		}
		if filter.ProgramID != "" && app.ProgramID != filter.ProgramID {
			continue
		}
		cp := *app
		matched = append(matched, &cp)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			matched = nil
		} else {
			matched = matched[filter.Offset:]
		}
	}
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}

	return matched, total, nil
}

func (s *MemoryApplicationStore) CountByStatus(_ context.Context) (map[domain.Status]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := map[domain.Status]int{}
	for _, app := range s.rows {
		counts[app.Status]++
	}
	return counts, nil
}

func (s *MemoryApplicationStore) CountByAIStatus(_ context.Context) (map[domain.AIStatus]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := map[domain.AIStatus]int{}
	for _, app := range s.rows {
		counts[app.AIVerificationState]++
	}
	return counts, nil
}

// MemoryDocumentStore is an in-memory DocumentStore.
type MemoryDocumentStore struct {
	mu   sync.Mutex
	rows map[string]*domain.Document
	seq  int
}

// NewMemoryDocumentStore creates an empty in-memory document store.
func NewMemoryDocumentStore() *MemoryDocumentStore {
	return &MemoryDocumentStore{rows: map[string]*domain.Document{}}
}

func (s *MemoryDocumentStore) Create(_ context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	// Distinct creation instants even within one clock tick, so ordering
	// by CreatedAt stays deterministic in tests.
	s.seq++
	doc.CreatedAt = time.Now().Add(time.Duration(s.seq) * time.Microsecond)
	doc.UpdatedAt = doc.CreatedAt

	cp := *doc
	s.rows[doc.ID] = &cp
	return nil
}

func (s *MemoryDocumentStore) GetByID(_ context.Context, id string) (*domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.rows[id]
	if !ok {
		return nil, errors.NotFound("document")
	}
	cp := *doc
	return &cp, nil
}

func (s *MemoryDocumentStore) Update(_ context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rows[doc.ID]; !ok {
		return errors.NotFound("document")
	}
	doc.UpdatedAt = time.Now()

	cp := *doc
	s.rows[doc.ID] = &cp
	return nil
}

func (s *MemoryDocumentStore) ListByApplication(_ context.Context, applicationID string) ([]*domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs := []*domain.Document{}
	for _, doc := range s.rows {
		if doc.ApplicationID == applicationID {
			cp := *doc
			docs = append(docs, &cp)
		}
	}

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].CreatedAt.Before(docs[j].CreatedAt)
	})

	return docs, nil
}

// MemoryProgramStore is an in-memory ProgramStore seeded by tests.
type MemoryProgramStore struct {
	mu       sync.Mutex
	programs map[string]*domain.Program
	catalog  map[string][]*domain.RequiredDocument
}

// NewMemoryProgramStore creates an empty in-memory program store.
func NewMemoryProgramStore() *MemoryProgramStore {
	return &MemoryProgramStore{
		programs: map[string]*domain.Program{},
		catalog:  map[string][]*domain.RequiredDocument{},
	}
}

// AddProgram seeds a program.
func (s *MemoryProgramStore) AddProgram(p *domain.Program) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *p
	s.programs[p.ID] = &cp
}

func (s *MemoryProgramStore) GetByID(_ context.Context, id string) (*domain.Program, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.programs[id]
	if !ok {
		return nil, errors.NotFound("program")
	}
	cp := *p
	return &cp, nil
}

func (s *MemoryProgramStore) List(_ context.Context) ([]*domain.Program, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	programs := []*domain.Program{}
	for _, p := range s.programs {
		cp := *p
		programs = append(programs, &cp)
	}
	sort.Slice(programs, func(i, j int) bool { return programs[i].Name < programs[j].Name })
	return programs, nil
}

func (s *MemoryProgramStore) RequiredDocuments(_ context.Context, programID string) ([]*domain.RequiredDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := []*domain.RequiredDocument{}
	for _, e := range s.catalog[programID] {
		cp := *e
		entries = append(entries, &cp)
	}
	return entries, nil
}

func (s *MemoryProgramStore) UpsertRequiredDocument(_ context.Context, entry *domain.RequiredDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	entry.UpdatedAt = time.Now()

	for i, existing := range s.catalog[entry.ProgramID] {
		if existing.DocumentType == entry.DocumentType {
			entry.ID = existing.ID
			entry.CreatedAt = existing.CreatedAt
			cp := *entry
			s.catalog[entry.ProgramID][i] = &cp
			return nil
		}
	}

	entry.CreatedAt = entry.UpdatedAt
	cp := *entry
	s.catalog[entry.ProgramID] = append(s.catalog[entry.ProgramID], &cp)
	return nil
}

// MemoryPaymentStore is an in-memory PaymentStore.
type MemoryPaymentStore struct {
	mu   sync.Mutex
	rows map[string]*domain.Payment
}

// NewMemoryPaymentStore creates an empty in-memory payment store.
func NewMemoryPaymentStore() *MemoryPaymentStore {
	return &MemoryPaymentStore{rows: map[string]*domain.Payment{}}
}

func (s *MemoryPaymentStore) Create(_ context.Context, p *domain.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt

	cp := *p
	s.rows[p.ID] = &cp
	return nil
}

func (s *MemoryPaymentStore) GetByPaymentID(_ context.Context, paymentID string) (*domain.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.rows {
		if p.PaymentID == paymentID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, errors.NotFound("payment")
}

func (s *MemoryPaymentStore) Update(_ context.Context, p *domain.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rows[p.ID]; !ok {
		return errors.NotFound("payment")
	}
	p.UpdatedAt = time.Now()

	cp := *p
	s.rows[p.ID] = &cp
	return nil
}

func (s *MemoryPaymentStore) ListByUser(_ context.Context, userID string) ([]*domain.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	payments := []*domain.Payment{}
	for _, p := range s.rows {
		if p.UserID == userID {
			cp := *p
			payments = append(payments, &cp)
		}
	}
	sortPaymentsNewestFirst(payments)
	return payments, nil
}

func (s *MemoryPaymentStore) ListByApplication(_ context.Context, applicationID string) ([]*domain.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	payments := []*domain.Payment{}
	for _, p := range s.rows {
		if p.ApplicationID == applicationID {
			cp := *p
			payments = append(payments, &cp)
		}
	}
	sortPaymentsNewestFirst(payments)
	return payments, nil
}

func (s *MemoryPaymentStore) HasCompletedApplicationFee(_ context.Context, applicationID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.rows {
		if p.ApplicationID == applicationID &&
			p.PaymentType == domain.PaymentTypeApplicationFee &&
			p.Status == domain.PaymentStatusCompleted {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryPaymentStore) TotalCompletedAmount(_ context.Context) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total float64
	for _, p := range s.rows {
		if p.Status == domain.PaymentStatusCompleted {
			total += p.Amount
		}
	}
	return total, nil
}

func sortPaymentsNewestFirst(payments []*domain.Payment) {
	sort.Slice(payments, func(i, j int) bool {
		return payments[i].CreatedAt.After(payments[j].CreatedAt)
	})
}

// MemoryTicketStore is an in-memory TicketStore.
type MemoryTicketStore struct {
	mu   sync.Mutex
	rows map[string]*domain.SupportTicket
}

// NewMemoryTicketStore creates an empty in-memory ticket store.
func NewMemoryTicketStore() *MemoryTicketStore {
	return &MemoryTicketStore{rows: map[string]*domain.SupportTicket{}}
}

func (s *MemoryTicketStore) Create(_ context.Context, t *domain.SupportTicket) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt

	cp := *t
	s.rows[t.ID] = &cp
	return nil
}

func (s *MemoryTicketStore) GetByID(_ context.Context, id string) (*domain.SupportTicket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.rows[id]
	if !ok {
		return nil, errors.NotFound("ticket")
	}
	cp := *t
	return &cp, nil
}

func (s *MemoryTicketStore) Update(_ context.Context, t *domain.SupportTicket) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rows[t.ID]; !ok {
		return errors.NotFound("ticket")
	}
	t.UpdatedAt = time.Now()

	cp := *t
	s.rows[t.ID] = &cp
	return nil
}

func (s *MemoryTicketStore) ListByUser(_ context.Context, userID string) ([]*domain.SupportTicket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tickets := []*domain.SupportTicket{}
	for _, t := range s.rows {
		if t.UserID == userID {
			cp := *t
			tickets = append(tickets, &cp)
		}
	}
	sortTicketsNewestFirst(tickets)
	return tickets, nil
}

func (s *MemoryTicketStore) List(_ context.Context) ([]*domain.SupportTicket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tickets := []*domain.SupportTicket{}
	for _, t := range s.rows {
		cp := *t
		tickets = append(tickets, &cp)
	}
	sortTicketsNewestFirst(tickets)
	return tickets, nil
}

func (s *MemoryTicketStore) CountOpen(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, t := range s.rows {
		if t.Status == domain.TicketStatusOpen || t.Status == domain.TicketStatusInProgress {
			count++
		}
	}
	return count, nil
}

func sortTicketsNewestFirst(tickets []*domain.SupportTicket) {
	sort.Slice(tickets, func(i, j int) bool {
		return tickets[i].CreatedAt.After(tickets[j].CreatedAt)
	})
}

// MemoryStudentStore is an in-memory StudentStore seeded by tests.
type MemoryStudentStore struct {
	mu   sync.Mutex
	rows map[string]*domain.Student
}

// NewMemoryStudentStore creates an empty in-memory student store.
func NewMemoryStudentStore() *MemoryStudentStore {
	return &MemoryStudentStore{rows: map[string]*domain.Student{}}
}

// AddStudent seeds a student record.
func (s *MemoryStudentStore) AddStudent(st *domain.Student) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *st
	s.rows[st.ID] = &cp
}

func (s *MemoryStudentStore) GetByID(_ context.Context, id string) (*domain.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.rows[id]
	if !ok {
		return nil, errors.NotFound("user")
	}
	cp := *st
	return &cp, nil
}
