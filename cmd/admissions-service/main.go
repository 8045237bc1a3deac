package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/admitflow/admitflow-backend/internal/admissions/events"
	"github.com/admitflow/admitflow-backend/internal/admissions/extraction"
	"github.com/admitflow/admitflow-backend/internal/admissions/handler"
	"github.com/admitflow/admitflow-backend/internal/admissions/repository"
	"github.com/admitflow/admitflow-backend/internal/admissions/service"
	"github.com/admitflow/admitflow-backend/internal/admissions/storage"
	"github.com/admitflow/admitflow-backend/pkg/auth"
	"github.com/admitflow/admitflow-backend/pkg/config"
	"github.com/admitflow/admitflow-backend/pkg/database"
	"github.com/admitflow/admitflow-backend/pkg/httputil"
	"github.com/admitflow/admitflow-backend/pkg/logger"
	"github.com/admitflow/admitflow-backend/pkg/messaging"
)

func main() {
	cfg, err := config.LoadWithValidation("admissions-service")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New("admissions-service", cfg.Server.Environment)
	log.Info().Msg("starting Admissions Service")

	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	rmq, err := messaging.New(&cfg.RabbitMQ, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
	}
	defer rmq.Close()

	publisher, err := events.NewAdmissionsEventPublisher(rmq, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create event publisher")
	}

	uploads, err := storage.NewUploadStore(&cfg.Uploads)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to prepare upload directory")
	}

	// Repositories
	appRepo := repository.NewApplicationRepository(db)
	docRepo := repository.NewDocumentRepository(db)
	programRepo := repository.NewProgramRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	ticketRepo := repository.NewTicketRepository(db)
	studentRepo := repository.NewStudentRepository(db)

	// Extraction pipeline: the remote extractor is optional and always
	// backed by the deterministic rule-based fallback.
	extractors := []extraction.Extractor{}
	if cfg.AI.APIKey != "" {
		extractors = append(extractors, extraction.NewLLMExtractor(&cfg.AI))
		log.Info().Str("model", cfg.AI.Model).Msg("remote extraction enabled")
	}
	extractors = append(extractors, extraction.NewRuleBasedExtractor())
	pipeline := extraction.NewPipeline(log, extractors...)

	// Services
	appService := service.NewApplicationService(appRepo, docRepo, programRepo, paymentRepo, ticketRepo, publisher, log)
	docService := service.NewDocumentService(docRepo, appRepo, programRepo, studentRepo, uploads, pipeline, publisher, log)
	paymentService := service.NewPaymentService(paymentRepo, appRepo, programRepo, publisher, &cfg.Payments, log)
	ticketService := service.NewTicketService(ticketRepo, appRepo, log)

	// Handlers
	appHandler := handler.NewApplicationHandler(appService, log)
	docHandler := handler.NewDocumentHandler(docService, log)
	paymentHandler := handler.NewPaymentHandler(paymentService, log)
	ticketHandler := handler.NewTicketHandler(ticketService, log)
	programHandler := handler.NewProgramHandler(programRepo, log)

	authManager := auth.NewManager(&cfg.JWT)

	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]interface{}{
			"status":   "healthy",
			"service":  "admissions-service",
			"database": db.Health(r.Context()),
			"rabbitmq": rmq.Health(),
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httputil.Authenticator(authManager))

		// Programs (read-only catalog)
		r.Route("/programs", func(r chi.Router) {
			r.Get("/", programHandler.List)
			r.Get("/{id}", programHandler.Get)
			r.Get("/{id}/required-documents", programHandler.RequiredDocuments)
		})

		// Applications
		r.Route("/applications", func(r chi.Router) {
			r.Get("/", appHandler.List)
			r.Post("/", appHandler.Create)
			r.Get("/{id}", appHandler.Get)
			r.Put("/{id}", appHandler.Update)
			r.Post("/{id}/submit", appHandler.Submit)
			r.Post("/{id}/documents", docHandler.Upload)
			r.Get("/{id}/documents", docHandler.ListByApplication)
			r.Get("/{id}/payments", paymentHandler.ListByApplication)
		})

		// Documents
		r.Get("/documents/{id}", docHandler.Get)

		// Payments
		r.Route("/payments", func(r chi.Router) {
			r.Get("/", paymentHandler.List)
			r.Post("/", paymentHandler.Create)
			r.Post("/verify", paymentHandler.RecordResult)
		})

		// Support tickets
		r.Route("/tickets", func(r chi.Router) {
			r.Get("/", ticketHandler.List)
			r.Post("/", ticketHandler.Create)
			r.Get("/{id}", ticketHandler.Get)
		})

		// Admin review workflow
		r.Route("/admin", func(r chi.Router) {
			r.Use(httputil.RequireRole(auth.RoleAdmin))

			r.Get("/applications", appHandler.AdminList)
			r.Post("/applications/{id}/approve", appHandler.Approve)
			r.Post("/applications/{id}/raise-issue", appHandler.RaiseIssue)
			r.Get("/analytics", appHandler.Analytics)

			r.Put("/documents/{id}/verify", docHandler.Verify)

			r.Put("/programs/{id}/required-documents", programHandler.UpsertRequiredDocument)

			r.Get("/tickets", ticketHandler.AdminList)
			r.Put("/tickets/{id}", ticketHandler.AdminUpdate)
		})
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
