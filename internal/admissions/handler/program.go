package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/admitflow/admitflow-backend/internal/admissions/domain"
	"github.com/admitflow/admitflow-backend/internal/admissions/repository"
	"github.com/admitflow/admitflow-backend/pkg/httputil"
	"github.com/admitflow/admitflow-backend/pkg/logger"
)

// ProgramHandler serves the program catalog. Programs are read-only here;
// only the required-document catalog is admin-writable.
type ProgramHandler struct {
	programs repository.ProgramStore
	logger   *logger.Logger
}

// NewProgramHandler creates a new program handler.
func NewProgramHandler(programs repository.ProgramStore, log *logger.Logger) *ProgramHandler {
	return &ProgramHandler{
		programs: programs,
		logger:   log,
	}
}

// List lists all programs.
func (h *ProgramHandler) List(w http.ResponseWriter, r *http.Request) {
	programs, err := h.programs.List(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, programs)
}

// Get gets one program.
func (h *ProgramHandler) Get(w http.ResponseWriter, r *http.Request) {
	program, err := h.programs.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, program)
}

// RequiredDocuments lists a program's document catalog.
func (h *ProgramHandler) RequiredDocuments(w http.ResponseWriter, r *http.Request) {
	entries, err := h.programs.RequiredDocuments(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, entries)
}

// UpsertRequiredDocumentRequest is the payload for one catalog entry.
type UpsertRequiredDocumentRequest struct {
	DocumentType string  `json:"document_type" validate:"required"`
	IsRequired   bool    `json:"is_required"`
	IsOptional   bool    `json:"is_optional"`
	Description  *string `json:"description"`
}

// UpsertRequiredDocument inserts or updates one catalog entry for a program.
func (h *ProgramHandler) UpsertRequiredDocument(w http.ResponseWriter, r *http.Request) {
	var req UpsertRequiredDocumentRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	entry := &domain.RequiredDocument{
		ProgramID:    chi.URLParam(r, "id"),
		DocumentType: req.DocumentType,
		IsRequired:   req.IsRequired,
		IsOptional:   req.IsOptional,
		Description:  req.Description,
	}
	if err := h.programs.UpsertRequiredDocument(r.Context(), entry); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, entry)
}
