package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/admitflow/admitflow-backend/internal/admissions/service"
	"github.com/admitflow/admitflow-backend/pkg/errors"
	"github.com/admitflow/admitflow-backend/pkg/httputil"
	"github.com/admitflow/admitflow-backend/pkg/logger"
)

// Memory cap for parsing multipart uploads; larger bodies spill to disk.
const maxUploadMemory = 10 << 20

// DocumentHandler handles document endpoints.
type DocumentHandler struct {
	service *service.DocumentService
	logger  *logger.Logger
}

// NewDocumentHandler creates a new document handler.
func NewDocumentHandler(svc *service.DocumentService, log *logger.Logger) *DocumentHandler {
	return &DocumentHandler{
		service: svc,
		logger:  log,
	}
}

// Upload accepts a multipart upload with a "file" part and a
// "document_type" field, runs the extraction and verification pipeline and
// returns the stored document with its verdict.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		httputil.Error(w, errors.BadRequest("request is not valid multipart form data"))
		return
	}

	documentType := r.FormValue("document_type")
	if documentType == "" {
		httputil.Error(w, errors.Validation(map[string]string{
			"document_type": "document type is required",
		}))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.Error(w, errors.Validation(map[string]string{
			"file": "a file upload is required",
		}))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		httputil.Error(w, errors.BadRequest("could not read uploaded file"))
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	// Strip parameters such as "; charset=utf-8".
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = mimeType[:i]
	}
	mimeType = strings.TrimSpace(mimeType)

	ctx := r.Context()
	doc, verdict, err := h.service.Upload(ctx, httputil.GetUserID(ctx),
		chi.URLParam(r, "id"), documentType, header.Filename, mimeType, data)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, map[string]any{
		"document":     doc,
		"verification": verdict,
	})
}

// Get gets one document.
func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	doc, err := h.service.Get(ctx, httputil.GetUserID(ctx), httputil.GetUserRole(ctx), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, doc)
}

// ListByApplication lists an application's documents.
func (h *DocumentHandler) ListByApplication(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	docs, err := h.service.ListByApplication(ctx, httputil.GetUserID(ctx),
		httputil.GetUserRole(ctx), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, docs)
}

// VerifyDocumentRequest is the payload for an admin document review.
type VerifyDocumentRequest struct {
	Status string  `json:"status" validate:"required,oneof=verified rejected"`
	Notes  *string `json:"notes"`
}

// Verify records an admin's terminal judgment for a document.
func (h *DocumentHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req VerifyDocumentRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	doc, err := h.service.AdminVerify(r.Context(), chi.URLParam(r, "id"), req.Status, req.Notes)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, doc)
}
