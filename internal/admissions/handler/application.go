package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/admitflow/admitflow-backend/internal/admissions/domain"
	"github.com/admitflow/admitflow-backend/internal/admissions/repository"
	"github.com/admitflow/admitflow-backend/internal/admissions/service"
	"github.com/admitflow/admitflow-backend/pkg/errors"
	"github.com/admitflow/admitflow-backend/pkg/httputil"
	"github.com/admitflow/admitflow-backend/pkg/logger"
)

// ApplicationHandler handles application endpoints.
type ApplicationHandler struct {
	service *service.ApplicationService
	logger  *logger.Logger
}

// NewApplicationHandler creates a new application handler.
func NewApplicationHandler(svc *service.ApplicationService, log *logger.Logger) *ApplicationHandler {
	return &ApplicationHandler{
		service: svc,
		logger:  log,
	}
}

// CreateApplicationRequest is the payload for creating an application.
type CreateApplicationRequest struct {
	ProgramID       string         `json:"program_id" validate:"required"`
	PersonalInfo    domain.JSONMap `json:"personal_info"`
	AcademicHistory domain.JSONMap `json:"academic_history"`
}

// Create creates a draft application.
func (h *ApplicationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateApplicationRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	app, err := h.service.Create(r.Context(), httputil.GetUserID(r.Context()),
		req.ProgramID, req.PersonalInfo, req.AcademicHistory)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, app)
}

// List lists the caller's applications.
func (h *ApplicationHandler) List(w http.ResponseWriter, r *http.Request) {
	apps, err := h.service.ListMine(r.Context(), httputil.GetUserID(r.Context()))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, apps)
}

// Get gets one application.
func (h *ApplicationHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	app, err := h.service.Get(ctx, httputil.GetUserID(ctx), httputil.GetUserRole(ctx), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, app)
}

// UpdateApplicationRequest is the payload for amending a draft.
type UpdateApplicationRequest struct {
	PersonalInfo    domain.JSONMap `json:"personal_info"`
	AcademicHistory domain.JSONMap `json:"academic_history"`
	Status          *domain.Status `json:"status"`
}

// Update amends a draft application.
func (h *ApplicationHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateApplicationRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	app, err := h.service.Update(r.Context(), httputil.GetUserID(r.Context()), chi.URLParam(r, "id"),
		service.UpdateInput{
			PersonalInfo:    req.PersonalInfo,
			AcademicHistory: req.AcademicHistory,
			Status:          req.Status,
		})
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, app)
}

// Submit submits a draft application. A blocked submit reports the exact
// missing document types.
func (h *ApplicationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	app, err := h.service.Submit(r.Context(), httputil.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		var missing *domain.MissingDocumentsError
		if errors.As(err, &missing) {
			httputil.JSON(w, http.StatusBadRequest, map[string]any{
				"message":           "required documents are missing",
				"missing_documents": missing.MissingTypes,
			})
			return
		}
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, app)
}

// AdminList lists applications matching the query filters.
func (h *ApplicationHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}

	filter := repository.ApplicationFilter{
		Status:    domain.Status(r.URL.Query().Get("status")),
		AIStatus:  domain.AIStatus(r.URL.Query().Get("ai_status")),
		UserID:    r.URL.Query().Get("user_id"),
		ProgramID: r.URL.Query().Get("program_id"),
		Limit:     limit,
		Offset:    offset,
	}

	apps, total, err := h.service.AdminList(r.Context(), filter)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSONWithMeta(w, http.StatusOK, apps, &httputil.Meta{
		Limit:  limit,
		Offset: offset,
		Total:  int64(total),
	})
}

// Approve force-verifies an application.
func (h *ApplicationHandler) Approve(w http.ResponseWriter, r *http.Request) {
	app, err := h.service.AdminApprove(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, app)
}

// RaiseIssueRequest is the payload for flagging an application.
type RaiseIssueRequest struct {
	IssueDetails string `json:"issue_details" validate:"required"`
}

// RaiseIssue flags an application with an issue.
func (h *ApplicationHandler) RaiseIssue(w http.ResponseWriter, r *http.Request) {
	var req RaiseIssueRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	app, err := h.service.AdminRaiseIssue(r.Context(), chi.URLParam(r, "id"), req.IssueDetails)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, app)
}

// Analytics returns application counts grouped by status.
func (h *ApplicationHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	analytics, err := h.service.AdminAnalytics(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, analytics)
}
