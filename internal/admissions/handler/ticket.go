package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/admitflow/admitflow-backend/internal/admissions/domain"
	"github.com/admitflow/admitflow-backend/internal/admissions/service"
	"github.com/admitflow/admitflow-backend/pkg/httputil"
	"github.com/admitflow/admitflow-backend/pkg/logger"
)

// TicketHandler handles support ticket endpoints.
type TicketHandler struct {
	service *service.TicketService
	logger  *logger.Logger
}

// NewTicketHandler creates a new ticket handler.
func NewTicketHandler(svc *service.TicketService, log *logger.Logger) *TicketHandler {
	return &TicketHandler{
		service: svc,
		logger:  log,
	}
}

// CreateTicketRequest is the payload for opening a ticket.
type CreateTicketRequest struct {
	ApplicationID *string `json:"application_id"`
	Subject       string  `json:"subject" validate:"required,max=200"`
	Category      string  `json:"category" validate:"required"`
	Description   string  `json:"description" validate:"required"`
	Priority      string  `json:"priority" validate:"omitempty,oneof=low medium high"`
}

// Create opens a support ticket.
func (h *TicketHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTicketRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	ticket, err := h.service.Create(r.Context(), httputil.GetUserID(r.Context()), service.TicketInput{
		ApplicationID: req.ApplicationID,
		Subject:       req.Subject,
		Category:      req.Category,
		Description:   req.Description,
		Priority:      req.Priority,
	})
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, ticket)
}

// List lists the caller's tickets.
func (h *TicketHandler) List(w http.ResponseWriter, r *http.Request) {
	tickets, err := h.service.ListMine(r.Context(), httputil.GetUserID(r.Context()))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, tickets)
}

// Get gets one ticket.
func (h *TicketHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ticket, err := h.service.Get(ctx, httputil.GetUserID(ctx), httputil.GetUserRole(ctx), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, ticket)
}

// AdminList lists all tickets.
func (h *TicketHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	tickets, err := h.service.AdminList(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, tickets)
}

// UpdateTicketRequest is the payload for an admin ticket update.
type UpdateTicketRequest struct {
	Status   *string `json:"status"`
	Priority *string `json:"priority"`
	Response *string `json:"response"`
}

// AdminUpdate updates a ticket's status, priority or response.
func (h *TicketHandler) AdminUpdate(w http.ResponseWriter, r *http.Request) {
	var req UpdateTicketRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	input := service.AdminUpdateInput{
		Priority: req.Priority,
		Response: req.Response,
	}
	if req.Status != nil {
		status := domain.TicketStatus(*req.Status)
		input.Status = &status
	}

	ticket, err := h.service.AdminUpdate(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, ticket)
}
