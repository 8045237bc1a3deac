package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/admitflow/admitflow-backend/internal/admissions/domain"
	"github.com/admitflow/admitflow-backend/internal/admissions/service"
	"github.com/admitflow/admitflow-backend/pkg/httputil"
	"github.com/admitflow/admitflow-backend/pkg/logger"
)

// PaymentHandler handles payment endpoints.
type PaymentHandler struct {
	service *service.PaymentService
	logger  *logger.Logger
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(svc *service.PaymentService, log *logger.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: svc,
		logger:  log,
	}
}

// CreatePaymentRequest is the payload for creating a payment.
type CreatePaymentRequest struct {
	ApplicationID string `json:"application_id" validate:"required"`
	PaymentType   string `json:"payment_type" validate:"required,oneof=application_fee issue_resolution"`
}

// Create creates a pending payment and returns the gateway order handoff.
func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePaymentRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	ctx := r.Context()
	userID := httputil.GetUserID(ctx)

	var (
		payment *domain.Payment
		order   *domain.GatewayOrder
		err     error
	)
	if req.PaymentType == string(domain.PaymentTypeApplicationFee) {
		payment, order, err = h.service.CreateApplicationFee(ctx, userID, req.ApplicationID)
	} else {
		payment, order, err = h.service.CreateIssueResolution(ctx, userID, req.ApplicationID)
	}
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, map[string]any{
		"payment": payment,
		"order":   order,
	})
}

// RecordResultRequest is the gateway callback payload.
type RecordResultRequest struct {
	PaymentID       string         `json:"payment_id" validate:"required"`
	Status          string         `json:"status" validate:"required"`
	TransactionID   string         `json:"transaction_id"`
	GatewayResponse domain.JSONMap `json:"gateway_response"`
}

// RecordResult applies a gateway outcome to a payment and, when completed,
// to the owning application's status.
func (h *PaymentHandler) RecordResult(w http.ResponseWriter, r *http.Request) {
	var req RecordResultRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	payment, err := h.service.RecordResult(r.Context(), req.PaymentID,
		domain.PaymentStatus(req.Status), req.TransactionID, req.GatewayResponse)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, payment)
}

// List lists the caller's payments.
func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	payments, err := h.service.ListMine(r.Context(), httputil.GetUserID(r.Context()))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, payments)
}

// ListByApplication lists an application's payments.
func (h *PaymentHandler) ListByApplication(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	payments, err := h.service.ListByApplication(ctx, httputil.GetUserID(ctx),
		httputil.GetUserRole(ctx), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, payments)
}
