package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rvalenzuelab/voznote/internal/api/dto"
	"github.com/rvalenzuelab/voznote/internal/api/middleware"
	"github.com/rvalenzuelab/voznote/internal/pkg/errors"
	"github.com/rvalenzuelab/voznote/internal/pkg/logger"
	"github.com/rvalenzuelab/voznote/internal/pkg/utils"
	"github.com/rvalenzuelab/voznote/internal/pkg/validator"
	"github.com/rvalenzuelab/voznote/internal/services"
)

// PaymentHandler handles checkout and gateway webhook requests
type PaymentHandler struct {
	payments  *services.PaymentService
	logger    *logger.Logger
	validator *validator.Validator
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(payments *services.PaymentService, log *logger.Logger, val *validator.Validator) *PaymentHandler {
	return &PaymentHandler{payments: payments, logger: log, validator: val}
}

// CreateOrder starts a subscription purchase
// @Summary Create checkout order
// @Description Register a payment order and return the gateway redirect URL
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body dto.CheckoutRequest true "Plan to purchase"
// @Success 200 {object} dto.CheckoutResponse "Redirect URL"
// @Failure 400 {object} utils.ErrorResponse "Invalid request"
// @Failure 503 {object} utils.ErrorResponse "Payments not configured"
// @Security BearerAuth
// @Router /api/v1/payments/order [post]
func (h *PaymentHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("User not authenticated"))
		return
	}
	email, _ := middleware.GetUserEmail(r)

	var req dto.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return
	}
	if validationErrs := h.validator.Validate(req); len(validationErrs) > 0 {
		utils.WriteError(w, errors.ValidationError("Validation failed", validationErrs))
		return
	}

	redirectURL, commerceOrder, err := h.payments.CreateOrder(r.Context(), userID, email, req.Plan)
	if err != nil {
		h.logger.WithError(err).With("user_id", userID).Error("Failed to create checkout order")
		utils.WriteAppError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.CheckoutResponse{
		RedirectURL:   redirectURL,
		CommerceOrder: commerceOrder,
	})
}

// Webhook processes the gateway's payment confirmation. The response code is
// the retry contract: 200 acknowledges the notification, any 5xx makes the
// gateway retry it later.
// @Summary Payment webhook
// @Description Gateway-facing payment confirmation endpoint
// @Tags Payments
// @Accept x-www-form-urlencoded
// @Param token formData string true "Payment token"
// @Success 200 {object} utils.SuccessResponse "Acknowledged"
// @Failure 500 {object} utils.ErrorResponse "Processing failed, retry expected"
// @Router /api/v1/payments/webhook [post]
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid form body"))
		return
	}

	token := r.PostFormValue("token")
	if token == "" {
		utils.WriteError(w, errors.BadRequest("Missing payment token"))
		return
	}

	outcome, err := h.payments.HandleWebhook(r.Context(), token)
	if err != nil {
		h.logger.WithError(err).Error("Payment webhook processing failed")
		utils.WriteError(w, errors.Internal("Failed to process payment notification", err))
		return
	}

	utils.WriteSuccessWithMessage(w, http.StatusOK, outcome, nil)
}
