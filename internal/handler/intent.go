package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"paygate/internal/service"
	"paygate/internal/session"
)

// IntentHandler handles HTTP requests for payment intents.
type IntentHandler struct {
	intentService *service.IntentService
}

// NewIntentHandler creates a new IntentHandler.
func NewIntentHandler(intentService *service.IntentService) *IntentHandler {
	return &IntentHandler{intentService: intentService}
}

// CreateIntentRequest is the HTTP request body for creating a payment intent.
type CreateIntentRequest struct {
	PayerContact string  `json:"payer_contact"`
	Amount       float64 `json:"amount"`
}

// ProviderLinksResponse holds per-provider app intent links.
type ProviderLinksResponse struct {
	GPay    string `json:"gpay"`
	PhonePe string `json:"phonepe"`
	Paytm   string `json:"paytm"`
}

// IntentResponse is the HTTP response for a created payment intent.
type IntentResponse struct {
	PaymentLink      string                `json:"payment_link"`
	QRImage          string                `json:"qr_image"`
	Reference        string                `json:"reference"`
	ExpiresInSeconds int                   `json:"expires_in_seconds"`
	Apps             ProviderLinksResponse `json:"apps"`
}

// ConflictResponse is returned while the amount is locked by another session.
type ConflictResponse struct {
	Error            string `json:"error"`
	RemainingSeconds int    `json:"remaining_seconds"`
	Message          string `json:"message"`
}

// CreateIntent handles POST /v1/intents
func (h *IntentHandler) CreateIntent(c *gin.Context) {
	var req CreateIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	resp, err := h.intentService.CreateIntent(c.Request.Context(), service.CreateIntentRequest{
		PayerContact: req.PayerContact,
		Amount:       req.Amount,
	})
	if err != nil {
		var locked *session.LockedError
		if errors.As(err, &locked) {
			c.JSON(http.StatusLocked, ConflictResponse{
				Error:            "Payment in progress",
				RemainingSeconds: locked.RemainingSeconds,
				Message:          fmt.Sprintf("Another user is paying ₹%v. Please wait.", req.Amount),
			})
			return
		}
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, IntentResponse{
		PaymentLink:      resp.PaymentLink,
		QRImage:          resp.QRImage,
		Reference:        resp.Reference,
		ExpiresInSeconds: resp.ExpiresInSeconds,
		Apps: ProviderLinksResponse{
			GPay:    resp.Apps.GPay,
			PhonePe: resp.Apps.PhonePe,
			Paytm:   resp.Apps.Paytm,
		},
	})
}
