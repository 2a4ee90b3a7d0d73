package handler

import (
	"crypto/subtle"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"paygate/internal/service"
)

// WebhookHandler handles confirmation webhooks from forwarding devices.
type WebhookHandler struct {
	reconcileService *service.ReconcileService
	secret           string
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(reconcileService *service.ReconcileService, secret string) *WebhookHandler {
	return &WebhookHandler{
		reconcileService: reconcileService,
		secret:           secret,
	}
}

// WebhookRequest is the HTTP request body for the confirmation webhook.
// Exactly one of SMSText / NotificationText is expected.
type WebhookRequest struct {
	Sender           string `json:"sender"`
	SMSText          string `json:"sms_text"`
	NotificationText string `json:"notification_text"`
	Token            string `json:"token"`
}

// WebhookResponse is the HTTP response for a reconciled confirmation.
type WebhookResponse struct {
	Success      bool   `json:"success"`
	PayerContact string `json:"payer_contact"`
	Reference    string `json:"reference"`
	Status       string `json:"status"`
}

// HandleConfirmation handles POST /v1/webhooks/payment
func (h *WebhookHandler) HandleConfirmation(c *gin.Context) {
	var req WebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if h.secret == "" || subtle.ConstantTimeCompare([]byte(req.Token), []byte(h.secret)) != 1 {
		log.Printf("unauthorized webhook attempt: ip=%s", c.ClientIP())
		respondError(c, service.ErrUnauthorized)
		return
	}

	result, err := h.reconcileService.ProcessConfirmation(c.Request.Context(), service.ConfirmationRequest{
		Sender:           req.Sender,
		SMSText:          req.SMSText,
		NotificationText: req.NotificationText,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, WebhookResponse{
		Success:      true,
		PayerContact: result.PayerContact,
		Reference:    result.Reference,
		Status:       string(result.Status),
	})
}
