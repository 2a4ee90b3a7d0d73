package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"paygate/internal/service"
)

// StatusHandler handles payment status polling.
type StatusHandler struct {
	statusService *service.StatusService
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler(statusService *service.StatusService) *StatusHandler {
	return &StatusHandler{statusService: statusService}
}

// StatusQueryRequest is the HTTP request body for a status poll.
type StatusQueryRequest struct {
	PayerContact string  `json:"payer_contact"`
	Amount       float64 `json:"amount"`
	Reference    string  `json:"reference"`
}

// StatusQueryResponse is the HTTP response for a status poll.
type StatusQueryResponse struct {
	Success          bool   `json:"success"`
	RemainingSeconds *int   `json:"remaining_seconds,omitempty"`
	Message          string `json:"message,omitempty"`
}

// CheckStatus handles POST /v1/payments/status
func (h *StatusHandler) CheckStatus(c *gin.Context) {
	var req StatusQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.statusService.CheckStatus(c.Request.Context(), service.StatusRequest{
		PayerContact: req.PayerContact,
		Amount:       req.Amount,
		Reference:    req.Reference,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	resp := StatusQueryResponse{
		Success: result.Success,
		Message: result.Message,
	}
	if !result.Success && result.Message == "" {
		remaining := result.RemainingSeconds
		resp.RemainingSeconds = &remaining
	}

	respondJSON(c, http.StatusOK, resp)
}
