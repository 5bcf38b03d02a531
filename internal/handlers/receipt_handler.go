package handlers

import (
	"net/http"

	"github.com/labstack/echo/v5"
	log "github.com/sirupsen/logrus"

	"github.com/Turan141/payments-terminal/internal/services"
)

type ReceiptHandler struct {
	payments *services.PaymentService
}

func NewReceiptHandler(payments *services.PaymentService) *ReceiptHandler {
	return &ReceiptHandler{payments: payments}
}

// Show renders the status-screen receipt from the handoff query parameters.
// The screen is reachable without a session: the payer lands here from the
// redirect URL, not from the merchant flow.
func (h *ReceiptHandler) Show(c echo.Context) error {
	receipt, err := h.payments.BuildReceipt(
		c.QueryParam("result"),
		c.QueryParam("amount"),
		c.QueryParam("recipient"),
	)
	if err != nil {
		log.Errorf("payments.BuildReceipt(): %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]any{
			"status":  "error",
			"message": "Internal error",
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status":  "success",
		"receipt": receipt,
	})
}
