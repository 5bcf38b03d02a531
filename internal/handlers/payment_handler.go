package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v5"
	log "github.com/sirupsen/logrus"

	"github.com/Turan141/payments-terminal/internal/amount"
	"github.com/Turan141/payments-terminal/internal/services"
	"github.com/Turan141/payments-terminal/internal/services/recognizer"
	"github.com/Turan141/payments-terminal/internal/status"
	"github.com/Turan141/payments-terminal/models"
	"github.com/Turan141/payments-terminal/monitoring"
)

// Recognizer extracts card fields from an uploaded document image.
type Recognizer interface {
	Recognize(ctx context.Context, fileDataURL string) (*recognizer.CardFields, error)
}

type PaymentHandler struct {
	payments   *services.PaymentService
	recognizer Recognizer
}

func NewPaymentHandler(payments *services.PaymentService, rec Recognizer) *PaymentHandler {
	return &PaymentHandler{
		payments:   payments,
		recognizer: rec,
	}
}

type keyRequest struct {
	Key string `json:"key"`
}

// PressKey applies one keypad key to the merchant's pending amount.
func (h *PaymentHandler) PressKey(c echo.Context) error {
	var req keyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{
			"status":  "error",
			"message": "Invalid request",
		})
	}

	pending, err := h.payments.PressKey(c.Request().Context(), sessionToken(c), req.Key)
	if err != nil {
		return paymentError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status": "success",
		"amount": pending.Display(),
		"cents":  pending.Cents(),
	})
}

// GetAmount returns the pending keypad amount.
func (h *PaymentHandler) GetAmount(c echo.Context) error {
	pending, err := h.payments.PendingAmount(c.Request().Context(), sessionToken(c))
	if err != nil {
		return paymentError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status": "success",
		"amount": pending.Display(),
		"cents":  pending.Cents(),
	})
}

// ClearAmount resets the keypad.
func (h *PaymentHandler) ClearAmount(c echo.Context) error {
	if err := h.payments.ClearPending(c.Request().Context(), sessionToken(c)); err != nil {
		return paymentError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status": "success",
		"amount": "0.00",
	})
}

type createIntentRequest struct {
	Amount    string `json:"amount"`
	Recipient string `json:"recipient"`
}

// CreateIntent registers a payment for the entered amount and returns the
// intent with its QR payload URL.
func (h *PaymentHandler) CreateIntent(c echo.Context) error {
	var req createIntentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{
			"status":  "error",
			"message": "Invalid request",
		})
	}

	intent, err := h.payments.CreateIntent(c.Request().Context(), req.Amount, req.Recipient)
	if err != nil {
		return paymentError(c, err)
	}

	// A confirmed intent supersedes the keypad entry.
	if err := h.payments.ClearPending(c.Request().Context(), sessionToken(c)); err != nil {
		log.Errorf("payments.ClearPending(): %v", err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status":  "success",
		"payment": intent,
	})
}

// GetIntent returns the current state of a payment intent.
func (h *PaymentHandler) GetIntent(c echo.Context) error {
	intent, err := h.payments.GetIntent(c.Request().Context(), c.PathParam("paymentId"))
	if err != nil {
		return paymentError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status":  "success",
		"payment": intent,
	})
}

// QRImage streams the intent's payment URL as a PNG.
func (h *PaymentHandler) QRImage(c echo.Context) error {
	png, err := h.payments.QRImage(c.Request().Context(), c.PathParam("paymentId"))
	if err != nil {
		return paymentError(c, err)
	}
	return c.Blob(http.StatusOK, "image/png", png)
}

// Pay submits the card form for an intent. Validation failures come back
// per field with 422 so the payer can correct each one independently.
func (h *PaymentHandler) Pay(c echo.Context) error {
	var details models.CardDetails
	if err := c.Bind(&details); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{
			"status":  "error",
			"message": "Invalid request",
		})
	}

	redirect, fieldErrs, err := h.payments.PayWithCard(c.Request().Context(), c.PathParam("paymentId"), details)
	if err != nil {
		return paymentError(c, err)
	}
	if len(fieldErrs) > 0 {
		return c.JSON(http.StatusUnprocessableEntity, map[string]any{
			"status": "error",
			"errors": fieldErrs,
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status":       "success",
		"redirect_url": redirect,
	})
}

// PayWallet settles via the digital-wallet shortcut.
func (h *PaymentHandler) PayWallet(c echo.Context) error {
	redirect, err := h.payments.PayWithWallet(c.Request().Context(), c.PathParam("paymentId"))
	if err != nil {
		return paymentError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status":       "success",
		"redirect_url": redirect,
	})
}

// Confirm runs the terminal-side settlement sequence and replays its
// progress messages.
func (h *PaymentHandler) Confirm(c echo.Context) error {
	progress, err := h.payments.ConfirmSettlement(c.Request().Context(), c.PathParam("paymentId"))
	if err != nil {
		return paymentError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status":   "success",
		"result":   models.ResultSuccess,
		"progress": progress,
	})
}

type recognizeRequest struct {
	File string `json:"file"`
}

// Recognize extracts card number and expiry from an uploaded image via the
// external recognition API.
func (h *PaymentHandler) Recognize(c echo.Context) error {
	var req recognizeRequest
	if err := c.Bind(&req); err != nil || req.File == "" {
		return c.JSON(http.StatusBadRequest, map[string]any{
			"status":  "error",
			"message": "File is required",
		})
	}

	fields, err := h.recognizer.Recognize(c.Request().Context(), req.File)
	if err != nil {
		monitoring.RecognitionRequests.WithLabelValues("error").Inc()
		log.Errorf("recognizer.Recognize(): %v", err)
		return c.JSON(http.StatusBadGateway, map[string]any{
			"status":  "error",
			"message": "Recognition failed",
		})
	}

	monitoring.RecognitionRequests.WithLabelValues("ok").Inc()
	return c.JSON(http.StatusOK, map[string]any{
		"status": "success",
		"card":   fields,
	})
}

// paymentError maps service errors onto the wire.
func paymentError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, status.ErrIntentNotFound):
		return c.JSON(http.StatusNotFound, map[string]any{
			"status":  "error",
			"message": "Payment not found",
		})
	case errors.Is(err, amount.ErrInvalidKey):
		return c.JSON(http.StatusBadRequest, map[string]any{
			"status":  "error",
			"message": "Key must be a digit or backspace",
		})
	case errors.Is(err, status.ErrAmountRequired):
		return c.JSON(http.StatusBadRequest, map[string]any{
			"status":  "error",
			"message": "Amount must be greater than zero",
		})
	case errors.Is(err, status.ErrAlreadyPaid):
		return c.JSON(http.StatusConflict, map[string]any{
			"status":  "error",
			"message": "Payment already completed",
		})
	case errors.Is(err, status.ErrAlreadyProcessing):
		return c.JSON(http.StatusConflict, map[string]any{
			"status":  "error",
			"message": "Payment already processing",
		})
	default:
		log.Errorf("payment handler: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]any{
			"status":  "error",
			"message": "Internal error",
		})
	}
}
