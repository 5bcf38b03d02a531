package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v5"
	log "github.com/sirupsen/logrus"

	"github.com/Turan141/payments-terminal/internal/services"
	"github.com/Turan141/payments-terminal/internal/status"
)

// Context keys set by RequireSession.
const (
	ctxMerchantEmail = "merchant_email"
	ctxSessionToken  = "session_token"
)

type SessionHandler struct {
	sessions *services.SessionService
}

func NewSessionHandler(sessions *services.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login checks the merchant credential and issues a session token.
func (h *SessionHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{
			"status":  "error",
			"message": "Invalid request",
		})
	}

	token, err := h.sessions.Login(c.Request().Context(), req.Email, req.Password)
	if errors.Is(err, status.ErrInvalidLogin) {
		return c.JSON(http.StatusUnauthorized, map[string]any{
			"status":  "error",
			"message": "Invalid email or password",
		})
	}
	if err != nil {
		log.Errorf("sessions.Login(): %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]any{
			"status":  "error",
			"message": "Internal error",
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status": "success",
		"token":  token,
	})
}

// Logout invalidates the caller's session token.
func (h *SessionHandler) Logout(c echo.Context) error {
	token := bearerToken(c)
	if token == "" {
		return c.JSON(http.StatusUnauthorized, map[string]any{
			"status":  "error",
			"message": "Unauthorized",
		})
	}

	if err := h.sessions.Logout(c.Request().Context(), token); err != nil {
		log.Errorf("sessions.Logout(): %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]any{
			"status":  "error",
			"message": "Internal error",
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status":  "success",
		"message": "Signed out",
	})
}

// RequireSession guards merchant endpoints: a valid bearer token resolves
// to the merchant email, which is stashed on the request context.
func (h *SessionHandler) RequireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := bearerToken(c)

		email, err := h.sessions.Validate(c.Request().Context(), token)
		if errors.Is(err, status.ErrInvalidSession) {
			return c.JSON(http.StatusUnauthorized, map[string]any{
				"status":  "error",
				"message": "Unauthorized",
			})
		}
		if err != nil {
			log.Errorf("sessions.Validate(): %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]any{
				"status":  "error",
				"message": "Internal error",
			})
		}

		c.Set(ctxMerchantEmail, email)
		c.Set(ctxSessionToken, token)
		return next(c)
	}
}

func bearerToken(c echo.Context) string {
	auth := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

func sessionToken(c echo.Context) string {
	if token, ok := c.Get(ctxSessionToken).(string); ok {
		return token
	}
	return ""
}
