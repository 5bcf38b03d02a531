package status

import "errors"

var (
	ErrIntentNotFound    = errors.New("payment: intent not found")
	ErrAmountRequired    = errors.New("payment: amount must be greater than zero")
	ErrAlreadyProcessing = errors.New("payment: submission already in progress")
	ErrAlreadyPaid       = errors.New("payment: intent already paid")
	ErrInvalidSession    = errors.New("session: invalid or expired token")
	ErrInvalidLogin      = errors.New("session: invalid credentials")
)
