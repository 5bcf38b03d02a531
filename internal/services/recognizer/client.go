// Package recognizer is the client for the external card-photo recognition
// service used to pre-fill the payer form.
package recognizer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Turan141/payments-terminal/internal/card"
	"github.com/Turan141/payments-terminal/utils"
)

type ClientConfig struct {
	BaseURL string `json:"baseUrl" mapstructure:"base_url"`
	Token   string `json:"token" mapstructure:"token"`
	Model   string `json:"model" mapstructure:"model"`
}

// CardFields are the recognized values, already run through the payer-form
// formatting so they can pre-fill the inputs directly.
type CardFields struct {
	Number string `json:"card_number"`
	Expiry string `json:"expiry"`
}

type recognizeRequest struct {
	File  string `json:"file"`
	Model string `json:"model"`
}

type Client struct {
	hc      *resty.Client
	baseURL string
	model   string
	breaker *utils.CircuitBreaker
}

// NewClient creates a recognition client. The credential is injected, never
// embedded, and is attached to every request.
func NewClient(c *ClientConfig) *Client {
	model := c.Model
	if model == "" {
		model = "gemini"
	}
	return &Client{
		hc: resty.New().
			SetTimeout(15 * time.Second).
			SetRetryCount(0). // failures surface inline, no retries
			SetHeader("Authorization", c.Token),
		baseURL: c.BaseURL,
		model:   model,
		breaker: utils.NewCircuitBreaker("card-recognizer"),
	}
}

// Recognize posts a base64 data-URL of the card photo and returns the
// recognized number and expiry. Any transport or parse failure is returned
// as-is: the caller shows an inline message and leaves the form untouched.
// Calls pass through a circuit breaker, so a failing recognition backend
// is rejected without hitting the wire.
func (c *Client) Recognize(ctx context.Context, fileDataURL string) (*CardFields, error) {
	var fields *CardFields
	err := c.breaker.Execute(ctx, func() error {
		var reqErr error
		fields, reqErr = c.recognize(ctx, fileDataURL)
		return reqErr
	})
	if err != nil {
		return nil, err
	}
	return fields, nil
}

func (c *Client) recognize(ctx context.Context, fileDataURL string) (*CardFields, error) {
	resp, err := c.hc.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(recognizeRequest{File: fileDataURL, Model: c.model}).
		Post(c.baseURL + "/bill/recognize")
	if err != nil {
		return nil, fmt.Errorf("recognize: http: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("recognize: status %d: %s", resp.StatusCode(), resp.String())
	}

	var reply struct {
		Data struct {
			Card struct {
				Number  string `json:"number"`
				ExpDate string `json:"expDate"`
			} `json:"card"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body(), &reply); err != nil {
		return nil, fmt.Errorf("recognize: json.Decode: %w", err)
	}
	if reply.Data.Card.Number == "" {
		return nil, fmt.Errorf("recognize: reply.Data: no card recognized")
	}

	return &CardFields{
		Number: card.FormatNumber(reply.Data.Card.Number),
		Expiry: card.FormatExpiry(reply.Data.Card.ExpDate),
	}, nil
}
