// Package gateway is the client for the external payment-intent backend.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

type ClientConfig struct {
	BaseURL string `json:"baseUrl" mapstructure:"base_url"`
	Token   string `json:"token" mapstructure:"token"`
}

type Client struct {
	// baseURL is the base url of the payment backend.
	baseURL string

	// token is the bearer credential sent on every call.
	token string

	// hc is the http client.
	hc *http.Client
}

// NewClient creates a new payment gateway client.
func NewClient(c *ClientConfig) *Client {
	return &Client{
		baseURL: c.BaseURL,
		token:   c.Token,

		// set http client with timeout.
		hc: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// CreateIntent registers a payment with the backend and returns the opaque
// payment id. Amount and currency travel as query parameters; the backend
// records the amount so the QR payload never re-transmits it.
func (c *Client) CreateIntent(ctx context.Context, amount, currency string) (int64, error) {
	q := url.Values{}
	q.Set("amount", amount)
	q.Set("currency", currency)

	endpoint := fmt.Sprintf("%s/payment/init?%s", c.baseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("createIntent: http.NewReq: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.hc.Do(req)
	if err != nil {
		return 0, fmt.Errorf("createIntent: http.Do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return 0, fmt.Errorf("createIntent: resp.StatusCode: 401 => Unauthorized")
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("createIntent: resp.StatusCode: %d", resp.StatusCode)
	}

	var reply struct {
		Data struct {
			PaymentID int64 `json:"paymentId"`
		} `json:"data"`
	}
	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(&reply); err != nil {
		return 0, fmt.Errorf("createIntent: json.Decode: %w", err)
	}
	if reply.Data.PaymentID == 0 {
		return 0, fmt.Errorf("createIntent: reply.Data: missing paymentId")
	}

	return reply.Data.PaymentID, nil
}
