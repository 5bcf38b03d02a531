package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentIntent_WireFormat(t *testing.T) {
	intent := PaymentIntent{
		ID:        "pid-1",
		Amount:    "5.00",
		Currency:  "USD",
		PayURL:    "http://localhost:8090/pay?amount=5.00",
		Status:    IntentPending,
		CreatedAt: time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC),
	}

	jsonData, err := json.Marshal(intent)
	require.NoError(t, err)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(jsonData, &wire))

	assert.Equal(t, "pid-1", wire["payment_id"])
	assert.Equal(t, "5.00", wire["amount"])
	assert.Equal(t, "pending", wire["status"])
	assert.Contains(t, wire, "pay_url")

	// Local-variant intents have no gateway id or recipient on the wire.
	assert.NotContains(t, wire, "gateway_id")
	assert.NotContains(t, wire, "recipient")
}

func TestCardDetails_BindsFormFields(t *testing.T) {
	body := `{"card_number":"4242 4242 4242 4242","expiry":"12/30","cvv":"123","name":"JANE DOE"}`

	var details CardDetails
	require.NoError(t, json.Unmarshal([]byte(body), &details))

	assert.Equal(t, "4242 4242 4242 4242", details.Number)
	assert.Equal(t, "12/30", details.Expiry)
	assert.Equal(t, "123", details.CVV)
	assert.Equal(t, "JANE DOE", details.Name)
}

func TestSettlementNotification_ParsesChannelPayload(t *testing.T) {
	payload := `{"payment_id":"4242","status":"success","timestamp":"2026-03-10T12:00:00Z"}`

	var notification SettlementNotification
	require.NoError(t, json.Unmarshal([]byte(payload), &notification))

	assert.Equal(t, "4242", notification.PaymentID)
	assert.Equal(t, ResultSuccess, notification.Status)
}
