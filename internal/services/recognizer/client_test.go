package recognizer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Turan141/payments-terminal/utils"
)

func TestClient_Recognize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/bill/recognize", r.URL.Path)
		assert.Equal(t, "secret-credential", r.Header.Get("Authorization"))

		var req recognizeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gemini", req.Model)
		assert.Equal(t, "data:image/jpeg;base64,abc", req.File)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"card":{"number":"4242424242424242","expDate":"1230"}}}`))
	}))
	defer srv.Close()

	client := NewClient(&ClientConfig{BaseURL: srv.URL, Token: "secret-credential"})

	fields, err := client.Recognize(context.Background(), "data:image/jpeg;base64,abc")
	require.NoError(t, err)

	// Recognized values come back pre-formatted for the payer form.
	assert.Equal(t, "4242 4242 4242 4242", fields.Number)
	assert.Equal(t, "12/30", fields.Expiry)
}

func TestClient_Recognize_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(&ClientConfig{BaseURL: srv.URL, Token: "t"})

	_, err := client.Recognize(context.Background(), "data:image/png;base64,xyz")
	assert.ErrorContains(t, err, "status 502")
}

func TestClient_Recognize_NoCard(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{}}`))
	}))
	defer srv.Close()

	client := NewClient(&ClientConfig{BaseURL: srv.URL, Token: "t"})

	_, err := client.Recognize(context.Background(), "data:image/png;base64,xyz")
	assert.ErrorContains(t, err, "no card recognized")
}

func TestClient_Recognize_BreakerOpensAfterFailures(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(&ClientConfig{BaseURL: srv.URL, Token: "t"})

	for i := 0; i < 5; i++ {
		_, err := client.Recognize(context.Background(), "data:image/png;base64,xyz")
		assert.ErrorContains(t, err, "status 500")
	}
	require.Equal(t, 5, hits)

	// Tripped: the next call is rejected without reaching the backend.
	_, err := client.Recognize(context.Background(), "data:image/png;base64,xyz")
	assert.ErrorIs(t, err, utils.ErrBreakerOpen)
	assert.Equal(t, 5, hits)
}
