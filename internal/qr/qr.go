// Package qr builds the payment and status handoff URLs and renders the
// QR payload as a PNG.
package qr

import (
	"fmt"
	"net/url"

	qrcode "github.com/skip2/go-qrcode"
)

const pngSize = 256

// PayURL builds the local-variant QR payload:
// {origin}/pay?amount={decimal}[&recipient={url-encoded}].
func PayURL(origin, amount, recipient string) string {
	q := url.Values{}
	q.Set("amount", amount)
	if recipient != "" {
		q.Set("recipient", recipient)
	}
	return fmt.Sprintf("%s/pay?%s", origin, q.Encode())
}

// PayURLForGateway builds the gateway-variant payload. The backend already
// recorded the amount, so only the opaque payment id travels in the URL.
func PayURLForGateway(origin string, paymentID int64) string {
	return fmt.Sprintf("%s/pay?paymentId=%d", origin, paymentID)
}

// StatusURL builds the handoff to the status screen.
func StatusURL(origin, result, amount, recipient string) string {
	q := url.Values{}
	q.Set("result", result)
	q.Set("amount", amount)
	if recipient != "" {
		q.Set("recipient", recipient)
	}
	return fmt.Sprintf("%s/status?%s", origin, q.Encode())
}

// Render encodes the payload URL as a PNG image.
func Render(payload string) ([]byte, error) {
	png, err := qrcode.Encode(payload, qrcode.High, pngSize)
	if err != nil {
		return nil, fmt.Errorf("qr: encode: %w", err)
	}
	return png, nil
}
