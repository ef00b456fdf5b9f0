// Package qr renders QR codes as PNG data URIs for embedding directly in
// API responses and HTML.
package qr

import (
	"encoding/base64"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// Size is the rendered PNG edge length in pixels.
const Size = 300

// DataURI encodes target as a QR code PNG and returns it as a data URI.
func DataURI(target string) (string, error) {
	if target == "" {
		return "", fmt.Errorf("empty QR target")
	}

	png, err := qrcode.Encode(target, qrcode.Medium, Size)
	if err != nil {
		return "", fmt.Errorf("encode QR: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
