// Package qr renders roll numbers as QR code PNGs and persists them as
// artifacts on disk.
package qr

import (
	"encoding/base64"
	"errors"

	qrcode "github.com/skip2/go-qrcode"
)

const (
	// Recovery is the error correction level of every generated code.
	Recovery = qrcode.Medium
	// ModulePixels is the edge length of one QR module in the PNG.
	ModulePixels = 10
)

var ErrEmptyPayload = errors.New("qr: empty payload")

// Encode renders payload as a black-on-white PNG. The output depends only on
// payload, so repeated calls return identical bytes.
func Encode(payload string) ([]byte, error) {
	if payload == "" {
		return nil, ErrEmptyPayload
	}
	code, err := qrcode.New(payload, Recovery)
	if err != nil {
		return nil, err
	}
	// A negative size makes every module ModulePixels wide, so the image
	// grows with the symbol version instead of being rescaled.
	return code.PNG(-ModulePixels)
}

// Base64 returns the standard base64 form of a PNG.
func Base64(png []byte) string {
	return base64.StdEncoding.EncodeToString(png)
}

// DataURI returns png as an inline data URI for <img src=...>.
func DataURI(png []byte) string {
	return "data:image/png;base64," + Base64(png)
}
