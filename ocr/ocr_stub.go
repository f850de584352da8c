//go:build !ocr

// Package ocr reads text back out of finished cards to flag cards whose
// content did not survive compositing.
//
// This build has no OCR support; New returns ErrOCRNotEnabled. Rebuild with
// the "ocr" tag, which needs Tesseract installed:
//
//	go build -tags ocr ./cmd/taskcards
package ocr

// Enabled reports whether OCR support is compiled in.
const Enabled = false

// Client is a stand-in that fails every call.
type Client struct{}

// New returns ErrOCRNotEnabled.
func New() (*Client, error) {
	return nil, ErrOCRNotEnabled
}

// Close is a no-op, also on a nil client.
func (c *Client) Close() error {
	return nil
}

// SetLanguage returns ErrOCRNotEnabled.
func (c *Client) SetLanguage(lang string) error {
	return ErrOCRNotEnabled
}

// RecognizeImage returns ErrOCRNotEnabled.
func (c *Client) RecognizeImage(imageData []byte) (string, error) {
	return "", ErrOCRNotEnabled
}
