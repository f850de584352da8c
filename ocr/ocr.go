//go:build ocr

// Package ocr reads text back out of finished cards with Tesseract, through
// gosseract, to flag cards whose content did not survive compositing.
//
// Tesseract must be installed. On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr
//
// and the binary built with the "ocr" tag:
//
//	go build -tags ocr ./cmd/taskcards
package ocr

import (
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Enabled reports whether OCR support is compiled in.
const Enabled = true

// Client wraps one Tesseract instance. It is not safe for concurrent use.
type Client struct {
	client *gosseract.Client
}

// New creates a client reading English text in sparse layout, which suits
// the few short lines on a card. Close it when done.
func New() (*Client, error) {
	client := gosseract.NewClient()
	if err := client.SetPageSegMode(gosseract.PSM_SPARSE_TEXT); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set page segmentation: %w", err)
	}
	return &Client{client: client}, nil
}

// Close releases Tesseract resources.
func (c *Client) Close() error {
	if c != nil && c.client != nil {
		return c.client.Close()
	}
	return nil
}

// SetLanguage selects the recognition languages, "+" separated ("eng+fra").
func (c *Client) SetLanguage(lang string) error {
	return c.client.SetLanguage(lang)
}

// RecognizeImage returns the trimmed text found in encoded image data.
func (c *Client) RecognizeImage(imageData []byte) (string, error) {
	if err := c.client.SetImageFromBytes(imageData); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}
	text, err := c.client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return strings.TrimSpace(text), nil
}
