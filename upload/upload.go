// Package upload hosts card images on a simple upload endpoint and returns
// their permanent URLs.
//
// The endpoint accepts a multipart POST with a "secret" field and a "file"
// part, and answers with JSON:
//
//	{"success": true, "filename": "abc123.png"}
//
// The permalink is the configured base URL followed by the filename.
package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/tsawler/taskcards/format"
	"github.com/tsawler/taskcards/taskerr"
)

// DefaultTimeout bounds one upload request.
const DefaultTimeout = 30 * time.Second

// maxBody caps how much of a response is read.
const maxBody = 1 << 20

// Config locates the endpoint. All fields are required.
type Config struct {
	UploadURL string
	BaseURL   string
	Secret    string
}

// Validate reports every missing field in one configuration error.
func (c Config) Validate() error {
	var missing []string
	if c.UploadURL == "" {
		missing = append(missing, "upload_url")
	}
	if c.BaseURL == "" {
		missing = append(missing, "base_url")
	}
	if c.Secret == "" {
		missing = append(missing, "secret")
	}
	if len(missing) > 0 {
		return taskerr.Configurationf("upload.config", "missing upload settings: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Client uploads images. It is safe for concurrent use.
type Client struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a client after validating cfg.
func New(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: DefaultTimeout},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type response struct {
	Success  bool   `json:"success"`
	Filename string `json:"filename"`
}

// Upload posts a PNG image and returns its permalink. Every failure after
// configuration is an upload error; nothing is retried.
func (c *Client) Upload(ctx context.Context, image []byte) (string, error) {
	const op = "upload"

	if kind := format.DetectFromMagic(image); kind != format.PNG {
		return "", taskerr.Uploadf(op, "image is %s, not PNG", kind)
	}

	body, contentType, err := multipartBody(c.cfg.Secret, image)
	if err != nil {
		return "", taskerr.Wrap(taskerr.Upload, op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.UploadURL, body)
	if err != nil {
		return "", taskerr.Wrap(taskerr.Upload, op, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return "", taskerr.Uploadf(op, "request failed: %v", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return "", taskerr.Uploadf(op, "reading response: %v", err)
	}

	if format.DetectFromMagic(data) == format.HTML {
		return "", taskerr.Uploadf(op, "server returned an HTML page (status %d): %s", resp.StatusCode, pageTitle(data))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", taskerr.Uploadf(op, "server returned status %d: %s", resp.StatusCode, snippet(data))
	}

	var res response
	if err := json.Unmarshal(data, &res); err != nil {
		return "", taskerr.Uploadf(op, "decoding response: %v", err)
	}
	if !res.Success || res.Filename == "" {
		return "", taskerr.Uploadf(op, "seems like a failure response: %s", snippet(data))
	}

	url := c.cfg.BaseURL + res.Filename
	c.logger.Info("uploaded image",
		zap.Int("bytes", len(image)),
		zap.String("url", url),
		zap.Duration("duration", time.Since(start)))
	return url, nil
}

func multipartBody(secret string, image []byte) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if err := mw.WriteField("secret", secret); err != nil {
		return nil, "", err
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="img.png"`)
	h.Set("Content-Type", "image/png")
	h.Set("Expires", "0")
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(image); err != nil {
		return nil, "", err
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

// pageTitle returns the text of the first <title> element, or a snippet of
// the page when it has none.
func pageTitle(data []byte) string {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return snippet(data)
	}
	if title := findTitle(doc); title != "" {
		return title
	}
	return snippet(data)
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		var sb strings.Builder
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				sb.WriteString(c.Data)
			}
		}
		return strings.Join(strings.Fields(sb.String()), " ")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if title := findTitle(c); title != "" {
			return title
		}
	}
	return ""
}

func snippet(data []byte) string {
	s := strings.TrimSpace(string(data))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	if s == "" {
		return "(empty body)"
	}
	return fmt.Sprintf("%q", s)
}
