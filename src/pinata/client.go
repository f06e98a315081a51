package pinata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/stake-plus/ecp-share/src/webclient"
)

const (
	DefaultUploadsEndpoint = "https://uploads.pinata.cloud/v3"
	defaultTimeout         = 30 * time.Second

	// DefaultURLExpiry is how long a signed upload URL stays valid.
	DefaultURLExpiry = 60 * time.Second
	// MaxFileSize is the largest attachment accepted.
	MaxFileSize int64 = 5 * 1024 * 1024
)

// AllowedMimeTypes are the attachment types a signed URL accepts.
var AllowedMimeTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
	"image/svg+xml",
}

// Client talks to the Pinata uploads API.
type Client struct {
	endpoint   string
	jwt        string
	httpClient *http.Client
	logger     *log.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithEndpoint points the client at a different uploads API.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) { c.endpoint = strings.TrimRight(endpoint, "/") }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client authenticated with jwt. An empty jwt is allowed
// for clients that only upload to already-signed URLs.
func NewClient(jwt string, opts ...Option) *Client {
	c := &Client{
		endpoint:   DefaultUploadsEndpoint,
		jwt:        jwt,
		httpClient: webclient.NewDefault(defaultTimeout),
		logger:     log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HasCredential reports whether SignUploadURL can be used.
func (c *Client) HasCredential() bool {
	return c != nil && c.jwt != ""
}

// SignOptions constrains a signed upload URL.
type SignOptions struct {
	Filename       string
	Expires        time.Duration
	MaxFileSize    int64
	AllowMimeTypes []string
}

// ErrNoCredential is returned when SignUploadURL is called without a JWT.
var ErrNoCredential = fmt.Errorf("pinata: no credential configured")

// SignUploadURL mints a short-lived URL the browser can upload one file to.
func (c *Client) SignUploadURL(ctx context.Context, opts SignOptions) (string, error) {
	if !c.HasCredential() {
		return "", ErrNoCredential
	}
	if opts.Expires <= 0 {
		opts.Expires = DefaultURLExpiry
	}
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = MaxFileSize
	}
	if len(opts.AllowMimeTypes) == 0 {
		opts.AllowMimeTypes = AllowedMimeTypes
	}

	body, err := json.Marshal(map[string]any{
		"date":             time.Now().Unix(),
		"expires":          int(opts.Expires / time.Second),
		"max_file_size":    opts.MaxFileSize,
		"allow_mime_types": opts.AllowMimeTypes,
		"filename":         opts.Filename,
	})
	if err != nil {
		return "", fmt.Errorf("marshal sign request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/files/sign", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.jwt)

	var resp struct {
		Data string `json:"data"`
	}
	if err := webclient.Do(c.httpClient, req, &resp); err != nil {
		return "", fmt.Errorf("pinata sign: %w", err)
	}
	if resp.Data == "" {
		return "", fmt.Errorf("pinata sign: empty url in response")
	}
	return resp.Data, nil
}

// File is an attachment ready to be uploaded.
type File struct {
	Name     string
	MimeType string
	Data     []byte
}

// UploadedFile is Pinata's record of a stored file.
type UploadedFile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	CID      string `json:"cid"`
	Size     int64  `json:"size"`
	MimeType string `json:"mime_type"`
}

// Upload sends f to a signed URL obtained from SignUploadURL.
func (c *Client) Upload(ctx context.Context, signedURL string, f File) (*UploadedFile, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, f.Name))
	h.Set("Content-Type", f.MimeType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(f.Data); err != nil {
		return nil, fmt.Errorf("write form file: %w", err)
	}
	if err := w.WriteField("network", "public"); err != nil {
		return nil, fmt.Errorf("write form field: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, signedURL, &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var resp struct {
		Data UploadedFile `json:"data"`
	}
	if err := webclient.Do(c.httpClient, req, &resp); err != nil {
		return nil, fmt.Errorf("pinata upload %s: %w", f.Name, err)
	}
	if resp.Data.CID == "" {
		return nil, fmt.Errorf("pinata upload %s: no cid in response", f.Name)
	}
	c.logger.Printf("pinata: uploaded %s (%s, %d bytes)", f.Name, resp.Data.CID, resp.Data.Size)
	return &resp.Data, nil
}

// GatewayURL returns the public URL for cid behind gateway. The gateway may
// be given with or without a scheme.
func GatewayURL(gateway, cid string) string {
	gateway = strings.TrimRight(gateway, "/")
	if !strings.HasPrefix(gateway, "http://") && !strings.HasPrefix(gateway, "https://") {
		gateway = "https://" + gateway
	}
	return gateway + "/ipfs/" + cid
}
