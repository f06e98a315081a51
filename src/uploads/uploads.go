// Package uploads pushes editor attachments to the pinning service through
// signed upload URLs.
package uploads

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/stake-plus/ecp-share/src/comments"
	"github.com/stake-plus/ecp-share/src/editor"
	"github.com/stake-plus/ecp-share/src/pinata"
	"github.com/stake-plus/ecp-share/src/webclient"
)

// maxParallel bounds concurrent uploads for one submission.
const maxParallel = 4

// URLGenerator returns a signed upload URL for filename.
type URLGenerator func(ctx context.Context, filename string) (string, error)

// Callbacks receive the outcome of each file individually.
type Callbacks struct {
	OnSuccess func(editor.UploadedFile)
	OnError   func(fileID string, err error)
}

type fileUploader interface {
	Upload(ctx context.Context, signedURL string, f pinata.File) (*pinata.UploadedFile, error)
}

// Uploader uploads files one signed URL at a time.
type Uploader struct {
	generate URLGenerator
	pinata   fileUploader
	gateway  string
	logger   *log.Logger
}

// New creates an uploader. gateway is the public IPFS gateway host used to
// build media URLs.
func New(generate URLGenerator, client fileUploader, gateway string, logger *log.Logger) *Uploader {
	if logger == nil {
		logger = log.Default()
	}
	return &Uploader{generate: generate, pinata: client, gateway: gateway, logger: logger}
}

// UploadFiles uploads every file concurrently. A failing file never aborts the
// others; each outcome goes to cb as soon as it is known. UploadFiles returns
// once every file has reported.
func (u *Uploader) UploadFiles(ctx context.Context, files []editor.File, cb Callbacks) {
	if len(files) == 0 {
		return
	}
	var g errgroup.Group
	g.SetLimit(maxParallel)
	for _, f := range files {
		f := f
		g.Go(func() error {
			uploaded, err := u.uploadOne(ctx, f)
			if err != nil {
				u.logger.Printf("uploads: %s failed: %v", f.Name, err)
				if cb.OnError != nil {
					cb.OnError(f.ID, err)
				}
				return nil
			}
			if cb.OnSuccess != nil {
				cb.OnSuccess(*uploaded)
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (u *Uploader) uploadOne(ctx context.Context, f editor.File) (*editor.UploadedFile, error) {
	signedURL, err := u.generate(ctx, f.Name)
	if err != nil {
		return nil, comments.Wrap(comments.KindUpload, err, "failed to generate upload URL")
	}
	stored, err := u.pinata.Upload(ctx, signedURL, pinata.File{Name: f.Name, MimeType: f.MimeType, Data: f.Data})
	if err != nil {
		return nil, comments.Wrap(comments.KindUpload, err, "upload failed")
	}
	return &editor.UploadedFile{
		ID:       f.ID,
		Name:     f.Name,
		MimeType: f.MimeType,
		URL:      pinata.GatewayURL(u.gateway, stored.CID),
	}, nil
}

// BrokerURLGenerator asks the share server's upload URL broker for a signed
// URL, so the pinning credential never leaves the server.
func BrokerURLGenerator(serverURL string, hc *http.Client) URLGenerator {
	endpoint := strings.TrimRight(serverURL, "/") + "/api/generate-upload-url"
	if hc == nil {
		hc = webclient.NewDefault(0)
	}
	return func(ctx context.Context, filename string) (string, error) {
		body, err := json.Marshal(map[string]string{"filename": filename})
		if err != nil {
			return "", err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return "", fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		var resp struct {
			URL string `json:"url"`
		}
		if err := webclient.Do(hc, req, &resp); err != nil {
			return "", fmt.Errorf("failed to generate upload URL: %w", err)
		}
		if resp.URL == "" {
			return "", fmt.Errorf("failed to generate upload URL: empty url")
		}
		return resp.URL, nil
	}
}
