package signer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/stake-plus/ecp-share/src/comments"
	"github.com/stake-plus/ecp-share/src/webclient"
)

const defaultTimeout = 30 * time.Second

// Request is the comment payload sent for an app signature.
type Request struct {
	Author    common.Address             `json:"author"`
	Content   string                     `json:"content"`
	ChannelID string                     `json:"channelId"`
	Metadata  []comments.EncodedMetadata `json:"metadata"`
	TargetURI string                     `json:"targetUri"`
}

// Response is the signed payload.
type Response struct {
	Data      comments.CommentData `json:"data"`
	Signature hexutil.Bytes        `json:"signature"`
	Hash      *common.Hash         `json:"hash,omitempty"`
}

// Client calls the remote signer service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
}

// NewClient creates a signer client for baseURL.
func NewClient(baseURL string, hc *http.Client, logger *log.Logger) *Client {
	if hc == nil {
		hc = webclient.NewDefault(defaultTimeout)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: hc, logger: logger}
}

// Sign posts req to /api/post-comment/sign. Any non-2xx answer is a
// KindSigner error carrying the status and body.
func (c *Client) Sign(ctx context.Context, req Request) (*Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal sign request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/post-comment/sign", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	var resp Response
	err = webclient.Do(c.httpClient, httpReq, &resp)
	var httpErr *webclient.HTTPError
	switch {
	case errors.As(err, &httpErr):
		text := strings.TrimSpace(string(httpErr.Body))
		c.logger.Printf("signer: service error: %d %s", httpErr.StatusCode, text)
		return nil, &comments.Error{
			Kind:   comments.KindSigner,
			Msg:    fmt.Sprintf("failed to get app signature: %d %s", httpErr.StatusCode, text),
			Status: httpErr.StatusCode,
			Body:   text,
		}
	case err != nil:
		return nil, comments.Wrap(comments.KindNetwork, err, "signer request failed")
	}

	if len(resp.Signature) == 0 {
		return nil, comments.Errorf(comments.KindSigner, "signer returned no signature")
	}
	return &resp, nil
}
