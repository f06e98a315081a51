package indexer

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/stake-plus/ecp-share/src/comments"
	"github.com/stake-plus/ecp-share/src/webclient"
)

const (
	defaultTimeout = 20 * time.Second

	DefaultChannelLimit = 50
	DefaultChannelSort  = "desc"
)

// Client reads channels and mention suggestions from the comments indexer.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
}

// NewClient creates an indexer client. A nil logger uses log.Default.
func NewClient(baseURL string, hc *http.Client, logger *log.Logger) *Client {
	if hc == nil {
		hc = webclient.NewDefault(defaultTimeout)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: hc,
		logger:     logger,
	}
}

// ChannelQuery filters the channel listing.
type ChannelQuery struct {
	ChainID uint64
	Limit   int
	Sort    string
}

// Channels returns channels in the order the indexer sent them.
func (c *Client) Channels(ctx context.Context, q ChannelQuery) ([]comments.Channel, error) {
	if q.Limit <= 0 {
		q.Limit = DefaultChannelLimit
	}
	if q.Sort == "" {
		q.Sort = DefaultChannelSort
	}
	params := url.Values{}
	params.Set("chainId", strconv.FormatUint(q.ChainID, 10))
	params.Set("limit", strconv.Itoa(q.Limit))
	params.Set("sort", q.Sort)

	var resp struct {
		Results []comments.Channel `json:"results"`
	}
	if err := webclient.GetJSON(ctx, c.httpClient, c.baseURL+"/api/channels?"+params.Encode(), &resp); err != nil {
		return nil, comments.Wrap(comments.KindNetwork, err, "failed to fetch channels")
	}
	return resp.Results, nil
}

// Suggestion is a single mention/autocomplete hit.
type Suggestion struct {
	Type    string `json:"type"`
	Address string `json:"address,omitempty"`
	Name    string `json:"name,omitempty"`
	Value   string `json:"value,omitempty"`
	Avatar  string `json:"avatarUrl,omitempty"`
}

// Suggestions looks up mention candidates for query, where char is the
// trigger character typed in the editor ("@" or "$").
func (c *Client) Suggestions(ctx context.Context, chainID uint64, query, char string) ([]Suggestion, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("char", char)
	params.Set("chainId", strconv.FormatUint(chainID, 10))

	var resp struct {
		Results []Suggestion `json:"results"`
	}
	if err := webclient.GetJSON(ctx, c.httpClient, c.baseURL+"/api/autocomplete?"+params.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("indexer suggestions: %w", err)
	}
	return resp.Results, nil
}
