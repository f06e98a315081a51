package webserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stake-plus/ecp-share/src/comments"
	"github.com/stake-plus/ecp-share/src/prefill"
)

type Share struct{}

func NewShare() Share { return Share{} }

// Prefill decodes the deep-link parameters of the request.
func (Share) Prefill(c *gin.Context) {
	p := prefill.Parse(c.Request.URL.Query())
	metadata := p.Metadata
	if metadata == nil {
		metadata = []comments.MetadataEntry{}
	}
	c.JSON(http.StatusOK, gin.H{
		"targetUri":     p.TargetURI,
		"channelId":     p.ChannelID,
		"content":       p.Content,
		"metadata":      metadata,
		"duplicateKeys": comments.DuplicateKeys(metadata),
		"dev":           p.Dev,
	})
}

type shareLinkRequest struct {
	comments.Draft
	BaseURL string `json:"baseUrl"`
}

// Link builds the share URL reproducing a draft.
func (Share) Link(c *gin.Context) {
	var req shareLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	base := req.BaseURL
	if base == "" {
		base = requestOrigin(c) + "/"
	}
	c.JSON(http.StatusOK, gin.H{"url": prefill.ShareURL(base, req.Draft)})
}

func requestOrigin(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}
