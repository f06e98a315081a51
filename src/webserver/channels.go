package webserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/stake-plus/ecp-share/src/indexer"
)

type Channels struct {
	dir     *indexer.Directory
	index   channelIndex
	chainID uint64
}

func NewChannels(dir *indexer.Directory, index channelIndex, chainID uint64) Channels {
	return Channels{dir: dir, index: index, chainID: chainID}
}

// List reloads the directory and returns it home-first with the default
// selection.
func (h Channels) List(c *gin.Context) {
	list, err := h.dir.Load(c.Request.Context())
	if err != nil && len(list) == 0 {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to load channels"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"results":          list,
		"defaultChannelId": indexer.DefaultChannelID(list),
	})
}

// Suggestions proxies mention lookups to the indexer.
func (h Channels) Suggestions(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))
	char := c.DefaultQuery("char", "@")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"query": []string{"Required"}}})
		return
	}
	results, err := h.index.Suggestions(c.Request.Context(), h.chainID, query, char)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to load suggestions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}
