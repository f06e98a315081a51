// Package webserver serves the share form, its query-parameter docs and the
// small JSON API the form and the CLI talk to.
package webserver

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/stake-plus/ecp-share/src/comments"
	"github.com/stake-plus/ecp-share/src/config"
	"github.com/stake-plus/ecp-share/src/indexer"
	"github.com/stake-plus/ecp-share/src/pinata"
)

type uploadSigner interface {
	HasCredential() bool
	SignUploadURL(ctx context.Context, opts pinata.SignOptions) (string, error)
}

type channelIndex interface {
	Channels(ctx context.Context, q indexer.ChannelQuery) ([]comments.Channel, error)
	Suggestions(ctx context.Context, chainID uint64, query, char string) ([]indexer.Suggestion, error)
}

// Deps are the collaborators behind the routes. A nil Limiter disables rate
// limiting of the upload broker.
type Deps struct {
	Uploads uploadSigner
	Indexer channelIndex
	Limiter Limiter
	Logger  *log.Logger
}

func New(cfg *config.Config, deps Deps) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = log.Default()
	}
	g := gin.New()
	g.Use(gin.Logger(), gin.Recovery())
	attachRoutes(g, cfg, deps)
	return g
}
