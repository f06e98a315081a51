package webserver

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/stake-plus/ecp-share/src/config"
	"github.com/stake-plus/ecp-share/src/indexer"
)

func attachRoutes(r *gin.Engine, cfg *config.Config, deps Deps) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.CORSOrigins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
	}))

	dir := indexer.NewDirectory(deps.Indexer, cfg.ChainID, deps.Logger)
	pages := newPages(cfg, dir)
	brokerH := NewBroker(deps.Uploads, deps.Logger)
	channelsH := NewChannels(dir, deps.Indexer, cfg.ChainID)
	shareH := NewShare()

	r.SetHTMLTemplate(pages.templates)
	r.GET("/", pages.Form)
	r.GET("/api-docs", pages.Docs)

	api := r.Group("/api")
	{
		upload := api.Group("")
		if deps.Limiter != nil {
			upload.Use(RateLimitMiddleware(deps.Limiter, deps.Logger))
		}
		upload.POST("/generate-upload-url", brokerH.GenerateUploadURL)

		api.GET("/channels", channelsH.List)
		api.GET("/suggestions", channelsH.Suggestions)
		api.GET("/prefill", shareH.Prefill)
		api.POST("/share-link", shareH.Link)
	}
}
