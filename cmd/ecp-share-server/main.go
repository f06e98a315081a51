package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stake-plus/ecp-share/src/config"
	"github.com/stake-plus/ecp-share/src/data"
	"github.com/stake-plus/ecp-share/src/indexer"
	"github.com/stake-plus/ecp-share/src/logging"
	"github.com/stake-plus/ecp-share/src/pinata"
	"github.com/stake-plus/ecp-share/src/webserver"
)

func main() {
	cfg := config.MustLoadServer()
	logger := log.New(os.Stderr, "", log.LstdFlags)

	var limiter webserver.Limiter
	if cfg.RedisURL != "" {
		rdb := data.MustRedis(cfg.RedisURL)
		defer rdb.Close()
		limiter = webserver.NewRedisRateLimiter(rdb, cfg.UploadRateLimit, time.Minute)
	} else {
		limiter = webserver.NewRateLimiter(cfg.UploadRateLimit, time.Minute)
	}

	router := webserver.New(cfg, webserver.Deps{
		Uploads: pinata.NewClient(cfg.PinataJWT, pinata.WithLogger(logger)),
		Indexer: indexer.NewClient(cfg.IndexerURL, nil, logger),
		Limiter: limiter,
		Logger:  logger,
	})
	httpSrv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http: %v", err)
		}
	}()
	log.Printf("ecp-share listening on %s (chain %d, pinata %s)", cfg.Port, cfg.ChainID, logging.Redact(cfg.PinataJWT))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutCtx, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()
	_ = httpSrv.Shutdown(shutCtx)
}
