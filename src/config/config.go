package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"

	"github.com/stake-plus/ecp-share/src/comments"
)

const (
	DefaultIndexerURL       = "https://api.ethcomments.xyz"
	DefaultPinataGatewayURL = "https://gateway.pinata.cloud"
	DefaultChainID          = 8453
	DefaultSignerURL        = "https://share-ethcomments-signer-service.vercel.app"
	DefaultRPCURL           = "https://mainnet.base.org"
	DefaultCommentManager   = "0xb262C9278fBcac384Ef59Fc49E24d800152E19b1"
	DefaultPermalinkBaseURL = "https://demo.ethcomments.xyz/comments"
	DefaultPort             = "3000"
	DefaultCORSOrigins      = "http://localhost:3000"
	DefaultUploadRateLimit  = 20
)

// Config is built once at process entry and handed to every consumer.
type Config struct {
	IndexerURL             string
	PinataGatewayURL       string
	WalletConnectProjectID string
	ChainID                uint64
	SignerURL              string
	AppSigner              common.Address
	RPCURL                 string
	CommentManager         common.Address
	PermalinkBaseURL       string
	Port                   string
	CORSOrigins            []string
	RedisURL               string
	UploadRateLimit        int

	// PinataJWT is only populated by LoadServer.
	PinataJWT string
}

// LookupFunc reads a single environment value, "" meaning unset.
type LookupFunc func(key string) string

type loader struct {
	lookup LookupFunc
	err    error
}

func (l *loader) optional(key, def string) string {
	if v := strings.TrimSpace(l.lookup(key)); v != "" {
		return v
	}
	return def
}

func (l *loader) required(key string) string {
	v := strings.TrimSpace(l.lookup(key))
	if v == "" && l.err == nil {
		l.err = comments.Errorf(comments.KindConfig, "%s is required", key)
	}
	return v
}

func (l *loader) address(key, v string) common.Address {
	if v == "" {
		return common.Address{}
	}
	if !common.IsHexAddress(v) {
		if l.err == nil {
			l.err = comments.Errorf(comments.KindConfig, "%s must be a hex address, got %q", key, v)
		}
		return common.Address{}
	}
	return common.HexToAddress(v)
}

func (l *loader) uint(key string, def uint64) uint64 {
	v := l.optional(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		if l.err == nil {
			l.err = comments.Errorf(comments.KindConfig, "%s must be an unsigned integer, got %q", key, v)
		}
		return def
	}
	return n
}

// Load resolves the shared configuration. A missing required key fails here,
// never at first use.
func Load(lookup LookupFunc) (*Config, error) {
	l := &loader{lookup: lookup}

	cfg := &Config{
		WalletConnectProjectID: l.required("WALLETCONNECT_PROJECT_ID"),
		AppSigner:              l.address("APP_SIGNER_ADDRESS", l.required("APP_SIGNER_ADDRESS")),
		IndexerURL:             strings.TrimRight(l.optional("COMMENTS_INDEXER_URL", DefaultIndexerURL), "/"),
		PinataGatewayURL:       strings.TrimRight(l.optional("PINATA_GATEWAY_URL", DefaultPinataGatewayURL), "/"),
		ChainID:                l.uint("CHAIN_ID", DefaultChainID),
		SignerURL:              strings.TrimRight(l.optional("SIGNER_SERVICE_URL", DefaultSignerURL), "/"),
		RPCURL:                 l.optional("RPC_URL", DefaultRPCURL),
		PermalinkBaseURL:       strings.TrimRight(l.optional("PERMALINK_BASE_URL", DefaultPermalinkBaseURL), "/"),
		Port:                   l.optional("PORT", DefaultPort),
		RedisURL:               l.optional("REDIS_URL", ""),
		UploadRateLimit:        int(l.uint("UPLOAD_RATE_LIMIT", DefaultUploadRateLimit)),
	}
	cfg.CommentManager = l.address("COMMENT_MANAGER_ADDRESS", l.optional("COMMENT_MANAGER_ADDRESS", DefaultCommentManager))

	for _, origin := range strings.Split(l.optional("CORS_ORIGINS", DefaultCORSOrigins), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
		}
	}

	if l.err != nil {
		return nil, l.err
	}
	return cfg, nil
}

// LoadServer is Load plus the server-only pinning credential.
func LoadServer(lookup LookupFunc) (*Config, error) {
	cfg, err := Load(lookup)
	if err != nil {
		return nil, err
	}
	l := &loader{lookup: lookup}
	cfg.PinataJWT = l.required("PINATA_JWT")
	if l.err != nil {
		return nil, l.err
	}
	if err := checkPinataJWT(cfg.PinataJWT); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoad reads .env when present and exits on any configuration error.
func MustLoad() *Config {
	loadDotEnv()
	cfg, err := Load(os.Getenv)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return cfg
}

// MustLoadServer is MustLoad for the HTTP server.
func MustLoadServer() *Config {
	loadDotEnv()
	cfg, err := LoadServer(os.Getenv)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return cfg
}

func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: .env: %v", err)
	}
}

// checkPinataJWT only looks at the token shape; Pinata verifies it.
func checkPinataJWT(token string) error {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return comments.Errorf(comments.KindConfig, "PINATA_JWT is not a well-formed JWT")
	}
	exp, err := claims.GetExpirationTime()
	if err == nil && exp != nil && exp.Before(time.Now()) {
		log.Printf("config: PINATA_JWT expired at %s", exp.Format(time.RFC3339))
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%s", c.Port)
}
