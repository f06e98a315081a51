package logging

import (
	"errors"
	"net/http"
	"strings"

	"github.com/stake-plus/ecp-share/src/webclient"
)

// IsRateLimit reports whether an upstream refused the call for quota reasons.
func IsRateLimit(err error) bool {
	if err == nil {
		return false
	}
	var httpErr *webclient.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusTooManyRequests
	}
	return strings.Contains(err.Error(), "rate_limit")
}

// Redact hides all but the last four characters of a credential.
func Redact(secret string) string {
	if len(secret) <= 4 {
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}
