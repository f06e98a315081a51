package logging

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stake-plus/ecp-share/src/webclient"
)

func TestIsRateLimit(t *testing.T) {
	assert.True(t, IsRateLimit(fmt.Errorf("sign: %w", &webclient.HTTPError{StatusCode: 429})))
	assert.False(t, IsRateLimit(&webclient.HTTPError{StatusCode: 500, Body: []byte("rate_limit")}))
	assert.True(t, IsRateLimit(errors.New("rate_limit_exceeded")))
	assert.False(t, IsRateLimit(nil))
}

func TestRedact(t *testing.T) {
	assert.Equal(t, "****", Redact("abc"))
	assert.Equal(t, "****wxyz", Redact("eyJhbGciOi.wxyz"))
}
