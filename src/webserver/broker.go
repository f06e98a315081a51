package webserver

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/stake-plus/ecp-share/src/logging"
	"github.com/stake-plus/ecp-share/src/pinata"
)

// Broker hands out signed upload URLs so the pinning credential stays on
// the server.
type Broker struct {
	signer   uploadSigner
	validate *validator.Validate
	logger   *log.Logger
}

func NewBroker(signer uploadSigner, logger *log.Logger) Broker {
	return Broker{signer: signer, validate: validator.New(), logger: logger}
}

type uploadURLRequest struct {
	Filename string `json:"filename" validate:"required,min=1"`
}

func (b Broker) GenerateUploadURL(c *gin.Context) {
	var req uploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"filename": []string{"Expected a JSON body with a filename"}}})
		return
	}
	req.Filename = strings.TrimSpace(req.Filename)
	if err := b.validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": fieldErrors(err)})
		return
	}

	if b.signer == nil || !b.signer.HasCredential() {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server misconfigured"})
		return
	}

	url, err := b.signer.SignUploadURL(c.Request.Context(), pinata.SignOptions{
		Filename:       req.Filename,
		Expires:        pinata.DefaultURLExpiry,
		MaxFileSize:    pinata.MaxFileSize,
		AllowMimeTypes: pinata.AllowedMimeTypes,
	})
	if err != nil {
		if logging.IsRateLimit(err) {
			b.logger.Printf("broker: pinata rate limited: %v", err)
		} else {
			b.logger.Printf("broker: error generating upload URL: %v", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate upload URL"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// fieldErrors flattens validator errors into field -> messages, keyed by the
// JSON field name.
func fieldErrors(err error) map[string][]string {
	out := map[string][]string{}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out["_"] = []string{err.Error()}
		return out
	}
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
		out[field] = append(out[field], fieldMessage(fe))
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Required"
	case "min":
		return "Must contain at least " + fe.Param() + " character(s)"
	}
	return "Invalid value"
}
