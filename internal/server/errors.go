package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	gatewaydomain "github.com/sspkit/razorgate/internal/gateway/domain"
	"github.com/sspkit/razorgate/internal/money"
	"github.com/sspkit/razorgate/internal/observability/logger"
	"github.com/sspkit/razorgate/internal/webhook"
	"go.uber.org/zap"
)

type apiError struct {
	status  int
	code    string
	message string
}

func (e *apiError) Error() string { return e.message }

var (
	ErrUnauthorized = &apiError{status: http.StatusUnauthorized, message: "Unauthorized - Invalid or missing API key"}
	ErrRateLimited  = &apiError{status: http.StatusTooManyRequests, message: "Too many requests"}
)

func invalidRequestError() error {
	return &apiError{status: http.StatusBadRequest, message: "Invalid request body"}
}

// AbortWithError translates any error into the uniform response shape
// {error:true, message, code?}. Provider messages pass through; everything
// unrecognized collapses to a generic 500 so internals never leak.
func AbortWithError(c *gin.Context, err error) {
	status, code, message := classify(err)

	if status >= http.StatusInternalServerError {
		logger.FromContext(c.Request.Context()).Error("request failed",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
	}

	body := gin.H{"error": true, "message": message}
	if code != "" {
		body["code"] = code
	}
	c.AbortWithStatusJSON(status, body)
}

func classify(err error) (int, string, string) {
	var known *apiError
	if errors.As(err, &known) {
		return known.status, known.code, known.message
	}

	var missing *money.MissingFieldsError
	if errors.As(err, &missing) {
		return http.StatusBadRequest, "", fmt.Sprintf("Missing required fields: %s", strings.Join(missing.Fields, ", "))
	}
	if errors.Is(err, money.ErrInvalidAmount) {
		return http.StatusBadRequest, "", "Invalid amount"
	}
	if errors.Is(err, webhook.ErrInvalidSignature) {
		return http.StatusUnauthorized, "", "Invalid signature"
	}
	if errors.Is(err, webhook.ErrInvalidPayload) {
		return http.StatusBadRequest, "", "Invalid webhook payload"
	}
	if errors.Is(err, gatewaydomain.ErrProviderNotFound) {
		return http.StatusNotFound, "", "Unknown provider"
	}
	if errors.Is(err, gatewaydomain.ErrInvalidConfig) {
		return http.StatusBadRequest, "", "Invalid provider configuration"
	}

	var provider *gatewaydomain.ProviderError
	if errors.As(err, &provider) {
		return http.StatusInternalServerError, provider.Code, provider.Message
	}

	return http.StatusInternalServerError, "", "Internal server error"
}
