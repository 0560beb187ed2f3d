package ai

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
)

var (
	// ErrCoolingDown is returned while the advisor backs off after a rate limit or quota error
	ErrCoolingDown = errors.New("advisor cooling down")
	// ErrEmptyAdvice is returned when the provider answered without usable text
	ErrEmptyAdvice = errors.New("empty advice in response")
)

const (
	rateLimitCooldown = 60 * time.Second
	quotaCooldown     = time.Hour
)

// IsRateLimitError checks if an error is a rate limit error
func IsRateLimitError(err error) bool {
	if err == nil || IsQuotaError(err) {
		return false
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests
	}

	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests")
}

// IsQuotaError checks if an error is a quota exhaustion error
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) && apiErr.Code == "insufficient_quota" {
		return true
	}

	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "insufficient_quota") ||
		strings.Contains(errStr, "billing")
}

// cooldownFor returns how long to stop calling the provider after err. Zero means retry freely.
func cooldownFor(err error) time.Duration {
	switch {
	case IsQuotaError(err):
		return quotaCooldown
	case IsRateLimitError(err):
		return rateLimitCooldown
	default:
		return 0
	}
}
