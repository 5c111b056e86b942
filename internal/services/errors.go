package services

import (
	"fmt"
	"net/http"
)

// Error categories for failed backend requests. They surface to the
// player as system messages, so they stay short and human.
const (
	CategoryMissingKey   = "missing API key"
	CategoryInvalidKey   = "invalid API key"
	CategoryAccessDenied = "access denied"
	CategoryQuota        = "quota exceeded"
	CategoryServer       = "server error"
	CategoryUnavailable  = "service unavailable"
	CategoryNetwork      = "network error"
	CategoryUnknown      = "unknown error"
)

// LLMError is a classified backend failure.
type LLMError struct {
	Provider   string
	StatusCode int
	Kind       string
	Message    string
}

func (e *LLMError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s request failed (%d, %s): %s", e.Provider, e.StatusCode, e.Kind, e.Message)
	}
	return fmt.Sprintf("%s request failed (%s): %s", e.Provider, e.Kind, e.Message)
}

// Category satisfies the engine's BackendError interface.
func (e *LLMError) Category() string { return e.Kind }

// classifyStatus maps an HTTP status onto the error taxonomy.
func classifyStatus(status int) string {
	switch {
	case status == http.StatusUnauthorized:
		return CategoryInvalidKey
	case status == http.StatusForbidden:
		return CategoryAccessDenied
	case status == http.StatusTooManyRequests:
		return CategoryQuota
	case status == http.StatusServiceUnavailable, status == http.StatusBadGateway, status == http.StatusGatewayTimeout:
		return CategoryUnavailable
	case status >= 500:
		return CategoryServer
	default:
		return CategoryUnknown
	}
}

func newLLMError(provider string, status int, message string) *LLMError {
	return &LLMError{
		Provider:   provider,
		StatusCode: status,
		Kind:       classifyStatus(status),
		Message:    message,
	}
}

func missingKeyError(provider string) *LLMError {
	return &LLMError{
		Provider: provider,
		Kind:     CategoryMissingKey,
		Message:  "no API key configured",
	}
}

func networkError(provider string, err error) *LLMError {
	return &LLMError{
		Provider: provider,
		Kind:     CategoryNetwork,
		Message:  err.Error(),
	}
}
