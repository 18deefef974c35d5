package provider

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Error is a failed call to a text-generation provider.
type Error struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

// Retryable reports whether the failure is a transient provider-side
// condition. The generation loop does not retry these on its own; callers
// may use it to decide whether a later manual retry is worth suggesting.
func (e *Error) Retryable() bool {
	switch e.StatusCode {
	case 429, 500, 502, 503, 529:
		return true
	}
	return false
}

// parseProviderError extracts a human-readable error from provider API responses.
func parseProviderError(providerName string, statusCode int, body []byte) *Error {
	// Try to parse JSON error
	var errResp struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
			Code    string `json:"code"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &errResp) == nil {
		msg := errResp.Error.Message
		if msg == "" {
			msg = errResp.Message
		}
		if msg != "" {
			return &Error{Provider: providerName, StatusCode: statusCode, Message: msg}
		}
	}

	// Friendly messages for common status codes
	var msg string
	switch statusCode {
	case 401:
		msg = "authentication failed — check your API key"
	case 403:
		msg = "access denied — your API key may not have the required permissions"
	case 404:
		msg = "model or endpoint not found"
	case 429:
		msg = "rate limited — too many requests, please wait"
	case 500:
		msg = "internal server error on the provider side"
	case 502, 503:
		msg = "provider service temporarily unavailable"
	case 529:
		msg = "provider is overloaded, please try again later"
	default:
		s := string(body)
		if len(s) > 200 {
			s = s[:200] + "..."
		}
		msg = fmt.Sprintf("HTTP %d: %s", statusCode, s)
	}
	return &Error{Provider: providerName, StatusCode: statusCode, Message: msg}
}

// friendlyProviderError converts common network errors to user-friendly messages.
func friendlyProviderError(err error) string {
	msg := err.Error()
	if strings.Contains(msg, "connection refused") {
		return "connection refused (is the service running?)"
	}
	if strings.Contains(msg, "no such host") {
		return "host not found (check the URL)"
	}
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded") {
		return "connection timed out (service may be starting up)"
	}
	if strings.Contains(msg, "EOF") {
		return "connection closed unexpectedly"
	}
	if strings.Contains(msg, "reset by peer") {
		return "connection reset by server"
	}
	return msg
}
