package resolution

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// ErrorCode classifies why a batch fetch could not complete.
type ErrorCode string

const (
	ErrorNetwork    ErrorCode = "network"
	ErrorServer     ErrorCode = "server"
	ErrorAuth       ErrorCode = "auth"
	ErrorValidation ErrorCode = "validation"
	ErrorUnknown    ErrorCode = "unknown"
)

// Retryable reports whether repeating the request could change the outcome.
func (c ErrorCode) Retryable() bool {
	return c == ErrorNetwork || c == ErrorServer
}

// FetchError is a classified batch fetch failure.
type FetchError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *FetchError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s error", e.Code)
	}
	return fmt.Sprintf("%s error: %s", e.Code, e.Message)
}

func (e *FetchError) Unwrap() error { return e.Err }

// BackendCoder is implemented by storage errors that carry a backend error code.
type BackendCoder interface {
	BackendCode() string
}

var networkVocabulary = []string{
	"network", "fetch failed", "failed to fetch", "timeout", "timed out",
	"deadline exceeded", "offline", "connection refused", "connection reset",
	"no such host", "unreachable", "econnrefused", "etimedout", "broken pipe",
}

var authVocabulary = []string{
	"jwt", "invalid token", "token expired", "token is expired", "expired token",
	"missing token", "refresh token", "access token", "session expired",
	"invalid session", "unauthorized", "unauthorised", "not authorized",
	"not authenticated", "permission denied", "forbidden", "row-level security",
	"row level security", "authorization",
}

var authCodes = map[string]bool{
	"42501":    true,
	"28000":    true,
	"PGRST301": true,
	"401":      true,
}

// ClassifyError maps an arbitrary failure onto an ErrorCode. A *FetchError is
// returned unchanged; nil yields nil.
func ClassifyError(err error) *FetchError {
	if err == nil {
		return nil
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe
	}
	return &FetchError{Code: classify(err), Message: err.Error(), Err: err}
}

func classify(err error) ErrorCode {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorNetwork
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return ErrorNetwork
	}

	msg := strings.ToLower(err.Error())
	if containsAny(msg, networkVocabulary) {
		return ErrorNetwork
	}
	if containsAny(msg, authVocabulary) {
		return ErrorAuth
	}

	code := ""
	var coder BackendCoder
	if errors.As(err, &coder) {
		code = strings.TrimSpace(coder.BackendCode())
	}
	if strings.HasPrefix(code, "22") || strings.HasPrefix(code, "23") {
		return ErrorServer
	}
	if authCodes[code] {
		return ErrorAuth
	}

	if strings.TrimSpace(msg) != "" || code != "" {
		return ErrorServer
	}
	return ErrorUnknown
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
