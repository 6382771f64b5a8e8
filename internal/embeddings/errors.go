package embeddings

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// ErrorKind classifies embedding failures so callers can tell an invalid key
// from an oversized input or a network outage.
type ErrorKind string

const (
	KindAuth          ErrorKind = "auth"
	KindInputTooLarge ErrorKind = "input_too_large"
	KindNetwork       ErrorKind = "network"
	KindRateLimited   ErrorKind = "rate_limited"
	KindUnavailable   ErrorKind = "unavailable"
	KindUnknown       ErrorKind = "unknown"
)

// ProviderError is the normalized error returned by every Embedder in this package.
type ProviderError struct {
	Provider string
	Kind     ErrorKind
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s embedding failed (%s): %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// KindOf returns the kind of a ProviderError anywhere in err's chain,
// KindUnknown otherwise.
func KindOf(err error) ErrorKind {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnknown
}

// normalize wraps err in a ProviderError, classifying it from the HTTP
// status when one is known (status 0 means "no response").
func normalize(provider string, status int, err error) error {
	if err == nil {
		return nil
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return err
	}

	if status == 0 {
		var apiErr *openai.APIError
		var reqErr *openai.RequestError
		switch {
		case errors.As(err, &apiErr):
			status = apiErr.HTTPStatusCode
		case errors.As(err, &reqErr):
			status = reqErr.HTTPStatusCode
		}
	}

	return &ProviderError{Provider: provider, Kind: classify(status, err), Err: err}
}

func classify(status int, err error) ErrorKind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindAuth
	case status == http.StatusRequestEntityTooLarge:
		return KindInputTooLarge
	case status == http.StatusBadRequest && mentionsLength(err):
		return KindInputTooLarge
	case status == http.StatusTooManyRequests:
		return KindRateLimited
	case status >= 500:
		return KindUnavailable
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.As(err, &netErr) {
		return KindNetwork
	}
	return KindUnknown
}

func mentionsLength(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "maximum context length") ||
		strings.Contains(msg, "too long") ||
		strings.Contains(msg, "too many tokens")
}
