package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

var (
	// ErrNilEmbedder is returned when registering a nil embedder.
	ErrNilEmbedder = errors.New("embedder is nil")

	// ErrUnnamedEmbedder is returned when registering an embedder with an empty name.
	ErrUnnamedEmbedder = errors.New("embedder has no name")

	// ErrDuplicateEmbedder is returned when a provider name is registered twice.
	ErrDuplicateEmbedder = errors.New("embedder already registered")

	// ErrUnknownEmbedder is returned when looking up an unregistered provider name.
	ErrUnknownEmbedder = errors.New("unknown embedder")
)

// Category classifies a provider failure. The pipeline's retry and
// aggregation decisions are made on the category, never on message text.
type Category int

const (
	// CategoryOther is the default for unclassified failures. Not retryable.
	CategoryOther Category = iota
	// CategoryTimeout indicates the request exceeded its deadline.
	CategoryTimeout
	// CategoryConnection indicates a network or connection failure.
	CategoryConnection
	// CategoryRateLimit indicates the provider throttled the request.
	CategoryRateLimit
	// CategoryQuota indicates an exhausted usage quota.
	CategoryQuota
	// CategoryUnauthorized indicates a missing or invalid credential.
	CategoryUnauthorized
	// CategoryForbidden indicates a credential lacking permission.
	CategoryForbidden
	// CategoryServer indicates a provider-side 5xx failure.
	CategoryServer
)

var categoryNames = map[Category]string{
	CategoryOther:        "other",
	CategoryTimeout:      "timeout",
	CategoryConnection:   "connection",
	CategoryRateLimit:    "rate limit",
	CategoryQuota:        "quota",
	CategoryUnauthorized: "unauthorized",
	CategoryForbidden:    "forbidden",
	CategoryServer:       "server error",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "other"
}

// Retryable reports whether a failure of this category is worth retrying.
func (c Category) Retryable() bool {
	switch c {
	case CategoryTimeout, CategoryConnection, CategoryRateLimit, CategoryQuota:
		return true
	}
	return false
}

// Critical reports whether a failure of this category must abort result
// aggregation instead of degrading to partial results.
func (c Category) Critical() bool {
	switch c {
	case CategoryRateLimit, CategoryQuota, CategoryUnauthorized, CategoryForbidden:
		return true
	}
	return false
}

// Error is a classified embedding-provider failure.
type Error struct {
	Provider string
	Category Category
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Category, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError wraps err as a classified provider error.
func NewError(providerName string, category Category, err error) *Error {
	return &Error{Provider: providerName, Category: category, Err: err}
}

// Classify returns the category of err. A *Error anywhere in the chain wins;
// context and net errors map to timeout/connection; everything else is Other.
func Classify(err error) Category {
	if err == nil {
		return CategoryOther
	}

	var perr *Error
	if errors.As(err, &perr) {
		return perr.Category
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return CategoryTimeout
	}

	var nerr net.Error
	if errors.As(err, &nerr) {
		if nerr.Timeout() {
			return CategoryTimeout
		}
		return CategoryConnection
	}

	return CategoryOther
}

// ClassifyMessage derives a category from a transport error message.
// This is the one place wire-level errors enter the taxonomy; providers
// use it at their client boundary where no structured status is available.
func ClassifyMessage(err error) Category {
	if cat := Classify(err); cat != CategoryOther {
		return cat
	}

	message := strings.ToLower(err.Error())
	switch {
	case strings.Contains(message, "rate limit"), strings.Contains(message, "429"):
		return CategoryRateLimit
	case strings.Contains(message, "quota"):
		return CategoryQuota
	case strings.Contains(message, "unauthorized"), strings.Contains(message, "401"):
		return CategoryUnauthorized
	case strings.Contains(message, "forbidden"), strings.Contains(message, "403"):
		return CategoryForbidden
	case strings.Contains(message, "timeout"), strings.Contains(message, "deadline"):
		return CategoryTimeout
	case strings.Contains(message, "connection"), strings.Contains(message, "network"),
		strings.Contains(message, "unreachable"), strings.Contains(message, "refused"):
		return CategoryConnection
	case strings.Contains(message, "500"), strings.Contains(message, "502"),
		strings.Contains(message, "503"), strings.Contains(message, "server error"):
		return CategoryServer
	}
	return CategoryOther
}
