package gitlab

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind is the classification of a transport failure, deciding
// retry/suppress/report behaviour upstream.
type ErrorKind int

const (
	KindUnclassified ErrorKind = iota
	KindNetworkTransient
	KindConnection
	KindCredential
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetworkTransient:
		return "network-transient"
	case KindConnection:
		return "connection"
	case KindCredential:
		return "credential-invalid"
	default:
		return "unclassified"
	}
}

// networkPatterns are substrings of transient network failures as surfaced
// by the runtime and libc resolvers.
var networkPatterns = []string{
	"ECONNRESET",
	"ECONNREFUSED",
	"ETIMEDOUT",
	"EAI_AGAIN",
	"ENOTFOUND",
	"connection reset",
	"connection refused",
	"no such host",
	"i/o timeout",
	"context deadline exceeded",
}

// Classify inspects a failure and maps it onto the error taxonomy.
// Unrecognised failures stay KindUnclassified and must propagate unchanged.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindUnclassified
	}

	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		switch reqErr.Status {
		case 401:
			return KindCredential
		}
	}

	var gqlErr *GraphQLErrors
	if errors.As(err, &gqlErr) {
		for _, ge := range gqlErr.Errors {
			code := strings.ToUpper(ge.Type)
			if code == "" {
				code = strings.ToUpper(ge.Extensions.Code)
			}
			switch code {
			case "FORBIDDEN", "UNAUTHENTICATED":
				return KindCredential
			}
			if strings.Contains(strings.ToLower(ge.Message), "not found") {
				// The GraphQL surface reports missing resources (and
				// unsupported server versions) this way.
				return KindConnection
			}
		}
	}

	msg := err.Error()
	for _, pat := range networkPatterns {
		if strings.Contains(msg, pat) {
			return KindNetworkTransient
		}
	}
	return KindUnclassified
}

// SuppressedError wraps an expected-condition failure (connection or
// credential class) so error reporting can skip alerting while callers
// still see the original cause.
type SuppressedError struct {
	Kind ErrorKind
	Err  error
}

func (e *SuppressedError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *SuppressedError) Unwrap() error { return e.Err }

// IsSuppressed reports whether err is carrying a suppressed classification.
func IsSuppressed(err error) bool {
	var se *SuppressedError
	return errors.As(err, &se)
}
