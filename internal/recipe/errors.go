package recipe

import (
	"errors"
	"fmt"
)

// Kind classifies why a fetch failed.
type Kind int

const (
	KindInvalidURL Kind = iota + 1
	KindTimeout
	KindUpstream
	KindUnreachable
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindInvalidURL:
		return "invalid_url"
	case KindTimeout:
		return "timeout"
	case KindUpstream:
		return "upstream"
	case KindUnreachable:
		return "unreachable"
	case KindMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// ErrNotConfigured is returned when no recipe service URL is set.
var ErrNotConfigured = errors.New("recipe service url is not configured")

// FetchError describes a failed recipe fetch. Status is only set for
// KindUpstream.
type FetchError struct {
	Kind    Kind
	URL     string
	Status  int
	Details string
	Err     error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("recipe fetch %s", e.Kind)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a *FetchError of the given kind.
func IsKind(err error, kind Kind) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Kind == kind
}
