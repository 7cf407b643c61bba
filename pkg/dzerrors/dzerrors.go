// Package dzerrors defines the wire error kinds the engine classifies
// every failure into, from request validation through adapter transport
// errors.
package dzerrors

import "fmt"

// Kind is a wire error code. Clients branch on this string, never on the
// wrapped Go error's text.
type Kind string

const (
	KindValidation       Kind = "VALIDATION_ERROR"
	KindNotFound         Kind = "NOT_FOUND"
	KindNoDustTokens     Kind = "NO_DUST_TOKENS"
	KindPriceFetchFailed Kind = "PRICE_FETCH_FAILED"
	KindNoLiquidity      Kind = "NO_LIQUIDITY"
	KindUnsupportedToken Kind = "UNSUPPORTED_TOKEN"
	KindRateLimited      Kind = "RATE_LIMITED"
	KindNetworkError     Kind = "NETWORK_ERROR"
	KindUpstreamError    Kind = "UPSTREAM_ERROR"
	KindTimeout          Kind = "TIMEOUT"
	KindCancelled        Kind = "CANCELLED"
	KindInternal         Kind = "INTERNAL_ERROR"
	KindUnknown          Kind = "UNKNOWN_ERROR"
)

// Error carries a wire Kind alongside the underlying Go error, the same
// way the teacher's result types carry a human-readable message next to
// the real error.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// retryPrecedence orders kinds from most to least informative for
// aggregating multiple adapter failures into a single reported kind.
var retryPrecedence = []Kind{
	KindNoLiquidity,
	KindUnsupportedToken,
	KindRateLimited,
	KindNetworkError,
	KindUpstreamError,
	KindUnknown,
}

// MostInformative picks the highest-precedence kind among a set of
// per-provider failures (spec: precedence NO_LIQUIDITY > UNSUPPORTED_TOKEN
// > RATE_LIMITED > NETWORK_ERROR > UPSTREAM_ERROR > UNKNOWN), falling back
// to INTERNAL_ERROR only when the set is empty (no adapter even ran).
func MostInformative(kinds []Kind) Kind {
	if len(kinds) == 0 {
		return KindInternal
	}
	present := make(map[Kind]bool, len(kinds))
	for _, k := range kinds {
		present[k] = true
	}
	for _, k := range retryPrecedence {
		if present[k] {
			return k
		}
	}
	return KindUnknown
}

// UserMessage renders a client-safe message from a kind and the token
// symbol it applied to. Never includes stack traces or credentials.
func UserMessage(kind Kind, tokenSymbol string) string {
	switch kind {
	case KindNoLiquidity:
		return fmt.Sprintf("No swap route found for %s", tokenSymbol)
	case KindUnsupportedToken:
		return fmt.Sprintf("%s is not supported by any available provider", tokenSymbol)
	case KindRateLimited:
		return fmt.Sprintf("Swap providers are rate-limiting requests for %s, try again shortly", tokenSymbol)
	case KindNetworkError:
		return fmt.Sprintf("Network error while pricing %s", tokenSymbol)
	case KindUpstreamError:
		return fmt.Sprintf("Swap provider error while pricing %s", tokenSymbol)
	case KindValidation:
		return fmt.Sprintf("%s has an invalid amount", tokenSymbol)
	default:
		return fmt.Sprintf("Unable to process %s", tokenSymbol)
	}
}
