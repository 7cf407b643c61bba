package httpapi

import (
	"net/http"

	"github.com/zappilot/dustzap/pkg/dzerrors"
)

// statusForKind maps a wire error Kind to an HTTP status, per spec.md §6
// and §7's propagation policy.
func statusForKind(kind dzerrors.Kind) int {
	switch kind {
	case dzerrors.KindValidation, dzerrors.KindNoDustTokens:
		return http.StatusBadRequest
	case dzerrors.KindNotFound:
		return http.StatusNotFound
	case dzerrors.KindNoLiquidity, dzerrors.KindUnsupportedToken, dzerrors.KindRateLimited,
		dzerrors.KindNetworkError, dzerrors.KindUpstreamError, dzerrors.KindPriceFetchFailed:
		return http.StatusServiceUnavailable
	case dzerrors.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
