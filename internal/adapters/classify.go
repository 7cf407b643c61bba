package adapters

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/zappilot/dustzap/pkg/dzerrors"
)

var (
	liquidityPattern    = regexp.MustCompile(`(?i)liquidity|insufficient`)
	unsupportedPattern  = regexp.MustCompile(`(?i)unsupported|not found|invalid token`)
	rateLimitedPattern  = regexp.MustCompile(`(?i)rate.?limit|quota`)
)

// ClassifyHTTP maps an adapter HTTP response (status + body text) to a
// wire Kind, per spec.md §4.1's failure-normalization table.
func ClassifyHTTP(statusCode int, body string) dzerrors.Kind {
	if statusCode == http.StatusTooManyRequests || rateLimitedPattern.MatchString(body) {
		return dzerrors.KindRateLimited
	}
	if liquidityPattern.MatchString(body) {
		return dzerrors.KindNoLiquidity
	}
	if unsupportedPattern.MatchString(body) {
		return dzerrors.KindUnsupportedToken
	}
	if statusCode >= 500 {
		return dzerrors.KindUpstreamError
	}
	if statusCode >= 400 && statusCode != http.StatusRequestTimeout {
		return dzerrors.KindUnsupportedToken
	}
	return dzerrors.KindUnknown
}

// ClassifyTransport maps a transport-level error (no HTTP response at
// all — timeouts, connection refused, DNS failure) to NETWORK_ERROR.
func ClassifyTransport(err error) dzerrors.Kind {
	if err == nil {
		return dzerrors.KindUnknown
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded") {
		return dzerrors.KindNetworkError
	}
	return dzerrors.KindNetworkError
}
