// Package retry wraps adapter calls in one shared retry policy:
// exponential backoff with jitter, gated by a classifier that decides
// whether a given failure kind is worth retrying. The same classifier
// (IsRetryable, which looks only at the error) applies to every adapter;
// there is no per-provider policy and the attempt number is not
// consulted. Grounded on
// smartcontractkit-seth's retry.go, which wraps transaction submission
// the same way using github.com/avast/retry-go.
package retry

import (
	"context"
	"math/rand"
	"time"

	retrygo "github.com/avast/retry-go"

	"github.com/zappilot/dustzap/pkg/dzerrors"
)

const (
	MaxAttempts = 3
	BaseDelay   = 1000 * time.Millisecond
	CapDelay    = 5000 * time.Millisecond
	Factor      = 2
)

// nonRetryableKinds are never worth retrying: the classification itself
// tells us a second attempt would produce the same answer.
var nonRetryableKinds = map[dzerrors.Kind]bool{
	dzerrors.KindNoLiquidity:      true,
	dzerrors.KindUnsupportedToken: true,
}

// IsRetryable implements spec.md §4.3: do not retry NO_LIQUIDITY,
// UNSUPPORTED_TOKEN, or HTTP 4xx except 408/429 (the latter two are
// already folded into the Kind by internal/adapters.ClassifyHTTP, which
// only emits UNSUPPORTED_TOKEN for a generic non-retryable 4xx and
// RATE_LIMITED for 429).
func IsRetryable(err error) bool {
	dzErr, ok := err.(*dzerrors.Error)
	if !ok {
		return true
	}
	return !nonRetryableKinds[dzErr.Kind]
}

// fullJitterDelay computes an exponential backoff delay for the given
// (1-indexed) attempt: BaseDelay plus a random jitter in [0, growth),
// where growth is the exponential increment capped at CapDelay. Every
// attempt honors at least BaseDelay (spec.md §8 S4's "retries respect
// >=1000ms minimum delay"), with the randomized portion growing on top
// of that floor as attempts increase.
func fullJitterDelay(attempt uint) time.Duration {
	backoff := BaseDelay
	for i := uint(1); i < attempt; i++ {
		backoff *= Factor
		if backoff > CapDelay {
			backoff = CapDelay
			break
		}
	}
	growth := backoff - BaseDelay
	if growth <= 0 {
		return BaseDelay
	}
	return BaseDelay + time.Duration(rand.Int63n(int64(growth)))
}

// Do runs fn with the engine-wide retry policy, logging each retry via
// onRetry (may be nil) the way smartcontractkit-seth's RetryTxAndDecode
// uses retry.OnRetry for observability.
func Do(ctx context.Context, onRetry func(attempt uint, err error), fn func() error) error {
	return retrygo.Do(
		func() error {
			if err := ctx.Err(); err != nil {
				return retrygo.Unrecoverable(err)
			}
			return fn()
		},
		retrygo.Attempts(MaxAttempts),
		retrygo.DelayType(func(n uint, err error, config *retrygo.Config) time.Duration {
			return fullJitterDelay(n + 1)
		}),
		retrygo.RetryIf(IsRetryable),
		retrygo.OnRetry(func(n uint, err error) {
			if onRetry != nil {
				onRetry(n+1, err)
			}
		}),
		retrygo.LastErrorOnly(true),
	)
}
