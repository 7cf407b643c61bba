// Package quote fans a swap request out to every configured adapter in
// parallel and picks the best-priced quote. Grounded on
// DimaJoyti-go-coffee's arbitrage_detector.go getPricesFromExchanges,
// which queries every exchange concurrently and joins before ranking
// rather than racing on first response.
package quote

import (
	"context"
	"log"
	"sort"
	"sync"

	"github.com/zappilot/dustzap/internal/adapters"
	"github.com/zappilot/dustzap/internal/retry"
	"github.com/zappilot/dustzap/pkg/dzerrors"
	"github.com/zappilot/dustzap/pkg/types"
)

// Selector fans out to a fixed set of adapters and ranks their quotes.
type Selector struct {
	Adapters []adapters.Adapter
}

func NewSelector(adapterList ...adapters.Adapter) *Selector {
	return &Selector{Adapters: adapterList}
}

type adapterResult struct {
	quote *types.SwapQuote
	err   error
	name  string
}

// fanOut calls GetSwapData on every adapter concurrently, each wrapped in
// the shared retry policy, and waits for all of them to settle — per
// spec.md §4.2, latency loses to net-value accuracy here.
func (s *Selector) fanOut(ctx context.Context, req adapters.QuoteRequest) []adapterResult {
	results := make([]adapterResult, len(s.Adapters))
	var wg sync.WaitGroup
	for i, a := range s.Adapters {
		wg.Add(1)
		go func(i int, a adapters.Adapter) {
			defer wg.Done()
			var quote *types.SwapQuote
			err := retry.Do(ctx, nil, func() error {
				q, callErr := a.GetSwapData(ctx, req)
				if callErr != nil {
					return callErr
				}
				quote = q
				return nil
			})
			results[i] = adapterResult{quote: quote, err: err, name: a.Name()}
		}(i, a)
	}
	wg.Wait()
	return results
}

func rankedSuccesses(results []adapterResult) []*types.SwapQuote {
	var quotes []*types.SwapQuote
	for _, r := range results {
		if r.err == nil && r.quote != nil {
			quotes = append(quotes, r.quote)
		}
	}
	sort.SliceStable(quotes, func(i, j int) bool {
		if quotes[i].NetUSD() != quotes[j].NetUSD() {
			return quotes[i].NetUSD() > quotes[j].NetUSD()
		}
		return quotes[i].Provider < quotes[j].Provider
	})
	return quotes
}

func aggregateFailure(results []adapterResult) error {
	kinds := make([]dzerrors.Kind, 0, len(results))
	for _, r := range results {
		log.Printf("quote: adapter %s failed: %v", r.name, r.err)
		if dzErr, ok := r.err.(*dzerrors.Error); ok {
			kinds = append(kinds, dzErr.Kind)
		} else {
			kinds = append(kinds, dzerrors.KindUnknown)
		}
	}
	return dzerrors.New(dzerrors.MostInformative(kinds), "all adapters failed to produce a quote")
}

// GetBest picks the highest net-USD quote among all adapters that
// succeeded, per spec.md §4.2.
func (s *Selector) GetBest(ctx context.Context, req adapters.QuoteRequest) (*types.SwapQuote, error) {
	results := s.fanOut(ctx, req)
	ranked := rankedSuccesses(results)
	if len(ranked) == 0 {
		return nil, aggregateFailure(results)
	}
	return ranked[0], nil
}

// GetSecondBest returns the rank-2 quote when at least two adapters
// succeeded, otherwise the rank-1 quote, avoiding winner's-curse on a
// heavily concentrated provider (spec.md §4.2).
func (s *Selector) GetSecondBest(ctx context.Context, req adapters.QuoteRequest) (*types.SwapQuote, error) {
	results := s.fanOut(ctx, req)
	ranked := rankedSuccesses(results)
	if len(ranked) == 0 {
		return nil, aggregateFailure(results)
	}
	if len(ranked) >= 2 {
		return ranked[1], nil
	}
	return ranked[0], nil
}
