// Package adapters normalizes three DEX aggregator APIs (1inch, Paraswap,
// 0x) into one SwapQuote shape, grounded on the teacher's
// ensureApproval/Swap ABI-handling idiom one layer below this in
// internal/txbuilder, and on Aigen6-preworker's fallback-on-error query
// pattern for the HTTP plumbing.
package adapters

import (
	"context"
	"math/big"

	"github.com/zappilot/dustzap/pkg/types"
)

// TokenRef is the minimal token identity an adapter needs to price a leg
// of a swap.
type TokenRef struct {
	Address  string
	Decimals int
}

// QuoteRequest is the common input every adapter accepts, per spec.md §4.1.
type QuoteRequest struct {
	ChainID          int64
	FromToken        TokenRef
	ToToken          TokenRef
	Amount           *big.Int
	FromAddress      string
	SlippagePct      float64
	EthPriceUSD      float64
	ToTokenPriceUSD  float64
}

// Adapter is the interface every aggregator integration implements.
type Adapter interface {
	Name() string
	GetSwapData(ctx context.Context, req QuoteRequest) (*types.SwapQuote, error)
}

// slippageBps implements spec.md's floor(slippagePct*100).
func slippageBps(slippagePct float64) int64 {
	return int64(slippagePct * 100)
}

// minToAmount implements floor(toAmount * (100-slippagePct) / 100) using
// integer arithmetic on the raw amount, per spec.md §4.1. slippagePct is
// first floored to whole basis points so the computation stays exact
// integer math even for fractional percentages like 1.5.
func minToAmount(toAmount *big.Int, slippagePct float64) *big.Int {
	bps := slippageBps(slippagePct)
	remainingBps := big.NewInt(10000 - bps)
	n := new(big.Int).Mul(toAmount, remainingBps)
	return new(big.Int).Div(n, big.NewInt(10000))
}

// gasCostUSD implements gas * gasPrice * 10^-18 * ethPriceUSD. gasPrice is
// wei per gas unit, supplied per-adapter since each quote API reports it
// differently.
func gasCostUSD(gas uint64, gasPriceWei *big.Int, ethPriceUSD float64) float64 {
	if gasPriceWei == nil {
		return 0
	}
	totalWei := new(big.Int).Mul(big.NewInt(int64(gas)), gasPriceWei)
	weiFloat := new(big.Float).SetInt(totalWei)
	ethFloat := new(big.Float).Quo(weiFloat, new(big.Float).SetFloat64(1e18))
	usd, _ := new(big.Float).Mul(ethFloat, big.NewFloat(ethPriceUSD)).Float64()
	return usd
}

// toUSD implements toAmount * toTokenPriceUSD / 10^toTokenDecimals.
func toUSD(toAmount *big.Int, toTokenPriceUSD float64, toTokenDecimals int) float64 {
	divisor := new(big.Float).SetInt(pow10(toTokenDecimals))
	amountFloat := new(big.Float).Quo(new(big.Float).SetInt(toAmount), divisor)
	usd, _ := new(big.Float).Mul(amountFloat, big.NewFloat(toTokenPriceUSD)).Float64()
	return usd
}

func pow10(n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}
