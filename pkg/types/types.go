// Package types holds the data model shared across the dust-zap engine:
// tokens, quotes, execution contexts, transactions, and stream events.
package types

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Token describes one dust balance supplied by the client or discovered
// via the wallet-balance collaborator. Immutable once accepted.
type Token struct {
	Address      string
	Symbol       string
	Decimals     int
	PriceUSD     float64
	HumanAmount  float64
	RawAmountHex string
}

// ToTokenRef names the settlement token a batch converges on.
type ToTokenRef struct {
	Address  string
	Decimals int
	PriceUSD float64
}

// SwapQuote is the common output contract every aggregator adapter
// produces. GasIncludedInToUSD documents which toUSD convention this
// particular adapter uses (open question #1 in DESIGN.md) — the
// Selector always ranks on toUSD-gasCostUSD regardless of this flag.
type SwapQuote struct {
	Provider           string
	To                 string
	ApproveTo          string
	ToAmount           *big.Int
	MinToAmount        *big.Int
	Data               string
	Gas                uint64
	GasCostUSD         float64
	ToUSD              float64
	GasIncludedInToUSD bool
	CustomSlippage     *float64
}

// NetUSD is the ranking value the Selector compares quotes on.
func (q *SwapQuote) NetUSD() float64 {
	return q.ToUSD - q.GasCostUSD
}

// ExecutionContext is created by the Intent Handler and consumed exactly
// once by the streaming pipeline.
type ExecutionContext struct {
	IntentID            string
	UserAddress          string
	ChainID              int64
	DustTokens           []Token
	EthPriceUSD          float64
	ToToken              ToTokenRef
	SlippagePct          float64
	ReferralAddress      string
	CreatedAtMs          int64
	ConnectionTimeoutMs  int64
}

// Transaction is one step of calldata the client-side signer executes.
type Transaction struct {
	To          string   `json:"to"`
	Value       string   `json:"value"`
	Data        string   `json:"data"`
	Description string   `json:"description,omitempty"`
	GasLimit    string   `json:"gasLimit"`
}

// TradingLoss is the per-token value-leakage summary attached to both
// token_ready and token_failed events.
type TradingLoss struct {
	InputUSD   float64 `json:"inputUSD"`
	OutputUSD  float64 `json:"outputUSD"`
	NetLossUSD float64 `json:"netLossUSD"`
	LossPct    float64 `json:"lossPct"`
}

// FeeInfo is the client-facing fee summary. Deliberately omits any index
// range into the transaction array (spec.md §4.5).
type FeeInfo struct {
	TotalFeeUSD          float64 `json:"totalFeeUsd"`
	ReferrerFeeUSD       float64 `json:"referrerFeeUSD,omitempty"`
	TreasuryFeeUSD       float64 `json:"treasuryFee"`
	FeeTransactionCount  int     `json:"feeTransactionCount"`
}

// NewIntentID mints an id of the form
// <intentType>_<unixMillis>_<last6OfUserAddr>_<16 random hex>.
func NewIntentID(intentType, userAddress string, nowMs int64) string {
	addr := strings.TrimPrefix(strings.ToLower(userAddress), "0x")
	suffix := addr
	if len(addr) > 6 {
		suffix = addr[len(addr)-6:]
	}
	random := strings.ReplaceAll(uuid.New().String(), "-", "")[:16]
	return fmt.Sprintf("%s_%d_%s_%s", intentType, nowMs, suffix, random)
}

// CreatedAt converts an intent id's embedded millis back into a time.Time.
// The Context Manager's TTL sweep does not call it; it ages entries by
// the time they were stored.
func CreatedAt(id string) (time.Time, error) {
	parts := strings.Split(id, "_")
	if len(parts) != 4 {
		return time.Time{}, fmt.Errorf("malformed intent id %q", id)
	}
	var ms int64
	if _, err := fmt.Sscanf(parts[1], "%d", &ms); err != nil {
		return time.Time{}, fmt.Errorf("malformed intent id timestamp %q: %w", parts[1], err)
	}
	return time.UnixMilli(ms), nil
}
