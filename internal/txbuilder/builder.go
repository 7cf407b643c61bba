// Package txbuilder assembles the append-only transaction sequence for a
// dust-zap batch. Ordering is significant and observable (spec.md §3):
// approve immediately precedes its swap, fees are appended last. Grounded
// on blackhole.go's Swap (approve-then-swap) and
// NimaZeighami-Flash-liquSwap-Sync's atomic executor, which logs the same
// approve->swap->addLiquidity ordering as numbered steps — this builder
// keeps that ordering invariant but never signs or sends anything.
package txbuilder

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/zappilot/dustzap/pkg/calldata"
	"github.com/zappilot/dustzap/pkg/types"
)

// conservativeApproveGasLimit is a fixed, generous gas ceiling for a
// plain ERC-20 approve call.
const conservativeApproveGasLimit = 60000

// Builder accumulates Transactions for one streaming session. Safe for
// concurrent addX calls; GetTransactions returns a defensive copy.
type Builder struct {
	mu   sync.Mutex
	txs  []types.Transaction
}

func New() *Builder {
	return &Builder{}
}

// AddApprove emits an ERC-20 approve(spender, amount) call to tokenAddr.
func (b *Builder) AddApprove(tokenAddr, spender string, rawAmount *big.Int) (int, error) {
	data, err := calldata.EncodeApprove(spender, rawAmount)
	if err != nil {
		return -1, fmt.Errorf("txbuilder: addApprove: %w", err)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	idx := len(b.txs)
	b.txs = append(b.txs, types.Transaction{
		To:       tokenAddr,
		Value:    "0",
		Data:     data,
		GasLimit: fmt.Sprintf("%d", conservativeApproveGasLimit),
	})
	return idx, nil
}

// AddSwap emits quote.Data as a call to quote.To, value=0 (the source
// asset is ERC-20 for a dust swap), gasLimit rounded up from quote.Gas.
func (b *Builder) AddSwap(quote *types.SwapQuote, description string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	idx := len(b.txs)
	b.txs = append(b.txs, types.Transaction{
		To:          quote.To,
		Value:       "0",
		Data:        quote.Data,
		Description: description,
		GasLimit:    fmt.Sprintf("%d", roundUpGas(quote.Gas)),
	})
	return idx
}

// AddNativeTransfer emits a value-only transfer with no calldata, used
// for fee payouts.
func (b *Builder) AddNativeTransfer(to string, rawWei *big.Int, description string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	idx := len(b.txs)
	b.txs = append(b.txs, types.Transaction{
		To:          to,
		Value:       rawWei.String(),
		Data:        "0x",
		Description: description,
		GasLimit:    "21000",
	})
	return idx
}

// GetTransactions returns a defensive copy of the accumulated sequence.
func (b *Builder) GetTransactions() []types.Transaction {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]types.Transaction, len(b.txs))
	copy(out, b.txs)
	return out
}

// GetRange returns a defensive copy of txs[from:to], used by the stream
// pipeline to echo back a single token's approve+swap pair in its
// token_ready event without exposing the whole batch's index space.
func (b *Builder) GetRange(from, to int) []types.Transaction {
	b.mu.Lock()
	defer b.mu.Unlock()
	if from < 0 || to > len(b.txs) || from > to {
		return nil
	}
	out := make([]types.Transaction, to-from)
	copy(out, b.txs[from:to])
	return out
}

// GetTotalGas sums every transaction's gasLimit as a decimal string.
func (b *Builder) GetTotalGas() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	total := new(big.Int)
	for _, tx := range b.txs {
		gas, ok := new(big.Int).SetString(tx.GasLimit, 10)
		if ok {
			total.Add(total, gas)
		}
	}
	return total.String()
}

// roundUpGas pads a quote's reported gas estimate by 10% to absorb
// per-call variance, matching the "conservative gasLimit" instruction in
// spec.md §4.4.
func roundUpGas(gas uint64) uint64 {
	return gas + gas/10
}
