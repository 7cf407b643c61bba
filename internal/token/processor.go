// Package token implements the per-token pipeline: validate the raw
// amount, fetch the best quote, append approve/swap calldata, and
// compute trading-loss metrics — or produce a typed failure without
// aborting the rest of the batch (spec.md §4.6). Shaped like a tagged
// sum per spec.md §9's Design Notes, the same way the teacher's
// StakingResult/UnstakeResult carry a discriminant alongside their
// payload.
package token

import (
	"context"

	"github.com/zappilot/dustzap/internal/adapters"
	"github.com/zappilot/dustzap/internal/quote"
	"github.com/zappilot/dustzap/internal/txbuilder"
	"github.com/zappilot/dustzap/pkg/dzerrors"
	"github.com/zappilot/dustzap/pkg/money"
	"github.com/zappilot/dustzap/pkg/types"
)

// Outcome is the tagged result of processing one dust token. Exactly one
// of Success/Failure is populated, discriminated by Ok.
type Outcome struct {
	Ok bool

	// Populated when Ok.
	Quote        *types.SwapQuote
	ApproveIndex int
	SwapIndex    int

	// Populated when !Ok.
	Kind                dzerrors.Kind
	Message             string
	UserFriendlyMessage string

	TradingLoss types.TradingLoss
}

// Process runs the full per-token pipeline for one dust token against one
// execution context, appending its calldata to b. A failure here never
// propagates as a Go error — it always returns a populated Outcome so the
// caller (internal/stream) can continue with the next token.
func Process(ctx context.Context, selector *quote.Selector, b *txbuilder.Builder, execCtx *types.ExecutionContext, tok types.Token) Outcome {
	inputUSD := tok.HumanAmount * tok.PriceUSD

	rawAmount, err := money.ParseRawAmountHex(tok.RawAmountHex)
	if err != nil {
		return failureOutcome(dzerrors.KindValidation, tok.Symbol, err.Error(), inputUSD)
	}

	req := adapters.QuoteRequest{
		ChainID:         execCtx.ChainID,
		FromToken:       adapters.TokenRef{Address: tok.Address, Decimals: tok.Decimals},
		ToToken:         adapters.TokenRef{Address: execCtx.ToToken.Address, Decimals: execCtx.ToToken.Decimals},
		Amount:          rawAmount,
		FromAddress:     execCtx.UserAddress,
		SlippagePct:     execCtx.SlippagePct,
		EthPriceUSD:     execCtx.EthPriceUSD,
		ToTokenPriceUSD: execCtx.ToToken.PriceUSD,
	}

	bestQuote, err := selector.GetBest(ctx, req)
	if err != nil {
		dzErr, ok := err.(*dzerrors.Error)
		kind := dzerrors.KindUpstreamError
		if ok {
			kind = dzErr.Kind
		}
		return failureOutcome(kind, tok.Symbol, err.Error(), inputUSD)
	}

	approveIdx, err := b.AddApprove(tok.Address, bestQuote.ApproveTo, rawAmount)
	if err != nil {
		return failureOutcome(dzerrors.KindInternal, tok.Symbol, err.Error(), inputUSD)
	}
	swapIdx := b.AddSwap(bestQuote, "swap "+tok.Symbol+" -> "+execCtx.ToToken.Address)

	outputUSD := bestQuote.ToUSD + bestQuote.GasCostUSD
	netLossUSD := inputUSD - bestQuote.ToUSD
	lossPct := 0.0
	if inputUSD > 0 {
		lossPct = netLossUSD / inputUSD * 100
	}

	return Outcome{
		Ok:           true,
		Quote:        bestQuote,
		ApproveIndex: approveIdx,
		SwapIndex:    swapIdx,
		TradingLoss: types.TradingLoss{
			InputUSD:   money.RoundUSD(inputUSD),
			OutputUSD:  money.RoundUSD(outputUSD),
			NetLossUSD: money.RoundUSD(netLossUSD),
			LossPct:    money.RoundUSD(lossPct),
		},
	}
}

func failureOutcome(kind dzerrors.Kind, tokenSymbol, message string, inputUSD float64) Outcome {
	lossPct := 0.0
	if inputUSD > 0 {
		lossPct = 100
	}
	return Outcome{
		Ok:                  false,
		Kind:                kind,
		Message:             message,
		UserFriendlyMessage: dzerrors.UserMessage(kind, tokenSymbol),
		TradingLoss: types.TradingLoss{
			InputUSD:   money.RoundUSD(inputUSD),
			OutputUSD:  0,
			NetLossUSD: money.RoundUSD(inputUSD),
			LossPct:    lossPct,
		},
	}
}
