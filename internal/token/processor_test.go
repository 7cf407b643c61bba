package token

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zappilot/dustzap/internal/adapters"
	"github.com/zappilot/dustzap/internal/quote"
	"github.com/zappilot/dustzap/internal/txbuilder"
	"github.com/zappilot/dustzap/pkg/dzerrors"
	"github.com/zappilot/dustzap/pkg/types"
)

type fakeAdapter struct {
	name  string
	quote *types.SwapQuote
	err   error
}

func (f *fakeAdapter) Name() string { return f.name }

func (f *fakeAdapter) GetSwapData(ctx context.Context, req adapters.QuoteRequest) (*types.SwapQuote, error) {
	return f.quote, f.err
}

func validSpender() string { return "0x111111111111111111111111111111111111111a" }

func TestProcess_Success(t *testing.T) {
	q := &types.SwapQuote{
		Provider:    "oneinch",
		To:          "0xROUTER",
		ApproveTo:   validSpender(),
		ToAmount:    big.NewInt(1000000),
		MinToAmount: big.NewInt(990000),
		Data:        "0xdead",
		Gas:         100000,
		ToUSD:       0.9,
		GasCostUSD:  0.01,
	}
	sel := quote.NewSelector(&fakeAdapter{name: "oneinch", quote: q})
	b := txbuilder.New()
	execCtx := &types.ExecutionContext{ChainID: 1, ToToken: types.ToTokenRef{Address: "0xETH", Decimals: 18}}
	tok := types.Token{Address: "0xTOKEN", Symbol: "DUST", Decimals: 6, PriceUSD: 1, HumanAmount: 1, RawAmountHex: "0x0186a0"}

	out := Process(context.Background(), sel, b, execCtx, tok)

	require.True(t, out.Ok)
	assert.Equal(t, 0, out.ApproveIndex)
	assert.Equal(t, 1, out.SwapIndex)
	assert.InDelta(t, 1.0, out.TradingLoss.InputUSD, 1e-9)
	assert.Len(t, b.GetTransactions(), 2)
}

func TestProcess_InvalidRawAmount(t *testing.T) {
	sel := quote.NewSelector(&fakeAdapter{name: "oneinch"})
	b := txbuilder.New()
	execCtx := &types.ExecutionContext{ChainID: 1}
	tok := types.Token{Address: "0xTOKEN", Symbol: "DUST", Decimals: 6, PriceUSD: 1, HumanAmount: 1, RawAmountHex: "not-hex"}

	out := Process(context.Background(), sel, b, execCtx, tok)

	require.False(t, out.Ok)
	assert.Equal(t, dzerrors.KindValidation, out.Kind)
	assert.Equal(t, 1.0, out.TradingLoss.InputUSD)
	assert.Equal(t, 100.0, out.TradingLoss.LossPct)
	assert.Empty(t, b.GetTransactions())
}

func TestProcess_NoLiquidityDoesNotAbortBatch(t *testing.T) {
	sel := quote.NewSelector(&fakeAdapter{name: "oneinch", err: dzerrors.New(dzerrors.KindNoLiquidity, "no route")})
	b := txbuilder.New()
	execCtx := &types.ExecutionContext{ChainID: 1}
	tok := types.Token{Address: "0xTOKEN", Symbol: "DUST", Decimals: 6, PriceUSD: 2, HumanAmount: 0.5, RawAmountHex: "0x01"}

	out := Process(context.Background(), sel, b, execCtx, tok)

	require.False(t, out.Ok)
	assert.Equal(t, dzerrors.KindNoLiquidity, out.Kind)
	assert.NotEmpty(t, out.UserFriendlyMessage)
	assert.InDelta(t, 1.0, out.TradingLoss.InputUSD, 1e-9)
	assert.InDelta(t, 1.0, out.TradingLoss.NetLossUSD, 1e-9)
	assert.Equal(t, 0.0, out.TradingLoss.OutputUSD)
}

func TestProcess_GenericErrorIsUnknownKind(t *testing.T) {
	sel := quote.NewSelector(&fakeAdapter{name: "oneinch", err: errors.New("boom")})
	b := txbuilder.New()
	execCtx := &types.ExecutionContext{ChainID: 1}
	tok := types.Token{Address: "0xTOKEN", Symbol: "DUST", Decimals: 6, PriceUSD: 1, HumanAmount: 0, RawAmountHex: "0x01"}

	out := Process(context.Background(), sel, b, execCtx, tok)

	require.False(t, out.Ok)
	assert.Equal(t, dzerrors.KindUnknown, out.Kind)
	assert.Equal(t, 0.0, out.TradingLoss.LossPct)
}
