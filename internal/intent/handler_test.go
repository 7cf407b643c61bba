package intent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zappilot/dustzap/internal/execctx"
	"github.com/zappilot/dustzap/pkg/dzerrors"
	"github.com/zappilot/dustzap/pkg/types"
)

type fakeWalletBalance struct {
	balances []types.Token
	err      error
}

func (f *fakeWalletBalance) GetBalances(ctx context.Context, address string, chainID int64) ([]types.Token, error) {
	return f.balances, f.err
}

type fakePriceService struct {
	prices map[string]float64
	err    error
}

func (f *fakePriceService) GetPrice(ctx context.Context, symbol string) (float64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.prices[symbol], nil
}

func validAddr(suffix byte) string {
	addr := make([]byte, 40)
	for i := range addr {
		addr[i] = suffix
	}
	return "0x" + string(addr)
}

func baseRequest() Request {
	return Request{
		UserAddress: "0x00000000000000000000000000000000000000aa",
		ChainID:     1,
		Params: Params{
			ToTokenAddress:  "0x00000000000000000000000000000000000000bb",
			ToTokenDecimals: 18,
		},
	}
}

func TestExecute_ValidationFailure(t *testing.T) {
	h := NewHandler(&fakeWalletBalance{}, &fakePriceService{}, execctx.New())
	req := baseRequest()
	req.UserAddress = "not-an-address"

	_, err := h.Execute(context.Background(), req)
	require.NotNil(t, err)
	assert.Equal(t, dzerrors.KindValidation, err.Kind)
}

func TestExecute_ClientSuppliedDustTokens(t *testing.T) {
	price := &fakePriceService{prices: map[string]float64{"ETH": 3000, "": 0}}
	price.prices["ETH"] = 3000
	h := NewHandler(&fakeWalletBalance{}, price, execctx.New())
	req := baseRequest()
	req.Params.DustTokens = []DustTokenInput{
		{Address: "0x00000000000000000000000000000000000000cc", Symbol: "DUST", Decimals: 6, RawAmountHex: "0x0186a0", PriceUSD: 1},
	}

	res, err := h.Execute(context.Background(), req)
	require.Nil(t, err)
	require.NotNil(t, res)
	assert.Equal(t, 1, res.TotalTokens)
	assert.Contains(t, res.StreamURL, res.IntentID)

	stored, ok := h.Store.Take(res.IntentID)
	require.True(t, ok)
	assert.Len(t, stored.DustTokens, 1)
	assert.InDelta(t, 0.1, stored.DustTokens[0].HumanAmount, 1e-6)
}

func TestExecute_EmptyClientSuppliedDustTokensIsNoDustTokens(t *testing.T) {
	price := &fakePriceService{prices: map[string]float64{"ETH": 3000}}
	h := NewHandler(&fakeWalletBalance{}, price, execctx.New())
	req := baseRequest()
	req.Params.DustTokens = []DustTokenInput{}

	_, err := h.Execute(context.Background(), req)
	require.NotNil(t, err)
	assert.Equal(t, dzerrors.KindNoDustTokens, err.Kind)
}

func TestExecute_NoDustTokensAfterFiltering(t *testing.T) {
	wallet := &fakeWalletBalance{balances: []types.Token{
		{Address: "0x00000000000000000000000000000000000000bb", Symbol: "TARGET", Decimals: 18, PriceUSD: 3000, HumanAmount: 1},
	}}
	price := &fakePriceService{prices: map[string]float64{"ETH": 3000}}
	h := NewHandler(wallet, price, execctx.New())

	_, err := h.Execute(context.Background(), baseRequest())
	require.NotNil(t, err)
	assert.Equal(t, dzerrors.KindNoDustTokens, err.Kind)
}

func TestExecute_WalletBalanceFiltersDustAndTarget(t *testing.T) {
	wallet := &fakeWalletBalance{balances: []types.Token{
		{Address: "0x00000000000000000000000000000000000000bb", Symbol: "TARGET", Decimals: 18, PriceUSD: 3000, HumanAmount: 1},
		{Address: "0x00000000000000000000000000000000000000dd", Symbol: "DUST", Decimals: 6, PriceUSD: 1, HumanAmount: 10},
		{Address: "0x00000000000000000000000000000000000000ee", Symbol: "TINY", Decimals: 6, PriceUSD: 0.0001, HumanAmount: 1},
	}}
	price := &fakePriceService{prices: map[string]float64{"ETH": 3000}}
	h := NewHandler(wallet, price, execctx.New())

	res, err := h.Execute(context.Background(), baseRequest())
	require.Nil(t, err)
	assert.Equal(t, 1, res.TotalTokens)
}

func TestExecute_PriceFetchFailure(t *testing.T) {
	wallet := &fakeWalletBalance{balances: []types.Token{
		{Address: "0x00000000000000000000000000000000000000dd", Symbol: "DUST", Decimals: 6, PriceUSD: 1, HumanAmount: 10},
	}}
	price := &fakePriceService{err: errors.New("price feed down")}
	h := NewHandler(wallet, price, execctx.New())

	_, err := h.Execute(context.Background(), baseRequest())
	require.NotNil(t, err)
	assert.Equal(t, dzerrors.KindPriceFetchFailed, err.Kind)
}

func TestExecute_UnsupportedTargetToken(t *testing.T) {
	h := NewHandler(&fakeWalletBalance{}, &fakePriceService{}, execctx.New())
	req := baseRequest()
	req.Params.TargetToken = "BTC"

	_, err := h.Execute(context.Background(), req)
	require.NotNil(t, err)
	assert.Equal(t, dzerrors.KindValidation, err.Kind)
}
