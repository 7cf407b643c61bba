package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"

	"github.com/zappilot/dustzap/pkg/dzerrors"
	"github.com/zappilot/dustzap/pkg/types"
)

// ParaswapProxyByChain is the bit-exact chain-id -> TokenTransferProxy
// address table from spec.md §6.
var ParaswapProxyByChain = map[int64]string{
	1:     "0x216b4b4ba9f3e719726886d34a177484278bfcae",
	10:    "0x216b4b4ba9f3e719726886d34a177484278bfcae",
	56:    "0x216b4b4ba9f3e719726886d34a177484278bfcae",
	137:   "0x216b4b4ba9f3e719726886d34a177484278bfcae",
	1101:  "0x216b4b4ba9f3e719726886d34a177484278bfcae",
	43114: "0x216b4b4ba9f3e719726886d34a177484278bfcae",
	8453:  "0x93aAAe79a53759cD164340E4C8766E4Db5331cD7",
	42161: "0x216B4B4Ba9F3e719726886d34a177484278Bfcae",
}

type ParaswapAdapter struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewParaswapAdapter(baseURL string) *ParaswapAdapter {
	return &ParaswapAdapter{BaseURL: baseURL, HTTPClient: &http.Client{}}
}

func (a *ParaswapAdapter) Name() string { return "paraswap" }

type paraswapPriceResponse struct {
	PriceRoute struct {
		DestAmount string  `json:"destAmount"`
		GasCostUSD float64 `json:"gasCostUSD,string"`
		GasCost    uint64  `json:"gasCost,string"`
	} `json:"priceRoute"`
}

type paraswapTxResponse struct {
	To   string `json:"to"`
	Data string `json:"data"`
}

func (a *ParaswapAdapter) GetSwapData(ctx context.Context, req QuoteRequest) (*types.SwapQuote, error) {
	proxy, ok := ParaswapProxyByChain[req.ChainID]
	if !ok {
		return nil, dzerrors.New(dzerrors.KindUnsupportedToken, fmt.Sprintf("paraswap has no proxy for chain %d", req.ChainID))
	}

	priceURL := fmt.Sprintf("%s/prices?srcToken=%s&destToken=%s&amount=%s&side=SELL&network=%d&excludeDEXS=AugustusRFQ",
		a.BaseURL, req.FromToken.Address, req.ToToken.Address, req.Amount.String(), req.ChainID)
	priceReq, err := http.NewRequestWithContext(ctx, http.MethodGet, priceURL, nil)
	if err != nil {
		return nil, dzerrors.Wrap(dzerrors.KindInternal, "failed to build paraswap price request", err)
	}

	priceResp, err := a.HTTPClient.Do(priceReq)
	if err != nil {
		return nil, dzerrors.Wrap(ClassifyTransport(err), "paraswap price request failed", err)
	}
	defer priceResp.Body.Close()

	priceBody, _ := io.ReadAll(priceResp.Body)
	if priceResp.StatusCode != http.StatusOK {
		return nil, dzerrors.New(ClassifyHTTP(priceResp.StatusCode, string(priceBody)), fmt.Sprintf("paraswap prices returned status %d", priceResp.StatusCode))
	}

	var price paraswapPriceResponse
	if err := json.Unmarshal(priceBody, &price); err != nil {
		return nil, dzerrors.Wrap(dzerrors.KindUpstreamError, "failed to decode paraswap price response", err)
	}

	toAmount, ok := new(big.Int).SetString(price.PriceRoute.DestAmount, 10)
	if !ok {
		return nil, dzerrors.New(dzerrors.KindUpstreamError, "paraswap returned a non-numeric destAmount")
	}

	txURL := fmt.Sprintf("%s/transactions/%d", a.BaseURL, req.ChainID)
	txReq, err := http.NewRequestWithContext(ctx, http.MethodPost, txURL, nil)
	if err != nil {
		return nil, dzerrors.Wrap(dzerrors.KindInternal, "failed to build paraswap tx request", err)
	}
	txResp, err := a.HTTPClient.Do(txReq)
	if err != nil {
		return nil, dzerrors.Wrap(ClassifyTransport(err), "paraswap tx request failed", err)
	}
	defer txResp.Body.Close()

	txBody, _ := io.ReadAll(txResp.Body)
	if txResp.StatusCode != http.StatusOK {
		return nil, dzerrors.New(ClassifyHTTP(txResp.StatusCode, string(txBody)), fmt.Sprintf("paraswap transactions returned status %d", txResp.StatusCode))
	}

	var tx paraswapTxResponse
	if err := json.Unmarshal(txBody, &tx); err != nil {
		return nil, dzerrors.Wrap(dzerrors.KindUpstreamError, "failed to decode paraswap tx response", err)
	}

	quote := &types.SwapQuote{
		Provider:           a.Name(),
		To:                 tx.To,
		ApproveTo:          proxy,
		ToAmount:           toAmount,
		MinToAmount:        minToAmount(toAmount, req.SlippagePct),
		Data:               tx.Data,
		Gas:                price.PriceRoute.GasCost,
		GasCostUSD:         price.PriceRoute.GasCostUSD,
		ToUSD:              toUSD(toAmount, req.ToTokenPriceUSD, req.ToToken.Decimals) - price.PriceRoute.GasCostUSD,
		GasIncludedInToUSD: true,
	}
	return quote, nil
}
