package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"

	"github.com/zappilot/dustzap/pkg/dzerrors"
	"github.com/zappilot/dustzap/pkg/types"
)

// excludedProtocolsByChain mirrors 1inch's chain-prefixed excluded
// protocol list for aggregator limit-order contracts that must never be
// routed through for a dust swap.
var excludedProtocolsByChain = map[int64]string{
	42161: "ARBITRUM_ONE_INCH_LIMIT_ORDER_V3,ARBITRUM_ONE_INCH_LIMIT_ORDER_V4",
	1:     "ETHEREUM_ONE_INCH_LIMIT_ORDER_V3,ETHEREUM_ONE_INCH_LIMIT_ORDER_V4",
}

type OneInchAdapter struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

func NewOneInchAdapter(baseURL, apiKey string) *OneInchAdapter {
	return &OneInchAdapter{BaseURL: baseURL, APIKey: apiKey, HTTPClient: &http.Client{}}
}

func (a *OneInchAdapter) Name() string { return "1inch" }

type oneInchSwapResponse struct {
	ToAmount string `json:"toAmount"`
	Tx       struct {
		To       string `json:"to"`
		Data     string `json:"data"`
		Gas      uint64 `json:"gas"`
		GasPrice string `json:"gasPrice"`
	} `json:"tx"`
}

func (a *OneInchAdapter) GetSwapData(ctx context.Context, req QuoteRequest) (*types.SwapQuote, error) {
	url := fmt.Sprintf("%s/swap/v6.0/%d/swap?src=%s&dst=%s&amount=%s&from=%s&slippage=%.4f",
		a.BaseURL, req.ChainID, req.FromToken.Address, req.ToToken.Address, req.Amount.String(),
		req.FromAddress, req.SlippagePct)
	if excluded, ok := excludedProtocolsByChain[req.ChainID]; ok {
		url += "&excludedProtocols=" + excluded
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, dzerrors.Wrap(dzerrors.KindInternal, "failed to build 1inch request", err)
	}
	if a.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+a.APIKey)
	}

	resp, err := a.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, dzerrors.Wrap(ClassifyTransport(err), "1inch request failed", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		kind := ClassifyHTTP(resp.StatusCode, string(body))
		return nil, dzerrors.New(kind, fmt.Sprintf("1inch returned status %d", resp.StatusCode))
	}

	var parsed oneInchSwapResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, dzerrors.Wrap(dzerrors.KindUpstreamError, "failed to decode 1inch response", err)
	}

	toAmount, ok := new(big.Int).SetString(parsed.ToAmount, 10)
	if !ok {
		return nil, dzerrors.New(dzerrors.KindUpstreamError, "1inch returned a non-numeric toAmount")
	}
	gasPrice, _ := new(big.Int).SetString(strings.TrimSpace(parsed.Tx.GasPrice), 10)

	quote := &types.SwapQuote{
		Provider:           a.Name(),
		To:                 parsed.Tx.To,
		ApproveTo:          parsed.Tx.To,
		ToAmount:           toAmount,
		MinToAmount:        minToAmount(toAmount, req.SlippagePct),
		Data:               parsed.Tx.Data,
		Gas:                parsed.Tx.Gas,
		GasCostUSD:         gasCostUSD(parsed.Tx.Gas, gasPrice, req.EthPriceUSD),
		ToUSD:              toUSD(toAmount, req.ToTokenPriceUSD, req.ToToken.Decimals),
		GasIncludedInToUSD: false,
	}
	return quote, nil
}
