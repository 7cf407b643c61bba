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

type ZeroXAdapter struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

func NewZeroXAdapter(baseURL, apiKey string) *ZeroXAdapter {
	return &ZeroXAdapter{BaseURL: baseURL, APIKey: apiKey, HTTPClient: &http.Client{}}
}

func (a *ZeroXAdapter) Name() string { return "0x" }

type zeroXQuoteResponse struct {
	LiquidityAvailable bool   `json:"liquidityAvailable"`
	BuyAmount          string `json:"buyAmount"`
	To                 string `json:"to"`
	Data               string `json:"data"`
	AllowanceTarget    string `json:"allowanceTarget"`
	Gas                uint64 `json:"gas,string"`
	GasPrice           string `json:"gasPrice"`
}

func (a *ZeroXAdapter) GetSwapData(ctx context.Context, req QuoteRequest) (*types.SwapQuote, error) {
	url := fmt.Sprintf("%s/swap/v1/quote?sellToken=%s&buyToken=%s&sellAmount=%s&takerAddress=%s&slippagePercentage=%.4f",
		a.BaseURL, req.FromToken.Address, req.ToToken.Address, req.Amount.String(), req.FromAddress, req.SlippagePct/100)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, dzerrors.Wrap(dzerrors.KindInternal, "failed to build 0x request", err)
	}
	if a.APIKey != "" {
		httpReq.Header.Set("0x-api-key", a.APIKey)
	}

	resp, err := a.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, dzerrors.Wrap(ClassifyTransport(err), "0x request failed", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, dzerrors.New(ClassifyHTTP(resp.StatusCode, string(body)), fmt.Sprintf("0x returned status %d", resp.StatusCode))
	}

	var parsed zeroXQuoteResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, dzerrors.Wrap(dzerrors.KindUpstreamError, "failed to decode 0x response", err)
	}

	// liquidityAvailable=false is a NO_LIQUIDITY failure, not a transport
	// error (spec.md §4.1) — it must be surfaced with that classification
	// even though the HTTP call itself succeeded.
	if !parsed.LiquidityAvailable {
		return nil, dzerrors.New(dzerrors.KindNoLiquidity, "0x reports no liquidity available for this pair")
	}

	toAmount, ok := new(big.Int).SetString(parsed.BuyAmount, 10)
	if !ok {
		return nil, dzerrors.New(dzerrors.KindUpstreamError, "0x returned a non-numeric buyAmount")
	}
	gasPrice, _ := new(big.Int).SetString(parsed.GasPrice, 10)

	quote := &types.SwapQuote{
		Provider:           a.Name(),
		To:                 parsed.To,
		ApproveTo:          parsed.AllowanceTarget,
		ToAmount:           toAmount,
		MinToAmount:        minToAmount(toAmount, req.SlippagePct),
		Data:               parsed.Data,
		Gas:                parsed.Gas,
		GasCostUSD:         gasCostUSD(parsed.Gas, gasPrice, req.EthPriceUSD),
		ToUSD:              toUSD(toAmount, req.ToTokenPriceUSD, req.ToToken.Decimals),
		GasIncludedInToUSD: false,
	}
	return quote, nil
}
