// Package intent implements the dust-zap Intent Handler (C9) and Intent
// Registry (C10) from spec.md §4.9-4.10: request validation, dust
// filtering, price-fetch integration, and execution-context persistence.
package intent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/zappilot/dustzap/internal/collaborators"
	"github.com/zappilot/dustzap/internal/execctx"
	"github.com/zappilot/dustzap/pkg/dzerrors"
	"github.com/zappilot/dustzap/pkg/money"
	"github.com/zappilot/dustzap/pkg/types"
)

// humanAmountFromHex parses a raw hex amount and scales it down by
// decimals, giving the display-only human amount used for USD metrics.
func humanAmountFromHex(rawHex string, decimals int) (float64, error) {
	raw, err := money.ParseRawAmountHex(rawHex)
	if err != nil {
		return 0, err
	}
	human := money.WeiToHuman(raw, decimals, 18)
	var f float64
	if _, err := fmt.Sscanf(human, "%f", &f); err != nil {
		return 0, fmt.Errorf("failed to parse human amount %q: %w", human, err)
	}
	return f, nil
}

const defaultDustThresholdUSD = 0.005

// AllowedTargetTokens is the configurable allow-list for params.targetToken
// (spec.md §4.9); ETH is the only target this engine ships supporting.
var AllowedTargetTokens = map[string]bool{"ETH": true}

// Handler orchestrates one dust-zap intent end to end.
type Handler struct {
	validate      *validator.Validate
	WalletBalance collaborators.WalletBalanceService
	Price         collaborators.PriceService
	Store         *execctx.Store
	DustThreshold float64
	ConnectionTimeout time.Duration
}

func NewHandler(wallet collaborators.WalletBalanceService, price collaborators.PriceService, store *execctx.Store) *Handler {
	return &Handler{
		validate:          newValidator(),
		WalletBalance:     wallet,
		Price:             price,
		Store:             store,
		DustThreshold:     defaultDustThresholdUSD,
		ConnectionTimeout: 5 * time.Minute,
	}
}

// nowMs is overridable in tests; production uses wall-clock millis.
var nowMs = func() int64 { return time.Now().UnixMilli() }

// Execute implements spec.md §4.9: validate, filter dust, fetch price,
// mint an intent id, persist the context, and return the stream URL.
func (h *Handler) Execute(ctx context.Context, req Request) (*Result, *dzerrors.Error) {
	if err := h.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}

	targetToken := req.Params.TargetToken
	if targetToken == "" {
		targetToken = "ETH"
	}
	if !AllowedTargetTokens[targetToken] {
		return nil, dzerrors.New(dzerrors.KindValidation, fmt.Sprintf("unsupported target token %q", targetToken))
	}

	dustTokens, err := h.resolveDustTokens(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(dustTokens) == 0 {
		return nil, dzerrors.New(dzerrors.KindNoDustTokens, "no dust tokens remain after filtering")
	}

	toTokenPrice, priceErr := h.Price.GetPrice(ctx, targetToken)
	if priceErr != nil {
		return nil, dzerrors.Wrap(dzerrors.KindPriceFetchFailed, "failed to fetch target token price", priceErr)
	}

	ethPrice, ethPriceErr := h.Price.GetPrice(ctx, "ETH")
	if ethPriceErr != nil {
		return nil, dzerrors.Wrap(dzerrors.KindPriceFetchFailed, "failed to fetch ETH price", ethPriceErr)
	}

	slippage := 1.0
	if req.Params.Slippage != nil {
		slippage = *req.Params.Slippage
	}

	createdAt := nowMs()
	intentID := types.NewIntentID("dustZap", req.UserAddress, createdAt)

	execCtx := &types.ExecutionContext{
		IntentID:    intentID,
		UserAddress: req.UserAddress,
		ChainID:     req.ChainID,
		DustTokens:  dustTokens,
		EthPriceUSD: ethPrice,
		ToToken: types.ToTokenRef{
			Address:  req.Params.ToTokenAddress,
			Decimals: req.Params.ToTokenDecimals,
			PriceUSD: toTokenPrice,
		},
		SlippagePct:         slippage,
		ReferralAddress:     req.Params.ReferralAddress,
		CreatedAtMs:         createdAt,
		ConnectionTimeoutMs: h.ConnectionTimeout.Milliseconds(),
	}

	if putErr := h.Store.Put(execCtx); putErr != nil {
		return nil, dzerrors.Wrap(dzerrors.KindInternal, "failed to persist execution context", putErr)
	}

	return &Result{
		IntentID:          intentID,
		StreamURL:         fmt.Sprintf("/intents/%s/stream", intentID),
		Mode:              "streaming",
		EstimatedDuration: fmt.Sprintf("%ds", len(dustTokens)*2),
		TotalTokens:       len(dustTokens),
	}, nil
}

// resolveDustTokens uses the client-supplied dustTokens array if present,
// otherwise queries the wallet-balance collaborator and filters by USD
// value (spec.md §4.9's filtering rule).
func (h *Handler) resolveDustTokens(ctx context.Context, req Request) ([]types.Token, *dzerrors.Error) {
	if req.Params.DustTokens != nil {
		tokens := make([]types.Token, 0, len(req.Params.DustTokens))
		for _, in := range req.Params.DustTokens {
			humanAmount, err := humanAmountFromHex(in.RawAmountHex, in.Decimals)
			if err != nil {
				return nil, dzerrors.Wrap(dzerrors.KindValidation, fmt.Sprintf("dust token %s has an invalid rawAmountHex", in.Symbol), err)
			}
			tokens = append(tokens, types.Token{
				Address:      in.Address,
				Symbol:       in.Symbol,
				Decimals:     in.Decimals,
				PriceUSD:     in.PriceUSD,
				HumanAmount:  humanAmount,
				RawAmountHex: in.RawAmountHex,
			})
		}
		return tokens, nil
	}

	balances, err := h.WalletBalance.GetBalances(ctx, req.UserAddress, req.ChainID)
	if err != nil {
		return nil, dzerrors.Wrap(dzerrors.KindInternal, "wallet balance lookup failed", err)
	}

	target := strings.ToLower(req.Params.ToTokenAddress)
	filtered := make([]types.Token, 0, len(balances))
	for _, tok := range balances {
		if strings.ToLower(tok.Address) == target {
			continue
		}
		if tok.PriceUSD <= 0 || tok.Decimals <= 0 {
			continue
		}
		usdValue := tok.HumanAmount * tok.PriceUSD
		if usdValue < h.DustThreshold {
			continue
		}
		filtered = append(filtered, tok)
	}
	return filtered, nil
}

// validationError renders validator.ValidationErrors as a single
// field-specific VALIDATION_ERROR, naming the first offending field.
func validationError(err error) *dzerrors.Error {
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		first := verrs[0]
		return dzerrors.New(dzerrors.KindValidation, fmt.Sprintf("%s failed %s validation", first.Namespace(), first.Tag()))
	}
	return dzerrors.Wrap(dzerrors.KindValidation, "request validation failed", err)
}
