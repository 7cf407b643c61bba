// Package collaborators defines the two external services the Intent
// Handler depends on (spec.md §6): wallet-balance discovery and token
// pricing. Their internals are explicitly out of scope for this engine
// (spec.md §1) — only the interface and call site matter, so these are
// thin HTTP clients rather than fully-featured services.
package collaborators

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/zappilot/dustzap/pkg/types"
)

// WalletBalanceService discovers a wallet's token balances on a chain.
type WalletBalanceService interface {
	GetBalances(ctx context.Context, address string, chainID int64) ([]types.Token, error)
}

// PriceService resolves a token symbol to a USD price.
type PriceService interface {
	GetPrice(ctx context.Context, symbol string) (float64, error)
}

// HTTPWalletBalanceService is a minimal client for an external
// balance-discovery endpoint.
type HTTPWalletBalanceService struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewHTTPWalletBalanceService(baseURL string) *HTTPWalletBalanceService {
	return &HTTPWalletBalanceService{BaseURL: baseURL, HTTPClient: &http.Client{}}
}

func (s *HTTPWalletBalanceService) GetBalances(ctx context.Context, address string, chainID int64) ([]types.Token, error) {
	url := fmt.Sprintf("%s/balances?address=%s&chainId=%d", s.BaseURL, address, chainID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("collaborators: failed to build balances request: %w", err)
	}
	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("collaborators: balances request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("collaborators: balances service returned status %d", resp.StatusCode)
	}
	var tokens []types.Token
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return nil, fmt.Errorf("collaborators: failed to decode balances response: %w", err)
	}
	return tokens, nil
}

// HTTPPriceService is a minimal client for an external price-fetch
// endpoint with no fallback-provider chain (that plumbing is out of
// scope, spec.md §1).
type HTTPPriceService struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewHTTPPriceService(baseURL string) *HTTPPriceService {
	return &HTTPPriceService{BaseURL: baseURL, HTTPClient: &http.Client{}}
}

type priceResponse struct {
	Price float64 `json:"price"`
}

func (s *HTTPPriceService) GetPrice(ctx context.Context, symbol string) (float64, error) {
	url := fmt.Sprintf("%s/price?symbol=%s", s.BaseURL, symbol)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("collaborators: failed to build price request: %w", err)
	}
	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("collaborators: price request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("collaborators: price service returned status %d", resp.StatusCode)
	}
	var parsed priceResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, fmt.Errorf("collaborators: failed to decode price response: %w", err)
	}
	return parsed.Price, nil
}
