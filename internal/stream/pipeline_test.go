package stream

import (
	"bufio"
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zappilot/dustzap/internal/adapters"
	"github.com/zappilot/dustzap/internal/fee"
	"github.com/zappilot/dustzap/internal/quote"
	"github.com/zappilot/dustzap/pkg/types"
)

type fakeAdapter struct {
	quote *types.SwapQuote
	err   error
}

func (f *fakeAdapter) Name() string { return "fake" }

func (f *fakeAdapter) GetSwapData(ctx context.Context, req adapters.QuoteRequest) (*types.SwapQuote, error) {
	return f.quote, f.err
}

type fakeRecorder struct {
	summaries []CompletionSummary
}

func (f *fakeRecorder) RecordCompletion(summary CompletionSummary) error {
	f.summaries = append(f.summaries, summary)
	return nil
}

func parseEvents(t *testing.T, body string) []map[string]any {
	t.Helper()
	var events []map[string]any
	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var ev map[string]any
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev))
		events = append(events, ev)
	}
	return events
}

func TestServe_HappyPathEventOrdering(t *testing.T) {
	q := &types.SwapQuote{
		Provider:    "fake",
		To:          "0xROUTER",
		ApproveTo:   "0x111111111111111111111111111111111111111a",
		ToAmount:    bigInt(1000000),
		MinToAmount: bigInt(990000),
		Data:        "0xdead",
		Gas:         100000,
		ToUSD:       0.9,
		GasCostUSD:  0.01,
	}
	selector := quote.NewSelector(&fakeAdapter{quote: q})
	rec := &fakeRecorder{}
	p := New(selector, fee.Config{TreasuryAddress: "0xTREASURY"}, rec)
	p.HeartbeatInterval = time.Hour

	execCtx := &types.ExecutionContext{
		IntentID:    "dustZap_1_abcdef_0000000000000000",
		UserAddress: "0xuser",
		ChainID:     1,
		ToToken:     types.ToTokenRef{Address: "0xETH", Decimals: 18},
		EthPriceUSD: 3000,
		DustTokens: []types.Token{
			{Address: "0xTOKEN", Symbol: "DUST", Decimals: 6, PriceUSD: 1, HumanAmount: 1, RawAmountHex: "0x0186a0"},
		},
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/intents/x/stream", nil)

	err := p.Serve(w, req, execCtx)
	require.NoError(t, err)

	events := parseEvents(t, w.Body.String())
	require.Len(t, events, 3)
	assert.Equal(t, "connected", events[0]["type"])
	assert.Equal(t, "token_ready", events[1]["type"])
	assert.Equal(t, "complete", events[2]["type"])

	require.Len(t, rec.summaries, 1)
	assert.Equal(t, execCtx.IntentID, rec.summaries[0].IntentID)
}

func TestServe_TokenFailureDoesNotAbortStream(t *testing.T) {
	selector := quote.NewSelector(&fakeAdapter{err: assertErr{}})
	p := New(selector, fee.Config{TreasuryAddress: "0xTREASURY"}, nil)
	p.HeartbeatInterval = time.Hour

	execCtx := &types.ExecutionContext{
		IntentID: "dustZap_1_abcdef_0000000000000000",
		ToToken:  types.ToTokenRef{Address: "0xETH", Decimals: 18},
		DustTokens: []types.Token{
			{Address: "0xTOKEN", Symbol: "DUST", Decimals: 6, PriceUSD: 1, HumanAmount: 1, RawAmountHex: "0x01"},
		},
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/intents/x/stream", nil)

	err := p.Serve(w, req, execCtx)
	require.NoError(t, err)

	events := parseEvents(t, w.Body.String())
	require.Len(t, events, 3)
	assert.Equal(t, "token_failed", events[1]["type"])
}

func TestServe_ClientDisconnectStopsEarly(t *testing.T) {
	selector := quote.NewSelector(&fakeAdapter{})
	p := New(selector, fee.Config{TreasuryAddress: "0xTREASURY"}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	execCtx := &types.ExecutionContext{
		IntentID:   "dustZap_1_abcdef_0000000000000000",
		ToToken:    types.ToTokenRef{Address: "0xETH", Decimals: 18},
		DustTokens: []types.Token{{Address: "0xTOKEN", Symbol: "DUST", Decimals: 6, PriceUSD: 1, HumanAmount: 1, RawAmountHex: "0x01"}},
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/intents/x/stream", nil).WithContext(ctx)

	err := p.Serve(w, req, execCtx)
	assert.Error(t, err)
}

type assertErr struct{}

func (assertErr) Error() string { return "boom" }

func bigInt(v int64) *big.Int { return big.NewInt(v) }
