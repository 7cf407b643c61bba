// Package stream drives the SSE pipeline described in spec.md §4.7: one
// JSON object per data: line, flushed synchronously, a heartbeat every
// 30s of silence, and immediate cancellation on client disconnect.
// Grounded on gin-contrib/sse (transitive dep of DimaJoyti-go-coffee's
// gin stack) for the wire framing, and on
// NimaZeighami-Flash-liquSwap-Sync's monitorBundleInclusion /
// DimaJoyti-go-coffee's detectionLoop for the ticker+select+ctx.Done()
// cancellable-loop idiom.
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/zappilot/dustzap/internal/fee"
	"github.com/zappilot/dustzap/internal/quote"
	"github.com/zappilot/dustzap/internal/token"
	"github.com/zappilot/dustzap/internal/txbuilder"
	"github.com/zappilot/dustzap/pkg/types"
)

// Recorder persists a summary of each completed batch. Implemented by
// internal/db's audit ledger; kept as an interface here so the pipeline
// never depends on gorm directly.
type Recorder interface {
	RecordCompletion(summary CompletionSummary) error
}

// CompletionSummary is what gets persisted once a batch completes.
type CompletionSummary struct {
	IntentID        string
	UserAddress     string
	ChainID         int64
	TotalTokens     int
	ProcessedTokens int
	TotalValueUSD   float64
	FeeInfo         types.FeeInfo
	TotalGas        string
}

// HeartbeatInterval is the default silence window before a heartbeat
// event is emitted (spec.md §4.7's default of 30s).
const HeartbeatInterval = 30 * time.Second

// Pipeline wires together the Selector, Fee Calculator, and Recorder for
// one streaming session.
type Pipeline struct {
	Selector          *quote.Selector
	FeeConfig         fee.Config
	Recorder          Recorder
	HeartbeatInterval time.Duration
}

func New(selector *quote.Selector, feeConfig fee.Config, recorder Recorder) *Pipeline {
	return &Pipeline{
		Selector:          selector,
		FeeConfig:         feeConfig,
		Recorder:          recorder,
		HeartbeatInterval: HeartbeatInterval,
	}
}

// eventWriter serializes writes to the underlying connection as
// data: <json>\n\n, flushing after every write (spec.md §9 SSE framing).
type eventWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
	mu      sync.Mutex
}

func newEventWriter(w http.ResponseWriter) (*eventWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("stream: response writer does not support flushing")
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()
	return &eventWriter{w: w, flusher: flusher}, nil
}

func (e *eventWriter) write(event any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("stream: failed to marshal event: %w", err)
	}
	if _, err := fmt.Fprintf(e.w, "data: %s\n\n", payload); err != nil {
		return fmt.Errorf("stream: write failed: %w", err)
	}
	e.flusher.Flush()
	return nil
}

func isoNow() string { return time.Now().UTC().Format(time.RFC3339) }

// Serve runs the full streaming session for execCtx against w/r: it
// writes "connected", processes every dust token in order, appends fee
// transactions via the Fee Calculator, persists an audit record, and
// writes "complete" — or terminates silently the instant the client
// disconnects (spec.md §4.7's Cancellation clause).
func (p *Pipeline) Serve(w http.ResponseWriter, r *http.Request, execCtx *types.ExecutionContext) error {
	ew, err := newEventWriter(w)
	if err != nil {
		return err
	}

	requestCtx := r.Context()

	if err := ew.write(map[string]any{
		"type":      "connected",
		"intentId":  execCtx.IntentID,
		"timestamp": isoNow(),
	}); err != nil {
		return err
	}

	builder := txbuilder.New()
	heartbeat := time.NewTicker(p.HeartbeatInterval)
	defer heartbeat.Stop()

	stopHeartbeat := make(chan struct{})
	var hbWG sync.WaitGroup
	hbWG.Add(1)
	go func() {
		defer hbWG.Done()
		for {
			select {
			case <-requestCtx.Done():
				return
			case <-stopHeartbeat:
				return
			case <-heartbeat.C:
				_ = ew.write(map[string]any{"type": "heartbeat", "timestamp": isoNow()})
			}
		}
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		p.processTokens(requestCtx, ew, builder, execCtx, heartbeat)
	}()

	select {
	case <-requestCtx.Done():
		close(stopHeartbeat)
		hbWG.Wait()
		log.Printf("stream: client disconnected for intent %s, aborting", execCtx.IntentID)
		return requestCtx.Err()
	case <-done:
	}
	close(stopHeartbeat)
	hbWG.Wait()
	if err := requestCtx.Err(); err != nil {
		log.Printf("stream: client disconnected for intent %s, aborting", execCtx.IntentID)
		return err
	}

	totalValueUSD := 0.0
	processed := 0
	for _, tok := range execCtx.DustTokens {
		totalValueUSD += tok.HumanAmount * tok.PriceUSD
		processed++
	}

	split := p.FeeConfig.Calculate(totalValueUSD, execCtx.EthPriceUSD, execCtx.ReferralAddress)
	feeInfo := p.FeeConfig.Apply(builder, execCtx.ReferralAddress, split, execCtx.EthPriceUSD)

	transactions := builder.GetTransactions()
	totalGas := builder.GetTotalGas()

	if p.Recorder != nil {
		if err := p.Recorder.RecordCompletion(CompletionSummary{
			IntentID:        execCtx.IntentID,
			UserAddress:     execCtx.UserAddress,
			ChainID:         execCtx.ChainID,
			TotalTokens:     len(execCtx.DustTokens),
			ProcessedTokens: processed,
			TotalValueUSD:   totalValueUSD,
			FeeInfo:         feeInfo,
			TotalGas:        totalGas,
		}); err != nil {
			log.Printf("stream: failed to record audit ledger entry for %s: %v", execCtx.IntentID, err)
		}
	}

	return ew.write(map[string]any{
		"type":         "complete",
		"transactions": transactions,
		"metadata": map[string]any{
			"totalTokens":       len(execCtx.DustTokens),
			"processedTokens":   processed,
			"totalValueUSD":     totalValueUSD,
			"feeInfo":           feeInfo,
			"estimatedTotalGas": totalGas,
		},
		"timestamp": isoNow(),
	})
}

// processTokens processes every dust token sequentially (streamBatchSize
// = 1, spec.md §4.7's default), emitting exactly one token_ready or
// token_failed per token in input order, resetting the heartbeat ticker
// after every event.
func (p *Pipeline) processTokens(ctx context.Context, ew *eventWriter, builder *txbuilder.Builder, execCtx *types.ExecutionContext, heartbeat *time.Ticker) {
	total := len(execCtx.DustTokens)
	for i, tok := range execCtx.DustTokens {
		select {
		case <-ctx.Done():
			return
		default:
		}

		outcome := token.Process(ctx, p.Selector, builder, execCtx, tok)

		var event map[string]any
		if outcome.Ok {
			event = map[string]any{
				"type":                "token_ready",
				"tokenIndex":          i,
				"tokenSymbol":         tok.Symbol,
				"tokenAddress":        tok.Address,
				"transactions":        builder.GetRange(outcome.ApproveIndex, outcome.SwapIndex+1),
				"provider":            outcome.Quote.Provider,
				"expectedTokenAmount": outcome.Quote.ToAmount.String(),
				"minToAmount":         outcome.Quote.MinToAmount.String(),
				"toUsd":               outcome.Quote.ToUSD,
				"gasCostUSD":          outcome.Quote.GasCostUSD,
				"tradingLoss":         outcome.TradingLoss,
				"progress":            float64(i+1) / float64(total),
				"processedTokens":     i + 1,
				"totalTokens":         total,
				"timestamp":           isoNow(),
			}
		} else {
			event = map[string]any{
				"type":                "token_failed",
				"tokenIndex":          i,
				"tokenSymbol":         tok.Symbol,
				"tokenAddress":        tok.Address,
				"error":               outcome.Message,
				"errorCategory":       outcome.Kind,
				"userFriendlyMessage": outcome.UserFriendlyMessage,
				"provider":            "failed",
				"tradingLoss":         outcome.TradingLoss,
				"progress":            float64(i+1) / float64(total),
				"processedTokens":     i + 1,
				"totalTokens":         total,
				"timestamp":           isoNow(),
			}
		}

		if err := ew.write(event); err != nil {
			log.Printf("stream: write failed for intent %s token %d: %v", execCtx.IntentID, i, err)
			return
		}
		heartbeat.Reset(p.HeartbeatInterval)
	}
}
