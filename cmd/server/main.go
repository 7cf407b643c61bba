// Command server boots the dust-zap engine: loads configuration and
// required environment variables, wires C1-C10, and serves the HTTP
// surface with a graceful shutdown on SIGINT/SIGTERM. Grounded on the
// teacher's cmd/main.go (panic-on-missing-env, constructor wiring,
// goroutine-driven background work) adapted from a CLI strategy runner
// into an HTTP server.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/zappilot/dustzap/configs"
	"github.com/zappilot/dustzap/internal/adapters"
	"github.com/zappilot/dustzap/internal/collaborators"
	"github.com/zappilot/dustzap/internal/db"
	"github.com/zappilot/dustzap/internal/execctx"
	"github.com/zappilot/dustzap/internal/httpapi"
	"github.com/zappilot/dustzap/internal/intent"
	"github.com/zappilot/dustzap/internal/quote"
	"github.com/zappilot/dustzap/internal/stream"
)

func main() {
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yml"
	}
	cfg, err := configs.LoadConfig(configPath)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	treasuryAddress := configs.MustGetenv("TREASURY_ADDRESS")
	platformFeeRate := mustGetenvFloat("PLATFORM_FEE_RATE")
	referrerShare := mustGetenvFloat("REFERRER_FEE_SHARE")
	cfg.Fee.PlatformFeeRate = platformFeeRate
	cfg.Fee.ReferrerShare = referrerShare

	if v := os.Getenv("SSE_HEARTBEAT_INTERVAL"); v != "" {
		cfg.SSE.HeartbeatIntervalMs = mustAtoi("SSE_HEARTBEAT_INTERVAL", v)
	}
	if v := os.Getenv("SSE_CONNECTION_TIMEOUT"); v != "" {
		cfg.SSE.ConnectionTimeoutMs = mustAtoi("SSE_CONNECTION_TIMEOUT", v)
	}
	if v := os.Getenv("SSE_MAX_CONNECTIONS"); v != "" {
		cfg.SSE.MaxConnections = mustAtoi("SSE_MAX_CONNECTIONS", v)
	}

	oneInchKey := os.Getenv("ONEINCH_API_KEY")
	zeroXKey := os.Getenv("ZEROX_API_KEY")

	selector := quote.NewSelector(
		adapters.NewOneInchAdapter(cfg.Adapters.OneInchBaseURL, oneInchKey),
		adapters.NewParaswapAdapter(cfg.Adapters.ParaswapBaseURL),
		adapters.NewZeroXAdapter(cfg.Adapters.ZeroXBaseURL, zeroXKey),
	)

	var recorder stream.Recorder
	if dsn := os.Getenv("MYSQL_DSN"); dsn != "" {
		mysqlRecorder, err := db.NewMySQLRecorder(dsn)
		if err != nil {
			log.Printf("audit ledger disabled: %v", err)
		} else {
			recorder = mysqlRecorder
		}
	}

	feeConfig := cfg.ToFeeConfig(treasuryAddress)
	pipeline := stream.New(selector, feeConfig, recorder)
	if cfg.SSE.HeartbeatIntervalMs > 0 {
		pipeline.HeartbeatInterval = cfg.HeartbeatInterval()
	}

	store := execctx.New(
		execctx.WithMaxContexts(maxConnectionsOr(cfg.SSE.MaxConnections, 1000)),
		execctx.WithConnectionTimeout(durationOr(cfg.ConnectionTimeout(), 5*time.Minute)),
		execctx.WithCleanupInterval(durationOr(cfg.CleanupInterval(), 60*time.Second)),
	)

	rootCtx, cancel := context.WithCancel(context.Background())
	go store.Run(rootCtx)

	priceBaseURL := os.Getenv("PRICE_SERVICE_URL")
	balanceBaseURL := os.Getenv("WALLET_BALANCE_SERVICE_URL")
	priceService := collaborators.NewHTTPPriceService(priceBaseURL)
	walletService := collaborators.NewHTTPWalletBalanceService(balanceBaseURL)

	handler := intent.NewHandler(walletService, priceService, store)
	if cfg.DustZap.DustThresholdUSD > 0 {
		handler.DustThreshold = cfg.DustZap.DustThresholdUSD
	}
	handler.ConnectionTimeout = durationOr(cfg.ConnectionTimeout(), 5*time.Minute)

	registry := intent.NewRegistry()
	registry.Register("dustZap", handler)

	server := httpapi.NewServer(registry, store, pipeline)
	router := server.Router()

	port := cfg.Port
	if port == 0 {
		port = 8080
	}
	httpServer := &http.Server{
		Addr:    ":" + strconv.Itoa(port),
		Handler: router,
	}

	go func() {
		log.Printf("dustzap engine listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("shutting down")
	cancel()
	store.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}

func mustGetenvFloat(key string) float64 {
	raw := configs.MustGetenv(key)
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		panic(key + " is not a valid float: " + err.Error())
	}
	return value
}

// mustAtoi parses an environment-supplied millisecond/count value, the
// same fail-fast-on-malformed-env pattern as mustGetenvFloat above.
func mustAtoi(key, raw string) int {
	value, err := strconv.Atoi(raw)
	if err != nil {
		panic(key + " is not a valid integer: " + err.Error())
	}
	return value
}

func maxConnectionsOr(configured, fallback int) int {
	if configured > 0 {
		return configured
	}
	return fallback
}

func durationOr(configured, fallback time.Duration) time.Duration {
	if configured > 0 {
		return configured
	}
	return fallback
}
