// Command mint runs a standalone ecash mint service.
//
// The mint generates a fresh keyset on startup (one key per configured
// denomination) and publishes it at GET /keys and, Schnorr-signed, at
// GET /keys/signed. Wallets submit blinded outputs to POST /mint, swap
// notes at POST /swap, and redeem them at POST /redeem.
//
// Spent secrets are tracked in memory by default; configure postgres_dsn
// (or --postgres) for persistence across restarts.
//
// # Usage
//
//	go run ./cmd/mint --addr=:8080 --denominations=1,2,4,8
//	go run ./cmd/mint --config=mint.yaml
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/dmto-xyz/dmto-core/api/httpserver"
	cmdcommon "github.com/dmto-xyz/dmto-core/cmd/common"
	"github.com/dmto-xyz/dmto-core/mint"
	"github.com/dmto-xyz/dmto-core/protocol"
	"github.com/dmto-xyz/dmto-core/services"
)

func main() {
	var (
		configPath    = flag.String("config", "", "Path to YAML config file")
		addr          = flag.String("addr", "", "HTTP listen address (overrides config)")
		metricsAddr   = flag.String("metrics-addr", "", "Metrics listen address (overrides config)")
		denomsFlag    = flag.String("denominations", "", "Comma-separated denominations (overrides config)")
		signingKeyHex = flag.String("signing-key", "", "Keyset signing key (hex, generates if empty)")
		postgresDSN   = flag.String("postgres", "", "Postgres DSN for the spent-secret store (overrides config)")
		enablePprof   = flag.Bool("pprof", false, "Enable pprof debugging endpoints")
	)
	flag.Parse()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := protocol.DefaultMintConfig()
	if *configPath != "" {
		loaded, err := protocol.LoadMintConfig(*configPath)
		if err != nil {
			fmt.Printf("Config error: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	if *addr != "" {
		cfg.ListenAddr = *addr
	}
	if *metricsAddr != "" {
		cfg.MetricsAddr = *metricsAddr
	}
	if *postgresDSN != "" {
		cfg.PostgresDSN = *postgresDSN
	}
	if *signingKeyHex != "" {
		cfg.SigningKey = *signingKeyHex
	}
	if *denomsFlag != "" {
		denoms, err := parseDenominations(*denomsFlag)
		if err != nil {
			fmt.Printf("Denominations error: %v\n", err)
			os.Exit(1)
		}
		cfg.Denominations = denoms
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Config error: %v\n", err)
		os.Exit(1)
	}

	signingKey, err := cmdcommon.LoadOrGenerateSigningKey(cfg.SigningKey)
	if err != nil {
		fmt.Printf("Signing key error: %v\n", err)
		os.Exit(1)
	}

	var store services.SpentStore
	if cfg.PostgresDSN != "" {
		pgStore, err := services.NewPostgresSpentStore(cfg.PostgresDSN)
		if err != nil {
			fmt.Printf("Postgres error: %v\n", err)
			os.Exit(1)
		}
		defer pgStore.Close()
		store = pgStore
	} else {
		log.Warn("using in-memory spent store; spent secrets are lost on restart")
		store = services.NewMemorySpentStore()
	}

	keyset, err := mint.NewKeyset(cfg.Denominations)
	if err != nil {
		fmt.Printf("Keyset error: %v\n", err)
		os.Exit(1)
	}

	m, err := mint.New(keyset, signingKey, store, log)
	if err != nil {
		fmt.Printf("Create mint error: %v\n", err)
		os.Exit(1)
	}

	log.Info("mint initialized",
		"keyset", keyset.ID(),
		"denominations", keyset.Denominations())

	srv, err := httpserver.New(&httpserver.HTTPServerConfig{
		ListenAddr:               cfg.ListenAddr,
		MetricsAddr:              cfg.MetricsAddr,
		EnablePprof:              *enablePprof,
		Log:                      log,
		DrainDuration:            5 * time.Second,
		GracefulShutdownDuration: 10 * time.Second,
		ReadTimeout:              cfg.RequestTimeout,
		WriteTimeout:             cfg.RequestTimeout,
	}, corsRegistrar{}, mint.NewHandler(m))
	if err != nil {
		fmt.Printf("Create server error: %v\n", err)
		os.Exit(1)
	}

	srv.RunInBackground()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info("shutting down mint")
	srv.Shutdown()
}

// corsRegistrar installs CORS middleware ahead of the mint routes so
// browser-hosted wallets can reach the API.
type corsRegistrar struct{}

func (corsRegistrar) RegisterRoutes(r chi.Router) {
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
}

func parseDenominations(s string) ([]uint64, error) {
	parts := strings.Split(s, ",")
	denoms := make([]uint64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid denomination %q: %w", part, err)
		}
		denoms = append(denoms, v)
	}
	return denoms, nil
}
