// Package main provides ledgerd: a double-entry accounting kernel
// exposed over JSON-RPC.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ledgerforge/ledgerd/internal/config"
	"github.com/ledgerforge/ledgerd/internal/kvstore"
	"github.com/ledgerforge/ledgerd/internal/ledger/clock"
	"github.com/ledgerforge/ledgerd/internal/ledger/kernel"
	"github.com/ledgerforge/ledgerd/internal/ledger/query"
	"github.com/ledgerforge/ledgerd/internal/rpc"
	"github.com/ledgerforge/ledgerd/pkg/logging"
)

var (
	version = "0.1.0-dev"
	commit  = "unknown"
)

func main() {
	var (
		dataDir     = flag.String("data-dir", "~/.ledgerd", "Data directory")
		configFile  = flag.String("config", "", "Directory holding config.yaml (default: <data-dir>)")
		apiAddr     = flag.String("api", "", "JSON-RPC API address, overrides config")
		logLevel    = flag.String("log-level", "", "Log level (debug, info, warn, error), overrides config")
		showVersion = flag.Bool("version", false, "Show version and exit")
	)
	flag.Parse()

	log := logging.New(&logging.Config{Level: "info", TimeFormat: time.TimeOnly})
	logging.SetDefault(log)

	if *showVersion {
		log.Infof("ledgerd %s (commit: %s)", version, commit)
		os.Exit(0)
	}

	configDir := *dataDir
	if *configFile != "" {
		configDir = *configFile
	}
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		log.Fatal("Failed to load config", "error", err)
	}

	if *apiAddr != "" {
		cfg.RPC.Addr = *apiAddr
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if *dataDir != "" {
		cfg.Storage.DataDir = *dataDir
	}

	log = logging.New(&logging.Config{Level: cfg.Logging.Level, TimeFormat: time.TimeOnly})
	logging.SetDefault(log)
	log.Info("Config loaded", "path", config.ConfigPath(configDir))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := kvstore.New(&kvstore.Config{DataDir: cfg.Storage.DataDir})
	if err != nil {
		log.Fatal("Failed to initialize store", "error", err)
	}
	defer store.Close()
	log.Info("Store initialized", "dir", cfg.Storage.DataDir)

	oracle := clock.NewOracle()
	k := kernel.New(store, oracle, kernel.WithLogger(log.Component("kernel")))
	q := query.New(store, cfg.Ledger.DefaultTransferLimit)

	rpcServer := rpc.NewServer(k, q)
	if err := rpcServer.Start(cfg.RPC.Addr); err != nil {
		log.Fatal("Failed to start RPC server", "error", err)
	}

	printBanner(log, cfg)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	log.Info("Shutting down...")
	cancel()

	if err := rpcServer.Stop(); err != nil {
		log.Error("Error stopping RPC server", "error", err)
	}
	log.Info("Goodbye!")

	_ = ctx
}

func printBanner(log *logging.Logger, cfg *config.Config) {
	log.Info("")
	log.Info("=================================================")
	log.Infof("  ledgerd (%s)", version)
	log.Info("=================================================")
	log.Info("")
	log.Infof("  API: http://%s", cfg.RPC.Addr)
	log.Infof("  WS:  ws://%s/ws", cfg.RPC.Addr)
	log.Info("")
	log.Infof("  Data dir: %s", cfg.Storage.DataDir)
	log.Infof("  Default transfer limit: %d", cfg.Ledger.DefaultTransferLimit)
	log.Info("")
	log.Info("=================================================")
	log.Info("")
}
