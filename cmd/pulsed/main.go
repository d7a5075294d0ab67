package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"basepulse/config"
	"basepulse/core"
	"basepulse/observability/logging"
	"basepulse/rpc"
	"basepulse/storage"
)

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv("PULSE_ENV"))
	logger := logging.Setup("pulsed", env)

	cfg, err := config.Load(*configFile)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	minFee, err := cfg.MinFee()
	if err != nil {
		logger.Error("Invalid minimum like fee", slog.Any("error", err))
		os.Exit(1)
	}

	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		panic(fmt.Sprintf("Failed to open database: %v", err))
	}
	defer db.Close()

	node := core.NewNode(db,
		core.WithTreasury(cfg.Treasury()),
		core.WithMinLikeFee(minFee),
	)

	alloc, err := cfg.Allocation()
	if err != nil {
		logger.Error("Invalid genesis allocation", slog.Any("error", err))
		os.Exit(1)
	}
	applied, err := node.ApplyGenesis(alloc)
	if err != nil {
		logger.Error("Failed to apply genesis allocation", slog.Any("error", err))
		os.Exit(1)
	}
	if applied {
		logger.Info("Genesis allocation applied", slog.Int("accounts", len(alloc)))
	}

	logger.Info("Ledger node ready",
		slog.String("network", cfg.NetworkName),
		slog.String("listen", cfg.ListenAddress),
		slog.String("treasury", cfg.Treasury().Hex()),
		slog.String("minLikeFee", minFee.String()),
	)

	server := rpc.NewServer(node)
	if err := server.Start(cfg.ListenAddress); err != nil {
		logger.Error("RPC server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
