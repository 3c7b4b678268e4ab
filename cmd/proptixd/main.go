package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"proptix/config"
	"proptix/core"
	"proptix/crypto"
	"proptix/observability/logging"
	"proptix/rpc"
	"proptix/storage"
)

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	memory := flag.Bool("memory", false, "DEV ONLY: keep all state in memory instead of the data directory")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv("PTX_ENV"))
	logger := logging.Setup("proptixd", env)

	cfg, err := config.Load(*configFile)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	protocol, err := cfg.ProtocolAddressBytes()
	if err != nil {
		logger.Error("Failed to decode protocol address", slog.Any("error", err))
		os.Exit(1)
	}
	if material := os.Getenv("PTX_PROTOCOL_KEY"); strings.TrimSpace(material) != "" {
		key, err := parseProtocolKeyMaterial(material)
		if err != nil {
			logger.Error("Failed to parse PTX_PROTOCOL_KEY", slog.Any("error", err))
			os.Exit(1)
		}
		addr := key.PubKey().Address()
		protocol = addr.Array()
		logger.Info("protocol address overridden from environment", slog.String("address", addr.String()))
	}

	var db storage.Database
	if *memory {
		db = storage.NewMemDB()
	} else {
		db, err = storage.NewLevelDB(cfg.DataDir)
		if err != nil {
			panic(fmt.Sprintf("Failed to open database: %v", err))
		}
	}
	defer db.Close()

	node := core.NewNode(db, core.Options{
		ProtocolAddress: protocol,
		PausedModules:   cfg.PausedModules,
	})

	logger.Info("node ready",
		slog.String("network", cfg.NetworkName),
		slog.Int("pausedModules", len(cfg.PausedModules)))

	server := rpc.NewServer(node, logger)
	if err := server.Start(cfg.RPCAddress); err != nil {
		logger.Error("RPC server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func parseProtocolKeyMaterial(material string) (*crypto.PrivateKey, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(material), "0x")
	if trimmed == "" {
		return nil, fmt.Errorf("empty private key material")
	}
	bytes, err := hex.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("failed to decode hex private key: %w", err)
	}
	return crypto.PrivateKeyFromBytes(bytes)
}
