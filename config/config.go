package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"proptix/crypto"

	"github.com/BurntSushi/toml"
)

type Config struct {
	RPCAddress      string   `toml:"RPCAddress"`
	DataDir         string   `toml:"DataDir"`
	NetworkName     string   `toml:"NetworkName"`
	ProtocolAddress string   `toml:"ProtocolAddress"`
	ProtocolKeyFile string   `toml:"ProtocolKeyFile"`
	PausedModules   []string `toml:"PausedModules"`
}

// Load loads the configuration from the given path.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.NetworkName) == "" {
		cfg.NetworkName = "proptix-local"
	}
	if cfg.PausedModules == nil {
		cfg.PausedModules = []string{}
	}
	if strings.TrimSpace(cfg.ProtocolAddress) != "" {
		if _, err := crypto.DecodeAddress(cfg.ProtocolAddress); err != nil {
			return nil, fmt.Errorf("config file %s: invalid ProtocolAddress: %w", path, err)
		}
	} else if err := ensureProtocolKey(path, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ensureProtocolKey guarantees a protocol key exists on disk and that the
// configured protocol address matches it. A fresh key is generated on first
// start; subsequent loads reuse the stored key.
func ensureProtocolKey(configPath string, cfg *Config) error {
	keyPath := cfg.ProtocolKeyFile
	if keyPath == "" {
		keyPath = defaultKeyPath(configPath)
	}

	if _, err := os.Stat(keyPath); os.IsNotExist(err) {
		key, genErr := crypto.GeneratePrivateKey()
		if genErr != nil {
			return genErr
		}
		if err := writeKeyFile(keyPath, key); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	key, err := LoadProtocolKey(keyPath)
	if err != nil {
		return err
	}
	cfg.ProtocolKeyFile = keyPath
	cfg.ProtocolAddress = key.PubKey().Address().String()
	return persist(configPath, cfg)
}

// LoadProtocolKey reads a hex-encoded private key from the given file.
func LoadProtocolKey(path string) (*crypto.PrivateKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	trimmed := strings.TrimPrefix(strings.TrimSpace(string(raw)), "0x")
	if trimmed == "" {
		return nil, fmt.Errorf("key file %s is empty", path)
	}
	bytes, err := hex.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("key file %s: %w", path, err)
	}
	return crypto.PrivateKeyFromBytes(bytes)
}

func writeKeyFile(path string, key *crypto.PrivateKey) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}
	return os.WriteFile(path, []byte(hex.EncodeToString(key.Bytes())+"\n"), 0o600)
}

func defaultKeyPath(configPath string) string {
	return filepath.Join(filepath.Dir(configPath), "protocol.key")
}

// ProtocolAddressBytes decodes the configured protocol address, returning the
// zero address when unset.
func (c *Config) ProtocolAddressBytes() ([20]byte, error) {
	if strings.TrimSpace(c.ProtocolAddress) == "" {
		return [20]byte{}, nil
	}
	addr, err := crypto.DecodeAddress(c.ProtocolAddress)
	if err != nil {
		return [20]byte{}, err
	}
	return addr.Array(), nil
}

// createDefault creates and saves a default configuration file.
func createDefault(path string) (*Config, error) {
	cfg := &Config{
		RPCAddress:    ":8080",
		DataDir:       "./proptix-data",
		NetworkName:   "proptix-local",
		PausedModules: []string{},
	}

	if err := ensureProtocolKey(path, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func persist(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
