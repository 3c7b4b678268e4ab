package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"proptix/crypto"
)

func TestLoadCreatesDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.RPCAddress)
	require.Equal(t, "proptix-local", cfg.NetworkName)
	require.Empty(t, cfg.PausedModules)

	_, err = os.Stat(path)
	require.NoError(t, err, "default config file must be written")

	require.NotEmpty(t, cfg.ProtocolAddress, "default config must carry a generated protocol address")
	require.NotEmpty(t, cfg.ProtocolKeyFile)
	_, err = os.Stat(cfg.ProtocolKeyFile)
	require.NoError(t, err, "protocol key file must be written")

	reloaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.RPCAddress, reloaded.RPCAddress)
	require.Equal(t, cfg.DataDir, reloaded.DataDir)
	require.Equal(t, cfg.ProtocolAddress, reloaded.ProtocolAddress, "reload must reuse the stored key, not regenerate")
}

func TestProtocolKeyFileMatchesConfiguredAddress(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, err := Load(path)
	require.NoError(t, err)

	key, err := LoadProtocolKey(cfg.ProtocolKeyFile)
	require.NoError(t, err)
	require.Equal(t, cfg.ProtocolAddress, key.PubKey().Address().String())

	decoded, err := cfg.ProtocolAddressBytes()
	require.NoError(t, err)
	require.Equal(t, key.PubKey().Address().Array(), decoded)
}

func TestLoadGeneratesKeyWhenAddressUnset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`RPCAddress = ":9090"`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotEmpty(t, cfg.ProtocolAddress)
	require.Equal(t, filepath.Join(dir, "protocol.key"), cfg.ProtocolKeyFile)

	// The generated address must survive the rewrite of the config file.
	reloaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.ProtocolAddress, reloaded.ProtocolAddress)
}

func TestLoadExistingConfig(t *testing.T) {
	var raw [20]byte
	raw[19] = 0x42
	protocol := crypto.MustNewAddress(crypto.PTXPrefix, raw[:]).String()

	path := filepath.Join(t.TempDir(), "config.toml")
	contents := `RPCAddress = ":9090"
DataDir = "/tmp/ptx"
NetworkName = "proptix-test"
ProtocolAddress = "` + protocol + `"
PausedModules = ["sale"]
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.RPCAddress)
	require.Equal(t, "proptix-test", cfg.NetworkName)
	require.Equal(t, []string{"sale"}, cfg.PausedModules)

	decoded, err := cfg.ProtocolAddressBytes()
	require.NoError(t, err)
	require.Equal(t, raw, decoded)
}

func TestLoadRejectsInvalidProtocolAddress(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`ProtocolAddress = "not-an-address"`), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadDefaultsEmptyNetworkName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`RPCAddress = ":9090"`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "proptix-local", cfg.NetworkName)
}

func TestProtocolAddressBytesUnsetIsZero(t *testing.T) {
	cfg := &Config{}
	decoded, err := cfg.ProtocolAddressBytes()
	require.NoError(t, err)
	require.Equal(t, [20]byte{}, decoded)
}
