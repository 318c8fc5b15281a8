package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, DefaultNetworkID, cfg.NetworkID)
	assert.Equal(t, "vehicle-1", cfg.TokenID)
	assert.Equal(t, []string{"https://rpc.testnet.near.org"}, cfg.Network().RPCList)

	contracts := cfg.Contracts()
	assert.Equal(t, "heliox-ft.testnet", contracts.FT)
	assert.Equal(t, "heliox-core.testnet", contracts.NFT)
	assert.Equal(t, "heliox-marketplace.testnet", contracts.Market)
	assert.Equal(t, "usdt.fakes.testnet", contracts.USDT)

	quote := cfg.Quote()
	assert.Equal(t, "USDT", quote.Symbol)
	assert.EqualValues(t, 6, quote.Decimals)
	assert.EqualValues(t, 0, cfg.ShareDecimals)
	assert.Equal(t, 10*time.Second, cfg.RPCTimeoutDuration())
	assert.Equal(t, 500*time.Millisecond, cfg.PollIntervalDuration())
	assert.Equal(t, time.Minute, cfg.PollTimeoutDuration())
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, "config.json", `{
		"network_id": "mainnet",
		"account_id": "alice.near",
		"networks": {
			"mainnet": {
				"ft": "heliox-ft.near",
				"nft": "heliox-core.near",
				"market": "heliox-marketplace.near",
				"usdt": "usdt.tether-token.near",
				"rpc_list": ["https://rpc.mainnet.near.org", "https://free.rpc.fastnear.com"]
			},
			"testnet": {
				"rpc_list": ["https://test.rpc.fastnear.com"]
			}
		},
		"rpc_timeout": 2500,
		"debug_logging": true
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "mainnet", cfg.NetworkID)
	assert.Equal(t, "alice.near", cfg.AccountID)
	assert.Equal(t, "usdt.tether-token.near", cfg.Contracts().USDT)
	assert.Len(t, cfg.Network().RPCList, 2)
	assert.Equal(t, 2500*time.Millisecond, cfg.RPCTimeoutDuration())
	assert.True(t, cfg.DebugLogging)

	testnet := cfg.Networks["testnet"]
	assert.Equal(t, "heliox-ft.testnet", testnet.FT)
	assert.Equal(t, []string{"https://test.rpc.fastnear.com"}, testnet.RPCList)
}

func TestLoadConfigYAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", "token_id: vehicle-7\nquote_decimals: 18\n")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "vehicle-7", cfg.TokenID)
	assert.EqualValues(t, 18, cfg.QuoteDecimals)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("HELIOX_ACCOUNT_ID", "bob.testnet")
	t.Setenv("HELIOX_RPC_LIST", " https://a.example.org , ,https://b.example.org")
	t.Setenv("HELIOX_CREDENTIALS_DIR", "/keys")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "bob.testnet", cfg.AccountID)
	assert.Equal(t, "/keys", cfg.CredentialsDir)
	assert.Equal(t, []string{"https://a.example.org", "https://b.example.org"}, cfg.Network().RPCList)
}

func TestEnvFile(t *testing.T) {
	path := writeConfig(t, ".env", "HELIOX_ACCOUNT_ID=carol.testnet\n")
	t.Cleanup(func() { os.Unsetenv("HELIOX_ACCOUNT_ID") })

	require.NoError(t, LoadEnvFile(path))
	require.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")))
	require.NoError(t, LoadEnvFile(""))

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "carol.testnet", cfg.AccountID)
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"unknown network", `{"network_id": "devnet"}`, "unknown network_id"},
		{"missing contract", `{"network_id": "x", "networks": {"x": {"ft": "a", "nft": "b", "usdt": "d", "rpc_list": ["https://x.org"]}}}`, "market"},
		{"bad rpc scheme", `{"networks": {"testnet": {"rpc_list": ["ws://rpc.testnet.near.org"]}}}`, "invalid RPC URL"},
		{"bad timeout", `{"rpc_timeout": -1}`, "rpc_timeout"},
		{"bad poll", `{"poll_interval": 0}`, "poll_interval"},
		{"too many decimals", `{"quote_decimals": 30}`, "quote_decimals"},
		{"empty token", `{"token_id": ""}`, "token_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, "config.json", tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
