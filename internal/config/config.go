// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/rovshanmuradov/heliox/internal/ledger"
	"github.com/rovshanmuradov/heliox/internal/market"
)

// NetworkConfig maps a network to its contracts and RPC nodes.
type NetworkConfig struct {
	FT      string   `mapstructure:"ft"`
	NFT     string   `mapstructure:"nft"`
	Market  string   `mapstructure:"market"`
	USDT    string   `mapstructure:"usdt"`
	RPCList []string `mapstructure:"rpc_list"`
}

type Config struct {
	NetworkID      string                   `mapstructure:"network_id"`
	Networks       map[string]NetworkConfig `mapstructure:"networks"`
	AccountID      string                   `mapstructure:"account_id"`
	CredentialsDir string                   `mapstructure:"credentials_dir"`
	TokenID        string                   `mapstructure:"token_id"`
	QuoteSymbol    string                   `mapstructure:"quote_symbol"`
	QuoteDecimals  uint                     `mapstructure:"quote_decimals"`
	ShareDecimals  uint                     `mapstructure:"share_decimals"`
	RPCTimeout     int                      `mapstructure:"rpc_timeout"`
	PollInterval   int                      `mapstructure:"poll_interval"`
	PollTimeout    int                      `mapstructure:"poll_timeout"`
	DebugLogging   bool                     `mapstructure:"debug_logging"`
	LogFile        string                   `mapstructure:"log_file"`
	JournalFile    string                   `mapstructure:"journal_file"`
}

const (
	DefaultNetworkID      = "testnet"
	DefaultCredentialsDir = "~/.near-credentials"
	DefaultTokenID        = "vehicle-1"
	DefaultQuoteSymbol    = "USDT"
	DefaultQuoteDecimals  = 6
	DefaultShareDecimals  = 0
	DefaultRPCTimeout     = 10000
	DefaultPollInterval   = 500
	DefaultPollTimeout    = 60000
	DefaultLogFile        = "logs/heliox.log"
	DefaultJournalFile    = "logs/actions.csv"

	EnvPrefix   = "HELIOX"
	maxDecimals = 24
)

// DefaultNetworks are the deployments known without a config file.
func DefaultNetworks() map[string]NetworkConfig {
	return map[string]NetworkConfig{
		DefaultNetworkID: {
			FT:      "heliox-ft.testnet",
			NFT:     "heliox-core.testnet",
			Market:  "heliox-marketplace.testnet",
			USDT:    "usdt.fakes.testnet",
			RPCList: []string{"https://rpc.testnet.near.org"},
		},
	}
}

// LoadEnvFile loads a .env file into the process environment. A missing
// file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// LoadConfig reads path (JSON or YAML) on top of the defaults and applies
// HELIOX_* environment overrides. An empty path uses defaults only.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	defaults := map[string]interface{}{
		"network_id":      DefaultNetworkID,
		"credentials_dir": DefaultCredentialsDir,
		"token_id":        DefaultTokenID,
		"quote_symbol":    DefaultQuoteSymbol,
		"quote_decimals":  DefaultQuoteDecimals,
		"share_decimals":  DefaultShareDecimals,
		"rpc_timeout":     DefaultRPCTimeout,
		"poll_interval":   DefaultPollInterval,
		"poll_timeout":    DefaultPollTimeout,
		"log_file":        DefaultLogFile,
		"journal_file":    DefaultJournalFile,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	mergeDefaultNetworks(&cfg)

	if err := loadEnvironmentVariables(v, &cfg); err != nil {
		return nil, err
	}

	return &cfg, validateConfig(&cfg)
}

// mergeDefaultNetworks fills fields a config file left empty for the known
// networks.
func mergeDefaultNetworks(cfg *Config) {
	if cfg.Networks == nil {
		cfg.Networks = make(map[string]NetworkConfig)
	}
	for id, def := range DefaultNetworks() {
		n := cfg.Networks[id]
		if n.FT == "" {
			n.FT = def.FT
		}
		if n.NFT == "" {
			n.NFT = def.NFT
		}
		if n.Market == "" {
			n.Market = def.Market
		}
		if n.USDT == "" {
			n.USDT = def.USDT
		}
		if len(n.RPCList) == 0 {
			n.RPCList = def.RPCList
		}
		cfg.Networks[id] = n
	}
}

// Network returns the active network's settings.
func (c *Config) Network() NetworkConfig {
	return c.Networks[c.NetworkID]
}

// Contracts returns the active network's contract accounts.
func (c *Config) Contracts() ledger.Contracts {
	n := c.Network()
	return ledger.Contracts{FT: n.FT, NFT: n.NFT, Market: n.Market, USDT: n.USDT}
}

// Quote returns the asset prices are quoted in.
func (c *Config) Quote() market.QuoteAsset {
	return market.QuoteAsset{Symbol: c.QuoteSymbol, Decimals: c.QuoteDecimals}
}

func (c *Config) RPCTimeoutDuration() time.Duration {
	return time.Duration(c.RPCTimeout) * time.Millisecond
}

func (c *Config) PollIntervalDuration() time.Duration {
	return time.Duration(c.PollInterval) * time.Millisecond
}

func (c *Config) PollTimeoutDuration() time.Duration {
	return time.Duration(c.PollTimeout) * time.Millisecond
}

func validateConfig(cfg *Config) error {
	network, ok := cfg.Networks[cfg.NetworkID]
	if !ok {
		return fmt.Errorf("unknown network_id %q", cfg.NetworkID)
	}
	if err := cfg.Contracts().Validate(); err != nil {
		return fmt.Errorf("network %s: %w", cfg.NetworkID, err)
	}
	if len(network.RPCList) == 0 {
		return errors.New("rpc_list is empty")
	}
	for _, rpcURL := range network.RPCList {
		if err := validateURL(rpcURL); err != nil {
			return fmt.Errorf("invalid RPC URL %q: %w", rpcURL, err)
		}
	}
	if cfg.TokenID == "" {
		return errors.New("token_id is empty")
	}
	return validateNumericParams(cfg)
}

func validateNumericParams(cfg *Config) error {
	if cfg.RPCTimeout <= 0 {
		return errors.New("invalid rpc_timeout")
	}
	if cfg.PollInterval <= 0 {
		return errors.New("invalid poll_interval")
	}
	if cfg.PollTimeout <= 0 {
		return errors.New("invalid poll_timeout")
	}
	if cfg.QuoteDecimals > maxDecimals {
		return errors.New("invalid quote_decimals")
	}
	if cfg.ShareDecimals > maxDecimals {
		return errors.New("invalid share_decimals")
	}
	return nil
}

func validateURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return errors.New("invalid URL protocol")
	}
	if parsed.Host == "" {
		return errors.New("missing host")
	}
	return nil
}

func loadEnvironmentVariables(v *viper.Viper, cfg *Config) error {
	v.AutomaticEnv()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if env := v.GetString("NETWORK_ID"); env != "" {
		cfg.NetworkID = env
	}
	if env := v.GetString("ACCOUNT_ID"); env != "" {
		cfg.AccountID = env
	}
	if env := v.GetString("CREDENTIALS_DIR"); env != "" {
		cfg.CredentialsDir = env
	}
	if env := v.GetString("DEBUG_LOGGING"); env != "" {
		cfg.DebugLogging = v.GetBool("DEBUG_LOGGING")
	}

	envRPCList := v.GetString("RPC_LIST")
	if envRPCList != "" {
		var cleanRPCs []string
		for _, rpc := range strings.Split(envRPCList, ",") {
			clean := strings.TrimSpace(rpc)
			if clean != "" {
				cleanRPCs = append(cleanRPCs, clean)
			}
		}
		if network, ok := cfg.Networks[cfg.NetworkID]; ok && len(cleanRPCs) > 0 {
			network.RPCList = cleanRPCs
			cfg.Networks[cfg.NetworkID] = network
		}
	}
	return nil
}
