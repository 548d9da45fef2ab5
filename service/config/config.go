package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Default fallback resolver services, queried in order after the on-chain
// strategies fail. The ENS backend is last: .skr/.sol handles miss it with an
// empty address and .eth handles (which have no on-chain path here) fall
// through the Solana-name backends to reach it.
var defaultResolverServices = []string{
	"https://sdk-proxy.sns.id/resolve",
	"https://seeker-production-46ae.up.railway.app/api/v1/resolve",
	"https://api.ensideas.com/ens/resolve",
}

// Config holds all application configuration loaded from environment variables.
// All required fields are validated at startup to ensure fail-fast behavior.
type Config struct {
	LogLevel string

	// Solana configuration
	SolanaRPCURL string

	// Ethereum configuration
	EtherscanAPIKey string
	EtherscanURL    string

	// Bitcoin configuration
	BlockstreamURL string

	// Position service configuration
	HyperliquidURL string

	// Optional asset-metadata service; empty disables symbol lookups.
	MetadataURL string

	// Name-resolution fallback services, in priority order.
	ResolverServiceURLs []string

	// Maximum rows in an activity report.
	ActivityLimit int
}

// Load reads configuration from environment variables and validates all
// required fields. Returns an error if any required configuration is missing
// or invalid.
func Load() (*Config, error) {
	cfg := &Config{}
	var errs []error

	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", "info")

	cfg.SolanaRPCURL = getEnvOrDefault("SOLANA_RPC_URL", "https://api.mainnet-beta.solana.com")

	// Empty disables Ethereum activity; Etherscan rejects keyless requests.
	cfg.EtherscanAPIKey = os.Getenv("ETHERSCAN_API_KEY")
	cfg.EtherscanURL = getEnvOrDefault("ETHERSCAN_URL", "https://api.etherscan.io/v2/api")

	cfg.BlockstreamURL = getEnvOrDefault("BLOCKSTREAM_URL", "https://blockstream.info/api")

	cfg.HyperliquidURL = getEnvOrDefault("HYPERLIQUID_URL", "https://api.hyperliquid.xyz/info")

	cfg.MetadataURL = os.Getenv("METADATA_URL")

	cfg.ResolverServiceURLs = parseList("RESOLVER_SERVICE_URLS", defaultResolverServices)

	limit, err := parseInt("ACTIVITY_LIMIT", 30)
	if err != nil {
		errs = append(errs, err)
	} else {
		cfg.ActivityLimit = limit
	}
	if cfg.ActivityLimit < 0 {
		errs = append(errs, fmt.Errorf("ACTIVITY_LIMIT cannot be negative"))
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %v", errs)
	}

	return cfg, nil
}

// MustLoad is like Load but panics if configuration is invalid.
// Useful for initialization where misconfiguration should halt startup.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

// Validate checks if the configuration is valid.
// This is useful for testing configuration without loading from env.
func (c *Config) Validate() error {
	var errs []error

	if c.SolanaRPCURL == "" {
		errs = append(errs, fmt.Errorf("SolanaRPCURL is required"))
	}

	if c.ActivityLimit <= 0 {
		errs = append(errs, fmt.Errorf("ActivityLimit must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errs)
	}

	return nil
}

// getEnvOrDefault returns the environment variable value or a default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseInt parses an integer from an environment variable or uses a default.
func parseInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q: %w", key, value, err)
	}
	return result, nil
}

// parseList splits a comma-separated environment variable, dropping empty
// entries, or returns the default list when unset.
func parseList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
