// Package config provides a reusable loader for wallet configuration files
// and environment variables. It is versioned so that applications can
// depend on a stable API contract.
//
// Version: v0.1.0
package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/sphere-wallet/wallet/pkg/utils"
)

// Version is the semantic version of this configuration package.
const Version = "v0.1.0"

// Config is the unified configuration for a wallet process (spec.md §0
// ambient configuration surface): crypto defaults, sync engine tuning,
// and provider timeouts.
type Config struct {
	Crypto struct {
		AddressPrefix     string `mapstructure:"address_prefix" json:"address_prefix"`
		BaseDerivationPath string `mapstructure:"base_derivation_path" json:"base_derivation_path"`
		PBKDF2Iterations  int    `mapstructure:"pbkdf2_iterations" json:"pbkdf2_iterations"`
	} `mapstructure:"crypto" json:"crypto"`

	Sync struct {
		DebounceMS         int `mapstructure:"debounce_ms" json:"debounce_ms"`
		SyncTimeoutSeconds int `mapstructure:"sync_timeout_seconds" json:"sync_timeout_seconds"`
	} `mapstructure:"sync" json:"sync"`

	Providers struct {
		OracleTimeoutSeconds      int `mapstructure:"oracle_timeout_seconds" json:"oracle_timeout_seconds"`
		RemoteStoreTimeoutSeconds int `mapstructure:"remote_store_timeout_seconds" json:"remote_store_timeout_seconds"`
	} `mapstructure:"providers" json:"providers"`

	Logging struct {
		Level string `mapstructure:"level" json:"level"`
		File  string `mapstructure:"file" json:"file"`
	} `mapstructure:"logging" json:"logging"`
}

// AppConfig holds the configuration loaded via Load or LoadFromEnv.
var AppConfig Config

// defaults are applied before any file/env override is read.
func defaults() Config {
	var c Config
	c.Crypto.AddressPrefix = utils.EnvOrDefault("WALLET_ADDRESS_PREFIX", "alpha")
	c.Crypto.BaseDerivationPath = utils.EnvOrDefault("WALLET_BASE_DERIVATION_PATH", "m/44'/0'/0'")
	c.Crypto.PBKDF2Iterations = utils.EnvOrDefaultInt("WALLET_PBKDF2_ITERATIONS", 100_000)
	c.Sync.DebounceMS = utils.EnvOrDefaultInt("WALLET_SYNC_DEBOUNCE_MS", 250)
	c.Sync.SyncTimeoutSeconds = utils.EnvOrDefaultInt("WALLET_SYNC_TIMEOUT_SECONDS", 30)
	c.Providers.OracleTimeoutSeconds = utils.EnvOrDefaultInt("WALLET_ORACLE_TIMEOUT_SECONDS", 5)
	c.Providers.RemoteStoreTimeoutSeconds = utils.EnvOrDefaultInt("WALLET_REMOTE_STORE_TIMEOUT_SECONDS", 30)
	c.Logging.Level = utils.EnvOrDefault("WALLET_LOG_LEVEL", "info")
	return c
}

// Load reads configuration files and merges any environment specific
// overrides. The resulting configuration is stored in AppConfig and
// returned. env selects an additional overlay file (e.g. "production");
// an empty env loads only the default configuration.
func Load(env string) (*Config, error) {
	_ = godotenv.Load() // best-effort; absence of a .env file is not an error

	AppConfig = defaults()

	viper.SetConfigName("wallet")
	viper.AddConfigPath("config")
	viper.AddConfigPath(".")
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, utils.Wrap(err, "load config")
		}
	}

	if env != "" {
		viper.SetConfigName(env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, utils.Wrap(err, fmt.Sprintf("merge %s config", env))
		}
	}

	viper.SetEnvPrefix("WALLET")
	viper.AutomaticEnv()

	if err := viper.Unmarshal(&AppConfig); err != nil {
		return nil, utils.Wrap(err, "unmarshal config")
	}
	return &AppConfig, nil
}

// LoadFromEnv loads configuration using the WALLET_ENV environment variable.
func LoadFromEnv() (*Config, error) {
	return Load(utils.EnvOrDefault("WALLET_ENV", ""))
}
