package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/verdantlabs/chainsense/internal/database"
)

// Config holds all configuration for the service
type Config struct {
	Server   ServerConfig
	Sui      SuiConfig
	Throttle ThrottleConfig
	Redis    RedisConfig
	Database DatabaseConfig
	Device   DeviceConfig
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Host            string        `mapstructure:"host"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// SuiConfig carries every deployment parameter the transaction pipeline
// needs. PackageID, SenderAddress and SignerKey intentionally have no
// defaults: when they are absent the affected operation fails with a
// configuration error instead of the process refusing to start, so the
// read-only endpoints stay usable.
type SuiConfig struct {
	RPCURL              string        `mapstructure:"rpc_url"`
	Network             string        `mapstructure:"network"`
	PackageID           string        `mapstructure:"package_id"`
	SenderAddress       string        `mapstructure:"sender_address"`
	SignerKey           string        `mapstructure:"signer_key"`
	SensorObjectID      string        `mapstructure:"sensor_object_id"`
	ClockObjectID       string        `mapstructure:"clock_object_id"`
	ClockInitialVersion uint64        `mapstructure:"clock_initial_version"`
	GasBudget           uint64        `mapstructure:"gas_budget"`
	GasPrice            uint64        `mapstructure:"gas_price"`
	RequestTimeout      time.Duration `mapstructure:"request_timeout"`
	ExplorerBase        string        `mapstructure:"explorer_base"`
}

// ReadingStructType is the on-chain type queried for stored readings
func (c SuiConfig) ReadingStructType() string {
	return c.PackageID + "::sensor_storage::SensorData"
}

// ExplorerURL renders the block-explorer link for a transaction digest
func (c SuiConfig) ExplorerURL(digest string) string {
	return fmt.Sprintf("%s/%s/tx/%s", c.ExplorerBase, c.Network, digest)
}

type ThrottleConfig struct {
	MaxRequests int           `mapstructure:"max_requests"`
	Window      time.Duration `mapstructure:"window"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Enabled reports whether a shared Redis throttle store is configured
func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

type DatabaseConfig struct {
	Postgres database.PostgresConfig `mapstructure:"postgres"`
}

// Enabled reports whether the submission archive is configured
func (c DatabaseConfig) Enabled() bool {
	return c.Postgres.Host != ""
}

// DeviceConfig is the fixed identity stamped onto sponsored submissions from
// constrained devices that send only raw values and a signature
type DeviceConfig struct {
	ID         string `mapstructure:"id"`
	SensorType string `mapstructure:"sensor_type"`
	Location   string `mapstructure:"location"`
}

// Load initializes configuration from environment variables and config file
func Load() (*Config, error) {
	viper.SetEnvPrefix("CHAINSENSE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "__"))
	viper.AutomaticEnv()

	// Set defaults
	setDefaults()

	// Load config file if exists
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "15s")
	viper.SetDefault("server.shutdown_timeout", "30s")

	// Ledger defaults
	viper.SetDefault("sui.rpc_url", "https://fullnode.testnet.sui.io:443")
	viper.SetDefault("sui.network", "testnet")
	viper.SetDefault("sui.clock_object_id", "0x6")
	viper.SetDefault("sui.clock_initial_version", 1)
	viper.SetDefault("sui.gas_budget", 100000000)
	viper.SetDefault("sui.gas_price", 1000)
	viper.SetDefault("sui.request_timeout", "30s")
	viper.SetDefault("sui.explorer_base", "https://suiscan.xyz")

	// Throttle defaults
	viper.SetDefault("throttle.max_requests", 10)
	viper.SetDefault("throttle.window", "60s")

	// Redis defaults
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)

	// Database defaults
	viper.SetDefault("database.postgres.port", 5432)
	viper.SetDefault("database.postgres.sslmode", "disable")

	// Sponsored-device defaults
	viper.SetDefault("device.id", "esp32-device")
	viper.SetDefault("device.sensor_type", "soil")
	viper.SetDefault("device.location", "")
}

func validateConfig(config *Config) error {
	if config.Sui.RPCURL == "" {
		return fmt.Errorf("sui rpc url is required")
	}
	if config.Throttle.MaxRequests <= 0 {
		return fmt.Errorf("throttle max_requests must be positive")
	}
	if config.Throttle.Window <= 0 {
		return fmt.Errorf("throttle window must be positive")
	}
	return nil
}
