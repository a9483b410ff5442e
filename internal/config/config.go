package config

import (
	"fmt"
	"time"

	"github.com/credverse/credential-portal/internal/domain"
	"github.com/credverse/credential-portal/shared/env"
	"github.com/credverse/credential-portal/shared/messaging"
	"github.com/credverse/credential-portal/shared/redis"
)

// Config contains configuration for the credential portal
type Config struct {
	ServiceName string
	Environment string
	LogLevel    string

	// Wallet provider boundary
	ProviderRPCURL       string
	ProviderPollInterval time.Duration

	// Required chain and its add-chain descriptor
	ChainID        int64
	ChainName      string
	CurrencyName   string
	CurrencySymbol string
	ChainRPCURL    string
	ExplorerURL    string

	// Certificate contract
	ContractAddress string

	// Identity store
	Redis        redis.RedisConfig
	IdentitySlot string

	// Notifications
	RabbitMQ messaging.RabbitMQConfig

	// Resume-generation collaborator
	ResumeURL     string
	ResumeTimeout time.Duration

	// Observability
	MetricsAddr string
	SentryDSN   string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	env.Load()

	return &Config{
		ServiceName: env.GetString("SERVICE_NAME", "credential-portal"),
		Environment: env.GetString("ENVIRONMENT", "development"),
		LogLevel:    env.GetString("LOG_LEVEL", "info"),

		ProviderRPCURL:       env.GetString("PROVIDER_RPC_URL", ""),
		ProviderPollInterval: env.GetDuration("PROVIDER_POLL_INTERVAL", 4*time.Second),

		ChainID:        env.GetInt64("CHAIN_ID", 11155111),
		ChainName:      env.GetString("CHAIN_NAME", "Sepolia"),
		CurrencyName:   env.GetString("CHAIN_CURRENCY_NAME", "Sepolia Ether"),
		CurrencySymbol: env.GetString("CHAIN_CURRENCY_SYMBOL", "ETH"),
		ChainRPCURL:    env.GetString("CHAIN_RPC_URL", "https://rpc.sepolia.org"),
		ExplorerURL:    env.GetString("CHAIN_EXPLORER_URL", "https://sepolia.etherscan.io"),

		ContractAddress: env.GetString("CERTIFICATE_CONTRACT_ADDRESS", ""),

		Redis: redis.RedisConfig{
			RedisHost:     env.GetString("REDIS_HOST", "localhost"),
			RedisPort:     env.GetInt("REDIS_PORT", 6379),
			RedisPassword: env.GetString("REDIS_PASSWORD", ""),
			RedisDB:       env.GetInt("REDIS_DB", 0),
		},
		IdentitySlot: env.GetString("IDENTITY_SLOT", "default"),

		RabbitMQ: messaging.RabbitMQConfig{
			RabbitMQHost:     env.GetString("RABBITMQ_HOST", "localhost"),
			RabbitMQPort:     env.GetInt("RABBITMQ_PORT", 5672),
			RabbitMQUser:     env.GetString("RABBITMQ_USER", "guest"),
			RabbitMQPassword: env.GetString("RABBITMQ_PASSWORD", "guest"),
		},

		ResumeURL:     env.GetString("RESUME_SERVICE_URL", ""),
		ResumeTimeout: env.GetDuration("RESUME_TIMEOUT", 30*time.Second),

		MetricsAddr: env.GetString("METRICS_ADDR", ":9464"),
		SentryDSN:   env.GetString("SENTRY_DSN", ""),
	}
}

// ChainDescriptor builds the fixed descriptor handed to the wallet when the
// required chain is unknown to it.
func (c *Config) ChainDescriptor() domain.ChainDescriptor {
	return domain.ChainDescriptor{
		ChainID: c.ChainID,
		Name:    c.ChainName,
		NativeCurrency: domain.Currency{
			Name:     c.CurrencyName,
			Symbol:   c.CurrencySymbol,
			Decimals: 18,
		},
		RPCURLs:      []string{c.ChainRPCURL},
		ExplorerURLs: []string{c.ExplorerURL},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.ChainID <= 0 {
		return fmt.Errorf("CHAIN_ID must be a positive integer")
	}
	if c.ContractAddress == "" && c.Environment == "production" {
		return fmt.Errorf("CERTIFICATE_CONTRACT_ADDRESS is required in production")
	}
	if c.Redis.RedisHost == "" {
		return fmt.Errorf("REDIS_HOST is required")
	}
	return nil
}
