package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/nilbx/sponsorhub/internal/models"
	"github.com/shopspring/decimal"
)

// Config carries everything the process reads from the environment.
type Config struct {
	Port string

	// DatabaseDriver is "sqlite" or "postgres". PostgresURL takes
	// precedence when set, matching the hosted deployment.
	DatabaseDriver string
	DatabasePath   string
	PostgresURL    string

	RPCURL             string
	ChainID            int64
	PrivateKey         string
	NFTContractAddress string
	NFTContractABI     string
	SponsorshipAddress string
	SponsorshipABI     string

	PinataAPIKey    string
	PinataSecretKey string

	AuthSecret string

	EthPriceUSD decimal.Decimal

	Fees models.FeeStructure
}

// Sepolia is the default target network.
const defaultChainID = 11155111

// Load reads the configuration from the environment. Only the chain
// credentials are validated here; services that do not need them can
// still start without.
func Load() (*Config, error) {
	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		DatabaseDriver:     getEnv("DATABASE_DRIVER", "sqlite"),
		DatabasePath:       getEnv("DATABASE_PATH", "sponsorhub.db"),
		PostgresURL:        os.Getenv("POSTGRES_URL"),
		RPCURL:             os.Getenv("ETHEREUM_RPC_URL"),
		PrivateKey:         os.Getenv("ETHEREUM_PRIVATE_KEY"),
		NFTContractAddress: os.Getenv("NFT_CONTRACT_ADDRESS"),
		NFTContractABI:     os.Getenv("NFT_CONTRACT_ABI"),
		SponsorshipAddress: os.Getenv("SPONSORSHIP_CONTRACT_ADDRESS"),
		SponsorshipABI:     os.Getenv("SPONSORSHIP_CONTRACT_ABI"),
		PinataAPIKey:       os.Getenv("PINATA_API_KEY"),
		PinataSecretKey:    os.Getenv("PINATA_SECRET_KEY"),
		AuthSecret:         os.Getenv("AUTH_SECRET"),
		Fees:               models.DefaultFeeStructure(),
	}

	chainID, err := getEnvInt64("ETHEREUM_CHAIN_ID", defaultChainID)
	if err != nil {
		return nil, err
	}
	cfg.ChainID = chainID

	ethPrice, err := getEnvDecimal("ETH_PRICE_USD", decimal.NewFromInt(2000))
	if err != nil {
		return nil, err
	}
	cfg.EthPriceUSD = ethPrice

	if err := loadFeeOverrides(&cfg.Fees); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ChainEnabled reports whether enough chain configuration is present to
// start the EVM client.
func (c *Config) ChainEnabled() bool {
	return c.RPCURL != "" && c.PrivateKey != "" &&
		c.NFTContractAddress != "" && c.SponsorshipAddress != ""
}

// PinningEnabled reports whether the pinning gateway credentials are set.
func (c *Config) PinningEnabled() bool {
	return c.PinataAPIKey != "" && c.PinataSecretKey != ""
}

func loadFeeOverrides(fees *models.FeeStructure) error {
	overrides := []struct {
		key    string
		target *decimal.Decimal
	}{
		{"FEE_TRANSACTION_PERCENT", &fees.TransactionFeePercent},
		{"FEE_DEPLOYMENT_USD", &fees.DeploymentFeeUSD},
		{"FEE_SUBSCRIPTION_MONTHLY_USD", &fees.SubscriptionFeeMonthlyUSD},
		{"FEE_PREMIUM_MIN_USD", &fees.PremiumFeeMinUSD},
		{"FEE_PREMIUM_MAX_USD", &fees.PremiumFeeMaxUSD},
		{"FEE_EFFECTIVE_CAP_PERCENT", &fees.MaxEffectiveFeePercent},
	}
	for _, o := range overrides {
		value, err := getEnvDecimal(o.key, *o.target)
		if err != nil {
			return err
		}
		*o.target = value
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

func getEnvDecimal(key string, fallback decimal.Decimal) (decimal.Decimal, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}
