package server

import (
	"fmt"

	"github.com/nilbx/sponsorhub/internal/config"
	"github.com/nilbx/sponsorhub/internal/kv"
	"github.com/nilbx/sponsorhub/internal/services"
)

// Services bundles everything the API server depends on. Evm, Pinning,
// and Integration are nil when the deployment lacks their credentials.
type Services struct {
	Ledger      services.LedgerService
	Fees        services.FeeService
	Evm         services.EvmService
	Pinning     services.PinningService
	Integration services.IntegrationService
	Recorder    *services.FeeRecorder
}

// InitializeStore opens the ledger store for the configured driver.
func InitializeStore(cfg *config.Config) (kv.Store, error) {
	if cfg.PostgresURL != "" || cfg.DatabaseDriver == "postgres" {
		if cfg.PostgresURL == "" {
			return nil, fmt.Errorf("POSTGRES_URL is required for the postgres driver")
		}
		return kv.NewPostgresStore(cfg.PostgresURL)
	}
	return kv.NewSqliteStore(cfg.DatabasePath)
}

// InitializeServices wires the service graph on top of the store.
func InitializeServices(cfg *config.Config, store kv.Store) (*Services, error) {
	feeService := services.NewFeeService(cfg.Fees)
	ledgerService := services.NewLedgerService(store)
	recorder := services.NewFeeRecorder(ledgerService, 0)

	svcs := &Services{
		Ledger:   ledgerService,
		Fees:     feeService,
		Recorder: recorder,
	}

	if cfg.ChainEnabled() {
		evmService, err := services.NewEvmService(services.EvmConfig{
			RPCURL:                     cfg.RPCURL,
			ChainID:                    cfg.ChainID,
			PrivateKey:                 cfg.PrivateKey,
			NFTContractAddress:         cfg.NFTContractAddress,
			NFTContractABI:             cfg.NFTContractABI,
			SponsorshipContractAddress: cfg.SponsorshipAddress,
			SponsorshipContractABI:     cfg.SponsorshipABI,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize chain client: %w", err)
		}
		svcs.Evm = evmService
	}

	if cfg.PinningEnabled() {
		svcs.Pinning = services.NewPinningService(cfg.PinataAPIKey, cfg.PinataSecretKey)
	}

	if svcs.Evm != nil && svcs.Pinning != nil {
		svcs.Integration = services.NewIntegrationService(
			feeService, svcs.Evm, svcs.Pinning, recorder, cfg.EthPriceUSD)
	}

	return svcs, nil
}

// Close releases the service graph in dependency order: the recorder
// drains before the store closes under it.
func (s *Services) Close(store kv.Store) {
	if s.Recorder != nil {
		s.Recorder.Close()
	}
	if s.Evm != nil {
		s.Evm.Close()
	}
	if store != nil {
		store.Close()
	}
}
