package services

import (
	"context"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/nilbx/sponsorhub/internal/errs"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testABI = `[{"type":"function","name":"mintLegacyNFT","inputs":[]}]`

func newValidationOnlyEvmService() *evmService {
	// No client; only paths that fail before any RPC use are exercised.
	return &evmService{validator: validator.New()}
}

func TestNewEvmServiceInvalidNFTAddress(t *testing.T) {
	_, err := NewEvmService(EvmConfig{
		NFTContractAddress:         "not-an-address",
		SponsorshipContractAddress: "0x2222222222222222222222222222222222222222",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrInvalidInput))
}

func TestNewEvmServiceInvalidABI(t *testing.T) {
	_, err := NewEvmService(EvmConfig{
		NFTContractAddress:         "0x1111111111111111111111111111111111111111",
		SponsorshipContractAddress: "0x2222222222222222222222222222222222222222",
		NFTContractABI:             "{not json",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ABI")
}

func TestNewEvmServiceInvalidKey(t *testing.T) {
	_, err := NewEvmService(EvmConfig{
		NFTContractAddress:         "0x1111111111111111111111111111111111111111",
		SponsorshipContractAddress: "0x2222222222222222222222222222222222222222",
		NFTContractABI:             testABI,
		SponsorshipContractABI:     testABI,
		PrivateKey:                 "0xnothex",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "operator key")
}

func TestMintLegacyNFTValidation(t *testing.T) {
	service := newValidationOnlyEvmService()
	ctx := context.Background()

	_, err := service.MintLegacyNFT(ctx, MintLegacyNFTArgs{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrInvalidInput))

	_, err = service.MintLegacyNFT(ctx, MintLegacyNFTArgs{
		AthleteAddress:   "not-an-address",
		RecipientAddress: "0x2222222222222222222222222222222222222222",
		TokenURI:         "ipfs://x",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrInvalidInput))

	_, err = service.MintLegacyNFT(ctx, MintLegacyNFTArgs{
		AthleteAddress:   "0x1111111111111111111111111111111111111111",
		RecipientAddress: "0x2222222222222222222222222222222222222222",
		TokenURI:         "ipfs://x",
		RoyaltyFee:       1001,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrInvalidInput))
}

func TestCreateSponsorshipTaskValidation(t *testing.T) {
	service := newValidationOnlyEvmService()
	ctx := context.Background()

	_, err := service.CreateSponsorshipTask(ctx, CreateSponsorshipTaskArgs{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrInvalidInput))

	_, err = service.CreateSponsorshipTask(ctx, CreateSponsorshipTaskArgs{
		AthleteAddress: "0x1111111111111111111111111111111111111111",
		Description:    "social media post",
		AmountEth:      decimal.Zero,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrInvalidInput))
}

func TestGetAthleteNFTsValidation(t *testing.T) {
	service := newValidationOnlyEvmService()

	_, err := service.GetAthleteNFTs(context.Background(), "not-an-address")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrInvalidInput))
}
