package services

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/go-playground/validator/v10"
	"github.com/nilbx/sponsorhub/internal/errs"
	"github.com/nilbx/sponsorhub/internal/utils"
)

// EvmService talks to the NFT and sponsorship contracts through a
// JSON-RPC provider. Transactions are signed with the platform operator
// key; the ledger only records whatever hash the chain returns.
type EvmService interface {
	MintLegacyNFT(ctx context.Context, args MintLegacyNFTArgs) (string, error)
	CreateSponsorshipTask(ctx context.Context, args CreateSponsorshipTaskArgs) (string, error)
	ApproveTask(ctx context.Context, taskID uint64) (string, error)
	GetTaskDetails(ctx context.Context, taskID uint64) (*TaskDetails, error)
	GetAthleteNFTs(ctx context.Context, athleteAddress string) ([]AthleteNFT, error)
	Close()
}

// EvmConfig carries the chain connection and contract parameters.
type EvmConfig struct {
	RPCURL                     string
	ChainID                    int64
	PrivateKey                 string
	NFTContractAddress         string
	SponsorshipContractAddress string
	NFTContractABI             string
	SponsorshipContractABI     string
}

const txGasLimit = 2_000_000

// maxRoyaltyFee is in basis points (10%).
const maxRoyaltyFee = 1000

type evmService struct {
	client             *ethclient.Client
	chainID            *big.Int
	key                *ecdsa.PrivateKey
	from               common.Address
	nftAddress         common.Address
	sponsorshipAddress common.Address
	nftABI             abi.ABI
	sponsorshipABI     abi.ABI
	validator          *validator.Validate
}

// NewEvmService dials the JSON-RPC provider and parses the contract ABIs
// and the operator key.
func NewEvmService(cfg EvmConfig) (EvmService, error) {
	if !common.IsHexAddress(cfg.NFTContractAddress) {
		return nil, fmt.Errorf("%w: invalid NFT contract address", errs.ErrInvalidInput)
	}
	if !common.IsHexAddress(cfg.SponsorshipContractAddress) {
		return nil, fmt.Errorf("%w: invalid sponsorship contract address", errs.ErrInvalidInput)
	}

	nftABI, err := abi.JSON(strings.NewReader(cfg.NFTContractABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse NFT ABI: %w", err)
	}
	sponsorshipABI, err := abi.JSON(strings.NewReader(cfg.SponsorshipContractABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse sponsorship ABI: %w", err)
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse operator key: %w", err)
	}

	client, err := ethclient.Dial(cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to RPC provider: %v", errs.ErrUpstreamFailure, err)
	}

	return &evmService{
		client:             client,
		chainID:            big.NewInt(cfg.ChainID),
		key:                key,
		from:               crypto.PubkeyToAddress(key.PublicKey),
		nftAddress:         common.HexToAddress(cfg.NFTContractAddress),
		sponsorshipAddress: common.HexToAddress(cfg.SponsorshipContractAddress),
		nftABI:             nftABI,
		sponsorshipABI:     sponsorshipABI,
		validator:          validator.New(),
	}, nil
}

// MintLegacyNFT mints a legacy NFT for an athlete and returns the
// transaction hash.
func (s *evmService) MintLegacyNFT(ctx context.Context, args MintLegacyNFTArgs) (string, error) {
	if err := s.validator.Struct(args); err != nil {
		return "", fmt.Errorf("%w: %v", errs.ErrInvalidInput, err)
	}
	if !utils.IsValidEthereumAddress(args.AthleteAddress) {
		return "", fmt.Errorf("%w: invalid athlete address", errs.ErrInvalidInput)
	}
	if !utils.IsValidEthereumAddress(args.RecipientAddress) {
		return "", fmt.Errorf("%w: invalid recipient address", errs.ErrInvalidInput)
	}
	if args.RoyaltyFee > maxRoyaltyFee {
		return "", fmt.Errorf("%w: royalty fee too high", errs.ErrInvalidInput)
	}

	data, err := s.nftABI.Pack("mintLegacyNFT",
		common.HexToAddress(args.AthleteAddress),
		common.HexToAddress(args.RecipientAddress),
		args.TokenURI,
		big.NewInt(args.RoyaltyFee),
	)
	if err != nil {
		return "", fmt.Errorf("failed to encode mint call: %w", err)
	}

	return s.sendTransaction(ctx, s.nftAddress, nil, data)
}

// CreateSponsorshipTask creates an escrowed sponsorship task funded with
// the given ETH amount and returns the transaction hash.
func (s *evmService) CreateSponsorshipTask(ctx context.Context, args CreateSponsorshipTaskArgs) (string, error) {
	if err := s.validator.Struct(args); err != nil {
		return "", fmt.Errorf("%w: %v", errs.ErrInvalidInput, err)
	}
	if !utils.IsValidEthereumAddress(args.AthleteAddress) {
		return "", fmt.Errorf("%w: invalid athlete address", errs.ErrInvalidInput)
	}
	if args.AmountEth.Sign() <= 0 {
		return "", fmt.Errorf("%w: amount must be positive", errs.ErrInvalidInput)
	}

	data, err := s.sponsorshipABI.Pack("createTask",
		common.HexToAddress(args.AthleteAddress),
		args.Description,
	)
	if err != nil {
		return "", fmt.Errorf("failed to encode createTask call: %w", err)
	}

	return s.sendTransaction(ctx, s.sponsorshipAddress, utils.EthToWei(args.AmountEth), data)
}

// ApproveTask approves a completed sponsorship task, releasing its escrow.
func (s *evmService) ApproveTask(ctx context.Context, taskID uint64) (string, error) {
	data, err := s.sponsorshipABI.Pack("approveTask", new(big.Int).SetUint64(taskID))
	if err != nil {
		return "", fmt.Errorf("failed to encode approveTask call: %w", err)
	}
	return s.sendTransaction(ctx, s.sponsorshipAddress, nil, data)
}

// GetTaskDetails reads a task tuple from the sponsorship contract.
func (s *evmService) GetTaskDetails(ctx context.Context, taskID uint64) (*TaskDetails, error) {
	data, err := s.sponsorshipABI.Pack("getTask", new(big.Int).SetUint64(taskID))
	if err != nil {
		return nil, fmt.Errorf("failed to encode getTask call: %w", err)
	}

	result, err := s.call(ctx, s.sponsorshipAddress, data)
	if err != nil {
		return nil, err
	}

	outs, err := s.sponsorshipABI.Unpack("getTask", result)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode task: %v", errs.ErrUpstreamFailure, err)
	}
	if len(outs) < 9 {
		return nil, fmt.Errorf("%w: unexpected task tuple size %d", errs.ErrUpstreamFailure, len(outs))
	}

	details := &TaskDetails{
		TaskID:      asUint64(outs[0]),
		Sponsor:     asAddress(outs[1]),
		Athlete:     asAddress(outs[2]),
		Amount:      asBigString(outs[3]),
		Description: asString(outs[4]),
		Status:      asUint8(outs[5]),
		CreatedAt:   asUint64(outs[6]),
		CompletedAt: asUint64(outs[7]),
	}
	if hash, ok := outs[8].([32]byte); ok && hash != [32]byte{} {
		details.DeliverableHash = common.BytesToHash(hash[:]).Hex()
	}
	return details, nil
}

// GetAthleteNFTs returns every NFT owned by the athlete. Tokens whose
// tokenURI call fails are skipped.
func (s *evmService) GetAthleteNFTs(ctx context.Context, athleteAddress string) ([]AthleteNFT, error) {
	if !utils.IsValidEthereumAddress(athleteAddress) {
		return nil, fmt.Errorf("%w: invalid athlete address", errs.ErrInvalidInput)
	}

	data, err := s.nftABI.Pack("tokensOfOwner", common.HexToAddress(athleteAddress))
	if err != nil {
		return nil, fmt.Errorf("failed to encode tokensOfOwner call: %w", err)
	}

	result, err := s.call(ctx, s.nftAddress, data)
	if err != nil {
		return nil, err
	}

	outs, err := s.nftABI.Unpack("tokensOfOwner", result)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode token list: %v", errs.ErrUpstreamFailure, err)
	}
	tokenIDs, ok := outs[0].([]*big.Int)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected token list type", errs.ErrUpstreamFailure)
	}

	nfts := make([]AthleteNFT, 0, len(tokenIDs))
	for _, tokenID := range tokenIDs {
		uriData, err := s.nftABI.Pack("tokenURI", tokenID)
		if err != nil {
			continue
		}
		uriResult, err := s.call(ctx, s.nftAddress, uriData)
		if err != nil {
			continue
		}
		uriOuts, err := s.nftABI.Unpack("tokenURI", uriResult)
		if err != nil {
			continue
		}
		uri, ok := uriOuts[0].(string)
		if !ok {
			continue
		}
		nfts = append(nfts, AthleteNFT{
			TokenID:  tokenID.String(),
			TokenURI: uri,
			Owner:    athleteAddress,
		})
	}
	return nfts, nil
}

func (s *evmService) Close() {
	if s.client != nil {
		s.client.Close()
	}
}

// sendTransaction builds, signs, and broadcasts a legacy transaction with
// the fixed gas limit and the provider's suggested gas price.
func (s *evmService) sendTransaction(ctx context.Context, to common.Address, value *big.Int, data []byte) (string, error) {
	nonce, err := s.client.PendingNonceAt(ctx, s.from)
	if err != nil {
		return "", fmt.Errorf("%w: failed to fetch nonce: %v", errs.ErrUpstreamFailure, err)
	}
	gasPrice, err := s.client.SuggestGasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: failed to fetch gas price: %v", errs.ErrUpstreamFailure, err)
	}
	if value == nil {
		value = new(big.Int)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      txGasLimit,
		To:       &to,
		Value:    value,
		Data:     data,
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(s.chainID), s.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}
	if err := s.client.SendTransaction(ctx, signed); err != nil {
		return "", fmt.Errorf("%w: failed to send transaction: %v", errs.ErrUpstreamFailure, err)
	}
	return signed.Hash().Hex(), nil
}

func (s *evmService) call(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	result, err := s.client.CallContract(ctx, ethereum.CallMsg{
		From: s.from,
		To:   &to,
		Data: data,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: contract call failed: %v", errs.ErrUpstreamFailure, err)
	}
	return result, nil
}

func asUint64(v interface{}) uint64 {
	if b, ok := v.(*big.Int); ok {
		return b.Uint64()
	}
	return 0
}

func asBigString(v interface{}) string {
	if b, ok := v.(*big.Int); ok {
		return b.String()
	}
	return "0"
}

func asAddress(v interface{}) string {
	if a, ok := v.(common.Address); ok {
		return a.Hex()
	}
	return ""
}

func asString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func asUint8(v interface{}) uint8 {
	if u, ok := v.(uint8); ok {
		return u
	}
	return 0
}
