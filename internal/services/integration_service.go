package services

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/nilbx/sponsorhub/internal/errs"
	"github.com/nilbx/sponsorhub/internal/models"
	"github.com/shopspring/decimal"
)

// IntegrationService composes the chain client, the pinning gateway, the
// fee calculator, and the async fee recorder into the platform workflows.
// Fee recording is dispatched after the chain operation commits and never
// fails the primary result.
type IntegrationService interface {
	CreateSponsorship(ctx context.Context, req CreateSponsorshipRequest) (*SponsorshipResult, error)
	CreateAthleteNFT(ctx context.Context, req CreateAthleteNFTRequest) (*AthleteNFTResult, error)
	GetAthleteAssets(ctx context.Context, athleteAddress string) (*AthleteAssets, error)
}

type CreateSponsorshipRequest struct {
	UserID         string          `json:"user_id" validate:"required"`
	UserType       string          `json:"user_type"`
	AthleteAddress string          `json:"athlete_address" validate:"required"`
	Description    string          `json:"description" validate:"required"`
	AmountEth      decimal.Decimal `json:"amount_eth"`
}

type SponsorshipResult struct {
	TxHash       string              `json:"tx_hash"`
	DealValueUSD decimal.Decimal     `json:"deal_value_usd"`
	FeeBreakdown models.FeeBreakdown `json:"fee_breakdown"`
}

type CreateAthleteNFTRequest struct {
	AthleteID        string                   `json:"athlete_id" validate:"required"`
	AthleteName      string                   `json:"athlete_name" validate:"required"`
	AthleteAddress   string                   `json:"athlete_address" validate:"required"`
	RecipientAddress string                   `json:"recipient_address"`
	Description      string                   `json:"description"`
	ImageURL         string                   `json:"image_url" validate:"required"`
	Attributes       []map[string]interface{} `json:"attributes"`
	RoyaltyFee       int64                    `json:"royalty_fee"`
}

type AthleteNFTResult struct {
	TxHash   string                 `json:"tx_hash"`
	IpfsURL  string                 `json:"ipfs_url"`
	Metadata map[string]interface{} `json:"metadata"`
}

type AthleteAssets struct {
	NFTs      []AthleteNFT `json:"nfts"`
	TotalNFTs int          `json:"total_nfts"`
}

// defaultRoyaltyFee is 5% in basis points.
const defaultRoyaltyFee = 500

type integrationService struct {
	fees        FeeService
	evm         EvmService
	pinning     PinningService
	recorder    *FeeRecorder
	ethPriceUSD decimal.Decimal
	validator   *validator.Validate
}

// NewIntegrationService wires the collaborators together. ethPriceUSD is
// the configured ETH/USD conversion rate used to value deals; a price
// oracle would replace it in production.
func NewIntegrationService(fees FeeService, evm EvmService, pinning PinningService, recorder *FeeRecorder, ethPriceUSD decimal.Decimal) IntegrationService {
	if ethPriceUSD.Sign() <= 0 {
		ethPriceUSD = decimal.NewFromInt(2000)
	}
	return &integrationService{
		fees:        fees,
		evm:         evm,
		pinning:     pinning,
		recorder:    recorder,
		ethPriceUSD: ethPriceUSD,
		validator:   validator.New(),
	}
}

// CreateSponsorship values the deal, creates the escrowed task on chain,
// and dispatches the fee recordings. The chain call is the commit point:
// on its failure nothing is recorded; after it succeeds, recording
// failures are logged by the recorder and do not surface here.
func (s *integrationService) CreateSponsorship(ctx context.Context, req CreateSponsorshipRequest) (*SponsorshipResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidInput, err)
	}

	dealValueUSD := req.AmountEth.Mul(s.ethPriceUSD)
	breakdown, err := s.fees.CalculateDealFees(dealValueUSD)
	if err != nil {
		return nil, err
	}

	txHash, err := s.evm.CreateSponsorshipTask(ctx, CreateSponsorshipTaskArgs{
		AthleteAddress: req.AthleteAddress,
		Description:    req.Description,
		AmountEth:      req.AmountEth,
	})
	if err != nil {
		return nil, err
	}

	userType := req.UserType
	if userType == "" {
		userType = "athlete"
	}
	s.recorder.Enqueue(RecordFeeInput{
		Kind:       models.FeeKindDeployment,
		UserID:     req.UserID,
		UserType:   userType,
		Descriptor: "sponsorship",
		AmountUSD:  breakdown.DeploymentFeeUSD,
	})
	if breakdown.SubscriptionFeeUSD.Sign() > 0 {
		s.recorder.Enqueue(RecordFeeInput{
			Kind:       models.FeeKindSubscription,
			UserID:     req.UserID,
			UserType:   userType,
			Descriptor: "monitoring",
			AmountUSD:  breakdown.SubscriptionFeeUSD,
		})
	}
	if breakdown.PremiumFeeUSD.Sign() > 0 {
		s.recorder.Enqueue(RecordFeeInput{
			Kind:       models.FeeKindPremium,
			UserID:     req.UserID,
			UserType:   userType,
			Descriptor: "sponsorship_premium",
			AmountUSD:  breakdown.PremiumFeeUSD,
		})
	}

	return &SponsorshipResult{
		TxHash:       txHash,
		DealValueUSD: dealValueUSD.Round(2),
		FeeBreakdown: breakdown.Rounded(),
	}, nil
}

// CreateAthleteNFT pins the metadata document and mints the NFT with the
// pinned URI.
func (s *integrationService) CreateAthleteNFT(ctx context.Context, req CreateAthleteNFTRequest) (*AthleteNFTResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidInput, err)
	}

	description := req.Description
	if description == "" {
		description = fmt.Sprintf("Legacy NFT for %s", req.AthleteName)
	}
	metadata := s.pinning.CreateNFTMetadata(NFTMetadataArgs{
		AthleteName: req.AthleteName,
		AthleteID:   req.AthleteID,
		Description: description,
		ImageURL:    req.ImageURL,
		Attributes:  req.Attributes,
	})

	ipfsURL, err := s.pinning.UploadJSONMetadata(ctx, metadata, "NIL_NFT_"+req.AthleteName)
	if err != nil {
		return nil, err
	}

	recipient := req.RecipientAddress
	if recipient == "" {
		recipient = req.AthleteAddress
	}
	royaltyFee := req.RoyaltyFee
	if royaltyFee == 0 {
		royaltyFee = defaultRoyaltyFee
	}

	txHash, err := s.evm.MintLegacyNFT(ctx, MintLegacyNFTArgs{
		AthleteAddress:   req.AthleteAddress,
		RecipientAddress: recipient,
		TokenURI:         ipfsURL,
		RoyaltyFee:       royaltyFee,
	})
	if err != nil {
		return nil, err
	}

	return &AthleteNFTResult{
		TxHash:   txHash,
		IpfsURL:  ipfsURL,
		Metadata: metadata,
	}, nil
}

func (s *integrationService) GetAthleteAssets(ctx context.Context, athleteAddress string) (*AthleteAssets, error) {
	nfts, err := s.evm.GetAthleteNFTs(ctx, athleteAddress)
	if err != nil {
		return nil, err
	}
	return &AthleteAssets{NFTs: nfts, TotalNFTs: len(nfts)}, nil
}
