package services

import "github.com/shopspring/decimal"

type MintLegacyNFTArgs struct {
	AthleteAddress   string `json:"athlete_address" validate:"required"`
	RecipientAddress string `json:"recipient_address" validate:"required"`
	TokenURI         string `json:"token_uri" validate:"required"`
	// RoyaltyFee is in basis points; capped at 1000 (10%).
	RoyaltyFee int64 `json:"royalty_fee" validate:"gte=0"`
}

type CreateSponsorshipTaskArgs struct {
	AthleteAddress string          `json:"athlete_address" validate:"required"`
	Description    string          `json:"description" validate:"required"`
	AmountEth      decimal.Decimal `json:"amount_eth"`
}

// TaskDetails mirrors the sponsorship contract's task tuple.
type TaskDetails struct {
	TaskID          uint64 `json:"taskId"`
	Sponsor         string `json:"sponsor"`
	Athlete         string `json:"athlete"`
	Amount          string `json:"amount"`
	Description     string `json:"description"`
	Status          uint8  `json:"status"`
	CreatedAt       uint64 `json:"createdAt"`
	CompletedAt     uint64 `json:"completedAt"`
	DeliverableHash string `json:"deliverableHash,omitempty"`
}

type AthleteNFT struct {
	TokenID  string `json:"tokenId"`
	TokenURI string `json:"tokenURI"`
	Owner    string `json:"owner"`
}
