package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type ContractStatus string

type FeeKind string

type FeeStatus string

type BillingCycle string

const (
	ContractStatusActive    ContractStatus = "active"
	ContractStatusCompleted ContractStatus = "completed"
	ContractStatusCancelled ContractStatus = "cancelled"
)

const (
	FeeKindDeployment   FeeKind = "deployment"
	FeeKindSubscription FeeKind = "subscription"
	FeeKindPremium      FeeKind = "premium"
)

const (
	FeeStatusCompleted FeeStatus = "completed"
	FeeStatusActive    FeeStatus = "active"
	FeeStatusPending   FeeStatus = "pending"
)

const (
	BillingCycleMonthly   BillingCycle = "monthly"
	BillingCycleQuarterly BillingCycle = "quarterly"
	BillingCycleAnnual    BillingCycle = "annual"
)

// Category returns the global index category token for a fee kind.
func (k FeeKind) Category() (string, error) {
	switch k {
	case FeeKindDeployment:
		return CategoryDeployment, nil
	case FeeKindSubscription:
		return CategorySubscription, nil
	case FeeKindPremium:
		return CategoryPremium, nil
	default:
		return "", fmt.Errorf("unknown fee kind %q", k)
	}
}

// User holds platform account metadata.
type User struct {
	ID        string    `json:"user_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"` // athlete, sponsor
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Contract is a deployed sponsorship contract owned by one user.
type Contract struct {
	ID                  string          `json:"contract_id"`
	OwnerID             string          `json:"user_id"`
	AthleteWallet       string          `json:"athlete_wallet"`
	SponsorWallet       string          `json:"sponsor_wallet"`
	Address             string          `json:"address"`
	ABI                 string          `json:"abi"`
	AppearancesRequired int             `json:"appearances_required"`
	PaymentAmount       string          `json:"payment_amount"` // wei, decimal string
	PlatformFeePercent  decimal.Decimal `json:"platform_fee_percent"`
	DeploymentFeeUSD    decimal.Decimal `json:"deployment_fee"`
	Status              ContractStatus  `json:"status"`
	CreatedAt           time.Time       `json:"created_at"`
}

// Transaction is one on-chain transaction logged under its contract.
type Transaction struct {
	ID              string    `json:"tx_id"`
	ContractID      string    `json:"contract_id"`
	TxHash          string    `json:"tx_hash"`
	Type            string    `json:"type"`
	Amount          string    `json:"amount"` // wei, decimal string
	RecipientWallet string    `json:"recipient_wallet"`
	CreatedAt       time.Time `json:"created_at"`
}

// Fee is one recorded platform fee of any kind, owned by one user.
// Descriptor carries the kind-specific label: contract type for deployment
// fees, plan name for subscriptions, feature name for premium fees.
type Fee struct {
	ID         string          `json:"fee_id"`
	Kind       FeeKind         `json:"kind"`
	UserID     string          `json:"user_id"`
	UserType   string          `json:"user_type"`
	Descriptor string          `json:"descriptor"`
	AmountUSD  decimal.Decimal `json:"fee_usd"`
	Status     FeeStatus       `json:"status"`
	StartDate  *time.Time      `json:"start_date,omitempty"`
	EndDate    *time.Time      `json:"end_date,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Attribute access helpers. Attributes come back from the JSON column as
// map[string]interface{}; records tolerate missing keys and decode amounts
// from their string form.

func attrString(attrs JSON, key string) string {
	if v, ok := attrs[key].(string); ok {
		return v
	}
	return ""
}

func attrInt(attrs JSON, key string) int {
	switch v := attrs[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}

func attrDecimal(attrs JSON, key string) decimal.Decimal {
	if v, ok := attrs[key].(string); ok {
		if d, err := decimal.NewFromString(v); err == nil {
			return d
		}
	}
	if v, ok := attrs[key].(float64); ok {
		return decimal.NewFromFloat(v)
	}
	return decimal.Zero
}

func attrTime(attrs JSON, key string) time.Time {
	if v, ok := attrs[key].(string); ok {
		if t, err := time.Parse(TimestampLayout, v); err == nil {
			return t
		}
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

func attrTimePtr(attrs JSON, key string) *time.Time {
	t := attrTime(attrs, key)
	if t.IsZero() {
		return nil
	}
	return &t
}

// UserFromItem decodes a USER#<id>/METADATA item.
func UserFromItem(item *LedgerItem) *User {
	return &User{
		ID:        strings.TrimPrefix(item.PK, "USER#"),
		Email:     attrString(item.Attributes, "email"),
		Role:      attrString(item.Attributes, "role"),
		CreatedAt: attrTime(item.Attributes, "created_at"),
		UpdatedAt: attrTime(item.Attributes, "updated_at"),
	}
}

// ContractFromItem decodes a CONTRACT#<id>/METADATA item.
func ContractFromItem(item *LedgerItem) *Contract {
	return &Contract{
		ID:                  strings.TrimPrefix(item.PK, "CONTRACT#"),
		OwnerID:             attrString(item.Attributes, "user_id"),
		AthleteWallet:       attrString(item.Attributes, "athlete_wallet"),
		SponsorWallet:       attrString(item.Attributes, "sponsor_wallet"),
		Address:             attrString(item.Attributes, "address"),
		ABI:                 attrString(item.Attributes, "abi"),
		AppearancesRequired: attrInt(item.Attributes, "appearances_required"),
		PaymentAmount:       attrString(item.Attributes, "payment_amount"),
		PlatformFeePercent:  attrDecimal(item.Attributes, "platform_fee_percent"),
		DeploymentFeeUSD:    attrDecimal(item.Attributes, "deployment_fee"),
		Status:              ContractStatus(attrString(item.Attributes, "status")),
		CreatedAt:           attrTime(item.Attributes, "created_at"),
	}
}

// TransactionFromItem decodes a CONTRACT#<id>/TX#<id> item.
func TransactionFromItem(item *LedgerItem) *Transaction {
	return &Transaction{
		ID:              strings.TrimPrefix(item.SK, "TX#"),
		ContractID:      strings.TrimPrefix(item.PK, "CONTRACT#"),
		TxHash:          attrString(item.Attributes, "tx_hash"),
		Type:            attrString(item.Attributes, "type"),
		Amount:          attrString(item.Attributes, "amount"),
		RecipientWallet: attrString(item.Attributes, "recipient_wallet"),
		CreatedAt:       attrTime(item.Attributes, "created_at"),
	}
}

// FeeFromItem decodes any of the three fee item shapes:
//
//	FEE#<id> / DEPLOYMENT
//	USER#<id> / SUB#<id>
//	USER#<id> / PREMIUM#<id>
func FeeFromItem(item *LedgerItem) (*Fee, error) {
	fee := &Fee{
		UserID:    attrString(item.Attributes, "user_id"),
		UserType:  attrString(item.Attributes, "user_type"),
		AmountUSD: attrDecimal(item.Attributes, "fee_usd"),
		Status:    FeeStatus(attrString(item.Attributes, "status")),
		CreatedAt: attrTime(item.Attributes, "created_at"),
	}

	switch {
	case item.SK == SKDeployment:
		fee.Kind = FeeKindDeployment
		fee.ID = strings.TrimPrefix(item.PK, "FEE#")
		fee.Descriptor = attrString(item.Attributes, "contract_type")
	case strings.HasPrefix(item.SK, "SUB#"):
		fee.Kind = FeeKindSubscription
		fee.ID = strings.TrimPrefix(item.SK, "SUB#")
		fee.Descriptor = attrString(item.Attributes, "plan")
		fee.UserID = strings.TrimPrefix(item.PK, "USER#")
		fee.StartDate = attrTimePtr(item.Attributes, "start_date")
		fee.EndDate = attrTimePtr(item.Attributes, "end_date")
	case strings.HasPrefix(item.SK, "PREMIUM#"):
		fee.Kind = FeeKindPremium
		fee.ID = strings.TrimPrefix(item.SK, "PREMIUM#")
		fee.Descriptor = attrString(item.Attributes, "feature_name")
		fee.UserID = strings.TrimPrefix(item.PK, "USER#")
	default:
		return nil, fmt.Errorf("item %s/%s is not a fee record", item.PK, item.SK)
	}

	return fee, nil
}
