package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/nilbx/sponsorhub/internal/errs"
	"github.com/nilbx/sponsorhub/internal/kv"
	"github.com/nilbx/sponsorhub/internal/models"
	"github.com/shopspring/decimal"
)

// LedgerService persists users, contracts, transactions, and fees on the
// single-table key scheme and exposes the read paths over its two
// secondary indexes. Every operation is one store round-trip; the service
// holds no state beyond the store handle and performs no retries.
type LedgerService interface {
	CreateUser(ctx context.Context, userID, email, role string) (*models.User, error)
	GetUser(ctx context.Context, userID string) (*models.User, error)

	CreateContract(ctx context.Context, input CreateContractInput) (*models.Contract, error)
	GetContract(ctx context.Context, contractID string) (*models.Contract, error)
	ListUserContracts(ctx context.Context, userID string) ([]models.Contract, error)

	LogTransaction(ctx context.Context, input LogTransactionInput) (*models.Transaction, error)
	ListContractTransactions(ctx context.Context, contractID string) ([]models.Transaction, error)
	ListWalletTransactions(ctx context.Context, wallet string, limit int, mostRecentFirst bool) ([]models.Transaction, error)

	RecordFee(ctx context.Context, input RecordFeeInput) (*models.Fee, error)
	ListFeesInRange(ctx context.Context, kind models.FeeKind, start, end time.Time) ([]models.Fee, error)
	ListUserFees(ctx context.Context, userID string) ([]models.Fee, error)
	FeeAnalytics(ctx context.Context) (*models.FeeAnalytics, error)
	ItemsByDateRange(ctx context.Context, category string, start, end time.Time) ([]models.LedgerItem, error)
}

type CreateContractInput struct {
	OwnerID             string          `json:"user_id" validate:"required"`
	AthleteWallet       string          `json:"athlete_wallet" validate:"required"`
	SponsorWallet       string          `json:"sponsor_wallet" validate:"required"`
	Address             string          `json:"contract_address"`
	ABI                 string          `json:"contract_abi"`
	AppearancesRequired int             `json:"appearances_required"`
	PaymentAmount       string          `json:"payment_amount"`
	PlatformFeePercent  decimal.Decimal `json:"platform_fee_percent"`
	DeploymentFeeUSD    decimal.Decimal `json:"deployment_fee_usd"`
}

type LogTransactionInput struct {
	ContractID      string `json:"contract_id" validate:"required"`
	TxHash          string `json:"tx_hash" validate:"required"`
	Type            string `json:"transaction_type" validate:"required"`
	Amount          string `json:"amount"`
	RecipientWallet string `json:"recipient_wallet" validate:"required"`
}

// RecordFeeInput describes one fee to append. Descriptor carries the
// kind-specific label: contract type, plan name, or feature name.
type RecordFeeInput struct {
	Kind       models.FeeKind `validate:"required"`
	UserID     string         `validate:"required"`
	UserType   string
	Descriptor string
	AmountUSD  decimal.Decimal
}

type ledgerService struct {
	store     kv.Store
	validator *validator.Validate
}

// NewLedgerService creates a LedgerService over the given store handle.
func NewLedgerService(store kv.Store) LedgerService {
	return &ledgerService{store: store, validator: validator.New()}
}

// CreateUser creates or overwrites the user record (last-write-wins).
func (s *ledgerService) CreateUser(ctx context.Context, userID, email, role string) (*models.User, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", errs.ErrInvalidInput)
	}
	now := time.Now().UTC()
	item := &models.LedgerItem{
		PK: models.UserPK(userID),
		SK: models.SKMetadata,
		Attributes: models.JSON{
			"email":      email,
			"role":       role,
			"created_at": models.FormatTimestamp(now),
			"updated_at": models.FormatTimestamp(now),
		},
	}
	if err := s.store.PutItem(ctx, item); err != nil {
		return nil, err
	}
	return models.UserFromItem(item), nil
}

func (s *ledgerService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	item, err := s.store.GetItem(ctx, models.UserPK(userID), models.SKMetadata)
	if err != nil {
		return nil, err
	}
	return models.UserFromItem(item), nil
}

// CreateContract generates a fresh contract identifier and writes the
// contract with its wallet index entry and the global contract-listing
// entry. Both index entries are attributes on the same row, so the write
// is atomic.
func (s *ledgerService) CreateContract(ctx context.Context, input CreateContractInput) (*models.Contract, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidInput, err)
	}

	contractID := uuid.New().String()
	now := time.Now().UTC()
	item := &models.LedgerItem{
		PK:     models.ContractPK(contractID),
		SK:     models.SKMetadata,
		GSI1PK: models.WalletKey(input.AthleteWallet),
		GSI1SK: models.TimeSortKey(models.CategoryContract, now),
		GSI2PK: models.CategoryContract,
		GSI2SK: models.FormatTimestamp(now),
		Attributes: models.JSON{
			"user_id":              input.OwnerID,
			"athlete_wallet":       input.AthleteWallet,
			"sponsor_wallet":       input.SponsorWallet,
			"address":              input.Address,
			"abi":                  input.ABI,
			"appearances_required": input.AppearancesRequired,
			"payment_amount":       input.PaymentAmount,
			"platform_fee_percent": input.PlatformFeePercent.String(),
			"deployment_fee":       input.DeploymentFeeUSD.String(),
			"status":               string(models.ContractStatusActive),
			"created_at":           models.FormatTimestamp(now),
			"updated_at":           models.FormatTimestamp(now),
		},
	}
	if err := s.store.PutItem(ctx, item); err != nil {
		return nil, err
	}
	return models.ContractFromItem(item), nil
}

func (s *ledgerService) GetContract(ctx context.Context, contractID string) (*models.Contract, error) {
	item, err := s.store.GetItem(ctx, models.ContractPK(contractID), models.SKMetadata)
	if err != nil {
		return nil, err
	}
	return models.ContractFromItem(item), nil
}

// ListUserContracts lists contracts owned by a user via the global
// contract-listing index, filtered by owner. Contract volume per listing
// is expected to stay small; a dedicated owner index would replace the
// filter if that assumption breaks.
func (s *ledgerService) ListUserContracts(ctx context.Context, userID string) ([]models.Contract, error) {
	items, err := s.store.QueryIndex(ctx, kv.IndexGSI2, models.CategoryContract, kv.QueryOptions{})
	if err != nil {
		return nil, err
	}
	contracts := make([]models.Contract, 0, len(items))
	for i := range items {
		contract := models.ContractFromItem(&items[i])
		if contract.OwnerID == userID {
			contracts = append(contracts, *contract)
		}
	}
	return contracts, nil
}

// LogTransaction appends a transaction record under its contract, indexed
// by recipient wallet and by creation time.
func (s *ledgerService) LogTransaction(ctx context.Context, input LogTransactionInput) (*models.Transaction, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidInput, err)
	}

	txID := uuid.New().String()
	now := time.Now().UTC()
	item := &models.LedgerItem{
		PK:     models.ContractPK(input.ContractID),
		SK:     models.TransactionSK(txID),
		GSI1PK: models.WalletKey(input.RecipientWallet),
		GSI1SK: models.TimeSortKey(models.CategoryTransaction, now),
		GSI2PK: models.CategoryTransaction,
		GSI2SK: models.FormatTimestamp(now),
		Attributes: models.JSON{
			"tx_hash":          input.TxHash,
			"type":             input.Type,
			"amount":           input.Amount,
			"recipient_wallet": input.RecipientWallet,
			"created_at":       models.FormatTimestamp(now),
		},
	}
	if err := s.store.PutItem(ctx, item); err != nil {
		return nil, err
	}
	return models.TransactionFromItem(item), nil
}

func (s *ledgerService) ListContractTransactions(ctx context.Context, contractID string) ([]models.Transaction, error) {
	items, err := s.store.QueryPrefix(ctx, models.ContractPK(contractID), "TX#")
	if err != nil {
		return nil, err
	}
	txs := make([]models.Transaction, 0, len(items))
	for i := range items {
		txs = append(txs, *models.TransactionFromItem(&items[i]))
	}
	return txs, nil
}

func (s *ledgerService) ListWalletTransactions(ctx context.Context, wallet string, limit int, mostRecentFirst bool) ([]models.Transaction, error) {
	if limit <= 0 {
		limit = 50
	}
	items, err := s.store.QueryIndex(ctx, kv.IndexGSI1, models.WalletKey(wallet), kv.QueryOptions{
		SortPrefix: "TX#",
		Descending: mostRecentFirst,
		Limit:      limit,
	})
	if err != nil {
		return nil, err
	}
	txs := make([]models.Transaction, 0, len(items))
	for i := range items {
		txs = append(txs, *models.TransactionFromItem(&items[i]))
	}
	return txs, nil
}

// RecordFee appends a fee record of the given kind under the paying user.
// Each kind keeps its original item shape: deployment fees under their own
// FEE# partition, subscription and premium fees as sub-records under the
// user partition.
func (s *ledgerService) RecordFee(ctx context.Context, input RecordFeeInput) (*models.Fee, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidInput, err)
	}
	if input.AmountUSD.IsNegative() {
		return nil, fmt.Errorf("%w: fee amount must not be negative", errs.ErrInvalidInput)
	}

	id := uuid.New().String()
	now := time.Now().UTC()
	createdAt := models.FormatTimestamp(now)

	var item *models.LedgerItem
	switch input.Kind {
	case models.FeeKindDeployment:
		item = &models.LedgerItem{
			PK:     models.FeePK(id),
			SK:     models.SKDeployment,
			GSI1PK: models.UserPK(input.UserID),
			GSI1SK: models.TimeSortKey(models.CategoryDeployment, now),
			GSI2PK: models.CategoryDeployment,
			GSI2SK: createdAt,
			Attributes: models.JSON{
				"user_id":       input.UserID,
				"user_type":     input.UserType,
				"contract_type": input.Descriptor,
				"fee_usd":       input.AmountUSD.String(),
				"status":        string(models.FeeStatusCompleted),
				"created_at":    createdAt,
			},
		}
	case models.FeeKindSubscription:
		endDate := now.Add(subscriptionPeriod(input.Descriptor))
		item = &models.LedgerItem{
			PK:     models.UserPK(input.UserID),
			SK:     models.SubscriptionSK(id),
			GSI1PK: models.UserPK(input.UserID),
			GSI1SK: models.TimeSortKey(models.CategorySubscription, now),
			GSI2PK: models.CategorySubscription,
			GSI2SK: createdAt,
			Attributes: models.JSON{
				"user_id":    input.UserID,
				"user_type":  input.UserType,
				"plan":       input.Descriptor,
				"fee_usd":    input.AmountUSD.String(),
				"start_date": createdAt,
				"end_date":   models.FormatTimestamp(endDate),
				"status":     string(models.FeeStatusActive),
				"created_at": createdAt,
			},
		}
	case models.FeeKindPremium:
		item = &models.LedgerItem{
			PK:     models.UserPK(input.UserID),
			SK:     models.PremiumSK(id),
			GSI1PK: models.UserPK(input.UserID),
			GSI1SK: models.TimeSortKey(models.CategoryPremium, now),
			GSI2PK: models.CategoryPremium,
			GSI2SK: createdAt,
			Attributes: models.JSON{
				"user_id":      input.UserID,
				"user_type":    input.UserType,
				"feature_name": input.Descriptor,
				"fee_usd":      input.AmountUSD.String(),
				"status":       string(models.FeeStatusActive),
				"created_at":   createdAt,
			},
		}
	default:
		return nil, fmt.Errorf("%w: unknown fee kind %q", errs.ErrInvalidInput, input.Kind)
	}

	if err := s.store.PutItem(ctx, item); err != nil {
		return nil, err
	}
	return models.FeeFromItem(item)
}

// subscriptionPeriod maps a plan descriptor onto its billing period. Plans
// that do not name a cycle bill monthly.
func subscriptionPeriod(plan string) time.Duration {
	switch models.BillingCycle(plan) {
	case models.BillingCycleQuarterly:
		return 90 * 24 * time.Hour
	case models.BillingCycleAnnual:
		return 365 * 24 * time.Hour
	default:
		return 30 * 24 * time.Hour
	}
}

// ListFeesInRange returns fee records of one kind whose creation time
// falls in [start, end], in ascending creation-time order.
func (s *ledgerService) ListFeesInRange(ctx context.Context, kind models.FeeKind, start, end time.Time) ([]models.Fee, error) {
	category, err := kind.Category()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidInput, err)
	}
	items, err := s.store.QueryIndex(ctx, kv.IndexGSI2, category, kv.QueryOptions{
		SortFrom: models.FormatTimestamp(start),
		SortTo:   models.FormatTimestamp(end),
	})
	if err != nil {
		return nil, err
	}
	return decodeFees(items), nil
}

// ListUserFees returns all fee records for a user, ascending by time.
// Only fee records key the user index by USER#<id>, so no kind filter is
// needed.
func (s *ledgerService) ListUserFees(ctx context.Context, userID string) ([]models.Fee, error) {
	items, err := s.store.QueryIndex(ctx, kv.IndexGSI1, models.UserPK(userID), kv.QueryOptions{})
	if err != nil {
		return nil, err
	}
	return decodeFees(items), nil
}

// FeeAnalytics aggregates every recorded fee across all three kinds. This
// is the one full-scan style read; precomputed aggregates would replace it
// if fee volume grows past the access pattern this serves.
func (s *ledgerService) FeeAnalytics(ctx context.Context) (*models.FeeAnalytics, error) {
	total := decimal.Zero
	count := 0
	for _, category := range []string{
		models.CategoryDeployment,
		models.CategorySubscription,
		models.CategoryPremium,
	} {
		items, err := s.store.QueryIndex(ctx, kv.IndexGSI2, category, kv.QueryOptions{})
		if err != nil {
			return nil, err
		}
		for i := range items {
			fee, err := models.FeeFromItem(&items[i])
			if err != nil {
				continue
			}
			total = total.Add(fee.AmountUSD)
			count++
		}
	}

	analytics := &models.FeeAnalytics{
		TotalDeals:   count,
		TotalRevenue: total.Round(2),
		AvgFee:       decimal.Zero,
	}
	if count > 0 {
		analytics.AvgFee = total.Div(decimal.NewFromInt(int64(count))).Round(2)
	}
	return analytics, nil
}

// ItemsByDateRange returns raw ledger items of one category within the
// inclusive time range, for reporting.
func (s *ledgerService) ItemsByDateRange(ctx context.Context, category string, start, end time.Time) ([]models.LedgerItem, error) {
	return s.store.QueryIndex(ctx, kv.IndexGSI2, category, kv.QueryOptions{
		SortFrom: models.FormatTimestamp(start),
		SortTo:   models.FormatTimestamp(end),
	})
}

func decodeFees(items []models.LedgerItem) []models.Fee {
	fees := make([]models.Fee, 0, len(items))
	for i := range items {
		fee, err := models.FeeFromItem(&items[i])
		if err != nil {
			continue
		}
		fees = append(fees, *fee)
	}
	return fees
}
