package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nilbx/sponsorhub/internal/errs"
	"github.com/nilbx/sponsorhub/internal/kv"
	"github.com/nilbx/sponsorhub/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLedger(t *testing.T) LedgerService {
	store, err := kv.NewSqliteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		store.Close()
	})
	return NewLedgerService(store)
}

func TestCreateAndGetUser(t *testing.T) {
	ledger := setupTestLedger(t)
	ctx := context.Background()

	created, err := ledger.CreateUser(ctx, "user-1", "athlete@example.com", "athlete")
	require.NoError(t, err)
	assert.Equal(t, "user-1", created.ID)

	got, err := ledger.GetUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "athlete@example.com", got.Email)
	assert.Equal(t, "athlete", got.Role)
}

func TestCreateUserIdempotent(t *testing.T) {
	ledger := setupTestLedger(t)
	ctx := context.Background()

	_, err := ledger.CreateUser(ctx, "user-1", "first@example.com", "athlete")
	require.NoError(t, err)
	_, err = ledger.CreateUser(ctx, "user-1", "second@example.com", "athlete")
	require.NoError(t, err)

	got, err := ledger.GetUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "second@example.com", got.Email)
}

func TestGetUserNotFound(t *testing.T) {
	ledger := setupTestLedger(t)

	_, err := ledger.GetUser(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrNotFound))
}

func TestContractRoundTrip(t *testing.T) {
	ledger := setupTestLedger(t)
	ctx := context.Background()

	input := CreateContractInput{
		OwnerID:             "user-1",
		AthleteWallet:       "0x1111111111111111111111111111111111111111",
		SponsorWallet:       "0x2222222222222222222222222222222222222222",
		Address:             "0x3333333333333333333333333333333333333333",
		ABI:                 `[{"type":"function","name":"payAthlete"}]`,
		AppearancesRequired: 3,
		PaymentAmount:       "1000000000000000000",
		PlatformFeePercent:  decimal.NewFromFloat(4.0),
		DeploymentFeeUSD:    decimal.NewFromFloat(12.50),
	}
	created, err := ledger.CreateContract(ctx, input)
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := ledger.GetContract(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, input.OwnerID, got.OwnerID)
	assert.Equal(t, input.AthleteWallet, got.AthleteWallet)
	assert.Equal(t, input.SponsorWallet, got.SponsorWallet)
	assert.Equal(t, input.Address, got.Address)
	assert.Equal(t, input.ABI, got.ABI)
	assert.Equal(t, input.AppearancesRequired, got.AppearancesRequired)
	assert.Equal(t, input.PaymentAmount, got.PaymentAmount)
	assert.True(t, got.PlatformFeePercent.Equal(input.PlatformFeePercent))
	assert.True(t, got.DeploymentFeeUSD.Equal(input.DeploymentFeeUSD))
	assert.Equal(t, models.ContractStatusActive, got.Status)
}

func TestCreateContractMissingWallet(t *testing.T) {
	ledger := setupTestLedger(t)

	_, err := ledger.CreateContract(context.Background(), CreateContractInput{
		OwnerID: "user-1",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrInvalidInput))
}

func TestListUserContracts(t *testing.T) {
	ledger := setupTestLedger(t)
	ctx := context.Background()

	for _, owner := range []string{"user-1", "user-1", "user-2"} {
		_, err := ledger.CreateContract(ctx, CreateContractInput{
			OwnerID:       owner,
			AthleteWallet: "0x1111111111111111111111111111111111111111",
			SponsorWallet: "0x2222222222222222222222222222222222222222",
		})
		require.NoError(t, err)
	}

	contracts, err := ledger.ListUserContracts(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, contracts, 2)

	contracts, err = ledger.ListUserContracts(ctx, "user-3")
	require.NoError(t, err)
	assert.Empty(t, contracts)
}

func TestLogAndListContractTransactions(t *testing.T) {
	ledger := setupTestLedger(t)
	ctx := context.Background()

	tx, err := ledger.LogTransaction(ctx, LogTransactionInput{
		ContractID:      "contract-1",
		TxHash:          "0xaaa",
		Type:            "payment",
		Amount:          "500000000000000000",
		RecipientWallet: "0x1111111111111111111111111111111111111111",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, tx.ID)

	txs, err := ledger.ListContractTransactions(ctx, "contract-1")
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "0xaaa", txs[0].TxHash)
	assert.Equal(t, "contract-1", txs[0].ContractID)
}

func TestListWalletTransactionsMostRecentFirst(t *testing.T) {
	ledger := setupTestLedger(t)
	ctx := context.Background()
	wallet := "0x1111111111111111111111111111111111111111"

	for _, hash := range []string{"0xfirst", "0xsecond", "0xthird"} {
		_, err := ledger.LogTransaction(ctx, LogTransactionInput{
			ContractID:      "contract-1",
			TxHash:          hash,
			Type:            "payment",
			RecipientWallet: wallet,
		})
		require.NoError(t, err)
		// Sort keys carry microsecond precision; keep writes apart.
		time.Sleep(time.Millisecond)
	}

	txs, err := ledger.ListWalletTransactions(ctx, wallet, 0, true)
	require.NoError(t, err)
	require.Len(t, txs, 3)
	assert.Equal(t, "0xthird", txs[0].TxHash)
	assert.Equal(t, "0xfirst", txs[2].TxHash)

	limited, err := ledger.ListWalletTransactions(ctx, wallet, 2, true)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestRecordDeploymentFee(t *testing.T) {
	ledger := setupTestLedger(t)
	ctx := context.Background()

	fee, err := ledger.RecordFee(ctx, RecordFeeInput{
		Kind:       models.FeeKindDeployment,
		UserID:     "user-1",
		UserType:   "athlete",
		Descriptor: "sponsorship",
		AmountUSD:  decimal.NewFromFloat(12.50),
	})
	require.NoError(t, err)
	assert.Equal(t, models.FeeKindDeployment, fee.Kind)
	assert.Equal(t, "sponsorship", fee.Descriptor)
	assert.Equal(t, models.FeeStatusCompleted, fee.Status)
	assert.True(t, fee.AmountUSD.Equal(decimal.NewFromFloat(12.50)))
}

func TestRecordSubscriptionFeeHasPeriod(t *testing.T) {
	ledger := setupTestLedger(t)
	ctx := context.Background()

	fee, err := ledger.RecordFee(ctx, RecordFeeInput{
		Kind:       models.FeeKindSubscription,
		UserID:     "user-1",
		UserType:   "athlete",
		Descriptor: "quarterly",
		AmountUSD:  decimal.NewFromFloat(37.50),
	})
	require.NoError(t, err)
	assert.Equal(t, models.FeeKindSubscription, fee.Kind)
	assert.Equal(t, models.FeeStatusActive, fee.Status)
	require.NotNil(t, fee.StartDate)
	require.NotNil(t, fee.EndDate)
	assert.InDelta(t, 90*24*time.Hour, fee.EndDate.Sub(*fee.StartDate), float64(time.Minute))
}

func TestRecordFeeRejectsNegativeAmount(t *testing.T) {
	ledger := setupTestLedger(t)

	_, err := ledger.RecordFee(context.Background(), RecordFeeInput{
		Kind:      models.FeeKindPremium,
		UserID:    "user-1",
		AmountUSD: decimal.NewFromFloat(-5.00),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrInvalidInput))
}

func TestListFeesInRangeBounds(t *testing.T) {
	ledger := setupTestLedger(t)
	ctx := context.Background()

	before := time.Now().UTC().Add(-time.Second)
	_, err := ledger.RecordFee(ctx, RecordFeeInput{
		Kind:       models.FeeKindDeployment,
		UserID:     "user-1",
		Descriptor: "sponsorship",
		AmountUSD:  decimal.NewFromFloat(12.50),
	})
	require.NoError(t, err)
	after := time.Now().UTC().Add(time.Second)

	fees, err := ledger.ListFeesInRange(ctx, models.FeeKindDeployment, before, after)
	require.NoError(t, err)
	assert.Len(t, fees, 1)

	// A window that ends before the record excludes it.
	fees, err = ledger.ListFeesInRange(ctx, models.FeeKindDeployment,
		before.Add(-time.Hour), before)
	require.NoError(t, err)
	assert.Empty(t, fees)

	// Kinds are separate ranges.
	fees, err = ledger.ListFeesInRange(ctx, models.FeeKindPremium, before, after)
	require.NoError(t, err)
	assert.Empty(t, fees)
}

func TestListUserFeesAcrossKinds(t *testing.T) {
	ledger := setupTestLedger(t)
	ctx := context.Background()

	inputs := []RecordFeeInput{
		{Kind: models.FeeKindDeployment, UserID: "user-1", Descriptor: "sponsorship", AmountUSD: decimal.NewFromFloat(12.50)},
		{Kind: models.FeeKindSubscription, UserID: "user-1", Descriptor: "monthly", AmountUSD: decimal.NewFromFloat(15.00)},
		{Kind: models.FeeKindPremium, UserID: "user-1", Descriptor: "verified_badge", AmountUSD: decimal.NewFromFloat(7.50)},
		{Kind: models.FeeKindPremium, UserID: "user-2", Descriptor: "verified_badge", AmountUSD: decimal.NewFromFloat(7.50)},
	}
	for _, input := range inputs {
		_, err := ledger.RecordFee(ctx, input)
		require.NoError(t, err)
	}

	fees, err := ledger.ListUserFees(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, fees, 3)
}

func TestFeeAnalyticsAggregates(t *testing.T) {
	ledger := setupTestLedger(t)
	ctx := context.Background()

	empty, err := ledger.FeeAnalytics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.TotalDeals)
	assert.True(t, empty.AvgFee.IsZero())

	amounts := []float64{12.50, 15.00, 7.50}
	kinds := []models.FeeKind{models.FeeKindDeployment, models.FeeKindSubscription, models.FeeKindPremium}
	for i, amount := range amounts {
		_, err := ledger.RecordFee(ctx, RecordFeeInput{
			Kind:       kinds[i],
			UserID:     "user-1",
			Descriptor: "x",
			AmountUSD:  decimal.NewFromFloat(amount),
		})
		require.NoError(t, err)
	}

	analytics, err := ledger.FeeAnalytics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, analytics.TotalDeals)
	assert.True(t, analytics.TotalRevenue.Equal(decimal.NewFromFloat(35.00)),
		"total revenue was %s", analytics.TotalRevenue)
	assert.True(t, analytics.AvgFee.Equal(decimal.NewFromFloat(11.67)),
		"avg fee was %s", analytics.AvgFee)
}
