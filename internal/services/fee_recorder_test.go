package services

import (
	"context"
	"testing"

	"github.com/nilbx/sponsorhub/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeeRecorderRecordsEnqueuedFees(t *testing.T) {
	ledger := setupTestLedger(t)
	recorder := NewFeeRecorder(ledger, 8)

	recorder.Enqueue(RecordFeeInput{
		Kind:       models.FeeKindDeployment,
		UserID:     "user-1",
		Descriptor: "sponsorship",
		AmountUSD:  decimal.NewFromFloat(12.50),
	})
	recorder.Enqueue(RecordFeeInput{
		Kind:       models.FeeKindSubscription,
		UserID:     "user-1",
		Descriptor: "monthly",
		AmountUSD:  decimal.NewFromFloat(15.00),
	})

	// Close drains the queue before returning.
	recorder.Close()

	fees, err := ledger.ListUserFees(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Len(t, fees, 2)
}

func TestFeeRecorderInvalidRecordDoesNotStopWorker(t *testing.T) {
	ledger := setupTestLedger(t)
	recorder := NewFeeRecorder(ledger, 8)

	// Missing user id fails validation inside the worker; the failure is
	// logged and the worker keeps going.
	recorder.Enqueue(RecordFeeInput{
		Kind:      models.FeeKindDeployment,
		AmountUSD: decimal.NewFromFloat(12.50),
	})
	recorder.Enqueue(RecordFeeInput{
		Kind:       models.FeeKindDeployment,
		UserID:     "user-1",
		Descriptor: "sponsorship",
		AmountUSD:  decimal.NewFromFloat(12.50),
	})

	recorder.Close()

	fees, err := ledger.ListUserFees(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Len(t, fees, 1)
}

func TestFeeRecorderCloseIsIdempotent(t *testing.T) {
	ledger := setupTestLedger(t)
	recorder := NewFeeRecorder(ledger, 8)

	recorder.Close()
	recorder.Close()
}
