package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FeeStructure is the platform fee configuration. Zero-value fields are
// replaced by defaults at load time; see DefaultFeeStructure.
type FeeStructure struct {
	TransactionFeePercent     decimal.Decimal `json:"transaction_fee_percent"`
	DeploymentFeeUSD          decimal.Decimal `json:"deployment_fee_usd"`
	SubscriptionFeeMonthlyUSD decimal.Decimal `json:"subscription_fee_monthly_usd"`
	PremiumFeeMinUSD          decimal.Decimal `json:"premium_fee_min_usd"`
	PremiumFeeMaxUSD          decimal.Decimal `json:"premium_fee_max_usd"`
	MaxEffectiveFeePercent    decimal.Decimal `json:"max_effective_fee_percent"`
}

// DefaultFeeStructure returns the platform defaults: 4% transaction fee,
// $12.50 deployment, $15/month subscription, $5-10 premium features, and a
// hard 11% effective-fee cap.
func DefaultFeeStructure() FeeStructure {
	return FeeStructure{
		TransactionFeePercent:     decimal.NewFromFloat(4.0),
		DeploymentFeeUSD:          decimal.NewFromFloat(12.50),
		SubscriptionFeeMonthlyUSD: decimal.NewFromFloat(15.00),
		PremiumFeeMinUSD:          decimal.NewFromFloat(5.00),
		PremiumFeeMaxUSD:          decimal.NewFromFloat(10.00),
		MaxEffectiveFeePercent:    decimal.NewFromFloat(11.0),
	}
}

// FeeBreakdown is the per-deal fee derivation. All amounts are exact;
// Rounded produces the display form (USD to 2 places, percent to 1).
type FeeBreakdown struct {
	DealValueUSD       decimal.Decimal `json:"deal_value_usd"`
	TransactionFeeUSD  decimal.Decimal `json:"transaction_fee_usd"`
	DeploymentFeeUSD   decimal.Decimal `json:"deployment_fee_usd"`
	SubscriptionFeeUSD decimal.Decimal `json:"subscription_fee_usd"`
	PremiumFeeUSD      decimal.Decimal `json:"premium_fee_usd"`
	TotalFeeUSD        decimal.Decimal `json:"total_effective_fee_usd"`
	EffectivePercent   decimal.Decimal `json:"effective_fee_percentage"`
	// Adjusted is set when the small-deal discount tiers reduced the
	// transaction fee to respect the effective-fee cap.
	Adjusted bool `json:"cap_adjustment_applied"`
}

// Rounded returns a copy with USD amounts rounded to 2 decimal places and
// the effective percentage to 1, for display only. Cap comparisons always
// use the unrounded values.
func (b FeeBreakdown) Rounded() FeeBreakdown {
	return FeeBreakdown{
		DealValueUSD:       b.DealValueUSD.Round(2),
		TransactionFeeUSD:  b.TransactionFeeUSD.Round(2),
		DeploymentFeeUSD:   b.DeploymentFeeUSD.Round(2),
		SubscriptionFeeUSD: b.SubscriptionFeeUSD.Round(2),
		PremiumFeeUSD:      b.PremiumFeeUSD.Round(2),
		TotalFeeUSD:        b.TotalFeeUSD.Round(2),
		EffectivePercent:   b.EffectivePercent.Round(1),
		Adjusted:           b.Adjusted,
	}
}

// SubscriptionTerms describes the billing terms for one subscription cycle.
type SubscriptionTerms struct {
	BillingCycle     BillingCycle    `json:"billing_cycle"`
	MonthlyFeeUSD    decimal.Decimal `json:"monthly_fee_usd"`
	Periods          int             `json:"total_periods"`
	PeriodTotalUSD   decimal.Decimal `json:"total_period_fee_usd"`
	NextBillingDate  time.Time       `json:"next_billing_date"`
	FeaturesIncluded []string        `json:"features_included"`
}

// FeeAnalytics is the aggregate over all recorded fees.
type FeeAnalytics struct {
	TotalDeals   int             `json:"total_deals"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	AvgFee       decimal.Decimal `json:"avg_fee"`
}
