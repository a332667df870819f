package services

import (
	"fmt"
	"time"

	"github.com/nilbx/sponsorhub/internal/errs"
	"github.com/nilbx/sponsorhub/internal/models"
	"github.com/shopspring/decimal"
)

// FeeService derives per-deal fee breakdowns from the platform fee
// structure. All operations are pure functions of their inputs, hold no
// state between calls, and are safe for concurrent use.
type FeeService interface {
	// CalculateDealFees computes the full fee breakdown for a sponsorship
	// deal, with no premium feature fee.
	CalculateDealFees(dealValueUSD decimal.Decimal) (models.FeeBreakdown, error)
	// CalculateDealFeesWithPremium computes the breakdown with an explicit
	// premium feature fee, which must fall within the configured bounds.
	CalculateDealFeesWithPremium(dealValueUSD, premiumFeeUSD decimal.Decimal) (models.FeeBreakdown, error)
	// ValidatePremiumFeatureFee reports whether feeUSD lies within the
	// configured premium feature bounds, inclusive on both ends.
	ValidatePremiumFeatureFee(feeUSD decimal.Decimal) bool
	// CalculateSubscriptionFee returns the billing terms for a cycle.
	// Unrecognized cycles are rejected.
	CalculateSubscriptionFee(cycle models.BillingCycle) (models.SubscriptionTerms, error)
	// AnalyticsSummary describes the fee structure with sample
	// calculations for dashboard display.
	AnalyticsSummary() FeeAnalyticsSummary
	// Structure returns the fee structure in effect.
	Structure() models.FeeStructure
}

// FeeAnalyticsSummary is the static fee-structure description served on
// the analytics endpoint alongside the ledger aggregates.
type FeeAnalyticsSummary struct {
	FeeStructure       map[string]string              `json:"fee_structure"`
	Competitiveness    map[string]string              `json:"competitiveness"`
	SampleCalculations map[string]models.FeeBreakdown `json:"sample_calculations"`
}

type feeService struct {
	structure models.FeeStructure
}

// NewFeeService creates a FeeService with the given structure.
func NewFeeService(structure models.FeeStructure) FeeService {
	return &feeService{structure: structure}
}

var hundred = decimal.NewFromInt(100)

// Small-deal discount tiers: below $1000 the transaction fee is capped at
// 3% of deal value, from $1000 to $2000 at 3.5%. Deals of $2000 and above
// keep the full rate even when the effective percentage still exceeds the
// cap; that gap is intentional pending a product decision.
var (
	smallDealCeiling  = decimal.NewFromInt(1000)
	mediumDealCeiling = decimal.NewFromInt(2000)
	smallDealRate     = decimal.NewFromFloat(0.03)
	mediumDealRate    = decimal.NewFromFloat(0.035)
)

func (s *feeService) CalculateDealFees(dealValueUSD decimal.Decimal) (models.FeeBreakdown, error) {
	return s.calculate(dealValueUSD, decimal.Zero)
}

func (s *feeService) CalculateDealFeesWithPremium(dealValueUSD, premiumFeeUSD decimal.Decimal) (models.FeeBreakdown, error) {
	if !premiumFeeUSD.IsZero() && !s.ValidatePremiumFeatureFee(premiumFeeUSD) {
		return models.FeeBreakdown{}, fmt.Errorf("%w: premium fee %s outside bounds %s-%s",
			errs.ErrInvalidInput, premiumFeeUSD.StringFixed(2),
			s.structure.PremiumFeeMinUSD.StringFixed(2), s.structure.PremiumFeeMaxUSD.StringFixed(2))
	}
	return s.calculate(dealValueUSD, premiumFeeUSD)
}

func (s *feeService) calculate(dealValueUSD, premiumFeeUSD decimal.Decimal) (models.FeeBreakdown, error) {
	if dealValueUSD.LessThanOrEqual(decimal.Zero) {
		return models.FeeBreakdown{}, fmt.Errorf("%w: deal value must be positive, got %s",
			errs.ErrInvalidInput, dealValueUSD)
	}

	transactionFee := dealValueUSD.Mul(s.structure.TransactionFeePercent).Div(hundred)
	deploymentFee := s.structure.DeploymentFeeUSD
	subscriptionFee := s.structure.SubscriptionFeeMonthlyUSD

	total := transactionFee.Add(deploymentFee).Add(subscriptionFee).Add(premiumFeeUSD)
	effectivePercent := total.Div(dealValueUSD).Mul(hundred)

	adjusted := false
	if effectivePercent.GreaterThan(s.structure.MaxEffectiveFeePercent) {
		capped := transactionFee
		switch {
		case dealValueUSD.LessThan(smallDealCeiling):
			capped = decimal.Min(transactionFee, dealValueUSD.Mul(smallDealRate))
		case dealValueUSD.LessThan(mediumDealCeiling):
			capped = decimal.Min(transactionFee, dealValueUSD.Mul(mediumDealRate))
		}
		adjusted = capped.LessThan(transactionFee)
		transactionFee = capped

		// Single recomputation; no iterative refinement. Very small deals
		// can remain above the cap after adjustment.
		total = transactionFee.Add(deploymentFee).Add(subscriptionFee).Add(premiumFeeUSD)
		effectivePercent = total.Div(dealValueUSD).Mul(hundred)
	}

	return models.FeeBreakdown{
		DealValueUSD:       dealValueUSD,
		TransactionFeeUSD:  transactionFee,
		DeploymentFeeUSD:   deploymentFee,
		SubscriptionFeeUSD: subscriptionFee,
		PremiumFeeUSD:      premiumFeeUSD,
		TotalFeeUSD:        total,
		EffectivePercent:   effectivePercent,
		Adjusted:           adjusted,
	}, nil
}

func (s *feeService) ValidatePremiumFeatureFee(feeUSD decimal.Decimal) bool {
	return feeUSD.GreaterThanOrEqual(s.structure.PremiumFeeMinUSD) &&
		feeUSD.LessThanOrEqual(s.structure.PremiumFeeMaxUSD)
}

func (s *feeService) CalculateSubscriptionFee(cycle models.BillingCycle) (models.SubscriptionTerms, error) {
	var (
		monthlyFee decimal.Decimal
		periods    int
		duration   time.Duration
	)

	switch cycle {
	case models.BillingCycleMonthly:
		monthlyFee = s.structure.SubscriptionFeeMonthlyUSD
		periods = 1
		duration = 30 * 24 * time.Hour
	case models.BillingCycleQuarterly:
		monthlyFee = decimal.NewFromFloat(12.50)
		periods = 3
		duration = 90 * 24 * time.Hour
	case models.BillingCycleAnnual:
		monthlyFee = decimal.NewFromFloat(10.00)
		periods = 12
		duration = 365 * 24 * time.Hour
	default:
		return models.SubscriptionTerms{}, fmt.Errorf("%w: unrecognized billing cycle %q",
			errs.ErrInvalidInput, cycle)
	}

	return models.SubscriptionTerms{
		BillingCycle:    cycle,
		MonthlyFeeUSD:   monthlyFee,
		Periods:         periods,
		PeriodTotalUSD:  monthlyFee.Mul(decimal.NewFromInt(int64(periods))),
		NextBillingDate: time.Now().UTC().Add(duration),
		FeaturesIncluded: []string{
			"Real-time transaction monitoring",
			"Basic analytics dashboard",
			"Email notifications",
			"API access for integration",
		},
	}, nil
}

func (s *feeService) AnalyticsSummary() FeeAnalyticsSummary {
	samples := make(map[string]models.FeeBreakdown, 3)
	for label, value := range map[string]int64{
		"small_deal_500":   500,
		"medium_deal_1000": 1000,
		"large_deal_5000":  5000,
	} {
		breakdown, err := s.CalculateDealFees(decimal.NewFromInt(value))
		if err != nil {
			continue
		}
		samples[label] = breakdown.Rounded()
	}

	return FeeAnalyticsSummary{
		FeeStructure: map[string]string{
			"transaction_fee":      fmt.Sprintf("%s%% of payment amount (on-chain)", s.structure.TransactionFeePercent),
			"deployment_fee":       fmt.Sprintf("$%s per contract", s.structure.DeploymentFeeUSD.StringFixed(2)),
			"subscription_fee":     fmt.Sprintf("$%s/month per user (monitoring/analytics)", s.structure.SubscriptionFeeMonthlyUSD.StringFixed(2)),
			"premium_features":     fmt.Sprintf("$%s-%s per feature", s.structure.PremiumFeeMinUSD.StringFixed(2), s.structure.PremiumFeeMaxUSD.StringFixed(2)),
			"target_effective_fee": "6-8% total per deal",
		},
		Competitiveness: map[string]string{
			"vs_nil_platforms":    "10-20% fees, undercut by 2-12%",
			"vs_blockchain_norms": "Matches Request Network (1-5%)",
			"retention_focus":     fmt.Sprintf("Under %s%% cap maintains user trust", s.structure.MaxEffectiveFeePercent),
		},
		SampleCalculations: samples,
	}
}

func (s *feeService) Structure() models.FeeStructure {
	return s.structure
}
