package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nilbx/sponsorhub/internal/models"
	"github.com/nilbx/sponsorhub/internal/services"
	"github.com/shopspring/decimal"
)

func (s *APIServer) handleCalculateFees(c *fiber.Ctx) error {
	var req struct {
		DealValueUSD  decimal.Decimal `json:"deal_value_usd"`
		PremiumFeeUSD decimal.Decimal `json:"premium_fee_usd"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondBadRequest(c, "invalid request body")
	}

	breakdown, err := s.fees.CalculateDealFeesWithPremium(req.DealValueUSD, req.PremiumFeeUSD)
	if err != nil {
		return respondError(c, err)
	}
	return respondSuccess(c, fiber.Map{"fee_breakdown": breakdown.Rounded()})
}

// handleDeployContract records the flat deployment fee for a contract
// deployment initiated by the client.
func (s *APIServer) handleDeployContract(c *fiber.Ctx) error {
	var req struct {
		UserID       string `json:"user_id"`
		UserType     string `json:"user_type"`
		ContractType string `json:"contract_type"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondBadRequest(c, "invalid request body")
	}

	contractType := req.ContractType
	if contractType == "" {
		contractType = "sponsorship"
	}
	fee, err := s.ledger.RecordFee(c.Context(), services.RecordFeeInput{
		Kind:       models.FeeKindDeployment,
		UserID:     req.UserID,
		UserType:   req.UserType,
		Descriptor: contractType,
		AmountUSD:  s.fees.Structure().DeploymentFeeUSD,
	})
	if err != nil {
		return respondError(c, err)
	}
	return respondSuccess(c, fiber.Map{"fee": fee})
}

func (s *APIServer) handleSubscribe(c *fiber.Ctx) error {
	var req struct {
		UserID       string `json:"user_id"`
		UserType     string `json:"user_type"`
		BillingCycle string `json:"billing_cycle"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondBadRequest(c, "invalid request body")
	}

	cycle := models.BillingCycle(req.BillingCycle)
	if cycle == "" {
		cycle = models.BillingCycleMonthly
	}
	terms, err := s.fees.CalculateSubscriptionFee(cycle)
	if err != nil {
		return respondError(c, err)
	}

	fee, err := s.ledger.RecordFee(c.Context(), services.RecordFeeInput{
		Kind:       models.FeeKindSubscription,
		UserID:     req.UserID,
		UserType:   req.UserType,
		Descriptor: string(cycle),
		AmountUSD:  terms.PeriodTotalUSD,
	})
	if err != nil {
		return respondError(c, err)
	}
	return respondSuccess(c, fiber.Map{"fee": fee, "terms": terms})
}

func (s *APIServer) handlePremiumFeature(c *fiber.Ctx) error {
	var req struct {
		UserID      string          `json:"user_id"`
		UserType    string          `json:"user_type"`
		FeatureName string          `json:"feature_name"`
		FeeUSD      decimal.Decimal `json:"fee_usd"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondBadRequest(c, "invalid request body")
	}
	if !s.fees.ValidatePremiumFeatureFee(req.FeeUSD) {
		structure := s.fees.Structure()
		return respondBadRequest(c, "fee must be between $"+
			structure.PremiumFeeMinUSD.StringFixed(2)+" and $"+
			structure.PremiumFeeMaxUSD.StringFixed(2))
	}

	fee, err := s.ledger.RecordFee(c.Context(), services.RecordFeeInput{
		Kind:       models.FeeKindPremium,
		UserID:     req.UserID,
		UserType:   req.UserType,
		Descriptor: req.FeatureName,
		AmountUSD:  req.FeeUSD,
	})
	if err != nil {
		return respondError(c, err)
	}
	return respondSuccess(c, fiber.Map{"fee": fee})
}

// handleFeeAnalytics serves the ledger aggregates together with the
// static fee-structure summary.
func (s *APIServer) handleFeeAnalytics(c *fiber.Ctx) error {
	analytics, err := s.ledger.FeeAnalytics(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return respondSuccess(c, fiber.Map{
		"analytics": analytics,
		"summary":   s.fees.AnalyticsSummary(),
	})
}

func (s *APIServer) handleFeeStructure(c *fiber.Ctx) error {
	return respondSuccess(c, fiber.Map{"fee_structure": s.fees.Structure()})
}

// handleListFeesInRange serves fees of one kind between the from and to
// query parameters. Defaults cover the trailing 30 days.
func (s *APIServer) handleListFeesInRange(c *fiber.Ctx) error {
	kind := models.FeeKind(c.Params("category"))
	if _, err := kind.Category(); err != nil {
		return respondBadRequest(c, "unknown fee category")
	}

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -30)
	if v := c.Query("from"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return respondBadRequest(c, "from must be RFC 3339")
		}
		start = parsed
	}
	if v := c.Query("to"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return respondBadRequest(c, "to must be RFC 3339")
		}
		end = parsed
	}

	fees, err := s.ledger.ListFeesInRange(c.Context(), kind, start, end)
	if err != nil {
		return respondError(c, err)
	}
	return respondSuccess(c, fiber.Map{"fees": fees, "count": len(fees)})
}
