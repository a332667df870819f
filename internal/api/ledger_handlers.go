package api

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/nilbx/sponsorhub/internal/services"
)

func (s *APIServer) handleCreateUser(c *fiber.Ctx) error {
	var req struct {
		UserID string `json:"user_id"`
		Email  string `json:"email"`
		Role   string `json:"role"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondBadRequest(c, "invalid request body")
	}

	user, err := s.ledger.CreateUser(c.Context(), req.UserID, req.Email, req.Role)
	if err != nil {
		return respondError(c, err)
	}
	return respondSuccess(c, fiber.Map{"user": user})
}

func (s *APIServer) handleGetUser(c *fiber.Ctx) error {
	user, err := s.ledger.GetUser(c.Context(), c.Params("user_id"))
	if err != nil {
		return respondError(c, err)
	}
	return respondSuccess(c, fiber.Map{"user": user})
}

func (s *APIServer) handleCreateContract(c *fiber.Ctx) error {
	var input services.CreateContractInput
	if err := c.BodyParser(&input); err != nil {
		return respondBadRequest(c, "invalid request body")
	}

	contract, err := s.ledger.CreateContract(c.Context(), input)
	if err != nil {
		return respondError(c, err)
	}
	return respondSuccess(c, fiber.Map{"contract": contract})
}

func (s *APIServer) handleGetContract(c *fiber.Ctx) error {
	contract, err := s.ledger.GetContract(c.Context(), c.Params("contract_id"))
	if err != nil {
		return respondError(c, err)
	}
	return respondSuccess(c, fiber.Map{"contract": contract})
}

func (s *APIServer) handleListUserContracts(c *fiber.Ctx) error {
	contracts, err := s.ledger.ListUserContracts(c.Context(), c.Params("user_id"))
	if err != nil {
		return respondError(c, err)
	}
	return respondSuccess(c, fiber.Map{"contracts": contracts, "count": len(contracts)})
}

func (s *APIServer) handleLogTransaction(c *fiber.Ctx) error {
	var input services.LogTransactionInput
	if err := c.BodyParser(&input); err != nil {
		return respondBadRequest(c, "invalid request body")
	}
	input.ContractID = c.Params("contract_id")

	tx, err := s.ledger.LogTransaction(c.Context(), input)
	if err != nil {
		return respondError(c, err)
	}
	return respondSuccess(c, fiber.Map{"transaction": tx})
}

func (s *APIServer) handleListContractTransactions(c *fiber.Ctx) error {
	txs, err := s.ledger.ListContractTransactions(c.Context(), c.Params("contract_id"))
	if err != nil {
		return respondError(c, err)
	}
	return respondSuccess(c, fiber.Map{"transactions": txs, "count": len(txs)})
}

func (s *APIServer) handleListWalletTransactions(c *fiber.Ctx) error {
	limit := 0
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			return respondBadRequest(c, "limit must be a non-negative number")
		}
		limit = parsed
	}

	txs, err := s.ledger.ListWalletTransactions(c.Context(), c.Params("wallet_address"), limit, true)
	if err != nil {
		return respondError(c, err)
	}
	return respondSuccess(c, fiber.Map{"transactions": txs, "count": len(txs)})
}

func (s *APIServer) handleListUserFees(c *fiber.Ctx) error {
	fees, err := s.ledger.ListUserFees(c.Context(), c.Params("user_id"))
	if err != nil {
		return respondError(c, err)
	}
	return respondSuccess(c, fiber.Map{"fees": fees, "count": len(fees)})
}
