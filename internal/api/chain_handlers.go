package api

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/nilbx/sponsorhub/internal/services"
)

func (s *APIServer) handleMintNFT(c *fiber.Ctx) error {
	if s.evm == nil {
		return respondUnavailable(c, "chain client")
	}

	var args services.MintLegacyNFTArgs
	if err := c.BodyParser(&args); err != nil {
		return respondBadRequest(c, "invalid request body")
	}

	txHash, err := s.evm.MintLegacyNFT(c.Context(), args)
	if err != nil {
		return respondError(c, err)
	}
	return respondSuccess(c, fiber.Map{"tx_hash": txHash})
}

func (s *APIServer) handleCreateTask(c *fiber.Ctx) error {
	if s.evm == nil {
		return respondUnavailable(c, "chain client")
	}

	var args services.CreateSponsorshipTaskArgs
	if err := c.BodyParser(&args); err != nil {
		return respondBadRequest(c, "invalid request body")
	}

	txHash, err := s.evm.CreateSponsorshipTask(c.Context(), args)
	if err != nil {
		return respondError(c, err)
	}
	return respondSuccess(c, fiber.Map{"tx_hash": txHash})
}

func (s *APIServer) handleApproveTask(c *fiber.Ctx) error {
	if s.evm == nil {
		return respondUnavailable(c, "chain client")
	}

	var req struct {
		TaskID uint64 `json:"task_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondBadRequest(c, "invalid request body")
	}

	txHash, err := s.evm.ApproveTask(c.Context(), req.TaskID)
	if err != nil {
		return respondError(c, err)
	}
	return respondSuccess(c, fiber.Map{"tx_hash": txHash})
}

func (s *APIServer) handleGetTask(c *fiber.Ctx) error {
	if s.evm == nil {
		return respondUnavailable(c, "chain client")
	}

	taskID, err := strconv.ParseUint(c.Params("task_id"), 10, 64)
	if err != nil {
		return respondBadRequest(c, "task_id must be a number")
	}

	task, err := s.evm.GetTaskDetails(c.Context(), taskID)
	if err != nil {
		return respondError(c, err)
	}
	return respondSuccess(c, fiber.Map{"task": task})
}

func (s *APIServer) handleAthleteNFTs(c *fiber.Ctx) error {
	if s.evm == nil {
		return respondUnavailable(c, "chain client")
	}

	nfts, err := s.evm.GetAthleteNFTs(c.Context(), c.Params("athlete_address"))
	if err != nil {
		return respondError(c, err)
	}
	return respondSuccess(c, fiber.Map{"nfts": nfts, "total": len(nfts)})
}
