package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/nilbx/sponsorhub/internal/api/middleware"
	"github.com/nilbx/sponsorhub/internal/services"
)

func (s *APIServer) handleCreateSponsorship(c *fiber.Ctx) error {
	if s.integration == nil {
		return respondUnavailable(c, "integration service")
	}

	var req services.CreateSponsorshipRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadRequest(c, "invalid request body")
	}

	// The token subject is authoritative for attribution.
	if user := middleware.GetAuthenticatedUser(c); user != nil {
		if user.Subject != "" {
			req.UserID = user.Subject
		}
		if req.UserType == "" {
			req.UserType = user.UserType
		}
	}

	result, err := s.integration.CreateSponsorship(c.Context(), req)
	if err != nil {
		return respondError(c, err)
	}
	return respondSuccess(c, fiber.Map{"sponsorship": result})
}

func (s *APIServer) handleCreateAthleteNFT(c *fiber.Ctx) error {
	if s.integration == nil {
		return respondUnavailable(c, "integration service")
	}

	var req services.CreateAthleteNFTRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadRequest(c, "invalid request body")
	}

	result, err := s.integration.CreateAthleteNFT(c.Context(), req)
	if err != nil {
		return respondError(c, err)
	}
	return respondSuccess(c, fiber.Map{"nft": result})
}

func (s *APIServer) handleAthleteAssets(c *fiber.Ctx) error {
	if s.integration == nil {
		return respondUnavailable(c, "integration service")
	}

	assets, err := s.integration.GetAthleteAssets(c.Context(), c.Params("athlete_address"))
	if err != nil {
		return respondError(c, err)
	}
	return respondSuccess(c, fiber.Map{"assets": assets})
}
