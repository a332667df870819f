package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/nilbx/sponsorhub/internal/services"
)

func (s *APIServer) handleUploadMetadata(c *fiber.Ctx) error {
	if s.pinning == nil {
		return respondUnavailable(c, "pinning gateway")
	}

	var args services.NFTMetadataArgs
	if err := c.BodyParser(&args); err != nil {
		return respondBadRequest(c, "invalid request body")
	}
	if args.AthleteName == "" || args.ImageURL == "" {
		return respondBadRequest(c, "athlete_name and image_url are required")
	}

	metadata := s.pinning.CreateNFTMetadata(args)
	url, err := s.pinning.UploadJSONMetadata(c.Context(), metadata, "")
	if err != nil {
		return respondError(c, err)
	}
	return respondSuccess(c, fiber.Map{"ipfs_url": url, "metadata": metadata})
}

func (s *APIServer) handleUploadJSON(c *fiber.Ctx) error {
	if s.pinning == nil {
		return respondUnavailable(c, "pinning gateway")
	}

	var req struct {
		Name    string                 `json:"name"`
		Content map[string]interface{} `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondBadRequest(c, "invalid request body")
	}
	if len(req.Content) == 0 {
		return respondBadRequest(c, "content is required")
	}

	url, err := s.pinning.UploadJSONMetadata(c.Context(), req.Content, req.Name)
	if err != nil {
		return respondError(c, err)
	}
	return respondSuccess(c, fiber.Map{"ipfs_url": url})
}
