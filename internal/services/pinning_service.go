package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nilbx/sponsorhub/internal/errs"
)

const (
	defaultPinningBaseURL = "https://api.pinata.cloud"
	defaultGatewayBaseURL = "https://gateway.pinata.cloud/ipfs"
)

// PinningService pins NFT metadata to content-addressed storage through
// the Pinata gateway and builds the standardized metadata documents.
type PinningService interface {
	// UploadJSONMetadata pins a JSON document and returns its gateway URL.
	UploadJSONMetadata(ctx context.Context, content map[string]interface{}, name string) (string, error)
	// CreateNFTMetadata builds the standardized legacy-NFT metadata
	// document. A nil attributes slice gets the default attribute set.
	CreateNFTMetadata(args NFTMetadataArgs) map[string]interface{}
}

type NFTMetadataArgs struct {
	AthleteName string                   `json:"athlete_name"`
	AthleteID   string                   `json:"athlete_id"`
	Description string                   `json:"description"`
	ImageURL    string                   `json:"image_url"`
	Attributes  []map[string]interface{} `json:"attributes"`
}

type pinningService struct {
	apiKey     string
	secretKey  string
	baseURL    string
	gatewayURL string
	client     *http.Client
}

// NewPinningService creates a Pinata-backed PinningService.
func NewPinningService(apiKey, secretKey string) PinningService {
	return NewPinningServiceWithBaseURL(apiKey, secretKey, defaultPinningBaseURL, defaultGatewayBaseURL)
}

// NewPinningServiceWithBaseURL allows overriding the gateway endpoints,
// used by tests.
func NewPinningServiceWithBaseURL(apiKey, secretKey, baseURL, gatewayURL string) PinningService {
	return &pinningService{
		apiKey:     apiKey,
		secretKey:  secretKey,
		baseURL:    baseURL,
		gatewayURL: gatewayURL,
		client:     &http.Client{Timeout: 30 * time.Second},
	}
}

type pinRequest struct {
	PinataContent  map[string]interface{} `json:"pinataContent"`
	PinataMetadata pinMetadata            `json:"pinataMetadata"`
}

type pinMetadata struct {
	Name string `json:"name"`
}

type pinResponse struct {
	IpfsHash string `json:"IpfsHash"`
}

func (s *pinningService) UploadJSONMetadata(ctx context.Context, content map[string]interface{}, name string) (string, error) {
	if name == "" {
		label := "unknown"
		if v, ok := content["name"].(string); ok && v != "" {
			label = v
		}
		name = "NIL_NFT_Metadata_" + label
	}

	body, err := json.Marshal(pinRequest{
		PinataContent:  content,
		PinataMetadata: pinMetadata{Name: name},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal pin request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.baseURL+"/pinning/pinJSONToIPFS", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create pin request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("pinata_api_key", s.apiKey)
	req.Header.Set("pinata_secret_api_key", s.secretKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: pin request failed: %v", errs.ErrUpstreamFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("%w: pinning gateway returned %d: %s", errs.ErrUpstreamFailure, resp.StatusCode, msg)
	}

	var result pinResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("%w: failed to decode pin response: %v", errs.ErrUpstreamFailure, err)
	}
	if result.IpfsHash == "" {
		return "", fmt.Errorf("%w: pin response missing hash", errs.ErrUpstreamFailure)
	}

	return fmt.Sprintf("%s/%s", s.gatewayURL, result.IpfsHash), nil
}

func (s *pinningService) CreateNFTMetadata(args NFTMetadataArgs) map[string]interface{} {
	attributes := args.Attributes
	if attributes == nil {
		attributes = []map[string]interface{}{
			{"trait_type": "Athlete", "value": args.AthleteName},
			{"trait_type": "Type", "value": "Legacy NFT"},
			{"trait_type": "Platform", "value": "NILbx"},
		}
	}

	return map[string]interface{}{
		"name":         fmt.Sprintf("%s Legacy NFT", args.AthleteName),
		"description":  args.Description,
		"image":        args.ImageURL,
		"external_url": fmt.Sprintf("https://nilbx.com/athlete/%s", args.AthleteID),
		"attributes":   attributes,
	}
}
