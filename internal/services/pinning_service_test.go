package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nilbx/sponsorhub/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadJSONMetadata(t *testing.T) {
	var gotPath, gotAPIKey string
	var gotBody map[string]interface{}
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAPIKey = r.Header.Get("pinata_api_key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]string{"IpfsHash": "QmTestHash"})
	}))
	defer upstream.Close()

	service := NewPinningServiceWithBaseURL("key", "secret", upstream.URL, "https://gateway.example.com/ipfs")

	url, err := service.UploadJSONMetadata(context.Background(),
		map[string]interface{}{"name": "Jordan Legacy NFT"}, "NIL_NFT_Jordan")
	require.NoError(t, err)

	assert.Equal(t, "https://gateway.example.com/ipfs/QmTestHash", url)
	assert.Equal(t, "/pinning/pinJSONToIPFS", gotPath)
	assert.Equal(t, "key", gotAPIKey)
	assert.Equal(t, "NIL_NFT_Jordan",
		gotBody["pinataMetadata"].(map[string]interface{})["name"])
}

func TestUploadJSONMetadataDefaultName(t *testing.T) {
	var gotName string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotName = body["pinataMetadata"].(map[string]interface{})["name"].(string)
		json.NewEncoder(w).Encode(map[string]string{"IpfsHash": "QmTestHash"})
	}))
	defer upstream.Close()

	service := NewPinningServiceWithBaseURL("key", "secret", upstream.URL, "https://gateway.example.com/ipfs")

	_, err := service.UploadJSONMetadata(context.Background(),
		map[string]interface{}{"name": "Jordan"}, "")
	require.NoError(t, err)
	assert.Equal(t, "NIL_NFT_Metadata_Jordan", gotName)
}

func TestUploadJSONMetadataUpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
	}))
	defer upstream.Close()

	service := NewPinningServiceWithBaseURL("key", "secret", upstream.URL, "https://gateway.example.com/ipfs")

	_, err := service.UploadJSONMetadata(context.Background(),
		map[string]interface{}{"name": "Jordan"}, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrUpstreamFailure))
	assert.Contains(t, err.Error(), "401")
}

func TestUploadJSONMetadataMissingHash(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer upstream.Close()

	service := NewPinningServiceWithBaseURL("key", "secret", upstream.URL, "https://gateway.example.com/ipfs")

	_, err := service.UploadJSONMetadata(context.Background(),
		map[string]interface{}{"name": "Jordan"}, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrUpstreamFailure))
}

func TestCreateNFTMetadataDefaults(t *testing.T) {
	service := NewPinningService("key", "secret")

	metadata := service.CreateNFTMetadata(NFTMetadataArgs{
		AthleteName: "Jordan",
		AthleteID:   "athlete-1",
		Description: "Legacy NFT for Jordan",
		ImageURL:    "https://example.com/jordan.png",
	})

	assert.Equal(t, "Jordan Legacy NFT", metadata["name"])
	assert.Equal(t, "https://nilbx.com/athlete/athlete-1", metadata["external_url"])

	attributes := metadata["attributes"].([]map[string]interface{})
	require.Len(t, attributes, 3)
	assert.Equal(t, "Jordan", attributes[0]["value"])
}

func TestCreateNFTMetadataCustomAttributes(t *testing.T) {
	service := NewPinningService("key", "secret")

	custom := []map[string]interface{}{
		{"trait_type": "Sport", "value": "Basketball"},
	}
	metadata := service.CreateNFTMetadata(NFTMetadataArgs{
		AthleteName: "Jordan",
		Attributes:  custom,
	})

	attributes := metadata["attributes"].([]map[string]interface{})
	require.Len(t, attributes, 1)
	assert.Equal(t, "Basketball", attributes[0]["value"])
}
