package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestIsValidEthereumAddress(t *testing.T) {
	assert.True(t, IsValidEthereumAddress("0x1111111111111111111111111111111111111111"))
	assert.True(t, IsValidEthereumAddress("0xAbCd111111111111111111111111111111111111"))
	assert.False(t, IsValidEthereumAddress(""))
	assert.False(t, IsValidEthereumAddress("0x123"))
	assert.False(t, IsValidEthereumAddress("not-an-address"))
}

func TestEthToWei(t *testing.T) {
	assert.Equal(t, "1000000000000000000", EthToWei(decimal.NewFromInt(1)).String())
	assert.Equal(t, "250000000000000000", EthToWei(decimal.NewFromFloat(0.25)).String())
	assert.Equal(t, "0", EthToWei(decimal.Zero).String())
}
