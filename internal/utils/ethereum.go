package utils

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

func IsValidEthereumAddress(address string) bool {
	return common.IsHexAddress(address)
}

// EthToWei converts a decimal ETH amount to wei, truncating any precision
// beyond 18 decimal places.
func EthToWei(amount decimal.Decimal) *big.Int {
	return amount.Mul(decimal.New(1, 18)).BigInt()
}
