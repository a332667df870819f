package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// JSON is a custom type for JSON attribute columns
type JSON map[string]interface{}

// Implement the driver.Valuer interface for JSON type
func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Implement the sql.Scanner interface for JSON type
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	case nil:
		*j = nil
		return nil
	default:
		return errors.New("type assertion to []byte failed")
	}

	if len(bytes) == 0 {
		*j = nil
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// LedgerItem is one row of the single ledger table. Every persisted entity
// (user, contract, transaction, fee) is stored as one item under the
// partition/sort key scheme below; the two secondary indexes are
// denormalized attributes on the same row, so a single write covers the
// primary key and both indexes.
//
// Key scheme:
//
//	PK    USER#<id> | CONTRACT#<id> | FEE#<id>
//	SK    METADATA | DEPLOYMENT | TX#<id> | SUB#<id> | PREMIUM#<id>
//	GSI1  WALLET#<address> or USER#<id>, sorted by <type>#<timestamp>
//	GSI2  category token (TX, FEE, SUB, PREMIUM, CONTRACT), sorted by an
//	      ISO-8601 UTC timestamp for global time-range scans
type LedgerItem struct {
	PK         string    `gorm:"column:pk;primaryKey;type:varchar(255)" json:"pk"`
	SK         string    `gorm:"column:sk;primaryKey;type:varchar(255)" json:"sk"`
	GSI1PK     string    `gorm:"column:gsi1_pk;type:varchar(255);index:idx_gsi1,priority:1" json:"gsi1_pk,omitempty"`
	GSI1SK     string    `gorm:"column:gsi1_sk;type:varchar(255);index:idx_gsi1,priority:2" json:"gsi1_sk,omitempty"`
	GSI2PK     string    `gorm:"column:gsi2_pk;type:varchar(255);index:idx_gsi2,priority:1" json:"gsi2_pk,omitempty"`
	GSI2SK     string    `gorm:"column:gsi2_sk;type:varchar(255);index:idx_gsi2,priority:2" json:"gsi2_sk,omitempty"`
	Attributes JSON      `gorm:"type:text" json:"attributes"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (LedgerItem) TableName() string {
	return "ledger_items"
}

// TimestampLayout is the fixed-width ISO-8601 UTC layout used for
// time-ordered sort keys. Fixed fractional digits keep lexicographic order
// equal to chronological order.
const TimestampLayout = "2006-01-02T15:04:05.000000Z"

// FormatTimestamp renders t in the sortable ISO-8601 UTC layout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

const (
	SKMetadata   = "METADATA"
	SKDeployment = "DEPLOYMENT"
)

// Category tokens for the global time-range index (GSI2).
const (
	CategoryContract     = "CONTRACT"
	CategoryTransaction  = "TX"
	CategoryDeployment   = "FEE"
	CategorySubscription = "SUB"
	CategoryPremium      = "PREMIUM"
)

func UserPK(userID string) string         { return "USER#" + userID }
func ContractPK(contractID string) string { return "CONTRACT#" + contractID }
func FeePK(feeID string) string           { return "FEE#" + feeID }
func WalletKey(address string) string     { return "WALLET#" + address }

func TransactionSK(txID string) string   { return "TX#" + txID }
func SubscriptionSK(subID string) string { return "SUB#" + subID }
func PremiumSK(featureID string) string  { return "PREMIUM#" + featureID }

// TimeSortKey builds a type-prefixed, time-ordered sort value for GSI1,
// e.g. "TX#2026-01-02T15:04:05.000000Z".
func TimeSortKey(prefix string, t time.Time) string {
	return fmt.Sprintf("%s#%s", prefix, FormatTimestamp(t))
}
