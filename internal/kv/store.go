// Package kv provides the generic key-value table behind the ledger:
// whole-item puts, exact-key gets, partition-prefix queries, and two
// independently queryable secondary indexes with range conditions on their
// sort attribute.
package kv

import (
	"context"

	"github.com/nilbx/sponsorhub/internal/models"
)

// Index names one of the two secondary indexes on the ledger table.
type Index string

const (
	// IndexGSI1 keys on WALLET#<address> / USER#<id> with a type-prefixed,
	// time-ordered sort value.
	IndexGSI1 Index = "gsi1"
	// IndexGSI2 keys on a fixed category token with an ISO-8601 timestamp
	// sort value, enabling global time-range scans per category.
	IndexGSI2 Index = "gsi2"
)

// QueryOptions narrows an index query. Zero values mean "no condition".
type QueryOptions struct {
	// SortPrefix keeps only items whose index sort value starts with the
	// given prefix (begins_with condition).
	SortPrefix string
	// SortFrom/SortTo keep items whose sort value falls in the inclusive
	// range [SortFrom, SortTo] (between condition). Either bound may be
	// empty for a half-open range.
	SortFrom string
	SortTo   string
	// Descending reverses the key order (most recent first for
	// time-ordered sort values).
	Descending bool
	// Limit caps the number of returned items; 0 means unlimited.
	Limit int
}

// Store is the key-value backend contract. Implementations must guarantee
// single-item write atomicity: an item's primary key and both index
// attributes live on the same physical row, so a put either lands entirely
// or not at all. Every operation honors ctx cancellation and deadlines and
// reports transport failures as errs.ErrStoreUnavailable.
type Store interface {
	// PutItem creates or overwrites the whole item (last-write-wins).
	PutItem(ctx context.Context, item *models.LedgerItem) error
	// GetItem returns the item under the exact key, or errs.ErrNotFound.
	GetItem(ctx context.Context, pk, sk string) (*models.LedgerItem, error)
	// QueryPrefix returns all items in a partition whose sort key starts
	// with skPrefix, in ascending sort-key order.
	QueryPrefix(ctx context.Context, pk, skPrefix string) ([]models.LedgerItem, error)
	// QueryIndex queries one of the secondary indexes by its partition
	// value, in sort order.
	QueryIndex(ctx context.Context, index Index, pk string, opts QueryOptions) ([]models.LedgerItem, error)
	// Close releases the underlying connection pool.
	Close() error
}
