package kv

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/nilbx/sponsorhub/internal/errs"
	"github.com/nilbx/sponsorhub/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// gormStore implements Store on a relational backend through GORM. The
// ledger table carries the partition/sort key as a composite primary key
// and the two secondary indexes as indexed column pairs, which preserves
// the single-row write atomicity the ledger relies on.
type gormStore struct {
	db *gorm.DB
}

// NewSqliteStore opens (or creates) a SQLite-backed store at dbPath.
// Use ":memory:" for tests.
func NewSqliteStore(dbPath string) (Store, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	return newStore(sqlite.Open(dbPath))
}

// NewPostgresStore opens a PostgreSQL-backed store with the given DSN.
func NewPostgresStore(dsn string) (Store, error) {
	return newStore(postgres.Open(dsn))
}

func newStore(dialector gorm.Dialector) (Store, error) {
	// Configure GORM logger - only log errors and slow queries
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Error,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      false,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect: %v", errs.ErrStoreUnavailable, err)
	}

	store := &gormStore{db: db}
	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("%w: failed to migrate: %v", errs.ErrStoreUnavailable, err)
	}

	return store, nil
}

func (s *gormStore) migrate() error {
	return s.db.AutoMigrate(&models.LedgerItem{})
}

// PutItem creates or overwrites the item under its composite key.
func (s *gormStore) PutItem(ctx context.Context, item *models.LedgerItem) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(item).Error
	return translateStoreError(err)
}

// GetItem returns the item under the exact partition/sort key.
func (s *gormStore) GetItem(ctx context.Context, pk, sk string) (*models.LedgerItem, error) {
	var item models.LedgerItem
	err := s.db.WithContext(ctx).
		Where("pk = ? AND sk = ?", pk, sk).
		First(&item).Error
	if err != nil {
		return nil, translateStoreError(err)
	}
	return &item, nil
}

// QueryPrefix returns all items in a partition whose sort key begins with
// skPrefix, ascending.
func (s *gormStore) QueryPrefix(ctx context.Context, pk, skPrefix string) ([]models.LedgerItem, error) {
	var items []models.LedgerItem
	err := s.db.WithContext(ctx).
		Where("pk = ? AND sk LIKE ?", pk, skPrefix+"%").
		Order("sk ASC").
		Find(&items).Error
	if err != nil {
		return nil, translateStoreError(err)
	}
	return items, nil
}

// QueryIndex queries one of the two secondary indexes.
func (s *gormStore) QueryIndex(ctx context.Context, index Index, pk string, opts QueryOptions) ([]models.LedgerItem, error) {
	var pkColumn, skColumn string
	switch index {
	case IndexGSI1:
		pkColumn, skColumn = "gsi1_pk", "gsi1_sk"
	case IndexGSI2:
		pkColumn, skColumn = "gsi2_pk", "gsi2_sk"
	default:
		return nil, fmt.Errorf("%w: unknown index %q", errs.ErrInvalidInput, index)
	}

	query := s.db.WithContext(ctx).Where(pkColumn+" = ?", pk)
	if opts.SortPrefix != "" {
		query = query.Where(skColumn+" LIKE ?", opts.SortPrefix+"%")
	}
	if opts.SortFrom != "" {
		query = query.Where(skColumn+" >= ?", opts.SortFrom)
	}
	if opts.SortTo != "" {
		query = query.Where(skColumn+" <= ?", opts.SortTo)
	}

	order := skColumn + " ASC"
	if opts.Descending {
		order = skColumn + " DESC"
	}
	query = query.Order(order)

	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}

	var items []models.LedgerItem
	if err := query.Find(&items).Error; err != nil {
		return nil, translateStoreError(err)
	}
	return items, nil
}

// Close closes the connection pool.
func (s *gormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// translateStoreError maps backend errors onto the core taxonomy: record
// misses become ErrNotFound, everything else (including context deadline
// expiry) becomes ErrStoreUnavailable.
func translateStoreError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.ErrNotFound
	}
	return fmt.Errorf("%w: %v", errs.ErrStoreUnavailable, err)
}
