// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// SequenceRepositoryImpl implements SequenceRepository on top of the
// sequence_counters table using a single atomic upsert. The store lacks native
// auto-increment for application-assigned ids, so allocation must be one
// server-side find-and-modify; a read followed by a write would let two
// concurrent callers observe the same value.
type SequenceRepositoryImpl struct {
	DB *gorm.DB
}

// NewSequenceRepository creates a new sequence repository
func NewSequenceRepository(db *gorm.DB) SequenceRepository {
	return &SequenceRepositoryImpl{DB: db}
}

func (r *SequenceRepositoryImpl) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(TxContextKey).(*gorm.DB); ok && tx != nil {
		return tx
	}
	return r.DB
}

// Next allocates the next value for the named sequence. A missing counter row
// is created with counter=1 and 1 is returned. Any failure aborts the
// enclosing write; there is no fallback id source.
func (r *SequenceRepositoryImpl) Next(ctx context.Context, name string) (uint64, error) {
	db := r.getDB(ctx)

	var value uint64
	err := db.Raw(`
		INSERT INTO sequence_counters (name, counter, created_at, updated_at)
		VALUES (?, 1, NOW() AT TIME ZONE 'UTC', NOW() AT TIME ZONE 'UTC')
		ON CONFLICT (name) DO UPDATE
		SET counter = sequence_counters.counter + 1,
		    updated_at = NOW() AT TIME ZONE 'UTC'
		RETURNING counter`, name).Scan(&value).Error
	if err != nil {
		return 0, fmt.Errorf("failed to allocate sequence value for %q: %w", name, err)
	}

	return value, nil
}
