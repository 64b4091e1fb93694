// Package repository defines the record store interface and its sqlite implementation.
package repository

import (
	"context"

	"github.com/okian/medalgrid/internal/domain/model"
	"github.com/okian/medalgrid/internal/domain/rowmodel"
)

// Store is the authoritative record table behind the grid.
type Store interface {
	// Read returns one window of rows at the level the request addresses,
	// plus the total number of rows at that level.
	Read(ctx context.Context, req rowmodel.ReadRequest) (rowmodel.ReadResponse, error)

	// FilterValues returns the distinct values of a column as strings, with
	// the filters on every other column applied.
	FilterValues(ctx context.Context, req rowmodel.FilterValuesRequest) ([]string, error)

	// Create stores rec under a new id and returns the stored record.
	Create(ctx context.Context, rec model.Record) (model.Record, error)

	// CreateBatch stores records in one transaction and returns how many were written.
	CreateBatch(ctx context.Context, recs []model.Record) (int, error)

	// Get returns the record with the given id or ErrNotFound.
	Get(ctx context.Context, id int64) (model.Record, error)

	// Update replaces the record with the given id or returns ErrNotFound.
	Update(ctx context.Context, id int64, rec model.Record) (model.Record, error)

	// Delete removes the record with the given id or returns ErrNotFound.
	Delete(ctx context.Context, id int64) error

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)

	Close() error
}
