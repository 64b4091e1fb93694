// Package grid binds an external server-side row model grid engine to the
// backend through the data service.
package grid

import (
	"github.com/okian/medalgrid/internal/domain/rowmodel"
)

// Row model settings handed to the engine.
const (
	RowModelServerSide = "serverSide"

	StoreTypeFull    = "full"
	StoreTypePartial = "partial"
)

// Options carries what differs between deployments of the bridge.
type Options struct {
	// ServerFilterValues sources set filter values from the backend.
	ServerFilterValues bool `json:"serverFilterValues"`
	// LogTransactions logs every engine transaction result at info level.
	LogTransactions bool `json:"logTransactions"`
}

// DefaultOptions enables server-sourced filter values.
func DefaultOptions() Options {
	return Options{ServerFilterValues: true}
}

// StoreParams is the engine's cache block policy.
type StoreParams struct {
	StoreType        string `json:"storeType"`
	CacheBlockSize   int    `json:"cacheBlockSize"`
	MaxBlocksInCache int    `json:"maxBlocksInCache"`
}

// ServerSideStoreParams picks the cache policy for the current grouping.
// Grouped views keep a bounded full store; flat views page on demand.
func ServerSideStoreParams(rowGroupCols []rowmodel.Column) StoreParams {
	if len(rowGroupCols) > 0 {
		return StoreParams{StoreType: StoreTypeFull, CacheBlockSize: 100, MaxBlocksInCache: 5}
	}
	return StoreParams{StoreType: StoreTypePartial, CacheBlockSize: 20, MaxBlocksInCache: -1}
}

// StorePolicy lists both branches of ServerSideStoreParams for clients that
// cannot call back into Go.
type StorePolicy struct {
	Grouped StoreParams `json:"grouped"`
	Flat    StoreParams `json:"flat"`
}

func storePolicy() StorePolicy {
	return StorePolicy{
		Grouped: ServerSideStoreParams([]rowmodel.Column{{ID: "grouped"}}),
		Flat:    ServerSideStoreParams(nil),
	}
}

// AutoGroupColumnDef configures the generated group column.
type AutoGroupColumnDef struct {
	Flex     float64 `json:"flex"`
	Filter   bool    `json:"filter"`
	Sortable bool    `json:"sortable"`
}

// DefaultColDef applies to every column.
type DefaultColDef struct {
	Flex           float64 `json:"flex"`
	Sortable       bool    `json:"sortable"`
	EnableRowGroup bool    `json:"enableRowGroup"`
}

// GridOptions is the configuration handed to the engine once at start up.
type GridOptions struct {
	RowModelType        string                `json:"rowModelType"`
	ServerSideStoreType string                `json:"serverSideStoreType"`
	RowGroupPanelShow   string                `json:"rowGroupPanelShow"`
	RowSelection        string                `json:"rowSelection"`
	DefaultColDef       DefaultColDef         `json:"defaultColDef"`
	AutoGroupColumnDef  AutoGroupColumnDef    `json:"autoGroupColumnDef"`
	ColumnTypes         map[string]ColumnType `json:"columnTypes"`
	ColumnDefs          []ColumnDef           `json:"columnDefs"`
	Options             Options               `json:"options"`

	ServerSideStoreParams StorePolicy `json:"serverSideStoreParams"`
	// GetServerSideStoreParams is asked for the cache policy whenever the
	// grouping changes.
	GetServerSideStoreParams func([]rowmodel.Column) StoreParams `json:"-"`
}

// NewGridOptions builds the engine configuration. values is called when a
// set filter opens; it is ignored unless opts.ServerFilterValues is set.
func NewGridOptions(opts Options, values SetFilterValuesFunc) GridOptions {
	return GridOptions{
		RowModelType:        RowModelServerSide,
		ServerSideStoreType: StoreTypePartial,
		RowGroupPanelShow:   "always",
		RowSelection:        "single",
		DefaultColDef:       DefaultColDef{Flex: 1, Sortable: true, EnableRowGroup: true},
		AutoGroupColumnDef:  AutoGroupColumnDef{Flex: 2},
		ColumnTypes:         columnTypes(opts, values),
		ColumnDefs:          columnDefs(),
		Options:             opts,

		ServerSideStoreParams:    storePolicy(),
		GetServerSideStoreParams: ServerSideStoreParams,
	}
}
