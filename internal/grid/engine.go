package grid

import (
	"context"

	"github.com/okian/medalgrid/internal/domain/model"
	"github.com/okian/medalgrid/internal/domain/rowmodel"
)

// Transaction statuses reported by the engine.
const (
	TxApplied            = "Applied"
	TxStoreNotFound      = "StoreNotFound"
	TxStoreLoading       = "StoreLoading"
	TxStoreWaitingToLoad = "StoreWaitingToLoad"
	TxCancelled          = "Cancelled"
)

// Engine is the part of the grid engine's public API the bridge drives.
// Implementations must accept calls from any goroutine.
type Engine interface {
	SetServerSideDatasource(ds Datasource)
	ApplyServerSideTransaction(tx Transaction) TransactionResult
	RefreshServerSideStore(params RefreshParams)
	SelectedNodes() []Node
	FilterModel() rowmodel.FilterModel
	RowGroupColumns() []rowmodel.Column
}

// Node is a row in the engine's tree. The root has level -1, top level rows
// level 0.
type Node interface {
	Data() model.Record
	SetData(rec model.Record)
	Group() bool
	Key() string
	Level() int
	Parent() Node
}

// Datasource is what the engine calls to load rows.
type Datasource interface {
	GetRows(ctx context.Context, params GetRowsParams)
}

// GetRowsParams is one load request from the engine.
type GetRowsParams struct {
	Request rowmodel.ReadRequest
	Success func(LoadSuccessParams)
}

// LoadSuccessParams answers a GetRowsParams.
type LoadSuccessParams struct {
	RowData  []rowmodel.Row
	RowCount int
}

// SetFilterValuesParams is a set filter asking for its values.
type SetFilterValuesParams struct {
	Field   string
	Success func(values []string)
}

// Transaction mutates the cached store at Route without a reload.
type Transaction struct {
	Route  []string
	Add    []model.Record
	Update []model.Record
	Remove []model.Record
}

// TransactionResult is what the engine did with a Transaction.
type TransactionResult struct {
	Status string
	Add    []Node
	Update []Node
	Remove []Node
}

// RefreshParams asks the engine to reload the store at Route. Purge false
// keeps the loaded rows visible while the reload happens.
type RefreshParams struct {
	Route []string
	Purge bool
}
