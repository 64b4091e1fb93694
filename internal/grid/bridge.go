package grid

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/okian/medalgrid/internal/client"
	"github.com/okian/medalgrid/internal/domain/model"
	"github.com/okian/medalgrid/internal/domain/rowmodel"
	"github.com/okian/medalgrid/pkg/logger"
	"github.com/okian/medalgrid/pkg/metrics"
)

// DataService is the backend as the bridge sees it. *client.Client implements it.
type DataService interface {
	Read(ctx context.Context, req rowmodel.ReadRequest, reply client.Reply)
	Create(ctx context.Context, rec model.Record, reply client.Reply)
	Update(ctx context.Context, id int64, rec model.Record, reply client.Reply)
	Delete(ctx context.Context, id int64, reply client.Reply)
	SetFilterValues(ctx context.Context, req rowmodel.FilterValuesRequest, reply client.Reply)
}

var _ DataService = (*client.Client)(nil)

// CellEditingStoppedEvent is raised by the engine when an edit is committed.
// Data is the row with the edit applied.
type CellEditingStoppedEvent struct {
	Node     Node
	Data     model.Record
	Column   string
	OldValue any
	NewValue any
}

// Bridge turns engine events into data service calls and reconciles the
// engine's cached rows with the replies.
type Bridge struct {
	data   DataService
	opts   Options
	logger logger.Logger

	mu     sync.RWMutex
	engine Engine
}

var _ Datasource = (*Bridge)(nil)

// NewBridge creates a bridge. A nil logger uses the global one.
func NewBridge(data DataService, opts Options, l logger.Logger) *Bridge {
	if l == nil {
		l = logger.Get().Named("bridge")
	}
	return &Bridge{data: data, opts: opts, logger: l}
}

// GridOptions returns the engine configuration wired to this bridge.
func (b *Bridge) GridOptions() GridOptions {
	return NewGridOptions(b.opts, b.FilterValues)
}

// OnGridReady keeps the engine and registers the bridge as its datasource.
func (b *Bridge) OnGridReady(ctx context.Context, e Engine) {
	b.mu.Lock()
	b.engine = e
	b.mu.Unlock()

	e.SetServerSideDatasource(b)
	b.logger.Info(ctx, "grid ready",
		logger.Bool("server_filter_values", b.opts.ServerFilterValues),
		logger.Bool("log_transactions", b.opts.LogTransactions),
	)
}

// Close releases the engine. Replies arriving afterwards are dropped.
func (b *Bridge) Close() {
	b.mu.Lock()
	b.engine = nil
	b.mu.Unlock()
}

func (b *Bridge) currentEngine(ctx context.Context, event string) Engine {
	b.mu.RLock()
	e := b.engine
	b.mu.RUnlock()
	if e == nil {
		b.logger.Warn(ctx, "no grid engine", logger.String("event", event))
	}
	return e
}

// GroupingActive reports whether the engine currently groups by any column.
func (b *Bridge) GroupingActive() bool {
	b.mu.RLock()
	e := b.engine
	b.mu.RUnlock()
	return e != nil && len(e.RowGroupColumns()) > 0
}

// GetRows implements Datasource. The request goes to the backend as is.
func (b *Bridge) GetRows(ctx context.Context, params GetRowsParams) {
	req := params.Request
	b.data.Read(ctx, req, func(body []byte) {
		var resp rowmodel.ReadResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			metrics.RecordErrorByComponent("bridge", "decode_read")
			b.logger.Error(ctx, "decode read reply", logger.Error(err))
			return
		}
		b.logger.Debug(ctx, "rows loaded",
			logger.Int("start_row", req.StartRow),
			logger.Strings("group_keys", req.GroupKeys),
			logger.Int("rows", len(resp.Rows)),
			logger.Int("count", resp.Count),
		)
		if params.Success != nil {
			params.Success(LoadSuccessParams{RowData: resp.Rows, RowCount: resp.Count})
		}
	})
}

// FilterValues supplies a set filter with the distinct values of its column
// under the filters active on the engine.
func (b *Bridge) FilterValues(ctx context.Context, params SetFilterValuesParams) {
	if !b.opts.ServerFilterValues {
		return
	}
	e := b.currentEngine(ctx, "filter_values")
	if e == nil {
		return
	}
	fm := e.FilterModel()
	if fm == nil {
		fm = rowmodel.FilterModel{}
	}
	b.data.SetFilterValues(ctx, rowmodel.FilterValuesRequest{Field: params.Field, FilterModel: fm}, func(body []byte) {
		var values []string
		if err := json.Unmarshal(body, &values); err != nil {
			metrics.RecordErrorByComponent("bridge", "decode_filter_values")
			b.logger.Error(ctx, "decode filter values", logger.String("field", params.Field), logger.Error(err))
			return
		}
		if params.Success != nil {
			params.Success(values)
		}
	})
}

// OnCellEditingStopped sends the edited row and writes it back to the node
// straight away. A failed update is not rolled back.
func (b *Bridge) OnCellEditingStopped(ctx context.Context, ev CellEditingStoppedEvent) {
	rec := ev.Data
	b.data.Update(ctx, rec.ID, rec, func(body []byte) {
		b.logger.Debug(ctx, "update acknowledged", logger.Int64("id", rec.ID), logger.String("reply", string(body)))
	})
	if ev.Node != nil {
		ev.Node.SetData(rec)
	}
}

// OnDelete deletes the first selected row and removes it from the engine
// once the backend confirms.
func (b *Bridge) OnDelete(ctx context.Context) {
	e := b.currentEngine(ctx, "delete")
	if e == nil {
		return
	}
	nodes := e.SelectedNodes()
	if len(nodes) == 0 || nodes[0] == nil {
		b.logger.Warn(ctx, "delete without a selected row")
		return
	}
	node := nodes[0]
	if node.Group() {
		b.logger.Warn(ctx, "delete of a group row ignored", logger.String("key", node.Key()))
		return
	}
	rec := node.Data()
	route := GroupPath(node)

	b.data.Delete(ctx, rec.ID, func(body []byte) {
		b.logger.Debug(ctx, "delete acknowledged", logger.Int64("id", rec.ID), logger.String("reply", string(body)))
		e := b.currentEngine(ctx, "delete_reply")
		if e == nil {
			return
		}
		if len(e.RowGroupColumns()) > 0 {
			b.apply(ctx, e, "remove", Transaction{Route: route, Remove: []model.Record{rec}})
			return
		}
		b.softRefresh(ctx, e)
	})
}

// OpenCreateDialog opens the creation dialog and creates the record it
// returns, if any.
func (b *Bridge) OpenCreateDialog(ctx context.Context, opener DialogOpener) *DialogRef {
	ref := opener.Open(NewCreateForm())
	go func() {
		rec, ok := <-ref.AfterClosed()
		if !ok {
			return
		}
		b.OnCreateDialogClosed(ctx, rec)
	}()
	return ref
}

// OnCreateDialogClosed creates rec on the backend. With grouping active the
// created row is added under its group; otherwise the store is refreshed.
// Nothing happens for a cancelled dialog.
func (b *Bridge) OnCreateDialogClosed(ctx context.Context, rec *model.Record) {
	if rec == nil {
		b.logger.Debug(ctx, "create dialog cancelled")
		return
	}
	b.data.Create(ctx, *rec, func(body []byte) {
		e := b.currentEngine(ctx, "create_reply")
		if e == nil {
			return
		}
		cols := e.RowGroupColumns()
		if len(cols) == 0 {
			b.softRefresh(ctx, e)
			return
		}

		var created model.Record
		if err := json.Unmarshal(body, &created); err != nil || created.ID == 0 {
			// Without the server's id the row cannot be added safely.
			b.logger.Warn(ctx, "create reply has no record id, refreshing", logger.String("reply", string(body)))
			b.softRefresh(ctx, e)
			return
		}
		route, ok := routeFor(created, cols)
		if !ok {
			b.softRefresh(ctx, e)
			return
		}
		b.apply(ctx, e, "add", Transaction{Route: route, Add: []model.Record{created}})
	})
}

// routeFor is the group path a record would sit under.
func routeFor(rec model.Record, cols []rowmodel.Column) ([]string, bool) {
	route := make([]string, 0, len(cols))
	for _, c := range cols {
		v, ok := rec.Value(c.Field)
		if !ok {
			return nil, false
		}
		route = append(route, v)
	}
	return route, true
}

func (b *Bridge) apply(ctx context.Context, e Engine, kind string, tx Transaction) {
	res := e.ApplyServerSideTransaction(tx)
	metrics.RecordGridTransaction(kind, res.Status)

	fields := []logger.Field{
		logger.String("kind", kind),
		logger.Strings("route", tx.Route),
		logger.String("status", res.Status),
		logger.Int("added", len(res.Add)),
		logger.Int("removed", len(res.Remove)),
	}
	if b.opts.LogTransactions {
		b.logger.Info(ctx, "transaction applied", fields...)
		return
	}
	b.logger.Debug(ctx, "transaction applied", fields...)
}

func (b *Bridge) softRefresh(ctx context.Context, e Engine) {
	e.RefreshServerSideStore(RefreshParams{Purge: false})
	metrics.RecordSoftRefresh()
	b.logger.Debug(ctx, "store refreshed")
}
