package grid

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/okian/medalgrid/internal/client"
	"github.com/okian/medalgrid/internal/domain/model"
	"github.com/okian/medalgrid/internal/domain/rowmodel"
)

// fakeNode is a row in a fake engine tree.
type fakeNode struct {
	data   model.Record
	group  bool
	key    string
	level  int
	parent *fakeNode
}

func (n *fakeNode) Data() model.Record       { return n.data }
func (n *fakeNode) SetData(rec model.Record) { n.data = rec }
func (n *fakeNode) Group() bool              { return n.group }
func (n *fakeNode) Key() string              { return n.key }
func (n *fakeNode) Level() int               { return n.level }

func (n *fakeNode) Parent() Node {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

func rootNode() *fakeNode {
	return &fakeNode{level: -1}
}

func groupNode(parent *fakeNode, key string) *fakeNode {
	return &fakeNode{group: true, key: key, level: parent.level + 1, parent: parent}
}

func leafNode(parent *fakeNode, rec model.Record) *fakeNode {
	return &fakeNode{data: rec, level: parent.level + 1, parent: parent}
}

// fakeEngine records what the bridge asks of it. A refresh reloads through
// the registered datasource like the real engine does.
type fakeEngine struct {
	mu           sync.Mutex
	datasource   Datasource
	groupCols    []rowmodel.Column
	filterModel  rowmodel.FilterModel
	selected     []Node
	transactions []Transaction
	refreshes    []RefreshParams
	loaded       []LoadSuccessParams
}

func (e *fakeEngine) SetServerSideDatasource(ds Datasource) {
	e.mu.Lock()
	e.datasource = ds
	e.mu.Unlock()
}

func (e *fakeEngine) ApplyServerSideTransaction(tx Transaction) TransactionResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.transactions = append(e.transactions, tx)
	return TransactionResult{Status: TxApplied}
}

func (e *fakeEngine) RefreshServerSideStore(p RefreshParams) {
	e.mu.Lock()
	e.refreshes = append(e.refreshes, p)
	ds := e.datasource
	e.mu.Unlock()

	if ds != nil {
		e.load(ds, rowmodel.ReadRequest{StartRow: 0, EndRow: 20})
	}
}

func (e *fakeEngine) load(ds Datasource, req rowmodel.ReadRequest) {
	ds.GetRows(context.Background(), GetRowsParams{
		Request: req,
		Success: func(p LoadSuccessParams) {
			e.mu.Lock()
			e.loaded = append(e.loaded, p)
			e.mu.Unlock()
		},
	})
}

func (e *fakeEngine) SelectedNodes() []Node {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selected
}

func (e *fakeEngine) FilterModel() rowmodel.FilterModel {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.filterModel
}

func (e *fakeEngine) RowGroupColumns() []rowmodel.Column {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.groupCols
}

type sentCall struct {
	endpoint string
	body     any
}

// fakeData answers every call synchronously with the reply configured for
// its endpoint. Endpoints without a reply behave like a failed call.
type fakeData struct {
	mu      sync.Mutex
	calls   []sentCall
	replies map[string]string
}

func newFakeData() *fakeData {
	return &fakeData{replies: map[string]string{}}
}

func (d *fakeData) send(endpoint string, body any, reply client.Reply) {
	d.mu.Lock()
	d.calls = append(d.calls, sentCall{endpoint: endpoint, body: body})
	r, ok := d.replies[endpoint]
	d.mu.Unlock()
	if ok && reply != nil {
		reply([]byte(r))
	}
}

func (d *fakeData) Read(ctx context.Context, req rowmodel.ReadRequest, reply client.Reply) {
	d.send(client.EndpointRead, req, reply)
}

func (d *fakeData) Create(ctx context.Context, rec model.Record, reply client.Reply) {
	d.send(client.EndpointCreate, rec, reply)
}

func (d *fakeData) Update(ctx context.Context, id int64, rec model.Record, reply client.Reply) {
	d.send(client.EndpointUpdate, rowmodel.UpdateRequest{ID: id, UpdateData: rec}, reply)
}

func (d *fakeData) Delete(ctx context.Context, id int64, reply client.Reply) {
	d.send(client.EndpointDelete, rowmodel.DeleteRequest{ID: id}, reply)
}

func (d *fakeData) SetFilterValues(ctx context.Context, req rowmodel.FilterValuesRequest, reply client.Reply) {
	d.send(client.EndpointSetFilterValues, req, reply)
}

func (d *fakeData) endpoints() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.calls))
	for i, c := range d.calls {
		out[i] = c.endpoint
	}
	return out
}

func (d *fakeData) last() sentCall {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls[len(d.calls)-1]
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}
