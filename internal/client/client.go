// Package client is the HTTP data service the grid bridge talks to.
//
// Every call is fire-and-forget: the body is marshalled and queued, and a
// worker POSTs it to the backend. The raw reply body reaches the caller's
// continuation only on a 2xx status. Failures of any kind are logged and
// counted, nothing else.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/medalgrid/internal/adapters/mq/queue"
	"github.com/okian/medalgrid/internal/adapters/mq/worker"
	"github.com/okian/medalgrid/internal/domain/model"
	"github.com/okian/medalgrid/internal/domain/rowmodel"
	"github.com/okian/medalgrid/pkg/logger"
	"github.com/okian/medalgrid/pkg/metrics"
)

// Backend endpoints.
const (
	EndpointRead            = "read"
	EndpointCreate          = "create"
	EndpointUpdate          = "update"
	EndpointDelete          = "delete"
	EndpointSetFilterValues = "setFilterValues"
)

// RequestIDHeader carries a per-call id so backend logs can be matched.
const RequestIDHeader = "X-Request-ID"

const (
	defaultBaseURL   = "http://localhost:3000"
	defaultTimeout   = 10 * time.Second
	defaultWorkers   = 4
	defaultQueueSize = 1024
)

// Reply receives the raw body of a successful call.
type Reply func(body []byte)

// Client posts grid requests to the backend.
type Client struct {
	baseURL   string
	timeout   time.Duration
	workers   int
	queueSize int
	http      *http.Client
	logger    logger.Logger

	queue *queue.InMemoryQueue
	pool  *worker.Pool

	mu      sync.Mutex
	started bool
	stopped bool
}

// New creates a client. Calls are only sent after Start.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:   defaultBaseURL,
		timeout:   defaultTimeout,
		workers:   defaultWorkers,
		queueSize: defaultQueueSize,
		http:      &http.Client{},
		logger:    logger.Get().Named("client"),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.queue = queue.NewInMemoryQueue(queue.WithCapacity(c.queueSize))
	c.pool = worker.NewPool(c.workers, c.queue, c)
	return c
}

// BaseURL returns the backend origin calls are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Start launches the workers. It is a no-op after the first call.
func (c *Client) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started || c.stopped {
		return
	}
	c.started = true
	c.pool.Start(ctx)
	c.logger.Info(ctx, "data service started",
		logger.String("base_url", c.baseURL),
		logger.Int("workers", c.pool.Size()),
		logger.Int("queue_size", c.queueSize),
	)
}

// Stop stops accepting calls, sends everything already queued and waits for
// the workers to finish.
func (c *Client) Stop(ctx context.Context) error {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return nil
	}
	c.stopped = true
	started := c.started
	c.mu.Unlock()

	if !started {
		return c.queue.Close()
	}
	return c.pool.Shutdown(ctx)
}

// Read asks for one window of rows.
func (c *Client) Read(ctx context.Context, req rowmodel.ReadRequest, reply Reply) {
	c.post(ctx, EndpointRead, req, reply)
}

// Create stores a new record. The reply carries the record with its id.
func (c *Client) Create(ctx context.Context, rec model.Record, reply Reply) {
	rec.ID = 0
	c.post(ctx, EndpointCreate, rec, reply)
}

// Update replaces the record with the given id.
func (c *Client) Update(ctx context.Context, id int64, rec model.Record, reply Reply) {
	c.post(ctx, EndpointUpdate, rowmodel.UpdateRequest{ID: id, UpdateData: rec}, reply)
}

// Delete removes the record with the given id.
func (c *Client) Delete(ctx context.Context, id int64, reply Reply) {
	c.post(ctx, EndpointDelete, rowmodel.DeleteRequest{ID: id}, reply)
}

// SetFilterValues asks for the distinct values of a set filter column.
func (c *Client) SetFilterValues(ctx context.Context, req rowmodel.FilterValuesRequest, reply Reply) {
	c.post(ctx, EndpointSetFilterValues, req, reply)
}

func (c *Client) post(ctx context.Context, endpoint string, body any, reply Reply) {
	b, err := json.Marshal(body)
	if err != nil {
		metrics.RecordClientCall(endpoint, "marshal_error")
		c.logger.Error(ctx, "marshal request", logger.String("endpoint", endpoint), logger.Error(err))
		return
	}

	call := queue.Call{
		ID:       uuid.NewString(),
		Endpoint: endpoint,
		Body:     b,
		Reply:    reply,
		Enqueued: time.Now(),
	}
	// A cancelled caller must not drop the call. The worker runs it on its
	// own context; only call.ID travels, as the X-Request-ID header.
	if err := c.queue.Enqueue(context.WithoutCancel(ctx), call); err != nil {
		metrics.RecordClientCall(endpoint, "rejected")
		c.logger.Error(ctx, "call not queued",
			logger.String("endpoint", endpoint),
			logger.String("call_id", call.ID),
			logger.Error(err),
		)
	}
}

// Execute sends one queued call. It implements worker.Executor.
func (c *Client) Execute(ctx context.Context, call queue.Call) error {
	start := time.Now()
	defer func() {
		metrics.RecordClientCallLatency(call.Endpoint, float64(time.Since(start).Milliseconds()))
	}()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	url := c.baseURL + "/" + call.Endpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(call.Body))
	if err != nil {
		metrics.RecordClientCall(call.Endpoint, "transport_error")
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(RequestIDHeader, call.ID)

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RecordClientCall(call.Endpoint, "transport_error")
		return fmt.Errorf("post %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordClientCall(call.Endpoint, "transport_error")
		return fmt.Errorf("read reply from %s: %w", url, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.RecordClientCall(call.Endpoint, "http_error")
		return fmt.Errorf("%w: %s from %s: %s", ErrStatus, resp.Status, url, bytes.TrimSpace(body))
	}

	metrics.RecordClientCall(call.Endpoint, "ok")
	c.logger.Debug(ctx, "call completed",
		logger.String("endpoint", call.Endpoint),
		logger.String("call_id", call.ID),
		logger.Int("status", resp.StatusCode),
		logger.Int("bytes", len(body)),
	)
	if call.Reply != nil {
		call.Reply(body)
	}
	return nil
}
