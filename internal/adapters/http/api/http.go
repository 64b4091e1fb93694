// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/medalgrid/internal/domain/model"
	"github.com/okian/medalgrid/internal/domain/rowmodel"
	"github.com/okian/medalgrid/internal/grid"
	"github.com/okian/medalgrid/pkg/logger"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	StatsProvider

	// Read answers a server-side row model request at one group level.
	Read(ctx context.Context, req rowmodel.ReadRequest) (rowmodel.ReadResponse, error)
	// FilterValues lists the distinct values offered by a set filter.
	FilterValues(ctx context.Context, req rowmodel.FilterValuesRequest) ([]string, error)

	Create(ctx context.Context, rec model.Record) (model.Record, error)
	Update(ctx context.Context, id int64, rec model.Record) (model.Record, error)
	Delete(ctx context.Context, id int64) error
}

// Server wires HTTP routes for the grid backend.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	readHandler    *ReadHandler
	recordsHandler *RecordsHandler
	optionsHandler *GridOptionsHandler
	logger         logger.Logger
}

// Option configures a Server.
type Option func(*serverConfig)

type serverConfig struct {
	gridOptions grid.Options
	logger      logger.Logger
}

// WithGridOptions sets the options served at /gridOptions.
func WithGridOptions(opts grid.Options) Option {
	return func(c *serverConfig) {
		c.gridOptions = opts
	}
}

// WithLogger sets the logger used for failed requests.
func WithLogger(l logger.Logger) Option {
	return func(c *serverConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	cfg := serverConfig{gridOptions: grid.DefaultOptions()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = logger.Get().Named("api")
	}
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(deps),
		readHandler:    NewReadHandler(deps, cfg.logger),
		recordsHandler: NewRecordsHandler(deps, cfg.logger),
		optionsHandler: NewGridOptionsHandler(cfg.gridOptions),
		logger:         cfg.logger,
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/gridOptions", MetricsMiddleware(s.optionsHandler.HandleGridOptions, "gridOptions"))
	mux.HandleFunc("/read", MetricsMiddleware(s.readHandler.HandleRead, "read"))
	mux.HandleFunc("/setFilterValues", MetricsMiddleware(s.readHandler.HandleFilterValues, "setFilterValues"))
	mux.HandleFunc("/create", MetricsMiddleware(s.recordsHandler.HandleCreate, "create"))
	mux.HandleFunc("/update", MetricsMiddleware(s.recordsHandler.HandleUpdate, "update"))
	mux.HandleFunc("/delete", MetricsMiddleware(s.recordsHandler.HandleDelete, "delete"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// fail writes the error body matching err and logs server side failures.
func fail(ctx context.Context, w http.ResponseWriter, log logger.Logger, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		log.Error(ctx, "request failed",
			logger.String("request_id", RequestIDFrom(ctx)),
			logger.Error(err),
		)
	}
	writeError(w, status, code, err)
}

// decodeJSON reads a bounded JSON body into v. Unknown fields are ignored
// since grid front-ends send more than the backend reads.
func decodeJSON(w http.ResponseWriter, r *http.Request, op string, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return WrapKind(op, ErrBadRequest, err)
	}
	return nil
}

// requireMethod rejects requests that do not use method.
func requireMethod(w http.ResponseWriter, r *http.Request, op, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, NewKind(op, ErrMethodNotAllowed))
	return false
}
