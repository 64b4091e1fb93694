// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"time"

	"github.com/okian/medalgrid/internal/adapters/repository"
	"github.com/okian/medalgrid/internal/domain/model"
	"github.com/okian/medalgrid/internal/domain/rowmodel"
	"github.com/okian/medalgrid/internal/seed"
	"github.com/okian/medalgrid/pkg/logger"
	"github.com/okian/medalgrid/pkg/metrics"
)

// ErrNotStarted is returned by data calls before Start.
var ErrNotStarted = errors.New("service not started")

const (
	defaultDBPath         = "medalgrid.db"
	defaultMaxReadWindow  = 1000
	defaultSeedCount      = 1000
	systemMetricsInterval = 10 * time.Second
	nanosecondsPerMilli   = 1e6
)

// Service owns the record store behind the grid endpoints.
type Service struct {
	mu sync.RWMutex

	store     repository.Store
	ownsStore bool

	dbPath        string
	maxReadWindow int
	seedCount     int

	started   bool
	startedAt time.Time
	stopCh    chan struct{}

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithDBPath sets the sqlite database file. ":memory:" keeps everything in memory.
func WithDBPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.dbPath = path
		}
	}
}

// WithMaxReadWindow caps the rows a single read may return.
func WithMaxReadWindow(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxReadWindow = n
		}
	}
}

// WithSeedCount sets how many sample records an empty store receives.
// Zero disables seeding.
func WithSeedCount(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.seedCount = n
		}
	}
}

// WithStore uses an already open store instead of opening the database.
// The service does not close it.
func WithStore(st repository.Store) Option {
	return func(s *Service) {
		if st != nil {
			s.store = st
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		dbPath:        defaultDBPath,
		maxReadWindow: defaultMaxReadWindow,
		seedCount:     defaultSeedCount,
		stopCh:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens the store, seeds it when empty and starts the system metrics loop.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	if s.store == nil {
		st, err := repository.OpenSQLStore(ctx, s.dbPath,
			repository.WithMaxReadWindow(s.maxReadWindow),
			repository.WithLogger(s.logger.Named("store")),
		)
		if err != nil {
			return err
		}
		s.store = st
		s.ownsStore = true
	}

	n, err := s.prepare(ctx)
	if err != nil {
		if s.ownsStore {
			_ = s.store.Close()
			s.store = nil
			s.ownsStore = false
		}
		return err
	}
	metrics.UpdateRecordsTotal(n)

	s.stopCh = make(chan struct{})
	go s.systemMetricsLoop(s.stopCh)

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "medal service started",
		logger.String("db_path", s.dbPath),
		logger.Int("records", n),
		logger.Int("max_read_window", s.maxReadWindow),
	)
	return nil
}

// prepare seeds an empty store and returns the record count.
func (s *Service) prepare(ctx context.Context) (int, error) {
	n, err := s.store.Count(ctx)
	if err != nil || n > 0 || s.seedCount == 0 {
		return n, err
	}
	if _, err := seed.Seed(ctx, s.store, s.seedCount); err != nil {
		return 0, err
	}
	return s.store.Count(ctx)
}

// Stop closes the store if the service opened it.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	close(s.stopCh)

	if s.ownsStore {
		if err := s.store.Close(); err != nil {
			s.logger.Error(context.Background(), "close store", logger.Error(err))
		}
		s.store = nil
		s.ownsStore = false
	}
	s.started = false
	s.logger.Info(context.Background(), "medal service stopped")
}

func (s *Service) systemMetricsLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			metrics.UpdateSystemMemoryUsage(m.Alloc)
			metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
			if m.NumGC > 0 {
				metrics.RecordSystemGCPauseTime(float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMilli)
			}
		}
	}
}

func (s *Service) current() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started || s.store == nil {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

// Read answers a grid read request.
func (s *Service) Read(ctx context.Context, req rowmodel.ReadRequest) (rowmodel.ReadResponse, error) {
	st, err := s.current()
	if err != nil {
		return rowmodel.ReadResponse{}, err
	}
	return st.Read(ctx, req)
}

// FilterValues answers a set filter values request.
func (s *Service) FilterValues(ctx context.Context, req rowmodel.FilterValuesRequest) ([]string, error) {
	st, err := s.current()
	if err != nil {
		return nil, err
	}
	return st.FilterValues(ctx, req)
}

// Create stores a new record and returns it with its id.
func (s *Service) Create(ctx context.Context, rec model.Record) (model.Record, error) {
	st, err := s.current()
	if err != nil {
		return model.Record{}, err
	}
	out, err := st.Create(ctx, rec)
	if err != nil {
		return out, err
	}
	s.logger.Info(ctx, "record created", logger.Int64("id", out.ID), logger.String("athlete", out.Athlete))
	return out, nil
}

// Update replaces a record.
func (s *Service) Update(ctx context.Context, id int64, rec model.Record) (model.Record, error) {
	st, err := s.current()
	if err != nil {
		return model.Record{}, err
	}
	out, err := st.Update(ctx, id, rec)
	if err != nil {
		return out, err
	}
	s.logger.Debug(ctx, "record updated", logger.Int64("id", id))
	return out, nil
}

// Delete removes a record.
func (s *Service) Delete(ctx context.Context, id int64) error {
	st, err := s.current()
	if err != nil {
		return err
	}
	if err := st.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info(ctx, "record deleted", logger.Int64("id", id))
	return nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":       s.started,
		"dbPath":        s.dbPath,
		"maxReadWindow": s.maxReadWindow,
		"seedCount":     s.seedCount,
	}
	if s.started {
		stats["uptimeSeconds"] = int64(time.Since(s.startedAt).Seconds())
		if n, err := s.store.Count(context.Background()); err == nil {
			stats["totalRecords"] = n
			metrics.UpdateRecordsTotal(n)
		}
	}
	return stats
}
