package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver

	"github.com/okian/medalgrid/internal/domain/model"
	"github.com/okian/medalgrid/internal/domain/rowmodel"
	"github.com/okian/medalgrid/pkg/logger"
	"github.com/okian/medalgrid/pkg/metrics"
)

const defaultMaxReadWindow = 1000

const schema = `CREATE TABLE IF NOT EXISTS records (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	athlete TEXT    NOT NULL,
	age     INTEGER NOT NULL,
	country TEXT    NOT NULL,
	sport   TEXT    NOT NULL,
	gold    INTEGER NOT NULL DEFAULT 0,
	silver  INTEGER NOT NULL DEFAULT 0,
	bronze  INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS records_country ON records(country);
CREATE INDEX IF NOT EXISTS records_sport ON records(sport);`

const (
	insertSQL = `INSERT INTO records (athlete, age, country, sport, gold, silver, bronze) VALUES (?, ?, ?, ?, ?, ?, ?)`
	updateSQL = `UPDATE records SET athlete = ?, age = ?, country = ?, sport = ?, gold = ?, silver = ?, bronze = ? WHERE id = ?`
	deleteSQL = `DELETE FROM records WHERE id = ?`
	countSQL  = `SELECT COUNT(*) FROM records`
)

// SQLStore is a Store backed by sqlite.
type SQLStore struct {
	db            *sql.DB
	maxReadWindow int
	logger        logger.Logger

	mu     sync.RWMutex
	closed bool
}

var _ Store = (*SQLStore)(nil)

// OpenSQLStore opens (or creates) the sqlite database at dsn and makes sure
// the records table exists. Use ":memory:" for a throwaway store.
func OpenSQLStore(ctx context.Context, dsn string, opts ...Option) (*SQLStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", dsn, err)
	}
	// sqlite allows one writer; an in-memory database also lives per connection.
	db.SetMaxOpenConns(1)

	s := &SQLStore{
		db:            db,
		maxReadWindow: defaultMaxReadWindow,
		logger:        logger.Get().Named("store"),
	}
	for _, opt := range opts {
		opt(s)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	if n, err := s.Count(ctx); err == nil {
		metrics.UpdateRecordsTotal(n)
	}
	s.logger.Info(ctx, "store opened", logger.String("dsn", dsn), logger.Int("max_read_window", s.maxReadWindow))
	return s, nil
}

// observe records latency and failures for one store call.
func (s *SQLStore) observe(op string, start time.Time, err error) {
	metrics.RecordStoreQueryLatency(op, float64(time.Since(start).Microseconds())/1000)
	if err != nil && !errors.Is(err, ErrNotFound) {
		metrics.RecordStoreError(op)
	}
}

func (s *SQLStore) checkOpen() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// Read implements Store.
func (s *SQLStore) Read(ctx context.Context, req rowmodel.ReadRequest) (resp rowmodel.ReadResponse, err error) {
	defer func(start time.Time) { s.observe("read", start, err) }(time.Now())

	if err := s.checkOpen(); err != nil {
		return resp, err
	}
	if err := req.Validate(); err != nil {
		return resp, err
	}

	// Count first: the single connection is held until rows is closed.
	cq, err := buildCount(req)
	if err != nil {
		return resp, err
	}
	if err := s.db.QueryRowContext(ctx, cq.sql, cq.args...).Scan(&resp.Count); err != nil {
		return resp, fmt.Errorf("count: %w", err)
	}

	q, err := buildRead(req, s.maxReadWindow)
	if err != nil {
		return resp, err
	}
	rows, err := s.db.QueryContext(ctx, q.sql, q.args...)
	if err != nil {
		return resp, fmt.Errorf("read: %w", err)
	}
	defer rows.Close()

	resp.Rows = []rowmodel.Row{}
	level := "leaf"
	if req.IsGroupLevel() {
		level = "group"
		field := req.GroupField()
		for rows.Next() {
			var v any
			if err := rows.Scan(&v); err != nil {
				return resp, fmt.Errorf("scan group row: %w", err)
			}
			resp.Rows = append(resp.Rows, rowmodel.Row{field: groupValue(v)})
		}
	} else {
		for rows.Next() {
			rec, err := scanRecord(rows)
			if err != nil {
				return resp, err
			}
			resp.Rows = append(resp.Rows, rowmodel.RowFromRecord(rec))
		}
	}
	if err := rows.Err(); err != nil {
		return resp, fmt.Errorf("read rows: %w", err)
	}

	metrics.RecordRead(level, len(resp.Rows))
	s.logger.Debug(ctx, "read",
		logger.String("level", level),
		logger.Strings("group_keys", req.GroupKeys),
		logger.Int("rows", len(resp.Rows)),
		logger.Int("count", resp.Count),
	)
	return resp, nil
}

// groupValue normalises what the driver returns for a grouped column.
func groupValue(v any) any {
	switch t := v.(type) {
	case []byte:
		return string(t)
	default:
		return t
	}
}

// FilterValues implements Store.
func (s *SQLStore) FilterValues(ctx context.Context, req rowmodel.FilterValuesRequest) (values []string, err error) {
	defer func(start time.Time) { s.observe("filter_values", start, err) }(time.Now())

	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	q, err := buildFilterValues(req)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, q.sql, q.args...)
	if err != nil {
		return nil, fmt.Errorf("filter values: %w", err)
	}
	defer rows.Close()

	values = []string{}
	for rows.Next() {
		var v any
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan filter value: %w", err)
		}
		values = append(values, formatValue(v))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	metrics.RecordFilterValuesRequest()
	return values, nil
}

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(t)
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (model.Record, error) {
	var r model.Record
	err := sc.Scan(&r.ID, &r.Athlete, &r.Age, &r.Country, &r.Sport, &r.Gold, &r.Silver, &r.Bronze)
	if err != nil {
		return r, fmt.Errorf("scan record: %w", err)
	}
	return r, nil
}

// Create implements Store. Any id on rec is ignored.
func (s *SQLStore) Create(ctx context.Context, rec model.Record) (out model.Record, err error) {
	defer func(start time.Time) { s.observe("create", start, err) }(time.Now())

	if err := s.checkOpen(); err != nil {
		return out, err
	}
	if err := rec.Validate(); err != nil {
		return out, err
	}
	res, err := s.db.ExecContext(ctx, insertSQL, rec.Athlete, rec.Age, rec.Country, rec.Sport, rec.Gold, rec.Silver, rec.Bronze)
	if err != nil {
		return out, fmt.Errorf("insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return out, fmt.Errorf("insert id: %w", err)
	}
	rec.ID = id

	metrics.RecordMutation("create")
	s.refreshTotal(ctx)
	return rec, nil
}

// CreateBatch implements Store.
func (s *SQLStore) CreateBatch(ctx context.Context, recs []model.Record) (n int, err error) {
	defer func(start time.Time) { s.observe("create_batch", start, err) }(time.Now())

	if err := s.checkOpen(); err != nil {
		return 0, err
	}
	for i := range recs {
		if err := recs[i].Validate(); err != nil {
			return 0, fmt.Errorf("record %d: %w", i, err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range recs {
		r := &recs[i]
		if _, err = stmt.ExecContext(ctx, r.Athlete, r.Age, r.Country, r.Sport, r.Gold, r.Silver, r.Bronze); err != nil {
			return 0, fmt.Errorf("insert record %d: %w", i, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}

	s.refreshTotal(ctx)
	s.logger.Info(ctx, "batch stored", logger.Int("records", len(recs)))
	return len(recs), nil
}

// Get implements Store.
func (s *SQLStore) Get(ctx context.Context, id int64) (rec model.Record, err error) {
	defer func(start time.Time) { s.observe("get", start, err) }(time.Now())

	if err := s.checkOpen(); err != nil {
		return rec, err
	}
	row := s.db.QueryRowContext(ctx, "SELECT "+recordColumns()+" FROM "+recordsTable+" WHERE id = ?", id)
	rec, err = scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return rec, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return rec, err
}

// Update implements Store. The stored record keeps id regardless of rec.ID.
func (s *SQLStore) Update(ctx context.Context, id int64, rec model.Record) (out model.Record, err error) {
	defer func(start time.Time) { s.observe("update", start, err) }(time.Now())

	if err := s.checkOpen(); err != nil {
		return out, err
	}
	if err := rec.Validate(); err != nil {
		return out, err
	}
	res, err := s.db.ExecContext(ctx, updateSQL, rec.Athlete, rec.Age, rec.Country, rec.Sport, rec.Gold, rec.Silver, rec.Bronze, id)
	if err != nil {
		return out, fmt.Errorf("update: %w", err)
	}
	if err := affectedOne(res, id); err != nil {
		return out, err
	}
	rec.ID = id
	metrics.RecordMutation("update")
	return rec, nil
}

// Delete implements Store.
func (s *SQLStore) Delete(ctx context.Context, id int64) (err error) {
	defer func(start time.Time) { s.observe("delete", start, err) }(time.Now())

	if err := s.checkOpen(); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, deleteSQL, id)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	if err := affectedOne(res, id); err != nil {
		return err
	}
	metrics.RecordMutation("delete")
	s.refreshTotal(ctx)
	return nil
}

func affectedOne(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return nil
}

// Count implements Store.
func (s *SQLStore) Count(ctx context.Context) (int, error) {
	if err := s.checkOpen(); err != nil {
		return 0, err
	}
	var n int
	if err := s.db.QueryRowContext(ctx, countSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

func (s *SQLStore) refreshTotal(ctx context.Context) {
	n, err := s.Count(ctx)
	if err != nil {
		s.logger.Warn(ctx, "records total not refreshed", logger.Error(err))
		return
	}
	metrics.UpdateRecordsTotal(n)
}

// Close implements Store. It is safe to call more than once.
func (s *SQLStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
