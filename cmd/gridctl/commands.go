package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/docopt/docopt-go"
	"github.com/okian/medalgrid/internal/adapters/repository"
	"github.com/okian/medalgrid/internal/client"
	"github.com/okian/medalgrid/internal/config"
	"github.com/okian/medalgrid/internal/domain/model"
	"github.com/okian/medalgrid/internal/domain/rowmodel"
	"github.com/okian/medalgrid/internal/grid"
	"github.com/okian/medalgrid/internal/seed"
)

// replyGrace is added to the client timeout while waiting for a reply.
const replyGrace = time.Second

var (
	errNoReply  = errors.New("no reply from backend; see log for the failed call")
	errBadFlag  = errors.New("bad flag")
	errCanceled = errors.New("creation cancelled")
)

// recordFlags maps form fields to their flags.
var recordFlags = map[string]string{
	model.FieldAthlete: "--athlete",
	model.FieldAge:     "--age",
	model.FieldCountry: "--country",
	model.FieldSport:   "--sport",
	model.FieldGold:    "--gold",
	model.FieldSilver:  "--silver",
	model.FieldBronze:  "--bronze",
}

type cli struct {
	data    grid.DataService
	out     io.Writer
	timeout time.Duration
}

// await issues one call and blocks until its reply. The data service drops
// failed calls, so a missing reply surfaces as errNoReply.
func (c *cli) await(ctx context.Context, call func(client.Reply)) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	replies := make(chan []byte, 1)
	call(func(body []byte) { replies <- body })
	select {
	case body := <-replies:
		return body, nil
	case <-ctx.Done():
		return nil, errNoReply
	}
}

func (c *cli) read(ctx context.Context, opts docopt.Opts) error {
	req, err := readRequest(opts)
	if err != nil {
		return err
	}
	body, err := c.await(ctx, func(r client.Reply) { c.data.Read(ctx, req, r) })
	if err != nil {
		return err
	}

	var resp struct {
		Rows  []map[string]json.RawMessage `json:"rows"`
		Count int                          `json:"count"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("decode read reply: %w", err)
	}

	columns := model.Fields
	if req.IsGroupLevel() {
		columns = []string{req.GroupField()}
	}
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.ToUpper(strings.Join(columns, "\t")))
	for _, row := range resp.Rows {
		cells := make([]string, len(columns))
		for i, col := range columns {
			cells[i] = cell(row[col])
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.out, "count: %d\n", resp.Count)
	return err
}

func (c *cli) create(ctx context.Context, opts docopt.Opts) error {
	form := grid.NewCreateForm()
	if err := fillForm(form, opts); err != nil {
		return err
	}
	rec, err := formRecord(form)
	if err != nil {
		return err
	}
	return c.submitCreate(ctx, rec)
}

func (c *cli) submitCreate(ctx context.Context, rec model.Record) error {
	body, err := c.await(ctx, func(r client.Reply) { c.data.Create(ctx, rec, r) })
	if err != nil {
		return err
	}
	var created model.Record
	if err := json.Unmarshal(body, &created); err != nil {
		return fmt.Errorf("decode create reply: %w", err)
	}
	_, err = fmt.Fprintf(c.out, "created %d: %s (%s, %s)\n", created.ID, created.Athlete, created.Country, created.Sport)
	return err
}

func (c *cli) update(ctx context.Context, opts docopt.Opts) error {
	id, err := idArg(opts)
	if err != nil {
		return err
	}
	form := grid.NewCreateForm()
	if err := fillForm(form, opts); err != nil {
		return err
	}
	rec, err := formRecord(form)
	if err != nil {
		return err
	}
	body, err := c.await(ctx, func(r client.Reply) { c.data.Update(ctx, id, rec, r) })
	if err != nil {
		return err
	}
	return c.printAck(body)
}

func (c *cli) delete(ctx context.Context, opts docopt.Opts) error {
	id, err := idArg(opts)
	if err != nil {
		return err
	}
	body, err := c.await(ctx, func(r client.Reply) { c.data.Delete(ctx, id, r) })
	if err != nil {
		return err
	}
	return c.printAck(body)
}

func (c *cli) printAck(body []byte) error {
	var ack rowmodel.Ack
	if err := json.Unmarshal(body, &ack); err != nil {
		return fmt.Errorf("decode reply: %w", err)
	}
	_, err := fmt.Fprintf(c.out, "%s %d\n", ack.Status, ack.ID)
	return err
}

func (c *cli) filterValues(ctx context.Context, opts docopt.Opts) error {
	field, _ := opts.String("<field>")
	req := rowmodel.FilterValuesRequest{Field: field, FilterModel: rowmodel.FilterModel{}}
	if raw := optString(opts, "--filter"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.FilterModel); err != nil {
			return fmt.Errorf("%w: --filter: %v", errBadFlag, err)
		}
	}
	body, err := c.await(ctx, func(r client.Reply) { c.data.SetFilterValues(ctx, req, r) })
	if err != nil {
		return err
	}
	var values []string
	if err := json.Unmarshal(body, &values); err != nil {
		return fmt.Errorf("decode filter values: %w", err)
	}
	for _, v := range values {
		if _, err := fmt.Fprintln(c.out, v); err != nil {
			return err
		}
	}
	return nil
}

// seedStore fills the configured database directly, without a backend.
func seedStore(ctx context.Context, out io.Writer, opts docopt.Opts, cfg *config.Config) error {
	path := cfg.DBPath
	if p := optString(opts, "--db"); p != "" {
		path = p
	}
	count := cfg.SeedCount
	if raw := optString(opts, "--count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: --count %q", errBadFlag, raw)
		}
		count = n
	}

	st, err := repository.OpenSQLStore(ctx, path)
	if err != nil {
		return err
	}
	defer st.Close()

	n, err := seed.Seed(ctx, st, count)
	if err != nil {
		return err
	}
	total, err := st.Count(ctx)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "seeded %d records into %s (%d total)\n", n, path, total)
	return err
}

func readRequest(opts docopt.Opts) (rowmodel.ReadRequest, error) {
	req := rowmodel.ReadRequest{
		RowGroupCols: []rowmodel.Column{},
		GroupKeys:    []string{},
		FilterModel:  rowmodel.FilterModel{},
		SortModel:    []rowmodel.SortModelItem{},
	}
	for _, field := range splitList(optString(opts, "--group")) {
		req.RowGroupCols = append(req.RowGroupCols, rowmodel.Column{ID: field, DisplayName: field, Field: field})
	}
	req.GroupKeys = append(req.GroupKeys, splitList(optString(opts, "--keys"))...)
	for _, item := range splitList(optString(opts, "--sort")) {
		col, dir, found := strings.Cut(item, ":")
		if !found {
			dir = rowmodel.SortAsc
		}
		req.SortModel = append(req.SortModel, rowmodel.SortModelItem{ColID: col, Sort: dir})
	}
	if raw := optString(opts, "--filter"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.FilterModel); err != nil {
			return req, fmt.Errorf("%w: --filter: %v", errBadFlag, err)
		}
	}
	var err error
	if req.StartRow, err = optInt(opts, "--start"); err != nil {
		return req, err
	}
	if req.EndRow, err = optInt(opts, "--end"); err != nil {
		return req, err
	}
	return req, nil
}

func hasRecordFlags(opts docopt.Opts) bool {
	for _, flag := range recordFlags {
		if optString(opts, flag) != "" {
			return true
		}
	}
	return false
}

func fillForm(form *grid.CreateForm, opts docopt.Opts) error {
	for name, flag := range recordFlags {
		if err := form.Set(name, optString(opts, flag)); err != nil {
			return err
		}
	}
	return nil
}

// formRecord returns the form's record, or every field error on one line.
func formRecord(form *grid.CreateForm) (model.Record, error) {
	errs := form.Errors()
	if len(errs) == 0 {
		return form.Record()
	}
	var problems []string
	for _, f := range form.Fields() {
		if ferr, ok := errs[f.Name]; ok {
			problems = append(problems, fmt.Sprintf("%s: %v", recordFlags[f.Name], ferr))
		}
	}
	return model.Record{}, fmt.Errorf("%w: %s", grid.ErrFormInvalid, strings.Join(problems, "; "))
}

func idArg(opts docopt.Opts) (int64, error) {
	raw, _ := opts.String("<id>")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: id %q", errBadFlag, raw)
	}
	return id, nil
}

func optString(opts docopt.Opts, key string) string {
	s, err := opts.String(key)
	if err != nil {
		return ""
	}
	return s
}

func optInt(opts docopt.Opts, key string) (int, error) {
	raw := optString(opts, key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q", errBadFlag, key, raw)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// cell renders a JSON value without string quotes.
func cell(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	if len(raw) == 0 {
		return ""
	}
	return string(raw)
}
