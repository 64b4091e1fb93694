// Command gridctl drives the medal grid backend from a shell through the
// same data service the grid uses.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/docopt/docopt-go"
	"github.com/okian/medalgrid/internal/client"
	"github.com/okian/medalgrid/internal/config"
	"github.com/okian/medalgrid/pkg/logger"
	"golang.org/x/term"
)

// GridctlVersion is printed by --version.
const GridctlVersion = "0.1.0"

const usage = `Medal grid control.

Settings come from the same config as the backend (MEDALGRID_CONFIG and
MEDALGRID_* variables). --url overrides backend_url and --db overrides db_path.

Usage:
    gridctl read [--url=<url>] [--group=<fields>] [--keys=<keys>]
        [--sort=<sort>] [--filter=<json>] [--start=<n>] [--end=<n>]
    gridctl create [--url=<url>] [--athlete=<name>] [--age=<n>]
        [--country=<country>] [--sport=<sport>]
        [--gold=<n>] [--silver=<n>] [--bronze=<n>]
    gridctl update [--url=<url>] <id> [--athlete=<name>] [--age=<n>]
        [--country=<country>] [--sport=<sport>]
        [--gold=<n>] [--silver=<n>] [--bronze=<n>]
    gridctl delete [--url=<url>] <id>
    gridctl filter-values [--url=<url>] <field> [--filter=<json>]
    gridctl seed [--db=<path>] [--count=<n>]
    gridctl -h | --help
    gridctl --version

Options:
    -h --help            Show this screen.
    --version            Show version.
    --url=<url>          Backend base url.
    --group=<fields>     Comma separated group columns, outermost first.
    --keys=<keys>        Comma separated keys of the expanded groups.
    --sort=<sort>        Comma separated column:asc|desc entries.
    --filter=<json>      Filter model as JSON, e.g. {"sport":{"filterType":"set","values":["Biathlon"]}}.
    --start=<n>          First row of the window.
    --end=<n>            Row after the last row of the window.
    --athlete=<name>     Athlete name.
    --age=<n>            Athlete age.
    --country=<country>  Country.
    --sport=<sport>      Sport.
    --gold=<n>           Gold medals.
    --silver=<n>         Silver medals.
    --bronze=<n>         Bronze medals.
    --db=<path>          sqlite database to seed.
    --count=<n>          Number of records to seed.`

func main() {
	opts, err := docopt.ParseArgs(usage, os.Args[1:], GridctlVersion)
	if err != nil {
		panic(err)
	}

	if err := logger.Init(); err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize logging:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts); err != nil {
		fmt.Fprintln(os.Stderr, "gridctl:", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, opts docopt.Opts) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		_ = logger.SetLevelString("info")
	}

	if seed_, _ := opts.Bool("seed"); seed_ {
		return seedStore(ctx, os.Stdout, opts, cfg)
	}

	baseURL := cfg.BackendURL
	if url, err := opts.String("--url"); err == nil && url != "" {
		baseURL = url
	}
	c := client.New(
		client.WithBaseURL(baseURL),
		client.WithTimeout(cfg.ClientTimeout()),
		client.WithWorkers(cfg.ClientWorkers),
		client.WithQueueSize(cfg.ClientQueueSize),
	)
	c.Start(ctx)
	defer func() { _ = c.Stop(context.Background()) }()

	cmd := &cli{
		data:    c,
		out:     os.Stdout,
		timeout: cfg.ClientTimeout() + replyGrace,
	}

	if read_, _ := opts.Bool("read"); read_ {
		return cmd.read(ctx, opts)
	} else if create_, _ := opts.Bool("create"); create_ {
		if !hasRecordFlags(opts) && term.IsTerminal(int(os.Stdin.Fd())) {
			return cmd.createInteractive(ctx, os.Stdin)
		}
		return cmd.create(ctx, opts)
	} else if update_, _ := opts.Bool("update"); update_ {
		return cmd.update(ctx, opts)
	} else if delete_, _ := opts.Bool("delete"); delete_ {
		return cmd.delete(ctx, opts)
	} else if filterValues_, _ := opts.Bool("filter-values"); filterValues_ {
		return cmd.filterValues(ctx, opts)
	}
	return nil
}
