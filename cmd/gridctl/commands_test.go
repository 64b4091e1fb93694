package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/docopt/docopt-go"
	"github.com/okian/medalgrid/internal/adapters/http/api"
	service "github.com/okian/medalgrid/internal/app"
	"github.com/okian/medalgrid/internal/client"
	"github.com/okian/medalgrid/internal/config"
	"github.com/okian/medalgrid/internal/grid"
	"github.com/okian/medalgrid/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

var kjetil = docopt.Opts{
	"--athlete": "Kjetil Jansrud", "--age": "28", "--country": "Norway", "--sport": "Alpine Skiing",
	"--gold": "1", "--silver": "0", "--bronze": "1",
}

func withOpts(base docopt.Opts, extra docopt.Opts) docopt.Opts {
	out := docopt.Opts{}
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// newTestCLI runs the CLI against a backend over an in-memory store.
func newTestCLI(t *testing.T) (*cli, *bytes.Buffer, func()) {
	svc := service.New(service.WithDBPath(":memory:"), service.WithSeedCount(0))
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start service: %v", err)
	}
	mux := http.NewServeMux()
	api.NewServer(svc).Register(context.Background(), mux)
	srv := httptest.NewServer(mux)

	c := client.New(client.WithBaseURL(srv.URL), client.WithWorkers(1))
	c.Start(context.Background())

	out := &bytes.Buffer{}
	cleanup := func() {
		_ = c.Stop(context.Background())
		srv.Close()
		svc.Stop()
	}
	return &cli{data: c, out: out, timeout: 2 * time.Second}, out, cleanup
}

func TestCommands(t *testing.T) {
	Convey("Given gridctl against a running backend", t, func() {
		ctx := context.Background()
		cmd, out, cleanup := newTestCLI(t)
		defer cleanup()

		So(cmd.create(ctx, kjetil), ShouldBeNil)
		So(out.String(), ShouldEqual, "created 1: Kjetil Jansrud (Norway, Alpine Skiing)\n")
		out.Reset()

		Convey("When the top level grouped by country is read", func() {
			err := cmd.read(ctx, docopt.Opts{"--group": "country"})

			Convey("Then the group values and count are printed", func() {
				So(err, ShouldBeNil)
				So(out.String(), ShouldContainSubstring, "COUNTRY")
				So(out.String(), ShouldContainSubstring, "Norway")
				So(out.String(), ShouldEndWith, "count: 1\n")
			})
		})

		Convey("When the leaves are read", func() {
			err := cmd.read(ctx, docopt.Opts{"--sort": "gold:desc", "--start": "0", "--end": "10"})

			Convey("Then the record is printed as a table row", func() {
				So(err, ShouldBeNil)
				So(out.String(), ShouldContainSubstring, "ATHLETE")
				So(out.String(), ShouldContainSubstring, "Kjetil Jansrud")
			})
		})

		Convey("When set filter values are listed", func() {
			err := cmd.filterValues(ctx, docopt.Opts{"<field>": "sport"})

			Convey("Then one value per line is printed", func() {
				So(err, ShouldBeNil)
				So(out.String(), ShouldEqual, "Alpine Skiing\n")
			})
		})

		Convey("When the record is updated and deleted", func() {
			So(cmd.update(ctx, withOpts(kjetil, docopt.Opts{"<id>": "1", "--gold": "2"})), ShouldBeNil)
			So(cmd.delete(ctx, docopt.Opts{"<id>": "1"}), ShouldBeNil)

			Convey("Then both acknowledgements are printed", func() {
				So(out.String(), ShouldEqual, "updated 1\ndeleted 1\n")
			})
		})

		Convey("When a record with a bad age is created", func() {
			err := cmd.create(ctx, withOpts(kjetil, docopt.Opts{"--age": "old"}))

			Convey("Then the form error names the flag", func() {
				So(errors.Is(err, grid.ErrFormInvalid), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "--age")
				So(out.String(), ShouldBeEmpty)
			})
		})

		Convey("When a filter is not JSON", func() {
			err := cmd.read(ctx, docopt.Opts{"--filter": "{"})

			Convey("Then it is refused before any call", func() {
				So(errors.Is(err, errBadFlag), ShouldBeTrue)
			})
		})
	})
}

func TestInteractiveCreate(t *testing.T) {
	Convey("Given gridctl on a terminal", t, func() {
		ctx := context.Background()
		cmd, out, cleanup := newTestCLI(t)
		defer cleanup()

		Convey("When the age is wrong the first time", func() {
			in := strings.NewReader("Marit Bjorgen\nold\nNorway\nCross Country Skiing\n3\n1\n1\n29\n")
			err := cmd.createInteractive(ctx, in)

			Convey("Then only the age is asked again and the record is created", func() {
				So(err, ShouldBeNil)
				So(strings.Count(out.String(), "Age: "), ShouldEqual, 2)
				So(out.String(), ShouldContainSubstring, "created 1: Marit Bjorgen (Norway, Cross Country Skiing)")
			})
		})

		Convey("When input ends early", func() {
			err := cmd.createInteractive(ctx, strings.NewReader("Marit Bjorgen\n"))

			Convey("Then the dialog is cancelled", func() {
				So(errors.Is(err, errCanceled), ShouldBeTrue)
			})
		})
	})
}

func TestNoReply(t *testing.T) {
	Convey("Given a backend that always fails", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()
		c := client.New(client.WithBaseURL(srv.URL), client.WithWorkers(1))
		c.Start(context.Background())
		defer func() { _ = c.Stop(context.Background()) }()
		cmd := &cli{data: c, out: &bytes.Buffer{}, timeout: 200 * time.Millisecond}

		Convey("Then a delete reports the missing reply", func() {
			err := cmd.delete(context.Background(), docopt.Opts{"<id>": "3"})
			So(errors.Is(err, errNoReply), ShouldBeTrue)
		})
	})
}

func TestSeedStore(t *testing.T) {
	Convey("Given an in-memory database", t, func() {
		out := &bytes.Buffer{}
		cfg := config.New(context.Background())

		Convey("When seeded with a count", func() {
			err := seedStore(context.Background(), out, docopt.Opts{"--db": ":memory:", "--count": "10"}, cfg)

			Convey("Then the records are written", func() {
				So(err, ShouldBeNil)
				So(out.String(), ShouldEqual, "seeded 10 records into :memory: (10 total)\n")
			})
		})

		Convey("When the count is not a number", func() {
			err := seedStore(context.Background(), out, docopt.Opts{"--db": ":memory:", "--count": "many"}, cfg)

			Convey("Then it is refused", func() {
				So(errors.Is(err, errBadFlag), ShouldBeTrue)
			})
		})
	})
}
