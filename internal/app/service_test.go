package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/medalgrid/internal/adapters/repository"
	service "github.com/okian/medalgrid/internal/app"
	"github.com/okian/medalgrid/internal/domain/model"
	"github.com/okian/medalgrid/internal/domain/rowmodel"
	"github.com/okian/medalgrid/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

func TestService_Start(t *testing.T) {
	Convey("Given a service over an in-memory database", t, func() {
		svc := service.New(service.WithDBPath(":memory:"), service.WithSeedCount(50))
		defer svc.Stop()

		Convey("When starting the service", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			err := svc.Start(ctx)

			Convey("Then the empty store is seeded", func() {
				So(err, ShouldBeNil)
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
				So(stats["totalRecords"], ShouldEqual, 50)
			})

			Convey("And starting again is a no-op", func() {
				So(svc.Start(ctx), ShouldBeNil)
			})
		})
	})

	Convey("Given a service with seeding disabled", t, func() {
		svc := service.New(service.WithDBPath(":memory:"), service.WithSeedCount(0))
		defer svc.Stop()
		So(svc.Start(context.Background()), ShouldBeNil)

		Convey("Then the store stays empty", func() {
			resp, err := svc.Read(context.Background(), rowmodel.ReadRequest{})
			So(err, ShouldBeNil)
			So(resp.Count, ShouldEqual, 0)
			So(resp.Rows, ShouldBeEmpty)
		})
	})
}

func TestService_Stop(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := service.New(service.WithDBPath(":memory:"), service.WithSeedCount(0))
		So(svc.Start(context.Background()), ShouldBeNil)

		Convey("When stopping the service", func() {
			svc.Stop()

			Convey("Then data calls fail until it is started again", func() {
				So(svc.GetStats()["started"], ShouldEqual, false)
				_, err := svc.Read(context.Background(), rowmodel.ReadRequest{})
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
				svc.Stop()
			})
		})
	})
}

func TestService_Records(t *testing.T) {
	Convey("Given a started service with an injected store", t, func() {
		ctx := context.Background()
		st, err := repository.OpenSQLStore(ctx, ":memory:")
		So(err, ShouldBeNil)
		defer st.Close()

		svc := service.New(service.WithStore(st), service.WithSeedCount(0))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		rec := model.Record{Athlete: "Ian Thorpe", Age: 17, Country: "Australia", Sport: "Swimming", Gold: 3, Silver: 2}

		Convey("When a record is created, updated and deleted", func() {
			created, err := svc.Create(ctx, rec)
			So(err, ShouldBeNil)
			So(created.ID, ShouldBeGreaterThan, 0)

			rec.Gold = 5
			updated, err := svc.Update(ctx, created.ID, rec)
			So(err, ShouldBeNil)

			values, err := svc.FilterValues(ctx, rowmodel.FilterValuesRequest{Field: "country"})
			So(err, ShouldBeNil)

			err = svc.Delete(ctx, created.ID)

			Convey("Then each step reflects the store", func() {
				So(updated.Gold, ShouldEqual, 5)
				So(updated.ID, ShouldEqual, created.ID)
				So(values, ShouldResemble, []string{"Australia"})
				So(err, ShouldBeNil)
				So(errors.Is(svc.Delete(ctx, created.ID), repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When the service stops", func() {
			svc.Stop()

			Convey("Then the injected store is left open", func() {
				_, err := st.Count(ctx)
				So(err, ShouldBeNil)
			})
		})
	})
}
