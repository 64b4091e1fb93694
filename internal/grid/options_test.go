package grid

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/okian/medalgrid/internal/domain/rowmodel"
	. "github.com/smartystreets/goconvey/convey"
)

func TestServerSideStoreParams(t *testing.T) {
	Convey("Given the cache block policy", t, func() {
		Convey("When any column is grouped", func() {
			p := ServerSideStoreParams([]rowmodel.Column{{Field: "country"}})

			Convey("Then a bounded full store is used", func() {
				So(p, ShouldResemble, StoreParams{StoreType: "full", CacheBlockSize: 100, MaxBlocksInCache: 5})
			})
		})

		Convey("When nothing is grouped", func() {
			p := ServerSideStoreParams(nil)

			Convey("Then an unbounded partial store is used", func() {
				So(p, ShouldResemble, StoreParams{StoreType: "partial", CacheBlockSize: 20, MaxBlocksInCache: -1})
			})
		})
	})
}

func TestNewGridOptions(t *testing.T) {
	Convey("Given options with server filter values", t, func() {
		var asked string
		values := func(ctx context.Context, p SetFilterValuesParams) { asked = p.Field }
		opts := NewGridOptions(DefaultOptions(), values)

		Convey("Then the fixed engine settings are present", func() {
			So(opts.RowModelType, ShouldEqual, "serverSide")
			So(opts.ServerSideStoreType, ShouldEqual, "partial")
			So(opts.RowGroupPanelShow, ShouldEqual, "always")
			So(opts.RowSelection, ShouldEqual, "single")
			So(opts.DefaultColDef, ShouldResemble, DefaultColDef{Flex: 1, Sortable: true, EnableRowGroup: true})
			So(opts.AutoGroupColumnDef, ShouldResemble, AutoGroupColumnDef{Flex: 2})
		})

		Convey("Then the seven columns are typed", func() {
			So(len(opts.ColumnDefs), ShouldEqual, 7)
			So(opts.ColumnDefs[0], ShouldResemble, ColumnDef{Field: "athlete", Type: TypeTextFilter, Flex: 2})
			So(opts.ColumnDefs[2], ShouldResemble, ColumnDef{Field: "country", Type: TypeSetFilter, Flex: 1.5})
			So(opts.ColumnDefs[6].Type, ShouldEqual, TypeNumber)
		})

		Convey("Then the set filter asks the hook for values", func() {
			set := opts.ColumnTypes[TypeSetFilter]
			So(set.FilterParams.ServerValues, ShouldBeTrue)
			So(set.FilterParams.RefreshValuesOnOpen, ShouldBeTrue)
			set.FilterParams.Values(context.Background(), SetFilterValuesParams{Field: "sport"})
			So(asked, ShouldEqual, "sport")
		})

		Convey("Then the number column parses with ParseNumber", func() {
			num := opts.ColumnTypes[TypeNumber]
			So(num.Editable, ShouldBeTrue)
			So(num.FilterParams.FilterOptions, ShouldResemble, []string{"equals", "lessThan", "greaterThan"})
			n, err := num.ValueParser("12")
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 12)
		})

		Convey("When serialised", func() {
			b, err := json.Marshal(opts)

			Convey("Then hooks are left out", func() {
				So(err, ShouldBeNil)
				So(string(b), ShouldContainSubstring, `"rowModelType":"serverSide"`)
				So(string(b), ShouldContainSubstring, `"serverValues":true`)
				So(string(b), ShouldNotContainSubstring, "ValueParser")
				So(string(b), ShouldNotContainSubstring, "GetServerSideStoreParams")
			})

			Convey("Then both cache policy branches are served", func() {
				So(string(b), ShouldContainSubstring, `"serverSideStoreParams":{"grouped":{"storeType":"full","cacheBlockSize":100,"maxBlocksInCache":5},"flat":{"storeType":"partial","cacheBlockSize":20,"maxBlocksInCache":-1}}`)
			})
		})

		Convey("Then the engine is handed the cache policy", func() {
			So(opts.GetServerSideStoreParams, ShouldNotBeNil)
			So(opts.GetServerSideStoreParams(nil), ShouldResemble, opts.ServerSideStoreParams.Flat)
			So(opts.GetServerSideStoreParams([]rowmodel.Column{{ID: "country", Field: "country"}}), ShouldResemble, opts.ServerSideStoreParams.Grouped)
			So(opts.ServerSideStoreParams.Grouped, ShouldResemble, StoreParams{StoreType: "full", CacheBlockSize: 100, MaxBlocksInCache: 5})
			So(opts.ServerSideStoreParams.Flat, ShouldResemble, StoreParams{StoreType: "partial", CacheBlockSize: 20, MaxBlocksInCache: -1})
		})
	})

	Convey("Given server filter values without a values hook", t, func() {
		opts := NewGridOptions(DefaultOptions(), nil)

		Convey("Then the set filter still asks the server for values", func() {
			set := opts.ColumnTypes[TypeSetFilter]
			So(set.FilterParams.ServerValues, ShouldBeTrue)
			So(set.FilterParams.Values, ShouldBeNil)

			b, err := json.Marshal(opts)
			So(err, ShouldBeNil)
			So(string(b), ShouldContainSubstring, `"serverValues":true`)
		})
	})

	Convey("Given options without server filter values", t, func() {
		opts := NewGridOptions(Options{}, func(context.Context, SetFilterValuesParams) {})

		Convey("Then the set filter has no value source", func() {
			set := opts.ColumnTypes[TypeSetFilter]
			So(set.FilterParams.ServerValues, ShouldBeFalse)
			So(set.FilterParams.Values, ShouldBeNil)
		})
	})
}

func TestParseNumber(t *testing.T) {
	Convey("Given cell and form inputs", t, func() {
		Convey("Then whole numbers parse", func() {
			for in, want := range map[string]int{"0": 0, " 42 ": 42, "3.0": 3, "-1": -1} {
				n, err := ParseNumber(in)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, want)
			}
		})

		Convey("Then everything else is rejected", func() {
			for _, in := range []string{"", "abc", "2.5", "NaN", "1e12"} {
				_, err := ParseNumber(in)
				So(errors.Is(err, ErrNotNumber), ShouldBeTrue)
			}
		})
	})
}
