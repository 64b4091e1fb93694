package model

import (
	"encoding/json"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func validRecord() Record {
	return Record{Athlete: "Michael Phelps", Age: 23, Country: "United States", Sport: "Swimming", Gold: 8}
}

func TestRecordValidate(t *testing.T) {
	Convey("Given a record", t, func() {
		Convey("When every field is set", func() {
			Convey("Then it validates", func() {
				So(validRecord().Validate(), ShouldBeNil)
			})
		})

		Convey("When a text field is blank", func() {
			r := validRecord()
			r.Country = "   "

			Convey("Then it is rejected as invalid", func() {
				err := r.Validate()
				So(errors.Is(err, ErrInvalidRecord), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "country")
			})
		})

		Convey("When a medal count is negative", func() {
			r := validRecord()
			r.Bronze = -1

			Convey("Then it is rejected as invalid", func() {
				So(errors.Is(r.Validate(), ErrInvalidRecord), ShouldBeTrue)
			})
		})
	})
}

func TestRecordJSON(t *testing.T) {
	Convey("Given a record without an id", t, func() {
		b, err := json.Marshal(validRecord())
		So(err, ShouldBeNil)

		Convey("Then the id is omitted from the body", func() {
			So(string(b), ShouldNotContainSubstring, `"id"`)
			So(string(b), ShouldContainSubstring, `"athlete":"Michael Phelps"`)
		})
	})

	Convey("Given a stored record", t, func() {
		r := validRecord()
		r.ID = 42
		b, err := json.Marshal(r)
		So(err, ShouldBeNil)

		Convey("Then the id is present", func() {
			So(string(b), ShouldContainSubstring, `"id":42`)
		})
	})
}

func TestRecordFields(t *testing.T) {
	Convey("Given the record columns", t, func() {
		Convey("Then known and numeric columns are recognized", func() {
			So(IsField(FieldSport), ShouldBeTrue)
			So(IsField("medals"), ShouldBeFalse)
			So(IsNumeric(FieldAge), ShouldBeTrue)
			So(IsNumeric(FieldCountry), ShouldBeFalse)
		})

		Convey("Then Value renders group keys", func() {
			r := validRecord()
			v, ok := r.Value(FieldAge)
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, "23")
			v, ok = r.Value(FieldCountry)
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, "United States")
			_, ok = r.Value("medals")
			So(ok, ShouldBeFalse)
			So(r.Total(), ShouldEqual, 8)
		})
	})
}
