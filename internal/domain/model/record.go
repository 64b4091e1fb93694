// Package model contains the domain entity passed between layers.
package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Column names as they appear on the wire and in the store.
const (
	FieldID      = "id"
	FieldAthlete = "athlete"
	FieldAge     = "age"
	FieldCountry = "country"
	FieldSport   = "sport"
	FieldGold    = "gold"
	FieldSilver  = "silver"
	FieldBronze  = "bronze"
)

// ErrInvalidRecord marks a record that fails validation.
var ErrInvalidRecord = errors.New("invalid record")

// Fields lists every record column in display order, id first.
var Fields = []string{FieldID, FieldAthlete, FieldAge, FieldCountry, FieldSport, FieldGold, FieldSilver, FieldBronze}

var numericFields = map[string]bool{
	FieldID:     true,
	FieldAge:    true,
	FieldGold:   true,
	FieldSilver: true,
	FieldBronze: true,
}

// IsField reports whether name is a record column.
func IsField(name string) bool {
	for _, f := range Fields {
		if f == name {
			return true
		}
	}
	return false
}

// IsNumeric reports whether name is an integer column.
func IsNumeric(name string) bool {
	return numericFields[name]
}

// Record is one athlete performance row. ID is assigned by the backend and
// is zero until the record has been stored.
type Record struct {
	ID      int64  `json:"id,omitempty"`
	Athlete string `json:"athlete"`
	Age     int    `json:"age"`
	Country string `json:"country"`
	Sport   string `json:"sport"`
	Gold    int    `json:"gold"`
	Silver  int    `json:"silver"`
	Bronze  int    `json:"bronze"`
}

// Validate checks the fields a client is allowed to set.
func (r Record) Validate() error {
	switch {
	case strings.TrimSpace(r.Athlete) == "":
		return fmt.Errorf("%w: missing athlete", ErrInvalidRecord)
	case strings.TrimSpace(r.Country) == "":
		return fmt.Errorf("%w: missing country", ErrInvalidRecord)
	case strings.TrimSpace(r.Sport) == "":
		return fmt.Errorf("%w: missing sport", ErrInvalidRecord)
	case r.Age < 0:
		return fmt.Errorf("%w: negative age", ErrInvalidRecord)
	case r.Gold < 0 || r.Silver < 0 || r.Bronze < 0:
		return fmt.Errorf("%w: negative medal count", ErrInvalidRecord)
	}
	return nil
}

// Total is the number of medals won.
func (r Record) Total() int {
	return r.Gold + r.Silver + r.Bronze
}

// Value returns the column value as it would be used for a group key.
func (r Record) Value(field string) (string, bool) {
	switch field {
	case FieldID:
		return strconv.FormatInt(r.ID, 10), true
	case FieldAthlete:
		return r.Athlete, true
	case FieldAge:
		return strconv.Itoa(r.Age), true
	case FieldCountry:
		return r.Country, true
	case FieldSport:
		return r.Sport, true
	case FieldGold:
		return strconv.Itoa(r.Gold), true
	case FieldSilver:
		return strconv.Itoa(r.Silver), true
	case FieldBronze:
		return strconv.Itoa(r.Bronze), true
	}
	return "", false
}
