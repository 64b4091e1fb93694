// Package rowmodel holds the wire contract between the grid's server-side row
// model and the backend: read windows, group keys, filter and sort models,
// and the mutation request bodies.
package rowmodel

import (
	"encoding/json"
	"fmt"

	"github.com/okian/medalgrid/internal/domain/model"
)

// Sort directions.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// Column describes a column the grid is grouping by.
type Column struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Field       string `json:"field"`
	AggFunc     string `json:"aggFunc,omitempty"`
}

// SortModelItem is one entry of the active sort.
type SortModelItem struct {
	ColID string `json:"colId"`
	Sort  string `json:"sort"`
}

// ReadRequest asks for a window of rows at one level of the group hierarchy.
// It carries exactly the six fields the engine hands to its datasource.
type ReadRequest struct {
	StartRow     int             `json:"startRow"`
	EndRow       int             `json:"endRow"`
	RowGroupCols []Column        `json:"rowGroupCols"`
	GroupKeys    []string        `json:"groupKeys"`
	FilterModel  FilterModel     `json:"filterModel"`
	SortModel    []SortModelItem `json:"sortModel"`
}

// IsGroupLevel reports whether the request asks for group rows rather than
// records: fewer keys have been expanded than there are group columns.
func (r ReadRequest) IsGroupLevel() bool {
	return len(r.GroupKeys) < len(r.RowGroupCols)
}

// GroupField is the column whose distinct values form the requested level.
// It is empty at leaf level.
func (r ReadRequest) GroupField() string {
	if !r.IsGroupLevel() {
		return ""
	}
	return r.RowGroupCols[len(r.GroupKeys)].Field
}

// Windowed reports whether the request bounds the rows returned. The full
// store asks for everything and leaves the window empty.
func (r ReadRequest) Windowed() bool {
	return r.EndRow > r.StartRow
}

// Validate rejects unknown columns, malformed filters and sorts, and group
// keys deeper than the group columns.
func (r ReadRequest) Validate() error {
	if r.StartRow < 0 || r.EndRow < 0 {
		return fmt.Errorf("%w: negative bound", ErrInvalidWindow)
	}
	if len(r.GroupKeys) > len(r.RowGroupCols) {
		return fmt.Errorf("%w: %d group keys for %d group columns", ErrInvalidColumn, len(r.GroupKeys), len(r.RowGroupCols))
	}
	for _, c := range r.RowGroupCols {
		if !model.IsField(c.Field) {
			return fmt.Errorf("%w: group by %q", ErrInvalidColumn, c.Field)
		}
	}
	for _, s := range r.SortModel {
		if !model.IsField(s.ColID) {
			return fmt.Errorf("%w: sort by %q", ErrInvalidColumn, s.ColID)
		}
		if s.Sort != SortAsc && s.Sort != SortDesc {
			return fmt.Errorf("%w: direction %q", ErrInvalidSort, s.Sort)
		}
	}
	return r.FilterModel.Validate()
}

// Row is one row of a read response: a full record at leaf level or just the
// group column value at a group level.
type Row map[string]any

// Record decodes a leaf row.
func (r Row) Record() (model.Record, error) {
	var rec model.Record
	b, err := json.Marshal(r)
	if err != nil {
		return rec, err
	}
	err = json.Unmarshal(b, &rec)
	return rec, err
}

// RowFromRecord encodes a record as a leaf row.
func RowFromRecord(rec model.Record) Row {
	return Row{
		model.FieldID:      rec.ID,
		model.FieldAthlete: rec.Athlete,
		model.FieldAge:     rec.Age,
		model.FieldCountry: rec.Country,
		model.FieldSport:   rec.Sport,
		model.FieldGold:    rec.Gold,
		model.FieldSilver:  rec.Silver,
		model.FieldBronze:  rec.Bronze,
	}
}

// ReadResponse is the reply to a ReadRequest. Count is the number of rows
// matching at the requested level, across all windows.
type ReadResponse struct {
	Rows  []Row `json:"rows"`
	Count int   `json:"count"`
}

// UpdateRequest replaces the stored record with the given id.
type UpdateRequest struct {
	ID         int64        `json:"id"`
	UpdateData model.Record `json:"updateData"`
}

// DeleteRequest removes the record with the given id.
type DeleteRequest struct {
	ID int64 `json:"id"`
}

// FilterValuesRequest asks for the distinct values of Field under the
// filters active on the other columns.
type FilterValuesRequest struct {
	Field       string      `json:"field"`
	FilterModel FilterModel `json:"filterModel"`
}

// Validate checks the field and the filter model.
func (r FilterValuesRequest) Validate() error {
	if !model.IsField(r.Field) {
		return fmt.Errorf("%w: %q", ErrInvalidColumn, r.Field)
	}
	return r.FilterModel.Validate()
}

// Ack acknowledges an update or delete.
type Ack struct {
	Status string `json:"status"`
	ID     int64  `json:"id"`
}
