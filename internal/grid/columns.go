package grid

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/okian/medalgrid/internal/domain/model"
)

// Column type names referenced by ColumnDef.Type.
const (
	TypeNumber     = "numberColumn"
	TypeSetFilter  = "setFilterColumn"
	TypeTextFilter = "textFilterColumn"
)

// Engine filter components.
const (
	FilterNumber = "agNumberColumnFilter"
	FilterSet    = "agSetColumnFilter"
	FilterText   = "agTextColumnFilter"
)

// SetFilterValuesFunc supplies the values of a set filter when it opens.
type SetFilterValuesFunc func(ctx context.Context, params SetFilterValuesParams)

// ValueParser turns an edited cell's text into a stored value.
type ValueParser func(s string) (int, error)

// FilterParams configures a column filter. Values is not serialised; a
// browser front-end sees ServerValues instead.
type FilterParams struct {
	Buttons                []string            `json:"buttons,omitempty"`
	CloseOnApply           bool                `json:"closeOnApply,omitempty"`
	SuppressAndOrCondition bool                `json:"suppressAndOrCondition,omitempty"`
	FilterOptions          []string            `json:"filterOptions,omitempty"`
	RefreshValuesOnOpen    bool                `json:"refreshValuesOnOpen,omitempty"`
	ServerValues           bool                `json:"serverValues,omitempty"`
	Values                 SetFilterValuesFunc `json:"-"`
}

// ColumnType is a reusable bundle of column settings.
type ColumnType struct {
	Editable     bool         `json:"editable,omitempty"`
	Filter       string       `json:"filter"`
	FilterParams FilterParams `json:"filterParams"`
	ValueParser  ValueParser  `json:"-"`
}

// ColumnDef is one grid column.
type ColumnDef struct {
	Field string  `json:"field"`
	Type  string  `json:"type"`
	Flex  float64 `json:"flex,omitempty"`
}

var applyReset = []string{"apply", "reset"}

func columnTypes(opts Options, values SetFilterValuesFunc) map[string]ColumnType {
	set := FilterParams{Buttons: applyReset, RefreshValuesOnOpen: true, ServerValues: opts.ServerFilterValues}
	if opts.ServerFilterValues && values != nil {
		set.Values = values
	}

	return map[string]ColumnType{
		TypeNumber: {
			Editable: true,
			Filter:   FilterNumber,
			FilterParams: FilterParams{
				Buttons:                applyReset,
				CloseOnApply:           true,
				SuppressAndOrCondition: true,
				FilterOptions:          []string{"equals", "lessThan", "greaterThan"},
			},
			ValueParser: ParseNumber,
		},
		TypeSetFilter: {
			Filter:       FilterSet,
			FilterParams: set,
		},
		TypeTextFilter: {
			Filter: FilterText,
			FilterParams: FilterParams{
				Buttons:                applyReset,
				CloseOnApply:           true,
				SuppressAndOrCondition: true,
				FilterOptions:          []string{"contains"},
			},
		},
	}
}

func columnDefs() []ColumnDef {
	return []ColumnDef{
		{Field: model.FieldAthlete, Type: TypeTextFilter, Flex: 2},
		{Field: model.FieldAge, Type: TypeNumber},
		{Field: model.FieldCountry, Type: TypeSetFilter, Flex: 1.5},
		{Field: model.FieldSport, Type: TypeSetFilter, Flex: 2},
		{Field: model.FieldGold, Type: TypeNumber},
		{Field: model.FieldSilver, Type: TypeNumber},
		{Field: model.FieldBronze, Type: TypeNumber},
	}
}

// ParseNumber is the value parser of numeric columns and of the creation
// dialog's numeric inputs. It accepts whole numbers, including "3.0".
func ParseNumber(s string) (int, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: %q", ErrNotNumber, s)
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, fmt.Errorf("%w: %q out of range", ErrNotNumber, s)
	}
	return int(f), nil
}
