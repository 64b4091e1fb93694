package rowmodel

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/okian/medalgrid/internal/domain/model"
)

// Filter types sent in ColumnFilter.FilterType.
const (
	FilterText   = "text"
	FilterNumber = "number"
	FilterSet    = "set"
)

// Filter operators sent in ColumnFilter.Type.
const (
	OpContains           = "contains"
	OpNotContains        = "notContains"
	OpEquals             = "equals"
	OpNotEqual           = "notEqual"
	OpStartsWith         = "startsWith"
	OpEndsWith           = "endsWith"
	OpLessThan           = "lessThan"
	OpLessThanOrEqual    = "lessThanOrEqual"
	OpGreaterThan        = "greaterThan"
	OpGreaterThanOrEqual = "greaterThanOrEqual"
	OpInRange            = "inRange"
)

var textOps = map[string]bool{
	OpContains: true, OpNotContains: true, OpEquals: true,
	OpNotEqual: true, OpStartsWith: true, OpEndsWith: true,
}

var numberOps = map[string]bool{
	OpEquals: true, OpNotEqual: true, OpLessThan: true, OpLessThanOrEqual: true,
	OpGreaterThan: true, OpGreaterThanOrEqual: true, OpInRange: true,
}

// ColumnFilter is the filter state of one column as the grid engine reports it.
// Filter and FilterTo hold a string for text filters and a number for number
// filters. Values holds the selected entries of a set filter.
type ColumnFilter struct {
	FilterType string   `json:"filterType"`
	Type       string   `json:"type,omitempty"`
	Filter     any      `json:"filter,omitempty"`
	FilterTo   any      `json:"filterTo,omitempty"`
	Values     []string `json:"values,omitempty"`
}

// FilterModel maps column field to its active filter.
type FilterModel map[string]ColumnFilter

// Without returns a copy of the model with field's filter removed.
func (m FilterModel) Without(field string) FilterModel {
	out := make(FilterModel, len(m))
	for k, v := range m {
		if k != field {
			out[k] = v
		}
	}
	return out
}

// Validate checks column names, filter types and operators.
func (m FilterModel) Validate() error {
	for field, f := range m {
		if !model.IsField(field) {
			return fmt.Errorf("%w: filter on %q", ErrInvalidColumn, field)
		}
		if err := f.validate(field); err != nil {
			return err
		}
	}
	return nil
}

func (f ColumnFilter) validate(field string) error {
	switch f.FilterType {
	case FilterText:
		if !textOps[f.Type] {
			return fmt.Errorf("%w: text operator %q on %s", ErrInvalidFilter, f.Type, field)
		}
	case FilterNumber:
		if !numberOps[f.Type] {
			return fmt.Errorf("%w: number operator %q on %s", ErrInvalidFilter, f.Type, field)
		}
		if _, err := f.Number(); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidFilter, field, err)
		}
		if f.Type == OpInRange {
			if _, err := f.NumberTo(); err != nil {
				return fmt.Errorf("%w: %s: %v", ErrInvalidFilter, field, err)
			}
		}
	case FilterSet:
	default:
		return fmt.Errorf("%w: filter type %q on %s", ErrInvalidFilter, f.FilterType, field)
	}
	return nil
}

// Text returns the text filter operand.
func (f ColumnFilter) Text() string {
	switch v := f.Filter.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// Number returns the number filter operand.
func (f ColumnFilter) Number() (float64, error) {
	return toNumber(f.Filter)
}

// NumberTo returns the upper bound of an inRange number filter.
func (f ColumnFilter) NumberTo() (float64, error) {
	return toNumber(f.FilterTo)
}

func toNumber(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", n)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("not a number: %v", v)
	}
}
