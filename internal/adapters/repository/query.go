package repository

import (
	"fmt"
	"sort"
	"strings"

	"github.com/okian/medalgrid/internal/domain/model"
	"github.com/okian/medalgrid/internal/domain/rowmodel"
)

const recordsTable = "records"

// query is a parameterized SQL statement. Identifiers are only ever taken from
// model.Fields after validation; every value travels as an argument.
type query struct {
	sql  string
	args []any
}

func quote(field string) string {
	return `"` + field + `"`
}

// whereClause builds the conditions shared by reads, counts and filter value
// lookups: one equality per expanded group key, then one condition per filter.
func whereClause(cols []rowmodel.Column, keys []string, fm rowmodel.FilterModel) (string, []any, error) {
	var (
		conds []string
		args  []any
	)
	for i, key := range keys {
		conds = append(conds, quote(cols[i].Field)+" = ?")
		args = append(args, key)
	}

	// Map iteration order is random; sort for stable statements.
	fields := make([]string, 0, len(fm))
	for f := range fm {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	for _, field := range fields {
		cond, condArgs, err := filterCondition(field, fm[field])
		if err != nil {
			return "", nil, err
		}
		conds = append(conds, cond)
		args = append(args, condArgs...)
	}
	if len(conds) == 0 {
		return "", nil, nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

func filterCondition(field string, f rowmodel.ColumnFilter) (string, []any, error) {
	col := quote(field)
	switch f.FilterType {
	case rowmodel.FilterText:
		text := f.Text()
		switch f.Type {
		case rowmodel.OpContains:
			return col + ` LIKE ? ESCAPE '\'`, []any{"%" + escapeLike(text) + "%"}, nil
		case rowmodel.OpNotContains:
			return col + ` NOT LIKE ? ESCAPE '\'`, []any{"%" + escapeLike(text) + "%"}, nil
		case rowmodel.OpStartsWith:
			return col + ` LIKE ? ESCAPE '\'`, []any{escapeLike(text) + "%"}, nil
		case rowmodel.OpEndsWith:
			return col + ` LIKE ? ESCAPE '\'`, []any{"%" + escapeLike(text)}, nil
		case rowmodel.OpEquals:
			return col + " = ? COLLATE NOCASE", []any{text}, nil
		case rowmodel.OpNotEqual:
			return col + " != ? COLLATE NOCASE", []any{text}, nil
		}
	case rowmodel.FilterNumber:
		n, err := f.Number()
		if err != nil {
			return "", nil, fmt.Errorf("%w: %s: %v", rowmodel.ErrInvalidFilter, field, err)
		}
		switch f.Type {
		case rowmodel.OpEquals:
			return col + " = ?", []any{n}, nil
		case rowmodel.OpNotEqual:
			return col + " != ?", []any{n}, nil
		case rowmodel.OpLessThan:
			return col + " < ?", []any{n}, nil
		case rowmodel.OpLessThanOrEqual:
			return col + " <= ?", []any{n}, nil
		case rowmodel.OpGreaterThan:
			return col + " > ?", []any{n}, nil
		case rowmodel.OpGreaterThanOrEqual:
			return col + " >= ?", []any{n}, nil
		case rowmodel.OpInRange:
			to, err := f.NumberTo()
			if err != nil {
				return "", nil, fmt.Errorf("%w: %s: %v", rowmodel.ErrInvalidFilter, field, err)
			}
			return col + " BETWEEN ? AND ?", []any{n, to}, nil
		}
	case rowmodel.FilterSet:
		if len(f.Values) == 0 {
			// Nothing ticked in the set filter.
			return "1 = 0", nil, nil
		}
		marks := make([]string, len(f.Values))
		args := make([]any, len(f.Values))
		for i, v := range f.Values {
			marks[i] = "?"
			args[i] = v
		}
		return col + " IN (" + strings.Join(marks, ", ") + ")", args, nil
	}
	return "", nil, fmt.Errorf("%w: %s %s on %s", rowmodel.ErrInvalidFilter, f.FilterType, f.Type, field)
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// orderClause keeps only sorts that make sense at the requested level. A group
// level can only be ordered by its own column; leaves fall back to id so that
// consecutive windows never overlap.
func orderClause(req rowmodel.ReadRequest) string {
	var terms []string
	if req.IsGroupLevel() {
		field := req.GroupField()
		dir := "ASC"
		for _, s := range req.SortModel {
			if s.ColID == field && s.Sort == rowmodel.SortDesc {
				dir = "DESC"
			}
		}
		return " ORDER BY " + quote(field) + " " + dir
	}

	sortedByID := false
	for _, s := range req.SortModel {
		terms = append(terms, quote(s.ColID)+" "+strings.ToUpper(s.Sort))
		if s.ColID == model.FieldID {
			sortedByID = true
		}
	}
	if !sortedByID {
		terms = append(terms, quote(model.FieldID)+" ASC")
	}
	return " ORDER BY " + strings.Join(terms, ", ")
}

func limitClause(req rowmodel.ReadRequest, maxWindow int) (string, []any) {
	if !req.Windowed() {
		return "", nil
	}
	n := req.EndRow - req.StartRow
	if maxWindow > 0 && n > maxWindow {
		n = maxWindow
	}
	return " LIMIT ? OFFSET ?", []any{n, req.StartRow}
}

func recordColumns() string {
	cols := make([]string, len(model.Fields))
	for i, f := range model.Fields {
		cols[i] = quote(f)
	}
	return strings.Join(cols, ", ")
}

// buildRead returns the statement for one window of rows at the level the
// request addresses.
func buildRead(req rowmodel.ReadRequest, maxWindow int) (query, error) {
	where, args, err := whereClause(req.RowGroupCols, req.GroupKeys, req.FilterModel)
	if err != nil {
		return query{}, err
	}
	limit, limitArgs := limitClause(req, maxWindow)

	var sb strings.Builder
	if req.IsGroupLevel() {
		field := quote(req.GroupField())
		sb.WriteString("SELECT " + field + " FROM " + recordsTable + where + " GROUP BY " + field)
	} else {
		sb.WriteString("SELECT " + recordColumns() + " FROM " + recordsTable + where)
	}
	sb.WriteString(orderClause(req))
	sb.WriteString(limit)

	return query{sql: sb.String(), args: append(args, limitArgs...)}, nil
}

// buildCount returns the statement counting every row at the requested level.
func buildCount(req rowmodel.ReadRequest) (query, error) {
	where, args, err := whereClause(req.RowGroupCols, req.GroupKeys, req.FilterModel)
	if err != nil {
		return query{}, err
	}
	if req.IsGroupLevel() {
		return query{sql: "SELECT COUNT(DISTINCT " + quote(req.GroupField()) + ") FROM " + recordsTable + where, args: args}, nil
	}
	return query{sql: "SELECT COUNT(*) FROM " + recordsTable + where, args: args}, nil
}

// buildFilterValues returns the distinct values of a column. The column's own
// filter is dropped so the set filter can still offer values it hides.
func buildFilterValues(req rowmodel.FilterValuesRequest) (query, error) {
	where, args, err := whereClause(nil, nil, req.FilterModel.Without(req.Field))
	if err != nil {
		return query{}, err
	}
	col := quote(req.Field)
	return query{
		sql:  "SELECT v FROM (SELECT DISTINCT " + col + " AS v FROM " + recordsTable + where + ") ORDER BY v",
		args: args,
	}, nil
}
