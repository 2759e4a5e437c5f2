package querybuilder

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrMissingTable   = errors.New("querybuilder: table is required")
	ErrMissingColumns = errors.New("querybuilder: columns are required")
)

// sqlWriter collects statement text and the arguments bound to its $n placeholders.
type sqlWriter struct {
	strings.Builder
	args []any
}

func (w *sqlWriter) bind(value any) {
	w.args = append(w.args, value)
	w.WriteString("$")
	w.WriteString(strconv.Itoa(len(w.args)))
}

// bindExpr binds args to the ? markers of expr in order. Markers without an
// argument are written as is.
func (w *sqlWriter) bindExpr(expr string, args []any) {
	for len(args) > 0 {
		i := strings.IndexByte(expr, '?')
		if i < 0 {
			break
		}
		w.WriteString(expr[:i])
		w.bind(args[0])
		args = args[1:]
		expr = expr[i+1:]
	}
	w.WriteString(expr)
}

func (w *sqlWriter) where(conditions []Condition) {
	for i, cond := range conditions {
		if i == 0 {
			w.WriteString(" WHERE ")
		} else {
			w.WriteString(" AND ")
		}
		cond(w)
	}
}

// Condition is one predicate; conditions in a WHERE clause are AND-ed.
type Condition func(w *sqlWriter)

func Eq(column string, value any) Condition {
	return func(w *sqlWriter) {
		w.WriteString(column)
		w.WriteString(" = ")
		w.bind(value)
	}
}

// Any matches rows whose array column contains value: `$n = ANY(column)`.
func Any(column string, value any) Condition {
	return func(w *sqlWriter) {
		w.bind(value)
		w.WriteString(" = ANY(")
		w.WriteString(column)
		w.WriteString(")")
	}
}

// Expr is a raw predicate with ? markers, e.g. Expr("status <> ?", "sent").
func Expr(expr string, args ...any) Condition {
	return func(w *sqlWriter) {
		w.bindExpr(expr, args)
	}
}

type SelectBuilder struct {
	columns []string
	table   string
	joins   []string
	where   []Condition
	orderBy []string
	limit   int
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: append([]string(nil), columns...)}
}

func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.table = table
	return b
}

func (b *SelectBuilder) Join(clause string) *SelectBuilder {
	b.joins = append(b.joins, "JOIN "+clause)
	return b
}

func (b *SelectBuilder) LeftJoin(clause string) *SelectBuilder {
	b.joins = append(b.joins, "LEFT JOIN "+clause)
	return b
}

func (b *SelectBuilder) Where(conditions ...Condition) *SelectBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *SelectBuilder) OrderBy(parts ...string) *SelectBuilder {
	b.orderBy = append(b.orderBy, parts...)
	return b
}

// Limit of zero or less means no LIMIT clause.
func (b *SelectBuilder) Limit(limit int) *SelectBuilder {
	b.limit = limit
	return b
}

func (b *SelectBuilder) ToSQL() (string, []any, error) {
	if len(b.columns) == 0 {
		return "", nil, ErrMissingColumns
	}
	if strings.TrimSpace(b.table) == "" {
		return "", nil, ErrMissingTable
	}

	var w sqlWriter
	w.WriteString("SELECT ")
	w.WriteString(strings.Join(b.columns, ", "))
	w.WriteString(" FROM ")
	w.WriteString(b.table)
	for _, join := range b.joins {
		w.WriteString(" ")
		w.WriteString(join)
	}
	w.where(b.where)
	if len(b.orderBy) > 0 {
		w.WriteString(" ORDER BY ")
		w.WriteString(strings.Join(b.orderBy, ", "))
	}
	if b.limit > 0 {
		w.WriteString(" LIMIT ")
		w.WriteString(strconv.Itoa(b.limit))
	}
	return w.String(), w.args, nil
}

// InsertBuilder writes a single-row INSERT.
type InsertBuilder struct {
	table   string
	columns []string
	values  []any
	suffix  string
}

func InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

func (b *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	b.columns = append([]string(nil), columns...)
	return b
}

func (b *InsertBuilder) Values(values ...any) *InsertBuilder {
	b.values = append([]any(nil), values...)
	return b
}

// Suffix is appended verbatim, typically an ON CONFLICT clause.
func (b *InsertBuilder) Suffix(sql string) *InsertBuilder {
	b.suffix = strings.TrimSpace(sql)
	return b
}

func (b *InsertBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, ErrMissingTable
	}
	if len(b.columns) == 0 {
		return "", nil, ErrMissingColumns
	}
	if len(b.values) != len(b.columns) {
		return "", nil, fmt.Errorf("querybuilder: insert has %d values for %d columns", len(b.values), len(b.columns))
	}

	var w sqlWriter
	w.WriteString("INSERT INTO ")
	w.WriteString(b.table)
	w.WriteString(" (")
	w.WriteString(strings.Join(b.columns, ", "))
	w.WriteString(") VALUES (")
	for i, value := range b.values {
		if i > 0 {
			w.WriteString(", ")
		}
		w.bind(value)
	}
	w.WriteString(")")
	if b.suffix != "" {
		w.WriteString(" ")
		w.WriteString(b.suffix)
	}
	return w.String(), w.args, nil
}

type assignment struct {
	column string
	value  any
}

type UpdateBuilder struct {
	table string
	sets  []assignment
	where []Condition
}

func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

func (b *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	b.sets = append(b.sets, assignment{column: column, value: value})
	return b
}

func (b *UpdateBuilder) Where(conditions ...Condition) *UpdateBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *UpdateBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, ErrMissingTable
	}
	if len(b.sets) == 0 {
		return "", nil, ErrMissingColumns
	}

	var w sqlWriter
	w.WriteString("UPDATE ")
	w.WriteString(b.table)
	w.WriteString(" SET ")
	for i, set := range b.sets {
		if i > 0 {
			w.WriteString(", ")
		}
		w.WriteString(set.column)
		w.WriteString(" = ")
		w.bind(set.value)
	}
	w.where(b.where)
	return w.String(), w.args, nil
}
