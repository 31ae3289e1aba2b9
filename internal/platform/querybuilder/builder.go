package querybuilder

import (
	"fmt"
	"strconv"
	"strings"
)

// sqlWriter accumulates SQL text and the positional arguments bound to it.
type sqlWriter struct {
	sql  strings.Builder
	args []any
}

func (w *sqlWriter) raw(s string) {
	w.sql.WriteString(s)
}

// bind appends the value and writes its $n placeholder.
func (w *sqlWriter) bind(value any) {
	w.args = append(w.args, value)
	w.sql.WriteString("$")
	w.sql.WriteString(strconv.Itoa(len(w.args)))
}

// expand copies expr, rebinding each ? to the next value in exprArgs. With no
// values the expression is copied as-is.
func (w *sqlWriter) expand(expr string, exprArgs []any) {
	if len(exprArgs) == 0 {
		w.raw(expr)
		return
	}

	next := 0
	for i := 0; i < len(expr); i++ {
		if expr[i] != '?' {
			w.sql.WriteByte(expr[i])
			continue
		}
		if next >= len(exprArgs) {
			w.sql.WriteByte('?')
			continue
		}
		w.bind(exprArgs[next])
		next++
	}
}

func (w *sqlWriter) result() (string, []any) {
	return w.sql.String(), w.args
}

// Condition renders one WHERE predicate.
type Condition struct {
	write func(w *sqlWriter)
}

func Eq(column string, value any) Condition {
	return compare(column, "=", value)
}

func Gte(column string, value any) Condition {
	return compare(column, ">=", value)
}

func Lte(column string, value any) Condition {
	return compare(column, "<=", value)
}

func compare(column, op string, value any) Condition {
	return Condition{write: func(w *sqlWriter) {
		w.raw(column)
		w.raw(" ")
		w.raw(op)
		w.raw(" ")
		w.bind(value)
	}}
}

// In matches any of values. An empty list renders a predicate that matches
// no rows.
func In(column string, values []any) Condition {
	return Condition{write: func(w *sqlWriter) {
		if len(values) == 0 {
			w.raw("1=0")
			return
		}
		w.raw(column)
		w.raw(" IN (")
		for i, v := range values {
			if i > 0 {
				w.raw(", ")
			}
			w.bind(v)
		}
		w.raw(")")
	}}
}

func IsNull(column string) Condition {
	return Condition{write: func(w *sqlWriter) {
		w.raw(column)
		w.raw(" IS NULL")
	}}
}

// Expr embeds a raw SQL fragment, rebinding its ? placeholders.
func Expr(expr string, args ...any) Condition {
	return Condition{write: func(w *sqlWriter) {
		w.expand(expr, args)
	}}
}

func writeWhere(w *sqlWriter, conds []Condition) {
	if len(conds) == 0 {
		return
	}
	w.raw(" WHERE ")
	for i, c := range conds {
		if i > 0 {
			w.raw(" AND ")
		}
		c.write(w)
	}
}

type SelectBuilder struct {
	columns []string
	table   string
	conds   []Condition
	order   []string
	limit   int
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: append([]string(nil), columns...)}
}

func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.table = table
	return b
}

func (b *SelectBuilder) Where(conditions ...Condition) *SelectBuilder {
	b.conds = append(b.conds, conditions...)
	return b
}

func (b *SelectBuilder) OrderBy(parts ...string) *SelectBuilder {
	b.order = append(b.order, parts...)
	return b
}

func (b *SelectBuilder) Limit(limit int) *SelectBuilder {
	b.limit = limit
	return b
}

func (b *SelectBuilder) ToSQL() (string, []any, error) {
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("select columns are required")
	}
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("select table is required")
	}

	var w sqlWriter
	w.raw("SELECT ")
	w.raw(strings.Join(b.columns, ", "))
	w.raw(" FROM ")
	w.raw(b.table)
	writeWhere(&w, b.conds)
	if len(b.order) > 0 {
		w.raw(" ORDER BY ")
		w.raw(strings.Join(b.order, ", "))
	}
	if b.limit > 0 {
		w.raw(" LIMIT ")
		w.raw(strconv.Itoa(b.limit))
	}

	sql, args := w.result()
	return sql, args, nil
}

type InsertBuilder struct {
	table   string
	columns []string
	rows    [][]any
	tail    string
}

func InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

func (b *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	b.columns = append([]string(nil), columns...)
	return b
}

func (b *InsertBuilder) Values(values ...any) *InsertBuilder {
	b.rows = append(b.rows, append([]any(nil), values...))
	return b
}

// Suffix appends raw SQL after the VALUES list, e.g. a RETURNING clause.
func (b *InsertBuilder) Suffix(sql string) *InsertBuilder {
	b.tail = strings.TrimSpace(sql)
	return b
}

func (b *InsertBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("insert table is required")
	}
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("insert columns are required")
	}
	if len(b.rows) == 0 {
		return "", nil, fmt.Errorf("insert values are required")
	}

	var w sqlWriter
	w.raw("INSERT INTO ")
	w.raw(b.table)
	w.raw(" (")
	w.raw(strings.Join(b.columns, ", "))
	w.raw(") VALUES ")

	for i, row := range b.rows {
		if len(row) != len(b.columns) {
			return "", nil, fmt.Errorf("insert row %d has %d values, expected %d", i, len(row), len(b.columns))
		}
		if i > 0 {
			w.raw(", ")
		}
		w.raw("(")
		for j, v := range row {
			if j > 0 {
				w.raw(", ")
			}
			w.bind(v)
		}
		w.raw(")")
	}

	if b.tail != "" {
		w.raw(" ")
		w.raw(b.tail)
	}

	sql, args := w.result()
	return sql, args, nil
}

type assignment struct {
	column   string
	value    any
	expr     string
	exprArgs []any
	isExpr   bool
}

type UpdateBuilder struct {
	table   string
	assigns []assignment
	conds   []Condition
	tail    string
}

func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

func (b *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	b.assigns = append(b.assigns, assignment{column: column, value: value})
	return b
}

// SetExpr assigns a raw SQL expression, rebinding its ? placeholders.
func (b *UpdateBuilder) SetExpr(column, expr string, args ...any) *UpdateBuilder {
	b.assigns = append(b.assigns, assignment{column: column, expr: expr, exprArgs: args, isExpr: true})
	return b
}

func (b *UpdateBuilder) Where(conditions ...Condition) *UpdateBuilder {
	b.conds = append(b.conds, conditions...)
	return b
}

func (b *UpdateBuilder) Suffix(sql string) *UpdateBuilder {
	b.tail = strings.TrimSpace(sql)
	return b
}

func (b *UpdateBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("update table is required")
	}
	if len(b.assigns) == 0 {
		return "", nil, fmt.Errorf("update sets are required")
	}

	var w sqlWriter
	w.raw("UPDATE ")
	w.raw(b.table)
	w.raw(" SET ")

	for i, a := range b.assigns {
		if i > 0 {
			w.raw(", ")
		}
		w.raw(a.column)
		w.raw(" = ")
		if a.isExpr {
			w.expand(a.expr, a.exprArgs)
		} else {
			w.bind(a.value)
		}
	}

	writeWhere(&w, b.conds)
	if b.tail != "" {
		w.raw(" ")
		w.raw(b.tail)
	}

	sql, args := w.result()
	return sql, args, nil
}
