package postgres

import (
	"fmt"
	"strings"
)

// updateBuilder assembles an UPDATE statement that touches only the columns
// a partial update carries. Placeholders are numbered in the order values
// are added, SET values first and WHERE values after.
type updateBuilder struct {
	table string
	sets  []string
	where []string
	args  []any
}

func newUpdateBuilder(table string) *updateBuilder {
	return &updateBuilder{table: table}
}

// set adds "column = $n" bound to value.
func (b *updateBuilder) set(column string, value any) *updateBuilder {
	b.args = append(b.args, value)
	b.sets = append(b.sets, fmt.Sprintf("%s = $%d", column, len(b.args)))
	return b
}

// setExpr adds a SET clause with a literal SQL expression, e.g. "updated_at = now()".
func (b *updateBuilder) setExpr(clause string) *updateBuilder {
	b.sets = append(b.sets, clause)
	return b
}

// whereEq adds "column = $n" to the WHERE conjunction.
func (b *updateBuilder) whereEq(column string, value any) *updateBuilder {
	b.args = append(b.args, value)
	b.where = append(b.where, fmt.Sprintf("%s = $%d", column, len(b.args)))
	return b
}

// build returns the statement, with returning appended when not empty.
func (b *updateBuilder) build(returning string) (string, []any) {
	var sb strings.Builder
	sb.WriteString("UPDATE ")
	sb.WriteString(b.table)
	sb.WriteString(" SET ")
	sb.WriteString(strings.Join(b.sets, ", "))
	if len(b.where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(b.where, " AND "))
	}
	if returning != "" {
		sb.WriteString(" RETURNING ")
		sb.WriteString(returning)
	}
	return sb.String(), b.args
}
