// Package query builds parameterised SQL statements for the repositories and
// reports failures as *Error, which carries the statement that was attempted.
package query

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoTable        = errors.New("no table given")
	ErrNoColumns      = errors.New("no columns given")
	ErrUnboundedWrite = errors.New("refusing to write without a WHERE clause")
	ErrArgCount       = errors.New("placeholder and argument count differ")
)

// Error is returned for statements that could not be built or executed.
type Error struct {
	SQL  string
	Args []any
	Err  error
}

func (e *Error) Error() string {
	if e.SQL == "" {
		return fmt.Sprintf("query: %v", e.Err)
	}
	return fmt.Sprintf("query %q: %v", e.SQL, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Builder is implemented by every statement kind in this package.
type Builder interface {
	Build() (string, []any, error)
}

type condition struct {
	expr string
	args []any
}

type where []condition

func (w where) sql() (string, []any) {
	if len(w) == 0 {
		return "", nil
	}
	var (
		parts []string
		args  []any
	)
	for _, c := range w {
		parts = append(parts, c.expr)
		args = append(args, c.args...)
	}
	return " WHERE " + strings.Join(parts, " AND "), args
}

func (w where) check() error {
	for _, c := range w {
		if strings.Count(c.expr, "?") != len(c.args) {
			return fmt.Errorf("%w: %q has %d argument(s)", ErrArgCount, c.expr, len(c.args))
		}
	}
	return nil
}

// SelectBuilder builds SELECT statements.
type SelectBuilder struct {
	table   string
	columns []string
	joins   []string
	where   where
	order   []string
	limit   int
}

func Select(table string, columns ...string) *SelectBuilder {
	return &SelectBuilder{table: table, columns: columns}
}

func (b *SelectBuilder) Join(clause string) *SelectBuilder {
	b.joins = append(b.joins, clause)
	return b
}

func (b *SelectBuilder) Where(expr string, args ...any) *SelectBuilder {
	b.where = append(b.where, condition{expr: expr, args: args})
	return b
}

func (b *SelectBuilder) OrderBy(columns ...string) *SelectBuilder {
	b.order = append(b.order, columns...)
	return b
}

func (b *SelectBuilder) Limit(n int) *SelectBuilder {
	b.limit = n
	return b
}

func (b *SelectBuilder) Build() (string, []any, error) {
	if b.table == "" {
		return "", nil, &Error{Err: ErrNoTable}
	}
	columns := "*"
	if len(b.columns) > 0 {
		columns = strings.Join(b.columns, ", ")
	}

	var sb strings.Builder
	sb.WriteString("SELECT " + columns + " FROM " + b.table)
	for _, j := range b.joins {
		sb.WriteString(" " + j)
	}
	clause, args := b.where.sql()
	sb.WriteString(clause)
	if len(b.order) > 0 {
		sb.WriteString(" ORDER BY " + strings.Join(b.order, ", "))
	}
	if b.limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", b.limit)
	}

	stmt := sb.String()
	if err := b.where.check(); err != nil {
		return "", nil, &Error{SQL: stmt, Args: args, Err: err}
	}
	return stmt, args, nil
}

// InsertBuilder builds INSERT statements.
type InsertBuilder struct {
	table   string
	columns []string
	values  []any
}

func Insert(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

func (b *InsertBuilder) Set(column string, value any) *InsertBuilder {
	b.columns = append(b.columns, column)
	b.values = append(b.values, value)
	return b
}

func (b *InsertBuilder) Build() (string, []any, error) {
	if b.table == "" {
		return "", nil, &Error{Err: ErrNoTable}
	}
	if len(b.columns) == 0 {
		return "", nil, &Error{Err: ErrNoColumns}
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(b.columns)), ", ")
	stmt := "INSERT INTO " + b.table + " (" + strings.Join(b.columns, ", ") + ") VALUES (" + placeholders + ")"
	return stmt, b.values, nil
}

// UpdateBuilder builds UPDATE statements.
type UpdateBuilder struct {
	table   string
	columns []string
	values  []any
	where   where
}

func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

func (b *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	b.columns = append(b.columns, column)
	b.values = append(b.values, value)
	return b
}

func (b *UpdateBuilder) Where(expr string, args ...any) *UpdateBuilder {
	b.where = append(b.where, condition{expr: expr, args: args})
	return b
}

func (b *UpdateBuilder) Build() (string, []any, error) {
	if b.table == "" {
		return "", nil, &Error{Err: ErrNoTable}
	}
	if len(b.columns) == 0 {
		return "", nil, &Error{Err: ErrNoColumns}
	}
	sets := make([]string, len(b.columns))
	for i, c := range b.columns {
		sets[i] = c + " = ?"
	}
	clause, whereArgs := b.where.sql()
	stmt := "UPDATE " + b.table + " SET " + strings.Join(sets, ", ") + clause
	args := append(append([]any{}, b.values...), whereArgs...)

	if len(b.where) == 0 {
		return "", nil, &Error{SQL: stmt, Args: args, Err: ErrUnboundedWrite}
	}
	if err := b.where.check(); err != nil {
		return "", nil, &Error{SQL: stmt, Args: args, Err: err}
	}
	return stmt, args, nil
}

// DeleteBuilder builds DELETE statements.
type DeleteBuilder struct {
	table string
	where where
}

func Delete(table string) *DeleteBuilder {
	return &DeleteBuilder{table: table}
}

func (b *DeleteBuilder) Where(expr string, args ...any) *DeleteBuilder {
	b.where = append(b.where, condition{expr: expr, args: args})
	return b
}

func (b *DeleteBuilder) Build() (string, []any, error) {
	if b.table == "" {
		return "", nil, &Error{Err: ErrNoTable}
	}
	clause, args := b.where.sql()
	stmt := "DELETE FROM " + b.table + clause

	if len(b.where) == 0 {
		return "", nil, &Error{SQL: stmt, Err: ErrUnboundedWrite}
	}
	if err := b.where.check(); err != nil {
		return "", nil, &Error{SQL: stmt, Args: args, Err: err}
	}
	return stmt, args, nil
}

// Runner is satisfied by *sql.DB, *sql.Tx and *sql.Conn.
type Runner interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Exec builds and executes b.
func Exec(ctx context.Context, db Runner, b Builder) (sql.Result, error) {
	stmt, args, err := b.Build()
	if err != nil {
		return nil, err
	}
	res, err := db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return nil, &Error{SQL: stmt, Args: args, Err: err}
	}
	return res, nil
}

// Query builds and runs b. The caller closes the rows.
func Query(ctx context.Context, db Runner, b Builder) (*sql.Rows, error) {
	stmt, args, err := b.Build()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, &Error{SQL: stmt, Args: args, Err: err}
	}
	return rows, nil
}

// QueryRow builds b and scans the first row into dest. sql.ErrNoRows is
// returned unwrapped so callers can compare against it directly.
func QueryRow(ctx context.Context, db Runner, b Builder, dest ...any) error {
	stmt, args, err := b.Build()
	if err != nil {
		return err
	}
	err = db.QueryRowContext(ctx, stmt, args...).Scan(dest...)
	if err == sql.ErrNoRows {
		return err
	}
	if err != nil {
		return &Error{SQL: stmt, Args: args, Err: err}
	}
	return nil
}
