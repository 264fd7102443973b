package querylog

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"reflect"
	"sync"
)

var (
	driversMu sync.Mutex
	drivers   = make(map[string]driver.Driver)
)

// Register wraps d and registers it with database/sql under name:
//
//	querylog.Register("sqlite3-querylog", &sqlite3.SQLiteDriver{})
//	db, _ := sql.Open("sqlite3-querylog", dsn)
//
// Statements executed with a context carrying a Panel are logged to it.
// Registering the same name twice is a no-op, so tests and commands can
// call Register freely.
func Register(name string, d driver.Driver) {
	driversMu.Lock()
	defer driversMu.Unlock()

	if d == nil {
		panic("querylog: Register driver is nil")
	}
	if _, dup := drivers[name]; dup {
		return
	}
	drivers[name] = d
	sql.Register(name, &logDriver{real: d})
}

// observeExec logs a statement that completes when fn returns.
func observeExec(ctx context.Context, query string, args []driver.NamedValue, fn func() (driver.Result, error)) (driver.Result, error) {
	p := FromContext(ctx)
	if p == nil {
		return fn()
	}
	r := p.Start(query, params(args))
	res, err := fn()
	p.Finish(r, affected(res, err))
	return res, err
}

// observeQuery logs a query. sqlite evaluates queries while rows are read,
// so the record completes when the returned rows are exhausted or closed.
func observeQuery(ctx context.Context, query string, args []driver.NamedValue, fn func() (driver.Rows, error)) (driver.Rows, error) {
	p := FromContext(ctx)
	if p == nil {
		return fn()
	}
	r := p.Start(query, params(args))
	rows, err := fn()
	if err != nil {
		p.Finish(r, 0)
		return nil, err
	}
	return &logRows{real: rows, panel: p, record: r}, nil
}

func affected(res driver.Result, err error) int64 {
	if err != nil || res == nil {
		return 0
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0
	}
	return n
}

func params(args []driver.NamedValue) []Param {
	if len(args) == 0 {
		return nil
	}
	out := make([]Param, len(args))
	for i, a := range args {
		out[i] = Param{Name: a.Name, Ordinal: a.Ordinal, Value: a.Value}
	}
	return out
}

func named(values []driver.Value) []driver.NamedValue {
	out := make([]driver.NamedValue, len(values))
	for i, v := range values {
		out[i] = driver.NamedValue{Ordinal: i + 1, Value: v}
	}
	return out
}

type logDriver struct{ real driver.Driver }

func (d *logDriver) Open(name string) (driver.Conn, error) {
	conn, err := d.real.Open(name)
	if err != nil {
		return nil, err
	}
	return &logConn{real: conn}, nil
}

type logConn struct{ real driver.Conn }

func (c *logConn) Prepare(query string) (driver.Stmt, error) {
	stmt, err := c.real.Prepare(query)
	if err != nil {
		return nil, err
	}
	return &logStmt{real: stmt, query: query}, nil
}

func (c *logConn) PrepareContext(ctx context.Context, query string) (driver.Stmt, error) {
	var (
		stmt driver.Stmt
		err  error
	)
	if pc, ok := c.real.(driver.ConnPrepareContext); ok {
		stmt, err = pc.PrepareContext(ctx, query)
	} else {
		stmt, err = c.real.Prepare(query)
	}
	if err != nil {
		return nil, err
	}
	return &logStmt{real: stmt, query: query}, nil
}

func (c *logConn) Close() error { return c.real.Close() }

func (c *logConn) Begin() (driver.Tx, error) { return c.real.Begin() }

func (c *logConn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	if bt, ok := c.real.(driver.ConnBeginTx); ok {
		return bt.BeginTx(ctx, opts)
	}
	return c.real.Begin()
}

func (c *logConn) Ping(ctx context.Context) error {
	if p, ok := c.real.(driver.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (c *logConn) ResetSession(ctx context.Context) error {
	if rs, ok := c.real.(driver.SessionResetter); ok {
		return rs.ResetSession(ctx)
	}
	return nil
}

func (c *logConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	qx, ok := c.real.(driver.QueryerContext)
	if !ok {
		return nil, driver.ErrSkip
	}
	return observeQuery(ctx, query, args, func() (driver.Rows, error) {
		return qx.QueryContext(ctx, query, args)
	})
}

func (c *logConn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	ex, ok := c.real.(driver.ExecerContext)
	if !ok {
		return nil, driver.ErrSkip
	}
	return observeExec(ctx, query, args, func() (driver.Result, error) {
		return ex.ExecContext(ctx, query, args)
	})
}

type logStmt struct {
	real  driver.Stmt
	query string
}

func (s *logStmt) Close() error  { return s.real.Close() }
func (s *logStmt) NumInput() int { return s.real.NumInput() }

func (s *logStmt) Exec(args []driver.Value) (driver.Result, error) {
	return s.ExecContext(context.Background(), named(args))
}

func (s *logStmt) Query(args []driver.Value) (driver.Rows, error) {
	return s.QueryContext(context.Background(), named(args))
}

func (s *logStmt) ExecContext(ctx context.Context, args []driver.NamedValue) (driver.Result, error) {
	return observeExec(ctx, s.query, args, func() (driver.Result, error) {
		if ex, ok := s.real.(driver.StmtExecContext); ok {
			return ex.ExecContext(ctx, args)
		}
		return s.real.Exec(values(args))
	})
}

func (s *logStmt) QueryContext(ctx context.Context, args []driver.NamedValue) (driver.Rows, error) {
	return observeQuery(ctx, s.query, args, func() (driver.Rows, error) {
		if qx, ok := s.real.(driver.StmtQueryContext); ok {
			return qx.QueryContext(ctx, args)
		}
		return s.real.Query(values(args))
	})
}

func values(named []driver.NamedValue) []driver.Value {
	vs := make([]driver.Value, len(named))
	for i, nv := range named {
		vs[i] = nv.Value
	}
	return vs
}

// logRows counts the rows read and finishes the record at the end of the
// result set.
type logRows struct {
	real   driver.Rows
	panel  *Panel
	record *Record
	read   int64
}

func (r *logRows) Columns() []string { return r.real.Columns() }

func (r *logRows) Next(dest []driver.Value) error {
	err := r.real.Next(dest)
	if err != nil {
		r.panel.Finish(r.record, r.read)
		return err
	}
	r.read++
	return nil
}

func (r *logRows) Close() error {
	err := r.real.Close()
	r.panel.Finish(r.record, r.read)
	return err
}

func (r *logRows) ColumnTypeDatabaseTypeName(index int) string {
	if ct, ok := r.real.(driver.RowsColumnTypeDatabaseTypeName); ok {
		return ct.ColumnTypeDatabaseTypeName(index)
	}
	return ""
}

func (r *logRows) ColumnTypeScanType(index int) reflect.Type {
	if ct, ok := r.real.(driver.RowsColumnTypeScanType); ok {
		return ct.ColumnTypeScanType(index)
	}
	return reflect.TypeFor[any]()
}
