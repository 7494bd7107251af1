// Package sqlstore implements tablestore.Client on a SQL database so the table
// service can run locally on sqlite or postgres.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/zhmu-100/RationService/internal/tablestore"
)

// Store is a tablestore.Client over database/sql. Only tables listed in
// tablestore.Schema are accepted.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

// New wraps an open database.
func New(db *sql.DB, dialect Dialect) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("nil db")
	}
	if _, err := ParseDialect(string(dialect)); err != nil {
		return nil, err
	}
	return &Store{db: db, dialect: dialect}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the connection.
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// Create inserts one row. Dictionary tables ignore an existing key.
func (s *Store) Create(ctx context.Context, table string, data map[string]string) error {
	spec, err := tableFor("create", table)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return tablestore.NewStoreError("create", table, "no columns given")
	}
	cols := sortedKeys(data)
	marks := make([]string, len(cols))
	args := make([]interface{}, len(cols))
	for i, c := range cols {
		if !tablestore.ValidIdentifier(c) {
			return tablestore.NewStoreError("create", table, fmt.Sprintf("invalid column %q", c))
		}
		v, err := bindValue(spec, c, data[c])
		if err != nil {
			return tablestore.NewStoreError("create", table, err.Error())
		}
		marks[i] = s.dialect.placeholder(i + 1)
		args[i] = v
	}
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(cols, ", "), strings.Join(marks, ", "))
	if spec.IgnoreDuplicates && spec.Key != "" {
		q += fmt.Sprintf(" ON CONFLICT (%s) DO NOTHING", spec.Key)
	}
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return tablestore.NewStoreError("create", table, err.Error())
	}
	return nil
}

// Read returns the rows matching every filter. NULL cells read as "".
func (s *Store) Read(ctx context.Context, req tablestore.ReadRequest) ([]tablestore.Row, error) {
	req = req.Normalized()
	spec, err := tableFor("read", req.Table)
	if err != nil {
		return nil, err
	}
	projection := "*"
	if !(len(req.Columns) == 1 && req.Columns[0] == "*") {
		for _, c := range req.Columns {
			if !tablestore.ValidIdentifier(c) {
				return nil, tablestore.NewStoreError("read", req.Table, fmt.Sprintf("invalid column %q", c))
			}
		}
		projection = strings.Join(req.Columns, ", ")
	}
	q := fmt.Sprintf("SELECT %s FROM %s", projection, req.Table)
	var (
		where []string
		args  []interface{}
	)
	for i, c := range sortedKeys(req.Filters) {
		if !tablestore.ValidIdentifier(c) {
			return nil, tablestore.NewStoreError("read", req.Table, fmt.Sprintf("invalid filter column %q", c))
		}
		v, err := bindValue(spec, c, req.Filters[c])
		if err != nil {
			return nil, tablestore.NewStoreError("read", req.Table, err.Error())
		}
		where = append(where, c+" = "+s.dialect.placeholder(i+1))
		args = append(args, v)
	}
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, tablestore.NewStoreError("read", req.Table, err.Error())
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	out := []tablestore.Row{}
	for rows.Next() {
		cells := make([]sql.NullString, len(names))
		dest := make([]interface{}, len(names))
		for i := range cells {
			dest[i] = &cells[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", req.Table, err)
		}
		row := make(tablestore.Row, len(names))
		for i, n := range names {
			row[n] = cells[i].String
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", req.Table, err)
	}
	return out, nil
}

// Delete reports false without error when the table is unknown, the condition
// is outside the supported grammar or names a column the table lacks, or
// nothing matched.
func (s *Store) Delete(ctx context.Context, table, condition string, params []string) (bool, error) {
	spec, err := tableFor("delete", table)
	if err != nil {
		return false, nil
	}
	terms, err := tablestore.ParseCondition(condition, params)
	if err != nil {
		return false, nil
	}
	where := make([]string, len(terms))
	args := make([]interface{}, len(terms))
	for i, t := range terms {
		if !spec.HasColumn(t.Column) {
			return false, nil
		}
		v, err := bindValue(spec, t.Column, params[i])
		if err != nil {
			return false, nil
		}
		where[i] = fmt.Sprintf("%s %s %s", t.Column, t.Op, s.dialect.placeholder(i+1))
		args[i] = v
	}
	res, err := s.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE %s", table, strings.Join(where, " AND ")), args...)
	if err != nil {
		return false, fmt.Errorf("tablestore delete %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("tablestore delete %s: %w", table, err)
	}
	return n > 0, nil
}

func tableFor(op, name string) (tablestore.TableSpec, error) {
	spec, ok := tablestore.LookupTable(name)
	if !ok {
		return tablestore.TableSpec{}, tablestore.NewStoreError(op, name, "unknown table")
	}
	return spec, nil
}

// bindValue converts a wire string into the driver argument for column.
// Empty numeric cells bind as NULL.
func bindValue(spec tablestore.TableSpec, column, v string) (interface{}, error) {
	if !spec.IsNumeric(column) {
		return v, nil
	}
	if strings.TrimSpace(v) == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return nil, fmt.Errorf("column %s: %q is not a number", column, v)
	}
	return f, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var _ tablestore.Client = (*Store)(nil)
