// Package tablestoretest provides an in-memory tablestore.Client with call
// recording and failure injection, and a compliance suite for implementations.
package tablestoretest

import (
	"context"
	"fmt"
	"sync"

	"github.com/zhmu-100/RationService/internal/tablestore"
)

// Call records one round trip made against a Memory client.
type Call struct {
	Op      string
	Table   string
	Data    map[string]string
	Columns []string
	Filters map[string]string
}

type failure struct {
	op, table string
	nth       int
	err       error
}

// Memory is a tablestore.Client holding rows in process. Key and duplicate
// behaviour follow tablestore.Schema; unknown tables accept any row.
type Memory struct {
	mu       sync.Mutex
	tables   map[string][]tablestore.Row
	calls    []Call
	counts   map[string]int
	failures []failure
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{tables: map[string][]tablestore.Row{}, counts: map[string]int{}}
}

// FailNth makes the nth (1-based) call of op on table fail. A nil err produces a
// store-level failure (success=false); a non-nil err is returned as a transport error.
func (m *Memory) FailNth(op, table string, nth int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = append(m.failures, failure{op: op, table: table, nth: nth, err: err})
}

// Calls returns the recorded round trips in order.
func (m *Memory) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// CountCalls returns how many round trips of op hit table ("" matches any table).
func (m *Memory) CountCalls(op, table string) int {
	n := 0
	for _, c := range m.Calls() {
		if c.Op == op && (table == "" || c.Table == table) {
			n++
		}
	}
	return n
}

// Rows returns a copy of every row in table.
func (m *Memory) Rows(table string) []tablestore.Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]tablestore.Row, 0, len(m.tables[table]))
	for _, r := range m.tables[table] {
		out = append(out, copyRow(r))
	}
	return out
}

// Seed inserts rows directly, bypassing key checks and call recording.
func (m *Memory) Seed(table string, rows ...tablestore.Row) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range rows {
		m.tables[table] = append(m.tables[table], copyRow(r))
	}
}

func (m *Memory) Create(ctx context.Context, table string, data map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(Call{Op: "create", Table: table, Data: copyRow(data)}); err != nil {
		return err
	}
	if spec, ok := tablestore.LookupTable(table); ok && spec.Key != "" {
		for _, r := range m.tables[table] {
			if r[spec.Key] == data[spec.Key] {
				if spec.IgnoreDuplicates {
					return nil
				}
				return tablestore.NewStoreError("create", table, fmt.Sprintf("duplicate %s %q", spec.Key, data[spec.Key]))
			}
		}
	}
	m.tables[table] = append(m.tables[table], copyRow(data))
	return nil
}

func (m *Memory) Read(ctx context.Context, req tablestore.ReadRequest) ([]tablestore.Row, error) {
	req = req.Normalized()
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(Call{Op: "read", Table: req.Table, Columns: req.Columns, Filters: copyRow(req.Filters)}); err != nil {
		return nil, err
	}
	out := []tablestore.Row{}
	for _, r := range m.tables[req.Table] {
		if r.Matches(req.Filters) {
			out = append(out, copyRow(r.Project(req.Columns)))
		}
	}
	return out, nil
}

func (m *Memory) Delete(ctx context.Context, table, condition string, params []string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(Call{Op: "delete", Table: table, Filters: map[string]string{"condition": condition}}); err != nil {
		if tablestore.IsStoreError(err) {
			return false, nil
		}
		return false, err
	}
	terms, err := tablestore.ParseCondition(condition, params)
	if err != nil {
		return false, nil
	}
	kept := m.tables[table][:0]
	removed := 0
	for _, r := range m.tables[table] {
		match := true
		for i, t := range terms {
			if !t.Eval(r[t.Column], params[i]) {
				match = false
				break
			}
		}
		if match {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	m.tables[table] = kept
	return removed > 0, nil
}

// record appends the call and returns the injected failure for it, if any.
// Callers must hold m.mu.
func (m *Memory) record(c Call) error {
	m.calls = append(m.calls, c)
	key := c.Op + "/" + c.Table
	m.counts[key]++
	for _, f := range m.failures {
		if f.op == c.Op && f.table == c.Table && f.nth == m.counts[key] {
			if f.err != nil {
				return f.err
			}
			return tablestore.NewStoreError(c.Op, c.Table, "injected failure")
		}
	}
	return nil
}

func copyRow(r map[string]string) tablestore.Row {
	if r == nil {
		return nil
	}
	out := make(tablestore.Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

var _ tablestore.Client = (*Memory)(nil)
