// Package tablestore defines the contract of the remote table service: flat rows,
// equality filters and unconditional single-row create/read/delete.
// Implementations live under internal/tablestore/<driver>/ (httpstore, sqlstore).
package tablestore

import "context"

// Client is the transport to a table service. Implementations hold no
// request-scoped state and are safe for concurrent use.
type Client interface {
	// Create inserts one row. Every value travels as a string.
	Create(ctx context.Context, table string, data map[string]string) error
	// Read returns the rows of req.Table matching every filter by equality.
	// Empty filters return the whole table.
	Read(ctx context.Context, req ReadRequest) ([]Row, error)
	// Delete removes the rows matching condition and reports whether the store
	// acknowledged the call with success=true.
	Delete(ctx context.Context, table, condition string, params []string) (bool, error)
}

// AllColumns is the projection used when a read names no columns.
var AllColumns = []string{"*"}

// ReadRequest selects rows from one table.
type ReadRequest struct {
	Table   string            `json:"table"`
	Columns []string          `json:"columns"`
	Filters map[string]string `json:"filters"`
}

// Normalized returns a copy with the wire defaults applied.
func (r ReadRequest) Normalized() ReadRequest {
	out := r
	if len(out.Columns) == 0 {
		out.Columns = AllColumns
	}
	if out.Filters == nil {
		out.Filters = map[string]string{}
	}
	return out
}

// CreateRequest is the wire body of a create call.
type CreateRequest struct {
	Table string            `json:"table"`
	Data  map[string]string `json:"data"`
}

// DeleteRequest is the wire body of a delete call.
type DeleteRequest struct {
	Table           string   `json:"table"`
	Condition       string   `json:"condition"`
	ConditionParams []string `json:"conditionParams"`
}

// Response is the acknowledgement returned by create and delete.
type Response struct {
	Success *bool  `json:"success,omitempty"`
	Error   string `json:"error,omitempty"`
}

// OK reports whether the store acknowledged the call.
func (r Response) OK() bool { return r.Success != nil && *r.Success }

// Succeeded builds a positive acknowledgement.
func Succeeded() Response {
	ok := true
	return Response{Success: &ok}
}

// Failed builds a negative acknowledgement carrying msg.
func Failed(msg string) Response {
	ok := false
	return Response{Success: &ok, Error: msg}
}
