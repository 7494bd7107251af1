// Package httpstore implements tablestore.Client over the table service's
// JSON wire protocol.
package httpstore

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"github.com/zhmu-100/RationService/internal/tablestore"
)

// Mode selects how the base URL is formed from host and port.
type Mode string

const (
	// ModeLocal talks to the table service directly: http://host:port.
	ModeLocal Mode = "local"
	// ModeGateway goes through the API gateway: http://host:port/api/db.
	ModeGateway Mode = "gateway"
)

// BaseURL builds the table service URL for mode.
func BaseURL(mode Mode, host string, port int) (string, error) {
	switch Mode(strings.ToLower(string(mode))) {
	case ModeLocal:
		return fmt.Sprintf("http://%s:%d", host, port), nil
	case ModeGateway:
		return fmt.Sprintf("http://%s:%d/api/db", host, port), nil
	default:
		return "", fmt.Errorf("unknown table store mode %q", mode)
	}
}

// Client is safe for concurrent use.
type Client struct {
	http *resty.Client
}

// New returns a Client rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	c := &Client{http: resty.New().
		SetHeader("Content-Type", "application/json").
		SetTimeout(30 * time.Second)}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	c.http.SetBaseURL(strings.TrimRight(baseURL, "/"))
	return c, nil
}

// Create inserts one row. Any reply other than {"success":true} is a
// *tablestore.StoreError.
func (c *Client) Create(ctx context.Context, table string, data map[string]string) error {
	if data == nil {
		data = map[string]string{}
	}
	start := time.Now()
	var ack tablestore.Response
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(tablestore.CreateRequest{Table: table, Data: data}).
		SetResult(&ack).
		SetError(&ack).
		Post("/create")
	if err != nil {
		observe("create", table, outcomeTransport, start)
		return fmt.Errorf("tablestore create %s: %w", table, err)
	}
	if !ack.OK() {
		observe("create", table, outcomeStoreError, start)
		return tablestore.NewStoreError("create", table, failureMessage(ack.Error, resp))
	}
	observe("create", table, outcomeOK, start)
	return nil
}

// Read returns the matching rows with every cell flattened to text.
func (c *Client) Read(ctx context.Context, req tablestore.ReadRequest) ([]tablestore.Row, error) {
	req = req.Normalized()
	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		Post("/read")
	if err != nil {
		observe("read", req.Table, outcomeTransport, start)
		return nil, fmt.Errorf("tablestore read %s: %w", req.Table, err)
	}
	body := resp.String()
	if resp.IsError() || !gjson.Valid(body) || !gjson.Parse(body).IsArray() {
		observe("read", req.Table, outcomeStoreError, start)
		return nil, tablestore.NewStoreError("read", req.Table, failureMessage(gjson.Get(body, "error").String(), resp))
	}
	rows := decodeRows(gjson.Parse(body))
	observe("read", req.Table, outcomeOK, start)
	return rows, nil
}

// Delete reports whether the store acknowledged the delete. An explicit
// {"success":false} is false with no error; an error status without an
// acknowledgement body is a *tablestore.StoreError.
func (c *Client) Delete(ctx context.Context, table, condition string, params []string) (bool, error) {
	if params == nil {
		params = []string{}
	}
	start := time.Now()
	var ack tablestore.Response
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(tablestore.DeleteRequest{Table: table, Condition: condition, ConditionParams: params}).
		SetResult(&ack).
		SetError(&ack).
		Delete("/delete")
	if err != nil {
		observe("delete", table, outcomeTransport, start)
		return false, fmt.Errorf("tablestore delete %s: %w", table, err)
	}
	if !ack.OK() {
		observe("delete", table, outcomeStoreError, start)
		if resp.IsError() && !gjson.Get(resp.String(), "success").Exists() {
			return false, tablestore.NewStoreError("delete", table, failureMessage(ack.Error, resp))
		}
		return false, nil
	}
	observe("delete", table, outcomeOK, start)
	return true, nil
}

// decodeRows flattens a JSON array of objects. Numbers keep their decimal
// text, booleans become "true"/"false", null becomes "" and nested values
// keep their raw JSON.
func decodeRows(arr gjson.Result) []tablestore.Row {
	rows := []tablestore.Row{}
	arr.ForEach(func(_, obj gjson.Result) bool {
		row := tablestore.Row{}
		obj.ForEach(func(k, v gjson.Result) bool {
			row[k.String()] = v.String()
			return true
		})
		rows = append(rows, row)
		return true
	})
	return rows
}

func failureMessage(msg string, resp *resty.Response) string {
	if msg != "" {
		return msg
	}
	if resp != nil && resp.StatusCode() != http.StatusOK {
		return fmt.Sprintf("status %d", resp.StatusCode())
	}
	return ""
}

func observe(op, table, outcome string, start time.Time) {
	requestsTotal.WithLabelValues(op, table, outcome).Inc()
	requestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

var _ tablestore.Client = (*Client)(nil)
