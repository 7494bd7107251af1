package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhmu-100/RationService/internal/tablestore"
	"github.com/zhmu-100/RationService/internal/tablestore/httpstore"
	"github.com/zhmu-100/RationService/internal/tablestore/sqlstore"
	"github.com/zhmu-100/RationService/internal/tablestore/tablestoretest"
)

func overHTTP(t *testing.T, backend tablestore.Client, prefix string) tablestore.Client {
	t.Helper()
	ts := httptest.NewServer(NewRouter(backend, zerolog.Nop()))
	t.Cleanup(ts.Close)
	c, err := httpstore.New(ts.URL + prefix)
	require.NoError(t, err)
	return c
}

func TestHTTPOverMemory_Compliance(t *testing.T) {
	tablestoretest.Run(t, func(t *testing.T) tablestore.Client {
		return overHTTP(t, tablestoretest.NewMemory(), "")
	})
}

func TestHTTPOverSQLite_GatewayCompliance(t *testing.T) {
	tablestoretest.Run(t, func(t *testing.T) tablestore.Client {
		db, err := sqlstore.OpenSQLite(filepath.Join(t.TempDir(), "tables.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })
		s, err := sqlstore.New(db, sqlstore.SQLite)
		require.NoError(t, err)
		require.NoError(t, s.EnsureSchema(context.Background()))
		return overHTTP(t, s, GatewayPrefix)
	})
}

func TestHandler_BadJSON(t *testing.T) {
	h := NewRouter(tablestoretest.NewMemory(), zerolog.Nop())
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/create", strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), `"success":false`)
}

func TestHandler_CreateConflict(t *testing.T) {
	m := tablestoretest.NewMemory()
	m.Seed(tablestore.TableFoods, tablestore.Row{"id": "f1"})
	h := NewRouter(m, zerolog.Nop())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/create", strings.NewReader(`{"table":"foods","data":{"id":"f1"}}`)))
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "duplicate")
}

func TestHandler_ReadEmptyIsArray(t *testing.T) {
	h := NewRouter(tablestoretest.NewMemory(), zerolog.Nop())
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/db/read", strings.NewReader(`{"table":"meals"}`)))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rr.Body.String()))
}
