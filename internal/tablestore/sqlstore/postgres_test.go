package sqlstore

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/zhmu-100/RationService/internal/tablestore"
	"github.com/zhmu-100/RationService/internal/tablestore/tablestoretest"
)

// TestPostgres_Compliance needs Docker; set RATION_TESTCONTAINERS=1 to run it.
func TestPostgres_Compliance(t *testing.T) {
	if os.Getenv("RATION_TESTCONTAINERS") != "1" {
		t.Skip("set RATION_TESTCONTAINERS=1 to run against a postgres container")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "ration",
				"POSTGRES_PASSWORD": "ration",
				"POSTGRES_DB":       "ration",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)
	dsn := fmt.Sprintf("postgres://ration:ration@%s:%s/ration?sslmode=disable", host, port.Port())

	tablestoretest.Run(t, func(t *testing.T) tablestore.Client {
		db, err := OpenPostgres(dsn)
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })
		s, err := New(db, Postgres)
		require.NoError(t, err)
		require.NoError(t, s.EnsureSchema(ctx))
		return s
	})
}
