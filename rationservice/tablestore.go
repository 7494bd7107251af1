package rationservice

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/zhmu-100/RationService/internal/config"
	"github.com/zhmu-100/RationService/internal/tablestore/server"
	"github.com/zhmu-100/RationService/internal/tablestore/sqlstore"
)

// TableStoreName tags logs of the local table service.
const TableStoreName = "ration-tablestore"

// RunTableStore serves the table store wire protocol over sqlite or postgres
// until SIGINT/SIGTERM.
func RunTableStore() error {
	cfg, err := config.New()
	if err != nil {
		return err
	}
	log := newLogger(cfg, TableStoreName)

	ctx, stop := newServerContext()
	defer stop()
	return ServeTableStore(ctx, cfg, log)
}

// ServeTableStore opens the configured database, creates the schema and
// serves /create, /read and /delete, plus the /api/db gateway prefix.
func ServeTableStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	store, err := openSQLStore(ctx, cfg)
	if err != nil {
		log.Error().Stack().Err(err).Str("driver", cfg.TableStoreDriver).Msg("Table store unavailable")
		return err
	}
	defer func() { _ = store.Close() }()

	log.Info().
		Str("driver", cfg.TableStoreDriver).
		Int("port", cfg.TableStorePort).
		Msg("Table store starting")

	srv := newHTTPServer(ctx, cfg.TableStoreAddr(), server.NewRouter(store, log))
	return serveUntilDone(ctx, srv, log)
}

func openSQLStore(ctx context.Context, cfg *config.Config) (*sqlstore.Store, error) {
	dialect, err := sqlstore.ParseDialect(cfg.TableStoreDriver)
	if err != nil {
		return nil, err
	}

	var db *sql.DB
	switch dialect {
	case sqlstore.Postgres:
		db, err = sqlstore.OpenPostgres(cfg.PostgresDSN)
	default:
		db, err = sqlstore.OpenSQLite(cfg.SQLitePath)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}

	store, err := sqlstore.New(db, dialect)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	bootCtx, cancel := context.WithTimeout(ctx, cfg.BootstrapTimeout())
	defer cancel()
	if err := store.EnsureSchema(bootCtx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return store, nil
}
