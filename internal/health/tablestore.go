package health

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/zhmu-100/RationService/internal/tablestore"
)

// ProbeID is looked up in the vitamins table on every probe. Any answer,
// including no rows, counts as healthy.
const ProbeID = "__health_check__"

// TableStoreChecker monitors the table service with a cheap filtered read.
type TableStoreChecker struct {
	store        tablestore.Client
	healthy      atomic.Int32
	log          zerolog.Logger
	probeTimeout time.Duration
}

// NewTableStoreChecker probes store with a filtered read of the vitamins
// table, bounded by probeTimeout.
func NewTableStoreChecker(store tablestore.Client, log zerolog.Logger, probeTimeout time.Duration) *TableStoreChecker {
	// starts unhealthy until the first successful probe
	return &TableStoreChecker{store: store, log: log, probeTimeout: probeTimeout}
}

func (hc *TableStoreChecker) Name() string { return "tablestore" }

func (hc *TableStoreChecker) IsHealthy() bool { return hc.healthy.Load() == 1 }

// Start probes immediately and then every interval until ctx is done.
func (hc *TableStoreChecker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	hc.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			hc.Check(ctx)
		}
	}
}

// Check runs one probe and updates the cached flag.
func (hc *TableStoreChecker) Check(ctx context.Context) bool {
	to := hc.probeTimeout
	if to <= 0 {
		to = 2 * time.Second
	}
	probeCtx, cancel := context.WithTimeout(ctx, to)
	defer cancel()

	_, err := hc.store.Read(probeCtx, tablestore.ReadRequest{
		Table:   tablestore.TableVitamins,
		Filters: map[string]string{"id": ProbeID},
	})
	if err != nil {
		hc.log.Error().Err(err).Str("checker", hc.Name()).Msg("table store health check failed")
		hc.healthy.Store(0)
		return false
	}
	hc.healthy.Store(1)
	return true
}
