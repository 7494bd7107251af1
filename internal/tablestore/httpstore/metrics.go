package httpstore

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ration",
			Subsystem: "tablestore",
			Name:      "requests_total",
			Help:      "Table store round trips by operation, table and outcome.",
		},
		[]string{"op", "table", "outcome"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ration",
			Subsystem: "tablestore",
			Name:      "request_duration_seconds",
			Help:      "Latency of table store round trips.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"op"},
	)
)

const (
	outcomeOK         = "ok"
	outcomeStoreError = "store_error"
	outcomeTransport  = "transport_error"
)
