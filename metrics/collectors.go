package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Registry = *prometheus.Registry

func (Module) Registry() Registry {
	return prometheus.NewRegistry()
}

type Collectors struct {
	LeafQueries  *prometheus.CounterVec
	LeafDuration prometheus.Histogram
	FanOutSize   prometheus.Histogram
	Fallbacks    prometheus.Counter
	Runs         *prometheus.CounterVec
}

const (
	VerdictFound    = "found"
	VerdictNotFound = "not_found"
	VerdictError    = "error"
)

func (Module) Collectors(
	registry Registry,
) *Collectors {
	c := &Collectors{
		LeafQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rlm",
			Name:      "leaf_queries_total",
			Help:      "Leaf queries by verdict.",
		}, []string{"verdict"}),
		LeafDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "rlm",
			Name:      "leaf_query_seconds",
			Help:      "Latency of one leaf query, including throttling.",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
		}),
		FanOutSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "rlm",
			Name:      "fan_out_chunks",
			Help:      "Chunks dispatched per ask_leaf_all call.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		Fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rlm",
			Name:      "fallback_guard_total",
			Help:      "Times the executor substituted the unfiltered chunk set.",
		}),
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rlm",
			Name:      "runs_total",
			Help:      "Query runs by final state.",
		}, []string{"state"}),
	}
	registry.MustRegister(
		c.LeafQueries,
		c.LeafDuration,
		c.FanOutSize,
		c.Fallbacks,
		c.Runs,
	)
	return c
}
