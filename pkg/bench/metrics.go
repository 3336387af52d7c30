package bench

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	queryDurationMetrics = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "dnsgauge",
		Name:      "query_duration_seconds",
		Help:      "DNS query duration in seconds",
	}, []string{"server"})

	queryTotalMetrics = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dnsgauge",
		Name:      "queries_total",
		Help:      "The total number of DNS queries by outcome",
	}, []string{"server", "outcome"})
)

func recordMetrics(res QueryResult, elapsed time.Duration) {
	queryDurationMetrics.WithLabelValues(res.Server).Observe(elapsed.Seconds())
	queryTotalMetrics.WithLabelValues(res.Server, outcomeLabel(res)).Inc()
}

// outcomeLabel keeps the metric cardinality bounded, the free-form Other
// diagnostic stays out of label values.
func outcomeLabel(res QueryResult) string {
	if res.Succeeded {
		return "success"
	}
	switch res.Kind.Class {
	case ClassNXDomain:
		return "nxdomain"
	case ClassNoAnswer:
		return "noanswer"
	case ClassTimeout:
		return "timeout"
	default:
		return "other"
	}
}
