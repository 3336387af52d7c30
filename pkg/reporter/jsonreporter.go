package reporter

import (
	"encoding/json"
	"math"
	"time"

	"github.com/dnsgauge/dnsgauge/pkg/bench"
	"github.com/miekg/dns"
)

type jsonReporter struct{}

type latencyStats struct {
	MinMs    float64  `json:"minMs"`
	MeanMs   float64  `json:"meanMs"`
	MedianMs float64  `json:"medianMs"`
	StdMs    *float64 `json:"stdMs,omitempty"`
	MaxMs    float64  `json:"maxMs"`
	P99Ms    int64    `json:"p99Ms"`
	P95Ms    int64    `json:"p95Ms"`
	P90Ms    int64    `json:"p90Ms"`
	P75Ms    int64    `json:"p75Ms"`
	P50Ms    int64    `json:"p50Ms"`
}

type errorCount struct {
	Kind  string `json:"kind"`
	Count int64  `json:"count"`
}

type histogramPoint struct {
	LatencyMs int64 `json:"latencyMs"`
	Count     int64 `json:"count"`
}

type jsonResult struct {
	TotalQueries             int64            `json:"totalQueries"`
	TotalSucceeded           int64            `json:"totalSucceeded"`
	TotalFailed              int64            `json:"totalFailed"`
	ErrorBreakdown           []errorCount     `json:"errorBreakdown,omitempty"`
	ResponseRcodes           map[string]int64 `json:"responseRcodes,omitempty"`
	QueriesPerSecond         *float64         `json:"queriesPerSecond,omitempty"`
	BenchmarkDurationSeconds float64          `json:"benchmarkDurationSeconds"`
	LatencyStats             *latencyStats    `json:"latencyStats,omitempty"`
	LatencyDistribution      []histogramPoint `json:"latencyDistribution,omitempty"`
}

func (j *jsonReporter) print(cfg Config, sum *bench.Summary) error {
	codeTotalsMapped := make(map[string]int64)
	for k, v := range sum.Rcodes {
		codeTotalsMapped[dns.RcodeToString[k]] = v
	}

	result := jsonResult{
		TotalQueries:             sum.Total,
		TotalSucceeded:           sum.Succeeded,
		TotalFailed:              sum.Failed,
		BenchmarkDurationSeconds: roundDuration(sum.Elapsed).Seconds(),
		ResponseRcodes:           codeTotalsMapped,
	}

	for _, ec := range sum.ErrorCounts {
		result.ErrorBreakdown = append(result.ErrorBreakdown, errorCount{Kind: ec.Kind.String(), Count: ec.Count})
	}

	if sum.QPSAvailable {
		qps := math.Round(sum.QPS*100) / 100
		result.QueriesPerSecond = &qps
	}

	if sum.Latency.Available {
		ls := latencyStats{
			MinMs:    sum.Latency.MinMs,
			MeanMs:   sum.Latency.MeanMs,
			MedianMs: sum.Latency.MedianMs,
			MaxMs:    sum.Latency.MaxMs,
			P99Ms:    roundDuration(time.Duration(sum.Hist.ValueAtQuantile(99))).Milliseconds(),
			P95Ms:    roundDuration(time.Duration(sum.Hist.ValueAtQuantile(95))).Milliseconds(),
			P90Ms:    roundDuration(time.Duration(sum.Hist.ValueAtQuantile(90))).Milliseconds(),
			P75Ms:    roundDuration(time.Duration(sum.Hist.ValueAtQuantile(75))).Milliseconds(),
			P50Ms:    roundDuration(time.Duration(sum.Hist.ValueAtQuantile(50))).Milliseconds(),
		}
		if sum.Latency.StdDevAvailable {
			sd := sum.Latency.StdDevMs
			ls.StdMs = &sd
		}
		result.LatencyStats = &ls
	}

	if cfg.HistDisplay {
		result.LatencyDistribution = distributionPoints(sum)
	}

	return json.NewEncoder(cfg.Writer).Encode(result)
}

func distributionPoints(sum *bench.Summary) []histogramPoint {
	var res []histogramPoint
	for _, d := range sum.Hist.Distribution() {
		res = append(res, histogramPoint{
			LatencyMs: roundDuration(time.Duration(d.To/2 + d.From/2)).Milliseconds(),
			Count:     d.Count,
		})
	}

	// collapse adjacent buckets rounded to the same millisecond
	var dedup []histogramPoint
	i := -1
	for _, r := range res {
		if i >= 0 && dedup[i].LatencyMs == r.LatencyMs {
			dedup[i].Count += r.Count
			continue
		}
		dedup = append(dedup, r)
		i++
	}
	return dedup
}
