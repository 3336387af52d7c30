package bench

import (
	"sort"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/montanaflynn/stats"
)

// Progress is a point-in-time snapshot of a running benchmark, handed to the
// Benchmark.OnProgress callback. Counts are exact, QPS is the instantaneous
// rate since the run started.
type Progress struct {
	Done      int64
	Total     int64
	Succeeded int64
	Failed    int64
	Percent   float64
	QPS       float64
	Elapsed   time.Duration
}

// LatencyStats holds latency aggregates over successful queries, in
// milliseconds. When no query succeeded there is nothing to aggregate and
// Available is false. StdDev additionally needs at least two successes.
type LatencyStats struct {
	Available bool
	MeanMs    float64
	MedianMs  float64
	MinMs     float64
	MaxMs     float64

	StdDevAvailable bool
	StdDevMs        float64
}

// ErrorCount is one entry of the error breakdown.
type ErrorCount struct {
	Kind  ErrorKind
	Count int64
}

// Summary is the immutable result of a completed (or interrupted) benchmark run.
type Summary struct {
	Total     int64
	Succeeded int64
	Failed    int64

	// ErrorCounts is the per-kind failure breakdown, sorted by descending count.
	ErrorCounts []ErrorCount

	// Rcodes counts DNS response codes over all queries that got a response.
	Rcodes map[int]int64

	Latency LatencyStats

	// Hist is the latency distribution of successful queries in nanoseconds.
	Hist *hdrhistogram.Histogram

	// Timings and Errors are the individual datapoints ordered by start time,
	// for plotting time dependent graphs.
	Timings []Datapoint
	Errors  []ErrorDatapoint

	Elapsed time.Duration

	// QPS is Total queries over Elapsed. QPSAvailable guards the degenerate
	// case of a run finishing under the clock resolution.
	QPSAvailable bool
	QPS          float64
}

// runningStats accumulates per-query results during a run. It is owned by the
// collector goroutine, which is the only writer, so no locking is needed.
type runningStats struct {
	planned   int64
	succeeded int64
	failed    int64

	latencies []float64
	errCounts map[ErrorKind]int64
	rcodes    map[int]int64
	hist      *hdrhistogram.Histogram
	timings   []Datapoint
	errors    []ErrorDatapoint

	summary *Summary
}

func newRunningStats(planned int64, histMin, histMax time.Duration, histPre int) *runningStats {
	return &runningStats{
		planned:   planned,
		errCounts: make(map[ErrorKind]int64),
		rcodes:    make(map[int]int64),
		hist:      hdrhistogram.New(histMin.Nanoseconds(), histMax.Nanoseconds(), histPre),
	}
}

func (s *runningStats) append(res QueryResult) {
	if res.Rcode != NoResponseRcode {
		s.rcodes[res.Rcode]++
	}
	if res.Succeeded {
		s.succeeded++
		s.latencies = append(s.latencies, res.LatencyMs)
		s.hist.RecordValue(int64(res.LatencyMs * float64(time.Millisecond)))
		s.timings = append(s.timings, Datapoint{DurationMs: res.LatencyMs, Start: res.Start})
		return
	}
	s.failed++
	s.errCounts[res.Kind]++
	s.errors = append(s.errors, ErrorDatapoint{Start: res.Start, Kind: res.Kind})
}

func (s *runningStats) done() int64 {
	return s.succeeded + s.failed
}

func (s *runningStats) progress(elapsed time.Duration) Progress {
	p := Progress{
		Done:      s.done(),
		Total:     s.planned,
		Succeeded: s.succeeded,
		Failed:    s.failed,
		Elapsed:   elapsed,
	}
	if s.planned > 0 {
		p.Percent = float64(p.Done) / float64(s.planned) * 100
	}
	if elapsed > 0 {
		p.QPS = float64(p.Done) / elapsed.Seconds()
	}
	return p
}

// finalize freezes the accumulated state into a Summary. Repeated calls
// return the already computed Summary without recomputing anything.
func (s *runningStats) finalize(elapsed time.Duration) *Summary {
	if s.summary != nil {
		return s.summary
	}

	sum := &Summary{
		Total:     s.done(),
		Succeeded: s.succeeded,
		Failed:    s.failed,
		Rcodes:    s.rcodes,
		Hist:      s.hist,
		Timings:   s.timings,
		Errors:    s.errors,
		Elapsed:   elapsed,
	}

	for kind, count := range s.errCounts {
		sum.ErrorCounts = append(sum.ErrorCounts, ErrorCount{Kind: kind, Count: count})
	}
	sort.SliceStable(sum.ErrorCounts, func(i, j int) bool {
		if sum.ErrorCounts[i].Count != sum.ErrorCounts[j].Count {
			return sum.ErrorCounts[i].Count > sum.ErrorCounts[j].Count
		}
		return sum.ErrorCounts[i].Kind.String() < sum.ErrorCounts[j].Kind.String()
	})

	// sort data points from the oldest to the earliest, so time dependent
	// graphs (like line plots) can be drawn directly
	sort.SliceStable(sum.Timings, func(i, j int) bool {
		return sum.Timings[i].Start.Before(sum.Timings[j].Start)
	})
	sort.SliceStable(sum.Errors, func(i, j int) bool {
		return sum.Errors[i].Start.Before(sum.Errors[j].Start)
	})

	if len(s.latencies) > 0 {
		mean, _ := stats.Mean(s.latencies)
		median, _ := stats.Median(s.latencies)
		min, _ := stats.Min(s.latencies)
		max, _ := stats.Max(s.latencies)
		sum.Latency = LatencyStats{
			Available: true,
			MeanMs:    mean,
			MedianMs:  median,
			MinMs:     min,
			MaxMs:     max,
		}
	}
	if len(s.latencies) > 1 {
		sd, _ := stats.StdDevP(s.latencies)
		sum.Latency.StdDevAvailable = true
		sum.Latency.StdDevMs = sd
	}

	if elapsed > 0 {
		sum.QPSAvailable = true
		sum.QPS = float64(sum.Total) / elapsed.Seconds()
	}

	s.summary = sum
	return sum
}
