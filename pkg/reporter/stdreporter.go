package reporter

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/dnsgauge/dnsgauge/pkg/bench"
	"github.com/miekg/dns"
	"github.com/olekukonko/tablewriter"

	"github.com/dnsgauge/dnsgauge/pkg/printutils"
)

type standardReporter struct{}

func (s *standardReporter) print(cfg Config, sum *bench.Summary) error {
	w := cfg.Writer

	printutils.NeutralFprintf(w, "\nTotal queries:\t\t%s\n", printutils.HighlightSprint(sum.Total))
	printutils.SuccessFprintf(w, "Succeeded:\t\t%d\n", sum.Succeeded)
	printutils.ErrFprintf(w, "Failed:\t\t\t%d\n", sum.Failed)

	if len(sum.Rcodes) > 0 {
		printutils.NeutralFprintf(w, "\nDNS response codes:\n")
		for i := dns.RcodeSuccess; i <= dns.RcodeBadCookie; i++ {
			printFn := printutils.ErrFprintf
			if i == dns.RcodeSuccess {
				printFn = printutils.SuccessFprintf
			}
			if i == dns.RcodeNameError {
				printFn = printutils.NeutralFprintf
			}
			if c, ok := sum.Rcodes[i]; ok {
				printFn(w, "\t%s:\t%d\n", dns.RcodeToString[i], c)
			}
		}
	}

	if sum.Failed > 0 {
		printutils.ErrFprintf(w, "\nError breakdown:\n")
		for _, ec := range sum.ErrorCounts {
			printutils.ErrFprintf(w, "\t%s:\t%d (%.2f%%)\n", ec.Kind,
				ec.Count, float64(ec.Count)/float64(sum.Failed)*100)
		}
	}

	printutils.NeutralFprintf(w, "\nTime taken for tests:\t%s\n",
		printutils.HighlightSprint(roundDuration(sum.Elapsed)))
	if sum.QPSAvailable {
		printutils.NeutralFprintf(w, "Queries per second:\t%s\n",
			printutils.HighlightSprintf("%0.1f", sum.QPS))
	} else {
		printutils.NeutralFprintf(w, "Queries per second:\tN/A\n")
	}

	if !sum.Latency.Available {
		printutils.NeutralFprintf(w, "\nNo successful queries to calculate latency metrics.\n")
		return nil
	}

	printutils.NeutralFprintf(w, "\nLatencies of successful queries, %s datapoints\n",
		printutils.HighlightSprint(sum.Succeeded))
	printutils.NeutralFprintf(w, "\t min:\t\t%s\n", printutils.HighlightSprint(formatMs(sum.Latency.MinMs)))
	printutils.NeutralFprintf(w, "\t mean:\t\t%s\n", printutils.HighlightSprint(formatMs(sum.Latency.MeanMs)))
	printutils.NeutralFprintf(w, "\t median:\t%s\n", printutils.HighlightSprint(formatMs(sum.Latency.MedianMs)))
	if sum.Latency.StdDevAvailable {
		printutils.NeutralFprintf(w, "\t [+/-sd]:\t%s\n", printutils.HighlightSprint(formatMs(sum.Latency.StdDevMs)))
	} else {
		printutils.NeutralFprintf(w, "\t [+/-sd]:\tN/A\n")
	}
	printutils.NeutralFprintf(w, "\t max:\t\t%s\n", printutils.HighlightSprint(formatMs(sum.Latency.MaxMs)))

	p99 := time.Duration(sum.Hist.ValueAtQuantile(99))
	p95 := time.Duration(sum.Hist.ValueAtQuantile(95))
	p90 := time.Duration(sum.Hist.ValueAtQuantile(90))
	p75 := time.Duration(sum.Hist.ValueAtQuantile(75))
	p50 := time.Duration(sum.Hist.ValueAtQuantile(50))
	printutils.NeutralFprintf(w, "\t p99:\t\t%s\n", printutils.HighlightSprint(roundDuration(p99)))
	printutils.NeutralFprintf(w, "\t p95:\t\t%s\n", printutils.HighlightSprint(roundDuration(p95)))
	printutils.NeutralFprintf(w, "\t p90:\t\t%s\n", printutils.HighlightSprint(roundDuration(p90)))
	printutils.NeutralFprintf(w, "\t p75:\t\t%s\n", printutils.HighlightSprint(roundDuration(p75)))
	printutils.NeutralFprintf(w, "\t p50:\t\t%s\n", printutils.HighlightSprint(roundDuration(p50)))

	if tc := sum.Hist.TotalCount(); cfg.HistDisplay && tc > 1 {
		printutils.NeutralFprintf(w, "\nLatency distribution, %s datapoints\n", printutils.HighlightSprint(tc))
		printBars(w, sum.Hist.Distribution())
	}

	return nil
}

func printBars(w io.Writer, bars []hdrhistogram.Bar) {
	counts := make([]int64, 0, len(bars))
	lines := make([][]string, 0, len(bars))
	added := false
	var max int64

	for _, b := range bars {
		if b.Count == 0 && !added {
			// trim the start
			continue
		}
		if b.Count > max {
			max = b.Count
		}

		added = true

		line := make([]string, 3)
		lines = append(lines, line)
		counts = append(counts, b.Count)

		line[0] = roundDuration(time.Duration(b.To/2 + b.From/2)).String()
		line[2] = strconv.FormatInt(b.Count, 10)
	}

	for i, l := range lines {
		l[1] = makeBar(counts[i], max)
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Latency", "", "Count"})
	table.SetBorder(false)
	table.AppendBulk(lines)
	table.Render()
}

func makeBar(c int64, max int64) string {
	if c == 0 {
		return ""
	}
	t := int((43 * float64(c) / float64(max)) + 0.5)
	return strings.Repeat(printutils.HighlightSprint("▄"), t)
}
