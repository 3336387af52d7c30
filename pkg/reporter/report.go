// Package reporter renders the result Summary of a benchmark run to stdout
// (colored text or JSON), optionally exports the latency distribution to CSV
// and plots graphs of the run.
package reporter

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/dnsgauge/dnsgauge/pkg/bench"
)

// Config controls how a Summary is rendered.
type Config struct {
	// Writer receives the report, usually os.Stdout.
	Writer io.Writer

	// JSON switches from the colored text report to a JSON report.
	JSON bool

	// Silent suppresses the stdout report, exports still happen.
	Silent bool

	// HistDisplay enables the latency distribution table.
	HistDisplay bool

	// Csv, when non-empty, is the file the latency distribution is exported to.
	Csv string

	// PlotDir, when non-empty, is the directory graphs are exported to.
	PlotDir    string
	PlotFormat string

	// ServerLabel names the benchmarked server set in plot titles.
	ServerLabel string
}

type reportPrinter interface {
	print(cfg Config, sum *bench.Summary) error
}

// PrintReport renders the Summary according to cfg. benchStart anchors the
// time axis of the exported graphs. If there is a fatal error while printing
// the report, an error is returned.
func PrintReport(cfg Config, sum *bench.Summary, benchStart time.Time) error {
	if len(cfg.PlotDir) != 0 {
		if err := directoryExists(cfg.PlotDir); err != nil {
			return fmt.Errorf("unable to plot results: %w", err)
		}

		now := time.Now().Format(time.RFC3339)
		dir := fmt.Sprintf("%s/graphs-%s", cfg.PlotDir, now)
		if err := os.Mkdir(dir, os.ModePerm); err != nil {
			return fmt.Errorf("unable to plot results: %w", err)
		}
		plotHistogramLatency(fileName(cfg, dir, "latency-histogram"), sum.Timings)
		plotBoxPlotLatency(fileName(cfg, dir, "latency-boxplot"), cfg.ServerLabel, sum.Timings)
		plotResponses(fileName(cfg, dir, "responses-barchart"), sum.Rcodes)
		plotLineThroughput(fileName(cfg, dir, "throughput-lineplot"), benchStart, sum.Timings)
		plotLineLatencies(fileName(cfg, dir, "latency-lineplot"), benchStart, sum.Timings)
		plotErrorRate(fileName(cfg, dir, "errorrate-lineplot"), benchStart, sum.Errors)
	}

	if cfg.Csv != "" {
		f, err := os.Create(cfg.Csv)
		if err != nil {
			return fmt.Errorf("failed to create file for CSV export due to '%v'", err)
		}
		defer f.Close()
		writeBars(f, sum.Hist.Distribution())
	}

	if cfg.Silent {
		return nil
	}
	return printer(cfg).print(cfg, sum)
}

func printer(cfg Config) reportPrinter {
	switch {
	case cfg.JSON:
		return &jsonReporter{}
	default:
		return &standardReporter{}
	}
}

func directoryExists(plotDir string) error {
	stat, err := os.Stat(plotDir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("'%s' path does not point to an existing directory", plotDir)
		}
		return err
	} else if !stat.IsDir() {
		return fmt.Errorf("'%s' is not a path to a directory", plotDir)
	}
	return nil
}

func fileName(cfg Config, dir, name string) string {
	return dir + "/" + name + "." + cfg.PlotFormat
}

func writeBars(f *os.File, bars []hdrhistogram.Bar) {
	f.WriteString("From (ns), To (ns), Count\n")

	for _, b := range bars {
		f.WriteString(b.String())
	}
}
