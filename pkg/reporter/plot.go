package reporter

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"sort"
	"time"

	"github.com/dnsgauge/dnsgauge/pkg/bench"
	"github.com/miekg/dns"
	"github.com/montanaflynn/stats"
	"go-hep.org/x/hep/hplot"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// palette shared by all exported graphs.
var (
	fillTeal   = color.RGBA{R: 64, G: 145, B: 151, A: 255}
	fillSand   = color.RGBA{R: 222, G: 184, B: 135, A: 255}
	lineSlate  = color.RGBA{R: 73, G: 80, B: 87, A: 255}
	dotCrimson = color.RGBA{R: 220, G: 53, B: 69, A: 255}

	seriesColors = []color.Color{
		color.RGBA{R: 38, G: 70, B: 83, A: 255},
		color.RGBA{R: 42, G: 157, B: 143, A: 255},
		color.RGBA{R: 233, G: 196, B: 106, A: 255},
		color.RGBA{R: 244, G: 162, B: 97, A: 255},
		color.RGBA{R: 231, G: 111, B: 81, A: 255},
		color.RGBA{R: 109, G: 104, B: 117, A: 255},
		color.RGBA{R: 144, G: 190, B: 109, A: 255},
	}
)

func savePlot(p *plot.Plot, file string) {
	if err := p.Save(7*vg.Inch, 5*vg.Inch, file); err != nil {
		fmt.Fprintln(os.Stderr, "Failed to save plot.", err)
	}
}

func plotHistogramLatency(file string, times []bench.Datapoint) {
	if len(times) == 0 {
		return
	}
	values := make(plotter.Values, len(times))
	for i, v := range times {
		values[i] = v.DurationMs
	}

	p := plot.New()
	p.Title.Text = "Latency histogram"
	p.X.Label.Text = "Latency (ms)"
	p.X.Tick.Marker = hplot.Ticks{N: 10, Format: "%.0f"}
	p.Y.Label.Text = "Queries"
	p.Y.Tick.Marker = hplot.Ticks{N: 5, Format: "%.0f"}

	hist, err := plotter.NewHist(values, numBins(values))
	if err != nil {
		panic(err)
	}
	hist.FillColor = fillTeal
	p.Add(hist)

	savePlot(p, file)
}

// numBins picks a bin count for the latency histogram based on the sample
// size: square root rule for small samples, Rice's rule for medium ones and
// Doane's rule (which corrects for skewness) for large ones.
func numBins(values plotter.Values) int {
	n := float64(len(values))
	switch {
	case n < 100:
		return int(math.Min(15, math.Sqrt(n)))
	case n < 1000:
		return int(math.Min(30, 2*math.Cbrt(n)))
	default:
		skewness := stat.Skew(values, nil)
		sigmaG := math.Sqrt(6 * (n - 2) / ((n + 1) * (n + 3)))
		doane := 1 + math.Log2(n) + math.Log2(1+math.Abs(skewness)/sigmaG)
		return int(math.Min(50, doane))
	}
}

func plotBoxPlotLatency(file, server string, times []bench.Datapoint) {
	if len(times) == 0 {
		return
	}
	values := make(plotter.Values, len(times))
	for i, v := range times {
		values[i] = v.DurationMs
	}

	p := plot.New()
	p.Title.Text = "Latency spread"
	p.Y.Label.Text = "Latency (ms)"
	p.Y.Tick.Marker = hplot.Ticks{N: 5, Format: "%.0f"}
	p.NominalX(server)

	boxplot, err := plotter.NewBoxPlot(vg.Length(100), 0, values)
	if err != nil {
		panic(err)
	}
	boxplot.FillColor = fillSand
	p.Add(boxplot)

	savePlot(p, file)
}

func plotResponses(file string, rcodes map[int]int64) {
	if len(rcodes) == 0 {
		return
	}
	sortedRcodes := make([]int, 0, len(rcodes))
	for k := range rcodes {
		sortedRcodes = append(sortedRcodes, k)
	}
	sort.Ints(sortedRcodes)

	p := plot.New()
	p.Title.Text = "Responses by DNS response code"
	p.Y.Label.Text = "Queries"
	p.Y.Tick.Marker = hplot.Ticks{N: 5, Format: "%.0f"}
	p.NominalX("Response codes")
	p.Legend.Top = true

	width := vg.Points(40)
	offset := -vg.Length(len(sortedRcodes)/2) * width
	for i, rcode := range sortedRcodes {
		bar, err := plotter.NewBarChart(plotter.Values{float64(rcodes[rcode])}, width)
		if err != nil {
			panic(err)
		}
		bar.Color = seriesColors[i%len(seriesColors)]
		bar.Offset = offset
		p.Add(bar)
		p.Legend.Add(dns.RcodeToString[rcode], bar)
		offset += width
	}

	savePlot(p, file)
}

func plotLineThroughput(file string, benchStart time.Time, times []bench.Datapoint) {
	if len(times) == 0 {
		return
	}
	starts := make([]time.Time, len(times))
	for i, v := range times {
		starts[i] = v.Start
	}

	p := plot.New()
	p.Title.Text = "Throughput over time"
	p.X.Label.Text = "Time of test (s)"
	p.X.Tick.Marker = hplot.Ticks{N: 5, Format: "%.0f"}
	p.Y.Label.Text = "Queries per second"
	p.Y.Tick.Marker = hplot.Ticks{N: 5, Format: "%.0f"}

	addLineWithDots(p, perSecondSeries(benchStart, starts), lineSlate, lineSlate)

	savePlot(p, file)
}

func plotErrorRate(file string, benchStart time.Time, times []bench.ErrorDatapoint) {
	if len(times) == 0 {
		return
	}
	starts := make([]time.Time, len(times))
	for i, v := range times {
		starts[i] = v.Start
	}

	p := plot.New()
	p.Title.Text = "Errors over time"
	p.X.Label.Text = "Time of test (s)"
	p.X.Tick.Marker = hplot.Ticks{N: 5, Format: "%.0f"}
	p.Y.Label.Text = "Errors per second"
	p.Y.Tick.Marker = hplot.Ticks{N: 5, Format: "%.0f"}

	addLineWithDots(p, perSecondSeries(benchStart, starts), lineSlate, dotCrimson)

	savePlot(p, file)
}

// perSecondSeries buckets event start times into whole seconds since the
// start of the benchmark and returns the counts as an X sorted series.
func perSecondSeries(benchStart time.Time, starts []time.Time) plotter.XYs {
	buckets := make(map[int64]int64)
	for _, s := range starts {
		buckets[s.Unix()-benchStart.Unix()]++
	}

	series := make(plotter.XYs, 0, len(buckets))
	for offset, count := range buckets {
		series = append(series, plotter.XY{X: float64(offset), Y: float64(count)})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].X < series[j].X })
	return series
}

func addLineWithDots(p *plot.Plot, series plotter.XYs, lineColor, dotColor color.Color) *plotter.Line {
	l, err := plotter.NewLine(series)
	if err != nil {
		panic(err)
	}
	l.Color = lineColor
	l.Width = vg.Points(1)
	p.Add(l)

	scatter, err := plotter.NewScatter(series)
	if err != nil {
		panic(err)
	}
	scatter.Color = dotColor
	scatter.Shape = draw.CircleGlyph{}
	p.Add(scatter)
	return l
}

func plotLineLatencies(file string, benchStart time.Time, times []bench.Datapoint) {
	if len(times) == 0 {
		return
	}

	percentiles := []float64{99, 95, 90, 50}

	// per-second latency percentiles, keyed by percentile
	series := make(map[float64]plotter.XYs, len(percentiles))
	timings := make([]float64, 0)
	offset := times[0].Start.Unix() - benchStart.Unix()

	flush := func() {
		for _, q := range percentiles {
			v, err := stats.Percentile(timings, q)
			if err != nil {
				panic(err)
			}
			series[q] = append(series[q], plotter.XY{X: float64(offset), Y: v})
		}
	}

	for _, v := range times {
		if o := v.Start.Unix() - benchStart.Unix(); o != offset {
			flush()
			offset = o
			timings = timings[:0]
		}
		timings = append(timings, v.DurationMs)
	}
	flush()

	p := plot.New()
	p.Title.Text = "Latency percentiles over time"
	p.X.Label.Text = "Time of test (s)"
	p.Y.Label.Text = "Latency (ms)"
	p.Legend.Top = true

	for i, q := range percentiles {
		c := seriesColors[i%len(seriesColors)]
		l := addLineWithDots(p, series[q], c, c)
		p.Legend.Add(fmt.Sprintf("p%.0f", q), l)
	}

	savePlot(p, file)
}
