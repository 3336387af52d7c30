// Package cmd provides the dnsgauge command line interface.
package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/dnsgauge/dnsgauge/internal/sysutil"
	"github.com/dnsgauge/dnsgauge/pkg/bench"
	"github.com/dnsgauge/dnsgauge/pkg/domainlist"
	"github.com/dnsgauge/dnsgauge/pkg/printutils"
	"github.com/dnsgauge/dnsgauge/pkg/reporter"
	"github.com/fatih/color"
	"github.com/miekg/dns"
	"github.com/schollz/progressbar/v3"
)

// Version is set during release of project during build process.
var Version = "development"

var (
	pApp = kingpin.New("dnsgauge", "A DNS resolver performance and reliability benchmark.")

	benchmark bench.Benchmark

	domainCount int
	domainsURL  string
	shuffle     bool
	domainArgs  []string

	histDisplay  bool
	csvFile      string
	jsonOut      bool
	silent       bool
	colorOut     bool
	showProgress bool
	plotDir      string
	plotFormat   string
)

func init() {
	pApp.Flag("server", "DNS server IP:port to test, the system resolvers from /etc/resolv.conf are used when not provided. IPv6 is also supported, for example '[fddd:dddd::]:53'. "+
		"DoH (DNS over HTTPS) servers are supported such as `https://1.1.1.1/dns-query`, when such server is provided, the benchmark automatically switches to the use of DoH. "+
		"Note that path on which the DoH server handles requests (like `/dns-query`) has to be provided as well. DoQ (DNS over QUIC) servers are also supported, such as `quic://dns.adguard-dns.com`, "+
		"when such server is provided the benchmark switches to the use of DoQ. Repeatable flag, the domain list is spread across all provided servers.").
		Short('s').StringsVar(&benchmark.Servers)

	pApp.Flag("type", "Query type.").
		Short('t').Default(bench.DefaultQueryType).EnumVar(&benchmark.QueryType, getSupportedDNSTypes()...)

	pApp.Flag("timeout", "Timeout for a single query.").
		Default(bench.DefaultTimeout.String()).DurationVar(&benchmark.Timeout)

	pApp.Flag("concurrency", "Number of concurrent queries to issue.").
		Short('c').Default(strconv.Itoa(bench.DefaultConcurrency)).Uint32Var(&benchmark.Concurrency)

	pApp.Flag("assignment", "How domains are assigned to servers when multiple servers are provided. 'roundrobin' spreads the domain list across the servers, "+
		"'fanout' queries every domain against every server.").
		Default(bench.RoundRobinAssignment).EnumVar(&benchmark.Assignment, bench.RoundRobinAssignment, bench.FanoutAssignment)

	pApp.Flag("rate-limit", "Apply a global questions / second rate limit.").
		Short('l').Default("0").IntVar(&benchmark.Rate)

	pApp.Flag("recurse", "Allow DNS recursion. Enabled by default.").
		Short('r').Default("true").BoolVar(&benchmark.Recurse)

	pApp.Flag("tcp", "Use TCP for DNS requests.").Default("false").BoolVar(&benchmark.TCP)

	pApp.Flag("dot", "Use DoT (DNS over TLS) for DNS requests.").Default("false").BoolVar(&benchmark.DOT)

	pApp.Flag("insecure", "Disables server TLS certificate validation. Applicable for DoT, DoH and DoQ.").
		Default("false").BoolVar(&benchmark.Insecure)

	pApp.Flag("doh-method", "HTTP method to use for DoH requests. Supported values: get, post.").
		Default(bench.PostHTTPMethod).EnumVar(&benchmark.DohMethod, bench.GetHTTPMethod, bench.PostHTTPMethod)

	pApp.Flag("doh-protocol", "HTTP protocol to use for DoH requests. Supported values: 1.1, 2 and 3.").
		Default(bench.HTTP1Proto).EnumVar(&benchmark.DohProtocol, bench.HTTP1Proto, bench.HTTP2Proto, bench.HTTP3Proto)

	pApp.Flag("min", "Minimum value for timing histogram.").
		Default(bench.DefaultHistMin.String()).DurationVar(&benchmark.HistMin)

	pApp.Flag("max", "Maximum value for timing histogram.").DurationVar(&benchmark.HistMax)

	pApp.Flag("precision", "Significant figure for histogram precision.").
		Default(strconv.Itoa(bench.DefaultHistPrecision)).PlaceHolder("[1-5]").IntVar(&benchmark.HistPre)

	pApp.Flag("request-log", "Controls whether the tool generates a log of queries and received responses.").
		Default("false").BoolVar(&benchmark.RequestLogEnabled)

	pApp.Flag("request-log-path", "Path to the request log file.").
		Default(bench.DefaultRequestLogPath).StringVar(&benchmark.RequestLogPath)

	pApp.Flag("count", "How many domains from the top domains list are queried. Considered only when no domains argument is provided.").
		Short('n').Default(strconv.Itoa(domainlist.DefaultCount)).IntVar(&domainCount)

	pApp.Flag("domains-url", "URL of the zipped top domains CSV list.").
		Default(domainlist.UmbrellaURL).StringVar(&domainsURL)

	pApp.Flag("shuffle", "Shuffle the domain list before querying. Enabled by default.").
		Default("true").BoolVar(&shuffle)

	pApp.Flag("distribution", "Display distribution histogram of timings to stdout. Enabled by default.").
		Default("true").BoolVar(&histDisplay)

	pApp.Flag("csv", "Export distribution to CSV.").
		Default("").PlaceHolder("/path/to/file.csv").StringVar(&csvFile)

	pApp.Flag("json", "Report benchmark results as JSON.").BoolVar(&jsonOut)

	pApp.Flag("silent", "Disable stdout.").Default("false").BoolVar(&silent)

	pApp.Flag("color", "ANSI Color output. Enabled by default.").
		Default("true").BoolVar(&colorOut)

	pApp.Flag("progress", "Display a progress bar during the run. Enabled by default.").
		Default("true").BoolVar(&showProgress)

	pApp.Flag("plot", "Plot benchmark results and export them to the directory.").
		Default("").PlaceHolder("/path/to/folder").StringVar(&plotDir)

	pApp.Flag("plotf", "Format of graphs. Supported formats: svg, png and pdf.").
		Default(bench.DefaultPlotFormat).EnumVar(&plotFormat, "svg", "png", "pdf")

	pApp.Arg("domains", "Domains to query. A domain can also be a local file referenced using @<file-path> with one domain per line, for example @data/2-domains. "+
		"When no domains are provided, the Cisco Umbrella top domains list is downloaded and the top --count domains are queried.").
		StringsVar(&domainArgs)
}

const (
	fileNoBuffer = 9 // app itself needs about 9 for libs
)

// Execute starts main logic of command.
func Execute() {
	pApp.Version(Version)
	kingpin.MustParse(pApp.Parse(os.Args[1:]))

	color.NoColor = color.NoColor || !colorOut

	if len(benchmark.Servers) == 0 {
		benchmark.Servers = bench.SystemNameServers()
	}

	domains, err := resolveDomains()
	if err != nil {
		printutils.ErrFprintf(os.Stderr, "There was an error while loading domains: %s\n", err.Error())
		os.Exit(1)
	}
	if shuffle {
		domainlist.Shuffle(domains)
	}
	benchmark.Domains = domains

	lim, err := sysutil.RlimitNoFile()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Cannot check limit of number of files. Skipping check. Please make sure it is sufficient manually.", err)
	} else {
		needed := uint64(benchmark.Concurrency) + uint64(fileNoBuffer)
		if lim < needed {
			printutils.ErrFprintf(os.Stderr, "Current process limit for number of files is %d and insufficient for level of requested concurrency.\n", lim)
			os.Exit(1)
		}
	}

	var bar *progressbar.ProgressBar
	if showProgress && !silent && !jsonOut {
		benchmark.OnProgress = func(p bench.Progress) {
			if bar == nil {
				bar = progressbar.NewOptions64(p.Total,
					progressbar.OptionSetDescription("querying"),
					progressbar.OptionSetWriter(os.Stderr),
					progressbar.OptionShowCount(),
					progressbar.OptionClearOnFinish(),
				)
			}
			// the callback runs on the collecting goroutine
			_ = bar.Set64(p.Done)
		}
	}

	sigsInt := make(chan os.Signal, 8)
	signal.Notify(sigsInt, syscall.SIGINT)

	defer close(sigsInt)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		_, ok := <-sigsInt
		if !ok {
			// standard exit based on channel close
			return
		}
		fmt.Fprintf(os.Stderr, "\nCancelling benchmark ^C, again to terminate now.\n")
		cancel()
		<-sigsInt
		os.Exit(1)
	}()

	start := time.Now()
	sum, err := benchmark.Run(ctx)
	if bar != nil {
		_ = bar.Finish()
	}

	if err != nil {
		printutils.ErrFprintf(os.Stderr, "There was an error while starting benchmark: %s\n", err.Error())
		os.Exit(1)
	}

	cfg := reporter.Config{
		Writer:      os.Stdout,
		JSON:        jsonOut,
		Silent:      silent,
		HistDisplay: histDisplay,
		Csv:         csvFile,
		PlotDir:     plotDir,
		PlotFormat:  plotFormat,
		ServerLabel: strings.Join(benchmark.Servers, ", "),
	}
	if err := reporter.PrintReport(cfg, sum, start); err != nil {
		printutils.ErrFprintf(os.Stderr, "There was an error while printing report: %s\n", err.Error())
		os.Exit(1)
	}
}

// resolveDomains turns the domains argument into the benchmarked domain list,
// falling back to the top domains list when no argument is provided.
func resolveDomains() ([]string, error) {
	if len(domainArgs) == 0 {
		loader := domainlist.Loader{URL: domainsURL}
		domains, fallback := loader.Load(domainCount)
		if fallback {
			fmt.Fprintln(os.Stderr, "Failed to acquire the top domains list, using the built-in domain list.")
		}
		return domains, nil
	}

	var domains []string
	for _, arg := range domainArgs {
		if strings.HasPrefix(arg, "@") {
			fromFile, err := readDomainFile(strings.TrimPrefix(arg, "@"))
			if err != nil {
				return nil, err
			}
			domains = append(domains, fromFile...)
			continue
		}
		domains = append(domains, arg)
	}
	return domains, nil
}

func readDomainFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read domain file: %w", err)
	}
	defer f.Close()

	var domains []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		domains = append(domains, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read domain file: %w", err)
	}
	return domains, nil
}

func getSupportedDNSTypes() []string {
	keys := make([]string, 0, len(dns.StringToType))
	for k := range dns.StringToType {
		keys = append(keys, k)
	}
	return keys
}
