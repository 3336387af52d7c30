package bench

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/miekg/dns"
	"go.uber.org/ratelimit"
)

// Precondition failures, reported by Run before any query is issued.
var (
	// ErrNoServers is returned when the benchmark has an empty server set.
	ErrNoServers = errors.New("no servers configured")
	// ErrNoDomains is returned when the benchmark has an empty domain list.
	ErrNoDomains = errors.New("no domains to test")
)

// Benchmark is a representation of a benchmark run. It is a plain value
// object, fill in the fields and call Run.
type Benchmark struct {
	// Servers are the DNS servers under test. A server is an IP or host:port
	// (port 53 is assumed when missing), a `https://` URL for a DoH server or
	// a `quic://` URL for a DoQ server.
	Servers []string

	// QueryType is the record type queried, e.g. "A" or "AAAA".
	QueryType string

	// Timeout bounds every single query.
	Timeout time.Duration

	// Concurrency is the upper bound on concurrently in-flight queries.
	Concurrency uint32

	// Assignment chooses how domains are paired with servers when more than
	// one server is supplied, either RoundRobinAssignment or FanoutAssignment.
	Assignment string

	// Rate optionally applies a global queries/second limit.
	Rate int

	Recurse bool

	TCP bool
	DOT bool

	// Insecure disables server TLS certificate validation for DoT, DoH and DoQ.
	Insecure bool

	DohMethod   string
	DohProtocol string

	HistMin time.Duration
	HistMax time.Duration
	HistPre int

	RequestLogEnabled bool
	RequestLogPath    string

	// Domains is the workload, one query per domain (per server with fanout
	// assignment). The caller is expected to shuffle it beforehand.
	Domains []string

	// OnProgress, when set, is invoked from the result collector with
	// point-in-time progress snapshots, at most once per ProgressInterval
	// plus once for the final result. The callback must be cheap, it runs
	// on the collecting goroutine.
	OnProgress       func(Progress)
	ProgressInterval time.Duration

	// internal fields resolved by init so that they are not re-parsed with
	// each request.
	targets        []target
	qtype          uint16
	requestLog     *log.Logger
	requestLogFile *os.File
}

type target struct {
	addr      string
	transport string
}

// boundTask pairs a QueryTask with the transport client of its server.
type boundTask struct {
	QueryTask
	query queryFunc
}

func (b *Benchmark) init() error {
	if len(b.Servers) == 0 {
		return ErrNoServers
	}
	if len(b.Domains) == 0 {
		return ErrNoDomains
	}

	if b.QueryType == "" {
		b.QueryType = DefaultQueryType
	}
	qtype, ok := dns.StringToType[b.QueryType]
	if !ok {
		return fmt.Errorf("unknown query type '%s'", b.QueryType)
	}
	b.qtype = qtype

	switch b.Assignment {
	case "":
		b.Assignment = RoundRobinAssignment
	case RoundRobinAssignment, FanoutAssignment:
	default:
		return fmt.Errorf("unknown assignment policy '%s'", b.Assignment)
	}

	if b.Timeout <= 0 {
		b.Timeout = DefaultTimeout
	}
	if b.Concurrency == 0 {
		b.Concurrency = DefaultConcurrency
	}
	if b.ProgressInterval <= 0 {
		b.ProgressInterval = DefaultProgressInterval
	}
	if b.HistMin <= 0 {
		b.HistMin = DefaultHistMin
	}
	if b.HistMax <= 0 {
		b.HistMax = b.Timeout
	}
	if b.HistPre == 0 {
		b.HistPre = DefaultHistPrecision
	}

	b.targets = b.targets[:0]
	for _, s := range b.Servers {
		b.targets = append(b.targets, b.parseTarget(s))
	}

	if b.RequestLogEnabled {
		if b.RequestLogPath == "" {
			b.RequestLogPath = DefaultRequestLogPath
		}
		f, err := os.OpenFile(b.RequestLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open request log file: %w", err)
		}
		b.requestLogFile = f
		b.requestLog = log.New(f, "", log.LstdFlags)
	}
	return nil
}

func (b *Benchmark) parseTarget(s string) target {
	if ok, _ := isHTTPUrl(s); ok {
		return target{addr: s, transport: HTTPSTransport}
	}
	if strings.HasPrefix(s, "quic://") {
		return target{addr: addPortIfMissing(strings.TrimPrefix(s, "quic://"), "853"), transport: QUICTransport}
	}

	port := "53"
	transport := UDPTransport
	if b.TCP {
		transport = TCPTransport
	}
	if b.DOT {
		transport = TLSTransport
		// https://www.rfc-editor.org/rfc/rfc7858
		port = "853"
	}
	return target{addr: addPortIfMissing(s, port), transport: transport}
}

func addPortIfMissing(s, port string) string {
	if _, _, err := net.SplitHostPort(s); err != nil {
		return net.JoinHostPort(s, port)
	}
	return s
}

func isHTTPUrl(s string) (ok bool, network string) {
	if strings.HasPrefix(s, "http://") {
		return true, "http"
	}
	if strings.HasPrefix(s, "https://") {
		return true, "https"
	}
	return false, ""
}

// generateTasks produces one task per domain (round-robin assignment) or one
// task per domain and server (fanout assignment). Tasks are immutable after
// this point.
func (b *Benchmark) generateTasks(queriers map[target]queryFunc) []boundTask {
	if b.Assignment == FanoutAssignment {
		tasks := make([]boundTask, 0, len(b.Domains)*len(b.targets))
		for _, t := range b.targets {
			for _, d := range b.Domains {
				tasks = append(tasks, boundTask{
					QueryTask: QueryTask{Domain: d, Server: t.addr, QueryType: b.qtype, Timeout: b.Timeout},
					query:     queriers[t],
				})
			}
		}
		return tasks
	}

	tasks := make([]boundTask, 0, len(b.Domains))
	for i, d := range b.Domains {
		t := b.targets[i%len(b.targets)]
		tasks = append(tasks, boundTask{
			QueryTask: QueryTask{Domain: d, Server: t.addr, QueryType: b.qtype, Timeout: b.Timeout},
			query:     queriers[t],
		})
	}
	return tasks
}

// Run executes the benchmark and returns the final Summary. The error is
// non-nil only for precondition failures detected before any query is issued.
// Cancelling ctx stops dispatching new tasks, lets in-flight queries finish
// or time out and still produces a Summary from what was collected.
func (b *Benchmark) Run(ctx context.Context) (*Summary, error) {
	if err := b.init(); err != nil {
		return nil, err
	}
	defer b.closeRequestLog()

	queriers := make(map[target]queryFunc, len(b.targets))
	for _, t := range b.targets {
		queriers[t] = b.newQuerier(t)
	}
	tasks := b.generateTasks(queriers)

	var limit ratelimit.Limiter
	if b.Rate > 0 {
		limit = ratelimit.New(b.Rate)
	}

	taskCh := make(chan boundTask)
	results := make(chan QueryResult, b.Concurrency)

	start := time.Now()

	// worker pool of exactly Concurrency goroutines, the only place where
	// network calls happen
	var wg sync.WaitGroup
	for w := uint32(0); w < b.Concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range taskCh {
				if ctx.Err() != nil {
					return
				}
				if limit != nil {
					limit.Take()
				}
				results <- b.measure(ctx, task.query, task.QueryTask)
			}
		}()
	}

	go func() {
		defer close(taskCh)
		for _, t := range tasks {
			select {
			case taskCh <- t:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	// single collector, the sole writer of the running statistics
	st := newRunningStats(int64(len(tasks)), b.HistMin, b.HistMax, b.HistPre)
	var lastProgress time.Time
	for res := range results {
		st.append(res)
		if b.OnProgress == nil {
			continue
		}
		if now := time.Now(); now.Sub(lastProgress) >= b.ProgressInterval || st.done() == int64(len(tasks)) {
			b.OnProgress(st.progress(now.Sub(start)))
			lastProgress = now
		}
	}

	return st.finalize(time.Since(start)), nil
}

func (b *Benchmark) closeRequestLog() {
	if b.requestLogFile != nil {
		b.requestLogFile.Close()
		b.requestLogFile = nil
		b.requestLog = nil
	}
}
