package bench

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/miekg/dns"
	"github.com/quic-go/quic-go/http3"
	"github.com/tantalor93/doh-go/doh"
	"github.com/tantalor93/doq-go/doq"
	"golang.org/x/net/http2"
)

type queryFunc func(context.Context, *dns.Msg) (*dns.Msg, error)

// newQuerier builds the transport client for a single target. The returned
// function is safe for concurrent use by the worker pool.
func (b *Benchmark) newQuerier(t target) queryFunc {
	switch t.transport {
	case HTTPSTransport:
		return b.dohQuery(t.addr)
	case QUICTransport:
		return b.doqQuery(t.addr)
	default:
		return b.dnsQuery(t)
	}
}

func (b *Benchmark) dnsQuery(t target) queryFunc {
	client := &dns.Client{
		Net:     t.transport,
		Timeout: b.Timeout,
		// nolint:gosec
		TLSConfig: &tls.Config{InsecureSkipVerify: b.Insecure},
	}
	return func(ctx context.Context, msg *dns.Msg) (*dns.Msg, error) {
		r, _, err := client.ExchangeContext(ctx, msg, t.addr)
		return r, err
	}
}

func (b *Benchmark) dohQuery(server string) queryFunc {
	var tr http.RoundTripper
	switch b.DohProtocol {
	case HTTP3Proto:
		// nolint:gosec
		tr = &http3.RoundTripper{TLSClientConfig: &tls.Config{InsecureSkipVerify: b.Insecure}}
	case HTTP2Proto:
		// nolint:gosec
		tr = &http2.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: b.Insecure}}
	case HTTP1Proto:
		fallthrough
	default:
		// nolint:gosec
		tr = &http.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: b.Insecure}}
	}
	c := http.Client{Transport: tr, Timeout: b.Timeout}
	dohClient := doh.NewClient(server, doh.WithHTTPClient(&c))

	switch b.DohMethod {
	case GetHTTPMethod:
		return dohClient.SendViaGet
	default:
		return dohClient.SendViaPost
	}
}

func (b *Benchmark) doqQuery(addr string) queryFunc {
	h, _, _ := net.SplitHostPort(addr)
	client := doq.NewClient(addr,
		// nolint:gosec
		doq.WithTLSConfig(&tls.Config{ServerName: h, InsecureSkipVerify: b.Insecure}),
		doq.WithReadTimeout(b.Timeout),
		doq.WithWriteTimeout(b.Timeout),
		doq.WithConnectTimeout(b.Timeout),
	)
	return client.Send
}

// measure performs exactly one resolution attempt for the task and converts
// the outcome into a QueryResult. Failures are absorbed here, they never
// propagate as errors past this boundary.
func (b *Benchmark) measure(ctx context.Context, query queryFunc, task QueryTask) QueryResult {
	m := dns.Msg{}
	m.SetQuestion(dns.Fqdn(task.Domain), task.QueryType)
	m.RecursionDesired = b.Recurse

	qctx, cancel := context.WithTimeout(ctx, task.Timeout)
	defer cancel()

	res := QueryResult{Domain: task.Domain, Server: task.Server, Rcode: NoResponseRcode}
	res.Start = time.Now()
	resp, err := query(qctx, &m)
	elapsed := time.Since(res.Start)

	switch {
	case err != nil:
		if isTimeout(err) {
			res.Kind = KindTimeout
		} else {
			res.Kind = OtherKind(errLabel(err))
		}
	case resp.Rcode == dns.RcodeNameError:
		res.Rcode = resp.Rcode
		res.Kind = KindNXDomain
	case resp.Rcode != dns.RcodeSuccess:
		res.Rcode = resp.Rcode
		res.Kind = OtherKind(dns.RcodeToString[resp.Rcode])
	case !hasAnswer(resp, task.QueryType):
		res.Rcode = resp.Rcode
		res.Kind = KindNoAnswer
	default:
		res.Rcode = resp.Rcode
		res.Succeeded = true
		res.LatencyMs = float64(elapsed) / float64(time.Millisecond)
	}

	recordMetrics(res, elapsed)
	if b.requestLog != nil {
		b.logRequest(task, res, resp, err, elapsed)
	}
	return res
}

// hasAnswer reports whether the answer section contains a record of the
// requested type. A NOERROR response without one counts as NoAnswer, e.g. an
// A query answered only with a CNAME and no chased address record.
func hasAnswer(resp *dns.Msg, qtype uint16) bool {
	for _, rr := range resp.Answer {
		if rr.Header().Rrtype == qtype {
			return true
		}
	}
	return false
}

func isTimeout(err error) bool {
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// errLabel derives the diagnostic label of an Other error kind from the
// underlying transport failure.
func errLabel(err error) string {
	var dnsErr *net.DNSError
	var opErr *net.OpError

	switch {
	case errors.As(err, &dnsErr):
		return dnsErr.Err + " " + dnsErr.Name
	case errors.As(err, &opErr):
		label := opErr.Op + " " + opErr.Net
		if opErr.Addr != nil {
			label += " " + opErr.Addr.String()
		}
		return label
	default:
		return err.Error()
	}
}
