package bench

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
)

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestIsTimeout(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"net timeout error", timeoutError{}, true},
		{"wrapped net timeout error", &net.OpError{Op: "read", Net: "udp", Err: timeoutError{}}, true},
		{"context deadline", context.DeadlineExceeded, true},
		{"context cancelled", context.Canceled, false},
		{"plain error", errors.New("connection refused"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isTimeout(tt.err))
		})
	}
}

func TestErrLabel(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			"DNS error",
			&net.DNSError{Err: "no such host", Name: "missing.example"},
			"no such host missing.example",
		},
		{
			"op error without address",
			&net.OpError{Op: "dial", Net: "udp"},
			"dial udp",
		},
		{
			"op error with address",
			&net.OpError{Op: "dial", Net: "udp", Addr: &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 53}},
			"dial udp 127.0.0.1:53",
		},
		{
			"plain error",
			errors.New("connection refused"),
			"connection refused",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errLabel(tt.err))
		})
	}
}

func TestHasAnswer(t *testing.T) {
	withA := new(dns.Msg)
	withA.Answer = append(withA.Answer, A("example.org. IN A 127.0.0.1"))

	cnameOnly := new(dns.Msg)
	rr, _ := dns.NewRR("example.org. IN CNAME alias.example.org.")
	cnameOnly.Answer = append(cnameOnly.Answer, rr)

	empty := new(dns.Msg)

	tests := []struct {
		name  string
		resp  *dns.Msg
		qtype uint16
		want  bool
	}{
		{"A answer for A query", withA, dns.TypeA, true},
		{"A answer for AAAA query", withA, dns.TypeAAAA, false},
		{"CNAME only answer for A query", cnameOnly, dns.TypeA, false},
		{"empty answer section", empty, dns.TypeA, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, hasAnswer(tt.resp, tt.qtype))
		})
	}
}

func TestBenchmark_measure_ErrorClassification(t *testing.T) {
	bench := Benchmark{Recurse: true}
	task := QueryTask{Domain: "example.org", Server: "192.0.2.1:53", QueryType: dns.TypeA, Timeout: time.Second}

	tests := []struct {
		name     string
		query    queryFunc
		wantKind ErrorKind
	}{
		{
			"timeout error",
			func(context.Context, *dns.Msg) (*dns.Msg, error) { return nil, timeoutError{} },
			KindTimeout,
		},
		{
			"transport error",
			func(context.Context, *dns.Msg) (*dns.Msg, error) { return nil, errors.New("connection refused") },
			OtherKind("connection refused"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := bench.measure(context.Background(), tt.query, task)

			assert.False(t, res.Succeeded)
			assert.Equal(t, tt.wantKind, res.Kind)
			assert.Equal(t, NoResponseRcode, res.Rcode)
		})
	}
}

func TestBenchmark_measure_Success(t *testing.T) {
	bench := Benchmark{Recurse: true}
	task := QueryTask{Domain: "example.org", Server: "192.0.2.1:53", QueryType: dns.TypeA, Timeout: time.Second}

	query := func(_ context.Context, m *dns.Msg) (*dns.Msg, error) {
		ret := new(dns.Msg)
		ret.SetReply(m)
		ret.Answer = append(ret.Answer, A("example.org. IN A 127.0.0.1"))
		return ret, nil
	}
	res := bench.measure(context.Background(), query, task)

	assert.True(t, res.Succeeded)
	assert.Equal(t, dns.RcodeSuccess, res.Rcode)
	assert.Positive(t, res.LatencyMs)
	assert.False(t, res.Start.IsZero())
}
