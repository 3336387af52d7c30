package bench

import (
	"time"
)

const (
	// DefaultConcurrency is the default number of concurrently in-flight queries.
	DefaultConcurrency = 50

	// DefaultTimeout is the default per-query timeout.
	DefaultTimeout = 2 * time.Second

	// DefaultQueryType is the default record type for queries if no other is specified.
	DefaultQueryType = "A"

	// DefaultProgressInterval is the default minimum delay between progress callbacks.
	DefaultProgressInterval = 100 * time.Millisecond

	// DefaultHistMin is the default minimum value for the timing histogram.
	DefaultHistMin = 400 * time.Microsecond

	// DefaultHistPrecision is the default precision for the timing histogram.
	DefaultHistPrecision = 1

	// DefaultRequestLogPath is the default path of the request log file.
	DefaultRequestLogPath = "requests.log"

	// DefaultPlotFormat is the default format for plots.
	DefaultPlotFormat = "svg"

	fallbackNameServer = "127.0.0.1"
)

// Server assignment policies, see Benchmark.Assignment.
const (
	// RoundRobinAssignment partitions the domain list across the servers,
	// one query per domain.
	RoundRobinAssignment = "roundrobin"

	// FanoutAssignment queries every domain against every server.
	FanoutAssignment = "fanout"
)

// Transports of the plain DNS exchanges.
const (
	// UDPTransport represents plain DNS over UDP.
	UDPTransport = "udp"
	// TCPTransport represents plain DNS over TCP.
	TCPTransport = "tcp"
	// TLSTransport represents DNS over TLS.
	TLSTransport = "tcp-tls"
	// QUICTransport represents DNS over QUIC.
	QUICTransport = "quic"
	// HTTPSTransport represents DNS over HTTPS.
	HTTPSTransport = "https"
)

// HTTP settings of DoH exchanges.
const (
	// HTTP1Proto represents DoH over HTTP/1.1.
	HTTP1Proto = "1.1"
	// HTTP2Proto represents DoH over HTTP/2.
	HTTP2Proto = "2"
	// HTTP3Proto represents DoH over HTTP/3.
	HTTP3Proto = "3"
	// GetHTTPMethod represents a DoH request done using the GET method.
	GetHTTPMethod = "get"
	// PostHTTPMethod represents a DoH request done using the POST method.
	PostHTTPMethod = "post"
)
