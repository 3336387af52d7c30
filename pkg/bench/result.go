package bench

import (
	"time"
)

// ErrorClass is the closed classification of query failures.
type ErrorClass uint8

// Failure classes of a single query attempt.
const (
	ClassNXDomain ErrorClass = iota
	ClassNoAnswer
	ClassTimeout
	ClassOther
)

// ErrorKind identifies why a query failed. For ClassOther the Label carries
// a diagnostic describing the underlying transport failure.
type ErrorKind struct {
	Class ErrorClass
	Label string
}

// Well-known error kinds. Other kinds are constructed via OtherKind.
var (
	KindNXDomain = ErrorKind{Class: ClassNXDomain}
	KindNoAnswer = ErrorKind{Class: ClassNoAnswer}
	KindTimeout  = ErrorKind{Class: ClassTimeout}
)

// OtherKind returns the catch-all error kind carrying the given diagnostic label.
func OtherKind(label string) ErrorKind {
	return ErrorKind{Class: ClassOther, Label: label}
}

func (k ErrorKind) String() string {
	switch k.Class {
	case ClassNXDomain:
		return "NXDOMAIN"
	case ClassNoAnswer:
		return "NoAnswer"
	case ClassTimeout:
		return "Timeout"
	default:
		return "Other (" + k.Label + ")"
	}
}

// QueryTask is a single unit of work, one domain queried once against one server.
// Tasks are immutable once generated.
type QueryTask struct {
	Domain    string
	Server    string
	QueryType uint16
	Timeout   time.Duration
}

// QueryResult is the outcome of one executed QueryTask. Exactly one of
// LatencyMs (Succeeded) or Kind (!Succeeded) is meaningful.
type QueryResult struct {
	Domain    string
	Server    string
	Start     time.Time
	Succeeded bool

	// LatencyMs is the measured wall-clock duration of the query in
	// milliseconds with sub-millisecond precision. Valid only on success.
	LatencyMs float64

	// Kind classifies the failure. Valid only when Succeeded is false.
	Kind ErrorKind

	// Rcode is the DNS response code, or NoResponseRcode when no response
	// was received at all.
	Rcode int
}

// NoResponseRcode marks results for which no DNS response was received.
const NoResponseRcode = -1

// Datapoint is one successful measurement, used for plotting.
type Datapoint struct {
	DurationMs float64
	Start      time.Time
}

// ErrorDatapoint is one failed measurement, used for plotting error rates.
type ErrorDatapoint struct {
	Start time.Time
	Kind  ErrorKind
}
