package bench

import (
	"time"

	"github.com/miekg/dns"
)

func (b *Benchmark) logRequest(task QueryTask, res QueryResult, resp *dns.Msg, err error, dur time.Duration) {
	rcode := "<nil>"
	if resp != nil {
		rcode = dns.RcodeToString[resp.Rcode]
	}
	outcome := "success"
	if !res.Succeeded {
		outcome = res.Kind.String()
	}
	b.requestLog.Printf("server:[%s] qname:[%s] qtype:[%s] rcode:[%s] outcome:[%s] err:[%v] duration:[%v]",
		task.Server, dns.Fqdn(task.Domain), dns.TypeToString[task.QueryType], rcode, outcome, err, dur)
}
