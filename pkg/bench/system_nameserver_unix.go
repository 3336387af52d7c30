//go:build unix

package bench

import (
	"github.com/miekg/dns"
)

// SystemNameServers fetches the name servers configured in /etc/resolv.conf.
// If the file cannot be read or lists no servers, 127.0.0.1 is returned.
func SystemNameServers() []string {
	conf, err := dns.ClientConfigFromFile("/etc/resolv.conf")
	if err != nil || len(conf.Servers) == 0 {
		return []string{fallbackNameServer}
	}
	return conf.Servers
}
