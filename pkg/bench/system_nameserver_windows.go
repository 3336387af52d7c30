//go:build windows

package bench

import (
	"os/exec"
	"regexp"
)

// SystemNameServers fetches the default system name server based on the
// nslookup call. If it fails, 127.0.0.1 is returned.
func SystemNameServers() []string {
	out, err := exec.Command("nslookup").Output()
	if err != nil {
		return []string{fallbackNameServer}
	}

	re := regexp.MustCompile(`Address:\s+([^\s]+)`)
	matches := re.FindStringSubmatch(string(out))
	if len(matches) != 2 {
		return []string{fallbackNameServer}
	}
	return []string{matches[1]}
}
