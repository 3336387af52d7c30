//go:build !(unix || windows)

package bench

// SystemNameServers fetches the default system name server addresses.
func SystemNameServers() []string {
	return []string{fallbackNameServer}
}
