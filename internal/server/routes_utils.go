package server

import (
	neturl "net/url"
	"strings"
)

func sameHost(origin, host string) bool {
	u, err := neturl.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, host)
}
