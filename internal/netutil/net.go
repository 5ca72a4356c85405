// Package netutil classifies peer and listen addresses for the bridge and
// the fake editor.
package netutil

import (
	"net"
	"net/http"
	"strings"
)

// RemoteIP returns the peer address of r. Forwarding headers are ignored:
// the bridge trusts no proxies, and rate limits keyed on a spoofable header
// would be trivial to dodge.
func RemoteIP(r *http.Request) net.IP {
	if r == nil {
		return nil
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err != nil {
		host = strings.TrimSpace(r.RemoteAddr)
	}
	return net.ParseIP(host)
}

// ClassifyClientSource categorizes the IP origin.
func ClassifyClientSource(ip net.IP) string {
	if ip == nil {
		return "unknown"
	}
	if ip.IsLoopback() {
		return "loopback"
	}
	if ip.IsPrivate() {
		return "private"
	}
	return "public"
}

// IsLoopbackListen reports whether a listen address such as
// "127.0.0.1:8095" only accepts local connections. An empty host (":8095")
// binds every interface and is not loopback; "localhost" is.
func IsLoopbackListen(addr string) bool {
	host, _, err := net.SplitHostPort(strings.TrimSpace(addr))
	if err != nil {
		host = strings.TrimSpace(addr)
	}
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// IPString returns the textual representation or empty string.
func IPString(ip net.IP) string {
	if ip == nil {
		return ""
	}
	return ip.String()
}
