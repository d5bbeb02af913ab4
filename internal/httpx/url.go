package httpx

import (
	"net"
	"net/http"
	"strings"
)

// Hostname returns the host name the request was addressed to, without port.
// An IPv6 literal is returned without brackets.
func Hostname(r *http.Request) string {
	host := r.Host
	if host == "" && r.URL != nil {
		host = r.URL.Host
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
}
