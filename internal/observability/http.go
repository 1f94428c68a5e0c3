package observability

import (
	"net"
	"net/http"
	"strings"
)

// RequestMeta is the connection metadata lifted off the upgrade request once
// at handshake. It travels with the session into lifecycle events and broker
// headers; nothing here is re-read after the upgrade.
type RequestMeta struct {
	IP        string
	DeviceID  string
	RequestID string
}

// CaptureRequestMeta extracts the client ip and correlation headers from the
// handshake request.
func CaptureRequestMeta(r *http.Request) RequestMeta {
	return RequestMeta{
		IP:        clientIP(r),
		DeviceID:  r.Header.Get("X-Device-Id"),
		RequestID: r.Header.Get("X-Request-Id"),
	}
}

// clientIP prefers the first X-Forwarded-For hop, then the peer address.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
