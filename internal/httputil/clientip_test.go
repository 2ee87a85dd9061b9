package httputil

import (
	"net/http"
	"testing"
)

func TestClientIPRemoteAddr(t *testing.T) {
	tests := []struct {
		remoteAddr string
		want       string
	}{
		{"192.168.1.1:12345", "192.168.1.1"},
		{"[::1]:12345", "::1"},
		{"192.168.1.1", "192.168.1.1"},
	}
	for _, tt := range tests {
		r := &http.Request{RemoteAddr: tt.remoteAddr}
		got := ClientIP(r, false)
		if got != tt.want {
			t.Errorf("ClientIP(%q, false) = %q, want %q", tt.remoteAddr, got, tt.want)
		}
	}
}

func TestClientIPTrustProxy(t *testing.T) {
	tests := []struct {
		name string
		xff  string
		xri  string
		want string
	}{
		{name: "forwarded single", xff: "203.0.113.9", want: "203.0.113.9"},
		{name: "forwarded chain takes leftmost", xff: "203.0.113.9, 10.0.0.1", want: "203.0.113.9"},
		{name: "forwarded with port", xff: "203.0.113.9:4711", want: "203.0.113.9"},
		{name: "forwarded ipv6", xff: "[2001:db8::1]:443", want: "2001:db8::1"},
		{name: "v4-mapped unmapped", xff: "::ffff:198.51.100.7", want: "198.51.100.7"},
		{name: "real ip fallback", xri: "198.51.100.7", want: "198.51.100.7"},
		{name: "forwarded beats real ip", xff: "203.0.113.9", xri: "198.51.100.7", want: "203.0.113.9"},
		{name: "garbage forwarded falls to real ip", xff: "unknown", xri: "198.51.100.7", want: "198.51.100.7"},
		{name: "garbage everywhere falls to remote", xff: "<script>", xri: "nope", want: "10.0.0.1"},
		{name: "no headers", want: "10.0.0.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &http.Request{RemoteAddr: "10.0.0.1:1234", Header: http.Header{}}
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				r.Header.Set("X-Real-IP", tt.xri)
			}
			if got := ClientIP(r, true); got != tt.want {
				t.Errorf("ClientIP(trustProxy=true) = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClientIPIgnoresHeadersWhenNotTrusted(t *testing.T) {
	r := &http.Request{RemoteAddr: "10.0.0.1:1234", Header: http.Header{}}
	r.Header.Set("X-Forwarded-For", "203.0.113.9")
	r.Header.Set("X-Real-IP", "198.51.100.7")

	if got := ClientIP(r, false); got != "10.0.0.1" {
		t.Errorf("ClientIP(trustProxy=false) = %q, want %q", got, "10.0.0.1")
	}
}
