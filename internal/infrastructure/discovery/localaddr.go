package discovery

import (
	"net"
	"os"
	"strings"
)

// LocalAddress guesses this machine's address on the LAN: it tries the
// hostname's resolved address first (appending ".local" when the hostname
// carries no domain, to avoid a bare loopback lookup), falling back to
// whatever interface the kernel would route a packet to 8.8.8.8 through
// when the hostname resolves to loopback or fails to resolve at all.
func LocalAddress() string {
	if addr := fromHostname(); addr != "" {
		return addr
	}
	return fromOutboundDial()
}

func fromHostname() string {
	hostname, err := os.Hostname()
	if err != nil {
		return ""
	}
	if !strings.Contains(hostname, ".") {
		hostname += ".local"
	}
	addrs, err := net.LookupHost(hostname)
	if err != nil || len(addrs) == 0 {
		return ""
	}
	addr := addrs[0]
	if isLoopback(addr) {
		return ""
	}
	return addr
}

func isLoopback(addr string) bool {
	ip := net.ParseIP(addr)
	return ip != nil && ip.IsLoopback()
}

func fromOutboundDial() string {
	conn, err := net.Dial("udp", "8.8.8.8:0")
	if err != nil {
		return ""
	}
	defer func() { _ = conn.Close() }()
	host, _, err := net.SplitHostPort(conn.LocalAddr().String())
	if err != nil {
		return ""
	}
	return host
}
