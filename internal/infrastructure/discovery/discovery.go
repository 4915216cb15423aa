// Package discovery implements the UDP multicast responder devices use to
// announce themselves on the LAN: it answers an IOT-SEARCH datagram with
// the URL of the device's setup document.
package discovery

import (
	"context"
	"fmt"
	"net"
	"regexp"
	"strings"
	"syscall"
	"time"

	"golang.org/x/net/ipv4"
	"golang.org/x/sys/unix"

	"iotscp/internal/application"
)

const (
	mcastAddr = "239.255.255.250"
	mcastPort = 1900

	readBufSize  = 4096
	listenPeriod = 1 * time.Second
)

var requestLine = regexp.MustCompile(`^([A-Z-]+) (\S+) (\S+)\r\n`)

// Responder listens on the multicast group and answers matching
// IOT-SEARCH requests with a 200 OK naming where this device's setup.json
// can be fetched.
type Responder struct {
	log        application.Logger
	httpPort   int
	locationIP string
}

// New builds a Responder that, once started, advertises the device's
// setup document at http://<local address>:httpPort/setup.json.
// locationIP overrides the auto-detected LAN address when non-empty.
func New(log application.Logger, httpPort int, locationIP string) *Responder {
	if locationIP == "" {
		locationIP = LocalAddress()
	}
	return &Responder{log: log, httpPort: httpPort, locationIP: locationIP}
}

// Serve binds the multicast socket and answers requests until ctx is
// cancelled.
func (r *Responder) Serve(ctx context.Context) error {
	lc := net.ListenConfig{
		Control: func(_, _ string, c syscall.RawConn) error {
			var sockErr error
			err := c.Control(func(fd uintptr) {
				sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
			})
			if err != nil {
				return err
			}
			return sockErr
		},
	}

	conn, err := lc.ListenPacket(ctx, "udp4", fmt.Sprintf("0.0.0.0:%d", mcastPort))
	if err != nil {
		return fmt.Errorf("discovery: bind failed: %w", err)
	}
	defer func() { _ = conn.Close() }()

	pconn := ipv4.NewPacketConn(conn)
	group := net.UDPAddr{IP: net.ParseIP(mcastAddr)}
	if err := pconn.JoinGroup(nil, &group); err != nil {
		return fmt.Errorf("discovery: join group failed: %w", err)
	}

	r.log.Printf("discovery: listening on %s:%d, advertising %s", mcastAddr, mcastPort, r.location())

	buf := make([]byte, readBufSize)
	for {
		if ctx.Err() != nil {
			return nil
		}
		_ = conn.SetReadDeadline(time.Now().Add(listenPeriod))
		n, addr, err := conn.ReadFrom(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			if ctx.Err() != nil {
				return nil
			}
			r.log.Printf("discovery: read error: %v", err)
			continue
		}
		if shouldRespond(buf[:n]) {
			if _, err := conn.WriteTo(r.response(), addr); err != nil {
				r.log.Printf("discovery: reply to %s failed: %v", addr, err)
			}
		}
	}
}

func (r *Responder) location() string {
	return fmt.Sprintf("http://%s:%d/setup.json", r.locationIP, r.httpPort)
}

func (r *Responder) response() []byte {
	lines := []string{
		"HTTP/1.1 200 OK",
		"Date: " + time.Now().UTC().Format(time.RFC1123),
		"Location: " + r.location(),
		"Server: ZeroMasterUDP/1.0, IOTSCP/1.0",
		"",
		"",
	}
	return []byte(strings.Join(lines, "\r\n"))
}

// shouldRespond matches an IOT-SEARCH datagram's request line and the
// three headers a discovery request must carry, exactly: a host naming
// the multicast group and port, the iotscp:discover service tag, and a
// return type of basedevice.
func shouldRespond(datagram []byte) bool {
	text := string(datagram)
	m := requestLine.FindStringSubmatch(text)
	if m == nil || m[1] != "IOT-SEARCH" || m[2] != "*" || m[3] != "HTTP/1.1" {
		return false
	}
	headers := parseHeaders(text)
	return headers["host"] == fmt.Sprintf("%s:%d", mcastAddr, mcastPort) &&
		headers["sv"] == "iotscp:discover" &&
		headers["return"] == "device; type=basedevice"
}

func parseHeaders(text string) map[string]string {
	headers := make(map[string]string)
	lines := strings.Split(text, "\r\n")
	for _, line := range lines[1:] {
		sep := strings.Index(line, ":")
		if sep == -1 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(line[:sep]))
		headers[key] = strings.TrimSpace(line[sep+1:])
	}
	return headers
}
