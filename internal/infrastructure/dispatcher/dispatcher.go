// Package dispatcher implements the event fan-out described for services:
// a subscriber registry keyed by event URL, and one worker goroutine per
// subscriber address that owns a single long-lived connection carrying
// every event that peer is subscribed to, across every event URL.
package dispatcher

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"net/textproto"
	"strconv"
	"strings"
	"sync"
	"time"

	"iotscp/internal/application"
)

// SubTimeout is how long a worker waits without successfully sending an
// event before it probes the connection with a keep-alive poke.
const SubTimeout = 180 * time.Second

// drainPoll is how long a worker blocks waiting on its channel before
// re-checking the SubTimeout and stop conditions.
const drainPoll = 15 * time.Second

// dialTimeout and roundTripTimeout bound the synchronous connect/send/
// receive that happens on the calling goroutine before a worker exists,
// and on the worker goroutine for every NOTIFY and poke afterward.
const dialTimeout = 5 * time.Second
const roundTripTimeout = 5 * time.Second

// Dispatcher fans events out to every peer subscribed to an event URL,
// holding one worker per peer address regardless of how many event URLs
// that peer is subscribed to.
type Dispatcher struct {
	log application.Logger

	mu          sync.Mutex
	subscribers map[string][]string    // event URL -> subscriber addrs ("ip:port")
	workers     map[string]chan event  // addr -> inbound event channel
	stop        <-chan struct{}
}

type event struct {
	name    string
	payload map[string]any
}

// New builds a Dispatcher. stop is closed when the process is shutting
// down; every worker goroutine exits promptly once it is.
func New(log application.Logger, stop <-chan struct{}) *Dispatcher {
	return &Dispatcher{
		log:         log,
		subscribers: make(map[string][]string),
		workers:     make(map[string]chan event),
		stop:        stop,
	}
}

// AddSubscriber registers addr ("ip:port", built from the SUBSCRIBE
// request's source IP and a declared port) against eventURL, ignoring
// duplicate registrations.
func (d *Dispatcher) AddSubscriber(eventURL, ip string, port int) {
	addr := net.JoinHostPort(ip, strconv.Itoa(port))
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, existing := range d.subscribers[eventURL] {
		if existing == addr {
			return
		}
	}
	d.subscribers[eventURL] = append(d.subscribers[eventURL], addr)
}

// SendEvent publishes payload (already stamped with its event name by the
// caller) to every subscriber of eventURL. Subscribers whose connection
// cannot be established or kept alive are dropped from the registry.
func (d *Dispatcher) SendEvent(eventURL string, payload map[string]any) {
	name, _ := payload["name"].(string)
	ev := event{name: name, payload: payload}

	d.mu.Lock()
	addrs := append([]string(nil), d.subscribers[eventURL]...)
	d.mu.Unlock()

	for _, addr := range addrs {
		if !d.deliver(addr, ev) {
			d.unlinkSubscriber(eventURL, addr)
		}
	}
}

func (d *Dispatcher) unlinkSubscriber(eventURL, addr string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subscribers[eventURL] = removeAddr(d.subscribers[eventURL], addr)
}

// removeAddr returns subs with addr's first occurrence removed, if present.
func removeAddr(subs []string, addr string) []string {
	for i, existing := range subs {
		if existing == addr {
			return append(subs[:i], subs[i+1:]...)
		}
	}
	return subs
}

// deliver enqueues ev on addr's worker, spawning one (with a synchronous
// first send to confirm the peer supports keep-alive) if none exists yet.
func (d *Dispatcher) deliver(addr string, ev event) bool {
	d.mu.Lock()
	ch, ok := d.workers[addr]
	d.mu.Unlock()
	if ok {
		select {
		case ch <- ev:
			return true
		default:
			d.log.Printf("dispatcher: %s's channel is full, dropping event", addr)
			return true
		}
	}

	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		d.log.Printf("dispatcher: could not connect to %s: %v", addr, err)
		return false
	}
	if !sendEventHTTP(conn, addr, ev) {
		_ = conn.Close()
		return false
	}

	ch = make(chan event, 32)
	d.mu.Lock()
	d.workers[addr] = ch
	d.mu.Unlock()
	go d.eventLoop(conn, addr, ch)
	return true
}

// eventLoop owns conn for its lifetime: it drains ch, sending each event
// in turn, and pokes the connection after SubTimeout of silence. It exits
// (closing conn and unlinking itself) once the peer stops keeping the
// connection alive or the process is shutting down.
func (d *Dispatcher) eventLoop(conn net.Conn, addr string, ch chan event) {
	defer func() {
		_ = conn.Close()
		d.mu.Lock()
		delete(d.workers, addr)
		for url, subs := range d.subscribers {
			d.subscribers[url] = removeAddr(subs, addr)
		}
		d.mu.Unlock()
		d.log.Printf("dispatcher: closed connection to %s", addr)
	}()

	idle := time.Now()
	for {
		select {
		case <-d.stop:
			return
		case ev := <-ch:
			if !sendEventHTTP(conn, addr, ev) {
				return
			}
			idle = time.Now()
		case <-time.After(drainPoll):
			if time.Since(idle) >= SubTimeout {
				if !pokeHTTP(conn, addr) {
					return
				}
				idle = time.Now()
			}
		}
	}
}

func makeNotification(addr string, ev event) []byte {
	body, _ := json.Marshal(ev.payload)
	lines := []string{
		"NOTIFY / HTTP/1.1",
		"Host: " + addr,
		fmt.Sprintf("NT: iotscp:event; event-name=%s", ev.name),
		"Content-Type: application/json",
		fmt.Sprintf("Content-Length: %d", len(body)),
		"Connection: keep-alive",
		"",
		string(body),
	}
	return []byte(strings.Join(lines, "\r\n"))
}

func makePoke(addr string) []byte {
	lines := []string{
		"NOTIFY / HTTP/1.1",
		"Host: " + addr,
		"Connection: keep-alive",
		"",
		"",
	}
	return []byte(strings.Join(lines, "\r\n"))
}

func sendEventHTTP(conn net.Conn, addr string, ev event) bool {
	return roundTrip(conn, addr, makeNotification(addr, ev))
}

func pokeHTTP(conn net.Conn, addr string) bool {
	return roundTrip(conn, addr, makePoke(addr))
}

// roundTrip writes msg and reads back the peer's HTTP response head,
// reporting whether the exchange indicates the connection should stay
// open.
func roundTrip(conn net.Conn, addr string, msg []byte) bool {
	_ = conn.SetWriteDeadline(time.Now().Add(roundTripTimeout))
	if _, err := conn.Write(msg); err != nil {
		return false
	}
	_ = conn.SetReadDeadline(time.Now().Add(roundTripTimeout))

	reader := bufio.NewReader(conn)
	statusLine, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	fields := strings.Fields(statusLine)
	if len(fields) < 2 {
		return false
	}
	proto, code := fields[0], fields[1]

	tp := textproto.NewReader(reader)
	headers, err := tp.ReadMIMEHeader()
	if err != nil {
		return false
	}
	return shouldKeepAlive(proto, code, headers)
}

func shouldKeepAlive(proto, code string, headers textproto.MIMEHeader) bool {
	if code != "200" {
		return false
	}
	conn := headers.Get("Connection")
	if conn == "" {
		return versionAtLeast11(proto)
	}
	return !strings.EqualFold(conn, "close")
}

func versionAtLeast11(proto string) bool {
	_, rest, ok := strings.Cut(proto, "/")
	if !ok {
		return false
	}
	major, minor, ok := strings.Cut(rest, ".")
	if !ok {
		return false
	}
	maj, errM := strconv.Atoi(major)
	min, errN := strconv.Atoi(minor)
	if errM != nil || errN != nil {
		return false
	}
	return maj > 1 || (maj == 1 && min >= 1)
}
