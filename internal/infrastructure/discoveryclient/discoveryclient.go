// Package discoveryclient implements the LAN-side counterpart to
// discovery.Responder: broadcasting an IOT-SEARCH datagram and fetching
// the setup.json document of every device that answers.
package discoveryclient

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	mcastAddr   = "239.255.255.250:1900"
	searchBound = 5 * time.Second
	dialTimeout = 1 * time.Second
)

// FoundDevice is a device discovered on the LAN: its setup URL and its
// parsed setup document.
type FoundDevice struct {
	Location string
	Setup    map[string]any
}

// FindDevices broadcasts an IOT-SEARCH request for returnType (normally
// "device; type=basedevice") and fetches the setup.json document named by
// every distinct Location a responder sends back within searchBound.
func FindDevices(returnType string) ([]FoundDevice, error) {
	conn, err := net.Dial("udp", mcastAddr)
	if err != nil {
		return nil, fmt.Errorf("discoveryclient: dial failed: %w", err)
	}
	defer func() { _ = conn.Close() }()

	msg := strings.Join([]string{
		"IOT-SEARCH * HTTP/1.1",
		"Host: " + mcastAddr,
		"Return: " + returnType,
		"SV: iotscp:discover",
		"", "",
	}, "\r\n")
	if _, err := conn.Write([]byte(msg)); err != nil {
		return nil, fmt.Errorf("discoveryclient: send failed: %w", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(searchBound))

	seen := make(map[string]bool)
	var found []FoundDevice
	buf := make([]byte, 400)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			break
		}
		location, ok := extractLocation(buf[:n])
		if !ok || seen[location] {
			continue
		}
		seen[location] = true
		if dev, err := fetchSetup(location); err == nil {
			found = append(found, dev)
		}
	}
	return found, nil
}

func extractLocation(datagram []byte) (string, bool) {
	lines := strings.Split(string(datagram), "\r\n")
	for _, line := range lines[1:] {
		sep := strings.Index(line, ":")
		if sep == -1 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(line[:sep]))
		if key == "location" {
			return strings.TrimSpace(line[sep+1:]), true
		}
	}
	return "", false
}

// fetchSetup opens a short-lived, non-keep-alive connection to fetch a
// discovered device's setup.json.
func fetchSetup(location string) (FoundDevice, error) {
	u, err := url.Parse(location)
	if err != nil {
		return FoundDevice{}, err
	}

	conn, err := net.DialTimeout("tcp", u.Host, dialTimeout)
	if err != nil {
		return FoundDevice{}, err
	}
	defer func() { _ = conn.Close() }()

	req := strings.Join([]string{
		fmt.Sprintf("GET %s HTTP/1.1", u.Path),
		"Host: " + u.Host,
		"Accept: application/json",
		"Connection: close",
		"", "",
	}, "\r\n")
	if _, err := conn.Write([]byte(req)); err != nil {
		return FoundDevice{}, err
	}

	resp, err := http.ReadResponse(bufio.NewReader(conn), nil)
	if err != nil {
		return FoundDevice{}, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != 200 {
		return FoundDevice{}, fmt.Errorf("discoveryclient: %s returned %d", location, resp.StatusCode)
	}

	var setup map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&setup); err != nil {
		return FoundDevice{}, err
	}
	return FoundDevice{Location: location, Setup: setup}, nil
}
