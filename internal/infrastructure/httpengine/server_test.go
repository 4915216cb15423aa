package httpengine

import (
	"bufio"
	"net"
	"strings"
	"testing"
)

type silentLogger struct{}

func (silentLogger) Printf(string, ...any) {}

func TestHandleOneDispatchesToRegisteredHandler(t *testing.T) {
	called := false
	s := NewServer(silentLogger{}, map[string]Handler{
		"GET": func(w *ResponseWriter, req *Request) error {
			called = true
			return w.WriteBody(200, "text/plain; charset=utf-8", []byte("ok"), nil)
		},
	})

	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	// net.Pipe writes block until read, so the response is read
	// concurrently with handleOne.
	statusCh := make(chan string, 1)
	go func() {
		_, _ = client.Write([]byte("GET /setup.json HTTP/1.1\r\n\r\n"))
		statusLine, _ := bufio.NewReader(client).ReadString('\n')
		statusCh <- statusLine
	}()

	keepAlive, err := s.handleOne(server)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Fatal("registered GET handler was not invoked")
	}
	if !keepAlive {
		t.Fatal("expected keep-alive for HTTP/1.1 with no Connection header")
	}

	statusLine := <-statusCh
	if !strings.HasPrefix(statusLine, "HTTP/1.1 200") {
		t.Fatalf("unexpected status line: %q", statusLine)
	}
}

func TestHandleOneUnregisteredVerbReturns501(t *testing.T) {
	s := NewServer(silentLogger{}, map[string]Handler{})

	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	statusCh := make(chan string, 1)
	go func() {
		_, _ = client.Write([]byte("DELETE / HTTP/1.1\r\n\r\n"))
		statusLine, _ := bufio.NewReader(client).ReadString('\n')
		statusCh <- statusLine
	}()

	keepAlive, err := s.handleOne(server)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !keepAlive {
		t.Fatal("a 501 should not force the connection closed")
	}

	statusLine := <-statusCh
	if !strings.HasPrefix(statusLine, "HTTP/1.1 501") {
		t.Fatalf("unexpected status line: %q", statusLine)
	}
}

func TestHandleOneHandlerErrorReturns500(t *testing.T) {
	s := NewServer(silentLogger{}, map[string]Handler{
		"GET": func(w *ResponseWriter, req *Request) error {
			return errBoom
		},
	})

	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go func() {
		_, _ = client.Write([]byte("GET / HTTP/1.1\r\n\r\n"))
	}()

	keepAlive, err := s.handleOne(server)
	if err != nil {
		t.Fatalf("handleOne itself should not return an error for a handler failure: %v", err)
	}
	if !keepAlive {
		t.Fatal("a 500 should not force the connection closed")
	}

	reader := bufio.NewReader(client)
	statusLine, _ := reader.ReadString('\n')
	if !strings.HasPrefix(statusLine, "HTTP/1.1 500") {
		t.Fatalf("unexpected status line: %q", statusLine)
	}
}

var errBoom = stringError("boom")

type stringError string

func (e stringError) Error() string { return string(e) }
