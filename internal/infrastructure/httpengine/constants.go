// Package httpengine implements a strict HTTP/1.1 subset: incremental head
// parsing, a keep-alive connection lifecycle, and response writing.
package httpengine

import "time"

const (
	// HeadBufSize is the size of the first read into the head buffer.
	HeadBufSize = 4096

	// HeadHardCap is the maximum number of bytes accumulated while
	// searching for the CRLFCRLF separator before the request is rejected.
	HeadHardCap = 65537

	// ListenTimeout is a one-second readiness period. Neither the accept
	// loop nor the per-connection read loop uses it: Accept blocks until
	// the listener is closed, and each request read waits up to
	// ClientTimeout.
	ListenTimeout = 1 * time.Second

	// ClientTimeout is the idle deadline after which a kept-alive
	// connection is force-closed.
	ClientTimeout = 300 * time.Second

	// WriteTimeout is the deadline for each file-body chunk WriteFile
	// writes.
	WriteTimeout = 5 * time.Second

	// ServerHeader is the fixed Server response header value.
	ServerHeader = "ZeroMasterHTTP/1.0"
)
