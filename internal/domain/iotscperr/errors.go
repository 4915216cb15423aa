// Package iotscperr declares the sentinel errors shared across the device
// runtime. Callers compare against these with errors.Is rather than
// inspecting wire-level status codes directly.
package iotscperr

import "errors"

var (
	// ErrMissingCertificate is returned when no certificate file is present
	// on disk.
	ErrMissingCertificate = errors.New("iotscp: missing certificate")
	// ErrNullCertificate is returned when the requested certificate segment
	// is present but holds only zero bytes.
	ErrNullCertificate = errors.New("iotscp: null certificate segment")
	// ErrSegmentOutOfRange is returned when an offset addresses a segment
	// beyond the certificate's bounds.
	ErrSegmentOutOfRange = errors.New("iotscp: certificate segment out of range")

	// ErrNoCommonAlgorithm is returned when algorithm negotiation finds no
	// overlap between the remote's advertised list and the local policy.
	ErrNoCommonAlgorithm = errors.New("iotscp: no common hash algorithm")

	// ErrNullRequest is returned when an accepted socket's first read
	// returns zero bytes.
	ErrNullRequest = errors.New("iotscp: null request")
	// ErrVersionUnsupported is returned when the request line is absent or
	// names an HTTP version this engine does not speak.
	ErrVersionUnsupported = errors.New("iotscp: unsupported http version")
	// ErrHeaderType is returned when a header with a typed grammar (such as
	// Content-Length) fails to parse.
	ErrHeaderType = errors.New("iotscp: header type mismatch")
	// ErrHeadTooLong is returned when the head exceeds the hard read cap
	// before the CRLFCRLF separator is found. The head reader also returns
	// it when the connection ends before the separator arrives and when
	// the head contains non-ASCII bytes.
	ErrHeadTooLong = errors.New("iotscp: http head too long")
	// ErrNoHandler is returned when a verb has no registered handler.
	ErrNoHandler = errors.New("iotscp: no handler for verb")

	// ErrMissingUUID is returned when an authenticated verb lacks a uuid
	// header.
	ErrMissingUUID = errors.New("iotscp: missing uuid header")
	// ErrSessionAbsent is returned when a uuid does not resolve to a live
	// session.
	ErrSessionAbsent = errors.New("iotscp: session not found")
	// ErrDecryptFailure is returned when a decrypted body fails to decode as
	// UTF-8 or fails to parse as JSON.
	ErrDecryptFailure = errors.New("iotscp: decrypt failure")

	// ErrUnknownService is returned when a control URL has no registered
	// service.
	ErrUnknownService = errors.New("iotscp: unknown service")
	// ErrUnknownMethod is returned when a service has no method by the
	// requested name.
	ErrUnknownMethod = errors.New("iotscp: unknown method")
	// ErrUnknownEventURL is returned when an event URL has no registered
	// service.
	ErrUnknownEventURL = errors.New("iotscp: unknown event url")

	// ErrMissingArgument is returned when a method's declared argument is
	// absent from the supplied argument bag.
	ErrMissingArgument = errors.New("iotscp: missing argument")
	// ErrArgumentType is returned when a supplied argument does not satisfy
	// its declared semantic type.
	ErrArgumentType = errors.New("iotscp: argument type mismatch")
	// ErrMissingReturn is returned when a method's declared return value is
	// absent from its output.
	ErrMissingReturn = errors.New("iotscp: missing return value")
	// ErrReturnType is returned when a method's output does not satisfy its
	// declared return type.
	ErrReturnType = errors.New("iotscp: return type mismatch")

	// ErrUnknownEvent is returned when a service is asked to send an event
	// it did not declare.
	ErrUnknownEvent = errors.New("iotscp: unknown event")
)
