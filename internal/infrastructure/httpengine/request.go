package httpengine

import (
	"encoding/json"
	"net"
	"strings"

	"iotscp/internal/domain/iotscperr"
)

// Request is a fully-read HTTP request: request line, headers, and (for
// POST) a body.
type Request struct {
	Method  string
	Path    string
	Proto   string
	Headers map[string]string
	Body    []byte

	remoteAddr string
}

// Header returns a request header by its lowercased name.
func (r *Request) Header(name string) (string, bool) {
	v, ok := r.Headers[strings.ToLower(name)]
	return v, ok
}

// RemoteAddr returns the string form of the peer address this request
// arrived from.
func (r *Request) RemoteAddr() string { return r.remoteAddr }

// DecodeJSONBody decodes the request body as JSON, using json.Number for
// numeric literals so callers can distinguish declared int from float
// arguments without losing precision.
func (r *Request) DecodeJSONBody(v any) error {
	dec := json.NewDecoder(strings.NewReader(string(r.Body)))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return iotscperr.ErrDecryptFailure
	}
	return nil
}

// ReadRequest reads one HTTP request off conn: the head (request line and
// headers), then — for verbs that carry a body — exactly Content-Length
// more bytes.
func ReadRequest(conn net.Conn) (*Request, error) {
	h, err := readHead(conn)
	if err != nil {
		return nil, err
	}
	if !isSupportedVersion(h.line3) {
		return nil, iotscperr.ErrVersionUnsupported
	}

	req := &Request{
		Method:     h.line1,
		Path:       h.line2,
		Proto:      h.line3,
		Headers:    h.headers,
		remoteAddr: conn.RemoteAddr().String(),
	}

	if requiresBody(h.line1) {
		if !h.hasContentLength {
			return nil, iotscperr.ErrHeaderType
		}
		body, err := readBody(conn, h.bodyPrefix, h.contentLength)
		if err != nil {
			return nil, err
		}
		req.Body = body
	}
	return req, nil
}

func requiresBody(method string) bool {
	switch method {
	case "POST", "PUT", "SUBSCRIBE":
		return true
	default:
		return false
	}
}

func isSupportedVersion(proto string) bool {
	return strings.HasPrefix(proto, "HTTP/1.")
}
