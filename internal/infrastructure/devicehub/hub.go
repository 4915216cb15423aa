package devicehub

import (
	"bytes"
	"encoding/json"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"

	"iotscp/internal/application"
	domaincert "iotscp/internal/domain/certificate"
	"iotscp/internal/domain/device"
	"iotscp/internal/domain/iotscperr"
	cryptosession "iotscp/internal/infrastructure/cryptography/session"
	"iotscp/internal/infrastructure/httpengine"
)

// CertificateLoader resolves the shared-secret certificate a remote uuid
// should authenticate against. Deployments with a single shared
// certificate file ignore uuid and always return the same certificate.
type CertificateLoader func(uuid string) (*domaincert.Certificate, error)

// SubscriberAdder is the slice of the event dispatcher the SUBSCRIBE
// handler needs: registering a peer address against an event URL.
type SubscriberAdder interface {
	AddSubscriber(eventURL, ip string, port int)
}

// Hub is the device's HTTP request router: it owns the session table and
// dispatches GET/POST/SUBSCRIBE requests to the static file tree or the
// device's declared services.
type Hub struct {
	log      application.Logger
	device   *device.Device
	sessions *sessionTable
	certs    CertificateLoader
	webRoot  string
	subs     SubscriberAdder
}

// New builds a Hub serving dev's services and static files under webRoot.
func New(log application.Logger, dev *device.Device, certs CertificateLoader, webRoot string, subs SubscriberAdder) *Hub {
	return &Hub{
		log:      log,
		device:   dev,
		sessions: newSessionTable(),
		certs:    certs,
		webRoot:  webRoot,
		subs:     subs,
	}
}

// Handlers returns the verb->handler table to drive an httpengine.Server.
func (h *Hub) Handlers() map[string]httpengine.Handler {
	return map[string]httpengine.Handler{
		"GET":       h.handleGet,
		"POST":      h.handlePost,
		"SUBSCRIBE": h.handleSubscribe,
	}
}

const helloPath = "/iotscp/hello"

// handleGet serves static files from webRoot unauthenticated: device and
// service description documents, and any other assets a deployment places
// under its web root.
func (h *Hub) handleGet(w *httpengine.ResponseWriter, req *httpengine.Request) error {
	path := resolveStaticPath(h.webRoot, req.Path)
	if _, err := os.Stat(path); err != nil {
		return w.WriteGeneric(404)
	}
	if err := w.WriteFile(path, nil); err != nil {
		h.log.Printf("devicehub: failed serving %s: %v", path, err)
	}
	return nil
}

// resolveStaticPath converts a request path into a file under root,
// appending index.html when the final path segment has no extension and
// stripping any query or fragment suffix.
func resolveStaticPath(root, reqPath string) string {
	clean := reqPath
	if i := strings.IndexAny(clean, "?#"); i != -1 {
		clean = clean[:i]
	}
	clean = filepath.Clean("/" + clean)
	if filepath.Ext(clean) == "" {
		clean = filepath.Join(clean, "index.html")
	}
	return filepath.Join(root, clean)
}

// handlePost routes authenticated control-plane requests: session
// creation at /iotscp/hello, and method invocation everywhere else.
func (h *Hub) handlePost(w *httpengine.ResponseWriter, req *httpengine.Request) error {
	uuid, ok := req.Header("uuid")
	if !ok {
		return w.WriteHead(401, nil)
	}
	if req.Path == helloPath {
		return h.createSession(w, req, uuid)
	}
	return h.invokeMethod(w, req, uuid)
}

type helloRequest struct {
	Offset     int      `json:"offset"`
	Algorithms []string `json:"algorithms"`
}

// createSession negotiates a hash algorithm against the peer's
// certificate segment and installs a fresh session for uuid, replacing
// any session already on file for it.
func (h *Hub) createSession(w *httpengine.ResponseWriter, req *httpengine.Request, uuid string) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(req.Body, &raw); err != nil {
		return writeMissing(w, "offset")
	}
	if _, ok := raw["offset"]; !ok {
		return writeMissing(w, "offset")
	}
	if _, ok := raw["algorithms"]; !ok {
		return writeMissing(w, "algorithms")
	}

	var body helloRequest
	if err := json.Unmarshal(req.Body, &body); err != nil {
		return writeMissing(w, "offset")
	}

	cert, err := h.certs(uuid)
	if err != nil {
		return writeMissing(w, "certificate")
	}
	segment, err := cert.Segment(body.Offset)
	if err != nil {
		return writeMissing(w, "certificate")
	}

	// A missing "algorithms" key is caught above and reported as 401; a
	// present-but-incompatible list has no common algorithm to fall back
	// to and propagates as 500, matching the reference's ValueError path.
	algorithm, err := cryptosession.NegotiateAlgorithm(body.Algorithms, h.device.PrefAlg())
	if err != nil {
		if errors.Is(err, iotscperr.ErrNoCommonAlgorithm) {
			return w.WriteHead(500, nil)
		}
		return writeMissing(w, "algorithms")
	}

	sess, err := cryptosession.New(uuid, algorithm, segment)
	if err != nil {
		return w.WriteHead(500, nil)
	}
	h.sessions.put(uuid, sess)

	return w.WriteBody(200, "text/plain; charset=utf-8", []byte(algorithm), nil)
}

func writeMissing(w *httpengine.ResponseWriter, field string) error {
	body, _ := json.Marshal(map[string]string{"missing": field})
	return w.WriteBody(401, "application/json", body, nil)
}

// methodCall is the decrypted control-URL payload: a two-element JSON
// array `[method_name, args]`, matching basedevice.py's
// `method, args = json.loads(body)`.
type methodCall struct {
	Method string
	Args   map[string]any
}

func decodeMethodCall(plaintext []byte) (methodCall, error) {
	var tuple [2]json.RawMessage
	dec := json.NewDecoder(strings.NewReader(string(plaintext)))
	dec.UseNumber()
	if err := dec.Decode(&tuple); err != nil {
		return methodCall{}, err
	}

	var call methodCall
	if err := json.Unmarshal(tuple[0], &call.Method); err != nil {
		return methodCall{}, err
	}
	argDec := json.NewDecoder(bytes.NewReader(tuple[1]))
	argDec.UseNumber()
	if err := argDec.Decode(&call.Args); err != nil {
		return methodCall{}, err
	}
	return call, nil
}

// invokeMethod decrypts a control-URL request body, dispatches it to the
// named method, encrypts the result, and commits the key ratchet exactly
// once per round trip.
func (h *Hub) invokeMethod(w *httpengine.ResponseWriter, req *httpengine.Request, uuid string) error {
	sess, ok := h.sessions.get(uuid)
	if !ok {
		return w.WriteHead(401, nil)
	}

	plaintext := sess.Decrypt(req.Body)
	call, err := decodeMethodCall(plaintext)
	if err != nil {
		return w.WriteHead(401, nil)
	}

	svc, err := h.device.ServiceByControlURL(req.Path)
	if err != nil {
		return w.WriteHead(501, nil)
	}
	method, ok := svc.Methods[call.Method]
	if !ok {
		return w.WriteHead(501, nil)
	}

	output, err := method.Invoke(h.device, call.Args)
	if err != nil {
		h.log.Printf("devicehub: %s.%s failed: %v", svc.Name, call.Method, err)
		return w.WriteHead(500, nil)
	}

	sess.UpdateKey()
	respBody, err := json.Marshal(output)
	if err != nil {
		return w.WriteHead(500, nil)
	}
	ciphertext := sess.Encrypt(respBody)
	return w.WriteBody(200, "application/octet-stream", ciphertext, nil)
}

// handleSubscribe registers an authenticated peer to receive NOTIFYs for
// an event URL. The request body names the port the peer listens on; the
// source IP comes from the TCP connection itself.
func (h *Hub) handleSubscribe(w *httpengine.ResponseWriter, req *httpengine.Request) error {
	uuid, ok := req.Header("uuid")
	if !ok {
		return w.WriteHead(401, nil)
	}
	sess, ok := h.sessions.get(uuid)
	if !ok {
		return w.WriteHead(401, nil)
	}
	if _, err := h.device.ServiceByEventURL(req.Path); err != nil {
		return w.WriteHead(501, nil)
	}

	plaintext := sess.Decrypt(req.Body)
	var args struct {
		Port int `json:"port"`
	}
	if err := json.Unmarshal(plaintext, &args); err != nil {
		return w.WriteHead(401, nil)
	}

	ip, _, err := net.SplitHostPort(req.RemoteAddr())
	if err != nil {
		return w.WriteHead(500, nil)
	}
	h.subs.AddSubscriber(req.Path, ip, args.Port)
	sess.UpdateKey()
	return w.WriteHead(200, nil)
}
