// Package session implements the per-peer symmetric cipher and PBKDF2 key
// schedule: a 256-entry permutation ratcheted forward on a fixed clock
// tick, re-randomized once the previous and next keys converge.
package session

import (
	"bytes"
	"hash"
	"strconv"
	"sync"
	"time"

	"golang.org/x/crypto/pbkdf2"
)

// KeyTTL is the period of the clamp step function, in seconds.
const KeyTTL = 5

const cipherSize = 256

// Clamp is a non-decreasing step function: clamp(n, q) = n - (n mod q) +
// q. Two calls within the same q-second tick always land on the same
// value, and each tick boundary advances it by exactly q.
func Clamp(n, q int64) int64 {
	return n - n%q + q
}

// Session is a peer's symmetric cipher state: a 256-entry permutation
// ratcheted forward by a PBKDF2-derived key stream tied to wall-clock time.
// All methods are safe for concurrent use; a single per-connection handler
// goroutine is expected to drive a session at a time, but the mutex here
// keeps that an engineering assumption rather than a hard requirement — the
// device hub's "last hello wins" session replacement can race a
// still-draining request against a fresh session install.
type Session struct {
	mu sync.Mutex

	uuid      string
	algorithm string

	cipher [cipherSize]byte

	start       time.Time
	previousKey []byte
	newKey      []byte
}

// New creates a session for uuid, authenticated with the given certificate
// segment and negotiated algorithm name. algorithm must be a name returned
// by NegotiateAlgorithm or present in AvailableAlgorithms.
func New(uuid, algorithm string, certSegment []byte) (*Session, error) {
	factory, ok := hashFactory(algorithm)
	if !ok {
		return nil, errUnknownAlgorithm(algorithm)
	}

	s := &Session{
		uuid:      uuid,
		algorithm: algorithm,
		start:     time.Now(),
	}
	for i := range s.cipher {
		s.cipher[i] = byte(i)
	}

	s.previousKey = pbkdf2Key(factory, certSegment, freshSalt(time.Now()), 10000)
	s.newKey = pbkdf2Key(factory, s.previousKey, segmentSalt(s.elapsed()), 100)
	return s, nil
}

// Algorithm returns the negotiated hash algorithm name for this session.
func (s *Session) Algorithm() string {
	return s.algorithm
}

func (s *Session) elapsed() time.Duration {
	return time.Since(s.start)
}

// freshSalt derives the initial salt: the text form of clamp(ceil(now), q)
// where now is the current Unix timestamp in seconds.
func freshSalt(now time.Time) []byte {
	nowSeconds := float64(now.UnixNano()) / 1e9
	clamped := Clamp(ceilSeconds(nowSeconds), KeyTTL)
	return []byte(strconv.FormatInt(clamped, 10))
}

// segmentSalt derives the salt for the next ratchet step: the text form of
// clamp(ceil(e), q) where e is the elapsed seconds since session start.
func segmentSalt(elapsed time.Duration) []byte {
	clamped := Clamp(ceilSeconds(elapsed.Seconds()), KeyTTL)
	return []byte(strconv.FormatInt(clamped, 10))
}

// ceilSeconds rounds a fractional number of seconds up to a whole second.
func ceilSeconds(secs float64) int64 {
	whole := int64(secs)
	if secs > float64(whole) {
		whole++
	}
	return whole
}

func pbkdf2Key(factory func() hash.Hash, secret, salt []byte, iterations int) []byte {
	return pbkdf2.Key(secret, salt, iterations, cipherSize, factory)
}

// randomize re-derives the next key from the current previous key and
// permutes the cipher by swapping cipher[i] with cipher[key[i]] for every
// index.
func (s *Session) randomize() {
	key := pbkdf2Key(mustHashFactory(s.algorithm), s.previousKey, segmentSalt(s.elapsed()), 100)
	s.newKey = key
	for i := 0; i < cipherSize; i++ {
		j := key[i]
		s.cipher[i], s.cipher[j] = s.cipher[j], s.cipher[i]
	}
}

func mustHashFactory(name string) func() hash.Hash {
	f, ok := hashFactory(name)
	if !ok {
		panic("iotscp: session holds an unavailable algorithm: " + name)
	}
	return f
}

// Encrypt computes out[i] = cipher[in[i]] xor cipher[i mod 256]. It
// re-randomizes the cipher first if the previous and new keys have
// converged, i.e. UpdateKey committed since the last randomization.
func (s *Session) Encrypt(plaintext []byte) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	if bytes.Equal(s.previousKey, s.newKey) {
		s.randomize()
	}
	out := make([]byte, len(plaintext))
	for i, b := range plaintext {
		out[i] = s.cipher[b] ^ s.cipher[i%cipherSize]
	}
	return out
}

// Decrypt builds the cipher's inverse permutation and, for each byte,
// recovers out[i] = inverse[in[i] xor cipher[i mod 256]].
func (s *Session) Decrypt(ciphertext []byte) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	if bytes.Equal(s.previousKey, s.newKey) {
		s.randomize()
	}
	var inverse [cipherSize]byte
	for i, b := range s.cipher {
		inverse[b] = byte(i)
	}
	out := make([]byte, len(ciphertext))
	for i, b := range ciphertext {
		out[i] = inverse[b^s.cipher[i%cipherSize]]
	}
	return out
}

// UpdateKey commits the key ratchet: previous becomes new. It must be
// called exactly once after every successful round trip, immediately
// before the next Encrypt/Decrypt pair.
func (s *Session) UpdateKey() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.previousKey = s.newKey
}
