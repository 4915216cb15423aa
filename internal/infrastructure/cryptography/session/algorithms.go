package session

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"hash"

	"golang.org/x/crypto/md4"
	"golang.org/x/crypto/ripemd160"

	"iotscp/internal/domain/iotscperr"
)

// strengthOrder is the fixed, strength-descending algorithm preference
// list. "whirlpool", "sha" and "dsa" have no local hash.Hash constructor
// (see DESIGN.md) and are filtered out of availableAlgorithms below.
var strengthOrder = []string{
	"sha512", "sha384", "whirlpool", "sha256", "sha224",
	"ripemd160", "sha", "md5", "sha1", "dsa", "md4",
}

var algorithmFactories = map[string]func() hash.Hash{
	"sha512":    sha512.New,
	"sha384":    sha512.New384,
	"sha256":    sha256.New,
	"sha224":    sha256.New224,
	"ripemd160": ripemd160.New,
	"md5":       md5.New,
	"sha1":      sha1.New,
	"md4":       md4.New,
}

// availableAlgorithms is computed once and treated as immutable for the
// life of the process.
var availableAlgorithms = func() []string {
	available := make([]string, 0, len(strengthOrder))
	for _, name := range strengthOrder {
		if _, ok := algorithmFactories[name]; ok {
			available = append(available, name)
		}
	}
	return available
}()

// hashFactory returns the hash.Hash constructor for a negotiated algorithm
// name. Callers are expected to only pass names returned by
// NegotiateAlgorithm or contained in AvailableAlgorithms.
func hashFactory(name string) (func() hash.Hash, bool) {
	f, ok := algorithmFactories[name]
	return f, ok
}

// AvailableAlgorithms returns the process's locally available algorithms in
// strength order.
func AvailableAlgorithms() []string {
	out := make([]string, len(availableAlgorithms))
	copy(out, availableAlgorithms)
	return out
}

// contains reports whether needle is present in haystack.
func contains(haystack []string, needle string) bool {
	for _, h := range haystack {
		if h == needle {
			return true
		}
	}
	return false
}

// NegotiateAlgorithm prefers the device's preferred algorithm when the
// remote also advertises it, else falls back to the strongest mutually
// available algorithm, else fails with iotscperr.ErrNoCommonAlgorithm.
func NegotiateAlgorithm(remote []string, preferred string) (string, error) {
	if preferred != "" && contains(remote, preferred) {
		return preferred, nil
	}
	for _, alg := range availableAlgorithms {
		if contains(remote, alg) {
			return alg, nil
		}
	}
	return "", iotscperr.ErrNoCommonAlgorithm
}
