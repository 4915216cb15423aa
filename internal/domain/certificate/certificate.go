// Package certificate implements the bounded shared-secret byte array that
// sessions derive their key schedule from.
package certificate

import (
	"bytes"

	"iotscp/internal/domain/iotscperr"
)

// Certificate is an in-memory view over N_segments × L_segment bytes of
// shared secret material. It never mutates its backing bytes; Segment
// returns a read-only view into them.
type Certificate struct {
	raw           []byte
	segmentLength int
	uuid          string
}

// New wraps raw bytes as a certificate. The length of raw is not checked:
// trailing bytes that do not fill a whole segmentLength-sized segment are
// never returned by Segment and are not counted by SegmentCount.
func New(raw []byte, segmentLength int, uuid string) *Certificate {
	return &Certificate{raw: raw, segmentLength: segmentLength, uuid: uuid}
}

// UUID returns the textual identifier this certificate view was opened for.
func (c *Certificate) UUID() string { return c.uuid }

// SegmentCount returns the number of L-byte segments held by this
// certificate.
func (c *Certificate) SegmentCount() int {
	if c.segmentLength == 0 {
		return 0
	}
	return len(c.raw) / c.segmentLength
}

// Segment returns the byte run [offset*L, (offset+1)*L) of the certificate.
//
// It fails with iotscperr.ErrSegmentOutOfRange when offset addresses bytes
// beyond the certificate, and with iotscperr.ErrNullCertificate when every
// byte in the run is zero — the certificate is present but was never
// populated.
func (c *Certificate) Segment(offset int) ([]byte, error) {
	if offset < 0 || c.segmentLength == 0 {
		return nil, iotscperr.ErrSegmentOutOfRange
	}
	start := offset * c.segmentLength
	end := start + c.segmentLength
	if start < 0 || end > len(c.raw) {
		return nil, iotscperr.ErrSegmentOutOfRange
	}
	segment := c.raw[start:end]
	if isAllZero(segment) {
		return nil, iotscperr.ErrNullCertificate
	}
	return segment, nil
}

func isAllZero(b []byte) bool {
	return bytes.Count(b, []byte{0}) == len(b)
}
