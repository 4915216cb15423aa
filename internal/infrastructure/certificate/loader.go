// Package certificate loads and generates the on-disk certificate file that
// backs internal/domain/certificate.Certificate.
package certificate

import (
	"crypto/rand"
	"errors"
	"fmt"
	"os"

	domaincert "iotscp/internal/domain/certificate"
	"iotscp/internal/domain/iotscperr"
)

// DefaultSegments and DefaultSegmentLength are the certificate-generation
// defaults used when a deployment doesn't size its own certificate.
const (
	DefaultSegments      = 1000
	DefaultSegmentLength = 1500
)

// Load reads the certificate file at path and wraps it for segment
// extraction under the given segment length and remote uuid.
//
// It fails with iotscperr.ErrMissingCertificate when the file does not
// exist or is empty.
func Load(path string, segmentLength int, uuid string) (*domaincert.Certificate, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, iotscperr.ErrMissingCertificate
		}
		return nil, fmt.Errorf("certificate file (%s) is unreadable: %w", path, err)
	}
	if len(raw) == 0 {
		return nil, iotscperr.ErrMissingCertificate
	}
	return domaincert.New(raw, segmentLength, uuid), nil
}

// Generate writes a new certificate file of segments × segmentLength
// uniformly random bytes to path, overwriting any existing file.
func Generate(path string, segments, segmentLength int, progress func(done, total int)) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create certificate file (%s): %w", path, err)
	}
	defer func() { _ = f.Close() }()

	buf := make([]byte, segmentLength)
	for i := 0; i < segments; i++ {
		if _, err := rand.Read(buf); err != nil {
			return fmt.Errorf("failed to generate random segment %d: %w", i, err)
		}
		if _, err := f.Write(buf); err != nil {
			return fmt.Errorf("failed to write segment %d: %w", i, err)
		}
		if progress != nil {
			progress(i+1, segments)
		}
	}
	return nil
}
