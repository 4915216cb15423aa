package session

import "fmt"

func errUnknownAlgorithm(name string) error {
	return fmt.Errorf("iotscp: unknown or unavailable hash algorithm %q", name)
}
