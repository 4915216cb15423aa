// Package serializer writes the device and service description documents
// a deployment's web root serves over GET, skipping any document whose
// source hasn't changed since the last write.
package serializer

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"iotscp/internal/application"
	"iotscp/internal/domain/device"
)

const cacheFileName = "serializercache.json"

// Serialize writes the device document setup.json and one <service>.json per
// declared service under webRoot, consulting and then rewriting a hash
// cache so an unchanged service is not rewritten on every restart.
func Serialize(log application.Logger, dev *device.Device, webRoot string) error {
	cachePath := filepath.Join(webRoot, cacheFileName)
	oldHashes := loadHashes(cachePath)
	newHashes := make(map[string]string, len(dev.Services())+1)

	for _, svc := range dev.Services() {
		values := svc.ValuesDict()
		hash := hashOf(values)
		newHashes[svc.SpecURL] = hash
		if oldHashes[svc.SpecURL] == hash {
			log.Printf("serializer: %s unchanged, skipping", svc.Name)
			continue
		}
		if err := writeJSON(filepath.Join(webRoot, svc.SpecURL), values); err != nil {
			return fmt.Errorf("serializer: writing %s: %w", svc.SpecURL, err)
		}
	}

	deviceValues := dev.ValuesDict()
	deviceHash := hashOf(deviceValues)
	newHashes["setup.json"] = deviceHash
	if oldHashes["setup.json"] != deviceHash {
		if err := writeJSON(filepath.Join(webRoot, "setup.json"), deviceValues); err != nil {
			return fmt.Errorf("serializer: writing setup.json: %w", err)
		}
	} else {
		log.Printf("serializer: device description unchanged, skipping")
	}

	return writeHashes(cachePath, newHashes)
}

func hashOf(v any) string {
	body, _ := json.Marshal(v)
	sum := md5.Sum(body)
	return hex.EncodeToString(sum[:])
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, body, 0o644)
}

func loadHashes(path string) map[string]string {
	raw, err := os.ReadFile(path)
	if err != nil {
		return map[string]string{}
	}
	var hashes map[string]string
	if err := json.Unmarshal(raw, &hashes); err != nil {
		return map[string]string{}
	}
	return hashes
}

func writeHashes(path string, hashes map[string]string) error {
	body, err := json.Marshal(hashes)
	if err != nil {
		return err
	}
	return os.WriteFile(path, body, 0o644)
}
