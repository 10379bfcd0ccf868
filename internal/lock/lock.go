// Package lock writes lock snapshots of environment manifests: a dated,
// uniquely identified record of the manifest content and its constraint
// pins. A lock records, it never resolves.
package lock

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/notebook-tools/env-composer/internal/envspec"
)

// SchemaVersion of the lock document format.
const SchemaVersion = "1.0"

// EnvironmentLock is the serialized lock snapshot.
type EnvironmentLock struct {
	SchemaVersion string `json:"schemaVersion"`
	ID            string `json:"id"`
	CreatedAt     string `json:"createdAt"`

	EnvironmentName string `json:"environmentName"`
	ManifestPath    string `json:"manifestPath"`
	ManifestHash    string `json:"manifestHash"`
	HashAlg         string `json:"hashAlg"`

	Channels          []string `json:"channels"`
	CondaDependencies []string `json:"condaDependencies"`
	PipRequirements   []string `json:"pipRequirements"`
	EditablePath      string   `json:"editablePath,omitempty"`
}

// FromSpec builds a lock snapshot from a parsed manifest and its raw bytes.
func FromSpec(spec *envspec.EnvironmentSpec, manifestPath string, raw []byte) EnvironmentLock {
	sum := sha256.Sum256(raw)

	l := EnvironmentLock{
		SchemaVersion:   SchemaVersion,
		ID:              uuid.NewString(),
		CreatedAt:       time.Now().UTC().Format(time.RFC3339),
		EnvironmentName: spec.Name,
		ManifestPath:    manifestPath,
		ManifestHash:    hex.EncodeToString(sum[:]),
		HashAlg:         "sha256",
		Channels:        spec.Channels,
	}

	for _, dep := range spec.CondaDependencies() {
		l.CondaDependencies = append(l.CondaDependencies, dep.String())
	}
	if block, ok := spec.PipBlock(); ok {
		for _, r := range block.Requirements {
			if r.Kind == envspec.PipEditable {
				l.EditablePath = r.Path
				continue
			}
			l.PipRequirements = append(l.PipRequirements, r.Spec.String())
		}
	}

	return l
}

// WriteLockToFile writes the lock document as indented JSON.
func WriteLockToFile(l EnvironmentLock, path string) error {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding lock: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing lock: %w", err)
	}
	return nil
}

// ReadLockFromFile reads a lock document back.
func ReadLockFromFile(path string) (EnvironmentLock, error) {
	var l EnvironmentLock
	data, err := os.ReadFile(path)
	if err != nil {
		return l, fmt.Errorf("reading lock: %w", err)
	}
	if err := json.Unmarshal(data, &l); err != nil {
		return l, fmt.Errorf("decoding lock: %w", err)
	}
	return l, nil
}

// VerifyManifest re-hashes the raw manifest bytes against the lock.
func (l EnvironmentLock) VerifyManifest(raw []byte) error {
	if l.HashAlg != "sha256" {
		return fmt.Errorf("unsupported hash algorithm %q", l.HashAlg)
	}
	sum := sha256.Sum256(raw)
	if hex.EncodeToString(sum[:]) != l.ManifestHash {
		return fmt.Errorf("manifest hash mismatch: manifest changed since lock %s", l.ID)
	}
	return nil
}
