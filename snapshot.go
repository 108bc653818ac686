package toolconf

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// MaxSnapshotSize is the maximum allowed snapshot size (100MB).
const MaxSnapshotSize = 100 * 1024 * 1024

// SnapshotVersion is the current snapshot format version.
const SnapshotVersion = "1.0"

// Snapshot errors.
var (
	// ErrSnapshotTooLarge is returned when a snapshot exceeds MaxSnapshotSize.
	ErrSnapshotTooLarge = errors.New("toolconf: snapshot exceeds 100MB size limit")

	// ErrNilConfig is returned when CreateSnapshot receives a nil config.
	ErrNilConfig = errors.New("toolconf: config is nil")

	// ErrUnsupportedVersion is returned when reading a snapshot with unknown version.
	ErrUnsupportedVersion = errors.New("toolconf: unsupported snapshot version")
)

// supportedVersions lists snapshot format versions ReadSnapshot accepts.
var supportedVersions = map[string]bool{
	"1.0": true,
}

// ConfigSnapshot represents a point-in-time capture of a merged configuration.
type ConfigSnapshot struct {
	// Version is the snapshot format version (currently "1.0")
	Version string `json:"version"`

	// Timestamp is when the snapshot was created
	Timestamp time.Time `json:"timestamp"`

	// Config maps every dump path (e.g. "toolbox[request].tool[math].class")
	// to its converted value.
	Config map[string]any `json:"config"`

	// Provenance tracks the source of each path, when known.
	Provenance []FieldProvenance `json:"provenance,omitempty"`
}

// SnapshotOption configures snapshot creation behavior.
type SnapshotOption func(*snapshotConfig)

type snapshotConfig struct {
	excludePaths []string
}

// WithExcludePaths leaves the given dump paths out of the snapshot.
// Matching is case-insensitive.
func WithExcludePaths(paths ...string) SnapshotOption {
	return func(cfg *snapshotConfig) {
		cfg.excludePaths = append(cfg.excludePaths, paths...)
	}
}

// CreateSnapshot captures cfg. Provenance is included when cfg came from a Loader.
func CreateSnapshot(cfg *FactoryConfiguration, opts ...SnapshotOption) (*ConfigSnapshot, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	snapCfg := &snapshotConfig{}
	for _, opt := range opts {
		opt(snapCfg)
	}

	timestamp := time.Now().UTC()

	flat := make(map[string]any)
	for _, e := range flatten(cfg) {
		flat[e.path] = formatFlatValue(e.value)
	}
	excluded := excludeSet(snapCfg.excludePaths)
	for path := range flat {
		if excluded[strings.ToLower(path)] {
			delete(flat, path)
		}
	}

	var provFields []FieldProvenance
	if prov, ok := GetProvenance(cfg); ok {
		for _, f := range prov.Fields {
			if !excluded[strings.ToLower(f.Path)] {
				provFields = append(provFields, f)
			}
		}
	}

	return &ConfigSnapshot{
		Version:    SnapshotVersion,
		Timestamp:  timestamp,
		Config:     flat,
		Provenance: provFields,
	}, nil
}

func excludeSet(paths []string) map[string]bool {
	set := make(map[string]bool, len(paths))
	for _, path := range paths {
		set[strings.ToLower(path)] = true
	}
	return set
}

// formatFlatValue keeps snapshot values JSON-friendly.
func formatFlatValue(v any) any {
	switch v := v.(type) {
	case time.Duration:
		return v.String()
	default:
		return v
	}
}

// ExpandPathWithTime replaces all {{timestamp}} occurrences with t formatted
// as 20060102-150405.
func ExpandPathWithTime(template string, t time.Time) string {
	timestamp := t.UTC().Format("20060102-150405")
	return strings.ReplaceAll(template, "{{timestamp}}", timestamp)
}

// WriteSnapshot persists a snapshot to disk with atomic write semantics and
// returns the path written. A {{timestamp}} in pathTemplate is expanded with
// snapshot.Timestamp so the filename matches the metadata.
func WriteSnapshot(snapshot *ConfigSnapshot, pathTemplate string) (string, error) {
	if snapshot == nil {
		return "", ErrNilConfig
	}

	targetPath := ExpandPathWithTime(pathTemplate, snapshot.Timestamp)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", err
	}
	if len(data) > MaxSnapshotSize {
		return "", ErrSnapshotTooLarge
	}

	dir := filepath.Dir(targetPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return "", err
		}
	}

	tempPath, err := generateTempFileName(targetPath)
	if err != nil {
		return "", err
	}

	var tempFileCreated bool
	defer func() {
		if tempFileCreated {
			_ = os.Remove(tempPath)
		}
	}()

	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return "", err
	}
	tempFileCreated = true

	if err := os.Chmod(tempPath, 0600); err != nil {
		return "", err
	}
	if err := os.Rename(tempPath, targetPath); err != nil {
		return "", err
	}
	tempFileCreated = false

	return targetPath, nil
}

// ReadSnapshot loads a snapshot written by WriteSnapshot.
func ReadSnapshot(path string) (*ConfigSnapshot, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > MaxSnapshotSize {
		return nil, ErrSnapshotTooLarge
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var snapshot ConfigSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", path, err)
	}
	if !supportedVersions[snapshot.Version] {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedVersion, snapshot.Version)
	}
	return &snapshot, nil
}

// generateTempFileName returns targetPath + ".tmp." + 16 random hex chars,
// in the target's directory so the final rename stays on one filesystem.
func generateTempFileName(targetPath string) (string, error) {
	randomBytes := make([]byte, 8)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", err
	}
	return targetPath + ".tmp." + hex.EncodeToString(randomBytes), nil
}
