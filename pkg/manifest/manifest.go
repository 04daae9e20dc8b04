// Package manifest persists the record of every file nojo has installed.
// The manifest is what makes installs non-destructive and reversible: every
// decision about overwriting, preserving or removing a file is made against
// the hashes recorded here.
package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/nojolabs/nojo/pkg/errors"
	"github.com/nojolabs/nojo/pkg/hashing"
	"github.com/nojolabs/nojo/pkg/logging"
	"github.com/nojolabs/nojo/pkg/paths"
	"github.com/nojolabs/nojo/pkg/treewalk"
	"github.com/nojolabs/nojo/pkg/types"
)

// SchemaVersion is the manifest schema this build reads and writes. A
// manifest with any other schemaVersion is treated as absent, never
// partially upgraded.
const SchemaVersion = 1

// Entry is one tracked installed file.
type Entry struct {
	// Path is the destination path relative to the install root and is the
	// entry's key in the manifest.
	Path string `json:"path"`

	// Hash is the content fingerprint captured when nojo last wrote the
	// file. It is only ever updated when nojo rewrites the file.
	Hash string `json:"hash"`

	// Source records ownership: managed, user or pre-existing.
	Source types.FileSource `json:"source"`

	// Profile names the owning profile, empty for profile-agnostic files.
	Profile string `json:"profile,omitempty"`

	// Version is the nojo release that wrote the file. Diagnostic only.
	Version string `json:"version,omitempty"`

	// InstalledAt is when the file was written. Diagnostic only.
	InstalledAt time.Time `json:"installedAt"`
}

// SnapshotEntry is one file recorded in the pre-install snapshot.
type SnapshotEntry struct {
	Path string `json:"path"`
	Hash string `json:"hash"`
}

// Manifest is the full persisted state.
type Manifest struct {
	SchemaVersion int              `json:"schemaVersion"`
	NojoVersion   string           `json:"nojoVersion"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
	Files         map[string]Entry `json:"files"`

	// PreInstallSnapshot records what lived in the target directory before
	// nojo's very first write there. Captured exactly once, never
	// regenerated.
	PreInstallSnapshot []SnapshotEntry `json:"preInstallSnapshot,omitempty"`
}

// New creates an empty manifest at the current schema version.
func New(nojoVersion string) *Manifest {
	now := time.Now().UTC()
	return &Manifest{
		SchemaVersion: SchemaVersion,
		NojoVersion:   nojoVersion,
		CreatedAt:     now,
		UpdatedAt:     now,
		Files:         make(map[string]Entry),
	}
}

// Load reads the manifest under installRoot. It fails soft: a missing file,
// malformed JSON, a schema-version mismatch or a structurally invalid files
// map all resolve to (nil, nil). Callers must treat "no manifest" as a
// legitimate, common state.
func Load(fs types.FS, installRoot string) (*Manifest, error) {
	logger := logging.GetLogger("manifest")
	path := manifestPath(installRoot)

	data, err := fs.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Debug().Err(err).Str("path", path).Msg("Manifest unreadable, treating as absent")
		}
		return nil, nil
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("Manifest malformed, treating as absent")
		return nil, nil
	}
	if m.SchemaVersion != SchemaVersion {
		logger.Warn().
			Int("schemaVersion", m.SchemaVersion).
			Int("expected", SchemaVersion).
			Msg("Manifest schema version mismatch, treating as absent")
		return nil, nil
	}
	if m.Files == nil {
		m.Files = make(map[string]Entry)
	}
	return &m, nil
}

// Save writes the manifest under installRoot, creating the state directory
// if needed. It refreshes updatedAt and performs a complete overwrite: the
// in-memory manifest is the authoritative state for the duration of one
// command invocation.
func Save(fs types.FS, installRoot string, m *Manifest) error {
	m.UpdatedAt = time.Now().UTC()

	path := manifestPath(installRoot)
	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create state directory for %s", path)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrManifestSave, "failed to encode manifest")
	}
	if err := fs.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrManifestSave, "failed to write manifest to %s", path)
	}
	return nil
}

// Delete removes the manifest file and, when empty afterwards, the state
// directory that contained it. Used on full uninstall once no tracked
// files remain.
func Delete(fs types.FS, installRoot string) error {
	path := manifestPath(installRoot)
	if err := fs.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to remove manifest %s", path)
	}

	stateDir := filepath.Dir(path)
	entries, err := fs.ReadDir(stateDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to read state directory %s", stateDir)
	}
	if len(entries) == 0 {
		if err := fs.Remove(stateDir); err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "failed to remove state directory %s", stateDir)
		}
	}
	return nil
}

// AddEntry records or replaces the entry for e.Path. In-memory only;
// callers persist with Save.
func (m *Manifest) AddEntry(e Entry) {
	m.Files[e.Path] = e
}

// RemoveEntry drops the entry for relPath. In-memory only.
func (m *Manifest) RemoveEntry(relPath string) {
	delete(m.Files, relPath)
}

// GetEntry looks up the entry for relPath.
func (m *Manifest) GetEntry(relPath string) (Entry, bool) {
	e, ok := m.Files[relPath]
	return e, ok
}

// EntriesForProfile returns the entries owned by profileName, sorted by
// path. Used to discover exactly which files belong to a profile being
// uninstalled or inspected for drift.
func (m *Manifest) EntriesForProfile(profileName string) []Entry {
	var out []Entry
	for _, e := range m.Files {
		if e.Profile == profileName {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// SnapshotExistingTree hashes every file currently under targetDir and
// returns the inventory, with paths relative to installRoot. Run once when
// an install first touches a directory that already has unmanaged content,
// so the engine can later tell "this file predates me" from "this file is
// mine".
func SnapshotExistingTree(fs types.FS, installRoot, targetDir string) ([]SnapshotEntry, error) {
	var snapshot []SnapshotEntry
	err := treewalk.Files(fs, targetDir, func(relPath, absPath string, _ os.FileInfo) error {
		hash, err := hashing.HashFile(fs, absPath)
		if err != nil {
			return err
		}
		rootRel, err := filepath.Rel(installRoot, absPath)
		if err != nil {
			return err
		}
		snapshot = append(snapshot, SnapshotEntry{
			Path: filepath.ToSlash(rootRel),
			Hash: hash,
		})
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to snapshot %s", targetDir)
	}
	return snapshot, nil
}

func manifestPath(installRoot string) string {
	return filepath.Join(installRoot, paths.StateDirName, paths.ManifestFileName)
}
