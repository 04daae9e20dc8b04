// Package sync implements the manifest-driven non-destructive file
// synchronization engine. For every file in a source tree it decides
// whether to install, update or preserve the destination copy, using
// recorded content hashes to tell nojo's own writes apart from user edits.
package sync

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/nojolabs/nojo/pkg/errors"
	"github.com/nojolabs/nojo/pkg/hashing"
	"github.com/nojolabs/nojo/pkg/logging"
	"github.com/nojolabs/nojo/pkg/manifest"
	"github.com/nojolabs/nojo/pkg/paths"
	"github.com/nojolabs/nojo/pkg/treewalk"
	"github.com/nojolabs/nojo/pkg/types"
)

// Template placeholder tokens substituted into textual files before they
// are written or hashed. Hashes always cover final substituted content so
// the modification check compares like with like.
const (
	TokenInstallDir   = "{{INSTALL_DIR}}"
	TokenAssistantDir = "{{CLAUDE_DIR}}"
)

// textExtensions marks content that goes through the template pass.
var textExtensions = map[string]bool{
	".md":   true,
	".txt":  true,
	".json": true,
}

// Result reports the aggregate outcome of one sync run.
type Result struct {
	Installed int
	Preserved int
}

// Add merges another result into r.
func (r *Result) Add(other Result) {
	r.Installed += other.Installed
	r.Preserved += other.Preserved
}

// Syncer mirrors source trees into destination trees under one install
// root, recording every write in the manifest.
type Syncer struct {
	FS          types.FS
	Manifest    *manifest.Manifest
	InstallRoot string
	Version     string
}

// Sync recursively mirrors sourceDir into destDir, applying the
// three-way decision policy per file:
//
//  1. destination missing: write it and track it as managed
//  2. destination tracked: overwrite only if the on-disk hash still
//     matches the recorded one, i.e. the user has not edited it
//  3. destination present but untracked: never touched, never tracked
//
// A missing sourceDir is zero items, not an error: minimal profiles may
// legitimately omit any component category. Any per-file I/O error aborts
// the whole sync so the aggregate counts are never reported after a
// partial, unreported failure.
func (s *Syncer) Sync(sourceDir, destDir, profileName string) (Result, error) {
	logger := logging.GetLogger("sync")
	var res Result

	err := treewalk.Files(s.FS, sourceDir, func(relPath, absPath string, _ os.FileInfo) error {
		destPath := filepath.Join(destDir, filepath.FromSlash(relPath))
		installed, err := s.syncFile(absPath, destPath, profileName)
		if err != nil {
			return err
		}
		if installed {
			res.Installed++
		} else {
			res.Preserved++
		}
		return nil
	})
	if err != nil {
		return Result{}, errors.Wrapf(err, errors.ErrSyncAborted,
			"sync of %s aborted", sourceDir)
	}

	logger.Debug().
		Str("source", sourceDir).
		Str("dest", destDir).
		Int("installed", res.Installed).
		Int("preserved", res.Preserved).
		Msg("Sync completed")
	return res, nil
}

// SyncTree applies the same policy to a composed virtual tree: a map from
// destination-relative path to absolute source path, as produced by the
// profile composer. Files are processed in sorted path order.
func (s *Syncer) SyncTree(tree map[string]string, destDir, profileName string) (Result, error) {
	relPaths := make([]string, 0, len(tree))
	for relPath := range tree {
		relPaths = append(relPaths, relPath)
	}
	sort.Strings(relPaths)

	var res Result
	for _, relPath := range relPaths {
		destPath := filepath.Join(destDir, filepath.FromSlash(relPath))
		installed, err := s.syncFile(tree[relPath], destPath, profileName)
		if err != nil {
			return Result{}, errors.Wrapf(err, errors.ErrSyncAborted,
				"sync of %s aborted", relPath)
		}
		if installed {
			res.Installed++
		} else {
			res.Preserved++
		}
	}
	return res, nil
}

// SyncFile mirrors a single source file to a single destination path under
// the same policy. Used for the behavioral-instructions file.
func (s *Syncer) SyncFile(sourcePath, destPath, profileName string) (Result, error) {
	if _, err := s.FS.Stat(sourcePath); err != nil {
		if os.IsNotExist(err) {
			return Result{}, nil
		}
		return Result{}, errors.Wrapf(err, errors.ErrFileAccess, "failed to stat %s", sourcePath)
	}
	installed, err := s.syncFile(sourcePath, destPath, profileName)
	if err != nil {
		return Result{}, errors.Wrapf(err, errors.ErrSyncAborted, "sync of %s aborted", sourcePath)
	}
	if installed {
		return Result{Installed: 1}, nil
	}
	return Result{Preserved: 1}, nil
}

func (s *Syncer) syncFile(sourcePath, destPath, profileName string) (installed bool, err error) {
	relDest, err := filepath.Rel(s.InstallRoot, destPath)
	if err != nil {
		return false, err
	}
	relDest = filepath.ToSlash(relDest)

	content, err := s.FS.ReadFile(sourcePath)
	if err != nil {
		return false, err
	}
	content = s.renderTemplate(sourcePath, content)

	_, statErr := s.FS.Stat(destPath)
	destExists := statErr == nil
	if statErr != nil && !os.IsNotExist(statErr) {
		return false, statErr
	}

	if !destExists {
		return true, s.writeTracked(destPath, relDest, profileName, content)
	}

	entry, tracked := s.Manifest.GetEntry(relDest)
	if !tracked {
		// Untracked file in a managed directory: the user or another tool
		// put it there. Hands off, and it stays out of the manifest.
		return false, nil
	}

	currentHash, err := hashing.HashFile(s.FS, destPath)
	if err != nil {
		return false, err
	}
	if currentHash != entry.Hash {
		// The user edited the file since nojo last wrote it. User edits
		// always win over re-installation.
		return false, nil
	}

	return true, s.writeTracked(destPath, relDest, profileName, content)
}

func (s *Syncer) writeTracked(destPath, relDest, profileName string, content []byte) error {
	if err := s.FS.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return err
	}
	if err := s.FS.WriteFile(destPath, content, 0644); err != nil {
		return err
	}
	s.Manifest.AddEntry(manifest.Entry{
		Path:        relDest,
		Hash:        hashing.Hash(content),
		Source:      types.SourceManaged,
		Profile:     profileName,
		Version:     s.Version,
		InstalledAt: time.Now().UTC(),
	})
	return nil
}

// renderTemplate substitutes placeholder tokens in textual content. The
// pass runs identically for every write so recorded hashes always match
// what landed on disk.
func (s *Syncer) renderTemplate(sourcePath string, content []byte) []byte {
	if !textExtensions[strings.ToLower(filepath.Ext(sourcePath))] {
		return content
	}
	text := string(content)
	if !strings.Contains(text, "{{") {
		return content
	}
	text = strings.ReplaceAll(text, TokenInstallDir, s.InstallRoot)
	text = strings.ReplaceAll(text, TokenAssistantDir,
		filepath.Join(s.InstallRoot, paths.AssistantDirName))
	return []byte(text)
}
