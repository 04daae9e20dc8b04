// Package features adapts composed profile categories onto the host
// assistant's configuration layout. Each feature selects a source subtree
// from the composed profile and a destination subtree under the assistant
// config root, then delegates to the synchronizer.
package features

import (
	"os"
	"path/filepath"

	"github.com/nojolabs/nojo/pkg/errors"
	"github.com/nojolabs/nojo/pkg/hashing"
	"github.com/nojolabs/nojo/pkg/logging"
	"github.com/nojolabs/nojo/pkg/paths"
	"github.com/nojolabs/nojo/pkg/profiles"
	"github.com/nojolabs/nojo/pkg/sync"
	"github.com/nojolabs/nojo/pkg/types"
)

// Context carries the dependencies every feature operation needs.
type Context struct {
	FS     types.FS
	Paths  types.Pather
	Syncer *sync.Syncer
}

// Issue is one validation finding, tied to a source file.
type Issue struct {
	Feature string
	Path    string
	Message string
}

// Feature installs, uninstalls and validates one component category.
type Feature interface {
	Name() string
	Install(ctx *Context, composed *profiles.Composed) (sync.Result, error)
	Uninstall(ctx *Context, profileName string) (int, error)
	Validate(ctx *Context, composed *profiles.Composed) []Issue
}

// All returns every feature in install order.
func All() []Feature {
	return []Feature{
		&dirFeature{
			name:     "skills",
			category: paths.SkillsDirName,
			destDir:  func(p types.Pather) string { return p.SkillsDir() },
		},
		&dirFeature{
			name:     "subagents",
			category: paths.SubagentsDirName,
			destDir:  func(p types.Pather) string { return p.SubagentsDir() },
		},
		&dirFeature{
			name:     "slashcommands",
			category: paths.CommandsDirName,
			destDir:  func(p types.Pather) string { return p.CommandsDir() },
		},
		&instructionsFeature{},
	}
}

// dirFeature is the common shape of the directory-tree features.
type dirFeature struct {
	name     string
	category string
	destDir  func(types.Pather) string
}

func (f *dirFeature) Name() string { return f.name }

func (f *dirFeature) Install(ctx *Context, composed *profiles.Composed) (sync.Result, error) {
	return ctx.Syncer.SyncTree(composed.Tree(f.category), f.destDir(ctx.Paths), composed.Profile)
}

func (f *dirFeature) Uninstall(ctx *Context, profileName string) (int, error) {
	return uninstallSubtree(ctx, f.destDir(ctx.Paths), profileName)
}

func (f *dirFeature) Validate(ctx *Context, composed *profiles.Composed) []Issue {
	var issues []Issue
	for relPath, absPath := range composed.Tree(f.category) {
		if filepath.Ext(relPath) != ".md" {
			continue
		}
		issues = append(issues, checkFrontmatter(ctx.FS, f.name, absPath)...)
	}
	return issues
}

// instructionsFeature handles the single behavioral-instructions file.
type instructionsFeature struct{}

func (f *instructionsFeature) Name() string { return "instructions" }

func (f *instructionsFeature) Install(ctx *Context, composed *profiles.Composed) (sync.Result, error) {
	if composed.Instructions == "" {
		return sync.Result{}, nil
	}
	return ctx.Syncer.SyncFile(composed.Instructions, ctx.Paths.InstructionsPath(), composed.Profile)
}

func (f *instructionsFeature) Uninstall(ctx *Context, profileName string) (int, error) {
	return uninstallSubtree(ctx, ctx.Paths.InstructionsPath(), profileName)
}

func (f *instructionsFeature) Validate(_ *Context, composed *profiles.Composed) []Issue {
	if composed.Instructions == "" {
		return []Issue{{
			Feature: "instructions",
			Message: "profile composes to no behavioral-instructions file",
		}}
	}
	return nil
}

// uninstallSubtree removes every managed, unmodified manifest entry whose
// destination falls under root (a directory or a single file), belonging
// to profileName when non-empty, or any profile when empty. Modified and
// untracked files are left untouched; entries for files already gone from
// disk are dropped from the manifest.
func uninstallSubtree(ctx *Context, root, profileName string) (int, error) {
	logger := logging.GetLogger("features.uninstall")
	m := ctx.Syncer.Manifest
	installRoot := ctx.Syncer.InstallRoot

	rootRel, err := filepath.Rel(installRoot, root)
	if err != nil {
		return 0, errors.Wrapf(err, errors.ErrFileAccess, "cannot relativize %s", root)
	}
	rootRel = filepath.ToSlash(rootRel)

	removed := 0
	for relPath, entry := range m.Files {
		if relPath != rootRel && !underDir(relPath, rootRel) {
			continue
		}
		if profileName != "" && entry.Profile != profileName {
			continue
		}
		if entry.Source != types.SourceManaged {
			continue
		}

		absPath := filepath.Join(installRoot, filepath.FromSlash(relPath))
		if _, statErr := ctx.FS.Stat(absPath); statErr != nil {
			if os.IsNotExist(statErr) {
				// Already gone; just forget it.
				m.RemoveEntry(relPath)
				removed++
				continue
			}
			return removed, errors.Wrapf(statErr, errors.ErrFileAccess, "failed to stat %s", absPath)
		}
		currentHash, err := hashing.HashFile(ctx.FS, absPath)
		if err != nil {
			return removed, err
		}
		if currentHash != entry.Hash {
			// User modified the file: it stays, and it stays tracked.
			logger.Debug().Str("path", relPath).Msg("Preserving modified file on uninstall")
			continue
		}

		if err := ctx.FS.Remove(absPath); err != nil && !os.IsNotExist(err) {
			return removed, errors.Wrapf(err, errors.ErrFileAccess, "failed to remove %s", absPath)
		}
		m.RemoveEntry(relPath)
		removed++
	}
	return removed, nil
}

func underDir(relPath, dir string) bool {
	return len(relPath) > len(dir) && relPath[:len(dir)] == dir && relPath[len(dir)] == '/'
}
