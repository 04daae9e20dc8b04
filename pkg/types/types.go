// Package types holds the shared interfaces and small value types used
// across nojo's packages.
package types

import (
	"io/fs"
)

// FS is the filesystem interface required for nojo operations.
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error

	// Directory operations
	MkdirAll(path string, perm fs.FileMode) error
	ReadDir(name string) ([]fs.DirEntry, error)

	// Other operations
	Remove(name string) error
	RemoveAll(path string) error
	Rename(oldpath, newpath string) error
}

// FileSource records who owns a tracked file.
type FileSource string

const (
	// SourceManaged marks a file nojo wrote and may overwrite while unmodified.
	SourceManaged FileSource = "managed"

	// SourceUser marks a file the user created; nojo never overwrites it.
	SourceUser FileSource = "user"

	// SourcePreExisting marks a file that predates nojo's first install.
	SourcePreExisting FileSource = "pre-existing"
)

// Pather resolves the directory layout nojo reads and writes.
type Pather interface {
	// InstallRoot is the user-chosen base directory for the installation.
	InstallRoot() string

	// AssistantDir is the host assistant's configuration root
	// (<installRoot>/.claude).
	AssistantDir() string

	// StateDir is the nojo state directory (<installRoot>/.nojo).
	StateDir() string

	// ManifestPath is the manifest file location.
	ManifestPath() string

	// ConfigPath is the user config file location.
	ConfigPath() string

	// ProfilesDir is where profile source trees live.
	ProfilesDir() string

	// SkillsDir, SubagentsDir, CommandsDir are the destination subtrees
	// inside the assistant config root.
	SkillsDir() string
	SubagentsDir() string
	CommandsDir() string

	// InstructionsPath is the destination of the behavioral-instructions
	// file (<assistantDir>/CLAUDE.md).
	InstructionsPath() string
}
