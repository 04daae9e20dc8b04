// Package testutil orchestrates test environments with the dependencies
// the lifecycle stack needs: an install root, a profiles directory and a
// types.FS, either in-memory or on a real temp directory.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/nojolabs/nojo/pkg/filesystem"
	"github.com/nojolabs/nojo/pkg/paths"
	"github.com/nojolabs/nojo/pkg/types"
)

// EnvType defines the type of test environment
type EnvType int

const (
	EnvMemoryOnly EnvType = iota // Pure in-memory, no real filesystem
	EnvIsolated                  // Real filesystem in temp directory
)

// TestEnvironment provides a complete test environment with all dependencies
type TestEnvironment struct {
	InstallRoot string
	ProfilesDir string
	FS          types.FS
	Paths       types.Pather

	t *testing.T
}

// NewTestEnvironment creates a new test environment
func NewTestEnvironment(t *testing.T, envType EnvType) *TestEnvironment {
	t.Helper()

	env := &TestEnvironment{t: t}

	switch envType {
	case EnvMemoryOnly:
		env.InstallRoot = "/virtual/home"
		env.FS = filesystem.NewAferoFS(afero.NewMemMapFs())
	case EnvIsolated:
		tempDir := t.TempDir()
		env.InstallRoot = filepath.Join(tempDir, "home")
		env.FS = filesystem.NewOS()
	}

	dataDir := filepath.Join(filepath.Dir(env.InstallRoot), "data")
	t.Setenv(paths.EnvDataDir, dataDir)
	t.Setenv(paths.EnvInstallDir, env.InstallRoot)

	p, err := paths.New(env.InstallRoot)
	require.NoError(t, err)
	env.Paths = p
	env.ProfilesDir = p.ProfilesDir()

	require.NoError(t, env.FS.MkdirAll(env.InstallRoot, 0755))
	require.NoError(t, env.FS.MkdirAll(env.ProfilesDir, 0755))

	return env
}

// WriteFile writes content at path, creating parent directories.
func (env *TestEnvironment) WriteFile(path, content string) {
	env.t.Helper()
	require.NoError(env.t, env.FS.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(env.t, env.FS.WriteFile(path, []byte(content), 0644))
}

// ReadFile reads path and fails the test on error.
func (env *TestEnvironment) ReadFile(path string) string {
	env.t.Helper()
	data, err := env.FS.ReadFile(path)
	require.NoError(env.t, err)
	return string(data)
}

// WriteProfile lays down a profile source tree. files maps paths relative
// to the profile directory (e.g. "skills/s/SKILL.md") to content. The
// behavioral-instructions file is added automatically when absent so the
// profile is valid.
func (env *TestEnvironment) WriteProfile(name, meta string, files map[string]string) string {
	env.t.Helper()
	dir := filepath.Join(env.ProfilesDir, name)
	if _, ok := files[paths.InstructionsFileName]; !ok {
		env.WriteFile(filepath.Join(dir, paths.InstructionsFileName), "# "+name+"\n")
	}
	if meta != "" {
		env.WriteFile(filepath.Join(dir, paths.ProfileMetaFileName), meta)
	}
	for rel, content := range files {
		env.WriteFile(filepath.Join(dir, filepath.FromSlash(rel)), content)
	}
	return dir
}

// WriteMixin lays down a mixin source tree under profiles/mixins.
func (env *TestEnvironment) WriteMixin(name string, files map[string]string) string {
	env.t.Helper()
	dir := filepath.Join(env.ProfilesDir, paths.MixinsDirName, name)
	for rel, content := range files {
		env.WriteFile(filepath.Join(dir, filepath.FromSlash(rel)), content)
	}
	return dir
}
