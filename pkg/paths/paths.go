// Package paths provides centralized path handling for nojo.
// It resolves the install root, the host assistant's configuration layout,
// and nojo's own state locations with XDG Base Directory compliance.
package paths

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/adrg/xdg"

	"github.com/nojolabs/nojo/pkg/errors"
	"github.com/nojolabs/nojo/pkg/types"
)

// Environment variable names
const (
	// EnvInstallDir overrides the install root (defaults to $HOME)
	EnvInstallDir = "NOJO_INSTALL_DIR"

	// EnvDataDir overrides the XDG data directory for nojo
	EnvDataDir = "NOJO_DATA_DIR"
)

// Default directories and files.
// IMPORTANT: These constants define the on-disk contract between nojo and
// the host assistant. They are NOT user-configurable and must remain
// consistent across installations.
const (
	// AssistantDirName is the host assistant's configuration directory
	AssistantDirName = ".claude"

	// StateDirName is nojo's state directory under the install root
	StateDirName = ".nojo"

	// ManifestFileName is the manifest file name inside the state dir
	ManifestFileName = "manifest.json"

	// ConfigFileName is the user config file name inside the state dir
	ConfigFileName = "config.json"

	// ProfilesDirName is the profile source directory under the data dir
	ProfilesDirName = "profiles"

	// MixinsDirName is the shared-mixin directory under the profiles dir
	MixinsDirName = "mixins"

	// SkillsDirName is the skills subtree name on both source and dest sides
	SkillsDirName = "skills"

	// SubagentsDirName is the subagents source subtree name
	SubagentsDirName = "subagents"

	// CommandsDirName is the slash-command source subtree name
	CommandsDirName = "slashcommands"

	// DestSubagentsDirName is where the assistant reads subagents
	DestSubagentsDirName = "agents"

	// DestCommandsDirName is where the assistant reads slash commands
	DestCommandsDirName = "commands"

	// InstructionsFileName is the behavioral-instructions file name in a
	// profile source tree
	InstructionsFileName = "NOJO.md"

	// DestInstructionsFileName is the behavioral-instructions file the
	// assistant reads
	DestInstructionsFileName = "CLAUDE.md"

	// ProfileMetaFileName is the per-profile metadata file
	ProfileMetaFileName = "profile.toml"
)

var profileNameRe = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// ValidateProfileName checks that a profile name is directory-name-safe:
// lowercase letters, digits, hyphens, not starting with a hyphen.
func ValidateProfileName(name string) error {
	if name == "" {
		return errors.New(errors.ErrInvalidInput, "profile name cannot be empty")
	}
	if !profileNameRe.MatchString(name) {
		return errors.Newf(errors.ErrInvalidInput,
			"invalid profile name %q: use lowercase letters, digits and hyphens", name)
	}
	return nil
}

// paths provides centralized path management for nojo
type paths struct {
	installRoot string
	dataDir     string
}

// New creates a new Paths instance rooted at installRoot. If installRoot is
// empty it is resolved from NOJO_INSTALL_DIR, falling back to the user's
// home directory.
func New(installRoot string) (types.Pather, error) {
	p := &paths{}

	if installRoot == "" {
		installRoot = os.Getenv(EnvInstallDir)
	}
	if installRoot == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrFileAccess, "cannot determine home directory")
		}
		installRoot = home
	}
	installRoot = ExpandHome(installRoot)

	absRoot, err := filepath.Abs(installRoot)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess,
			"failed to get absolute path for install root %q", installRoot)
	}
	p.installRoot = absRoot

	if dataDir := os.Getenv(EnvDataDir); dataDir != "" {
		p.dataDir = ExpandHome(dataDir)
	} else {
		p.dataDir = filepath.Join(xdg.DataHome, "nojo")
	}

	return p, nil
}

// ExpandHome expands a leading ~ to the user's home directory.
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}

func (p *paths) InstallRoot() string {
	return p.installRoot
}

func (p *paths) AssistantDir() string {
	return filepath.Join(p.installRoot, AssistantDirName)
}

func (p *paths) StateDir() string {
	return filepath.Join(p.installRoot, StateDirName)
}

func (p *paths) ManifestPath() string {
	return filepath.Join(p.StateDir(), ManifestFileName)
}

func (p *paths) ConfigPath() string {
	return filepath.Join(p.StateDir(), ConfigFileName)
}

func (p *paths) ProfilesDir() string {
	return filepath.Join(p.dataDir, ProfilesDirName)
}

func (p *paths) SkillsDir() string {
	return filepath.Join(p.AssistantDir(), SkillsDirName)
}

func (p *paths) SubagentsDir() string {
	return filepath.Join(p.AssistantDir(), DestSubagentsDirName)
}

func (p *paths) CommandsDir() string {
	return filepath.Join(p.AssistantDir(), DestCommandsDirName)
}

func (p *paths) InstructionsPath() string {
	return filepath.Join(p.AssistantDir(), DestInstructionsFileName)
}
