// Package lifecycle orchestrates installs, switches and uninstalls across
// every feature installer for a chosen profile. The controller is built
// from explicit dependencies; constructing a fresh instance per test
// replaces any reset-for-testing machinery.
package lifecycle

import (
	"os"

	"github.com/nojolabs/nojo/pkg/config"
	"github.com/nojolabs/nojo/pkg/errors"
	"github.com/nojolabs/nojo/pkg/features"
	"github.com/nojolabs/nojo/pkg/logging"
	"github.com/nojolabs/nojo/pkg/manifest"
	"github.com/nojolabs/nojo/pkg/profiles"
	"github.com/nojolabs/nojo/pkg/sync"
	"github.com/nojolabs/nojo/pkg/types"
)

// State describes what the controller finds at the install root.
type State int

const (
	// StateFresh means no prior installation marker and no existing
	// assistant configuration.
	StateFresh State = iota

	// StateExistingUntracked means the assistant config directory has
	// content but no manifest: a pre-existing unmanaged setup.
	StateExistingUntracked

	// StateExistingManaged means a manifest is present.
	StateExistingManaged
)

func (s State) String() string {
	switch s {
	case StateFresh:
		return "fresh"
	case StateExistingUntracked:
		return "existing-untracked"
	case StateExistingManaged:
		return "existing-managed"
	}
	return "unknown"
}

// Strategy is the caller's decision for a first install over a
// pre-existing setup.
type Strategy string

const (
	// StrategyPreserve proceeds with the normal non-destructive sync.
	StrategyPreserve Strategy = "preserve"

	// StrategyCreateProfile snapshots the existing configuration into a
	// new named, non-builtin profile before a default install.
	StrategyCreateProfile Strategy = "create-profile"

	// StrategyOverwrite installs defaults. The sync underneath is still
	// non-destructive; see the open question recorded in DESIGN.md.
	StrategyOverwrite Strategy = "overwrite"
)

// DefaultAgent is the agent integration configured when the caller names
// none.
const DefaultAgent = "claude"

// Controller drives the lifecycle for one install root.
type Controller struct {
	FS       types.FS
	Paths    types.Pather
	Version  string
	Features []features.Feature
}

// New builds a controller with the full feature set.
func New(fs types.FS, pather types.Pather, version string) *Controller {
	return &Controller{
		FS:       fs,
		Paths:    pather,
		Version:  version,
		Features: features.All(),
	}
}

// State inspects the install root without mutating anything.
func (c *Controller) State() (State, error) {
	m, err := manifest.Load(c.FS, c.Paths.InstallRoot())
	if err != nil {
		return StateFresh, err
	}
	if m != nil {
		return StateExistingManaged, nil
	}

	entries, err := c.FS.ReadDir(c.Paths.AssistantDir())
	if err != nil {
		if os.IsNotExist(err) {
			return StateFresh, nil
		}
		return StateFresh, errors.Wrapf(err, errors.ErrFileAccess,
			"failed to read %s", c.Paths.AssistantDir())
	}
	if len(entries) > 0 {
		return StateExistingUntracked, nil
	}
	return StateFresh, nil
}

// InstallOptions select what to install and how.
type InstallOptions struct {
	// Profile is the profile to install. When empty, the profile already
	// configured for Agent is reused; having neither is a configuration
	// error.
	Profile string

	// Agent is the agent integration being configured.
	Agent string

	// Strategy applies only when the install root is existing-untracked.
	Strategy Strategy

	// SnapshotProfile names the profile created by
	// StrategyCreateProfile.
	SnapshotProfile string

	// SkipCleanup skips uninstalling the previously selected profile's
	// managed files on a switch, so only the active-profile pointer
	// changes and all customizations stay in place.
	SkipCleanup bool
}

// InstallResult reports what one install run did.
type InstallResult struct {
	Profile   string
	Agent     string
	State     State
	Counts    sync.Result
	CleanedUp int
}

// Install runs the full install/switch pipeline: resolve the profile,
// settle the manifest, compose the profile, sync every feature, then
// persist manifest and config. Configuration errors abort before any
// filesystem mutation.
func (c *Controller) Install(opts InstallOptions) (*InstallResult, error) {
	logger := logging.GetLogger("lifecycle")
	installRoot := c.Paths.InstallRoot()

	if opts.Agent == "" {
		opts.Agent = DefaultAgent
	}

	cfg, err := config.Load(c.FS, installRoot)
	if err != nil {
		return nil, err
	}

	profileName := opts.Profile
	if profileName == "" && cfg != nil {
		profileName = cfg.AgentProfile(opts.Agent)
	}
	if profileName == "" {
		return nil, errors.New(errors.ErrConfigValid,
			"no profile selected and no existing configuration; run install with an explicit profile")
	}

	// Resolving the profile up front keeps configuration errors ahead of
	// any filesystem mutation.
	if _, err := profiles.Get(c.FS, c.Paths.ProfilesDir(), profileName); err != nil {
		return nil, err
	}

	state, err := c.State()
	if err != nil {
		return nil, err
	}
	logger.Info().
		Str("profile", profileName).
		Str("agent", opts.Agent).
		Str("state", state.String()).
		Msg("Installing profile")

	m, err := manifest.Load(c.FS, installRoot)
	if err != nil {
		return nil, err
	}

	result := &InstallResult{Profile: profileName, Agent: opts.Agent, State: state}

	if m == nil {
		m = manifest.New(c.Version)
		if state == StateExistingUntracked {
			if err := c.prepareUntracked(m, opts); err != nil {
				return nil, err
			}
		}
	} else if !opts.SkipCleanup {
		// Switch or upgrade: clear the previous selection's managed,
		// unmodified files first so components dropped from the new
		// profile version do not linger. Runs for same-profile upgrades
		// too; user-edited files survive the hash check and the sync
		// reinstates everything the profile still ships. Direct
		// in-process call, no subprocess.
		prev := ""
		if cfg != nil {
			prev = cfg.AgentProfile(opts.Agent)
		}
		if prev != "" {
			cleaned, err := c.uninstallProfile(m, prev)
			if err != nil {
				return nil, err
			}
			result.CleanedUp = cleaned
		}
	}

	composed, err := profiles.Compose(c.FS, c.Paths.ProfilesDir(), profileName)
	if err != nil {
		return nil, err
	}

	ctx := c.featureContext(m)
	for _, feature := range c.Features {
		res, err := feature.Install(ctx, composed)
		if err != nil {
			// The manifest is not saved after a partial failure: counts
			// are a success signal and must not claim files that were
			// never written.
			return nil, err
		}
		result.Counts.Add(res)
	}

	if err := manifest.Save(c.FS, installRoot, m); err != nil {
		return nil, err
	}

	if cfg == nil {
		cfg = config.New(installRoot, c.Version)
	}
	cfg.InstallDir = installRoot
	cfg.Version = c.Version
	cfg.SetAgentProfile(opts.Agent, profileName)
	if err := config.Save(c.FS, installRoot, cfg); err != nil {
		return nil, err
	}

	logger.Info().
		Int("installed", result.Counts.Installed).
		Int("preserved", result.Counts.Preserved).
		Msg("Install completed")
	return result, nil
}

// prepareUntracked handles the one-time transition from an unmanaged
// setup: capture the pre-install snapshot, and apply the caller's chosen
// strategy. All strategies end in a non-destructive sync.
func (c *Controller) prepareUntracked(m *manifest.Manifest, opts InstallOptions) error {
	snapshot, err := manifest.SnapshotExistingTree(c.FS, c.Paths.InstallRoot(), c.Paths.AssistantDir())
	if err != nil {
		return err
	}
	m.PreInstallSnapshot = snapshot

	switch opts.Strategy {
	case StrategyCreateProfile:
		name := opts.SnapshotProfile
		if name == "" {
			return errors.New(errors.ErrInvalidInput,
				"create-profile strategy requires a profile name for the snapshot")
		}
		return c.snapshotIntoProfile(name)
	case StrategyPreserve, StrategyOverwrite, "":
		// Preserve is the default. Overwrite currently behaves the same:
		// the sync primitive never force-overwrites untracked or
		// modified files.
		return nil
	default:
		return errors.Newf(errors.ErrInvalidInput, "unknown install strategy %q", opts.Strategy)
	}
}

// UninstallResult reports what a full uninstall did.
type UninstallResult struct {
	Removed         int
	ManifestDeleted bool
	ProfilesDeleted []string
}

// Uninstall removes every managed, unmodified file across all features.
// Modified and untracked files stay. When no tracked files remain the
// manifest and config are deleted along with their directory. Builtin
// profile directories are removed; user-created profiles never are.
func (c *Controller) Uninstall() (*UninstallResult, error) {
	logger := logging.GetLogger("lifecycle")
	installRoot := c.Paths.InstallRoot()

	m, err := manifest.Load(c.FS, installRoot)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return &UninstallResult{}, nil
	}

	result := &UninstallResult{}
	ctx := c.featureContext(m)
	for _, feature := range c.Features {
		removed, err := feature.Uninstall(ctx, "")
		if err != nil {
			return nil, err
		}
		result.Removed += removed
	}

	deleted, err := c.removeBuiltinProfiles()
	if err != nil {
		return nil, err
	}
	result.ProfilesDeleted = deleted

	if len(m.Files) == 0 {
		if err := c.FS.Remove(c.Paths.ConfigPath()); err != nil && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, errors.ErrFileAccess,
				"failed to remove config %s", c.Paths.ConfigPath())
		}
		if err := manifest.Delete(c.FS, installRoot); err != nil {
			return nil, err
		}
		result.ManifestDeleted = true
	} else {
		if err := manifest.Save(c.FS, installRoot, m); err != nil {
			return nil, err
		}
	}

	logger.Info().
		Int("removed", result.Removed).
		Bool("manifestDeleted", result.ManifestDeleted).
		Msg("Uninstall completed")
	return result, nil
}

// Validate composes the named profile and runs every feature's checks.
func (c *Controller) Validate(profileName string) ([]features.Issue, error) {
	composed, err := profiles.Compose(c.FS, c.Paths.ProfilesDir(), profileName)
	if err != nil {
		return nil, err
	}
	m, err := manifest.Load(c.FS, c.Paths.InstallRoot())
	if err != nil {
		return nil, err
	}
	if m == nil {
		m = manifest.New(c.Version)
	}
	ctx := c.featureContext(m)

	var issues []features.Issue
	for _, feature := range c.Features {
		issues = append(issues, feature.Validate(ctx, composed)...)
	}
	return issues, nil
}

func (c *Controller) featureContext(m *manifest.Manifest) *features.Context {
	return &features.Context{
		FS:    c.FS,
		Paths: c.Paths,
		Syncer: &sync.Syncer{
			FS:          c.FS,
			Manifest:    m,
			InstallRoot: c.Paths.InstallRoot(),
			Version:     c.Version,
		},
	}
}

func (c *Controller) uninstallProfile(m *manifest.Manifest, profileName string) (int, error) {
	ctx := c.featureContext(m)
	removed := 0
	for _, feature := range c.Features {
		n, err := feature.Uninstall(ctx, profileName)
		if err != nil {
			return removed, err
		}
		removed += n
	}
	return removed, nil
}

func (c *Controller) removeBuiltinProfiles() ([]string, error) {
	found, err := profiles.Discover(c.FS, c.Paths.ProfilesDir())
	if err != nil {
		return nil, err
	}
	var deleted []string
	for _, p := range found {
		if !p.Meta.Builtin {
			continue
		}
		if err := c.FS.RemoveAll(p.Path); err != nil {
			return deleted, errors.Wrapf(err, errors.ErrFileAccess,
				"failed to remove builtin profile %s", p.Path)
		}
		deleted = append(deleted, p.Name)
	}
	return deleted, nil
}
