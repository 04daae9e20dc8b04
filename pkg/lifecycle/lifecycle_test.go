package lifecycle_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nojolabs/nojo/pkg/config"
	"github.com/nojolabs/nojo/pkg/errors"
	"github.com/nojolabs/nojo/pkg/hashing"
	"github.com/nojolabs/nojo/pkg/lifecycle"
	"github.com/nojolabs/nojo/pkg/manifest"
	"github.com/nojolabs/nojo/pkg/profiles"
	"github.com/nojolabs/nojo/pkg/testutil"
)

func newController(env *testutil.TestEnvironment) *lifecycle.Controller {
	return lifecycle.New(env.FS, env.Paths, "1.0.0")
}

func TestState(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly)
	ctl := newController(env)

	state, err := ctl.State()
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StateFresh, state)

	env.WriteFile(filepath.Join(env.Paths.AssistantDir(), "CLAUDE.md"), "pre-existing")
	state, err = ctl.State()
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StateExistingUntracked, state)

	require.NoError(t, manifest.Save(env.FS, env.InstallRoot, manifest.New("1.0.0")))
	state, err = ctl.State()
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StateExistingManaged, state)
}

// Install "alpha" with one skill at v1, edit it on disk, re-install with
// the source at v2: the edit survives and the manifest hash is unchanged.
func TestInstall_UserEditWinsAcrossReinstall(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly)
	ctl := newController(env)

	skillRel := "skills/s/SKILL.md"
	env.WriteProfile("alpha", "", map[string]string{skillRel: "v1"})

	result, err := ctl.Install(lifecycle.InstallOptions{Profile: "alpha"})
	require.NoError(t, err)
	// One skill plus the profile's instructions file.
	assert.Equal(t, 2, result.Counts.Installed)
	assert.Equal(t, lifecycle.StateFresh, result.State)

	m, err := manifest.Load(env.FS, env.InstallRoot)
	require.NoError(t, err)
	entry, ok := m.GetEntry(".claude/skills/s/SKILL.md")
	require.True(t, ok)
	assert.Equal(t, hashing.Hash([]byte("v1")), entry.Hash)

	destSkill := filepath.Join(env.Paths.SkillsDir(), "s", "SKILL.md")
	env.WriteFile(destSkill, "v1-edited")
	env.WriteFile(filepath.Join(env.ProfilesDir, "alpha", skillRel), "v2")

	result, err = ctl.Install(lifecycle.InstallOptions{Profile: "alpha"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Counts.Preserved)
	assert.Equal(t, "v1-edited", env.ReadFile(destSkill))

	m, err = manifest.Load(env.FS, env.InstallRoot)
	require.NoError(t, err)
	entry, _ = m.GetEntry(".claude/skills/s/SKILL.md")
	assert.Equal(t, hashing.Hash([]byte("v1")), entry.Hash, "hash reflects what nojo wrote, not the edit")
}

func TestInstall_PreExistingFileUntouched(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly)
	ctl := newController(env)

	notes := filepath.Join(env.Paths.AssistantDir(), "notes.txt")
	env.WriteFile(notes, "my notes")
	env.WriteProfile("alpha", "", map[string]string{"skills/s/SKILL.md": "v1"})

	result, err := ctl.Install(lifecycle.InstallOptions{Profile: "alpha"})
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StateExistingUntracked, result.State)
	assert.Equal(t, "my notes", env.ReadFile(notes))

	m, err := manifest.Load(env.FS, env.InstallRoot)
	require.NoError(t, err)
	_, tracked := m.GetEntry(".claude/notes.txt")
	assert.False(t, tracked, "pre-existing files never enter the files map")

	// But the one-time snapshot remembers it.
	require.Len(t, m.PreInstallSnapshot, 1)
	assert.Equal(t, ".claude/notes.txt", m.PreInstallSnapshot[0].Path)
}

func TestInstall_SnapshotCapturedOnlyOnce(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly)
	ctl := newController(env)

	env.WriteFile(filepath.Join(env.Paths.AssistantDir(), "notes.txt"), "my notes")
	env.WriteProfile("alpha", "", nil)

	_, err := ctl.Install(lifecycle.InstallOptions{Profile: "alpha"})
	require.NoError(t, err)

	// A later install over the now-managed root must not regenerate it.
	env.WriteFile(filepath.Join(env.Paths.AssistantDir(), "more.txt"), "later")
	_, err = ctl.Install(lifecycle.InstallOptions{Profile: "alpha"})
	require.NoError(t, err)

	m, err := manifest.Load(env.FS, env.InstallRoot)
	require.NoError(t, err)
	require.Len(t, m.PreInstallSnapshot, 1)
	assert.Equal(t, ".claude/notes.txt", m.PreInstallSnapshot[0].Path)
}

func TestInstall_CreateProfileStrategy(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly)
	ctl := newController(env)

	env.WriteFile(env.Paths.InstructionsPath(), "old instructions")
	env.WriteFile(filepath.Join(env.Paths.SkillsDir(), "legacy", "SKILL.md"), "legacy skill")
	env.WriteProfile("default", "builtin = true\n", nil)

	_, err := ctl.Install(lifecycle.InstallOptions{
		Profile:         "default",
		Strategy:        lifecycle.StrategyCreateProfile,
		SnapshotProfile: "my-setup",
	})
	require.NoError(t, err)

	adopted, err := profiles.Get(env.FS, env.ProfilesDir, "my-setup")
	require.NoError(t, err)
	assert.False(t, adopted.Meta.Builtin, "adopted profiles are never builtin")
	assert.Equal(t, "old instructions",
		env.ReadFile(filepath.Join(adopted.Path, "NOJO.md")))
	assert.Equal(t, "legacy skill",
		env.ReadFile(filepath.Join(adopted.Path, "skills", "legacy", "SKILL.md")))
}

func TestInstall_ConfigurationErrorsAbortBeforeMutation(t *testing.T) {
	tests := []struct {
		name     string
		opts     lifecycle.InstallOptions
		wantCode errors.ErrorCode
	}{
		{
			name:     "no_profile_and_no_config",
			opts:     lifecycle.InstallOptions{},
			wantCode: errors.ErrConfigValid,
		},
		{
			name:     "unknown_profile",
			opts:     lifecycle.InstallOptions{Profile: "ghost"},
			wantCode: errors.ErrProfileNotFound,
		},
		{
			name: "create_profile_without_name",
			opts: lifecycle.InstallOptions{
				Profile:  "alpha",
				Strategy: lifecycle.StrategyCreateProfile,
			},
			wantCode: errors.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly)
			ctl := newController(env)
			env.WriteProfile("alpha", "", map[string]string{"skills/s/SKILL.md": "v1"})
			env.WriteFile(filepath.Join(env.Paths.AssistantDir(), "notes.txt"), "pre-existing")

			_, err := ctl.Install(tt.opts)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, tt.wantCode), "got %v", err)

			// No partial install may be left behind.
			m, loadErr := manifest.Load(env.FS, env.InstallRoot)
			require.NoError(t, loadErr)
			assert.Nil(t, m)
			_, statErr := env.FS.Stat(env.Paths.SkillsDir())
			assert.Error(t, statErr)
		})
	}
}

func TestInstall_SwitchCleansUpPreviousProfile(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly)
	ctl := newController(env)

	env.WriteProfile("alpha", "", map[string]string{"skills/only-alpha/SKILL.md": "alpha"})
	env.WriteProfile("beta", "", map[string]string{"skills/only-beta/SKILL.md": "beta"})

	_, err := ctl.Install(lifecycle.InstallOptions{Profile: "alpha"})
	require.NoError(t, err)

	result, err := ctl.Install(lifecycle.InstallOptions{Profile: "beta"})
	require.NoError(t, err)
	assert.Positive(t, result.CleanedUp)

	_, statErr := env.FS.Stat(filepath.Join(env.Paths.SkillsDir(), "only-alpha", "SKILL.md"))
	assert.Error(t, statErr, "stale managed files of the previous profile are removed")
	assert.Equal(t, "beta", env.ReadFile(filepath.Join(env.Paths.SkillsDir(), "only-beta", "SKILL.md")))

	cfg, err := config.Load(env.FS, env.InstallRoot)
	require.NoError(t, err)
	assert.Equal(t, "beta", cfg.AgentProfile(lifecycle.DefaultAgent))
}

// Re-installing the same profile after its source dropped a component
// must remove the stale managed file and its manifest entry.
func TestInstall_UpgradeRemovesDroppedComponents(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly)
	ctl := newController(env)

	env.WriteProfile("alpha", "", map[string]string{
		"skills/kept/SKILL.md":    "kept",
		"skills/dropped/SKILL.md": "old",
	})
	_, err := ctl.Install(lifecycle.InstallOptions{Profile: "alpha"})
	require.NoError(t, err)

	// The next profile version no longer ships the dropped skill.
	require.NoError(t, env.FS.RemoveAll(filepath.Join(env.ProfilesDir, "alpha", "skills", "dropped")))

	result, err := ctl.Install(lifecycle.InstallOptions{Profile: "alpha"})
	require.NoError(t, err)
	assert.Positive(t, result.CleanedUp)

	_, statErr := env.FS.Stat(filepath.Join(env.Paths.SkillsDir(), "dropped", "SKILL.md"))
	assert.Error(t, statErr, "dropped component is cleaned up on upgrade")
	assert.Equal(t, "kept", env.ReadFile(filepath.Join(env.Paths.SkillsDir(), "kept", "SKILL.md")))

	m, err := manifest.Load(env.FS, env.InstallRoot)
	require.NoError(t, err)
	_, tracked := m.GetEntry(".claude/skills/dropped/SKILL.md")
	assert.False(t, tracked)
	_, tracked = m.GetEntry(".claude/skills/kept/SKILL.md")
	assert.True(t, tracked)
}

func TestInstall_SkipCleanupKeepsPreviousFiles(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly)
	ctl := newController(env)

	env.WriteProfile("alpha", "", map[string]string{"skills/only-alpha/SKILL.md": "alpha"})
	env.WriteProfile("beta", "", nil)

	_, err := ctl.Install(lifecycle.InstallOptions{Profile: "alpha"})
	require.NoError(t, err)

	result, err := ctl.Install(lifecycle.InstallOptions{Profile: "beta", SkipCleanup: true})
	require.NoError(t, err)
	assert.Zero(t, result.CleanedUp)
	assert.Equal(t, "alpha", env.ReadFile(filepath.Join(env.Paths.SkillsDir(), "only-alpha", "SKILL.md")))

	cfg, err := config.Load(env.FS, env.InstallRoot)
	require.NoError(t, err)
	assert.Equal(t, "beta", cfg.AgentProfile(lifecycle.DefaultAgent))
}

func TestInstall_ReusesConfiguredProfile(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly)
	ctl := newController(env)

	env.WriteProfile("alpha", "", map[string]string{"skills/s/SKILL.md": "v1"})
	_, err := ctl.Install(lifecycle.InstallOptions{Profile: "alpha"})
	require.NoError(t, err)

	// An upgrade run names no profile and falls back to the config.
	result, err := ctl.Install(lifecycle.InstallOptions{})
	require.NoError(t, err)
	assert.Equal(t, "alpha", result.Profile)
}

func TestUninstall_Completeness(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly)
	ctl := newController(env)

	env.WriteProfile("alpha", "", map[string]string{
		"skills/s/SKILL.md":       "v1",
		"slashcommands/review.md": "cmd",
	})
	_, err := ctl.Install(lifecycle.InstallOptions{Profile: "alpha"})
	require.NoError(t, err)

	result, err := ctl.Uninstall()
	require.NoError(t, err)
	assert.Equal(t, 3, result.Removed)
	assert.True(t, result.ManifestDeleted)

	m, err := manifest.Load(env.FS, env.InstallRoot)
	require.NoError(t, err)
	assert.Nil(t, m, "manifest file is gone after the last tracked file is removed")

	cfg, err := config.Load(env.FS, env.InstallRoot)
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestUninstall_KeepsModifiedAndUntracked(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly)
	ctl := newController(env)

	env.WriteProfile("alpha", "", map[string]string{"skills/s/SKILL.md": "v1"})
	_, err := ctl.Install(lifecycle.InstallOptions{Profile: "alpha"})
	require.NoError(t, err)

	edited := filepath.Join(env.Paths.SkillsDir(), "s", "SKILL.md")
	env.WriteFile(edited, "edited")
	untracked := filepath.Join(env.Paths.SkillsDir(), "mine.md")
	env.WriteFile(untracked, "mine")

	result, err := ctl.Uninstall()
	require.NoError(t, err)
	assert.False(t, result.ManifestDeleted, "modified files stay tracked, so the manifest stays")
	assert.Equal(t, "edited", env.ReadFile(edited))
	assert.Equal(t, "mine", env.ReadFile(untracked))
}

func TestUninstall_RemovesBuiltinProfilesOnly(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly)
	ctl := newController(env)

	env.WriteProfile("default", "builtin = true\n", map[string]string{"skills/s/SKILL.md": "v1"})
	env.WriteProfile("mine", "builtin = false\n", nil)

	_, err := ctl.Install(lifecycle.InstallOptions{Profile: "default"})
	require.NoError(t, err)

	result, err := ctl.Uninstall()
	require.NoError(t, err)
	assert.Equal(t, []string{"default"}, result.ProfilesDeleted)

	_, err = profiles.Get(env.FS, env.ProfilesDir, "mine")
	assert.NoError(t, err, "user-created profiles are never auto-removed")
	_, err = profiles.Get(env.FS, env.ProfilesDir, "default")
	assert.Error(t, err)
}

func TestUninstall_NothingInstalled(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly)
	ctl := newController(env)

	result, err := ctl.Uninstall()
	require.NoError(t, err)
	assert.Zero(t, result.Removed)
	assert.False(t, result.ManifestDeleted)
}

func TestStatus_ReportsDrift(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly)
	ctl := newController(env)

	env.WriteProfile("alpha", "", map[string]string{
		"skills/kept/SKILL.md":    "kept",
		"skills/edited/SKILL.md":  "orig",
		"skills/deleted/SKILL.md": "gone",
	})
	_, err := ctl.Install(lifecycle.InstallOptions{Profile: "alpha"})
	require.NoError(t, err)

	env.WriteFile(filepath.Join(env.Paths.SkillsDir(), "edited", "SKILL.md"), "changed")
	require.NoError(t, env.FS.Remove(filepath.Join(env.Paths.SkillsDir(), "deleted", "SKILL.md")))

	st, err := ctl.Status()
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StateExistingManaged, st.State)
	assert.Equal(t, 4, st.Tracked)
	assert.Equal(t, 1, st.Modified)
	assert.Equal(t, 1, st.Missing)
	assert.Equal(t, "alpha", st.AgentProfiles[lifecycle.DefaultAgent])
}

func TestValidate(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly)
	ctl := newController(env)

	env.WriteProfile("ok", "", map[string]string{
		"skills/good/SKILL.md": "---\nname: good\ndescription: fine\n---\nbody\n",
	})
	issues, err := ctl.Validate("ok")
	require.NoError(t, err)
	assert.Empty(t, issues)

	env.WriteProfile("sloppy", "", map[string]string{
		"skills/bad/SKILL.md": "no frontmatter\n",
	})
	issues, err = ctl.Validate("sloppy")
	require.NoError(t, err)
	assert.NotEmpty(t, issues)
}
