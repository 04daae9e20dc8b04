package assets_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nojolabs/nojo/pkg/assets"
	"github.com/nojolabs/nojo/pkg/paths"
	"github.com/nojolabs/nojo/pkg/profiles"
	"github.com/nojolabs/nojo/pkg/testutil"
)

func TestMaterialize_ShipsBuiltinProfiles(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly)

	require.NoError(t, assets.Materialize(env.FS, env.ProfilesDir))

	found, err := profiles.Discover(env.FS, env.ProfilesDir)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "default", found[0].Name)
	assert.True(t, found[0].Meta.Builtin)
	assert.Equal(t, []string{"core"}, found[0].Meta.Mixins)
	assert.Equal(t, "minimal", found[1].Name)
	assert.True(t, found[1].Meta.Builtin)
}

func TestMaterialize_DefaultComposesWithCoreMixin(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly)
	require.NoError(t, assets.Materialize(env.FS, env.ProfilesDir))

	composed, err := profiles.Compose(env.FS, env.ProfilesDir, "default")
	require.NoError(t, err)

	skills := composed.Tree(paths.SkillsDirName)
	assert.Contains(t, skills, "commit-hygiene/SKILL.md")
	assert.Contains(t, skills, "git-workflow/SKILL.md")

	assert.Contains(t, composed.Tree(paths.SubagentsDirName), "code-reviewer.md")

	commands := composed.Tree(paths.CommandsDirName)
	assert.Contains(t, commands, "ship.md")
	assert.Contains(t, commands, "review.md")

	assert.NotEmpty(t, composed.Instructions)
}

func TestMaterialize_RefreshesBuiltinSources(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly)
	require.NoError(t, assets.Materialize(env.FS, env.ProfilesDir))

	// A tampered builtin source is restored on the next run; user profiles
	// next to it are untouched.
	tampered := env.ProfilesDir + "/default/profile.toml"
	env.WriteFile(tampered, "builtin = false\n")
	custom := env.WriteProfile("mine", "builtin = false\n", nil)

	require.NoError(t, assets.Materialize(env.FS, env.ProfilesDir))

	restored, err := profiles.Get(env.FS, env.ProfilesDir, "default")
	require.NoError(t, err)
	assert.True(t, restored.Meta.Builtin)

	_, statErr := env.FS.Stat(custom)
	assert.NoError(t, statErr)
}
