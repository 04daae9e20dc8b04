package profiles_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nojolabs/nojo/pkg/errors"
	"github.com/nojolabs/nojo/pkg/profiles"
	"github.com/nojolabs/nojo/pkg/testutil"
)

func TestDiscover_OnlyValidProfiles(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly)

	env.WriteProfile("alpha", "builtin = true\ndescription = \"shipped\"\n", nil)
	env.WriteProfile("beta", "", nil)

	// A directory without the instructions file is not a profile.
	env.WriteFile(filepath.Join(env.ProfilesDir, "broken", "readme.txt"), "not a profile")

	// The mixins directory is never a profile.
	env.WriteMixin("core", map[string]string{"skills/s/SKILL.md": "skill"})

	found, err := profiles.Discover(env.FS, env.ProfilesDir)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "alpha", found[0].Name)
	assert.True(t, found[0].Meta.Builtin)
	assert.Equal(t, "shipped", found[0].Meta.Description)
	assert.Equal(t, "beta", found[1].Name)
	assert.False(t, found[1].Meta.Builtin)
}

func TestDiscover_MissingProfilesDir(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly)

	found, err := profiles.Discover(env.FS, filepath.Join(env.InstallRoot, "nope"))
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestGet(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(env *testutil.TestEnvironment)
		profile  string
		wantCode errors.ErrorCode
	}{
		{
			name:    "valid_profile",
			setup:   func(env *testutil.TestEnvironment) { env.WriteProfile("alpha", "", nil) },
			profile: "alpha",
		},
		{
			name:     "unknown_profile",
			setup:    func(env *testutil.TestEnvironment) {},
			profile:  "ghost",
			wantCode: errors.ErrProfileNotFound,
		},
		{
			name: "missing_instructions_file",
			setup: func(env *testutil.TestEnvironment) {
				env.WriteFile(filepath.Join(env.ProfilesDir, "hollow", "profile.toml"), "builtin = false\n")
			},
			profile:  "hollow",
			wantCode: errors.ErrProfileInvalid,
		},
		{
			name: "malformed_metadata",
			setup: func(env *testutil.TestEnvironment) {
				env.WriteFile(filepath.Join(env.ProfilesDir, "bad", "NOJO.md"), "# bad\n")
				env.WriteFile(filepath.Join(env.ProfilesDir, "bad", "profile.toml"), "builtin = [not toml")
			},
			profile:  "bad",
			wantCode: errors.ErrProfileInvalid,
		},
		{
			name:     "invalid_name",
			setup:    func(env *testutil.TestEnvironment) {},
			profile:  "Not A Name",
			wantCode: errors.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly)
			tt.setup(env)

			p, err := profiles.Get(env.FS, env.ProfilesDir, tt.profile)
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.True(t, errors.IsErrorCode(err, tt.wantCode), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.profile, p.Name)
		})
	}
}
