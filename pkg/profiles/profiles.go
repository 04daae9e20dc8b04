// Package profiles discovers profile source trees and composes their
// effective content by layering shared mixins under profile-specific files.
package profiles

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/pelletier/go-toml/v2"

	"github.com/nojolabs/nojo/pkg/errors"
	"github.com/nojolabs/nojo/pkg/logging"
	"github.com/nojolabs/nojo/pkg/paths"
	"github.com/nojolabs/nojo/pkg/types"
)

// Metadata is the per-profile profile.toml content.
type Metadata struct {
	// Builtin profiles ship with nojo and may be removed or replaced on
	// uninstall and upgrade. User-created profiles are never auto-removed.
	Builtin bool `toml:"builtin"`

	// Description is shown in profile listings.
	Description string `toml:"description,omitempty"`

	// Mixins names the shared bundles layered into this profile,
	// applied in ascending alphabetical order.
	Mixins []string `toml:"mixins,omitempty"`
}

// Profile is a discovered, valid profile source tree.
type Profile struct {
	Name string
	Path string
	Meta Metadata
}

// Discover lists every valid profile under profilesDir. A directory is a
// valid profile only if it contains the behavioral-instructions file;
// anything else is invisible to selection logic. The mixins directory is
// never a profile.
func Discover(fs types.FS, profilesDir string) ([]Profile, error) {
	entries, err := fs.ReadDir(profilesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to read profiles directory %s", profilesDir)
	}

	var out []Profile
	for _, entry := range entries {
		if !entry.IsDir() || entry.Name() == paths.MixinsDirName {
			continue
		}
		p, err := load(fs, profilesDir, entry.Name())
		if err != nil {
			// Invalid profiles are skipped, not fatal: selection logic
			// only sees complete profiles.
			logger := logging.GetLogger("profiles")
			logger.Debug().
				Err(err).
				Str("profile", entry.Name()).
				Msg("Skipping invalid profile directory")
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Get loads a single named profile, erroring when it does not exist or is
// not a valid profile.
func Get(fs types.FS, profilesDir, name string) (*Profile, error) {
	if err := paths.ValidateProfileName(name); err != nil {
		return nil, err
	}
	p, err := load(fs, profilesDir, name)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func load(fs types.FS, profilesDir, name string) (*Profile, error) {
	dir := filepath.Join(profilesDir, name)
	if _, err := fs.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf(errors.ErrProfileNotFound, "profile %q not found in %s", name, profilesDir)
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to stat profile %q", name)
	}

	// The instructions file is what makes a directory a profile.
	if _, err := fs.Stat(filepath.Join(dir, paths.InstructionsFileName)); err != nil {
		return nil, errors.Newf(errors.ErrProfileInvalid,
			"profile %q is missing %s", name, paths.InstructionsFileName)
	}

	p := &Profile{Name: name, Path: dir}
	metaPath := filepath.Join(dir, paths.ProfileMetaFileName)
	data, err := fs.ReadFile(metaPath)
	if err != nil {
		if os.IsNotExist(err) {
			// No metadata means a plain custom profile with no mixins.
			return p, nil
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", metaPath)
	}
	if err := toml.Unmarshal(data, &p.Meta); err != nil {
		return nil, errors.Wrapf(err, errors.ErrProfileInvalid,
			"profile %q has malformed %s", name, paths.ProfileMetaFileName)
	}
	return p, nil
}
