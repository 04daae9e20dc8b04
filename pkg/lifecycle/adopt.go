package lifecycle

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/nojolabs/nojo/pkg/errors"
	"github.com/nojolabs/nojo/pkg/logging"
	"github.com/nojolabs/nojo/pkg/paths"
	"github.com/nojolabs/nojo/pkg/treewalk"
)

// snapshotIntoProfile copies the current assistant configuration into a
// brand-new named, non-builtin profile directory, so an adopted pre-existing
// setup stays selectable after nojo takes over the install root.
func (c *Controller) snapshotIntoProfile(name string) error {
	logger := logging.GetLogger("lifecycle.adopt")

	if err := paths.ValidateProfileName(name); err != nil {
		return err
	}
	profileDir := filepath.Join(c.Paths.ProfilesDir(), name)
	if _, err := c.FS.Stat(profileDir); err == nil {
		return errors.Newf(errors.ErrProfileExists, "profile %q already exists", name)
	} else if !os.IsNotExist(err) {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to stat %s", profileDir)
	}

	if err := c.FS.MkdirAll(profileDir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create profile directory %s", profileDir)
	}

	// Destination subtree -> profile source subtree.
	copies := []struct {
		from string
		to   string
	}{
		{c.Paths.SkillsDir(), filepath.Join(profileDir, paths.SkillsDirName)},
		{c.Paths.SubagentsDir(), filepath.Join(profileDir, paths.SubagentsDirName)},
		{c.Paths.CommandsDir(), filepath.Join(profileDir, paths.CommandsDirName)},
	}
	copied := 0
	for _, cp := range copies {
		n, err := c.copyTree(cp.from, cp.to)
		if err != nil {
			return err
		}
		copied += n
	}

	// The instructions file is what makes the directory a valid profile,
	// so one is always written, even when the old setup had none.
	instructions, err := c.FS.ReadFile(c.Paths.InstructionsPath())
	if err != nil {
		if !os.IsNotExist(err) {
			return errors.Wrapf(err, errors.ErrFileAccess,
				"failed to read %s", c.Paths.InstructionsPath())
		}
		instructions = []byte(fmt.Sprintf("# %s\n\nAdopted from a pre-existing configuration.\n", name))
	}
	if err := c.FS.WriteFile(filepath.Join(profileDir, paths.InstructionsFileName), instructions, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write profile instructions")
	}

	meta := fmt.Sprintf("builtin = false\ndescription = %q\n", "snapshot of pre-existing configuration")
	if err := c.FS.WriteFile(filepath.Join(profileDir, paths.ProfileMetaFileName), []byte(meta), 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write profile metadata")
	}

	logger.Info().
		Str("profile", name).
		Int("files", copied).
		Msg("Snapshotted existing configuration into profile")
	return nil
}

func (c *Controller) copyTree(from, to string) (int, error) {
	copied := 0
	err := treewalk.Files(c.FS, from, func(relPath, absPath string, _ os.FileInfo) error {
		data, err := c.FS.ReadFile(absPath)
		if err != nil {
			return err
		}
		dest := filepath.Join(to, filepath.FromSlash(relPath))
		if err := c.FS.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return err
		}
		if err := c.FS.WriteFile(dest, data, 0644); err != nil {
			return err
		}
		copied++
		return nil
	})
	if err != nil {
		return copied, errors.Wrapf(err, errors.ErrFileAccess, "failed to copy %s", from)
	}
	return copied, nil
}
