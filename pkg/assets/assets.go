// Package assets ships the builtin profiles and mixins embedded in the
// binary and materializes them into the profiles directory, where the
// composer reads them alongside user-created profiles.
package assets

import (
	"embed"
	"io/fs"
	"path/filepath"

	"github.com/nojolabs/nojo/pkg/errors"
	"github.com/nojolabs/nojo/pkg/logging"
	"github.com/nojolabs/nojo/pkg/types"
)

//go:embed profiles
var builtin embed.FS

// Materialize writes the embedded builtin profiles and mixins under
// profilesDir, refreshing their content on every run. Builtin profile
// sources are replaceable on upgrade; user-created profiles live next to
// them and are never touched here.
func Materialize(fsys types.FS, profilesDir string) error {
	logger := logging.GetLogger("assets")
	written := 0

	err := fs.WalkDir(builtin, "profiles", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel("profiles", path)
		if err != nil {
			return err
		}
		data, err := builtin.ReadFile(path)
		if err != nil {
			return err
		}
		dest := filepath.Join(profilesDir, rel)
		if err := fsys.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return err
		}
		if err := fsys.WriteFile(dest, data, 0644); err != nil {
			return err
		}
		written++
		return nil
	})
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite,
			"failed to materialize builtin profiles into %s", profilesDir)
	}

	logger.Debug().Int("files", written).Str("dir", profilesDir).Msg("Builtin profiles materialized")
	return nil
}
