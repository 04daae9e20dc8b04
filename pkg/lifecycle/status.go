package lifecycle

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/nojolabs/nojo/pkg/config"
	"github.com/nojolabs/nojo/pkg/hashing"
	"github.com/nojolabs/nojo/pkg/manifest"
	"github.com/nojolabs/nojo/pkg/types"
)

// FileStatus describes one tracked file's drift state.
type FileStatus struct {
	Path     string
	Profile  string
	Source   types.FileSource
	Modified bool
	Missing  bool
}

// Status is the read-only view of an installation.
type Status struct {
	State         State
	AgentProfiles map[string]string
	Tracked       int
	Modified      int
	Missing       int
	Files         []FileStatus
}

// Status inspects the install root and reports per-file drift: which
// managed files the user has edited or deleted since nojo last wrote them.
func (c *Controller) Status() (*Status, error) {
	state, err := c.State()
	if err != nil {
		return nil, err
	}
	st := &Status{State: state, AgentProfiles: map[string]string{}}

	cfg, err := config.Load(c.FS, c.Paths.InstallRoot())
	if err != nil {
		return nil, err
	}
	if cfg != nil {
		for _, agent := range cfg.AgentNames() {
			st.AgentProfiles[agent] = cfg.AgentProfile(agent)
		}
	}

	m, err := manifest.Load(c.FS, c.Paths.InstallRoot())
	if err != nil {
		return nil, err
	}
	if m == nil {
		return st, nil
	}

	for relPath, entry := range m.Files {
		fileStatus := FileStatus{
			Path:    relPath,
			Profile: entry.Profile,
			Source:  entry.Source,
		}
		absPath := filepath.Join(c.Paths.InstallRoot(), filepath.FromSlash(relPath))
		if _, statErr := c.FS.Stat(absPath); statErr != nil {
			if os.IsNotExist(statErr) {
				fileStatus.Missing = true
				st.Missing++
			}
		} else {
			hash, err := hashing.HashFile(c.FS, absPath)
			if err != nil {
				return nil, err
			}
			if hash != entry.Hash {
				fileStatus.Modified = true
				st.Modified++
			}
		}
		st.Tracked++
		st.Files = append(st.Files, fileStatus)
	}
	sort.Slice(st.Files, func(i, j int) bool { return st.Files[i].Path < st.Files[j].Path })
	return st, nil
}
