package profiles

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nojolabs/nojo/pkg/logging"
	"github.com/nojolabs/nojo/pkg/paths"
	"github.com/nojolabs/nojo/pkg/treewalk"
	"github.com/nojolabs/nojo/pkg/types"
)

// PremiumPrefix marks gated components. They are unconditionally excluded
// from composition in this build: a static filter, not a runtime
// entitlement check.
const PremiumPrefix = "premium-"

// Categories are the component subtrees a profile or mixin may carry.
var Categories = []string{
	paths.SkillsDirName,
	paths.SubagentsDirName,
	paths.CommandsDirName,
}

// Composed is the virtual merged tree of one profile: per category, a map
// from relative path (within the category) to the absolute source path of
// the winning layer. Instructions is the absolute path of the layered
// behavioral-instructions file.
type Composed struct {
	Profile      string
	Instructions string
	Trees        map[string]map[string]string
}

// Tree returns the composed file map for one category. A category absent
// from every layer composes to an empty tree, which is valid.
func (c *Composed) Tree(category string) map[string]string {
	if t, ok := c.Trees[category]; ok {
		return t
	}
	return map[string]string{}
}

// Compose builds the effective content of the named profile by layering
// each of its mixins in ascending alphabetical order, then overlaying the
// profile's own files last. Directories union across layers; when two
// layers produce the same relative path the later layer replaces the
// earlier one entirely.
func Compose(fs types.FS, profilesDir, name string) (*Composed, error) {
	logger := logging.GetLogger("profiles.compose")

	p, err := Get(fs, profilesDir, name)
	if err != nil {
		return nil, err
	}

	mixins := append([]string(nil), p.Meta.Mixins...)
	sort.Strings(mixins)

	layers := make([]string, 0, len(mixins)+1)
	for _, mixin := range mixins {
		if strings.HasPrefix(mixin, PremiumPrefix) {
			continue
		}
		layers = append(layers, filepath.Join(profilesDir, paths.MixinsDirName, mixin))
	}
	layers = append(layers, p.Path)

	c := &Composed{
		Profile: name,
		Trees:   make(map[string]map[string]string),
	}
	for _, layer := range layers {
		for _, category := range Categories {
			if err := overlay(fs, c, layer, category); err != nil {
				return nil, err
			}
		}
		instructions := filepath.Join(layer, paths.InstructionsFileName)
		if _, err := fs.Stat(instructions); err == nil {
			c.Instructions = instructions
		}
	}

	logger.Debug().
		Str("profile", name).
		Strs("mixins", mixins).
		Msg("Profile composed")
	return c, nil
}

func overlay(fs types.FS, c *Composed, layer, category string) error {
	root := filepath.Join(layer, category)
	return treewalk.Files(fs, root, func(relPath, absPath string, _ os.FileInfo) error {
		if isPremium(relPath) {
			return nil
		}
		tree, ok := c.Trees[category]
		if !ok {
			tree = make(map[string]string)
			c.Trees[category] = tree
		}
		tree[relPath] = absPath
		return nil
	})
}

// isPremium reports whether the component owning relPath is gated. The
// component name is the first path segment, or the file itself for
// top-level files.
func isPremium(relPath string) bool {
	first := relPath
	if i := strings.IndexByte(relPath, '/'); i >= 0 {
		first = relPath[:i]
	}
	return strings.HasPrefix(first, PremiumPrefix)
}
