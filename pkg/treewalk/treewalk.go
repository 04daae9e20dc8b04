// Package treewalk provides the recursive directory visitor shared by the
// synchronizer, the profile composer and the pre-install snapshotter. One
// walker instead of three keeps path bookkeeping in a single place.
package treewalk

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/nojolabs/nojo/pkg/types"
)

// VisitFunc is called once per regular file found under the walk root.
// relPath uses forward slashes and is relative to the root; absPath is the
// full filesystem path. Returning an error aborts the walk.
type VisitFunc func(relPath, absPath string, info fs.FileInfo) error

// Files walks every regular file under root in sorted directory order and
// calls visit for each. A missing root is not an error: the walk simply
// visits nothing, since absent trees are legitimate minimal configurations.
func Files(fsys types.FS, root string, visit VisitFunc) error {
	if _, err := fsys.Stat(root); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return walkDir(fsys, root, "", visit)
}

func walkDir(fsys types.FS, root, rel string, visit VisitFunc) error {
	dir := filepath.Join(root, filepath.FromSlash(rel))
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		childRel := path.Join(rel, entry.Name())
		if entry.IsDir() {
			if err := walkDir(fsys, root, childRel, visit); err != nil {
				return err
			}
			continue
		}
		absPath := filepath.Join(root, filepath.FromSlash(childRel))
		info, err := entry.Info()
		if err != nil {
			return err
		}
		if err := visit(childRel, absPath, info); err != nil {
			return err
		}
	}
	return nil
}
