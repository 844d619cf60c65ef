package zarr

import (
	"fmt"
	"os"
	gopath "path"
	"path/filepath"
	"sort"
)

// Group represents a Zarr group.
type Group struct {
	store *Store
	path  string // store path, "/" for root
	dir   string // filesystem directory
}

// Name returns the group name (last component of its store path).
func (g *Group) Name() string {
	if g.path == "/" {
		return "/"
	}
	return gopath.Base(g.path)
}

// Path returns the full store path of this group.
func (g *Group) Path() string {
	return g.path
}

// Attrs returns the group's attribute mapping, decoded from .zattrs.
// A group without attributes yields an empty map.
func (g *Group) Attrs() (map[string]interface{}, error) {
	if g.store.closed {
		return nil, ErrClosed
	}
	attrs, err := readAttrs(g.dir)
	if err != nil {
		return nil, fmt.Errorf("group %q: %w", g.path, err)
	}
	return attrs, nil
}

// Children returns the names of all child groups and datasets, sorted.
// Directory entries that are neither are ignored.
func (g *Group) Children() ([]string, error) {
	if g.store.closed {
		return nil, ErrClosed
	}

	entries, err := os.ReadDir(g.dir)
	if err != nil {
		return nil, fmt.Errorf("listing group %q: %w", g.path, err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		child := filepath.Join(g.dir, e.Name())
		if fileExists(filepath.Join(child, groupMetaFile)) || fileExists(filepath.Join(child, arrayMetaFile)) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Groups returns the names of all child groups, sorted.
func (g *Group) Groups() ([]string, error) {
	return g.children(groupMetaFile)
}

// Datasets returns the names of all child datasets, sorted.
func (g *Group) Datasets() ([]string, error) {
	return g.children(arrayMetaFile)
}

func (g *Group) children(metaFile string) ([]string, error) {
	if g.store.closed {
		return nil, ErrClosed
	}

	entries, err := os.ReadDir(g.dir)
	if err != nil {
		return nil, fmt.Errorf("listing group %q: %w", g.path, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() && fileExists(filepath.Join(g.dir, e.Name(), metaFile)) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// OpenGroup opens a subgroup by relative store path.
func (g *Group) OpenGroup(relativePath string) (*Group, error) {
	obj, err := g.open(relativePath)
	if err != nil {
		return nil, err
	}

	group, ok := obj.(*Group)
	if !ok {
		return nil, fmt.Errorf("opening %q: %w", relativePath, ErrNotGroup)
	}
	return group, nil
}

// OpenDataset opens a dataset by relative store path.
func (g *Group) OpenDataset(relativePath string) (*Dataset, error) {
	obj, err := g.open(relativePath)
	if err != nil {
		return nil, err
	}

	dataset, ok := obj.(*Dataset)
	if !ok {
		return nil, fmt.Errorf("opening %q: %w", relativePath, ErrNotDataset)
	}
	return dataset, nil
}

// Exists reports whether a group or dataset exists at the relative path.
// It never fails: unreadable or foreign directory entries report false.
func (g *Group) Exists(relativePath string) bool {
	if g.store.closed {
		return false
	}

	dir := g.dir
	for _, name := range SplitPath(relativePath) {
		dir = filepath.Join(dir, name)
		if !dirExists(dir) {
			return false
		}
	}
	return fileExists(filepath.Join(dir, groupMetaFile)) || fileExists(filepath.Join(dir, arrayMetaFile))
}

// open resolves a relative store path to a *Group or *Dataset.
func (g *Group) open(relativePath string) (interface{}, error) {
	if g.store.closed {
		return nil, ErrClosed
	}

	parts := SplitPath(relativePath)
	if len(parts) == 0 {
		return g, nil
	}

	dir := g.dir
	storePath := g.path
	for i, name := range parts {
		dir = filepath.Join(dir, name)
		storePath = gopath.Join(storePath, name)

		if !dirExists(dir) {
			return nil, fmt.Errorf("resolving %q: %w", storePath, ErrNotFound)
		}

		isGroup := fileExists(filepath.Join(dir, groupMetaFile))
		isArray := fileExists(filepath.Join(dir, arrayMetaFile))

		// Last component opens as whatever it declares itself to be.
		if i == len(parts)-1 {
			switch {
			case isArray:
				return newDataset(g.store, storePath, dir)
			case isGroup:
				if err := checkGroupMeta(filepath.Join(dir, groupMetaFile)); err != nil {
					return nil, fmt.Errorf("opening group %q: %w", storePath, err)
				}
				return &Group{store: g.store, path: storePath, dir: dir}, nil
			default:
				return nil, fmt.Errorf("resolving %q: %w", storePath, ErrNotFound)
			}
		}

		// Intermediate components must be groups.
		if !isGroup {
			if isArray {
				return nil, fmt.Errorf("resolving %q: %w", storePath, ErrNotGroup)
			}
			return nil, fmt.Errorf("resolving %q: %w", storePath, ErrNotFound)
		}
	}

	return nil, fmt.Errorf("resolving %q: %w", relativePath, ErrNotFound)
}
