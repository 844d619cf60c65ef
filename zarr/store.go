package zarr

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	groupMetaFile = ".zgroup"
	arrayMetaFile = ".zarray"
	attrsFile     = ".zattrs"
)

// Store represents an open Zarr v2 directory store.
type Store struct {
	path   string
	root   *Group
	closed bool
}

// Open opens a Zarr directory store for reading. The root of the store
// must be a group.
func Open(path string) (*Store, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("opening store %q: %w: not a directory", path, ErrNotZarr)
	}

	if err := checkGroupMeta(filepath.Join(path, groupMetaFile)); err != nil {
		return nil, fmt.Errorf("opening store %q: %w", path, err)
	}

	st := &Store{path: path}
	st.root = &Group{store: st, path: "/", dir: path}
	return st, nil
}

// Close marks the store closed. Directory stores hold no descriptors
// between reads, so this only guards against further use.
func (s *Store) Close() error {
	s.closed = true
	return nil
}

// Root returns the root group of the store.
func (s *Store) Root() *Group {
	return s.root
}

// Path returns the store's directory path.
func (s *Store) Path() string {
	return s.path
}

// OpenGroup opens a group by store path.
func (s *Store) OpenGroup(path string) (*Group, error) {
	if s.closed {
		return nil, ErrClosed
	}
	return s.root.OpenGroup(path)
}

// OpenDataset opens a dataset by store path.
func (s *Store) OpenDataset(path string) (*Dataset, error) {
	if s.closed {
		return nil, ErrClosed
	}
	return s.root.OpenDataset(path)
}

// Exists reports whether a group or dataset exists at the given store path.
func (s *Store) Exists(path string) bool {
	if s.closed {
		return false
	}
	return s.root.Exists(path)
}

// checkGroupMeta validates a .zgroup file.
func checkGroupMeta(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: missing %s", ErrNotZarr, groupMetaFile)
		}
		return err
	}

	var meta struct {
		ZarrFormat int `json:"zarr_format"`
	}
	if err := json.Unmarshal(raw, &meta); err != nil {
		return fmt.Errorf("%w: parsing %s: %v", ErrNotZarr, groupMetaFile, err)
	}
	if meta.ZarrFormat != 2 {
		return fmt.Errorf("%w: zarr format %d", ErrUnsupported, meta.ZarrFormat)
	}
	return nil
}

// readAttrs decodes a .zattrs file in the given directory. A missing file
// yields an empty map.
func readAttrs(dir string) (map[string]interface{}, error) {
	raw, err := os.ReadFile(filepath.Join(dir, attrsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]interface{}{}, nil
		}
		return nil, fmt.Errorf("reading attributes: %w", err)
	}

	attrs := map[string]interface{}{}
	if err := json.Unmarshal(raw, &attrs); err != nil {
		return nil, fmt.Errorf("parsing attributes: %w", err)
	}
	return attrs, nil
}

// fileExists reports whether path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// dirExists reports whether path exists and is a directory.
func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
