package zarr

import "strings"

// SplitPath splits a store path into its non-empty components. Leading,
// trailing and repeated slashes are ignored; "/" yields no components.
func SplitPath(path string) []string {
	parts := []string{}
	for _, p := range strings.Split(path, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
