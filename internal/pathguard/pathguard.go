// Package pathguard provides the default path-safety predicate consulted
// before any user-configured file or repository is opened. Paths must
// resolve under the user's home directory and outside credential subtrees;
// everything else is denied.
package pathguard

import (
	"os"
	"path/filepath"
	"strings"
)

// deniedSubtrees are home-relative directories that are never readable
// through the telemetry core, even though they live under the home root.
var deniedSubtrees = []string{
	".ssh",
	".gnupg",
	".aws",
	".kube",
}

// IsSafe reports whether path may be read by the telemetry core. Relative
// and traversal paths are denied outright; absolute paths must stay under
// the user's home directory and outside the denied subtrees.
func IsSafe(path string) bool {
	if path == "" || !filepath.IsAbs(path) {
		return false
	}
	clean := filepath.Clean(path)
	if containsTraversal(path) {
		return false
	}

	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return false
	}
	home = filepath.Clean(home)

	rel, err := filepath.Rel(home, clean)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	for _, denied := range deniedSubtrees {
		if rel == denied || strings.HasPrefix(rel, denied+string(filepath.Separator)) {
			return false
		}
	}
	return true
}

// containsTraversal reports whether the raw path carries a ".." element.
// Checked on the raw string so "a/../../b" is denied even when cleaning
// would normalize it.
func containsTraversal(path string) bool {
	for _, part := range strings.Split(path, string(filepath.Separator)) {
		if part == ".." {
			return true
		}
	}
	return false
}
