package store

import "path/filepath"

// BuildConfigName holds the verbatim flags of a source-built version.
const BuildConfigName = ".config"

func VersionsRoot(root string) string {
	return filepath.Join(root, "versions")
}

// BinRoot is the execution prefix activation symlinks into.
func BinRoot(root string) string {
	return filepath.Join(root, "bin")
}

// CurrentLink is the convenience symlink to the active version directory.
func CurrentLink(root string) string {
	return filepath.Join(root, "current")
}

func StagingRoot(root string) string {
	return filepath.Join(root, "tmp")
}

func AuditPath(root string) string {
	return filepath.Join(root, "audit.log")
}
