// Package store manages the local directory of installed MongoDB
// versions under the install root.
package store

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"mvm/internal/version"
)

// ErrNotInstalled is returned when an operation targets a version with
// no local directory.
var ErrNotInstalled = errors.New("STO_NOT_INSTALLED: version is not installed")

var reportedVersionPattern = regexp.MustCompile(`v(\d+\.\d+\.\d+(?:-rc\d+)?)`)

// Installed is one entry of the local version directory. BuildConfig
// carries the verbatim flags of a source build, empty for binary
// installs.
type Installed struct {
	Version     version.Version
	Dir         string
	BuildConfig string
}

// Store reads and writes the install root. Directory names under
// versions/ are canonical version strings; at most one directory exists
// per canonical version by construction.
type Store struct {
	Root string
}

// EnsureLayout creates the directories every operation assumes.
func (s *Store) EnsureLayout() error {
	for _, d := range []string{s.Root, VersionsRoot(s.Root), BinRoot(s.Root), StagingRoot(s.Root)} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return err
		}
	}
	return nil
}

// Dir returns the directory an installed v lives in (or would live in).
func (s *Store) Dir(v version.Version) string {
	return filepath.Join(VersionsRoot(s.Root), v.String())
}

// BinDir returns the bin directory of an installed v.
func (s *Store) BinDir(v version.Version) string {
	return filepath.Join(s.Dir(v), "bin")
}

// IsInstalled reports whether v has a populated bin directory.
func (s *Store) IsInstalled(v version.Version) bool {
	info, err := os.Stat(s.BinDir(v))
	return err == nil && info.IsDir()
}

// List enumerates installed versions sorted by version order. Entries
// whose directory name is not a canonical version are skipped.
func (s *Store) List() ([]Installed, error) {
	entries, err := os.ReadDir(VersionsRoot(s.Root))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var out []Installed
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		v, err := version.Parse(e.Name())
		if err != nil {
			continue
		}
		item := Installed{Version: v, Dir: filepath.Join(VersionsRoot(s.Root), e.Name())}
		if flags, err := s.ReadBuildConfig(v); err == nil {
			item.BuildConfig = flags
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return version.Less(out[i].Version, out[j].Version) })
	return out, nil
}

// Versions returns the installed versions only, sorted. It backs local
// spec resolution.
func (s *Store) Versions() ([]version.Version, error) {
	items, err := s.List()
	if err != nil {
		return nil, err
	}
	vs := make([]version.Version, 0, len(items))
	for _, item := range items {
		vs = append(vs, item.Version)
	}
	return vs, nil
}

// ReadBuildConfig returns the persisted source-build flags for v, or ""
// when the version was installed from a binary artifact.
func (s *Store) ReadBuildConfig(v version.Version) (string, error) {
	blob, err := os.ReadFile(filepath.Join(s.Dir(v), BuildConfigName))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(blob)), nil
}

// WriteBuildConfig persists flags verbatim next to the installed version.
func (s *Store) WriteBuildConfig(v version.Version, flags string) error {
	return os.WriteFile(filepath.Join(s.Dir(v), BuildConfigName), []byte(flags+"\n"), 0o644)
}

// Active queries the linked mongod for its reported version. It is a
// pure read: nothing is cached across calls. False when no binary is
// linked or its output is unrecognizable.
func (s *Store) Active() (version.Version, bool) {
	out, err := exec.Command(filepath.Join(BinRoot(s.Root), "mongod"), "--version").Output()
	if err != nil {
		return version.Version{}, false
	}
	m := reportedVersionPattern.FindSubmatch(out)
	if m == nil {
		return version.Version{}, false
	}
	v, err := version.Parse(string(m[1]))
	if err != nil {
		return version.Version{}, false
	}
	if strings.Contains(string(out), "enterprise") {
		v.Enterprise = true
	}
	return v, true
}

// Remove deletes the directory of v. Removing the active version asks
// confirm first; a nil or declining confirm leaves the version in place
// and reports removed=false without error.
func (s *Store) Remove(v version.Version, confirm func(prompt string) bool) (bool, error) {
	if !s.IsInstalled(v) {
		return false, fmt.Errorf("%w: %s", ErrNotInstalled, v)
	}
	if active, ok := s.Active(); ok && version.Compare(active, v) == 0 && active.Enterprise == v.Enterprise {
		if confirm == nil || !confirm(fmt.Sprintf("%s is the active version, remove anyway?", v)) {
			return false, nil
		}
	}
	if err := os.RemoveAll(s.Dir(v)); err != nil {
		return false, err
	}
	return true, nil
}
