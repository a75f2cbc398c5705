// Package version models MongoDB release versions and the symbolic
// specifications users type to select them.
package version

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// EnterpriseSuffix marks a commercially licensed build in canonical form.
const EnterpriseSuffix = "-ent"

var versionPattern = regexp.MustCompile(`^(\d+)\.(\d+)\.(\d+)(?:-([0-9A-Za-z][0-9A-Za-z.]*))?$`)

// Version is a concrete release: numeric triple, optional prerelease tag
// and the enterprise flag. The enterprise flag never affects ordering.
type Version struct {
	Major      int
	Minor      int
	Patch      int
	Tag        string
	Enterprise bool
}

// Parse reads a canonical version string of the form X.Y.Z[-tag][-ent].
func Parse(raw string) (Version, error) {
	in := strings.TrimSpace(strings.TrimPrefix(raw, "v"))
	var v Version
	if strings.HasSuffix(in, EnterpriseSuffix) {
		v.Enterprise = true
		in = strings.TrimSuffix(in, EnterpriseSuffix)
	}
	m := versionPattern.FindStringSubmatch(in)
	if m == nil {
		return Version{}, fmt.Errorf("VER_PARSE: invalid version %q", raw)
	}
	v.Major, _ = strconv.Atoi(m[1])
	v.Minor, _ = strconv.Atoi(m[2])
	v.Patch, _ = strconv.Atoi(m[3])
	v.Tag = m[4]
	return v, nil
}

// MustParse is Parse for static test fixtures; it panics on bad input.
func MustParse(raw string) Version {
	v, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return v
}

// String returns the canonical form X.Y.Z[-tag][-ent]. It is also the
// directory name of an installed version.
func (v Version) String() string {
	s := v.Release()
	if v.Enterprise {
		s += EnterpriseSuffix
	}
	return s
}

// Release returns the version as it appears in artifact filenames,
// without the enterprise suffix: X.Y.Z[-tag].
func (v Version) Release() string {
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Tag != "" {
		s += "-" + v.Tag
	}
	return s
}

// IsPrerelease reports whether the version carries a prerelease tag.
func (v Version) IsPrerelease() bool { return v.Tag != "" }

// InSeries reports whether the version belongs to the major.minor line.
func (v Version) InSeries(major, minor int) bool {
	return v.Major == major && v.Minor == minor
}

// semverKey maps the version into golang.org/x/mod/semver's input space.
func (v Version) semverKey() string { return "v" + v.Release() }

// Compare orders two versions. The triple compares numerically and a
// release outranks a prerelease with the same triple; both properties
// fall out of semver ordering. Enterprise is ignored.
func Compare(a, b Version) int {
	return semver.Compare(a.semverKey(), b.semverKey())
}

// Less reports whether a sorts before b.
func Less(a, b Version) bool { return Compare(a, b) < 0 }

// Max returns the greatest version in vs under Compare, and false when
// vs is empty.
func Max(vs []Version) (Version, bool) {
	if len(vs) == 0 {
		return Version{}, false
	}
	best := vs[0]
	for _, v := range vs[1:] {
		if Compare(v, best) > 0 {
			best = v
		}
	}
	return best, true
}
