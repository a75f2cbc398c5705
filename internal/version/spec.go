package version

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// SpecKind discriminates the forms a user-supplied version spec can take.
type SpecKind int

const (
	// KindExact selects one concrete version.
	KindExact SpecKind = iota
	// KindSeries selects the newest patch of a major.minor line.
	KindSeries
	// KindLatest selects the newest version, prereleases included.
	KindLatest
	// KindStable selects the newest release of an even-minor series.
	KindStable
)

var seriesPattern = regexp.MustCompile(`^(\d+)\.(\d+)$`)

// Spec is a parsed version specification. Exact is meaningful only for
// KindExact; Major/Minor only for KindSeries.
type Spec struct {
	Kind       SpecKind
	Exact      Version
	Major      int
	Minor      int
	Enterprise bool
}

// ParseSpec reads a user-supplied spec: "latest", "stable", a series
// shorthand like "3.6", or an exact version, each optionally suffixed
// with -ent to request the enterprise variant.
func ParseSpec(raw string) (Spec, error) {
	in := strings.TrimSpace(strings.TrimPrefix(raw, "v"))
	if in == "" {
		return Spec{}, fmt.Errorf("VER_SPEC: empty version spec")
	}
	var sp Spec
	if strings.HasSuffix(in, EnterpriseSuffix) {
		sp.Enterprise = true
		in = strings.TrimSuffix(in, EnterpriseSuffix)
	}
	switch strings.ToLower(in) {
	case "latest":
		sp.Kind = KindLatest
		return sp, nil
	case "stable":
		sp.Kind = KindStable
		return sp, nil
	}
	if m := seriesPattern.FindStringSubmatch(in); m != nil {
		sp.Kind = KindSeries
		sp.Major, _ = strconv.Atoi(m[1])
		sp.Minor, _ = strconv.Atoi(m[2])
		return sp, nil
	}
	v, err := Parse(in)
	if err != nil {
		return Spec{}, fmt.Errorf("VER_SPEC: %q is not a version, series or keyword", raw)
	}
	v.Enterprise = v.Enterprise || sp.Enterprise
	return Spec{Kind: KindExact, Exact: v, Enterprise: v.Enterprise}, nil
}

// String renders the spec roughly as the user typed it.
func (sp Spec) String() string {
	var s string
	switch sp.Kind {
	case KindExact:
		return sp.Exact.String()
	case KindSeries:
		s = fmt.Sprintf("%d.%d", sp.Major, sp.Minor)
	case KindLatest:
		s = "latest"
	case KindStable:
		s = "stable"
	}
	if sp.Enterprise {
		s += EnterpriseSuffix
	}
	return s
}
