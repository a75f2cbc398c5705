// Package platform detects the host operating system, CPU architecture
// and Linux distribution identity used to pick artifact builds.
package platform

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v4/host"
)

// ErrUnsupported marks hosts no artifact can ever be located for.
var ErrUnsupported = errors.New("PLT_UNSUPPORTED: unsupported platform")

// Descriptor identifies the host for artifact selection. It is computed
// once per invocation and never mutated afterwards.
type Descriptor struct {
	OS            string // linux, osx, macos handled downstream; here: linux|darwin|sunos
	Arch          string // vendor arch spelling, e.g. x86_64, aarch64
	DistroID      string // canonical distro id, lowercase; empty off Linux
	DistroVersion string // numeric release, e.g. "18.04"; empty off Linux
}

// distroAliases folds vendor identifiers into the canonical ids used by
// the artifact compatibility table.
var distroAliases = map[string]string{
	"redhat":    "rhel",
	"red hat":   "rhel",
	"centos":    "rhel",
	"rocky":     "rhel",
	"almalinux": "rhel",
	"oracle":    "rhel",
	"amzn":      "amazon",
	"opensuse":  "suse",
	"sles":      "suse",
	"linuxmint": "ubuntu",
	"pop":       "ubuntu",
	"raspbian":  "debian",
}

// debianCodenames maps release codenames (as found in debian_version
// style metadata) to numeric releases.
var debianCodenames = map[string]string{
	"squeeze":  "6",
	"wheezy":   "7",
	"jessie":   "8",
	"stretch":  "9",
	"buster":   "10",
	"bullseye": "11",
	"bookworm": "12",
	"trixie":   "13",
}

// Detect computes the host descriptor. Distribution identity comes from
// the system release metadata (os-release, lsb, distro release files)
// via gopsutil; a failed distro lookup degrades to a bare os/arch
// descriptor rather than failing the invocation.
func Detect(ctx context.Context) (Descriptor, error) {
	d := Descriptor{Arch: normalizeArch(runtime.GOARCH)}
	switch runtime.GOOS {
	case "linux":
		d.OS = "linux"
	case "darwin":
		d.OS = "darwin"
	case "solaris", "illumos":
		d.OS = "sunos"
	default:
		return Descriptor{}, fmt.Errorf("%w: %s", ErrUnsupported, runtime.GOOS)
	}
	if d.OS != "linux" {
		return d, nil
	}
	platform, _, release, err := host.PlatformInformationWithContext(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return Descriptor{}, ctx.Err()
		}
		return d, nil
	}
	d.DistroID = NormalizeDistro(platform)
	d.DistroVersion = NormalizeRelease(release)
	return d, nil
}

// NormalizeDistro lowercases a distro identifier and folds vendor
// aliases into the canonical id.
func NormalizeDistro(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	if canonical, ok := distroAliases[id]; ok {
		return canonical
	}
	return id
}

// NormalizeRelease lowercases a release string and maps Debian
// codenames (including "bullseye/sid" forms) to numeric releases.
func NormalizeRelease(release string) string {
	release = strings.ToLower(strings.TrimSpace(release))
	codename := release
	if i := strings.IndexByte(codename, '/'); i >= 0 {
		codename = codename[:i]
	}
	if numeric, ok := debianCodenames[codename]; ok {
		return numeric
	}
	return release
}

// DistroMajor returns the leading numeric component of the distro
// release, or 0 when none is available.
func (d Descriptor) DistroMajor() int {
	s := d.DistroVersion
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func normalizeArch(arch string) string {
	switch arch {
	case "amd64":
		return "x86_64"
	case "arm64":
		return "aarch64"
	case "386":
		return "i686"
	default:
		return arch
	}
}
