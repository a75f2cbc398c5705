package platform

import (
	"context"
	"runtime"
	"testing"
)

func TestNormalizeDistroFoldsVendorAliases(t *testing.T) {
	cases := map[string]string{
		"CentOS":    "rhel",
		"redhat":    "rhel",
		"rocky":     "rhel",
		"almalinux": "rhel",
		"amzn":      "amazon",
		"opensuse":  "suse",
		"Ubuntu":    "ubuntu",
		"debian":    "debian",
		"linuxmint": "ubuntu",
	}
	for in, want := range cases {
		if got := NormalizeDistro(in); got != want {
			t.Fatalf("NormalizeDistro(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeReleaseMapsDebianCodenames(t *testing.T) {
	cases := map[string]string{
		"18.04":        "18.04",
		"jessie":       "8",
		"bullseye/sid": "11",
		"Bookworm":     "12",
		"9.6":          "9.6",
	}
	for in, want := range cases {
		if got := NormalizeRelease(in); got != want {
			t.Fatalf("NormalizeRelease(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDistroMajor(t *testing.T) {
	cases := []struct {
		release string
		want    int
	}{
		{"18.04", 18},
		{"7", 7},
		{"", 0},
		{"sid", 0},
	}
	for _, tc := range cases {
		d := Descriptor{DistroVersion: tc.release}
		if got := d.DistroMajor(); got != tc.want {
			t.Fatalf("DistroMajor(%q) = %d, want %d", tc.release, got, tc.want)
		}
	}
}

func TestDetectReportsHostOSAndArch(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("detection is defined to fail on windows")
	}
	d, err := Detect(context.Background())
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if d.OS == "" || d.Arch == "" {
		t.Fatalf("incomplete descriptor: %+v", d)
	}
	if runtime.GOOS != "linux" && d.DistroID != "" {
		t.Fatalf("distro id set off linux: %+v", d)
	}
}
