package store

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"mvm/internal/version"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s := &Store{Root: t.TempDir()}
	if err := s.EnsureLayout(); err != nil {
		t.Fatalf("ensure layout failed: %v", err)
	}
	return s
}

func installFake(t *testing.T, s *Store, ver string) version.Version {
	t.Helper()
	v := version.MustParse(ver)
	if err := os.MkdirAll(s.BinDir(v), 0o755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	return v
}

// fakeMongod links a stub mongod into the execution prefix that reports
// the given version string.
func fakeMongod(t *testing.T, s *Store, reported string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stub")
	}
	script := "#!/bin/sh\necho \"db version v" + reported + "\"\n"
	path := filepath.Join(BinRoot(s.Root), "mongod")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub failed: %v", err)
	}
}

func TestListSortsAndSkipsForeignEntries(t *testing.T) {
	s := newStore(t)
	installFake(t, s, "3.6.3")
	installFake(t, s, "2.6.12")
	installFake(t, s, "3.6.3-rc0")
	if err := os.MkdirAll(filepath.Join(VersionsRoot(s.Root), "not-a-version"), 0o755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}

	items, err := s.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	want := []string{"2.6.12", "3.6.3-rc0", "3.6.3"}
	if len(items) != len(want) {
		t.Fatalf("got %d entries, want %d", len(items), len(want))
	}
	for i, w := range want {
		if items[i].Version.String() != w {
			t.Fatalf("items[%d] = %s, want %s", i, items[i].Version, w)
		}
	}
}

func TestListOnEmptyRoot(t *testing.T) {
	s := &Store{Root: filepath.Join(t.TempDir(), "missing")}
	items, err := s.List()
	if err != nil || len(items) != 0 {
		t.Fatalf("expected empty list, got %v / %v", items, err)
	}
}

func TestBuildConfigRoundTrip(t *testing.T) {
	s := newStore(t)
	v := installFake(t, s, "3.4.9")
	if flags, err := s.ReadBuildConfig(v); err != nil || flags != "" {
		t.Fatalf("expected no config, got %q / %v", flags, err)
	}
	if err := s.WriteBuildConfig(v, "--ssl CC=clang"); err != nil {
		t.Fatalf("write config failed: %v", err)
	}
	flags, err := s.ReadBuildConfig(v)
	if err != nil || flags != "--ssl CC=clang" {
		t.Fatalf("read config = %q / %v", flags, err)
	}
	items, err := s.List()
	if err != nil || len(items) != 1 || items[0].BuildConfig != "--ssl CC=clang" {
		t.Fatalf("list did not surface build config: %+v / %v", items, err)
	}
}

func TestActiveParsesReportedVersion(t *testing.T) {
	s := newStore(t)
	fakeMongod(t, s, "3.6.3")
	v, ok := s.Active()
	if !ok || v.String() != "3.6.3" {
		t.Fatalf("Active = %v/%v, want 3.6.3", v, ok)
	}
}

func TestActiveWithoutLinkedBinary(t *testing.T) {
	s := newStore(t)
	if _, ok := s.Active(); ok {
		t.Fatalf("expected no active version")
	}
}

func TestRemoveMissingVersion(t *testing.T) {
	s := newStore(t)
	_, err := s.Remove(version.MustParse("9.9.9"), nil)
	if !errors.Is(err, ErrNotInstalled) {
		t.Fatalf("expected ErrNotInstalled, got %v", err)
	}
}

func TestRemoveActiveVersionNeedsConfirmation(t *testing.T) {
	s := newStore(t)
	v := installFake(t, s, "3.6.3")
	fakeMongod(t, s, "3.6.3")

	removed, err := s.Remove(v, func(string) bool { return false })
	if err != nil || removed {
		t.Fatalf("declined removal should be a no-op, got %v / %v", removed, err)
	}
	if !s.IsInstalled(v) {
		t.Fatalf("declined removal deleted the version")
	}

	removed, err = s.Remove(v, func(string) bool { return true })
	if err != nil || !removed {
		t.Fatalf("confirmed removal failed: %v / %v", removed, err)
	}
	if s.IsInstalled(v) {
		t.Fatalf("confirmed removal left the version behind")
	}
}

func TestRemoveInactiveVersionSkipsConfirmation(t *testing.T) {
	s := newStore(t)
	v := installFake(t, s, "3.2.1")
	fakeMongod(t, s, "3.6.3")
	removed, err := s.Remove(v, nil)
	if err != nil || !removed {
		t.Fatalf("inactive removal failed: %v / %v", removed, err)
	}
}
