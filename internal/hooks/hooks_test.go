package hooks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stubs")
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write script failed: %v", err)
	}
	return path
}

func TestAddRejectsInvalidEvent(t *testing.T) {
	r := New(t.TempDir(), nil)
	if err := r.Add(Pre, Event("upgrade"), "/bin/true"); !errors.Is(err, ErrInvalidEvent) {
		t.Fatalf("expected ErrInvalidEvent, got %v", err)
	}
}

func TestAddRejectsRelativeAndNonExecutablePaths(t *testing.T) {
	dir := t.TempDir()
	r := New(dir, nil)
	if err := r.Add(Pre, Install, "relative/script.sh"); !errors.Is(err, ErrInvalidPath) {
		t.Fatalf("expected ErrInvalidPath for relative path, got %v", err)
	}
	plain := filepath.Join(dir, "plain.txt")
	if err := os.WriteFile(plain, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file failed: %v", err)
	}
	if err := r.Add(Pre, Install, plain); !errors.Is(err, ErrInvalidPath) {
		t.Fatalf("expected ErrInvalidPath for non-executable, got %v", err)
	}
	if err := r.Add(Pre, Install, filepath.Join(dir, "missing.sh")); !errors.Is(err, ErrInvalidPath) {
		t.Fatalf("expected ErrInvalidPath for missing file, got %v", err)
	}
}

func TestAddIsIdempotentAndRemovePreservesOrder(t *testing.T) {
	dir := t.TempDir()
	r := New(dir, nil)
	a := writeScript(t, dir, "a.sh", "exit 0")
	b := writeScript(t, dir, "b.sh", "exit 0")
	c := writeScript(t, dir, "c.sh", "exit 0")

	for _, p := range []string{a, b, a, c, a} {
		if err := r.Add(Post, Change, p); err != nil {
			t.Fatalf("add %s failed: %v", p, err)
		}
	}
	got, err := r.List(Post, Change)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(got) != 3 || got[0] != a || got[1] != b || got[2] != c {
		t.Fatalf("list = %v, want [a b c]", got)
	}

	if err := r.Remove(Post, Change, b); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	got, _ = r.List(Post, Change)
	if len(got) != 2 || got[0] != a || got[1] != c {
		t.Fatalf("after remove, list = %v, want [a c]", got)
	}
}

func TestRemoveAllClearsFile(t *testing.T) {
	dir := t.TempDir()
	r := New(dir, nil)
	a := writeScript(t, dir, "a.sh", "exit 0")
	if err := r.Add(Pre, Install, a); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := r.Remove(Pre, Install, ""); err != nil {
		t.Fatalf("remove all failed: %v", err)
	}
	got, err := r.List(Pre, Install)
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty list, got %v / %v", got, err)
	}
	// clearing an already-empty hook set is fine
	if err := r.Remove(Pre, Install, ""); err != nil {
		t.Fatalf("second remove all failed: %v", err)
	}
}

func TestFireRunsAllScriptsAndCapturesExitStatus(t *testing.T) {
	dir := t.TempDir()
	r := New(dir, nil)
	marker := filepath.Join(dir, "ran")
	failing := writeScript(t, dir, "fail.sh", "exit 3")
	passing := writeScript(t, dir, "pass.sh", "touch "+marker)
	if err := r.Add(Post, Install, failing); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := r.Add(Post, Install, passing); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	results, err := r.Fire(context.Background(), Post, Install, "3.6.3")
	if err != nil {
		t.Fatalf("fire failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].ExitCode != 3 || results[0].Err == nil {
		t.Fatalf("failing hook result = %+v", results[0])
	}
	if results[1].Err != nil {
		t.Fatalf("passing hook result = %+v", results[1])
	}
	if _, err := os.Stat(marker); err != nil {
		t.Fatalf("later hook did not run after earlier failure: %v", err)
	}
}

func TestFireWithNoHooksIsANoOp(t *testing.T) {
	r := New(t.TempDir(), nil)
	results, err := r.Fire(context.Background(), Pre, Change)
	if err != nil || len(results) != 0 {
		t.Fatalf("expected empty results, got %v / %v", results, err)
	}
}
