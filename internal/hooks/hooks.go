// Package hooks persists and executes user-registered scripts around
// install and change lifecycle events.
package hooks

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"mvm/internal/fsutil"
)

// Phase is when a hook fires relative to its event.
type Phase string

// Event is the lifecycle event a hook observes.
type Event string

const (
	Pre  Phase = "pre"
	Post Phase = "post"

	Install Event = "install"
	Change  Event = "change"
)

var (
	// ErrInvalidEvent is returned for events other than install|change.
	ErrInvalidEvent = errors.New("HOK_EVENT: invalid hook event")
	// ErrInvalidPath is returned for hook paths that are not absolute
	// executable files.
	ErrInvalidPath = errors.New("HOK_PATH: hook path must be an absolute executable")
)

// Result is the captured outcome of one fired hook. Execution is
// best-effort: callers receive exit statuses but the default policy is
// to ignore them.
type Result struct {
	Path     string
	ExitCode int
	Err      error
}

// Registry stores hooks as line-delimited files under the install root,
// one file per (phase, event), rewritten atomically on every change.
type Registry struct {
	Root string
	Log  *zap.SugaredLogger
}

// New returns a registry rooted at root.
func New(root string, log *zap.SugaredLogger) *Registry {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Registry{Root: root, Log: log}
}

// ValidEvent reports whether e is one of the two recognized events.
func ValidEvent(e Event) bool { return e == Install || e == Change }

func (r *Registry) file(phase Phase, event Event) string {
	return filepath.Join(r.Root, fmt.Sprintf("%s_%s", phase, event))
}

// List returns the registered scripts for (phase, event) in execution
// order.
func (r *Registry) List(phase Phase, event Event) ([]string, error) {
	if !ValidEvent(event) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEvent, event)
	}
	blob, err := os.ReadFile(r.file(phase, event))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var out []string
	for _, line := range strings.Split(string(blob), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out, nil
}

// Add registers path for (phase, event). The path must be absolute and
// executable. Adding a registered path again is a no-op.
func (r *Registry) Add(phase Phase, event Event, path string) error {
	if !ValidEvent(event) {
		return fmt.Errorf("%w: %q", ErrInvalidEvent, event)
	}
	if !filepath.IsAbs(path) {
		return fmt.Errorf("%w: %q is not absolute", ErrInvalidPath, path)
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() || info.Mode().Perm()&0o111 == 0 {
		return fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	existing, err := r.List(phase, event)
	if err != nil {
		return err
	}
	for _, p := range existing {
		if p == path {
			return nil
		}
	}
	return r.write(phase, event, append(existing, path))
}

// Remove unregisters path from (phase, event), preserving the order of
// the remaining scripts. An empty path clears every entry.
func (r *Registry) Remove(phase Phase, event Event, path string) error {
	if !ValidEvent(event) {
		return fmt.Errorf("%w: %q", ErrInvalidEvent, event)
	}
	if path == "" {
		err := os.Remove(r.file(phase, event))
		if err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}
	existing, err := r.List(phase, event)
	if err != nil {
		return err
	}
	kept := existing[:0]
	for _, p := range existing {
		if p != path {
			kept = append(kept, p)
		}
	}
	return r.write(phase, event, kept)
}

// Fire executes every registered script in file order as an independent
// process, passing args through. A failing script never interrupts the
// rest; exit statuses are captured per script for callers that want a
// stricter policy.
func (r *Registry) Fire(ctx context.Context, phase Phase, event Event, args ...string) ([]Result, error) {
	scripts, err := r.List(phase, event)
	if err != nil {
		return nil, err
	}
	results := make([]Result, 0, len(scripts))
	for _, script := range scripts {
		cmd := exec.CommandContext(ctx, script, args...)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		res := Result{Path: script}
		if err := cmd.Run(); err != nil {
			res.Err = err
			res.ExitCode = -1
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				res.ExitCode = exitErr.ExitCode()
			}
			r.Log.Warnw("hook failed", "phase", phase, "event", event, "script", script, "exit", res.ExitCode)
		}
		results = append(results, res)
	}
	return results, nil
}

func (r *Registry) write(phase Phase, event Event, paths []string) error {
	if len(paths) == 0 {
		return r.Remove(phase, event, "")
	}
	blob := strings.Join(paths, "\n") + "\n"
	return fsutil.AtomicWrite(r.file(phase, event), []byte(blob), 0o644)
}
