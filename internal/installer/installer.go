// Package installer orchestrates the install pipeline: resolution
// output in, hooks fired, artifact downloaded and extracted, version
// placed and activated, staging cleaned up.
package installer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"mvm/internal/artifact"
	"mvm/internal/audit"
	"mvm/internal/hooks"
	"mvm/internal/platform"
	"mvm/internal/store"
	"mvm/internal/version"
)

var (
	// ErrDownload covers failed fetches and extraction faults. The
	// message carries the download log path for diagnosis.
	ErrDownload = errors.New("INS_DOWNLOAD: download or extraction failed")
	// ErrMissingDependency is returned when a required external tool
	// (tar, scons) is not on PATH.
	ErrMissingDependency = errors.New("INS_MISSING_DEP: required tool not found")
	// ErrUnsupportedPlatform is returned when no artifact candidate
	// succeeds and the user declines the source-build fallback.
	ErrUnsupportedPlatform = errors.New("INS_UNSUPPORTED: no artifact for this platform")
	// ErrBuild is returned when the external build toolchain fails.
	ErrBuild = errors.New("INS_BUILD: source build failed")
)

// Pipeline drives installs and activations. All fields but Store,
// Locator and Hooks are optional.
type Pipeline struct {
	Store    *store.Store
	Locator  *artifact.Locator
	Hooks    *hooks.Registry
	Audit    *audit.Logger
	Platform platform.Descriptor

	HTTPClient *http.Client
	Log        *zap.SugaredLogger

	// Confirm gates the source-build fallback when no binary artifact
	// is reachable. Nil means decline.
	Confirm func(prompt string) bool

	// Out receives user-facing progress lines; defaults to stdout.
	Out io.Writer

	// TarBin and SconsBin override the external tools, for tests.
	TarBin   string
	SconsBin string
}

func (p *Pipeline) log() *zap.SugaredLogger {
	if p.Log == nil {
		return zap.NewNop().Sugar()
	}
	return p.Log
}

func (p *Pipeline) httpClient() *http.Client {
	if p.HTTPClient == nil {
		return &http.Client{Timeout: 10 * time.Minute}
	}
	return p.HTTPClient
}

func (p *Pipeline) out() io.Writer {
	if p.Out == nil {
		return os.Stdout
	}
	return p.Out
}

func (p *Pipeline) tar() string {
	if p.TarBin != "" {
		return p.TarBin
	}
	return "tar"
}

func (p *Pipeline) scons() string {
	if p.SconsBin != "" {
		return p.SconsBin
	}
	return "scons"
}

func (p *Pipeline) auditLog(ev audit.Event) {
	if p.Audit != nil {
		_ = p.Audit.Log(ev)
	}
}

// Install makes v the active version, downloading (or building from
// source when buildFlags is non-empty) first if it is not installed
// yet. Installing the already-active version is a reported no-op.
func (p *Pipeline) Install(ctx context.Context, v version.Version, buildFlags string) error {
	if err := p.Store.EnsureLayout(); err != nil {
		return err
	}
	if active, ok := p.Store.Active(); ok && version.Compare(active, v) == 0 && active.Enterprise == v.Enterprise {
		p.log().Infow("version already active", "version", v.String())
		fmt.Fprintf(p.out(), "%s is already the active version\n", v)
		return nil
	}
	if p.Store.IsInstalled(v) && buildFlags == "" {
		return p.Activate(ctx, v)
	}

	if _, err := exec.LookPath(p.tar()); err != nil {
		return fmt.Errorf("%w: %s", ErrMissingDependency, p.tar())
	}

	firstInstall := !p.Store.IsInstalled(v)
	if firstInstall {
		_, _ = p.Hooks.Fire(ctx, hooks.Pre, hooks.Install, v.String())
	}
	p.auditLog(audit.Event{Operation: "install", Phase: "start", Status: "ok", Message: v.String()})

	var err error
	if buildFlags != "" {
		err = p.sourceInstall(ctx, v, buildFlags)
	} else {
		err = p.binaryInstall(ctx, v)
	}
	if err != nil {
		p.auditLog(audit.Event{Operation: "install", Phase: "abort", Status: "error", Message: err.Error()})
		return err
	}

	if err := p.Activate(ctx, v); err != nil {
		return err
	}
	if firstInstall {
		_, _ = p.Hooks.Fire(ctx, hooks.Post, hooks.Install, v.String())
	}
	p.auditLog(audit.Event{Operation: "install", Phase: "commit", Status: "ok", Message: v.String()})
	return nil
}

// Activate symlinks the installed version's binaries into the execution
// prefix and repoints the current link, wrapped by the change hooks.
func (p *Pipeline) Activate(ctx context.Context, v version.Version) error {
	if !p.Store.IsInstalled(v) {
		return fmt.Errorf("%w: %s", store.ErrNotInstalled, v)
	}
	if err := p.Store.EnsureLayout(); err != nil {
		return err
	}
	_, _ = p.Hooks.Fire(ctx, hooks.Pre, hooks.Change, v.String())

	binDir := p.Store.BinDir(v)
	entries, err := os.ReadDir(binDir)
	if err != nil {
		return err
	}
	prefix := store.BinRoot(p.Store.Root)
	for _, e := range entries {
		src := filepath.Join(binDir, e.Name())
		dst := filepath.Join(prefix, e.Name())
		_ = os.Remove(dst)
		if err := os.Symlink(src, dst); err != nil {
			return fmt.Errorf("INS_LINK: %w", err)
		}
	}
	current := store.CurrentLink(p.Store.Root)
	_ = os.Remove(current)
	if err := os.Symlink(p.Store.Dir(v), current); err != nil {
		return fmt.Errorf("INS_LINK: %w", err)
	}
	p.log().Infow("activated version", "version", v.String())

	_, _ = p.Hooks.Fire(ctx, hooks.Post, hooks.Change, v.String())
	p.auditLog(audit.Event{Operation: "activate", Phase: "commit", Status: "ok", Message: v.String()})
	return nil
}

// binaryInstall locates, downloads and places a binary artifact. When
// no candidate is reachable it offers the source fallback.
func (p *Pipeline) binaryInstall(ctx context.Context, v version.Version) error {
	cand, err := p.Locator.Locate(ctx, v, p.Platform)
	if errors.Is(err, artifact.ErrNoCandidate) {
		if p.Confirm == nil || !p.Confirm(fmt.Sprintf("no binary build of %s for this platform, build from source?", v)) {
			return fmt.Errorf("%w: %s", ErrUnsupportedPlatform, v)
		}
		return p.sourceInstall(ctx, v, "")
	}
	if err != nil {
		return err
	}

	stage := filepath.Join(store.StagingRoot(p.Store.Root), v.String())
	logPath := stage + ".log"
	if err := resetDir(stage); err != nil {
		return err
	}
	defer os.RemoveAll(stage)

	p.log().Infow("downloading artifact", "url", cand.URL)
	if err := p.fetchAndExtract(ctx, cand.URL, stage, logPath); err != nil {
		return err
	}

	extractedBin, err := findExtractedBin(stage)
	if err != nil {
		return fmt.Errorf("%w: truncated archive (log: %s)", ErrDownload, logPath)
	}
	if err := os.MkdirAll(p.Store.Dir(v), 0o755); err != nil {
		return err
	}
	_ = os.RemoveAll(p.Store.BinDir(v))
	if err := os.Rename(extractedBin, p.Store.BinDir(v)); err != nil {
		return fmt.Errorf("INS_PLACE: %w", err)
	}
	_ = os.Remove(logPath)
	return nil
}

// sourceInstall fetches the source tarball and drives the external
// build toolchain with the supplied flags, persisting them verbatim.
// The staging directory outlives extraction until the build completes.
func (p *Pipeline) sourceInstall(ctx context.Context, v version.Version, buildFlags string) error {
	if _, err := exec.LookPath(p.scons()); err != nil {
		return fmt.Errorf("%w: %s", ErrMissingDependency, p.scons())
	}
	stage := filepath.Join(store.StagingRoot(p.Store.Root), v.String()+"-src")
	logPath := stage + ".log"
	if err := resetDir(stage); err != nil {
		return err
	}
	defer os.RemoveAll(stage)

	url := p.Locator.SourceURL(v)
	p.log().Infow("downloading source", "url", url)
	if err := p.fetchAndExtract(ctx, url, stage, logPath); err != nil {
		return err
	}
	srcDir, err := singleSubdir(stage)
	if err != nil {
		return fmt.Errorf("%w: truncated archive (log: %s)", ErrDownload, logPath)
	}

	args := strings.Fields(buildFlags)
	args = append(args, "--prefix="+p.Store.Dir(v), "install")
	p.log().Infow("building from source", "flags", buildFlags)
	cmd := exec.CommandContext(ctx, p.scons(), args...)
	cmd.Dir = srcDir
	if err := runLogged(cmd, logPath); err != nil {
		return fmt.Errorf("%w (log: %s): %v", ErrBuild, logPath, err)
	}
	if !p.Store.IsInstalled(v) {
		return fmt.Errorf("%w: build produced no binaries (log: %s)", ErrBuild, logPath)
	}
	if buildFlags != "" {
		if err := p.Store.WriteBuildConfig(v, buildFlags); err != nil {
			return err
		}
	}
	_ = os.Remove(logPath)
	return nil
}

// fetchAndExtract streams the response body straight into tar so large
// archives never buffer fully in memory. tar output goes to logPath,
// which is preserved on failure.
func (p *Pipeline) fetchAndExtract(ctx context.Context, url, dir, logPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := p.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v (log: %s)", ErrDownload, err, logPath)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d for %s (log: %s)", ErrDownload, resp.StatusCode, url, logPath)
	}

	cmd := exec.CommandContext(ctx, p.tar(), "-xz", "-C", dir)
	cmd.Stdin = resp.Body
	if err := runLogged(cmd, logPath); err != nil {
		return fmt.Errorf("%w: extraction failed for %s (log: %s)", ErrDownload, url, logPath)
	}
	return nil
}

func runLogged(cmd *exec.Cmd, logPath string) error {
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer logFile.Close()
	fmt.Fprintf(logFile, "+ %s\n", strings.Join(cmd.Args, " "))
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	return cmd.Run()
}

func resetDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}

// findExtractedBin locates the bin directory inside an extracted
// archive; only its contents are kept.
func findExtractedBin(stage string) (string, error) {
	if info, err := os.Stat(filepath.Join(stage, "bin")); err == nil && info.IsDir() {
		return filepath.Join(stage, "bin"), nil
	}
	entries, err := os.ReadDir(stage)
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		candidate := filepath.Join(stage, e.Name(), "bin")
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no bin directory under %s", stage)
}

func singleSubdir(stage string) (string, error) {
	entries, err := os.ReadDir(stage)
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		if e.IsDir() {
			return filepath.Join(stage, e.Name()), nil
		}
	}
	return "", fmt.Errorf("no directory under %s", stage)
}
