// Package app wires the components together behind the CLI.
package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"mvm/internal/artifact"
	"mvm/internal/audit"
	"mvm/internal/catalog"
	"mvm/internal/config"
	"mvm/internal/doctor"
	"mvm/internal/hooks"
	"mvm/internal/installer"
	"mvm/internal/logger"
	"mvm/internal/platform"
	"mvm/internal/resolver"
	"mvm/internal/store"
	"mvm/internal/version"
)

// Options configures Service construction.
type Options struct {
	ConfigPath string
	LogLevel   string
	// Confirm answers yes/no prompts (active-version removal, source
	// fallback). Nil declines everything.
	Confirm func(prompt string) bool
	// Out receives user-facing progress lines; defaults to stdout.
	Out io.Writer
}

// Service is the façade the CLI talks to.
type Service struct {
	Config   config.Config
	Root     string
	Log      *zap.SugaredLogger
	Store    *store.Store
	Resolver *resolver.Resolver
	Locator  *artifact.Locator
	Hooks    *hooks.Registry
	Pipeline *installer.Pipeline
	Platform platform.Descriptor
	Confirm  func(prompt string) bool
}

// New loads configuration, detects the platform and wires everything.
func New(opts Options) (*Service, error) {
	cfg, err := config.Ensure(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	root, err := config.ResolveRoot(cfg)
	if err != nil {
		return nil, err
	}
	level := cfg.Logging.Level
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	log := logger.New(level)

	desc, err := platform.Detect(context.Background())
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{Timeout: time.Duration(cfg.Downloads.TimeoutSeconds) * time.Second}
	st := &store.Store{Root: root}
	cat := catalog.New(cfg.Downloads.CatalogURL, httpClient)
	loc := artifact.NewLocator(cfg.Downloads.CommunityBase, cfg.Downloads.EnterpriseBase, httpClient, log)
	reg := hooks.New(root, log)

	svc := &Service{
		Config:   cfg,
		Root:     root,
		Log:      log,
		Store:    st,
		Resolver: &resolver.Resolver{Catalog: cat, Store: st},
		Locator:  loc,
		Hooks:    reg,
		Platform: desc,
		Confirm:  opts.Confirm,
	}
	svc.Pipeline = &installer.Pipeline{
		Store:      st,
		Locator:    loc,
		Hooks:      reg,
		Audit:      audit.New(store.AuditPath(root)),
		Platform:   desc,
		HTTPClient: httpClient,
		Log:        log,
		Confirm:    opts.Confirm,
		Out:        opts.Out,
	}
	return svc, nil
}

// Resolve turns a raw spec into a concrete version in the given scope.
func (s *Service) Resolve(ctx context.Context, raw string, scope resolver.Scope) (version.Version, error) {
	sp, err := version.ParseSpec(raw)
	if err != nil {
		return version.Version{}, err
	}
	return s.Resolver.Resolve(ctx, sp, scope)
}

// Install resolves raw remotely and drives the pipeline. buildFlags
// forces a source build.
func (s *Service) Install(ctx context.Context, raw, buildFlags string) (version.Version, error) {
	v, err := s.Resolve(ctx, raw, resolver.Remote)
	if err != nil {
		return version.Version{}, err
	}
	return v, s.Pipeline.Install(ctx, v, buildFlags)
}

// Available lists the remote catalog.
func (s *Service) Available(ctx context.Context) ([]version.Version, error) {
	return s.Resolver.Catalog.Versions(ctx)
}

// Installed lists local versions sorted by version order.
func (s *Service) Installed() ([]store.Installed, error) {
	return s.Store.List()
}

// Active reports the currently linked version, if any.
func (s *Service) Active() (version.Version, bool) {
	return s.Store.Active()
}

// Remove deletes the named versions, resolving each against the local
// store only. Removing the active version asks Confirm; a declined or
// unconfirmable removal is skipped with a warning, not an error.
func (s *Service) Remove(ctx context.Context, raw []string) ([]version.Version, error) {
	var removed []version.Version
	for _, r := range raw {
		v, err := s.Resolve(ctx, r, resolver.Local)
		if err != nil {
			return removed, err
		}
		ok, err := s.Store.Remove(v, s.Confirm)
		if err != nil {
			return removed, err
		}
		if !ok {
			s.Log.Warnw("skipped removal of active version", "version", v.String())
			continue
		}
		removed = append(removed, v)
	}
	return removed, nil
}

// BinDir returns the bin directory of an installed version.
func (s *Service) BinDir(ctx context.Context, raw string) (string, error) {
	v, err := s.Resolve(ctx, raw, resolver.Local)
	if err != nil {
		return "", err
	}
	if !s.Store.IsInstalled(v) {
		return "", fmt.Errorf("%w: %s", store.ErrNotInstalled, v)
	}
	return s.Store.BinDir(v), nil
}

// Exec runs an installed version's binary with args, inheriting stdio.
// The version resolves locally; execution commands never hit the
// network.
func (s *Service) Exec(ctx context.Context, binName, raw string, args []string) error {
	binDir, err := s.BinDir(ctx, raw)
	if err != nil {
		return err
	}
	bin := filepath.Join(binDir, binName)
	if _, err := os.Stat(bin); err != nil {
		return fmt.Errorf("%w: %s has no %s binary", store.ErrNotInstalled, raw, binName)
	}
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// SourceURL prints where the source tarball for raw lives. The spec
// resolves remotely since the version need not be installed.
func (s *Service) SourceURL(ctx context.Context, raw string) (string, error) {
	v, err := s.Resolve(ctx, raw, resolver.Remote)
	if err != nil {
		return "", err
	}
	return s.Locator.SourceURL(v), nil
}

// Doctor runs environment diagnostics.
func (s *Service) Doctor() doctor.Report {
	return (&doctor.Service{Store: s.Store}).Run()
}
