// Package artifact builds and probes candidate download URLs for a
// release on a given host, cascading through compatible distribution
// builds before giving up.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"mvm/internal/platform"
	"mvm/internal/version"
)

const (
	// DefaultCommunityBase hosts community tarballs and source archives.
	DefaultCommunityBase = "https://fastdl.mongodb.org"
	// DefaultEnterpriseBase hosts enterprise tarballs.
	DefaultEnterpriseBase = "https://downloads.mongodb.com"

	// enterpriseDefaultTag is probed for enterprise builds when the
	// cascade yields nothing; enterprise never falls through to a
	// generic (untagged) artifact.
	enterpriseDefaultTag = "rhel70"
)

// ErrNoCandidate is returned when every candidate probe failed. Callers
// fall back to a source-tarball installation.
var ErrNoCandidate = errors.New("ART_NO_CANDIDATE: no downloadable artifact for this platform")

// Candidate is one downloadable artifact, in preference order within a
// Locate call.
type Candidate struct {
	URL        string
	DistroTag  string
	Enterprise bool
	SSL        bool // macOS ssl-capable build variant
}

// Locator probes candidate URLs with status checks, first reachable
// wins. The scan is strictly ordered and short-circuiting.
type Locator struct {
	CommunityBase  string
	EnterpriseBase string
	HTTPClient     *http.Client
	Log            *zap.SugaredLogger
}

// NewLocator returns a locator with defaults filled in.
func NewLocator(community, enterprise string, httpClient *http.Client, log *zap.SugaredLogger) *Locator {
	if community == "" {
		community = DefaultCommunityBase
	}
	if enterprise == "" {
		enterprise = DefaultEnterpriseBase
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Locator{CommunityBase: community, EnterpriseBase: enterprise, HTTPClient: httpClient, Log: log}
}

// Locate returns the first reachable candidate for v on p, or
// ErrNoCandidate when the whole cascade (including generic retries) is
// exhausted.
func (l *Locator) Locate(ctx context.Context, v version.Version, p platform.Descriptor) (Candidate, error) {
	cands := l.candidates(v, p)
	if len(cands) == 0 {
		return Candidate{}, fmt.Errorf("%w: %s on %s/%s", ErrNoCandidate, v, p.OS, p.Arch)
	}
	for _, c := range cands {
		l.Log.Debugw("probing artifact", "url", c.URL, "distro_tag", c.DistroTag)
		if l.probe(ctx, c.URL) {
			l.Log.Debugw("artifact reachable", "url", c.URL)
			return c, nil
		}
	}
	return Candidate{}, fmt.Errorf("%w: %s on %s/%s", ErrNoCandidate, v, p.OS, p.Arch)
}

// SourceURL returns the source-tarball location for v, the last-resort
// fallback when no binary artifact exists.
func (l *Locator) SourceURL(v version.Version) string {
	return fmt.Sprintf("%s/src/mongodb-src-r%s.tar.gz", l.CommunityBase, v.Release())
}

// candidates builds the full preference-ordered candidate list:
// distro-tagged builds from the cascade, then the generic build, and
// for macOS the non-ssl generic after an ssl attempt.
func (l *Locator) candidates(v version.Version, p platform.Descriptor) []Candidate {
	if v.Enterprise {
		return l.enterpriseCandidates(v, p)
	}
	switch p.OS {
	case "linux":
		var out []Candidate
		for _, tag := range cascadeFor(p.DistroID, p.DistroMajor()) {
			out = append(out, Candidate{
				URL:       fmt.Sprintf("%s/linux/mongodb-linux-%s-%s-%s.tgz", l.CommunityBase, p.Arch, tag, v.Release()),
				DistroTag: tag,
			})
		}
		out = append(out, Candidate{
			URL: fmt.Sprintf("%s/linux/mongodb-linux-%s-%s.tgz", l.CommunityBase, p.Arch, v.Release()),
		})
		return out
	case "darwin":
		if atLeast(v, 4, 2) {
			return []Candidate{{
				URL: fmt.Sprintf("%s/osx/mongodb-macos-%s-%s.tgz", l.CommunityBase, p.Arch, v.Release()),
			}}
		}
		var out []Candidate
		if atLeast(v, 2, 6) {
			out = append(out, Candidate{
				URL: fmt.Sprintf("%s/osx/mongodb-osx-ssl-%s-%s.tgz", l.CommunityBase, p.Arch, v.Release()),
				SSL: true,
			})
		}
		return append(out, Candidate{
			URL: fmt.Sprintf("%s/osx/mongodb-osx-%s-%s.tgz", l.CommunityBase, p.Arch, v.Release()),
		})
	case "sunos":
		return []Candidate{{
			URL: fmt.Sprintf("%s/sunos5/mongodb-sunos5-%s-%s.tgz", l.CommunityBase, p.Arch, v.Release()),
		}}
	}
	return nil
}

func (l *Locator) enterpriseCandidates(v version.Version, p platform.Descriptor) []Candidate {
	if p.OS == "darwin" {
		return []Candidate{{
			URL:        fmt.Sprintf("%s/osx/mongodb-macos-%s-enterprise-%s.tgz", l.EnterpriseBase, p.Arch, v.Release()),
			Enterprise: true,
		}}
	}
	tags := cascadeFor(p.DistroID, p.DistroMajor())
	if !containsTag(tags, enterpriseDefaultTag) {
		tags = append(tags, enterpriseDefaultTag)
	}
	out := make([]Candidate, 0, len(tags))
	for _, tag := range tags {
		out = append(out, Candidate{
			URL:        fmt.Sprintf("%s/linux/mongodb-linux-%s-enterprise-%s-%s.tgz", l.EnterpriseBase, p.Arch, tag, v.Release()),
			DistroTag:  tag,
			Enterprise: true,
		})
	}
	return out
}

func (l *Locator) probe(ctx context.Context, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false
	}
	resp, err := l.HTTPClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 400
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

func atLeast(v version.Version, major, minor int) bool {
	return v.Major > major || (v.Major == major && v.Minor >= minor)
}
