// Package resolver turns symbolic version specs into concrete versions
// against either the remote catalog or the local store.
package resolver

import (
	"context"
	"errors"
	"fmt"

	"mvm/internal/version"
)

// ErrNoMatch is returned when a spec matches nothing in its scope.
var ErrNoMatch = errors.New("RES_NO_MATCH: no version matches spec")

// Scope selects where candidate versions are enumerated from.
type Scope int

const (
	// Remote enumerates the published catalog.
	Remote Scope = iota
	// Local enumerates installed versions and never touches the
	// network; execution commands resolve in this scope.
	Local
)

// CatalogLister is the remote version source.
type CatalogLister interface {
	Versions(ctx context.Context) ([]version.Version, error)
}

// LocalLister is the installed-version source.
type LocalLister interface {
	Versions() ([]version.Version, error)
}

// Resolver applies spec semantics over a candidate set.
type Resolver struct {
	Catalog CatalogLister
	Store   LocalLister
}

// Resolve returns the concrete version a spec denotes in the given
// scope. Exact specs pass through normalized without enumeration.
func (r *Resolver) Resolve(ctx context.Context, sp version.Spec, scope Scope) (version.Version, error) {
	if sp.Kind == version.KindExact {
		return sp.Exact, nil
	}
	candidates, err := r.enumerate(ctx, scope)
	if err != nil {
		return version.Version{}, err
	}
	var filtered []version.Version
	switch sp.Kind {
	case version.KindSeries:
		for _, v := range candidates {
			if v.InSeries(sp.Major, sp.Minor) && !v.IsPrerelease() {
				filtered = append(filtered, v)
			}
		}
	case version.KindLatest:
		filtered = candidates
	case version.KindStable:
		// Only even minors are stable release lines.
		for _, v := range candidates {
			if v.Minor%2 == 0 && !v.IsPrerelease() {
				filtered = append(filtered, v)
			}
		}
	}
	best, ok := version.Max(filtered)
	if !ok {
		return version.Version{}, fmt.Errorf("%w: %s", ErrNoMatch, sp)
	}
	best.Enterprise = sp.Enterprise
	return best, nil
}

func (r *Resolver) enumerate(ctx context.Context, scope Scope) ([]version.Version, error) {
	if scope == Local {
		if r.Store == nil {
			return nil, fmt.Errorf("RES_SCOPE: no local store configured")
		}
		return r.Store.Versions()
	}
	if r.Catalog == nil {
		return nil, fmt.Errorf("RES_SCOPE: no catalog configured")
	}
	return r.Catalog.Versions(ctx)
}
