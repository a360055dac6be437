package model

import "fmt"

// RouteOutcome classifies the result of a route computation. The two
// unreachable outcomes are kept apart because the routers report them
// differently: the time-slot router returns the source alone, the
// link-state router returns an empty path.
type RouteOutcome int

const (
	RouteFound      RouteOutcome = iota // path from source to destination
	RouteTrivial                        // source == destination
	RouteSourceOnly                     // unreachable; path is [source]
	RouteNoPath                         // unreachable; path is empty
)

func (o RouteOutcome) String() string {
	switch o {
	case RouteFound:
		return "found"
	case RouteTrivial:
		return "trivial"
	case RouteSourceOnly:
		return "source_only"
	case RouteNoPath:
		return "no_path"
	default:
		return "unknown"
	}
}

// MarshalText encodes the outcome by name so it can key JSON maps.
func (o RouteOutcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText is the inverse of MarshalText.
func (o *RouteOutcome) UnmarshalText(text []byte) error {
	for _, c := range []RouteOutcome{RouteFound, RouteTrivial, RouteSourceOnly, RouteNoPath} {
		if c.String() == string(text) {
			*o = c
			return nil
		}
	}
	return fmt.Errorf("unknown route outcome %q", text)
}

// RouteResult is a transient route value. Path, when non-empty, starts at
// the requested source.
type RouteResult struct {
	Path    []NodeID
	Outcome RouteOutcome
}

// Usable reports whether the route carries traffic, i.e. has at least one hop.
func (r RouteResult) Usable() bool {
	return len(r.Path) >= 2
}

// Hops returns the number of links traversed, or 0 for unusable routes.
func (r RouteResult) Hops() int {
	if len(r.Path) < 2 {
		return 0
	}
	return len(r.Path) - 1
}
