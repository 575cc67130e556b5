package store

import (
	"context"
	"sort"
)

// Check reports whether one backing store is reachable.
type Check func(ctx context.Context) error

// Probe runs every check and returns a per-store status ("ok" or "down")
// plus whether all of them passed.
func Probe(ctx context.Context, checks map[string]Check) (map[string]string, bool) {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := make(map[string]string, len(checks))
	healthy := true
	for _, name := range names {
		if err := checks[name](ctx); err != nil {
			status[name] = "down"
			healthy = false
			continue
		}
		status[name] = "ok"
	}
	return status, healthy
}
