package pricing

import (
	"context"
	"sort"

	"shipquote/core/types"
	apperrors "shipquote/internal/errors"
)

// Options lists the countries and package types the calculator offers.
// Countries are every origin and destination with a rule; package types
// are the stored categories plus the predefined ones.
func (r *Resolver) Options(ctx context.Context, predefined []string) (*types.RouteOptions, error) {
	routes, err := r.store.ListRoutes(ctx)
	if err != nil {
		return nil, apperrors.Internal("listing pricing routes failed", err)
	}

	countries := make(map[string]struct{})
	packages := make(map[string]struct{})
	for _, p := range predefined {
		packages[p] = struct{}{}
	}
	for _, route := range routes {
		countries[route.From] = struct{}{}
		countries[route.To] = struct{}{}
		packages[route.PackageType] = struct{}{}
	}

	return &types.RouteOptions{
		Countries:    sortedKeys(countries),
		PackageTypes: sortedKeys(packages),
	}, nil
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
