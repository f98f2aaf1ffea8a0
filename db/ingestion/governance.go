// Package ingestion - Import validation and content checksums
package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"shipquote/core/types"
)

// ValidationResult contains the rules that passed and the rows that did not
type ValidationResult struct {
	Rules  []*types.PricingRule
	Errors []string
}

// Validate enforces one rule per route. The first occurrence of a route
// wins; later rows for the same route are rejected.
func Validate(candidates []Candidate) *ValidationResult {
	result := &ValidationResult{}
	firstSeen := make(map[types.RouteKey]int)

	for _, c := range candidates {
		if line, dup := firstSeen[c.Rule.Route]; dup {
			result.Errors = append(result.Errors, fmt.Sprintf(
				"Row %d: duplicate route %s (%s), first defined on row %d",
				c.Line, c.Rule.Route, c.Rule.Route.PackageType, line))
			continue
		}
		firstSeen[c.Rule.Route] = c.Line
		result.Rules = append(result.Rules, c.Rule)
	}
	return result
}

// CalculateChecksum hashes the rate content of rules independent of their order
func CalculateChecksum(rules []*types.PricingRule) string {
	lines := make([]string, 0, len(rules))
	for _, r := range rules {
		line := fmt.Sprintf("%s|%s|%s|%s|%s", r.Route.From, r.Route.To, r.Route.PackageType,
			r.USD.Base.String(), r.USD.PerKg.String())
		if r.NGN != nil {
			line += fmt.Sprintf("|%s|%s", r.NGN.Base.String(), r.NGN.PerKg.String())
		}
		lines = append(lines, line)
	}
	sort.Strings(lines)

	hasher := sha256.New()
	for _, l := range lines {
		hasher.Write([]byte(l))
		hasher.Write([]byte{'\n'})
	}
	return hex.EncodeToString(hasher.Sum(nil))
}
