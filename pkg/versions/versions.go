// Package versions orders module version strings and selects the best match
// for a Terraform-style version constraint.
package versions

import (
	"sort"

	mm "github.com/Masterminds/semver/v3"
	goversion "github.com/hashicorp/go-version"
)

// Latest is the constraint (and degraded fallback) meaning "newest available".
const Latest = "latest"

// OrderDescending returns the given version strings sorted newest-first.
// Strings that do not parse as semantic versions are dropped. Equal versions
// keep their input order.
func OrderDescending(raw []string) []string {
	type candidate struct {
		s string
		v *mm.Version
	}
	candidates := make([]candidate, 0, len(raw))
	for _, s := range raw {
		v, err := mm.NewVersion(s)
		if err != nil {
			continue
		}
		candidates = append(candidates, candidate{s: s, v: v})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].v.GreaterThan(candidates[j].v)
	})
	ordered := make([]string, len(candidates))
	for i, c := range candidates {
		ordered[i] = c.s
	}
	return ordered
}

// BestMatch selects the newest version from a descending-ordered list that
// satisfies every clause of the constraint expression. An empty or "latest"
// constraint selects the first entry. When no version satisfies the
// constraint, the literal "latest" is returned as a degraded result; callers
// that need strict satisfaction must re-check the returned version.
func BestMatch(ordered []string, constraint string) string {
	if len(ordered) == 0 {
		return Latest
	}
	if constraint == "" || constraint == Latest {
		return ordered[0]
	}
	clauses, err := goversion.NewConstraint(constraint)
	if err != nil {
		return Latest
	}
	for _, s := range ordered {
		v, err := goversion.NewVersion(s)
		if err != nil {
			continue
		}
		if clauses.Check(v) {
			return s
		}
	}
	return Latest
}
