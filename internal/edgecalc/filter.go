// Package edgecalc implements the incremental compatibility-edge worker
// (spec §4.1): hard-filter gating, weighted directional scoring, and the
// poll loop that keeps the edge cache in sync with the queue.
package edgecalc

import "github.com/roomie-match/matchcore/internal/domain"

// HardFilterPolicy selects the eligibility gate applied before scoring.
type HardFilterPolicy string

const (
	// PolicyGenderOnly requires only gender equality; all other mismatches
	// are priced as scoring penalties. This is the default (spec §4.1).
	PolicyGenderOnly HardFilterPolicy = "gender_only"

	// PolicyStrictSmoker additionally requires isSmoker equality (Policy B,
	// sub-variant 1).
	PolicyStrictSmoker HardFilterPolicy = "strict_smoker"

	// PolicyStrictFull additionally requires equality of dormBuilding and
	// stayPeriod (Policy B, sub-variant 2 — the "full" gate set of
	// gender+dormBuilding+stayPeriod; gender is already required under
	// every policy).
	PolicyStrictFull HardFilterPolicy = "strict_full"
)

// PassesHardFilter reports whether u and v are eligible for scoring under
// policy. Gender equality is required under every policy.
func PassesHardFilter(policy HardFilterPolicy, u, v domain.Basic) bool {
	if u.Gender != v.Gender {
		return false
	}
	switch policy {
	case PolicyStrictSmoker:
		if u.IsSmoker != v.IsSmoker {
			return false
		}
	case PolicyStrictFull:
		if u.DormBuilding != v.DormBuilding {
			return false
		}
		if u.StayPeriod != v.StayPeriod {
			return false
		}
	}
	return true
}
