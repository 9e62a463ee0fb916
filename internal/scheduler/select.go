package scheduler

import (
	"sort"

	"github.com/roomie-match/matchcore/internal/domain"
)

// CandidateEdge pairs an Edge with the priorities of its two endpoints at
// snapshot time, the inputs to the sort key (spec §4.2 step 4).
type CandidateEdge struct {
	Edge      domain.Edge
	PriorityA int
	PriorityB int
}

// sortCandidates stable-sorts by (priorityA+priorityB, score) descending,
// tie-broken by canonical (userA, userB) ascending for determinism.
func sortCandidates(candidates []CandidateEdge) {
	sort.SliceStable(candidates, func(i, j int) bool {
		ci, cj := candidates[i], candidates[j]
		sumI := ci.PriorityA + ci.PriorityB
		sumJ := cj.PriorityA + cj.PriorityB
		if sumI != sumJ {
			return sumI > sumJ
		}
		if ci.Edge.Score != cj.Edge.Score {
			return ci.Edge.Score > cj.Edge.Score
		}
		if ci.Edge.UserA != cj.Edge.UserA {
			return ci.Edge.UserA < cj.Edge.UserA
		}
		return ci.Edge.UserB < cj.Edge.UserB
	})
}

// greedySelect scans sorted candidates once, admitting an edge iff neither
// endpoint has already been claimed by an earlier (higher-ranked) edge in
// this pass (spec §4.2 step 5).
func greedySelect(candidates []CandidateEdge) []domain.Edge {
	paired := make(map[domain.UserID]bool, len(candidates)*2)
	var selected []domain.Edge
	for _, c := range candidates {
		a, b := c.Edge.Endpoints()
		if paired[a] || paired[b] {
			continue
		}
		paired[a] = true
		paired[b] = true
		selected = append(selected, c.Edge)
	}
	return selected
}

// SelectPairs admits candidates meeting matchThreshold (or, if
// bypassEnabled, whose max endpoint priority is at least priorityBypass),
// sorts them, and returns the greedy pairing (spec §4.2 steps 3-5).
func SelectPairs(candidates []CandidateEdge, matchThreshold float64, bypassEnabled bool, priorityBypass int) []domain.Edge {
	var admitted []CandidateEdge
	for _, c := range candidates {
		if c.Edge.Score >= matchThreshold {
			admitted = append(admitted, c)
			continue
		}
		if bypassEnabled {
			maxPriority := c.PriorityA
			if c.PriorityB > maxPriority {
				maxPriority = c.PriorityB
			}
			if maxPriority >= priorityBypass {
				admitted = append(admitted, c)
			}
		}
	}
	sortCandidates(admitted)
	return greedySelect(admitted)
}
