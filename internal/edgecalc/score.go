package edgecalc

import (
	"math"

	"github.com/roomie-match/matchcore/internal/domain"
)

// directionalScore computes S(u -> v): the weighted, inverse-distance
// average over survey dimensions, from u's point of view (spec §4.1).
// Returns 0 if u's weights sum to zero.
func directionalScore(sU, sV domain.SurveyAnswers, wU domain.SurveyWeights) float64 {
	var weightedSum, weightSum float64
	for k := 0; k < int(domain.SurveyDimensionCount); k++ {
		w := wU[k]
		weightSum += w
		dist := math.Abs(float64(sU[k]) - float64(sV[k]))
		weightedSum += w * (1 - dist/4)
	}
	if weightSum == 0 {
		return 0
	}
	return weightedSum / weightSum
}

// softPenalty computes Policy A's soft-penalty term (spec §4.1): 5 points
// per mismatch in dormBuilding and stayPeriod, plus 5 points for every
// preference violated by the counterparty's has* flags.
func softPenalty(u, v domain.Basic) float64 {
	var penalty float64
	if u.DormBuilding != v.DormBuilding {
		penalty += 5
	}
	if u.StayPeriod != v.StayPeriod {
		penalty += 5
	}
	if preferenceViolated(u.MateFridge, v.HasFridge) {
		penalty += 5
	}
	if preferenceViolated(u.MateRouter, v.HasRouter) {
		penalty += 5
	}
	if preferenceViolated(v.MateFridge, u.HasFridge) {
		penalty += 5
	}
	if preferenceViolated(v.MateRouter, u.HasRouter) {
		penalty += 5
	}
	return penalty
}

// preferenceViolated reports whether pref (held about a counterparty's
// has* flag) is violated by that flag's actual value.
func preferenceViolated(pref domain.Preference, has bool) bool {
	switch pref {
	case domain.PreferencePrefer:
		return !has
	case domain.PreferenceAvoid:
		return has
	default:
		return false
	}
}

// Compatibility computes the symmetric compatibility score C(u,v) in
// [0,100], rounded to two fractional digits, applying Policy A's soft
// penalty when policy is PolicyGenderOnly (spec §4.1).
func Compatibility(policy HardFilterPolicy, uBasic, vBasic domain.Basic,
	uSurvey, vSurvey domain.SurveyAnswers, uWeights, vWeights domain.SurveyWeights) float64 {

	sUV := directionalScore(uSurvey, vSurvey, uWeights)
	sVU := directionalScore(vSurvey, uSurvey, vWeights)
	score := 100 * (sUV + sVU) / 2

	if policy == PolicyGenderOnly {
		score -= softPenalty(uBasic, vBasic)
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return math.Round(score*100) / 100
}
