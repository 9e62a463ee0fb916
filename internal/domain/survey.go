// Package domain holds the closed, struct-based representation of the
// matching pipeline's data model: queue entries, edges, and the durable
// match-history / candidate-property rows.
package domain

import "fmt"

// SurveyDimension identifies one of the fixed survey/weight keys.
// The source system carried these as a dynamic dict with a "same key set"
// invariant; here the invariant is structural — SurveyAnswers and
// SurveyWeights are both fixed-size arrays indexed by SurveyDimension, so
// they cannot disagree on keys.
type SurveyDimension uint8

const (
	DimSleepSchedule SurveyDimension = iota
	DimCleanliness
	DimNoiseTolerance
	DimGuestFrequency
	DimStudyHabits
	DimSocialLevel
	DimCookingFrequency
	DimShareFood
	DimTemperaturePreference
	DimConflictStyle
	DimAlcoholUse
	DimPetTolerance
	DimMusicVolume
	DimWorkSchedule
	DimSharedChores
	DimPersonalSpace
	DimCommunicationStyle
	DimSmokingTolerance
	DimOvernightGuests

	// SurveyDimensionCount is the number of fixed survey dimensions (19, per spec).
	SurveyDimensionCount
)

var surveyDimensionNames = [SurveyDimensionCount]string{
	"sleep_schedule",
	"cleanliness",
	"noise_tolerance",
	"guest_frequency",
	"study_habits",
	"social_level",
	"cooking_frequency",
	"share_food",
	"temperature_preference",
	"conflict_style",
	"alcohol_use",
	"pet_tolerance",
	"music_volume",
	"work_schedule",
	"shared_chores",
	"personal_space",
	"communication_style",
	"smoking_tolerance",
	"overnight_guests",
}

// String returns the wire/config name for the dimension.
func (d SurveyDimension) String() string {
	if int(d) < 0 || int(d) >= int(SurveyDimensionCount) {
		return fmt.Sprintf("SurveyDimension(%d)", d)
	}
	return surveyDimensionNames[d]
}

// SurveyAnswers holds a candidate's 1..5 scale answer for every dimension.
type SurveyAnswers [SurveyDimensionCount]uint8

// SurveyWeights holds a candidate's weight for every dimension. Weights are
// drawn from a fixed small set (e.g. {0.5, 1.0, 1.5}) but are stored as
// float64 — validation, not the type, enforces the set membership.
type SurveyWeights [SurveyDimensionCount]float64

// AllowedWeights is the fixed small set of legal weight values.
var AllowedWeights = []float64{0.5, 1.0, 1.5}

// ValidateSurvey checks answers are in 1..5 and weights are drawn from
// AllowedWeights. A malformed survey is a DataFormatError at the ingress
// boundary (spec §7): the caller skips the entry for this tick rather than
// marking it processed.
func ValidateSurvey(answers SurveyAnswers, weights SurveyWeights) error {
	for i := range answers {
		if answers[i] < 1 || answers[i] > 5 {
			d := SurveyDimension(i)
			return fmt.Errorf("survey dimension %s: answer %d out of range [1,5]", d, answers[i])
		}
	}
	for i := range weights {
		if !weightAllowed(weights[i]) {
			d := SurveyDimension(i)
			return fmt.Errorf("survey dimension %s: weight %v not in allowed set %v", d, weights[i], AllowedWeights)
		}
	}
	return nil
}

func weightAllowed(w float64) bool {
	for _, allowed := range AllowedWeights {
		if w == allowed {
			return true
		}
	}
	return false
}
