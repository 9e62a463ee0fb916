package domain

// Gender is a hard-filter attribute; gender equality is always required
// regardless of hard-filter policy (spec §4.1).
type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
)

// DormBuilding is a fixed enum of dorm buildings available to candidates.
// The production set is deployment-specific; callers validate membership
// against the configured enum rather than this package enumerating it.
type DormBuilding string

// StayPeriod is the candidate's intended stay length bucket.
type StayPeriod int

const (
	StayPeriodShort StayPeriod = iota + 1
	StayPeriodMedium
	StayPeriodLong
)

// Preference expresses how strongly a candidate cares about a mate's
// fridge/router ownership.
type Preference int

const (
	PreferenceDontCare Preference = iota
	PreferencePrefer
	PreferenceAvoid
)

// Basic holds the hard/soft attributes used by the hard filter and the
// soft-penalty scoring term (spec §3, §4.1).
type Basic struct {
	Gender       Gender
	DormBuilding DormBuilding
	StayPeriod   StayPeriod
	IsSmoker     bool
	HasFridge    bool
	HasRouter    bool
	MateFridge   Preference
	MateRouter   Preference
}
