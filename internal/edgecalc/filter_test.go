package edgecalc

import (
	"testing"

	"github.com/roomie-match/matchcore/internal/domain"
)

func TestPassesHardFilter_GenderOnly(t *testing.T) {
	u := domain.Basic{Gender: domain.GenderMale, DormBuilding: "G", StayPeriod: domain.StayPeriodShort, IsSmoker: true}
	v := domain.Basic{Gender: domain.GenderMale, DormBuilding: "H", StayPeriod: domain.StayPeriodLong, IsSmoker: false}

	if !PassesHardFilter(PolicyGenderOnly, u, v) {
		t.Error("PolicyGenderOnly should only require gender equality")
	}
}

func TestPassesHardFilter_GenderMismatchAlwaysRejects(t *testing.T) {
	u := domain.Basic{Gender: domain.GenderMale}
	v := domain.Basic{Gender: domain.GenderFemale}

	if PassesHardFilter(PolicyGenderOnly, u, v) {
		t.Error("gender mismatch should reject under PolicyGenderOnly")
	}
	if PassesHardFilter(PolicyStrictSmoker, u, v) {
		t.Error("gender mismatch should reject under PolicyStrictSmoker")
	}
	if PassesHardFilter(PolicyStrictFull, u, v) {
		t.Error("gender mismatch should reject under PolicyStrictFull")
	}
}

func TestPassesHardFilter_StrictSmoker(t *testing.T) {
	base := domain.Basic{Gender: domain.GenderMale, DormBuilding: "G", StayPeriod: domain.StayPeriodShort, IsSmoker: true}
	identical := base
	if !PassesHardFilter(PolicyStrictSmoker, base, identical) {
		t.Error("identical records should pass PolicyStrictSmoker")
	}

	mismatchSmoker := base
	mismatchSmoker.IsSmoker = false
	if PassesHardFilter(PolicyStrictSmoker, base, mismatchSmoker) {
		t.Error("smoker mismatch should reject under PolicyStrictSmoker")
	}

	mismatchDorm := base
	mismatchDorm.DormBuilding = "H"
	if !PassesHardFilter(PolicyStrictSmoker, base, mismatchDorm) {
		t.Error("dorm mismatch alone should still pass under PolicyStrictSmoker")
	}
}

func TestPassesHardFilter_StrictFull(t *testing.T) {
	base := domain.Basic{Gender: domain.GenderMale, DormBuilding: "G", StayPeriod: domain.StayPeriodShort, IsSmoker: true}
	identical := base
	if !PassesHardFilter(PolicyStrictFull, base, identical) {
		t.Error("identical records should pass PolicyStrictFull")
	}

	mismatchDorm := base
	mismatchDorm.DormBuilding = "H"
	if PassesHardFilter(PolicyStrictFull, base, mismatchDorm) {
		t.Error("dorm mismatch should reject under PolicyStrictFull")
	}

	mismatchStay := base
	mismatchStay.StayPeriod = domain.StayPeriodLong
	if PassesHardFilter(PolicyStrictFull, base, mismatchStay) {
		t.Error("stay period mismatch should reject under PolicyStrictFull")
	}

	mismatchSmoker := base
	mismatchSmoker.IsSmoker = false
	if !PassesHardFilter(PolicyStrictFull, base, mismatchSmoker) {
		t.Error("smoker mismatch alone should still pass under PolicyStrictFull")
	}
}
