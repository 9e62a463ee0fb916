package domain

import "time"

// ApprovalStatus is the tri-state approval for one side of a match.
// The core only ever writes ApprovalPending; subsequent transitions are
// owned by the external user-action service.
type ApprovalStatus int

const (
	ApprovalPending ApprovalStatus = iota
	ApprovalApproved
	ApprovalRejected
)

// FinalMatchStatus is the overall lifecycle status of a MatchHistory row.
// The core only ever writes FinalStatusPending.
type FinalMatchStatus int

const (
	FinalStatusPending FinalMatchStatus = iota
	FinalStatusSuccess
	FinalStatusFailed
)

// MatchHistoryRow is a durable row in the relational store (spec §3). It is
// append-only from the core's perspective: the Scheduler inserts it with
// both approvals pending, and never updates it afterward.
type MatchHistoryRow struct {
	MatchID             int64
	MatchedAt           time.Time
	UserA               UserID
	UserB               UserID
	PropA               int64
	PropB               int64
	SurvA               int64
	SurvB               int64
	CompatibilityScore  float64
	AApproval           ApprovalStatus
	BApproval           ApprovalStatus
	FinalMatchStatus    FinalMatchStatus
}

// NewPendingMatch builds the row the Scheduler inserts for a committed pair.
func NewPendingMatch(edge Edge, entryA, entryB QueueEntry, matchedAt time.Time) MatchHistoryRow {
	return MatchHistoryRow{
		MatchedAt:          matchedAt,
		UserA:              entryA.UserID,
		UserB:              entryB.UserID,
		PropA:              entryA.PropertyID,
		PropB:              entryB.PropertyID,
		SurvA:              entryA.SurveyID,
		SurvB:              entryB.SurveyID,
		CompatibilityScore: edge.Score,
		AApproval:          ApprovalPending,
		BApproval:          ApprovalPending,
		FinalMatchStatus:   FinalStatusPending,
	}
}
