package store

import (
	"context"
	"testing"
	"time"

	"github.com/roomie-match/matchcore/internal/domain"
)

func sampleMatch(matchedAt time.Time) domain.MatchHistoryRow {
	return domain.MatchHistoryRow{
		MatchedAt:          matchedAt,
		UserA:              "u1",
		UserB:              "u2",
		PropA:              1,
		PropB:              2,
		SurvA:              10,
		SurvB:              20,
		CompatibilityScore: 88.5,
	}
}

func TestFakeStore_CommitMatches(t *testing.T) {
	ctx := context.Background()
	s := NewFakeStore(map[int64]domain.MatchStatus{
		1: domain.MatchStatusWaiting,
		2: domain.MatchStatusWaiting,
	})

	m := sampleMatch(time.Now())
	if err := s.CommitMatches(ctx, []domain.MatchHistoryRow{m}); err != nil {
		t.Fatal(err)
	}

	status, err := s.PropertyStatus(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if status != domain.MatchStatusMatched {
		t.Errorf("property 1 status = %v, want MatchStatusMatched", status)
	}

	rows, err := s.ListMatchHistory(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].UserA != "u1" {
		t.Errorf("unexpected rows: %+v", rows)
	}
}

func TestFakeStore_ExpireProperties(t *testing.T) {
	ctx := context.Background()
	s := NewFakeStore(map[int64]domain.MatchStatus{1: domain.MatchStatusWaiting})

	if err := s.ExpireProperties(ctx, []int64{1}); err != nil {
		t.Fatal(err)
	}
	status, err := s.PropertyStatus(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if status != domain.MatchStatusExpired {
		t.Errorf("property 1 status = %v, want MatchStatusExpired", status)
	}
}

func TestFakeStore_PropertyStatusNotFound(t *testing.T) {
	s := NewFakeStore(nil)
	if _, err := s.PropertyStatus(context.Background(), 999); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFakeStore_ListMatchHistoryOrderAndLimit(t *testing.T) {
	ctx := context.Background()
	s := NewFakeStore(nil)
	base := time.Now()
	older := sampleMatch(base)
	older.UserA = "older"
	newer := sampleMatch(base.Add(time.Minute))
	newer.UserA = "newer"
	s.CommitMatches(ctx, []domain.MatchHistoryRow{older})
	s.CommitMatches(ctx, []domain.MatchHistoryRow{newer})

	rows, err := s.ListMatchHistory(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].UserA != "newer" {
		t.Errorf("expected newest row first, got %+v", rows)
	}
}
