package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/roomie-match/matchcore/internal/domain"
)

// PostgresStore implements Store against a PostgreSQL database via pgx.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to dsn, applies pending schema migrations,
// and returns a ready Store.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: connect: %w", err)
	}
	s := &PostgresStore{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("store: migrate: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// CommitMatches inserts match history rows and flips the matched
// properties' status in a single transaction.
func (s *PostgresStore) CommitMatches(ctx context.Context, matches []domain.MatchHistoryRow) error {
	if len(matches) == 0 {
		return nil
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, m := range matches {
		_, err := tx.Exec(ctx, `
			INSERT INTO match_history
				(matched_at, user_a, user_b, property_a, property_b,
				 survey_a, survey_b, compatibility_score, a_approval, b_approval, final_match_status)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		`, m.MatchedAt, m.UserA, m.UserB, m.PropA, m.PropB,
			m.SurvA, m.SurvB, m.CompatibilityScore, int(m.AApproval), int(m.BApproval), int(m.FinalMatchStatus))
		if err != nil {
			return fmt.Errorf("store: insert match_history %s/%s: %w", m.UserA, m.UserB, err)
		}

		for _, propertyID := range []int64{m.PropA, m.PropB} {
			_, err := tx.Exec(ctx, `
				UPDATE candidate_properties SET match_status = $1 WHERE property_id = $2
			`, int(domain.MatchStatusMatched), propertyID)
			if err != nil {
				return fmt.Errorf("store: update property %d: %w", propertyID, err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}

func (s *PostgresStore) ExpireProperties(ctx context.Context, propertyIDs []int64) error {
	if len(propertyIDs) == 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx, `
		UPDATE candidate_properties SET match_status = $1 WHERE property_id = ANY($2)
	`, int(domain.MatchStatusExpired), propertyIDs)
	if err != nil {
		return fmt.Errorf("store: expire properties: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListMatchHistory(ctx context.Context, limit int) ([]domain.MatchHistoryRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT match_id, matched_at, user_a, user_b, property_a, property_b,
		       survey_a, survey_b, compatibility_score, a_approval, b_approval, final_match_status
		FROM match_history ORDER BY matched_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: list match history: %w", err)
	}
	defer rows.Close()

	var out []domain.MatchHistoryRow
	for rows.Next() {
		var m domain.MatchHistoryRow
		var aApproval, bApproval, finalStatus int
		if err := rows.Scan(&m.MatchID, &m.MatchedAt, &m.UserA, &m.UserB, &m.PropA, &m.PropB,
			&m.SurvA, &m.SurvB, &m.CompatibilityScore, &aApproval, &bApproval, &finalStatus); err != nil {
			return nil, fmt.Errorf("store: scan match history: %w", err)
		}
		m.AApproval = domain.ApprovalStatus(aApproval)
		m.BApproval = domain.ApprovalStatus(bApproval)
		m.FinalMatchStatus = domain.FinalMatchStatus(finalStatus)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *PostgresStore) PropertyStatus(ctx context.Context, propertyID int64) (domain.MatchStatus, error) {
	var status int
	err := s.pool.QueryRow(ctx, `
		SELECT match_status FROM candidate_properties WHERE property_id = $1
	`, propertyID).Scan(&status)
	if err == pgx.ErrNoRows {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("store: property status %d: %w", propertyID, err)
	}
	return domain.MatchStatus(status), nil
}

var _ Store = (*PostgresStore)(nil)
