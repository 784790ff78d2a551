package database

import (
	"context"
	"database/sql"
	"fmt"

	"teacher_referral_bot/internal/domain/referral"
)

type PostgresReferralRepository struct {
	db *sql.DB
}

func NewPostgresReferralRepository(db *sql.DB) *PostgresReferralRepository {
	return &PostgresReferralRepository{db: db}
}

// CreateEdge relies on the unique constraint on referee_id: concurrent
// duplicate attempts collapse into a single edge and every caller learns
// whether its own insert won.
func (r *PostgresReferralRepository) CreateEdge(ctx context.Context, referrerID, refereeID int64) (bool, error) {
	query := `INSERT INTO referral_edges (referrer_id, referee_id)
               VALUES ($1, $2)
               ON CONFLICT (referee_id) DO NOTHING`

	res, err := r.db.ExecContext(ctx, query, referrerID, refereeID)
	if err != nil {
		return false, fmt.Errorf("error creating referral edge: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("error checking referral edge insert: %w", err)
	}
	return n == 1, nil
}

func (r *PostgresReferralRepository) ListEdgesByReferee(ctx context.Context, refereeID int64) ([]*referral.Edge, error) {
	query := `SELECT id, referrer_id, referee_id, points_awarded, created_at
               FROM referral_edges WHERE referee_id = $1`

	rows, err := r.db.QueryContext(ctx, query, refereeID)
	if err != nil {
		return nil, fmt.Errorf("error listing referral edges: %w", err)
	}
	defer rows.Close()

	edges := make([]*referral.Edge, 0)
	for rows.Next() {
		e := &referral.Edge{}
		if err := rows.Scan(&e.ID, &e.ReferrerID, &e.RefereeID, &e.PointsAwarded, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning referral edge: %w", err)
		}
		edges = append(edges, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating referral edges: %w", err)
	}
	return edges, nil
}

// AwardPoint claims the edge and bumps the balance in one transaction. The
// guarded UPDATE is the idempotency barrier: a second confirmation of the
// same referee finds points_awarded already TRUE and the transaction rolls
// back without touching the balance.
func (r *PostgresReferralRepository) AwardPoint(ctx context.Context, edgeID, referrerID int64) (bool, int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, 0, fmt.Errorf("error starting award transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE referral_edges SET points_awarded = TRUE WHERE id = $1 AND NOT points_awarded`, edgeID)
	if err != nil {
		return false, 0, fmt.Errorf("error claiming referral edge: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, 0, fmt.Errorf("error checking referral edge claim: %w", err)
	}
	if n == 0 {
		return false, 0, nil // already awarded
	}

	var total int
	err = tx.QueryRowContext(ctx,
		`INSERT INTO point_balances (account_id, points) VALUES ($1, 1)
               ON CONFLICT (account_id) DO UPDATE SET points = point_balances.points + 1
               RETURNING points`, referrerID).Scan(&total)
	if err != nil {
		return false, 0, fmt.Errorf("error incrementing point balance: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, 0, fmt.Errorf("error committing point award: %w", err)
	}
	return true, total, nil
}

func (r *PostgresReferralRepository) Points(ctx context.Context, accountID int64) (int, error) {
	var points int
	err := r.db.QueryRowContext(ctx,
		`SELECT points FROM point_balances WHERE account_id = $1`, accountID).Scan(&points)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("error getting point balance: %w", err)
	}
	return points, nil
}

func (r *PostgresReferralRepository) ClaimLinkIssuance(ctx context.Context, accountID int64) (bool, error) {
	query := `INSERT INTO link_issuances (account_id, issued)
               VALUES ($1, TRUE)
               ON CONFLICT (account_id) DO NOTHING`

	res, err := r.db.ExecContext(ctx, query, accountID)
	if err != nil {
		return false, fmt.Errorf("error claiming link issuance: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("error checking link issuance claim: %w", err)
	}
	return n == 1, nil
}

func (r *PostgresReferralRepository) LinksIssued(ctx context.Context, accountID int64) (bool, error) {
	var issued bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM link_issuances WHERE account_id = $1 AND issued)`, accountID).Scan(&issued)
	if err != nil {
		return false, fmt.Errorf("error checking link issuance: %w", err)
	}
	return issued, nil
}

func (r *PostgresReferralRepository) CountConfirmedByReferrer(ctx context.Context, referrerID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM referral_edges e
               JOIN teachers t ON t.account_id = e.referee_id AND t.is_confirmed
               WHERE e.referrer_id = $1`, referrerID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting confirmed referrals: %w", err)
	}
	return count, nil
}

func (r *PostgresReferralRepository) ConfirmedByReferrerPerRegion(ctx context.Context, referrerID int64) ([]referral.GroupCount, error) {
	query := `SELECT rg.name, COUNT(*) FROM referral_edges e
               JOIN teachers t ON t.account_id = e.referee_id AND t.is_confirmed
               JOIN regions rg ON rg.id = t.region_id
               WHERE e.referrer_id = $1
               GROUP BY rg.name ORDER BY COUNT(*) DESC`
	return r.queryGroupCounts(ctx, query, referrerID)
}

func (r *PostgresReferralRepository) ConfirmedByReferrerPerDistrict(ctx context.Context, referrerID int64) ([]referral.GroupCount, error) {
	query := `SELECT d.name, COUNT(*) FROM referral_edges e
               JOIN teachers t ON t.account_id = e.referee_id AND t.is_confirmed
               JOIN districts d ON d.id = t.district_id
               WHERE e.referrer_id = $1
               GROUP BY d.name ORDER BY COUNT(*) DESC`
	return r.queryGroupCounts(ctx, query, referrerID)
}

func (r *PostgresReferralRepository) TotalStats(ctx context.Context) (*referral.Stats, error) {
	stats := &referral.Stats{}

	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM referral_edges e
               JOIN teachers t ON t.account_id = e.referee_id AND t.is_confirmed`).Scan(&stats.Total)
	if err != nil {
		return nil, fmt.Errorf("error counting total confirmed referrals: %w", err)
	}

	stats.ByRegion, err = r.queryGroupCounts(ctx,
		`SELECT rg.name, COUNT(*) FROM referral_edges e
               JOIN teachers t ON t.account_id = e.referee_id AND t.is_confirmed
               JOIN regions rg ON rg.id = t.region_id
               GROUP BY rg.name ORDER BY COUNT(*) DESC`)
	if err != nil {
		return nil, err
	}

	stats.ByDistrict, err = r.queryGroupCounts(ctx,
		`SELECT d.name, COUNT(*) FROM referral_edges e
               JOIN teachers t ON t.account_id = e.referee_id AND t.is_confirmed
               JOIN districts d ON d.id = t.district_id
               GROUP BY d.name ORDER BY COUNT(*) DESC`)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *PostgresReferralRepository) queryGroupCounts(ctx context.Context, query string, args ...any) ([]referral.GroupCount, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying referral rollup: %w", err)
	}
	defer rows.Close()

	counts := make([]referral.GroupCount, 0)
	for rows.Next() {
		var gc referral.GroupCount
		if err := rows.Scan(&gc.Name, &gc.Count); err != nil {
			return nil, fmt.Errorf("error scanning referral rollup: %w", err)
		}
		counts = append(counts, gc)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating referral rollup: %w", err)
	}
	return counts, nil
}
