package referral

import (
	"context"
)

// Repository defines the referral ledger's persistence surface. Every
// mutating operation is an atomic check-and-act: callers never observe a
// read-then-write window between two invocations.
type Repository interface {
	// CreateEdge inserts the edge unless the referee already has one and
	// reports whether this call created it (get-or-create keyed on referee).
	CreateEdge(ctx context.Context, referrerID, refereeID int64) (bool, error)
	ListEdgesByReferee(ctx context.Context, refereeID int64) ([]*Edge, error)

	// AwardPoint marks the edge as awarded and increments the referrer's
	// balance in one transaction. It reports whether this call performed the
	// award and the referrer's balance after it; a previously awarded edge
	// yields (false, 0, nil).
	AwardPoint(ctx context.Context, edgeID, referrerID int64) (awarded bool, total int, err error)
	Points(ctx context.Context, accountID int64) (int, error)

	// ClaimLinkIssuance flips the account's one-time invite-link flag and
	// reports whether this call was the first to claim it.
	ClaimLinkIssuance(ctx context.Context, accountID int64) (bool, error)
	LinksIssued(ctx context.Context, accountID int64) (bool, error)

	// Read-only rollups over confirmed referees.
	CountConfirmedByReferrer(ctx context.Context, referrerID int64) (int, error)
	ConfirmedByReferrerPerRegion(ctx context.Context, referrerID int64) ([]GroupCount, error)
	ConfirmedByReferrerPerDistrict(ctx context.Context, referrerID int64) ([]GroupCount, error)
	TotalStats(ctx context.Context) (*Stats, error)
}
