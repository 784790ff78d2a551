package referral

import (
	"time"
)

// Edge records that one account (a confirmed teacher at creation time)
// invited another. A referee can carry at most one edge for the lifetime of
// the system; a referrer may hold many. PointsAwarded flips to true exactly
// once, inside the award transaction, so confirmation retries cannot award
// the same edge twice.
type Edge struct {
	ID            int64
	ReferrerID    int64 // account id
	RefereeID     int64 // account id
	PointsAwarded bool
	CreatedAt     time.Time
}

// GroupCount is a rollup row: confirmed referrals grouped by a region or
// district name.
type GroupCount struct {
	Name  string
	Count int
}

// Stats is the global confirmed-referral rollup.
type Stats struct {
	Total      int
	ByRegion   []GroupCount
	ByDistrict []GroupCount
}
