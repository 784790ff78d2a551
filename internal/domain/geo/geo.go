package geo

import (
	"context"
)

// Region and District are static reference data loaded at startup and
// treated as read-only by the dialog layer.
type Region struct {
	ID   int64
	Name string
}

// District belongs to exactly one Region.
type District struct {
	ID       int64
	Name     string
	RegionID int64
}

// Repository defines lookup and loader operations over the reference data.
type Repository interface {
	GetRegion(ctx context.Context, id int64) (*Region, error)
	GetDistrict(ctx context.Context, id int64) (*District, error)
	ListRegions(ctx context.Context) ([]*Region, error)
	ListDistrictsByRegion(ctx context.Context, regionID int64) ([]*District, error)

	// Upserts are used by the startup loader only.
	UpsertRegion(ctx context.Context, r *Region) error
	UpsertDistrict(ctx context.Context, d *District) error
}
