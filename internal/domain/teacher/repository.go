package teacher

import (
	"context"
)

// Repository defines the operations for persisting and retrieving Teacher profiles.
type Repository interface {
	// Upsert creates the profile for t.AccountID or overwrites all submitted
	// fields of an existing one (resubmission of a pending application).
	Upsert(ctx context.Context, t *Teacher) error
	GetByID(ctx context.Context, id int64) (*Teacher, error)
	GetByAccountID(ctx context.Context, accountID int64) (*Teacher, error)

	// Single-field updates used by the profile edit flows.
	UpdateFullName(ctx context.Context, accountID int64, fullName string) error
	UpdatePhoneNumber(ctx context.Context, accountID int64, phoneNumber string) error
	UpdateSchoolName(ctx context.Context, accountID int64, schoolName string) error
	UpdateTier(ctx context.Context, accountID int64, tier Tier) error
	// UpdateLocation commits region and district together; a district always
	// belongs to the region stored with it.
	UpdateLocation(ctx context.Context, accountID int64, regionID, districtID int64) error

	SetConfirmed(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
	ListPending(ctx context.Context) ([]*Teacher, error)
}
