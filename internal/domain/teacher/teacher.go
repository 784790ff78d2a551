package teacher

import (
	"database/sql"
	"time"
)

// Tier is the professional qualification category selected during
// registration. The raw values are the ones the original registration form
// uses on the wire and in the database.
type Tier string

const (
	TierTop        Tier = "oliy"
	TierFirst      Tier = "1"
	TierSecond     Tier = "2"
	TierSpecialist Tier = "mutaxassis"
	TierNone       Tier = "yoq"
)

// AllTiers lists the tiers in the order they are presented to the user.
func AllTiers() []Tier {
	return []Tier{TierTop, TierFirst, TierSecond, TierSpecialist, TierNone}
}

// ParseTier maps a raw callback value to a Tier.
func ParseTier(raw string) (Tier, bool) {
	t := Tier(raw)
	switch t {
	case TierTop, TierFirst, TierSecond, TierSpecialist, TierNone:
		return t, true
	}
	return "", false
}

// Label returns the user-facing name of the tier.
func (t Tier) Label() string {
	switch t {
	case TierTop:
		return "Oliy"
	case TierFirst:
		return "1-toifa"
	case TierSecond:
		return "2-toifa"
	case TierSpecialist:
		return "Mutaxassis"
	case TierNone:
		return "Yo'q"
	}
	return string(t)
}

// RequiresDocument reports whether selecting this tier requires the
// applicant to attach a supporting document before the submission is
// forwarded for admin review.
func (t Tier) RequiresDocument() bool {
	return t != TierNone
}

// Teacher is the profile a registered account submits. At most one profile
// exists per account; IsConfirmed stays false until an admin approves the
// application (or the tier required no document at all).
type Teacher struct {
	ID          int64
	AccountID   int64
	FullName    string
	PhoneNumber string
	RegionID    int64
	DistrictID  int64
	Address     sql.NullString // optional
	SchoolName  string
	Tier        Tier
	IsConfirmed bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
