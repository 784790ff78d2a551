package session

import (
	"context"
	"fmt"
)

// Stage names the position of an account inside a conversational flow.
type Stage string

const (
	StageNone Stage = ""

	// Registration flow, in order.
	StageRegisterFullName Stage = "register_full_name"
	StageRegisterPhone    Stage = "register_phone"
	StageRegisterRegion   Stage = "register_region"
	StageRegisterDistrict Stage = "register_district"
	StageRegisterSchool   Stage = "register_school"
	StageRegisterTier     Stage = "register_tier"
	StageRegisterTierDoc  Stage = "register_tier_document"

	// Profile edit flows, each entered directly from the profile menu.
	StageEditFullName Stage = "edit_full_name"
	StageEditPhone    Stage = "edit_phone"
	StageEditRegion   Stage = "edit_region"
	StageEditDistrict Stage = "edit_district"
	StageEditSchool   Stage = "edit_school"
	StageEditTier     Stage = "edit_tier"
)

// Keys into Session.Data for the partially collected form fields.
const (
	FieldFullName   = "full_name"
	FieldPhone      = "phone_number"
	FieldRegionID   = "region_id"
	FieldDistrictID = "district_id"
	FieldSchool     = "school_name"
	FieldTier       = "tier"
)

// ErrSessionNotFound is returned by Store.Get when the account has no
// session in progress.
var ErrSessionNotFound = fmt.Errorf("session not found")

// Session is the per-account dialog state persisted across message turns.
// It is never shared between accounts.
type Session struct {
	TelegramID int64             `json:"telegram_id"`
	Stage      Stage             `json:"stage"`
	Data       map[string]string `json:"data"`
}

// New returns an empty session positioned at the given stage.
func New(telegramID int64, stage Stage) *Session {
	return &Session{
		TelegramID: telegramID,
		Stage:      stage,
		Data:       make(map[string]string),
	}
}

// Store holds at most one session per account. Put overwrites any previous
// session for the same account, which is how starting a new flow cancels the
// old one.
type Store interface {
	Get(ctx context.Context, telegramID int64) (*Session, error)
	Put(ctx context.Context, s *Session) error
	Clear(ctx context.Context, telegramID int64) error
}
