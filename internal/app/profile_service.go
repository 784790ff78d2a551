package app

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"

	"teacher_referral_bot/internal/domain/account"
	"teacher_referral_bot/internal/domain/geo"
	"teacher_referral_bot/internal/domain/teacher"
	domainTelegram "teacher_referral_bot/internal/domain/telegram"
	idb "teacher_referral_bot/internal/infra/database"
)

// ProfileService renders the profile card with the per-field edit menu.
type ProfileService struct {
	accounts account.Repository
	teachers teacher.Repository
	geo      geo.Repository
	client   domainTelegram.Client
	logger   *logrus.Entry
}

func NewProfileService(
	accounts account.Repository,
	teachers teacher.Repository,
	geoRepo geo.Repository,
	client domainTelegram.Client,
	logger *logrus.Entry,
) *ProfileService {
	return &ProfileService{
		accounts: accounts,
		teachers: teachers,
		geo:      geoRepo,
		client:   client,
		logger:   logger,
	}
}

// ShowProfile sends the teacher's profile card. ref is non-nil when the
// request came from an inline button and the menu message should be edited
// in place instead of sending a new one.
func (s *ProfileService) ShowProfile(ctx context.Context, telegramID int64, ref *MsgRef) error {
	acc, err := s.accounts.GetByTelegramID(ctx, telegramID)
	if err == idb.ErrAccountNotFound {
		return s.sendMissingProfile(telegramID)
	}
	if err != nil {
		return fmt.Errorf("failed to get account: %w", err)
	}

	t, err := s.teachers.GetByAccountID(ctx, acc.ID)
	if err == idb.ErrTeacherNotFound {
		return s.sendMissingProfile(telegramID)
	}
	if err != nil {
		return fmt.Errorf("failed to get teacher profile: %w", err)
	}

	regionName, districtName := "-", "-"
	if region, err := s.geo.GetRegion(ctx, t.RegionID); err == nil {
		regionName = region.Name
	} else {
		s.logger.WithError(err).WithField("region_id", t.RegionID).Warn("Failed to resolve region name")
	}
	if district, err := s.geo.GetDistrict(ctx, t.DistrictID); err == nil {
		districtName = district.Name
	} else {
		s.logger.WithError(err).WithField("district_id", t.DistrictID).Warn("Failed to resolve district name")
	}

	status := "⏳ Ko'rib chiqilmoqda"
	if t.IsConfirmed {
		status = "✅ Tasdiqlangan"
	}

	text := fmt.Sprintf(
		"👤 Sizning profilingiz\n\n"+
			"👤 To'liq ism: %s\n"+
			"📱 Telefon: %s\n"+
			"🏛️ Hudud: %s\n"+
			"🏘️ Tuman: %s\n"+
			"🏫 Maktab: %s\n"+
			"🏆 Toifa: %s\n"+
			"📋 Holat: %s\n\n"+
			"O'zgartirmoqchi bo'lgan ma'lumotni tanlang:",
		t.FullName, t.PhoneNumber, regionName, districtName,
		t.SchoolName, t.Tier.Label(), status)

	opts := &telebot.SendOptions{ReplyMarkup: profileEditKeyboard()}
	if ref != nil {
		return s.client.EditMessageText(ref.ChatID, ref.MessageID, text, opts)
	}
	return s.client.SendMessage(telegramID, text, opts)
}

func (s *ProfileService) sendMissingProfile(telegramID int64) error {
	return s.client.SendMessage(telegramID,
		"❌ Sizda hali o'qituvchi profili mavjud emas.\n"+
			"📝 Ro'yxatdan o'tish tugmasini bosing.",
		&telebot.SendOptions{ReplyMarkup: mainKeyboard()})
}
