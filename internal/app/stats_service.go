package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"

	"teacher_referral_bot/internal/domain/account"
	"teacher_referral_bot/internal/domain/referral"
	domainTelegram "teacher_referral_bot/internal/domain/telegram"
)

// StatsService renders the referral link, point balance and the
// statistics screens at district, region and republic level.
type StatsService struct {
	accounts  account.Repository
	referrals referral.Repository
	client    domainTelegram.Client
	logger    *logrus.Entry
}

func NewStatsService(
	accounts account.Repository,
	referrals referral.Repository,
	client domainTelegram.Client,
	logger *logrus.Entry,
) *StatsService {
	return &StatsService{
		accounts:  accounts,
		referrals: referrals,
		client:    client,
		logger:    logger,
	}
}

// ShowReferralInfo sends the teacher's personal deep link together with the
// count of confirmed teachers it brought in.
func (s *StatsService) ShowReferralInfo(ctx context.Context, telegramID int64) error {
	acc, err := s.accounts.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return fmt.Errorf("failed to get account: %w", err)
	}

	count, err := s.referrals.CountConfirmedByReferrer(ctx, acc.ID)
	if err != nil {
		return fmt.Errorf("failed to count referrals: %w", err)
	}

	link := fmt.Sprintf("https://t.me/%s?start=%d", s.client.Username(), telegramID)
	return s.client.SendMessage(telegramID, fmt.Sprintf(
		"🔗 Sizning referal havolangiz:\n%s\n\n"+
			"👥 Siz taklif qilgan tasdiqlangan o'qituvchilar: %d ta\n\n"+
			"Havolani ulashing va har bir tasdiqlangan o'qituvchi uchun 1 ball oling!",
		link, count), nil)
}

// ShowPoints sends the point balance with the statistics level menu.
func (s *StatsService) ShowPoints(ctx context.Context, telegramID int64) error {
	acc, err := s.accounts.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return fmt.Errorf("failed to get account: %w", err)
	}

	points, err := s.referrals.Points(ctx, acc.ID)
	if err != nil {
		return fmt.Errorf("failed to get points: %w", err)
	}

	return s.client.SendMessage(telegramID, fmt.Sprintf(
		"📊 Statistika\n\nJami ball: %d\nQaysi darajada statistikani ko'rmoqchisiz?",
		points),
		&telebot.SendOptions{ReplyMarkup: statisticsKeyboard()})
}

// ShowDistrictStats edits the statistics message to the per-district view:
// the teacher's own confirmed referrals followed by the global breakdown.
func (s *StatsService) ShowDistrictStats(ctx context.Context, telegramID int64, ref MsgRef) error {
	return s.showGroupStats(ctx, telegramID, ref,
		"🏘️ Tuman bo'yicha statistika",
		"Sizning tumanlaringiz:", "Umumiy tumanlar:",
		s.referrals.ConfirmedByReferrerPerDistrict,
		func(total *referral.Stats) []referral.GroupCount { return total.ByDistrict })
}

// ShowRegionStats edits the statistics message to the per-region view.
func (s *StatsService) ShowRegionStats(ctx context.Context, telegramID int64, ref MsgRef) error {
	return s.showGroupStats(ctx, telegramID, ref,
		"🏛️ Viloyat bo'yicha statistika",
		"Sizning viloyatlaringiz:", "Umumiy viloyatlar:",
		s.referrals.ConfirmedByReferrerPerRegion,
		func(total *referral.Stats) []referral.GroupCount { return total.ByRegion })
}

// ShowRepublicStats edits the statistics message to the republic-level
// summary: the teacher's own numbers plus the total confirmed count.
func (s *StatsService) ShowRepublicStats(ctx context.Context, telegramID int64, ref MsgRef) error {
	acc, err := s.accounts.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return fmt.Errorf("failed to get account: %w", err)
	}

	points, err := s.referrals.Points(ctx, acc.ID)
	if err != nil {
		return fmt.Errorf("failed to get points: %w", err)
	}
	count, err := s.referrals.CountConfirmedByReferrer(ctx, acc.ID)
	if err != nil {
		return fmt.Errorf("failed to count referrals: %w", err)
	}
	issued, err := s.referrals.LinksIssued(ctx, acc.ID)
	if err != nil {
		return fmt.Errorf("failed to check link issuance: %w", err)
	}
	total, err := s.referrals.TotalStats(ctx)
	if err != nil {
		return fmt.Errorf("failed to get total stats: %w", err)
	}

	linkStatus := "❌ Hali qo'lga kiritilmagan"
	if issued {
		linkStatus = "✅ Qo'lga kiritilgan"
	}

	text := fmt.Sprintf(
		"🇺🇿 Respublika bo'yicha statistika\n\n"+
			"🏆 Sizning ballaringiz: %d\n"+
			"👥 Siz taklif qilgan o'qituvchilar: %d ta\n"+
			"🔗 Kanal taklif linklari: %s\n\n"+
			"📊 Respublika bo'yicha jami tasdiqlangan o'qituvchilar: %d ta",
		points, count, linkStatus, total.Total)

	return s.editStats(telegramID, ref, text)
}

// BackToMain dismisses the statistics menu and restores the reply keyboard,
// which an inline edit cannot carry.
func (s *StatsService) BackToMain(ctx context.Context, telegramID int64, ref MsgRef) error {
	if err := s.client.EditMessageText(ref.ChatID, ref.MessageID,
		"Asosiy menyuga qaytdingiz.", nil); err != nil {
		s.logger.WithError(err).Warn("Failed to edit statistics message")
	}
	return s.client.SendMessage(telegramID,
		"Quyidagi imkoniyatlardan foydalanishingiz mumkin:",
		&telebot.SendOptions{ReplyMarkup: registeredUserKeyboard()})
}

func (s *StatsService) showGroupStats(
	ctx context.Context,
	telegramID int64,
	ref MsgRef,
	title, ownHeader, globalHeader string,
	query func(ctx context.Context, referrerID int64) ([]referral.GroupCount, error),
	globalGroups func(total *referral.Stats) []referral.GroupCount,
) error {
	acc, err := s.accounts.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return fmt.Errorf("failed to get account: %w", err)
	}

	own, err := query(ctx, acc.ID)
	if err != nil {
		return fmt.Errorf("failed to get group stats: %w", err)
	}
	total, err := s.referrals.TotalStats(ctx)
	if err != nil {
		return fmt.Errorf("failed to get total stats: %w", err)
	}

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n\n")
	if len(own) > 0 {
		b.WriteString(ownHeader)
		b.WriteString("\n")
		for _, g := range own {
			fmt.Fprintf(&b, "• %s: %d\n", g.Name, g.Count)
		}
		b.WriteString("\n")
	}
	if global := globalGroups(total); len(global) > 0 {
		b.WriteString(globalHeader)
		b.WriteString("\n")
		for _, g := range global {
			fmt.Fprintf(&b, "• %s: %d\n", g.Name, g.Count)
		}
	}
	return s.editStats(telegramID, ref, b.String())
}

// editStats edits the statistics message in place, keeping the level menu
// attached so the user can switch views. Tapping the already shown level
// makes Telegram reject the no-op edit, which is fine to ignore.
func (s *StatsService) editStats(telegramID int64, ref MsgRef, text string) error {
	err := s.client.EditMessageText(ref.ChatID, ref.MessageID, text,
		&telebot.SendOptions{ReplyMarkup: statisticsKeyboard()})
	if err != nil {
		s.logger.WithError(err).WithField("telegram_id", telegramID).
			Warn("Failed to edit statistics message")
	}
	return nil
}
