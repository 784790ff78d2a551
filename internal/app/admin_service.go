package app

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"

	"teacher_referral_bot/internal/domain/account"
	"teacher_referral_bot/internal/domain/teacher"
	domainTelegram "teacher_referral_bot/internal/domain/telegram"
)

// AdminService applies the accept and reject decisions made in the admin
// channel on forwarded applications.
type AdminService struct {
	accounts  account.Repository
	teachers  teacher.Repository
	referrals *ReferralService
	client    domainTelegram.Client
	logger    *logrus.Entry
}

func NewAdminService(
	accounts account.Repository,
	teachers teacher.Repository,
	referrals *ReferralService,
	client domainTelegram.Client,
	logger *logrus.Entry,
) *AdminService {
	return &AdminService{
		accounts:  accounts,
		teachers:  teachers,
		referrals: referrals,
		client:    client,
		logger:    logger,
	}
}

// Accept confirms the teacher, runs the referral confirmation hook and
// notifies the applicant. Both decisions are idempotent at the storage
// level; a second tap on a stale button finds the profile already in its
// final state (or gone) and changes nothing.
func (s *AdminService) Accept(ctx context.Context, teacherID int64) (*teacher.Teacher, error) {
	t, err := s.teachers.GetByID(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to get teacher %d: %w", teacherID, err)
	}

	acc, err := s.accounts.GetByID(ctx, t.AccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account %d: %w", t.AccountID, err)
	}

	if err := s.teachers.SetConfirmed(ctx, t.ID); err != nil {
		return nil, fmt.Errorf("failed to confirm teacher %d: %w", t.ID, err)
	}
	t.IsConfirmed = true

	logCtx := s.logger.WithFields(logrus.Fields{
		"teacher_id": t.ID,
		"account_id": acc.ID,
	})
	logCtx.Info("Application accepted")

	// The decision is committed; ledger or delivery failures are logged
	// and never undo it.
	if err := s.referrals.OnTeacherConfirmed(ctx, acc); err != nil {
		logCtx.WithError(err).Error("Confirmation hook failed after acceptance")
	}

	if err := s.client.SendMessage(acc.TelegramID,
		"🎉 Tabriklaymiz! Sizning arizangiz tasdiqlandi!\n\n"+
			"Endi siz quyidagi imkoniyatlardan foydalanishingiz mumkin:",
		&telebot.SendOptions{ReplyMarkup: registeredUserKeyboard()}); err != nil {
		logCtx.WithError(err).Warn("Failed to notify applicant about acceptance")
	}
	return t, nil
}

// Reject deletes the application and notifies the applicant, inviting a
// fresh submission.
func (s *AdminService) Reject(ctx context.Context, teacherID int64) (*teacher.Teacher, error) {
	t, err := s.teachers.GetByID(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to get teacher %d: %w", teacherID, err)
	}

	acc, err := s.accounts.GetByID(ctx, t.AccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account %d: %w", t.AccountID, err)
	}

	if err := s.teachers.Delete(ctx, t.ID); err != nil {
		return nil, fmt.Errorf("failed to delete teacher %d: %w", t.ID, err)
	}

	logCtx := s.logger.WithFields(logrus.Fields{
		"teacher_id": t.ID,
		"account_id": acc.ID,
	})
	logCtx.Info("Application rejected")

	if err := s.client.SendMessage(acc.TelegramID,
		"❌ Kechirasiz, sizning arizangiz rad etildi.\n\n"+
			"Ma'lumotlaringizni tekshirib, qaytadan ro'yxatdan o'tishingiz mumkin:",
		&telebot.SendOptions{ReplyMarkup: mainKeyboard()}); err != nil {
		logCtx.WithError(err).Warn("Failed to notify applicant about rejection")
	}
	return t, nil
}
