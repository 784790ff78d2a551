package app

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"

	"teacher_referral_bot/internal/domain/account"
	"teacher_referral_bot/internal/domain/referral"
	"teacher_referral_bot/internal/domain/teacher"
	idb "teacher_referral_bot/internal/infra/database"
)

// ReferralService is the referral ledger: it creates referral edges with
// their eligibility invariants, awards points on confirmation, and triggers
// the one-time invite-link issuance.
type ReferralService struct {
	accounts  account.Repository
	teachers  teacher.Repository
	referrals referral.Repository
	notifier  *Notifier
	logger    *logrus.Entry
}

func NewReferralService(
	accounts account.Repository,
	teachers teacher.Repository,
	referrals referral.Repository,
	notifier *Notifier,
	logger *logrus.Entry,
) *ReferralService {
	return &ReferralService{
		accounts:  accounts,
		teachers:  teachers,
		referrals: referrals,
		notifier:  notifier,
		logger:    logger,
	}
}

// RegisterReferral records that the referee arrived through a /start deep
// link carrying the referrer's Telegram ID. Every ineligible case is a
// logged no-op: a bad deep link must never break the referee's own /start.
func (s *ReferralService) RegisterReferral(ctx context.Context, startParam string, referee *account.Account) {
	logCtx := s.logger.WithFields(logrus.Fields{
		"start_param": startParam,
		"referee_id":  referee.ID,
	})

	referrerTelegramID, err := strconv.ParseInt(startParam, 10, 64)
	if err != nil {
		logCtx.Warn("Invalid referral parameter, ignoring")
		return
	}

	if referrerTelegramID == referee.TelegramID {
		logCtx.Warn("Self-referral attempt, ignoring")
		return
	}

	referrer, err := s.accounts.GetByTelegramID(ctx, referrerTelegramID)
	if err != nil {
		if err == idb.ErrAccountNotFound {
			logCtx.Warn("Referrer account not found, referral not created")
		} else {
			logCtx.WithError(err).Error("Failed to look up referrer")
		}
		return
	}

	referrerProfile, err := s.teachers.GetByAccountID(ctx, referrer.ID)
	if err != nil || !referrerProfile.IsConfirmed {
		logCtx.WithField("referrer_id", referrer.ID).Warn("Referrer is not a confirmed teacher, referral not created")
		return
	}

	// A referee who is already a confirmed teacher can't be recruited.
	if refereeProfile, err := s.teachers.GetByAccountID(ctx, referee.ID); err == nil && refereeProfile.IsConfirmed {
		logCtx.Warn("Referee is already a confirmed teacher, referral not created")
		return
	}

	created, err := s.referrals.CreateEdge(ctx, referrer.ID, referee.ID)
	if err != nil {
		logCtx.WithError(err).Error("Failed to create referral edge")
		return
	}
	if !created {
		logCtx.Info("Referee already has a referral, keeping the existing edge")
		return
	}
	logCtx.WithField("referrer_id", referrer.ID).Info("Referral edge created")
}

// OnTeacherConfirmed is the confirmation hook. For every edge naming this
// account as referee it awards the referrer one point (exactly once per
// edge, no matter how often confirmation is retried), and if the account
// arrived via referral it issues the invite links at most once.
func (s *ReferralService) OnTeacherConfirmed(ctx context.Context, confirmed *account.Account) error {
	logCtx := s.logger.WithField("account_id", confirmed.ID)

	edges, err := s.referrals.ListEdgesByReferee(ctx, confirmed.ID)
	if err != nil {
		return fmt.Errorf("failed to list referral edges for account %d: %w", confirmed.ID, err)
	}

	for _, edge := range edges {
		edgeLog := logCtx.WithFields(logrus.Fields{
			"edge_id":     edge.ID,
			"referrer_id": edge.ReferrerID,
		})

		referrerProfile, err := s.teachers.GetByAccountID(ctx, edge.ReferrerID)
		if err != nil || !referrerProfile.IsConfirmed {
			edgeLog.Warn("Referrer is no longer a confirmed teacher, no points awarded")
			continue
		}

		awarded, total, err := s.referrals.AwardPoint(ctx, edge.ID, edge.ReferrerID)
		if err != nil {
			edgeLog.WithError(err).Error("Failed to award referral point")
			continue
		}
		if !awarded {
			edgeLog.Debug("Edge already awarded, skipping")
			continue
		}
		edgeLog.WithField("total_points", total).Info("Referral point awarded")

		s.notifyReferrer(ctx, edge.ReferrerID, total)
	}

	if len(edges) == 0 {
		return nil
	}

	// The claim is the atomic check-and-set: only the first confirmation
	// processing to get here sends the links.
	first, err := s.referrals.ClaimLinkIssuance(ctx, confirmed.ID)
	if err != nil {
		return fmt.Errorf("failed to claim link issuance for account %d: %w", confirmed.ID, err)
	}
	if !first {
		logCtx.Info("Invite links already issued, skipping")
		return nil
	}

	logCtx.Info("Issuing invite links to referred teacher")
	s.notifier.SendInviteLinks(ctx, confirmed.TelegramID)
	return nil
}

func (s *ReferralService) notifyReferrer(ctx context.Context, referrerID int64, total int) {
	referrer, err := s.accounts.GetByID(ctx, referrerID)
	if err != nil {
		s.logger.WithError(err).WithField("referrer_id", referrerID).Error("Failed to look up referrer for point notification")
		return
	}
	s.notifier.Notify(referrer.TelegramID, fmt.Sprintf(
		"🎉 Tabriklaymiz! Siz yana 1 ball qo'shdingiz!\n\n📊 Jami ballaringiz: %d", total), nil)
}
