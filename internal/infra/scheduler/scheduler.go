package scheduler

import (
	"context"
	"fmt"
	"strings"
	"teacher_referral_bot/internal/app"
	"teacher_referral_bot/internal/domain/teacher"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// PendingDigestScheduler posts a daily digest of unreviewed applications to
// the admin channel so submissions do not sit unnoticed.
type PendingDigestScheduler struct {
	cronEngine     *cron.Cron
	teachers       teacher.Repository
	notifier       *app.Notifier
	logger         *logrus.Entry
	cronSpecDigest string
}

func NewPendingDigestScheduler(
	teachers teacher.Repository,
	notifier *app.Notifier,
	logger *logrus.Entry,
	cronSpecDigest string, // e.g. "0 9 * * *" (9 AM daily)
) *PendingDigestScheduler {
	return &PendingDigestScheduler{
		cronEngine:     cron.New(cron.WithLocation(time.Local)),
		teachers:       teachers,
		notifier:       notifier,
		logger:         logger,
		cronSpecDigest: cronSpecDigest,
	}
}

func (s *PendingDigestScheduler) Start() error {
	if !s.notifier.AdminChannelConfigured() {
		s.logger.Warn("Admin channel not configured, pending digest disabled")
		return nil
	}

	_, err := s.cronEngine.AddFunc(s.cronSpecDigest, func() {
		s.logger.Info("Cron job triggered for pending application digest")
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		s.sendPendingDigest(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to add pending digest cron job: %w", err)
	}

	s.cronEngine.Start()
	s.logger.WithField("cron_spec", s.cronSpecDigest).Info("Pending digest scheduler started")
	return nil
}

func (s *PendingDigestScheduler) sendPendingDigest(ctx context.Context) {
	pending, err := s.teachers.ListPending(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list pending applications for digest")
		return
	}
	if len(pending) == 0 {
		s.logger.Info("No pending applications, digest skipped")
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "⏳ Ko'rib chiqilmagan arizalar: %d ta\n\n", len(pending))
	for _, t := range pending {
		fmt.Fprintf(&b, "▫️ %s (ID: %d), yuborilgan: %s\n",
			t.FullName, t.ID, t.CreatedAt.Format("02.01.2006"))
	}

	s.notifier.NotifyAdmin(b.String())
	s.logger.WithField("pending_count", len(pending)).Info("Pending application digest sent")
}

func (s *PendingDigestScheduler) Stop() {
	s.logger.Info("Stopping pending digest scheduler")
	ctx := s.cronEngine.Stop()
	<-ctx.Done()
	s.logger.Info("Pending digest scheduler stopped")
}
