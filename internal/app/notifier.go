package app

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"

	"teacher_referral_bot/internal/domain/channel"
	"teacher_referral_bot/internal/domain/geo"
	"teacher_referral_bot/internal/domain/teacher"
	domainTelegram "teacher_referral_bot/internal/domain/telegram"
)

// Notifier is the fire-and-forget delivery layer. Every send is best-effort:
// failures are logged and swallowed so a flaky transport can never roll back
// a committed ledger or profile change.
type Notifier struct {
	client         domainTelegram.Client
	channels       channel.Repository
	geo            geo.Repository
	adminChannelID int64
	logger         *logrus.Entry
}

func NewNotifier(
	client domainTelegram.Client,
	channels channel.Repository,
	geoRepo geo.Repository,
	adminChannelID int64,
	logger *logrus.Entry,
) *Notifier {
	return &Notifier{
		client:         client,
		channels:       channels,
		geo:            geoRepo,
		adminChannelID: adminChannelID,
		logger:         logger,
	}
}

// Notify delivers a plain message to a chat, logging delivery failures.
func (n *Notifier) Notify(chatID int64, text string, options *telebot.SendOptions) {
	if err := n.client.SendMessage(chatID, text, options); err != nil {
		n.logger.WithError(err).WithField("chat_id", chatID).Error("Failed to deliver notification")
	}
}

// NotifyAdmin posts a plain message to the admin channel.
func (n *Notifier) NotifyAdmin(text string) {
	if n.adminChannelID == 0 {
		n.logger.Warn("Admin channel not configured, dropping admin notification")
		return
	}
	n.Notify(n.adminChannelID, text, nil)
}

// AdminChannelConfigured reports whether applications can be forwarded.
func (n *Notifier) AdminChannelConfigured() bool {
	return n.adminChannelID != 0
}

// ForwardApplication sends a pending submission with its attached document
// to the admin channel, tagged with the teacher ID so accept/reject
// callbacks can reference it.
func (n *Notifier) ForwardApplication(ctx context.Context, t *teacher.Teacher, att *Attachment) {
	if n.adminChannelID == 0 {
		n.logger.Warn("Admin channel not configured, application not forwarded")
		return
	}

	regionName, districtName := n.placeNames(ctx, t)
	caption := fmt.Sprintf(
		"📝 Yangi o'qituvchi arizasi\n\n"+
			"👤 To'liq ism: %s\n"+
			"📱 Telefon: %s\n"+
			"🏛️ Hudud: %s\n"+
			"🏘️ Tuman: %s\n"+
			"🏫 Maktab: %s\n"+
			"🏆 Toifa: %s\n"+
			"🆔 ID: %d",
		t.FullName, t.PhoneNumber, regionName, districtName, t.SchoolName, t.Tier.Label(), t.ID,
	)
	options := &telebot.SendOptions{ReplyMarkup: adminDecisionKeyboard(t.ID)}

	var err error
	switch att.Kind {
	case AttachmentPhoto:
		err = n.client.SendPhoto(n.adminChannelID, att.FileID, caption, options)
	default:
		err = n.client.SendDocument(n.adminChannelID, att.FileID, caption, options)
	}
	if err != nil {
		n.logger.WithError(err).WithField("teacher_id", t.ID).Error("Failed to forward application to admin channel")
	}
}

// SendInviteLinks mints one single-use invite link per registered channel
// and delivers the bundle to the chat. Per-channel failures degrade to an
// error line in the message rather than aborting the whole bundle.
func (n *Notifier) SendInviteLinks(ctx context.Context, chatID int64) {
	channels, err := n.channels.List(ctx)
	if err != nil {
		n.logger.WithError(err).Error("Failed to list channels for invite links")
		return
	}
	if len(channels) == 0 {
		n.logger.Warn("No channels configured for invite links")
		return
	}

	text := "🎉 Tabriklaymiz! Siz quyidagi kanallarga taklif linklarini qo'lga kiritdingiz:\n\n"
	for _, ch := range channels {
		link, err := n.client.CreateInviteLink(ch.ChatID, 1)
		if err != nil {
			n.logger.WithError(err).WithField("channel", ch.Name).Error("Failed to create invite link")
			text += fmt.Sprintf("📢 %s: Xatolik yuz berdi\n\n", ch.Name)
			continue
		}
		text += fmt.Sprintf("📢 %s:\n%s\n\n", ch.Name, link)
	}

	n.Notify(chatID, text, nil)
}

func (n *Notifier) placeNames(ctx context.Context, t *teacher.Teacher) (string, string) {
	regionName, districtName := "-", "-"
	if region, err := n.geo.GetRegion(ctx, t.RegionID); err == nil {
		regionName = region.Name
	} else {
		n.logger.WithError(err).WithField("region_id", t.RegionID).Warn("Region lookup failed for application caption")
	}
	if district, err := n.geo.GetDistrict(ctx, t.DistrictID); err == nil {
		districtName = district.Name
	} else {
		n.logger.WithError(err).WithField("district_id", t.DistrictID).Warn("District lookup failed for application caption")
	}
	return regionName, districtName
}
