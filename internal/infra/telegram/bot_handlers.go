package telegram

import (
	"context"
	"strings"
	"teacher_referral_bot/internal/app"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const genericErrorText = "❌ Xatolik yuz berdi. Iltimos, qaytadan urinib ko'ring."

// RegisterBotHandlers wires the command, menu button and content handlers.
// Exact-text endpoints take precedence over OnText, so the menu buttons
// never reach the state machine's text dispatch.
func RegisterBotHandlers(
	ctx context.Context,
	b *telebot.Bot,
	registration *app.RegistrationService,
	profile *app.ProfileService,
	stats *app.StatsService,
	baseLogger *logrus.Entry,
) {
	logger := baseLogger.WithField("handler_group", "bot")

	// guard reports the handler error to the user and keeps the poller alive.
	guard := func(name string, h func(c telebot.Context) error) func(c telebot.Context) error {
		return func(c telebot.Context) error {
			if err := h(c); err != nil {
				logger.WithError(err).
					WithField("handler", name).
					WithField("sender_id", c.Sender().ID).
					Error("Handler failed")
				return c.Send(genericErrorText)
			}
			return nil
		}
	}

	b.Handle("/start", guard("start", func(c telebot.Context) error {
		payload := strings.TrimSpace(c.Message().Payload)
		return registration.OnStart(ctx, c.Sender().ID, c.Sender().Username, payload)
	}))

	b.Handle(app.BtnRegister, guard("register", func(c telebot.Context) error {
		return registration.BeginRegistration(ctx, c.Sender().ID)
	}))

	b.Handle(app.BtnCancel, guard("cancel", func(c telebot.Context) error {
		return registration.Cancel(ctx, c.Sender().ID)
	}))

	b.Handle(app.BtnReferral, guard("referral", func(c telebot.Context) error {
		return stats.ShowReferralInfo(ctx, c.Sender().ID)
	}))

	b.Handle(app.BtnPoints, guard("points", func(c telebot.Context) error {
		return stats.ShowPoints(ctx, c.Sender().ID)
	}))

	b.Handle(app.BtnProfile, guard("profile", func(c telebot.Context) error {
		return profile.ShowProfile(ctx, c.Sender().ID, nil)
	}))

	b.Handle(telebot.OnText, guard("text", func(c telebot.Context) error {
		return registration.OnText(ctx, c.Sender().ID, c.Text())
	}))

	b.Handle(telebot.OnContact, guard("contact", func(c telebot.Context) error {
		contact := c.Message().Contact
		if contact == nil {
			return nil
		}
		return registration.OnContact(ctx, c.Sender().ID, contact.PhoneNumber)
	}))

	b.Handle(telebot.OnDocument, guard("document", func(c telebot.Context) error {
		doc := c.Message().Document
		if doc == nil {
			return nil
		}
		return registration.OnAttachment(ctx, c.Sender().ID, app.Attachment{
			Kind:   app.AttachmentDocument,
			FileID: doc.FileID,
		})
	}))

	b.Handle(telebot.OnPhoto, guard("photo", func(c telebot.Context) error {
		photo := c.Message().Photo
		if photo == nil {
			return nil
		}
		return registration.OnAttachment(ctx, c.Sender().ID, app.Attachment{
			Kind:   app.AttachmentPhoto,
			FileID: photo.FileID,
		})
	}))
}
