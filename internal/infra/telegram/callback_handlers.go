package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"teacher_referral_bot/internal/app"
	idb "teacher_referral_bot/internal/infra/database"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// RegisterCallbackHandlers wires the single inline-button dispatcher. All
// callback data is routed by prefix from one OnCallback endpoint.
func RegisterCallbackHandlers(
	ctx context.Context,
	b *telebot.Bot,
	registration *app.RegistrationService,
	profile *app.ProfileService,
	stats *app.StatsService,
	admin *app.AdminService,
	adminChannelID int64,
	baseLogger *logrus.Entry,
) {
	logger := baseLogger.WithField("handler_group", "callback")

	b.Handle(telebot.OnCallback, func(c telebot.Context) error {
		// telebot prefixes data produced by markup.Data with "\f".
		data := strings.TrimPrefix(c.Callback().Data, "\f")
		senderID := c.Sender().ID
		ref := app.MsgRef{ChatID: c.Message().Chat.ID, MessageID: c.Message().ID}

		logCtx := logger.WithFields(logrus.Fields{
			"sender_id": senderID,
			"data":      data,
		})

		fail := func(err error) error {
			logCtx.WithError(err).Error("Callback handler failed")
			return c.Respond(&telebot.CallbackResponse{Text: genericErrorText})
		}

		switch {
		case strings.HasPrefix(data, "accept_"), strings.HasPrefix(data, "reject_"):
			if ref.ChatID != adminChannelID {
				logCtx.Warn("Application decision callback outside admin channel")
				return c.Respond()
			}
			return handleAdminDecision(ctx, c, admin, data, logCtx)

		case strings.HasPrefix(data, "region_"):
			regionID, err := strconv.ParseInt(strings.TrimPrefix(data, "region_"), 10, 64)
			if err != nil {
				return fail(fmt.Errorf("invalid region callback %q: %w", data, err))
			}
			if err := registration.OnRegionSelected(ctx, senderID, ref, regionID); err != nil {
				return fail(err)
			}
			return c.Respond()

		case strings.HasPrefix(data, "district_"):
			districtID, err := strconv.ParseInt(strings.TrimPrefix(data, "district_"), 10, 64)
			if err != nil {
				return fail(fmt.Errorf("invalid district callback %q: %w", data, err))
			}
			if err := registration.OnDistrictSelected(ctx, senderID, ref, districtID); err != nil {
				return fail(err)
			}
			return c.Respond()

		case strings.HasPrefix(data, "toifa_"):
			if err := registration.OnTierSelected(ctx, senderID, ref, strings.TrimPrefix(data, "toifa_")); err != nil {
				return fail(err)
			}
			return c.Respond()

		case data == app.ActionBackToRegions:
			if err := registration.OnBackToRegions(ctx, senderID, ref); err != nil {
				return fail(err)
			}
			return c.Respond()

		case data == app.ActionCancelRegistration:
			if err := registration.CancelInline(ctx, senderID, ref); err != nil {
				return fail(err)
			}
			return c.Respond()

		case data == app.ActionStatsDistrict:
			if err := stats.ShowDistrictStats(ctx, senderID, ref); err != nil {
				return fail(err)
			}
			return c.Respond()

		case data == app.ActionStatsRegion:
			if err := stats.ShowRegionStats(ctx, senderID, ref); err != nil {
				return fail(err)
			}
			return c.Respond()

		case data == app.ActionStatsRepublic:
			if err := stats.ShowRepublicStats(ctx, senderID, ref); err != nil {
				return fail(err)
			}
			return c.Respond()

		case data == app.ActionBackToMain:
			if err := stats.BackToMain(ctx, senderID, ref); err != nil {
				return fail(err)
			}
			return c.Respond()

		case data == app.ActionBackToProfile:
			if err := profile.ShowProfile(ctx, senderID, &ref); err != nil {
				return fail(err)
			}
			return c.Respond()

		case strings.HasPrefix(data, "edit_"):
			if err := registration.StartEdit(ctx, senderID, ref, strings.TrimPrefix(data, "edit_")); err != nil {
				return fail(err)
			}
			return c.Respond()
		}

		logCtx.Warn("Unhandled callback data")
		return c.Respond()
	})
}

// handleAdminDecision applies an accept_/reject_ decision and rewrites the
// forwarded application message so the decision buttons disappear and the
// outcome stays visible in the channel history.
func handleAdminDecision(
	ctx context.Context,
	c telebot.Context,
	admin *app.AdminService,
	data string,
	logCtx *logrus.Entry,
) error {
	accepted := strings.HasPrefix(data, "accept_")
	idStr := strings.TrimPrefix(strings.TrimPrefix(data, "accept_"), "reject_")
	teacherID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		logCtx.WithError(err).Error("Invalid decision callback data")
		return c.Respond(&telebot.CallbackResponse{Text: genericErrorText})
	}

	if accepted {
		_, err = admin.Accept(ctx, teacherID)
	} else {
		_, err = admin.Reject(ctx, teacherID)
	}
	if errors.Is(err, idb.ErrTeacherNotFound) {
		// A second tap on an already decided application.
		return c.Respond(&telebot.CallbackResponse{Text: "Ariza allaqachon ko'rib chiqilgan."})
	}
	if err != nil {
		logCtx.WithError(err).Error("Failed to apply application decision")
		return c.Respond(&telebot.CallbackResponse{Text: genericErrorText})
	}

	marker := "\n\n✅ TASDIQLANDI"
	fallback := fmt.Sprintf("✅ O'qituvchi ID: %d tasdiqlandi!", teacherID)
	if !accepted {
		marker = "\n\n❌ RAD ETILDI"
		fallback = fmt.Sprintf("❌ O'qituvchi ID: %d rad etildi!", teacherID)
	}

	msg := c.Message()
	if msg.Caption != "" {
		err = c.EditCaption(msg.Caption + marker)
	} else {
		err = c.Edit(msg.Text + marker)
	}
	if err != nil {
		logCtx.WithError(err).Warn("Failed to edit decided application message")
		if sendErr := c.Send(fallback); sendErr != nil {
			logCtx.WithError(sendErr).Error("Failed to post decision fallback message")
		}
	}
	return c.Respond(&telebot.CallbackResponse{Text: "Qaror qabul qilindi."})
}
