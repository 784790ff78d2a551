package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"

	"teacher_referral_bot/internal/domain/account"
	"teacher_referral_bot/internal/domain/geo"
	"teacher_referral_bot/internal/domain/session"
	"teacher_referral_bot/internal/domain/teacher"
	domainTelegram "teacher_referral_bot/internal/domain/telegram"
	idb "teacher_referral_bot/internal/infra/database"
)

const minNameLength = 3

// RegistrationService drives the conversational state machine: the
// multi-step registration flow and the single-field profile edit flows.
// Transitions are dispatched on (current stage, event kind); invalid input
// re-prompts the same stage without losing collected fields.
type RegistrationService struct {
	accounts    account.Repository
	teachers    teacher.Repository
	geo         geo.Repository
	sessions    session.Store
	referrals   *ReferralService
	notifier    *Notifier
	client      domainTelegram.Client
	logger      *logrus.Entry
	countryCode string
}

func NewRegistrationService(
	accounts account.Repository,
	teachers teacher.Repository,
	geoRepo geo.Repository,
	sessions session.Store,
	referrals *ReferralService,
	notifier *Notifier,
	client domainTelegram.Client,
	logger *logrus.Entry,
	countryCode string,
) *RegistrationService {
	return &RegistrationService{
		accounts:    accounts,
		teachers:    teachers,
		geo:         geoRepo,
		sessions:    sessions,
		referrals:   referrals,
		notifier:    notifier,
		client:      client,
		logger:      logger,
		countryCode: countryCode,
	}
}

// OnStart handles /start: creates the account on first contact, records a
// referral when the deep-link payload carries one, and greets according to
// the account's registration status.
func (s *RegistrationService) OnStart(ctx context.Context, telegramID int64, username, payload string) error {
	acc, err := s.accounts.GetOrCreate(ctx, telegramID, username)
	if err != nil {
		return fmt.Errorf("failed to get or create account: %w", err)
	}

	if payload != "" {
		s.referrals.RegisterReferral(ctx, payload, acc)
	}

	t, err := s.teachers.GetByAccountID(ctx, acc.ID)
	switch {
	case err == nil && t.IsConfirmed:
		return s.client.SendMessage(telegramID,
			"🎉 Xush kelibsiz! Siz tasdiqlangan o'qituvchisiz!\n\n"+
				"Quyidagi imkoniyatlardan foydalanishingiz mumkin:",
			&telebot.SendOptions{ReplyMarkup: registeredUserKeyboard()})
	case err == nil:
		return s.client.SendMessage(telegramID,
			"⏳ Sizning arizangiz hali ko'rib chiqilmoqda.\n"+
				"Natijani kutib turing yoki ma'lumotlaringizni yangilang.",
			&telebot.SendOptions{ReplyMarkup: mainKeyboard()})
	case err == idb.ErrTeacherNotFound:
		return s.client.SendMessage(telegramID,
			"👋 Xush kelibsiz!\n\n"+
				"O'qituvchi sifatida ro'yxatdan o'tish uchun quyidagi tugmani bosing:",
			&telebot.SendOptions{ReplyMarkup: mainKeyboard()})
	default:
		return fmt.Errorf("failed to check teacher profile: %w", err)
	}
}

// BeginRegistration starts (or resumes) the registration flow. A confirmed
// teacher is short-circuited; an unconfirmed profile is treated as a
// resubmission and the flow restarts from name collection.
func (s *RegistrationService) BeginRegistration(ctx context.Context, telegramID int64) error {
	acc, err := s.accounts.GetOrCreate(ctx, telegramID, "")
	if err != nil {
		return fmt.Errorf("failed to get or create account: %w", err)
	}

	t, err := s.teachers.GetByAccountID(ctx, acc.ID)
	if err == nil && t.IsConfirmed {
		return s.client.SendMessage(telegramID,
			"✅ Siz allaqachon tasdiqlangan o'qituvchisiz!\n"+
				"Ma'lumotlaringizni yangilash uchun 👤 Profil tugmasini bosing.",
			&telebot.SendOptions{ReplyMarkup: registeredUserKeyboard()})
	}
	if err != nil && err != idb.ErrTeacherNotFound {
		return fmt.Errorf("failed to check teacher profile: %w", err)
	}

	// Starting a new flow overwrites any in-progress session.
	if err := s.sessions.Put(ctx, session.New(telegramID, session.StageRegisterFullName)); err != nil {
		return fmt.Errorf("failed to start registration session: %w", err)
	}

	if t != nil {
		return s.client.SendMessage(telegramID,
			"🔄 Mavjud arizangizni yangilash.\nTo'liq ismingizni kiriting:", nil)
	}
	return s.client.SendMessage(telegramID,
		"📝 O'qituvchi sifatida ro'yxatdan o'tish\n\nTo'liq ismingizni kiriting:",
		&telebot.SendOptions{ReplyMarkup: registrationKeyboard()})
}

// Cancel aborts whatever flow is in progress. It always succeeds, even when
// no session exists.
func (s *RegistrationService) Cancel(ctx context.Context, telegramID int64) error {
	if err := s.sessions.Clear(ctx, telegramID); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return s.client.SendMessage(telegramID,
		"❌ Ro'yxatdan o'tish bekor qilindi.",
		&telebot.SendOptions{ReplyMarkup: mainKeyboard()})
}

// CancelInline is the cancel action on inline keyboards: the keyboard
// message is edited so the dead buttons disappear.
func (s *RegistrationService) CancelInline(ctx context.Context, telegramID int64, ref MsgRef) error {
	if err := s.sessions.Clear(ctx, telegramID); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	if err := s.client.EditMessageText(ref.ChatID, ref.MessageID, "❌ Ro'yxatdan o'tish bekor qilindi.", nil); err != nil {
		s.logger.WithError(err).Warn("Failed to edit message on cancel")
	}
	return s.client.SendMessage(telegramID, "Asosiy menyuga qaytdingiz.",
		&telebot.SendOptions{ReplyMarkup: mainKeyboard()})
}

// OnText advances text-entry stages. Text arriving outside any flow, or at
// a stage that expects a different event kind, is ignored or re-prompted.
func (s *RegistrationService) OnText(ctx context.Context, telegramID int64, text string) error {
	sess, err := s.sessions.Get(ctx, telegramID)
	if err == session.ErrSessionNotFound {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}

	switch sess.Stage {
	case session.StageRegisterFullName:
		if utf8.RuneCountInString(text) < minNameLength {
			return s.client.SendMessage(telegramID,
				"❌ Ism juda qisqa. Iltimos, to'liq ismingizni kiriting:", nil)
		}
		sess.Data[session.FieldFullName] = text
		sess.Stage = session.StageRegisterPhone
		if err := s.sessions.Put(ctx, sess); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		return s.client.SendMessage(telegramID,
			"📱 Telefon raqamingizni kiriting yoki tugmani bosing:",
			&telebot.SendOptions{ReplyMarkup: phoneKeyboard()})

	case session.StageRegisterPhone:
		return s.acceptPhone(ctx, telegramID, sess, "", text)

	case session.StageRegisterSchool:
		if utf8.RuneCountInString(text) < minNameLength {
			return s.client.SendMessage(telegramID,
				"❌ Maktab nomi juda qisqa. Iltimos, to'liq nomini kiriting:", nil)
		}
		sess.Data[session.FieldSchool] = text
		sess.Stage = session.StageRegisterTier
		if err := s.sessions.Put(ctx, sess); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		return s.client.SendMessage(telegramID,
			"🏆 O'qituvchilik toifangizni tanlang:",
			&telebot.SendOptions{ReplyMarkup: tierKeyboard()})

	case session.StageRegisterTierDoc:
		// Wrong content type at the document stage.
		return s.client.SendMessage(telegramID,
			"❌ Iltimos, hujjat yoki rasm yuboring:", nil)

	case session.StageEditFullName:
		if utf8.RuneCountInString(text) < minNameLength {
			return s.client.SendMessage(telegramID,
				"❌ Ism juda qisqa. Iltimos, to'liq ismingizni kiriting:", nil)
		}
		return s.finishSingleFieldEdit(ctx, telegramID,
			func(accountID int64) error { return s.teachers.UpdateFullName(ctx, accountID, text) },
			fmt.Sprintf("✅ Ismingiz muvaffaqiyatli o'zgartirildi: %s", text))

	case session.StageEditPhone:
		return s.acceptPhone(ctx, telegramID, sess, "", text)

	case session.StageEditSchool:
		if utf8.RuneCountInString(text) < minNameLength {
			return s.client.SendMessage(telegramID,
				"❌ Maktab nomi juda qisqa. Iltimos, to'liq nomini kiriting:", nil)
		}
		return s.finishSingleFieldEdit(ctx, telegramID,
			func(accountID int64) error { return s.teachers.UpdateSchoolName(ctx, accountID, text) },
			fmt.Sprintf("✅ Maktab nomingiz muvaffaqiyatli o'zgartirildi: %s", text))
	}

	return nil
}

// OnContact accepts a shared contact at the phone stages.
func (s *RegistrationService) OnContact(ctx context.Context, telegramID int64, contactPhone string) error {
	sess, err := s.sessions.Get(ctx, telegramID)
	if err == session.ErrSessionNotFound {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}

	switch sess.Stage {
	case session.StageRegisterPhone, session.StageEditPhone:
		return s.acceptPhone(ctx, telegramID, sess, contactPhone, "")
	case session.StageRegisterTierDoc:
		return s.client.SendMessage(telegramID,
			"❌ Iltimos, hujjat yoki rasm yuboring:", nil)
	}
	return nil
}

// OnAttachment accepts a tier document at the document-collection stage.
// Attachments at any other stage are ignored.
func (s *RegistrationService) OnAttachment(ctx context.Context, telegramID int64, att Attachment) error {
	sess, err := s.sessions.Get(ctx, telegramID)
	if err == session.ErrSessionNotFound {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	if sess.Stage != session.StageRegisterTierDoc {
		return nil
	}
	return s.completeRegistration(ctx, telegramID, sess, &att)
}

// OnRegionSelected handles a region choice from the inline keyboard, in
// both the registration flow and the region edit flow.
func (s *RegistrationService) OnRegionSelected(ctx context.Context, telegramID int64, ref MsgRef, regionID int64) error {
	sess, err := s.sessions.Get(ctx, telegramID)
	if err == session.ErrSessionNotFound {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}

	var next session.Stage
	switch sess.Stage {
	case session.StageRegisterRegion:
		next = session.StageRegisterDistrict
	case session.StageEditRegion:
		next = session.StageEditDistrict
	default:
		return nil // stale keyboard
	}

	region, err := s.geo.GetRegion(ctx, regionID)
	if err != nil {
		return fmt.Errorf("failed to get region %d: %w", regionID, err)
	}
	districts, err := s.geo.ListDistrictsByRegion(ctx, regionID)
	if err != nil {
		return fmt.Errorf("failed to list districts: %w", err)
	}

	sess.Data[session.FieldRegionID] = strconv.FormatInt(regionID, 10)
	sess.Stage = next
	if err := s.sessions.Put(ctx, sess); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return s.client.EditMessageText(ref.ChatID, ref.MessageID,
		fmt.Sprintf("🏛️ %s hududi tanlandi.\n\n🏘️ Tumaningizni tanlang:", region.Name),
		&telebot.SendOptions{ReplyMarkup: districtsKeyboard(districts)})
}

// OnBackToRegions returns from district selection to region selection
// without losing any collected fields.
func (s *RegistrationService) OnBackToRegions(ctx context.Context, telegramID int64, ref MsgRef) error {
	sess, err := s.sessions.Get(ctx, telegramID)
	if err == session.ErrSessionNotFound {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}

	switch sess.Stage {
	case session.StageRegisterDistrict:
		sess.Stage = session.StageRegisterRegion
	case session.StageEditDistrict:
		sess.Stage = session.StageEditRegion
	default:
		return nil
	}
	if err := s.sessions.Put(ctx, sess); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	regions, err := s.geo.ListRegions(ctx)
	if err != nil {
		return fmt.Errorf("failed to list regions: %w", err)
	}
	return s.client.EditMessageText(ref.ChatID, ref.MessageID,
		"🏛️ Hududingizni tanlang:",
		&telebot.SendOptions{ReplyMarkup: regionsKeyboard(regions)})
}

// OnDistrictSelected handles a district choice: in registration it advances
// to school collection, in the edit flow it commits region and district
// together.
func (s *RegistrationService) OnDistrictSelected(ctx context.Context, telegramID int64, ref MsgRef, districtID int64) error {
	sess, err := s.sessions.Get(ctx, telegramID)
	if err == session.ErrSessionNotFound {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}

	district, err := s.geo.GetDistrict(ctx, districtID)
	if err != nil {
		return fmt.Errorf("failed to get district %d: %w", districtID, err)
	}

	switch sess.Stage {
	case session.StageRegisterDistrict:
		sess.Data[session.FieldDistrictID] = strconv.FormatInt(districtID, 10)
		sess.Stage = session.StageRegisterSchool
		if err := s.sessions.Put(ctx, sess); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		return s.client.EditMessageText(ref.ChatID, ref.MessageID,
			fmt.Sprintf("🏘️ %s tumani tanlandi.\n\n🏫 Maktabingizning nomini kiriting:", district.Name), nil)

	case session.StageEditDistrict:
		regionID, err := strconv.ParseInt(sess.Data[session.FieldRegionID], 10, 64)
		if err != nil {
			return fmt.Errorf("session has no region for district edit: %w", err)
		}
		region, err := s.geo.GetRegion(ctx, regionID)
		if err != nil {
			return fmt.Errorf("failed to get region %d: %w", regionID, err)
		}

		acc, err := s.accounts.GetByTelegramID(ctx, telegramID)
		if err != nil {
			return fmt.Errorf("failed to get account: %w", err)
		}
		if err := s.teachers.UpdateLocation(ctx, acc.ID, regionID, districtID); err != nil {
			return fmt.Errorf("failed to update location: %w", err)
		}
		if err := s.sessions.Clear(ctx, telegramID); err != nil {
			return fmt.Errorf("failed to clear session: %w", err)
		}

		if err := s.client.EditMessageText(ref.ChatID, ref.MessageID,
			fmt.Sprintf("✅ Hudud va tumaningiz muvaffaqiyatli o'zgartirildi:\n🏛️ %s\n🏘️ %s",
				region.Name, district.Name), nil); err != nil {
			s.logger.WithError(err).Warn("Failed to edit message after location update")
		}
		return s.client.SendMessage(telegramID,
			"Profilga qaytish uchun 👤 Profil tugmasini bosing.",
			&telebot.SendOptions{ReplyMarkup: registeredUserKeyboard()})
	}
	return nil
}

// OnTierSelected handles the tier choice. Tier "yoq" needs no document and
// completes registration immediately; any other tier moves to document
// collection. In the edit flow the tier is committed directly.
func (s *RegistrationService) OnTierSelected(ctx context.Context, telegramID int64, ref MsgRef, rawTier string) error {
	tier, ok := teacher.ParseTier(rawTier)
	if !ok {
		s.logger.WithField("tier", rawTier).Warn("Unknown tier value in callback")
		return nil
	}

	sess, err := s.sessions.Get(ctx, telegramID)
	if err == session.ErrSessionNotFound {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}

	switch sess.Stage {
	case session.StageRegisterTier:
		sess.Data[session.FieldTier] = string(tier)
		if !tier.RequiresDocument() {
			return s.completeRegistration(ctx, telegramID, sess, nil)
		}
		sess.Stage = session.StageRegisterTierDoc
		if err := s.sessions.Put(ctx, sess); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		return s.client.EditMessageText(ref.ChatID, ref.MessageID,
			fmt.Sprintf("🏆 %s toifasi tanlandi.\n\n📄 Toifa hujjatini yuboring (PDF, rasm yoki boshqa format):",
				tier.Label()), nil)

	case session.StageEditTier:
		acc, err := s.accounts.GetByTelegramID(ctx, telegramID)
		if err != nil {
			return fmt.Errorf("failed to get account: %w", err)
		}
		if err := s.teachers.UpdateTier(ctx, acc.ID, tier); err != nil {
			return fmt.Errorf("failed to update tier: %w", err)
		}
		if err := s.sessions.Clear(ctx, telegramID); err != nil {
			return fmt.Errorf("failed to clear session: %w", err)
		}
		if err := s.client.EditMessageText(ref.ChatID, ref.MessageID,
			fmt.Sprintf("✅ Toifangiz muvaffaqiyatli o'zgartirildi: %s", tier.Label()), nil); err != nil {
			s.logger.WithError(err).Warn("Failed to edit message after tier update")
		}
		return s.client.SendMessage(telegramID,
			"Profilga qaytish uchun 👤 Profil tugmasini bosing.",
			&telebot.SendOptions{ReplyMarkup: registeredUserKeyboard()})
	}
	return nil
}

// StartEdit enters a single-field edit flow from the profile menu. The
// field names match the edit_* callback suffixes.
func (s *RegistrationService) StartEdit(ctx context.Context, telegramID int64, ref MsgRef, field string) error {
	acc, err := s.accounts.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return fmt.Errorf("failed to get account: %w", err)
	}
	t, err := s.teachers.GetByAccountID(ctx, acc.ID)
	if err == idb.ErrTeacherNotFound {
		return s.client.SendMessage(telegramID,
			"❌ Sizda hali o'qituvchi profili mavjud emas.\n📝 Ro'yxatdan o'tish tugmasini bosing.",
			&telebot.SendOptions{ReplyMarkup: mainKeyboard()})
	}
	if err != nil {
		return fmt.Errorf("failed to get teacher profile: %w", err)
	}

	sess := session.New(telegramID, session.StageNone)

	switch field {
	case "full_name":
		sess.Stage = session.StageEditFullName
		if err := s.sessions.Put(ctx, sess); err != nil {
			return fmt.Errorf("failed to start edit session: %w", err)
		}
		return s.client.EditMessageText(ref.ChatID, ref.MessageID,
			"✏️ Yangi to'liq ismingizni kiriting:", nil)

	case "phone":
		sess.Stage = session.StageEditPhone
		if err := s.sessions.Put(ctx, sess); err != nil {
			return fmt.Errorf("failed to start edit session: %w", err)
		}
		if err := s.client.EditMessageText(ref.ChatID, ref.MessageID,
			"📱 Yangi telefon raqamingizni kiriting:", nil); err != nil {
			s.logger.WithError(err).Warn("Failed to edit message for phone edit")
		}
		// Reply keyboards can't ride on an edited message.
		return s.client.SendMessage(telegramID,
			"Yoki tugmani bosing:", &telebot.SendOptions{ReplyMarkup: phoneKeyboard()})

	case "region":
		sess.Stage = session.StageEditRegion
		if err := s.sessions.Put(ctx, sess); err != nil {
			return fmt.Errorf("failed to start edit session: %w", err)
		}
		regions, err := s.geo.ListRegions(ctx)
		if err != nil {
			return fmt.Errorf("failed to list regions: %w", err)
		}
		return s.client.EditMessageText(ref.ChatID, ref.MessageID,
			"🏛️ Yangi hududingizni tanlang:",
			&telebot.SendOptions{ReplyMarkup: regionsKeyboard(regions)})

	case "district":
		// District-only edit stays within the teacher's current region.
		sess.Stage = session.StageEditDistrict
		sess.Data[session.FieldRegionID] = strconv.FormatInt(t.RegionID, 10)
		if err := s.sessions.Put(ctx, sess); err != nil {
			return fmt.Errorf("failed to start edit session: %w", err)
		}
		districts, err := s.geo.ListDistrictsByRegion(ctx, t.RegionID)
		if err != nil {
			return fmt.Errorf("failed to list districts: %w", err)
		}
		return s.client.EditMessageText(ref.ChatID, ref.MessageID,
			"🏘️ Yangi tumaningizni tanlang:",
			&telebot.SendOptions{ReplyMarkup: districtsKeyboard(districts)})

	case "school":
		sess.Stage = session.StageEditSchool
		if err := s.sessions.Put(ctx, sess); err != nil {
			return fmt.Errorf("failed to start edit session: %w", err)
		}
		return s.client.EditMessageText(ref.ChatID, ref.MessageID,
			"🏫 Yangi maktab nomini kiriting:", nil)

	case "toifa":
		sess.Stage = session.StageEditTier
		if err := s.sessions.Put(ctx, sess); err != nil {
			return fmt.Errorf("failed to start edit session: %w", err)
		}
		return s.client.EditMessageText(ref.ChatID, ref.MessageID,
			"🏆 Yangi o'qituvchilik toifangizni tanlang:",
			&telebot.SendOptions{ReplyMarkup: tierKeyboard()})
	}

	s.logger.WithField("field", field).Warn("Unknown profile edit field")
	return nil
}

// acceptPhone validates a phone at either phone stage and advances the
// owning flow.
func (s *RegistrationService) acceptPhone(ctx context.Context, telegramID int64, sess *session.Session, contactPhone, text string) error {
	phone, ok := normalizePhone(s.countryCode, contactPhone, strings.TrimSpace(text))
	if !ok {
		return s.client.SendMessage(telegramID,
			"❌ Iltimos, to'g'ri telefon raqam kiriting:", nil)
	}

	if sess.Stage == session.StageEditPhone {
		return s.finishSingleFieldEdit(ctx, telegramID,
			func(accountID int64) error { return s.teachers.UpdatePhoneNumber(ctx, accountID, phone) },
			fmt.Sprintf("✅ Telefon raqamingiz muvaffaqiyatli o'zgartirildi: %s", phone))
	}

	sess.Data[session.FieldPhone] = phone
	sess.Stage = session.StageRegisterRegion
	if err := s.sessions.Put(ctx, sess); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	regions, err := s.geo.ListRegions(ctx)
	if err != nil {
		return fmt.Errorf("failed to list regions: %w", err)
	}
	return s.client.SendMessage(telegramID,
		"🏛️ Hududingizni tanlang:",
		&telebot.SendOptions{ReplyMarkup: regionsKeyboard(regions)})
}

// finishSingleFieldEdit commits a one-step edit flow and clears the session.
func (s *RegistrationService) finishSingleFieldEdit(ctx context.Context, telegramID int64, update func(accountID int64) error, successText string) error {
	acc, err := s.accounts.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return fmt.Errorf("failed to get account: %w", err)
	}
	if err := update(acc.ID); err != nil {
		return fmt.Errorf("failed to update profile field: %w", err)
	}
	if err := s.sessions.Clear(ctx, telegramID); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return s.client.SendMessage(telegramID, successText,
		&telebot.SendOptions{ReplyMarkup: registeredUserKeyboard()})
}

// completeRegistration is the terminal transition: it upserts the profile,
// auto-confirming when no document was required, and either fires the
// confirmation hook or forwards the submission for admin review.
func (s *RegistrationService) completeRegistration(ctx context.Context, telegramID int64, sess *session.Session, att *Attachment) error {
	acc, err := s.accounts.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return fmt.Errorf("failed to get account: %w", err)
	}

	regionID, err := strconv.ParseInt(sess.Data[session.FieldRegionID], 10, 64)
	if err != nil {
		return fmt.Errorf("session has no region: %w", err)
	}
	districtID, err := strconv.ParseInt(sess.Data[session.FieldDistrictID], 10, 64)
	if err != nil {
		return fmt.Errorf("session has no district: %w", err)
	}
	tier, ok := teacher.ParseTier(sess.Data[session.FieldTier])
	if !ok {
		return fmt.Errorf("session has invalid tier %q", sess.Data[session.FieldTier])
	}

	confirmed := att == nil // no document required means auto-confirmation

	t := &teacher.Teacher{
		AccountID:   acc.ID,
		FullName:    sess.Data[session.FieldFullName],
		PhoneNumber: sess.Data[session.FieldPhone],
		RegionID:    regionID,
		DistrictID:  districtID,
		SchoolName:  sess.Data[session.FieldSchool],
		Tier:        tier,
		IsConfirmed: confirmed,
	}
	if err := s.teachers.Upsert(ctx, t); err != nil {
		return fmt.Errorf("failed to upsert teacher profile: %w", err)
	}
	if err := s.sessions.Clear(ctx, telegramID); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	logCtx := s.logger.WithFields(logrus.Fields{
		"teacher_id": t.ID,
		"account_id": acc.ID,
		"tier":       tier,
		"confirmed":  confirmed,
	})
	logCtx.Info("Registration completed")

	if confirmed {
		if err := s.referrals.OnTeacherConfirmed(ctx, acc); err != nil {
			// The profile is committed; the ledger hook failing must not
			// surface as a registration failure.
			logCtx.WithError(err).Error("Confirmation hook failed after auto-confirmation")
		}
		return s.client.SendMessage(telegramID, fmt.Sprintf(
			"🎉 Tabriklaymiz! Siz muvaffaqiyatli ro'yxatdan o'tdingiz!\n\n"+
				"📋 Ma'lumotlaringiz:\n"+
				"👤 To'liq ism: %s\n"+
				"📱 Telefon: %s\n"+
				"🏫 Maktab: %s\n"+
				"🏆 Toifa: %s\n\n"+
				"Endi siz quyidagi imkoniyatlardan foydalanishingiz mumkin:",
			t.FullName, t.PhoneNumber, t.SchoolName, tier.Label()),
			&telebot.SendOptions{ReplyMarkup: registeredUserKeyboard()})
	}

	if !s.notifier.AdminChannelConfigured() {
		logCtx.Error("Admin channel not configured, application cannot be reviewed")
		return s.client.SendMessage(telegramID,
			"❌ Admin kanali sozlanmagan. Iltimos, admin bilan bog'laning.",
			&telebot.SendOptions{ReplyMarkup: mainKeyboard()})
	}

	s.notifier.ForwardApplication(ctx, t, att)
	return s.client.SendMessage(telegramID, fmt.Sprintf(
		"✅ Arizangiz muvaffaqiyatli yuborildi!\n\n"+
			"📋 Yuborilgan ma'lumotlar:\n"+
			"👤 To'liq ism: %s\n"+
			"📱 Telefon: %s\n"+
			"🏫 Maktab: %s\n"+
			"🏆 Toifa: %s\n\n"+
			"⏳ Admin tomonidan ko'rib chiqilgandan so'ng sizga xabar beriladi.",
		t.FullName, t.PhoneNumber, t.SchoolName, tier.Label()),
		&telebot.SendOptions{ReplyMarkup: mainKeyboard()})
}
