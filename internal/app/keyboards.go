package app

import (
	"fmt"

	"gopkg.in/telebot.v3"

	"teacher_referral_bot/internal/domain/geo"
	"teacher_referral_bot/internal/domain/teacher"
)

// Reply-keyboard button texts. The handler layer registers these as exact
// text endpoints, so they live here next to the keyboards that show them.
const (
	BtnRegister   = "📝 Ro'yxatdan o'tish"
	BtnCancel     = "❌ Bekor qilish"
	BtnReferral   = "🔗 Referal"
	BtnPoints     = "🏆 Mening ballarim"
	BtnProfile    = "👤 Profil"
	BtnSharePhone = "📱 Telefon raqamni yuborish"
)

// Inline callback actions without a numeric suffix. The callback dispatcher
// matches on these, so keyboards and dispatch share one definition.
const (
	ActionBackToRegions      = "back_to_regions"
	ActionBackToProfile      = "back_to_profile"
	ActionBackToMain         = "back_to_main"
	ActionCancelRegistration = "cancel_registration"
	ActionStatsDistrict      = "stats_district"
	ActionStatsRegion        = "stats_region"
	ActionStatsRepublic      = "stats_republic"
)

func mainKeyboard() *telebot.ReplyMarkup {
	m := &telebot.ReplyMarkup{ResizeKeyboard: true}
	m.Reply(m.Row(m.Text(BtnRegister)))
	return m
}

func registeredUserKeyboard() *telebot.ReplyMarkup {
	m := &telebot.ReplyMarkup{ResizeKeyboard: true}
	m.Reply(
		m.Row(m.Text(BtnReferral), m.Text(BtnPoints)),
		m.Row(m.Text(BtnProfile)),
	)
	return m
}

func registrationKeyboard() *telebot.ReplyMarkup {
	m := &telebot.ReplyMarkup{ResizeKeyboard: true}
	m.Reply(m.Row(m.Text(BtnCancel)))
	return m
}

func phoneKeyboard() *telebot.ReplyMarkup {
	m := &telebot.ReplyMarkup{ResizeKeyboard: true, OneTimeKeyboard: true}
	m.Reply(
		m.Row(m.Contact(BtnSharePhone)),
		m.Row(m.Text(BtnCancel)),
	)
	return m
}

func statisticsKeyboard() *telebot.ReplyMarkup {
	m := &telebot.ReplyMarkup{}
	m.Inline(
		m.Row(m.Data("🏘️ Tuman bo'yicha", ActionStatsDistrict)),
		m.Row(m.Data("🏛️ Viloyat bo'yicha", ActionStatsRegion)),
		m.Row(m.Data("🇺🇿 Respublika bo'yicha", ActionStatsRepublic)),
		m.Row(m.Data("⬅️ Asosiy menyu", ActionBackToMain)),
	)
	return m
}

func regionsKeyboard(regions []*geo.Region) *telebot.ReplyMarkup {
	m := &telebot.ReplyMarkup{}
	rows := make([]telebot.Row, 0, len(regions)+1)
	for _, r := range regions {
		rows = append(rows, m.Row(m.Data(r.Name, fmt.Sprintf("region_%d", r.ID))))
	}
	rows = append(rows, m.Row(m.Data(BtnCancel, ActionCancelRegistration)))
	m.Inline(rows...)
	return m
}

func districtsKeyboard(districts []*geo.District) *telebot.ReplyMarkup {
	m := &telebot.ReplyMarkup{}
	rows := make([]telebot.Row, 0, len(districts)+2)
	for _, d := range districts {
		rows = append(rows, m.Row(m.Data(d.Name, fmt.Sprintf("district_%d", d.ID))))
	}
	rows = append(rows, m.Row(m.Data("⬅️ Orqaga", ActionBackToRegions)))
	rows = append(rows, m.Row(m.Data(BtnCancel, ActionCancelRegistration)))
	m.Inline(rows...)
	return m
}

func tierKeyboard() *telebot.ReplyMarkup {
	m := &telebot.ReplyMarkup{}
	rows := make([]telebot.Row, 0, len(teacher.AllTiers())+1)
	for _, t := range teacher.AllTiers() {
		rows = append(rows, m.Row(m.Data(t.Label(), fmt.Sprintf("toifa_%s", t))))
	}
	rows = append(rows, m.Row(m.Data(BtnCancel, ActionCancelRegistration)))
	m.Inline(rows...)
	return m
}

func adminDecisionKeyboard(teacherID int64) *telebot.ReplyMarkup {
	m := &telebot.ReplyMarkup{}
	m.Inline(m.Row(
		m.Data("✅ Tasdiqlash", fmt.Sprintf("accept_%d", teacherID)),
		m.Data("❌ Rad etish", fmt.Sprintf("reject_%d", teacherID)),
	))
	return m
}

func profileEditKeyboard() *telebot.ReplyMarkup {
	m := &telebot.ReplyMarkup{}
	m.Inline(
		m.Row(
			m.Data("✏️ Ismni o'zgartirish", "edit_full_name"),
			m.Data("📱 Telefon raqamni o'zgartirish", "edit_phone"),
		),
		m.Row(
			m.Data("🏛️ Hududni o'zgartirish", "edit_region"),
			m.Data("🏘️ Tumanni o'zgartirish", "edit_district"),
		),
		m.Row(
			m.Data("🏫 Maktab nomini o'zgartirish", "edit_school"),
			m.Data("🏆 Toifani o'zgartirish", "edit_toifa"),
		),
		m.Row(m.Data("⬅️ Orqaga", ActionBackToProfile)),
	)
	return m
}
