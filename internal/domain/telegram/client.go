package telegram

import "gopkg.in/telebot.v3"

// Client defines the outbound transport surface the application services
// need. This keeps the services decoupled from the specific bot library.
type Client interface {
	SendMessage(recipientChatID int64, text string, options *telebot.SendOptions) error
	SendDocument(recipientChatID int64, fileID, caption string, options *telebot.SendOptions) error
	SendPhoto(recipientChatID int64, fileID, caption string, options *telebot.SendOptions) error
	EditMessageText(chatID int64, messageID int, text string, options *telebot.SendOptions) error
	EditMessageCaption(chatID int64, messageID int, caption string, options *telebot.SendOptions) error

	// CreateInviteLink mints a fresh invite link for the channel. A positive
	// memberLimit caps how many accounts may join through it.
	CreateInviteLink(channelChatID string, memberLimit int) (string, error)

	// Username returns the bot's own username, used to build referral links.
	Username() string
}
