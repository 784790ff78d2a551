package telegram

import (
	"fmt"
	"strconv"

	"gopkg.in/telebot.v3"
)

// chatRecipient adapts a raw chat identifier (numeric ID or @username) to
// telebot's Recipient interface.
type chatRecipient string

func (r chatRecipient) Recipient() string {
	return string(r)
}

// TelebotAdapter implements the outbound client on top of telebot.
type TelebotAdapter struct {
	bot *telebot.Bot
}

func NewTelebotAdapter(bot *telebot.Bot) *TelebotAdapter {
	return &TelebotAdapter{bot: bot}
}

func (t *TelebotAdapter) SendMessage(recipientChatID int64, text string, options *telebot.SendOptions) error {
	_, err := t.bot.Send(&telebot.User{ID: recipientChatID}, text, options)
	if err != nil {
		return fmt.Errorf("failed to send message to %d: %w", recipientChatID, err)
	}
	return nil
}

func (t *TelebotAdapter) SendDocument(recipientChatID int64, fileID, caption string, options *telebot.SendOptions) error {
	doc := &telebot.Document{
		File:    telebot.File{FileID: fileID},
		Caption: caption,
	}
	_, err := t.bot.Send(&telebot.User{ID: recipientChatID}, doc, options)
	if err != nil {
		return fmt.Errorf("failed to send document to %d: %w", recipientChatID, err)
	}
	return nil
}

func (t *TelebotAdapter) SendPhoto(recipientChatID int64, fileID, caption string, options *telebot.SendOptions) error {
	photo := &telebot.Photo{
		File:    telebot.File{FileID: fileID},
		Caption: caption,
	}
	_, err := t.bot.Send(&telebot.User{ID: recipientChatID}, photo, options)
	if err != nil {
		return fmt.Errorf("failed to send photo to %d: %w", recipientChatID, err)
	}
	return nil
}

func (t *TelebotAdapter) EditMessageText(chatID int64, messageID int, text string, options *telebot.SendOptions) error {
	msg := &telebot.StoredMessage{
		MessageID: strconv.Itoa(messageID),
		ChatID:    chatID,
	}
	_, err := t.bot.Edit(msg, text, options)
	if err != nil {
		return fmt.Errorf("failed to edit message %d in chat %d: %w", messageID, chatID, err)
	}
	return nil
}

func (t *TelebotAdapter) EditMessageCaption(chatID int64, messageID int, caption string, options *telebot.SendOptions) error {
	msg := &telebot.StoredMessage{
		MessageID: strconv.Itoa(messageID),
		ChatID:    chatID,
	}
	_, err := t.bot.EditCaption(msg, caption, options)
	if err != nil {
		return fmt.Errorf("failed to edit caption of message %d in chat %d: %w", messageID, chatID, err)
	}
	return nil
}

func (t *TelebotAdapter) CreateInviteLink(channelChatID string, memberLimit int) (string, error) {
	link, err := t.bot.CreateInviteLink(chatRecipient(channelChatID), &telebot.ChatInviteLink{
		MemberLimit: memberLimit,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create invite link for %s: %w", channelChatID, err)
	}
	return link.InviteLink, nil
}

func (t *TelebotAdapter) Username() string {
	return t.bot.Me.Username
}
