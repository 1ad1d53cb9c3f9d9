package telegram

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ykvlv/medication-bot/internal/domain"
)

// sender is the part of *tgbotapi.BotAPI used for outbound messages.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Messenger implements reply, push and menu on Telegram. Reply tokens and
// user ids are both the decimal chat id.
type Messenger struct {
	bot         sender
	menuButtons []string
}

// NewMessenger creates a Messenger. menuButtons are shown by ShowMenu.
func NewMessenger(bot sender, menuButtons []string) *Messenger {
	return &Messenger{bot: bot, menuButtons: menuButtons}
}

func parseChatID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad chat id %q", domain.ErrProtocol, s)
	}
	return id, nil
}

func (m *Messenger) send(chat string, msg domain.Message) error {
	chatID, err := parseChatID(chat)
	if err != nil {
		return err
	}
	out := tgbotapi.NewMessage(chatID, msg.Text)
	if len(msg.QuickReplies) > 0 {
		out.ReplyMarkup = quickReplyKeyboard(msg.QuickReplies)
	}
	_, err = m.bot.Send(out)
	return err
}

// Reply answers in the chat the event came from.
func (m *Messenger) Reply(_ context.Context, replyToken string, msg domain.Message) error {
	return m.send(replyToken, msg)
}

// Push sends an unsolicited message to the user's chat.
func (m *Messenger) Push(_ context.Context, userID string, msg domain.Message) error {
	return m.send(userID, msg)
}

// ShowMenu attaches the persistent keyboard.
func (m *Messenger) ShowMenu(_ context.Context, userID string) error {
	chatID, err := parseChatID(userID)
	if err != nil {
		return err
	}
	out := tgbotapi.NewMessage(chatID, menuShownText)
	out.ReplyMarkup = menuKeyboard(m.menuButtons)
	_, err = m.bot.Send(out)
	return err
}

// HideMenu removes the persistent keyboard.
func (m *Messenger) HideMenu(_ context.Context, userID string) error {
	chatID, err := parseChatID(userID)
	if err != nil {
		return err
	}
	out := tgbotapi.NewMessage(chatID, menuHiddenText)
	out.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	_, err = m.bot.Send(out)
	return err
}
