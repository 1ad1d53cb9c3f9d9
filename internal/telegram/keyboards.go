package telegram

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

// Menu texts
const (
	menuShownText  = "⬇️"
	menuHiddenText = "⬆️"
)

// quickReplyKeyboard renders quick replies as a one-time keyboard; each
// button sends its label back as a message.
func quickReplyKeyboard(labels []string) tgbotapi.ReplyKeyboardMarkup {
	row := make([]tgbotapi.KeyboardButton, 0, len(labels))
	for _, l := range labels {
		row = append(row, tgbotapi.NewKeyboardButton(l))
	}
	kb := tgbotapi.NewOneTimeReplyKeyboard(row)
	kb.ResizeKeyboard = true
	return kb
}

// menuKeyboard is the persistent stand-in for the LINE rich menu:
// ack on top, setup and status below.
func menuKeyboard(buttons []string) tgbotapi.ReplyKeyboardMarkup {
	var rows [][]tgbotapi.KeyboardButton
	if len(buttons) > 0 {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(buttons[0])))
	}
	if len(buttons) > 1 {
		rest := make([]tgbotapi.KeyboardButton, 0, len(buttons)-1)
		for _, b := range buttons[1:] {
			rest = append(rest, tgbotapi.NewKeyboardButton(b))
		}
		rows = append(rows, rest)
	}
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	return kb
}
