package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aretw0/datadesk/pkg/navigation"
)

// frameMarkup lays a frame out as an inline keyboard, one keyboard row per
// frame row. Button data is the action token.
func frameMarkup(f navigation.Frame) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(f.Rows))
	for _, row := range f.Rows {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, ch := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(ch.Label, ch.Token))
		}
		rows = append(rows, buttons)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// suggestionKeyboard offers quick replies as a one-time reply keyboard.
func suggestionKeyboard(suggestions []string) tgbotapi.ReplyKeyboardMarkup {
	buttons := make([]tgbotapi.KeyboardButton, 0, len(suggestions))
	for _, s := range suggestions {
		buttons = append(buttons, tgbotapi.NewKeyboardButton(s))
	}
	kb := tgbotapi.NewReplyKeyboard(buttons)
	kb.OneTimeKeyboard = true
	kb.ResizeKeyboard = true
	return kb
}
