package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"planbot/internal/domain"
)

// gridKeyboard lays the 42-day window out as 6 rows of 7 day buttons plus a
// navigation row. Day taps open the day view; navigation shifts the anchor
// by exactly 42 days and rebuilds the same window.
func gridKeyboard(w *domain.Window, anchorKey string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	for week := 0; week < 6; week++ {
		var row []tgbotapi.InlineKeyboardButton
		for i := week * 7; i < week*7+7; i++ {
			cell := w.Days[i]
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(
				dayLabel(cell),
				fmt.Sprintf("day:%s:%s", cell.Key, anchorKey),
			))
		}
		rows = append(rows, row)
	}

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️", fmt.Sprintf("nav:%s:prev", anchorKey)),
		tgbotapi.NewInlineKeyboardButtonData("📍 Today", fmt.Sprintf("nav:%s:today", anchorKey)),
		tgbotapi.NewInlineKeyboardButtonData("➡️", fmt.Sprintf("nav:%s:next", anchorKey)),
	))

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func dayLabel(cell domain.Day) string {
	label := fmt.Sprintf("%d", cell.Date.Day())
	if len(cell.Events) > 0 {
		label += "•"
	}
	if len(cell.Todos) > 0 {
		label += "◦"
	}
	if cell.Today {
		label = "[" + label + "]"
	}
	return label
}

// dayKeyboard lists per-occurrence delete buttons for a single day.
func dayKeyboard(events []*domain.Event, todos []domain.TodoItem, dateKey, anchorKey string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	for _, e := range events {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				"🗑 "+truncate(e.Title, 25),
				fmt.Sprintf("delevt:%d:%s:%s", e.ID, dateKey, anchorKey),
			),
		))
	}

	for _, t := range todos {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				"✅ "+truncate(t.Todo.Text, 25),
				fmt.Sprintf("tododone:%d:%s:%s", t.Todo.ID, dateKey, anchorKey),
			),
		))
	}

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("◀️ Back to grid", fmt.Sprintf("nav:%s:stay", anchorKey)),
	))

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// deleteOptionsKeyboard asks whether to drop a single occurrence or the
// whole series. One-off events only get the single option.
func deleteOptionsKeyboard(eventID int64, recurring bool, dateKey, anchorKey string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(
			"🗑 This occurrence",
			fmt.Sprintf("delone:%d:%s:%s", eventID, dateKey, anchorKey),
		),
	))
	if recurring {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				"🗑 All occurrences",
				fmt.Sprintf("delall:%d:%s:%s", eventID, dateKey, anchorKey),
			),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("◀️ Cancel", fmt.Sprintf("day:%s:%s", dateKey, anchorKey)),
	))

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// todoListKeyboard shows toggle and delete buttons for every todo.
func todoListKeyboard(todos []*domain.Todo) *tgbotapi.InlineKeyboardMarkup {
	if len(todos) == 0 {
		return nil
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, t := range todos {
		toggle := tgbotapi.NewInlineKeyboardButtonData(
			"✅ #"+fmt.Sprint(t.ID),
			fmt.Sprintf("tododone:%d", t.ID),
		)
		if t.Done {
			toggle = tgbotapi.NewInlineKeyboardButtonData(
				"↩️ #"+fmt.Sprint(t.ID),
				fmt.Sprintf("todoundo:%d", t.ID),
			)
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			toggle,
			tgbotapi.NewInlineKeyboardButtonData(
				"🗑 "+truncate(t.Text, 20),
				fmt.Sprintf("tododel:%d", t.ID),
			),
		))
	}

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔄 Refresh", "todos"),
	))

	keyboard := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &keyboard
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
