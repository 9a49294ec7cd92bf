package bot

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"planbot/internal/dateutil"
	"planbot/internal/domain"
)

func (b *Bot) handleUpdate(update tgbotapi.Update) {
	if update.Message != nil {
		b.handleMessage(update.Message)
	} else if update.CallbackQuery != nil {
		b.handleCallback(update.CallbackQuery)
	}
}

func (b *Bot) now() time.Time {
	return time.Now().In(b.cfg.Timezone)
}

func (b *Bot) handleMessage(msg *tgbotapi.Message) {
	userID := msg.From.ID
	chatID := msg.Chat.ID

	if !b.cfg.IsAllowedUser(userID) {
		b.SendMessage(chatID, "⛔ Access denied")
		return
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}

	if msg.IsCommand() {
		b.handleCommand(msg)
		return
	}

	// Plain text becomes a todo
	todo, err := b.todoService.Create(text)
	if err != nil {
		b.SendMessage(chatID, "❌ "+err.Error())
		return
	}
	b.SendMessage(chatID, fmt.Sprintf("✅ Todo added\n\n⬜ <b>#%d</b> %s\n\n/due %d YYYY-MM-DD — put it on the calendar", todo.ID, todo.Text, todo.ID))
}

func (b *Bot) handleCallback(callback *tgbotapi.CallbackQuery) {
	userID := callback.From.ID
	chatID := callback.Message.Chat.ID
	msgID := callback.Message.MessageID

	if !b.cfg.IsAllowedUser(userID) {
		b.api.Request(tgbotapi.NewCallback(callback.ID, "⛔ Access denied"))
		return
	}

	data := callback.Data
	parts := strings.Split(data, ":")

	switch parts[0] {
	case "nav":
		// nav:anchorKey:prev|next|today|stay
		if len(parts) < 3 {
			return
		}
		anchor, err := dateutil.ParseKey(parts[1])
		if err != nil {
			return
		}
		switch parts[2] {
		case "prev":
			anchor = anchor.AddDate(0, 0, -domain.WindowDays)
		case "next":
			anchor = anchor.AddDate(0, 0, domain.WindowDays)
		case "today":
			anchor = b.now()
		}
		b.answerCallback(callback.ID, "")
		b.renderGrid(chatID, msgID, anchor)

	case "day":
		// day:dateKey:anchorKey
		if len(parts) < 3 {
			return
		}
		day, err := dateutil.ParseKey(parts[1])
		if err != nil {
			return
		}
		b.answerCallback(callback.ID, "")
		b.renderDay(chatID, msgID, day, parts[2])

	case "delevt":
		// delevt:id:dateKey:anchorKey — ask single vs. all
		if len(parts) < 4 {
			return
		}
		id, _ := strconv.ParseInt(parts[1], 10, 64)
		event, err := b.calendarService.Get(id)
		if err != nil || event == nil {
			// Stale id from an old message; just refresh the day.
			b.answerCallback(callback.ID, "")
			if day, err := dateutil.ParseKey(parts[2]); err == nil {
				b.renderDay(chatID, msgID, day, parts[3])
			}
			return
		}
		b.answerCallback(callback.ID, "")
		text := fmt.Sprintf("Delete <b>%s</b> on %s?", event.Title, parts[2])
		b.editMessage(chatID, msgID, text, deleteOptionsKeyboard(id, event.Recurring(), parts[2], parts[3]))

	case "delone":
		// delone:id:dateKey:anchorKey
		if len(parts) < 4 {
			return
		}
		id, _ := strconv.ParseInt(parts[1], 10, 64)
		day, err := dateutil.ParseKey(parts[2])
		if err != nil {
			return
		}
		if err := b.calendarService.DeleteOccurrence(id, day); err != nil {
			b.answerCallback(callback.ID, "❌ "+err.Error())
			return
		}
		b.answerCallback(callback.ID, "🗑 Occurrence removed")
		b.renderDay(chatID, msgID, day, parts[3])

	case "delall":
		// delall:id:dateKey:anchorKey
		if len(parts) < 4 {
			return
		}
		id, _ := strconv.ParseInt(parts[1], 10, 64)
		if err := b.calendarService.DeleteEvent(id); err != nil {
			b.answerCallback(callback.ID, "❌ "+err.Error())
			return
		}
		b.answerCallback(callback.ID, "🗑 Event removed")
		if day, err := dateutil.ParseKey(parts[2]); err == nil {
			b.renderDay(chatID, msgID, day, parts[3])
		}

	case "tododone", "todoundo":
		// tododone:id[:dateKey:anchorKey]
		if len(parts) < 2 {
			return
		}
		id, _ := strconv.ParseInt(parts[1], 10, 64)
		if err := b.todoService.SetDone(id, parts[0] == "tododone"); err != nil {
			b.answerCallback(callback.ID, "❌ "+err.Error())
			return
		}
		b.answerCallback(callback.ID, "✅")
		if len(parts) >= 4 {
			if day, err := dateutil.ParseKey(parts[2]); err == nil {
				b.renderDay(chatID, msgID, day, parts[3])
				return
			}
		}
		b.refreshTodoList(chatID, msgID)

	case "tododel":
		// tododel:id
		if len(parts) < 2 {
			return
		}
		id, _ := strconv.ParseInt(parts[1], 10, 64)
		if err := b.todoService.Delete(id); err != nil {
			b.answerCallback(callback.ID, "❌ "+err.Error())
			return
		}
		b.answerCallback(callback.ID, "🗑 Removed")
		b.refreshTodoList(chatID, msgID)

	case "todos":
		b.answerCallback(callback.ID, "")
		b.refreshTodoList(chatID, msgID)
	}
}

func (b *Bot) answerCallback(id, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(id, text)); err != nil {
		log.Printf("Callback answer error: %v", err)
	}
}

// renderGrid sends (msgID == 0) or edits the six-week calendar message.
func (b *Bot) renderGrid(chatID int64, msgID int, anchor time.Time) {
	window, err := b.calendarService.BuildWindow(anchor)
	if err != nil {
		log.Printf("Build window error: %v", err)
		b.SendMessage(chatID, "❌ Error: "+err.Error())
		return
	}

	text := fmt.Sprintf("<b>📅 %s</b>\n\nSu Mo Tu We Th Fr Sa · tap a day\n• events ◦ todos", window.Title())
	keyboard := gridKeyboard(window, dateutil.Key(anchor))

	if msgID == 0 {
		if err := b.SendMessageWithKeyboard(chatID, text, keyboard); err != nil {
			log.Printf("Send grid error: %v", err)
		}
		return
	}
	b.editMessage(chatID, msgID, text, keyboard)
}

func (b *Bot) renderDay(chatID int64, msgID int, day time.Time, anchorKey string) {
	events, todos, err := b.calendarService.OccurrencesFor(day)
	if err != nil {
		log.Printf("Day occurrences error: %v", err)
		return
	}

	text := b.calendarService.FormatDay(day, events, todos)
	b.editMessage(chatID, msgID, text, dayKeyboard(events, todos, dateutil.Key(day), anchorKey))
}

func (b *Bot) refreshTodoList(chatID int64, msgID int) {
	todos, err := b.todoService.List()
	if err != nil {
		log.Printf("List todos error: %v", err)
		return
	}

	text := "<b>📋 Todos</b>\n\n" + b.todoService.FormatTodoList(todos)
	if kb := todoListKeyboard(todos); kb != nil {
		b.editMessage(chatID, msgID, text, *kb)
		return
	}
	edit := tgbotapi.NewEditMessageText(chatID, msgID, text)
	edit.ParseMode = "HTML"
	if _, err := b.api.Send(edit); err != nil {
		log.Printf("Edit message error: %v", err)
	}
}
